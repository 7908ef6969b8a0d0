package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"qa-gate/internal/apperror"
	"qa-gate/internal/models"
	"qa-gate/internal/repository"
)

// MemoryApprovalStore is an in-memory approval store with the repository's conflict semantics
type MemoryApprovalStore struct {
	mu       sync.Mutex
	statuses map[string]models.ApprovalStatus
	log      []models.ApprovalLogEntry
}

// NewMemoryApprovalStore creates an empty approval store
func NewMemoryApprovalStore() *MemoryApprovalStore {
	return &MemoryApprovalStore{statuses: map[string]models.ApprovalStatus{}}
}

func entityKey(table models.EntityTable, id string) string {
	return string(table) + "/" + id
}

// Seed registers a record with a status
func (s *MemoryApprovalStore) Seed(table models.EntityTable, id string, status models.ApprovalStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[entityKey(table, id)] = status
}

// Entries returns every log entry written so far
func (s *MemoryApprovalStore) Entries() []models.ApprovalLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ApprovalLogEntry(nil), s.log...)
}

func (s *MemoryApprovalStore) check(entity models.ApprovableEntity) error {
	current, ok := s.statuses[entityKey(entity.Table, entity.ID)]
	if !ok {
		return apperror.NotFound(string(entity.Table), entity.ID)
	}
	if current != entity.Status {
		return apperror.Conflict(fmt.Sprintf("%s %s is %s, not %s", entity.Table, entity.ID, current, entity.Status))
	}
	return nil
}

func (s *MemoryApprovalStore) Transition(_ context.Context, entity models.ApprovableEntity, entry *models.ApprovalLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(entity); err != nil {
		return err
	}
	s.statuses[entityKey(entity.Table, entity.ID)] = entry.NewStatus
	s.log = append(s.log, *entry)
	return nil
}

func (s *MemoryApprovalStore) AppendEvent(_ context.Context, entity models.ApprovableEntity, entry *models.ApprovalLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(entity); err != nil {
		return err
	}
	s.log = append(s.log, *entry)
	return nil
}

func (s *MemoryApprovalStore) GetStatus(_ context.Context, table models.EntityTable, id string) (models.ApprovalStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.statuses[entityKey(table, id)]
	if !ok {
		return "", apperror.NotFound(string(table), id)
	}
	return status, nil
}

func (s *MemoryApprovalStore) ListByEntity(_ context.Context, table models.EntityTable, id string) ([]models.ApprovalLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.ApprovalLogEntry{}
	for _, e := range s.log {
		if e.EntityTable == table && e.EntityID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

// MemoryOverrideStore is an in-memory override store enforcing one active override per record
type MemoryOverrideStore struct {
	mu       sync.Mutex
	requests map[string]*models.OverrideRequest
	order    []string
}

// NewMemoryOverrideStore creates an empty override store
func NewMemoryOverrideStore() *MemoryOverrideStore {
	return &MemoryOverrideStore{requests: map[string]*models.OverrideRequest{}}
}

// Put stores a request as is, bypassing the exclusivity check
func (s *MemoryOverrideStore) Put(req models.OverrideRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.ID] = &req
	s.order = append(s.order, req.ID)
}

// Requests returns every stored request in insertion order
func (s *MemoryOverrideStore) Requests() []models.OverrideRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.OverrideRequest, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.requests[id])
	}
	return out
}

func (s *MemoryOverrideStore) CreateExclusive(_ context.Context, req *models.OverrideRequest, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.requests {
		if existing.RelatedTableName != req.RelatedTableName || existing.RelatedRecordID != req.RelatedRecordID {
			continue
		}
		if existing.Status == models.OverrideApproved && !existing.IsActiveGrant(now) {
			existing.Status = models.OverrideExpired
			continue
		}
		if existing.OccupiesRecord(now) {
			return apperror.Conflict(fmt.Sprintf("override %s is already active for this record", existing.ID))
		}
	}
	stored := *req
	s.requests[req.ID] = &stored
	s.order = append(s.order, req.ID)
	return nil
}

func (s *MemoryOverrideStore) GetByID(_ context.Context, id string) (*models.OverrideRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, apperror.NotFound("override request", id)
	}
	out := *req
	return &out, nil
}

func (s *MemoryOverrideStore) Decide(_ context.Context, id string, d repository.Decision) (*models.OverrideRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, apperror.NotFound("override request", id)
	}
	if req.Status != models.OverridePending {
		return nil, apperror.Conflict(fmt.Sprintf("override request is %s, not pending", req.Status))
	}
	approvedBy := d.ApprovedBy
	decidedAt := d.DecidedAt
	req.Status = d.Status
	req.ApprovedBy = &approvedBy
	req.RejectionReason = d.RejectionReason
	req.ExpiresAt = d.ExpiresAt
	req.DecidedAt = &decidedAt
	out := *req
	return &out, nil
}

func (s *MemoryOverrideStore) FindActiveGrant(_ context.Context, table models.EntityTable, recordID string, now time.Time) (*models.OverrideRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, req := range s.requests {
		if req.RelatedTableName == table && req.RelatedRecordID == recordID && req.IsActiveGrant(now) {
			out := *req
			return &out, nil
		}
	}
	return nil, nil
}

func (s *MemoryOverrideStore) ListByRecord(_ context.Context, table models.EntityTable, recordID string) ([]models.OverrideRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.OverrideRequest{}
	for i := len(s.order) - 1; i >= 0; i-- {
		req := s.requests[s.order[i]]
		if req.RelatedTableName == table && req.RelatedRecordID == recordID {
			out = append(out, *req)
		}
	}
	return out, nil
}

// MemoryDocumentStore is an in-memory document store allowing one current document per type
type MemoryDocumentStore struct {
	mu   sync.Mutex
	docs map[string]*models.ComplianceDocument
}

// NewMemoryDocumentStore creates an empty document store
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{docs: map[string]*models.ComplianceDocument{}}
}

// Documents returns every stored document ordered by name
func (s *MemoryDocumentStore) Documents() []models.ComplianceDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(models.ComplianceDocument) bool { return true })
}

func (s *MemoryDocumentStore) sorted(keep func(models.ComplianceDocument) bool) []models.ComplianceDocument {
	out := []models.ComplianceDocument{}
	for _, d := range s.docs {
		if keep(*d) {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocumentName < out[j].DocumentName })
	return out
}

func (s *MemoryDocumentStore) hasCurrent(table models.EntityTable, recordID, docType string) bool {
	for _, d := range s.docs {
		if d.RelatedTableName == table && d.RelatedRecordID == recordID && d.DocumentType == docType && d.IsCurrent {
			return true
		}
	}
	return false
}

func (s *MemoryDocumentStore) Create(_ context.Context, doc *models.ComplianceDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasCurrent(doc.RelatedTableName, doc.RelatedRecordID, doc.DocumentType) {
		return apperror.Conflict("a current document of this type already exists")
	}
	stored := *doc
	s.docs[doc.ID] = &stored
	return nil
}

func (s *MemoryDocumentStore) GetByID(_ context.Context, id string) (*models.ComplianceDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, apperror.NotFound("compliance document", id)
	}
	out := *doc
	return &out, nil
}

func (s *MemoryDocumentStore) Renew(_ context.Context, oldID string, next *models.ComplianceDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.docs[oldID]
	if !ok {
		return apperror.NotFound("compliance document", oldID)
	}
	if !old.IsCurrent {
		return apperror.Conflict("document has already been superseded")
	}
	old.IsCurrent = false
	supersedes := oldID
	next.SupersedesID = &supersedes
	next.IsCurrent = true
	stored := *next
	s.docs[next.ID] = &stored
	return nil
}

func (s *MemoryDocumentStore) ListByRecord(_ context.Context, table models.EntityTable, recordID string) ([]models.ComplianceDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(d models.ComplianceDocument) bool {
		return d.RelatedTableName == table && d.RelatedRecordID == recordID
	}), nil
}
