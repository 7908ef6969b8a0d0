package models

import (
	"time"
)

// EntityTable names the table of an approvable record
type EntityTable string

const (
	TableMaterials EntityTable = "materials"
	TableSuppliers EntityTable = "suppliers"
	TableProducts  EntityTable = "products"
)

// Valid reports whether t is one of the approvable tables
func (t EntityTable) Valid() bool {
	switch t {
	case TableMaterials, TableSuppliers, TableProducts:
		return true
	}
	return false
}

// ApprovalStatus is the lifecycle status of an approvable record
type ApprovalStatus string

const (
	StatusDraft     ApprovalStatus = "Draft"
	StatusPendingQA ApprovalStatus = "Pending_QA"
	StatusApproved  ApprovalStatus = "Approved"
	StatusRejected  ApprovalStatus = "Rejected"
	StatusArchived  ApprovalStatus = "Archived"
)

// Valid reports whether s is a known status
func (s ApprovalStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingQA, StatusApproved, StatusRejected, StatusArchived:
		return true
	}
	return false
}

// ApprovalAction is the action recorded in the approval log
type ApprovalAction string

const (
	ActionCreated   ApprovalAction = "Created"
	ActionSubmitted ApprovalAction = "Submitted"
	ActionApproved  ApprovalAction = "Approved"
	ActionRejected  ApprovalAction = "Rejected"
	ActionArchived  ApprovalAction = "Archived"
	ActionUpdated   ApprovalAction = "Updated"
	ActionRestored  ApprovalAction = "Restored"
)

// Valid reports whether a is a known action
func (a ApprovalAction) Valid() bool {
	switch a {
	case ActionCreated, ActionSubmitted, ActionApproved, ActionRejected,
		ActionArchived, ActionUpdated, ActionRestored:
		return true
	}
	return false
}

// Actor is the authenticated caller performing an operation
type Actor struct {
	ID    string   `json:"id"`
	Roles []string `json:"roles"`
}

// ApprovableEntity identifies a material, supplier or product together with the status the caller last read
type ApprovableEntity struct {
	Table  EntityTable    `json:"table"`
	ID     string         `json:"id"`
	Status ApprovalStatus `json:"status"`
}

// ApprovalLogEntry is one immutable row of the approval audit trail
type ApprovalLogEntry struct {
	ID             string         `json:"id" db:"id"`
	EntityID       string         `json:"entity_id" db:"entity_id"`
	EntityTable    EntityTable    `json:"entity_table" db:"entity_table"`
	Action         ApprovalAction `json:"action" db:"action"`
	PreviousStatus ApprovalStatus `json:"previous_status" db:"previous_status"`
	NewStatus      ApprovalStatus `json:"new_status" db:"new_status"`
	Notes          *string        `json:"notes,omitempty" db:"notes"`
	PerformedBy    string         `json:"performed_by" db:"performed_by"`
	Timestamp      time.Time      `json:"timestamp" db:"created_at"`
}

// OverrideReason is the fixed set of reasons an override can be requested for
type OverrideReason string

const (
	ReasonDocumentRenewalInProgress    OverrideReason = "document_renewal_in_progress"
	ReasonSupplierQualificationPending OverrideReason = "supplier_qualification_pending"
	ReasonRegulatoryExemption          OverrideReason = "regulatory_exemption"
	ReasonBusinessContinuity           OverrideReason = "business_continuity"
	ReasonDataCorrectionPending        OverrideReason = "data_correction_pending"
	ReasonOther                        OverrideReason = "other"
)

// Valid reports whether r is one of the fixed reasons
func (r OverrideReason) Valid() bool {
	switch r {
	case ReasonDocumentRenewalInProgress, ReasonSupplierQualificationPending, ReasonRegulatoryExemption,
		ReasonBusinessContinuity, ReasonDataCorrectionPending, ReasonOther:
		return true
	}
	return false
}

// OverrideType distinguishes time-bounded from permanent grants
type OverrideType string

const (
	OverrideConditional OverrideType = "conditional_approval"
	OverrideFull        OverrideType = "full_approval"
)

// Valid reports whether t is a known override type
func (t OverrideType) Valid() bool {
	return t == OverrideConditional || t == OverrideFull
}

// OverrideStatus is the status of an override request
type OverrideStatus string

const (
	OverridePending  OverrideStatus = "pending"
	OverrideApproved OverrideStatus = "approved"
	OverrideRejected OverrideStatus = "rejected"
	OverrideExpired  OverrideStatus = "expired"
)

// BlockedCheck is the frozen copy of a failing check stored with an override
type BlockedCheck struct {
	CheckID     string `json:"check_id"`
	CheckName   string `json:"check_name"`
	Tier        string `json:"tier"`
	Message     string `json:"message"`
	TargetTab   string `json:"target_tab,omitempty"`
	TargetField string `json:"target_field,omitempty"`
}

// OverrideRequest records a request for, or grant of, an override of failing checks
type OverrideRequest struct {
	ID               string         `json:"id" db:"id"`
	RelatedRecordID  string         `json:"related_record_id" db:"related_record_id"`
	RelatedTableName EntityTable    `json:"related_table_name" db:"related_table_name"`
	RecordCategory   string         `json:"record_category,omitempty" db:"record_category"`
	BlockedChecks    []BlockedCheck `json:"blocked_checks" db:"blocked_checks"`
	SnapshotDigest   string         `json:"snapshot_digest" db:"snapshot_digest"`
	RequestedBy      string         `json:"requested_by" db:"requested_by"`
	OverrideReason   OverrideReason `json:"override_reason" db:"override_reason"`
	Justification    string         `json:"justification" db:"justification"`
	FollowUpDate     time.Time      `json:"follow_up_date" db:"follow_up_date"`
	OverrideType     OverrideType   `json:"override_type" db:"override_type"`
	DurationDays     int            `json:"duration_days" db:"duration_days"`
	Acknowledged     bool           `json:"acknowledged" db:"acknowledged"`
	Status           OverrideStatus `json:"status" db:"status"`
	ApprovedBy       *string        `json:"approved_by,omitempty" db:"approved_by"`
	RejectionReason  *string        `json:"rejection_reason,omitempty" db:"rejection_reason"`
	ExpiresAt        *time.Time     `json:"expires_at,omitempty" db:"expires_at"`
	DecidedAt        *time.Time     `json:"decided_at,omitempty" db:"decided_at"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
}

// IsActiveGrant reports whether the override currently suppresses blocking
func (o *OverrideRequest) IsActiveGrant(now time.Time) bool {
	if o.Status != OverrideApproved {
		return false
	}
	if o.OverrideType == OverrideFull || o.ExpiresAt == nil {
		return true
	}
	return o.ExpiresAt.After(now)
}

// OccupiesRecord reports whether the override prevents a new one for the same record
func (o *OverrideRequest) OccupiesRecord(now time.Time) bool {
	return o.Status == OverridePending || o.IsActiveGrant(now)
}

// EffectiveStatus reports the status with lapsed conditional grants shown as expired
func (o *OverrideRequest) EffectiveStatus(now time.Time) OverrideStatus {
	if o.Status == OverrideApproved && !o.IsActiveGrant(now) {
		return OverrideExpired
	}
	return o.Status
}

// ComplianceDocument is a dated compliance document attached to a record
type ComplianceDocument struct {
	ID               string      `json:"id" db:"id"`
	RelatedRecordID  string      `json:"related_record_id" db:"related_record_id"`
	RelatedTableName EntityTable `json:"related_table_name" db:"related_table_name"`
	DocumentName     string      `json:"document_name" db:"document_name"`
	DocumentType     string      `json:"document_type" db:"document_type"`
	ExpirationDate   *string     `json:"expiration_date,omitempty" db:"expiration_date"`
	IsCurrent        bool        `json:"is_current" db:"is_current"`
	SupersedesID     *string     `json:"supersedes_id,omitempty" db:"supersedes_id"`
	CreatedBy        string      `json:"created_by" db:"created_by"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
}

// DocumentFields holds the caller-supplied fields of a new or renewed document
type DocumentFields struct {
	DocumentName   string  `json:"document_name"`
	DocumentType   string  `json:"document_type"`
	ExpirationDate *string `json:"expiration_date,omitempty"`
}
