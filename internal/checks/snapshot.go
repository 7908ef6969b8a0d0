package checks

import (
	"maps"
	"slices"
	"time"

	"qa-gate/internal/models"
)

// RecordFields holds the fields of the record under review that checks read
type RecordFields struct {
	ID           string             `json:"id"`
	Table        models.EntityTable `json:"table"`
	Name         string             `json:"name"`
	Category     string             `json:"category"`
	Description  string             `json:"description"`
	ContactEmail string             `json:"contact_email,omitempty"`
	Country      string             `json:"country,omitempty"`
	BaseUnit     string             `json:"base_unit,omitempty"`
	Attributes   map[string]float64 `json:"attributes,omitempty"`
}

// LinkedSupplier is a supplier linked to a material or product
type LinkedSupplier struct {
	SupplierID   string                `json:"supplier_id"`
	Name         string                `json:"name"`
	Status       models.ApprovalStatus `json:"status"`
	IsPrimary    bool                  `json:"is_primary"`
	PurchaseUnit string                `json:"purchase_unit,omitempty"`
}

// DocumentRequirement states that a document type is expected for the record
type DocumentRequirement struct {
	DocumentType string `json:"document_type"`
	Required     bool   `json:"required"`
}

// NumericLimit bounds a numeric attribute of the record. Nil bounds are open.
type NumericLimit struct {
	Attribute string   `json:"attribute"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Unit      string   `json:"unit,omitempty"`
}

// UnitConversion converts quantities from one unit to another
type UnitConversion struct {
	FromUnit string  `json:"from_unit"`
	ToUnit   string  `json:"to_unit"`
	Factor   float64 `json:"factor"`
}

// Snapshot is the read-only context a battery of checks is evaluated against.
// It is assembled by the caller; the engine never queries storage.
type Snapshot struct {
	Record       RecordFields                `json:"record"`
	Suppliers    []LinkedSupplier            `json:"suppliers"`
	Documents    []models.ComplianceDocument `json:"documents"`
	Requirements []DocumentRequirement       `json:"requirements"`
	Limits       []NumericLimit              `json:"limits"`
	Conversions  []UnitConversion            `json:"conversions"`
	EvaluatedOn  time.Time                   `json:"evaluated_on"` // "today" for expiry checks; zero means the current date
}

// Clone returns a copy that shares no mutable state with s
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return &Snapshot{}
	}
	c := *s
	c.Record.Attributes = maps.Clone(s.Record.Attributes)
	c.Suppliers = slices.Clone(s.Suppliers)
	c.Requirements = slices.Clone(s.Requirements)
	c.Conversions = slices.Clone(s.Conversions)

	if s.Limits != nil {
		c.Limits = make([]NumericLimit, len(s.Limits))
	}
	for i, l := range s.Limits {
		c.Limits[i] = l
		if l.Min != nil {
			v := *l.Min
			c.Limits[i].Min = &v
		}
		if l.Max != nil {
			v := *l.Max
			c.Limits[i].Max = &v
		}
	}

	if s.Documents != nil {
		c.Documents = make([]models.ComplianceDocument, len(s.Documents))
	}
	for i, d := range s.Documents {
		c.Documents[i] = d
		if d.ExpirationDate != nil {
			v := *d.ExpirationDate
			c.Documents[i].ExpirationDate = &v
		}
	}
	return &c
}

// currentDocuments returns the documents still marked current
func (s *Snapshot) currentDocuments() []models.ComplianceDocument {
	var docs []models.ComplianceDocument
	for _, d := range s.Documents {
		if d.IsCurrent {
			docs = append(docs, d)
		}
	}
	return docs
}

// currentDocumentsOfType returns the current documents of one type
func (s *Snapshot) currentDocumentsOfType(docType string) []models.ComplianceDocument {
	var docs []models.ComplianceDocument
	for _, d := range s.currentDocuments() {
		if d.DocumentType == docType {
			docs = append(docs, d)
		}
	}
	return docs
}

func (s *Snapshot) approvedSuppliers() []LinkedSupplier {
	var out []LinkedSupplier
	for _, sup := range s.Suppliers {
		if sup.Status == models.StatusApproved {
			out = append(out, sup)
		}
	}
	return out
}
