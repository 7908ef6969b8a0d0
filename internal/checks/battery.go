package checks

import (
	"fmt"
	"sort"
	"strings"

	"qa-gate/internal/compliance"
	"qa-gate/internal/models"
)

// Check identifiers
const (
	CheckRequiredDocumentsPresent   = "required_documents_present"
	CheckRequiredDocumentsUnexpired = "required_documents_unexpired"
	CheckApprovedSupplierLinked     = "approved_supplier_linked"
	CheckNumericLimitsRespected     = "numeric_limits_respected"
	CheckDocumentsNotExpiringSoon   = "documents_not_expiring_soon"
	CheckPurchaseUnitConvertible    = "purchase_unit_convertible"
	CheckPrimarySupplierDesignated  = "primary_supplier_designated"
	CheckSupplierContactComplete    = "supplier_contact_complete"
	CheckCategoryAssigned           = "category_assigned"
	CheckDescriptionPresent         = "description_present"
	CheckBackupSupplierAvailable    = "backup_supplier_available"
	CheckOptionalDocumentsPresent   = "optional_documents_present"
)

// MinDescriptionLength is the number of non-space characters a description needs
const MinDescriptionLength = 10

var (
	requiredDocumentsPresent = Definition{
		ID: CheckRequiredDocumentsPresent, Name: "Required documents present", Tier: TierCritical,
		TargetTab: "documents", TargetField: "document_type",
		Evaluate: evalRequiredDocumentsPresent,
	}
	requiredDocumentsUnexpired = Definition{
		ID: CheckRequiredDocumentsUnexpired, Name: "Required documents not expired", Tier: TierCritical,
		TargetTab: "documents", TargetField: "expiration_date",
		Evaluate: evalRequiredDocumentsUnexpired,
	}
	approvedSupplierLinked = Definition{
		ID: CheckApprovedSupplierLinked, Name: "Approved supplier linked", Tier: TierCritical,
		TargetTab: "suppliers", TargetField: "supplier_id",
		Evaluate: evalApprovedSupplierLinked,
	}
	numericLimitsRespected = Definition{
		ID: CheckNumericLimitsRespected, Name: "Specification limits respected", Tier: TierCritical,
		TargetTab: "specifications", TargetField: "attributes",
		Evaluate: evalNumericLimitsRespected,
	}
	documentsNotExpiringSoon = Definition{
		ID: CheckDocumentsNotExpiringSoon, Name: "No documents expiring soon", Tier: TierImportant,
		TargetTab: "documents", TargetField: "expiration_date",
		Evaluate: evalDocumentsNotExpiringSoon,
	}
	purchaseUnitConvertible = Definition{
		ID: CheckPurchaseUnitConvertible, Name: "Purchase units convertible", Tier: TierImportant,
		TargetTab: "suppliers", TargetField: "purchase_unit",
		Evaluate: evalPurchaseUnitConvertible,
	}
	primarySupplierDesignated = Definition{
		ID: CheckPrimarySupplierDesignated, Name: "Primary supplier designated", Tier: TierImportant,
		TargetTab: "suppliers", TargetField: "is_primary",
		Evaluate: evalPrimarySupplierDesignated,
	}
	supplierContactComplete = Definition{
		ID: CheckSupplierContactComplete, Name: "Supplier contact complete", Tier: TierImportant,
		TargetTab: "contact", TargetField: "contact_email",
		Evaluate: evalSupplierContactComplete,
	}
	categoryAssigned = Definition{
		ID: CheckCategoryAssigned, Name: "Category assigned", Tier: TierRecommended,
		TargetTab: "general", TargetField: "category",
		Evaluate: evalCategoryAssigned,
	}
	descriptionPresent = Definition{
		ID: CheckDescriptionPresent, Name: "Description present", Tier: TierRecommended,
		TargetTab: "general", TargetField: "description",
		Evaluate: evalDescriptionPresent,
	}
	backupSupplierAvailable = Definition{
		ID: CheckBackupSupplierAvailable, Name: "Backup supplier available", Tier: TierRecommended,
		TargetTab: "suppliers", TargetField: "supplier_id",
		Evaluate: evalBackupSupplierAvailable,
	}
	optionalDocumentsPresent = Definition{
		ID: CheckOptionalDocumentsPresent, Name: "Optional documents present", Tier: TierRecommended,
		TargetTab: "documents", TargetField: "document_type",
		Evaluate: evalOptionalDocumentsPresent,
	}
)

// DefinitionsFor returns the battery registered for an entity table, or nil for unknown tables
func DefinitionsFor(table models.EntityTable) []Definition {
	switch table {
	case models.TableMaterials:
		return []Definition{
			requiredDocumentsPresent,
			requiredDocumentsUnexpired,
			approvedSupplierLinked,
			numericLimitsRespected,
			documentsNotExpiringSoon,
			purchaseUnitConvertible,
			primarySupplierDesignated,
			categoryAssigned,
			descriptionPresent,
			backupSupplierAvailable,
			optionalDocumentsPresent,
		}
	case models.TableProducts:
		return []Definition{
			requiredDocumentsPresent,
			requiredDocumentsUnexpired,
			approvedSupplierLinked,
			numericLimitsRespected,
			documentsNotExpiringSoon,
			primarySupplierDesignated,
			categoryAssigned,
			descriptionPresent,
			optionalDocumentsPresent,
		}
	case models.TableSuppliers:
		return []Definition{
			requiredDocumentsPresent,
			requiredDocumentsUnexpired,
			documentsNotExpiringSoon,
			supplierContactComplete,
			descriptionPresent,
			optionalDocumentsPresent,
		}
	}
	return nil
}

func evalRequiredDocumentsPresent(s *Snapshot) (bool, string) {
	var missing []string
	for _, req := range s.Requirements {
		if req.Required && len(s.currentDocumentsOfType(req.DocumentType)) == 0 {
			missing = append(missing, req.DocumentType)
		}
	}
	if len(missing) > 0 {
		return false, "Missing required documents: " + strings.Join(missing, ", ")
	}
	return true, "All required documents are on file"
}

func evalRequiredDocumentsUnexpired(s *Snapshot) (bool, string) {
	var expired []string
	for _, req := range s.Requirements {
		if !req.Required {
			continue
		}
		for _, doc := range s.currentDocumentsOfType(req.DocumentType) {
			if compliance.Classify(doc.ExpirationDate, s.EvaluatedOn) == compliance.StatusExpired {
				expired = append(expired, fmt.Sprintf("%s (%s)", doc.DocumentName, *doc.ExpirationDate))
			}
		}
	}
	if len(expired) > 0 {
		return false, "Expired required documents: " + strings.Join(expired, ", ")
	}
	return true, "No required document has expired"
}

func evalApprovedSupplierLinked(s *Snapshot) (bool, string) {
	if len(s.Suppliers) == 0 {
		return false, "No supplier is linked"
	}
	if len(s.approvedSuppliers()) == 0 {
		return false, fmt.Sprintf("None of the %d linked suppliers is approved", len(s.Suppliers))
	}
	return true, "At least one approved supplier is linked"
}

func evalNumericLimitsRespected(s *Snapshot) (bool, string) {
	if len(s.Limits) == 0 {
		return true, "No specification limits apply"
	}

	var violations []string
	for _, limit := range s.Limits {
		value, ok := s.Record.Attributes[limit.Attribute]
		if !ok {
			violations = append(violations, limit.Attribute+" is not set")
			continue
		}
		if limit.Min != nil && value < *limit.Min {
			violations = append(violations, fmt.Sprintf("%s %g%s is below minimum %g", limit.Attribute, value, limit.Unit, *limit.Min))
		}
		if limit.Max != nil && value > *limit.Max {
			violations = append(violations, fmt.Sprintf("%s %g%s exceeds maximum %g", limit.Attribute, value, limit.Unit, *limit.Max))
		}
	}
	if len(violations) > 0 {
		return false, "Specification limits violated: " + strings.Join(violations, "; ")
	}
	return true, "All specification values are within limits"
}

func evalDocumentsNotExpiringSoon(s *Snapshot) (bool, string) {
	var soon []string
	for _, doc := range s.currentDocuments() {
		if compliance.Classify(doc.ExpirationDate, s.EvaluatedOn) != compliance.StatusExpiringSoon {
			continue
		}
		date, _ := compliance.ParseDate(*doc.ExpirationDate)
		soon = append(soon, fmt.Sprintf("%s expires in %d days", doc.DocumentName, compliance.DaysUntil(date, s.EvaluatedOn)))
	}
	if len(soon) > 0 {
		return false, strings.Join(soon, "; ")
	}
	return true, fmt.Sprintf("No document expires within the next %d days", compliance.ExpiringSoonWindowDays)
}

func evalPurchaseUnitConvertible(s *Snapshot) (bool, string) {
	base := strings.TrimSpace(s.Record.BaseUnit)
	var unconvertible []string
	for _, sup := range s.Suppliers {
		unit := strings.TrimSpace(sup.PurchaseUnit)
		if unit == "" || strings.EqualFold(unit, base) {
			continue
		}
		if base == "" || !hasConversion(s.Conversions, unit, base) {
			unconvertible = append(unconvertible, fmt.Sprintf("%s (%s)", sup.Name, unit))
		}
	}
	if len(unconvertible) > 0 {
		if base == "" {
			return false, "Base unit is not set for suppliers purchasing in: " + strings.Join(unconvertible, ", ")
		}
		return false, fmt.Sprintf("No conversion to %s for: %s", base, strings.Join(unconvertible, ", "))
	}
	return true, "All purchase units convert to the base unit"
}

func hasConversion(conversions []UnitConversion, from, to string) bool {
	for _, c := range conversions {
		if c.Factor <= 0 {
			continue
		}
		if strings.EqualFold(c.FromUnit, from) && strings.EqualFold(c.ToUnit, to) {
			return true
		}
		if strings.EqualFold(c.FromUnit, to) && strings.EqualFold(c.ToUnit, from) {
			return true
		}
	}
	return false
}

func evalPrimarySupplierDesignated(s *Snapshot) (bool, string) {
	primaries := 0
	for _, sup := range s.Suppliers {
		if sup.IsPrimary {
			primaries++
		}
	}
	switch {
	case len(s.Suppliers) == 0:
		return false, "No supplier is linked"
	case primaries == 0:
		return false, "No primary supplier is designated"
	case primaries > 1:
		return false, fmt.Sprintf("%d suppliers are marked primary", primaries)
	}
	return true, "Exactly one primary supplier is designated"
}

func evalSupplierContactComplete(s *Snapshot) (bool, string) {
	var missing []string
	if strings.TrimSpace(s.Record.ContactEmail) == "" {
		missing = append(missing, "contact email")
	}
	if strings.TrimSpace(s.Record.Country) == "" {
		missing = append(missing, "country")
	}
	if len(missing) > 0 {
		return false, "Missing supplier contact details: " + strings.Join(missing, ", ")
	}
	return true, "Supplier contact details are complete"
}

func evalCategoryAssigned(s *Snapshot) (bool, string) {
	if strings.TrimSpace(s.Record.Category) == "" {
		return false, "No category is assigned"
	}
	return true, "Category " + s.Record.Category + " is assigned"
}

func evalDescriptionPresent(s *Snapshot) (bool, string) {
	n := 0
	for _, r := range s.Record.Description {
		if !isSpace(r) {
			n++
		}
	}
	if n < MinDescriptionLength {
		return false, fmt.Sprintf("Description needs at least %d characters", MinDescriptionLength)
	}
	return true, "Description is present"
}

func isSpace(r rune) bool {
	return strings.TrimSpace(string(r)) == ""
}

func evalBackupSupplierAvailable(s *Snapshot) (bool, string) {
	approved := len(s.approvedSuppliers())
	if approved < 2 {
		return false, fmt.Sprintf("Only %d approved supplier(s); a backup supplier is recommended", approved)
	}
	return true, fmt.Sprintf("%d approved suppliers are linked", approved)
}

func evalOptionalDocumentsPresent(s *Snapshot) (bool, string) {
	missing := map[string]bool{}
	for _, req := range s.Requirements {
		if !req.Required && len(s.currentDocumentsOfType(req.DocumentType)) == 0 {
			missing[req.DocumentType] = true
		}
	}
	if len(missing) > 0 {
		types := make([]string, 0, len(missing))
		for t := range missing {
			types = append(types, t)
		}
		sort.Strings(types)
		return false, "Optional documents not on file: " + strings.Join(types, ", ")
	}
	return true, "All optional documents are on file"
}
