package airtable

import (
	"github.com/opticount/backend/internal/domain"
)

// The store returns untyped JSON fields; lookup columns in particular come
// back as single-element arrays. The helpers below normalize both shapes.

func stringField(fields map[string]any, name string) string {
	switch v := fields[name].(type) {
	case string:
		return v
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

func numberField(fields map[string]any, name string) float64 {
	switch v := fields[name].(type) {
	case float64:
		return v
	case []any:
		if len(v) > 0 {
			if n, ok := v[0].(float64); ok {
				return n
			}
		}
	}
	return 0
}

func intField(fields map[string]any, name string) int {
	return int(numberField(fields, name))
}

func stringListField(fields map[string]any, name string) []string {
	raw, ok := fields[name].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// statusToField maps a match status to its display value in the store.
func statusToField(status domain.MatchStatus) string {
	switch status {
	case domain.MatchDirect:
		return "Direct"
	case domain.MatchAmbiguous:
		return "Ambiguous"
	case domain.MatchNotFound:
		return "Not Found"
	case domain.MatchManual:
		return "Manual"
	}
	return string(status)
}

func statusFromField(value string) domain.MatchStatus {
	switch value {
	case "Direct":
		return domain.MatchDirect
	case "Ambiguous":
		return domain.MatchAmbiguous
	case "Not Found":
		return domain.MatchNotFound
	case "Manual":
		return domain.MatchManual
	}
	return domain.MatchStatus(value)
}

// entryFromRecord converts a catalog row to the domain entity, applying
// the entry defaults (price 0, status Active).
func entryFromRecord(rec record) domain.CatalogEntry {
	fields := rec.Fields

	status := domain.EntryStatus(stringField(fields, fieldStatus))
	if status == "" {
		status = domain.EntryActive
	}

	return domain.CatalogEntry{
		ID:              rec.ID,
		SKU:             stringField(fields, fieldSKU),
		Category:        domain.Category(stringField(fields, fieldCategory)),
		BrandIDs:        stringListField(fields, fieldBrand),
		BrandName:       stringField(fields, fieldBrandName),
		ModelCode:       stringField(fields, fieldModelCode),
		ModelName:       stringField(fields, fieldModelName),
		ColorCode:       stringField(fields, fieldColorCode),
		ColorName:       stringField(fields, fieldColorName),
		BridgeWidth:     intField(fields, fieldBridgeWidth),
		UnitPrice:       numberField(fields, fieldUnitPrice),
		SupplierBarcode: stringField(fields, fieldBarcode),
		Status:          status,
	}
}

func entriesFromRecords(records []record) []domain.CatalogEntry {
	entries := make([]domain.CatalogEntry, len(records))
	for i, rec := range records {
		entries[i] = entryFromRecord(rec)
	}
	return entries
}

func brandFromRecord(rec record) domain.Brand {
	fields := rec.Fields

	var categories []domain.Category
	for _, c := range stringListField(fields, fieldCategories) {
		categories = append(categories, domain.Category(c))
	}

	return domain.Brand{
		ID:         rec.ID,
		Code:       stringField(fields, fieldBrandCode),
		Name:       stringField(fields, fieldBrandName),
		Categories: categories,
	}
}

func countFromRecord(rec record) domain.CountRecord {
	fields := rec.Fields

	entryID := ""
	if links := stringListField(fields, fieldSKU); len(links) > 0 {
		entryID = links[0]
	}
	contextBrand := ""
	if links := stringListField(fields, fieldContextBrand); len(links) > 0 {
		contextBrand = links[0]
	}

	return domain.CountRecord{
		ID:               rec.ID,
		ScannedCode:      stringField(fields, fieldScannedBarcode),
		EntryID:          entryID,
		Status:           statusFromField(stringField(fields, fieldMatchStatus)),
		ContextBrand:     contextBrand,
		ContextCategory:  domain.Category(stringField(fields, fieldContextCat)),
		ManualSearchTerm: stringField(fields, fieldSearchTerm),
		Note:             stringField(fields, fieldNotes),
		ScannedQR:        stringField(fields, fieldScannedQR),
		CountedBy:        stringField(fields, fieldCountedBy),
		Timestamp:        rec.CreatedTime,
	}
}
