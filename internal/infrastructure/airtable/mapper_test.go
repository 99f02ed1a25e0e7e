package airtable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/opticount/backend/internal/domain"
)

func TestStringField(t *testing.T) {
	fields := map[string]any{
		"plain":  "value",
		"lookup": []any{"first", "second"},
		"number": float64(42),
		"empty":  []any{},
	}

	// Lookup columns come back as arrays; only the first element counts.
	assert.Equal(t, "value", stringField(fields, "plain"))
	assert.Equal(t, "first", stringField(fields, "lookup"))
	assert.Equal(t, "", stringField(fields, "number"))
	assert.Equal(t, "", stringField(fields, "empty"))
	assert.Equal(t, "", stringField(fields, "missing"))
}

func TestNumberField(t *testing.T) {
	fields := map[string]any{
		"plain":  float64(129.9),
		"lookup": []any{float64(57)},
		"text":   "not a number",
	}

	assert.Equal(t, 129.9, numberField(fields, "plain"))
	assert.Equal(t, float64(57), numberField(fields, "lookup"))
	assert.Equal(t, float64(0), numberField(fields, "text"))
	assert.Equal(t, float64(0), numberField(fields, "missing"))
	assert.Equal(t, 57, intField(fields, "lookup"))
}

func TestStringListField(t *testing.T) {
	fields := map[string]any{
		"links": []any{"recA", "recB"},
		"mixed": []any{"recA", float64(1)},
		"plain": "recA",
	}

	assert.Equal(t, []string{"recA", "recB"}, stringListField(fields, "links"))
	assert.Equal(t, []string{"recA"}, stringListField(fields, "mixed"))
	assert.Nil(t, stringListField(fields, "plain"))
	assert.Nil(t, stringListField(fields, "missing"))
}

func TestStatusRoundTrip(t *testing.T) {
	statuses := []domain.MatchStatus{
		domain.MatchDirect,
		domain.MatchAmbiguous,
		domain.MatchNotFound,
		domain.MatchManual,
	}

	for _, status := range statuses {
		assert.Equal(t, status, statusFromField(statusToField(status)))
	}

	assert.Equal(t, "Not Found", statusToField(domain.MatchNotFound))
	assert.Equal(t, domain.MatchStatus("Unknown"), statusFromField("Unknown"))
}

func TestEntryFromRecord(t *testing.T) {
	rec := record{
		ID: "rec1",
		Fields: map[string]any{
			"SKU":              "OF-RB-2140-901-50",
			"Category":         "OF",
			"Brand":            []any{"recBrand1"},
			"Brand Name":       []any{"Ray-Ban"},
			"Model Code":       "2140",
			"Model Name":       "Wayfarer",
			"Color Code":       "901",
			"Bridge Width":     float64(50),
			"Unit Price":       float64(129.9),
			"Supplier Barcode": "8056597412261",
			"Status":           "Inactive",
		},
	}

	entry := entryFromRecord(rec)

	assert.Equal(t, "rec1", entry.ID)
	assert.Equal(t, "OF-RB-2140-901-50", entry.SKU)
	assert.Equal(t, domain.CategoryOptical, entry.Category)
	assert.Equal(t, []string{"recBrand1"}, entry.BrandIDs)
	assert.Equal(t, "Ray-Ban", entry.BrandName)
	assert.Equal(t, "Wayfarer", entry.ModelName)
	assert.Equal(t, 50, entry.BridgeWidth)
	assert.Equal(t, 129.9, entry.UnitPrice)
	assert.Equal(t, domain.EntryInactive, entry.Status)
}

func TestEntryFromRecord_Defaults(t *testing.T) {
	entry := entryFromRecord(record{ID: "rec1", Fields: map[string]any{}})

	assert.Equal(t, domain.EntryActive, entry.Status, "missing status defaults to active")
	assert.Equal(t, float64(0), entry.UnitPrice)
	assert.Empty(t, entry.BrandIDs)
}

func TestBrandFromRecord(t *testing.T) {
	brand := brandFromRecord(record{
		ID: "recBrand1",
		Fields: map[string]any{
			"Brand Code": "RB",
			"Brand Name": "Ray-Ban",
			"Categories": []any{"OF", "SG"},
		},
	})

	assert.Equal(t, "recBrand1", brand.ID)
	assert.Equal(t, "RB", brand.Code)
	assert.Equal(t, "Ray-Ban", brand.Name)
	assert.Equal(t, []domain.Category{domain.CategoryOptical, domain.CategorySunglasses}, brand.Categories)
}

func TestCountFromRecord(t *testing.T) {
	created := time.Date(2026, 9, 1, 9, 30, 0, 0, time.UTC)
	count := countFromRecord(record{
		ID:          "recCount1",
		CreatedTime: created,
		Fields: map[string]any{
			"Scanned Barcode":  "8056597412261",
			"SKU":              []any{"rec1"},
			"Match Status":     "Direct",
			"Context Brand":    []any{"recBrand1"},
			"Context Category": "OF",
			"Counted By":       "aysel",
		},
	})

	assert.Equal(t, "recCount1", count.ID)
	assert.Equal(t, "8056597412261", count.ScannedCode)
	assert.Equal(t, "rec1", count.EntryID)
	assert.Equal(t, domain.MatchDirect, count.Status)
	assert.Equal(t, "recBrand1", count.ContextBrand)
	assert.Equal(t, domain.CategoryOptical, count.ContextCategory)
	assert.Equal(t, "aysel", count.CountedBy)
	assert.Equal(t, created, count.Timestamp)
}
