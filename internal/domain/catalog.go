package domain

import "fmt"

// Category identifies which product catalog a record belongs to.
// Each category is backed by its own base in the hosted table store.
type Category string

const (
	CategoryOptical    Category = "OF"
	CategorySunglasses Category = "SG"
	CategoryLens       Category = "LN"
)

// AllCategories lists every catalog the server can be configured to serve.
var AllCategories = []Category{CategoryOptical, CategorySunglasses, CategoryLens}

// Valid reports whether the category is one of the known catalog codes.
func (c Category) Valid() bool {
	switch c {
	case CategoryOptical, CategorySunglasses, CategoryLens:
		return true
	}
	return false
}

// EntryStatus is the lifecycle state of a catalog entry.
type EntryStatus string

const (
	EntryActive   EntryStatus = "Active"
	EntryInactive EntryStatus = "Inactive"
)

// CatalogEntry is a product record from the catalog table.
// SKU is derived once at creation time and never independently mutated.
type CatalogEntry struct {
	ID              string      `json:"id"`
	SKU             string      `json:"sku"`
	Category        Category    `json:"category"`
	BrandIDs        []string    `json:"brandIds,omitempty"` // linked brand record IDs, first is primary
	BrandName       string      `json:"brandName,omitempty"`
	ModelCode       string      `json:"modelCode"`
	ModelName       string      `json:"modelName,omitempty"`
	ColorCode       string      `json:"colorCode"`
	ColorName       string      `json:"colorName,omitempty"`
	BridgeWidth     int         `json:"bridgeWidth"`
	UnitPrice       float64     `json:"unitPrice"`
	SupplierBarcode string      `json:"supplierBarcode"`
	Status          EntryStatus `json:"status"`
}

// NewEntry carries the fields needed to create an unlisted product.
type NewEntry struct {
	Category        Category
	BrandID         string
	ModelCode       string
	ModelName       string
	ColorCode       string
	ColorName       string
	BridgeWidth     int
	SupplierBarcode string
}

// BuildSKU derives the catalog SKU for a new entry. The result is stored
// at creation time and never recomputed afterwards.
// Format: {category}-{brandCode}-{modelCode}-{colorCode}-{bridgeWidth},
// e.g. "OF-EA-0EA1027-3001-57".
func BuildSKU(category Category, brandCode, modelCode, colorCode string, bridgeWidth int) string {
	return fmt.Sprintf("%s-%s-%s-%s-%d", category, brandCode, modelCode, colorCode, bridgeWidth)
}

// Brand is a reference-data record from the brands table.
type Brand struct {
	ID         string     `json:"id"`
	Code       string     `json:"code"`
	Name       string     `json:"name"`
	Categories []Category `json:"categories"`
}

// ProductView is the flat product shape handed to clients inside match
// and search responses.
type ProductView struct {
	ID          string      `json:"id"`
	SKU         string      `json:"sku"`
	Category    Category    `json:"category"`
	Brand       string      `json:"brand"`
	ModelCode   string      `json:"modelCode"`
	ModelName   string      `json:"modelName"`
	ColorCode   string      `json:"colorCode"`
	ColorName   string      `json:"colorName"`
	BridgeWidth int         `json:"bridgeWidth"`
	UnitPrice   float64     `json:"unitPrice"`
	Status      EntryStatus `json:"status"`
}

// MatchStatus classifies how a scanned code resolved.
type MatchStatus string

const (
	MatchDirect    MatchStatus = "direct"
	MatchAmbiguous MatchStatus = "ambiguous"
	MatchNotFound  MatchStatus = "not_found"
	// MatchManual marks count records created through manual search or
	// unlisted-product entry rather than the matcher.
	MatchManual MatchStatus = "manual"
)

// MatchResult is the outcome of one matcher invocation. It is built fresh
// per call and never persisted.
type MatchResult struct {
	Status     MatchStatus   `json:"status"`
	Confidence int           `json:"confidence"` // 0-100 heuristic, not a probability
	Product    *ProductView  `json:"product,omitempty"`
	Candidates []ProductView `json:"candidates,omitempty"` // populated only when ambiguous
}

// NotFoundResult is the zero outcome shared by every miss path.
func NotFoundResult() MatchResult {
	return MatchResult{Status: MatchNotFound, Confidence: 0}
}
