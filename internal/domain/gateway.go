package domain

import (
	"context"
	"time"
)

// CatalogGateway abstracts the hosted table store backing one product
// category. Any store with exact-match, prefix and filtered-list query
// capability can implement it; the matcher depends only on this interface,
// never on store query-language details.
//
// Lookup methods return an empty slice for "nothing matched" and an error
// only for transport, auth or rate-limit failure.
type CatalogGateway interface {
	// ExactLookup returns entries whose supplier barcode equals code. For
	// all-digit codes the implementation must also try a numeric-typed
	// equality match, since the store may type the field as text or number.
	ExactLookup(ctx context.Context, code string) ([]CatalogEntry, error)

	// PrefixLookup returns entries whose supplier barcode starts with prefix.
	PrefixLookup(ctx context.Context, prefix string) ([]CatalogEntry, error)

	// SearchByTerm searches model code/name, color code, SKU and search
	// keywords case-insensitively, optionally narrowed by brand/category.
	SearchByTerm(ctx context.Context, term, contextBrand string, contextCategory Category) ([]CatalogEntry, error)

	// CreateEntry adds an unlisted product to the catalog with its derived SKU.
	CreateEntry(ctx context.Context, entry NewEntry) (CatalogEntry, error)

	CreateCountRecord(ctx context.Context, record NewCountRecord) (CountRecord, error)

	// AttachCountPhoto attaches an uploaded photo to an existing count record.
	AttachCountPhoto(ctx context.Context, recordID, filename, dataURL string) error

	// UpdateStockFromCount refreshes the aggregate stock record for an entry
	// after a count save. Callers treat failure as best-effort.
	UpdateStockFromCount(ctx context.Context, entryID string) error

	ListBrands(ctx context.Context) ([]Brand, error)

	TodayStats(ctx context.Context) (CountStats, error)

	HealthCheck(ctx context.Context) error
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
