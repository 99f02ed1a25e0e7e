package usecase

import (
	"context"

	"github.com/opticount/backend/internal/domain"
)

// stubGateway implements domain.CatalogGateway with canned responses and
// call counters, so tests can pin down exactly which store queries a code
// path issues.
type stubGateway struct {
	exactEntries  []domain.CatalogEntry
	exactErr      error
	prefixEntries []domain.CatalogEntry
	prefixErr     error
	searchEntries []domain.CatalogEntry
	searchErr     error

	createdEntry    domain.CatalogEntry
	createEntryErr  error
	createdCount    domain.CountRecord
	createCountErr  error
	attachPhotoErr  error
	updateStockErr  error
	brands          []domain.Brand
	listBrandsErr   error
	stats           domain.CountStats
	statsErr        error

	exactCalls       int
	prefixCalls      int
	searchCalls      int
	createEntryCalls int
	createCountCalls int
	updateStockCalls int
	listBrandsCalls  int
	attachCalls      int

	lastPrefix      string
	lastCountRecord domain.NewCountRecord
	lastNewEntry    domain.NewEntry
	lastDataURL     string
	lastFilename    string
}

func (g *stubGateway) ExactLookup(ctx context.Context, code string) ([]domain.CatalogEntry, error) {
	g.exactCalls++
	return g.exactEntries, g.exactErr
}

func (g *stubGateway) PrefixLookup(ctx context.Context, prefix string) ([]domain.CatalogEntry, error) {
	g.prefixCalls++
	g.lastPrefix = prefix
	return g.prefixEntries, g.prefixErr
}

func (g *stubGateway) SearchByTerm(ctx context.Context, term, contextBrand string, contextCategory domain.Category) ([]domain.CatalogEntry, error) {
	g.searchCalls++
	return g.searchEntries, g.searchErr
}

func (g *stubGateway) CreateEntry(ctx context.Context, entry domain.NewEntry) (domain.CatalogEntry, error) {
	g.createEntryCalls++
	g.lastNewEntry = entry
	return g.createdEntry, g.createEntryErr
}

func (g *stubGateway) CreateCountRecord(ctx context.Context, record domain.NewCountRecord) (domain.CountRecord, error) {
	g.createCountCalls++
	g.lastCountRecord = record
	return g.createdCount, g.createCountErr
}

func (g *stubGateway) AttachCountPhoto(ctx context.Context, recordID, filename, dataURL string) error {
	g.attachCalls++
	g.lastFilename = filename
	g.lastDataURL = dataURL
	return g.attachPhotoErr
}

func (g *stubGateway) UpdateStockFromCount(ctx context.Context, entryID string) error {
	g.updateStockCalls++
	return g.updateStockErr
}

func (g *stubGateway) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	g.listBrandsCalls++
	return g.brands, g.listBrandsErr
}

func (g *stubGateway) TodayStats(ctx context.Context) (domain.CountStats, error) {
	return g.stats, g.statsErr
}

func (g *stubGateway) HealthCheck(ctx context.Context) error {
	return nil
}
