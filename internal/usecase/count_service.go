package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"github.com/opticount/backend/internal/domain"
)

// CountService persists scan counts and unlisted products. Like the
// matcher it is stateless; the gateway for the operator's category is
// passed in per call.
type CountService struct{}

// NewCountService creates a new count service.
func NewCountService() *CountService {
	return &CountService{}
}

// SaveCount creates one count record for a scan-and-save action. When the
// count links a catalog entry, the aggregate stock record for that entry is
// refreshed as an independent best-effort side effect: its failure is
// logged and never fails the save.
func (s *CountService) SaveCount(ctx context.Context, gateway domain.CatalogGateway, record domain.NewCountRecord) (domain.CountRecord, error) {
	record.ScannedCode = strings.TrimSpace(record.ScannedCode)
	if record.ScannedCode == "" || record.Status == "" {
		return domain.CountRecord{}, fmt.Errorf("%w: scanned code and match status are required", domain.ErrInvalidRequest)
	}

	created, err := gateway.CreateCountRecord(ctx, record)
	if err != nil {
		return domain.CountRecord{}, fmt.Errorf("create count record: %w", err)
	}

	if record.EntryID != "" {
		if err := gateway.UpdateStockFromCount(ctx, record.EntryID); err != nil {
			log.Printf("[COUNT] stock update failed for entry %s (count %s saved): %v",
				record.EntryID, created.ID, err)
		}
	}

	return created, nil
}

// UnlistedProductResult reports the records created for a product that was
// scanned but missing from the catalog.
type UnlistedProductResult struct {
	SKU           string `json:"sku"`
	EntryID       string `json:"entryId"`
	CountRecordID string `json:"countRecordId"`
}

// SaveUnlistedProduct adds a missing product to the catalog and records a
// manual count for it in one action. The entry keeps the scanned barcode so
// the next scan of the same product resolves directly.
func (s *CountService) SaveUnlistedProduct(
	ctx context.Context,
	gateway domain.CatalogGateway,
	entry domain.NewEntry,
	count domain.NewCountRecord,
) (UnlistedProductResult, error) {
	entry.SupplierBarcode = strings.TrimSpace(entry.SupplierBarcode)
	entry.ModelCode = strings.TrimSpace(entry.ModelCode)
	entry.ColorCode = strings.TrimSpace(entry.ColorCode)

	if entry.SupplierBarcode == "" || entry.BrandID == "" ||
		entry.ModelCode == "" || entry.ColorCode == "" || entry.BridgeWidth <= 0 {
		return UnlistedProductResult{}, fmt.Errorf("%w: barcode, brand, model code, color code and bridge width are required", domain.ErrInvalidRequest)
	}
	if !entry.Category.Valid() {
		return UnlistedProductResult{}, fmt.Errorf("%w: category %q", domain.ErrInvalidRequest, entry.Category)
	}

	created, err := gateway.CreateEntry(ctx, entry)
	if err != nil {
		return UnlistedProductResult{}, fmt.Errorf("create catalog entry: %w", err)
	}

	count.ScannedCode = entry.SupplierBarcode
	count.EntryID = created.ID
	count.Status = domain.MatchManual

	countRecord, err := gateway.CreateCountRecord(ctx, count)
	if err != nil {
		// The catalog entry exists at this point; surface that in the error
		// so the operator does not re-create it.
		return UnlistedProductResult{}, fmt.Errorf("entry %s created but count record failed: %w", created.ID, err)
	}

	return UnlistedProductResult{
		SKU:           created.SKU,
		EntryID:       created.ID,
		CountRecordID: countRecord.ID,
	}, nil
}

// AttachPhoto attaches an uploaded photo to an existing count record. The
// image travels to the store as a base64 data URL attachment.
func (s *CountService) AttachPhoto(ctx context.Context, gateway domain.CatalogGateway, recordID, filename string, data []byte) error {
	if recordID == "" || len(data) == 0 {
		return fmt.Errorf("%w: record ID and photo data are required", domain.ErrInvalidRequest)
	}

	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)
	if err := gateway.AttachCountPhoto(ctx, recordID, filename, dataURL); err != nil {
		return fmt.Errorf("attach photo to %s: %w", recordID, err)
	}
	return nil
}

// TodayStats returns today's counting totals for one category.
func (s *CountService) TodayStats(ctx context.Context, gateway domain.CatalogGateway) (domain.CountStats, error) {
	stats, err := gateway.TodayStats(ctx)
	if err != nil {
		return domain.CountStats{}, fmt.Errorf("today stats: %w", err)
	}
	return stats, nil
}
