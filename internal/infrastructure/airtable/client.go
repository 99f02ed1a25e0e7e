package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/opticount/backend/internal/domain"
	"golang.org/x/time/rate"
)

// Table names inside each category base.
const (
	tableCatalog = "Product_Catalog"
	tableCounts  = "Count_Records"
	tableBrands  = "Brands"
	tableStock   = "Stock_Items"
)

// Field names shared by the formula builders and the mapper.
const (
	fieldBarcode        = "Supplier Barcode"
	fieldSKU            = "SKU"
	fieldCategory       = "Category"
	fieldBrand          = "Brand"
	fieldBrandName      = "Brand Name"
	fieldModelCode      = "Model Code"
	fieldModelName      = "Model Name"
	fieldColorCode      = "Color Code"
	fieldColorName      = "Color Name"
	fieldBridgeWidth    = "Bridge Width"
	fieldUnitPrice      = "Unit Price"
	fieldStatus         = "Status"
	fieldSearchKeywords = "Search Keywords"

	fieldScannedBarcode = "Scanned Barcode"
	fieldMatchStatus    = "Match Status"
	fieldContextBrand   = "Context Brand"
	fieldContextCat     = "Context Category"
	fieldSearchTerm     = "Manual Search Term"
	fieldNotes          = "Notes"
	fieldScannedQR      = "Scanned QR"
	fieldCountedBy      = "Counted By"
	fieldPhoto          = "Photo"
	fieldTimestamp      = "Timestamp"

	fieldBrandCode  = "Brand Code"
	fieldCategories = "Categories"

	fieldStockEntryID  = "Entry ID"
	fieldStockQuantity = "Counted Quantity"
)

// Client talks to one category's base in the hosted table store. It
// implements domain.CatalogGateway.
type Client struct {
	httpClient  *http.Client
	token       string
	baseURL     string
	baseID      string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a store client for one base.
func NewClient(token, baseURL, baseID string) *Client {
	// The store enforces 5 requests per second per base.
	limiter := rate.NewLimiter(rate.Limit(5), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		token:       token,
		baseURL:     baseURL,
		baseID:      baseID,
		rateLimiter: limiter,
	}
}

// SetDebug enables request/response logging.
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// record is the store's wire shape for a single row.
type record struct {
	ID          string         `json:"id"`
	CreatedTime time.Time      `json:"createdTime,omitempty"`
	Fields      map[string]any `json:"fields"`
}

type recordList struct {
	Records []record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

// exponentialBackoff returns the sleep before the next retry attempt.
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

func (c *Client) tableURL(table string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(table))
}

// doRequest executes one store request with auth, rate limiting and up to
// three attempts for transient failures (transport errors, 429, 5xx).
func (c *Client) doRequest(ctx context.Context, method, reqURL string, body []byte) ([]byte, int, error) {
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if attempt > 1 {
			time.Sleep(exponentialBackoff(attempt - 1))
		}
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, 0, fmt.Errorf("rate limiter: %w", err)
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if c.debug {
				log.Printf("[AIRTABLE] %s %s failed (attempt %d): %v", method, reqURL, attempt, err)
			}
			lastErr = fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
			continue
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			if c.debug {
				log.Printf("[AIRTABLE] %s %s status %d (attempt %d)", method, reqURL, resp.StatusCode, attempt)
			}
			lastErr = fmt.Errorf("%w: status %d", domain.ErrStoreUnavailable, resp.StatusCode)
			continue
		}

		return respBody, resp.StatusCode, nil
	}

	return nil, 0, lastErr
}

// listRecords fetches every page matching params from a table.
func (c *Client) listRecords(ctx context.Context, table string, params url.Values) ([]record, error) {
	var records []record
	offset := ""

	for {
		pageParams := url.Values{}
		for k, vs := range params {
			pageParams[k] = vs
		}
		if offset != "" {
			pageParams.Set("offset", offset)
		}

		reqURL := c.tableURL(table)
		if encoded := pageParams.Encode(); encoded != "" {
			reqURL += "?" + encoded
		}

		body, status, err := c.doRequest(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrStoreUnavailable, status, string(body))
		}

		var page recordList
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}

		records = append(records, page.Records...)

		if page.Offset == "" || params.Get("maxRecords") != "" {
			return records, nil
		}
		offset = page.Offset
	}
}

func (c *Client) getRecord(ctx context.Context, table, id string) (record, error) {
	body, status, err := c.doRequest(ctx, http.MethodGet, c.tableURL(table)+"/"+id, nil)
	if err != nil {
		return record{}, err
	}
	if status == http.StatusNotFound {
		return record{}, fmt.Errorf("%w: %s/%s", domain.ErrRecordNotFound, table, id)
	}
	if status != http.StatusOK {
		return record{}, fmt.Errorf("%w: status %d, body: %s", domain.ErrStoreUnavailable, status, string(body))
	}

	var rec record
	if err := json.Unmarshal(body, &rec); err != nil {
		return record{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return rec, nil
}

func (c *Client) writeRecord(ctx context.Context, method, reqURL string, fields map[string]any) (record, error) {
	payload, err := json.Marshal(map[string]any{"fields": fields})
	if err != nil {
		return record{}, fmt.Errorf("failed to encode fields: %w", err)
	}

	body, status, err := c.doRequest(ctx, method, reqURL, payload)
	if err != nil {
		return record{}, err
	}
	if status == http.StatusNotFound {
		return record{}, fmt.Errorf("%w: %s", domain.ErrRecordNotFound, reqURL)
	}
	if status != http.StatusOK {
		return record{}, fmt.Errorf("%w: status %d, body: %s", domain.ErrStoreUnavailable, status, string(body))
	}

	var rec record
	if err := json.Unmarshal(body, &rec); err != nil {
		return record{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return rec, nil
}

func (c *Client) createRecord(ctx context.Context, table string, fields map[string]any) (record, error) {
	return c.writeRecord(ctx, http.MethodPost, c.tableURL(table), fields)
}

func (c *Client) updateRecord(ctx context.Context, table, id string, fields map[string]any) (record, error) {
	return c.writeRecord(ctx, http.MethodPatch, c.tableURL(table)+"/"+id, fields)
}

// escapeFormulaString escapes single quotes for use inside a formula literal.
func escapeFormulaString(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// ExactLookup returns entries whose supplier barcode equals code. The
// barcode column may be typed as text or number depending on how the
// catalog was imported, so all-digit codes are matched both ways.
func (c *Client) ExactLookup(ctx context.Context, code string) ([]domain.CatalogEntry, error) {
	escaped := escapeFormulaString(code)
	formula := fmt.Sprintf("{%s} = '%s'", fieldBarcode, escaped)
	if isAllDigits(code) {
		formula = fmt.Sprintf("OR({%s} = '%s', {%s} = %s)", fieldBarcode, escaped, fieldBarcode, code)
	}

	params := url.Values{}
	params.Set("filterByFormula", formula)

	records, err := c.listRecords(ctx, tableCatalog, params)
	if err != nil {
		return nil, err
	}

	if c.debug {
		log.Printf("[AIRTABLE] exact lookup %q: %d records", code, len(records))
	}
	return entriesFromRecords(records), nil
}

// PrefixLookup returns entries whose supplier barcode starts with prefix.
func (c *Client) PrefixLookup(ctx context.Context, prefix string) ([]domain.CatalogEntry, error) {
	formula := fmt.Sprintf("FIND('%s', {%s}) = 1", escapeFormulaString(prefix), fieldBarcode)

	params := url.Values{}
	params.Set("filterByFormula", formula)

	records, err := c.listRecords(ctx, tableCatalog, params)
	if err != nil {
		return nil, err
	}

	if c.debug {
		log.Printf("[AIRTABLE] prefix lookup %q: %d records", prefix, len(records))
	}
	return entriesFromRecords(records), nil
}

// SearchByTerm searches the catalog's text columns case-insensitively,
// optionally narrowed by brand and category, capped at 20 hits.
func (c *Client) SearchByTerm(ctx context.Context, term, contextBrand string, contextCategory domain.Category) ([]domain.CatalogEntry, error) {
	termLower := escapeFormulaString(strings.ToLower(term))

	// SEARCH errors on empty targets, so each column is guarded with IF.
	searchColumns := []string{fieldModelCode, fieldModelName, fieldColorCode, fieldSKU, fieldSearchKeywords}
	clauses := make([]string, len(searchColumns))
	for i, col := range searchColumns {
		clauses[i] = fmt.Sprintf("IF({%s}, SEARCH('%s', LOWER({%s})), 0)", col, termLower, col)
	}

	conditions := []string{"OR(" + strings.Join(clauses, ", ") + ")"}
	if contextBrand != "" {
		conditions = append(conditions, fmt.Sprintf("{%s} = '%s'", fieldBrand, escapeFormulaString(contextBrand)))
	}
	if contextCategory != "" {
		conditions = append(conditions, fmt.Sprintf("{%s} = '%s'", fieldCategory, contextCategory))
	}

	params := url.Values{}
	params.Set("filterByFormula", "AND("+strings.Join(conditions, ", ")+")")
	params.Set("maxRecords", "20")

	records, err := c.listRecords(ctx, tableCatalog, params)
	if err != nil {
		return nil, err
	}
	return entriesFromRecords(records), nil
}

// CreateEntry adds an unlisted product. The SKU is derived here, once,
// from the brand's short code and the entry attributes.
func (c *Client) CreateEntry(ctx context.Context, entry domain.NewEntry) (domain.CatalogEntry, error) {
	brandRec, err := c.getRecord(ctx, tableBrands, entry.BrandID)
	if err != nil {
		return domain.CatalogEntry{}, fmt.Errorf("resolve brand %s: %w", entry.BrandID, err)
	}
	brandCode := stringField(brandRec.Fields, fieldBrandCode)
	if brandCode == "" {
		brandCode = "XX"
	}

	sku := domain.BuildSKU(entry.Category, brandCode, entry.ModelCode, entry.ColorCode, entry.BridgeWidth)

	fields := map[string]any{
		fieldSKU:         sku,
		fieldCategory:    string(entry.Category),
		fieldBrand:       []string{entry.BrandID},
		fieldModelCode:   entry.ModelCode,
		fieldColorCode:   entry.ColorCode,
		fieldBridgeWidth: entry.BridgeWidth,
		fieldBarcode:     entry.SupplierBarcode,
		fieldStatus:      string(domain.EntryActive),
	}
	if entry.ModelName != "" {
		fields[fieldModelName] = entry.ModelName
	}
	if entry.ColorName != "" {
		fields[fieldColorName] = entry.ColorName
	}

	rec, err := c.createRecord(ctx, tableCatalog, fields)
	if err != nil {
		return domain.CatalogEntry{}, err
	}

	if c.debug {
		log.Printf("[AIRTABLE] created entry %s (%s)", rec.ID, sku)
	}
	return entryFromRecord(rec), nil
}

// CreateCountRecord persists one count. Empty optional fields are omitted
// so the store does not reject untyped blanks.
func (c *Client) CreateCountRecord(ctx context.Context, count domain.NewCountRecord) (domain.CountRecord, error) {
	fields := map[string]any{
		fieldScannedBarcode: count.ScannedCode,
		fieldMatchStatus:    statusToField(count.Status),
	}
	if count.EntryID != "" {
		fields[fieldSKU] = []string{count.EntryID}
	}
	if count.ContextBrand != "" {
		fields[fieldContextBrand] = []string{count.ContextBrand}
	}
	if count.ContextCategory != "" {
		fields[fieldContextCat] = string(count.ContextCategory)
	}
	if count.ManualSearchTerm != "" {
		fields[fieldSearchTerm] = count.ManualSearchTerm
	}
	if count.Note != "" {
		fields[fieldNotes] = count.Note
	}
	if count.ScannedQR != "" {
		fields[fieldScannedQR] = count.ScannedQR
	}
	if count.CountedBy != "" {
		fields[fieldCountedBy] = count.CountedBy
	}

	rec, err := c.createRecord(ctx, tableCounts, fields)
	if err != nil {
		return domain.CountRecord{}, err
	}
	return countFromRecord(rec), nil
}

// AttachCountPhoto attaches an uploaded photo to an existing count record.
func (c *Client) AttachCountPhoto(ctx context.Context, recordID, filename, dataURL string) error {
	fields := map[string]any{
		fieldPhoto: []map[string]string{
			{"url": dataURL, "filename": filename},
		},
	}
	_, err := c.updateRecord(ctx, tableCounts, recordID, fields)
	return err
}

// UpdateStockFromCount bumps the counted quantity on the stock item for an
// entry, creating the item on first count. Callers treat failure as
// best-effort.
func (c *Client) UpdateStockFromCount(ctx context.Context, entryID string) error {
	params := url.Values{}
	params.Set("filterByFormula", fmt.Sprintf("{%s} = '%s'", fieldStockEntryID, escapeFormulaString(entryID)))
	params.Set("maxRecords", "1")

	records, err := c.listRecords(ctx, tableStock, params)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		_, err := c.createRecord(ctx, tableStock, map[string]any{
			fieldSKU:           []string{entryID},
			fieldStockQuantity: 1,
		})
		return err
	}

	counted := intField(records[0].Fields, fieldStockQuantity)
	_, err = c.updateRecord(ctx, tableStock, records[0].ID, map[string]any{
		fieldStockQuantity: counted + 1,
	})
	return err
}

// ListBrands returns the brands that carry a name, sorted by name.
func (c *Client) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	records, err := c.listRecords(ctx, tableBrands, url.Values{})
	if err != nil {
		return nil, err
	}

	var brands []domain.Brand
	for _, rec := range records {
		brand := brandFromRecord(rec)
		if brand.Name == "" {
			continue
		}
		brands = append(brands, brand)
	}

	sort.Slice(brands, func(i, j int) bool {
		return brands[i].Name < brands[j].Name
	})
	return brands, nil
}

// TodayStats aggregates today's count records by match status.
func (c *Client) TodayStats(ctx context.Context) (domain.CountStats, error) {
	today := time.Now().Format("2006-01-02")

	params := url.Values{}
	params.Set("filterByFormula", fmt.Sprintf("IS_SAME({%s}, '%s', 'day')", fieldTimestamp, today))

	records, err := c.listRecords(ctx, tableCounts, params)
	if err != nil {
		return domain.CountStats{}, err
	}

	stats := domain.CountStats{Total: len(records)}
	for _, rec := range records {
		switch statusFromField(stringField(rec.Fields, fieldMatchStatus)) {
		case domain.MatchDirect:
			stats.Direct++
		case domain.MatchAmbiguous:
			stats.Ambiguous++
		case domain.MatchNotFound:
			stats.NotFound++
		}
	}
	if stats.Total > 0 {
		stats.DirectRate = math.Round(float64(stats.Direct)/float64(stats.Total)*1000) / 10
	}
	return stats, nil
}

// HealthCheck runs the cheapest possible query against the base.
func (c *Client) HealthCheck(ctx context.Context) error {
	params := url.Values{}
	params.Set("maxRecords", "1")
	_, err := c.listRecords(ctx, tableBrands, params)
	return err
}
