package http

import (
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opticount/backend/internal/domain"
	"github.com/opticount/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers. It owns the explicit
// category→gateway map: one long-lived store client per product category,
// built by the composition root and passed into the services per call.
type Handler struct {
	gateways map[domain.Category]domain.CatalogGateway
	matcher  *usecase.Matcher
	counts   *usecase.CountService
	catalog  *usecase.CatalogService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	gateways map[domain.Category]domain.CatalogGateway,
	matcher *usecase.Matcher,
	counts *usecase.CountService,
	catalog *usecase.CatalogService,
) *Handler {
	return &Handler{
		gateways: gateways,
		matcher:  matcher,
		counts:   counts,
		catalog:  catalog,
	}
}

// gatewayFor resolves the request's category selector to its gateway. An
// empty selector falls back to the optical catalog.
func (h *Handler) gatewayFor(category string) (domain.CatalogGateway, domain.Category, error) {
	cat := domain.Category(category)
	if cat == "" {
		cat = domain.CategoryOptical
	}
	gateway, ok := h.gateways[cat]
	if !ok {
		return nil, cat, domain.ErrUnknownCategory
	}
	return gateway, cat, nil
}

// HealthCheck reports per-category store reachability.
func (h *Handler) HealthCheck(c *gin.Context) {
	categories := make(map[string]bool, len(h.gateways))
	allHealthy := true

	for category, gateway := range h.gateways {
		err := gateway.HealthCheck(c.Request.Context())
		categories[string(category)] = err == nil
		if err != nil {
			log.Printf("[HTTP] health check failed for %s: %v", category, err)
			allHealthy = false
		}
	}

	status := "healthy"
	if !allHealthy {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     status,
		"service":    "opticount-backend",
		"version":    "2.0.0",
		"categories": categories,
		"timestamp":  time.Now().Format(time.RFC3339),
	})
}

type matchRequest struct {
	Barcode         string `json:"barcode" binding:"required"`
	Category        string `json:"category"`
	ContextBrand    string `json:"context_brand"`
	ContextCategory string `json:"context_category"`
}

type matchResponse struct {
	Found      bool                 `json:"found"`
	Status     domain.MatchStatus   `json:"status"`
	Confidence int                  `json:"confidence"`
	Product    *domain.ProductView  `json:"product"`
	Candidates []domain.ProductView `json:"candidates"`
}

// MatchBarcode resolves a scanned code without saving anything.
// A store failure degrades to the not-found shape with logging: the scan
// operator always gets a result screen.
func (h *Handler) MatchBarcode(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "barcode is required"})
		return
	}

	gateway, _, err := h.gatewayFor(req.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category: " + req.Category})
		return
	}

	result, err := h.matcher.Match(
		c.Request.Context(),
		gateway,
		req.Barcode,
		req.ContextBrand,
		domain.Category(req.ContextCategory),
	)
	if err != nil {
		log.Printf("[HTTP] match degraded to not found for %q: %v", req.Barcode, err)
		result = domain.NotFoundResult()
	}

	candidates := result.Candidates
	if candidates == nil {
		candidates = []domain.ProductView{}
	}

	c.JSON(http.StatusOK, matchResponse{
		Found:      result.Status != domain.MatchNotFound,
		Status:     result.Status,
		Confidence: result.Confidence,
		Product:    result.Product,
		Candidates: candidates,
	})
}

type saveCountRequest struct {
	Barcode          string `json:"barcode" binding:"required"`
	MatchStatus      string `json:"match_status" binding:"required"`
	Category         string `json:"category"`
	EntryID          string `json:"entry_id"`
	ContextBrand     string `json:"context_brand"`
	ContextCategory  string `json:"context_category"`
	ManualSearchTerm string `json:"manual_search_term"`
	Note             string `json:"note"`
	ScannedQR        string `json:"scanned_qr"`
	CountedBy        string `json:"counted_by"`
}

// SaveCount persists one count record.
func (h *Handler) SaveCount(c *gin.Context) {
	var req saveCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "barcode and match_status are required"})
		return
	}

	gateway, _, err := h.gatewayFor(req.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category: " + req.Category})
		return
	}

	status := domain.MatchStatus(req.MatchStatus)
	switch status {
	case domain.MatchDirect, domain.MatchAmbiguous, domain.MatchNotFound, domain.MatchManual:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown match_status: " + req.MatchStatus})
		return
	}

	record, err := h.counts.SaveCount(c.Request.Context(), gateway, domain.NewCountRecord{
		ScannedCode:      req.Barcode,
		EntryID:          req.EntryID,
		Status:           status,
		ContextBrand:     req.ContextBrand,
		ContextCategory:  domain.Category(req.ContextCategory),
		ManualSearchTerm: req.ManualSearchTerm,
		Note:             req.Note,
		ScannedQR:        req.ScannedQR,
		CountedBy:        req.CountedBy,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"record_id": record.ID,
	})
}

// UploadCountPhoto attaches a photo to an existing count record.
func (h *Handler) UploadCountPhoto(c *gin.Context) {
	recordID := c.Param("id")

	gateway, _, err := h.gatewayFor(c.PostForm("category"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read photo"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read photo"})
		return
	}

	if err := h.counts.AttachPhoto(c.Request.Context(), gateway, recordID, fileHeader.Filename, data); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type unlistedProductRequest struct {
	Category        string `json:"category"`
	Barcode         string `json:"barcode" binding:"required"`
	ProductCategory string `json:"product_category"`
	BrandID         string `json:"brand_id" binding:"required"`
	ModelCode       string `json:"model_code" binding:"required"`
	ModelName       string `json:"model_name"`
	ColorCode       string `json:"color_code" binding:"required"`
	ColorName       string `json:"color_name"`
	BridgeWidth     int    `json:"bridge_width" binding:"required"`
	ScannedQR       string `json:"scanned_qr"`
	CountedBy       string `json:"counted_by"`
	Note            string `json:"note"`
}

// SaveUnlistedProduct creates a catalog entry for a product missing from
// the list and records a manual count for it in one action.
func (h *Handler) SaveUnlistedProduct(c *gin.Context) {
	var req unlistedProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}

	gateway, workspaceCat, err := h.gatewayFor(req.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category: " + req.Category})
		return
	}

	productCategory := domain.Category(req.ProductCategory)
	if productCategory == "" {
		productCategory = workspaceCat
	}

	result, err := h.counts.SaveUnlistedProduct(
		c.Request.Context(),
		gateway,
		domain.NewEntry{
			Category:        productCategory,
			BrandID:         req.BrandID,
			ModelCode:       req.ModelCode,
			ModelName:       req.ModelName,
			ColorCode:       req.ColorCode,
			ColorName:       req.ColorName,
			BridgeWidth:     req.BridgeWidth,
			SupplierBarcode: req.Barcode,
		},
		domain.NewCountRecord{
			ScannedQR: req.ScannedQR,
			CountedBy: req.CountedBy,
			Note:      req.Note,
		},
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"sku":             result.SKU,
		"entry_id":        result.EntryID,
		"count_record_id": result.CountRecordID,
	})
}

type manualSearchRequest struct {
	Term            string `json:"term" binding:"required"`
	Category        string `json:"category"`
	ContextBrand    string `json:"context_brand"`
	ContextCategory string `json:"context_category"`
}

// ManualSearch searches the catalog by model code, name, color code or SKU.
func (h *Handler) ManualSearch(c *gin.Context) {
	var req manualSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "term is required"})
		return
	}

	gateway, _, err := h.gatewayFor(req.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category: " + req.Category})
		return
	}

	products, err := h.catalog.SearchByTerm(
		c.Request.Context(),
		gateway,
		req.Term,
		req.ContextBrand,
		domain.Category(req.ContextCategory),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	if products == nil {
		products = []domain.ProductView{}
	}
	c.JSON(http.StatusOK, gin.H{
		"found":    len(products) > 0,
		"count":    len(products),
		"products": products,
	})
}

// Brands lists the brands for the context picker, cached per category.
func (h *Handler) Brands(c *gin.Context) {
	gateway, category, err := h.gatewayFor(c.Query("category"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category: " + c.Query("category")})
		return
	}

	brands, err := h.catalog.Brands(c.Request.Context(), gateway, category)
	if err != nil {
		respondError(c, err)
		return
	}

	if brands == nil {
		brands = []domain.Brand{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"brands":  brands,
	})
}

// Stats reports today's counting totals for one category.
func (h *Handler) Stats(c *gin.Context) {
	gateway, _, err := h.gatewayFor(c.Query("category"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category: " + c.Query("category")})
		return
	}

	stats, err := h.counts.TodayStats(c.Request.Context(), gateway)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}

// respondError maps usecase errors to HTTP responses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrStoreUnavailable):
		log.Printf("[HTTP] store failure: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog store unavailable"})
	default:
		log.Printf("[HTTP] internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
