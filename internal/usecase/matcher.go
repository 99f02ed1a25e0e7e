package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/opticount/backend/internal/domain"
)

// Confidence constants for the exact-match paths. The values are fixed
// product constants with no documented derivation; they are kept
// configurable rather than re-derived.
const (
	defaultDirectConfidence        = 100 // unique first-pass hit
	defaultDisambiguatedConfidence = 95  // unique only after context filtering
	defaultAmbiguousConfidence     = 80  // several survivors, human picks
	defaultFuzzyThreshold          = 85  // minimum similarity score kept
	defaultFuzzyPrefixLength       = 10
	defaultMaxExactCandidates      = 10
)

// MatcherConfig holds the tunable constants of the resolution algorithm.
// Zero values fall back to the defaults above.
type MatcherConfig struct {
	FuzzyThreshold          int
	FuzzyPrefixLength       int
	MaxExactCandidates      int
	DirectConfidence        int
	DisambiguatedConfidence int
	AmbiguousConfidence     int
	EnableDebugLogging      bool
}

// Matcher resolves scanned barcodes against a catalog gateway. It holds no
// state across calls and is safe for concurrent use; the gateway for the
// operator's current category is passed in per call.
type Matcher struct {
	fuzzyThreshold          int
	fuzzyPrefixLength       int
	maxExactCandidates      int
	directConfidence        int
	disambiguatedConfidence int
	ambiguousConfidence     int
	enableDebugLogging      bool
}

// NewMatcher creates a matcher with the given configuration.
func NewMatcher(config MatcherConfig) *Matcher {
	m := &Matcher{
		fuzzyThreshold:          config.FuzzyThreshold,
		fuzzyPrefixLength:       config.FuzzyPrefixLength,
		maxExactCandidates:      config.MaxExactCandidates,
		directConfidence:        config.DirectConfidence,
		disambiguatedConfidence: config.DisambiguatedConfidence,
		ambiguousConfidence:     config.AmbiguousConfidence,
		enableDebugLogging:      config.EnableDebugLogging,
	}

	if m.fuzzyThreshold <= 0 {
		m.fuzzyThreshold = defaultFuzzyThreshold
	}
	if m.fuzzyPrefixLength <= 0 {
		m.fuzzyPrefixLength = defaultFuzzyPrefixLength
	}
	if m.maxExactCandidates <= 0 {
		m.maxExactCandidates = defaultMaxExactCandidates
	}
	if m.directConfidence <= 0 {
		m.directConfidence = defaultDirectConfidence
	}
	if m.disambiguatedConfidence <= 0 {
		m.disambiguatedConfidence = defaultDisambiguatedConfidence
	}
	if m.ambiguousConfidence <= 0 {
		m.ambiguousConfidence = defaultAmbiguousConfidence
	}

	return m
}

// Match resolves a scanned code to a catalog entry.
//
// Algorithm:
//  1. Exact barcode lookup; a unique hit passing the context filter is a
//     direct match.
//  2. Several exact hits are narrowed by the context filter; a single
//     survivor is direct (lower confidence), several are ambiguous.
//  3. No exact hit falls back to a prefix lookup on the first 10 characters
//     scored by similarity ratio.
//
// "Nothing found" is a normal result, never an error. A gateway failure is
// returned as a non-nil error wrapping domain.ErrStoreUnavailable together
// with the zero not-found result, so the boundary can fail open without
// losing the distinction between "absent" and "could not ask the store".
func (m *Matcher) Match(
	ctx context.Context,
	gateway domain.CatalogGateway,
	code, contextBrand string,
	contextCategory domain.Category,
) (domain.MatchResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		// A bad scan still gets a result screen, never a hard failure.
		return domain.NotFoundResult(), nil
	}

	entries, err := gateway.ExactLookup(ctx, code)
	if err != nil {
		return domain.NotFoundResult(), fmt.Errorf("exact lookup for %q: %w", code, err)
	}

	if m.enableDebugLogging {
		log.Printf("[MATCH] %q: %d exact hits (brand=%q category=%q)",
			code, len(entries), contextBrand, contextCategory)
	}

	switch len(entries) {
	case 0:
		return m.fuzzyFallback(ctx, gateway, code, contextBrand, contextCategory)
	case 1:
		return m.resolveSingle(entries[0], contextBrand, contextCategory), nil
	default:
		return m.disambiguate(entries, contextBrand, contextCategory), nil
	}
}

// resolveSingle handles a unique exact hit. A context mismatch on a unique
// code means "no product visible under this context", not an error.
func (m *Matcher) resolveSingle(entry domain.CatalogEntry, contextBrand string, contextCategory domain.Category) domain.MatchResult {
	if !passesContext(entry, contextBrand, contextCategory) {
		return domain.NotFoundResult()
	}

	view := FormatProduct(entry)
	return domain.MatchResult{
		Status:     domain.MatchDirect,
		Confidence: m.directConfidence,
		Product:    &view,
	}
}

// disambiguate narrows several exact hits through the context filter,
// preserving the gateway's stable input order.
func (m *Matcher) disambiguate(entries []domain.CatalogEntry, contextBrand string, contextCategory domain.Category) domain.MatchResult {
	if len(entries) > m.maxExactCandidates {
		entries = entries[:m.maxExactCandidates]
	}

	var survivors []domain.CatalogEntry
	for _, entry := range entries {
		if passesContext(entry, contextBrand, contextCategory) {
			survivors = append(survivors, entry)
		}
	}

	switch len(survivors) {
	case 0:
		return domain.NotFoundResult()
	case 1:
		view := FormatProduct(survivors[0])
		return domain.MatchResult{
			Status:     domain.MatchDirect,
			Confidence: m.disambiguatedConfidence,
			Product:    &view,
		}
	default:
		views := make([]domain.ProductView, len(survivors))
		for i, entry := range survivors {
			views[i] = FormatProduct(entry)
		}
		return domain.MatchResult{
			Status:     domain.MatchAmbiguous,
			Confidence: m.ambiguousConfidence,
			Product:    &views[0],
			Candidates: views,
		}
	}
}

type scoredEntry struct {
	entry domain.CatalogEntry
	score int
}

// fuzzyFallback is only reached when the exact lookup found nothing. Codes
// shorter than the prefix length are too short for a reliable comparison
// and skip the store round trip entirely.
func (m *Matcher) fuzzyFallback(
	ctx context.Context,
	gateway domain.CatalogGateway,
	code, contextBrand string,
	contextCategory domain.Category,
) (domain.MatchResult, error) {
	if len(code) < m.fuzzyPrefixLength {
		return domain.NotFoundResult(), nil
	}

	prefix := code[:m.fuzzyPrefixLength]
	entries, err := gateway.PrefixLookup(ctx, prefix)
	if err != nil {
		return domain.NotFoundResult(), fmt.Errorf("prefix lookup for %q: %w", prefix, err)
	}
	if len(entries) == 0 {
		return domain.NotFoundResult(), nil
	}

	var scored []scoredEntry
	for _, entry := range entries {
		stored := entry.SupplierBarcode
		if len(stored) < m.fuzzyPrefixLength {
			continue
		}

		score := similarityRatio(prefix, stored[:m.fuzzyPrefixLength])
		if m.enableDebugLogging {
			log.Printf("[MATCH] fuzzy %q vs %q: score %d", prefix, stored, score)
		}
		if score < m.fuzzyThreshold {
			continue
		}
		scored = append(scored, scoredEntry{entry: entry, score: score})
	}

	if len(scored) == 0 {
		return domain.NotFoundResult(), nil
	}

	// Highest score first; ties keep the gateway's return order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	var survivors []scoredEntry
	for _, s := range scored {
		if passesContext(s.entry, contextBrand, contextCategory) {
			survivors = append(survivors, s)
		}
	}

	switch len(survivors) {
	case 0:
		return domain.NotFoundResult(), nil
	case 1:
		view := FormatProduct(survivors[0].entry)
		return domain.MatchResult{
			Status:     domain.MatchDirect,
			Confidence: survivors[0].score,
			Product:    &view,
		}, nil
	default:
		views := make([]domain.ProductView, len(survivors))
		for i, s := range survivors {
			views[i] = FormatProduct(s.entry)
		}
		return domain.MatchResult{
			Status:     domain.MatchAmbiguous,
			Confidence: survivors[0].score,
			Product:    &views[0],
			Candidates: views,
		}, nil
	}
}

// passesContext applies the operator's optional brand/category constraints.
// A brand constraint requires the entry's first linked brand to match;
// entries with no brand link fail it. Both constraints are conjunctive and
// an absent constraint imposes nothing.
func passesContext(entry domain.CatalogEntry, contextBrand string, contextCategory domain.Category) bool {
	if contextBrand != "" {
		if len(entry.BrandIDs) == 0 || entry.BrandIDs[0] != contextBrand {
			return false
		}
	}
	if contextCategory != "" && entry.Category != contextCategory {
		return false
	}
	return true
}

// FormatProduct converts a catalog entry to the flat view placed in match
// and search responses, applying the display defaults.
func FormatProduct(entry domain.CatalogEntry) domain.ProductView {
	status := entry.Status
	if status == "" {
		status = domain.EntryActive
	}

	return domain.ProductView{
		ID:          entry.ID,
		SKU:         entry.SKU,
		Category:    entry.Category,
		Brand:       entry.BrandName,
		ModelCode:   entry.ModelCode,
		ModelName:   entry.ModelName,
		ColorCode:   entry.ColorCode,
		ColorName:   entry.ColorName,
		BridgeWidth: entry.BridgeWidth,
		UnitPrice:   entry.UnitPrice,
		Status:      status,
	}
}
