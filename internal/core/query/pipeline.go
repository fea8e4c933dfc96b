package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/artpar/pokedex/internal/core/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// =============================================================================
// Types
// =============================================================================

// SortOrder is the direction records are ordered by number.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder maps a raw query value to a SortOrder. Anything other than
// "desc" is ascending.
func ParseSortOrder(s string) SortOrder {
	if SortOrder(s) == SortDesc {
		return SortDesc
	}
	return SortAsc
}

// CaptureChecker reports whether a record id is currently captured.
type CaptureChecker interface {
	IsCaptured(id int) bool
}

// Params holds the inputs of one catalog query.
type Params struct {
	Type         string
	Search       string
	Sort         SortOrder
	Page         int
	Limit        int
	CapturedOnly bool
}

// Page is one page of query results plus its pagination metadata.
type Page struct {
	Data       []domain.Pokemon
	Total      int
	Page       int
	Limit      int
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

// =============================================================================
// Stages
// =============================================================================

// FilterByType keeps records whose type_one or type_two equals typeFilter,
// preserving order. An empty filter returns the input unchanged.
func FilterByType(records []domain.Pokemon, typeFilter string) []domain.Pokemon {
	if typeFilter == "" {
		return records
	}
	filtered := make([]domain.Pokemon, 0, len(records))
	for _, p := range records {
		if p.HasType(typeFilter) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// FilterCaptured keeps only records whose id is captured according to
// checker. A nil checker keeps nothing.
func FilterCaptured(records []domain.Pokemon, checker CaptureChecker) []domain.Pokemon {
	filtered := make([]domain.Pokemon, 0)
	if checker == nil {
		return filtered
	}
	for _, p := range records {
		if checker.IsCaptured(p.ID) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// Search keeps records whose name contains q, ignoring case. An empty query
// returns the input unchanged.
func Search(records []domain.Pokemon, q string) []domain.Pokemon {
	if q == "" {
		return records
	}
	// A Caser is stateful, so each call gets its own.
	folder := cases.Lower(language.Und)
	needle := folder.String(q)
	matched := make([]domain.Pokemon, 0, len(records))
	for _, p := range records {
		if strings.Contains(folder.String(p.Name), needle) {
			matched = append(matched, p)
		}
	}
	return matched
}

// Sort returns a copy of records stably sorted by number. Records sharing a
// number keep their relative input order in both directions.
func Sort(records []domain.Pokemon, order SortOrder) []domain.Pokemon {
	sorted := slices.Clone(records)
	if order == SortDesc {
		slices.SortStableFunc(sorted, func(a, b domain.Pokemon) int {
			return cmp.Compare(b.Number, a.Number)
		})
		return sorted
	}
	slices.SortStableFunc(sorted, func(a, b domain.Pokemon) int {
		return cmp.Compare(a.Number, b.Number)
	})
	return sorted
}

// Paginate slices out one page. page is clamped to a minimum of 1 but not to
// a maximum: a page past the last yields empty Data, and rejecting it is the
// caller's job. A limit below 1 is treated as 1.
func Paginate(records []domain.Pokemon, page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}

	total := len(records)
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	// Compare pages before multiplying so a huge page cannot overflow.
	data := []domain.Pokemon{}
	if page <= totalPages {
		start := (page - 1) * limit
		end := start + min(limit, total-start)
		data = records[start:end:end]
	}

	return Page{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// =============================================================================
// Composite
// =============================================================================

// Run applies filter -> search -> sort -> paginate in that fixed order.
// checker is only consulted when params.CapturedOnly is set.
func Run(records []domain.Pokemon, params Params, checker CaptureChecker) Page {
	filtered := FilterByType(records, params.Type)
	if params.CapturedOnly {
		filtered = FilterCaptured(filtered, checker)
	}
	filtered = Search(filtered, params.Search)
	sorted := Sort(filtered, params.Sort)
	return Paginate(sorted, params.Page, params.Limit)
}

// Types returns the sorted set of distinct types present in records.
func Types(records []domain.Pokemon) []string {
	seen := make(map[string]struct{})
	for _, p := range records {
		for _, t := range p.Types() {
			seen[t] = struct{}{}
		}
	}
	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// FindByID returns the first record with the given id.
func FindByID(records []domain.Pokemon, id int) (domain.Pokemon, bool) {
	for _, p := range records {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Pokemon{}, false
}
