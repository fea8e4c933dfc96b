package query

import (
	"strings"

	"github.com/artpar/pokedex/internal/core/domain"
)

// =============================================================================
// Artwork URLs
// =============================================================================

const (
	DefaultImageBaseURL   = "https://img.pokemondb.net/artwork/large/"
	DefaultImageExtension = ".jpg"
)

// ImageTemplate builds artwork URLs of the form {BaseURL}/{slug}{Extension}.
// The URL is never checked for existence.
type ImageTemplate struct {
	BaseURL   string
	Extension string
}

// DefaultImageTemplate returns the template pointing at the public artwork CDN.
func DefaultImageTemplate() ImageTemplate {
	return ImageTemplate{
		BaseURL:   DefaultImageBaseURL,
		Extension: DefaultImageExtension,
	}
}

// URL returns the artwork URL for a display name.
//
// Example:
//
//	DefaultImageTemplate().URL("Venusaur Mega Venusaur")
//	// returns "https://img.pokemondb.net/artwork/large/venusaur-mega.jpg"
func (t ImageTemplate) URL(name string) string {
	return strings.TrimRight(t.BaseURL, "/") + "/" + domain.NormalizeName(name) + t.Extension
}

// =============================================================================
// Enrichment
// =============================================================================

// Enrich returns copies of records with Captured set from checker and
// ImageURL derived from the name when the record has none. It is meant for a
// single page of results, not the whole catalog.
func Enrich(records []domain.Pokemon, checker CaptureChecker, images ImageTemplate) []domain.Pokemon {
	enriched := make([]domain.Pokemon, 0, len(records))
	for _, p := range records {
		if checker != nil {
			p.Captured = checker.IsCaptured(p.ID)
		}
		if p.ImageURL == nil {
			url := images.URL(p.Name)
			p.ImageURL = &url
		}
		enriched = append(enriched, p)
	}
	return enriched
}
