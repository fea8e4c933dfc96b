// Package query provides the pure catalog query pipeline.
//
// All functions are pure (no I/O, no side effects) and never modify their
// input slices; each stage returns a new slice.
//
// # Functions
//
//   - FilterByType: keep records whose primary or secondary type matches
//   - FilterCaptured: keep records currently marked captured
//   - Search: case-insensitive name substring match
//   - Sort: stable sort by number, ascending or descending
//   - Paginate: slice one page and compute pagination metadata
//   - Run: the composite filter -> search -> sort -> paginate
//   - Enrich: attach capture status and artwork URLs to a page of records
//
// # Usage
//
// The HTTP handlers (internal/shell/api) run the pipeline over the cached
// catalog and enrich only the returned page:
//
//	page := query.Run(records, params, captures)
//	page.Data = query.Enrich(page.Data, captures, images)
//
// The stage order of Run is part of the API contract: changing it changes
// which records land on a given page.
package query
