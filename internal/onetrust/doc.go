// Package onetrust implements the collector side of the report pipeline:
// exhaustive pagination-based retrieval of control implementation records
// from the OneTrust compliance API.
//
// The collector issues successive POST requests against a fixed paged
// search endpoint, filtering server-side by organization identifier, and
// flattens the pages into a single ordered record list. Pagination stops
// when the running page counter reaches the totalPages value reported by
// the server, or when the configured page ceiling is hit. A single failed
// page aborts the whole fetch with an *UpstreamError; there is no retry
// and no partial-page salvage.
package onetrust
