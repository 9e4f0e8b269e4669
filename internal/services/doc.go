// Package services implements typed call wrappers over the BookBuddy REST API.
//
// [Client] is the single HTTP gateway: it owns the base URL, the request
// timeout, correlation IDs, and the one place where HTTP status codes are
// translated into the sentinel errors of internal/shared. Everything above it
// ([UserService], [CatalogService], [UserBookService], [ReviewService],
// [SearchService], [TrackerService]) is parameter shaping over Client calls —
// no state, no retries, no status-code inspection.
//
// Absence that is an expected outcome (a month with no tracker) is reported as
// a value, not an error: see [TrackerService.ByMonth].
package services
