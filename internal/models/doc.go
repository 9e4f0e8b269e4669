// Package models defines the data model for the BookBuddy client.
//
// The package contains two categories of types:
//
// 1. Server-owned entities, mirrored as the backend serializes them:
//   - [User] : account identity
//   - [BookCatalog] : canonical book metadata shared across users
//   - [UserBook] : a user's association to a catalog entry plus its shelf
//   - [ReviewResponse] : a user's review of a book
//   - [MonthlyTracker] / [MonthlyTrackerBook] : per-month reading goals and their tracked books
//   - [TrackerProgress] : server-computed goal progress
//   - [SearchResponse] / [BookSearchResult] : paginated catalog search results
//
// 2. Request payloads ([LoginRequest], [UserRequest], [AddBookFromSearchRequest],
// [ReviewRequest], [CreateTrackerRequest], ...) carrying validator tags so bad
// input is rejected with field-level messages before any network call.
//
// The client holds transient, possibly-stale copies of server entities; every
// mutation is reconciled against the server's returned representation.
package models
