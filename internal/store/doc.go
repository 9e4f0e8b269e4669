// Package store holds the client-side state the views consume: the
// authenticated session, the user's library, and the monthly tracker being
// displayed.
//
// Each store is the single owner of its in-memory collection; consumers read
// through accessor copies and never mutate shared state directly. Every
// mutation goes to the backend first and local state is updated only from the
// server's returned representation, so no locally fabricated value survives a
// round trip. Errors are logged and propagated to the caller, never swallowed
// — with one deliberate exception: a month with no tracker is an expected
// state, not an error.
package store
