// Package models defines the core domain models for outings.
//
// # Models
//
//   - Event: a single outing instance (date, place, capacity, age range)
//   - Group: an invite-coded circle of parents sharing outings
//   - Comment: an append-only message under an event
//   - PushSubscription: a browser Web Push endpoint opted in for notifications
//   - RecurrenceSpec: how one submitted event expands into a series
//
// # Identity
//
// People are identified by display names (strings) typed by the client.
// There are no accounts: organizer checks compare names, and attendance is a
// list of names. This is a deliberately weak trust boundary.
//
// # Series
//
// A series is not stored on its own. All events sharing a non-empty SeriesID
// were created together by one recurrence expansion. After creation every
// instance is independent: editing or deleting one never touches siblings.
package models
