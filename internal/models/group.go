package models

// Group represents an invite-coded circle of parents.
// Events attached to a group are only listed for people who joined it.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Ecole Jaures", "Parc crew").
	Name string

	// Code is the human-shareable join token. Fixed length, unique.
	Code string

	// CreatedBy is the display name of the parent who created the group.
	// Only this name may delete the group.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}
