package links

import (
	"time"

	"github.com/google/uuid"
)

// Link is a saved bookmark. UserID and SavedAt never change after creation.
type Link struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	URL         string
	Description *string
	Category    *string
	SavedAt     time.Time
}

// User maps an identity-provider subject to the internal owner id.
type User struct {
	ID         uuid.UUID
	ExternalID string
	Name       string
	Email      string
	CreatedAt  time.Time
}

// LinkPatch carries the fields to change; nil fields are left as they are.
type LinkPatch struct {
	Title       *string
	URL         *string
	Description *string
	Category    *string
}

// ListFilter narrows FindByOwner. Zero value lists everything.
type ListFilter struct {
	Category string // exact match
	Query    string // case-insensitive substring of title, url or description
}

// NewLink is the caller-supplied part of a link.
type NewLink struct {
	Title       string
	URL         string
	Description *string
	Category    *string
}
