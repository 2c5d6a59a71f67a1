package ideaboard

import (
	"time"
)

// IdeasTable is the logical table name shared by the server, the change
// feed and the client adapter.
const IdeasTable = "ideas"

type IdeaStatus string

const (
	StatusOpen       IdeaStatus = "open"
	StatusInProgress IdeaStatus = "in_progress"
	StatusCompleted  IdeaStatus = "completed"
)

// Valid reports whether s is one of the three defined statuses.
func (s IdeaStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Label returns the human-readable form of the status.
func (s IdeaStatus) Label() string {
	switch s {
	case StatusOpen:
		return "Open"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// Statuses lists every defined status. Any status is reachable from any
// other; there is no forward-only pipeline.
func Statuses() []IdeaStatus {
	return []IdeaStatus{StatusOpen, StatusInProgress, StatusCompleted}
}

// Idea is the persisted entity representing a user-submitted proposal.
type Idea struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"ownerID"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Domain      *string    `json:"domain,omitempty"`
	AuthorName  string     `json:"authorName"`
	Status      IdeaStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Identity is the authenticated principal performing operations.
// A nil *Identity means unauthenticated.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// CreateIdeaInput carries caller-supplied fields for a new idea. Owner and
// status are never caller-supplied: the server sets the owner from the
// authenticated identity and initializes status to open.
type CreateIdeaInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Domain      *string `json:"domain,omitempty"`
	AuthorName  string  `json:"authorName"`
}

// UpdateIdeaInput carries a partial edit. Nil fields are left untouched.
type UpdateIdeaInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Domain      *string `json:"domain,omitempty"`
}

type EventKind string

const (
	EventInsert EventKind = "insert"
	EventUpdate EventKind = "update"
	EventDelete EventKind = "delete"
)

// Event is a coarse change notification: something changed in a table.
// Subscribers are expected to re-fetch, not to patch rows from it.
type Event struct {
	Table string    `json:"table"`
	Kind  EventKind `json:"kind"`
	ID    string    `json:"id,omitempty"`
}

type RegisterRequest struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

type RegisterResponse struct {
	Token string `json:"token"`
}
