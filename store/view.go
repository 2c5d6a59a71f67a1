package store

import (
	"github.com/yamoridev/ideaboard"
)

// IdeaView is the read-only projection of an idea for a given identity,
// carrying the authorization-gated action set a view may expose. Only the
// owner may edit, delete, or change the status of an idea.
type IdeaView struct {
	ideaboard.Idea

	IsOwner         bool
	CanEdit         bool
	CanDelete       bool
	CanChangeStatus bool
	StatusLabel     string
}

// ProjectOne computes the view of a single idea for the given identity.
func ProjectOne(idea ideaboard.Idea, identity *ideaboard.Identity) IdeaView {
	isOwner := identity != nil && identity.ID == idea.OwnerID
	return IdeaView{
		Idea:            idea,
		IsOwner:         isOwner,
		CanEdit:         isOwner,
		CanDelete:       isOwner,
		CanChangeStatus: isOwner,
		StatusLabel:     idea.Status.Label(),
	}
}

// Project computes views for a whole sequence, preserving its order.
func Project(ideas []ideaboard.Idea, identity *ideaboard.Identity) []IdeaView {
	views := make([]IdeaView, 0, len(ideas))
	for _, idea := range ideas {
		views = append(views, ProjectOne(idea, identity))
	}
	return views
}

// Transitions lists the statuses reachable from current. Every status is
// reachable from every other.
func Transitions(current ideaboard.IdeaStatus) []ideaboard.IdeaStatus {
	out := make([]ideaboard.IdeaStatus, 0, 2)
	for _, s := range ideaboard.Statuses() {
		if s != current {
			out = append(out, s)
		}
	}
	return out
}
