package store

import (
	"testing"

	"github.com/yamoridev/ideaboard"
)

func TestProjectOwnershipGating(t *testing.T) {
	owner := &ideaboard.Identity{ID: "u1", DisplayName: "Alex"}
	visitor := &ideaboard.Identity{ID: "u2", DisplayName: "Bo"}

	ideas := []ideaboard.Idea{
		{ID: "a", OwnerID: "u1", Status: ideaboard.StatusOpen},
		{ID: "b", OwnerID: "u2", Status: ideaboard.StatusInProgress},
	}

	views := Project(ideas, owner)
	if !views[0].IsOwner || !views[0].CanEdit || !views[0].CanDelete || !views[0].CanChangeStatus {
		t.Fatalf("owner should see the full action set: %+v", views[0])
	}
	if views[1].IsOwner || views[1].CanEdit || views[1].CanDelete || views[1].CanChangeStatus {
		t.Fatalf("non-owner must see no actions: %+v", views[1])
	}

	views = Project(ideas, visitor)
	if views[0].IsOwner || !views[1].IsOwner {
		t.Fatalf("ownership flipped incorrectly")
	}
}

func TestProjectUnauthenticated(t *testing.T) {
	ideas := []ideaboard.Idea{
		{ID: "a", OwnerID: "u1", Status: ideaboard.StatusCompleted},
	}

	views := Project(ideas, nil)
	if views[0].IsOwner || views[0].CanEdit || views[0].CanDelete || views[0].CanChangeStatus {
		t.Fatalf("anonymous viewer must see no actions")
	}
	if views[0].StatusLabel != "Completed" {
		t.Fatalf("expected label Completed got %s", views[0].StatusLabel)
	}
}

func TestTransitionsCompleteGraph(t *testing.T) {
	for _, from := range ideaboard.Statuses() {
		targets := Transitions(from)
		if len(targets) != 2 {
			t.Fatalf("expected 2 targets from %s got %d", from, len(targets))
		}
		for _, to := range targets {
			if to == from {
				t.Fatalf("transition to self offered from %s", from)
			}
		}
	}
}
