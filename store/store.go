// Package store holds the client-side view of the idea board: a single
// source of truth for the idea list within a session, kept eventually
// consistent with the remote store through a standing change subscription.
package store

import (
	"context"
	"sync"

	"github.com/yamoridev/ideaboard"
)

// Remote is the narrow contract over the remote idea store.
type Remote interface {
	Query(ctx context.Context) ([]ideaboard.Idea, error)
	Insert(ctx context.Context, input ideaboard.CreateIdeaInput) (ideaboard.Idea, error)
	Update(ctx context.Context, id string, fields ideaboard.UpdateIdeaInput) error
	UpdateStatus(ctx context.Context, id string, status ideaboard.IdeaStatus) error
	Delete(ctx context.Context, id string) error
	Subscribe(ctx context.Context, onChange func()) (Subscription, error)
}

// Subscription is a standing change-feed channel owned by the store.
type Subscription interface {
	Unsubscribe()
}

// IdentityProvider supplies the current authenticated identity. Nil means
// unauthenticated.
type IdentityProvider interface {
	CurrentIdentity() *ideaboard.Identity
}

// StaticIdentity is an IdentityProvider with a fixed identity.
type StaticIdentity struct {
	Identity *ideaboard.Identity
}

func (p StaticIdentity) CurrentIdentity() *ideaboard.Identity {
	return p.Identity
}

type SyncState int

const (
	StateLoading SyncState = iota
	StateReady
	StateError
)

func (s SyncState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

type OpKind string

const (
	OpFetch        OpKind = "fetch"
	OpCreate       OpKind = "create"
	OpUpdate       OpKind = "update"
	OpUpdateStatus OpKind = "update_status"
	OpDelete       OpKind = "delete"
)

// Observer receives store notifications. Callbacks run on the goroutine
// that triggered the change and must not call back into the store.
type Observer interface {
	IdeasReplaced(ideas []ideaboard.Idea)
	OperationSucceeded(op OpKind)
	OperationFailed(op OpKind, err error)
	SyncStateChanged(state SyncState)
}

// Store mediates all reads and writes against the remote store. The local
// idea sequence is exclusively owned by the store; mutations never splice
// it directly and instead converge through subscription-triggered
// refetches.
type Store struct {
	remote   Remote
	identity IdentityProvider

	mu         sync.Mutex
	ideas      []ideaboard.Idea
	state      SyncState
	issuedSeq  uint64
	appliedSeq uint64
	observers  []Observer
	sub        Subscription
}

func New(remote Remote, identity IdentityProvider) *Store {
	return &Store{
		remote:   remote,
		identity: identity,
		state:    StateLoading,
	}
}

// AddObserver attaches an observer for subsequent notifications.
func (s *Store) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Ideas returns a copy of the current local sequence, ordered by
// created_at descending.
func (s *Store) Ideas() []ideaboard.Idea {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ideaboard.Idea, len(s.ideas))
	copy(out, s.ideas)
	return out
}

// State returns the current sync state.
func (s *Store) State() SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Attach opens the standing change subscription and performs the initial
// full fetch. The subscription is opened first so a change racing the
// initial fetch still triggers a refetch. Calling Attach while already
// attached replaces the old subscription without leaking it.
func (s *Store) Attach(ctx context.Context) error {
	sub, err := s.remote.Subscribe(ctx, func() {
		go s.FetchAll(ctx)
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	s.sub = sub
	s.mu.Unlock()

	return s.FetchAll(ctx)
}

// Detach releases the change subscription. The local sequence stays
// available for reads.
func (s *Store) Detach() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}

// FetchAll replaces the local sequence with the remote store's current
// view. Concurrent fetches race freely; a monotonic sequence token ensures
// a stale response never overwrites a newer one. On failure the previous
// sequence is kept and the state moves to StateError.
func (s *Store) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	s.issuedSeq++
	seq := s.issuedSeq
	s.mu.Unlock()

	ideas, err := s.remote.Query(ctx)

	s.mu.Lock()
	if seq <= s.appliedSeq {
		// A newer fetch already applied its result.
		s.mu.Unlock()
		return nil
	}
	s.appliedSeq = seq

	if err != nil {
		stateChanged := s.state != StateError
		s.state = StateError
		observers := s.snapshotObservers()
		s.mu.Unlock()

		for _, o := range observers {
			o.OperationFailed(OpFetch, err)
			if stateChanged {
				o.SyncStateChanged(StateError)
			}
		}
		return err
	}

	s.ideas = ideas
	stateChanged := s.state != StateReady
	s.state = StateReady
	observers := s.snapshotObservers()
	snapshot := make([]ideaboard.Idea, len(ideas))
	copy(snapshot, ideas)
	s.mu.Unlock()

	for _, o := range observers {
		o.IdeasReplaced(snapshot)
		if stateChanged {
			o.SyncStateChanged(StateReady)
		}
	}
	return nil
}

// CreateIdea validates the input and issues an insert owned by the current
// identity. The new row is not spliced into local state; the
// subscription-triggered refetch converges the view.
func (s *Store) CreateIdea(ctx context.Context, input ideaboard.CreateIdeaInput) error {
	if s.identity.CurrentIdentity() == nil {
		return s.fail(OpCreate, ideaboard.ErrUnauthenticated)
	}
	if err := ideaboard.ValidateCreate(input); err != nil {
		return s.fail(OpCreate, err)
	}

	if _, err := s.remote.Insert(ctx, input); err != nil {
		return s.fail(OpCreate, err)
	}

	s.succeed(OpCreate)
	return nil
}

// UpdateIdea applies a partial edit of title/description/domain. Ownership
// is enforced by the remote store; the presentation layer additionally
// hides this operation from non-owners.
func (s *Store) UpdateIdea(ctx context.Context, id string, fields ideaboard.UpdateIdeaInput) error {
	if s.identity.CurrentIdentity() == nil {
		return s.fail(OpUpdate, ideaboard.ErrUnauthenticated)
	}
	if err := ideaboard.ValidateUpdate(fields); err != nil {
		return s.fail(OpUpdate, err)
	}

	if err := s.remote.Update(ctx, id, fields); err != nil {
		return s.fail(OpUpdate, err)
	}

	s.succeed(OpUpdate)
	return nil
}

// UpdateIdeaStatus moves an idea to any of the defined statuses.
func (s *Store) UpdateIdeaStatus(ctx context.Context, id string, status ideaboard.IdeaStatus) error {
	if s.identity.CurrentIdentity() == nil {
		return s.fail(OpUpdateStatus, ideaboard.ErrUnauthenticated)
	}
	if !status.Valid() {
		return s.fail(OpUpdateStatus, ideaboard.ValidationError{Field: "status", Reason: "unknown status"})
	}

	if err := s.remote.UpdateStatus(ctx, id, status); err != nil {
		return s.fail(OpUpdateStatus, err)
	}

	s.succeed(OpUpdateStatus)
	return nil
}

// DeleteIdea removes an idea permanently. Irreversible.
func (s *Store) DeleteIdea(ctx context.Context, id string) error {
	if s.identity.CurrentIdentity() == nil {
		return s.fail(OpDelete, ideaboard.ErrUnauthenticated)
	}

	if err := s.remote.Delete(ctx, id); err != nil {
		return s.fail(OpDelete, err)
	}

	s.succeed(OpDelete)
	return nil
}

// snapshotObservers must be called with the lock held.
func (s *Store) snapshotObservers() []Observer {
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	return observers
}

func (s *Store) fail(op OpKind, err error) error {
	s.mu.Lock()
	observers := s.snapshotObservers()
	s.mu.Unlock()

	for _, o := range observers {
		o.OperationFailed(op, err)
	}
	return err
}

func (s *Store) succeed(op OpKind) {
	s.mu.Lock()
	observers := s.snapshotObservers()
	s.mu.Unlock()

	for _, o := range observers {
		o.OperationSucceeded(op)
	}
}
