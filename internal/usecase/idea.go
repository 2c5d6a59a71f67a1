package usecase

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/yamoridev/ideaboard"
)

var tracer = otel.Tracer("idea")

// IdeaRepository defines storage operations for ideas. Update and Delete
// are owner-scoped: the repository rejects mutations by non-owners.
type IdeaRepository interface {
	ListAll(ctx context.Context) ([]ideaboard.Idea, error)
	Get(ctx context.Context, id string) (ideaboard.Idea, error)
	Create(ctx context.Context, idea ideaboard.Idea) (ideaboard.Idea, error)
	Update(ctx context.Context, id string, ownerID string, fields map[string]any) (ideaboard.Idea, error)
	Delete(ctx context.Context, id string, ownerID string) error
}

// SignalPublisher broadcasts change events after committed mutations.
type SignalPublisher interface {
	Publish(ctx context.Context, event ideaboard.Event) error
}

type IdeaUsecase struct {
	repo   IdeaRepository
	signal SignalPublisher
}

func NewIdeaUsecase(repo IdeaRepository, signal SignalPublisher) *IdeaUsecase {
	return &IdeaUsecase{repo: repo, signal: signal}
}

func (uc *IdeaUsecase) List(ctx context.Context) ([]ideaboard.Idea, error) {
	return uc.repo.ListAll(ctx)
}

func (uc *IdeaUsecase) Get(ctx context.Context, id string) (ideaboard.Idea, error) {
	return uc.repo.Get(ctx, id)
}

// Create validates the input and inserts a new idea owned by the requester.
// Status always starts at open; neither owner nor status is caller-supplied.
func (uc *IdeaUsecase) Create(ctx context.Context, requester ideaboard.Identity, input ideaboard.CreateIdeaInput) (ideaboard.Idea, error) {
	ctx, span := tracer.Start(ctx, "Idea.Usecase.Create")
	defer span.End()

	if err := ideaboard.ValidateCreate(input); err != nil {
		span.RecordError(err)
		return ideaboard.Idea{}, err
	}

	idea := ideaboard.Idea{
		OwnerID:     requester.ID,
		Title:       input.Title,
		Description: input.Description,
		Domain:      input.Domain,
		AuthorName:  input.AuthorName,
		Status:      ideaboard.StatusOpen,
	}

	created, err := uc.repo.Create(ctx, idea)
	if err != nil {
		span.RecordError(err)
		return ideaboard.Idea{}, err
	}

	uc.broadcast(ctx, ideaboard.EventInsert, created.ID)
	return created, nil
}

// UpdateFields applies a partial edit of title/description/domain.
func (uc *IdeaUsecase) UpdateFields(ctx context.Context, requester ideaboard.Identity, id string, input ideaboard.UpdateIdeaInput) (ideaboard.Idea, error) {
	ctx, span := tracer.Start(ctx, "Idea.Usecase.UpdateFields")
	defer span.End()

	if err := ideaboard.ValidateUpdate(input); err != nil {
		span.RecordError(err)
		return ideaboard.Idea{}, err
	}

	fields := map[string]any{}
	if input.Title != nil {
		fields["title"] = *input.Title
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Domain != nil {
		fields["domain"] = *input.Domain
	}
	if len(fields) == 0 {
		return uc.repo.Get(ctx, id)
	}

	updated, err := uc.repo.Update(ctx, id, requester.ID, fields)
	if err != nil {
		span.RecordError(err)
		return ideaboard.Idea{}, err
	}

	uc.broadcast(ctx, ideaboard.EventUpdate, id)
	return updated, nil
}

// UpdateStatus moves an idea to any of the defined statuses. There is no
// ordering constraint between statuses.
func (uc *IdeaUsecase) UpdateStatus(ctx context.Context, requester ideaboard.Identity, id string, status ideaboard.IdeaStatus) (ideaboard.Idea, error) {
	ctx, span := tracer.Start(ctx, "Idea.Usecase.UpdateStatus")
	defer span.End()

	if !status.Valid() {
		err := ideaboard.ValidationError{Field: "status", Reason: "unknown status"}
		span.RecordError(err)
		return ideaboard.Idea{}, err
	}

	updated, err := uc.repo.Update(ctx, id, requester.ID, map[string]any{"status": string(status)})
	if err != nil {
		span.RecordError(err)
		return ideaboard.Idea{}, err
	}

	uc.broadcast(ctx, ideaboard.EventUpdate, id)
	return updated, nil
}

// Delete removes an idea permanently.
func (uc *IdeaUsecase) Delete(ctx context.Context, requester ideaboard.Identity, id string) error {
	ctx, span := tracer.Start(ctx, "Idea.Usecase.Delete")
	defer span.End()

	err := uc.repo.Delete(ctx, id, requester.ID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	uc.broadcast(ctx, ideaboard.EventDelete, id)
	return nil
}

// broadcast publishes a change event. The mutation is already committed at
// this point, so a publish failure is logged rather than returned.
func (uc *IdeaUsecase) broadcast(ctx context.Context, kind ideaboard.EventKind, id string) {
	err := uc.signal.Publish(ctx, ideaboard.Event{
		Table: ideaboard.IdeasTable,
		Kind:  kind,
		ID:    id,
	})
	if err != nil {
		slog.ErrorContext(
			ctx, "failed to publish change event",
			slog.String("error", err.Error()),
			slog.String("module", "usecase"),
		)
	}
}
