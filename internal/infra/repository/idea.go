package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yamoridev/ideaboard"
	"github.com/yamoridev/ideaboard/internal/domain"
	"github.com/yamoridev/ideaboard/internal/infra/database/models"
)

// listCacheExpiration bounds staleness if an invalidation is lost.
const listCacheExpiration = 10 // seconds

type IdeaRepository struct {
	db *gorm.DB
	mc *memcache.Client
}

// NewIdeaRepository wraps the idea table. mc may be nil to disable the
// list cache.
func NewIdeaRepository(db *gorm.DB, mc *memcache.Client) *IdeaRepository {
	return &IdeaRepository{db: db, mc: mc}
}

// ListAll returns every idea ordered by created_at descending, insertion
// order breaking ties.
func (r *IdeaRepository) ListAll(ctx context.Context) ([]ideaboard.Idea, error) {

	if r.mc != nil {
		item, err := r.mc.Get(domain.IdeaListCacheKey)
		if err == nil {
			var cached []ideaboard.Idea
			if err := json.Unmarshal(item.Value, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var rows []models.Idea
	err := r.db.WithContext(ctx).
		Order("created_at DESC, seq DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	ideas := make([]ideaboard.Idea, 0, len(rows))
	for _, row := range rows {
		ideas = append(ideas, toIdea(row))
	}

	if r.mc != nil {
		if serialized, err := json.Marshal(ideas); err == nil {
			err = r.mc.Set(&memcache.Item{
				Key:        domain.IdeaListCacheKey,
				Value:      serialized,
				Expiration: listCacheExpiration,
			})
			if err != nil {
				slog.Warn(
					"failed to cache idea list",
					slog.String("error", err.Error()),
					slog.String("module", "repository"),
				)
			}
		}
	}

	return ideas, nil
}

func (r *IdeaRepository) Get(ctx context.Context, id string) (ideaboard.Idea, error) {
	var row models.Idea
	err := r.db.WithContext(ctx).Take(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ideaboard.Idea{}, ideaboard.NotFoundError{Resource: "idea"}
		}
		return ideaboard.Idea{}, err
	}
	return toIdea(row), nil
}

// Create inserts a new row. The id is assigned here; created_at and seq
// come from the database.
func (r *IdeaRepository) Create(ctx context.Context, idea ideaboard.Idea) (ideaboard.Idea, error) {
	row := models.Idea{
		ID:          uuid.New().String(),
		OwnerID:     idea.OwnerID,
		Title:       idea.Title,
		Description: idea.Description,
		Domain:      idea.Domain,
		AuthorName:  idea.AuthorName,
		Status:      string(idea.Status),
	}

	err := r.db.WithContext(ctx).Create(&row).Error
	if err != nil {
		return ideaboard.Idea{}, err
	}

	r.invalidate()
	return toIdea(row), nil
}

// Update applies fields to the row with the given id, but only when it is
// owned by ownerID. This is the remote-side ownership enforcement the
// clients rely on.
func (r *IdeaRepository) Update(ctx context.Context, id string, ownerID string, fields map[string]any) (ideaboard.Idea, error) {

	result := r.db.WithContext(ctx).
		Model(&models.Idea{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(fields)
	if result.Error != nil {
		return ideaboard.Idea{}, result.Error
	}

	if result.RowsAffected == 0 {
		return ideaboard.Idea{}, r.mismatch(ctx, id)
	}

	r.invalidate()
	return r.Get(ctx, id)
}

// Delete removes the row permanently, only when owned by ownerID.
func (r *IdeaRepository) Delete(ctx context.Context, id string, ownerID string) error {

	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.Idea{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return r.mismatch(ctx, id)
	}

	r.invalidate()
	return nil
}

// mismatch distinguishes a missing row from an ownership mismatch after an
// owner-scoped mutation touched nothing.
func (r *IdeaRepository) mismatch(ctx context.Context, id string) error {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Idea{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ideaboard.NotFoundError{Resource: "idea"}
	}
	return ideaboard.ErrUnauthorized
}

func (r *IdeaRepository) invalidate() {
	if r.mc == nil {
		return
	}
	err := r.mc.Delete(domain.IdeaListCacheKey)
	if err != nil && err != memcache.ErrCacheMiss {
		slog.Warn(
			"failed to invalidate idea list cache",
			slog.String("error", err.Error()),
			slog.String("module", "repository"),
		)
	}
}

func toIdea(row models.Idea) ideaboard.Idea {
	return ideaboard.Idea{
		ID:          row.ID,
		OwnerID:     row.OwnerID,
		Title:       row.Title,
		Description: row.Description,
		Domain:      row.Domain,
		AuthorName:  row.AuthorName,
		Status:      ideaboard.IdeaStatus(row.Status),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
