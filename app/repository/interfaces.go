package repository

import (
	"context"

	"github.com/ManuelReschke/NewsDesk/app/models"
)

// NewsRepository defines the persistence contract for news posts.
// List returns the newest post first; Create puts the new post at the head.
type NewsRepository interface {
	List(ctx context.Context) ([]models.News, error)
	GetByID(ctx context.Context, id string) (*models.News, error)
	Create(ctx context.Context, news *models.News) error
	AppendComment(ctx context.Context, newsID string, comment models.Comment) error
	Count(ctx context.Context) (int64, error)
}

// QuestionRepository defines the persistence contract for submitted questions
type QuestionRepository interface {
	List(ctx context.Context) ([]models.Question, error)
	Create(ctx context.Context, question *models.Question) error
	Count(ctx context.Context) (int64, error)
}

// UserRepository defines the persistence contract for accounts. Create must
// reject a duplicate login atomically with ErrConflict.
type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Count(ctx context.Context) (int64, error)
}

// Repositories struct holds all repository instances of one store
type Repositories struct {
	Driver   string
	News     NewsRepository
	Question QuestionRepository
	User     UserRepository

	close func(ctx context.Context) error
}

// Close releases the underlying medium (connections, clients).
func (r *Repositories) Close(ctx context.Context) error {
	if r == nil || r.close == nil {
		return nil
	}
	return r.close(ctx)
}
