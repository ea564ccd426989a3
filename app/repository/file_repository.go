package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ManuelReschke/NewsDesk/app/models"
)

const (
	NewsFile      = "news.json"
	QuestionsFile = "questions.json"
	UsersFile     = "users.json"
)

// NewFileRepositories creates repositories that keep each kind in its own JSON
// file inside dir. Missing files are created empty.
func NewFileRepositories(dir string) (*Repositories, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}

	news, err := newJSONCollection[models.News](filepath.Join(dir, NewsFile))
	if err != nil {
		return nil, err
	}
	questions, err := newJSONCollection[models.Question](filepath.Join(dir, QuestionsFile))
	if err != nil {
		return nil, err
	}
	users, err := newJSONCollection[models.User](filepath.Join(dir, UsersFile))
	if err != nil {
		return nil, err
	}

	return &Repositories{
		Driver:   DriverFile,
		News:     &newsFileRepository{col: news, now: time.Now},
		Question: &questionFileRepository{col: questions, now: time.Now},
		User:     &userFileRepository{col: users, now: time.Now},
	}, nil
}

// newsFileRepository implements the NewsRepository interface on a JSON file
type newsFileRepository struct {
	col *jsonCollection[models.News]
	now func() time.Time
}

// List returns all news in file order (newest first)
func (r *newsFileRepository) List(ctx context.Context) ([]models.News, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := r.col.load()
	if err != nil {
		return nil, unavailable("list news", err)
	}
	return items, nil
}

// GetByID retrieves a news post by its textual id
func (r *newsFileRepository) GetByID(ctx context.Context, id string) (*models.News, error) {
	items, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, ErrNotFound
}

// Create assigns a timestamp id and puts the post at the head of the file
func (r *newsFileRepository) Create(ctx context.Context, news *models.News) error {
	return r.col.update(ctx, func(items []models.News) ([]models.News, error) {
		ids := make([]string, len(items))
		for i := range items {
			ids[i] = items[i].ID
		}
		news.ID = nextTimestampID(r.now(), ids)
		if news.Comments == nil {
			news.Comments = []models.Comment{}
		}
		return append([]models.News{*news}, items...), nil
	})
}

// AppendComment adds the comment to the end of the post's comment list
func (r *newsFileRepository) AppendComment(ctx context.Context, newsID string, comment models.Comment) error {
	return r.col.update(ctx, func(items []models.News) ([]models.News, error) {
		for i := range items {
			if items[i].ID != newsID {
				continue
			}
			items[i].Comments = append(items[i].Comments, comment)
			return items, nil
		}
		return nil, ErrNotFound
	})
}

func (r *newsFileRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := r.col.count()
	if err != nil {
		return 0, unavailable("count news", err)
	}
	return n, nil
}

// questionFileRepository implements the QuestionRepository interface on a JSON file
type questionFileRepository struct {
	col *jsonCollection[models.Question]
	now func() time.Time
}

func (r *questionFileRepository) List(ctx context.Context) ([]models.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := r.col.load()
	if err != nil {
		return nil, unavailable("list questions", err)
	}
	return items, nil
}

func (r *questionFileRepository) Create(ctx context.Context, question *models.Question) error {
	return r.col.update(ctx, func(items []models.Question) ([]models.Question, error) {
		ids := make([]string, len(items))
		for i := range items {
			ids[i] = items[i].ID
		}
		question.ID = nextTimestampID(r.now(), ids)
		return append([]models.Question{*question}, items...), nil
	})
}

func (r *questionFileRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := r.col.count()
	if err != nil {
		return 0, unavailable("count questions", err)
	}
	return n, nil
}

// userFileRepository implements the UserRepository interface on a JSON file
type userFileRepository struct {
	col *jsonCollection[models.User]
	now func() time.Time
}

// List returns all users in registration order
func (r *userFileRepository) List(ctx context.Context) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := r.col.load()
	if err != nil {
		return nil, unavailable("list users", err)
	}
	return items, nil
}

// GetByLogin retrieves a user by exact, case-sensitive login
func (r *userFileRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := r.col.load()
	if err != nil {
		return nil, unavailable("get user", err)
	}
	for i := range items {
		if items[i].Login == login {
			return &items[i], nil
		}
	}
	return nil, ErrNotFound
}

// Create appends the user unless the login is taken. The check and the write
// happen inside the same critical section.
func (r *userFileRepository) Create(ctx context.Context, user *models.User) error {
	return r.col.update(ctx, func(items []models.User) ([]models.User, error) {
		ids := make([]string, len(items))
		for i := range items {
			if items[i].Login == user.Login {
				return nil, ErrConflict
			}
			ids[i] = items[i].ID
		}
		user.ID = nextTimestampID(r.now(), ids)
		return append(items, *user), nil
	})
}

// Count returns the number of stored users
func (r *userFileRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := r.col.count()
	if err != nil {
		return 0, unavailable("count users", err)
	}
	return n, nil
}
