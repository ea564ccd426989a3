package s3backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/ManuelReschke/NewsDesk/app/models"
	"github.com/ManuelReschke/NewsDesk/app/repository"
)

// Snapshot kinds, one object per kind and run
const (
	KindNews      = "news"
	KindQuestions = "questions"
	KindUsers     = "users"
)

// ErrTargetNotEmpty is returned when a restore would mix a snapshot with
// records already in the store
var ErrTargetNotEmpty = errors.New("target collection is not empty")

// Uploader stores one object; *Client implements it
type Uploader interface {
	PutObject(ctx context.Context, objectKey string, body []byte, contentType string) (*UploadResult, error)
}

// Downloader reads one object; *Client implements it
type Downloader interface {
	GetObject(ctx context.Context, objectKey string) ([]byte, error)
}

// BackupAll exports every collection of repos as a JSON array and uploads
// it. It stops at the first failure.
func BackupAll(ctx context.Context, repos *repository.Repositories, up Uploader, cfg *Config, now time.Time) ([]*UploadResult, error) {
	exports := []struct {
		kind string
		load func(ctx context.Context) (interface{}, error)
	}{
		{KindNews, func(ctx context.Context) (interface{}, error) { return repos.News.List(ctx) }},
		{KindQuestions, func(ctx context.Context) (interface{}, error) { return repos.Question.List(ctx) }},
		{KindUsers, func(ctx context.Context) (interface{}, error) { return repos.User.List(ctx) }},
	}

	results := make([]*UploadResult, 0, len(exports))
	for _, e := range exports {
		items, err := e.load(ctx)
		if err != nil {
			return results, fmt.Errorf("export %s: %w", e.kind, err)
		}
		body, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return results, fmt.Errorf("encode %s: %w", e.kind, err)
		}
		res, err := up.PutObject(ctx, cfg.ObjectKey(e.kind, now), body, "application/json")
		if err != nil {
			return results, fmt.Errorf("upload %s: %w", e.kind, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// KindFromKey extracts the collection kind from a snapshot key such as
// backups/2024/03/07/news-1709854200.json
func KindFromKey(key string) (string, error) {
	base := strings.TrimSuffix(path.Base(key), ".json")
	i := strings.LastIndex(base, "-")
	if i <= 0 {
		return "", fmt.Errorf("not a snapshot key: %s", key)
	}
	switch kind := base[:i]; kind {
	case KindNews, KindQuestions, KindUsers:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown snapshot kind %q in %s", kind, key)
	}
}

// Restore downloads the snapshot stored under key and inserts its records
// through repos. The target collection must be empty. Records get new ids
// from the store; order, dates and comments are kept. It returns the number
// of restored records.
func Restore(ctx context.Context, repos *repository.Repositories, dl Downloader, key string) (int, error) {
	kind, err := KindFromKey(key)
	if err != nil {
		return 0, err
	}
	body, err := dl.GetObject(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("download %s: %w", key, err)
	}

	switch kind {
	case KindNews:
		return restoreNews(ctx, repos.News, body)
	case KindQuestions:
		return restoreQuestions(ctx, repos.Question, body)
	default:
		return restoreUsers(ctx, repos.User, body)
	}
}

type counter interface {
	Count(ctx context.Context) (int64, error)
}

func ensureEmpty(ctx context.Context, kind string, c counter) error {
	n, err := c.Count(ctx)
	if err != nil {
		return fmt.Errorf("count %s: %w", kind, err)
	}
	if n > 0 {
		return fmt.Errorf("restore %s: %w (%d records)", kind, ErrTargetNotEmpty, n)
	}
	return nil
}

// snapshots list news newest first; inserting oldest first rebuilds that order
func restoreNews(ctx context.Context, repo repository.NewsRepository, body []byte) (int, error) {
	var items []models.News
	if err := json.Unmarshal(body, &items); err != nil {
		return 0, fmt.Errorf("decode news snapshot: %w", err)
	}
	if err := ensureEmpty(ctx, KindNews, repo); err != nil {
		return 0, err
	}
	for i := len(items) - 1; i >= 0; i-- {
		n := items[i]
		if err := repo.Create(ctx, &n); err != nil {
			return len(items) - 1 - i, fmt.Errorf("restore news %q: %w", n.Title, err)
		}
	}
	return len(items), nil
}

func restoreQuestions(ctx context.Context, repo repository.QuestionRepository, body []byte) (int, error) {
	var items []models.Question
	if err := json.Unmarshal(body, &items); err != nil {
		return 0, fmt.Errorf("decode questions snapshot: %w", err)
	}
	if err := ensureEmpty(ctx, KindQuestions, repo); err != nil {
		return 0, err
	}
	for i := len(items) - 1; i >= 0; i-- {
		q := items[i]
		if err := repo.Create(ctx, &q); err != nil {
			return len(items) - 1 - i, fmt.Errorf("restore question: %w", err)
		}
	}
	return len(items), nil
}

// users are listed in registration order already
func restoreUsers(ctx context.Context, repo repository.UserRepository, body []byte) (int, error) {
	var items []models.User
	if err := json.Unmarshal(body, &items); err != nil {
		return 0, fmt.Errorf("decode users snapshot: %w", err)
	}
	if err := ensureEmpty(ctx, KindUsers, repo); err != nil {
		return 0, err
	}
	for i := range items {
		u := items[i]
		if err := repo.Create(ctx, &u); err != nil {
			return i, fmt.Errorf("restore user %q: %w", u.Login, err)
		}
	}
	return len(items), nil
}
