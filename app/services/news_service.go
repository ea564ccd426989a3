package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/NewsDesk/app/models"
	"github.com/ManuelReschke/NewsDesk/app/repository"
)

// AdminDisplayName is shown as the author of comments written by an admin.
const AdminDisplayName = "Адміністратор"

// ImageNormalizer turns a submitted image into the form that gets stored. An
// error means the image cannot be kept.
type ImageNormalizer interface {
	Normalize(ctx context.Context, image string) (string, error)
}

// CreateResult describes a published news post
type CreateResult struct {
	ID           string
	ImageDropped bool
}

// NewsService implements the news feed: listing, publishing and commenting.
type NewsService struct {
	repo   repository.NewsRepository
	images ImageNormalizer
	now    func() time.Time

	// AfterWrite, when set, runs after every successful write.
	AfterWrite func(ctx context.Context)
}

// NewNewsService creates a news service. images may be nil, in which case
// images are stored as submitted.
func NewNewsService(repo repository.NewsRepository, images ImageNormalizer) *NewsService {
	return &NewsService{repo: repo, images: images, now: time.Now}
}

// ListNews returns the feed newest first. It never fails: a store error is
// logged and yields an empty feed.
func (s *NewsService) ListNews(ctx context.Context) []models.News {
	news, err := s.repo.List(ctx)
	if err != nil {
		log.Errorf("list news: %v", err)
		return []models.News{}
	}
	if news == nil {
		return []models.News{}
	}
	for i := range news {
		if news[i].Comments == nil {
			news[i].Comments = []models.Comment{}
		}
	}
	return news
}

// CreateNews publishes a post. An image that cannot be normalized is dropped
// and the post goes out text-only.
func (s *NewsService) CreateNews(ctx context.Context, title, content string, image *string) (*CreateResult, error) {
	if err := requireFields(map[string]string{"title": title, "content": content}); err != nil {
		return nil, err
	}

	result := &CreateResult{}
	image = s.normalizeImage(ctx, image, result)

	news := models.NewNews(title, content, image, s.now())
	if err := news.Validate(); err != nil {
		return nil, fromValidator(err)
	}
	if err := s.repo.Create(ctx, news); err != nil {
		return nil, fmt.Errorf("create news: %w", err)
	}

	result.ID = news.ID
	s.afterWrite(ctx)
	return result, nil
}

func (s *NewsService) normalizeImage(ctx context.Context, image *string, result *CreateResult) *string {
	if image == nil || strings.TrimSpace(*image) == "" {
		return nil
	}
	if s.images == nil {
		return image
	}

	normalized, err := s.images.Normalize(ctx, *image)
	if err != nil {
		log.Warnf("dropping news image: %v", err)
		result.ImageDropped = true
		return nil
	}
	return &normalized
}

// AddComment appends a comment to an existing post. It never creates a post.
func (s *NewsService) AddComment(ctx context.Context, newsID, author, text string) error {
	if err := requireFields(map[string]string{"newsId": newsID, "author": author, "text": text}); err != nil {
		return err
	}

	comment := models.NewComment(author, text, s.now())
	if err := comment.Validate(); err != nil {
		return fromValidator(err)
	}

	if err := s.repo.AppendComment(ctx, newsID, comment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNewsNotFound
		}
		return fmt.Errorf("add comment: %w", err)
	}

	s.afterWrite(ctx)
	return nil
}

// ResolveAuthor returns the name shown on a comment for the given identity.
func (s *NewsService) ResolveAuthor(login, role string) string {
	if role == models.ROLE_ADMIN {
		return AdminDisplayName
	}
	return login
}

func (s *NewsService) afterWrite(ctx context.Context) {
	if s.AfterWrite != nil {
		s.AfterWrite(ctx)
	}
}
