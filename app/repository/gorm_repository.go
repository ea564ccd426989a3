package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/NewsDesk/app/models"
)

// NewGormRepositories creates repositories on a relational database. The
// connection should be opened with TranslateError so duplicate keys surface
// as gorm.ErrDuplicatedKey.
func NewGormRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Driver:   DriverMySQL,
		News:     &newsRepository{db: db},
		Question: &questionRepository{db: db},
		User:     &userRepository{db: db},
		close: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

// newID returns a time-ordered UUID so that ordering by id is ordering by
// insertion.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func preloadComments(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// newsRepository implements the NewsRepository interface
type newsRepository struct {
	db *gorm.DB
}

// List retrieves all news with their comments, newest first
func (r *newsRepository) List(ctx context.Context) ([]models.News, error) {
	var news []models.News
	err := r.db.WithContext(ctx).Preload("Comments", preloadComments).
		Order("created_at DESC").Order("id DESC").Find(&news).Error
	if err != nil {
		return nil, unavailable("list news", err)
	}
	for i := range news {
		if news[i].Comments == nil {
			news[i].Comments = []models.Comment{}
		}
	}
	return news, nil
}

// GetByID retrieves a news post by its ID
func (r *newsRepository) GetByID(ctx context.Context, id string) (*models.News, error) {
	var news models.News
	err := r.db.WithContext(ctx).Preload("Comments", preloadComments).
		Where("id = ?", id).First(&news).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, unavailable("get news", err)
	}
	if news.Comments == nil {
		news.Comments = []models.Comment{}
	}
	return &news, nil
}

// Create inserts the post and any comments it already carries
func (r *newsRepository) Create(ctx context.Context, news *models.News) error {
	news.ID = newID()
	for i := range news.Comments {
		news.Comments[i].NewsID = news.ID
		news.Comments[i].Position = i
	}
	if err := r.db.WithContext(ctx).Create(news).Error; err != nil {
		return unavailable("create news", err)
	}
	if news.Comments == nil {
		news.Comments = []models.Comment{}
	}
	return nil
}

// AppendComment locks the parent row and stores the comment at the next
// position, so concurrent appends to one post are serialized.
func (r *newsRepository) AppendComment(ctx context.Context, newsID string, comment models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var parent models.News
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").Where("id = ?", newsID).First(&parent).Error
		if err != nil {
			return err
		}

		var position int64
		if err := tx.Model(&models.Comment{}).Where("news_id = ?", newsID).Count(&position).Error; err != nil {
			return err
		}

		comment.ID = 0
		comment.NewsID = newsID
		comment.Position = int(position)
		return tx.Create(&comment).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return unavailable("append comment", err)
	}
	return nil
}

// Count returns the number of posts without loading them
func (r *newsRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.News{}).Count(&count).Error; err != nil {
		return 0, unavailable("count news", err)
	}
	return count, nil
}

// questionRepository implements the QuestionRepository interface
type questionRepository struct {
	db *gorm.DB
}

// List retrieves all questions, newest first
func (r *questionRepository) List(ctx context.Context) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&questions).Error
	if err != nil {
		return nil, unavailable("list questions", err)
	}
	return questions, nil
}

// Create inserts a new question
func (r *questionRepository) Create(ctx context.Context, question *models.Question) error {
	question.ID = newID()
	if err := r.db.WithContext(ctx).Create(question).Error; err != nil {
		return unavailable("create question", err)
	}
	return nil
}

func (r *questionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Question{}).Count(&count).Error; err != nil {
		return 0, unavailable("count questions", err)
	}
	return count, nil
}

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// List retrieves all users in registration order
func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&users).Error; err != nil {
		return nil, unavailable("list users", err)
	}
	return users, nil
}

// GetByLogin retrieves a user by login. The column uses a binary collation,
// so the comparison is case-sensitive.
func (r *userRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("login = ?", login).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, unavailable("get user", err)
	}
	return &user, nil
}

// Create inserts a new user; the unique index on login rejects duplicates
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = newID()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		return unavailable("create user", err)
	}
	return nil
}

// Count returns the total number of users
func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, unavailable("count users", err)
	}
	return count, nil
}
