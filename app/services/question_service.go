package services

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/NewsDesk/app/models"
	"github.com/ManuelReschke/NewsDesk/app/repository"
)

// QuestionService collects questions sent through the ask form.
type QuestionService struct {
	repo repository.QuestionRepository
	now  func() time.Time

	// AfterWrite, when set, runs after every stored question.
	AfterWrite func(ctx context.Context)
}

func NewQuestionService(repo repository.QuestionRepository) *QuestionService {
	return &QuestionService{repo: repo, now: time.Now}
}

// SubmitQuestion stores a question. All three fields are required.
func (s *QuestionService) SubmitQuestion(ctx context.Context, name, contact, question string) error {
	if err := requireFields(map[string]string{"name": name, "contact": contact, "question": question}); err != nil {
		return err
	}

	q := models.NewQuestion(name, contact, question, s.now())
	if err := q.Validate(); err != nil {
		return fromValidator(err)
	}
	if err := s.repo.Create(ctx, q); err != nil {
		return fmt.Errorf("submit question: %w", err)
	}

	if s.AfterWrite != nil {
		s.AfterWrite(ctx)
	}
	return nil
}

// ListQuestions returns stored questions newest first, or an empty list when
// the store cannot be read.
func (s *QuestionService) ListQuestions(ctx context.Context) []models.Question {
	questions, err := s.repo.List(ctx)
	if err != nil {
		log.Errorf("list questions: %v", err)
		return []models.Question{}
	}
	if questions == nil {
		return []models.Question{}
	}
	return questions
}
