package card

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agency-service/internal/events"
	"agency-service/internal/schema"
	"agency-service/internal/student"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrCardNumberExists = errors.New("card number already issued")
)

type StudentFinder interface {
	GetStudentByID(ctx context.Context, id int) (*student.Student, error)
}

type Service interface {
	IssueCard(ctx context.Context, card *Card) (*Card, error)
	GetCards(ctx context.Context, studentID int) ([]Card, error)
}

type service struct {
	repo     Repository
	students StudentFinder
	emitter  *events.Emitter
}

func NewService(repo Repository, students StudentFinder, emitter *events.Emitter) Service {
	return &service{
		repo:     repo,
		students: students,
		emitter:  emitter,
	}
}

func (s *service) IssueCard(ctx context.Context, card *Card) (*Card, error) {
	card.CardNumber = strings.ToUpper(strings.TrimSpace(card.CardNumber))
	if card.CardNumber == "" {
		return nil, fmt.Errorf("%w: card number is required", ErrInvalidInput)
	}
	if _, err := s.students.GetStudentByID(ctx, card.StudentID); err != nil {
		if errors.Is(err, student.ErrStudentNotFound) {
			return nil, fmt.Errorf("%w: student %d does not exist", ErrInvalidInput, card.StudentID)
		}
		return nil, err
	}

	card.ID = 0
	if card.CardType == "" {
		card.CardType = "student"
	}
	if card.Status == "" {
		card.Status = schema.CardActive
	}
	card.IssuedAt = time.Now().UTC()
	if card.ExpiresAt != nil && card.ExpiresAt.Before(card.IssuedAt) {
		return nil, fmt.Errorf("%w: expiresAt is in the past", ErrInvalidInput)
	}

	issued, err := s.repo.Create(ctx, card)
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, events.New(events.CardIssued, "card", issued.ID, issued))
	return issued, nil
}

func (s *service) GetCards(ctx context.Context, studentID int) ([]Card, error) {
	if studentID < 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetAll(ctx, studentID)
}
