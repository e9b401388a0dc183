package message

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"agency-service/internal/student"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrDeliveryFailed = errors.New("message could not be delivered")
)

// Producer is the message bus. messaging.Producer implements it over NATS.
type Producer interface {
	SendMessage(ctx context.Context, value interface{}) error
}

type StudentFinder interface {
	GetStudentByID(ctx context.Context, id int) (*student.Student, error)
}

type Service interface {
	SendMessage(ctx context.Context, msg *Message) (*Message, error)
	GetMessages(ctx context.Context, studentID int) ([]Message, error)
}

type service struct {
	repo     Repository
	students StudentFinder
	producer Producer
	logger   *slog.Logger
}

func NewService(repo Repository, students StudentFinder, producer Producer, logger *slog.Logger) Service {
	return &service{
		repo:     repo,
		students: students,
		producer: producer,
		logger:   logger,
	}
}

// SendMessage stores the message, then publishes it. The recipient email
// falls back to the student's address when only a student id is given.
func (s *service) SendMessage(ctx context.Context, msg *Message) (*Message, error) {
	msg.Email = strings.ToLower(strings.TrimSpace(msg.Email))
	msg.Body = strings.TrimSpace(msg.Body)
	if msg.Body == "" {
		return nil, fmt.Errorf("%w: body is required", ErrInvalidInput)
	}

	if msg.StudentID != nil {
		st, err := s.students.GetStudentByID(ctx, *msg.StudentID)
		if err != nil {
			if errors.Is(err, student.ErrStudentNotFound) {
				return nil, fmt.Errorf("%w: student %d does not exist", ErrInvalidInput, *msg.StudentID)
			}
			return nil, err
		}
		if msg.Email == "" {
			msg.Email = st.Email
		}
	}
	if msg.Email == "" {
		return nil, fmt.Errorf("%w: email or studentId is required", ErrInvalidInput)
	}
	msg.SentAt = time.Now().UTC()

	saved, err := s.repo.Create(ctx, msg)
	if err != nil {
		return nil, err
	}

	if err := s.producer.SendMessage(ctx, saved); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish message", "id", saved.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return saved, nil
}

func (s *service) GetMessages(ctx context.Context, studentID int) ([]Message, error) {
	return s.repo.GetAll(ctx, studentID)
}
