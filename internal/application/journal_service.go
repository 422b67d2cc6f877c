package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/diaryfi/diaryfi-api/internal/domain/entity"
	"github.com/diaryfi/diaryfi-api/internal/domain/repository"
)

// ErrJournalLimit rejects journal creation once a free account hits its cap.
var ErrJournalLimit = errors.New("journal limit reached, upgrade to premium for unlimited journals")

// JournalService owns journal CRUD and the free-tier cap.
type JournalService struct {
	journals  repository.JournalRepository
	users     repository.UserRepository
	freeLimit int
	log       *logrus.Logger
}

func NewJournalService(journals repository.JournalRepository, users repository.UserRepository, freeLimit int, log *logrus.Logger) *JournalService {
	return &JournalService{journals: journals, users: users, freeLimit: freeLimit, log: log}
}

// Create adds a journal. Free accounts are capped; premium is unlimited.
func (s *JournalService) Create(ctx context.Context, userID string, j *entity.Journal) (*entity.Journal, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsPremium {
		n, err := s.journals.CountByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if n >= int64(s.freeLimit) {
			return nil, ErrJournalLimit
		}
	}

	j.UserID = userID
	if err := s.journals.Create(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

func (s *JournalService) Get(ctx context.Context, userID, id string) (*entity.Journal, error) {
	return s.journals.GetByID(ctx, userID, id)
}

func (s *JournalService) List(ctx context.Context, userID string) ([]*entity.Journal, error) {
	return s.journals.ListByUser(ctx, userID)
}

func (s *JournalService) Update(ctx context.Context, userID string, j *entity.Journal) (*entity.Journal, error) {
	j.UserID = userID
	if err := s.journals.Update(ctx, j); err != nil {
		return nil, err
	}
	return s.journals.GetByID(ctx, userID, j.ID)
}

// Delete removes the journal. Its entries survive with the journal
// reference cleared.
func (s *JournalService) Delete(ctx context.Context, userID, id string) error {
	return s.journals.Delete(ctx, userID, id)
}
