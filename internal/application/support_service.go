package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/diaryfi/diaryfi-api/internal/domain/repository"
	"github.com/diaryfi/diaryfi-api/pkg/mailer"
	"github.com/diaryfi/diaryfi-api/pkg/mailer/templates"
)

// JobQueue publishes JSON payloads to the email queue. Satisfied by
// helpers.RabbitPublisher.
type JobQueue interface {
	PublishJSON(ctx context.Context, body any) error
}

// SupportService forwards user support requests to the support mailbox
// through the email pipeline, stamped with the sender's account identity so
// the support team can reply.
type SupportService struct {
	users        repository.UserRepository
	queue        JobQueue
	supportEmail string
	appName      string
	log          *logrus.Logger
}

func NewSupportService(users repository.UserRepository, queue JobQueue, supportEmail, appName string, log *logrus.Logger) *SupportService {
	return &SupportService{users: users, queue: queue, supportEmail: supportEmail, appName: appName, log: log}
}

func (s *SupportService) Send(ctx context.Context, userID, subject, message string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	data := templates.NewEmailData(s.appName, u.Name, u.Email,
		templates.WithSubject(subject),
		templates.WithMessage(message),
	)
	if err := s.queue.PublishJSON(ctx, mailer.EmailJob{
		To:       s.supportEmail,
		Template: templates.Support,
		Data:     templates.ToMap(data),
	}); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "subject": subject}).Info("support request queued")
	return nil
}
