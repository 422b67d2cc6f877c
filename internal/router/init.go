package router

import (
	"github.com/diaryfi/diaryfi-api/internal/application"
	"github.com/diaryfi/diaryfi-api/internal/auth"
	"github.com/diaryfi/diaryfi-api/internal/container"
	"github.com/diaryfi/diaryfi-api/internal/infrastructure/postgres"
	handlers "github.com/diaryfi/diaryfi-api/internal/interface/http"
	"github.com/diaryfi/diaryfi-api/internal/router/modules"
	"github.com/diaryfi/diaryfi-api/pkg/oauth"
)

// InitModules wires repositories, services and handlers from the container
// singletons and registers every feature module. Called once at startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	log := container.GetLogger()
	pool := container.GetPGPool()

	users := postgres.NewUserRepository(pool)
	journals := postgres.NewJournalRepository(pool)
	entries := postgres.NewEntryRepository(pool)

	media := application.NewGCSMediaStore(container.GetGCS(), cfg.GCSBucket)
	indexer := application.NewESEntryIndexer(container.GetES(), cfg.ESEntriesIndex)

	authSvc := auth.NewService(auth.ServiceDeps{
		Users:         users,
		OTP:           auth.NewOTPEngine(cfg.OTPTTL, cfg.OTPMaxAttempts),
		Guard:         auth.NewLoginGuard(cfg.LoginMaxAttempts, cfg.LoginLockFor),
		Tokens:        container.GetJWT(),
		Queue:         container.GetRabbitPub(),
		Google:        oauth.NewGoogleVerifier(cfg.GoogleClientID),
		Apple:         oauth.NewAppleVerifier(cfg.AppleClientID),
		Logger:        log,
		AppName:       cfg.AppName,
		ResetTokenTTL: cfg.ResetTokenTTL,
		ResetBaseURL:  cfg.ResetPasswordURL,
	})
	journalSvc := application.NewJournalService(journals, users, cfg.FreeJournalLimit, log)
	entrySvc := application.NewEntryService(entries, journals, media, indexer, log)
	purchaseSvc := application.NewPurchaseService(users, log)

	supportEmail := cfg.SupportEmail
	if supportEmail == "" {
		supportEmail = cfg.MailgunSender
	}
	supportSvc := application.NewSupportService(users, container.GetRabbitPub(), supportEmail, cfg.AppName, log)

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(authSvc, media, log), container.GetJWT()))
	r.Add(modules.NewJournalModule(handlers.NewJournalHandler(journalSvc, log), container.GetJWT()))
	r.Add(modules.NewEntryModule(handlers.NewEntryHandler(entrySvc, log), container.GetJWT()))
	r.Add(modules.NewPurchaseModule(handlers.NewPurchaseHandler(purchaseSvc, log), container.GetJWT()))
	r.Add(modules.NewSupportModule(handlers.NewSupportHandler(supportSvc, log), container.GetJWT()))
}
