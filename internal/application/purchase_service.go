package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/diaryfi/diaryfi-api/internal/domain/entity"
	"github.com/diaryfi/diaryfi-api/internal/domain/repository"
)

var (
	ErrUnknownProduct  = errors.New("unknown product id")
	ErrUnknownPlatform = errors.New("unknown platform")
	ErrEmptyReceipt    = errors.New("missing purchase receipt")
)

var premiumProducts = map[string]bool{
	"premium_monthly": true,
	"premium_yearly":  true,
}

var knownPlatforms = map[string]bool{
	"android": true,
	"ios":     true,
}

// PurchaseService flips the premium flag after verifying a purchase.
// Verification is a stub: the product id and platform are checked against
// allowlists and the receipt is accepted as-is. Real app-store receipt
// validation is out of scope.
type PurchaseService struct {
	users repository.UserRepository
	log   *logrus.Logger
}

func NewPurchaseService(users repository.UserRepository, log *logrus.Logger) *PurchaseService {
	return &PurchaseService{users: users, log: log}
}

func (s *PurchaseService) Verify(ctx context.Context, userID, productID, platform, receipt string) (*entity.User, error) {
	if !premiumProducts[productID] {
		return nil, ErrUnknownProduct
	}
	if !knownPlatforms[platform] {
		return nil, ErrUnknownPlatform
	}
	if receipt == "" {
		return nil, ErrEmptyReceipt
	}

	u, err := s.users.SetPremium(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"user_id":  userID,
		"product":  productID,
		"platform": platform,
	}).Info("premium purchase verified")
	return u, nil
}
