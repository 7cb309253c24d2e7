package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/cuesoftinc/cuelabs-backend/internal/repository"
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidExport    = errors.New("invalid export data")
)

// EarningsExport is a signed statement of a user's earnings, suitable for
// handing to third parties who can verify it against the signing key.
type EarningsExport struct {
	UserID        string               `json:"user_id"`
	Name          string               `json:"name"`
	Email         string               `json:"email"`
	WalletBalance int                  `json:"wallet_balance"`
	TotalEarnings int                  `json:"total_earnings"`
	Earnings      []EarningExportItem  `json:"earnings"`
	ExportedAt    time.Time            `json:"exported_at"`
	Signature     string               `json:"signature"`
}

type EarningExportItem struct {
	ID       string `json:"id"`
	BountyID string `json:"bounty_id"`
	Amount   int    `json:"amount"`
}

type ExportService struct {
	userRepo    *repository.UserRepository
	earningRepo *repository.EarningRepository
	signingKey  string
}

func NewExportService(userRepo *repository.UserRepository, earningRepo *repository.EarningRepository, signingKey string) *ExportService {
	return &ExportService{
		userRepo:    userRepo,
		earningRepo: earningRepo,
		signingKey:  signingKey,
	}
}

func (s *ExportService) ExportEarnings(ctx context.Context, userID string) (*EarningsExport, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	earnings, err := s.earningRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	export := &EarningsExport{
		UserID:        user.ID,
		Name:          user.Name,
		Email:         user.Email,
		WalletBalance: user.WalletBalance,
		TotalEarnings: user.TotalEarnings,
		Earnings:      make([]EarningExportItem, 0, len(earnings)),
		ExportedAt:    time.Now().UTC(),
	}
	for _, e := range earnings {
		item := EarningExportItem{ID: e.ID, Amount: e.Amount}
		if len(e.Bounties) > 0 {
			item.BountyID = e.Bounties[0]
		}
		export.Earnings = append(export.Earnings, item)
	}

	signature, err := s.sign(export)
	if err != nil {
		return nil, err
	}
	export.Signature = signature
	return export, nil
}

// Verify checks an export's signature against the signing key.
func (s *ExportService) Verify(export *EarningsExport) error {
	if export == nil {
		return ErrInvalidExport
	}
	expected, err := s.sign(export)
	if err != nil {
		return err
	}
	if !hmac.Equal([]byte(expected), []byte(export.Signature)) {
		return ErrInvalidSignature
	}
	return nil
}

// sign computes the HMAC over the export with its Signature field blanked.
func (s *ExportService) sign(export *EarningsExport) (string, error) {
	unsigned := *export
	unsigned.Signature = ""

	payload, err := json.Marshal(&unsigned)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, []byte(s.signingKey))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil)), nil
}
