package service

import (
	"errors"
	"log"

	"refearn/internal/domain"
	"refearn/internal/models"
	"refearn/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Notification is one earning push owed to Recipient after a purchase by From.
type Notification struct {
	Recipient string
	Level     int
	Amount    decimal.Decimal
	From      string
}

// Receipt is what Distribute hands back once the transaction has committed.
type Receipt struct {
	PurchaseID    string
	Notifications []Notification
}

// DistributionService walks the referral chain for each purchase and writes
// the purchase plus its commission rows as one atomic unit: 5% to the direct
// referrer, 1% to the grandparent, nothing beyond level 2.
type DistributionService struct {
	db       *gorm.DB
	userRepo *repository.UserRepository
	ledger   *repository.LedgerRepository
}

func NewDistributionService(db *gorm.DB, userRepo *repository.UserRepository, ledger *repository.LedgerRepository) *DistributionService {
	return &DistributionService{db: db, userRepo: userRepo, ledger: ledger}
}

// Distribute records a purchase and its earnings. Validation failures touch
// no storage; any failure inside the transaction rolls everything back and
// surfaces as ErrPersistence. The returned notifications are for the caller
// to fan out after commit — delivery never holds the transaction open.
func (s *DistributionService) Distribute(userID string, amount decimal.Decimal) (*Receipt, error) {
	if !amount.IsPositive() || amount.LessThan(domain.MinPurchaseAmount) {
		return nil, domain.ErrInvalidAmount
	}
	if _, err := s.userRepo.GetByID(userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		log.Printf("[distribute] purchaser lookup failed: %v", err)
		return nil, domain.ErrPersistence
	}

	purchase := &models.Purchase{UserID: userID, Amount: amount}
	var notifications []Notification

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.ledger.CreatePurchase(tx, purchase); err != nil {
			return err
		}

		// Chain state as read within this transaction. Referrer links are
		// immutable after signup, so two lookups cover the whole chain.
		var purchaser models.User
		if err := tx.First(&purchaser, "id = ?", userID).Error; err != nil {
			return err
		}
		if !purchaser.HasReferrer() {
			return nil
		}

		direct := *purchaser.ReferrerID
		directAmount := amount.Mul(domain.DirectRate)
		if err := s.ledger.CreateEarning(tx, &models.Earning{
			UserID:     direct,
			FromUserID: userID,
			Level:      domain.LevelDirect,
			Amount:     directAmount,
			PurchaseID: purchase.ID,
		}); err != nil {
			return err
		}
		notifications = append(notifications, Notification{
			Recipient: direct, Level: domain.LevelDirect, Amount: directAmount, From: userID,
		})

		var parent models.User
		if err := tx.First(&parent, "id = ?", direct).Error; err != nil {
			return err
		}
		if !parent.HasReferrer() {
			return nil
		}

		grand := *parent.ReferrerID
		grandAmount := amount.Mul(domain.GrandparentRate)
		if err := s.ledger.CreateEarning(tx, &models.Earning{
			UserID:     grand,
			FromUserID: userID,
			Level:      domain.LevelGrandparent,
			Amount:     grandAmount,
			PurchaseID: purchase.ID,
		}); err != nil {
			return err
		}
		notifications = append(notifications, Notification{
			Recipient: grand, Level: domain.LevelGrandparent, Amount: grandAmount, From: userID,
		})
		return nil
	})
	if err != nil {
		log.Printf("[distribute] rolled back purchase by %s: %v", userID, err)
		return nil, domain.ErrPersistence
	}

	log.Printf("[distribute] purchase %s by %s: %d earning(s)", purchase.ID, userID, len(notifications))
	return &Receipt{PurchaseID: purchase.ID, Notifications: notifications}, nil
}
