package repository

import (
	"time"

	"refearn/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerRepository persists purchases and earnings. Both tables are
// append-only; the write helpers take the caller's transaction handle so a
// purchase and its earnings commit or roll back as one unit.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) CreatePurchase(tx *gorm.DB, p *models.Purchase) error {
	return tx.Create(p).Error
}

func (r *LedgerRepository) CreateEarning(tx *gorm.DB, e *models.Earning) error {
	return tx.Create(e).Error
}

// LevelTotal is one row of the per-level earnings breakdown.
type LevelTotal struct {
	Level int             `json:"level"`
	Total decimal.Decimal `json:"total"`
}

// EarningEntry is one row of a user's earning history.
type EarningEntry struct {
	Level      int             `json:"level"`
	Amount     decimal.Decimal `json:"amount"`
	FromUserID string          `json:"from_user_id"`
	CreatedAt  time.Time       `json:"created_at"`
}

// SummaryByLevel returns total earnings grouped by level, ascending level.
func (r *LedgerRepository) SummaryByLevel(userID string) ([]LevelTotal, error) {
	var out []LevelTotal
	err := r.db.Model(&models.Earning{}).
		Select("level, SUM(amount) as total").
		Where("user_id = ?", userID).
		Group("level").
		Order("level ASC").
		Scan(&out).Error
	return out, err
}

// History returns a user's individual earnings, most recent first.
func (r *LedgerRepository) History(userID string) ([]EarningEntry, error) {
	var out []EarningEntry
	err := r.db.Model(&models.Earning{}).
		Select("level, amount, from_user_id, created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(&out).Error
	return out, err
}
