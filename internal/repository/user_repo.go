package repository

import (
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"refearn/internal/domain"
	"refearn/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// UserRepository is the referral graph store: users plus the parent-pointer
// relationship between them.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

const createAttempts = 4

// Create inserts a new user. When a referrer is given, the child-count check
// and the insert run in a single serializable transaction so two concurrent
// signups against the same referrer cannot both slip under the cap. Conflicts
// are retried a few times before giving up.
func (r *UserRepository) Create(name string, referrerID *string) (*models.User, error) {
	user := &models.User{Name: name}
	if referrerID != nil && *referrerID != "" {
		user.ReferrerID = referrerID
	}

	if user.ReferrerID == nil {
		if err := r.db.Create(user).Error; err != nil {
			log.Printf("[signup] create failed: %v", err)
			return nil, domain.ErrPersistence
		}
		return user, nil
	}

	delay := 50 * time.Millisecond
	for attempt := 1; attempt <= createAttempts; attempt++ {
		user.ID = "" // regenerated per attempt
		err := r.db.Transaction(func(tx *gorm.DB) error {
			var referrer models.User
			if err := tx.First(&referrer, "id = ?", *user.ReferrerID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrNotFound
				}
				return err
			}
			var children int64
			if err := tx.Model(&models.User{}).Where("referrer_id = ?", referrer.ID).Count(&children).Error; err != nil {
				return err
			}
			if children >= domain.MaxDirectReferrals {
				return domain.ErrReferralLimitExceeded
			}
			return tx.Create(user).Error
		}, &sql.TxOptions{Isolation: sql.LevelSerializable})

		switch {
		case err == nil:
			return user, nil
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrReferralLimitExceeded):
			return nil, err
		case isSerializationConflict(err):
			log.Printf("[signup] write conflict on referrer %s, retrying (attempt %d)", *user.ReferrerID, attempt)
			time.Sleep(delay)
			delay *= 2
		default:
			log.Printf("[signup] create failed: %v", err)
			return nil, domain.ErrPersistence
		}
	}
	return nil, domain.ErrPersistence
}

func (r *UserRepository) GetByID(id string) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Parent returns the direct referrer's ID, or nil for a root user.
func (r *UserRepository) Parent(id string) (*string, error) {
	u, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	return u.ReferrerID, nil
}

// CountChildren reports how many users name the given user as referrer.
func (r *UserRepository) CountChildren(referrerID string) (int64, error) {
	var n int64
	err := r.db.Model(&models.User{}).Where("referrer_id = ?", referrerID).Count(&n).Error
	return n, err
}

// isSerializationConflict reports whether err is a transient transaction
// conflict worth retrying: SQLSTATE 40001/40P01 on postgres, or the busy
// errors the sqlite test dialect surfaces under write contention.
func isSerializationConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}
