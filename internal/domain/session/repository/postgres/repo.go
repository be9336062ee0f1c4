package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Aztech-1729/sliptads/internal/domain"
	"github.com/Aztech-1729/sliptads/internal/domain/session/deps"
	"github.com/Aztech-1729/sliptads/internal/domain/session/entities"
	sessionerrors "github.com/Aztech-1729/sliptads/internal/domain/session/errors"
)

// Repository implements deps.Repository on top of gorm.
// It is used with both the postgres and the sqlite drivers.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new gorm session repository
func NewRepository(db *gorm.DB) deps.Repository {
	return &Repository{db: db}
}

// Get retrieves a session by user id
func (r *Repository) Get(ctx context.Context, userID int64) (*entities.Session, error) {
	var model entities.SessionModel
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sessionerrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return model.ToEntity(), nil
}

// Put upserts the user-editable part of a session
func (r *Repository) Put(ctx context.Context, s *entities.Session) error {
	model := entities.FromEntity(s)

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"ad", "catalog", "selected", "filter", "updated_at"}),
		}).
		Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to put session: %w", result.Error)
	}
	return nil
}

// StoreHandle replaces the durable handle and credentials in one statement
func (r *Repository) StoreHandle(ctx context.Context, userID int64, creds domain.Credentials, handle []byte) error {
	model := &entities.SessionModel{
		UserID:  userID,
		APIID:   creds.APIID,
		APIHash: creds.APIHash,
		Phone:   creds.Phone,
		Handle:  handle,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"api_id", "api_hash", "phone", "handle", "updated_at"}),
		}).
		Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to store handle: %w", result.Error)
	}
	return nil
}

// UpdateHandle rewrites the handle of an existing session
func (r *Repository) UpdateHandle(ctx context.Context, userID int64, handle []byte) error {
	result := r.db.WithContext(ctx).
		Model(&entities.SessionModel{}).
		Where("user_id = ?", userID).
		Update("handle", handle)
	if result.Error != nil {
		return fmt.Errorf("failed to update handle: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return sessionerrors.ErrSessionNotFound
	}
	return nil
}

// LoadHandle returns the stored handle bytes
func (r *Repository) LoadHandle(ctx context.Context, userID int64) ([]byte, error) {
	var model entities.SessionModel
	err := r.db.WithContext(ctx).
		Select("user_id", "handle").
		Where("user_id = ?", userID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sessionerrors.ErrHandleNotFound
		}
		return nil, fmt.Errorf("failed to load handle: %w", err)
	}
	if len(model.Handle) == 0 {
		return nil, sessionerrors.ErrHandleNotFound
	}
	return model.Handle, nil
}

// DeleteHandle removes the durable handle, keeping the rest of the record
func (r *Repository) DeleteHandle(ctx context.Context, userID int64) error {
	result := r.db.WithContext(ctx).
		Model(&entities.SessionModel{}).
		Where("user_id = ?", userID).
		Update("handle", nil)
	if result.Error != nil {
		return fmt.Errorf("failed to delete handle: %w", result.Error)
	}
	return nil
}

// IncrementSent atomically increments the sent counter
func (r *Repository) IncrementSent(ctx context.Context, userID int64) (int64, error) {
	var total int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entities.SessionModel{}).
			Where("user_id = ?", userID).
			Update("sent_total", gorm.Expr("sent_total + ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return sessionerrors.ErrSessionNotFound
		}

		return tx.Model(&entities.SessionModel{}).
			Select("sent_total").
			Where("user_id = ?", userID).
			Scan(&total).Error
	})
	if err != nil {
		if errors.Is(err, sessionerrors.ErrSessionNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to increment sent counter: %w", err)
	}

	return total, nil
}

// SetPremiumUntil stores the end of paid access. The zero time clears it.
func (r *Repository) SetPremiumUntil(ctx context.Context, userID int64, until time.Time) error {
	model := &entities.SessionModel{UserID: userID}
	if !until.IsZero() {
		model.PremiumUntil = &until
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"premium_until", "updated_at"}),
		}).
		Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to set premium: %w", result.Error)
	}
	return nil
}

// SetLoggerStarted records whether the user has started the logger bot
func (r *Repository) SetLoggerStarted(ctx context.Context, userID int64, started bool) error {
	model := &entities.SessionModel{
		UserID:        userID,
		LoggerStarted: started,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"logger_started", "updated_at"}),
		}).
		Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to set logger flag: %w", result.Error)
	}
	return nil
}
