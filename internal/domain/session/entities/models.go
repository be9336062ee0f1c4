package entities

import "time"

// SessionModel is a GORM model for user_sessions table
type SessionModel struct {
	UserID        int64         `gorm:"primaryKey;autoIncrement:false"`
	APIID         int           `gorm:"not null;default:0"`
	APIHash       string        `gorm:"size:64;not null;default:''"`
	Phone         string        `gorm:"size:32;not null;default:''"`
	Handle        []byte        `gorm:"column:handle"`
	LoggerStarted bool          `gorm:"not null;default:false"`
	Ad            AdConfig      `gorm:"serializer:json"`
	Catalog       []Destination `gorm:"serializer:json"`
	Selected      []string      `gorm:"serializer:json"`
	Filter        string        `gorm:"size:255;not null;default:''"`
	SentTotal     int64         `gorm:"not null;default:0"`
	PremiumUntil  *time.Time    `gorm:"column:premium_until"`
	CreatedAt     time.Time     `gorm:"autoCreateTime"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime"`
}

func (SessionModel) TableName() string {
	return "user_sessions"
}

// ToEntity converts DB model to domain entity
func (m *SessionModel) ToEntity() *Session {
	return &Session{
		UserID:        m.UserID,
		APIID:         m.APIID,
		APIHash:       m.APIHash,
		Phone:         m.Phone,
		HasHandle:     len(m.Handle) > 0,
		LoggerStarted: m.LoggerStarted,
		Ad:            m.Ad,
		Catalog:       m.Catalog,
		Selected:      m.Selected,
		Filter:        m.Filter,
		SentTotal:     m.SentTotal,
		PremiumUntil:  premiumUntil(m.PremiumUntil),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// FromEntity builds the mutable part of a model from an entity.
// Handle and SentTotal are owned by dedicated repository operations.
func FromEntity(s *Session) *SessionModel {
	return &SessionModel{
		UserID:        s.UserID,
		APIID:         s.APIID,
		APIHash:       s.APIHash,
		Phone:         s.Phone,
		LoggerStarted: s.LoggerStarted,
		Ad:            s.Ad,
		Catalog:       s.Catalog,
		Selected:      s.Selected,
		Filter:        s.Filter,
	}
}

func premiumUntil(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
