package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Creator is the public profile of an account that sells content.
// ID is the subject of the creator's auth token.
type Creator struct {
	ID                string          `json:"id" gorm:"primaryKey;size:64"`
	Username          string          `json:"username" gorm:"uniqueIndex;not null;size:64"`
	DisplayName       string          `json:"display_name" gorm:"size:120"`
	AvatarURL         string          `json:"avatar_url" gorm:"size:500"`
	SubscriptionPrice decimal.Decimal `json:"subscription_price" gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt         time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

// CreatorSummary is what buyers see next to a link
type CreatorSummary struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Summary returns the public part of the profile
func (c *Creator) Summary() CreatorSummary {
	return CreatorSummary{
		ID:          c.ID,
		Username:    c.Username,
		DisplayName: c.DisplayName,
		AvatarURL:   c.AvatarURL,
	}
}
