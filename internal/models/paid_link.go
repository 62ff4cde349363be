package models

import (
	"github.com/shopspring/decimal"
)

// PaidLink is a priced, shareable unlock for a single media item
type PaidLink struct {
	BaseModel

	CreatorID    string      `json:"creator_id" gorm:"not null;index;size:64"`
	Slug         string      `json:"slug" gorm:"uniqueIndex;not null;size:32"`
	Title        string      `json:"title" gorm:"not null;size:200"`
	Description  string      `json:"description,omitempty" gorm:"type:text"`
	MediaURL     string      `json:"media_url" gorm:"not null;size:1000"`
	ThumbnailURL string      `json:"thumbnail_url,omitempty" gorm:"size:1000"`
	MediaKind    MediaKind   `json:"media_type" gorm:"not null;size:10"`
	SourceType   MediaSource `json:"source_type" gorm:"not null;size:10;default:'upload'"`
	SourceID     *uint       `json:"source_id,omitempty"`

	Price    decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	IsActive bool            `json:"is_active" gorm:"not null;default:true"`

	// Counters only ever grow
	ViewsCount     int64           `json:"views_count" gorm:"not null;default:0"`
	PurchasesCount int64           `json:"purchases_count" gorm:"not null;default:0"`
	TotalEarnings  decimal.Decimal `json:"total_earnings" gorm:"type:decimal(14,2);not null;default:0"`
}

// LinkStats aggregates a creator's links
type LinkStats struct {
	TotalLinks     int64           `json:"total_links"`
	ActiveLinks    int64           `json:"active_links"`
	TotalViews     int64           `json:"total_views"`
	TotalPurchases int64           `json:"total_purchases"`
	TotalEarnings  decimal.Decimal `json:"total_earnings"`
}
