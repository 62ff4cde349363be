package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase records that a buyer paid for a paid link.
// The access token is bound to this row forever.
type Purchase struct {
	ID string `json:"id" gorm:"primaryKey;size:36"`

	LinkID     uint    `json:"link_id" gorm:"not null;index"`
	BuyerID    *string `json:"buyer_id,omitempty" gorm:"size:64;index"`
	BuyerEmail *string `json:"buyer_email,omitempty" gorm:"size:254"`

	// Copied from the link price when the purchase happened
	AmountPaid decimal.Decimal `json:"amount_paid" gorm:"type:decimal(12,2);not null"`

	AccessToken    string  `json:"-" gorm:"uniqueIndex;not null;size:64"`
	IdempotencyKey *string `json:"-" gorm:"uniqueIndex;size:100"`
	PaymentID      string  `json:"payment_id,omitempty" gorm:"size:100"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName pins the table name
func (Purchase) TableName() string {
	return "purchases"
}
