package models

// SubscriptionPackage is a multi-month subscription offer at a discount.
// Prices are derived from the creator's current base price and never stored.
type SubscriptionPackage struct {
	BaseModel

	CreatorID       string `json:"creator_id" gorm:"not null;size:64;uniqueIndex:idx_package_creator_duration"`
	DurationMonths  int    `json:"duration_months" gorm:"not null;uniqueIndex:idx_package_creator_duration"`
	DiscountPercent int    `json:"discount_percent" gorm:"not null"`
	IsActive        bool   `json:"is_active" gorm:"not null;default:true"`
}

// Allowed package durations in months
var PackageDurations = []int{3, 6, 12}

const (
	MinPackageDiscount = 1
	MaxPackageDiscount = 50
)
