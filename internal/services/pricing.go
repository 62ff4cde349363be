package services

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PackagePrice is the discounted monthly price: base × (1 − pct/100).
// pct is expected to be already validated by the caller.
func PackagePrice(basePrice decimal.Decimal, discountPercent int) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromInt(int64(discountPercent)).Div(hundred))
	return basePrice.Mul(factor)
}

// PackageSavings is what a package saves over paying monthly: base × months × pct/100
func PackageSavings(basePrice decimal.Decimal, discountPercent, durationMonths int) decimal.Decimal {
	return basePrice.
		Mul(decimal.NewFromInt(int64(durationMonths))).
		Mul(decimal.NewFromInt(int64(discountPercent))).
		Div(hundred)
}

// Quote is the derived pricing of a subscription package
type Quote struct {
	BasePrice     string `json:"base_price"`
	MonthlyPrice  string `json:"monthly_price"`
	TotalPrice    string `json:"total_price"`
	TotalSavings  string `json:"total_savings"`
	DurationMonth int    `json:"duration_months"`
	Discount      int    `json:"discount_percent"`
}

// PackageQuote computes the display values of a package, rounded to cents
func PackageQuote(basePrice decimal.Decimal, discountPercent, durationMonths int) Quote {
	monthly := PackagePrice(basePrice, discountPercent)
	total := monthly.Mul(decimal.NewFromInt(int64(durationMonths)))

	return Quote{
		BasePrice:     FormatMoney(basePrice),
		MonthlyPrice:  FormatMoney(monthly),
		TotalPrice:    FormatMoney(total),
		TotalSavings:  FormatMoney(PackageSavings(basePrice, discountPercent, durationMonths)),
		DurationMonth: durationMonths,
		Discount:      discountPercent,
	}
}

// FormatMoney renders an amount with two decimals, half away from zero
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
