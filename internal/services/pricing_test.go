package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPackagePrice(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		discount int
		want     string
		display  string
	}{
		{"quarter off", "38.46", 25, "28.845", "28.85"},
		{"minimum discount", "10", 1, "9.9", "9.90"},
		{"maximum discount", "19.99", 50, "9.995", "10.00"},
		{"free base", "0", 30, "0", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PackagePrice(decimal.RequireFromString(tt.base), tt.discount)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
			assert.Equal(t, tt.display, FormatMoney(got))
		})
	}
}

func TestPackagePrice_MatchesFormulaForAllDiscounts(t *testing.T) {
	bases := []string{"0", "0.01", "4.99", "38.46", "1000"}
	for _, b := range bases {
		base := decimal.RequireFromString(b)
		for pct := 1; pct <= 50; pct++ {
			want := base.Sub(base.Mul(decimal.NewFromInt(int64(pct))).Div(decimal.NewFromInt(100)))
			assert.True(t, PackagePrice(base, pct).Equal(want), "base=%s pct=%d", b, pct)
		}
	}
}

func TestPackageSavings(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		discount int
		months   int
		want     string
	}{
		{"three months", "38.46", 25, 3, "28.845"},
		{"year", "10", 50, 12, "60"},
		{"free base", "0", 10, 6, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PackageSavings(decimal.RequireFromString(tt.base), tt.discount, tt.months)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestPackageQuote(t *testing.T) {
	q := PackageQuote(decimal.RequireFromString("38.46"), 25, 3)

	assert.Equal(t, "38.46", q.BasePrice)
	assert.Equal(t, "28.85", q.MonthlyPrice)
	assert.Equal(t, "86.54", q.TotalPrice) // 28.845 × 3 = 86.535
	assert.Equal(t, "28.85", q.TotalSavings)
	assert.Equal(t, 3, q.DurationMonth)
	assert.Equal(t, 25, q.Discount)
}
