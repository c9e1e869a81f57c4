package gold

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestWanConversion(t *testing.T) {
	assert.Equal(t, int64(120000000), FromWan(12000))
	assert.Equal(t, int64(12000), ToWan(120000000))
	// 向下取整
	assert.Equal(t, int64(0), ToWan(9999))
	assert.Equal(t, int64(1), ToWan(19999))
}

func TestWanToThousand(t *testing.T) {
	// 10000 万 = 10 千万
	assert.True(t, WanToThousand(10000).Equal(decimal.NewFromInt(10)))
	// 500 万 = 0.5 千万，小数部分要保留
	assert.True(t, WanToThousand(500).Equal(decimal.NewFromFloat(0.5)))
}

func TestUnitsToWanDecimal(t *testing.T) {
	assert.True(t, UnitsToWanDecimal(15000).Equal(decimal.NewFromFloat(1.5)))
}

func TestCostPerThousandWan(t *testing.T) {
	tests := []struct {
		name       string
		totalCost  string
		totalUnits int64
		want       string
	}{
		// 30000 万进货花 600 元 -> 每千万 20 元
		{"正常均价", "600", 300000000, "20"},
		{"零台账返回零", "0", 0, "0"},
		{"成本为零", "0", 100000000, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cost, _ := decimal.NewFromString(tt.totalCost)
			want, _ := decimal.NewFromString(tt.want)
			got := CostPerThousandWan(cost, tt.totalUnits)
			assert.True(t, got.Equal(want), "got %s want %s", got, want)
		})
	}
}
