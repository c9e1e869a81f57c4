package gold

import "github.com/shopspring/decimal"

// 金币数量在存储层统一使用最小单位 (int64)，
// 面向用户的数量单位是 "万" (1 万 = 10000 最小单位)。
// 所有换算必须经过本包，禁止在调用方手写 *10000 / /10000。

// UnitsPerWan 1 万 = 10000 最小单位
const UnitsPerWan int64 = 10000

// WanPerThousand 报价单位: 单价按 "千万" 计 (unitPrice 元/千万)
const WanPerThousand int64 = 1000

// FromWan 万 -> 最小单位
func FromWan(wan int64) int64 {
	return wan * UnitsPerWan
}

// ToWan 最小单位 -> 万 (向下取整)
func ToWan(units int64) int64 {
	return units / UnitsPerWan
}

// WanToThousand 万 -> 千万，返回 decimal 保留小数部分
// 营收/成本公式都以 "千万" 为计价单位: (amount/1000) * unitPrice
func WanToThousand(wan int64) decimal.Decimal {
	return decimal.NewFromInt(wan).Div(decimal.NewFromInt(WanPerThousand))
}

// UnitsToWanDecimal 最小单位 -> 万，保留小数部分
func UnitsToWanDecimal(units int64) decimal.Decimal {
	return decimal.NewFromInt(units).Div(decimal.NewFromInt(UnitsPerWan))
}

// CostPerThousandWan 由 (总成本, 总数量[最小单位]) 求每千万成本
// 数量为 0 时返回 0，避免除零
func CostPerThousandWan(totalCost decimal.Decimal, totalUnits int64) decimal.Decimal {
	if totalUnits == 0 {
		return decimal.Zero
	}
	// cost / units * (1000 * 10000)
	perUnit := totalCost.Div(decimal.NewFromInt(totalUnits))
	return perUnit.Mul(decimal.NewFromInt(WanPerThousand * UnitsPerWan))
}
