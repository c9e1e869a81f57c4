package service

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// decimalFromInput 解析请求里的 decimal 字符串，空串按 0 处理
func decimalFromInput(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// pessimisticLock SELECT ... FOR UPDATE 行锁。
// SQLite 不支持 FOR UPDATE (库级写锁本身足够)，跳过。
func pessimisticLock(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
