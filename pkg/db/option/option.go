// Package option carries query modifiers for the generic store.
package option

import "gorm.io/gorm"

type QueryOption func(*gorm.DB) *gorm.DB

func WithLimit(limit int) QueryOption {
	return func(stmt *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return stmt
		}
		return stmt.Limit(limit)
	}
}

func WithOrder(order string) QueryOption {
	return func(stmt *gorm.DB) *gorm.DB {
		if order == "" {
			return stmt
		}
		return stmt.Order(order)
	}
}

func WithWhere(query any, args ...any) QueryOption {
	return func(stmt *gorm.DB) *gorm.DB {
		return stmt.Where(query, args...)
	}
}
