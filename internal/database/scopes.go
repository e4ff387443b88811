package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/taskquest-api/internal/utils"
)

// Paginate applies page/limit to a query. Callers must also order the query
// for pages to be stable.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// OldestFirst orders rows of table by creation time, breaking ties by id.
func OldestFirst(table string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(table + ".created_at ASC").Order(table + ".id ASC")
	}
}
