// Package db provides database utilities including transaction management and query scopes.
package db

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ForUpdate is a GORM scope that takes a row lock on the selected rows.
// It only has an effect inside a transaction; dialects without row locks ignore it.
//
// Example usage:
//
//	tx.Scopes(db.ForUpdate()).Where("id = ?", id).First(&model)
func ForUpdate() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if db.Dialector != nil && db.Dialector.Name() == "sqlite" {
			return db
		}
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
}

// CreatedSince restricts a query to rows created at or after the given time.
func CreatedSince(column string, since any) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" >= ?", since)
	}
}
