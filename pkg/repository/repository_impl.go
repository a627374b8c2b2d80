package repository

import (
	"errors"

	"gorm.io/gorm"
)

// TakeOne runs stmt.Take into a fresh T. A missing row yields (nil, nil) so
// services decide which not-found error to surface.
func TakeOne[T any](stmt *gorm.DB) (*T, error) {
	var result T
	err := stmt.Take(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// FindAll runs stmt.Find and never returns a nil slice on success.
func FindAll[T any](stmt *gorm.DB) ([]T, error) {
	result := make([]T, 0)
	if err := stmt.Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}
