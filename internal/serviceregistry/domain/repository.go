package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, service *Service) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Service, error)
	FindBySymbol(ctx context.Context, db *gorm.DB, symbol string) (*Service, error)
	List(ctx context.Context, db *gorm.DB) ([]Service, error)
}
