package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	servicedomain "github.com/smallbiznis/scrooge/internal/serviceregistry/domain"
	"github.com/smallbiznis/scrooge/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() servicedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, s *servicedomain.Service) error {
	return db.WithContext(ctx).Create(s).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*servicedomain.Service, error) {
	return repository.TakeOne[servicedomain.Service](db.WithContext(ctx).Where("id = ?", id))
}

func (r *repo) FindBySymbol(ctx context.Context, db *gorm.DB, symbol string) (*servicedomain.Service, error) {
	return repository.TakeOne[servicedomain.Service](db.WithContext(ctx).Where("symbol = ?", symbol))
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]servicedomain.Service, error) {
	return repository.FindAll[servicedomain.Service](db.WithContext(ctx).Order("symbol ASC"))
}
