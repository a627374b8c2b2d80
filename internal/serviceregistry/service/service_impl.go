package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/scrooge/internal/clock"
	servicedomain "github.com/smallbiznis/scrooge/internal/serviceregistry/domain"
	"github.com/smallbiznis/scrooge/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  servicedomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  servicedomain.Repository
}

func New(p Params) servicedomain.Registry {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("serviceregistry.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req servicedomain.CreateRequest) (*servicedomain.Service, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, servicedomain.ErrInvalidName
	}
	symbol := strings.ToLower(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return nil, servicedomain.ErrInvalidSymbol
	}

	now := s.clock.Now()
	entity := &servicedomain.Service{
		ID:        s.genID.Generate(),
		Name:      name,
		Symbol:    symbol,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, servicedomain.ErrSymbolTaken
		}
		return nil, err
	}

	s.log.Info("service created", zap.String("service_id", entity.ID.String()), zap.String("symbol", symbol))
	return entity, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*servicedomain.Service, error) {
	entity, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, servicedomain.ErrNotFound
	}
	return entity, nil
}

func (s *Service) GetBySymbol(ctx context.Context, symbol string) (*servicedomain.Service, error) {
	entity, err := s.repo.FindBySymbol(ctx, s.db, strings.ToLower(strings.TrimSpace(symbol)))
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, servicedomain.ErrNotFound
	}
	return entity, nil
}

func (s *Service) List(ctx context.Context) ([]servicedomain.Service, error) {
	return s.repo.List(ctx, s.db)
}
