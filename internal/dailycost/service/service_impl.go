package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/scrooge/internal/clock"
	dailycostdomain "github.com/smallbiznis/scrooge/internal/dailycost/domain"
	"github.com/smallbiznis/scrooge/internal/logger"
	pricingobjectdomain "github.com/smallbiznis/scrooge/internal/pricingobject/domain"
	servicedomain "github.com/smallbiznis/scrooge/internal/serviceregistry/domain"
	"github.com/smallbiznis/scrooge/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB                *gorm.DB
	Log               *zap.Logger
	GenID             *snowflake.Node
	Clock             clock.Clock
	Repo              dailycostdomain.Repository
	PricingObjectRepo pricingobjectdomain.Repository
	ServiceRepo       servicedomain.Repository
}

type Service struct {
	db                *gorm.DB
	log               *zap.Logger
	genID             *snowflake.Node
	clock             clock.Clock
	repo              dailycostdomain.Repository
	pricingObjectRepo pricingobjectdomain.Repository
	serviceRepo       servicedomain.Repository
}

func New(p Params) dailycostdomain.Service {
	return &Service{
		db:                p.DB,
		log:               p.Log.Named("dailycost.service"),
		genID:             p.GenID,
		clock:             p.Clock,
		repo:              p.Repo,
		pricingObjectRepo: p.PricingObjectRepo,
		serviceRepo:       p.ServiceRepo,
	}
}

func (s *Service) Record(ctx context.Context, req dailycostdomain.RecordRequest) (*dailycostdomain.DailyPricingObject, error) {
	day := dailycostdomain.Day(req.Date)
	if day.IsZero() {
		return nil, dailycostdomain.ErrInvalidDate
	}

	var entity *dailycostdomain.DailyPricingObject
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		po, err := s.pricingObjectRepo.FindByID(ctx, tx, req.PricingObjectID)
		if err != nil {
			return err
		}
		if po == nil {
			return dailycostdomain.ErrPricingObjectNotFound
		}

		serviceID := po.ServiceID
		if req.ServiceID != nil && *req.ServiceID != po.ServiceID {
			svc, err := s.serviceRepo.FindByID(ctx, tx, *req.ServiceID)
			if err != nil {
				return err
			}
			if svc == nil {
				return dailycostdomain.ErrServiceNotFound
			}
			serviceID = svc.ID
		}

		existing, err := s.repo.FindByPricingObjectAndDate(ctx, tx, po.ID, day)
		if err != nil {
			return err
		}
		if existing != nil {
			return dailycostdomain.ErrAlreadyRecorded
		}

		entity = &dailycostdomain.DailyPricingObject{
			ID:              s.genID.Generate(),
			Date:            datatypes.Date(day),
			PricingObjectID: po.ID,
			ServiceID:       serviceID,
			CreatedAt:       s.clock.Now(),
		}
		return s.repo.Insert(ctx, tx, entity)
	})
	switch {
	case err == nil:
	case db.IsDuplicateKeyErr(err):
		// a concurrent run got there first
		return nil, dailycostdomain.ErrAlreadyRecorded
	case db.IsForeignKeyErr(err):
		return nil, dailycostdomain.ErrServiceNotFound
	default:
		return nil, err
	}

	s.logger(ctx).Debug("daily pricing object recorded",
		zap.String("daily_pricing_object_id", entity.ID.String()),
		zap.String("pricing_object_id", entity.PricingObjectID.String()),
		zap.String("date", day.Format(time.DateOnly)),
	)
	return entity, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*dailycostdomain.DailyPricingObject, error) {
	return notFoundIfNil(s.repo.FindByID(ctx, s.db, id))
}

func (s *Service) ListByDate(ctx context.Context, date time.Time) ([]dailycostdomain.DailyPricingObject, error) {
	day := dailycostdomain.Day(date)
	if day.IsZero() {
		return nil, dailycostdomain.ErrInvalidDate
	}
	return s.repo.ListByDate(ctx, s.db, day)
}

func (s *Service) ListByPricingObject(ctx context.Context, pricingObjectID snowflake.ID, from, to time.Time) ([]dailycostdomain.DailyPricingObject, error) {
	from, to, err := dayRange(from, to)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByPricingObject(ctx, s.db, pricingObjectID, from, to)
}

// ListByService returns the snapshots billed to serviceID on those days, which
// may differ from the pricing objects' current service.
func (s *Service) ListByService(ctx context.Context, serviceID snowflake.ID, from, to time.Time) ([]dailycostdomain.DailyPricingObject, error) {
	from, to, err := dayRange(from, to)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByService(ctx, s.db, serviceID, from, to)
}

func (s *Service) RecordAsset(ctx context.Context, req dailycostdomain.RecordAssetRequest) (*dailycostdomain.DailyAssetInfo, error) {
	rate, err := dailycostdomain.NewAmount(req.DepreciationRate)
	if err != nil {
		return nil, err
	}
	cost, err := dailycostdomain.NewAmount(req.DailyCost)
	if err != nil {
		return nil, err
	}

	var info *dailycostdomain.DailyAssetInfo
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		daily, po, err := s.loadDaily(ctx, tx, req.DailyPricingObjectID, pricingobjectdomain.TypeAsset)
		if err != nil {
			return err
		}

		asset, err := s.pricingObjectRepo.FindAssetInfo(ctx, tx, po.ID)
		if err != nil {
			return err
		}
		if asset == nil {
			return dailycostdomain.ErrAssetInfoMissing
		}

		existing, err := s.repo.FindAssetInfo(ctx, tx, daily.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return dailycostdomain.ErrExtensionExists
		}

		info = &dailycostdomain.DailyAssetInfo{
			ID:                   s.genID.Generate(),
			DailyPricingObjectID: daily.ID,
			AssetInfoID:          asset.ID,
			DepreciationRate:     rate,
			IsDepreciated:        req.IsDepreciated,
			DailyCost:            cost,
		}
		return s.repo.InsertAssetInfo(ctx, tx, info)
	})
	if db.IsDuplicateKeyErr(err) {
		return nil, dailycostdomain.ErrExtensionExists
	}
	if err != nil {
		return nil, err
	}
	return info, nil
}

func (s *Service) GetAsset(ctx context.Context, dailyPricingObjectID snowflake.ID) (*dailycostdomain.DailyAssetInfo, error) {
	return notFoundIfNil(s.repo.FindAssetInfo(ctx, s.db, dailyPricingObjectID))
}

// SumDailyCost adds up asset daily costs billed to serviceID over [from, to].
func (s *Service) SumDailyCost(ctx context.Context, serviceID snowflake.ID, from, to time.Time) (decimal.Decimal, error) {
	from, to, err := dayRange(from, to)
	if err != nil {
		return decimal.Zero, err
	}
	costs, err := s.repo.ListAssetCostsByService(ctx, s.db, serviceID, from, to)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, c := range costs {
		total = total.Add(c.Decimal)
	}
	return total, nil
}

func (s *Service) RecordVirtual(ctx context.Context, req dailycostdomain.RecordVirtualRequest) (*dailycostdomain.DailyVirtualInfo, error) {
	var info *dailycostdomain.DailyVirtualInfo
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		daily, _, err := s.loadDaily(ctx, tx, req.DailyPricingObjectID, pricingobjectdomain.TypeVirtual)
		if err != nil {
			return err
		}

		hypervisor, err := s.repo.FindAssetInfoByID(ctx, tx, req.HypervisorID)
		if err != nil {
			return err
		}
		if hypervisor == nil {
			return dailycostdomain.ErrHypervisorNotFound
		}
		hypervisorDay, err := s.repo.FindByID(ctx, tx, hypervisor.DailyPricingObjectID)
		if err != nil {
			return err
		}
		if hypervisorDay == nil {
			return dailycostdomain.ErrHypervisorNotFound
		}
		if !hypervisorDay.Day().Equal(daily.Day()) {
			s.logger(ctx).Warn("hypervisor snapshot from another day",
				zap.String("daily_pricing_object_id", daily.ID.String()),
				zap.String("hypervisor_id", hypervisor.ID.String()),
				zap.String("date", daily.Day().Format(time.DateOnly)),
				zap.String("hypervisor_date", hypervisorDay.Day().Format(time.DateOnly)),
			)
			return dailycostdomain.ErrHypervisorDateMismatch
		}

		existing, err := s.repo.FindVirtualInfo(ctx, tx, daily.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return dailycostdomain.ErrExtensionExists
		}

		info = &dailycostdomain.DailyVirtualInfo{
			ID:                   s.genID.Generate(),
			DailyPricingObjectID: daily.ID,
			HypervisorID:         hypervisor.ID,
		}
		return s.repo.InsertVirtualInfo(ctx, tx, info)
	})
	switch {
	case err == nil:
		return info, nil
	case db.IsDuplicateKeyErr(err):
		return nil, dailycostdomain.ErrExtensionExists
	case db.IsForeignKeyErr(err):
		return nil, dailycostdomain.ErrHypervisorNotFound
	default:
		return nil, err
	}
}

func (s *Service) GetVirtual(ctx context.Context, dailyPricingObjectID snowflake.ID) (*dailycostdomain.DailyVirtualInfo, error) {
	return notFoundIfNil(s.repo.FindVirtualInfo(ctx, s.db, dailyPricingObjectID))
}

func (s *Service) ListVirtualsOnHypervisor(ctx context.Context, hypervisorID snowflake.ID) ([]dailycostdomain.DailyVirtualInfo, error) {
	return s.repo.ListVirtualsByHypervisor(ctx, s.db, hypervisorID)
}

// loadDaily fetches a daily snapshot and its pricing object and checks the
// object has the type the extension is for.
func (s *Service) loadDaily(ctx context.Context, tx *gorm.DB, id snowflake.ID, want pricingobjectdomain.Type) (*dailycostdomain.DailyPricingObject, *pricingobjectdomain.PricingObject, error) {
	daily, err := s.repo.FindByID(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}
	if daily == nil {
		return nil, nil, dailycostdomain.ErrNotFound
	}

	po, err := s.pricingObjectRepo.FindByID(ctx, tx, daily.PricingObjectID)
	if err != nil {
		return nil, nil, err
	}
	if po == nil {
		return nil, nil, dailycostdomain.ErrPricingObjectNotFound
	}
	if po.Type != want {
		return nil, nil, dailycostdomain.ErrTypeMismatch
	}
	return daily, po, nil
}

func (s *Service) logger(ctx context.Context) *zap.Logger {
	return logger.WithContext(ctx, s.log)
}

func dayRange(from, to time.Time) (time.Time, time.Time, error) {
	from, to = dailycostdomain.Day(from), dailycostdomain.Day(to)
	if from.IsZero() || to.IsZero() || from.After(to) {
		return time.Time{}, time.Time{}, dailycostdomain.ErrInvalidDateRange
	}
	return from, to, nil
}

func notFoundIfNil[T any](item *T, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, dailycostdomain.ErrNotFound
	}
	return item, nil
}
