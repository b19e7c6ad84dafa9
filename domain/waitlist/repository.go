package waitlist

import (
	"context"
	"errors"
	"time"

	"github.com/akeren/trustlink-waitlist/internal/log"
	"github.com/akeren/trustlink-waitlist/internal/models"
	"github.com/akeren/trustlink-waitlist/pkg/circuitbreaker"
	"github.com/akeren/trustlink-waitlist/pkg/constants"
	apperrors "github.com/akeren/trustlink-waitlist/pkg/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=waitlist

const pgUniqueViolation = "23505"

type WaitlistRepository interface {
	// CreateEntry inserts a new entry. A taken email yields a CONFLICT error.
	CreateEntry(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error)
	// ListEntries returns one page of entries matching filter, newest first.
	ListEntries(ctx context.Context, filter ListFilter, page Page) ([]models.WaitlistEntry, error)
	// CountEntries returns the number of stored entries, ignoring any filter.
	CountEntries(ctx context.Context) (int64, error)
	// CountByActorType reads the per-actor-type aggregate view.
	CountByActorType(ctx context.Context) ([]models.ActorTypeCount, error)
	// TopCities reads the per-city aggregate view, largest first.
	TopCities(ctx context.Context, limit int) ([]models.CityCount, error)
	// MarkNotified sets notified and, when notes is non-nil, replaces notes.
	MarkNotified(ctx context.Context, id uint, notes *string) (*models.WaitlistEntry, error)
	// ExportEntries returns every entry, optionally restricted to one actor type, newest first.
	ExportEntries(ctx context.Context, actorType string) ([]models.WaitlistEntry, error)
}

type RepositoryConfig struct {
	// QueryTimeout bounds every store call, including the wait for a pooled connection.
	QueryTimeout time.Duration
	Breaker      *circuitbreaker.Config
	Logger       *log.Logger
	Metrics      *Metrics
}

type waitlistRepository struct {
	db           *gorm.DB
	queryTimeout time.Duration
	breaker      circuitbreaker.CircuitBreaker
	logger       *log.Logger
	metrics      *Metrics
}

func NewWaitlistRepository(db *gorm.DB, cfg RepositoryConfig) WaitlistRepository {
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = constants.DefaultStoreQueryTimeout
	}

	breakerCfg := circuitbreaker.DefaultConfig()
	if cfg.Breaker != nil {
		*breakerCfg = *cfg.Breaker
	}
	breakerCfg.IsFailure = isInfrastructureFailure

	wr := &waitlistRepository{
		db:           db,
		queryTimeout: cfg.QueryTimeout,
		logger:       cfg.Logger,
		metrics:      cfg.Metrics,
	}

	next := breakerCfg.OnStateChange
	breakerCfg.OnStateChange = func(from, to circuitbreaker.CircuitState) {
		wr.breakerStateChanged(from, to)
		if next != nil {
			next(from, to)
		}
	}

	wr.breaker = circuitbreaker.NewCircuitBreaker(breakerCfg)
	wr.metrics.setStoreCircuitState(circuitbreaker.Closed)

	return wr
}

func (wr *waitlistRepository) breakerStateChanged(from, to circuitbreaker.CircuitState) {
	wr.metrics.setStoreCircuitState(to)

	if wr.logger == nil {
		return
	}
	if to == circuitbreaker.Open {
		wr.logger.Error("Waitlist store circuit opened", "from", from.String(), "next_attempt", wr.breaker.Metrics().NextAttempt)
		return
	}
	wr.logger.Info("Waitlist store circuit state changed", "from", from.String(), "to", to.String())
}

// run executes fn under the per-query deadline and the circuit breaker.
func (wr *waitlistRepository) run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	queryCtx, cancel := context.WithTimeout(ctx, wr.queryTimeout)
	defer cancel()

	err := wr.breaker.Call(func() error {
		err := fn(wr.db.WithContext(queryCtx))
		if err != nil && ctx.Err() != nil {
			return &callerGoneError{err: err}
		}
		return err
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return apperrors.NewDatabaseError("waitlist store is unavailable", errors.Join(ErrStoreUnavailable, err))
	}

	var gone *callerGoneError
	if errors.As(err, &gone) {
		return gone.err
	}

	return err
}

// callerGoneError marks a store error seen after the caller's context ended.
type callerGoneError struct {
	err error
}

func (e *callerGoneError) Error() string { return e.err.Error() }
func (e *callerGoneError) Unwrap() error { return e.err }

func (wr *waitlistRepository) CreateEntry(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
	err := wr.run(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			if isDuplicateKey(err) {
				return apperrors.NewConflictError(msgEmailRegistered, errors.Join(ErrDuplicateEmail, err))
			}
			return apperrors.NewDatabaseError("unable to create waitlist entry", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (wr *waitlistRepository) ListEntries(ctx context.Context, filter ListFilter, page Page) ([]models.WaitlistEntry, error) {
	var entries []models.WaitlistEntry

	err := wr.run(ctx, func(tx *gorm.DB) error {
		q := tx.Model(&models.WaitlistEntry{})
		if exprs := filter.Predicates(); len(exprs) > 0 {
			q = q.Clauses(clause.Where{Exprs: exprs})
		}

		if err := q.Order(newestFirst).Limit(page.Limit).Offset(page.Offset).Find(&entries).Error; err != nil {
			return apperrors.NewDatabaseError("unable to list waitlist entries", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (wr *waitlistRepository) CountEntries(ctx context.Context) (int64, error) {
	var total int64

	err := wr.run(ctx, func(tx *gorm.DB) error {
		if err := tx.Model(&models.WaitlistEntry{}).Count(&total).Error; err != nil {
			return apperrors.NewDatabaseError("unable to count waitlist entries", err)
		}
		return nil
	})

	return total, err
}

func (wr *waitlistRepository) CountByActorType(ctx context.Context) ([]models.ActorTypeCount, error) {
	var rows []models.ActorTypeCount

	err := wr.run(ctx, func(tx *gorm.DB) error {
		err := tx.Table(models.StatsViewName).
			Select("actor_type", "count").
			Order(clause.OrderByColumn{Column: clause.Column{Name: "actor_type"}}).
			Scan(&rows).Error
		if err != nil {
			return apperrors.NewDatabaseError("unable to read actor type stats", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (wr *waitlistRepository) TopCities(ctx context.Context, limit int) ([]models.CityCount, error) {
	var rows []models.CityCount

	err := wr.run(ctx, func(tx *gorm.DB) error {
		err := tx.Table(models.ByCityViewName).
			Select("city", "count").
			Order(clause.OrderBy{Columns: []clause.OrderByColumn{
				{Column: clause.Column{Name: "count"}, Desc: true},
				{Column: clause.Column{Name: "city"}},
			}}).
			Limit(limit).
			Scan(&rows).Error
		if err != nil {
			return apperrors.NewDatabaseError("unable to read city stats", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (wr *waitlistRepository) MarkNotified(ctx context.Context, id uint, notes *string) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry

	err := wr.run(ctx, func(tx *gorm.DB) error {
		updates := map[string]any{"notified": true}
		if notes != nil {
			updates["notes"] = *notes
		}

		result := tx.Model(&models.WaitlistEntry{}).
			Where(clause.Eq{Column: clause.Column{Name: "id"}, Value: id}).
			Updates(updates)
		if result.Error != nil {
			return apperrors.NewDatabaseError("unable to mark waitlist entry notified", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.NewNotFoundError(msgEntryNotFound, ErrEntryNotFound)
		}

		if err := tx.First(&entry, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFoundError(msgEntryNotFound, errors.Join(ErrEntryNotFound, err))
			}
			return apperrors.NewDatabaseError("unable to reload waitlist entry", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

func (wr *waitlistRepository) ExportEntries(ctx context.Context, actorType string) ([]models.WaitlistEntry, error) {
	var entries []models.WaitlistEntry

	err := wr.run(ctx, func(tx *gorm.DB) error {
		q := tx.Model(&models.WaitlistEntry{})
		if actorType != "" {
			q = q.Clauses(clause.Where{Exprs: ListFilter{ActorType: &actorType}.Predicates()})
		}

		if err := q.Order(newestFirst).Find(&entries).Error; err != nil {
			return apperrors.NewDatabaseError("unable to export waitlist entries", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// isDuplicateKey recognises unique violations from gorm's translated error,
// the postgres error code, or driver text as a last resort.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}

	return apperrors.IsDuplicateKeyError(err)
}

// isInfrastructureFailure keeps client faults from tripping the breaker.
// Errors seen after the caller went away never count.
func isInfrastructureFailure(err error) bool {
	var gone *callerGoneError
	if errors.As(err, &gone) || errors.Is(err, context.Canceled) {
		return false
	}

	switch apperrors.GetErrorType(err) {
	case apperrors.ErrorTypeConflict, apperrors.ErrorTypeNotFound:
		return false
	default:
		return true
	}
}
