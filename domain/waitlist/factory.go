package waitlist

import (
	"time"

	"github.com/akeren/trustlink-waitlist/config/router"
	"github.com/akeren/trustlink-waitlist/internal/log"
	"gorm.io/gorm"
)

type WaitlistServiceFactory interface {
	CreateService() WaitlistService
	CreateControllers() []*router.RESTController
}

type FactoryOptions struct {
	AdminKey          string
	StoreQueryTimeout time.Duration
	Metrics           *Metrics
}

type DefaultWaitlistServiceFactory struct {
	db      *gorm.DB
	logger  *log.Logger
	options FactoryOptions
	service WaitlistService
}

func NewWaitlistServiceFactory(db *gorm.DB, logger *log.Logger, options FactoryOptions) WaitlistServiceFactory {
	return &DefaultWaitlistServiceFactory{
		db:      db,
		logger:  logger,
		options: options,
	}
}

// CreateService returns the shared service, building it on first use so the
// public and admin controllers sit on one repository and one circuit breaker.
func (f *DefaultWaitlistServiceFactory) CreateService() WaitlistService {
	if f.service == nil {
		repository := NewWaitlistRepository(f.db, RepositoryConfig{
			QueryTimeout: f.options.StoreQueryTimeout,
			Logger:       f.logger,
			Metrics:      f.options.Metrics,
		})
		f.service = NewWaitlistService(f.logger, repository, f.options.Metrics)
	}
	return f.service
}

func (f *DefaultWaitlistServiceFactory) CreateControllers() []*router.RESTController {
	service := f.CreateService()

	return []*router.RESTController{
		NewWaitlistController(service),
		NewAdminWaitlistController(service, f.options.AdminKey),
	}
}
