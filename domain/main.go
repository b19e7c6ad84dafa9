package domain

import (
	"github.com/akeren/trustlink-waitlist/config"
	"github.com/akeren/trustlink-waitlist/domain/monitoring"
	"github.com/akeren/trustlink-waitlist/domain/waitlist"
)

func SetupCoreDomain(appConfig *config.ApplicationConfig) {
	rs := appConfig.RouterService

	rs.MountController(monitoring.NewMonitoringControllerFactory(appConfig.DB, appConfig.Logger).CreateController())

	waitlistFactory := waitlist.NewWaitlistServiceFactory(appConfig.DB, appConfig.Logger, waitlist.FactoryOptions{
		AdminKey:          appConfig.Config.AdminKey,
		StoreQueryTimeout: appConfig.Config.StoreQueryTimeout,
		Metrics:           waitlist.NewMetrics(rs.MetricsRegistry()),
	})
	for _, controller := range waitlistFactory.CreateControllers() {
		rs.MountController(controller)
	}
}
