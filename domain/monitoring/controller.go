package monitoring

import (
	"context"
	"net/http"
	"time"

	"github.com/akeren/trustlink-waitlist/config/router"
	"github.com/akeren/trustlink-waitlist/internal/log"
	"github.com/akeren/trustlink-waitlist/pkg/constants"
	"gorm.io/gorm"
)

const healthCheckTimeout = 2 * time.Second

type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
	Uptime    int64  `json:"uptime"`
}

// Pinger reports store connectivity. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type MonitoringController struct {
	pinger    func() (Pinger, error)
	logger    *log.Logger
	startTime time.Time
	now       func() time.Time
}

func NewMonitoringController(db *gorm.DB, logger *log.Logger) *router.RESTController {
	return newMonitoringController(func() (Pinger, error) { return db.DB() }, logger)
}

func newMonitoringController(pinger func() (Pinger, error), logger *log.Logger) *router.RESTController {
	ctrl := &MonitoringController{
		pinger:    pinger,
		logger:    logger,
		startTime: time.Now(),
		now:       time.Now,
	}

	return router.NewRESTController(
		"MonitoringController",
		"/",
		func(routerService *router.RouterService, controller *router.RESTController) {
			routerService.AddGetHandler(controller, "health", func(c *router.RequestContext) *router.ServiceResult {
				return ctrl.healthCheck(routerService, c)
			})
		},
	)
}

func (ctrl *MonitoringController) healthCheck(
	routerService *router.RouterService,
	c *router.RequestContext,
) *router.ServiceResult {
	logger := routerService.GetLogger(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	status := HealthStatus{
		Status:    "ok",
		Timestamp: ctrl.now().UTC().Format(constants.RFC3339DateTimeFormat),
		Database:  "connected",
		Uptime:    int64(time.Since(ctrl.startTime).Seconds()),
	}

	if !ctrl.checkDatabase(ctx) {
		logger.Error("Database health check failed")
		status.Status = "degraded"
		status.Database = "disconnected"

		return &router.ServiceResult{StatusCode: http.StatusServiceUnavailable, Body: status}
	}

	logger.Debug("Health check passed")
	return router.OKResult(status)
}

func (ctrl *MonitoringController) checkDatabase(ctx context.Context) bool {
	pinger, err := ctrl.pinger()
	if err != nil || pinger == nil {
		return false
	}

	return pinger.PingContext(ctx) == nil
}
