package worker

import (
	"github.com/Elmamis69/ticket-master-api/internal/service"
)

// StartMetricsWorker registers the metrics handlers on the dispatcher.
func StartMetricsWorker(metricsService *service.MetricsService) {
	if metricsService == nil {
		return
	}
	metricsService.RegisterHandlers()
}
