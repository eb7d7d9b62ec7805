package handlers

import (
	"net/http"

	"jollybaba-backend/internal/monitoring"
	"jollybaba-backend/pkg/utils"
)

type MonitoringHandler struct {
	Collector *monitoring.Collector
}

func NewMonitoringHandler(collector *monitoring.Collector) *MonitoringHandler {
	return &MonitoringHandler{Collector: collector}
}

// SystemStats serves the admin dashboard's process and host snapshot.
func (h *MonitoringHandler) SystemStats(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, h.Collector.Collect(r.Context()))
}
