package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fieldforce-system/internal/gateway/clients"
	"fieldforce-system/internal/rpc"
)

type HealthHTTPHandler struct {
	probes []rpc.Probe
	grpc   *clients.HealthClient
}

// NewHealthHTTPHandler checks probes in-process; grpc may be nil when the
// health server is disabled.
func NewHealthHTTPHandler(probes []rpc.Probe, grpc *clients.HealthClient) *HealthHTTPHandler {
	return &HealthHTTPHandler{probes: probes, grpc: grpc}
}

func (h *HealthHTTPHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	httpStatus := http.StatusOK

	unavailableServices := []string{}
	for _, p := range h.probes {
		if err := p.Check(ctx); err != nil {
			unavailableServices = append(unavailableServices, p.Service)
		}
	}
	if len(unavailableServices) > 0 {
		status = "degraded"
		httpStatus = http.StatusPartialContent
	}

	c.JSON(httpStatus, gin.H{
		"status":               status,
		"message":              "Server is running",
		"unavailable_services": unavailableServices,
		"timestamp":            time.Now(),
	})
}

func (h *HealthHTTPHandler) DetailedHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	services := map[string]interface{}{}
	overallStatus := "healthy"
	for _, p := range h.probes {
		result := checkServiceHealth(p.Check(ctx))
		if result["status"] != "healthy" {
			overallStatus = "degraded"
		}
		services[p.Service] = result
	}

	grpcStatus := map[string]interface{}{"status": "disabled"}
	if h.grpc != nil {
		st, err := h.grpc.Status(ctx, "")
		grpcStatus = map[string]interface{}{"status": st}
		if err != nil {
			grpcStatus["message"] = err.Error()
		}
		if st != "SERVING" {
			overallStatus = "degraded"
		}
	}
	services["grpc"] = grpcStatus

	c.JSON(http.StatusOK, gin.H{
		"overall_status": overallStatus,
		"services":       services,
		"timestamp":      time.Now(),
	})
}

func checkServiceHealth(err error) map[string]interface{} {
	if err != nil {
		return map[string]interface{}{
			"status":  "unavailable",
			"message": err.Error(),
		}
	}
	return map[string]interface{}{
		"status":  "healthy",
		"message": "Service is responding",
	}
}
