package main

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"fieldforce-system/internal/gateway/clients"
	"fieldforce-system/internal/gateway/handlers"
	"fieldforce-system/internal/gateway/middleware"
	"fieldforce-system/internal/geo"
	"fieldforce-system/internal/metrics"
	"fieldforce-system/internal/rpc"
	"fieldforce-system/internal/services"
	"fieldforce-system/internal/session"
	"fieldforce-system/internal/workflow"
)

// app is everything the router needs, built once in main.
type app struct {
	gate        *session.Gate
	services    *services.Services
	tracker     *geo.Tracker
	device      handlers.DeviceReporter
	metrics     *metrics.Metrics
	probes      []rpc.Probe
	health      *clients.HealthClient
	rateLimit   string
	corsOrigins []string
}

func newRouter(a *app) (*gin.Engine, error) {
	rateLimit, err := middleware.RateLimit(a.rateLimit)
	if err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	r := gin.Default()

	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(a.corsOrigins))
	r.Use(middleware.Metrics(a.metrics))
	r.Use(rateLimit)

	authHandler := handlers.NewAuthHTTPHandler(a.gate, a.tracker, a.metrics)
	locationHandler := handlers.NewLocationHTTPHandler(a.tracker, a.device)
	employeeHandler := handlers.NewEmployeeHTTPHandler(a.services)
	customerHandler := handlers.NewCustomerHTTPHandler(a.services)
	attendanceHandler := handlers.NewAttendanceHTTPHandler(a.services)
	requestHandler := handlers.NewRequestHTTPHandler(a.services)
	reportHandler := handlers.NewReportHTTPHandler(a.services)
	settingsHandler := handlers.NewSettingsHTTPHandler(a.services)
	healthHandler := handlers.NewHealthHTTPHandler(a.probes, a.health)

	// --- Public API Group ---
	public := r.Group("/api/v1")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
		}
	}

	// --- Protected API Group ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth(a.gate))
	{
		protected.POST("/auth/logout", authHandler.Logout)

		sessions := protected.Group("/session")
		{
			sessions.GET("", authHandler.Session)
			sessions.PUT("/tab", authHandler.SelectTab)
			sessions.POST("/viewing/:id", authHandler.ViewEmployee)
			sessions.DELETE("/viewing", authHandler.ExitViewing)
			sessions.POST("/profile", authHandler.OpenProfile)
		}

		location := protected.Group("/location")
		{
			location.GET("", locationHandler.Get)
			location.POST("/refresh", locationHandler.Refresh)
			location.POST("/report", locationHandler.Report)
		}

		me := protected.Group("/me")
		{
			me.GET("/customers", customerHandler.ListMyCustomers)
			me.POST("/customers", customerHandler.AddCustomer)
			me.GET("/customers/upcoming", customerHandler.Upcoming)
			me.POST("/customers/:id/visits/log", customerHandler.LogVisit)
			me.POST("/customers/:id/visits/schedule", customerHandler.ScheduleVisit)

			me.GET("/attendance", attendanceHandler.ListMyAttendance)
			me.GET("/attendance/stats", attendanceHandler.MyStats)
			me.POST("/attendance/check-in", attendanceHandler.CheckIn)
			me.POST("/attendance/check-out", attendanceHandler.CheckOut)

			me.GET("/requests/attendance", requestHandler.ListMyManual)
			me.POST("/requests/attendance", requestHandler.SubmitManual)
			me.GET("/requests/password", requestHandler.ListMyPassword)
			me.POST("/requests/password", requestHandler.SubmitPassword)

			me.PUT("/password", requestHandler.ChangePassword)
		}

		protected.GET("/search", reportHandler.Search)

		admin := protected.Group("")
		admin.Use(middleware.RequireAdmin())
		{
			employees := admin.Group("/employees")
			{
				employees.GET("", employeeHandler.ListEmployees)
				employees.POST("", employeeHandler.CreateEmployee)
				employees.GET("/:id", employeeHandler.GetEmployee)
				employees.PUT("/:id", employeeHandler.UpdateEmployee)
				employees.DELETE("/:id", employeeHandler.DeleteEmployee)
				employees.GET("/:id/customers", employeeHandler.EmployeeCustomers)
				employees.GET("/:id/attendance", employeeHandler.EmployeeAttendance)
			}

			admin.GET("/customers", customerHandler.ListCustomers)
			admin.GET("/attendance", attendanceHandler.ListAttendance)
			admin.GET("/attendance/stats", attendanceHandler.DayStats)

			requests := admin.Group("/requests")
			{
				requests.GET("/attendance", requestHandler.ListManual)
				requests.POST("/attendance/:id/approve", requestHandler.ReviewManual(workflow.Approve))
				requests.POST("/attendance/:id/reject", requestHandler.ReviewManual(workflow.Reject))
				requests.GET("/password", requestHandler.ListPassword)
				requests.POST("/password/:id/approve", requestHandler.ReviewPassword(workflow.Approve))
				requests.POST("/password/:id/reject", requestHandler.ReviewPassword(workflow.Reject))
				requests.GET("/pending-count", requestHandler.PendingCount)
			}

			admin.GET("/visits", reportHandler.ListVisits)
			admin.GET("/visits/stats", reportHandler.VisitStats)

			reports := admin.Group("/reports")
			{
				reports.GET("/dashboard", reportHandler.Dashboard)
				reports.GET("/export", reportHandler.Export)
			}

			admin.GET("/settings", settingsHandler.GetSettings)
			admin.PUT("/settings", settingsHandler.UpdateSettings)
			admin.GET("/profile", settingsHandler.GetProfile)
			admin.PUT("/profile", settingsHandler.UpdateProfile)
		}
	}

	r.GET("/health", healthHandler.Health)
	r.GET("/health/detailed", healthHandler.DetailedHealth)
	if a.metrics != nil {
		r.GET("/metrics", gin.WrapH(a.metrics.Handler()))
	}

	return r, nil
}
