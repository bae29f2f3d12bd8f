package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldforce-system/internal/filter"
	"fieldforce-system/internal/gateway/middleware"
	"fieldforce-system/internal/services"
)

type EmployeeHTTPHandler struct {
	svc *services.Services
}

func NewEmployeeHTTPHandler(svc *services.Services) *EmployeeHTTPHandler {
	return &EmployeeHTTPHandler{svc: svc}
}

func (h *EmployeeHTTPHandler) ListEmployees(c *gin.Context) {
	q, ok := bindList(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	employees, err := h.svc.Employees.List(ctx, middleware.CurrentUser(c), filterQuery(c, q, filter.Employees))
	if err != nil {
		writeError(c, err)
		return
	}
	page, meta := paginate(employees, q)
	c.JSON(http.StatusOK, successWithMetaResponse("Employees retrieved successfully", page, meta))
}

func (h *EmployeeHTTPHandler) GetEmployee(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	e, err := h.svc.Employees.Get(ctx, middleware.CurrentUser(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Employee retrieved successfully", e))
}

func (h *EmployeeHTTPHandler) CreateEmployee(c *gin.Context) {
	var req services.NewEmployee
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	e, err := h.svc.Employees.Create(ctx, middleware.CurrentUser(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("Employee added successfully", e))
}

func (h *EmployeeHTTPHandler) UpdateEmployee(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.EmployeeUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	e, err := h.svc.Employees.Update(ctx, middleware.CurrentUser(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Employee updated successfully", e))
}

func (h *EmployeeHTTPHandler) DeleteEmployee(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Employees.Delete(ctx, middleware.CurrentUser(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Employee deleted successfully", nil))
}

// --- Read-only drill-down ---

func (h *EmployeeHTTPHandler) EmployeeCustomers(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	q, ok := bindList(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	customers, err := h.svc.Customers.ListOwned(ctx, middleware.CurrentUser(c), id, filterQuery(c, q, filter.OwnCustomers))
	if err != nil {
		writeError(c, err)
		return
	}
	page, meta := paginate(customers, q)
	c.JSON(http.StatusOK, successWithMetaResponse("Customers retrieved successfully", page, meta))
}

func (h *EmployeeHTTPHandler) EmployeeAttendance(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	q, ok := bindList(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user := middleware.CurrentUser(c)
	records, err := h.svc.Attendance.ListOwned(ctx, user, id, filterQuery(c, q, filter.Attendance))
	if err != nil {
		writeError(c, err)
		return
	}
	stats, err := h.svc.Attendance.Stats(ctx, user, id)
	if err != nil {
		writeError(c, err)
		return
	}
	page, meta := paginate(records, q)
	c.JSON(http.StatusOK, successWithMetaResponse("Attendance retrieved successfully", gin.H{
		"records": page,
		"stats":   stats,
	}, meta))
}
