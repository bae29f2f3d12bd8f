package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldforce-system/internal/filter"
	"fieldforce-system/internal/gateway/middleware"
	"fieldforce-system/internal/services"
)

type CustomerHTTPHandler struct {
	svc *services.Services
}

func NewCustomerHTTPHandler(svc *services.Services) *CustomerHTTPHandler {
	return &CustomerHTTPHandler{svc: svc}
}

func (h *CustomerHTTPHandler) ListCustomers(c *gin.Context) {
	q, ok := bindList(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	customers, err := h.svc.Customers.ListAll(ctx, middleware.CurrentUser(c), filterQuery(c, q, filter.Customers))
	if err != nil {
		writeError(c, err)
		return
	}
	page, meta := paginate(customers, q)
	c.JSON(http.StatusOK, successWithMetaResponse("Customers retrieved successfully", page, meta))
}

func (h *CustomerHTTPHandler) ListMyCustomers(c *gin.Context) {
	q, ok := bindList(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user := middleware.CurrentUser(c)
	customers, err := h.svc.Customers.ListOwned(ctx, user, user.ID, filterQuery(c, q, filter.OwnCustomers))
	if err != nil {
		writeError(c, err)
		return
	}
	page, meta := paginate(customers, q)
	c.JSON(http.StatusOK, successWithMetaResponse("Customers retrieved successfully", page, meta))
}

func (h *CustomerHTTPHandler) AddCustomer(c *gin.Context) {
	var req services.NewCustomer
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	st := middleware.CurrentSession(c)
	customer, err := h.svc.Customers.Add(ctx, st.User, st.ID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("Customer added successfully", customer))
}

func (h *CustomerHTTPHandler) LogVisit(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.VisitLog
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	visit, err := h.svc.Customers.LogVisit(ctx, middleware.CurrentUser(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("Visit logged successfully", visit))
}

func (h *CustomerHTTPHandler) ScheduleVisit(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.VisitSchedule
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	visit, err := h.svc.Customers.ScheduleVisit(ctx, middleware.CurrentUser(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("Visit scheduled successfully", visit))
}

func (h *CustomerHTTPHandler) Upcoming(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user := middleware.CurrentUser(c)
	customers, err := h.svc.Customers.Upcoming(ctx, user, user.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Upcoming visits retrieved successfully", customers))
}
