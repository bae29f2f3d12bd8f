package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fieldforce-system/internal/access"
	"fieldforce-system/internal/database"
	"fieldforce-system/internal/filter"
	"fieldforce-system/internal/geo"
	"fieldforce-system/internal/services"
	"fieldforce-system/internal/session"
	"fieldforce-system/internal/workflow"
)

const requestTimeout = 10 * time.Second

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

func successResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func errorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
	}
}

func successWithMetaResponse(message string, data interface{}, meta interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	}
}

type ListQuery struct {
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
	Search   string `form:"search"`
}

type PageMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func paginate[T any](items []T, q ListQuery) ([]T, PageMeta) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 20
	}
	meta := PageMeta{Page: q.Page, PageSize: q.PageSize, Total: len(items)}
	meta.TotalPages = (len(items) + q.PageSize - 1) / q.PageSize

	start := (q.Page - 1) * q.PageSize
	if start >= len(items) {
		return []T{}, meta
	}
	end := start + q.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], meta
}

// filterQuery reads the search box and every dropdown the list declares.
func filterQuery[T any](c *gin.Context, q ListQuery, fields filter.Fields[T]) filter.Query {
	fq := filter.Query{Search: q.Search, Exact: make(map[string]string)}
	for name := range fields.Exact {
		if v := c.Query(name); v != "" {
			fq.Exact[name] = v
		}
	}
	return fq
}

func bindList(c *gin.Context) (ListQuery, bool) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return q, false
	}
	return q, true
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid "+name))
		return 0, false
	}
	return id, true
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// writeError maps domain errors to status codes. Unknown errors are logged
// and reported generically.
func writeError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, errorResponse(verr.Message))
	case errors.Is(err, access.ErrForbidden):
		c.JSON(http.StatusForbidden, errorResponse("You do not have permission to perform this action"))
	case errors.Is(err, database.ErrNotFound), errors.Is(err, geo.ErrNoPendingRequest):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, session.ErrInvalidCredentials), errors.Is(err, session.ErrSessionNotFound):
		c.JSON(http.StatusUnauthorized, errorResponse(err.Error()))
	case errors.Is(err, database.ErrDuplicate),
		errors.Is(err, workflow.ErrAlreadyReviewed),
		errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, services.ErrAlreadyCheckedIn),
		errors.Is(err, services.ErrNotCheckedIn),
		errors.Is(err, services.ErrLocationUnavailable):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, database.ErrInvalidRecord),
		errors.Is(err, workflow.ErrUnknownDecision),
		errors.Is(err, services.ErrUnknownReport),
		errors.Is(err, services.ErrFingerprintRequired),
		errors.Is(err, session.ErrTabUnavailable),
		errors.Is(err, session.ErrNotViewing):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, errorResponse("Request timed out"))
	default:
		log.Printf("Unhandled error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, errorResponse("Internal server error"))
	}
}
