package handlers

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fieldforce-system/internal/export"
	"fieldforce-system/internal/filter"
	"fieldforce-system/internal/gateway/middleware"
	"fieldforce-system/internal/services"
)

type ReportHTTPHandler struct {
	svc *services.Services
}

func NewReportHTTPHandler(svc *services.Services) *ReportHTTPHandler {
	return &ReportHTTPHandler{svc: svc}
}

func (h *ReportHTTPHandler) ListVisits(c *gin.Context) {
	q, ok := bindList(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	visits, err := h.svc.Visits.List(ctx, middleware.CurrentUser(c), filterQuery(c, q, filter.Visits))
	if err != nil {
		writeError(c, err)
		return
	}
	page, meta := paginate(visits, q)
	c.JSON(http.StatusOK, successWithMetaResponse("Visits retrieved successfully", page, meta))
}

func (h *ReportHTTPHandler) VisitStats(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := h.svc.Visits.Stats(ctx, middleware.CurrentUser(c), c.Query("date"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Visit stats retrieved successfully", stats))
}

func (h *ReportHTTPHandler) Dashboard(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	d, err := h.svc.Reports.Dashboard(ctx, middleware.CurrentUser(c), c.Query("date"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Dashboard retrieved successfully", d))
}

func (h *ReportHTTPHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	period := services.DateRange{From: c.Query("from"), To: c.Query("to")}
	table, err := h.svc.Reports.Export(ctx, middleware.CurrentUser(c), c.Query("type"), period)
	if err != nil {
		writeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, table, format); err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(table.FileName(format)))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (h *ReportHTTPHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	ctx, cancel := requestContext(c)
	defer cancel()

	hits, err := h.svc.Search(ctx, middleware.CurrentUser(c), c.Query("q"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Search completed", hits))
}
