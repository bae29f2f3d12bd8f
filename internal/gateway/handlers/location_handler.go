package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldforce-system/internal/gateway/middleware"
	"fieldforce-system/internal/geo"
)

// DeviceReporter receives readings posted by the signed-in device.
type DeviceReporter interface {
	Pending(session string) bool
	Report(session string, r geo.Reading) (int, error)
}

type LocationHTTPHandler struct {
	tracker *geo.Tracker
	device  DeviceReporter
}

func NewLocationHTTPHandler(tracker *geo.Tracker, device DeviceReporter) *LocationHTTPHandler {
	return &LocationHTTPHandler{tracker: tracker, device: device}
}

type RefreshLocationRequest struct {
	Purpose geo.Purpose `json:"purpose" binding:"required"`
}

type ReportLocationRequest struct {
	geo.Reading
}

type LocationView struct {
	Purpose geo.Purpose `json:"purpose"`
	geo.Snapshot
	Ready bool `json:"ready"`
	// AwaitingDevice is set while a read waits for the device to report.
	AwaitingDevice bool `json:"awaiting_device"`
}

func (h *LocationHTTPHandler) view(session string, purpose geo.Purpose, snap geo.Snapshot) LocationView {
	v := LocationView{Purpose: purpose, Snapshot: snap, Ready: snap.Ready()}
	if h.device != nil {
		v.AwaitingDevice = h.device.Pending(session)
	}
	return v
}

func (h *LocationHTTPHandler) Refresh(c *gin.Context) {
	var req RefreshLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Purpose.Valid() {
		c.JSON(http.StatusBadRequest, errorResponse("Purpose must be attendance or customer"))
		return
	}
	sid := middleware.CurrentSession(c).ID
	snap := h.tracker.Refresh(geo.Key{Session: sid, Purpose: req.Purpose})
	c.JSON(http.StatusAccepted, successResponse("Getting location...", h.view(sid, req.Purpose, snap)))
}

func (h *LocationHTTPHandler) Get(c *gin.Context) {
	purpose := geo.Purpose(c.DefaultQuery("purpose", string(geo.PurposeAttendance)))
	if !purpose.Valid() {
		c.JSON(http.StatusBadRequest, errorResponse("Purpose must be attendance or customer"))
		return
	}
	sid := middleware.CurrentSession(c).ID
	snap := h.tracker.Snapshot(geo.Key{Session: sid, Purpose: purpose})
	c.JSON(http.StatusOK, successResponse("Location retrieved", h.view(sid, purpose, snap)))
}

func (h *LocationHTTPHandler) Report(c *gin.Context) {
	if h.device == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse("Device location is not enabled"))
		return
	}
	var req ReportLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}
	n, err := h.device.Report(middleware.CurrentSession(c).ID, req.Reading)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Location reported", gin.H{"answered": n}))
}
