package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"wheelhouse/middleware"
	"wheelhouse/models"
	"wheelhouse/services/booking"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	Service booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

// CreateBookingHandler handles POST /bookings.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.UserID == "" {
		req.UserID = authenticatedUser(c)
	}

	b, err := h.Service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "booking": b})
}

// ConfirmBookingHandler handles POST /bookings/:id/confirm.
func (h *BookingHandler) ConfirmBookingHandler(c *gin.Context) {
	by, ok := bindActor(c)
	if !ok {
		return
	}
	b, err := h.Service.ConfirmBooking(c.Request.Context(), c.Param("id"), by)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Booking confirmed", "booking": b})
}

// DeliverBookingHandler handles POST /bookings/:id/deliver.
func (h *BookingHandler) DeliverBookingHandler(c *gin.Context) {
	by, ok := bindActor(c)
	if !ok {
		return
	}
	b, err := h.Service.DeliverBooking(c.Request.Context(), c.Param("id"), by)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "booking": b})
}

// ReturnVehicleHandler handles POST /bookings/:id/return.
func (h *BookingHandler) ReturnVehicleHandler(c *gin.Context) {
	by, ok := bindActor(c)
	if !ok {
		return
	}
	b, err := h.Service.ReturnVehicle(c.Request.Context(), c.Param("id"), by)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "booking": b})
}

// CompleteBookingHandler handles POST /bookings/:id/complete.
func (h *BookingHandler) CompleteBookingHandler(c *gin.Context) {
	var req models.CompleteBookingRequest
	if !bindOptional(c, &req) {
		return
	}
	if req.UserID == "" {
		req.UserID = authenticatedUser(c)
	}
	b, err := h.Service.CompleteBooking(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "booking": b})
}

// CancelBookingHandler handles POST /bookings/:id/cancel.
func (h *BookingHandler) CancelBookingHandler(c *gin.Context) {
	var req models.CancelBookingRequest
	if !bindOptional(c, &req) {
		return
	}
	if req.UserID == "" {
		req.UserID = authenticatedUser(c)
	}
	b, err := h.Service.CancelBooking(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "booking": b})
}

// SoftDeleteBookingHandler handles PATCH /bookings/:id/soft-delete.
func (h *BookingHandler) SoftDeleteBookingHandler(c *gin.Context) {
	var req models.SoftDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	b, err := h.Service.SoftDeleteBooking(c.Request.Context(), c.Param("id"), req.IsDeleted, authenticatedUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "booking": b})
}

// AddAdminNoteHandler handles POST /bookings/:id/note.
func (h *BookingHandler) AddAdminNoteHandler(c *gin.Context) {
	var req models.AdminNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.By == "" {
		req.By = authenticatedUser(c)
	}
	b, err := h.Service.AddAdminNote(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "booking": b})
}

// DeleteBookingHandler handles DELETE /bookings/:id.
func (h *BookingHandler) DeleteBookingHandler(c *gin.Context) {
	if err := h.Service.DeleteBooking(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Booking deleted"})
}

// GetBookingHandler handles GET /bookings/:id.
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	b, err := h.Service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "booking": b})
}

// ListBookingsHandler handles GET /bookings with optional userId, company, vehicleId, status
// (comma separated) and includeDeleted filters.
func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	filter := models.BookingFilter{
		UserID:    c.Query("userId"),
		CompanyID: c.Query("company"),
		VehicleID: c.Query("vehicleId"),
	}
	if raw := c.Query("status"); raw != "" {
		for _, st := range strings.Split(raw, ",") {
			if st = strings.TrimSpace(st); st != "" {
				filter.Statuses = append(filter.Statuses, models.BookingStatus(st))
			}
		}
	}
	if raw := c.Query("includeDeleted"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		filter.IncludeDeleted = include
	}

	bookings, err := h.Service.ListBookings(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bookings": bookings, "count": len(bookings)})
}

// CheckAvailabilityHandler handles GET /vehicles/:id/availability?from=&to=&fromTime=&toTime=.
// Times are RFC 3339; from and to may also be plain dates.
func (h *BookingHandler) CheckAvailabilityHandler(c *gin.Context) {
	var w models.Window
	var err error
	if w.From, err = parseTimeParam(c, "from"); err != nil {
		badRequest(c, err)
		return
	}
	if w.To, err = parseTimeParam(c, "to"); err != nil {
		badRequest(c, err)
		return
	}
	if w.FromTime, err = parseTimeParam(c, "fromTime"); err != nil {
		badRequest(c, err)
		return
	}
	if w.ToTime, err = parseTimeParam(c, "toTime"); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.Service.CheckAvailability(c.Request.Context(), c.Param("id"), w)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "available": res.OK, "reason": res.Reason})
}

func parseTimeParam(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, &paramError{name: name, value: raw}
	}
	return t, nil
}

type paramError struct {
	name, value string
}

func (e *paramError) Error() string {
	return "query parameter " + e.name + " must be RFC 3339 or YYYY-MM-DD, got " + strconv.Quote(e.value)
}

// bindOptional binds a JSON body when one was sent. It writes the 400 itself and reports false on failure.
func bindOptional(c *gin.Context, out interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(out); err != nil {
		// chunked requests report ContentLength -1 even when empty
		if errors.Is(err, io.EOF) {
			return true
		}
		badRequest(c, err)
		return false
	}
	return true
}

func bindActor(c *gin.Context) (string, bool) {
	var req models.ActorRequest
	if !bindOptional(c, &req) {
		return "", false
	}
	if req.UserID != "" {
		return req.UserID, true
	}
	return authenticatedUser(c), true
}

// authenticatedUser returns the caller set by the auth middleware, or "" when auth is off.
func authenticatedUser(c *gin.Context) string {
	return c.GetString(middleware.ContextUserID)
}
