package handlers

import (
	"net/http"

	"wheelhouse/services/booking"
	"wheelhouse/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps a booking error code to its HTTP status.
func statusFor(code booking.ErrorCode) int {
	switch code {
	case booking.CodeValidation, booking.CodeInvalidTransition, booking.CodeAlreadyCanceled:
		return http.StatusBadRequest
	case booking.CodeForbidden:
		return http.StatusForbidden
	case booking.CodeNotFound:
		return http.StatusNotFound
	case booking.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(booking.CodeOf(err))
	message := err.Error()
	if status == http.StatusInternalServerError {
		getLogger(c).Error("Booking request failed", zap.String("path", c.FullPath()), zap.Error(err))
		if booking.CodeOf(err) == booking.CodeServer {
			message = "Internal server error"
		}
	}
	utils.JSONError(c, status, message)
}

func badRequest(c *gin.Context, err error) {
	utils.JSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
}
