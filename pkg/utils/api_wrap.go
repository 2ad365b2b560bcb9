package utils

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func TraceID(c *gin.Context) string {
	if v, ok := c.Get("trace_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// RespondSuccess writes {ok:true, trace_id, ...data}.
func RespondSuccess(c *gin.Context, data gin.H) {
	body := gin.H{"ok": true}
	for k, v := range data {
		body[k] = v
	}
	if traceID := TraceID(c); traceID != "" {
		body["trace_id"] = traceID
	}
	c.JSON(http.StatusOK, body)
}

func RespondError(c *gin.Context, code int, message string) {
	respondError(c, code, message, "")
}

func respondError(c *gin.Context, code int, message, details string) {
	body := gin.H{"ok": false, "error": message}
	if details != "" {
		body["details"] = details
	}
	if traceID := TraceID(c); traceID != "" {
		body["trace_id"] = traceID
	}
	c.AbortWithStatusJSON(code, body)
}

// HandleServiceError maps service errors onto HTTP statuses. Only upstream
// failures carry details, taken from the wrapped error text.
func HandleServiceError(c *gin.Context, err error) {
	entry := log.WithField("trace_id", TraceID(c)).WithError(err)

	switch {
	case errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrNoPurchasableItems),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrMissingFields),
		errors.Is(err, ErrPrivacyNotAccepted),
		errors.Is(err, ErrMissingCompanyName),
		errors.Is(err, ErrInvalidVAT),
		errors.Is(err, ErrInvalidCountry),
		errors.Is(err, ErrMissingSessionID),
		errors.Is(err, ErrInvalidSignature):
		RespondError(c, http.StatusBadRequest, rootMessage(err))
	case errors.Is(err, ErrUnauthorized):
		RespondError(c, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, ErrEmailNotConfirmed):
		respondError(c, http.StatusForbidden, "Email not confirmed",
			"Confirm your email or continue as guest by providing guest_email.")
	case errors.Is(err, ErrApplicationPending):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"ok":       false,
			"error":    "Application pending (resubmission disabled)",
			"status":   "pending",
			"trace_id": TraceID(c),
		})
	case errors.Is(err, ErrOrderNotFound):
		RespondError(c, http.StatusNotFound, "Order not found yet")
	case errors.Is(err, ErrProductNotFound):
		RespondError(c, http.StatusNotFound, "Product not found")
	case errors.Is(err, ErrPaymentProvider), errors.Is(err, ErrIdentityProvider):
		entry.Error("Upstream service error")
		respondError(c, http.StatusInternalServerError, "Server error", detailOf(err))
	case errors.Is(err, ErrMisconfigured):
		entry.Error("Server misconfigured")
		RespondError(c, http.StatusInternalServerError, "Server misconfigured")
	case errors.Is(err, ErrDatabaseError):
		entry.Error("Database error")
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	default:
		entry.Error("Unknown error")
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

// rootMessage capitalises the sentinel text for display.
func rootMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ":"); i > 0 {
		msg = msg[:i]
	}
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

func detailOf(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i > 0 {
		return msg[i+2:]
	}
	return ""
}
