package utils

import "errors"

// Client input errors (4xx, message safe to show the user).
var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrEmptyCart          = errors.New("empty cart")
	ErrNoPurchasableItems = errors.New("no purchasable items (inactive/missing products)")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrMissingFields      = errors.New("missing required fields")
	ErrPrivacyNotAccepted = errors.New("privacy policy not accepted")
	ErrMissingCompanyName = errors.New("missing company_name")
	ErrInvalidVAT         = errors.New("invalid vat_number")
	ErrInvalidCountry     = errors.New("invalid billing_country (ISO2)")
	ErrMissingSessionID   = errors.New("missing session_id")
	ErrInvalidSignature   = errors.New("webhook signature verification failed")
)

// Auth errors.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrEmailNotConfirmed = errors.New("email not confirmed")
)

var (
	ErrApplicationPending = errors.New("application pending (resubmission disabled)")
	ErrOrderNotFound      = errors.New("order not found yet")
	ErrProductNotFound    = errors.New("product not found")
)

// Upstream, persistence and configuration errors (5xx).
var (
	ErrPaymentProvider  = errors.New("payment provider error")
	ErrIdentityProvider = errors.New("identity provider error")
	ErrDatabaseError    = errors.New("database error")
	ErrMisconfigured    = errors.New("server misconfigured")
)

// ErrMailerDisabled is returned by the mailer when SMTP is not configured.
// Callers treat it like any other notification failure.
var ErrMailerDisabled = errors.New("mailer not configured")
