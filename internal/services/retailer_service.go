package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
	"storefront/internal/config"
	"storefront/internal/models/db_models"
	"storefront/internal/models/request_models"
	"storefront/internal/models/response_models"
	"storefront/internal/repositories"
	"storefront/pkg/utils"
)

const (
	reasonVatVerified    = "VAT number verified (VIES)."
	reasonVatInvalid     = "VAT number not valid (VIES)."
	reasonVatUnavailable = "VAT verification temporarily unavailable (VIES). The application will be reviewed manually."
	reasonAutoApproved   = "Auto-approved (VAT number cannot be verified automatically)."
	reasonUnverifiable   = "VAT number cannot be verified automatically: add an EU country prefix (e.g. IT, DE, FR) or contact support."
)

var (
	vatPattern    = regexp.MustCompile(`^(?:[A-Z]{2})?[A-Z0-9]{8,20}$`)
	vatPrefixed   = regexp.MustCompile(`^([A-Z]{2})([A-Z0-9]{6,})$`)
	iso2Pattern   = regexp.MustCompile(`^[A-Z]{2}$`)
	nonAlphaDigit = regexp.MustCompile(`[^A-Z0-9]`)
)

// VIES member-state codes; Greece is EL.
var viesCountries = map[string]struct{}{
	"AT": {}, "BE": {}, "BG": {}, "CY": {}, "CZ": {}, "DE": {}, "DK": {}, "EE": {}, "EL": {},
	"ES": {}, "FI": {}, "FR": {}, "HR": {}, "HU": {}, "IE": {}, "IT": {}, "LT": {}, "LU": {},
	"LV": {}, "MT": {}, "NL": {}, "PL": {}, "PT": {}, "RO": {}, "SE": {}, "SI": {}, "SK": {},
}

type RetailerService interface {
	Apply(ctx context.Context, caller *Caller, req request_models.RetailerApplyRequest) (*response_models.RetailerApplyResponse, error)
}

type retailerService struct {
	cfg         *config.Config
	appRepo     repositories.RetailerApplicationRepository
	profileRepo repositories.ProfileRepository
	vat         VatChecker
	mail        MailService
}

func NewRetailerService(
	cfg *config.Config,
	appRepo repositories.RetailerApplicationRepository,
	profileRepo repositories.ProfileRepository,
	vat VatChecker,
	mail MailService,
) RetailerService {
	return &retailerService{
		cfg:         cfg,
		appRepo:     appRepo,
		profileRepo: profileRepo,
		vat:         vat,
		mail:        mail,
	}
}

func (s *retailerService) Apply(ctx context.Context, caller *Caller, req request_models.RetailerApplyRequest) (*response_models.RetailerApplyResponse, error) {
	if caller == nil {
		return nil, utils.ErrUnauthorized
	}

	existing, err := s.appRepo.FindByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: application lookup: %v", utils.ErrDatabaseError, err)
	}
	if existing != nil && existing.Status == db_models.ApplicationPending {
		return nil, utils.ErrApplicationPending
	}

	app, err := newApplication(caller, req)
	if err != nil {
		return nil, err
	}
	if err := s.appRepo.Upsert(ctx, app); err != nil {
		return nil, fmt.Errorf("%w: application save: %v", utils.ErrDatabaseError, err)
	}

	status, reason := s.verify(ctx, app.VatNumber, app.BillingCountry)

	var approvedAt *int64
	if status == db_models.ApplicationApproved {
		now := utils.NowUnixSeconds()
		approvedAt = &now
	}
	if err := s.appRepo.UpdateStatus(ctx, caller.UserID, status, &reason, approvedAt); err != nil {
		return nil, fmt.Errorf("%w: application status: %v", utils.ErrDatabaseError, err)
	}
	app.Status = status
	app.Notes = &reason
	app.ApprovedAt = approvedAt

	if status == db_models.ApplicationApproved {
		if err := s.profileRepo.SetRole(ctx, caller.UserID, db_models.RoleRetailer); err != nil {
			return nil, fmt.Errorf("%w: role update: %v", utils.ErrDatabaseError, err)
		}
	}

	log.WithFields(log.Fields{
		"user_id": caller.UserID,
		"status":  status,
		"country": app.BillingCountry,
	}).Info("Retailer application processed")

	s.notify(ctx, caller, app, reason)

	return &response_models.RetailerApplyResponse{Status: string(status), Reason: &reason}, nil
}

func newApplication(caller *Caller, req request_models.RetailerApplyRequest) (*db_models.RetailerApplication, error) {
	company := strings.TrimSpace(req.CompanyName)
	if company == "" {
		return nil, utils.ErrMissingCompanyName
	}
	vat, ok := NormalizeVAT(req.VatNumber)
	if !ok {
		return nil, utils.ErrInvalidVAT
	}
	country := strings.TrimSpace(req.BillingCountry)
	if country == "" {
		country = "IT"
	}
	country = strings.ToUpper(country)
	if !iso2Pattern.MatchString(country) {
		return nil, utils.ErrInvalidCountry
	}

	return &db_models.RetailerApplication{
		UserID:            caller.UserID,
		CompanyName:       company,
		VatNumber:         vat,
		PecEmail:          utils.OptionalString(req.PecEmail),
		SdiCode:           utils.OptionalString(req.SdiCode),
		ContactName:       utils.OptionalString(req.ContactName),
		ContactPhone:      utils.OptionalString(req.ContactPhone),
		BillingLine1:      utils.OptionalString(req.BillingLine1),
		BillingLine2:      utils.OptionalString(req.BillingLine2),
		BillingCity:       utils.OptionalString(req.BillingCity),
		BillingPostalCode: utils.OptionalString(req.BillingPostalCode),
		BillingState:      utils.OptionalString(req.BillingState),
		BillingCountry:    country,
		Status:            db_models.ApplicationPending,
	}, nil
}

// NormalizeVAT uppercases raw, strips separators and checks the shape.
func NormalizeVAT(raw string) (string, bool) {
	v := nonAlphaDigit.ReplaceAllString(strings.ToUpper(strings.TrimSpace(raw)), "")
	if !vatPattern.MatchString(v) {
		return "", false
	}
	return v, true
}

// splitVAT returns the member-state code and the national number. Numbers
// without a prefix are attributed to the billing country.
func splitVAT(vat, billingCountry string) (string, string) {
	if m := vatPrefixed.FindStringSubmatch(vat); m != nil {
		return m[1], m[2]
	}
	return billingCountry, vat
}

func (s *retailerService) verify(ctx context.Context, vat, billingCountry string) (db_models.ApplicationStatus, string) {
	country, number := splitVAT(vat, billingCountry)

	if _, eu := viesCountries[country]; !eu {
		if s.cfg.AutoApproveUnverified {
			return db_models.ApplicationApproved, reasonAutoApproved
		}
		return db_models.ApplicationRejected, reasonUnverifiable
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.UpstreamTimeout)
	defer cancel()

	valid, err := s.vat.CheckVAT(ctx, country, number)
	switch {
	case err != nil:
		log.WithError(err).WithField("country", country).Warn("VIES check failed")
		return db_models.ApplicationPending, reasonVatUnavailable
	case valid:
		return db_models.ApplicationApproved, reasonVatVerified
	default:
		return db_models.ApplicationRejected, reasonVatInvalid
	}
}

func (s *retailerService) notify(ctx context.Context, caller *Caller, app *db_models.RetailerApplication, reason string) {
	if caller.Email != "" {
		if err := s.mail.SendRetailerOutcome(ctx, caller.Email, app, reason); err != nil {
			log.WithError(err).WithField("user_id", caller.UserID).Warn("Retailer outcome email not sent")
		}
	}
	if team := s.cfg.TeamEmailForRetailers(); team != "" {
		if err := s.mail.SendRetailerTeamNotification(ctx, team, caller.Email, app, reason); err != nil {
			log.WithError(err).WithField("user_id", caller.UserID).Warn("Retailer team email not sent")
		}
	}
}
