package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"storefront/internal/config"
	"storefront/internal/models/db_models"
	"storefront/internal/models/request_models"
	"storefront/internal/repositories"
	"storefront/pkg/utils"
)

type CheckoutInput struct {
	// BearerToken is empty for guest checkout.
	BearerToken string
	Request     request_models.CheckoutRequest
	// BaseURL is "{proto}://{host}" of the inbound request.
	BaseURL string
}

type CheckoutService interface {
	// CreateCheckoutSession returns the processor's hosted-page URL. Nothing
	// is persisted here; orders only appear once the webhook confirms them.
	CreateCheckoutSession(ctx context.Context, in CheckoutInput) (string, error)
}

type checkoutService struct {
	cfg         *config.Config
	identity    IdentityService
	profileRepo repositories.ProfileRepository
	productRepo repositories.ProductRepository
	processor   PaymentProcessor
}

func NewCheckoutService(
	cfg *config.Config,
	identity IdentityService,
	profileRepo repositories.ProfileRepository,
	productRepo repositories.ProductRepository,
	processor PaymentProcessor,
) CheckoutService {
	return &checkoutService{
		cfg:         cfg,
		identity:    identity,
		profileRepo: profileRepo,
		productRepo: productRepo,
		processor:   processor,
	}
}

// checkoutCaller is who is paying: a confirmed account or a guest email.
type checkoutCaller struct {
	userID *uuid.UUID
	email  string
	role   db_models.Role
	guest  bool
}

func (s *checkoutService) CreateCheckoutSession(ctx context.Context, in CheckoutInput) (string, error) {
	lines, err := NormalizeCart(in.Request.Items)
	if err != nil {
		return "", err
	}

	caller, err := s.resolveCaller(ctx, in)
	if err != nil {
		return "", err
	}

	sessionLines, err := s.priceLines(ctx, lines, caller.role)
	if err != nil {
		return "", err
	}

	metadata := map[string]string{
		"role":     string(caller.role),
		"is_guest": fmt.Sprintf("%t", caller.guest),
	}
	req := SessionRequest{
		Lines:            sessionLines,
		SuccessURL:       in.BaseURL + "/success.html?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:        in.BaseURL + "/cancel.html",
		CustomerEmail:    caller.email,
		AllowedCountries: s.cfg.ShippingCountries,
		CollectPhone:     s.cfg.CollectPhone,
		Metadata:         metadata,
	}
	if caller.userID != nil {
		req.ClientReferenceID = caller.userID.String()
		metadata["user_id"] = caller.userID.String()
	}
	if caller.email != "" {
		metadata["customer_email"] = caller.email
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.UpstreamTimeout)
	defer cancel()

	created, err := s.processor.CreateSession(ctx, req)
	if err != nil {
		return "", err
	}

	log.WithFields(log.Fields{
		"session_id": created.ID,
		"role":       caller.role,
		"guest":      caller.guest,
		"lines":      len(sessionLines),
	}).Info("Checkout session created")

	return created.URL, nil
}

func (s *checkoutService) resolveCaller(ctx context.Context, in CheckoutInput) (*checkoutCaller, error) {
	token := strings.TrimSpace(in.BearerToken)
	if token == "" {
		email := strings.TrimSpace(in.Request.GuestEmail)
		if email == "" || !utils.IsValidEmail(email) {
			return nil, fmt.Errorf("%w: guest checkout requires a valid guest_email", utils.ErrUnauthorized)
		}
		return &checkoutCaller{email: email, role: db_models.RoleCustomer, guest: true}, nil
	}

	user, err := s.identity.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	if !user.EmailConfirmed {
		return nil, utils.ErrEmailNotConfirmed
	}

	role, err := s.profileRepo.FindRole(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: profile lookup failed", utils.ErrDatabaseError)
	}
	if role == "" {
		role = db_models.RoleCustomer
	}

	userID := user.UserID
	return &checkoutCaller{userID: &userID, email: user.Email, role: role}, nil
}

// priceLines loads the authoritative products, drops lines whose product is
// missing or inactive and prices the rest for role.
func (s *checkoutService) priceLines(ctx context.Context, lines []CartLine, role db_models.Role) ([]SessionLine, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if id, err := uuid.Parse(line.ProductID); err == nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, utils.ErrNoPurchasableItems
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: product lookup failed", utils.ErrDatabaseError)
	}
	byID := make(map[uuid.UUID]db_models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := make([]SessionLine, 0, len(lines))
	for _, line := range lines {
		id, err := uuid.Parse(line.ProductID)
		if err != nil {
			continue
		}
		product, ok := byID[id]
		if !ok || !product.Active {
			continue
		}
		currency := strings.ToUpper(product.Currency)
		if currency == "" {
			currency = s.cfg.DefaultCurrency
		}
		out = append(out, SessionLine{
			ProductID:       product.ID,
			Name:            product.Name,
			UnitAmountCents: PriceForRole(product.PriceCents, role),
			Qty:             line.Qty,
			Currency:        currency,
		})
	}
	if len(out) == 0 {
		return nil, utils.ErrNoPurchasableItems
	}
	return out, nil
}
