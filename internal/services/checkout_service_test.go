package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"storefront/internal/config"
	"storefront/internal/models/db_models"
	"storefront/internal/models/request_models"
	"storefront/pkg/utils"
)

type checkoutFixture struct {
	svc       CheckoutService
	identity  *MockIdentity
	profiles  *MockProfileRepo
	products  *MockProductRepo
	processor *MockProcessor
	oil       db_models.Product
	honey     db_models.Product
	retired   db_models.Product
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		identity:  &MockIdentity{},
		profiles:  &MockProfileRepo{Roles: map[uuid.UUID]db_models.Role{}},
		processor: &MockProcessor{Created: &CreatedSession{ID: "cs_test_1", URL: "https://pay.example/cs_test_1"}},
	}
	f.oil = db_models.Product{BaseModel: db_models.BaseModel{ID: uuid.New()}, Name: "Olive oil", PriceCents: 1000, Currency: "eur", Active: true}
	f.honey = db_models.Product{BaseModel: db_models.BaseModel{ID: uuid.New()}, Name: "Honey", PriceCents: 15, Currency: "EUR", Active: true}
	f.retired = db_models.Product{BaseModel: db_models.BaseModel{ID: uuid.New()}, Name: "Old jam", PriceCents: 500, Currency: "EUR", Active: false}
	f.products = &MockProductRepo{Products: []db_models.Product{f.oil, f.honey, f.retired}}

	cfg := &config.Config{
		ShippingCountries: []string{"IT", "SM"},
		CollectPhone:      true,
		DefaultCurrency:   "EUR",
		UpstreamTimeout:   time.Second,
	}
	f.svc = NewCheckoutService(cfg, f.identity, f.profiles, f.products, f.processor)
	return f
}

func cartOf(lines ...request_models.CartLineInput) request_models.CheckoutRequest {
	return request_models.CheckoutRequest{Items: lines}
}

func line(id uuid.UUID, qty float64) request_models.CartLineInput {
	return request_models.CartLineInput{ProductID: id.String(), Qty: qty}
}

func sessionTotal(req *SessionRequest) int64 {
	var total int64
	for _, l := range req.Lines {
		total += l.UnitAmountCents * l.Qty
	}
	return total
}

func TestCreateCheckoutSession_RetailerPricing(t *testing.T) {
	f := newCheckoutFixture()
	userID := uuid.New()
	f.identity.Caller = &Caller{UserID: userID, Email: "shop@example.com", EmailConfirmed: true}
	f.profiles.Roles[userID] = db_models.RoleRetailer

	url, err := f.svc.CreateCheckoutSession(context.Background(), CheckoutInput{
		BearerToken: "token",
		Request:     cartOf(line(f.oil.ID, 2)),
		BaseURL:     "https://shop.example",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/cs_test_1", url)

	req := f.processor.LastRequest
	require.NotNil(t, req)
	require.Len(t, req.Lines, 1)
	assert.Equal(t, int64(900), req.Lines[0].UnitAmountCents)
	assert.Equal(t, int64(1800), sessionTotal(req))
	assert.Equal(t, "EUR", req.Lines[0].Currency)
	assert.Equal(t, f.oil.ID, req.Lines[0].ProductID)

	assert.Equal(t, "retailer", req.Metadata["role"])
	assert.Equal(t, userID.String(), req.Metadata["user_id"])
	assert.Equal(t, "shop@example.com", req.Metadata["customer_email"])
	assert.Equal(t, "false", req.Metadata["is_guest"])
	assert.Equal(t, userID.String(), req.ClientReferenceID)
	assert.Equal(t, "https://shop.example/success.html?session_id={CHECKOUT_SESSION_ID}", req.SuccessURL)
	assert.Equal(t, "https://shop.example/cancel.html", req.CancelURL)
	assert.Equal(t, []string{"IT", "SM"}, req.AllowedCountries)
	assert.True(t, req.CollectPhone)
}

func TestCreateCheckoutSession_CustomerWithoutProfilePaysList(t *testing.T) {
	f := newCheckoutFixture()
	f.identity.Caller = &Caller{UserID: uuid.New(), Email: "c@example.com", EmailConfirmed: true}

	_, err := f.svc.CreateCheckoutSession(context.Background(), CheckoutInput{
		BearerToken: "token",
		Request:     cartOf(line(f.honey.ID, 3)),
		BaseURL:     "https://shop.example",
	})
	require.NoError(t, err)
	assert.Equal(t, "customer", f.processor.LastRequest.Metadata["role"])
	assert.Equal(t, int64(15), f.processor.LastRequest.Lines[0].UnitAmountCents)
}

func TestCreateCheckoutSession_Guest(t *testing.T) {
	f := newCheckoutFixture()
	req := cartOf(line(f.honey.ID, 1))
	req.GuestEmail = "guest@example.com"

	_, err := f.svc.CreateCheckoutSession(context.Background(), CheckoutInput{Request: req, BaseURL: "https://shop.example"})
	require.NoError(t, err)

	sent := f.processor.LastRequest
	assert.Equal(t, "true", sent.Metadata["is_guest"])
	assert.Equal(t, "guest@example.com", sent.CustomerEmail)
	_, hasUser := sent.Metadata["user_id"]
	assert.False(t, hasUser)
	assert.Zero(t, f.identity.AuthCalls)
}

func TestCreateCheckoutSession_GuestWithoutEmailIsUnauthorized(t *testing.T) {
	f := newCheckoutFixture()

	for _, email := range []string{"", "not-an-email"} {
		req := cartOf(line(f.honey.ID, 1))
		req.GuestEmail = email
		_, err := f.svc.CreateCheckoutSession(context.Background(), CheckoutInput{Request: req})
		assert.ErrorIs(t, err, utils.ErrUnauthorized)
	}
	assert.Zero(t, f.processor.CreateCalls)
}

func TestCreateCheckoutSession_InvalidToken(t *testing.T) {
	f := newCheckoutFixture()
	f.identity.AuthErr = utils.ErrUnauthorized

	_, err := f.svc.CreateCheckoutSession(context.Background(), CheckoutInput{
		BearerToken: "bad",
		Request:     cartOf(line(f.honey.ID, 1)),
	})
	assert.ErrorIs(t, err, utils.ErrUnauthorized)
	assert.Zero(t, f.processor.CreateCalls)
}

func TestCreateCheckoutSession_UnconfirmedEmail(t *testing.T) {
	f := newCheckoutFixture()
	f.identity.Caller = &Caller{UserID: uuid.New(), Email: "new@example.com", EmailConfirmed: false}

	_, err := f.svc.CreateCheckoutSession(context.Background(), CheckoutInput{
		BearerToken: "token",
		Request:     cartOf(line(f.honey.ID, 1)),
	})
	assert.ErrorIs(t, err, utils.ErrEmailNotConfirmed)
	assert.Zero(t, f.processor.CreateCalls)
}

func TestCreateCheckoutSession_EmptyCartBeforeAuth(t *testing.T) {
	f := newCheckoutFixture()
	f.identity.AuthErr = utils.ErrUnauthorized

	_, err := f.svc.CreateCheckoutSession(context.Background(), CheckoutInput{
		BearerToken: "bad",
		Request:     cartOf(request_models.CartLineInput{ProductID: "x", Qty: "zero"}),
	})
	assert.ErrorIs(t, err, utils.ErrEmptyCart)
	assert.Zero(t, f.identity.AuthCalls)
}

func TestCreateCheckoutSession_DropsInactiveAndUnknown(t *testing.T) {
	f := newCheckoutFixture()
	req := cartOf(line(f.retired.ID, 1), line(uuid.New(), 1), request_models.CartLineInput{ProductID: "nope", Qty: float64(1)}, line(f.honey.ID, 2))
	req.GuestEmail = "guest@example.com"

	_, err := f.svc.CreateCheckoutSession(context.Background(), CheckoutInput{Request: req})
	require.NoError(t, err)
	require.Len(t, f.processor.LastRequest.Lines, 1)
	assert.Equal(t, f.honey.ID, f.processor.LastRequest.Lines[0].ProductID)
}

func TestCreateCheckoutSession_NothingPurchasable(t *testing.T) {
	f := newCheckoutFixture()
	req := cartOf(line(f.retired.ID, 1))
	req.GuestEmail = "guest@example.com"

	_, err := f.svc.CreateCheckoutSession(context.Background(), CheckoutInput{Request: req})
	assert.ErrorIs(t, err, utils.ErrNoPurchasableItems)
	assert.Zero(t, f.processor.CreateCalls)
}

func TestCreateCheckoutSession_ProcessorError(t *testing.T) {
	f := newCheckoutFixture()
	f.processor.CreateErr = fmt.Errorf("%w: card_declined", utils.ErrPaymentProvider)
	req := cartOf(line(f.honey.ID, 1))
	req.GuestEmail = "guest@example.com"

	_, err := f.svc.CreateCheckoutSession(context.Background(), CheckoutInput{Request: req})
	assert.ErrorIs(t, err, utils.ErrPaymentProvider)
}
