package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
	"storefront/internal/config"
	"storefront/pkg/utils"
)

// Metadata key under which each line's internal product id travels through
// the processor and back into the webhook.
const productIDMetadataKey = "product_id"

const (
	EventCheckoutCompleted     = "checkout.session.completed"
	EventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	EventAsyncPaymentFailed    = "checkout.session.async_payment_failed"
)

type SessionLine struct {
	ProductID       uuid.UUID
	Name            string
	UnitAmountCents int64
	Qty             int64
	Currency        string
}

type SessionRequest struct {
	Lines             []SessionLine
	SuccessURL        string
	CancelURL         string
	CustomerEmail     string
	ClientReferenceID string
	AllowedCountries  []string
	CollectPhone      bool
	Metadata          map[string]string
}

type CreatedSession struct {
	ID  string
	URL string
}

// ProcessorLineItem is a paid line as reported by the processor.
type ProcessorLineItem struct {
	ProductID       *uuid.UUID
	Description     string
	UnitAmountCents int64
	Qty             int64
	Currency        string
}

type Address struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country,omitempty"`
}

type ShippingDetails struct {
	Name    string   `json:"name"`
	Phone   string   `json:"phone"`
	Address *Address `json:"address"`
}

type CustomerDetails struct {
	Email   string   `json:"email"`
	Name    string   `json:"name"`
	Phone   string   `json:"phone"`
	Address *Address `json:"address"`
}

// CheckoutSession is the part of a processor session the reconciler reads.
type CheckoutSession struct {
	ID                   string            `json:"id"`
	PaymentStatus        string            `json:"payment_status"`
	AmountTotal          int64             `json:"amount_total"`
	Currency             string            `json:"currency"`
	CustomerEmail        string            `json:"customer_email"`
	PaymentIntentRaw     json.RawMessage   `json:"payment_intent"`
	Metadata             map[string]string `json:"metadata"`
	CustomerDetails      *CustomerDetails  `json:"customer_details"`
	ShippingDetails      *ShippingDetails  `json:"shipping_details"`
	CollectedInformation *struct {
		ShippingDetails *ShippingDetails `json:"shipping_details"`
	} `json:"collected_information"`
}

// PaymentIntentID accepts both the collapsed id and an expanded object.
func (s *CheckoutSession) PaymentIntentID() string {
	if len(s.PaymentIntentRaw) == 0 || string(s.PaymentIntentRaw) == "null" {
		return ""
	}
	var id string
	if err := json.Unmarshal(s.PaymentIntentRaw, &id); err == nil {
		return id
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(s.PaymentIntentRaw, &obj); err == nil {
		return obj.ID
	}
	return ""
}

func (s *CheckoutSession) Shipping() *ShippingDetails {
	if s.CollectedInformation != nil && s.CollectedInformation.ShippingDetails != nil {
		return s.CollectedInformation.ShippingDetails
	}
	return s.ShippingDetails
}

type PaymentEvent struct {
	ID   string
	Type string
	// Session is set for checkout.session.* events.
	Session *CheckoutSession
}

type PaymentProcessor interface {
	CreateSession(ctx context.Context, req SessionRequest) (*CreatedSession, error)
	ListLineItems(ctx context.Context, sessionID string) ([]ProcessorLineItem, error)
	// VerifyEvent authenticates payload against the signature header. The
	// payload must be the request body exactly as received.
	VerifyEvent(payload []byte, signatureHeader string) (*PaymentEvent, error)
}

type stripeProcessor struct {
	secretKey     string
	webhookSecret string
	sessions      *session.Client
}

func NewStripeProcessor(cfg *config.Config) PaymentProcessor {
	p := &stripeProcessor{
		secretKey:     cfg.StripeSecretKey,
		webhookSecret: cfg.StripeWebhookSecret,
	}
	if cfg.StripeSecretKey != "" {
		p.sessions = &session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: cfg.StripeSecretKey}
	}
	return p
}

func (p *stripeProcessor) CreateSession(ctx context.Context, req SessionRequest) (*CreatedSession, error) {
	if p.sessions == nil {
		return nil, fmt.Errorf("%w: stripe secret key missing", utils.ErrMisconfigured)
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Lines))
	for _, line := range req.Lines {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(line.Qty),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(line.Currency)),
				UnitAmount: stripe.Int64(line.UnitAmountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:     stripe.String(line.Name),
					Metadata: map[string]string{productIDMetadataKey: line.ProductID.String()},
				},
			},
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(req.AllowedCountries),
		},
		PhoneNumberCollection: &stripe.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripe.Bool(req.CollectPhone),
		},
	}
	if req.ClientReferenceID != "" {
		params.ClientReferenceID = stripe.String(req.ClientReferenceID)
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	sess, err := p.sessions.New(params)
	if err != nil {
		return nil, sanitizeStripeError(err)
	}
	return &CreatedSession{ID: sess.ID, URL: sess.URL}, nil
}

func (p *stripeProcessor) ListLineItems(ctx context.Context, sessionID string) ([]ProcessorLineItem, error) {
	if p.sessions == nil {
		return nil, fmt.Errorf("%w: stripe secret key missing", utils.ErrMisconfigured)
	}

	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(sessionID),
	}
	params.Limit = stripe.Int64(100)
	params.AddExpand("data.price.product")
	params.Context = ctx

	var items []ProcessorLineItem
	it := p.sessions.ListLineItems(params)
	for it.Next() {
		items = append(items, toProcessorLineItem(it.LineItem()))
	}
	if err := it.Err(); err != nil {
		return nil, sanitizeStripeError(err)
	}
	return items, nil
}

func toProcessorLineItem(li *stripe.LineItem) ProcessorLineItem {
	item := ProcessorLineItem{
		Description: li.Description,
		Qty:         li.Quantity,
		Currency:    strings.ToUpper(string(li.Currency)),
	}
	if li.Price != nil {
		item.UnitAmountCents = li.Price.UnitAmount
		if li.Price.Product != nil {
			if raw, ok := li.Price.Product.Metadata[productIDMetadataKey]; ok {
				if id, err := uuid.Parse(raw); err == nil {
					item.ProductID = &id
				}
			}
			if item.Description == "" {
				item.Description = li.Price.Product.Name
			}
		}
	}
	return item
}

func (p *stripeProcessor) VerifyEvent(payload []byte, signatureHeader string) (*PaymentEvent, error) {
	if p.webhookSecret == "" {
		return nil, fmt.Errorf("%w: stripe webhook secret missing", utils.ErrMisconfigured)
	}
	if signatureHeader == "" {
		return nil, fmt.Errorf("%w: missing signature header", utils.ErrInvalidSignature)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrInvalidSignature, err)
	}

	out := &PaymentEvent{ID: event.ID, Type: string(event.Type)}
	if strings.HasPrefix(out.Type, "checkout.session.") && event.Data != nil {
		var sess CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("%w: malformed session payload", utils.ErrInvalidRequest)
		}
		out.Session = &sess
	}
	return out, nil
}

// sanitizeStripeError keeps the processor's user-facing message and drops
// everything else (request ids, headers, keys).
func sanitizeStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return fmt.Errorf("%w: %s (%s)", utils.ErrPaymentProvider, stripeErr.Msg, stripeErr.Type)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out", utils.ErrPaymentProvider)
	}
	return fmt.Errorf("%w: request failed", utils.ErrPaymentProvider)
}
