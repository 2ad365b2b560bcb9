package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"storefront/internal/config"
	"storefront/internal/models/db_models"
	"storefront/internal/repositories"
	"storefront/pkg/utils"
)

type ReconcileResult struct {
	// Duplicate is set when the event id had already been processed.
	Duplicate bool
	// Ignored is set for verified events that do not touch orders.
	Ignored bool
	OrderID *uuid.UUID
}

type WebhookService interface {
	// HandleWebhook verifies payload against signature and reconciles it.
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*ReconcileResult, error)
	Reconcile(ctx context.Context, event *PaymentEvent) (*ReconcileResult, error)
}

type webhookService struct {
	cfg       *config.Config
	processor PaymentProcessor
	eventRepo repositories.EventRepository
	orderRepo repositories.OrderRepository
	identity  IdentityService
	mail      MailService
}

func NewWebhookService(
	cfg *config.Config,
	processor PaymentProcessor,
	eventRepo repositories.EventRepository,
	orderRepo repositories.OrderRepository,
	identity IdentityService,
	mail MailService,
) WebhookService {
	return &webhookService{
		cfg:       cfg,
		processor: processor,
		eventRepo: eventRepo,
		orderRepo: orderRepo,
		identity:  identity,
		mail:      mail,
	}
}

func (s *webhookService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*ReconcileResult, error) {
	event, err := s.processor.VerifyEvent(payload, signature)
	if err != nil {
		return nil, err
	}
	return s.Reconcile(ctx, event)
}

func (s *webhookService) Reconcile(ctx context.Context, event *PaymentEvent) (*ReconcileResult, error) {
	logger := log.WithFields(log.Fields{"event_id": event.ID, "event_type": event.Type})

	seen, err := s.eventRepo.Exists(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: event lookup: %v", utils.ErrDatabaseError, err)
	}
	if seen {
		logger.Info("Duplicate event skipped")
		return &ReconcileResult{Duplicate: true}, nil
	}

	// The insert is the real guard: a concurrent delivery that passed the
	// lookup above loses here.
	inserted, err := s.eventRepo.Record(ctx, event.ID, event.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: event record: %v", utils.ErrDatabaseError, err)
	}
	if !inserted {
		logger.Info("Duplicate event lost the insert race")
		return &ReconcileResult{Duplicate: true}, nil
	}

	if !isReconciledEvent(event.Type) {
		logger.Debug("Event acknowledged without reconciliation")
		return &ReconcileResult{Ignored: true}, nil
	}
	if event.Session == nil || event.Session.ID == "" {
		logger.Warn("Checkout event without session payload")
		return &ReconcileResult{Ignored: true}, nil
	}
	logger = logger.WithField("session_id", event.Session.ID)

	order, items, err := s.persist(ctx, event)
	if err != nil {
		if relErr := s.eventRepo.Delete(ctx, event.ID); relErr != nil {
			logger.WithError(relErr).Error("Could not release event claim")
		}
		logger.WithError(err).Error("Order reconciliation failed")
		return nil, err
	}
	logger = logger.WithField("order_id", order.ID)
	logger.WithField("status", order.Status).Info("Order reconciled")

	if order.Status == db_models.OrderStatusPaid {
		s.notify(ctx, logger, order, items)
	}

	id := order.ID
	return &ReconcileResult{OrderID: &id}, nil
}

func isReconciledEvent(eventType string) bool {
	switch eventType {
	case EventCheckoutCompleted, EventAsyncPaymentSucceeded, EventAsyncPaymentFailed:
		return true
	}
	return false
}

// OrderStatusFor maps a processor payment status onto an order status. Every
// input has exactly one result.
func OrderStatusFor(eventType, paymentStatus string) db_models.OrderStatus {
	if eventType == EventAsyncPaymentFailed {
		return db_models.OrderStatusFailed
	}
	if paymentStatus == "paid" {
		return db_models.OrderStatusPaid
	}
	return db_models.OrderStatusCreated
}

// persist writes the order row and, once per order, its items. HasItems is
// only a shortcut that skips the line-item fetch; InsertItemsOnce decides.
func (s *webhookService) persist(ctx context.Context, event *PaymentEvent) (*db_models.Order, []db_models.OrderItem, error) {
	order := s.buildOrder(ctx, event)

	err := s.orderRepo.Create(ctx, order)
	if errors.Is(err, repositories.ErrDuplicateOrder) {
		existing, findErr := s.orderRepo.FindBySessionID(ctx, order.StripeSessionID)
		if findErr != nil || existing == nil {
			return nil, nil, fmt.Errorf("%w: order read after conflict", utils.ErrDatabaseError)
		}
		order.ID = existing.ID
		order.CreatedAt = existing.CreatedAt
		if err = s.orderRepo.UpdateReconciled(ctx, order); err == nil {
			err = s.refreshStatus(ctx, order)
		}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: order upsert: %v", utils.ErrDatabaseError, err)
	}

	hasItems, err := s.orderRepo.HasItems(ctx, order.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: item lookup: %v", utils.ErrDatabaseError, err)
	}
	if !hasItems {
		if err := s.insertItems(ctx, order); err != nil {
			return nil, nil, err
		}
	}

	items, err := s.orderRepo.ListItems(ctx, order.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: item list: %v", utils.ErrDatabaseError, err)
	}
	return order, items, nil
}

func (s *webhookService) insertItems(ctx context.Context, order *db_models.Order) error {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.UpstreamTimeout)
	defer cancel()

	lines, err := s.processor.ListLineItems(callCtx, order.StripeSessionID)
	if err != nil {
		return err
	}

	items := make([]db_models.OrderItem, 0, len(lines))
	for _, line := range lines {
		currency := line.Currency
		if currency == "" {
			currency = order.Currency
		}
		items = append(items, db_models.OrderItem{
			OrderID:         order.ID,
			ProductID:       line.ProductID,
			NameSnapshot:    line.Description,
			UnitAmountCents: line.UnitAmountCents,
			Qty:             line.Qty,
			Currency:        currency,
		})
	}
	if _, err := s.orderRepo.InsertItemsOnce(ctx, order.ID, items); err != nil {
		return fmt.Errorf("%w: item insert: %v", utils.ErrDatabaseError, err)
	}
	return nil
}

// refreshStatus copies the stored status back onto order. A late event may
// carry an older payment status than the row already holds.
func (s *webhookService) refreshStatus(ctx context.Context, order *db_models.Order) error {
	stored, err := s.orderRepo.FindBySessionID(ctx, order.StripeSessionID)
	if err != nil {
		return err
	}
	if stored == nil {
		return errors.New("order vanished after update")
	}
	order.Status = stored.Status
	order.PaymentStatus = stored.PaymentStatus
	return nil
}

func (s *webhookService) buildOrder(ctx context.Context, event *PaymentEvent) *db_models.Order {
	sess := event.Session

	role := db_models.Role(sess.Metadata["role"])
	if role != db_models.RoleRetailer {
		role = db_models.RoleCustomer
	}

	var userID *uuid.UUID
	if raw := sess.Metadata["user_id"]; raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			userID = &id
		}
	}

	currency := strings.ToUpper(sess.Currency)
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}

	order := &db_models.Order{
		StripeSessionID:     sess.ID,
		StripePaymentIntent: utils.OptionalString(sess.PaymentIntentID()),
		UserID:              userID,
		Role:                role,
		CustomerEmail:       utils.OptionalString(s.customerEmail(ctx, sess, userID)),
		AmountTotalCents:    sess.AmountTotal,
		Currency:            currency,
		PaymentStatus:       utils.OptionalString(sess.PaymentStatus),
		Status:              OrderStatusFor(event.Type, sess.PaymentStatus),
	}

	if ship := sess.Shipping(); ship != nil {
		order.ShippingName = utils.OptionalString(ship.Name)
		order.ShippingPhone = utils.OptionalString(ship.Phone)
		order.ShippingAddress = addressJSON(ship.Address)
	}
	if cd := sess.CustomerDetails; cd != nil {
		if order.ShippingName == nil {
			order.ShippingName = utils.OptionalString(cd.Name)
		}
		if order.ShippingPhone == nil {
			order.ShippingPhone = utils.OptionalString(cd.Phone)
		}
		order.BillingAddress = addressJSON(cd.Address)
	}
	return order
}

// customerEmail prefers what the processor captured at checkout, then the
// session metadata, then the identity provider's stored address.
func (s *webhookService) customerEmail(ctx context.Context, sess *CheckoutSession, userID *uuid.UUID) string {
	if sess.CustomerDetails != nil && sess.CustomerDetails.Email != "" {
		return sess.CustomerDetails.Email
	}
	if sess.CustomerEmail != "" {
		return sess.CustomerEmail
	}
	if v := sess.Metadata["customer_email"]; v != "" {
		return v
	}
	if userID != nil {
		stored, err := s.identity.LookupEmail(ctx, *userID)
		if err != nil {
			log.WithError(err).WithField("session_id", sess.ID).Warn("Customer email lookup failed")
			return ""
		}
		return stored
	}
	return ""
}

func addressJSON(addr *Address) datatypes.JSON {
	if addr == nil {
		return nil
	}
	b, err := json.Marshal(addr)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

// notify sends the team and customer emails at most once per order. Failures
// are logged and never reach the caller.
func (s *webhookService) notify(ctx context.Context, logger *log.Entry, order *db_models.Order, items []db_models.OrderItem) {
	if team := s.cfg.TeamEmailForOrders(); team != "" {
		s.sendOnce(ctx, logger, order, repositories.NotifyTeam, func() error {
			return s.mail.SendOrderTeamNotification(ctx, team, order, items)
		})
	}

	if order.CustomerEmail != nil && utils.IsValidEmail(*order.CustomerEmail) {
		to := *order.CustomerEmail
		s.sendOnce(ctx, logger, order, repositories.NotifyCustomer, func() error {
			return s.mail.SendOrderConfirmation(ctx, to, order, items)
		})
	}
}

func (s *webhookService) sendOnce(ctx context.Context, logger *log.Entry, order *db_models.Order, kind repositories.NotificationKind, send func() error) {
	logger = logger.WithField("notification", string(kind))

	claimed, err := s.orderRepo.ClaimNotification(ctx, order.ID, kind, utils.NowUnixSeconds())
	if err != nil {
		// Fall back to the event-id guard alone.
		logger.WithError(err).Warn("Notification claim failed, sending anyway")
	} else if !claimed {
		logger.Debug("Notification already sent")
		return
	}

	if sendErr := send(); sendErr != nil {
		logger.WithError(sendErr).Warn("Notification email not sent")
		if err == nil {
			if relErr := s.orderRepo.ReleaseNotification(ctx, order.ID, kind); relErr != nil {
				logger.WithError(relErr).Warn("Could not release notification claim")
			}
		}
		return
	}
	logger.Info("Notification email sent")
}
