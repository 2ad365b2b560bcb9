package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"storefront/internal/models/db_models"
	"storefront/pkg/utils"
)

var ErrDuplicateOrder = errors.New("order already exists for session")

type NotificationKind string

const (
	NotifyTeam     NotificationKind = "team_email_sent_at"
	NotifyCustomer NotificationKind = "customer_email_sent_at"
)

type OrderRepository interface {
	// Create returns ErrDuplicateOrder when the session id is already taken.
	Create(ctx context.Context, order *db_models.Order) error
	FindBySessionID(ctx context.Context, sessionID string) (*db_models.Order, error)
	// UpdateReconciled overwrites the fields derived from the payment event.
	// Status and payment status only move forward from created; a paid or
	// failed row keeps its status whatever event arrives later.
	UpdateReconciled(ctx context.Context, order *db_models.Order) error
	FindForUser(ctx context.Context, sessionID string, userID uuid.UUID) (*db_models.Order, error)

	HasItems(ctx context.Context, orderID uuid.UUID) (bool, error)
	// InsertItemsOnce writes items only if the order has none yet and reports
	// whether it did. Concurrent callers for one order are serialized on the
	// order row.
	InsertItemsOnce(ctx context.Context, orderID uuid.UUID, items []db_models.OrderItem) (bool, error)
	ListItems(ctx context.Context, orderID uuid.UUID) ([]db_models.OrderItem, error)

	// ClaimNotification stamps the column only if it is still NULL and
	// reports whether this call won the claim.
	ClaimNotification(ctx context.Context, orderID uuid.UUID, kind NotificationKind, at int64) (bool, error)
	ReleaseNotification(ctx context.Context, orderID uuid.UUID, kind NotificationKind) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (o *orderRepository) Create(ctx context.Context, order *db_models.Order) error {
	err := o.db.WithContext(ctx).Omit("Items").Create(order).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateOrder
	}
	return err
}

func (o *orderRepository) FindBySessionID(ctx context.Context, sessionID string) (*db_models.Order, error) {
	var order db_models.Order
	err := o.db.WithContext(ctx).First(&order, "stripe_session_id = ?", sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (o *orderRepository) UpdateReconciled(ctx context.Context, order *db_models.Order) error {
	now := utils.NowUnixSeconds()
	return o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&db_models.Order{}).
			Where("stripe_session_id = ?", order.StripeSessionID).
			Updates(map[string]interface{}{
				"stripe_payment_intent": order.StripePaymentIntent,
				"user_id":               order.UserID,
				"role":                  order.Role,
				"customer_email":        order.CustomerEmail,
				"amount_total_cents":    order.AmountTotalCents,
				"currency":              order.Currency,
				"shipping_name":         order.ShippingName,
				"shipping_phone":        order.ShippingPhone,
				"shipping_address":      order.ShippingAddress,
				"billing_address":       order.BillingAddress,
				"updated_at":            now,
			}).Error
		if err != nil {
			return err
		}

		return tx.Model(&db_models.Order{}).
			Where("stripe_session_id = ? AND status = ?", order.StripeSessionID, db_models.OrderStatusCreated).
			Updates(map[string]interface{}{
				"payment_status": order.PaymentStatus,
				"status":         order.Status,
			}).Error
	})
}

func (o *orderRepository) FindForUser(ctx context.Context, sessionID string, userID uuid.UUID) (*db_models.Order, error) {
	var order db_models.Order
	err := o.db.WithContext(ctx).
		Preload("Items").
		Where("stripe_session_id = ? AND user_id = ?", sessionID, userID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (o *orderRepository) HasItems(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var count int64
	err := o.db.WithContext(ctx).
		Model(&db_models.OrderItem{}).
		Where("order_id = ?", orderID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (o *orderRepository) InsertItemsOnce(ctx context.Context, orderID uuid.UUID, items []db_models.OrderItem) (bool, error) {
	if len(items) == 0 {
		return false, nil
	}

	written := false
	err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked db_models.Order
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&locked, "id = ?", orderID).Error
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&db_models.OrderItem{}).Where("order_id = ?", orderID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		if err := tx.CreateInBatches(&items, 100).Error; err != nil {
			return err
		}
		written = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return written, nil
}

func (o *orderRepository) ListItems(ctx context.Context, orderID uuid.UUID) ([]db_models.OrderItem, error) {
	var items []db_models.OrderItem
	err := o.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (o *orderRepository) ClaimNotification(ctx context.Context, orderID uuid.UUID, kind NotificationKind, at int64) (bool, error) {
	column, err := notificationColumn(kind)
	if err != nil {
		return false, err
	}
	res := o.db.WithContext(ctx).
		Model(&db_models.Order{}).
		Where("id = ? AND "+column+" IS NULL", orderID).
		UpdateColumn(column, at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (o *orderRepository) ReleaseNotification(ctx context.Context, orderID uuid.UUID, kind NotificationKind) error {
	column, err := notificationColumn(kind)
	if err != nil {
		return err
	}
	return o.db.WithContext(ctx).
		Model(&db_models.Order{}).
		Where("id = ?", orderID).
		UpdateColumn(column, gorm.Expr("NULL")).Error
}

func notificationColumn(kind NotificationKind) (string, error) {
	switch kind {
	case NotifyTeam, NotifyCustomer:
		return string(kind), nil
	default:
		return "", errors.New("unknown notification kind")
	}
}
