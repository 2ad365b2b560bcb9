package db_models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderStatusCreated OrderStatus = "created"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusFailed  OrderStatus = "failed"
)

type Order struct {
	BaseModel
	StripeSessionID     string      `gorm:"uniqueIndex" json:"stripe_session_id"`
	StripePaymentIntent *string     `json:"stripe_payment_intent,omitempty"`
	UserID              *uuid.UUID  `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Role                Role        `json:"role"`
	CustomerEmail       *string     `json:"customer_email,omitempty"`
	AmountTotalCents    int64       `json:"amount_total_cents"`
	Currency            string      `gorm:"size:3" json:"currency"`
	PaymentStatus       *string     `json:"payment_status,omitempty"`
	Status              OrderStatus `json:"status"`

	ShippingName    *string        `json:"shipping_name,omitempty"`
	ShippingPhone   *string        `json:"shipping_phone,omitempty"`
	ShippingAddress datatypes.JSON `gorm:"type:jsonb" json:"shipping_address,omitempty"`
	BillingAddress  datatypes.JSON `gorm:"type:jsonb" json:"billing_address,omitempty"`

	// Unix seconds; set once the corresponding notification has been claimed.
	TeamEmailSentAt     *int64 `json:"-"`
	CustomerEmailSentAt *int64 `json:"-"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}
