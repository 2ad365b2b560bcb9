package response_models

type OrderItemResponse struct {
	ProductID       *string `json:"product_id,omitempty"`
	Name            string  `json:"name"`
	UnitAmountCents int64   `json:"unit_amount_cents"`
	Qty             int64   `json:"qty"`
	Currency        string  `json:"currency"`
}

type OrderStatusResponse struct {
	ID               string              `json:"id"`
	StripeSessionID  string              `json:"stripe_session_id"`
	AmountTotalCents int64               `json:"amount_total_cents"`
	Currency         string              `json:"currency"`
	Status           string              `json:"status"`
	PaymentStatus    *string             `json:"payment_status"`
	CreatedAt        int64               `json:"created_at"`
	Items            []OrderItemResponse `json:"items"`
}
