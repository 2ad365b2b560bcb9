package request_models

// CartLineInput is untrusted client input. Qty is left untyped so that
// strings and fractional numbers can be coerced instead of rejected.
type CartLineInput struct {
	ProductID string      `json:"productId"`
	Qty       interface{} `json:"qty"`
}

type CheckoutRequest struct {
	Items      []CartLineInput `json:"items"`
	GuestEmail string          `json:"guest_email"`
}
