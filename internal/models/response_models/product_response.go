package response_models

type ProductResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency"`
	// Present only when the caller's role changes the charged price.
	YourPriceCents *int64 `json:"your_price_cents,omitempty"`
}
