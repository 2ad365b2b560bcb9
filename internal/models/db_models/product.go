package db_models

type Product struct {
	BaseModel
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `gorm:"size:3" json:"currency"`
	Active      bool   `gorm:"default:true" json:"active"`
	SortOrder   int    `json:"sort_order"`
}
