package db_models

// StripeEvent is the processed-event set: one row per reconciled
// processor event id.
type StripeEvent struct {
	ID        string `gorm:"primaryKey"`
	Type      string
	CreatedAt int64 `gorm:"autoCreateTime"`
}
