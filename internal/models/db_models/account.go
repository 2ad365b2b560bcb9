package db_models

import "github.com/google/uuid"

// Account mirrors the identity provider's user record. The service only
// reads it; sign-up and confirmation happen at the provider.
type Account struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email            string
	EmailConfirmedAt *int64
	CreatedAt        int64
	UpdatedAt        int64
}

func (a *Account) IsEmailConfirmed() bool {
	return a.EmailConfirmedAt != nil && *a.EmailConfirmedAt > 0
}
