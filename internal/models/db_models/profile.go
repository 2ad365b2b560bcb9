package db_models

import "github.com/google/uuid"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleRetailer Role = "retailer"
)

type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Role      Role      `gorm:"default:customer"`
	CreatedAt int64     `gorm:"autoCreateTime"`
	UpdatedAt int64     `gorm:"autoUpdateTime"`
}
