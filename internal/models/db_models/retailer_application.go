package db_models

import "github.com/google/uuid"

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

type RetailerApplication struct {
	BaseModel
	UserID            uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	CompanyName       string
	VatNumber         string
	PecEmail          *string
	SdiCode           *string
	ContactName       *string
	ContactPhone      *string
	BillingLine1      *string
	BillingLine2      *string
	BillingCity       *string
	BillingPostalCode *string
	BillingState      *string
	BillingCountry    string `gorm:"size:2"`
	Status            ApplicationStatus
	Notes             *string
	ApprovedAt        *int64
}
