package request_models

type RetailerApplyRequest struct {
	CompanyName       string `json:"company_name"`
	VatNumber         string `json:"vat_number"`
	PecEmail          string `json:"pec_email"`
	SdiCode           string `json:"sdi_code"`
	ContactName       string `json:"contact_name"`
	ContactPhone      string `json:"contact_phone"`
	BillingLine1      string `json:"billing_line1"`
	BillingLine2      string `json:"billing_line2"`
	BillingCity       string `json:"billing_city"`
	BillingPostalCode string `json:"billing_postal_code"`
	BillingState      string `json:"billing_state"`
	BillingCountry    string `json:"billing_country"`
}
