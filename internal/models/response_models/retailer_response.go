package response_models

type RetailerApplyResponse struct {
	Status string  `json:"status"`
	Reason *string `json:"reason"`
}

type ContactResponse struct {
	ID      string `json:"id,omitempty"`
	Warning string `json:"warning,omitempty"`
}
