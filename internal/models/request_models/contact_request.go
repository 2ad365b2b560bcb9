package request_models

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	Privacy bool   `json:"privacy"`
	Website string `json:"website"` // honeypot, must stay empty
}
