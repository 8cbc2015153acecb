package dto

// NameRequest creates a facility or a payment method.
type NameRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}
