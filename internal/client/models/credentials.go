package models

// Credentials are the optional inputs of a login attempt. Only the fields
// relevant to the chosen provider are read.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,e164"`
}
