package models

// AdminPrincipal is the verified caller of an admin endpoint.
type AdminPrincipal struct {
	Subject string   `json:"sub"`
	Email   string   `json:"email,omitempty"`
	Roles   []string `json:"roles,omitempty"`
}
