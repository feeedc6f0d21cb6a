package domain

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// RequestContext carries authenticated user info when available.
type RequestContext struct {
	UserID    string `json:"userId"`
	Role      string `json:"role"`
	RequestID string `json:"requestId,omitempty"`
}

func (r RequestContext) IsAdmin() bool { return r.Role == RoleAdmin }

// ValidRole reports whether role is one the system assigns.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
