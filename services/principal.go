package services

import "auction-backend/models"

// Principal is the authenticated caller of an engine operation.
type Principal struct {
	UserID     string
	Role       string
	SupplierID string
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// IsSupplier reports whether the principal acts for a catalog supplier.
func (p Principal) IsSupplier() bool {
	return p.Role == models.RoleSupplier && p.SupplierID != ""
}
