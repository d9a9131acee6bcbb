package auth

import "github.com/subhakaryam/subhakaryam/internal/web"

const (
	PermVerifyProviders web.Permission = "admin.providers.verify"
	PermManagePayments  web.Permission = "admin.payments.manage"
	PermViewAllBookings web.Permission = "admin.bookings.view"
)

// Permissions is the role table handed to web.WithRoles. Customers and
// providers act only on their own records, which services check.
func Permissions() web.RolePermissions {
	return web.RolePermissions{
		string(RoleAdmin): {PermVerifyProviders, PermManagePayments, PermViewAllBookings},
	}
}
