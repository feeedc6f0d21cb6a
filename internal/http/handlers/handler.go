package handlers

import (
	"neelosewa/internal/repositories"
	"neelosewa/internal/services"
)

// Handler groups the services the HTTP API exposes.
type Handler struct {
	Store    repositories.Store
	Auth     services.AuthService
	Profile  services.ProfileService
	Wallet   services.WalletService
	Bookings services.BookingService
	Query    services.QueryService
	Catalog  services.CatalogService
	Admin    services.AdminService
	Tracking services.TrackingService
	Docs     services.DocsService
}
