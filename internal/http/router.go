package api

import (
	stdhttp "net/http"

	intconfig "neelosewa/internal/config"
	"neelosewa/internal/domain"
	"neelosewa/internal/http/handlers"
	"neelosewa/internal/http/middleware"
	"neelosewa/internal/utils"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env, h *handlers.Handler, tokens middleware.TokenParser) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORS))

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.Logger().WithError(err).Warn("failed to set trusted proxies")
	}

	r.OPTIONS("/*path", func(c *gin.Context) { c.AbortWithStatus(stdhttp.StatusNoContent) })

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", handlers.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", handlers.Routes)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)

		// Public catalog
		public := api.Group("/public")
		public.GET("/buses", h.SearchBuses)
		public.GET("/buses/:id", h.GetBus)
		public.GET("/buses/:id/seats", h.GetSeatMap)
		public.GET("/hotels", h.SearchHotels)
		public.GET("/hotels/:id", h.GetHotel)

		api.GET("/tracking/:ticketNumber", h.TrackTicket)

		// Signed-in users
		user := api.Group("/user", middleware.RequireAuth(tokens))
		user.GET("/profile", h.GetProfile)
		user.PUT("/profile", h.UpdateProfile)
		user.GET("/wallet", h.GetBalance)
		user.POST("/wallet/add", h.TopUp)
		user.GET("/wallet/transactions", h.Transactions)

		bookings := user.Group("/bookings")
		bookings.GET("", h.ListBookings)
		bookings.POST("/bus", h.BookBus)
		bookings.POST("/hotel", h.BookHotel)
		bookings.PUT("/:id/cancel", h.CancelBooking)
		bookings.GET("/:id/e-ticket", h.GetETicketPDF)

		// Admin
		admin := api.Group("/admin", middleware.RequireAuth(tokens), middleware.RequireRoles(domain.RoleAdmin))
		mountInventory(admin, h)
		admin.GET("/users", h.ListUsers)
		admin.PUT("/users/:id/role", h.UpdateUserRole)
		admin.GET("/users/:id/reconcile", h.ReconcileWallet)
	}

	handlers.SetRouter(r)
	return r
}

func mountInventory(g *gin.RouterGroup, h *handlers.Handler) {
	g.POST("/buses", h.CreateBus)
	g.PUT("/buses/:id", h.UpdateBus)
	g.DELETE("/buses/:id", h.DeleteBus)
	g.POST("/hotels", h.CreateHotel)
	g.PUT("/hotels/:id", h.UpdateHotel)
	g.DELETE("/hotels/:id", h.DeleteHotel)
}
