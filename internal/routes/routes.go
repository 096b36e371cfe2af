package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barberbook/internal/audit"
	"github.com/BruksfildServices01/barberbook/internal/cache"
	"github.com/BruksfildServices01/barberbook/internal/clock"
	"github.com/BruksfildServices01/barberbook/internal/config"
	domain "github.com/BruksfildServices01/barberbook/internal/domain/booking"
	"github.com/BruksfildServices01/barberbook/internal/domain/payment"
	"github.com/BruksfildServices01/barberbook/internal/handlers"
	infraRepo "github.com/BruksfildServices01/barberbook/internal/infra/repository"
	"github.com/BruksfildServices01/barberbook/internal/middleware"
	"github.com/BruksfildServices01/barberbook/internal/models"
	"github.com/BruksfildServices01/barberbook/internal/realtime"
	"github.com/BruksfildServices01/barberbook/internal/storage"
	ucAnalytics "github.com/BruksfildServices01/barberbook/internal/usecase/analytics"
	ucCatalog "github.com/BruksfildServices01/barberbook/internal/usecase/catalog"
	ucClients "github.com/BruksfildServices01/barberbook/internal/usecase/clients"
	ucLoyalty "github.com/BruksfildServices01/barberbook/internal/usecase/loyalty"
	ucPayment "github.com/BruksfildServices01/barberbook/internal/usecase/payment"
	ucPaymentLinks "github.com/BruksfildServices01/barberbook/internal/usecase/paymentlinks"
	ucScheduling "github.com/BruksfildServices01/barberbook/internal/usecase/scheduling"
	ucWaitlist "github.com/BruksfildServices01/barberbook/internal/usecase/waitlist"
)

// Infra carries the process-wide collaborators built by the serve command.
type Infra struct {
	Log       *zap.Logger
	Clock     clock.Clock
	Location  *time.Location
	Hub       *realtime.Hub
	Audit     *audit.Dispatcher
	Reminders domain.ReminderScheduler
	Gateway   payment.Gateway
	Cache     cache.Store
	Photos    storage.PhotoStore

	Hours        domain.OpeningHours
	ReminderLead time.Duration
}

// RegisterRoutes wires every handler and returns the payment coordinator so
// the caller can drain in-flight attempts on shutdown.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, infra Infra) *ucPayment.Coordinator {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.Recovery(infra.Log))
	r.Use(middleware.RequestLogger(infra.Log))
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins()))
	r.Use(middleware.NewRateLimiter(cfg.MaxRequestsPerMin).Middleware())

	// ======================================================
	// 🔧 INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)
	waitlistRepo := infraRepo.NewWaitlistGormRepository(db)
	paymentLinkRepo := infraRepo.NewPaymentLinkGormRepository(db)

	// ======================================================
	// 🧠 USE CASES
	// ======================================================
	scheduler := ucScheduling.NewScheduler(
		bookingRepo,
		infra.Clock,
		infra.Reminders,
		infra.Audit,
		infra.Log.Named("scheduler"),
		ucScheduling.Options{Hours: infra.Hours, ReminderLead: infra.ReminderLead},
	)

	payments := ucPayment.NewCoordinator(
		bookingRepo,
		infra.Gateway,
		infra.Reminders,
		infra.Hub,
		infra.Audit,
		infra.Log.Named("payments"),
	)

	waitlist := ucWaitlist.NewManager(
		waitlistRepo,
		infra.Clock,
		infra.Cache,
		infra.Hub,
		infra.Audit,
		infra.Log.Named("waitlist"),
	)

	catalog := ucCatalog.New(bookingRepo, infra.Photos, infra.Reminders, infra.Audit, infra.Log)
	catalog.OnServicesChanged(waitlist.InvalidateBoard)

	clients := ucClients.New(bookingRepo, infra.Photos, infra.Reminders, infra.Clock, infra.Audit, infra.Log)
	links := ucPaymentLinks.New(paymentLinkRepo, infra.Photos, infra.Audit, infra.Log)
	loyalty := ucLoyalty.New(bookingRepo)
	analytics := ucAnalytics.New(bookingRepo, infra.Clock)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	catalogHandler := handlers.NewCatalogHandler(catalog)
	clientHandler := handlers.NewClientHandler(clients, scheduler)
	bookingHandler := handlers.NewBookingHandler(scheduler, payments, infra.Location)
	waitlistHandler := handlers.NewWaitlistHandler(waitlist)
	insightsHandler := handlers.NewInsightsHandler(loyalty, analytics)
	paymentLinkHandler := handlers.NewPaymentLinkHandler(links)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)
	publicHandler := handlers.NewPublicHandler(catalog, waitlist)

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🌐 API PÚBLICA
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/menu", publicHandler.Menu)
			publicAPI.GET("/availability", bookingHandler.Availability)
			publicAPI.GET("/waitlist", publicHandler.Board)
			publicAPI.POST("/waitlist", publicHandler.Join)
		}

		// ------------------------------
		// 🔐 AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// 🔐 API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))

		// só o dono apaga ou mexe em dinheiro
		ownerOnly := middleware.RequireRole(models.RoleOwner)
		{
			secured.GET("/auth/me", authHandler.Me)
			secured.POST("/users", ownerOnly, authHandler.CreateUser)

			secured.GET("/providers", catalogHandler.ListProviders)
			secured.POST("/providers", catalogHandler.CreateProvider)
			secured.GET("/providers/:id", catalogHandler.GetProvider)
			secured.PATCH("/providers/:id", catalogHandler.UpdateProvider)
			secured.DELETE("/providers/:id", ownerOnly, catalogHandler.DeleteProvider)
			secured.PUT("/providers/:id/avatar", catalogHandler.SetAvatar)
			secured.DELETE("/providers/:id/avatar", catalogHandler.ClearAvatar)

			secured.GET("/services", catalogHandler.ListServices)
			secured.POST("/services", catalogHandler.CreateService)
			secured.PATCH("/services/:id", catalogHandler.UpdateService)
			secured.DELETE("/services/:id", ownerOnly, catalogHandler.DeleteService)

			secured.GET("/clients", clientHandler.List)
			secured.POST("/clients", clientHandler.Create)
			secured.GET("/clients/:id", clientHandler.Get)
			secured.PATCH("/clients/:id", clientHandler.Update)
			secured.DELETE("/clients/:id", ownerOnly, clientHandler.Delete)
			secured.GET("/clients/:id/bookings", clientHandler.Bookings)
			secured.GET("/clients/:id/haircuts", clientHandler.Haircuts)
			secured.POST("/clients/:id/haircuts", clientHandler.AddHaircut)
			secured.GET("/clients/:id/loyalty", insightsHandler.ClientLoyalty)
			secured.DELETE("/haircuts/:haircutID", ownerOnly, clientHandler.DeleteHaircut)

			// ------------------------------
			// BOOKINGS
			// ------------------------------
			secured.POST("/bookings", bookingHandler.Create)
			secured.GET("/bookings", bookingHandler.List)
			secured.GET("/bookings/month", bookingHandler.ListByMonth)
			secured.GET("/bookings/availability", bookingHandler.Availability)
			secured.GET("/bookings/:id", bookingHandler.Get)
			secured.PATCH("/bookings/:id/status", bookingHandler.MarkStatus)
			secured.PATCH("/bookings/:id/reschedule", bookingHandler.Reschedule)
			secured.POST("/bookings/:id/pay", bookingHandler.Pay)
			secured.POST("/bookings/:id/payment/reconcile", ownerOnly, bookingHandler.Reconcile)

			// ------------------------------
			// WAITLIST
			// ------------------------------
			secured.GET("/waitlist", waitlistHandler.Board)
			secured.POST("/waitlist", waitlistHandler.Add)
			secured.GET("/waitlist/:id/position", waitlistHandler.Position)
			secured.PATCH("/waitlist/:id/serve", waitlistHandler.Serve)
			secured.PATCH("/waitlist/:id/cancel", waitlistHandler.Cancel)

			secured.GET("/loyalty", insightsHandler.Loyalty)
			secured.GET("/analytics/summary", insightsHandler.Summary)

			secured.GET("/payment-links", paymentLinkHandler.List)
			secured.POST("/payment-links", paymentLinkHandler.Create)
			secured.PUT("/payment-links/:id", paymentLinkHandler.Update)
			secured.DELETE("/payment-links/:id", ownerOnly, paymentLinkHandler.Delete)

			secured.GET("/audit-logs", ownerOnly, auditLogsHandler.List)
		}
	}

	// ======================================================
	// ⚡ REALTIME
	// ======================================================
	infra.Hub.AllowOrigins(cfg.AllowedOrigins())
	r.GET("/ws", middleware.WebSocketAuthMiddleware(cfg), infra.Hub.ServeWS)

	return payments
}
