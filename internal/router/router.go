package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/event-ticketing/internal/handler"    // HTTP handlers
	"github.com/iliyamo/event-ticketing/internal/middleware" // JWT, role, rate limit and cache middleware
	"github.com/iliyamo/event-ticketing/internal/model"      // role names
)

// Handlers groups every HTTP handler the API exposes.
type Handlers struct {
	Auth          *handler.AuthHandler
	Events        *handler.EventHandler
	Bookings      *handler.BookingHandler
	Payments      *handler.PaymentHandler
	Checkins      *handler.CheckinHandler
	Cancellations *handler.CancellationHandler
	Reports       *handler.ReportHandler
	Speakers      *handler.SpeakerHandler
}

// Options carries the shared middleware built from config.
type Options struct {
	JWTSecret string
	RateLimit echo.MiddlewareFunc // applied to coupon checks and booking creation
	Cache     echo.MiddlewareFunc // applied to booking data
}

// Register wires all routes on e.
func Register(e *echo.Echo, h Handlers, opt Options) {
	if opt.RateLimit == nil {
		opt.RateLimit = passThrough
	}
	if opt.Cache == nil {
		opt.Cache = passThrough
	}

	RegisterRoutes(e)
	RegisterAuth(e, h.Auth, opt.JWTSecret)
	RegisterPublic(e, h, opt)
	RegisterAttendee(e, h, opt)
	RegisterOrganizer(e, h, opt)
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// RegisterRoutes registers routes that do not require authentication and
// are not part of the API proper.  Currently it exposes only a health
// check for load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes.
// Unauthenticated operations live under /v1/auth, while the account
// endpoints live under /v1 behind JWTAuth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)              // rotates the refresh token
	g.POST("/refresh-access", a.RefreshAccess) // keeps the refresh token
	g.POST("/logout", a.Logout)

	// Logout is also reachable at the top level; it takes a refresh
	// token in the body or a bearer token, so it sits outside JWTAuth.
	e.POST("/v1/logout", a.Logout)

	auth := jwt(e, jwtSecret)
	auth.GET("/me", a.Me)
	auth.PATCH("/me", a.UpdateMe)
}

// jwt returns a /v1 group where any authenticated role is accepted.
func jwt(e *echo.Echo, secret string, roles ...string) *echo.Group {
	if len(roles) == 0 {
		roles = []string{model.RoleAttendee, model.RoleOrganizer}
	}
	return e.Group("/v1", middleware.JWTAuth(secret), middleware.RequireRole(roles...))
}

// RegisterPublic registers guest endpoints: event browsing, the booking
// form data and the payment gateway callback.
func RegisterPublic(e *echo.Echo, h Handlers, opt Options) {
	e.GET("/v1/events", h.Events.ListPublished)
	e.GET("/v1/events/:route", h.Events.GetPublished)
	e.GET("/v1/events/:route/booking-data", h.Bookings.GetEventBookingData, opt.Cache)
	// authenticated by the gateway signature, not a JWT
	e.POST("/v1/payments/webhook", h.Payments.Webhook)
}

// RegisterAttendee registers endpoints for any signed in user.
func RegisterAttendee(e *echo.Echo, h Handlers, opt Options) {
	g := jwt(e, opt.JWTSecret)
	g.GET("/coupons/validate", h.Bookings.ValidateCoupon, opt.RateLimit)
	g.POST("/coupons/validate", h.Bookings.ValidateCoupon, opt.RateLimit)

	g.POST("/bookings", h.Bookings.ProcessBooking, opt.RateLimit)
	g.GET("/bookings", h.Bookings.ListBookings)
	g.GET("/bookings/:id", h.Bookings.GetBooking)
	g.POST("/bookings/:id/cancellation-requests", h.Cancellations.Create)

	g.GET("/speaker-profiles", h.Speakers.List)
	g.POST("/speaker-profiles", h.Speakers.Create)
}

// RegisterOrganizer registers ORGANIZER-scoped endpoints under
// /v1/organizer.  Ownership of the event is checked by the services.
func RegisterOrganizer(e *echo.Echo, h Handlers, opt Options) {
	g := jwt(e, opt.JWTSecret, model.RoleOrganizer).Group("/organizer")

	// ---- Events ----
	g.POST("/events", h.Events.Create)
	g.GET("/events", h.Events.ListOwn)
	g.POST("/events/:id/publish", h.Events.Publish)
	g.POST("/events/:id/unpublish", h.Events.Unpublish)

	// ---- Event children ----
	g.POST("/events/:id/ticket-types", h.Events.CreateTicketType)
	g.GET("/events/:id/ticket-types", h.Events.ListTicketTypes)
	g.POST("/events/:id/add-ons", h.Events.CreateAddOn)
	g.POST("/events/:id/coupons", h.Events.CreateCoupon)
	g.GET("/events/:id/coupons", h.Events.ListCoupons)
	g.POST("/events/:id/pages", h.Events.CreatePage)
	g.POST("/events/:id/schedule", h.Events.CreateScheduleItem)
	g.POST("/events/:id/custom-fields", h.Events.CreateCustomField)

	// ---- Door ----
	g.GET("/tickets/:id/checkin", h.Checkins.Validate)
	g.POST("/tickets/:id/checkin", h.Checkins.Checkin)

	// ---- Cancellations ----
	g.PATCH("/cancellation-requests/:id", h.Cancellations.SetStatus)
	g.POST("/cancellation-requests/:id/submit", h.Cancellations.Submit)

	// ---- Reports ----
	g.GET("/reports/event-add-ons-overview", h.Reports.AddOnsOverview)
}
