package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dharmasatrya/tripbuilder/internal/ratelimit"
)

type Routes struct {
	Public    *PublicHandler
	Drafts    *DraftHandler
	Admin     *AdminHandler
	AdminAuth echo.MiddlewareFunc
	Limiter   *ratelimit.KeyLimiter
	FilesDir  string
}

func (r Routes) Register(e *echo.Echo) {
	e.Validator = NewRequestValidator()
	e.GET("/health", HealthHandler)
	if r.FilesDir != "" {
		e.Static("/files", r.FilesDir)
	}

	limited := ratelimit.PerIP(r.Limiter)

	api := e.Group("/api/v1")
	api.GET("/catalog", r.Public.Catalog)
	api.GET("/hotels", r.Public.Hotels)
	api.POST("/quote", r.Public.Quote, limited)
	api.GET("/discounts/:code/check", r.Public.CheckDiscount, limited)

	drafts := api.Group("/drafts")
	drafts.POST("", r.Drafts.Create)
	drafts.GET("/:id", r.Drafts.Get)
	drafts.PATCH("/:id", r.Drafts.Update)
	drafts.GET("/:id/quote", r.Drafts.Quote)
	drafts.POST("/:id/steps/:step/check", r.Drafts.CheckStep)
	drafts.POST("/:id/documents", r.Drafts.UploadDocument, middleware.BodyLimit("6M"))
	drafts.DELETE("/:id/documents/:docID", r.Drafts.DeleteDocument)
	drafts.POST("/:id/finalize", r.Drafts.Finalize, limited)

	admin := api.Group("/admin", r.AdminAuth)
	admin.GET("/hotels", r.Admin.ListHotels)
	admin.POST("/hotels", r.Admin.CreateHotel)
	admin.PUT("/hotels/:id", r.Admin.UpdateHotel)
	admin.DELETE("/hotels/:id", r.Admin.DeleteHotel)

	admin.GET("/transport", r.Admin.ListTransport)
	admin.POST("/transport", r.Admin.CreateTransport)
	admin.PUT("/transport/:id", r.Admin.UpdateTransport)
	admin.DELETE("/transport/:id", r.Admin.DeleteTransport)

	admin.GET("/services", r.Admin.ListServices)
	admin.POST("/services", r.Admin.CreateService)
	admin.PUT("/services/:id", r.Admin.UpdateService)
	admin.DELETE("/services/:id", r.Admin.DeleteService)

	admin.GET("/discounts", r.Admin.ListDiscounts)
	admin.POST("/discounts", r.Admin.CreateDiscount)
	admin.PUT("/discounts/:id", r.Admin.UpdateDiscount)
	admin.DELETE("/discounts/:id", r.Admin.DeleteDiscount)

	admin.GET("/bookings", r.Admin.ListBookings)
	admin.GET("/bookings/:id", r.Admin.GetBooking)
	admin.PATCH("/bookings/:id/status", r.Admin.UpdateBookingStatus)
	admin.DELETE("/bookings/:id", r.Admin.DeleteBooking)
}
