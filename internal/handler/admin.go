package handler

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/dharmasatrya/tripbuilder/internal/airport"
	"github.com/dharmasatrya/tripbuilder/internal/booking"
	"github.com/dharmasatrya/tripbuilder/internal/catalog"
	"github.com/dharmasatrya/tripbuilder/internal/discount"
	"github.com/dharmasatrya/tripbuilder/internal/models"
)

// AdminAuth checks basic auth credentials against a bcrypt hash. An empty
// hash locks the admin API.
func AdminAuth(user, passwordHash string) echo.MiddlewareFunc {
	return middleware.BasicAuth(func(u, p string, c echo.Context) (bool, error) {
		if passwordHash == "" {
			return false, nil
		}
		if subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 {
			return false, nil
		}
		return bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(p)) == nil, nil
	})
}

type BookingListResponse struct {
	TotalResults int                    `json:"total_results"`
	Bookings     []models.BookingRecord `json:"bookings"`
}

type AdminHandler struct {
	catalog   *catalog.Service
	discounts *discount.Manager
	bookings  *booking.Service
	log       logrus.FieldLogger
}

func NewAdminHandler(cat *catalog.Service, discounts *discount.Manager, bookings *booking.Service, log logrus.FieldLogger) *AdminHandler {
	return &AdminHandler{
		catalog:   cat,
		discounts: discounts,
		bookings:  bookings,
		log:       log,
	}
}

// --- Hotels ---

func (h *AdminHandler) ListHotels(c echo.Context) error {
	hotels, err := h.catalog.ListHotels(c.Request().Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, hotels)
}

func (h *AdminHandler) CreateHotel(c echo.Context) error {
	var rec models.HotelRecord
	if err := c.Bind(&rec); err != nil {
		return badRequest(c, "Failed to parse request body: "+err.Error())
	}
	if err := h.catalog.CreateHotel(c.Request().Context(), &rec); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *AdminHandler) UpdateHotel(c echo.Context) error {
	var rec models.HotelRecord
	if err := c.Bind(&rec); err != nil {
		return badRequest(c, "Failed to parse request body: "+err.Error())
	}
	rec.ID = c.Param("id")
	if err := h.catalog.UpdateHotel(c.Request().Context(), &rec); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *AdminHandler) DeleteHotel(c echo.Context) error {
	if err := h.catalog.DeleteHotel(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Transport ---

func (h *AdminHandler) ListTransport(c echo.Context) error {
	classes, err := h.catalog.ListTransportClasses(c.Request().Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, classes)
}

func (h *AdminHandler) CreateTransport(c echo.Context) error {
	var rec models.TransportClass
	if err := c.Bind(&rec); err != nil {
		return badRequest(c, "Failed to parse request body: "+err.Error())
	}
	if err := h.catalog.CreateTransportClass(c.Request().Context(), &rec); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *AdminHandler) UpdateTransport(c echo.Context) error {
	var rec models.TransportClass
	if err := c.Bind(&rec); err != nil {
		return badRequest(c, "Failed to parse request body: "+err.Error())
	}
	rec.ID = c.Param("id")
	if err := h.catalog.UpdateTransportClass(c.Request().Context(), &rec); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *AdminHandler) DeleteTransport(c echo.Context) error {
	if err := h.catalog.DeleteTransportClass(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Services ---

func (h *AdminHandler) ListServices(c echo.Context) error {
	services, err := h.catalog.ListServices(c.Request().Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, services)
}

func (h *AdminHandler) CreateService(c echo.Context) error {
	var rec models.ServicePrice
	if err := c.Bind(&rec); err != nil {
		return badRequest(c, "Failed to parse request body: "+err.Error())
	}
	if err := h.catalog.CreateService(c.Request().Context(), &rec); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *AdminHandler) UpdateService(c echo.Context) error {
	var rec models.ServicePrice
	if err := c.Bind(&rec); err != nil {
		return badRequest(c, "Failed to parse request body: "+err.Error())
	}
	rec.ID = c.Param("id")
	if err := h.catalog.UpdateService(c.Request().Context(), &rec); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *AdminHandler) DeleteService(c echo.Context) error {
	if err := h.catalog.DeleteService(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Discount codes ---

func (h *AdminHandler) ListDiscounts(c echo.Context) error {
	codes, err := h.discounts.List(c.Request().Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, codes)
}

func (h *AdminHandler) CreateDiscount(c echo.Context) error {
	var dc models.DiscountCode
	if err := c.Bind(&dc); err != nil {
		return badRequest(c, "Failed to parse request body: "+err.Error())
	}
	if err := h.discounts.Create(c.Request().Context(), &dc); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dc)
}

func (h *AdminHandler) UpdateDiscount(c echo.Context) error {
	var dc models.DiscountCode
	if err := c.Bind(&dc); err != nil {
		return badRequest(c, "Failed to parse request body: "+err.Error())
	}
	dc.ID = c.Param("id")
	if err := h.discounts.Update(c.Request().Context(), &dc); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dc)
}

func (h *AdminHandler) DeleteDiscount(c echo.Context) error {
	if err := h.discounts.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Bookings ---

// ListBookings filters by status, creation day range (from/to as
// YYYY-MM-DD in Georgian time, both inclusive) and a free text q.
func (h *AdminHandler) ListBookings(c echo.Context) error {
	filter := models.BookingFilter{
		Status: models.BookingStatus(c.QueryParam("status")),
		Query:  c.QueryParam("q"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return respondError(c, h.log, models.ErrInvalidStatus)
	}
	if from := c.QueryParam("from"); from != "" {
		day, err := parseDay(from)
		if err != nil {
			return badRequest(c, "from must be YYYY-MM-DD")
		}
		filter.From = &day
	}
	if to := c.QueryParam("to"); to != "" {
		day, err := parseDay(to)
		if err != nil {
			return badRequest(c, "to must be YYYY-MM-DD")
		}
		end := day.AddDate(0, 0, 1)
		filter.To = &end
	}

	bookings, err := h.bookings.ListBookings(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, BookingListResponse{
		TotalResults: len(bookings),
		Bookings:     bookings,
	})
}

func parseDay(s string) (time.Time, error) {
	d, err := models.ParseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, airport.GET), nil
}

func (h *AdminHandler) GetBooking(c echo.Context) error {
	rec, err := h.bookings.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *AdminHandler) UpdateBookingStatus(c echo.Context) error {
	var req models.StatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Failed to parse request body: "+err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.bookings.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status); err != nil {
		return respondError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) DeleteBooking(c echo.Context) error {
	if err := h.bookings.DeleteBooking(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
