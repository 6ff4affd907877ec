package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/dharmasatrya/tripbuilder/internal/airport"
	"github.com/dharmasatrya/tripbuilder/internal/booking"
	"github.com/dharmasatrya/tripbuilder/internal/catalog"
	"github.com/dharmasatrya/tripbuilder/internal/discount"
	"github.com/dharmasatrya/tripbuilder/internal/filter"
	"github.com/dharmasatrya/tripbuilder/internal/models"
	"github.com/dharmasatrya/tripbuilder/pkg/currency"
)

type CatalogResponse struct {
	BaseCurrency string                  `json:"base_currency"`
	Currencies   []currency.Rate         `json:"currencies"`
	Cities       []string                `json:"cities"`
	Airports     []airport.Airport       `json:"airports"`
	Transport    []models.TransportClass `json:"transport"`
	Services     []models.ServicePrice   `json:"services"`
	RoomTypes    []models.RoomType       `json:"room_types"`
}

type HotelsResponse struct {
	TotalResults int                `json:"total_results"`
	Hotels       []filter.HotelView `json:"hotels"`
}

type PublicHandler struct {
	catalog    *catalog.Service
	bookings   *booking.Service
	discounts  *discount.Resolver
	currencies *currency.Table
	airports   *airport.Directory
	log        logrus.FieldLogger
}

func NewPublicHandler(cat *catalog.Service, bookings *booking.Service, discounts *discount.Resolver, currencies *currency.Table, airports *airport.Directory, log logrus.FieldLogger) *PublicHandler {
	return &PublicHandler{
		catalog:    cat,
		bookings:   bookings,
		discounts:  discounts,
		currencies: currencies,
		airports:   airports,
		log:        log,
	}
}

func (h *PublicHandler) Catalog(c echo.Context) error {
	snap, err := h.catalog.Snapshot(c.Request().Context())
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(http.StatusOK, CatalogResponse{
		BaseCurrency: h.currencies.Base(),
		Currencies:   h.currencies.Rates(),
		Cities:       snap.Cities(),
		Airports:     h.airports.List(),
		Transport:    snap.Transport,
		Services:     snap.Services,
		RoomTypes:    models.RoomTypes(),
	})
}

func (h *PublicHandler) Hotels(c echo.Context) error {
	var q models.HotelQuery
	if err := c.Bind(&q); err != nil {
		return badRequest(c, "Failed to parse query: "+err.Error())
	}
	if q.RoomType != "" && !q.RoomType.Valid() {
		return badRequest(c, "Unknown room type "+string(q.RoomType))
	}

	snap, err := h.catalog.Snapshot(c.Request().Context())
	if err != nil {
		return respondError(c, h.log, err)
	}

	hotels := filter.Apply(snap.Hotels, q)
	return c.JSON(http.StatusOK, HotelsResponse{
		TotalResults: len(hotels),
		Hotels:       hotels,
	})
}

func (h *PublicHandler) Quote(c echo.Context) error {
	var req models.QuoteRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Failed to parse request body: "+err.Error())
	}
	if err := req.Validate(); err != nil {
		return respondError(c, h.log, err)
	}

	resp, err := h.bookings.Quote(c.Request().Context(), req.Itinerary, req.Traveler)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// CheckDiscount previews what a code would take off. The line amounts come
// from query parameters; subtotal defaults to their sum. The code's use
// counter is never touched here.
func (h *PublicHandler) CheckDiscount(c echo.Context) error {
	lines := discount.LineItems{}
	for _, item := range []models.LineItem{models.LineRooms, models.LineTours, models.LineTransport, models.LineServices} {
		v, err := queryFloat(c, string(item))
		if err != nil {
			return badRequest(c, err.Error())
		}
		if v > 0 {
			lines[item] = v
		}
	}

	subtotal, err := queryFloat(c, "subtotal")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if subtotal == 0 {
		subtotal = lines.Subtotal()
	}

	res := h.discounts.Resolve(c.Request().Context(), c.Param("code"), subtotal, lines)
	return c.JSON(http.StatusOK, res)
}

func queryFloat(c echo.Context, name string) (float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, &queryError{name: name}
	}
	return v, nil
}

type queryError struct {
	name string
}

func (e *queryError) Error() string {
	return "Invalid " + e.name + " parameter"
}
