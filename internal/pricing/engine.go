package pricing

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/dharmasatrya/tripbuilder/internal/discount"
	"github.com/dharmasatrya/tripbuilder/internal/itinerary"
	"github.com/dharmasatrya/tripbuilder/internal/models"
	"github.com/dharmasatrya/tripbuilder/pkg/currency"
)

// DiscountBase selects what a percentage discount is taken from.
type DiscountBase string

const (
	// PreMargin takes the percentage of rooms+tours+transport+services and
	// leaves the margin untouched. This is the default.
	PreMargin DiscountBase = "pre_margin"
	// PostMargin takes the percentage of the subtotal plus the margin.
	PostMargin DiscountBase = "post_margin"
)

const DefaultMarginRate = 0.20

type Config struct {
	MarginRate   float64
	DiscountBase DiscountBase
}

func DefaultConfig() Config {
	return Config{
		MarginRate:   DefaultMarginRate,
		DiscountBase: PreMargin,
	}
}

// Catalog is the price list a quote is computed against.
type Catalog interface {
	Hotel(id string) (models.HotelRecord, bool)
	TransportClass(carType string) (models.TransportClass, bool)
	Service(code models.ServiceCode) (models.ServicePrice, bool)
}

type DiscountResolver interface {
	Resolve(ctx context.Context, code string, subtotal float64, lines discount.LineItems) models.DiscountResult
}

// DiscountFunc resolves the discount for a quote given the amount a
// percentage applies to and the pre-margin line items. Nil means no discount.
type DiscountFunc func(base float64, lines discount.LineItems) *models.DiscountResult

// WithCode evaluates an already-fetched, eligible discount code.
func WithCode(dc models.DiscountCode) DiscountFunc {
	return func(base float64, lines discount.LineItems) *models.DiscountResult {
		res := discount.Evaluate(dc, base, lines)
		return &res
	}
}

// Engine computes quotes. It holds no per-quote state, so Price can be
// called on every change of the itinerary.
type Engine struct {
	cfg        Config
	rules      *itinerary.Rules
	currencies *currency.Table
	discounts  DiscountResolver
}

func NewEngine(cfg Config, rules *itinerary.Rules, currencies *currency.Table, discounts DiscountResolver) *Engine {
	if cfg.DiscountBase == "" {
		cfg.DiscountBase = PreMargin
	}
	return &Engine{
		cfg:        cfg,
		rules:      rules,
		currencies: currencies,
		discounts:  discounts,
	}
}

func (e *Engine) Rules() *itinerary.Rules {
	return e.rules
}

// Price resolves the itinerary's discount code through the resolver and
// prices the trip. The code's use counter is never touched here.
func (e *Engine) Price(ctx context.Context, cat Catalog, it models.Itinerary, traveler models.Traveler) models.Quote {
	var fn DiscountFunc
	if code := strings.TrimSpace(it.DiscountCode); code != "" && e.discounts != nil {
		fn = func(base float64, lines discount.LineItems) *models.DiscountResult {
			res := e.discounts.Resolve(ctx, code, base, lines)
			return &res
		}
	}
	return e.PriceWith(cat, it, traveler, fn)
}

// PriceWith prices the trip using fn for the discount step.
func (e *Engine) PriceWith(cat Catalog, it models.Itinerary, traveler models.Traveler, fn DiscountFunc) models.Quote {
	it = e.rules.ApplyMandatoryTours(it)

	var q models.Quote
	warn := func(code, format string, args ...any) {
		q.Warnings = append(q.Warnings, models.Warning{Code: code, Message: fmt.Sprintf(format, args...)})
	}

	// negative nights or tours never reduce the price
	for i := range it.Cities {
		stay := &it.Cities[i]
		if stay.Nights < 0 {
			warn(models.WarnInvalidStay, "%s has %d nights, priced as 0", stay.City, stay.Nights)
			stay.Nights = 0
		}
		if stay.Tours < 0 {
			warn(models.WarnInvalidStay, "%s has %d extra tours, priced as 0", stay.City, stay.Tours)
			stay.Tours = 0
		}
	}

	// 1. rooms
	for _, stay := range it.Cities {
		if stay.HotelID == nil {
			warn(models.WarnHotelMissing, "no hotel chosen in %s", stay.City)
			continue
		}
		hotel, ok := cat.Hotel(*stay.HotelID)
		if !ok {
			warn(models.WarnHotelMissing, "hotel %s in %s is no longer available", *stay.HotelID, stay.City)
			continue
		}
		for _, sel := range stay.RoomSelections {
			if sel.RoomType == "" {
				continue
			}
			nightly, ok := hotel.PriceFor(sel.RoomType)
			if !ok {
				warn(models.WarnRoomPriceMissing, "%s has no price for %s", hotel.Name, sel.RoomType)
				continue
			}
			q.RoomCost += nightly * float64(stay.Nights)
		}
	}

	// 2. tours and 3. transfers, both from the chosen vehicle class
	transport, hasTransport := cat.TransportClass(it.CarType)
	if !hasTransport {
		warn(models.WarnTransportMissing, "transport class %q is not available", it.CarType)
	}
	tours := 0
	for _, stay := range it.Cities {
		tours += stay.Tours + stay.MandatoryTours
	}
	if hasTransport {
		q.ToursCost = float64(tours) * transport.TourPrice
		q.TransportCost = transport.ReceptionFee(e.rules.SameCityReception(it)) +
			transport.FarewellFee(e.rules.SameCityFarewell(it))
	}

	// 4. add-on services
	q.ServicesCost = e.servicesCost(cat, it, traveler, warn)

	q.RoomCost = roundCents(q.RoomCost)
	q.ToursCost = roundCents(q.ToursCost)
	q.TransportCost = roundCents(q.TransportCost)
	q.ServicesCost = roundCents(q.ServicesCost)

	// 5. subtotal and 6. margin on rooms and tours only
	q.Subtotal = roundCents(q.RoomCost + q.ToursCost + q.TransportCost + q.ServicesCost)
	q.MarginAmount = roundCents((q.RoomCost + q.ToursCost) * e.cfg.MarginRate)

	// 7. discount
	if fn != nil {
		lines := discount.LineItems{
			models.LineRooms:     q.RoomCost,
			models.LineTours:     q.ToursCost,
			models.LineTransport: q.TransportCost,
			models.LineServices:  q.ServicesCost,
		}
		base := q.Subtotal
		if e.cfg.DiscountBase == PostMargin {
			base = roundCents(q.Subtotal + q.MarginAmount)
		}
		if res := fn(base, lines); res != nil {
			q.Discount = res
			if res.Reason == "" {
				q.DiscountAmount = res.Amount
			}
		}
	}

	// 8. total, floored at zero, then converted for display
	q.Total = roundCents(math.Max(0, q.Subtotal+q.MarginAmount-q.DiscountAmount))
	q.Currency = strings.ToUpper(strings.TrimSpace(it.Currency))
	if q.Currency == "" {
		q.Currency = e.currencies.Base()
	}
	display, ok := e.currencies.Convert(q.Total, q.Currency)
	if !ok {
		warn(models.WarnCurrencyUnknown, "currency %s is unknown, showing %s amounts", q.Currency, e.currencies.Base())
	}
	q.DisplayTotal = display
	q.FormattedTotal = e.currencies.Format(display, q.Currency)
	q.TourCount = itinerary.TotalTourCount(it)

	if w := itinerary.NightsAdvisory(it); w != nil {
		q.Warnings = append(q.Warnings, *w)
	}
	return q
}

func (e *Engine) servicesCost(cat Catalog, it models.Itinerary, traveler models.Traveler, warn func(string, string, ...any)) float64 {
	nights := it.TotalNights()
	if nights == 0 && !it.ArrivalDate.IsZero() && !it.DepartureDate.IsZero() {
		nights = itinerary.MinimumNights(it.ArrivalDate.Time, it.DepartureDate.Time)
	}

	total := 0.0
	for _, sel := range it.AdditionalServices {
		if !sel.Enabled {
			continue
		}
		sp, ok := cat.Service(sel.Code)
		if !ok {
			warn(models.WarnServiceMissing, "service %s is not available", sel.Code)
			continue
		}
		total += ServiceCost(sp, sel, traveler.Headcount(), nights)
	}
	return total
}

// ServiceCost prices one enabled add-on. Quantity overrides the headcount
// for per-person units and counts units for per-unit services.
func ServiceCost(sp models.ServicePrice, sel models.ServiceSelection, headcount, nights int) float64 {
	persons := headcount
	if sel.Quantity > 0 {
		persons = sel.Quantity
	}
	switch sp.Unit {
	case models.UnitPerUnit:
		units := sel.Quantity
		if units < 1 {
			units = 1
		}
		return sp.Price * float64(units)
	case models.UnitPerPerson:
		return sp.Price * float64(persons)
	case models.UnitPerPersonNight:
		return sp.Price * float64(persons) * float64(nights)
	default:
		return sp.Price
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
