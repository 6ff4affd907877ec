package booking

import (
	"strings"
	"time"

	"github.com/dharmasatrya/tripbuilder/internal/allocation"
	"github.com/dharmasatrya/tripbuilder/internal/itinerary"
	"github.com/dharmasatrya/tripbuilder/internal/models"
)

// Draft is the wizard's in-progress booking. It is owned by one session
// and replaced wholesale on every update.
type Draft struct {
	ID        string            `json:"id"`
	Itinerary models.Itinerary  `json:"itinerary"`
	Traveler  models.Traveler   `json:"traveler"`
	Customer  models.Customer   `json:"customer"`
	Documents []models.Document `json:"documents"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (d Draft) clone() Draft {
	out := d
	out.Itinerary = d.Itinerary.Clone()
	out.Traveler.Children = append([]models.Child(nil), d.Traveler.Children...)
	out.Documents = append([]models.Document(nil), d.Documents...)
	return out
}

// Patch is a partial update from one wizard step. Nil fields are left as
// they are; slices replace the stored slice entirely.
type Patch struct {
	Traveler           *models.Traveler           `json:"traveler,omitempty"`
	Cities             *[]models.CityStay         `json:"cities,omitempty"`
	ArrivalAirport     *string                    `json:"arrival_airport,omitempty"`
	DepartureAirport   *string                    `json:"departure_airport,omitempty"`
	ArrivalDate        *models.Date               `json:"arrival_date,omitempty"`
	DepartureDate      *models.Date               `json:"departure_date,omitempty"`
	RoomCount          *int                       `json:"room_count,omitempty"`
	CarType            *string                    `json:"car_type,omitempty"`
	Currency           *string                    `json:"currency,omitempty"`
	Budget             *float64                   `json:"budget,omitempty"`
	AdditionalServices *[]models.ServiceSelection `json:"additional_services,omitempty"`
	DiscountCode       *string                    `json:"discount_code,omitempty"`
	Customer           *models.Customer           `json:"customer,omitempty"`
}

// Validate rejects stop values no wizard step can produce. Zero nights is
// allowed while a stop is being edited; the stops gate requires at least one.
func (p Patch) Validate() error {
	if p.Cities == nil {
		return nil
	}
	for _, c := range *p.Cities {
		if c.Nights < 0 {
			return models.ErrInvalidNights
		}
		if c.Tours < 0 {
			return models.ErrInvalidTours
		}
	}
	return nil
}

// Merge applies p to a copy of d and recomputes every derived field: the
// room count floor, per-city room selection slots and mandatory tours.
func Merge(d Draft, p Patch, rules *itinerary.Rules) Draft {
	out := d.clone()
	it := &out.Itinerary

	if p.Traveler != nil {
		out.Traveler = models.Traveler{
			Adults:   p.Traveler.Adults,
			Children: append([]models.Child(nil), p.Traveler.Children...),
		}
	}
	if p.Cities != nil {
		it.Cities = models.Itinerary{Cities: *p.Cities}.Clone().Cities
	}
	if p.ArrivalAirport != nil {
		it.ArrivalAirport = strings.TrimSpace(*p.ArrivalAirport)
	}
	if p.DepartureAirport != nil {
		it.DepartureAirport = strings.TrimSpace(*p.DepartureAirport)
	}
	if p.ArrivalDate != nil {
		it.ArrivalDate = *p.ArrivalDate
	}
	if p.DepartureDate != nil {
		it.DepartureDate = *p.DepartureDate
	}
	if p.RoomCount != nil {
		it.RoomCount = *p.RoomCount
	}
	if p.CarType != nil {
		it.CarType = strings.TrimSpace(*p.CarType)
	}
	if p.Currency != nil {
		it.Currency = strings.ToUpper(strings.TrimSpace(*p.Currency))
	}
	if p.Budget != nil {
		it.Budget = *p.Budget
	}
	if p.AdditionalServices != nil {
		it.AdditionalServices = dedupeServices(*p.AdditionalServices)
	}
	if p.DiscountCode != nil {
		it.DiscountCode = models.NormalizeCode(*p.DiscountCode)
	}
	if p.Customer != nil {
		out.Customer = *p.Customer
	}

	if floor := allocation.MinimumRooms(out.Traveler.CapacityDemand()); it.RoomCount < floor {
		it.RoomCount = floor
	}
	for i := range it.Cities {
		it.Cities[i].RoomSelections = allocation.Resize(it.Cities[i].RoomSelections, it.RoomCount)
	}
	out.Itinerary = rules.ApplyMandatoryTours(*it)
	return out
}

// dedupeServices keeps the last selection for each service code, in first
// seen order.
func dedupeServices(in []models.ServiceSelection) []models.ServiceSelection {
	index := make(map[models.ServiceCode]int, len(in))
	out := make([]models.ServiceSelection, 0, len(in))
	for _, s := range in {
		if s.Code == "" {
			continue
		}
		if i, ok := index[s.Code]; ok {
			out[i] = s
			continue
		}
		index[s.Code] = len(out)
		out = append(out, s)
	}
	return out
}
