package itinerary

import (
	"fmt"
	"strings"
	"time"

	"github.com/dharmasatrya/tripbuilder/internal/airport"
	"github.com/dharmasatrya/tripbuilder/internal/models"
)

const (
	MinTripNights = 3

	// TransferLegs is the reception leg plus the farewell leg, counted once
	// per trip whatever the route.
	TransferLegs = 2
)

// Cities that always need two tours, wherever they sit in the trip.
var highTourCities = map[string]int{
	"batumi": 2,
}

// MandatoryTours returns how many tours a stop must include.
func MandatoryTours(city string, isFirst, isLast bool, arrivalCity, departureCity string) int {
	if n, ok := highTourCities[strings.ToLower(strings.TrimSpace(city))]; ok {
		return n
	}
	if isFirst && models.SameCity(city, arrivalCity) {
		return 0
	}
	if isLast && models.SameCity(city, departureCity) {
		return 0
	}
	return 1
}

// NeedsAirportTransfer reports whether the stop is the literal entry or exit
// point of the trip. Index 0 is always treated as the first stop.
func NeedsAirportTransfer(cityIndex int, city string, isFirst, isLast bool, arrivalCity, departureCity string) bool {
	isFirst = isFirst || cityIndex == 0
	if isFirst && models.SameCity(city, arrivalCity) {
		return true
	}
	return isLast && models.SameCity(city, departureCity)
}

// MinimumNights is the inclusive day count between the dates minus one.
func MinimumNights(arrival, departure time.Time) int {
	a := time.Date(arrival.Year(), arrival.Month(), arrival.Day(), 0, 0, 0, 0, time.UTC)
	d := time.Date(departure.Year(), departure.Month(), departure.Day(), 0, 0, 0, 0, time.UTC)
	inclusiveDays := int(d.Sub(a).Hours()/24) + 1
	return inclusiveDays - 1
}

func ValidateTripLength(arrival, departure models.Date) error {
	if arrival.IsZero() || departure.IsZero() {
		return models.ErrMissingDates
	}
	nights := MinimumNights(arrival.Time, departure.Time)
	if nights <= 0 {
		return models.ErrInvalidDates
	}
	if nights < MinTripNights {
		return models.ErrTripTooShort
	}
	return nil
}

// NightsAdvisory flags a mismatch between the nights booked per city and the
// trip dates. It never blocks.
func NightsAdvisory(it models.Itinerary) *models.Warning {
	if it.ArrivalDate.IsZero() || it.DepartureDate.IsZero() {
		return nil
	}
	want := MinimumNights(it.ArrivalDate.Time, it.DepartureDate.Time)
	got := it.TotalNights()
	if got == want {
		return nil
	}
	return &models.Warning{
		Code:    models.WarnNightsMismatch,
		Message: fmt.Sprintf("cities add up to %d nights but the trip dates cover %d", got, want),
	}
}

// TotalTourCount is the number of tours shown to the customer, transfer legs
// included.
func TotalTourCount(it models.Itinerary) int {
	total := TransferLegs
	for _, c := range it.Cities {
		total += c.MandatoryTours + c.Tours
	}
	return total
}

// Rules binds the pure functions above to an airport directory.
type Rules struct {
	airports *airport.Directory
}

func NewRules(airports *airport.Directory) *Rules {
	if airports == nil {
		airports = airport.NewDirectory()
	}
	return &Rules{airports: airports}
}

func (r *Rules) ArrivalCity(it models.Itinerary) string {
	return r.airports.CityOf(it.ArrivalAirport)
}

func (r *Rules) DepartureCity(it models.Itinerary) string {
	return r.airports.CityOf(it.DepartureAirport)
}

// ApplyMandatoryTours returns a copy of it with every stop's mandatory tour
// count recomputed from the city list and airports.
func (r *Rules) ApplyMandatoryTours(it models.Itinerary) models.Itinerary {
	out := it.Clone()
	arrival, departure := r.ArrivalCity(it), r.DepartureCity(it)
	last := len(out.Cities) - 1
	for i := range out.Cities {
		out.Cities[i].MandatoryTours = MandatoryTours(out.Cities[i].City, i == 0, i == last, arrival, departure)
	}
	return out
}

// SameCityReception reports whether the arrival airport serves the first stop.
// Only the arrival side is checked, so a one-stop trip leaving from another
// city still gets a same-city reception.
func (r *Rules) SameCityReception(it models.Itinerary) bool {
	if len(it.Cities) == 0 {
		return false
	}
	return NeedsAirportTransfer(0, it.FirstCity(), true, false, r.ArrivalCity(it), "")
}

// SameCityFarewell reports whether the departure airport serves the last stop.
func (r *Rules) SameCityFarewell(it models.Itinerary) bool {
	last := len(it.Cities) - 1
	if last < 0 {
		return false
	}
	return NeedsAirportTransfer(last, it.LastCity(), false, true, "", r.DepartureCity(it))
}

// Validate checks the hard itinerary constraints that block a step.
func (r *Rules) Validate(it models.Itinerary) error {
	if err := ValidateTripLength(it.ArrivalDate, it.DepartureDate); err != nil {
		return err
	}
	if strings.TrimSpace(it.ArrivalAirport) == "" || strings.TrimSpace(it.DepartureAirport) == "" {
		return models.ErrMissingAirports
	}
	return ValidateStops(it)
}

func ValidateStops(it models.Itinerary) error {
	return it.ValidateStops()
}
