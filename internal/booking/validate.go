package booking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dharmasatrya/tripbuilder/internal/allocation"
	"github.com/dharmasatrya/tripbuilder/internal/itinerary"
	"github.com/dharmasatrya/tripbuilder/internal/models"
)

type Step string

const (
	StepDates     Step = "dates"
	StepTravelers Step = "travelers"
	StepCities    Step = "cities"
	StepRooms     Step = "rooms"
	StepTransport Step = "transport"
	StepServices  Step = "services"
	StepCustomer  Step = "customer"
)

// Steps lists the wizard steps in order.
func Steps() []Step {
	return []Step{StepDates, StepTravelers, StepCities, StepRooms, StepTransport, StepServices, StepCustomer}
}

// Catalog is what the gates need to know about the price lists.
type Catalog interface {
	allocation.HotelLookup
	TransportClass(carType string) (models.TransportClass, bool)
	Service(code models.ServiceCode) (models.ServicePrice, bool)
}

// Gate checks wizard drafts. It is safe for concurrent use.
type Gate struct {
	rules    *itinerary.Rules
	validate *validator.Validate
}

func NewGate(rules *itinerary.Rules) *Gate {
	return &Gate{
		rules:    rules,
		validate: validator.New(),
	}
}

// CheckStep runs the hard constraints of one step. Advisory problems come
// back as warnings and never fail the step.
func (g *Gate) CheckStep(step Step, d Draft, cat Catalog) ([]models.Warning, error) {
	it := d.Itinerary
	switch step {
	case StepDates:
		if err := itinerary.ValidateTripLength(it.ArrivalDate, it.DepartureDate); err != nil {
			return nil, err
		}
		if strings.TrimSpace(it.ArrivalAirport) == "" || strings.TrimSpace(it.DepartureAirport) == "" {
			return nil, models.ErrMissingAirports
		}
		return nil, nil

	case StepTravelers:
		return nil, checkTravelers(d.Traveler, it.RoomCount)

	case StepCities:
		if err := itinerary.ValidateStops(it); err != nil {
			return nil, err
		}
		if w := itinerary.NightsAdvisory(it); w != nil {
			return []models.Warning{*w}, nil
		}
		return nil, nil

	case StepRooms:
		for _, c := range it.Cities {
			if c.HotelID == nil || *c.HotelID == "" {
				return nil, models.ErrMissingHotel
			}
		}
		return nil, allocation.Validate(it, d.Traveler, cat).Err()

	case StepTransport:
		t, ok := cat.TransportClass(it.CarType)
		if !ok {
			return nil, models.ErrMissingCarType
		}
		if n := d.Traveler.Headcount(); !t.Fits(n) {
			return []models.Warning{{
				Code:    models.WarnTransportCapacity,
				Message: fmt.Sprintf("%s is meant for %s passengers, the trip has %d", t.Type, t.Capacity, n),
			}}, nil
		}
		return nil, nil

	case StepServices:
		var warnings []models.Warning
		for _, s := range it.AdditionalServices {
			if _, ok := cat.Service(s.Code); s.Enabled && !ok {
				warnings = append(warnings, models.Warning{Code: models.WarnServiceMissing, Message: string(s.Code) + " is not offered"})
			}
		}
		return warnings, nil

	case StepCustomer:
		if err := g.validate.Struct(d.Customer); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				return nil, &CustomerError{Fields: fieldNames(verrs)}
			}
			return nil, err
		}
		return nil, nil
	}
	return nil, models.ErrUnknownStep
}

// ValidateFinal runs every step gate plus the document requirement. A draft
// that passes can be finalized.
func (g *Gate) ValidateFinal(d Draft, cat Catalog) ([]models.Warning, error) {
	var warnings []models.Warning
	for _, step := range Steps() {
		w, err := g.CheckStep(step, d, cat)
		if err != nil {
			return warnings, &StepError{Step: step, Err: err}
		}
		warnings = append(warnings, w...)
	}
	if !hasDocument(d.Documents, models.DocumentPassport) {
		return warnings, &StepError{Step: StepCustomer, Err: models.ErrMissingPassport}
	}
	return warnings, nil
}

func checkTravelers(t models.Traveler, roomCount int) error {
	if t.Adults < 1 {
		return models.ErrMissingAdults
	}
	for _, c := range t.Children {
		if c.Age < 0 || c.Age > 17 {
			return models.ErrInvalidChildAge
		}
	}
	if roomCount < allocation.MinimumRooms(t.CapacityDemand()) {
		return models.ErrRoomCountTooLow
	}
	return nil
}

func hasDocument(docs []models.Document, kind models.DocumentKind) bool {
	for _, d := range docs {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

func fieldNames(errs validator.ValidationErrors) []string {
	out := make([]string, 0, len(errs))
	for _, fe := range errs {
		out = append(out, fe.Field())
	}
	return out
}

// StepError ties a validation failure to the wizard step that owns it.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return string(e.Step) + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type CustomerError struct {
	Fields []string
}

func (e *CustomerError) Error() string {
	return models.ErrMissingCustomer.Error() + ": " + strings.Join(e.Fields, ", ")
}

func (e *CustomerError) Unwrap() error {
	return models.ErrMissingCustomer
}
