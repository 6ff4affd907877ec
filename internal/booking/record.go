package booking

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dharmasatrya/tripbuilder/internal/models"
)

var ErrCorruptRecord = errors.New("stored booking has an unexpected shape")

// StoredBooking is the flat row shape the persistence layer keeps. Nested
// structures are canonical JSON produced by EncodeRecord.
type StoredBooking struct {
	ID                 string
	Reference          string
	CustomerName       string
	CustomerEmail      string
	CustomerPhone      string
	Nationality        string
	Notes              string
	Adults             int
	Children           json.RawMessage
	SelectedCities     json.RawMessage
	AdditionalServices json.RawMessage
	ArrivalAirport     string
	DepartureAirport   string
	ArrivalDate        time.Time
	DepartureDate      time.Time
	RoomCount          int
	CarType            string
	Currency           string
	Budget             float64
	DiscountCode       string
	Quote              json.RawMessage
	TotalCost          float64
	Status             models.BookingStatus
	Documents          []models.Document
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func EncodeRecord(r models.BookingRecord) (StoredBooking, error) {
	children := r.Traveler.Children
	if children == nil {
		children = []models.Child{}
	}
	cities := r.Itinerary.Cities
	if cities == nil {
		cities = []models.CityStay{}
	}
	services := r.Itinerary.AdditionalServices
	if services == nil {
		services = []models.ServiceSelection{}
	}

	childrenJSON, err := json.Marshal(children)
	if err != nil {
		return StoredBooking{}, fmt.Errorf("failed to encode children: %w", err)
	}
	citiesJSON, err := json.Marshal(cities)
	if err != nil {
		return StoredBooking{}, fmt.Errorf("failed to encode cities: %w", err)
	}
	servicesJSON, err := json.Marshal(services)
	if err != nil {
		return StoredBooking{}, fmt.Errorf("failed to encode services: %w", err)
	}
	quoteJSON, err := json.Marshal(r.Quote)
	if err != nil {
		return StoredBooking{}, fmt.Errorf("failed to encode quote: %w", err)
	}

	return StoredBooking{
		ID:                 r.ID,
		Reference:          r.Reference,
		CustomerName:       r.Customer.FullName,
		CustomerEmail:      r.Customer.Email,
		CustomerPhone:      r.Customer.Phone,
		Nationality:        r.Customer.Nationality,
		Notes:              r.Customer.Notes,
		Adults:             r.Traveler.Adults,
		Children:           childrenJSON,
		SelectedCities:     citiesJSON,
		AdditionalServices: servicesJSON,
		ArrivalAirport:     r.Itinerary.ArrivalAirport,
		DepartureAirport:   r.Itinerary.DepartureAirport,
		ArrivalDate:        r.Itinerary.ArrivalDate.Time,
		DepartureDate:      r.Itinerary.DepartureDate.Time,
		RoomCount:          r.Itinerary.RoomCount,
		CarType:            r.Itinerary.CarType,
		Currency:           r.Currency,
		Budget:             r.Itinerary.Budget,
		DiscountCode:       r.Itinerary.DiscountCode,
		Quote:              quoteJSON,
		TotalCost:          r.TotalCost,
		Status:             r.Status,
		Documents:          r.Documents,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}, nil
}

// DecodeRecord rebuilds a booking from its stored row, failing on any
// nested field that does not have the canonical shape.
func DecodeRecord(s StoredBooking) (models.BookingRecord, error) {
	var children []models.Child
	if err := decodeStrict(s.Children, &children); err != nil {
		return models.BookingRecord{}, corrupt("children", err)
	}
	for i, c := range children {
		if c.Age < 0 || c.Age > 17 {
			return models.BookingRecord{}, corrupt(fmt.Sprintf("children[%d].age", i), errors.New("out of range"))
		}
	}

	var cities []models.CityStay
	if err := decodeStrict(s.SelectedCities, &cities); err != nil {
		return models.BookingRecord{}, corrupt("selected_cities", err)
	}
	for i, c := range cities {
		if strings.TrimSpace(c.City) == "" || c.Nights < 1 {
			return models.BookingRecord{}, corrupt(fmt.Sprintf("selected_cities[%d]", i), errors.New("city and nights are required"))
		}
		for j, sel := range c.RoomSelections {
			if sel.RoomType != "" && !sel.RoomType.Valid() {
				return models.BookingRecord{}, corrupt(fmt.Sprintf("selected_cities[%d].room_selections[%d]", i, j), errors.New("unknown room type"))
			}
		}
	}

	var services []models.ServiceSelection
	if err := decodeStrict(s.AdditionalServices, &services); err != nil {
		return models.BookingRecord{}, corrupt("additional_services", err)
	}
	for i, sv := range services {
		if sv.Code == "" {
			return models.BookingRecord{}, corrupt(fmt.Sprintf("additional_services[%d].code", i), errors.New("required"))
		}
	}

	var quote models.Quote
	if len(s.Quote) > 0 {
		if err := json.Unmarshal(s.Quote, &quote); err != nil {
			return models.BookingRecord{}, corrupt("quote", err)
		}
	}

	return models.BookingRecord{
		ID:        s.ID,
		Reference: s.Reference,
		Customer: models.Customer{
			FullName:    s.CustomerName,
			Email:       s.CustomerEmail,
			Phone:       s.CustomerPhone,
			Nationality: s.Nationality,
			Notes:       s.Notes,
		},
		Traveler: models.Traveler{
			Adults:   s.Adults,
			Children: children,
		},
		Itinerary: models.Itinerary{
			Cities:             cities,
			ArrivalAirport:     s.ArrivalAirport,
			DepartureAirport:   s.DepartureAirport,
			ArrivalDate:        models.Date{Time: s.ArrivalDate},
			DepartureDate:      models.Date{Time: s.DepartureDate},
			RoomCount:          s.RoomCount,
			CarType:            s.CarType,
			Currency:           s.Currency,
			Budget:             s.Budget,
			AdditionalServices: services,
			DiscountCode:       s.DiscountCode,
		},
		Documents: s.Documents,
		Quote:     quote,
		TotalCost: s.TotalCost,
		Currency:  s.Currency,
		Status:    s.Status,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}, nil
}

func decodeStrict(data json.RawMessage, dest any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return errors.New("missing")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data")
	}
	return nil
}

func corrupt(field string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrCorruptRecord, field, err)
}
