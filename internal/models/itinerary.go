package models

import (
	"encoding/json"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Date is a calendar day serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ChildBedAge is the oldest age at which a child shares a bed instead of
// taking an adult slot.
const ChildBedAge = 6

type Child struct {
	Age int `json:"age"`
}

type Traveler struct {
	Adults   int     `json:"adults"`
	Children []Child `json:"children"`
}

// CapacityDemand counts adults plus children who need their own bed slot.
func (t Traveler) CapacityDemand() int {
	n := t.Adults
	for _, c := range t.Children {
		if c.Age > ChildBedAge {
			n++
		}
	}
	return n
}

// Headcount counts everyone travelling, infants included.
func (t Traveler) Headcount() int {
	return t.Adults + len(t.Children)
}

type RoomType string

const (
	RoomSingle       RoomType = "single"
	RoomSingleView   RoomType = "single_view"
	RoomDoubleNoView RoomType = "double_no_view"
	RoomDoubleView   RoomType = "double_view"
	RoomTripleNoView RoomType = "triple_no_view"
	RoomTripleView   RoomType = "triple_view"
)

func RoomTypes() []RoomType {
	return []RoomType{
		RoomSingle,
		RoomSingleView,
		RoomDoubleNoView,
		RoomDoubleView,
		RoomTripleNoView,
		RoomTripleView,
	}
}

func (rt RoomType) Valid() bool {
	for _, known := range RoomTypes() {
		if rt == known {
			return true
		}
	}
	return false
}

type RoomSelection struct {
	RoomNumber int      `json:"room_number"`
	RoomType   RoomType `json:"room_type"`
}

type CityStay struct {
	City           string          `json:"city"`
	Nights         int             `json:"nights"`
	HotelID        *string         `json:"hotel_id"`
	Tours          int             `json:"tours"`
	MandatoryTours int             `json:"mandatory_tours"`
	RoomSelections []RoomSelection `json:"room_selections"`
}

type ServiceCode string

const (
	ServiceTravelInsurance ServiceCode = "travel_insurance"
	ServiceVIPReception    ServiceCode = "vip_reception"
	ServicePhoneLines      ServiceCode = "phone_lines"
	ServiceRoomDecoration  ServiceCode = "room_decoration"
	ServicePhotoSession    ServiceCode = "photo_session"
)

type ServiceSelection struct {
	Code     ServiceCode `json:"code"`
	Enabled  bool        `json:"enabled"`
	Quantity int         `json:"quantity,omitempty"`
}

type Itinerary struct {
	Cities             []CityStay         `json:"cities"`
	ArrivalAirport     string             `json:"arrival_airport"`
	DepartureAirport   string             `json:"departure_airport"`
	ArrivalDate        Date               `json:"arrival_date"`
	DepartureDate      Date               `json:"departure_date"`
	RoomCount          int                `json:"room_count"`
	CarType            string             `json:"car_type"`
	Currency           string             `json:"currency"`
	Budget             float64            `json:"budget,omitempty"`
	AdditionalServices []ServiceSelection `json:"additional_services"`
	DiscountCode       string             `json:"discount_code,omitempty"`
}

// Clone returns a deep copy so callers can derive a new snapshot without
// touching the one they were given.
func (it Itinerary) Clone() Itinerary {
	out := it
	out.Cities = make([]CityStay, len(it.Cities))
	for i, c := range it.Cities {
		cc := c
		if c.HotelID != nil {
			id := *c.HotelID
			cc.HotelID = &id
		}
		cc.RoomSelections = append([]RoomSelection(nil), c.RoomSelections...)
		out.Cities[i] = cc
	}
	out.AdditionalServices = append([]ServiceSelection(nil), it.AdditionalServices...)
	return out
}

func (it Itinerary) TotalNights() int {
	total := 0
	for _, c := range it.Cities {
		total += c.Nights
	}
	return total
}

func (it Itinerary) FirstCity() string {
	if len(it.Cities) == 0 {
		return ""
	}
	return it.Cities[0].City
}

func (it Itinerary) LastCity() string {
	if len(it.Cities) == 0 {
		return ""
	}
	return it.Cities[len(it.Cities)-1].City
}

// ValidateStops checks each stop has a city, at least one night and no
// negative extra tours.
func (it Itinerary) ValidateStops() error {
	if len(it.Cities) == 0 {
		return ErrMissingCities
	}
	for _, c := range it.Cities {
		if strings.TrimSpace(c.City) == "" {
			return ErrMissingCities
		}
		if c.Nights < 1 {
			return ErrInvalidNights
		}
		if c.Tours < 0 {
			return ErrInvalidTours
		}
	}
	return nil
}

// SameCity compares city names ignoring case and surrounding spaces.
func SameCity(a, b string) bool {
	return a != "" && strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
