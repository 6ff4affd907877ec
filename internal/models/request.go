package models

import "strings"

type QuoteRequest struct {
	Itinerary Itinerary `json:"itinerary"`
	Traveler  Traveler  `json:"traveler"`
}

func (r *QuoteRequest) Validate() error {
	if r.Traveler.Adults < 1 {
		return ErrMissingAdults
	}
	for _, c := range r.Traveler.Children {
		if c.Age < 0 || c.Age > 17 {
			return ErrInvalidChildAge
		}
	}
	if err := r.Itinerary.ValidateStops(); err != nil {
		return err
	}
	if r.Itinerary.RoomCount <= 0 {
		r.Itinerary.RoomCount = 1
	}
	if r.Itinerary.Currency == "" {
		r.Itinerary.Currency = "USD"
	}
	r.Itinerary.Currency = strings.ToUpper(r.Itinerary.Currency)
	return nil
}

type HotelQuery struct {
	City      string   `query:"city"`
	RoomType  RoomType `query:"room_type"`
	SortBy    string   `query:"sort_by"`
	SortOrder string   `query:"sort_order"`
}

type StatusUpdateRequest struct {
	Status BookingStatus `json:"status" validate:"required"`
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingAdults       ValidationError = "at least one adult is required"
	ErrInvalidChildAge     ValidationError = "child age must be between 0 and 17"
	ErrMissingCities       ValidationError = "at least one city is required"
	ErrMissingDates        ValidationError = "arrival and departure dates are required"
	ErrInvalidDates        ValidationError = "departure date must be after arrival date"
	ErrTripTooShort        ValidationError = "trip must be at least 3 nights"
	ErrMissingAirports     ValidationError = "arrival and departure airports are required"
	ErrInvalidNights       ValidationError = "every city needs at least one night"
	ErrMissingHotel        ValidationError = "every city needs a hotel"
	ErrInvalidTours        ValidationError = "extra tours cannot be negative"
	ErrRoomCountTooLow     ValidationError = "room count is below the minimum for the travelers"
	ErrRoomCountMismatch   ValidationError = "room selections do not match the room count"
	ErrRoomTypeMissing     ValidationError = "every room needs a room type"
	ErrRoomCapacity        ValidationError = "selected rooms cannot fit all travelers"
	ErrRoomTypeNotOffered  ValidationError = "selected room type is not offered by the hotel"
	ErrMissingCarType      ValidationError = "a transport class is required"
	ErrMissingCustomer     ValidationError = "customer details are incomplete"
	ErrMissingPassport     ValidationError = "a passport document is required"
	ErrInvalidStatus       ValidationError = "unknown booking status"
	ErrUnknownStep         ValidationError = "unknown wizard step"
	ErrInvalidDiscountCode ValidationError = "discount code needs a percentage between 1 and 100 or a waived line item"
)
