package allocation

import (
	"fmt"

	"github.com/dharmasatrya/tripbuilder/internal/models"
)

// LargestRoom is the occupancy of the biggest room category (triple).
const LargestRoom = 3

// CapacityOf returns how many bed slots a room category provides.
func CapacityOf(rt models.RoomType) int {
	switch rt {
	case models.RoomSingle, models.RoomSingleView:
		return 1
	case models.RoomDoubleNoView, models.RoomDoubleView:
		return 2
	case models.RoomTripleNoView, models.RoomTripleView:
		return 3
	default:
		return 0
	}
}

// MinimumRooms is the fewest rooms that can hold travelerCount people.
func MinimumRooms(travelerCount int) int {
	if travelerCount <= 0 {
		return 1
	}
	return (travelerCount + LargestRoom - 1) / LargestRoom
}

// HotelLookup resolves the hotel chosen for a stop.
type HotelLookup interface {
	Hotel(id string) (models.HotelRecord, bool)
}

type Result struct {
	OK     bool                   `json:"ok"`
	Reason models.ValidationError `json:"reason,omitempty"`
	City   string                 `json:"city,omitempty"`
	Detail string                 `json:"detail,omitempty"`
}

func (r Result) Err() error {
	if r.OK {
		return nil
	}
	return r.Reason
}

func fail(reason models.ValidationError, city, detail string) Result {
	return Result{Reason: reason, City: city, Detail: detail}
}

// Validate checks every stop's room selections against the room count,
// the travelers and, when hotels is non-nil, the chosen hotel's price list.
// The room count floor is not checked here; MinimumRooms bounds the input.
func Validate(it models.Itinerary, traveler models.Traveler, hotels HotelLookup) Result {
	for _, stay := range it.Cities {
		if len(stay.RoomSelections) != it.RoomCount {
			return fail(models.ErrRoomCountMismatch, stay.City,
				fmt.Sprintf("%d rooms selected, %d requested", len(stay.RoomSelections), it.RoomCount))
		}
	}

	for _, stay := range it.Cities {
		for _, sel := range stay.RoomSelections {
			if sel.RoomType == "" {
				return fail(models.ErrRoomTypeMissing, stay.City, fmt.Sprintf("room %d", sel.RoomNumber))
			}
		}
	}

	demand := traveler.CapacityDemand()
	for _, stay := range it.Cities {
		capacity := 0
		for _, sel := range stay.RoomSelections {
			capacity += CapacityOf(sel.RoomType)
		}
		if capacity < demand {
			return fail(models.ErrRoomCapacity, stay.City, fmt.Sprintf("rooms hold %d, %d travelers need beds", capacity, demand))
		}
	}

	if hotels == nil {
		return Result{OK: true}
	}
	for _, stay := range it.Cities {
		if stay.HotelID == nil {
			continue
		}
		hotel, ok := hotels.Hotel(*stay.HotelID)
		if !ok {
			return fail(models.ErrRoomTypeNotOffered, stay.City, "hotel not found")
		}
		for _, sel := range stay.RoomSelections {
			if _, offered := hotel.PriceFor(sel.RoomType); !offered {
				return fail(models.ErrRoomTypeNotOffered, stay.City, fmt.Sprintf("%s at %s", sel.RoomType, hotel.Name))
			}
		}
	}

	return Result{OK: true}
}

// Resize pads or trims selections to count rooms, keeping existing choices
// and renumbering from 1.
func Resize(selections []models.RoomSelection, count int) []models.RoomSelection {
	if count < 0 {
		count = 0
	}
	out := make([]models.RoomSelection, count)
	for i := range out {
		if i < len(selections) {
			out[i].RoomType = selections[i].RoomType
		}
		out[i].RoomNumber = i + 1
	}
	return out
}
