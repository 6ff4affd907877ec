package filter

import (
	"sort"
	"strings"

	"github.com/dharmasatrya/tripbuilder/internal/models"
)

// HotelView is a hotel as the wizard's picker shows it: only the room
// categories it actually prices are listed.
type HotelView struct {
	ID         string                      `json:"id"`
	Name       string                      `json:"name"`
	City       string                      `json:"city"`
	Rating     float64                     `json:"rating"`
	RoomPrices map[models.RoomType]float64 `json:"room_prices"`
	RoomTypes  []models.RoomType           `json:"room_types"`
	FromPrice  float64                     `json:"from_price"`
}

func Apply(hotels []models.HotelRecord, q models.HotelQuery) []HotelView {
	filtered := applyFilters(hotels, q)
	views := make([]HotelView, 0, len(filtered))
	for _, h := range filtered {
		views = append(views, toView(h))
	}
	return applySort(views, q.RoomType, q.SortBy, q.SortOrder)
}

func applyFilters(hotels []models.HotelRecord, q models.HotelQuery) []models.HotelRecord {
	result := make([]models.HotelRecord, 0, len(hotels))
	for _, h := range hotels {
		if matches(h, q) {
			result = append(result, h)
		}
	}
	return result
}

func matches(h models.HotelRecord, q models.HotelQuery) bool {
	if !h.Active {
		return false
	}
	if q.City != "" && !models.SameCity(h.City, q.City) {
		return false
	}
	if q.RoomType != "" {
		if _, ok := h.PriceFor(q.RoomType); !ok {
			return false
		}
	}
	// A hotel with no priced category can never be booked.
	return len(h.OfferedRoomTypes()) > 0
}

func toView(h models.HotelRecord) HotelView {
	offered := h.OfferedRoomTypes()
	prices := make(map[models.RoomType]float64, len(offered))
	for _, rt := range offered {
		p, _ := h.PriceFor(rt)
		prices[rt] = p
	}
	return HotelView{
		ID:         h.ID,
		Name:       h.Name,
		City:       h.City,
		Rating:     h.Rating,
		RoomPrices: prices,
		RoomTypes:  offered,
		FromPrice:  h.LowestPrice(),
	}
}

func applySort(hotels []HotelView, roomType models.RoomType, sortBy, sortOrder string) []HotelView {
	if len(hotels) == 0 {
		return hotels
	}

	ascending := strings.ToLower(sortOrder) != "desc"

	priceOf := func(h HotelView) float64 {
		if p, ok := h.RoomPrices[roomType]; ok {
			return p
		}
		return h.FromPrice
	}

	switch strings.ToLower(sortBy) {
	case "rating":
		sort.SliceStable(hotels, func(i, j int) bool {
			if ascending {
				return hotels[i].Rating < hotels[j].Rating
			}
			return hotels[i].Rating > hotels[j].Rating
		})

	case "name":
		sort.SliceStable(hotels, func(i, j int) bool {
			if ascending {
				return strings.ToLower(hotels[i].Name) < strings.ToLower(hotels[j].Name)
			}
			return strings.ToLower(hotels[i].Name) > strings.ToLower(hotels[j].Name)
		})

	case "price":
		sort.SliceStable(hotels, func(i, j int) bool {
			if ascending {
				return priceOf(hotels[i]) < priceOf(hotels[j])
			}
			return priceOf(hotels[i]) > priceOf(hotels[j])
		})

	default:
		// Default to price ascending
		sort.SliceStable(hotels, func(i, j int) bool {
			return priceOf(hotels[i]) < priceOf(hotels[j])
		})
	}

	return hotels
}
