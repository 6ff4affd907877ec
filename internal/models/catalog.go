package models

import (
	"strings"
	"time"
)

type HotelRecord struct {
	ID     string                `json:"id"`
	Name   string                `json:"name"`
	City   string                `json:"city"`
	Prices map[RoomType]*float64 `json:"prices"`
	Rating float64               `json:"rating"`
	Active bool                  `json:"active"`
}

// PriceFor reports the nightly price of a room category. A nil or zero
// price means the hotel does not offer that category.
func (h HotelRecord) PriceFor(rt RoomType) (float64, bool) {
	p, ok := h.Prices[rt]
	if !ok || p == nil || *p <= 0 {
		return 0, false
	}
	return *p, true
}

func (h HotelRecord) OfferedRoomTypes() []RoomType {
	var offered []RoomType
	for _, rt := range RoomTypes() {
		if _, ok := h.PriceFor(rt); ok {
			offered = append(offered, rt)
		}
	}
	return offered
}

// LowestPrice is the cheapest offered nightly price, 0 when nothing is offered.
func (h HotelRecord) LowestPrice() float64 {
	lowest := 0.0
	for _, rt := range RoomTypes() {
		if p, ok := h.PriceFor(rt); ok && (lowest == 0 || p < lowest) {
			lowest = p
		}
	}
	return lowest
}

type TransportClass struct {
	ID                     string  `json:"id"`
	Type                   string  `json:"type"`
	Capacity               string  `json:"capacity"`
	MinPassengers          int     `json:"min_passengers"`
	MaxPassengers          int     `json:"max_passengers"`
	TourPrice              float64 `json:"tour_price"`
	ReceptionSameCity      float64 `json:"reception_same_city"`
	ReceptionDifferentCity float64 `json:"reception_different_city"`
	FarewellSameCity       float64 `json:"farewell_same_city"`
	FarewellDifferentCity  float64 `json:"farewell_different_city"`
	Active                 bool    `json:"active"`
}

func (t TransportClass) ReceptionFee(sameCity bool) float64 {
	if sameCity {
		return t.ReceptionSameCity
	}
	return t.ReceptionDifferentCity
}

func (t TransportClass) FarewellFee(sameCity bool) float64 {
	if sameCity {
		return t.FarewellSameCity
	}
	return t.FarewellDifferentCity
}

// Fits reports whether the passenger count is inside the class's band.
// A zero bound is open.
func (t TransportClass) Fits(passengers int) bool {
	if t.MinPassengers > 0 && passengers < t.MinPassengers {
		return false
	}
	if t.MaxPassengers > 0 && passengers > t.MaxPassengers {
		return false
	}
	return true
}

type PricingUnit string

const (
	UnitFlat           PricingUnit = "flat"
	UnitPerUnit        PricingUnit = "per_unit"
	UnitPerPerson      PricingUnit = "per_person"
	UnitPerPersonNight PricingUnit = "per_person_night"
)

type ServicePrice struct {
	ID     string      `json:"id"`
	Code   ServiceCode `json:"code"`
	Name   string      `json:"name"`
	Unit   PricingUnit `json:"unit"`
	Price  float64     `json:"price"`
	Active bool        `json:"active"`
}

type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountWaiver     DiscountKind = "waiver"
)

// LineItem names a priced component of a quote.
type LineItem string

const (
	LineRooms     LineItem = "rooms"
	LineTours     LineItem = "tours"
	LineTransport LineItem = "transport"
	LineServices  LineItem = "services"
)

type DiscountCode struct {
	ID         string       `json:"id"`
	Code       string       `json:"code"`
	Kind       DiscountKind `json:"kind"`
	Percentage float64      `json:"percentage,omitempty"`
	WaiveItem  LineItem     `json:"waive_item,omitempty"`
	ExpiresAt  *time.Time   `json:"expires_at,omitempty"`
	MaxUses    *int         `json:"max_uses,omitempty"`
	UsedCount  int          `json:"used_count"`
	Active     bool         `json:"active"`
	CreatedAt  time.Time    `json:"created_at"`
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (d DiscountCode) Expired(now time.Time) bool {
	return d.ExpiresAt != nil && !now.Before(*d.ExpiresAt)
}

func (d DiscountCode) Exhausted() bool {
	return d.MaxUses != nil && d.UsedCount >= *d.MaxUses
}
