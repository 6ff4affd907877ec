package catalog

import (
	"context"
	"fmt"

	"github.com/dharmasatrya/tripbuilder/internal/models"
)

func price(v float64) *float64 {
	return &v
}

// SeedHotels is the starter price list loaded into an empty store.
func SeedHotels() []models.HotelRecord {
	return []models.HotelRecord{
		{ID: "tbs-rooms", Name: "Rooms Hotel Tbilisi", City: "Tbilisi", Rating: 4.7, Active: true, Prices: map[models.RoomType]*float64{
			models.RoomSingle:       price(95),
			models.RoomDoubleNoView: price(110),
			models.RoomDoubleView:   price(135),
			models.RoomTripleNoView: price(150),
		}},
		{ID: "tbs-old-town", Name: "Old Town Boutique", City: "Tbilisi", Rating: 4.2, Active: true, Prices: map[models.RoomType]*float64{
			models.RoomSingle:       price(60),
			models.RoomDoubleNoView: price(75),
			models.RoomDoubleView:   price(90),
		}},
		{ID: "bus-seaside", Name: "Seaside Batumi", City: "Batumi", Rating: 4.5, Active: true, Prices: map[models.RoomType]*float64{
			models.RoomSingleView:   price(100),
			models.RoomDoubleView:   price(120),
			models.RoomTripleView:   price(165),
			models.RoomTripleNoView: price(140),
		}},
		{ID: "kut-central", Name: "Kutaisi Central", City: "Kutaisi", Rating: 3.9, Active: true, Prices: map[models.RoomType]*float64{
			models.RoomSingle:       price(45),
			models.RoomDoubleNoView: price(55),
			models.RoomTripleNoView: price(70),
		}},
		{ID: "gud-alpine", Name: "Gudauri Alpine Lodge", City: "Gudauri", Rating: 4.4, Active: true, Prices: map[models.RoomType]*float64{
			models.RoomDoubleView: price(130),
			models.RoomTripleView: price(170),
		}},
	}
}

func SeedTransport() []models.TransportClass {
	return []models.TransportClass{
		{ID: "sedan", Type: "sedan", Capacity: "1-3", MinPassengers: 1, MaxPassengers: 3, TourPrice: 70,
			ReceptionSameCity: 30, ReceptionDifferentCity: 120, FarewellSameCity: 30, FarewellDifferentCity: 140, Active: true},
		{ID: "minivan", Type: "minivan", Capacity: "4-7", MinPassengers: 4, MaxPassengers: 7, TourPrice: 95,
			ReceptionSameCity: 45, ReceptionDifferentCity: 170, FarewellSameCity: 45, FarewellDifferentCity: 190, Active: true},
		{ID: "sprinter", Type: "sprinter", Capacity: "8-18", MinPassengers: 8, MaxPassengers: 18, TourPrice: 150,
			ReceptionSameCity: 70, ReceptionDifferentCity: 260, FarewellSameCity: 70, FarewellDifferentCity: 280, Active: true},
	}
}

func SeedServices() []models.ServicePrice {
	return []models.ServicePrice{
		{ID: "svc-insurance", Code: models.ServiceTravelInsurance, Name: "Travel insurance", Unit: models.UnitPerPersonNight, Price: 3, Active: true},
		{ID: "svc-vip", Code: models.ServiceVIPReception, Name: "VIP airport reception", Unit: models.UnitFlat, Price: 120, Active: true},
		{ID: "svc-phone", Code: models.ServicePhoneLines, Name: "Local phone line", Unit: models.UnitPerUnit, Price: 15, Active: true},
		{ID: "svc-decoration", Code: models.ServiceRoomDecoration, Name: "Room decoration", Unit: models.UnitFlat, Price: 80, Active: true},
		{ID: "svc-photo", Code: models.ServicePhotoSession, Name: "Photo session", Unit: models.UnitFlat, Price: 150, Active: true},
	}
}

// Seed loads the starter catalog into a repository that has no hotels yet.
// It reports whether anything was written.
func Seed(ctx context.Context, repo Repository) (bool, error) {
	existing, err := repo.ListHotels(ctx, true)
	if err != nil {
		return false, fmt.Errorf("seed: %w", err)
	}
	if len(existing) > 0 {
		return false, nil
	}
	for _, h := range SeedHotels() {
		h := h
		if err := repo.CreateHotel(ctx, &h); err != nil {
			return false, fmt.Errorf("seed hotel %s: %w", h.ID, err)
		}
	}
	for _, t := range SeedTransport() {
		t := t
		if err := repo.CreateTransportClass(ctx, &t); err != nil {
			return false, fmt.Errorf("seed transport %s: %w", t.ID, err)
		}
	}
	for _, sp := range SeedServices() {
		sp := sp
		if err := repo.CreateService(ctx, &sp); err != nil {
			return false, fmt.Errorf("seed service %s: %w", sp.Code, err)
		}
	}
	return true, nil
}
