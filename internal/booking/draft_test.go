package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/tripbuilder/internal/itinerary"
	"github.com/dharmasatrya/tripbuilder/internal/models"
)

func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

func TestMerge_RoomCountFloorAndSlots(t *testing.T) {
	rules := itinerary.NewRules(nil)
	cities := []models.CityStay{
		{City: "Tbilisi", Nights: 2, RoomSelections: []models.RoomSelection{{RoomNumber: 1, RoomType: models.RoomDoubleView}}},
		{City: "Batumi", Nights: 2},
	}

	d := Merge(Draft{}, Patch{
		Traveler: &models.Traveler{Adults: 4, Children: []models.Child{{Age: 3}, {Age: 9}}},
		Cities:   &cities,
	}, rules)

	// 5 beds needed, so at least 2 rooms
	assert.Equal(t, 2, d.Itinerary.RoomCount)
	for _, c := range d.Itinerary.Cities {
		require.Len(t, c.RoomSelections, 2)
		assert.Equal(t, 1, c.RoomSelections[0].RoomNumber)
		assert.Equal(t, 2, c.RoomSelections[1].RoomNumber)
	}
	assert.Equal(t, models.RoomDoubleView, d.Itinerary.Cities[0].RoomSelections[0].RoomType)

	d = Merge(d, Patch{RoomCount: intPtr(1)}, rules)
	assert.Equal(t, 2, d.Itinerary.RoomCount, "room count never drops below the minimum")

	d = Merge(d, Patch{RoomCount: intPtr(3)}, rules)
	assert.Len(t, d.Itinerary.Cities[1].RoomSelections, 3)
}

func TestMerge_RecomputesMandatoryTours(t *testing.T) {
	rules := itinerary.NewRules(nil)
	cities := []models.CityStay{
		{City: "Tbilisi", Nights: 2, MandatoryTours: 7},
		{City: "Kutaisi", Nights: 1},
		{City: "Batumi", Nights: 2},
	}

	d := Merge(Draft{}, Patch{
		ArrivalAirport:   strPtr("TBS"),
		DepartureAirport: strPtr("BUS"),
		Cities:           &cities,
	}, rules)

	assert.Equal(t, 0, d.Itinerary.Cities[0].MandatoryTours)
	assert.Equal(t, 1, d.Itinerary.Cities[1].MandatoryTours)
	assert.Equal(t, 2, d.Itinerary.Cities[2].MandatoryTours)

	d = Merge(d, Patch{ArrivalAirport: strPtr("KUT")}, rules)
	assert.Equal(t, 1, d.Itinerary.Cities[0].MandatoryTours)
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	rules := itinerary.NewRules(nil)
	hotel := "h1"
	orig := Merge(Draft{}, Patch{
		Traveler: &models.Traveler{Adults: 2},
		Cities:   &[]models.CityStay{{City: "Tbilisi", Nights: 3, HotelID: &hotel}},
	}, rules)

	newCities := []models.CityStay{{City: "Batumi", Nights: 3}}
	_ = Merge(orig, Patch{Cities: &newCities, Traveler: &models.Traveler{Adults: 6}}, rules)

	assert.Equal(t, "Tbilisi", orig.Itinerary.Cities[0].City)
	assert.Equal(t, 2, orig.Traveler.Adults)
	assert.Equal(t, 1, orig.Itinerary.RoomCount)
	assert.Equal(t, "h1", *orig.Itinerary.Cities[0].HotelID)
}

func TestMerge_NormalizesFields(t *testing.T) {
	services := []models.ServiceSelection{
		{Code: models.ServiceVIPReception, Enabled: false},
		{Code: models.ServicePhoneLines, Enabled: true, Quantity: 2},
		{Code: models.ServiceVIPReception, Enabled: true},
		{Code: ""},
	}

	d := Merge(Draft{}, Patch{
		Currency:           strPtr(" sar "),
		DiscountCode:       strPtr(" summer10"),
		CarType:            strPtr(" sedan "),
		AdditionalServices: &services,
	}, itinerary.NewRules(nil))

	assert.Equal(t, "SAR", d.Itinerary.Currency)
	assert.Equal(t, "SUMMER10", d.Itinerary.DiscountCode)
	assert.Equal(t, "sedan", d.Itinerary.CarType)
	assert.Equal(t, []models.ServiceSelection{
		{Code: models.ServiceVIPReception, Enabled: true},
		{Code: models.ServicePhoneLines, Enabled: true, Quantity: 2},
	}, d.Itinerary.AdditionalServices)
}
