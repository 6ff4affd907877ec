package booking

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/tripbuilder/internal/models"
)

func sampleRecord() models.BookingRecord {
	hotel := "tbs-1"
	return models.BookingRecord{
		ID:        "b1",
		Reference: "TRP-260801-ABC123",
		Customer:  models.Customer{FullName: "Sara Ahmed", Email: "sara@example.com", Phone: "+966500000000"},
		Traveler:  models.Traveler{Adults: 2, Children: []models.Child{{Age: 4}}},
		Itinerary: models.Itinerary{
			Cities: []models.CityStay{{
				City: "Tbilisi", Nights: 3, HotelID: &hotel, Tours: 1,
				RoomSelections: []models.RoomSelection{{RoomNumber: 1, RoomType: models.RoomDoubleView}},
			}},
			ArrivalAirport:     "TBS",
			DepartureAirport:   "TBS",
			ArrivalDate:        models.NewDate(2026, 8, 1),
			DepartureDate:      models.NewDate(2026, 8, 4),
			RoomCount:          1,
			CarType:            "sedan",
			Currency:           "USD",
			AdditionalServices: []models.ServiceSelection{{Code: models.ServiceVIPReception, Enabled: true}},
		},
		Quote:     models.Quote{Total: 470, Currency: "USD"},
		TotalCost: 470,
		Currency:  "USD",
		Status:    models.StatusPending,
		CreatedAt: time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestRecord_RoundTrip(t *testing.T) {
	rec := sampleRecord()

	stored, err := EncodeRecord(rec)
	require.NoError(t, err)

	got, err := DecodeRecord(stored)
	require.NoError(t, err)
	assert.Equal(t, rec.Itinerary.Cities, got.Itinerary.Cities)
	assert.Equal(t, rec.Traveler, got.Traveler)
	assert.Equal(t, rec.Itinerary.AdditionalServices, got.Itinerary.AdditionalServices)
	assert.Equal(t, rec.Customer, got.Customer)
	assert.Equal(t, rec.Quote.Total, got.Quote.Total)
	assert.True(t, rec.Itinerary.ArrivalDate.Equal(got.Itinerary.ArrivalDate.Time))
}

func TestEncodeRecord_EmptySlicesAreArrays(t *testing.T) {
	rec := sampleRecord()
	rec.Traveler.Children = nil
	rec.Itinerary.AdditionalServices = nil

	stored, err := EncodeRecord(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(stored.Children))
	assert.JSONEq(t, `[]`, string(stored.AdditionalServices))

	_, err = DecodeRecord(stored)
	require.NoError(t, err)
}

func TestDecodeRecord_RejectsBadShapes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*StoredBooking)
	}{
		{name: "null children", mutate: func(s *StoredBooking) { s.Children = json.RawMessage(`null`) }},
		{name: "missing cities", mutate: func(s *StoredBooking) { s.SelectedCities = nil }},
		{name: "object instead of list", mutate: func(s *StoredBooking) { s.SelectedCities = json.RawMessage(`{"city":"Tbilisi"}`) }},
		{name: "unknown field", mutate: func(s *StoredBooking) {
			s.SelectedCities = json.RawMessage(`[{"city":"Tbilisi","nights":2,"stars":5}]`)
		}},
		{name: "trailing data", mutate: func(s *StoredBooking) { s.Children = json.RawMessage(`[] []`) }},
		{name: "child age out of range", mutate: func(s *StoredBooking) { s.Children = json.RawMessage(`[{"age":25}]`) }},
		{name: "city without nights", mutate: func(s *StoredBooking) { s.SelectedCities = json.RawMessage(`[{"city":"Tbilisi"}]`) }},
		{name: "unknown room type", mutate: func(s *StoredBooking) {
			s.SelectedCities = json.RawMessage(`[{"city":"Tbilisi","nights":2,"room_selections":[{"room_number":1,"room_type":"suite"}]}]`)
		}},
		{name: "service without code", mutate: func(s *StoredBooking) { s.AdditionalServices = json.RawMessage(`[{"enabled":true}]`) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored, err := EncodeRecord(sampleRecord())
			require.NoError(t, err)
			tt.mutate(&stored)

			_, err = DecodeRecord(stored)
			assert.ErrorIs(t, err, ErrCorruptRecord)
		})
	}
}
