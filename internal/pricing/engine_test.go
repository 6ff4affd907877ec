package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/tripbuilder/internal/catalog"
	"github.com/dharmasatrya/tripbuilder/internal/discount"
	"github.com/dharmasatrya/tripbuilder/internal/itinerary"
	"github.com/dharmasatrya/tripbuilder/internal/models"
	"github.com/dharmasatrya/tripbuilder/pkg/currency"
)

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(ctx context.Context, code string, subtotal float64, lines discount.LineItems) models.DiscountResult {
	args := m.Called(ctx, code, subtotal, lines)
	return args.Get(0).(models.DiscountResult)
}

func p(v float64) *float64 {
	return &v
}

func s(v string) *string {
	return &v
}

func testCatalog() *catalog.Snapshot {
	return catalog.NewSnapshot(
		[]models.HotelRecord{
			{ID: "tbs-1", Name: "Old Town", City: "Tbilisi", Active: true, Prices: map[models.RoomType]*float64{
				models.RoomDoubleView:   p(80),
				models.RoomSingle:       p(50),
				models.RoomTripleNoView: p(110),
				models.RoomDoubleNoView: nil,
			}},
			{ID: "bus-1", Name: "Seaside", City: "Batumi", Active: true, Prices: map[models.RoomType]*float64{
				models.RoomDoubleView: p(100),
			}},
		},
		[]models.TransportClass{
			{ID: "t1", Type: "sedan", Active: true, TourPrice: 60,
				ReceptionSameCity: 40, ReceptionDifferentCity: 150,
				FarewellSameCity: 40, FarewellDifferentCity: 180},
		},
		[]models.ServicePrice{
			{ID: "s1", Code: models.ServiceVIPReception, Unit: models.UnitFlat, Price: 100, Active: true},
			{ID: "s2", Code: models.ServiceTravelInsurance, Unit: models.UnitPerPersonNight, Price: 2, Active: true},
			{ID: "s3", Code: models.ServicePhoneLines, Unit: models.UnitPerUnit, Price: 15, Active: true},
			{ID: "s4", Code: models.ServiceRoomDecoration, Unit: models.UnitFlat, Price: 30, Active: false},
		},
		time.Now(),
	)
}

func newTestEngine(cfg Config, resolver DiscountResolver) *Engine {
	return NewEngine(cfg, itinerary.NewRules(nil), currency.DefaultTable(), resolver)
}

// One city, arrival and departure in Tbilisi, two double-view rooms.
func scenarioItinerary() models.Itinerary {
	return models.Itinerary{
		ArrivalAirport:   "TBS",
		DepartureAirport: "TBS",
		ArrivalDate:      models.NewDate(2026, 8, 1),
		DepartureDate:    models.NewDate(2026, 8, 3),
		RoomCount:        2,
		CarType:          "sedan",
		Currency:         "USD",
		Cities: []models.CityStay{{
			City:    "Tbilisi",
			Nights:  2,
			HotelID: s("tbs-1"),
			RoomSelections: []models.RoomSelection{
				{RoomNumber: 1, RoomType: models.RoomDoubleView},
				{RoomNumber: 2, RoomType: models.RoomDoubleView},
			},
		}},
		AdditionalServices: []models.ServiceSelection{
			{Code: models.ServiceVIPReception, Enabled: true},
		},
	}
}

func TestEngine_RoomCostScenario(t *testing.T) {
	e := newTestEngine(DefaultConfig(), nil)

	q := e.Price(context.Background(), testCatalog(), scenarioItinerary(), models.Traveler{Adults: 4})

	assert.Equal(t, 320.0, q.RoomCost)
	assert.Equal(t, 0.0, q.ToursCost)
	assert.Equal(t, 80.0, q.TransportCost)
	assert.Equal(t, 100.0, q.ServicesCost)
	assert.Equal(t, 500.0, q.Subtotal)
	assert.Equal(t, 64.0, q.MarginAmount)
	assert.Equal(t, 564.0, q.Total)
	assert.Equal(t, itinerary.TransferLegs, q.TourCount)
	assert.Equal(t, "$ 564.00", q.FormattedTotal)
}

func TestEngine_DiscountPreMargin(t *testing.T) {
	resolver := new(mockResolver)
	resolver.On("Resolve", mock.Anything, "10PERCENT", 500.0, mock.Anything).
		Return(models.DiscountResult{Code: "10PERCENT", Amount: 50})
	e := newTestEngine(DefaultConfig(), resolver)

	it := scenarioItinerary()
	it.DiscountCode = "10PERCENT"
	q := e.Price(context.Background(), testCatalog(), it, models.Traveler{Adults: 4})

	assert.Equal(t, 50.0, q.DiscountAmount)
	assert.Equal(t, 64.0, q.MarginAmount, "discount must not reduce the margin")
	assert.Equal(t, 514.0, q.Total)
	resolver.AssertExpectations(t)
}

func TestEngine_DiscountPostMargin(t *testing.T) {
	dc := models.DiscountCode{Code: "10PERCENT", Kind: models.DiscountPercentage, Percentage: 10, Active: true}
	e := newTestEngine(Config{MarginRate: 0.20, DiscountBase: PostMargin}, nil)

	q := e.PriceWith(testCatalog(), scenarioItinerary(), models.Traveler{Adults: 4}, WithCode(dc))

	assert.Equal(t, 56.4, q.DiscountAmount)
	assert.Equal(t, 507.6, q.Total)
}

func TestEngine_BothOrderingsAgreeOnWaiver(t *testing.T) {
	dc := models.DiscountCode{Code: "FREERIDE", Kind: models.DiscountWaiver, WaiveItem: models.LineTransport, Active: true}

	for _, base := range []DiscountBase{PreMargin, PostMargin} {
		e := newTestEngine(Config{MarginRate: 0.20, DiscountBase: base}, nil)
		q := e.PriceWith(testCatalog(), scenarioItinerary(), models.Traveler{Adults: 4}, WithCode(dc))

		assert.Equal(t, 80.0, q.DiscountAmount, string(base))
		assert.Equal(t, models.LineTransport, q.Discount.AppliesTo)
		assert.Equal(t, 484.0, q.Total, string(base))
	}
}

func TestEngine_RejectedDiscountIsNoOp(t *testing.T) {
	resolver := new(mockResolver)
	resolver.On("Resolve", mock.Anything, "OLD", mock.Anything, mock.Anything).
		Return(models.DiscountResult{Code: "OLD", Reason: discount.ReasonExpired})
	e := newTestEngine(DefaultConfig(), resolver)

	it := scenarioItinerary()
	it.DiscountCode = "OLD"
	q := e.Price(context.Background(), testCatalog(), it, models.Traveler{Adults: 4})

	assert.Zero(t, q.DiscountAmount)
	require.NotNil(t, q.Discount)
	assert.Equal(t, discount.ReasonExpired, q.Discount.Reason)
	assert.Equal(t, 564.0, q.Total)
}

func TestEngine_TotalFloorsAtZero(t *testing.T) {
	e := newTestEngine(DefaultConfig(), nil)
	huge := func(base float64, lines discount.LineItems) *models.DiscountResult {
		return &models.DiscountResult{Code: "ALL", Amount: 10000}
	}

	q := e.PriceWith(testCatalog(), scenarioItinerary(), models.Traveler{Adults: 4}, huge)

	assert.Equal(t, 0.0, q.Total)
}

func TestEngine_RoomCostIgnoresSelectionOrder(t *testing.T) {
	e := newTestEngine(DefaultConfig(), nil)
	it := scenarioItinerary()
	it.RoomCount = 3
	it.Cities[0].RoomSelections = []models.RoomSelection{
		{RoomNumber: 1, RoomType: models.RoomSingle},
		{RoomNumber: 2, RoomType: models.RoomDoubleView},
		{RoomNumber: 3, RoomType: models.RoomTripleNoView},
	}
	reversed := it.Clone()
	reversed.Cities[0].RoomSelections = []models.RoomSelection{
		{RoomNumber: 1, RoomType: models.RoomTripleNoView},
		{RoomNumber: 2, RoomType: models.RoomDoubleView},
		{RoomNumber: 3, RoomType: models.RoomSingle},
	}

	a := e.Price(context.Background(), testCatalog(), it, models.Traveler{Adults: 6})
	b := e.Price(context.Background(), testCatalog(), reversed, models.Traveler{Adults: 6})

	assert.Equal(t, (50.0+80+110)*2, a.RoomCost)
	assert.Equal(t, a.RoomCost, b.RoomCost)
}

func TestEngine_Idempotent(t *testing.T) {
	e := newTestEngine(DefaultConfig(), nil)
	it := scenarioItinerary()
	snapshot := it.Clone()

	first := e.Price(context.Background(), testCatalog(), it, models.Traveler{Adults: 4})
	second := e.Price(context.Background(), testCatalog(), it, models.Traveler{Adults: 4})

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, it)
}

func TestEngine_ToursAndCrossCityTransfers(t *testing.T) {
	e := newTestEngine(DefaultConfig(), nil)
	it := scenarioItinerary()
	it.DepartureAirport = "BUS"
	it.DepartureDate = models.NewDate(2026, 8, 6)
	it.RoomCount = 1
	it.Cities = []models.CityStay{
		{City: "Tbilisi", Nights: 2, Tours: 1, HotelID: s("tbs-1"), RoomSelections: []models.RoomSelection{{RoomNumber: 1, RoomType: models.RoomDoubleView}}},
		{City: "Kutaisi", Nights: 1, RoomSelections: []models.RoomSelection{{RoomNumber: 1, RoomType: models.RoomDoubleView}}},
		{City: "Batumi", Nights: 2, HotelID: s("bus-1"), RoomSelections: []models.RoomSelection{{RoomNumber: 1, RoomType: models.RoomDoubleView}}},
	}
	it.AdditionalServices = nil

	q := e.Price(context.Background(), testCatalog(), it, models.Traveler{Adults: 2})

	// Tbilisi 1 optional + 0 mandatory, Kutaisi 1, Batumi 2.
	assert.Equal(t, 4*60.0, q.ToursCost)
	assert.Equal(t, 40.0+40.0, q.TransportCost)
	assert.Equal(t, 80.0*2+100*2, q.RoomCost)
	assert.Equal(t, 4+itinerary.TransferLegs, q.TourCount)
	assert.Contains(t, warningCodes(q), models.WarnHotelMissing)

	it.ArrivalAirport = "KUT"
	q = e.Price(context.Background(), testCatalog(), it, models.Traveler{Adults: 2})
	assert.Equal(t, 150.0+40.0, q.TransportCost)
	assert.Equal(t, 5*60.0, q.ToursCost, "Tbilisi gains a mandatory tour when it is not the entry point")
}

func TestEngine_Services(t *testing.T) {
	e := newTestEngine(DefaultConfig(), nil)
	it := scenarioItinerary()
	it.AdditionalServices = []models.ServiceSelection{
		{Code: models.ServiceTravelInsurance, Enabled: true},
		{Code: models.ServicePhoneLines, Enabled: true, Quantity: 3},
		{Code: models.ServiceVIPReception, Enabled: false},
		{Code: models.ServiceRoomDecoration, Enabled: true},
	}
	traveler := models.Traveler{Adults: 2, Children: []models.Child{{Age: 4}}}

	q := e.Price(context.Background(), testCatalog(), it, traveler)

	// insurance: 2 per person per night for 3 people over 2 nights
	assert.Equal(t, 2.0*3*2+15*3, q.ServicesCost)
	assert.Contains(t, warningCodes(q), models.WarnServiceMissing)
}

func TestEngine_MissingPricesDegradeWithWarnings(t *testing.T) {
	e := newTestEngine(DefaultConfig(), nil)
	it := scenarioItinerary()
	it.Cities[0].RoomSelections[1].RoomType = models.RoomDoubleNoView
	it.CarType = "limousine"

	q := e.Price(context.Background(), testCatalog(), it, models.Traveler{Adults: 4})

	assert.Equal(t, 160.0, q.RoomCost)
	assert.Zero(t, q.TransportCost)
	codes := warningCodes(q)
	assert.Contains(t, codes, models.WarnRoomPriceMissing)
	assert.Contains(t, codes, models.WarnTransportMissing)
}

func TestEngine_NegativeStayValuesPriceAsZero(t *testing.T) {
	e := newTestEngine(DefaultConfig(), nil)
	it := scenarioItinerary()
	it.Cities[0].Tours = -5
	it.Cities[0].Nights = -2

	q := e.Price(context.Background(), testCatalog(), it, models.Traveler{Adults: 4})

	assert.Zero(t, q.RoomCost)
	assert.Zero(t, q.ToursCost)
	assert.Equal(t, 80.0, q.TransportCost)
	assert.Equal(t, 180.0, q.Subtotal)
	assert.Zero(t, q.MarginAmount)
	assert.Equal(t, 180.0, q.Total)
	assert.Equal(t, itinerary.TransferLegs, q.TourCount)
	assert.Contains(t, warningCodes(q), models.WarnInvalidStay)

	assert.Equal(t, -5, it.Cities[0].Tours)
	assert.Equal(t, -2, it.Cities[0].Nights)
}

func TestEngine_CurrencyConversion(t *testing.T) {
	e := newTestEngine(DefaultConfig(), nil)
	it := scenarioItinerary()

	it.Currency = "sar"
	q := e.Price(context.Background(), testCatalog(), it, models.Traveler{Adults: 4})
	assert.Equal(t, 564.0, q.Total)
	assert.Equal(t, 2115.0, q.DisplayTotal)
	assert.Equal(t, "SAR", q.Currency)

	it.Currency = "ZZZ"
	q = e.Price(context.Background(), testCatalog(), it, models.Traveler{Adults: 4})
	assert.Equal(t, 564.0, q.DisplayTotal)
	assert.Contains(t, warningCodes(q), models.WarnCurrencyUnknown)
}

func TestServiceCost(t *testing.T) {
	tests := []struct {
		name string
		unit models.PricingUnit
		qty  int
		want float64
	}{
		{name: "flat", unit: models.UnitFlat, qty: 4, want: 10},
		{name: "per unit defaults to one", unit: models.UnitPerUnit, want: 10},
		{name: "per unit", unit: models.UnitPerUnit, qty: 3, want: 30},
		{name: "per person headcount", unit: models.UnitPerPerson, want: 50},
		{name: "per person explicit", unit: models.UnitPerPerson, qty: 2, want: 20},
		{name: "per person night", unit: models.UnitPerPersonNight, want: 10 * 5 * 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp := models.ServicePrice{Unit: tt.unit, Price: 10}
			got := ServiceCost(sp, models.ServiceSelection{Enabled: true, Quantity: tt.qty}, 5, 4)
			assert.Equal(t, tt.want, got)
		})
	}
}

func warningCodes(q models.Quote) []string {
	codes := make([]string, len(q.Warnings))
	for i, w := range q.Warnings {
		codes[i] = w.Code
	}
	return codes
}
