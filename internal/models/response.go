package models

type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	WarnHotelMissing      = "hotel_missing"
	WarnRoomPriceMissing  = "room_price_missing"
	WarnTransportMissing  = "transport_missing"
	WarnServiceMissing    = "service_missing"
	WarnCurrencyUnknown   = "currency_unknown"
	WarnNightsMismatch    = "nights_mismatch"
	WarnDiscountDropped   = "discount_dropped"
	WarnInvalidStay       = "invalid_stay"
	WarnTransportCapacity = "transport_capacity"
)

// DiscountResult is how a discount code resolved against a quote. Reason is
// empty when the discount applied.
type DiscountResult struct {
	Code      string   `json:"code"`
	Amount    float64  `json:"amount"`
	AppliesTo LineItem `json:"applies_to,omitempty"`
	Reason    string   `json:"reason,omitempty"`
}

func (d DiscountResult) Applied() bool {
	return d.Reason == "" && d.Amount > 0
}

type Quote struct {
	RoomCost       float64         `json:"room_cost"`
	ToursCost      float64         `json:"tours_cost"`
	TransportCost  float64         `json:"transport_cost"`
	ServicesCost   float64         `json:"services_cost"`
	Subtotal       float64         `json:"subtotal"`
	MarginAmount   float64         `json:"margin_amount"`
	DiscountAmount float64         `json:"discount_amount"`
	Total          float64         `json:"total"`
	Currency       string          `json:"currency"`
	DisplayTotal   float64         `json:"display_total"`
	FormattedTotal string          `json:"formatted_total"`
	TourCount      int             `json:"tour_count"`
	Discount       *DiscountResult `json:"discount,omitempty"`
	Warnings       []Warning       `json:"warnings,omitempty"`
}

type QuoteResponse struct {
	Quote     Quote     `json:"quote"`
	Itinerary Itinerary `json:"itinerary"`
}

type FinalizeResponse struct {
	Booking      BookingRecord `json:"booking"`
	WhatsAppLink string        `json:"whatsapp_link,omitempty"`
}

type StepCheckResponse struct {
	Step     string    `json:"step"`
	OK       bool      `json:"ok"`
	Reason   string    `json:"reason,omitempty"`
	Warnings []Warning `json:"warnings,omitempty"`

	// SuggestedTransport is filled on the transport step with the classes
	// whose capacity band fits the travelers.
	SuggestedTransport []TransportClass `json:"suggested_transport,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
