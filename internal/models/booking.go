package models

import "time"

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Customer struct {
	FullName    string `json:"full_name" validate:"required,min=3"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required,e164"`
	Nationality string `json:"nationality,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

type DocumentKind string

const (
	DocumentPassport DocumentKind = "passport"
	DocumentTicket   DocumentKind = "ticket"
)

func (k DocumentKind) Valid() bool {
	return k == DocumentPassport || k == DocumentTicket
}

type Document struct {
	ID          string       `json:"id"`
	Kind        DocumentKind `json:"kind"`
	URL         string       `json:"url"`
	FileName    string       `json:"file_name"`
	ContentType string       `json:"content_type"`
	Size        int64        `json:"size"`
}

type BookingRecord struct {
	ID        string        `json:"id"`
	Reference string        `json:"reference"`
	Customer  Customer      `json:"customer"`
	Traveler  Traveler      `json:"traveler"`
	Itinerary Itinerary     `json:"itinerary"`
	Documents []Document    `json:"documents,omitempty"`
	Quote     Quote         `json:"quote"`
	TotalCost float64       `json:"total_cost"`
	Currency  string        `json:"currency"`
	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type BookingFilter struct {
	Status BookingStatus
	From   *time.Time
	To     *time.Time
	Query  string
}
