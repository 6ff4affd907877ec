// Package notify tells the agency about new bookings.
package notify

import (
	"context"

	"github.com/dharmasatrya/tripbuilder/internal/models"
)

type Channel interface {
	Name() string
	Send(ctx context.Context, rec models.BookingRecord) error
}

type ChannelError struct {
	Channel string
	Err     error
}

func (e *ChannelError) Error() string {
	return e.Channel + ": " + e.Err.Error()
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}

func NewChannelError(channel string, err error) *ChannelError {
	return &ChannelError{
		Channel: channel,
		Err:     err,
	}
}
