package notify

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/dharmasatrya/tripbuilder/internal/models"
	"github.com/dharmasatrya/tripbuilder/internal/ratelimit"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) DialAndSend(msgs ...*gomail.Message) error {
	args := m.Called(msgs)
	return args.Error(0)
}

type recordingChannel struct {
	name string
	err  error

	mu   sync.Mutex
	sent []string
}

func (c *recordingChannel) Name() string { return c.name }

func (c *recordingChannel) Send(ctx context.Context, rec models.BookingRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, rec.Reference)
	return c.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func sampleRecord() models.BookingRecord {
	return models.BookingRecord{
		Reference: "TRP-260501-A1B2C3",
		Customer:  models.Customer{FullName: "Sara Ahmed", Email: "sara@example.com", Phone: "+966500000000"},
		Traveler:  models.Traveler{Adults: 2},
		Itinerary: models.Itinerary{
			ArrivalAirport: "TBS",
			ArrivalDate:    models.NewDate(2026, 5, 1),
			DepartureDate:  models.NewDate(2026, 5, 6),
			RoomCount:      1,
			Cities:         []models.CityStay{{City: "Tbilisi", Nights: 5}},
		},
		Quote: models.Quote{FormattedTotal: "$ 1,200.00"},
	}
}

func TestRenderSummary(t *testing.T) {
	body, err := RenderSummary(sampleRecord())
	require.NoError(t, err)

	assert.Contains(t, body, "TRP-260501-A1B2C3")
	assert.Contains(t, body, "Sara Ahmed")
	assert.Contains(t, body, "2026-05-01")
	assert.Contains(t, body, "Tbilisi")
	assert.Contains(t, body, "$ 1,200.00")
	assert.Contains(t, body, `dir="rtl"`)
}

func TestEmailChannel_Send(t *testing.T) {
	sender := new(mockSender)
	sender.On("DialAndSend", mock.Anything).Return(nil).Once()

	ch := NewEmailChannelWithSender(sender, "noreply@agency.test", "ops@agency.test")
	require.NoError(t, ch.Send(context.Background(), sampleRecord()))
	sender.AssertExpectations(t)
}

func TestEmailChannel_SendFailureIsWrapped(t *testing.T) {
	smtpErr := errors.New("connection refused")
	sender := new(mockSender)
	sender.On("DialAndSend", mock.Anything).Return(smtpErr)

	ch := NewEmailChannelWithSender(sender, "noreply@agency.test", "ops@agency.test")
	err := ch.Send(context.Background(), sampleRecord())

	var chErr *ChannelError
	require.ErrorAs(t, err, &chErr)
	assert.Equal(t, "email", chErr.Channel)
	assert.ErrorIs(t, err, smtpErr)
}

func TestWhatsAppLink(t *testing.T) {
	link := WhatsAppLink("+995 555-12-34-56", sampleRecord())
	require.True(t, strings.HasPrefix(link, "https://wa.me/995555123456?text="))

	u, err := url.Parse(link)
	require.NoError(t, err)
	text := u.Query().Get("text")
	assert.Contains(t, text, "TRP-260501-A1B2C3")
	assert.Contains(t, text, "$ 1,200.00")

	assert.Empty(t, WhatsAppLink("", sampleRecord()))
}

func TestDispatcher_SendsToEveryChannel(t *testing.T) {
	ok := &recordingChannel{name: "email"}
	failing := &recordingChannel{name: "sms", err: errors.New("down")}

	d := NewDispatcher([]Channel{ok, failing}, ratelimit.NewKeyLimiter(ratelimit.DefaultConfig()), quietLogger(), DispatcherConfig{
		Timeout:        time.Second,
		WhatsAppNumber: "995555123456",
	})
	d.BookingCreated(sampleRecord())
	d.Wait()

	assert.Equal(t, []string{"TRP-260501-A1B2C3"}, ok.sent)
	assert.Equal(t, []string{"TRP-260501-A1B2C3"}, failing.sent)
	assert.NotEmpty(t, d.DeepLink(sampleRecord()))
}
