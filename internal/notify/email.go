package notify

import (
	"bytes"
	"context"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/dharmasatrya/tripbuilder/internal/models"
)

// Sender is satisfied by *gomail.Dialer.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string
}

type EmailChannel struct {
	sender Sender
	from   string
	to     string
}

func NewEmailChannel(cfg EmailConfig) *EmailChannel {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &EmailChannel{
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   from,
		to:     cfg.To,
	}
}

func NewEmailChannelWithSender(sender Sender, from, to string) *EmailChannel {
	return &EmailChannel{sender: sender, from: from, to: to}
}

func (c *EmailChannel) Name() string {
	return "email"
}

func (c *EmailChannel) Send(ctx context.Context, rec models.BookingRecord) error {
	body, err := RenderSummary(rec)
	if err != nil {
		return NewChannelError(c.Name(), err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", c.from)
	m.SetHeader("To", c.to)
	m.SetHeader("Subject", "حجز جديد "+rec.Reference)
	m.SetBody("text/html", body)

	if err := ctx.Err(); err != nil {
		return NewChannelError(c.Name(), err)
	}
	if err := c.sender.DialAndSend(m); err != nil {
		return NewChannelError(c.Name(), err)
	}
	return nil
}

var summaryTemplate = template.Must(template.New("summary").Parse(`<div dir="rtl">
<h2>حجز جديد: {{.Reference}}</h2>
<p>العميل: {{.Customer.FullName}}<br>
البريد: {{.Customer.Email}}<br>
الهاتف: {{.Customer.Phone}}</p>
<p>الوصول: {{.Itinerary.ArrivalDate}} ({{.Itinerary.ArrivalAirport}})<br>
المغادرة: {{.Itinerary.DepartureDate}} ({{.Itinerary.DepartureAirport}})<br>
البالغون: {{.Traveler.Adults}} | الأطفال: {{len .Traveler.Children}} | الغرف: {{.Itinerary.RoomCount}}</p>
<ul>{{range .Itinerary.Cities}}
<li>{{.City}}: {{.Nights}} ليالٍ، {{.Tours}} جولات إضافية</li>{{end}}
</ul>
<p>الإجمالي: {{.Quote.FormattedTotal}}{{if .Quote.Discount}} (كود الخصم {{.Quote.Discount.Code}}){{end}}</p>
<p>الدفع نقداً عند الوصول.</p>
</div>`))

func RenderSummary(rec models.BookingRecord) (string, error) {
	var buf bytes.Buffer
	if err := summaryTemplate.Execute(&buf, rec); err != nil {
		return "", err
	}
	return buf.String(), nil
}
