package notify

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dharmasatrya/tripbuilder/internal/models"
	"github.com/dharmasatrya/tripbuilder/internal/ratelimit"
)

const DefaultTimeout = 30 * time.Second

// Dispatcher fans a booking out to every channel in the background. A failed
// send is logged and dropped.
type Dispatcher struct {
	channels       []Channel
	limiter        *ratelimit.KeyLimiter
	log            logrus.FieldLogger
	timeout        time.Duration
	whatsAppNumber string
	wg             sync.WaitGroup
}

type DispatcherConfig struct {
	Timeout        time.Duration
	WhatsAppNumber string
}

func NewDispatcher(channels []Channel, limiter *ratelimit.KeyLimiter, log logrus.FieldLogger, cfg DispatcherConfig) *Dispatcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if limiter == nil {
		limiter = ratelimit.NewKeyLimiter(ratelimit.DefaultConfig())
	}
	return &Dispatcher{
		channels:       channels,
		limiter:        limiter,
		log:            log,
		timeout:        cfg.Timeout,
		whatsAppNumber: cfg.WhatsAppNumber,
	}
}

func (d *Dispatcher) BookingCreated(rec models.BookingRecord) {
	for _, ch := range d.channels {
		d.wg.Add(1)
		go func(ch Channel) {
			defer d.wg.Done()
			d.send(ch, rec)
		}(ch)
	}
}

func (d *Dispatcher) send(ch Channel, rec models.BookingRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	entry := d.log.WithFields(logrus.Fields{
		"channel":   ch.Name(),
		"reference": rec.Reference,
	})

	if err := d.limiter.Wait(ctx, ch.Name()); err != nil {
		entry.WithError(err).Warn("notification dropped by rate limiter")
		return
	}
	if err := ch.Send(ctx, rec); err != nil {
		entry.WithError(err).Error("failed to send booking notification")
		return
	}
	entry.Info("booking notification sent")
}

func (d *Dispatcher) DeepLink(rec models.BookingRecord) string {
	return WhatsAppLink(d.whatsAppNumber, rec)
}

// Wait blocks until every notification started so far has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
