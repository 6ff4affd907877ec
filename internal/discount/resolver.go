package discount

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dharmasatrya/tripbuilder/internal/models"
	"github.com/dharmasatrya/tripbuilder/internal/storage"
)

// Reasons a code resolved to zero.
const (
	ReasonNotFound   = "not_found"
	ReasonInactive   = "inactive"
	ReasonExpired    = "expired"
	ReasonExhausted  = "exhausted"
	ReasonStoreError = "store_error"
	ReasonNoEffect   = "no_effect"
)

type Store interface {
	FindDiscountByCode(ctx context.Context, code string) (*models.DiscountCode, error)
}

// LineItems carries the pre-margin amount of each priced component.
type LineItems map[models.LineItem]float64

func (l LineItems) Subtotal() float64 {
	total := 0.0
	for _, v := range l {
		total += v
	}
	return total
}

type Resolver struct {
	store Store
	now   func() time.Time
	log   logrus.FieldLogger
}

func NewResolver(store Store, log logrus.FieldLogger) *Resolver {
	return &Resolver{
		store: store,
		now:   time.Now,
		log:   log,
	}
}

// Lookup fetches a code and reports why it cannot be used. It never fails:
// any problem comes back as a reason.
func (r *Resolver) Lookup(ctx context.Context, code string) (*models.DiscountCode, string) {
	code = models.NormalizeCode(code)
	if code == "" {
		return nil, ReasonNotFound
	}
	dc, err := r.store.FindDiscountByCode(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ReasonNotFound
		}
		r.log.WithError(err).WithField("code", code).Warn("discount lookup failed")
		return nil, ReasonStoreError
	}
	if dc == nil {
		return nil, ReasonNotFound
	}
	return dc, Eligibility(*dc, r.now())
}

// Resolve turns a code into a discount against the given line items. A code
// that is missing, inactive, expired or used up resolves to zero.
func (r *Resolver) Resolve(ctx context.Context, code string, subtotal float64, lines LineItems) models.DiscountResult {
	dc, reason := r.Lookup(ctx, code)
	if reason != "" {
		return models.DiscountResult{Code: models.NormalizeCode(code), Reason: reason}
	}
	return Evaluate(*dc, subtotal, lines)
}

// Eligibility returns the reason a code cannot be applied at now, or "".
func Eligibility(dc models.DiscountCode, now time.Time) string {
	switch {
	case !dc.Active:
		return ReasonInactive
	case dc.Expired(now):
		return ReasonExpired
	case dc.Exhausted():
		return ReasonExhausted
	}
	return ""
}

// Evaluate computes the discount of an eligible code.
func Evaluate(dc models.DiscountCode, subtotal float64, lines LineItems) models.DiscountResult {
	res := models.DiscountResult{Code: dc.Code}

	switch dc.Kind {
	case models.DiscountPercentage:
		pct := math.Min(math.Max(dc.Percentage, 0), 100)
		res.Amount = roundCents(subtotal * pct / 100)
	case models.DiscountWaiver:
		res.Amount = roundCents(lines[dc.WaiveItem])
		res.AppliesTo = dc.WaiveItem
	}

	if res.Amount <= 0 {
		res.Amount = 0
		res.Reason = ReasonNoEffect
	}
	return res
}

// Validate checks an admin-supplied code before it is stored.
func Validate(dc *models.DiscountCode) error {
	dc.Code = models.NormalizeCode(dc.Code)
	if dc.Code == "" {
		return models.ErrInvalidDiscountCode
	}
	switch dc.Kind {
	case models.DiscountPercentage:
		if dc.Percentage < 1 || dc.Percentage > 100 {
			return models.ErrInvalidDiscountCode
		}
	case models.DiscountWaiver:
		switch dc.WaiveItem {
		case models.LineTransport, models.LineTours, models.LineServices:
		default:
			return models.ErrInvalidDiscountCode
		}
	default:
		return models.ErrInvalidDiscountCode
	}
	if dc.MaxUses != nil && *dc.MaxUses < 1 {
		return models.ErrInvalidDiscountCode
	}
	return nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
