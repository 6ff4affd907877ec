package booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dharmasatrya/tripbuilder/internal/catalog"
	"github.com/dharmasatrya/tripbuilder/internal/discount"
	"github.com/dharmasatrya/tripbuilder/internal/models"
	"github.com/dharmasatrya/tripbuilder/internal/pricing"
	"github.com/dharmasatrya/tripbuilder/internal/storage"
)

var (
	ErrDraftNotFound      = errors.New("draft not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrFinalizeInProgress = errors.New("draft is already being finalized")
)

const maxReferenceAttempts = 3

type Repository interface {
	// CreateBooking stores b. When discountID is set the code's use counter
	// is incremented in the same transaction, and storage.ErrDiscountExhausted
	// is returned (with nothing stored) if the code is no longer usable.
	CreateBooking(ctx context.Context, b *StoredBooking, discountID string, now time.Time) error
	GetBooking(ctx context.Context, id string) (*StoredBooking, error)
	GetBookingByReference(ctx context.Context, ref string) (*StoredBooking, error)
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]StoredBooking, error)
	UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error
	// DeleteBooking removes the booking and its document records and
	// returns the documents so their blobs can be removed.
	DeleteBooking(ctx context.Context, id string) ([]models.Document, error)
}

type DraftStore interface {
	Load(ctx context.Context, id string, dest any) error
	Save(ctx context.Context, id string, value any) error
	Delete(ctx context.Context, id string) error
}

type CatalogSource interface {
	Snapshot(ctx context.Context) (*catalog.Snapshot, error)
}

type BlobStore interface {
	Put(ctx context.Context, kind models.DocumentKind, fileName string, r io.Reader) (models.Document, error)
	Delete(ctx context.Context, id string) error
}

type Notifier interface {
	// BookingCreated fires notifications without waiting for delivery.
	BookingCreated(rec models.BookingRecord)
	DeepLink(rec models.BookingRecord) string
}

type Deps struct {
	Repo      Repository
	Drafts    DraftStore
	Catalog   CatalogSource
	Engine    *pricing.Engine
	Discounts *discount.Resolver
	Blobs     BlobStore
	Notifier  Notifier
	Log       logrus.FieldLogger
}

// Service assembles wizard drafts into priced bookings.
type Service struct {
	repo      Repository
	drafts    DraftStore
	catalog   CatalogSource
	engine    *pricing.Engine
	discounts *discount.Resolver
	blobs     BlobStore
	notifier  Notifier
	gate      *Gate
	log       logrus.FieldLogger
	now       func() time.Time

	finalizing sync.Map
}

func NewService(d Deps) *Service {
	return &Service{
		repo:      d.Repo,
		drafts:    d.Drafts,
		catalog:   d.Catalog,
		engine:    d.Engine,
		discounts: d.Discounts,
		blobs:     d.Blobs,
		notifier:  d.Notifier,
		gate:      NewGate(d.Engine.Rules()),
		log:       d.Log,
		now:       time.Now,
	}
}

func (s *Service) CreateDraft(ctx context.Context, p Patch) (Draft, error) {
	if err := p.Validate(); err != nil {
		return Draft{}, err
	}
	now := s.now()
	d := Merge(Draft{
		ID:        uuid.NewString(),
		Itinerary: models.Itinerary{RoomCount: 1, Currency: "USD"},
		Traveler:  models.Traveler{Adults: 1},
		CreatedAt: now,
	}, p, s.engine.Rules())
	d.UpdatedAt = now
	if err := s.drafts.Save(ctx, d.ID, d); err != nil {
		return Draft{}, fmt.Errorf("failed to save draft: %w", err)
	}
	return d, nil
}

func (s *Service) GetDraft(ctx context.Context, id string) (Draft, error) {
	var d Draft
	if err := s.drafts.Load(ctx, id, &d); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Draft{}, ErrDraftNotFound
		}
		return Draft{}, fmt.Errorf("failed to load draft: %w", err)
	}
	return d, nil
}

func (s *Service) UpdateDraft(ctx context.Context, id string, p Patch) (Draft, error) {
	if err := p.Validate(); err != nil {
		return Draft{}, err
	}
	d, err := s.GetDraft(ctx, id)
	if err != nil {
		return Draft{}, err
	}
	d = Merge(d, p, s.engine.Rules())
	d.UpdatedAt = s.now()
	if err := s.drafts.Save(ctx, d.ID, d); err != nil {
		return Draft{}, fmt.Errorf("failed to save draft: %w", err)
	}
	return d, nil
}

// Quote prices an itinerary without storing anything.
func (s *Service) Quote(ctx context.Context, it models.Itinerary, traveler models.Traveler) (models.QuoteResponse, error) {
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return models.QuoteResponse{}, err
	}
	it = s.engine.Rules().ApplyMandatoryTours(it)
	return models.QuoteResponse{
		Quote:     s.engine.Price(ctx, snap, it, traveler),
		Itinerary: it,
	}, nil
}

func (s *Service) QuoteDraft(ctx context.Context, id string) (models.QuoteResponse, error) {
	d, err := s.GetDraft(ctx, id)
	if err != nil {
		return models.QuoteResponse{}, err
	}
	return s.Quote(ctx, d.Itinerary, d.Traveler)
}

func (s *Service) CheckStep(ctx context.Context, id string, step Step) (models.StepCheckResponse, error) {
	d, err := s.GetDraft(ctx, id)
	if err != nil {
		return models.StepCheckResponse{}, err
	}
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return models.StepCheckResponse{}, err
	}
	warnings, err := s.gate.CheckStep(step, d, snap)
	if errors.Is(err, models.ErrUnknownStep) {
		return models.StepCheckResponse{}, err
	}
	resp := models.StepCheckResponse{Step: string(step), OK: err == nil, Warnings: warnings}
	if err != nil {
		resp.Reason = err.Error()
	}
	if step == StepTransport {
		resp.SuggestedTransport = snap.TransportFor(d.Traveler.Headcount())
	}
	return resp, nil
}

func (s *Service) AddDocument(ctx context.Context, id string, kind models.DocumentKind, fileName string, r io.Reader) (models.Document, error) {
	if !kind.Valid() {
		return models.Document{}, models.ValidationError("unknown document kind " + string(kind))
	}
	d, err := s.GetDraft(ctx, id)
	if err != nil {
		return models.Document{}, err
	}
	doc, err := s.blobs.Put(ctx, kind, fileName, r)
	if err != nil {
		return models.Document{}, err
	}
	d.Documents = append(d.Documents, doc)
	d.UpdatedAt = s.now()
	if err := s.drafts.Save(ctx, d.ID, d); err != nil {
		if delErr := s.blobs.Delete(ctx, doc.ID); delErr != nil {
			s.log.WithError(delErr).WithField("file_id", doc.ID).Warn("failed to remove orphaned upload")
		}
		return models.Document{}, fmt.Errorf("failed to save draft: %w", err)
	}
	return doc, nil
}

func (s *Service) RemoveDocument(ctx context.Context, id, docID string) error {
	d, err := s.GetDraft(ctx, id)
	if err != nil {
		return err
	}
	kept := d.Documents[:0:0]
	found := false
	for _, doc := range d.Documents {
		if doc.ID == docID {
			found = true
			continue
		}
		kept = append(kept, doc)
	}
	if !found {
		return ErrDocumentNotFound
	}
	if err := s.blobs.Delete(ctx, docID); err != nil {
		return err
	}
	d.Documents = kept
	d.UpdatedAt = s.now()
	return s.drafts.Save(ctx, d.ID, d)
}

// Finalize validates the draft, prices it, stores the booking and consumes
// the discount code exactly once. A code that was used up by another
// booking in the meantime is dropped and the booking is stored without it.
func (s *Service) Finalize(ctx context.Context, id string) (models.FinalizeResponse, error) {
	if _, busy := s.finalizing.LoadOrStore(id, struct{}{}); busy {
		return models.FinalizeResponse{}, ErrFinalizeInProgress
	}
	defer s.finalizing.Delete(id)

	d, err := s.GetDraft(ctx, id)
	if err != nil {
		return models.FinalizeResponse{}, err
	}
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return models.FinalizeResponse{}, err
	}
	if _, err := s.gate.ValidateFinal(d, snap); err != nil {
		return models.FinalizeResponse{}, err
	}

	it := s.engine.Rules().ApplyMandatoryTours(d.Itinerary)
	now := s.now()

	var code *models.DiscountCode
	fn := pricing.DiscountFunc(nil)
	if it.DiscountCode != "" {
		dc, reason := s.discounts.Lookup(ctx, it.DiscountCode)
		if reason == "" {
			code = dc
			fn = pricing.WithCode(*dc)
		} else {
			fn = rejected(it.DiscountCode, reason)
		}
	}
	quote := s.engine.PriceWith(snap, it, d.Traveler, fn)

	rec := models.BookingRecord{
		ID:        uuid.NewString(),
		Customer:  d.Customer,
		Traveler:  d.Traveler,
		Itinerary: it,
		Documents: d.Documents,
		Status:    models.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	discountID := ""
	if code != nil && quote.Discount != nil && quote.Discount.Applied() {
		discountID = code.ID
	}

	for attempt := 1; ; attempt++ {
		rec.Reference = NewReference(now)
		rec.Quote = quote
		rec.TotalCost = quote.Total
		rec.Currency = quote.Currency

		stored, err := EncodeRecord(rec)
		if err != nil {
			return models.FinalizeResponse{}, err
		}
		err = s.repo.CreateBooking(ctx, &stored, discountID, now)
		if err == nil {
			rec.CreatedAt = stored.CreatedAt
			rec.UpdatedAt = stored.UpdatedAt
			break
		}

		switch {
		case errors.Is(err, storage.ErrDiscountExhausted):
			s.log.WithField("code", it.DiscountCode).Info("discount code exhausted during finalize, booking without it")
			discountID = ""
			quote = s.engine.PriceWith(snap, it, d.Traveler, rejected(it.DiscountCode, discount.ReasonExhausted))
			quote.Warnings = append(quote.Warnings, models.Warning{
				Code:    models.WarnDiscountDropped,
				Message: "discount code " + it.DiscountCode + " was used up before the booking completed",
			})
		case errors.Is(err, storage.ErrDuplicate) && attempt < maxReferenceAttempts:
			continue
		default:
			return models.FinalizeResponse{}, fmt.Errorf("failed to create booking: %w", err)
		}
	}

	if err := s.drafts.Delete(ctx, id); err != nil {
		s.log.WithError(err).WithField("draft_id", id).Warn("failed to delete finalized draft")
	}

	s.log.WithFields(logrus.Fields{
		"reference": rec.Reference,
		"total":     rec.TotalCost,
		"discount":  quote.DiscountAmount,
	}).Info("booking created")

	resp := models.FinalizeResponse{Booking: rec}
	if s.notifier != nil {
		s.notifier.BookingCreated(rec)
		resp.WhatsAppLink = s.notifier.DeepLink(rec)
	}
	return resp, nil
}

func rejected(code, reason string) pricing.DiscountFunc {
	return func(float64, discount.LineItems) *models.DiscountResult {
		return &models.DiscountResult{Code: models.NormalizeCode(code), Reason: reason}
	}
}

func (s *Service) ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.BookingRecord, error) {
	rows, err := s.repo.ListBookings(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]models.BookingRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := DecodeRecord(row)
		if err != nil {
			return nil, fmt.Errorf("booking %s: %w", row.Reference, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// GetBooking accepts either the booking id or its reference number.
func (s *Service) GetBooking(ctx context.Context, idOrRef string) (models.BookingRecord, error) {
	var (
		row *StoredBooking
		err error
	)
	if ValidReference(strings.ToUpper(idOrRef)) {
		row, err = s.repo.GetBookingByReference(ctx, strings.ToUpper(idOrRef))
	} else {
		row, err = s.repo.GetBooking(ctx, idOrRef)
	}
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.BookingRecord{}, ErrBookingNotFound
		}
		return models.BookingRecord{}, err
	}
	return DecodeRecord(*row)
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error {
	if !status.Valid() {
		return models.ErrInvalidStatus
	}
	if err := s.repo.UpdateBookingStatus(ctx, id, status); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrBookingNotFound
		}
		return err
	}
	s.log.WithFields(logrus.Fields{"booking_id": id, "status": status}).Info("booking status updated")
	return nil
}

// DeleteBooking removes a booking together with its uploaded documents.
func (s *Service) DeleteBooking(ctx context.Context, id string) error {
	docs, err := s.repo.DeleteBooking(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrBookingNotFound
		}
		return err
	}
	for _, doc := range docs {
		if err := s.blobs.Delete(ctx, doc.ID); err != nil {
			s.log.WithError(err).WithField("file_id", doc.ID).Warn("failed to delete booking document")
		}
	}
	return nil
}
