// Package memory is the single-process store used when no database is
// configured. It implements every repository the services need.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dharmasatrya/tripbuilder/internal/booking"
	"github.com/dharmasatrya/tripbuilder/internal/models"
	"github.com/dharmasatrya/tripbuilder/internal/storage"
)

type Store struct {
	mu        sync.RWMutex
	hotels    map[string]models.HotelRecord
	transport map[string]models.TransportClass
	services  map[string]models.ServicePrice
	discounts map[string]models.DiscountCode
	bookings  map[string]booking.StoredBooking
	now       func() time.Time
}

func New() *Store {
	return &Store{
		hotels:    make(map[string]models.HotelRecord),
		transport: make(map[string]models.TransportClass),
		services:  make(map[string]models.ServicePrice),
		discounts: make(map[string]models.DiscountCode),
		bookings:  make(map[string]booking.StoredBooking),
		now:       time.Now,
	}
}

func newID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// Hotels

func (s *Store) ListHotels(ctx context.Context, includeInactive bool) ([]models.HotelRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.HotelRecord, 0, len(s.hotels))
	for _, h := range s.hotels {
		if h.Active || includeInactive {
			out = append(out, copyHotel(h))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].City != out[j].City {
			return out[i].City < out[j].City
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) CreateHotel(ctx context.Context, h *models.HotelRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h.ID = newID(h.ID)
	if _, exists := s.hotels[h.ID]; exists {
		return storage.ErrDuplicate
	}
	s.hotels[h.ID] = copyHotel(*h)
	return nil
}

func (s *Store) UpdateHotel(ctx context.Context, h *models.HotelRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.hotels[h.ID]; !exists {
		return storage.ErrNotFound
	}
	s.hotels[h.ID] = copyHotel(*h)
	return nil
}

func (s *Store) DeactivateHotel(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, exists := s.hotels[id]
	if !exists {
		return storage.ErrNotFound
	}
	h.Active = false
	s.hotels[id] = h
	return nil
}

func copyHotel(h models.HotelRecord) models.HotelRecord {
	prices := make(map[models.RoomType]*float64, len(h.Prices))
	for rt, p := range h.Prices {
		if p != nil {
			v := *p
			prices[rt] = &v
		} else {
			prices[rt] = nil
		}
	}
	h.Prices = prices
	return h
}

// Transport classes

func (s *Store) ListTransportClasses(ctx context.Context, includeInactive bool) ([]models.TransportClass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.TransportClass, 0, len(s.transport))
	for _, t := range s.transport {
		if t.Active || includeInactive {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MinPassengers != out[j].MinPassengers {
			return out[i].MinPassengers < out[j].MinPassengers
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}

func (s *Store) CreateTransportClass(ctx context.Context, t *models.TransportClass) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = newID(t.ID)
	for _, existing := range s.transport {
		if strings.EqualFold(existing.Type, t.Type) {
			return storage.ErrDuplicate
		}
	}
	s.transport[t.ID] = *t
	return nil
}

func (s *Store) UpdateTransportClass(ctx context.Context, t *models.TransportClass) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transport[t.ID]; !exists {
		return storage.ErrNotFound
	}
	s.transport[t.ID] = *t
	return nil
}

func (s *Store) DeactivateTransportClass(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.transport[id]
	if !exists {
		return storage.ErrNotFound
	}
	t.Active = false
	s.transport[id] = t
	return nil
}

// Services

func (s *Store) ListServices(ctx context.Context, includeInactive bool) ([]models.ServicePrice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ServicePrice, 0, len(s.services))
	for _, sp := range s.services {
		if sp.Active || includeInactive {
			out = append(out, sp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *Store) CreateService(ctx context.Context, sp *models.ServicePrice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp.ID = newID(sp.ID)
	for _, existing := range s.services {
		if existing.Code == sp.Code {
			return storage.ErrDuplicate
		}
	}
	s.services[sp.ID] = *sp
	return nil
}

func (s *Store) UpdateService(ctx context.Context, sp *models.ServicePrice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.services[sp.ID]; !exists {
		return storage.ErrNotFound
	}
	s.services[sp.ID] = *sp
	return nil
}

func (s *Store) DeactivateService(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, exists := s.services[id]
	if !exists {
		return storage.ErrNotFound
	}
	sp.Active = false
	s.services[id] = sp
	return nil
}

// Discount codes

func (s *Store) FindDiscountByCode(ctx context.Context, code string) (*models.DiscountCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	code = models.NormalizeCode(code)
	for _, dc := range s.discounts {
		if dc.Code == code {
			out := copyDiscount(dc)
			return &out, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) ListDiscounts(ctx context.Context) ([]models.DiscountCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.DiscountCode, 0, len(s.discounts))
	for _, dc := range s.discounts {
		out = append(out, copyDiscount(dc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *Store) CreateDiscount(ctx context.Context, dc *models.DiscountCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dc.ID = newID(dc.ID)
	for _, existing := range s.discounts {
		if existing.Code == dc.Code {
			return storage.ErrDuplicate
		}
	}
	if dc.CreatedAt.IsZero() {
		dc.CreatedAt = s.now()
	}
	s.discounts[dc.ID] = copyDiscount(*dc)
	return nil
}

// UpdateDiscount replaces the editable fields. The use counter is owned by
// booking creation and is left as stored.
func (s *Store) UpdateDiscount(ctx context.Context, dc *models.DiscountCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.discounts[dc.ID]
	if !exists {
		return storage.ErrNotFound
	}
	for id, other := range s.discounts {
		if id != dc.ID && other.Code == dc.Code {
			return storage.ErrDuplicate
		}
	}
	dc.UsedCount = existing.UsedCount
	dc.CreatedAt = existing.CreatedAt
	s.discounts[dc.ID] = copyDiscount(*dc)
	return nil
}

func (s *Store) DeleteDiscount(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.discounts[id]; !exists {
		return storage.ErrNotFound
	}
	delete(s.discounts, id)
	return nil
}

func copyDiscount(dc models.DiscountCode) models.DiscountCode {
	if dc.ExpiresAt != nil {
		t := *dc.ExpiresAt
		dc.ExpiresAt = &t
	}
	if dc.MaxUses != nil {
		n := *dc.MaxUses
		dc.MaxUses = &n
	}
	return dc
}

// Bookings

func (s *Store) CreateBooking(ctx context.Context, b *booking.StoredBooking, discountID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b.ID = newID(b.ID)
	for _, existing := range s.bookings {
		if existing.Reference == b.Reference || existing.ID == b.ID {
			return storage.ErrDuplicate
		}
	}

	if discountID != "" {
		dc, exists := s.discounts[discountID]
		if !exists || !dc.Active || dc.Expired(now) || dc.Exhausted() {
			return storage.ErrDiscountExhausted
		}
		dc.UsedCount++
		s.discounts[discountID] = dc
	}

	b.CreatedAt = now
	b.UpdatedAt = now
	s.bookings[b.ID] = copyBooking(*b)
	return nil
}

func (s *Store) GetBooking(ctx context.Context, id string) (*booking.StoredBooking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, exists := s.bookings[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	out := copyBooking(b)
	return &out, nil
}

func (s *Store) GetBookingByReference(ctx context.Context, ref string) (*booking.StoredBooking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.bookings {
		if b.Reference == ref {
			out := copyBooking(b)
			return &out, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) ListBookings(ctx context.Context, filter models.BookingFilter) ([]booking.StoredBooking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	out := make([]booking.StoredBooking, 0, len(s.bookings))
	for _, b := range s.bookings {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.From != nil && b.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !b.CreatedAt.Before(*filter.To) {
			continue
		}
		if query != "" && !matchesQuery(b, query) {
			continue
		}
		out = append(out, copyBooking(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func matchesQuery(b booking.StoredBooking, query string) bool {
	for _, field := range []string{b.Reference, b.CustomerName, b.CustomerEmail, b.CustomerPhone} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func (s *Store) UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, exists := s.bookings[id]
	if !exists {
		return storage.ErrNotFound
	}
	b.Status = status
	b.UpdatedAt = s.now()
	s.bookings[id] = b
	return nil
}

func (s *Store) DeleteBooking(ctx context.Context, id string) ([]models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, exists := s.bookings[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	delete(s.bookings, id)
	return b.Documents, nil
}

func copyBooking(b booking.StoredBooking) booking.StoredBooking {
	b.Children = append(json.RawMessage(nil), b.Children...)
	b.SelectedCities = append(json.RawMessage(nil), b.SelectedCities...)
	b.AdditionalServices = append(json.RawMessage(nil), b.AdditionalServices...)
	b.Quote = append(json.RawMessage(nil), b.Quote...)
	b.Documents = append([]models.Document(nil), b.Documents...)
	return b
}
