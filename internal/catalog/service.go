package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dharmasatrya/tripbuilder/internal/cache"
	"github.com/dharmasatrya/tripbuilder/internal/models"
)

const snapshotKey = "catalog:snapshot"

type Repository interface {
	ListHotels(ctx context.Context, includeInactive bool) ([]models.HotelRecord, error)
	CreateHotel(ctx context.Context, h *models.HotelRecord) error
	UpdateHotel(ctx context.Context, h *models.HotelRecord) error
	DeactivateHotel(ctx context.Context, id string) error

	ListTransportClasses(ctx context.Context, includeInactive bool) ([]models.TransportClass, error)
	CreateTransportClass(ctx context.Context, t *models.TransportClass) error
	UpdateTransportClass(ctx context.Context, t *models.TransportClass) error
	DeactivateTransportClass(ctx context.Context, id string) error

	ListServices(ctx context.Context, includeInactive bool) ([]models.ServicePrice, error)
	CreateService(ctx context.Context, s *models.ServicePrice) error
	UpdateService(ctx context.Context, s *models.ServicePrice) error
	DeactivateService(ctx context.Context, id string) error
}

// Service is the read-mostly catalog. Reads go through the cache; every
// admin write invalidates it.
type Service struct {
	repo  Repository
	cache cache.Cache
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewService(repo Repository, c cache.Cache, log logrus.FieldLogger) *Service {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	return &Service{
		repo:  repo,
		cache: c,
		log:   log,
		now:   time.Now,
	}
}

func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	var cached Snapshot
	if s.cache.Get(ctx, snapshotKey, &cached) {
		cached.index()
		return &cached, nil
	}
	return s.Refresh(ctx)
}

// Refresh reloads the active price lists and stores them in the cache.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	hotels, err := s.repo.ListHotels(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load hotels: %w", err)
	}
	transport, err := s.repo.ListTransportClasses(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load transport classes: %w", err)
	}
	services, err := s.repo.ListServices(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load services: %w", err)
	}

	snap := NewSnapshot(hotels, transport, services, s.now())
	if err := s.cache.Set(ctx, snapshotKey, snap); err != nil {
		s.log.WithError(err).Warn("failed to cache catalog snapshot")
	}
	return snap, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, snapshotKey); err != nil {
		s.log.WithError(err).Warn("failed to invalidate catalog snapshot")
	}
}

func (s *Service) ListHotels(ctx context.Context) ([]models.HotelRecord, error) {
	return s.repo.ListHotels(ctx, true)
}

func (s *Service) CreateHotel(ctx context.Context, h *models.HotelRecord) error {
	if err := validateHotel(h); err != nil {
		return err
	}
	if err := s.repo.CreateHotel(ctx, h); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) UpdateHotel(ctx context.Context, h *models.HotelRecord) error {
	if err := validateHotel(h); err != nil {
		return err
	}
	if err := s.repo.UpdateHotel(ctx, h); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) DeleteHotel(ctx context.Context, id string) error {
	if err := s.repo.DeactivateHotel(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) ListTransportClasses(ctx context.Context) ([]models.TransportClass, error) {
	return s.repo.ListTransportClasses(ctx, true)
}

func (s *Service) CreateTransportClass(ctx context.Context, t *models.TransportClass) error {
	if err := validateTransport(t); err != nil {
		return err
	}
	if err := s.repo.CreateTransportClass(ctx, t); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) UpdateTransportClass(ctx context.Context, t *models.TransportClass) error {
	if err := validateTransport(t); err != nil {
		return err
	}
	if err := s.repo.UpdateTransportClass(ctx, t); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) DeleteTransportClass(ctx context.Context, id string) error {
	if err := s.repo.DeactivateTransportClass(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) ListServices(ctx context.Context) ([]models.ServicePrice, error) {
	return s.repo.ListServices(ctx, true)
}

func (s *Service) CreateService(ctx context.Context, sp *models.ServicePrice) error {
	if err := validateService(sp); err != nil {
		return err
	}
	if err := s.repo.CreateService(ctx, sp); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) UpdateService(ctx context.Context, sp *models.ServicePrice) error {
	if err := validateService(sp); err != nil {
		return err
	}
	if err := s.repo.UpdateService(ctx, sp); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) DeleteService(ctx context.Context, id string) error {
	if err := s.repo.DeactivateService(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

type InvalidRecordError struct {
	Field  string
	Reason string
}

func (e *InvalidRecordError) Error() string {
	return e.Field + ": " + e.Reason
}

func validateHotel(h *models.HotelRecord) error {
	h.Name = strings.TrimSpace(h.Name)
	h.City = strings.TrimSpace(h.City)
	if h.Name == "" {
		return &InvalidRecordError{Field: "name", Reason: "required"}
	}
	if h.City == "" {
		return &InvalidRecordError{Field: "city", Reason: "required"}
	}
	for rt, p := range h.Prices {
		if !rt.Valid() {
			return &InvalidRecordError{Field: "prices", Reason: "unknown room type " + string(rt)}
		}
		if p != nil && *p < 0 {
			return &InvalidRecordError{Field: "prices." + string(rt), Reason: "must not be negative"}
		}
	}
	if h.Rating < 0 || h.Rating > 5 {
		return &InvalidRecordError{Field: "rating", Reason: "must be between 0 and 5"}
	}
	return nil
}

func validateTransport(t *models.TransportClass) error {
	t.Type = strings.TrimSpace(t.Type)
	if t.Type == "" {
		return &InvalidRecordError{Field: "type", Reason: "required"}
	}
	fees := map[string]float64{
		"tour_price":               t.TourPrice,
		"reception_same_city":      t.ReceptionSameCity,
		"reception_different_city": t.ReceptionDifferentCity,
		"farewell_same_city":       t.FarewellSameCity,
		"farewell_different_city":  t.FarewellDifferentCity,
	}
	for field, v := range fees {
		if v < 0 {
			return &InvalidRecordError{Field: field, Reason: "must not be negative"}
		}
	}
	if t.MaxPassengers > 0 && t.MinPassengers > t.MaxPassengers {
		return &InvalidRecordError{Field: "min_passengers", Reason: "exceeds max_passengers"}
	}
	return nil
}

func validateService(sp *models.ServicePrice) error {
	if sp.Code == "" {
		return &InvalidRecordError{Field: "code", Reason: "required"}
	}
	switch sp.Unit {
	case models.UnitFlat, models.UnitPerUnit, models.UnitPerPerson, models.UnitPerPersonNight:
	default:
		return &InvalidRecordError{Field: "unit", Reason: "unknown pricing unit"}
	}
	if sp.Price < 0 {
		return &InvalidRecordError{Field: "price", Reason: "must not be negative"}
	}
	return nil
}
