package catalog

import (
	"strings"
	"time"

	"github.com/dharmasatrya/tripbuilder/internal/models"
)

// Snapshot is an immutable view of the active price lists. Build it with
// NewSnapshot so the lookup indexes are populated.
type Snapshot struct {
	Hotels    []models.HotelRecord    `json:"hotels"`
	Transport []models.TransportClass `json:"transport"`
	Services  []models.ServicePrice   `json:"services"`
	LoadedAt  time.Time               `json:"loaded_at"`

	hotelByID     map[string]models.HotelRecord
	transportByTy map[string]models.TransportClass
	serviceByCode map[models.ServiceCode]models.ServicePrice
}

func NewSnapshot(hotels []models.HotelRecord, transport []models.TransportClass, services []models.ServicePrice, loadedAt time.Time) *Snapshot {
	s := &Snapshot{
		Hotels:    hotels,
		Transport: transport,
		Services:  services,
		LoadedAt:  loadedAt,
	}
	s.index()
	return s
}

func (s *Snapshot) index() {
	s.hotelByID = make(map[string]models.HotelRecord, len(s.Hotels))
	for _, h := range s.Hotels {
		s.hotelByID[h.ID] = h
	}
	s.transportByTy = make(map[string]models.TransportClass, len(s.Transport))
	for _, t := range s.Transport {
		s.transportByTy[strings.ToLower(t.Type)] = t
	}
	s.serviceByCode = make(map[models.ServiceCode]models.ServicePrice, len(s.Services))
	for _, sp := range s.Services {
		s.serviceByCode[sp.Code] = sp
	}
}

func (s *Snapshot) Hotel(id string) (models.HotelRecord, bool) {
	h, ok := s.hotelByID[id]
	if !ok || !h.Active {
		return models.HotelRecord{}, false
	}
	return h, true
}

func (s *Snapshot) TransportClass(carType string) (models.TransportClass, bool) {
	t, ok := s.transportByTy[strings.ToLower(strings.TrimSpace(carType))]
	if !ok || !t.Active {
		return models.TransportClass{}, false
	}
	return t, true
}

func (s *Snapshot) Service(code models.ServiceCode) (models.ServicePrice, bool) {
	sp, ok := s.serviceByCode[code]
	if !ok || !sp.Active {
		return models.ServicePrice{}, false
	}
	return sp, true
}

// HotelsIn lists active hotels of a city. An empty city lists all of them.
func (s *Snapshot) HotelsIn(city string) []models.HotelRecord {
	out := make([]models.HotelRecord, 0)
	for _, h := range s.Hotels {
		if !h.Active {
			continue
		}
		if city != "" && !models.SameCity(h.City, city) {
			continue
		}
		out = append(out, h)
	}
	return out
}

// Cities lists the distinct cities that have at least one active hotel.
func (s *Snapshot) Cities() []string {
	seen := make(map[string]bool)
	var out []string
	for _, h := range s.Hotels {
		key := strings.ToLower(h.City)
		if !h.Active || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, h.City)
	}
	return out
}

// TransportFor lists the active classes whose capacity band fits passengers.
func (s *Snapshot) TransportFor(passengers int) []models.TransportClass {
	var out []models.TransportClass
	for _, t := range s.Transport {
		if t.Active && t.Fits(passengers) {
			out = append(out, t)
		}
	}
	return out
}
