package catalog_test

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/tripbuilder/internal/catalog"
	"github.com/dharmasatrya/tripbuilder/internal/models"
	"github.com/dharmasatrya/tripbuilder/internal/storage/memory"
)

// mapCache stores JSON like the redis cache does, so a hit goes through the
// same decode path.
type mapCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	hits    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]byte)}
}

func (c *mapCache) Get(ctx context.Context, key string, dest any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[key]
	if !ok || json.Unmarshal(data, dest) != nil {
		return false
	}
	c.hits++
	return true
}

func (c *mapCache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}

func (c *mapCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *mapCache) Close() error { return nil }

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func seeded(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New()
	wrote, err := catalog.Seed(context.Background(), store)
	require.NoError(t, err)
	require.True(t, wrote)
	return store
}

func TestSeed_SkipsNonEmptyStore(t *testing.T) {
	store := seeded(t)
	wrote, err := catalog.Seed(context.Background(), store)
	require.NoError(t, err)
	assert.False(t, wrote)

	hotels, err := store.ListHotels(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, hotels, len(catalog.SeedHotels()))
}

func TestService_SnapshotIsCachedAndIndexed(t *testing.T) {
	c := newMapCache()
	svc := catalog.NewService(seeded(t), c, quietLogger())
	ctx := context.Background()

	first, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, c.hits)

	second, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, c.hits)
	assert.Len(t, second.Hotels, len(first.Hotels))

	hotel, ok := second.Hotel("tbs-rooms")
	require.True(t, ok)
	p, ok := hotel.PriceFor(models.RoomDoubleView)
	require.True(t, ok)
	assert.Equal(t, 135.0, p)

	sedan, ok := second.TransportClass(" SEDAN ")
	require.True(t, ok)
	assert.Equal(t, 70.0, sedan.TourPrice)

	_, ok = second.Service(models.ServicePhotoSession)
	assert.True(t, ok)
}

func TestService_AdminChangesInvalidateSnapshot(t *testing.T) {
	c := newMapCache()
	svc := catalog.NewService(seeded(t), c, quietLogger())
	ctx := context.Background()

	_, err := svc.Snapshot(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteHotel(ctx, "gud-alpine"))
	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	_, ok := snap.Hotel("gud-alpine")
	assert.False(t, ok)
	assert.NotContains(t, snap.Cities(), "Gudauri")

	all, err := svc.ListHotels(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(catalog.SeedHotels()))
}

func TestService_RejectsInvalidRecords(t *testing.T) {
	svc := catalog.NewService(memory.New(), nil, quietLogger())
	ctx := context.Background()
	negative := -5.0

	tests := []struct {
		name  string
		call  func() error
		field string
	}{
		{name: "hotel without name", field: "name", call: func() error {
			return svc.CreateHotel(ctx, &models.HotelRecord{City: "Tbilisi"})
		}},
		{name: "hotel with unknown room type", field: "prices", call: func() error {
			return svc.CreateHotel(ctx, &models.HotelRecord{Name: "X", City: "Tbilisi", Prices: map[models.RoomType]*float64{"suite": nil}})
		}},
		{name: "hotel with negative price", field: "prices.single", call: func() error {
			return svc.CreateHotel(ctx, &models.HotelRecord{Name: "X", City: "Tbilisi", Prices: map[models.RoomType]*float64{models.RoomSingle: &negative}})
		}},
		{name: "transport with inverted band", field: "min_passengers", call: func() error {
			return svc.CreateTransportClass(ctx, &models.TransportClass{Type: "van", MinPassengers: 8, MaxPassengers: 4})
		}},
		{name: "service with unknown unit", field: "unit", call: func() error {
			return svc.CreateService(ctx, &models.ServicePrice{Code: models.ServicePhoneLines, Unit: "per_hour"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var recErr *catalog.InvalidRecordError
			require.ErrorAs(t, err, &recErr)
			assert.Equal(t, tt.field, recErr.Field)
		})
	}
}

func TestSnapshot_TransportFor(t *testing.T) {
	snap := catalog.NewSnapshot(nil, catalog.SeedTransport(), nil, time.Time{})

	tests := []struct {
		passengers int
		want       string
	}{
		{passengers: 2, want: "sedan"},
		{passengers: 5, want: "minivan"},
		{passengers: 12, want: "sprinter"},
	}
	for _, tt := range tests {
		got := snap.TransportFor(tt.passengers)
		require.Len(t, got, 1)
		assert.Equal(t, tt.want, got[0].Type)
	}
	assert.Empty(t, snap.TransportFor(30))
}
