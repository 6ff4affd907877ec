package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dharmasatrya/tripbuilder/internal/models"
)

// --- Hotel Operations ---

const hotelColumns = `id, name, city, single, single_view, double_no_view, double_view,
	triple_no_view, triple_view, rating, active`

func scanHotel(row pgx.Row) (models.HotelRecord, error) {
	var (
		h      models.HotelRecord
		prices [6]*float64
	)
	err := row.Scan(
		&h.ID, &h.Name, &h.City,
		&prices[0], &prices[1], &prices[2], &prices[3], &prices[4], &prices[5],
		&h.Rating, &h.Active,
	)
	if err != nil {
		return h, err
	}
	h.Prices = make(map[models.RoomType]*float64, len(prices))
	for i, rt := range models.RoomTypes() {
		h.Prices[rt] = prices[i]
	}
	return h, nil
}

func hotelPrices(h *models.HotelRecord) []any {
	out := make([]any, 0, 6)
	for _, rt := range models.RoomTypes() {
		out = append(out, h.Prices[rt])
	}
	return out
}

func (r *Repository) ListHotels(ctx context.Context, includeInactive bool) ([]models.HotelRecord, error) {
	query := `SELECT ` + hotelColumns + ` FROM hotels WHERE active OR $1 ORDER BY city, name`

	rows, err := r.pool.Query(ctx, query, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to query hotels: %w", err)
	}
	defer rows.Close()

	var hotels []models.HotelRecord
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hotel: %w", err)
		}
		hotels = append(hotels, h)
	}
	return hotels, rows.Err()
}

func (r *Repository) CreateHotel(ctx context.Context, h *models.HotelRecord) error {
	h.ID = newID(h.ID)
	args := append([]any{h.ID, h.Name, h.City}, hotelPrices(h)...)
	args = append(args, h.Rating, h.Active)

	_, err := r.pool.Exec(ctx, `
		INSERT INTO hotels (`+hotelColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, args...)
	if err != nil {
		return mapError("create hotel", err)
	}
	return nil
}

func (r *Repository) UpdateHotel(ctx context.Context, h *models.HotelRecord) error {
	args := append([]any{h.ID, h.Name, h.City}, hotelPrices(h)...)
	args = append(args, h.Rating, h.Active)

	tag, err := r.pool.Exec(ctx, `
		UPDATE hotels
		SET name = $2, city = $3, single = $4, single_view = $5, double_no_view = $6,
		    double_view = $7, triple_no_view = $8, triple_view = $9, rating = $10, active = $11
		WHERE id = $1
	`, args...)
	if err != nil {
		return mapError("update hotel", err)
	}
	return requireRow(tag)
}

func (r *Repository) DeactivateHotel(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE hotels SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate hotel: %w", err)
	}
	return requireRow(tag)
}

// --- Transport Operations ---

const transportColumns = `id, type, capacity, min_passengers, max_passengers, tour_price,
	reception_same_city, reception_different_city, farewell_same_city, farewell_different_city, active`

func transportArgs(t *models.TransportClass) []any {
	return []any{
		t.ID, t.Type, t.Capacity, t.MinPassengers, t.MaxPassengers, t.TourPrice,
		t.ReceptionSameCity, t.ReceptionDifferentCity, t.FarewellSameCity, t.FarewellDifferentCity, t.Active,
	}
}

func (r *Repository) ListTransportClasses(ctx context.Context, includeInactive bool) ([]models.TransportClass, error) {
	query := `SELECT ` + transportColumns + ` FROM transport_classes WHERE active OR $1 ORDER BY min_passengers, type`

	rows, err := r.pool.Query(ctx, query, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to query transport classes: %w", err)
	}
	defer rows.Close()

	var classes []models.TransportClass
	for rows.Next() {
		var t models.TransportClass
		err := rows.Scan(
			&t.ID, &t.Type, &t.Capacity, &t.MinPassengers, &t.MaxPassengers, &t.TourPrice,
			&t.ReceptionSameCity, &t.ReceptionDifferentCity, &t.FarewellSameCity, &t.FarewellDifferentCity, &t.Active,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transport class: %w", err)
		}
		classes = append(classes, t)
	}
	return classes, rows.Err()
}

func (r *Repository) CreateTransportClass(ctx context.Context, t *models.TransportClass) error {
	t.ID = newID(t.ID)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO transport_classes (`+transportColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, transportArgs(t)...)
	if err != nil {
		return mapError("create transport class", err)
	}
	return nil
}

func (r *Repository) UpdateTransportClass(ctx context.Context, t *models.TransportClass) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE transport_classes
		SET type = $2, capacity = $3, min_passengers = $4, max_passengers = $5, tour_price = $6,
		    reception_same_city = $7, reception_different_city = $8,
		    farewell_same_city = $9, farewell_different_city = $10, active = $11
		WHERE id = $1
	`, transportArgs(t)...)
	if err != nil {
		return mapError("update transport class", err)
	}
	return requireRow(tag)
}

func (r *Repository) DeactivateTransportClass(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE transport_classes SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate transport class: %w", err)
	}
	return requireRow(tag)
}

// --- Service Operations ---

func (r *Repository) ListServices(ctx context.Context, includeInactive bool) ([]models.ServicePrice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, code, name, unit, price, active
		FROM service_prices
		WHERE active OR $1
		ORDER BY code
	`, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to query services: %w", err)
	}
	defer rows.Close()

	var services []models.ServicePrice
	for rows.Next() {
		var sp models.ServicePrice
		if err := rows.Scan(&sp.ID, &sp.Code, &sp.Name, &sp.Unit, &sp.Price, &sp.Active); err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, sp)
	}
	return services, rows.Err()
}

func (r *Repository) CreateService(ctx context.Context, sp *models.ServicePrice) error {
	sp.ID = newID(sp.ID)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO service_prices (id, code, name, unit, price, active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, sp.ID, sp.Code, sp.Name, sp.Unit, sp.Price, sp.Active)
	if err != nil {
		return mapError("create service", err)
	}
	return nil
}

func (r *Repository) UpdateService(ctx context.Context, sp *models.ServicePrice) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE service_prices
		SET code = $2, name = $3, unit = $4, price = $5, active = $6
		WHERE id = $1
	`, sp.ID, sp.Code, sp.Name, sp.Unit, sp.Price, sp.Active)
	if err != nil {
		return mapError("update service", err)
	}
	return requireRow(tag)
}

func (r *Repository) DeactivateService(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE service_prices SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate service: %w", err)
	}
	return requireRow(tag)
}
