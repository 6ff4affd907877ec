package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dharmasatrya/tripbuilder/internal/booking"
	"github.com/dharmasatrya/tripbuilder/internal/models"
	"github.com/dharmasatrya/tripbuilder/internal/storage"
)

const bookingColumns = `id, reference, customer_name, customer_email, customer_phone, nationality, notes,
	adults, children, selected_cities, additional_services, arrival_airport, departure_airport,
	arrival_date, departure_date, room_count, car_type, currency, budget, discount_code,
	quote, total_cost, status, created_at, updated_at`

func scanBooking(row pgx.Row) (booking.StoredBooking, error) {
	var (
		b                                 booking.StoredBooking
		children, cities, services, quote []byte
	)
	err := row.Scan(
		&b.ID, &b.Reference, &b.CustomerName, &b.CustomerEmail, &b.CustomerPhone, &b.Nationality, &b.Notes,
		&b.Adults, &children, &cities, &services, &b.ArrivalAirport, &b.DepartureAirport,
		&b.ArrivalDate, &b.DepartureDate, &b.RoomCount, &b.CarType, &b.Currency, &b.Budget, &b.DiscountCode,
		&quote, &b.TotalCost, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	b.Children = children
	b.SelectedCities = cities
	b.AdditionalServices = services
	b.Quote = quote
	return b, err
}

// CreateBooking inserts the booking and its documents. With a discount id
// the code's counter is bumped by a conditional update in the same
// transaction, so a code can never be used past its cap.
func (r *Repository) CreateBooking(ctx context.Context, b *booking.StoredBooking, discountID string, now time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if discountID != "" {
		tag, err := tx.Exec(ctx, `
			UPDATE discount_codes
			SET used_count = used_count + 1
			WHERE id = $1
			  AND active
			  AND (expires_at IS NULL OR expires_at > $2)
			  AND (max_uses IS NULL OR used_count < max_uses)
		`, discountID, now)
		if err != nil {
			return fmt.Errorf("failed to consume discount code: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return storage.ErrDiscountExhausted
		}
	}

	b.ID = newID(b.ID)
	b.CreatedAt = now
	b.UpdatedAt = now
	_, err = tx.Exec(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
		        $21, $22, $23, $24, $25)
	`,
		b.ID, b.Reference, b.CustomerName, b.CustomerEmail, b.CustomerPhone, b.Nationality, b.Notes,
		b.Adults, string(b.Children), string(b.SelectedCities), string(b.AdditionalServices),
		b.ArrivalAirport, b.DepartureAirport, b.ArrivalDate, b.DepartureDate, b.RoomCount, b.CarType,
		b.Currency, b.Budget, b.DiscountCode, string(b.Quote), b.TotalCost, b.Status, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return mapError("create booking", err)
	}

	for _, d := range b.Documents {
		_, err := tx.Exec(ctx, `
			INSERT INTO booking_documents (id, booking_id, kind, url, file_name, content_type, size)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, d.ID, b.ID, d.Kind, d.URL, d.FileName, d.ContentType, d.Size)
		if err != nil {
			return mapError("attach document", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *Repository) GetBooking(ctx context.Context, id string) (*booking.StoredBooking, error) {
	return r.getBooking(ctx, `id = $1`, id)
}

func (r *Repository) GetBookingByReference(ctx context.Context, ref string) (*booking.StoredBooking, error) {
	return r.getBooking(ctx, `reference = $1`, ref)
}

func (r *Repository) getBooking(ctx context.Context, where string, arg string) (*booking.StoredBooking, error) {
	b, err := scanBooking(r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	docs, err := r.documents(ctx, []string{b.ID})
	if err != nil {
		return nil, err
	}
	b.Documents = docs[b.ID]
	return &b, nil
}

func (r *Repository) ListBookings(ctx context.Context, filter models.BookingFilter) ([]booking.StoredBooking, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if filter.Status != "" {
		add("status = ?", filter.Status)
	}
	if filter.From != nil {
		add("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		add("created_at < ?", *filter.To)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		add("(reference ILIKE ? OR customer_name ILIKE ? OR customer_email ILIKE ? OR customer_phone ILIKE ?)", "%"+q+"%")
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var (
		bookings []booking.StoredBooking
		ids      []string
	)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
		ids = append(ids, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bookings: %w", err)
	}
	if len(ids) == 0 {
		return bookings, nil
	}

	docs, err := r.documents(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		bookings[i].Documents = docs[bookings[i].ID]
	}
	return bookings, nil
}

func (r *Repository) documents(ctx context.Context, bookingIDs []string) (map[string][]models.Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT booking_id, id, kind, url, file_name, content_type, size
		FROM booking_documents
		WHERE booking_id = ANY($1)
		ORDER BY id
	`, bookingIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.Document)
	for rows.Next() {
		var (
			bookingID string
			d         models.Document
		)
		if err := rows.Scan(&bookingID, &d.ID, &d.Kind, &d.URL, &d.FileName, &d.ContentType, &d.Size); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		out[bookingID] = append(out[bookingID], d)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return requireRow(tag)
}

// DeleteBooking removes the booking; its document rows go with it through
// the foreign key cascade.
func (r *Repository) DeleteBooking(ctx context.Context, id string) ([]models.Document, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT id, kind, url, file_name, content_type, size
		FROM booking_documents WHERE booking_id = $1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	var docs []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.Kind, &d.URL, &d.FileName, &d.ContentType, &d.Size); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete booking: %w", err)
	}
	if err := requireRow(tag); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return docs, nil
}
