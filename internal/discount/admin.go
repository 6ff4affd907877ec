package discount

import (
	"context"

	"github.com/dharmasatrya/tripbuilder/internal/models"
)

type AdminStore interface {
	ListDiscounts(ctx context.Context) ([]models.DiscountCode, error)
	CreateDiscount(ctx context.Context, dc *models.DiscountCode) error
	UpdateDiscount(ctx context.Context, dc *models.DiscountCode) error
	DeleteDiscount(ctx context.Context, id string) error
}

// Manager is the admin side of discount codes. Expiry and usage caps are
// only checked when a code is applied, never here.
type Manager struct {
	store AdminStore
}

func NewManager(store AdminStore) *Manager {
	return &Manager{store: store}
}

func (m *Manager) List(ctx context.Context) ([]models.DiscountCode, error) {
	return m.store.ListDiscounts(ctx)
}

func (m *Manager) Create(ctx context.Context, dc *models.DiscountCode) error {
	if err := Validate(dc); err != nil {
		return err
	}
	dc.UsedCount = 0
	return m.store.CreateDiscount(ctx, dc)
}

func (m *Manager) Update(ctx context.Context, dc *models.DiscountCode) error {
	if err := Validate(dc); err != nil {
		return err
	}
	return m.store.UpdateDiscount(ctx, dc)
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.store.DeleteDiscount(ctx, id)
}
