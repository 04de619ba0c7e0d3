package store

import (
	"context"

	"barbershop/internal/models"
)

type ServiceStore struct {
	db DB
}

func NewServiceStore(db DB) *ServiceStore {
	return &ServiceStore{db: db}
}

// GetActive looks up an active catalog service; inactive services are not
// bookable and report as absent.
func (s *ServiceStore) GetActive(ctx context.Context, serviceID string) (models.Service, error) {
	var row models.Service
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, description, price, duration_minutes, active, created_at
		FROM services
		WHERE id = $1 AND active = TRUE
	`, serviceID)
	if err != nil {
		return models.Service{}, err
	}
	return row, nil
}

func (s *ServiceStore) ListActive(ctx context.Context) ([]models.Service, error) {
	var rows []models.Service
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, description, price, duration_minutes, active, created_at
		FROM services
		WHERE active = TRUE
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
