package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/clinsight/biomed-admin-api/internal/models"
)

const equipmentColumns = "id, nombre, marca, modelo, numero_serie, ubicacion, ciudad, clase_riesgo, estado, imagen_url, created_at"

// EquipmentRepository serves the biomedical equipment roster.
type EquipmentRepository struct {
	db *sqlx.DB
}

// NewEquipmentRepository constructs the repository.
func NewEquipmentRepository(db *sqlx.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

// List returns the full roster, newest first.
func (r *EquipmentRepository) List(ctx context.Context) ([]models.Equipment, error) {
	query := "SELECT " + equipmentColumns + " FROM equipos_biomedicos ORDER BY created_at DESC"
	var items []models.Equipment
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("query equipment roster: %w", err)
	}
	return items, nil
}

// GetBySerial fetches one device by its serial number.
func (r *EquipmentRepository) GetBySerial(ctx context.Context, serial string) (*models.Equipment, error) {
	query := "SELECT " + equipmentColumns + " FROM equipos_biomedicos WHERE numero_serie = $1"
	var item models.Equipment
	if err := r.db.GetContext(ctx, &item, query, serial); err != nil {
		return nil, fmt.Errorf("query equipment by serial: %w", err)
	}
	return &item, nil
}
