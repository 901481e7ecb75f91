package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/clinsight/biomed-admin-api/internal/models"
	appErrors "github.com/clinsight/biomed-admin-api/pkg/errors"
)

type equipmentRepository interface {
	List(ctx context.Context) ([]models.Equipment, error)
	GetBySerial(ctx context.Context, serial string) (*models.Equipment, error)
}

// EquipmentService serves the biomedical equipment roster.
type EquipmentService struct {
	repo   equipmentRepository
	logger *zap.Logger
}

// NewEquipmentService constructs an EquipmentService.
func NewEquipmentService(repo equipmentRepository, logger *zap.Logger) *EquipmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EquipmentService{repo: repo, logger: logger}
}

// List returns the full roster, newest first.
func (s *EquipmentService) List(ctx context.Context) ([]models.Equipment, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to query equipment")
	}
	if items == nil {
		items = []models.Equipment{}
	}
	return items, nil
}

// GetBySerial looks up one device. A serial with no match returns (nil, nil)
// rather than an error; the caller renders that as a null payload.
func (s *EquipmentService) GetBySerial(ctx context.Context, serial string) (*models.Equipment, error) {
	item, err := s.repo.GetBySerial(ctx, serial)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to query equipment")
	}
	return item, nil
}
