package postgres

import (
	"context"

	"github.com/waterbills/waterbills/internal/domain/settings"
	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/logger"
	"github.com/waterbills/waterbills/internal/postgres"
	"github.com/waterbills/waterbills/internal/types"
)

type settingsRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

// NewSettingsRepository creates a postgres backed settings repository
func NewSettingsRepository(client postgres.IClient, log *logger.Logger) settings.Repository {
	return &settingsRepository{client: client, log: log}
}

func (r *settingsRepository) Create(ctx context.Context, s *settings.Settings) error {
	r.log.Debugw("creating settings", "settings_id", s.ID, "building_id", s.BuildingID)
	if err := r.client.Querier(ctx).Create(settingsToRow(s)).Error; err != nil {
		return translateErr(err, "settings")
	}
	return nil
}

func (r *settingsRepository) GetByBuilding(ctx context.Context, buildingID string) (*settings.Settings, error) {
	var row settingsRow
	err := r.client.Querier(ctx).
		Where("building_id = ? AND status = ?", buildingID, types.StatusPublished).
		First(&row).Error
	if err != nil {
		return nil, translateErr(err, "settings")
	}
	return settingsFromRow(&row), nil
}

func (r *settingsRepository) Update(ctx context.Context, s *settings.Settings) error {
	result := r.client.Querier(ctx).
		Where("id = ?", s.ID).
		Save(settingsToRow(s))
	if result.Error != nil {
		return translateErr(result.Error, "settings")
	}
	if result.RowsAffected == 0 {
		return ierr.NewError("settings not found").
			WithHint("Settings not found").
			WithReportableDetails(map[string]any{"settings_id": s.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
