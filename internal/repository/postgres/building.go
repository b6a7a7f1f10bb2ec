package postgres

import (
	"context"

	"github.com/waterbills/waterbills/internal/domain/building"
	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/logger"
	"github.com/waterbills/waterbills/internal/postgres"
	"github.com/waterbills/waterbills/internal/types"
)

type buildingRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

// NewBuildingRepository creates a postgres backed building repository
func NewBuildingRepository(client postgres.IClient, log *logger.Logger) building.Repository {
	return &buildingRepository{client: client, log: log}
}

func (r *buildingRepository) Create(ctx context.Context, b *building.Building) error {
	r.log.Debugw("creating building", "building_id", b.ID)
	if err := r.client.Querier(ctx).Create(buildingToRow(b)).Error; err != nil {
		return translateErr(err, "building")
	}
	return nil
}

func (r *buildingRepository) Get(ctx context.Context, id string) (*building.Building, error) {
	var row buildingRow
	err := r.client.Querier(ctx).
		Where("id = ? AND status = ?", id, types.StatusPublished).
		First(&row).Error
	if err != nil {
		return nil, translateErr(err, "building")
	}
	return buildingFromRow(&row), nil
}

func (r *buildingRepository) Update(ctx context.Context, b *building.Building) error {
	result := r.client.Querier(ctx).
		Where("id = ?", b.ID).
		Save(buildingToRow(b))
	if result.Error != nil {
		return translateErr(result.Error, "building")
	}
	if result.RowsAffected == 0 {
		return ierr.NewError("building not found").
			WithHint("Building not found").
			WithReportableDetails(map[string]any{"building_id": b.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *buildingRepository) List(ctx context.Context) ([]*building.Building, error) {
	var rows []*buildingRow
	err := r.client.Querier(ctx).
		Where("status = ?", types.StatusPublished).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translateErr(err, "building")
	}

	buildings := make([]*building.Building, len(rows))
	for i, row := range rows {
		buildings[i] = buildingFromRow(row)
	}
	return buildings, nil
}
