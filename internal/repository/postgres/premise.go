package postgres

import (
	"context"

	"github.com/waterbills/waterbills/internal/domain/premise"
	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/logger"
	"github.com/waterbills/waterbills/internal/postgres"
	"github.com/waterbills/waterbills/internal/types"
)

type premiseRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

// NewPremiseRepository creates a postgres backed premise repository
func NewPremiseRepository(client postgres.IClient, log *logger.Logger) premise.Repository {
	return &premiseRepository{client: client, log: log}
}

func (r *premiseRepository) Create(ctx context.Context, p *premise.Premise) error {
	r.log.Debugw("creating premise", "premise_id", p.ID, "building_id", p.BuildingID, "unit_no", p.UnitNo)
	if err := r.client.Querier(ctx).Create(premiseToRow(p)).Error; err != nil {
		return translateErr(err, "premise")
	}
	return nil
}

func (r *premiseRepository) Get(ctx context.Context, id string) (*premise.Premise, error) {
	var row premiseRow
	err := r.client.Querier(ctx).
		Where("id = ? AND status = ?", id, types.StatusPublished).
		First(&row).Error
	if err != nil {
		return nil, translateErr(err, "premise")
	}
	return premiseFromRow(&row), nil
}

func (r *premiseRepository) Update(ctx context.Context, p *premise.Premise) error {
	result := r.client.Querier(ctx).
		Where("id = ?", p.ID).
		Save(premiseToRow(p))
	if result.Error != nil {
		return translateErr(result.Error, "premise")
	}
	if result.RowsAffected == 0 {
		return ierr.NewError("premise not found").
			WithHint("Premise not found").
			WithReportableDetails(map[string]any{"premise_id": p.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *premiseRepository) ListByBuilding(ctx context.Context, buildingID string) ([]*premise.Premise, error) {
	var rows []*premiseRow
	err := r.client.Querier(ctx).
		Where("building_id = ? AND status = ?", buildingID, types.StatusPublished).
		Order("unit_no ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translateErr(err, "premise")
	}

	premises := make([]*premise.Premise, len(rows))
	for i, row := range rows {
		premises[i] = premiseFromRow(row)
	}
	return premises, nil
}
