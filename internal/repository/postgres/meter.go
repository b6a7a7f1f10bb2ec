package postgres

import (
	"context"

	"github.com/waterbills/waterbills/internal/domain/meter"
	"github.com/waterbills/waterbills/internal/logger"
	"github.com/waterbills/waterbills/internal/postgres"
	"github.com/waterbills/waterbills/internal/types"
)

type meterRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

// NewMeterRepository creates a postgres backed meter repository
func NewMeterRepository(client postgres.IClient, log *logger.Logger) meter.Repository {
	return &meterRepository{client: client, log: log}
}

func (r *meterRepository) Create(ctx context.Context, m *meter.Meter) error {
	r.log.Debugw("creating meter", "meter_id", m.ID, "building_id", m.BuildingID, "meter_type", m.MeterType)
	if err := r.client.Querier(ctx).Create(meterToRow(m)).Error; err != nil {
		return translateErr(err, "meter")
	}
	return nil
}

func (r *meterRepository) Get(ctx context.Context, id string) (*meter.Meter, error) {
	var row meterRow
	err := r.client.Querier(ctx).
		Where("id = ? AND status = ?", id, types.StatusPublished).
		First(&row).Error
	if err != nil {
		return nil, translateErr(err, "meter")
	}
	return meterFromRow(&row), nil
}

func (r *meterRepository) ListByBuilding(ctx context.Context, buildingID string, meterType types.MeterType) ([]*meter.Meter, error) {
	var rows []*meterRow
	err := r.client.Querier(ctx).
		Where("building_id = ? AND meter_type = ? AND status = ?", buildingID, meterType, types.StatusPublished).
		Order("label ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translateErr(err, "meter")
	}

	meters := make([]*meter.Meter, len(rows))
	for i, row := range rows {
		meters[i] = meterFromRow(row)
	}
	return meters, nil
}

func (r *meterRepository) GetSubmeterByPremise(ctx context.Context, premiseID string) (*meter.Meter, error) {
	var row meterRow
	err := r.client.Querier(ctx).
		Where("premise_id = ? AND meter_type = ? AND status = ?", premiseID, types.MeterTypeSubmeter, types.StatusPublished).
		First(&row).Error
	if err != nil {
		return nil, translateErr(err, "meter")
	}
	return meterFromRow(&row), nil
}

type readingRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

// NewReadingRepository creates a postgres backed meter reading repository
func NewReadingRepository(client postgres.IClient, log *logger.Logger) meter.ReadingRepository {
	return &readingRepository{client: client, log: log}
}

func (r *readingRepository) Create(ctx context.Context, rd *meter.Reading) error {
	r.log.Debugw("creating meter reading",
		"reading_id", rd.ID,
		"meter_id", rd.MeterID,
		"period", rd.Period,
	)
	if err := r.client.Querier(ctx).Create(readingToRow(rd)).Error; err != nil {
		return translateErr(err, "meter reading")
	}
	return nil
}

func (r *readingRepository) Get(ctx context.Context, id string) (*meter.Reading, error) {
	var row readingRow
	err := r.client.Querier(ctx).
		Where("id = ? AND status = ?", id, types.StatusPublished).
		First(&row).Error
	if err != nil {
		return nil, translateErr(err, "meter reading")
	}
	return readingFromRow(&row), nil
}

func (r *readingRepository) GetByMeterAndPeriod(ctx context.Context, meterID string, period types.Period) (*meter.Reading, error) {
	var row readingRow
	err := r.client.Querier(ctx).
		Where("meter_id = ? AND period = ? AND status = ?", meterID, period, types.StatusPublished).
		First(&row).Error
	if err != nil {
		return nil, translateErr(err, "meter reading")
	}
	return readingFromRow(&row), nil
}

func (r *readingRepository) ListByBuildingAndPeriod(ctx context.Context, buildingID string, period types.Period) ([]*meter.Reading, error) {
	var rows []*readingRow
	err := r.client.Querier(ctx).
		Where("building_id = ? AND period = ? AND status = ?", buildingID, period, types.StatusPublished).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translateErr(err, "meter reading")
	}

	readings := make([]*meter.Reading, len(rows))
	for i, row := range rows {
		readings[i] = readingFromRow(row)
	}
	return readings, nil
}
