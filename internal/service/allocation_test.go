package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/waterbills/waterbills/internal/domain/meter"
	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/testutil"
	"github.com/waterbills/waterbills/internal/types"
)

type AllocationServiceSuite struct {
	testutil.BaseServiceTestSuite
	service AllocationService
	fixture *billingFixture
}

func TestAllocationService(t *testing.T) {
	suite.Run(t, new(AllocationServiceSuite))
}

func (s *AllocationServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewAllocationService(newServiceParams(&s.BaseServiceTestSuite))
	s.fixture = seedBillingFixture(&s.BaseServiceTestSuite, "A1", "A2")
}

func (s *AllocationServiceSuite) TestAllocatesBuildingBillAcrossSubmeters() {
	period := types.Period("2025-02")
	s.fixture.seedExampleReadings(period)

	usage, err := s.service.PreviewBuildingUsage(s.GetContext(), s.fixture.Building.ID, period)
	s.NoError(err)

	// 25*60 + 10*30 + 5000 = 6800
	s.True(usage.CouncilConsumption.Equal(decimal.NewFromInt(25)))
	s.True(usage.BoreholeConsumption.Equal(decimal.NewFromInt(10)))
	s.True(usage.TotalBuildingBill.Equal(decimal.NewFromInt(6800)),
		"total building bill = %s", usage.TotalBuildingBill)
	s.True(usage.TotalSubmeterUnits.Equal(decimal.NewFromInt(20)))
	s.True(usage.PerUnitRate.Equal(decimal.NewFromInt(340)),
		"per unit rate = %s", usage.PerUnitRate)

	amounts := map[string]decimal.Decimal{}
	for _, sub := range usage.Submeters {
		amounts[sub.PremiseID] = sub.WaterAmount
	}
	s.True(amounts[s.fixture.Premises[0].ID].Equal(decimal.NewFromInt(5100)))
	s.True(amounts[s.fixture.Premises[1].ID].Equal(decimal.NewFromInt(1700)))
}

func (s *AllocationServiceSuite) TestConservationOfBuildingBill() {
	period := types.Period("2025-03")
	prev := period.Previous()

	f := s.fixture
	f.recordReading(f.Council.ID, prev, 0)
	f.recordReading(f.Council.ID, period, 17)
	f.recordReading(f.Borehole.ID, prev, 0)
	f.recordReading(f.Borehole.ID, period, 9)
	f.recordReading(f.Subs[0].ID, prev, 0)
	f.recordReading(f.Subs[0].ID, period, 7)
	f.recordReading(f.Subs[1].ID, prev, 0)
	f.recordReading(f.Subs[1].ID, period, 6)

	usage, err := s.service.PreviewBuildingUsage(s.GetContext(), f.Building.ID, period)
	s.NoError(err)

	sum := decimal.Zero
	for _, sub := range usage.Submeters {
		sum = sum.Add(sub.WaterAmount)
	}

	// Rounding tolerance: precision x submeter count
	tolerance := decimal.New(int64(len(usage.Submeters)), -2)
	s.True(usage.TotalBuildingBill.Sub(sum).Abs().LessThanOrEqual(tolerance),
		"bill %s vs allocated sum %s", usage.TotalBuildingBill, sum)
}

func (s *AllocationServiceSuite) TestZeroSubmeterConsumptionYieldsZeroRate() {
	period := types.Period("2025-02")
	f := s.fixture

	f.recordReading(f.Council.ID, period.Previous(), 100)
	f.recordReading(f.Council.ID, period, 125)
	// No submeter readings at all

	usage, err := s.service.PreviewBuildingUsage(s.GetContext(), f.Building.ID, period)
	s.NoError(err)

	s.True(usage.TotalSubmeterUnits.IsZero())
	s.True(usage.PerUnitRate.IsZero())
	for _, sub := range usage.Submeters {
		s.True(sub.WaterAmount.IsZero())
	}
}

func (s *AllocationServiceSuite) TestNegativeConsumptionClampedToZero() {
	period := types.Period("2025-02")
	f := s.fixture

	// Meter rollover: current below previous
	f.recordReading(f.Council.ID, period.Previous(), 500)
	f.recordReading(f.Council.ID, period, 100)
	f.recordReading(f.Borehole.ID, period.Previous(), 40)
	f.recordReading(f.Borehole.ID, period, 50)

	usage, err := s.service.PreviewBuildingUsage(s.GetContext(), f.Building.ID, period)
	s.NoError(err)

	s.True(usage.CouncilConsumption.IsZero())
	s.True(usage.BoreholeConsumption.Equal(decimal.NewFromInt(10)))
}

func (s *AllocationServiceSuite) TestMissingReadingTreatedAsZero() {
	period := types.Period("2025-02")
	f := s.fixture

	// Only a current council reading; previous missing
	f.recordReading(f.Council.ID, period, 30)

	usage, err := s.service.PreviewBuildingUsage(s.GetContext(), f.Building.ID, period)
	s.NoError(err)
	s.True(usage.CouncilConsumption.Equal(decimal.NewFromInt(30)))
	s.True(usage.BoreholeConsumption.IsZero())
}

func (s *AllocationServiceSuite) TestMissingSettingsFailsConfigurationMissing() {
	s.GetStores().SettingsRepo.(*testutil.InMemorySettingsStore).Clear()

	_, err := s.service.PreviewBuildingUsage(s.GetContext(), s.fixture.Building.ID, types.Period("2025-02"))
	s.Error(err)
	s.True(ierr.IsConfigurationMissing(err))
}

func (s *AllocationServiceSuite) TestMissingBulkMetersFailsConfigurationMissing() {
	ctx := s.GetContext()
	s.fixture.Building.BoreholeMeterID = ""
	s.NoError(s.GetStores().BuildingRepo.Update(ctx, s.fixture.Building))

	_, err := s.service.PreviewBuildingUsage(ctx, s.fixture.Building.ID, types.Period("2025-02"))
	s.Error(err)
	s.True(ierr.IsConfigurationMissing(err))
}

func (s *AllocationServiceSuite) TestCouncilRefToSubmeterFailsConfigurationMissing() {
	ctx := s.GetContext()
	s.fixture.Building.CouncilMeterID = s.fixture.Subs[0].ID
	s.NoError(s.GetStores().BuildingRepo.Update(ctx, s.fixture.Building))

	_, err := s.service.PreviewBuildingUsage(ctx, s.fixture.Building.ID, types.Period("2025-02"))
	s.Error(err)
	s.True(ierr.IsConfigurationMissing(err))
}

func (s *AllocationServiceSuite) TestDanglingBulkMeterRefFailsConfigurationMissing() {
	ctx := s.GetContext()
	s.fixture.Building.CouncilMeterID = "mtr_gone"
	s.NoError(s.GetStores().BuildingRepo.Update(ctx, s.fixture.Building))

	_, err := s.service.PreviewBuildingUsage(ctx, s.fixture.Building.ID, types.Period("2025-02"))
	s.Error(err)
	s.True(ierr.IsConfigurationMissing(err))
}

func (s *AllocationServiceSuite) TestBulkMeterFromOtherBuildingFailsConfigurationMissing() {
	ctx := s.GetContext()
	foreign := &meter.Meter{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_METER),
		BuildingID: types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BUILDING),
		MeterType:  types.MeterTypeBorehole,
		Label:      "other borehole",
		Unit:       types.DefaultMeterUnit,
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().MeterRepo.Create(ctx, foreign))
	s.fixture.Building.BoreholeMeterID = foreign.ID
	s.NoError(s.GetStores().BuildingRepo.Update(ctx, s.fixture.Building))

	_, err := s.service.PreviewBuildingUsage(ctx, s.fixture.Building.ID, types.Period("2025-02"))
	s.Error(err)
	s.True(ierr.IsConfigurationMissing(err))
}

func (s *AllocationServiceSuite) TestPreviewIsPureGivenReadings() {
	period := types.Period("2025-02")
	s.fixture.seedExampleReadings(period)

	first, err := s.service.PreviewBuildingUsage(s.GetContext(), s.fixture.Building.ID, period)
	s.NoError(err)
	second, err := s.service.PreviewBuildingUsage(s.GetContext(), s.fixture.Building.ID, period)
	s.NoError(err)

	s.True(first.TotalBuildingBill.Equal(second.TotalBuildingBill))
	s.True(first.PerUnitRate.Equal(second.PerUnitRate))
	s.Equal(len(first.Submeters), len(second.Submeters))
}

func (s *AllocationServiceSuite) TestInvalidPeriodRejected() {
	_, err := s.service.PreviewBuildingUsage(s.GetContext(), s.fixture.Building.ID, types.Period("2025-13"))
	s.Error(err)
	s.True(ierr.IsValidation(err))
}
