package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/testutil"
	"github.com/waterbills/waterbills/internal/types"
)

type RegistryServiceSuite struct {
	testutil.BaseServiceTestSuite
	service RegistryService
}

func TestRegistryService(t *testing.T) {
	suite.Run(t, new(RegistryServiceSuite))
}

func (s *RegistryServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewRegistryService(newServiceParams(&s.BaseServiceTestSuite))
}

func (s *RegistryServiceSuite) seedBuilding() string {
	b, err := s.service.CreateBuilding(s.GetContext(), CreateBuildingInput{
		Name:    "Mji Plaza",
		Address: "Tom Mboya St",
	})
	s.NoError(err)
	return b.ID
}

func (s *RegistryServiceSuite) TestBulkMetersRegisterOnBuilding() {
	ctx := s.GetContext()
	buildingID := s.seedBuilding()

	council, err := s.service.CreateMeter(ctx, CreateMeterInput{
		BuildingID: buildingID,
		MeterType:  types.MeterTypeCouncil,
		Label:      "council main",
	})
	s.NoError(err)
	borehole, err := s.service.CreateMeter(ctx, CreateMeterInput{
		BuildingID: buildingID,
		MeterType:  types.MeterTypeBorehole,
		Label:      "borehole main",
	})
	s.NoError(err)

	b, err := s.service.GetBuilding(ctx, buildingID)
	s.NoError(err)
	s.Equal(council.ID, b.CouncilMeterID)
	s.Equal(borehole.ID, b.BoreholeMeterID)
	s.True(b.HasBulkMeters())
}

func (s *RegistryServiceSuite) TestDuplicateUnitNoRejected() {
	ctx := s.GetContext()
	buildingID := s.seedBuilding()

	input := CreatePremiseInput{
		BuildingID:  buildingID,
		UnitNo:      "A1",
		PremiseType: types.PremiseTypeShop,
		MonthlyRent: decimal.NewFromInt(15000),
	}
	_, err := s.service.CreatePremise(ctx, input)
	s.NoError(err)

	_, err = s.service.CreatePremise(ctx, input)
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *RegistryServiceSuite) TestPremiseGetsDefaultDisconnectDay() {
	p, err := s.service.CreatePremise(s.GetContext(), CreatePremiseInput{
		BuildingID:  s.seedBuilding(),
		UnitNo:      "A1",
		PremiseType: types.PremiseTypeApartment,
		MonthlyRent: decimal.NewFromInt(20000),
	})
	s.NoError(err)
	s.Equal(types.DefaultDisconnectDay, p.DisconnectAfterDay)
}

func (s *RegistryServiceSuite) TestSubmeterRequiresPremiseAndIsUnique() {
	ctx := s.GetContext()
	buildingID := s.seedBuilding()

	_, err := s.service.CreateMeter(ctx, CreateMeterInput{
		BuildingID: buildingID,
		MeterType:  types.MeterTypeSubmeter,
		Label:      "orphan submeter",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	p, err := s.service.CreatePremise(ctx, CreatePremiseInput{
		BuildingID:  buildingID,
		UnitNo:      "A1",
		PremiseType: types.PremiseTypeShop,
		MonthlyRent: decimal.NewFromInt(15000),
	})
	s.NoError(err)

	_, err = s.service.CreateMeter(ctx, CreateMeterInput{
		BuildingID: buildingID,
		MeterType:  types.MeterTypeSubmeter,
		PremiseID:  p.ID,
		Label:      "submeter A1",
	})
	s.NoError(err)

	_, err = s.service.CreateMeter(ctx, CreateMeterInput{
		BuildingID: buildingID,
		MeterType:  types.MeterTypeSubmeter,
		PremiseID:  p.ID,
		Label:      "second submeter A1",
	})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *RegistryServiceSuite) TestDuplicateReadingSurfacedNotOverwritten() {
	ctx := s.GetContext()
	buildingID := s.seedBuilding()

	m, err := s.service.CreateMeter(ctx, CreateMeterInput{
		BuildingID: buildingID,
		MeterType:  types.MeterTypeCouncil,
		Label:      "council main",
	})
	s.NoError(err)

	first, err := s.service.RecordReading(ctx, RecordReadingInput{
		MeterID: m.ID,
		Period:  "2025-02",
		Reading: decimal.NewFromInt(100),
	})
	s.NoError(err)
	s.Equal(types.DefaultMeterUnit, m.Unit)

	_, err = s.service.RecordReading(ctx, RecordReadingInput{
		MeterID: m.ID,
		Period:  "2025-02",
		Reading: decimal.NewFromInt(999),
	})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))

	stored, err := s.GetStores().ReadingRepo.GetByMeterAndPeriod(ctx, m.ID, "2025-02")
	s.NoError(err)
	s.Equal(first.ID, stored.ID)
	s.True(stored.Reading.Equal(decimal.NewFromInt(100)))
}

func (s *RegistryServiceSuite) TestSettingsUpsert() {
	ctx := s.GetContext()
	buildingID := s.seedBuilding()

	created, err := s.service.UpsertSettings(ctx, UpsertSettingsInput{
		BuildingID:         buildingID,
		CouncilPricePerM3:  decimal.NewFromInt(60),
		BoreholePricePerM3: decimal.NewFromInt(30),
		PenaltyDaily:       decimal.NewFromInt(150),
		ProratePrecision:   2,
	})
	s.NoError(err)

	updated, err := s.service.UpsertSettings(ctx, UpsertSettingsInput{
		BuildingID:         buildingID,
		CouncilPricePerM3:  decimal.NewFromInt(75),
		BoreholePricePerM3: decimal.NewFromInt(30),
		PenaltyDaily:       decimal.NewFromInt(150),
		ProratePrecision:   2,
	})
	s.NoError(err)

	s.Equal(created.ID, updated.ID)
	s.True(updated.CouncilPricePerM3.Equal(decimal.NewFromInt(75)))
}
