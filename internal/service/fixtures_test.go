package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/waterbills/waterbills/internal/domain/building"
	"github.com/waterbills/waterbills/internal/domain/invoice"
	"github.com/waterbills/waterbills/internal/domain/meter"
	"github.com/waterbills/waterbills/internal/domain/premise"
	"github.com/waterbills/waterbills/internal/domain/settings"
	"github.com/waterbills/waterbills/internal/testutil"
	"github.com/waterbills/waterbills/internal/types"
)

// billingFixture seeds a fully configured building: council and borehole
// meters, pricing settings and premises with one submeter each. The shapes
// mirror the seed data the API serves in development.
type billingFixture struct {
	suite *testutil.BaseServiceTestSuite

	Building *building.Building
	Settings *settings.Settings
	Council  *meter.Meter
	Borehole *meter.Meter
	Premises []*premise.Premise
	Subs     []*meter.Meter
}

func newServiceParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	return ServiceParams{
		Logger:       s.GetLogger(),
		Config:       s.GetConfig(),
		DB:           s.GetDB(),
		BuildingRepo: s.GetStores().BuildingRepo,
		PremiseRepo:  s.GetStores().PremiseRepo,
		MeterRepo:    s.GetStores().MeterRepo,
		ReadingRepo:  s.GetStores().ReadingRepo,
		InvoiceRepo:  s.GetStores().InvoiceRepo,
		PaymentRepo:  s.GetStores().PaymentRepo,
		ReceiptRepo:  s.GetStores().ReceiptRepo,
		SettingsRepo: s.GetStores().SettingsRepo,
		AuditLogRepo: s.GetStores().AuditLogRepo,
	}
}

func seedBillingFixture(s *testutil.BaseServiceTestSuite, unitNos ...string) *billingFixture {
	ctx := s.GetContext()
	f := &billingFixture{suite: s}

	f.Building = &building.Building{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BUILDING),
		Name:      "Mji Plaza",
		Address:   "Tom Mboya St",
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	f.Council = &meter.Meter{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_METER),
		BuildingID: f.Building.ID,
		MeterType:  types.MeterTypeCouncil,
		Label:      "council main",
		Unit:       types.DefaultMeterUnit,
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}
	f.Borehole = &meter.Meter{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_METER),
		BuildingID: f.Building.ID,
		MeterType:  types.MeterTypeBorehole,
		Label:      "borehole main",
		Unit:       types.DefaultMeterUnit,
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}
	f.Building.CouncilMeterID = f.Council.ID
	f.Building.BoreholeMeterID = f.Borehole.ID

	stores := s.GetStores()
	s.NoError(stores.BuildingRepo.Create(ctx, f.Building))
	s.NoError(stores.MeterRepo.Create(ctx, f.Council))
	s.NoError(stores.MeterRepo.Create(ctx, f.Borehole))

	f.Settings = &settings.Settings{
		ID:                  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SETTINGS),
		BuildingID:          f.Building.ID,
		CouncilPricePerM3:   decimal.NewFromInt(60),
		BoreholePricePerM3:  decimal.NewFromInt(30),
		PumpingCostPerMonth: decimal.NewFromInt(5000),
		PenaltyDaily:        decimal.NewFromInt(150),
		ProratePrecision:    2,
		BaseModel:           types.GetDefaultBaseModel(ctx),
	}
	s.NoError(stores.SettingsRepo.Create(ctx, f.Settings))

	for _, unitNo := range unitNos {
		p := &premise.Premise{
			ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PREMISE),
			BuildingID:         f.Building.ID,
			UnitNo:             unitNo,
			PremiseType:        types.PremiseTypeShop,
			MonthlyRent:        decimal.NewFromInt(15000),
			DisconnectAfterDay: types.DefaultDisconnectDay,
			PreviousBalance:    decimal.Zero,
			BaseModel:          types.GetDefaultBaseModel(ctx),
		}
		s.NoError(stores.PremiseRepo.Create(ctx, p))
		f.Premises = append(f.Premises, p)

		sub := &meter.Meter{
			ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_METER),
			BuildingID: f.Building.ID,
			MeterType:  types.MeterTypeSubmeter,
			PremiseID:  p.ID,
			Label:      "submeter " + unitNo,
			Unit:       types.DefaultMeterUnit,
			BaseModel:  types.GetDefaultBaseModel(ctx),
		}
		s.NoError(stores.MeterRepo.Create(ctx, sub))
		f.Subs = append(f.Subs, sub)
	}

	return f
}

func (f *billingFixture) recordReading(meterID string, period types.Period, value int64) {
	ctx := f.suite.GetContext()
	f.suite.NoError(f.suite.GetStores().ReadingRepo.Create(ctx, &meter.Reading{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_METER_READING),
		MeterID:     meterID,
		BuildingID:  f.Building.ID,
		Period:      period,
		Reading:     decimal.NewFromInt(value),
		ReadingDate: time.Now().UTC(),
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}))
}

// seedExampleReadings records the worked example: council 25 m3, borehole
// 10 m3, submeters 15 and 5 units. Requires two premises.
func (f *billingFixture) seedExampleReadings(period types.Period) {
	prev := period.Previous()
	f.recordReading(f.Council.ID, prev, 100)
	f.recordReading(f.Council.ID, period, 125)
	f.recordReading(f.Borehole.ID, prev, 40)
	f.recordReading(f.Borehole.ID, period, 50)
	f.recordReading(f.Subs[0].ID, prev, 10)
	f.recordReading(f.Subs[0].ID, period, 25)
	f.recordReading(f.Subs[1].ID, prev, 3)
	f.recordReading(f.Subs[1].ID, period, 8)
}

// seedInvoice inserts an invoice directly, bypassing generation, for penalty
// and payment scenarios that need full control over dates and amounts.
func (f *billingFixture) seedInvoice(premiseID string, period types.Period, total int64, dueDate time.Time) *invoice.Invoice {
	ctx := f.suite.GetContext()
	inv := &invoice.Invoice{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		PremiseID:        premiseID,
		BuildingID:       f.Building.ID,
		Period:           period,
		InvoiceDate:      time.Now().UTC(),
		DueDate:          dueDate,
		RentAmount:       decimal.NewFromInt(total),
		WaterAmount:      decimal.Zero,
		PreviousBalance:  decimal.Zero,
		PenaltyAmount:    decimal.Zero,
		TotalAmount:      decimal.NewFromInt(total),
		AmountPaid:       decimal.Zero,
		InvoiceStatus:    types.InvoiceStatusUnpaid,
		ConnectionStatus: types.ConnectionStatusConnected,
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
	f.suite.NoError(f.suite.GetStores().InvoiceRepo.Create(ctx, inv))
	return inv
}
