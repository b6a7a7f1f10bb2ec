package postgres

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/waterbills/waterbills/internal/domain/auditlog"
	"github.com/waterbills/waterbills/internal/domain/building"
	"github.com/waterbills/waterbills/internal/domain/invoice"
	"github.com/waterbills/waterbills/internal/domain/meter"
	"github.com/waterbills/waterbills/internal/domain/payment"
	"github.com/waterbills/waterbills/internal/domain/premise"
	"github.com/waterbills/waterbills/internal/domain/settings"
	"github.com/waterbills/waterbills/internal/types"
)

// Row models map domain entities onto relational tables. The composite
// unique indexes on invoices (premise, period), readings (meter, period) and
// premises (building, unit_no) are the load-bearing constraints that make
// concurrent generation safe without application locking.

type buildingRow struct {
	ID                  string          `gorm:"primaryKey;size:64"`
	Name                string          `gorm:"size:255;not null"`
	Address             string          `gorm:"size:255;not null"`
	Timezone            string          `gorm:"size:64"`
	CouncilMeterID      string          `gorm:"size:64"`
	BoreholeMeterID     string          `gorm:"size:64"`
	PumpingCostPerMonth decimal.Decimal `gorm:"type:numeric(20,6)"`

	baseRow
}

func (buildingRow) TableName() string { return "buildings" }

type premiseRow struct {
	ID                 string          `gorm:"primaryKey;size:64"`
	BuildingID         string          `gorm:"size:64;not null;uniqueIndex:idx_premises_building_unit"`
	UnitNo             string          `gorm:"size:64;not null;uniqueIndex:idx_premises_building_unit"`
	PremiseType        string          `gorm:"size:32;not null"`
	MonthlyRent        decimal.Decimal `gorm:"type:numeric(20,6)"`
	DisconnectAfterDay int             `gorm:"not null"`
	PreviousBalance    decimal.Decimal `gorm:"type:numeric(20,6)"`
	Tags               []string        `gorm:"serializer:json"`

	baseRow
}

func (premiseRow) TableName() string { return "premises" }

type meterRow struct {
	ID         string `gorm:"primaryKey;size:64"`
	BuildingID string `gorm:"size:64;not null;index:idx_meters_building_type"`
	MeterType  string `gorm:"size:32;not null;index:idx_meters_building_type"`
	PremiseID  string `gorm:"size:64;index"`
	Label      string `gorm:"size:255;not null"`
	Unit       string `gorm:"size:16"`

	baseRow
}

func (meterRow) TableName() string { return "meters" }

type readingRow struct {
	ID          string          `gorm:"primaryKey;size:64"`
	MeterID     string          `gorm:"size:64;not null;uniqueIndex:idx_readings_meter_period"`
	Period      string          `gorm:"size:7;not null;uniqueIndex:idx_readings_meter_period;index:idx_readings_building_period"`
	BuildingID  string          `gorm:"size:64;not null;index:idx_readings_building_period"`
	PremiseID   string          `gorm:"size:64"`
	Reading     decimal.Decimal `gorm:"type:numeric(20,6)"`
	ReadingDate time.Time       `gorm:"not null"`
	Notes       string          `gorm:"size:1024"`

	baseRow
}

func (readingRow) TableName() string { return "meter_readings" }

type invoiceRow struct {
	ID          string    `gorm:"primaryKey;size:64"`
	PremiseID   string    `gorm:"size:64;not null;uniqueIndex:idx_invoices_premise_period"`
	Period      string    `gorm:"size:7;not null;uniqueIndex:idx_invoices_premise_period"`
	BuildingID  string    `gorm:"size:64;not null;index:idx_invoices_building_period"`
	InvoiceDate time.Time `gorm:"not null"`
	DueDate     time.Time `gorm:"not null;index:idx_invoices_status_due"`

	RentAmount      decimal.Decimal `gorm:"type:numeric(20,6)"`
	WaterAmount     decimal.Decimal `gorm:"type:numeric(20,6)"`
	PreviousBalance decimal.Decimal `gorm:"type:numeric(20,6)"`
	PenaltyAmount   decimal.Decimal `gorm:"type:numeric(20,6)"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(20,6)"`
	AmountPaid      decimal.Decimal `gorm:"type:numeric(20,6)"`

	InvoiceStatus    string `gorm:"size:16;not null;index:idx_invoices_status_due"`
	ConnectionStatus string `gorm:"size:16;not null"`

	Payments []invoice.AppliedPayment `gorm:"serializer:json"`

	baseRow
}

func (invoiceRow) TableName() string { return "invoices" }

type paymentRow struct {
	ID             string          `gorm:"primaryKey;size:64"`
	InvoiceID      string          `gorm:"size:64;not null;index"`
	PremiseID      string          `gorm:"size:64;not null;index"`
	BuildingID     string          `gorm:"size:64"`
	Amount         decimal.Decimal `gorm:"type:numeric(20,6)"`
	Method         string          `gorm:"size:16;not null"`
	// Partial unique index: manual payments carry no reference, so only
	// non-empty refs participate in the gateway dedup constraint.
	TransactionRef string    `gorm:"size:128;uniqueIndex:idx_payments_transaction_ref,where:transaction_ref <> ''"`
	PaymentDate    time.Time `gorm:"not null"`
	PaymentStatus  string    `gorm:"size:16;not null"`

	baseRow
}

func (paymentRow) TableName() string { return "payments" }

type receiptRow struct {
	ID            string          `gorm:"primaryKey;size:64"`
	ReceiptNumber string          `gorm:"size:32;not null;index"`
	PaymentID     string          `gorm:"size:64;not null;index"`
	InvoiceID     string          `gorm:"size:64;not null"`
	PremiseID     string          `gorm:"size:64;not null"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,6)"`
	Method        string          `gorm:"size:16;not null"`
	PaymentDate   time.Time       `gorm:"not null"`
	GeneratedAt   time.Time       `gorm:"not null"`

	baseRow
}

func (receiptRow) TableName() string { return "receipts" }

type settingsRow struct {
	ID                  string          `gorm:"primaryKey;size:64"`
	BuildingID          string          `gorm:"size:64;not null;uniqueIndex"`
	CouncilPricePerM3   decimal.Decimal `gorm:"type:numeric(20,6)"`
	BoreholePricePerM3  decimal.Decimal `gorm:"type:numeric(20,6)"`
	PumpingCostPerMonth decimal.Decimal `gorm:"type:numeric(20,6)"`
	PenaltyDaily        decimal.Decimal `gorm:"type:numeric(20,6)"`
	ProratePrecision    int32           `gorm:"not null"`

	baseRow
}

func (settingsRow) TableName() string { return "settings" }

type auditLogRow struct {
	ID          string         `gorm:"primaryKey;size:64"`
	EntityType  string         `gorm:"size:64;not null;index:idx_audit_entity"`
	EntityID    string         `gorm:"size:64;not null;index:idx_audit_entity"`
	Action      string         `gorm:"size:32;not null"`
	Changes     map[string]any `gorm:"serializer:json"`
	PerformedBy string         `gorm:"size:64;not null"`
	Timestamp   time.Time      `gorm:"not null;index"`
}

func (auditLogRow) TableName() string { return "audit_logs" }

// baseRow carries the shared lifecycle columns.
type baseRow struct {
	Status    string    `gorm:"size:16;not null;default:published"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	CreatedBy string    `gorm:"size:64"`
	UpdatedBy string    `gorm:"size:64"`
}

func toBaseRow(m types.BaseModel) baseRow {
	return baseRow{
		Status:    string(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		CreatedBy: m.CreatedBy,
		UpdatedBy: m.UpdatedBy,
	}
}

func (r baseRow) toBaseModel() types.BaseModel {
	return types.BaseModel{
		Status:    types.Status(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		CreatedBy: r.CreatedBy,
		UpdatedBy: r.UpdatedBy,
	}
}

func buildingFromRow(r *buildingRow) *building.Building {
	if r == nil {
		return nil
	}
	return &building.Building{
		ID:                  r.ID,
		Name:                r.Name,
		Address:             r.Address,
		Timezone:            r.Timezone,
		CouncilMeterID:      r.CouncilMeterID,
		BoreholeMeterID:     r.BoreholeMeterID,
		PumpingCostPerMonth: r.PumpingCostPerMonth,
		BaseModel:           r.toBaseModel(),
	}
}

func buildingToRow(b *building.Building) *buildingRow {
	return &buildingRow{
		ID:                  b.ID,
		Name:                b.Name,
		Address:             b.Address,
		Timezone:            b.Timezone,
		CouncilMeterID:      b.CouncilMeterID,
		BoreholeMeterID:     b.BoreholeMeterID,
		PumpingCostPerMonth: b.PumpingCostPerMonth,
		baseRow:             toBaseRow(b.BaseModel),
	}
}

func premiseFromRow(r *premiseRow) *premise.Premise {
	if r == nil {
		return nil
	}
	return &premise.Premise{
		ID:                 r.ID,
		BuildingID:         r.BuildingID,
		UnitNo:             r.UnitNo,
		PremiseType:        types.PremiseType(r.PremiseType),
		MonthlyRent:        r.MonthlyRent,
		DisconnectAfterDay: r.DisconnectAfterDay,
		PreviousBalance:    r.PreviousBalance,
		Tags:               r.Tags,
		BaseModel:          r.toBaseModel(),
	}
}

func premiseToRow(p *premise.Premise) *premiseRow {
	return &premiseRow{
		ID:                 p.ID,
		BuildingID:         p.BuildingID,
		UnitNo:             p.UnitNo,
		PremiseType:        string(p.PremiseType),
		MonthlyRent:        p.MonthlyRent,
		DisconnectAfterDay: p.DisconnectAfterDay,
		PreviousBalance:    p.PreviousBalance,
		Tags:               p.Tags,
		baseRow:            toBaseRow(p.BaseModel),
	}
}

func meterFromRow(r *meterRow) *meter.Meter {
	if r == nil {
		return nil
	}
	return &meter.Meter{
		ID:         r.ID,
		BuildingID: r.BuildingID,
		MeterType:  types.MeterType(r.MeterType),
		PremiseID:  r.PremiseID,
		Label:      r.Label,
		Unit:       r.Unit,
		BaseModel:  r.toBaseModel(),
	}
}

func meterToRow(m *meter.Meter) *meterRow {
	return &meterRow{
		ID:         m.ID,
		BuildingID: m.BuildingID,
		MeterType:  string(m.MeterType),
		PremiseID:  m.PremiseID,
		Label:      m.Label,
		Unit:       m.Unit,
		baseRow:    toBaseRow(m.BaseModel),
	}
}

func readingFromRow(r *readingRow) *meter.Reading {
	if r == nil {
		return nil
	}
	return &meter.Reading{
		ID:          r.ID,
		MeterID:     r.MeterID,
		BuildingID:  r.BuildingID,
		PremiseID:   r.PremiseID,
		Period:      types.Period(r.Period),
		Reading:     r.Reading,
		ReadingDate: r.ReadingDate,
		Notes:       r.Notes,
		BaseModel:   r.toBaseModel(),
	}
}

func readingToRow(rd *meter.Reading) *readingRow {
	return &readingRow{
		ID:          rd.ID,
		MeterID:     rd.MeterID,
		Period:      string(rd.Period),
		BuildingID:  rd.BuildingID,
		PremiseID:   rd.PremiseID,
		Reading:     rd.Reading,
		ReadingDate: rd.ReadingDate,
		Notes:       rd.Notes,
		baseRow:     toBaseRow(rd.BaseModel),
	}
}

func invoiceFromRow(r *invoiceRow) *invoice.Invoice {
	if r == nil {
		return nil
	}
	return &invoice.Invoice{
		ID:               r.ID,
		PremiseID:        r.PremiseID,
		BuildingID:       r.BuildingID,
		Period:           types.Period(r.Period),
		InvoiceDate:      r.InvoiceDate,
		DueDate:          r.DueDate,
		RentAmount:       r.RentAmount,
		WaterAmount:      r.WaterAmount,
		PreviousBalance:  r.PreviousBalance,
		PenaltyAmount:    r.PenaltyAmount,
		TotalAmount:      r.TotalAmount,
		AmountPaid:       r.AmountPaid,
		InvoiceStatus:    types.InvoiceStatus(r.InvoiceStatus),
		ConnectionStatus: types.ConnectionStatus(r.ConnectionStatus),
		Payments:         r.Payments,
		BaseModel:        r.toBaseModel(),
	}
}

func invoiceToRow(inv *invoice.Invoice) *invoiceRow {
	return &invoiceRow{
		ID:               inv.ID,
		PremiseID:        inv.PremiseID,
		Period:           string(inv.Period),
		BuildingID:       inv.BuildingID,
		InvoiceDate:      inv.InvoiceDate,
		DueDate:          inv.DueDate,
		RentAmount:       inv.RentAmount,
		WaterAmount:      inv.WaterAmount,
		PreviousBalance:  inv.PreviousBalance,
		PenaltyAmount:    inv.PenaltyAmount,
		TotalAmount:      inv.TotalAmount,
		AmountPaid:       inv.AmountPaid,
		InvoiceStatus:    string(inv.InvoiceStatus),
		ConnectionStatus: string(inv.ConnectionStatus),
		Payments:         inv.Payments,
		baseRow:          toBaseRow(inv.BaseModel),
	}
}

func paymentFromRow(r *paymentRow) *payment.Payment {
	if r == nil {
		return nil
	}
	return &payment.Payment{
		ID:             r.ID,
		InvoiceID:      r.InvoiceID,
		PremiseID:      r.PremiseID,
		BuildingID:     r.BuildingID,
		Amount:         r.Amount,
		Method:         types.PaymentMethod(r.Method),
		TransactionRef: r.TransactionRef,
		PaymentDate:    r.PaymentDate,
		PaymentStatus:  types.PaymentStatus(r.PaymentStatus),
		BaseModel:      r.toBaseModel(),
	}
}

func paymentToRow(p *payment.Payment) *paymentRow {
	return &paymentRow{
		ID:             p.ID,
		InvoiceID:      p.InvoiceID,
		PremiseID:      p.PremiseID,
		BuildingID:     p.BuildingID,
		Amount:         p.Amount,
		Method:         string(p.Method),
		TransactionRef: p.TransactionRef,
		PaymentDate:    p.PaymentDate,
		PaymentStatus:  string(p.PaymentStatus),
		baseRow:        toBaseRow(p.BaseModel),
	}
}

func receiptFromRow(r *receiptRow) *payment.Receipt {
	if r == nil {
		return nil
	}
	return &payment.Receipt{
		ID:            r.ID,
		ReceiptNumber: r.ReceiptNumber,
		PaymentID:     r.PaymentID,
		InvoiceID:     r.InvoiceID,
		PremiseID:     r.PremiseID,
		Amount:        r.Amount,
		Method:        types.PaymentMethod(r.Method),
		PaymentDate:   r.PaymentDate,
		GeneratedAt:   r.GeneratedAt,
		BaseModel:     r.toBaseModel(),
	}
}

func receiptToRow(rc *payment.Receipt) *receiptRow {
	return &receiptRow{
		ID:            rc.ID,
		ReceiptNumber: rc.ReceiptNumber,
		PaymentID:     rc.PaymentID,
		InvoiceID:     rc.InvoiceID,
		PremiseID:     rc.PremiseID,
		Amount:        rc.Amount,
		Method:        string(rc.Method),
		PaymentDate:   rc.PaymentDate,
		GeneratedAt:   rc.GeneratedAt,
		baseRow:       toBaseRow(rc.BaseModel),
	}
}

func settingsFromRow(r *settingsRow) *settings.Settings {
	if r == nil {
		return nil
	}
	return &settings.Settings{
		ID:                  r.ID,
		BuildingID:          r.BuildingID,
		CouncilPricePerM3:   r.CouncilPricePerM3,
		BoreholePricePerM3:  r.BoreholePricePerM3,
		PumpingCostPerMonth: r.PumpingCostPerMonth,
		PenaltyDaily:        r.PenaltyDaily,
		ProratePrecision:    r.ProratePrecision,
		BaseModel:           r.toBaseModel(),
	}
}

func settingsToRow(s *settings.Settings) *settingsRow {
	return &settingsRow{
		ID:                  s.ID,
		BuildingID:          s.BuildingID,
		CouncilPricePerM3:   s.CouncilPricePerM3,
		BoreholePricePerM3:  s.BoreholePricePerM3,
		PumpingCostPerMonth: s.PumpingCostPerMonth,
		PenaltyDaily:        s.PenaltyDaily,
		ProratePrecision:    s.ProratePrecision,
		baseRow:             toBaseRow(s.BaseModel),
	}
}

func auditLogToRow(a *auditlog.AuditLog) *auditLogRow {
	return &auditLogRow{
		ID:          a.ID,
		EntityType:  a.EntityType,
		EntityID:    a.EntityID,
		Action:      string(a.Action),
		Changes:     a.Changes,
		PerformedBy: a.PerformedBy,
		Timestamp:   a.Timestamp,
	}
}

func auditLogFromRow(r *auditLogRow) *auditlog.AuditLog {
	if r == nil {
		return nil
	}
	return &auditlog.AuditLog{
		ID:          r.ID,
		EntityType:  r.EntityType,
		EntityID:    r.EntityID,
		Action:      auditlog.Action(r.Action),
		Changes:     r.Changes,
		PerformedBy: r.PerformedBy,
		Timestamp:   r.Timestamp,
	}
}

// Migrate creates or updates the schema for every billing table.
func Migrate(db interface {
	AutoMigrate(dst ...interface{}) error
}) error {
	return db.AutoMigrate(
		&buildingRow{},
		&premiseRow{},
		&meterRow{},
		&readingRow{},
		&invoiceRow{},
		&paymentRow{},
		&receiptRow{},
		&settingsRow{},
		&auditLogRow{},
	)
}
