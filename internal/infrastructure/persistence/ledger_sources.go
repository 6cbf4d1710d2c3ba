package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// applyDateRange restricts column to the inclusive day range of the filter
func applyDateRange(db *gorm.DB, column string, filter ledger.TransactionFilter) *gorm.DB {
	if filter.DateFrom != nil {
		db = db.Where(column+" >= ?", ledger.Day(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		db = db.Where(column+" < ?", ledger.Day(*filter.DateTo).AddDate(0, 0, 1))
	}
	return db
}

func payerTypeValues(filter ledger.TransactionFilter) []string {
	types := filter.PayerTypes()
	values := make([]string, len(types))
	for i, t := range types {
		values[i] = string(t)
	}
	return values
}

// PaymentRepository reads payments joined with their payer and method
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

type paymentRow struct {
	ID          int64
	ApartmentID int64
	UserID      int64
	UserName    string
	UserType    string
	Amount      decimal.NullDecimal
	Currency    string
	Date        time.Time
	MethodName  string
	BookingID   *int64
	Description string
}

// FetchPayments returns the apartment's payments within the filter, oldest first
func (r *PaymentRepository) FetchPayments(ctx context.Context, apartmentID int64, filter ledger.TransactionFilter) ([]ledger.PaymentRecord, error) {
	q := scopeApartment(r.db.WithContext(ctx).Table("payments AS p"), "p.apartment_id", apartmentID).
		Select(`p.id, p.apartment_id, p.user_id, COALESCE(u.name, '') AS user_name, p.user_type,
			p.amount, p.currency, p.date, COALESCE(pm.name, '') AS method_name, p.booking_id,
			COALESCE(p.description, '') AS description`).
		Joins("LEFT JOIN users u ON u.id = p.user_id").
		Joins("LEFT JOIN payment_methods pm ON pm.id = p.method_id").
		Where("p.user_type IN ?", payerTypeValues(filter))
	q = applyDateRange(q, "p.date", filter)

	var rows []paymentRow
	if err := q.Order("p.date, p.id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch payments for apartment %d: %w", apartmentID, err)
	}

	records := make([]ledger.PaymentRecord, len(rows))
	for i, row := range rows {
		records[i] = ledger.PaymentRecord{
			ID:          row.ID,
			ApartmentID: row.ApartmentID,
			PayerID:     row.UserID,
			PayerName:   row.UserName,
			PayerType:   ledger.PayerType(row.UserType),
			Amount:      row.Amount,
			Currency:    row.Currency,
			Date:        row.Date.UTC(),
			Method:      row.MethodName,
			BookingID:   row.BookingID,
			Description: row.Description,
		}
	}
	return records, nil
}

// ServiceChargeRepository reads service requests priced at fetch time
type ServiceChargeRepository struct {
	db *gorm.DB
}

// NewServiceChargeRepository creates a new service charge repository
func NewServiceChargeRepository(db *gorm.DB) *ServiceChargeRepository {
	return &ServiceChargeRepository{db: db}
}

type serviceChargeRow struct {
	ID              int64
	ApartmentID     int64
	BookingID       *int64
	ServiceTypeName string
	RequesterID     int64
	RequesterName   string
	WhoPays         string
	Cost            decimal.NullDecimal
	Currency        string
	DateCreated     time.Time
	DateAction      *time.Time
	Notes           string
}

// Price resolution: the request's own cost, else the village price, else the catalog price.
// The currency follows whichever price was used.
const serviceChargeSelect = `sr.id, sr.apartment_id, sr.booking_id, st.name AS service_type_name,
	sr.requester_id, COALESCE(u.name, '') AS requester_name, sr.who_pays,
	CASE
		WHEN sr.cost IS NOT NULL THEN sr.cost
		WHEN vp.cost IS NOT NULL THEN vp.cost
		ELSE st.cost
	END AS cost,
	COALESCE(CASE
		WHEN sr.cost IS NOT NULL THEN COALESCE(sr.currency, st.currency)
		WHEN vp.cost IS NOT NULL THEN vp.currency
		ELSE st.currency
	END, '') AS currency,
	sr.date_created, sr.date_action, COALESCE(sr.notes, '') AS notes`

// FetchServiceCharges returns the apartment's priced service requests within the filter
func (r *ServiceChargeRepository) FetchServiceCharges(ctx context.Context, apartmentID int64, filter ledger.TransactionFilter) ([]ledger.ServiceChargeRecord, error) {
	q := scopeApartment(r.db.WithContext(ctx).Table("service_requests AS sr"), "sr.apartment_id", apartmentID).
		Select(serviceChargeSelect).
		Joins("JOIN service_types st ON st.id = sr.type_id").
		Joins("JOIN apartments a ON a.id = sr.apartment_id").
		Joins("LEFT JOIN service_type_village_prices vp ON vp.service_type_id = sr.type_id AND vp.village_id = a.village_id").
		Joins("LEFT JOIN users u ON u.id = sr.requester_id").
		Where("sr.who_pays IN ?", payerTypeValues(filter))
	q = applyDateRange(q, "COALESCE(sr.date_action, sr.date_created)", filter)

	var rows []serviceChargeRow
	if err := q.Order("sr.date_created, sr.id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch service charges for apartment %d: %w", apartmentID, err)
	}

	records := make([]ledger.ServiceChargeRecord, len(rows))
	for i, row := range rows {
		var action *time.Time
		if row.DateAction != nil {
			t := row.DateAction.UTC()
			action = &t
		}
		records[i] = ledger.ServiceChargeRecord{
			ID:              row.ID,
			ApartmentID:     row.ApartmentID,
			BookingID:       row.BookingID,
			ServiceTypeName: row.ServiceTypeName,
			RequesterID:     row.RequesterID,
			RequesterName:   row.RequesterName,
			WhoPays:         ledger.PayerType(row.WhoPays),
			Cost:            row.Cost,
			Currency:        row.Currency,
			RequestedAt:     row.DateCreated.UTC(),
			ActionDate:      action,
			Notes:           row.Notes,
		}
	}
	return records, nil
}

// UtilityChargeRepository prices meter readings with the village unit prices
type UtilityChargeRepository struct {
	db *gorm.DB
}

// NewUtilityChargeRepository creates a new utility charge repository
func NewUtilityChargeRepository(db *gorm.DB) *UtilityChargeRepository {
	return &UtilityChargeRepository{db: db}
}

type utilityReadingRow struct {
	ID                      int64
	ApartmentID             int64
	BookingID               *int64
	WhoPays                 string
	OwnerID                 int64
	OwnerName               string
	GuestID                 *int64
	GuestName               string
	WaterStartReading       decimal.NullDecimal
	WaterEndReading         decimal.NullDecimal
	ElectricityStartReading decimal.NullDecimal
	ElectricityEndReading   decimal.NullDecimal
	WaterPrice              decimal.NullDecimal
	ElectricityPrice        decimal.NullDecimal
	StartDate               time.Time
	EndDate                 time.Time
}

// FetchUtilityCharges returns one charge per utility read over each reading period
func (r *UtilityChargeRepository) FetchUtilityCharges(ctx context.Context, apartmentID int64, filter ledger.TransactionFilter) ([]ledger.UtilityChargeRecord, error) {
	q := scopeApartment(r.db.WithContext(ctx).Table("utility_readings AS ur"), "ur.apartment_id", apartmentID).
		Select(`ur.id, ur.apartment_id, ur.booking_id, ur.who_pays,
			a.owner_id, COALESCE(o.name, '') AS owner_name,
			b.user_id AS guest_id, COALESCE(g.name, '') AS guest_name,
			ur.water_start_reading, ur.water_end_reading,
			ur.electricity_start_reading, ur.electricity_end_reading,
			v.water_price, v.electricity_price, ur.start_date, ur.end_date`).
		Joins("JOIN apartments a ON a.id = ur.apartment_id").
		Joins("LEFT JOIN villages v ON v.id = a.village_id").
		Joins("LEFT JOIN users o ON o.id = a.owner_id").
		Joins("LEFT JOIN bookings b ON b.id = ur.booking_id").
		Joins("LEFT JOIN users g ON g.id = b.user_id").
		Where("ur.who_pays IN ?", payerTypeValues(filter))
	q = applyDateRange(q, "ur.end_date", filter)

	var rows []utilityReadingRow
	if err := q.Order("ur.end_date, ur.id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch utility readings for apartment %d: %w", apartmentID, err)
	}

	records := make([]ledger.UtilityChargeRecord, 0, 2*len(rows))
	for _, row := range rows {
		if rec, ok := row.charge(ledger.UtilityWater, row.WaterStartReading, row.WaterEndReading, row.WaterPrice); ok {
			records = append(records, rec)
		}
		if rec, ok := row.charge(ledger.UtilityElectricity, row.ElectricityStartReading, row.ElectricityEndReading, row.ElectricityPrice); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// charge prices one utility of a reading. A utility with a missing reading or no
// consumption yields no charge. A negative delta is passed on for the normalizer to reject.
func (row utilityReadingRow) charge(utility ledger.UtilityType, start, end, price decimal.NullDecimal) (ledger.UtilityChargeRecord, bool) {
	if !start.Valid || !end.Valid {
		return ledger.UtilityChargeRecord{}, false
	}
	delta := end.Decimal.Sub(start.Decimal)
	if delta.IsZero() {
		return ledger.UtilityChargeRecord{}, false
	}

	rec := ledger.UtilityChargeRecord{
		ReadingID:   row.ID,
		ApartmentID: row.ApartmentID,
		BookingID:   row.BookingID,
		Utility:     utility,
		WhoPays:     ledger.PayerType(row.WhoPays),
		StartDate:   row.StartDate.UTC(),
		EndDate:     row.EndDate.UTC(),
	}
	if price.Valid {
		rec.Cost = decimal.NewNullDecimal(delta.Mul(price.Decimal).Round(2))
	}
	switch rec.WhoPays {
	case ledger.PayerOwner:
		rec.PayerID, rec.PayerName = row.OwnerID, row.OwnerName
	case ledger.PayerRenter:
		if row.GuestID != nil {
			rec.PayerID = *row.GuestID
		}
		rec.PayerName = row.GuestName
	}
	return rec, true
}
