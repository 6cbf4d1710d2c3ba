package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethodModel names how a payment was made
type PaymentMethodModel struct {
	BaseModel
	Name string `gorm:"type:varchar(50);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (PaymentMethodModel) TableName() string {
	return "payment_methods"
}

// PaymentModel is money received from an owner or renter.
// Amount is nullable in the model so a missing value surfaces as malformed.
type PaymentModel struct {
	BaseModel
	ApartmentID int64               `gorm:"not null;index"`
	BookingID   *int64              `gorm:"index"`
	UserID      int64               `gorm:"not null"`
	UserType    string              `gorm:"type:varchar(10);not null"`
	Amount      decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	Currency    string              `gorm:"type:varchar(3);not null"`
	MethodID    int64               `gorm:"not null"`
	Date        time.Time           `gorm:"not null;index"`
	Description string              `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ServiceTypeModel is a catalog service with a default price
type ServiceTypeModel struct {
	BaseModel
	Name     string              `gorm:"type:varchar(100);not null"`
	Cost     decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	Currency string              `gorm:"type:varchar(3);not null"`
}

// TableName returns the table name for GORM
func (ServiceTypeModel) TableName() string {
	return "service_types"
}

// ServiceTypeVillagePriceModel overrides a service type's price inside one village
type ServiceTypeVillagePriceModel struct {
	BaseModel
	ServiceTypeID int64           `gorm:"not null;uniqueIndex:idx_service_type_village"`
	VillageID     int64           `gorm:"not null;uniqueIndex:idx_service_type_village"`
	Cost          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Currency      string          `gorm:"type:varchar(3);not null"`
}

// TableName returns the table name for GORM
func (ServiceTypeVillagePriceModel) TableName() string {
	return "service_type_village_prices"
}

// ServiceRequestModel is a requested service; Cost and Currency override the catalog price
type ServiceRequestModel struct {
	BaseModel
	TypeID      int64               `gorm:"not null;index"`
	ApartmentID int64               `gorm:"not null;index"`
	BookingID   *int64              `gorm:"index"`
	RequesterID int64               `gorm:"not null"`
	WhoPays     string              `gorm:"type:varchar(10);not null"`
	Cost        decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	Currency    *string             `gorm:"type:varchar(3)"`
	DateCreated time.Time           `gorm:"not null"`
	DateAction  *time.Time
	Notes       string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ServiceRequestModel) TableName() string {
	return "service_requests"
}

// UtilityReadingModel holds start and end meter readings over a period.
// A utility whose start or end reading is missing was not read.
type UtilityReadingModel struct {
	BaseModel
	ApartmentID             int64               `gorm:"not null;index"`
	BookingID               *int64              `gorm:"index"`
	WaterStartReading       decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	WaterEndReading         decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	ElectricityStartReading decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	ElectricityEndReading   decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	StartDate               time.Time           `gorm:"not null"`
	EndDate                 time.Time           `gorm:"not null;index"`
	WhoPays                 string              `gorm:"type:varchar(10);not null"`
	CreatedBy               int64               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UtilityReadingModel) TableName() string {
	return "utility_readings"
}

// All lists every model, in dependency order, for test schema setup
func All() []any {
	return []any{
		&VillageModel{}, &UserModel{}, &ApartmentModel{}, &BookingModel{},
		&PaymentMethodModel{}, &PaymentModel{},
		&ServiceTypeModel{}, &ServiceTypeVillagePriceModel{}, &ServiceRequestModel{},
		&UtilityReadingModel{},
	}
}
