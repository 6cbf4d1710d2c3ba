package models

import "github.com/shopspring/decimal"

// VillageModel is a tourist village with its utility unit prices
type VillageModel struct {
	BaseModel
	Name             string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	ElectricityPrice decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	WaterPrice       decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	Phases           int             `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (VillageModel) TableName() string {
	return "villages"
}

// UserModel is an owner, renter or staff member
type UserModel struct {
	BaseModel
	Name  string `gorm:"type:varchar(100);not null"`
	Email string `gorm:"type:varchar(255);uniqueIndex"`
	Role  string `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ApartmentModel is a unit in a village with a single owner
type ApartmentModel struct {
	BaseModel
	Name      string `gorm:"type:varchar(100);not null"`
	VillageID int64  `gorm:"not null;index"`
	Phase     int    `gorm:"not null;default:1"`
	OwnerID   int64  `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ApartmentModel) TableName() string {
	return "apartments"
}
