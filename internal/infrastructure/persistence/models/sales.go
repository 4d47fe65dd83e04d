package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storeops/backend/internal/domain/sales"
)

// SaleModel is the persistence model for finalized sales
type SaleModel struct {
	TenantAggregateModel
	BranchID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	SessionID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	EmployeeID    uuid.UUID           `gorm:"type:uuid;not null"`
	TotalAmount   decimal.Decimal     `gorm:"type:decimal(20,4);not null"`
	PaymentMethod sales.PaymentMethod `gorm:"type:varchar(20);not null"`
	FinalizedAt   time.Time           `gorm:"not null;index"`
	Lines         []SaleLineModel     `gorm:"foreignKey:SaleID"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// SaleLineModel is the persistence model for sale lines
type SaleLineModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemName  string          `gorm:"type:varchar(255);not null"`
	Quantity  decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,4);not null"`
}

// TableName returns the table name for GORM
func (SaleLineModel) TableName() string {
	return "sale_lines"
}

// ToDomain converts the persistence model to a domain Sale
func (m *SaleModel) ToDomain() *sales.Sale {
	s := &sales.Sale{
		BranchID:      m.BranchID,
		SessionID:     m.SessionID,
		EmployeeID:    m.EmployeeID,
		TotalAmount:   m.TotalAmount,
		PaymentMethod: m.PaymentMethod,
		FinalizedAt:   m.FinalizedAt,
	}
	m.PopulateTenantAggregateRoot(&s.TenantAggregateRoot)
	s.Lines = make([]sales.SaleLine, len(m.Lines))
	for i, l := range m.Lines {
		s.Lines[i] = sales.SaleLine{
			ID:        l.ID,
			SaleID:    l.SaleID,
			ItemName:  l.ItemName,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Amount:    l.Amount,
		}
	}
	return s
}

// FromDomain populates the persistence model from a domain Sale
func (m *SaleModel) FromDomain(s *sales.Sale) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.BranchID = s.BranchID
	m.SessionID = s.SessionID
	m.EmployeeID = s.EmployeeID
	m.TotalAmount = s.TotalAmount
	m.PaymentMethod = s.PaymentMethod
	m.FinalizedAt = s.FinalizedAt
	m.Lines = make([]SaleLineModel, len(s.Lines))
	for i, l := range s.Lines {
		m.Lines[i] = SaleLineModel{
			ID:        l.ID,
			SaleID:    l.SaleID,
			ItemName:  l.ItemName,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Amount:    l.Amount,
		}
	}
}
