package models

import (
	"github.com/storeops/backend/internal/domain/branch"
)

// BranchModel is the persistence model for branches
type BranchModel struct {
	TenantAggregateModel
	Name     string        `gorm:"type:varchar(255);not null"`
	Timezone string        `gorm:"type:varchar(64);not null"`
	Status   branch.Status `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (BranchModel) TableName() string {
	return "branches"
}

// ToDomain converts the persistence model to a domain Branch
func (m *BranchModel) ToDomain() *branch.Branch {
	b := &branch.Branch{
		Name:     m.Name,
		Timezone: m.Timezone,
		Status:   m.Status,
	}
	m.PopulateTenantAggregateRoot(&b.TenantAggregateRoot)
	return b
}

// FromDomain populates the persistence model from a domain Branch
func (m *BranchModel) FromDomain(b *branch.Branch) {
	m.FromDomainTenantAggregateRoot(b.TenantAggregateRoot)
	m.Name = b.Name
	m.Timezone = b.Timezone
	m.Status = b.Status
}
