package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountModel is the persistence model for a chart-of-accounts node
type AccountModel struct {
	AggregateModel
	TenantID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_accounts_tenant_code,priority:1"`
	Code        string     `gorm:"type:varchar(20);not null;uniqueIndex:idx_accounts_tenant_code,priority:2"`
	Name        string     `gorm:"type:varchar(200);not null"`
	AccountType string     `gorm:"type:varchar(20);not null;index"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index"`
	Description string     `gorm:"type:text"`
	IsActive    bool       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account
func (m *AccountModel) ToDomain() *accounting.Account {
	a := &accounting.Account{
		Code:        m.Code,
		Name:        m.Name,
		AccountType: accounting.AccountType(m.AccountType),
		ParentID:    m.ParentID,
		Description: m.Description,
		IsActive:    m.IsActive,
	}
	m.PopulateAggregateRoot(&a.BaseAggregateRoot)
	a.TenantID = m.TenantID
	return a
}

// AccountModelFromDomain creates a new persistence model from a domain Account
func AccountModelFromDomain(a *accounting.Account) *AccountModel {
	m := &AccountModel{
		TenantID:    a.TenantID,
		Code:        a.Code,
		Name:        a.Name,
		AccountType: string(a.AccountType),
		ParentID:    a.ParentID,
		Description: a.Description,
		IsActive:    a.IsActive,
	}
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	return m
}

// VoucherModel is the persistence model for a voucher header
type VoucherModel struct {
	AggregateModel
	TenantID      uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_vouchers_tenant_number,priority:1"`
	VoucherNumber string              `gorm:"type:varchar(50);not null;uniqueIndex:idx_vouchers_tenant_number,priority:2"`
	VoucherType   string              `gorm:"type:varchar(20);not null;index"`
	VoucherDate   time.Time           `gorm:"not null;index"`
	ReferenceID   *uuid.UUID          `gorm:"type:uuid;index"`
	AutoGenerated bool                `gorm:"not null"`
	Notes         string              `gorm:"type:text"`
	Entries       []JournalEntryModel `gorm:"foreignKey:VoucherID;references:ID"`
}

// TableName returns the table name for GORM
func (VoucherModel) TableName() string {
	return "vouchers"
}

// ToDomain converts the persistence model to a domain Voucher including loaded entries
func (m *VoucherModel) ToDomain() *accounting.Voucher {
	v := &accounting.Voucher{
		VoucherNumber: m.VoucherNumber,
		VoucherType:   accounting.VoucherType(m.VoucherType),
		VoucherDate:   m.VoucherDate.UTC(),
		ReferenceID:   m.ReferenceID,
		AutoGenerated: m.AutoGenerated,
		Notes:         m.Notes,
		Entries:       make([]accounting.JournalEntry, 0, len(m.Entries)),
	}
	m.PopulateAggregateRoot(&v.BaseAggregateRoot)
	v.TenantID = m.TenantID
	for i := range m.Entries {
		v.Entries = append(v.Entries, m.Entries[i].ToDomain())
	}
	return v
}

// VoucherModelFromDomain creates a new persistence model from a domain Voucher
func VoucherModelFromDomain(v *accounting.Voucher) *VoucherModel {
	m := &VoucherModel{
		TenantID:      v.TenantID,
		VoucherNumber: v.VoucherNumber,
		VoucherType:   string(v.VoucherType),
		VoucherDate:   v.VoucherDate,
		ReferenceID:   v.ReferenceID,
		AutoGenerated: v.AutoGenerated,
		Notes:         v.Notes,
		Entries:       make([]JournalEntryModel, 0, len(v.Entries)),
	}
	m.FromDomainAggregateRoot(v.BaseAggregateRoot)
	for _, e := range v.Entries {
		m.Entries = append(m.Entries, JournalEntryModel{
			ID:          e.ID,
			TenantID:    v.TenantID,
			VoucherID:   v.ID,
			AccountID:   e.AccountID,
			LineNumber:  e.LineNumber,
			Debit:       e.Debit,
			Credit:      e.Credit,
			EntryDate:   e.EntryDate,
			Description: e.Description,
			CreatedAt:   v.CreatedAt,
		})
	}
	return m
}

// JournalEntryModel is the persistence model for a single debit or credit line
type JournalEntryModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_entries_tenant_account,priority:1"`
	VoucherID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_entries_tenant_account,priority:2"`
	LineNumber  int             `gorm:"not null"`
	Debit       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Credit      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	EntryDate   time.Time       `gorm:"not null;index"`
	Description string          `gorm:"type:varchar(500)"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (JournalEntryModel) TableName() string {
	return "journal_entries"
}

// ToDomain converts the persistence model to a domain JournalEntry
func (m *JournalEntryModel) ToDomain() accounting.JournalEntry {
	return accounting.JournalEntry{
		ID:          m.ID,
		VoucherID:   m.VoucherID,
		AccountID:   m.AccountID,
		LineNumber:  m.LineNumber,
		Debit:       m.Debit,
		Credit:      m.Credit,
		EntryDate:   m.EntryDate.UTC(),
		Description: m.Description,
	}
}
