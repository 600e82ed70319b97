package accounting

import (
	"strings"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// AccountType is the top-level classification of an account
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeIncome    AccountType = "INCOME"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// IsValid returns true if the account type is valid
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// IsDebitNormal reports whether increases to this account type are recorded as debits
func (t AccountType) IsDebitNormal() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// String returns the string representation of AccountType
func (t AccountType) String() string {
	return string(t)
}

// ParseAccountType accepts either case ("Asset", "ASSET")
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", shared.NewDomainErrorf(shared.CodeInvalidInput, "Invalid account type: %s", s)
	}
	return t, nil
}

// Account is a node in the tenant's chart of accounts
type Account struct {
	shared.TenantAggregateRoot
	Code        string
	Name        string
	AccountType AccountType
	ParentID    *uuid.UUID
	Description string
	IsActive    bool
}

// NewAccount creates a new active account
func NewAccount(tenantID uuid.UUID, code, name string, accountType AccountType) (*Account, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Tenant ID cannot be empty")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Account code cannot be empty")
	}
	if len(code) > 20 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Account code cannot exceed 20 characters")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Account name cannot be empty")
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Invalid account type: %s", accountType)
	}
	return &Account{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		AccountType:         accountType,
		IsActive:            true,
	}, nil
}

// SetParent attaches the account under parent. The parent must share the tenant and type.
func (a *Account) SetParent(parent *Account) error {
	if parent == nil {
		a.ParentID = nil
		return nil
	}
	if parent.TenantID != a.TenantID {
		return shared.NewDomainError(shared.CodeInvalidInput, "Parent account belongs to another tenant")
	}
	if parent.ID == a.ID {
		return shared.NewDomainError(shared.CodeInvalidInput, "Account cannot be its own parent")
	}
	if parent.AccountType != a.AccountType {
		return shared.NewDomainErrorf(shared.CodeInvalidInput,
			"Parent account %s is %s, expected %s", parent.Code, parent.AccountType, a.AccountType)
	}
	id := parent.ID
	a.ParentID = &id
	return nil
}

// DefaultChart is the chart of accounts seeded for a new tenant
var DefaultChart = []struct {
	Code string
	Name string
	Type AccountType
}{
	{"1000", "Cash", AccountTypeAsset},
	{"1100", "Bank", AccountTypeAsset},
	{"1200", "Accounts Receivable", AccountTypeAsset},
	{"1500", "Inventory", AccountTypeAsset},
	{"2000", "Accounts Payable", AccountTypeLiability},
	{"2100", "Tax Payable", AccountTypeLiability},
	{"3000", "Owner's Capital", AccountTypeEquity},
	{"4000", "Sales Revenue", AccountTypeIncome},
	{"5000", "Cost of Goods Sold", AccountTypeExpense},
	{"5100", "Purchases", AccountTypeExpense},
	{"6000", "Operating Expenses", AccountTypeExpense},
}
