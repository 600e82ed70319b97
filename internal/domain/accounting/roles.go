package accounting

import (
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PostingRole names the semantic purpose of an account in automatic postings.
// Processors post by role; configuration maps each role to an account code per tenant.
type PostingRole string

const (
	RoleCash        PostingRole = "cash"
	RoleBank        PostingRole = "bank"
	RoleReceivable  PostingRole = "receivable"
	RoleInventory   PostingRole = "inventory"
	RolePayable     PostingRole = "payable"
	RoleTaxPayable  PostingRole = "tax_payable"
	RoleSales       PostingRole = "sales"
	RoleCOGS        PostingRole = "cogs"
	RolePurchases   PostingRole = "purchases"
	RoleOpexDefault PostingRole = "operating_expenses"
)

// RoleMap maps posting roles to account codes
type RoleMap map[PostingRole]string

// DefaultRoleMap matches DefaultChart
func DefaultRoleMap() RoleMap {
	return RoleMap{
		RoleCash:        "1000",
		RoleBank:        "1100",
		RoleReceivable:  "1200",
		RoleInventory:   "1500",
		RolePayable:     "2000",
		RoleTaxPayable:  "2100",
		RoleSales:       "4000",
		RoleCOGS:        "5000",
		RolePurchases:   "5000",
		RoleOpexDefault: "6000",
	}
}

// Merge returns a copy of m with the non-empty entries of override applied
func (m RoleMap) Merge(override map[string]string) RoleMap {
	out := make(RoleMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range override {
		if v != "" {
			out[PostingRole(k)] = v
		}
	}
	return out
}

// CodeFor resolves a role to its account code
func (m RoleMap) CodeFor(role PostingRole) (string, error) {
	code, ok := m[role]
	if !ok || code == "" {
		return "", shared.NewDomainErrorf(shared.CodeAccountNotFound, "No account configured for posting role %s", role)
	}
	return code, nil
}

// RoleLine is one side of an automatic posting expressed by role
type RoleLine struct {
	Role        PostingRole
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// DebitLine builds a debit-only role line
func DebitLine(role PostingRole, amount decimal.Decimal, description string) RoleLine {
	return RoleLine{Role: role, Debit: amount, Credit: decimal.Zero, Description: description}
}

// CreditLine builds a credit-only role line
func CreditLine(role PostingRole, amount decimal.Decimal, description string) RoleLine {
	return RoleLine{Role: role, Debit: decimal.Zero, Credit: amount, Description: description}
}

// CompactLines drops zero lines, so optional postings (tax, COGS) can be built unconditionally
func CompactLines(lines []RoleLine) []RoleLine {
	out := make([]RoleLine, 0, len(lines))
	for _, l := range lines {
		if l.Debit.IsZero() && l.Credit.IsZero() {
			continue
		}
		out = append(out, l)
	}
	return out
}
