package accounting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/erp/ledger/internal/application/uow"
	"github.com/erp/ledger/internal/domain/accounting"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AutoEntry is one line of a system posting, addressed by account code
type AutoEntry struct {
	AccountCode string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// AutoVoucherInput is a system-generated voucher for a business event
type AutoVoucherInput struct {
	TenantID    uuid.UUID
	Type        accounting.VoucherType
	Date        time.Time
	ReferenceID uuid.UUID
	Entries     []AutoEntry
	Notes       string
}

// Posting is a system voucher expressed by posting role instead of account code
type Posting struct {
	TenantID    uuid.UUID
	Type        accounting.VoucherType
	Date        time.Time
	ReferenceID uuid.UUID
	Lines       []accounting.RoleLine
	Notes       string
}

// Engine posts automatic vouchers inside a caller-owned transaction
type Engine struct {
	roles RoleResolver
}

// NewEngine creates a new Engine
func NewEngine(roles RoleResolver) *Engine {
	return &Engine{roles: roles}
}

// CreateAutoVoucher resolves every account code within the tenant, re-checks the
// double-entry balance and persists the voucher with its entries.
func (e *Engine) CreateAutoVoucher(ctx context.Context, repos uow.Repositories, in AutoVoucherInput) (*accounting.Voucher, error) {
	if len(in.Entries) == 0 {
		return nil, shared.NewDomainError(shared.CodeValidation, "Voucher has no entries")
	}

	codes := make([]string, 0, len(in.Entries))
	for _, entry := range in.Entries {
		codes = append(codes, entry.AccountCode)
	}
	accounts, err := repos.Accounts().FindByCodes(ctx, in.TenantID, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve accounts: %w", err)
	}

	lines := make([]accounting.EntryLine, 0, len(in.Entries))
	for _, entry := range in.Entries {
		account, ok := accounts[entry.AccountCode]
		if !ok {
			return nil, shared.NewDomainErrorf(shared.CodeAccountNotFound, "Account not found: %s", entry.AccountCode)
		}
		lines = append(lines, accounting.EntryLine{
			AccountID:   account.ID,
			Debit:       entry.Debit,
			Credit:      entry.Credit,
			Description: entry.Description,
		})
	}

	voucher, err := accounting.NewVoucher(in.TenantID, in.Type, in.Date, lines)
	if err != nil {
		return nil, err
	}
	voucher.MarkAutoGenerated(in.ReferenceID)
	voucher.Notes = strings.TrimSpace(in.Notes)

	if err := persistVoucher(ctx, repos, voucher); err != nil {
		return nil, err
	}
	return voucher, nil
}

// Post resolves posting roles to account codes and creates the voucher.
// Zero lines are dropped first; a posting with nothing left returns a nil voucher.
func (e *Engine) Post(ctx context.Context, repos uow.Repositories, p Posting) (*accounting.Voucher, error) {
	lines := accounting.CompactLines(p.Lines)
	if len(lines) == 0 {
		return nil, nil
	}

	entries := make([]AutoEntry, 0, len(lines))
	for _, l := range lines {
		code, err := e.roles.CodeFor(ctx, p.TenantID, l.Role)
		if err != nil {
			return nil, err
		}
		entries = append(entries, AutoEntry{
			AccountCode: code,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		})
	}

	return e.CreateAutoVoucher(ctx, repos, AutoVoucherInput{
		TenantID:    p.TenantID,
		Type:        p.Type,
		Date:        p.Date,
		ReferenceID: p.ReferenceID,
		Entries:     entries,
		Notes:       p.Notes,
	})
}

// persistVoucher numbers the voucher from its monthly sequence and stores it
func persistVoucher(ctx context.Context, repos uow.Repositories, voucher *accounting.Voucher) error {
	seq, err := repos.Sequences().Next(ctx, voucher.TenantID, voucher.SequencePrefix())
	if err != nil {
		return fmt.Errorf("failed to allocate voucher number: %w", err)
	}
	voucher.AssignNumber(seq)
	return repos.Vouchers().Create(ctx, voucher)
}
