package accounting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/ledger/internal/application/uow"
	"github.com/erp/ledger/internal/domain/accounting"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TrialBalanceWriter renders a trial balance into a downloadable document
type TrialBalanceWriter interface {
	WriteTrialBalance(tb *accounting.TrialBalance) ([]byte, error)
	ContentType() string
	Extension() string
}

// ReportArchiver keeps a copy of exported reports and returns where it was stored
type ReportArchiver interface {
	Archive(ctx context.Context, key string, content []byte, contentType string) (string, error)
}

// AccountingService handles the chart of accounts, manual vouchers and ledger reports
type AccountingService struct {
	scope       uow.TransactionScope
	accountRepo accounting.AccountRepository
	voucherRepo accounting.VoucherRepository
	reader      accounting.LedgerReader
	writer      TrialBalanceWriter
	archiver    ReportArchiver
}

// NewAccountingService creates a new AccountingService
func NewAccountingService(
	scope uow.TransactionScope,
	accountRepo accounting.AccountRepository,
	voucherRepo accounting.VoucherRepository,
	reader accounting.LedgerReader,
) *AccountingService {
	return &AccountingService{
		scope:       scope,
		accountRepo: accountRepo,
		voucherRepo: voucherRepo,
		reader:      reader,
	}
}

// SetTrialBalanceWriter enables trial balance export
func (s *AccountingService) SetTrialBalanceWriter(writer TrialBalanceWriter) {
	s.writer = writer
}

// SetReportArchiver enables archiving of exported reports (optional)
func (s *AccountingService) SetReportArchiver(archiver ReportArchiver) {
	s.archiver = archiver
}

// CreateAccount adds an account to the tenant's chart
func (s *AccountingService) CreateAccount(ctx context.Context, tenantID uuid.UUID, req CreateAccountRequest) (*AccountResponse, error) {
	accountType, err := accounting.ParseAccountType(req.AccountType)
	if err != nil {
		return nil, err
	}
	account, err := accounting.NewAccount(tenantID, req.Code, req.Name, accountType)
	if err != nil {
		return nil, err
	}
	account.Description = req.Description

	exists, err := s.accountRepo.ExistsByCode(ctx, tenantID, account.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainErrorf(shared.CodeAlreadyExists, "Account code already exists: %s", account.Code)
	}

	if req.ParentID != nil {
		parent, err := s.accountRepo.FindByID(ctx, tenantID, *req.ParentID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainErrorf(shared.CodeAccountNotFound, "Parent account not found: %s", req.ParentID)
			}
			return nil, err
		}
		if err := account.SetParent(parent); err != nil {
			return nil, err
		}
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	resp := ToAccountResponse(account)
	return &resp, nil
}

// GetAccount returns one account
func (s *AccountingService) GetAccount(ctx context.Context, tenantID, accountID uuid.UUID) (*AccountResponse, error) {
	account, err := s.findAccount(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}
	resp := ToAccountResponse(account)
	return &resp, nil
}

// ListAccounts lists the chart of accounts ordered by code, optionally of one type
func (s *AccountingService) ListAccounts(ctx context.Context, tenantID uuid.UUID, accountType string) ([]AccountResponse, error) {
	var filter *accounting.AccountType
	if accountType != "" {
		t, err := accounting.ParseAccountType(accountType)
		if err != nil {
			return nil, err
		}
		filter = &t
	}
	accounts, err := s.accountRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]AccountResponse, len(accounts))
	for i := range accounts {
		out[i] = ToAccountResponse(&accounts[i])
	}
	return out, nil
}

// SeedChartOfAccounts creates whichever default accounts the tenant does not have yet.
// Running it again is a no-op.
func (s *AccountingService) SeedChartOfAccounts(ctx context.Context, tenantID uuid.UUID) (*SeedChartResponse, error) {
	resp := &SeedChartResponse{Accounts: make([]AccountResponse, 0, len(accounting.DefaultChart))}
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		resp.Created, resp.Existing = 0, 0
		resp.Accounts = resp.Accounts[:0]

		codes := make([]string, len(accounting.DefaultChart))
		for i, def := range accounting.DefaultChart {
			codes[i] = def.Code
		}
		existing, err := repos.Accounts().FindByCodes(ctx, tenantID, codes)
		if err != nil {
			return err
		}

		for _, def := range accounting.DefaultChart {
			if a, ok := existing[def.Code]; ok {
				resp.Existing++
				resp.Accounts = append(resp.Accounts, ToAccountResponse(a))
				continue
			}
			account, err := accounting.NewAccount(tenantID, def.Code, def.Name, def.Type)
			if err != nil {
				return err
			}
			if err := repos.Accounts().Save(ctx, account); err != nil {
				return fmt.Errorf("failed to seed account %s: %w", def.Code, err)
			}
			resp.Created++
			resp.Accounts = append(resp.Accounts, ToAccountResponse(account))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateJournalVoucher records a manual voucher after checking balance and accounts
func (s *AccountingService) CreateJournalVoucher(ctx context.Context, tenantID uuid.UUID, req JournalVoucherRequest) (*VoucherResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "voucher", "create_journal")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		"entry_count", len(req.Entries),
	)

	lines := make([]accounting.EntryLine, len(req.Entries))
	for i, e := range req.Entries {
		lines[i] = accounting.EntryLine{
			AccountID:   e.AccountID,
			Debit:       e.Debit,
			Credit:      e.Credit,
			Description: e.Description,
		}
	}

	voucher, err := accounting.NewVoucher(tenantID, accounting.VoucherTypeJournal, req.Date, lines)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	voucher.Notes = req.Notes

	var accounts map[uuid.UUID]*accounting.Account
	err = s.scope.Execute(ctx, func(repos uow.Repositories) error {
		ids := make([]uuid.UUID, len(lines))
		for i, l := range lines {
			ids[i] = l.AccountID
		}
		var err error
		accounts, err = repos.Accounts().FindByIDs(ctx, tenantID, ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if _, ok := accounts[id]; !ok {
				return shared.NewDomainErrorf(shared.CodeAccountNotFound, "Account not found: %s", id)
			}
		}
		return persistVoucher(ctx, repos, voucher)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrVoucherID, voucher.ID.String())
	resp := ToVoucherResponse(voucher, accounts)
	return &resp, nil
}

// GetVoucher returns a voucher with its entries
func (s *AccountingService) GetVoucher(ctx context.Context, tenantID, voucherID uuid.UUID) (*VoucherResponse, error) {
	voucher, err := s.voucherRepo.FindByID(ctx, tenantID, voucherID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(voucher.Entries))
	for i, e := range voucher.Entries {
		ids[i] = e.AccountID
	}
	accounts, err := s.accountRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	resp := ToVoucherResponse(voucher, accounts)
	return &resp, nil
}

// ListVouchers lists vouchers without their entries, newest first
func (s *AccountingService) ListVouchers(ctx context.Context, tenantID uuid.UUID, filter VoucherListFilter) ([]VoucherResponse, int64, error) {
	domainFilter := accounting.VoucherFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			From:     filter.StartDate,
			To:       endOfDayPtr(filter.EndDate),
		}.Normalize(),
		VoucherType: accounting.VoucherType(filter.VoucherType),
		ReferenceID: filter.ReferenceID,
	}
	vouchers, total, err := s.voucherRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]VoucherResponse, len(vouchers))
	for i := range vouchers {
		out[i] = ToVoucherResponse(&vouchers[i], nil)
	}
	return out, total, nil
}

// GetLedger returns the account's entries with running balance.
// When From is set the opening balance carries everything posted before it.
func (s *AccountingService) GetLedger(ctx context.Context, tenantID uuid.UUID, q LedgerQuery) (*LedgerResponse, error) {
	account, err := s.findAccount(ctx, tenantID, q.AccountID)
	if err != nil {
		return nil, err
	}
	from := startOfDayPtr(q.From)
	to := endOfDayPtr(q.To)
	if from != nil && to != nil && from.After(*to) {
		return nil, shared.NewDomainError(shared.CodeValidation, "Start date must not be after end date")
	}

	opening, err := s.openingBalance(ctx, tenantID, account.ID, from)
	if err != nil {
		return nil, err
	}
	rows, err := s.reader.EntriesForAccount(ctx, tenantID, account.ID, from, to)
	if err != nil {
		return nil, err
	}

	ledger := accounting.BuildLedger(account, opening, rows)
	ledger.From, ledger.To = q.From, q.To
	resp := ToLedgerResponse(ledger)
	return &resp, nil
}

// GetTrialBalance nets every account over all entries dated on or before asOf
func (s *AccountingService) GetTrialBalance(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (*TrialBalanceResponse, error) {
	tb, err := s.trialBalance(ctx, tenantID, asOf)
	if err != nil {
		return nil, err
	}
	resp := ToTrialBalanceResponse(tb)
	return &resp, nil
}

// GetProfitAndLoss sums income and expense accounts over [from, to]
func (s *AccountingService) GetProfitAndLoss(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*ProfitAndLossResponse, error) {
	start, end := startOfDay(from), endOfDay(to)
	if start.After(end) {
		return nil, shared.NewDomainError(shared.CodeValidation, "Start date must not be after end date")
	}
	totals, err := s.reader.Totals(ctx, tenantID, &start, end)
	if err != nil {
		return nil, err
	}
	resp := ToProfitAndLossResponse(accounting.BuildProfitAndLoss(start, end, totals))
	return &resp, nil
}

// ExportTrialBalance renders the trial balance and archives a copy when an archiver is set.
// Archive failures are reported; the rendered file is still returned.
func (s *AccountingService) ExportTrialBalance(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (*ExportFile, error) {
	if s.writer == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Trial balance export is not configured")
	}
	tb, err := s.trialBalance(ctx, tenantID, asOf)
	if err != nil {
		return nil, err
	}
	content, err := s.writer.WriteTrialBalance(tb)
	if err != nil {
		return nil, fmt.Errorf("failed to render trial balance: %w", err)
	}

	file := &ExportFile{
		FileName:    fmt.Sprintf("trial-balance-%s.%s", asOf.UTC().Format("2006-01-02"), s.writer.Extension()),
		ContentType: s.writer.ContentType(),
		Content:     content,
	}
	if s.archiver != nil {
		key := fmt.Sprintf("%s/%s", tenantID, file.FileName)
		location, err := s.archiver.Archive(ctx, key, content, file.ContentType)
		if err != nil {
			return file, fmt.Errorf("failed to archive trial balance: %w", err)
		}
		file.ArchiveLocation = location
	}
	return file, nil
}

func (s *AccountingService) trialBalance(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (*accounting.TrialBalance, error) {
	if asOf.IsZero() {
		asOf = time.Now()
	}
	end := endOfDay(asOf)
	totals, err := s.reader.Totals(ctx, tenantID, nil, end)
	if err != nil {
		return nil, err
	}
	return accounting.BuildTrialBalance(startOfDay(asOf), totals), nil
}

func (s *AccountingService) openingBalance(ctx context.Context, tenantID, accountID uuid.UUID, from *time.Time) (decimal.Decimal, error) {
	if from == nil {
		return decimal.Zero, nil
	}
	return s.reader.NetBefore(ctx, tenantID, accountID, *from)
}

func (s *AccountingService) findAccount(ctx context.Context, tenantID, accountID uuid.UUID) (*accounting.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, tenantID, accountID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainErrorf(shared.CodeAccountNotFound, "Account not found: %s", accountID)
		}
		return nil, err
	}
	return account, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).Add(24*time.Hour - time.Nanosecond)
}

func startOfDayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := startOfDay(*t)
	return &v
}

func endOfDayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := endOfDay(*t)
	return &v
}
