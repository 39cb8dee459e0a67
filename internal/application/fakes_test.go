package application

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-payments/internal/domain/entity"
	"github.com/oksasatya/go-ddd-payments/internal/domain/errs"
)

// fakeProcessor records every call and delegates to optional func fields.
type fakeProcessor struct {
	mu    sync.Mutex
	calls []string

	CreateAccountFunc   func(spec entity.AccountSpec) (string, error)
	LinkFunc            func(accountID, refreshURL, returnURL string) (string, error)
	CustomerInstruments entity.Instruments
	AccountInstruments  entity.Instruments
	ListErr             error
	AttachErr           error
	SetDefaultErr       error
	ChargeFunc          func(req entity.ChargeRequest) (string, error)
	TransferFunc        func(req entity.TransferRequest) (string, error)
	PayoutFunc          func(req entity.PayoutRequest) (string, error)
	lastCharge          entity.ChargeRequest
	lastDefault         string
	lastAttach          string
}

func (f *fakeProcessor) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeProcessor) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeProcessor) Called(name string) bool {
	for _, c := range f.Calls() {
		if c == name {
			return true
		}
	}
	return false
}

func (f *fakeProcessor) CreateExpressAccount(ctx context.Context, spec entity.AccountSpec) (string, error) {
	f.record("create_account")
	if f.CreateAccountFunc != nil {
		return f.CreateAccountFunc(spec)
	}
	return "acct_new1", nil
}

func (f *fakeProcessor) CreateOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	f.record("create_link")
	if f.LinkFunc != nil {
		return f.LinkFunc(accountID, refreshURL, returnURL)
	}
	return "https://connect.example.com/setup/" + accountID, nil
}

func (f *fakeProcessor) ListCustomerInstruments(ctx context.Context, customerID string) (entity.Instruments, error) {
	f.record("list_customer_instruments")
	return f.CustomerInstruments, f.ListErr
}

func (f *fakeProcessor) ListAccountInstruments(ctx context.Context, accountID string) (entity.Instruments, error) {
	f.record("list_account_instruments")
	return f.AccountInstruments, f.ListErr
}

func (f *fakeProcessor) AttachInstrument(ctx context.Context, customerID, instrumentID string) error {
	f.record("attach")
	f.lastAttach = instrumentID
	return f.AttachErr
}

func (f *fakeProcessor) SetDefaultInstrument(ctx context.Context, customerID, instrumentID string) error {
	f.record("set_default")
	f.lastDefault = instrumentID
	return f.SetDefaultErr
}

func (f *fakeProcessor) CreateOffSessionCharge(ctx context.Context, req entity.ChargeRequest) (string, error) {
	f.record("charge")
	f.lastCharge = req
	if f.ChargeFunc != nil {
		return f.ChargeFunc(req)
	}
	return "pi_1_secret_abc", nil
}

func (f *fakeProcessor) CreateTransfer(ctx context.Context, req entity.TransferRequest) (string, error) {
	f.record("transfer")
	if f.TransferFunc != nil {
		return f.TransferFunc(req)
	}
	return "tr_1", nil
}

func (f *fakeProcessor) CreatePayout(ctx context.Context, req entity.PayoutRequest) (string, error) {
	f.record("payout")
	if f.PayoutFunc != nil {
		return f.PayoutFunc(req)
	}
	return "po_1", nil
}

// memIdentityRepo is an in-memory identity store. Reads and writes are atomic
// individually but a read-modify-write across them is not.
type memIdentityRepo struct {
	mu       sync.Mutex
	byEmail  map[string]entity.Identity
	GetErr   error
	WriteErr error
	delay    time.Duration
}

func newMemIdentityRepo() *memIdentityRepo {
	return &memIdentityRepo{byEmail: make(map[string]entity.Identity)}
}

func (m *memIdentityRepo) GetByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	i, ok := m.byEmail[email]
	m.mu.Unlock()
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &i, nil
}

func (m *memIdentityRepo) Create(ctx context.Context, i *entity.Identity) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[i.Email]; ok {
		return errors.New("duplicate key value violates unique constraint")
	}
	m.byEmail[i.Email] = *i
	return nil
}

func (m *memIdentityRepo) UpdateAccountID(ctx context.Context, email, accountID string) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.byEmail[email]
	if !ok {
		return errs.ErrNotFound
	}
	i.AccountID = accountID
	m.byEmail[email] = i
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func at(min int) time.Time {
	return time.Date(2025, 3, 1, 12, min, 0, 0, time.UTC)
}
