package services_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/paydesk/paydesk_backend/internal/core/domain"
	portsrepo "github.com/paydesk/paydesk_backend/internal/core/ports/repositories"
	"github.com/stretchr/testify/mock"
)

// --- Mock UserRepository ---

type MockUserRepository struct {
	mock.Mock
	FindUserByIDFn         func(ctx context.Context, userID string) (*domain.User, error)
	FindUserByEmailFn      func(ctx context.Context, email string) (*domain.User, error)
	ListUsersFn            func(ctx context.Context) ([]domain.User, error)
	FindFirstActiveAdminFn func(ctx context.Context) (*domain.User, error)
	SaveUserFn             func(ctx context.Context, user domain.User) error
	UpdateUserFn           func(ctx context.Context, user domain.User) error
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	if m.FindUserByIDFn != nil {
		return m.FindUserByIDFn(ctx, userID)
	}
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindUserByEmailFn != nil {
		return m.FindUserByEmailFn(ctx, email)
	}
	args := m.Called(ctx, email)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	if m.ListUsersFn != nil {
		return m.ListUsersFn(ctx)
	}
	args := m.Called(ctx)
	var users []domain.User
	if args.Get(0) != nil {
		users = args.Get(0).([]domain.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) FindFirstActiveAdmin(ctx context.Context) (*domain.User, error) {
	if m.FindFirstActiveAdminFn != nil {
		return m.FindFirstActiveAdminFn(ctx)
	}
	args := m.Called(ctx)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	if m.SaveUserFn != nil {
		return m.SaveUserFn(ctx, user)
	}
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	if m.UpdateUserFn != nil {
		return m.UpdateUserFn(ctx, user)
	}
	return m.Called(ctx, user).Error(0)
}

// --- Mock ExpenseCategoryRepository ---

type MockExpenseCategoryRepository struct {
	mock.Mock
	FindExpenseCategoryByIDFn func(ctx context.Context, expenseCategoryID string) (*domain.ExpenseCategory, error)
}

func (m *MockExpenseCategoryRepository) SaveExpenseCategory(ctx context.Context, ec domain.ExpenseCategory) error {
	return m.Called(ctx, ec).Error(0)
}

func (m *MockExpenseCategoryRepository) FindExpenseCategoryByID(ctx context.Context, expenseCategoryID string) (*domain.ExpenseCategory, error) {
	if m.FindExpenseCategoryByIDFn != nil {
		return m.FindExpenseCategoryByIDFn(ctx, expenseCategoryID)
	}
	args := m.Called(ctx, expenseCategoryID)
	var ec *domain.ExpenseCategory
	if args.Get(0) != nil {
		ec = args.Get(0).(*domain.ExpenseCategory)
	}
	return ec, args.Error(1)
}

func (m *MockExpenseCategoryRepository) ListExpenseCategories(ctx context.Context) ([]domain.ExpenseCategory, error) {
	args := m.Called(ctx)
	var ecs []domain.ExpenseCategory
	if args.Get(0) != nil {
		ecs = args.Get(0).([]domain.ExpenseCategory)
	}
	return ecs, args.Error(1)
}

func (m *MockExpenseCategoryRepository) UpdateExpenseCategory(ctx context.Context, ec domain.ExpenseCategory) error {
	return m.Called(ctx, ec).Error(0)
}

func (m *MockExpenseCategoryRepository) DeleteExpenseCategory(ctx context.Context, expenseCategoryID string) error {
	return m.Called(ctx, expenseCategoryID).Error(0)
}

// --- Mock PaymentRequestRepository ---

type MockPaymentRequestRepository struct {
	mock.Mock
	FindRequestByIDFn            func(ctx context.Context, paymentRequestID string) (*domain.PaymentRequest, error)
	ListRequestsFn               func(ctx context.Context, filter portsrepo.ListRequestsFilter) ([]domain.PaymentRequest, error)
	CountRequestsFn              func(ctx context.Context, filter portsrepo.ListRequestsFilter) (int64, error)
	SumRequestsFn                func(ctx context.Context, filter portsrepo.ListRequestsFilter) (portsrepo.RequestTotals, error)
	ListExpiredRequisitesFilesFn func(ctx context.Context, cutoff time.Time) ([]domain.PaymentRequest, error)
	SaveRequestFn                func(ctx context.Context, req domain.PaymentRequest) error
	UpdateRequestFn              func(ctx context.Context, req domain.PaymentRequest) error
	AddParticipantFn             func(ctx context.Context, paymentRequestID, userID string) error
	ClearRequisitesFileFn        func(ctx context.Context, paymentRequestID string) error
}

func (m *MockPaymentRequestRepository) FindRequestByID(ctx context.Context, paymentRequestID string) (*domain.PaymentRequest, error) {
	if m.FindRequestByIDFn != nil {
		return m.FindRequestByIDFn(ctx, paymentRequestID)
	}
	args := m.Called(ctx, paymentRequestID)
	var pr *domain.PaymentRequest
	if args.Get(0) != nil {
		pr = args.Get(0).(*domain.PaymentRequest)
	}
	return pr, args.Error(1)
}

func (m *MockPaymentRequestRepository) ListRequests(ctx context.Context, filter portsrepo.ListRequestsFilter) ([]domain.PaymentRequest, error) {
	if m.ListRequestsFn != nil {
		return m.ListRequestsFn(ctx, filter)
	}
	args := m.Called(ctx, filter)
	var prs []domain.PaymentRequest
	if args.Get(0) != nil {
		prs = args.Get(0).([]domain.PaymentRequest)
	}
	return prs, args.Error(1)
}

func (m *MockPaymentRequestRepository) CountRequests(ctx context.Context, filter portsrepo.ListRequestsFilter) (int64, error) {
	if m.CountRequestsFn != nil {
		return m.CountRequestsFn(ctx, filter)
	}
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRequestRepository) SumRequests(ctx context.Context, filter portsrepo.ListRequestsFilter) (portsrepo.RequestTotals, error) {
	if m.SumRequestsFn != nil {
		return m.SumRequestsFn(ctx, filter)
	}
	args := m.Called(ctx, filter)
	return args.Get(0).(portsrepo.RequestTotals), args.Error(1)
}

func (m *MockPaymentRequestRepository) ListExpiredRequisitesFiles(ctx context.Context, cutoff time.Time) ([]domain.PaymentRequest, error) {
	if m.ListExpiredRequisitesFilesFn != nil {
		return m.ListExpiredRequisitesFilesFn(ctx, cutoff)
	}
	args := m.Called(ctx, cutoff)
	var prs []domain.PaymentRequest
	if args.Get(0) != nil {
		prs = args.Get(0).([]domain.PaymentRequest)
	}
	return prs, args.Error(1)
}

func (m *MockPaymentRequestRepository) SaveRequest(ctx context.Context, req domain.PaymentRequest) error {
	if m.SaveRequestFn != nil {
		return m.SaveRequestFn(ctx, req)
	}
	return m.Called(ctx, req).Error(0)
}

func (m *MockPaymentRequestRepository) UpdateRequest(ctx context.Context, req domain.PaymentRequest) error {
	if m.UpdateRequestFn != nil {
		return m.UpdateRequestFn(ctx, req)
	}
	return m.Called(ctx, req).Error(0)
}

func (m *MockPaymentRequestRepository) AddParticipant(ctx context.Context, paymentRequestID, userID string) error {
	if m.AddParticipantFn != nil {
		return m.AddParticipantFn(ctx, paymentRequestID, userID)
	}
	return m.Called(ctx, paymentRequestID, userID).Error(0)
}

func (m *MockPaymentRequestRepository) ClearRequisitesFile(ctx context.Context, paymentRequestID string) error {
	if m.ClearRequisitesFileFn != nil {
		return m.ClearRequisitesFileFn(ctx, paymentRequestID)
	}
	return m.Called(ctx, paymentRequestID).Error(0)
}

// --- Mock AuditRepository ---

type MockAuditRepository struct {
	mock.Mock
	SaveAuditRecordFn        func(ctx context.Context, record domain.AuditRecord) error
	ListAuditsByRequestIDFn  func(ctx context.Context, paymentRequestID string) ([]domain.AuditRecord, error)
	ListAuditsByRequestIDsFn func(ctx context.Context, paymentRequestIDs []string) (map[string][]domain.AuditRecord, error)
}

func (m *MockAuditRepository) SaveAuditRecord(ctx context.Context, record domain.AuditRecord) error {
	if m.SaveAuditRecordFn != nil {
		return m.SaveAuditRecordFn(ctx, record)
	}
	return m.Called(ctx, record).Error(0)
}

func (m *MockAuditRepository) ListAuditsByRequestID(ctx context.Context, paymentRequestID string) ([]domain.AuditRecord, error) {
	if m.ListAuditsByRequestIDFn != nil {
		return m.ListAuditsByRequestIDFn(ctx, paymentRequestID)
	}
	args := m.Called(ctx, paymentRequestID)
	var recs []domain.AuditRecord
	if args.Get(0) != nil {
		recs = args.Get(0).([]domain.AuditRecord)
	}
	return recs, args.Error(1)
}

func (m *MockAuditRepository) ListAuditsByRequestIDs(ctx context.Context, paymentRequestIDs []string) (map[string][]domain.AuditRecord, error) {
	if m.ListAuditsByRequestIDsFn != nil {
		return m.ListAuditsByRequestIDsFn(ctx, paymentRequestIDs)
	}
	args := m.Called(ctx, paymentRequestIDs)
	var recs map[string][]domain.AuditRecord
	if args.Get(0) != nil {
		recs = args.Get(0).(map[string][]domain.AuditRecord)
	}
	return recs, args.Error(1)
}

// --- Mock RuleRepository ---

type MockRuleRepository struct {
	mock.Mock
	FindRuleByIDFn   func(ctx context.Context, ruleID string) (*domain.RecurrenceRule, error)
	ListRulesFn      func(ctx context.Context) ([]domain.RecurrenceRule, error)
	FindDueRulesFn   func(ctx context.Context, now time.Time, limit int) ([]domain.RecurrenceRule, error)
	SaveRuleFn       func(ctx context.Context, rule domain.RecurrenceRule) error
	UpdateRuleFn     func(ctx context.Context, rule domain.RecurrenceRule) error
	DeleteRuleFn     func(ctx context.Context, ruleID string) error
	ExecuteDueRuleFn func(ctx context.Context, now time.Time, rule domain.RecurrenceRule, req domain.PaymentRequest, audit domain.AuditRecord) (bool, error)
	ListRuleLogsFn   func(ctx context.Context, limit int) ([]domain.RuleLogEntry, error)
	SaveRuleLogFn    func(ctx context.Context, entry domain.RuleLogEntry) error
}

func (m *MockRuleRepository) FindRuleByID(ctx context.Context, ruleID string) (*domain.RecurrenceRule, error) {
	if m.FindRuleByIDFn != nil {
		return m.FindRuleByIDFn(ctx, ruleID)
	}
	args := m.Called(ctx, ruleID)
	var rule *domain.RecurrenceRule
	if args.Get(0) != nil {
		rule = args.Get(0).(*domain.RecurrenceRule)
	}
	return rule, args.Error(1)
}

func (m *MockRuleRepository) ListRules(ctx context.Context) ([]domain.RecurrenceRule, error) {
	if m.ListRulesFn != nil {
		return m.ListRulesFn(ctx)
	}
	args := m.Called(ctx)
	var rules []domain.RecurrenceRule
	if args.Get(0) != nil {
		rules = args.Get(0).([]domain.RecurrenceRule)
	}
	return rules, args.Error(1)
}

func (m *MockRuleRepository) FindDueRules(ctx context.Context, now time.Time, limit int) ([]domain.RecurrenceRule, error) {
	if m.FindDueRulesFn != nil {
		return m.FindDueRulesFn(ctx, now, limit)
	}
	args := m.Called(ctx, now, limit)
	var rules []domain.RecurrenceRule
	if args.Get(0) != nil {
		rules = args.Get(0).([]domain.RecurrenceRule)
	}
	return rules, args.Error(1)
}

func (m *MockRuleRepository) SaveRule(ctx context.Context, rule domain.RecurrenceRule) error {
	if m.SaveRuleFn != nil {
		return m.SaveRuleFn(ctx, rule)
	}
	return m.Called(ctx, rule).Error(0)
}

func (m *MockRuleRepository) UpdateRule(ctx context.Context, rule domain.RecurrenceRule) error {
	if m.UpdateRuleFn != nil {
		return m.UpdateRuleFn(ctx, rule)
	}
	return m.Called(ctx, rule).Error(0)
}

func (m *MockRuleRepository) DeleteRule(ctx context.Context, ruleID string) error {
	if m.DeleteRuleFn != nil {
		return m.DeleteRuleFn(ctx, ruleID)
	}
	return m.Called(ctx, ruleID).Error(0)
}

func (m *MockRuleRepository) ExecuteDueRule(ctx context.Context, now time.Time, rule domain.RecurrenceRule, req domain.PaymentRequest, audit domain.AuditRecord) (bool, error) {
	if m.ExecuteDueRuleFn != nil {
		return m.ExecuteDueRuleFn(ctx, now, rule, req, audit)
	}
	args := m.Called(ctx, now, rule, req, audit)
	return args.Bool(0), args.Error(1)
}

func (m *MockRuleRepository) ListRuleLogs(ctx context.Context, limit int) ([]domain.RuleLogEntry, error) {
	if m.ListRuleLogsFn != nil {
		return m.ListRuleLogsFn(ctx, limit)
	}
	args := m.Called(ctx, limit)
	var entries []domain.RuleLogEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.RuleLogEntry)
	}
	return entries, args.Error(1)
}

func (m *MockRuleRepository) SaveRuleLog(ctx context.Context, entry domain.RuleLogEntry) error {
	if m.SaveRuleLogFn != nil {
		return m.SaveRuleLogFn(ctx, entry)
	}
	return m.Called(ctx, entry).Error(0)
}

// --- In-memory BlobStore fake ---

// fakeBlobStore implements platform.BlobStore against a map. URLs are the
// path prefixed with "/files/".
type fakeBlobStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	deleted []string
	failDel map[string]bool
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: map[string][]byte{}, failDel: map[string]bool{}}
}

func (f *fakeBlobStore) Exists(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.blobs[path]
	return ok
}

func (f *fakeBlobStore) Save(r io.Reader, path string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[path] = data
	return nil
}

func (f *fakeBlobStore) Copy(srcPath, dstPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.blobs[srcPath]
	if !ok {
		return fmt.Errorf("no blob at %s", srcPath)
	}
	f.blobs[dstPath] = bytes.Clone(data)
	return nil
}

func (f *fakeBlobStore) Delete(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDel[path] {
		return fmt.Errorf("forced delete failure at %s", path)
	}
	delete(f.blobs, path)
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *fakeBlobStore) URL(path string) string {
	return "/files/" + path
}

func (f *fakeBlobStore) PathFromURL(url string) (string, bool) {
	p, ok := strings.CutPrefix(url, "/files/")
	if !ok {
		return "", false
	}
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return p, true
}

// --- Fixed clock ---

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}
