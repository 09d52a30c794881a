package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/internal/pkg/logger"
	"ai-studyassistant-be/internal/repository/contract"
	"ai-studyassistant-be/internal/repository/specification"
	"ai-studyassistant-be/internal/repository/unitofwork"
	"ai-studyassistant-be/pkg/payments"

	"github.com/google/uuid"
)

// memStore is one shared in-memory database handed to every fake repository,
// so state written through one unit of work is visible to the next.
type memStore struct {
	mu            sync.Mutex
	users         map[uuid.UUID]*entity.User
	plans         map[uuid.UUID]*entity.Plan
	prices        []*entity.PlanPrice
	subscriptions map[uuid.UUID]*entity.Subscription
	transactions  map[uuid.UUID]*entity.Transaction
	usage         map[string]*entity.UsageTracking
	materials     map[uuid.UUID]*entity.StudyMaterial
}

func newMemStore() *memStore {
	return &memStore{
		users:         map[uuid.UUID]*entity.User{},
		plans:         map[uuid.UUID]*entity.Plan{},
		subscriptions: map[uuid.UUID]*entity.Subscription{},
		transactions:  map[uuid.UUID]*entity.Transaction{},
		usage:         map[string]*entity.UsageTracking{},
		materials:     map[uuid.UUID]*entity.StudyMaterial{},
	}
}

func (s *memStore) addUser(u *entity.User) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.Id == uuid.Nil {
		u.Id = uuid.New()
	}
	s.users[u.Id] = u
	return u
}

func (s *memStore) addPlan(p *entity.Plan) *entity.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Id == uuid.Nil {
		p.Id = uuid.New()
	}
	s.plans[p.Id] = p
	return p
}

func (s *memStore) addSubscription(sub *entity.Subscription) *entity.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.Id == uuid.Nil {
		sub.Id = uuid.New()
	}
	s.subscriptions[sub.Id] = sub
	return sub
}

func (s *memStore) addTransaction(t *entity.Transaction) *entity.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Id == uuid.Nil {
		t.Id = uuid.New()
	}
	s.transactions[t.Id] = t
	return t
}

func usageKey(userId uuid.UUID, periodStart time.Time) string {
	return userId.String() + "|" + periodStart.UTC().Format(time.RFC3339)
}

// --- user repository ---

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[user.Id] = user
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[user.Id] = user
	return nil
}

func (r *memUserRepo) FindOne(_ context.Context, _ ...specification.Specification) (*entity.User, error) {
	return nil, nil
}

func (r *memUserRepo) FindById(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.users[id], nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Count(_ context.Context, _ ...specification.Specification) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.users)), nil
}

func (r *memUserRepo) UpdatePlan(_ context.Context, userId uuid.UUID, planId uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[userId]; ok {
		u.PlanId = planId
	}
	return nil
}

// --- plan repository ---

type memPlanRepo struct{ s *memStore }

func (r *memPlanRepo) CreatePlan(_ context.Context, plan *entity.Plan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.plans[plan.Id] = plan
	return nil
}

func (r *memPlanRepo) UpdatePlan(_ context.Context, plan *entity.Plan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.plans[plan.Id] = plan
	return nil
}

func (r *memPlanRepo) FindOnePlan(_ context.Context, _ ...specification.Specification) (*entity.Plan, error) {
	return nil, nil
}

func (r *memPlanRepo) FindPlanById(_ context.Context, id uuid.UUID) (*entity.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.plans[id], nil
}

func (r *memPlanRepo) FindPlanBySku(_ context.Context, sku string) (*entity.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.plans {
		if p.Sku == sku {
			return p, nil
		}
	}
	return nil, nil
}

func (r *memPlanRepo) FindAllPlans(_ context.Context, specs ...specification.Specification) ([]*entity.Plan, error) {
	activeOnly := false
	for _, sp := range specs {
		if _, ok := sp.(specification.ActiveOnly); ok {
			activeOnly = true
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Plan, 0, len(r.s.plans))
	for _, p := range r.s.plans {
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (r *memPlanRepo) CreatePrice(_ context.Context, price *entity.PlanPrice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.prices = append(r.s.prices, price)
	return nil
}

func (r *memPlanRepo) FindActivePrices(_ context.Context, planId uuid.UUID, provider entity.PaymentProvider, currency, interval string) ([]*entity.PlanPrice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.PlanPrice
	for _, p := range r.s.prices {
		if p.PlanId == planId && p.Provider == provider && p.Currency == currency &&
			string(p.BillingInterval) == interval && p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPlanRepo) FindPriceByProviderPriceId(_ context.Context, provider entity.PaymentProvider, providerPriceId string) (*entity.PlanPrice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.prices {
		if p.Provider == provider && p.ProviderPriceId == providerPriceId {
			return p, nil
		}
	}
	return nil, nil
}

func (r *memPlanRepo) FindPricesForPlan(_ context.Context, planId uuid.UUID) ([]*entity.PlanPrice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.PlanPrice
	for _, p := range r.s.prices {
		if p.PlanId == planId {
			out = append(out, p)
		}
	}
	return out, nil
}

// --- subscription repository ---

type memSubscriptionRepo struct{ s *memStore }

func (r *memSubscriptionRepo) Create(_ context.Context, sub *entity.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.subscriptions[sub.Id] = sub
	return nil
}

func (r *memSubscriptionRepo) Update(_ context.Context, sub *entity.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.subscriptions[sub.Id] = sub
	return nil
}

func (r *memSubscriptionRepo) FindOne(_ context.Context, _ ...specification.Specification) (*entity.Subscription, error) {
	return nil, nil
}

func (r *memSubscriptionRepo) FindAll(_ context.Context, _ ...specification.Specification) ([]*entity.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Subscription, 0, len(r.s.subscriptions))
	for _, sub := range r.s.subscriptions {
		out = append(out, sub)
	}
	return out, nil
}

func (r *memSubscriptionRepo) FindById(_ context.Context, id uuid.UUID) (*entity.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.subscriptions[id], nil
}

func (r *memSubscriptionRepo) FindCurrentActive(_ context.Context, userId uuid.UUID, at time.Time) (*entity.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var newest *entity.Subscription
	for _, sub := range r.s.subscriptions {
		if sub.UserId != userId || sub.Status != entity.SubscriptionStatusActive {
			continue
		}
		if !sub.PeriodEnd.After(at) {
			continue
		}
		if newest == nil || sub.CreatedAt.After(newest.CreatedAt) {
			newest = sub
		}
	}
	return newest, nil
}

func (r *memSubscriptionRepo) FindEffective(_ context.Context, userId uuid.UUID, at time.Time) (*entity.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var newest *entity.Subscription
	for _, sub := range r.s.subscriptions {
		if sub.UserId != userId {
			continue
		}
		if sub.Status != entity.SubscriptionStatusActive && sub.Status != entity.SubscriptionStatusCancelled {
			continue
		}
		if !sub.PeriodEnd.After(at) {
			continue
		}
		if newest == nil || sub.CreatedAt.After(newest.CreatedAt) {
			newest = sub
		}
	}
	return newest, nil
}

func (r *memSubscriptionRepo) FindLatestByUser(_ context.Context, userId uuid.UUID) (*entity.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var newest *entity.Subscription
	for _, sub := range r.s.subscriptions {
		if sub.UserId != userId {
			continue
		}
		if newest == nil || sub.CreatedAt.After(newest.CreatedAt) {
			newest = sub
		}
	}
	return newest, nil
}

func (r *memSubscriptionRepo) FindByStripeSubscriptionId(_ context.Context, stripeSubscriptionId string) (*entity.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sub := range r.s.subscriptions {
		if sub.StripeSubscriptionId != nil && *sub.StripeSubscriptionId == stripeSubscriptionId {
			return sub, nil
		}
	}
	return nil, nil
}

func (r *memSubscriptionRepo) FindByPaystackSubscriptionCode(_ context.Context, code string) (*entity.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sub := range r.s.subscriptions {
		if sub.PaystackSubscriptionCode != nil && *sub.PaystackSubscriptionCode == code {
			return sub, nil
		}
	}
	return nil, nil
}

func (r *memSubscriptionRepo) FindLatestActiveByPaystackCustomerCode(_ context.Context, customerCode string) (*entity.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var newest *entity.Subscription
	for _, sub := range r.s.subscriptions {
		if sub.PaystackCustomerCode == nil || *sub.PaystackCustomerCode != customerCode {
			continue
		}
		if sub.Status != entity.SubscriptionStatusActive {
			continue
		}
		if newest == nil || sub.CreatedAt.After(newest.CreatedAt) {
			newest = sub
		}
	}
	return newest, nil
}

// --- transaction repository ---

type memTransactionRepo struct{ s *memStore }

func (r *memTransactionRepo) Create(_ context.Context, t *entity.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.transactions[t.Id] = t
	return nil
}

func (r *memTransactionRepo) Update(_ context.Context, t *entity.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.transactions[t.Id]; ok && existing != t && existing.IsTerminal() {
		// Mirror the terminal guard: settled rows do not move.
		return nil
	}
	r.s.transactions[t.Id] = t
	return nil
}

func (r *memTransactionRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sp := range specs {
		if byId, ok := sp.(specification.ByID); ok {
			if t, ok := r.s.transactions[byId.ID]; ok {
				return t, nil
			}
		}
	}
	return nil, nil
}

func (r *memTransactionRepo) FindAll(_ context.Context, _ ...specification.Specification) ([]*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Transaction, 0, len(r.s.transactions))
	for _, t := range r.s.transactions {
		out = append(out, t)
	}
	return out, nil
}

func (r *memTransactionRepo) FindByReference(_ context.Context, reference string) (*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.transactions {
		if t.Reference == reference {
			return t, nil
		}
	}
	return nil, nil
}

func (r *memTransactionRepo) LinkSubscription(_ context.Context, txnId, subscriptionId uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.transactions[txnId]; ok {
		t.SubscriptionId = &subscriptionId
	}
	return nil
}

func (r *memTransactionRepo) FindLatestUnlinkedSuccess(_ context.Context, provider entity.PaymentProvider, userId *uuid.UUID) (*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var newest *entity.Transaction
	for _, t := range r.s.transactions {
		if t.Provider != provider || t.Status != entity.TransactionStatusSuccess || t.SubscriptionId != nil {
			continue
		}
		if userId != nil && t.UserId != *userId {
			continue
		}
		if newest == nil || t.CreatedAt.After(newest.CreatedAt) {
			newest = t
		}
	}
	return newest, nil
}

func (r *memTransactionRepo) ListByUser(_ context.Context, userId uuid.UUID, limit, offset int) ([]*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Transaction
	for _, t := range r.s.transactions {
		if t.UserId == userId {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memTransactionRepo) ExpireStalePending(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, t := range r.s.transactions {
		if t.Status == entity.TransactionStatusPending && t.ExpiresAt != nil && t.ExpiresAt.Before(now) {
			t.Status = entity.TransactionStatusExpired
			t.StatusReason = entity.ReasonTTLElapsed
			t.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (r *memTransactionRepo) SupersedePending(_ context.Context, userId uuid.UUID, provider entity.PaymentProvider) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.transactions {
		if t.UserId == userId && t.Provider == provider && t.Status == entity.TransactionStatusPending {
			t.Status = entity.TransactionStatusExpired
			t.StatusReason = entity.ReasonSuperseded
		}
	}
	return nil
}

// --- usage repository ---

type memUsageRepo struct{ s *memStore }

func (r *memUsageRepo) Create(_ context.Context, usage *entity.UsageTracking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.usage[usageKey(usage.UserId, usage.PeriodStart)] = usage
	return nil
}

func (r *memUsageRepo) Update(_ context.Context, usage *entity.UsageTracking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.usage[usageKey(usage.UserId, usage.PeriodStart)] = usage
	return nil
}

func (r *memUsageRepo) FindForPeriod(_ context.Context, userId uuid.UUID, periodStart time.Time) (*entity.UsageTracking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.usage[usageKey(userId, periodStart)], nil
}

// --- material repository ---

type memMaterialRepo struct{ s *memStore }

func (r *memMaterialRepo) Create(_ context.Context, m *entity.StudyMaterial) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.materials[m.Id] = m
	return nil
}

func (r *memMaterialRepo) Update(_ context.Context, m *entity.StudyMaterial) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.materials[m.Id] = m
	return nil
}

func (r *memMaterialRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.materials, id)
	return nil
}

func (r *memMaterialRepo) FindOne(_ context.Context, _ ...specification.Specification) (*entity.StudyMaterial, error) {
	return nil, nil
}

func (r *memMaterialRepo) FindById(_ context.Context, id uuid.UUID) (*entity.StudyMaterial, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.materials[id], nil
}

func (r *memMaterialRepo) FindAllByUser(_ context.Context, userId uuid.UUID) ([]*entity.StudyMaterial, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.StudyMaterial
	for _, m := range r.s.materials {
		if m.UserId == userId {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// --- unit of work ---

type memUnitOfWork struct{ s *memStore }

func (u *memUnitOfWork) Begin(context.Context) error { return nil }
func (u *memUnitOfWork) Commit() error               { return nil }
func (u *memUnitOfWork) Rollback() error             { return nil }

func (u *memUnitOfWork) UserRepository() contract.UserRepository {
	return &memUserRepo{u.s}
}
func (u *memUnitOfWork) PlanRepository() contract.PlanRepository {
	return &memPlanRepo{u.s}
}
func (u *memUnitOfWork) SubscriptionRepository() contract.SubscriptionRepository {
	return &memSubscriptionRepo{u.s}
}
func (u *memUnitOfWork) TransactionRepository() contract.TransactionRepository {
	return &memTransactionRepo{u.s}
}
func (u *memUnitOfWork) UsageRepository() contract.UsageRepository {
	return &memUsageRepo{u.s}
}
func (u *memUnitOfWork) MaterialRepository() contract.MaterialRepository {
	return &memMaterialRepo{u.s}
}

type memFactory struct{ s *memStore }

func (f *memFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return &memUnitOfWork{f.s}
}

var _ unitofwork.RepositoryFactory = (*memFactory)(nil)

// --- logger ---

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }
func (nopLogger) GetLogs(string, int, int) ([]logger.LogEntry, error) {
	return nil, nil
}
func (nopLogger) GetLogById(string) (*logger.LogEntry, error) { return nil, nil }

// --- payment provider ---

// stubProvider returns canned responses and records calls.
type stubProvider struct {
	name entity.PaymentProvider

	session    *payments.CheckoutSession
	sessionErr error

	result    *payments.CheckoutResult
	resultErr error

	period    *payments.Period
	periodErr error

	links *payments.InvoiceLinks

	manageURL string

	cancelErr   error
	cancelCalls []struct {
		Id          string
		AtPeriodEnd bool
	}
	checkoutParams []payments.CheckoutParams
}

func (p *stubProvider) Name() entity.PaymentProvider { return p.name }

func (p *stubProvider) CreateCheckout(_ context.Context, params payments.CheckoutParams) (*payments.CheckoutSession, error) {
	p.checkoutParams = append(p.checkoutParams, params)
	return p.session, p.sessionErr
}

func (p *stubProvider) VerifyCheckout(_ context.Context, _ string) (*payments.CheckoutResult, error) {
	return p.result, p.resultErr
}

func (p *stubProvider) SubscriptionPeriod(_ context.Context, _ string) (*payments.Period, error) {
	return p.period, p.periodErr
}

func (p *stubProvider) CancelSubscription(_ context.Context, providerSubscriptionId string, atPeriodEnd bool) error {
	p.cancelCalls = append(p.cancelCalls, struct {
		Id          string
		AtPeriodEnd bool
	}{providerSubscriptionId, atPeriodEnd})
	return p.cancelErr
}

func (p *stubProvider) InvoiceLinks(_ context.Context, _ string) (*payments.InvoiceLinks, error) {
	if p.links != nil {
		return p.links, nil
	}
	return &payments.InvoiceLinks{}, nil
}

func (p *stubProvider) ManageURL(_ context.Context, _ *entity.Subscription, _ string) (string, error) {
	return p.manageURL, nil
}

var _ payments.Provider = (*stubProvider)(nil)
