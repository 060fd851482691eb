package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/roadfile/compliance/internal/models"
	"github.com/roadfile/compliance/pkg/config"
	"github.com/roadfile/compliance/pkg/tool"
	"github.com/roadfile/compliance/pkg/types"
)

// In-memory fakes for the lifecycle collaborators. They implement the same
// date-granularity and terminal-status semantics as the gorm repositories.

type fakeRepo struct {
	st      types.ServiceType
	rows    []*ServiceRow
	findErr error
	markErr error

	docURLs map[string]string
}

func newFakeRepo(st types.ServiceType, rows ...*ServiceRow) *fakeRepo {
	return &fakeRepo{st: st, rows: rows, docURLs: map[string]string{}}
}

func (f *fakeRepo) ServiceType() types.ServiceType { return f.st }

func (f *fakeRepo) FindExpiringOn(ctx context.Context, day time.Time) ([]*ServiceRow, error) {
	return f.FindExpiringBetween(ctx, day, day)
}

func (f *fakeRepo) FindExpiringBetween(ctx context.Context, from, to time.Time) ([]*ServiceRow, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []*ServiceRow
	for _, r := range f.rows {
		if r.ExpiryDate == nil || r.Status.Terminal() {
			continue
		}
		d := tool.DateOnly(*r.ExpiryDate)
		if !d.Before(tool.DateOnly(from)) && !d.After(tool.DateOnly(to)) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindByBundle(ctx context.Context, bundleID string) ([]*ServiceRow, error) {
	var out []*ServiceRow
	for _, r := range f.rows {
		if r.BundleID != nil && *r.BundleID == bundleID && !r.Status.Terminal() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) MarkExpired(ctx context.Context, before time.Time) (int64, error) {
	if f.markErr != nil {
		return 0, f.markErr
	}
	var n int64
	for _, r := range f.rows {
		if r.ExpiryDate != nil && r.ExpiryDate.Before(before) && !r.Status.Terminal() {
			r.Status = types.ServiceStatusExpired
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) Renew(ctx context.Context, id string, newExpiry, enrolledAt time.Time, paymentRef string) error {
	for _, r := range f.rows {
		if r.ID == id {
			e, en := newExpiry, enrolledAt
			r.ExpiryDate = &e
			r.EnrolledDate = &en
			return nil
		}
	}
	return fmt.Errorf("row %s not found", id)
}

func (f *fakeRepo) RenewByBundle(ctx context.Context, bundleID string, newExpiry time.Time) (int64, error) {
	var n int64
	for _, r := range f.rows {
		if r.BundleID != nil && *r.BundleID == bundleID && !r.Status.Terminal() {
			e := newExpiry
			r.ExpiryDate = &e
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) UpdateDocumentURL(ctx context.Context, id, url string) error {
	f.docURLs[id] = url
	return nil
}

type fakeBundles struct {
	rows    []*models.Bundle
	markErr error
	renewed map[string]time.Time
}

func newFakeBundles(rows ...*models.Bundle) *fakeBundles {
	return &fakeBundles{rows: rows, renewed: map[string]time.Time{}}
}

func (f *fakeBundles) FindExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.Bundle, error) {
	var out []*models.Bundle
	for _, b := range f.rows {
		if b.ExpiryDate == nil || b.Status.Terminal() {
			continue
		}
		d := tool.DateOnly(*b.ExpiryDate)
		if !d.Before(tool.DateOnly(from)) && !d.After(tool.DateOnly(to)) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBundles) MarkExpired(ctx context.Context, before time.Time) (int64, error) {
	if f.markErr != nil {
		return 0, f.markErr
	}
	var n int64
	for _, b := range f.rows {
		if b.ExpiryDate != nil && b.ExpiryDate.Before(before) && !b.Status.Terminal() {
			b.Status = types.ServiceStatusExpired
			n++
		}
	}
	return n, nil
}

func (f *fakeBundles) Renew(ctx context.Context, id string, newExpiry time.Time, paymentRef string) error {
	for _, b := range f.rows {
		if b.ID == id {
			e := newExpiry
			b.ExpiryDate = &e
			b.PaymentID = paymentRef
			f.renewed[id] = newExpiry
			return nil
		}
	}
	return fmt.Errorf("bundle %s not found", id)
}

type fakeUsers struct{ users map[string]*models.User }

func newFakeUsers(users ...*models.User) *fakeUsers {
	m := map[string]*models.User{}
	for _, u := range users {
		m[u.ID] = u
	}
	return &fakeUsers{users: m}
}

func (f *fakeUsers) Get(ctx context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
}

type fakeNotes struct {
	mu      sync.Mutex
	entries map[string]*models.Notification
}

func newFakeNotes() *fakeNotes { return &fakeNotes{entries: map[string]*models.Notification{}} }

func noteKey(st types.ServiceType, serviceID string, nt types.NotificationType) string {
	return fmt.Sprintf("%s|%s|%s", st, serviceID, nt)
}

func (f *fakeNotes) Record(ctx context.Context, n *models.Notification) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := noteKey(n.ServiceType, n.ServiceID, n.Type)
	if _, ok := f.entries[key]; ok {
		return false, nil
	}
	f.entries[key] = n
	return true, nil
}

func (f *fakeNotes) Exists(ctx context.Context, st types.ServiceType, serviceID string, nt types.NotificationType) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[noteKey(st, serviceID, nt)]
	return ok, nil
}

func (f *fakeNotes) get(st types.ServiceType, serviceID string, nt types.NotificationType) *models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[noteKey(st, serviceID, nt)]
}

// preRecord seeds an existing entry, simulating an earlier run.
func (f *fakeNotes) preRecord(st types.ServiceType, serviceID string, nt types.NotificationType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[noteKey(st, serviceID, nt)] = &models.Notification{ServiceType: st, ServiceID: serviceID, Type: nt}
}

type fakeGateway struct {
	declineReason string
	requests      []*types.ChargeRequest
}

func (f *fakeGateway) Charge(ctx context.Context, req *types.ChargeRequest) (*types.ChargeResult, error) {
	f.requests = append(f.requests, req)
	if f.declineReason != "" {
		return &types.ChargeResult{Success: false, FailureReason: f.declineReason}, nil
	}
	return &types.ChargeResult{Success: true, PaymentRef: fmt.Sprintf("pay_%d", len(f.requests))}, nil
}

type fakeDocs struct {
	tariffCalls      int
	arbitrationCalls int
	err              error
}

func (f *fakeDocs) RenderTariffDocument(ctx context.Context, user *models.User, order *models.TariffOrder) (string, error) {
	f.tariffCalls++
	if f.err != nil {
		return "", f.err
	}
	return "https://docs.example.com/tariff/" + order.ID + ".pdf", nil
}

func (f *fakeDocs) RenderArbitrationDocument(ctx context.Context, user *models.User, enr *models.ArbitrationEnrollment) (string, error) {
	f.arbitrationCalls++
	if f.err != nil {
		return "", f.err
	}
	return "https://docs.example.com/arbitration/" + enr.ID + ".pdf", nil
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Pricing: config.PricingConfig{
			ServiceRenewal: map[string]int64{
				string(types.ServiceTypeArbitration): 7500,
				string(types.ServiceTypeTariff):      9900,
				string(types.ServiceTypeBoc3):        4500,
			},
			ServicePurchase: map[string]int64{
				string(types.ServiceTypeArbitration): 9900,
				string(types.ServiceTypeTariff):      12900,
				string(types.ServiceTypeBoc3):        5900,
			},
			BundleRenewal: map[string]int64{
				string(types.BundleTypeStarter):  10900,
				string(types.BundleTypeCarrier):  14900,
				string(types.BundleTypeComplete): 18900,
			},
			BundlePurchase: map[string]int64{
				string(types.BundleTypeStarter):  13900,
				string(types.BundleTypeCarrier):  19900,
				string(types.BundleTypeComplete): 24900,
			},
		},
	}
}

// testDay is the fixed "now" for lifecycle tests.
var testDay = time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

func daysFromNow(n int) *time.Time {
	t := tool.DateOnly(testDay).AddDate(0, 0, n)
	return &t
}

func newTestService(deps Deps) *Service {
	if deps.Now == nil {
		deps.Now = func() time.Time { return testDay }
	}
	if deps.Gateway == nil {
		deps.Gateway = &fakeGateway{}
	}
	if deps.Docs == nil {
		deps.Docs = &fakeDocs{}
	}
	if deps.Mailer == nil {
		deps.Mailer = &fakeMailer{}
	}
	if deps.Notes == nil {
		deps.Notes = newFakeNotes()
	}
	if deps.Users == nil {
		deps.Users = newFakeUsers()
	}
	if deps.Bundles == nil {
		deps.Bundles = newFakeBundles()
	}
	return NewService(deps, testConfig(), zap.NewNop().Sugar())
}

func autopayUser(id string) *models.User {
	return &models.User{
		ID:                id,
		Email:             id + "@carrier.example.com",
		CompanyName:       "Acme Trucking",
		AutopayEnabled:    true,
		CardID:            "card_" + id,
		GatewayCustomerID: "cus_" + id,
	}
}

func manualUser(id string) *models.User {
	return &models.User{
		ID:          id,
		Email:       id + "@carrier.example.com",
		CompanyName: "Acme Trucking",
	}
}
