package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadfile/compliance/internal/models"
	"github.com/roadfile/compliance/pkg/tool"
	"github.com/roadfile/compliance/pkg/types"
)

func TestAutopay_RenewsServiceInWindow(t *testing.T) {
	oldExpiry := *daysFromNow(2)
	enrolled := oldExpiry.AddDate(-1, 0, 0)
	row := &ServiceRow{ID: "t1", UserID: "u1", Type: types.ServiceTypeTariff, Status: types.ServiceStatusActive, EnrolledDate: &enrolled, ExpiryDate: &oldExpiry}
	repo := newFakeRepo(types.ServiceTypeTariff, row)
	gw := &fakeGateway{}
	docs := &fakeDocs{}
	notes := newFakeNotes()
	mailer := &fakeMailer{}
	svc := newTestService(Deps{
		Repos:   []ServiceRepository{repo},
		Users:   newFakeUsers(autopayUser("u1")),
		Notes:   notes,
		Gateway: gw,
		Docs:    docs,
		Mailer:  mailer,
	})

	require.NoError(t, svc.RunAutopay(context.Background()))

	require.Len(t, gw.requests, 1)
	assert.Equal(t, int64(9900), gw.requests[0].AmountCents)
	assert.Equal(t, "card_u1", gw.requests[0].CardRef)

	// Anniversary renewal: one year from the old expiry, not from today.
	assert.Equal(t, oldExpiry.AddDate(1, 0, 0), *row.ExpiryDate)
	assert.Equal(t, testDay, *row.EnrolledDate)

	require.NotNil(t, notes.get(types.ServiceTypeTariff, "t1", types.NotificationTypeAutopayProcessed))
	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].subject, "renewed")
	assert.Contains(t, mailer.sent[0].body, "$99.00")

	// Tariff documents carry the expiry date and get refreshed.
	assert.Equal(t, 1, docs.tariffCalls)
	assert.NotEmpty(t, repo.docURLs["t1"])
}

func TestAutopay_SkipsOutsideWindow(t *testing.T) {
	row := &ServiceRow{ID: "t1", UserID: "u1", Type: types.ServiceTypeTariff, Status: types.ServiceStatusActive, ExpiryDate: daysFromNow(4)}
	repo := newFakeRepo(types.ServiceTypeTariff, row)
	gw := &fakeGateway{}
	svc := newTestService(Deps{
		Repos:   []ServiceRepository{repo},
		Users:   newFakeUsers(autopayUser("u1")),
		Gateway: gw,
	})

	require.NoError(t, svc.RunAutopay(context.Background()))
	assert.Empty(t, gw.requests)
}

func TestAutopay_SkipsIneligibleUsers(t *testing.T) {
	noCard := autopayUser("u1")
	noCard.CardID = ""
	optedOut := manualUser("u2")
	optedOut.CardID = "card_u2"

	rows := []*ServiceRow{
		{ID: "t1", UserID: "u1", Type: types.ServiceTypeTariff, Status: types.ServiceStatusActive, ExpiryDate: daysFromNow(1)},
		{ID: "t2", UserID: "u2", Type: types.ServiceTypeTariff, Status: types.ServiceStatusActive, ExpiryDate: daysFromNow(1)},
	}
	repo := newFakeRepo(types.ServiceTypeTariff, rows...)
	gw := &fakeGateway{}
	mailer := &fakeMailer{}
	svc := newTestService(Deps{
		Repos:   []ServiceRepository{repo},
		Users:   newFakeUsers(noCard, optedOut),
		Gateway: gw,
		Mailer:  mailer,
	})

	require.NoError(t, svc.RunAutopay(context.Background()))
	assert.Empty(t, gw.requests)
	assert.Empty(t, mailer.sent)
}

func TestAutopay_ProcessedGateStopsSecondCharge(t *testing.T) {
	row := &ServiceRow{ID: "a1", UserID: "u1", Type: types.ServiceTypeArbitration, Status: types.ServiceStatusActive, ExpiryDate: daysFromNow(3)}
	repo := newFakeRepo(types.ServiceTypeArbitration, row)
	gw := &fakeGateway{}
	notes := newFakeNotes()
	notes.preRecord(types.ServiceTypeArbitration, "a1", types.NotificationTypeAutopayProcessed)
	svc := newTestService(Deps{
		Repos:   []ServiceRepository{repo},
		Users:   newFakeUsers(autopayUser("u1")),
		Notes:   notes,
		Gateway: gw,
	})

	require.NoError(t, svc.RunAutopay(context.Background()))
	assert.Empty(t, gw.requests)
}

func TestAutopay_DeclineRetriesButEmailsOnce(t *testing.T) {
	row := &ServiceRow{ID: "a1", UserID: "u1", Type: types.ServiceTypeArbitration, Status: types.ServiceStatusActive, ExpiryDate: daysFromNow(2)}
	repo := newFakeRepo(types.ServiceTypeArbitration, row)
	gw := &fakeGateway{declineReason: "insufficient funds"}
	notes := newFakeNotes()
	mailer := &fakeMailer{}
	svc := newTestService(Deps{
		Repos:   []ServiceRepository{repo},
		Users:   newFakeUsers(autopayUser("u1")),
		Notes:   notes,
		Gateway: gw,
		Mailer:  mailer,
	})

	require.NoError(t, svc.RunAutopay(context.Background()))
	require.NoError(t, svc.RunAutopay(context.Background()))

	// A decline never blocks further attempts inside the window.
	require.Len(t, gw.requests, 2)
	// Each attempt is a distinct charge with its own idempotency key.
	assert.NotEqual(t, gw.requests[0].IdempotencyKey, gw.requests[1].IdempotencyKey)
	// The failure notice goes out exactly once per cycle.
	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].subject, "Payment failed")
	n := notes.get(types.ServiceTypeArbitration, "a1", types.NotificationTypeAutopayFailed)
	require.NotNil(t, n)
	assert.Contains(t, n.Message, "insufficient funds")
	// No renewal happened.
	assert.Equal(t, *daysFromNow(2), *row.ExpiryDate)
	assert.Nil(t, notes.get(types.ServiceTypeArbitration, "a1", types.NotificationTypeAutopayProcessed))
}

func TestAutopay_RenewsBundleAsSingleCharge(t *testing.T) {
	bundleID := "bun1"
	oldExpiry := *daysFromNow(1)
	b := &models.Bundle{ID: bundleID, UserID: "u1", Type: types.BundleTypeComplete, Status: types.ServiceStatusActive, ExpiryDate: &oldExpiry}

	arb := &ServiceRow{ID: "a1", UserID: "u1", Type: types.ServiceTypeArbitration, Status: types.ServiceStatusActive, BundleID: &bundleID, ExpiryDate: &oldExpiry}
	tar := &ServiceRow{ID: "t1", UserID: "u1", Type: types.ServiceTypeTariff, Status: types.ServiceStatusActive, BundleID: &bundleID, ExpiryDate: &oldExpiry}
	boc := &ServiceRow{ID: "b1", UserID: "u1", Type: types.ServiceTypeBoc3, Status: types.ServiceStatusActive, BundleID: &bundleID, ExpiryDate: &oldExpiry}

	arbRepo := newFakeRepo(types.ServiceTypeArbitration, arb)
	tarRepo := newFakeRepo(types.ServiceTypeTariff, tar)
	bocRepo := newFakeRepo(types.ServiceTypeBoc3, boc)
	bundles := newFakeBundles(b)
	gw := &fakeGateway{}
	docs := &fakeDocs{}
	notes := newFakeNotes()
	mailer := &fakeMailer{}
	svc := newTestService(Deps{
		Repos:   []ServiceRepository{arbRepo, tarRepo, bocRepo},
		Bundles: bundles,
		Users:   newFakeUsers(autopayUser("u1")),
		Notes:   notes,
		Gateway: gw,
		Docs:    docs,
		Mailer:  mailer,
	})

	require.NoError(t, svc.RunAutopay(context.Background()))

	// One discounted charge for the whole bundle, nothing per member.
	require.Len(t, gw.requests, 1)
	assert.Equal(t, int64(18900), gw.requests[0].AmountCents)

	newExpiry := oldExpiry.AddDate(1, 0, 0)
	assert.Equal(t, newExpiry, *b.ExpiryDate)
	assert.Equal(t, newExpiry, *arb.ExpiryDate)
	assert.Equal(t, newExpiry, *tar.ExpiryDate)
	assert.Equal(t, newExpiry, *boc.ExpiryDate)

	// Documents refresh for the members that have one.
	assert.Equal(t, 1, docs.arbitrationCalls)
	assert.Equal(t, 1, docs.tariffCalls)

	require.NotNil(t, notes.get(types.ServiceTypeBundle, bundleID, types.NotificationTypeAutopayProcessed))
	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].body, "$189.00")
}

func TestAutopay_BundleMembersNeverChargedIndividually(t *testing.T) {
	bundleID := "bun1"
	// The bundle itself already renewed (processed note exists); its members
	// still sit inside the window but must stay untouched.
	b := &models.Bundle{ID: bundleID, UserID: "u1", Type: types.BundleTypeStarter, Status: types.ServiceStatusActive, ExpiryDate: daysFromNow(2)}
	member := &ServiceRow{ID: "a1", UserID: "u1", Type: types.ServiceTypeArbitration, Status: types.ServiceStatusActive, BundleID: &bundleID, ExpiryDate: daysFromNow(2)}
	repo := newFakeRepo(types.ServiceTypeArbitration, member)
	bundles := newFakeBundles(b)
	gw := &fakeGateway{}
	notes := newFakeNotes()
	notes.preRecord(types.ServiceTypeBundle, bundleID, types.NotificationTypeAutopayProcessed)
	svc := newTestService(Deps{
		Repos:   []ServiceRepository{repo},
		Bundles: bundles,
		Users:   newFakeUsers(autopayUser("u1")),
		Notes:   notes,
		Gateway: gw,
	})

	require.NoError(t, svc.RunAutopay(context.Background()))
	assert.Empty(t, gw.requests)
}

func TestAutopay_DocumentFailureDoesNotUndoRenewal(t *testing.T) {
	oldExpiry := *daysFromNow(1)
	row := &ServiceRow{ID: "t1", UserID: "u1", Type: types.ServiceTypeTariff, Status: types.ServiceStatusActive, ExpiryDate: &oldExpiry}
	repo := newFakeRepo(types.ServiceTypeTariff, row)
	docs := &fakeDocs{err: assert.AnError}
	notes := newFakeNotes()
	svc := newTestService(Deps{
		Repos: []ServiceRepository{repo},
		Users: newFakeUsers(autopayUser("u1")),
		Notes: notes,
		Docs:  docs,
	})

	require.NoError(t, svc.RunAutopay(context.Background()))
	assert.Equal(t, oldExpiry.AddDate(1, 0, 0), *row.ExpiryDate)
	require.NotNil(t, notes.get(types.ServiceTypeTariff, "t1", types.NotificationTypeAutopayProcessed))
	assert.Empty(t, repo.docURLs)
}

func TestRunJob_Dispatch(t *testing.T) {
	svc := newTestService(Deps{})

	for _, name := range []string{JobSweep, JobNotifier, JobRenewer} {
		assert.NoError(t, svc.RunJob(context.Background(), name))
	}
	assert.Error(t, svc.RunJob(context.Background(), "defragment"))
}

func TestDateOnlyWindowBoundaries(t *testing.T) {
	// The window is inclusive on both ends at date granularity, regardless of
	// the time-of-day stored on the expiry.
	lateToday := tool.DateOnly(testDay).Add(23 * time.Hour)
	row := &ServiceRow{ID: "t1", UserID: "u1", Type: types.ServiceTypeTariff, Status: types.ServiceStatusActive, ExpiryDate: &lateToday}
	repo := newFakeRepo(types.ServiceTypeTariff, row)
	gw := &fakeGateway{}
	svc := newTestService(Deps{
		Repos:   []ServiceRepository{repo},
		Users:   newFakeUsers(autopayUser("u1")),
		Gateway: gw,
	})

	require.NoError(t, svc.RunAutopay(context.Background()))
	assert.Len(t, gw.requests, 1)
}
