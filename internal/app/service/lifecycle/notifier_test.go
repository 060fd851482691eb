package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadfile/compliance/pkg/types"
)

func TestExpirationCheck_ThirtyDayWarning(t *testing.T) {
	row := &ServiceRow{ID: "a1", UserID: "u1", Type: types.ServiceTypeArbitration, Status: types.ServiceStatusActive, ExpiryDate: daysFromNow(30)}
	repo := newFakeRepo(types.ServiceTypeArbitration, row)
	notes := newFakeNotes()
	mailer := &fakeMailer{}
	svc := newTestService(Deps{
		Repos:  []ServiceRepository{repo},
		Users:  newFakeUsers(manualUser("u1")),
		Notes:  notes,
		Mailer: mailer,
	})

	require.NoError(t, svc.RunExpirationCheck(context.Background()))

	n := notes.get(types.ServiceTypeArbitration, "a1", types.NotificationTypeExpiry30Day)
	require.NotNil(t, n)
	assert.Equal(t, "u1", n.UserID)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "u1@carrier.example.com", mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].subject, "30 days")
	assert.Contains(t, mailer.sent[0].body, "April 14, 2026")
}

func TestExpirationCheck_ThirtyDaySkipsAutopayUsers(t *testing.T) {
	row := &ServiceRow{ID: "a1", UserID: "u1", Type: types.ServiceTypeArbitration, Status: types.ServiceStatusActive, ExpiryDate: daysFromNow(30)}
	repo := newFakeRepo(types.ServiceTypeArbitration, row)
	notes := newFakeNotes()
	mailer := &fakeMailer{}
	svc := newTestService(Deps{
		Repos:  []ServiceRepository{repo},
		Users:  newFakeUsers(autopayUser("u1")),
		Notes:  notes,
		Mailer: mailer,
	})

	require.NoError(t, svc.RunExpirationCheck(context.Background()))
	assert.Nil(t, notes.get(types.ServiceTypeArbitration, "a1", types.NotificationTypeExpiry30Day))
	assert.Empty(t, mailer.sent)
}

func TestExpirationCheck_AutopayReminderQuotesPrice(t *testing.T) {
	row := &ServiceRow{ID: "t1", UserID: "u1", Type: types.ServiceTypeTariff, Status: types.ServiceStatusActive, ExpiryDate: daysFromNow(10)}
	repo := newFakeRepo(types.ServiceTypeTariff, row)
	notes := newFakeNotes()
	mailer := &fakeMailer{}
	svc := newTestService(Deps{
		Repos:  []ServiceRepository{repo},
		Users:  newFakeUsers(autopayUser("u1")),
		Notes:  notes,
		Mailer: mailer,
	})

	require.NoError(t, svc.RunExpirationCheck(context.Background()))

	require.NotNil(t, notes.get(types.ServiceTypeTariff, "t1", types.NotificationTypeAutopay10Day))
	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].body, "$99.00")
}

func TestExpirationCheck_AutopayReminderWithoutCard(t *testing.T) {
	// Autopay enabled but no stored card: the reminder still goes out, it is
	// the renewer that checks eligibility.
	u := autopayUser("u1")
	u.CardID = ""
	row := &ServiceRow{ID: "t1", UserID: "u1", Type: types.ServiceTypeTariff, Status: types.ServiceStatusActive, ExpiryDate: daysFromNow(10)}
	repo := newFakeRepo(types.ServiceTypeTariff, row)
	mailer := &fakeMailer{}
	svc := newTestService(Deps{
		Repos:  []ServiceRepository{repo},
		Users:  newFakeUsers(u),
		Mailer: mailer,
	})

	require.NoError(t, svc.RunExpirationCheck(context.Background()))
	assert.Len(t, mailer.sent, 1)
}

func TestExpirationCheck_FiveDayFinalNotice(t *testing.T) {
	row := &ServiceRow{ID: "b1", UserID: "u1", Type: types.ServiceTypeBoc3, Status: types.ServiceStatusActive, ExpiryDate: daysFromNow(5)}
	repo := newFakeRepo(types.ServiceTypeBoc3, row)
	notes := newFakeNotes()
	mailer := &fakeMailer{}
	svc := newTestService(Deps{
		Repos:  []ServiceRepository{repo},
		Users:  newFakeUsers(manualUser("u1")),
		Notes:  notes,
		Mailer: mailer,
	})

	require.NoError(t, svc.RunExpirationCheck(context.Background()))

	require.NotNil(t, notes.get(types.ServiceTypeBoc3, "b1", types.NotificationTypeExpiry5Day))
	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].subject, "Urgent")
}

func TestExpirationCheck_ExactDateMatchOnly(t *testing.T) {
	// Off-threshold expiries never match: 29 and 31 days out stay silent.
	rows := []*ServiceRow{
		{ID: "a1", UserID: "u1", Type: types.ServiceTypeArbitration, Status: types.ServiceStatusActive, ExpiryDate: daysFromNow(29)},
		{ID: "a2", UserID: "u1", Type: types.ServiceTypeArbitration, Status: types.ServiceStatusActive, ExpiryDate: daysFromNow(31)},
	}
	repo := newFakeRepo(types.ServiceTypeArbitration, rows...)
	mailer := &fakeMailer{}
	svc := newTestService(Deps{
		Repos:  []ServiceRepository{repo},
		Users:  newFakeUsers(manualUser("u1")),
		Mailer: mailer,
	})

	require.NoError(t, svc.RunExpirationCheck(context.Background()))
	assert.Empty(t, mailer.sent)
}

func TestExpirationCheck_DuplicateRunSendsOnce(t *testing.T) {
	row := &ServiceRow{ID: "a1", UserID: "u1", Type: types.ServiceTypeArbitration, Status: types.ServiceStatusActive, ExpiryDate: daysFromNow(30)}
	repo := newFakeRepo(types.ServiceTypeArbitration, row)
	mailer := &fakeMailer{}
	svc := newTestService(Deps{
		Repos:  []ServiceRepository{repo},
		Users:  newFakeUsers(manualUser("u1")),
		Mailer: mailer,
	})

	require.NoError(t, svc.RunExpirationCheck(context.Background()))
	require.NoError(t, svc.RunExpirationCheck(context.Background()))
	assert.Len(t, mailer.sent, 1)
}

func TestExpirationCheck_MissingUserSkipsRow(t *testing.T) {
	orphan := &ServiceRow{ID: "a1", UserID: "ghost", Type: types.ServiceTypeArbitration, Status: types.ServiceStatusActive, ExpiryDate: daysFromNow(30)}
	ok := &ServiceRow{ID: "a2", UserID: "u1", Type: types.ServiceTypeArbitration, Status: types.ServiceStatusActive, ExpiryDate: daysFromNow(30)}
	repo := newFakeRepo(types.ServiceTypeArbitration, orphan, ok)
	mailer := &fakeMailer{}
	svc := newTestService(Deps{
		Repos:  []ServiceRepository{repo},
		Users:  newFakeUsers(manualUser("u1")),
		Mailer: mailer,
	})

	require.NoError(t, svc.RunExpirationCheck(context.Background()))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "u1@carrier.example.com", mailer.sent[0].to)
}
