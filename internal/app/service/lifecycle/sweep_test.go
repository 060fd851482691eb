package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadfile/compliance/internal/models"
	"github.com/roadfile/compliance/pkg/types"
)

func TestRunSweep_ExpiresPastDueRows(t *testing.T) {
	pastDue := &ServiceRow{ID: "a1", UserID: "u1", Type: types.ServiceTypeArbitration, Status: types.ServiceStatusActive, ExpiryDate: daysFromNow(-1)}
	dueToday := &ServiceRow{ID: "a2", UserID: "u1", Type: types.ServiceTypeArbitration, Status: types.ServiceStatusActive, ExpiryDate: daysFromNow(0)}
	future := &ServiceRow{ID: "a3", UserID: "u1", Type: types.ServiceTypeArbitration, Status: types.ServiceStatusActive, ExpiryDate: daysFromNow(30)}
	cancelled := &ServiceRow{ID: "a4", UserID: "u1", Type: types.ServiceTypeArbitration, Status: types.ServiceStatusCancelled, ExpiryDate: daysFromNow(-10)}
	noExpiry := &ServiceRow{ID: "a5", UserID: "u1", Type: types.ServiceTypeArbitration, Status: types.ServiceStatusPending}

	repo := newFakeRepo(types.ServiceTypeArbitration, pastDue, dueToday, future, cancelled, noExpiry)
	svc := newTestService(Deps{Repos: []ServiceRepository{repo}})

	require.NoError(t, svc.RunSweep(context.Background()))

	assert.Equal(t, types.ServiceStatusExpired, pastDue.Status)
	// Due today means still valid through the day.
	assert.Equal(t, types.ServiceStatusActive, dueToday.Status)
	assert.Equal(t, types.ServiceStatusActive, future.Status)
	// Terminal rows stay terminal; cancelled never becomes expired.
	assert.Equal(t, types.ServiceStatusCancelled, cancelled.Status)
	assert.Equal(t, types.ServiceStatusPending, noExpiry.Status)
}

func TestRunSweep_ExpiresBundles(t *testing.T) {
	b := &models.Bundle{ID: "b1", UserID: "u1", Type: types.BundleTypeStarter, Status: types.ServiceStatusActive, ExpiryDate: daysFromNow(-2)}
	bundles := newFakeBundles(b)
	svc := newTestService(Deps{Repos: nil, Bundles: bundles})

	require.NoError(t, svc.RunSweep(context.Background()))
	assert.Equal(t, types.ServiceStatusExpired, b.Status)
}

func TestRunSweep_IsIdempotent(t *testing.T) {
	row := &ServiceRow{ID: "t1", UserID: "u1", Type: types.ServiceTypeTariff, Status: types.ServiceStatusActive, ExpiryDate: daysFromNow(-1)}
	repo := newFakeRepo(types.ServiceTypeTariff, row)
	svc := newTestService(Deps{Repos: []ServiceRepository{repo}})

	require.NoError(t, svc.RunSweep(context.Background()))
	require.NoError(t, svc.RunSweep(context.Background()))
	assert.Equal(t, types.ServiceStatusExpired, row.Status)
}

func TestRunSweep_TableErrorAbortsRun(t *testing.T) {
	row := &ServiceRow{ID: "a1", UserID: "u1", Type: types.ServiceTypeArbitration, Status: types.ServiceStatusActive, ExpiryDate: daysFromNow(-1)}
	repo := newFakeRepo(types.ServiceTypeArbitration, row)
	bundles := newFakeBundles()
	bundles.markErr = errors.New("connection reset")
	svc := newTestService(Deps{Repos: []ServiceRepository{repo}, Bundles: bundles})

	err := svc.RunSweep(context.Background())
	require.Error(t, err)
	// Bundles are swept first, so the service tables were never touched.
	assert.Equal(t, types.ServiceStatusActive, row.Status)
}
