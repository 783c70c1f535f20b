package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-ops/servicedesk-api/internal/dto"
	"github.com/nexus-ops/servicedesk-api/internal/models"
)

func TestPermissionSnapshotRecordsCacheMetrics(t *testing.T) {
	metrics := NewMetricsService()
	repo := &permGrantRepoStub{grants: map[grantKey]bool{
		roleGrant("Teacher", models.PermRepairRequestsCreate): true,
	}}
	cache := &cacheStub{}
	svc := NewPermissionService(repo, cache, &auditRecorderStub{}, validator.New(), nil, metrics)
	claims := &models.JWTClaims{UserID: "u1", Roles: []string{"Teacher"}}

	granted, err := svc.IsGranted(context.Background(), claims, models.PermRepairRequestsCreate)
	require.NoError(t, err)
	assert.True(t, granted)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.cacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheMisses))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.dbQueryDuration))

	granted, err = svc.IsGranted(context.Background(), claims, models.PermRepairRequestsCreate)
	require.NoError(t, err)
	assert.True(t, granted)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheMisses))
}

func TestMyMenusRecordsCacheMetrics(t *testing.T) {
	metrics := NewMetricsService()
	menus := &menuRepoStub{menus: map[string]models.AppMenu{
		"m1": enabledMenu("m1", "approvals", nil, 1),
	}}
	roleMenus := &roleMenuRepoStub{byRole: map[string][]string{"r1": {"m1"}}}
	roles := &roleReaderStub{roles: map[string]models.Role{
		"r1": {ID: "r1", Name: models.RoleNameTeacher},
	}}
	cache := &cacheStub{}
	svc := NewMenuService(menus, roleMenus, roles, cache, &auditRecorderStub{}, validator.New(), nil, metrics, MenuServiceConfig{CacheEnabled: true})
	claims := &models.JWTClaims{UserID: "u1", Roles: []string{models.RoleNameTeacher}}

	_, err := svc.GetMyMenus(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheMisses))

	_, err = svc.GetMyMenus(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheHits))
}

func TestRepairRequestListObservesQueryDuration(t *testing.T) {
	metrics := NewMetricsService()
	repo := &repairRepoStub{listTotal: 0}
	svc := NewRepairRequestService(repo, &permCheckerStub{}, &auditRecorderStub{}, validator.New(), nil, metrics)

	_, _, err := svc.ListAdmin(context.Background(), dto.ListRepairRequestsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.dbQueryDuration))
}

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	var metrics *MetricsService
	metrics.RecordCacheOperation(true)
	metrics.RecordCacheOperation(false)
	metrics.ObserveDBQuery("noop", time.Millisecond)
	metrics.ObserveHTTPRequest("GET", "/health", 200, time.Millisecond)
}
