package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-ops/servicedesk-api/internal/dto"
	"github.com/nexus-ops/servicedesk-api/internal/models"
	appErrors "github.com/nexus-ops/servicedesk-api/pkg/errors"
)

type grantKey struct {
	providerType models.ProviderType
	providerKey  string
	name         string
}

type permGrantRepoStub struct {
	grants map[grantKey]bool
	err    error
}

func (s *permGrantRepoStub) ListByProvider(ctx context.Context, providerType models.ProviderType, providerKey string) ([]models.PermissionGrant, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.PermissionGrant
	for key, granted := range s.grants {
		if key.providerType == providerType && key.providerKey == providerKey {
			out = append(out, models.PermissionGrant{
				ProviderType: key.providerType,
				ProviderKey:  key.providerKey,
				Name:         key.name,
				IsGranted:    granted,
			})
		}
	}
	return out, nil
}

func (s *permGrantRepoStub) ListGrantedForRoles(ctx context.Context, roleKeys []string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []string
	for key, granted := range s.grants {
		if key.providerType != models.ProviderRole || !granted {
			continue
		}
		for _, roleKey := range roleKeys {
			if key.providerKey == roleKey {
				out = append(out, key.name)
			}
		}
	}
	return out, nil
}

func (s *permGrantRepoStub) ListGrantedForUser(ctx context.Context, userKey string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []string
	for key, granted := range s.grants {
		if key.providerType == models.ProviderUser && key.providerKey == userKey && granted {
			out = append(out, key.name)
		}
	}
	return out, nil
}

func (s *permGrantRepoStub) Upsert(ctx context.Context, grant *models.PermissionGrant) error {
	if s.err != nil {
		return s.err
	}
	if s.grants == nil {
		s.grants = make(map[grantKey]bool)
	}
	s.grants[grantKey{grant.ProviderType, grant.ProviderKey, grant.Name}] = grant.IsGranted
	return nil
}

func roleGrant(roleName, permission string) grantKey {
	return grantKey{models.ProviderRole, roleName, permission}
}

func userGrant(userID, permission string) grantKey {
	return grantKey{models.ProviderUser, userID, permission}
}

func newPermissionTestService(repo *permGrantRepoStub, cache *cacheStub) *PermissionService {
	var c permissionCache
	if cache != nil {
		c = cache
	}
	return NewPermissionService(repo, c, &auditRecorderStub{}, validator.New(), nil, nil)
}

func TestGetPermissionsReturnsFullCatalogue(t *testing.T) {
	repo := &permGrantRepoStub{grants: map[grantKey]bool{
		roleGrant("Teacher", models.PermRepairRequestsCreate): true,
	}}
	svc := newPermissionTestService(repo, nil)

	result, err := svc.GetPermissions(context.Background(), "r", " Teacher ")
	require.NoError(t, err)
	assert.Equal(t, "R", result.ProviderType)
	assert.Equal(t, "Teacher", result.ProviderKey)
	require.Len(t, result.Groups, 1)
	assert.Equal(t, models.PermissionGroup, result.Groups[0].Group)
	require.Len(t, result.Groups[0].Permissions, len(models.AllPermissions()))

	grantedCount := 0
	for _, entry := range result.Groups[0].Permissions {
		if entry.IsGranted {
			grantedCount++
			assert.Equal(t, models.PermRepairRequestsCreate, entry.Name)
		}
	}
	assert.Equal(t, 1, grantedCount)
}

func TestGetPermissionsRejectsUnknownProvider(t *testing.T) {
	svc := newPermissionTestService(&permGrantRepoStub{}, nil)
	_, err := svc.GetPermissions(context.Background(), "X", "Teacher")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.GetPermissions(context.Background(), "R", "  ")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSetPermissionsUpsertsGrants(t *testing.T) {
	repo := &permGrantRepoStub{}
	svc := newPermissionTestService(repo, nil)

	err := svc.SetPermissions(context.Background(), "R", "Teacher", dto.UpdatePermissionsRequest{
		Permissions: []dto.UpdatePermissionEntry{
			{Name: models.PermRepairRequestsCreate, IsGranted: true},
			{Name: models.PermRepairRequestsCancel, IsGranted: false},
		},
	}, &models.JWTClaims{UserID: "admin-1"})
	require.NoError(t, err)
	assert.True(t, repo.grants[roleGrant("Teacher", models.PermRepairRequestsCreate)])
	granted, ok := repo.grants[roleGrant("Teacher", models.PermRepairRequestsCancel)]
	require.True(t, ok)
	assert.False(t, granted)
}

func TestSetPermissionsRejectsUnknownName(t *testing.T) {
	repo := &permGrantRepoStub{}
	svc := newPermissionTestService(repo, nil)

	err := svc.SetPermissions(context.Background(), "R", "Teacher", dto.UpdatePermissionsRequest{
		Permissions: []dto.UpdatePermissionEntry{
			{Name: "ServiceDesk.DoesNotExist", IsGranted: true},
		},
	}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.grants)
}

func TestSetPermissionsRequiresEntries(t *testing.T) {
	svc := newPermissionTestService(&permGrantRepoStub{}, nil)
	err := svc.SetPermissions(context.Background(), "R", "Teacher", dto.UpdatePermissionsRequest{}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSetPermissionsInvalidatesSnapshots(t *testing.T) {
	cache := &cacheStub{entries: map[string][]byte{"servicedesk:perms:user:u1": []byte(`["x"]`)}}
	svc := newPermissionTestService(&permGrantRepoStub{}, cache)

	err := svc.SetPermissions(context.Background(), "U", "u1", dto.UpdatePermissionsRequest{
		Permissions: []dto.UpdatePermissionEntry{{Name: models.PermRepairRequestsDetail, IsGranted: true}},
	}, nil)
	require.NoError(t, err)
	require.Len(t, cache.patterns, 1)
	assert.Equal(t, "servicedesk:perms:user:*", cache.patterns[0])
}

func TestIsGrantedUnionsRoleAndUserGrants(t *testing.T) {
	repo := &permGrantRepoStub{grants: map[grantKey]bool{
		roleGrant("Teacher", models.PermRepairRequestsCreate): true,
		userGrant("u1", models.PermRepairRequestsAdminList):   true,
	}}
	svc := newPermissionTestService(repo, nil)
	claims := &models.JWTClaims{UserID: "u1", Roles: []string{"Teacher"}}

	granted, err := svc.IsGranted(context.Background(), claims, models.PermRepairRequestsCreate)
	require.NoError(t, err)
	assert.True(t, granted)

	granted, err = svc.IsGranted(context.Background(), claims, models.PermRepairRequestsAdminList)
	require.NoError(t, err)
	assert.True(t, granted)

	granted, err = svc.IsGranted(context.Background(), claims, models.PermRepairRequestsApprove)
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestIsGrantedNilClaims(t *testing.T) {
	svc := newPermissionTestService(&permGrantRepoStub{}, nil)
	granted, err := svc.IsGranted(context.Background(), nil, models.PermRepairRequestsCreate)
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestIsGrantedUsesCachedSnapshot(t *testing.T) {
	repo := &permGrantRepoStub{grants: map[grantKey]bool{
		userGrant("u1", models.PermRepairRequestsDetail): true,
	}}
	cache := &cacheStub{}
	svc := newPermissionTestService(repo, cache)
	claims := &models.JWTClaims{UserID: "u1"}

	_, err := svc.IsGranted(context.Background(), claims, models.PermRepairRequestsDetail)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	repo.grants = nil
	granted, err := svc.IsGranted(context.Background(), claims, models.PermRepairRequestsDetail)
	require.NoError(t, err)
	assert.True(t, granted)
	assert.Equal(t, 1, cache.getHits)
}

func TestGrantedNamesOrderedByCatalogue(t *testing.T) {
	repo := &permGrantRepoStub{grants: map[grantKey]bool{
		userGrant("u1", models.PermRoleMenusManage):      true,
		userGrant("u1", models.PermRepairRequestsCreate): true,
		userGrant("u1", models.PermRepairRequestsQuote):  false,
		roleGrant("Electrician", models.PermMenusManage): true,
	}}
	svc := newPermissionTestService(repo, nil)

	names, err := svc.GrantedNames(context.Background(), &models.JWTClaims{UserID: "u1", Roles: []string{"Electrician"}})
	require.NoError(t, err)
	assert.Equal(t, []string{
		models.PermRepairRequestsCreate,
		models.PermMenusManage,
		models.PermRoleMenusManage,
	}, names)
}
