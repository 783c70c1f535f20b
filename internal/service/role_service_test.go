package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-ops/servicedesk-api/internal/dto"
	"github.com/nexus-ops/servicedesk-api/internal/models"
	appErrors "github.com/nexus-ops/servicedesk-api/pkg/errors"
)

type roleRepoStub struct {
	roles       map[string]models.Role
	deletedName string
	err         error
}

func (s *roleRepoStub) List(ctx context.Context) ([]models.Role, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.Role, 0, len(s.roles))
	for _, role := range s.roles {
		out = append(out, role)
	}
	return out, nil
}

func (s *roleRepoStub) FindByID(ctx context.Context, id string) (*models.Role, error) {
	if s.err != nil {
		return nil, s.err
	}
	if role, ok := s.roles[id]; ok {
		return &role, nil
	}
	return nil, sql.ErrNoRows
}

func (s *roleRepoStub) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	for _, role := range s.roles {
		if role.Name == name && role.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *roleRepoStub) Create(ctx context.Context, role *models.Role) error {
	if s.err != nil {
		return s.err
	}
	if s.roles == nil {
		s.roles = make(map[string]models.Role)
	}
	if role.ID == "" {
		role.ID = "role-" + role.Name
	}
	s.roles[role.ID] = *role
	return nil
}

func (s *roleRepoStub) Update(ctx context.Context, role *models.Role) error {
	if s.err != nil {
		return s.err
	}
	s.roles[role.ID] = *role
	return nil
}

func (s *roleRepoStub) Delete(ctx context.Context, id, name string) error {
	if s.err != nil {
		return s.err
	}
	s.deletedName = name
	delete(s.roles, id)
	return nil
}

func TestRoleCreateRejectsDuplicateName(t *testing.T) {
	repo := &roleRepoStub{roles: map[string]models.Role{
		"r1": {ID: "r1", Name: models.RoleNameTeacher},
	}}
	svc := NewRoleService(repo, validator.New(), nil)

	_, err := svc.Create(context.Background(), dto.CreateRoleRequest{Name: models.RoleNameTeacher})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestRoleCreateTrimsName(t *testing.T) {
	repo := &roleRepoStub{}
	svc := NewRoleService(repo, validator.New(), nil)

	item, err := svc.Create(context.Background(), dto.CreateRoleRequest{Name: "  Caretaker  "})
	require.NoError(t, err)
	assert.Equal(t, "Caretaker", item.Name)
}

func TestRoleUpdateAllowsKeepingOwnName(t *testing.T) {
	repo := &roleRepoStub{roles: map[string]models.Role{
		"r1": {ID: "r1", Name: models.RoleNameTeacher},
	}}
	svc := NewRoleService(repo, validator.New(), nil)

	item, err := svc.Update(context.Background(), "r1", dto.UpdateRoleRequest{Name: models.RoleNameTeacher, IsDefault: true})
	require.NoError(t, err)
	assert.True(t, item.IsDefault)
}

func TestRoleDeletePassesNameForGrantCleanup(t *testing.T) {
	repo := &roleRepoStub{roles: map[string]models.Role{
		"r1": {ID: "r1", Name: "Caretaker"},
	}}
	svc := NewRoleService(repo, validator.New(), nil)

	require.NoError(t, svc.Delete(context.Background(), "r1"))
	assert.Equal(t, "Caretaker", repo.deletedName)
	assert.NotContains(t, repo.roles, "r1")
}

func TestRoleGetUnknown(t *testing.T) {
	svc := NewRoleService(&roleRepoStub{}, validator.New(), nil)
	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
