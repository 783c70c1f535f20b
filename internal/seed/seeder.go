package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nexus-ops/servicedesk-api/internal/models"
	"github.com/nexus-ops/servicedesk-api/internal/repository"
	"github.com/nexus-ops/servicedesk-api/pkg/config"
)

// roleGrants lists the permissions seeded for each built-in role.
var roleGrants = map[string][]string{
	models.RoleNameTeacher: {
		models.PermRepairRequestsCreate,
		models.PermRepairRequestsUpdate,
		models.PermRepairRequestsCancel,
		models.PermRepairRequestsMyList,
		models.PermRepairRequestsDetail,
	},
	models.RoleNameElectrician: {
		models.PermRepairRequestsQuote,
		models.PermRepairRequestsElectricianList,
		models.PermRepairRequestsDetail,
	},
	models.RoleNameAdmin: models.AllPermissions(),
}

type menuSeed struct {
	Code      string
	Name      string
	Path      string
	Icon      string
	SortOrder int
	Roles     []string
}

var menuSeeds = []menuSeed{
	{Code: "my-repair-requests", Name: "My Repair Requests", Path: "/repair-requests/mine", Icon: "clipboard", SortOrder: 10, Roles: []string{models.RoleNameTeacher}},
	{Code: "work-queue", Name: "Work Queue", Path: "/repair-requests/queue", Icon: "wrench", SortOrder: 20, Roles: []string{models.RoleNameElectrician}},
	{Code: "all-repair-requests", Name: "All Repair Requests", Path: "/repair-requests", Icon: "list", SortOrder: 30, Roles: []string{models.RoleNameAdmin}},
	{Code: "approvals", Name: "Approvals", Path: "/repair-requests/approvals", Icon: "check-circle", SortOrder: 40, Roles: []string{models.RoleNameAdmin}},
	{Code: "administration", Name: "Administration", Icon: "settings", SortOrder: 50, Roles: []string{models.RoleNameAdmin}},
	{Code: "menu-management", Name: "Menus", Path: "/admin/menus", SortOrder: 51, Roles: []string{models.RoleNameAdmin}},
	{Code: "user-management", Name: "Users", Path: "/admin/users", SortOrder: 52, Roles: []string{models.RoleNameAdmin}},
	{Code: "role-management", Name: "Roles", Path: "/admin/roles", SortOrder: 53, Roles: []string{models.RoleNameAdmin}},
}

// Seeder provisions the built-in roles, permission grants, menus and an
// initial admin account.
type Seeder struct {
	users       *repository.UserRepository
	roles       *repository.RoleRepository
	menus       *repository.MenuRepository
	roleMenus   *repository.RoleMenuRepository
	permissions *repository.PermissionRepository
	logger      *zap.Logger
}

// NewSeeder constructs a Seeder.
func NewSeeder(users *repository.UserRepository, roles *repository.RoleRepository, menus *repository.MenuRepository, roleMenus *repository.RoleMenuRepository, permissions *repository.PermissionRepository, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{
		users:       users,
		roles:       roles,
		menus:       menus,
		roleMenus:   roleMenus,
		permissions: permissions,
		logger:      logger,
	}
}

// Run seeds roles, grants and menus. It is idempotent: existing rows are left
// untouched, grants are upserted.
func (s *Seeder) Run(ctx context.Context, cfg config.SeedConfig) error {
	roleIDs, err := s.seedRoles(ctx)
	if err != nil {
		return err
	}
	if err := s.seedGrants(ctx); err != nil {
		return err
	}
	if err := s.seedMenus(ctx, roleIDs); err != nil {
		return err
	}
	if err := s.seedAdminUser(ctx, cfg, roleIDs); err != nil {
		return err
	}
	s.logger.Info("seed completed")
	return nil
}

func (s *Seeder) seedRoles(ctx context.Context) (map[string]string, error) {
	ids := make(map[string]string, 3)
	for _, name := range []string{models.RoleNameTeacher, models.RoleNameElectrician, models.RoleNameAdmin} {
		role, err := s.roles.FindByName(ctx, name)
		if err == nil {
			ids[name] = role.ID
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("find role %s: %w", name, err)
		}
		role = &models.Role{Name: name, IsDefault: name == models.RoleNameTeacher}
		if err := s.roles.Create(ctx, role); err != nil {
			return nil, fmt.Errorf("create role %s: %w", name, err)
		}
		s.logger.Info("seeded role", zap.String("role", name))
		ids[name] = role.ID
	}
	return ids, nil
}

func (s *Seeder) seedGrants(ctx context.Context) error {
	for roleName, grants := range roleGrants {
		for _, name := range grants {
			grant := &models.PermissionGrant{
				ProviderType: models.ProviderRole,
				ProviderKey:  roleName,
				Name:         name,
				IsGranted:    true,
			}
			if err := s.permissions.Upsert(ctx, grant); err != nil {
				return fmt.Errorf("seed grant %s for %s: %w", name, roleName, err)
			}
		}
	}
	return nil
}

func (s *Seeder) seedMenus(ctx context.Context, roleIDs map[string]string) error {
	assignments := make(map[string][]string)

	for _, seed := range menuSeeds {
		exists, err := s.menus.ExistsByCode(ctx, seed.Code)
		if err != nil {
			return fmt.Errorf("check menu %s: %w", seed.Code, err)
		}
		var menuID string
		if exists {
			all, err := s.menus.List(ctx)
			if err != nil {
				return fmt.Errorf("list menus: %w", err)
			}
			for i := range all {
				if all[i].Code == seed.Code {
					menuID = all[i].ID
					break
				}
			}
		} else {
			menu := &models.AppMenu{
				Code:      seed.Code,
				Name:      seed.Name,
				SortOrder: seed.SortOrder,
				IsEnabled: true,
			}
			if seed.Path != "" {
				path := seed.Path
				menu.Path = &path
			}
			if seed.Icon != "" {
				icon := seed.Icon
				menu.Icon = &icon
			}
			if err := s.menus.Create(ctx, menu); err != nil {
				return fmt.Errorf("create menu %s: %w", seed.Code, err)
			}
			s.logger.Info("seeded menu", zap.String("code", seed.Code))
			menuID = menu.ID
		}

		for _, roleName := range seed.Roles {
			assignments[roleName] = append(assignments[roleName], menuID)
		}
	}

	for roleName, menuIDs := range assignments {
		roleID, ok := roleIDs[roleName]
		if !ok {
			continue
		}
		existing, err := s.roleMenus.ListByRole(ctx, roleID)
		if err != nil {
			return fmt.Errorf("list role menus for %s: %w", roleName, err)
		}
		if len(existing) > 0 {
			continue
		}
		if err := s.roleMenus.ReplaceForRole(ctx, roleID, menuIDs); err != nil {
			return fmt.Errorf("assign menus to %s: %w", roleName, err)
		}
	}
	return nil
}

func (s *Seeder) seedAdminUser(ctx context.Context, cfg config.SeedConfig, roleIDs map[string]string) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	if _, err := s.users.FindByEmail(ctx, cfg.AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("find admin user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.User{
		Email:        cfg.AdminEmail,
		PasswordHash: string(hash),
		FullName:     "Administrator",
		Active:       true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	if adminRoleID, ok := roleIDs[models.RoleNameAdmin]; ok {
		if err := s.users.ReplaceRoles(ctx, admin.ID, []string{adminRoleID}); err != nil {
			return fmt.Errorf("assign admin role: %w", err)
		}
	}
	s.logger.Info("seeded admin user", zap.String("email", cfg.AdminEmail))
	return nil
}
