package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nexus-ops/servicedesk-api/internal/dto"
	"github.com/nexus-ops/servicedesk-api/internal/models"
	appErrors "github.com/nexus-ops/servicedesk-api/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Deactivate(ctx context.Context, id string) error
	ListRoles(ctx context.Context, userID string) ([]models.Role, error)
	ReplaceRoles(ctx context.Context, userID string, roleIDs []string) error
	RevokeUserRefreshTokens(ctx context.Context, userID string) error
}

type userRoleReader interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Role, error)
}

// UserService manages the user directory and role assignments.
type UserService struct {
	users     userRepository
	roles     userRoleReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(users userRepository, roles userRoleReader, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, roles: roles, validator: validate, logger: logger}
}

// List returns users matching the query plus the total count.
func (s *UserService) List(ctx context.Context, query dto.ListUsersQuery) ([]dto.UserItem, int, error) {
	filter := models.UserFilter{
		Active:         query.Active,
		Search:         strings.TrimSpace(query.Search),
		SkipCount:      query.SkipCount,
		MaxResultCount: query.MaxResultCount,
		Sorting:        query.Sorting,
	}
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}

	items := make([]dto.UserItem, 0, len(users))
	for i := range users {
		roles, err := s.users.ListRoles(ctx, users[i].ID)
		if err != nil {
			return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user roles")
		}
		users[i].RoleNames = roleNamesOf(roles)
		items = append(items, dto.NewUserItem(&users[i]))
	}
	return items, total, nil
}

// Get returns a single user with their role names.
func (s *UserService) Get(ctx context.Context, id string) (*dto.UserItem, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	roles, err := s.users.ListRoles(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user roles")
	}
	user.RoleNames = roleNamesOf(roles)
	item := dto.NewUserItem(user)
	return &item, nil
}

// Create registers a new user with a bcrypt hashed password and an optional
// initial role set.
func (s *UserService) Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	taken, err := s.users.ExistsByEmail(ctx, email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email is already registered")
	}

	if err := s.verifyRoleIDs(ctx, req.RoleIDs); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	if len(req.RoleIDs) > 0 {
		if err := s.users.ReplaceRoles(ctx, user.ID, dedupeStrings(req.RoleIDs)); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign roles")
		}
	}

	return s.Get(ctx, user.ID)
}

// Update edits a user's profile and role assignments.
func (s *UserService) Update(ctx context.Context, id string, req dto.UpdateUserRequest) (*dto.UserItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	taken, err := s.users.ExistsByEmail(ctx, email, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email is already registered")
	}

	if err := s.verifyRoleIDs(ctx, req.RoleIDs); err != nil {
		return nil, err
	}

	user.Email = email
	user.FullName = strings.TrimSpace(req.FullName)
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}

	if req.RoleIDs != nil {
		if err := s.users.ReplaceRoles(ctx, id, dedupeStrings(req.RoleIDs)); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign roles")
		}
	}

	return s.Get(ctx, id)
}

// Deactivate soft-deletes a user and revokes their refresh tokens.
func (s *UserService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.findUser(ctx, id); err != nil {
		return err
	}
	if err := s.users.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate user")
	}
	if err := s.users.RevokeUserRefreshTokens(ctx, id); err != nil {
		s.logger.Warn("failed to revoke refresh tokens for deactivated user", zap.Error(err))
	}
	return nil
}

// GetRoles returns a user's assigned roles.
func (s *UserService) GetRoles(ctx context.Context, id string) ([]dto.RoleItem, error) {
	if _, err := s.findUser(ctx, id); err != nil {
		return nil, err
	}
	roles, err := s.users.ListRoles(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user roles")
	}
	return dto.NewRoleItems(roles), nil
}

// SetRoles replaces a user's role set wholesale.
func (s *UserService) SetRoles(ctx context.Context, id string, roleIDs []string) error {
	if _, err := s.findUser(ctx, id); err != nil {
		return err
	}
	unique := dedupeStrings(roleIDs)
	if err := s.verifyRoleIDs(ctx, unique); err != nil {
		return err
	}
	if err := s.users.ReplaceRoles(ctx, id, unique); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign roles")
	}
	return nil
}

func (s *UserService) findUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

func (s *UserService) verifyRoleIDs(ctx context.Context, roleIDs []string) error {
	unique := dedupeStrings(roleIDs)
	if len(unique) == 0 {
		return nil
	}
	roles, err := s.roles.FindByIDs(ctx, unique)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify roles")
	}
	if len(roles) != len(unique) {
		return appErrors.Clone(appErrors.ErrValidation, "one or more roles do not exist")
	}
	return nil
}

func roleNamesOf(roles []models.Role) []string {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}
	return names
}
