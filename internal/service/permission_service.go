package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nexus-ops/servicedesk-api/internal/dto"
	"github.com/nexus-ops/servicedesk-api/internal/models"
	appErrors "github.com/nexus-ops/servicedesk-api/pkg/errors"
)

const (
	permissionCacheKeyPrefix  = "servicedesk:perms:user:"
	permissionCacheKeyPattern = "servicedesk:perms:user:*"
	permissionCacheTTL        = 5 * time.Minute
)

type permissionRepository interface {
	ListByProvider(ctx context.Context, providerType models.ProviderType, providerKey string) ([]models.PermissionGrant, error)
	ListGrantedForRoles(ctx context.Context, roleKeys []string) ([]string, error)
	ListGrantedForUser(ctx context.Context, userKey string) ([]string, error)
	Upsert(ctx context.Context, grant *models.PermissionGrant) error
}

type permissionCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type permissionAuditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// PermissionService resolves and manages permission grants for roles and
// individual users.
type PermissionService struct {
	repo      permissionRepository
	cache     permissionCache
	audit     permissionAuditLogger
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewPermissionService constructs a PermissionService.
func NewPermissionService(repo permissionRepository, cache permissionCache, audit permissionAuditLogger, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *PermissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PermissionService{
		repo:      repo,
		cache:     cache,
		audit:     audit,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
	}
}

// GetPermissions returns every known permission with its granted flag for one
// provider, grouped by feature group.
func (s *PermissionService) GetPermissions(ctx context.Context, providerType, providerKey string) (*dto.GetPermissionsResult, error) {
	pt, key, err := normalizeProvider(providerType, providerKey)
	if err != nil {
		return nil, err
	}

	grants, err := s.repo.ListByProvider(ctx, pt, key)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load permission grants")
	}
	granted := make(map[string]bool, len(grants))
	for _, grant := range grants {
		granted[grant.Name] = grant.IsGranted
	}

	entries := make([]dto.PermissionEntry, 0, len(models.AllPermissions()))
	for _, name := range models.AllPermissions() {
		entries = append(entries, dto.PermissionEntry{Name: name, IsGranted: granted[name]})
	}

	return &dto.GetPermissionsResult{
		ProviderType: string(pt),
		ProviderKey:  key,
		Groups: []dto.PermissionGroupResult{
			{Group: models.PermissionGroup, Permissions: entries},
		},
	}, nil
}

// SetPermissions applies a batch of grant changes to one provider and drops
// every cached permission snapshot.
func (s *PermissionService) SetPermissions(ctx context.Context, providerType, providerKey string, req dto.UpdatePermissionsRequest, actor *models.JWTClaims) error {
	pt, key, err := normalizeProvider(providerType, providerKey)
	if err != nil {
		return err
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid permissions payload")
	}

	known := make(map[string]struct{}, len(models.AllPermissions()))
	for _, name := range models.AllPermissions() {
		known[name] = struct{}{}
	}
	for _, entry := range req.Permissions {
		if _, ok := known[entry.Name]; !ok {
			return appErrors.Clone(appErrors.ErrValidation, "unknown permission "+entry.Name)
		}
	}

	for _, entry := range req.Permissions {
		grant := &models.PermissionGrant{
			ProviderType: pt,
			ProviderKey:  key,
			Name:         entry.Name,
			IsGranted:    entry.IsGranted,
		}
		if err := s.repo.Upsert(ctx, grant); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store permission grant")
		}
	}

	s.invalidateSnapshots(ctx)
	s.emitSetAudit(ctx, actor, pt, key, req.Permissions)
	return nil
}

// IsGranted reports whether the caller holds the named permission through any
// of their roles or through a direct user grant.
func (s *PermissionService) IsGranted(ctx context.Context, claims *models.JWTClaims, name string) (bool, error) {
	if claims == nil || claims.UserID == "" {
		return false, nil
	}

	snapshot, err := s.snapshotFor(ctx, claims)
	if err != nil {
		return false, err
	}
	_, ok := snapshot[name]
	return ok, nil
}

// GrantedNames returns the caller's full set of granted permission names.
func (s *PermissionService) GrantedNames(ctx context.Context, claims *models.JWTClaims) ([]string, error) {
	if claims == nil || claims.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	snapshot, err := s.snapshotFor(ctx, claims)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(snapshot))
	for _, name := range models.AllPermissions() {
		if _, ok := snapshot[name]; ok {
			names = append(names, name)
		}
	}
	return names, nil
}

func (s *PermissionService) snapshotFor(ctx context.Context, claims *models.JWTClaims) (map[string]struct{}, error) {
	cacheKey := permissionCacheKeyPrefix + claims.UserID
	if s.cache != nil {
		var cached []string
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return toSet(cached), nil
		} else if err != appErrors.ErrCacheMiss {
			s.logger.Warn("permission cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheOperation(false)
	}

	start := time.Now()
	var names []string
	if len(claims.Roles) > 0 {
		roleNames, err := s.repo.ListGrantedForRoles(ctx, claims.Roles)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve role grants")
		}
		names = append(names, roleNames...)
	}
	userNames, err := s.repo.ListGrantedForUser(ctx, claims.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve user grants")
	}
	names = append(names, userNames...)
	s.metrics.ObserveDBQuery("permission_snapshot", time.Since(start))

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, names, permissionCacheTTL); err != nil {
			s.logger.Warn("permission cache write failed", zap.Error(err))
		}
	}
	return toSet(names), nil
}

func (s *PermissionService) invalidateSnapshots(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, permissionCacheKeyPattern); err != nil {
		s.logger.Warn("permission cache invalidation failed", zap.Error(err))
	}
}

func (s *PermissionService) emitSetAudit(ctx context.Context, actor *models.JWTClaims, pt models.ProviderType, key string, entries []dto.UpdatePermissionEntry) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"provider_type": string(pt),
		"provider_key":  key,
		"permissions":   entries,
	})
	log := &models.AuditLog{
		UserID:     actorIDPtr(actor),
		Action:     models.AuditActionPermissionsSet,
		Resource:   "permission_grants",
		ResourceID: &key,
		NewValues:  payload,
		IPAddress:  "system",
		UserAgent:  "permission-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record permission audit", zap.Error(err))
	}
}

func normalizeProvider(providerType, providerKey string) (models.ProviderType, string, error) {
	pt := models.ProviderType(strings.ToUpper(strings.TrimSpace(providerType)))
	if !pt.Valid() {
		return "", "", appErrors.Clone(appErrors.ErrValidation, "providerType must be R or U")
	}
	key := strings.TrimSpace(providerKey)
	if key == "" {
		return "", "", appErrors.Clone(appErrors.ErrValidation, "providerKey is required")
	}
	return pt, key, nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
