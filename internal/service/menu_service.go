package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nexus-ops/servicedesk-api/internal/dto"
	"github.com/nexus-ops/servicedesk-api/internal/models"
	appErrors "github.com/nexus-ops/servicedesk-api/pkg/errors"
)

const (
	myMenusCacheKeyPrefix  = "servicedesk:menus:user:"
	myMenusCacheKeyPattern = "servicedesk:menus:user:*"
)

type menuRepository interface {
	List(ctx context.Context) ([]models.AppMenu, error)
	FindByID(ctx context.Context, id string) (*models.AppMenu, error)
	FindEnabledByIDs(ctx context.Context, ids []string) ([]models.AppMenu, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, menu *models.AppMenu) error
	Update(ctx context.Context, menu *models.AppMenu) error
	Delete(ctx context.Context, id string) error
}

type roleMenuRepository interface {
	ListByRole(ctx context.Context, roleID string) ([]models.AppRoleMenu, error)
	ListByRoles(ctx context.Context, roleIDs []string) ([]models.AppRoleMenu, error)
	ReplaceForRole(ctx context.Context, roleID string, menuIDs []string) error
}

type menuRoleReader interface {
	FindByID(ctx context.Context, id string) (*models.Role, error)
	FindByNames(ctx context.Context, names []string) ([]models.Role, error)
}

type menuCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type menuAuditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// MenuServiceConfig tunes caching of per-user menu trees.
type MenuServiceConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// MenuService manages the menu catalogue, role assignments and the per-user
// navigation tree.
type MenuService struct {
	menus     menuRepository
	roleMenus roleMenuRepository
	roles     menuRoleReader
	cache     menuCache
	audit     menuAuditLogger
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	cfg       MenuServiceConfig
}

// NewMenuService constructs a MenuService.
func NewMenuService(menus menuRepository, roleMenus roleMenuRepository, roles menuRoleReader, cache menuCache, audit menuAuditLogger, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, cfg MenuServiceConfig) *MenuService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &MenuService{
		menus:     menus,
		roleMenus: roleMenus,
		roles:     roles,
		cache:     cache,
		audit:     audit,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		cfg:       cfg,
	}
}

// List returns the full menu catalogue.
func (s *MenuService) List(ctx context.Context) ([]dto.MenuItem, error) {
	menus, err := s.menus.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list menus")
	}
	return dto.NewMenuItems(menus), nil
}

// Create registers a new menu entry. The code must be unique.
func (s *MenuService) Create(ctx context.Context, req dto.CreateMenuRequest) (*dto.MenuItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid menu payload")
	}

	code := strings.TrimSpace(req.Code)
	taken, err := s.menus.ExistsByCode(ctx, code)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check menu code")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("menu code %s already exists", code))
	}

	if req.ParentID != nil {
		if err := s.ensureMenuExists(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}

	enabled := true
	if req.IsEnabled != nil {
		enabled = *req.IsEnabled
	}
	menu := &models.AppMenu{
		Code:      code,
		Name:      strings.TrimSpace(req.Name),
		Path:      req.Path,
		Icon:      req.Icon,
		ParentID:  req.ParentID,
		SortOrder: req.SortOrder,
		IsEnabled: enabled,
	}
	if err := s.menus.Create(ctx, menu); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create menu")
	}

	s.invalidateMenuCache(ctx)

	item := dto.NewMenuItem(menu)
	return &item, nil
}

// Update modifies a menu entry. Code stays fixed after creation.
func (s *MenuService) Update(ctx context.Context, id string, req dto.UpdateMenuRequest) (*dto.MenuItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid menu payload")
	}

	menu, err := s.findMenu(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		if *req.ParentID == id {
			return nil, appErrors.Clone(appErrors.ErrValidation, "menu cannot be its own parent")
		}
		if err := s.ensureMenuExists(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}

	menu.Name = strings.TrimSpace(req.Name)
	menu.Path = req.Path
	menu.Icon = req.Icon
	menu.ParentID = req.ParentID
	menu.SortOrder = req.SortOrder
	if req.IsEnabled != nil {
		menu.IsEnabled = *req.IsEnabled
	}

	if err := s.menus.Update(ctx, menu); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update menu")
	}

	s.invalidateMenuCache(ctx)

	item := dto.NewMenuItem(menu)
	return &item, nil
}

// Delete removes a menu entry together with its role assignments.
func (s *MenuService) Delete(ctx context.Context, id string) error {
	if _, err := s.findMenu(ctx, id); err != nil {
		return err
	}
	if err := s.menus.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete menu")
	}
	s.invalidateMenuCache(ctx)
	return nil
}

// GetMenusForRole returns the navigation tree a single role would see.
func (s *MenuService) GetMenusForRole(ctx context.Context, roleID string) ([]*dto.MenuTreeNode, error) {
	if _, err := s.roles.FindByID(ctx, roleID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "role not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load role")
	}

	links, err := s.roleMenus.ListByRole(ctx, roleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list role menus")
	}
	ids := make([]string, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.MenuID)
	}
	return s.buildTree(ctx, ids)
}

// SaveRoleMenus replaces a role's menu set wholesale and drops every cached
// user tree so the new assignment shows up on the next fetch.
func (s *MenuService) SaveRoleMenus(ctx context.Context, roleID string, menuIDs []string, actor *models.JWTClaims) error {
	if _, err := s.roles.FindByID(ctx, roleID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "role not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load role")
	}

	unique := dedupeStrings(menuIDs)
	for _, menuID := range unique {
		if err := s.ensureMenuExists(ctx, menuID); err != nil {
			return err
		}
	}

	if err := s.roleMenus.ReplaceForRole(ctx, roleID, unique); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save role menus")
	}

	s.invalidateMenuCache(ctx)
	s.emitSaveAudit(ctx, actor, roleID, unique)
	return nil
}

// GetMyMenus returns the navigation tree for the caller, unioned over all of
// their roles. Users without roles get an empty list.
func (s *MenuService) GetMyMenus(ctx context.Context, claims *models.JWTClaims) ([]*dto.MenuTreeNode, error) {
	if claims == nil || claims.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}

	cacheKey := myMenusCacheKeyPrefix + claims.UserID
	if s.cacheEnabled() {
		var cached []*dto.MenuTreeNode
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return cached, nil
		} else if err != appErrors.ErrCacheMiss {
			s.logger.Warn("menu cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheOperation(false)
	}

	tree, err := s.resolveMyMenus(ctx, claims)
	if err != nil {
		return nil, err
	}

	if s.cacheEnabled() {
		if err := s.cache.Set(ctx, cacheKey, tree, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("menu cache write failed", zap.Error(err))
		}
	}
	return tree, nil
}

func (s *MenuService) resolveMyMenus(ctx context.Context, claims *models.JWTClaims) ([]*dto.MenuTreeNode, error) {
	if len(claims.Roles) == 0 {
		return []*dto.MenuTreeNode{}, nil
	}

	roles, err := s.roles.FindByNames(ctx, claims.Roles)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve roles")
	}
	if len(roles) == 0 {
		return []*dto.MenuTreeNode{}, nil
	}
	roleIDs := make([]string, 0, len(roles))
	for _, role := range roles {
		roleIDs = append(roleIDs, role.ID)
	}

	links, err := s.roleMenus.ListByRoles(ctx, roleIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list role menus")
	}
	seen := make(map[string]struct{}, len(links))
	ids := make([]string, 0, len(links))
	for _, link := range links {
		if _, ok := seen[link.MenuID]; ok {
			continue
		}
		seen[link.MenuID] = struct{}{}
		ids = append(ids, link.MenuID)
	}
	return s.buildTree(ctx, ids)
}

// buildTree shapes the assigned menus into a forest. A menu is a root when
// its parent is not part of the assigned set. Traversal carries a visited set
// so a corrupted parent_id cycle cannot loop.
func (s *MenuService) buildTree(ctx context.Context, menuIDs []string) ([]*dto.MenuTreeNode, error) {
	if len(menuIDs) == 0 {
		return []*dto.MenuTreeNode{}, nil
	}

	menus, err := s.menus.FindEnabledByIDs(ctx, menuIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load menus")
	}
	if len(menus) == 0 {
		return []*dto.MenuTreeNode{}, nil
	}

	byID := make(map[string]*models.AppMenu, len(menus))
	for i := range menus {
		byID[menus[i].ID] = &menus[i]
	}

	visited := make(map[string]struct{}, len(menus))
	var roots []*dto.MenuTreeNode
	for i := range menus {
		menu := &menus[i]
		if menu.ParentID != nil {
			if _, inSet := byID[*menu.ParentID]; inSet {
				continue
			}
		}
		if node := s.buildNode(menu, menus, visited); node != nil {
			roots = append(roots, node)
		}
	}
	sortNodes(roots)
	if roots == nil {
		roots = []*dto.MenuTreeNode{}
	}
	return roots, nil
}

func (s *MenuService) buildNode(menu *models.AppMenu, all []models.AppMenu, visited map[string]struct{}) *dto.MenuTreeNode {
	if _, ok := visited[menu.ID]; ok {
		return nil
	}
	visited[menu.ID] = struct{}{}

	node := &dto.MenuTreeNode{
		ID:        menu.ID,
		Code:      menu.Code,
		Name:      menu.Name,
		Path:      menu.Path,
		Icon:      menu.Icon,
		SortOrder: menu.SortOrder,
		Children:  []*dto.MenuTreeNode{},
	}
	for i := range all {
		child := &all[i]
		if child.ParentID == nil || *child.ParentID != menu.ID {
			continue
		}
		if built := s.buildNode(child, all, visited); built != nil {
			node.Children = append(node.Children, built)
		}
	}
	sortNodes(node.Children)
	return node
}

func (s *MenuService) findMenu(ctx context.Context, id string) (*models.AppMenu, error) {
	menu, err := s.menus.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "menu not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load menu")
	}
	return menu, nil
}

func (s *MenuService) ensureMenuExists(ctx context.Context, id string) error {
	if _, err := s.menus.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("menu %s not found", id))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify menu")
	}
	return nil
}

func (s *MenuService) cacheEnabled() bool {
	return s.cache != nil && s.cfg.CacheEnabled
}

func (s *MenuService) invalidateMenuCache(ctx context.Context) {
	if !s.cacheEnabled() {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, myMenusCacheKeyPattern); err != nil {
		s.logger.Warn("menu cache invalidation failed", zap.Error(err))
	}
}

func (s *MenuService) emitSaveAudit(ctx context.Context, actor *models.JWTClaims, roleID string, menuIDs []string) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{"role_id": roleID, "menu_ids": menuIDs})
	log := &models.AuditLog{
		UserID:     actorIDPtr(actor),
		Action:     models.AuditActionRoleMenusSave,
		Resource:   "role_menus",
		ResourceID: &roleID,
		NewValues:  payload,
		IPAddress:  "system",
		UserAgent:  "menu-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record role menu audit", zap.Error(err))
	}
}

func sortNodes(nodes []*dto.MenuTreeNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].SortOrder != nodes[j].SortOrder {
			return nodes[i].SortOrder < nodes[j].SortOrder
		}
		return nodes[i].Code < nodes[j].Code
	})
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func actorIDPtr(actor *models.JWTClaims) *string {
	if actor == nil || actor.UserID == "" {
		return nil
	}
	return &actor.UserID
}
