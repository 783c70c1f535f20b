package dto

// PermissionEntry is a single permission with its grant flag.
type PermissionEntry struct {
	Name      string `json:"name"`
	IsGranted bool   `json:"is_granted"`
}

// PermissionGroupResult groups the permission entries by feature group.
type PermissionGroupResult struct {
	Group       string            `json:"group"`
	Permissions []PermissionEntry `json:"permissions"`
}

// GetPermissionsResult is the full grant snapshot for one provider.
type GetPermissionsResult struct {
	ProviderType string                  `json:"provider_type"`
	ProviderKey  string                  `json:"provider_key"`
	Groups       []PermissionGroupResult `json:"groups"`
}

// UpdatePermissionEntry carries one grant change.
type UpdatePermissionEntry struct {
	Name      string `json:"name" validate:"required"`
	IsGranted bool   `json:"is_granted"`
}

// UpdatePermissionsRequest applies a batch of grant changes to one provider.
type UpdatePermissionsRequest struct {
	Permissions []UpdatePermissionEntry `json:"permissions" validate:"required,min=1,dive"`
}
