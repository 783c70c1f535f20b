package models

import "time"

// ProviderType discriminates the subject of a permission grant.
type ProviderType string

const (
	ProviderRole ProviderType = "R"
	ProviderUser ProviderType = "U"
)

// Valid reports whether the provider type is known.
func (p ProviderType) Valid() bool {
	return p == ProviderRole || p == ProviderUser
}

// Permission names for the service desk group.
const (
	PermissionGroup = "ServiceDesk"

	PermRepairRequestsCreate          = "ServiceDesk.RepairRequests.Create"
	PermRepairRequestsUpdate          = "ServiceDesk.RepairRequests.Update"
	PermRepairRequestsCancel          = "ServiceDesk.RepairRequests.Cancel"
	PermRepairRequestsMyList          = "ServiceDesk.RepairRequests.MyList"
	PermRepairRequestsDetail          = "ServiceDesk.RepairRequests.Detail"
	PermRepairRequestsQuote           = "ServiceDesk.RepairRequests.Quote"
	PermRepairRequestsElectricianList = "ServiceDesk.RepairRequests.ElectricianList"
	PermRepairRequestsAdminList       = "ServiceDesk.RepairRequests.AdminList"
	PermRepairRequestsApprove         = "ServiceDesk.RepairRequests.Approve"
	PermRepairRequestsReject          = "ServiceDesk.RepairRequests.Reject"
	PermMenusManage                   = "ServiceDesk.Menus.Manage"
	PermRoleMenusManage               = "ServiceDesk.RoleMenus.Manage"
)

// AllPermissions lists every permission name in display order.
func AllPermissions() []string {
	return []string{
		PermRepairRequestsCreate,
		PermRepairRequestsUpdate,
		PermRepairRequestsCancel,
		PermRepairRequestsMyList,
		PermRepairRequestsDetail,
		PermRepairRequestsQuote,
		PermRepairRequestsElectricianList,
		PermRepairRequestsAdminList,
		PermRepairRequestsApprove,
		PermRepairRequestsReject,
		PermMenusManage,
		PermRoleMenusManage,
	}
}

// PermissionGrant maps (provider, key, name) to a granted flag.
type PermissionGrant struct {
	ID           string       `db:"id" json:"id"`
	ProviderType ProviderType `db:"provider_type" json:"provider_type"`
	ProviderKey  string       `db:"provider_key" json:"provider_key"`
	Name         string       `db:"name" json:"name"`
	IsGranted    bool         `db:"is_granted" json:"is_granted"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// PermissionEntry is a single named permission with its granted state.
type PermissionEntry struct {
	Name      string `json:"name"`
	IsGranted bool   `json:"is_granted"`
}

// PermissionGroupResult groups permission entries for API consumption.
type PermissionGroupResult struct {
	Group       string            `json:"group"`
	Permissions []PermissionEntry `json:"permissions"`
}
