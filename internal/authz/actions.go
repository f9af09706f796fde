// Package authz implements the role-based access control core: the grant
// matrix, the authorize decision function, row-level ownership checks and the
// fiber guards protecting the JSON API.
package authz

import "sort"

// Action is an operation category on a resource.
type Action string

const (
	// ActionCreate allows creating new rows of a resource.
	ActionCreate Action = "create"
	// ActionRead allows reading rows of a resource.
	ActionRead Action = "read"
	// ActionUpdate allows modifying rows of a resource.
	ActionUpdate Action = "update"
	// ActionDelete allows deleting rows of a resource.
	ActionDelete Action = "delete"
	// ActionApprove allows approving workflow items of a resource.
	ActionApprove Action = "approve"
)

// Resource is a canonical domain noun subject to access control.
// Module slugs from the generated frontend config resolve to these names
// (see internal/modules); the matrix never sees a slug.
type Resource = string

const (
	ResourceProject   Resource = "project"
	ResourceTask      Resource = "task"
	ResourceClient    Resource = "client"
	ResourceUser      Resource = "user"
	ResourceRole      Resource = "role"
	ResourceDashboard Resource = "dashboard"

	ResourceCRM                Resource = "crm"
	ResourceRequirements       Resource = "requirements"
	ResourceDesign             Resource = "design"
	ResourceQuotes             Resource = "quotes"
	ResourceApprovals          Resource = "approvals"
	ResourceJobs               Resource = "jobs"
	ResourceWorkOrders         Resource = "work_orders"
	ResourceBOM                Resource = "bom"
	ResourceProcurement        Resource = "procurement"
	ResourceProductionSchedule Resource = "production_schedule"
	ResourceManufacturing      Resource = "manufacturing"
	ResourceQuality            Resource = "quality"
	ResourcePackaging          Resource = "packaging"
	ResourceDelivery           Resource = "delivery"
	ResourceFinance            Resource = "finance"
	ResourceClosure            Resource = "closure"
)

// System role names. SUPER_ADMIN is the designated bypass role: it appears in
// no matrix row and is checked before the matrix is consulted.
const (
	RoleSuperAdmin         = "SUPER_ADMIN"
	RoleOrgAdmin           = "ORG_ADMIN"
	RoleProjectManager     = "PROJECT_MANAGER"
	RoleSalesManager       = "SALES_MANAGER"
	RoleProjectCoordinator = "PROJECT_COORDINATOR"
	RoleProductionManager  = "PRODUCTION_MANAGER"
	RoleFinanceManager     = "FINANCE_MANAGER"
	RoleProcurementManager = "PROCUREMENT_MANAGER"
	RoleQCManager          = "QC_MANAGER"
	RoleLogisticsManager   = "LOGISTICS_MANAGER"
	RoleVendor             = "VENDOR"
	RoleClient             = "CLIENT"
	RoleSubcontractor      = "SUBCONTRACTOR"
)

// Grant is an (action, resource) pair a role is permitted to perform.
type Grant struct {
	Action   Action
	Resource Resource
}

// String returns the flattened "action:resource" form used in API responses.
func (g Grant) String() string {
	return string(g.Action) + ":" + g.Resource
}

// GrantSet is a set of grants with O(1) membership checks.
type GrantSet map[Grant]struct{}

// Has reports whether the set contains the (action, resource) pair.
func (s GrantSet) Has(action Action, resource Resource) bool {
	_, ok := s[Grant{Action: action, Resource: resource}]
	return ok
}

// Flatten returns the sorted "action:resource" strings of the set.
func (s GrantSet) Flatten() []string {
	out := make([]string, 0, len(s))
	for g := range s {
		out = append(out, g.String())
	}

	sort.Strings(out)

	return out
}

// Resources returns every canonical resource name, sorted.
// The module registry validates its slug table against this set at startup.
func Resources() []string {
	out := []string{
		ResourceProject, ResourceTask, ResourceClient, ResourceUser,
		ResourceRole, ResourceDashboard, ResourceCRM, ResourceRequirements,
		ResourceDesign, ResourceQuotes, ResourceApprovals, ResourceJobs,
		ResourceWorkOrders, ResourceBOM, ResourceProcurement,
		ResourceProductionSchedule, ResourceManufacturing, ResourceQuality,
		ResourcePackaging, ResourceDelivery, ResourceFinance, ResourceClosure,
	}

	sort.Strings(out)

	return out
}

// KnownResource reports whether name is part of the canonical vocabulary.
func KnownResource(name string) bool {
	for _, r := range Resources() {
		if r == name {
			return true
		}
	}

	return false
}
