package authz

import "sort"

// The grant matrix is data, not code: it is expanded into Permission and
// RolePermission rows at seed time, so administrators can audit and edit
// grants without a redeploy. The access levels mirror the BuildTrack user
// roles documentation: R is read only, R/W is full create/read/update/delete.

// level is the access level a role holds on a resource.
type level int

const (
	levelR  level = iota // read only
	levelRW              // create, read, update, delete
)

// matrix holds the per-role access level per resource.
// SUPER_ADMIN is absent: it bypasses the matrix entirely.
// ORG_ADMIN is a full-rights admin but does NOT bypass: its rights exist as
// rows, so blocking or editing the role behaves like any other.
var matrix = map[string]map[Resource]level{
	RoleOrgAdmin: {
		ResourceProject: levelRW, ResourceTask: levelRW, ResourceClient: levelRW,
		ResourceUser: levelRW, ResourceRole: levelRW, ResourceDashboard: levelR,
		ResourceCRM: levelRW, ResourceRequirements: levelRW, ResourceDesign: levelRW,
		ResourceQuotes: levelRW, ResourceApprovals: levelRW, ResourceJobs: levelRW,
		ResourceWorkOrders: levelRW, ResourceBOM: levelRW, ResourceProcurement: levelRW,
		ResourceProductionSchedule: levelRW, ResourceManufacturing: levelRW,
		ResourceQuality: levelRW, ResourcePackaging: levelRW, ResourceDelivery: levelRW,
		ResourceFinance: levelRW, ResourceClosure: levelRW,
	},
	RoleProjectManager: {
		ResourceProject: levelRW, ResourceTask: levelRW, ResourceClient: levelR,
		ResourceDashboard: levelR,
		ResourceCRM:       levelR, ResourceRequirements: levelRW, ResourceDesign: levelRW,
		ResourceQuotes: levelR, ResourceApprovals: levelRW, ResourceJobs: levelRW,
		ResourceWorkOrders: levelRW, ResourceBOM: levelR, ResourceProcurement: levelR,
		ResourceProductionSchedule: levelRW, ResourceManufacturing: levelR,
		ResourceQuality: levelR, ResourceDelivery: levelR, ResourceFinance: levelR,
	},
	RoleSalesManager: {
		ResourceClient: levelRW, ResourceDashboard: levelR,
		ResourceCRM: levelRW, ResourceQuotes: levelRW, ResourceApprovals: levelR,
		ResourceJobs: levelR,
	},
	RoleProjectCoordinator: {
		ResourceTask: levelR, ResourceDashboard: levelR,
		ResourceCRM: levelR, ResourceRequirements: levelRW, ResourceDesign: levelRW,
		ResourceApprovals: levelRW, ResourceWorkOrders: levelRW,
		ResourceProcurement: levelR, ResourceProductionSchedule: levelR,
	},
	RoleProductionManager: {
		ResourceTask: levelR, ResourceDashboard: levelR,
		ResourceWorkOrders: levelRW, ResourceBOM: levelRW, ResourceProcurement: levelR,
		ResourceProductionSchedule: levelRW, ResourceManufacturing: levelRW,
		ResourcePackaging: levelRW,
	},
	RoleFinanceManager: {
		ResourceDashboard: levelR,
		ResourceJobs:      levelR, ResourceFinance: levelRW, ResourceClosure: levelRW,
	},
	RoleProcurementManager: {
		ResourceDashboard:    levelR,
		ResourceRequirements: levelR, ResourceBOM: levelR, ResourceProcurement: levelRW,
		ResourcePackaging: levelR,
	},
	RoleQCManager: {
		ResourceDashboard:  levelR,
		ResourceWorkOrders: levelR, ResourceQuality: levelRW,
	},
	RoleLogisticsManager: {
		ResourceDashboard:  levelR,
		ResourceWorkOrders: levelR, ResourceProductionSchedule: levelR,
		ResourceDelivery: levelRW,
	},
	RoleVendor: {
		ResourceDashboard: levelR, ResourceTask: levelR,
	},
	RoleClient: {
		ResourceProject: levelR, ResourceTask: levelR, ResourceDashboard: levelR,
		ResourceRequirements: levelR, ResourceDesign: levelR, ResourceDelivery: levelR,
		ResourceFinance: levelR, ResourceClosure: levelR,
	},
	RoleSubcontractor: {
		ResourceDashboard: levelR,
		// read and update only: subcontractors move task status but never
		// create, delete or reassign. The row-level check narrows this
		// further to tasks assigned to them.
		ResourceTask: levelR,
	},
}

// approvers lists the approve grants per role; approve sits outside the
// R/RW scheme because only workflow resources have an approval step.
var approvers = map[string][]Resource{
	RoleOrgAdmin:           {ResourceApprovals, ResourceQuotes},
	RoleProjectManager:     {ResourceApprovals},
	RoleProjectCoordinator: {ResourceApprovals},
	RoleSalesManager:       {ResourceQuotes},
}

// extraGrants holds grants that don't fit the level scheme.
var extraGrants = map[string][]Grant{
	// subcontractors update the status of tasks assigned to them
	RoleSubcontractor: {{Action: ActionUpdate, Resource: ResourceTask}},
}

// readWriteActions are the actions an R/W level expands to.
var readWriteActions = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}

// SeedGrants expands the access matrix into explicit grants per role name.
// This is the data the seeder materializes into permission and
// role_permission rows.
func SeedGrants() map[string][]Grant {
	out := make(map[string][]Grant, len(matrix))

	for role, resources := range matrix {
		var grants []Grant

		for resource, lvl := range resources {
			if lvl == levelRW {
				for _, action := range readWriteActions {
					grants = append(grants, Grant{Action: action, Resource: resource})
				}

				continue
			}

			grants = append(grants, Grant{Action: ActionRead, Resource: resource})
		}

		for _, resource := range approvers[role] {
			grants = append(grants, Grant{Action: ActionApprove, Resource: resource})
		}

		grants = append(grants, extraGrants[role]...)

		out[role] = grants
	}

	return out
}

// SystemRoles returns the role names seeded as system roles, including the
// bypass role which holds no matrix rows.
func SystemRoles() []string {
	out := []string{RoleSuperAdmin}
	for role := range matrix {
		out = append(out, role)
	}

	sort.Strings(out)

	return out
}

// RoleDisplayNames maps system role names to their human readable form.
var RoleDisplayNames = map[string]string{
	RoleSuperAdmin:         "Admin",
	RoleOrgAdmin:           "Admin",
	RoleProjectManager:     "Project Manager",
	RoleSalesManager:       "Sales",
	RoleProjectCoordinator: "Design Team",
	RoleProductionManager:  "Production Team",
	RoleFinanceManager:     "Finance",
	RoleProcurementManager: "Procurement",
	RoleQCManager:          "Quality Control",
	RoleLogisticsManager:   "Logistics",
	RoleVendor:             "Support",
	RoleClient:             "Client",
	RoleSubcontractor:      "Subcontractor",
}
