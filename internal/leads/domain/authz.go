package domain

// Staff roles carried in the access token.
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleSales   = "SALES"
)

// Action is a capability checked before a lifecycle operation runs.
type Action string

const (
	ActionAssignLead     Action = "lead.assign"
	ActionManageLead     Action = "lead.manage"
	ActionLogActivity    Action = "lead.activity.log"
	ActionDeleteActivity Action = "lead.activity.delete"
	ActionRunSweep       Action = "reminder.sweep.run"
)

// allowedRoles maps each action to the roles permitted to perform it.
var allowedRoles = map[Action][]string{
	ActionAssignLead:     {RoleAdmin, RoleManager},
	ActionManageLead:     {RoleAdmin, RoleManager, RoleSales},
	ActionLogActivity:    {RoleAdmin, RoleManager, RoleSales},
	ActionDeleteActivity: {RoleAdmin},
	ActionRunSweep:       {RoleAdmin},
}

// HasRole reports whether the role appears in the actor's role set.
func HasRole(roles []string, role string) bool {
	for _, candidate := range roles {
		if candidate == role {
			return true
		}
	}
	return false
}

// Authorize is the single capability check used by every lifecycle
// operation. It replaces scattered per-call-site role comparisons.
func Authorize(roles []string, action Action) bool {
	allowed, ok := allowedRoles[action]
	if !ok {
		return false
	}
	for _, role := range roles {
		for _, candidate := range allowed {
			if role == candidate {
				return true
			}
		}
	}
	return false
}
