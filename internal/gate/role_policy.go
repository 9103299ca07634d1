package gate

import "context"

// RolePolicy grants actions by role name. Missing roles get nothing.
type RolePolicy struct {
	Allowed map[string][]Action
}

func (p RolePolicy) Can(_ context.Context, role string, action Action, _ any) bool {
	for _, a := range p.Allowed[role] {
		if a == action {
			return true
		}
	}
	return false
}

// ReadWrite is the usual document policy: everyone reads, managers and admins
// write, only admins delete.
func ReadWrite() RolePolicy {
	return RolePolicy{Allowed: map[string][]Action{
		"admin":   {ActionView, ActionList, ActionCreate, ActionUpdate, ActionDelete},
		"manager": {ActionView, ActionList, ActionCreate, ActionUpdate},
		"user":    {ActionView, ActionList},
	}}
}

// AdminOnly restricts every action to admins (exchange rates).
func AdminOnly() RolePolicy {
	return RolePolicy{Allowed: map[string][]Action{
		"admin": {ActionView, ActionList, ActionCreate, ActionUpdate, ActionDelete},
	}}
}
