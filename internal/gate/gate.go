// Package gate is the authorization checkpoint for the API. Policies are
// registered per resource type ("invoice", "quote", "rate", "tool") and
// decide what each role may do.
package gate

import (
	"context"
	"errors"
)

// Action describes the kind of operation a user wants to perform.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"
)

// Sentinel errors returned by Gate.Authorize.
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNoPolicyDefined = errors.New("no policy defined for resource")
)

// Policy decides whether a role may perform an action on a resource type.
// For list/create, resource may be nil (context-only check).
type Policy interface {
	Can(ctx context.Context, role string, action Action, resource any) bool
}

// Gate is the central registry of policies.
type Gate struct {
	policies map[string]Policy
}

func New() *Gate { return &Gate{policies: make(map[string]Policy)} }

// Register adds a policy for a resource type, replacing any existing one.
func (g *Gate) Register(resourceType string, p Policy) {
	g.policies[resourceType] = p
}

// Authorize returns nil when role may perform action on the resource,
// ErrUnauthorized when denied, ErrNoPolicyDefined for unknown resources.
func (g *Gate) Authorize(ctx context.Context, role string, action Action, resourceType string, resource any) error {
	if role == "" {
		return ErrUnauthorized
	}
	p, ok := g.policies[resourceType]
	if !ok {
		return ErrNoPolicyDefined
	}
	if !p.Can(ctx, role, action, resource) {
		return ErrUnauthorized
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *Gate) Can(ctx context.Context, role string, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, role, action, resourceType, resource) == nil
}
