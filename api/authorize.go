package api

import (
	"context"

	"github.com/civicwatch/crime-report-api/models"
)

type actorContextKey struct{}

// Actor is the authenticated caller attached to every request by the auth
// middleware.
type Actor struct {
	ID   string
	Role string
}

// WithActor stores the actor on the context.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, a)
}

// ActorFromContext returns the authenticated actor, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorContextKey{}).(Actor)
	return a, ok
}

// IsElevated reports whether the actor holds an admin or supervisor role.
func (a Actor) IsElevated() bool {
	return a.Role == models.RoleAdmin || a.Role == models.RoleSupervisor
}

// CanViewCase is the single capability check for case-scoped reads:
// admins and supervisors see everything, staff see cases assigned to them,
// citizens see their own non-anonymous reports.
func CanViewCase(actor Actor, c *models.Case) bool {
	if actor.IsElevated() {
		return true
	}
	switch actor.Role {
	case models.RoleStaff:
		return c.AssignedTo == actor.ID
	case models.RoleCitizen:
		return !c.Anonymous && c.ReportedBy != "" && c.ReportedBy == actor.ID
	}
	return false
}

// CanManageCase is the capability check for case-scoped mutations (status
// transitions, evidence, investigations): admins, supervisors and the
// assigned investigator.
func CanManageCase(actor Actor, c *models.Case) bool {
	if actor.IsElevated() {
		return true
	}
	return actor.Role == models.RoleStaff && c.AssignedTo == actor.ID
}
