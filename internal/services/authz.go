package services

import (
	"github.com/google/uuid"

	"github.com/junoathena/gateway-backend/internal/pkg/dbctx"
	"github.com/junoathena/gateway-backend/internal/platform/apierr"
	"github.com/junoathena/gateway-backend/internal/repos"
	"github.com/junoathena/gateway-backend/internal/types"
)

// memberRole returns the principal's role in the group, or "" when they hold
// no membership there.
func memberRole(dbc dbctx.Context, memberships repos.MembershipRepo, groupID uuid.UUID, email string) (string, error) {
	m, err := memberships.GetByGroupAndEmail(dbc, groupID, email)
	if err != nil {
		return "", err
	}
	if m == nil {
		return "", nil
	}
	return m.Role, nil
}

// requireRole enforces the role lattice inside a group. A principal with no
// membership is indistinguishable from one with insufficient rank: both get
// the same permission error, so group composition does not leak.
func requireRole(dbc dbctx.Context, memberships repos.MembershipRepo, groupID uuid.UUID, email, minRole string) error {
	role, err := memberRole(dbc, memberships, groupID, email)
	if err != nil {
		return err
	}
	if types.RoleRank(role) < types.RoleRank(minRole) {
		return apierr.Permission("requires %s access in this group", minRole)
	}
	return nil
}

// requireWritable rejects writes from sessions degraded by a lapsed license.
func requireWritable(readOnly bool) error {
	if readOnly {
		return apierr.DegradedMode("license lapsed: session is read-only")
	}
	return nil
}
