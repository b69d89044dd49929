package testutil

import (
	"testing"

	"github.com/google/uuid"

	"github.com/junoathena/gateway-backend/internal/pkg/dbctx"
	"github.com/junoathena/gateway-backend/internal/types"
)

func SeedUser(tb testing.TB, dbc dbctx.Context, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:            uuid.New(),
		Email:         email,
		FullName:      "Test User",
		Consent:       true,
		LicenseStatus: types.LicenseActive,
	}
	if err := dbc.Tx.WithContext(dbc.Ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedGroup(tb testing.TB, dbc dbctx.Context, creatorEmail string) *types.Group {
	tb.Helper()
	g := &types.Group{
		ID:           uuid.New(),
		Name:         "Test Group",
		CreatorEmail: creatorEmail,
	}
	if err := dbc.Tx.WithContext(dbc.Ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed group: %v", err)
	}
	return g
}

func SeedMembership(tb testing.TB, dbc dbctx.Context, groupID uuid.UUID, email, role string) *types.Membership {
	tb.Helper()
	m := &types.Membership{
		ID:      uuid.New(),
		GroupID: groupID,
		Email:   email,
		Role:    role,
	}
	if err := dbc.Tx.WithContext(dbc.Ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed membership: %v", err)
	}
	return m
}

func SeedProject(tb testing.TB, dbc dbctx.Context, groupID uuid.UUID, creatorEmail string) *types.Project {
	tb.Helper()
	p := &types.Project{
		ID:           uuid.New(),
		GroupID:      groupID,
		Title:        "Test Project",
		CreatorEmail: creatorEmail,
	}
	if err := dbc.Tx.WithContext(dbc.Ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed project: %v", err)
	}
	return p
}

func SeedAbilityGrant(tb testing.TB, dbc dbctx.Context, email, ability string) *types.AbilityGrant {
	tb.Helper()
	g := &types.AbilityGrant{
		ID:        uuid.New(),
		Email:     email,
		Ability:   ability,
		GrantedBy: "mentor@example.com",
	}
	if err := dbc.Tx.WithContext(dbc.Ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed ability grant: %v", err)
	}
	return g
}
