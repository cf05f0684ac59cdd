package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleScientist, ParseRole("scientist"))
	assert.Equal(t, RoleInvestor, ParseRole("investor"))
	assert.Equal(t, RoleMissionArchitect, ParseRole("mission-architect"))
	assert.Equal(t, RoleInvestor, ParseRole("  Investor "))
	assert.Equal(t, RoleScientist, ParseRole(""))
	assert.Equal(t, RoleScientist, ParseRole("manager"))
}

func TestProfileFor_EveryRoleHasSixSections(t *testing.T) {
	for _, role := range []Role{RoleScientist, RoleInvestor, RoleMissionArchitect} {
		profile := ProfileFor(role)
		require.Len(t, profile.SectionTitles, 6, "role %s", role)
		assert.Equal(t, role, profile.Role)
		assert.NotEmpty(t, profile.Label)
		assert.NotEmpty(t, profile.Persona)
		assert.NotEmpty(t, profile.Keywords)
	}
}

func TestProfileFor_UnknownRoleFallsBackToScientist(t *testing.T) {
	profile := ProfileFor(Role("astronaut"))
	assert.Equal(t, RoleScientist, profile.Role)
}
