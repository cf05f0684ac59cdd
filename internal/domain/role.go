package domain

import "strings"

// Role is one of three fixed audience personas shaping retrieval bias and
// the structure of the final answer.
type Role string

const (
	RoleScientist        Role = "scientist"
	RoleInvestor         Role = "investor"
	RoleMissionArchitect Role = "mission-architect"
)

// ParseRole maps a raw string onto a Role, defaulting to RoleScientist for
// anything unrecognized.
func ParseRole(value string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleInvestor:
		return RoleInvestor
	case RoleMissionArchitect:
		return RoleMissionArchitect
	default:
		return RoleScientist
	}
}

// RoleProfile is the statically defined configuration for a role: the label
// used in response titles, the persona the generator is asked to adopt, the
// keyword phrase appended to queries to bias retrieval, and the fixed
// ordered list of section titles the structurer produces.
type RoleProfile struct {
	Role          Role
	Label         string
	Persona       string
	Keywords      string
	SectionTitles []string
}

var roleProfiles = map[Role]RoleProfile{
	RoleScientist: {
		Role:     RoleScientist,
		Label:    "Scientist Briefing",
		Persona:  "a senior space biology researcher writing for peers",
		Keywords: "experimental methods cellular mechanisms gene expression microgravity effects",
		SectionTitles: []string{
			"Research Context",
			"Experimental Approach",
			"Key Findings",
			"Biological Mechanisms",
			"Limitations and Open Questions",
			"Future Research Directions",
		},
	},
	RoleInvestor: {
		Role:     RoleInvestor,
		Label:    "Investor Briefing",
		Persona:  "a biotechnology analyst advising investors on space life-science ventures",
		Keywords: "commercial applications biotechnology countermeasures market readiness",
		SectionTitles: []string{
			"Executive Summary",
			"Market Opportunity",
			"Technology Readiness",
			"Competitive Landscape",
			"Risk Assessment",
			"Investment Outlook",
		},
	},
	RoleMissionArchitect: {
		Role:     RoleMissionArchitect,
		Label:    "Mission Architect Briefing",
		Persona:  "a mission architect planning long-duration crewed spaceflight",
		Keywords: "mission planning crew health life support radiation countermeasures",
		SectionTitles: []string{
			"Mission Relevance",
			"Crew Health Implications",
			"System Design Considerations",
			"Operational Constraints",
			"Risk Mitigation",
			"Mission Planning Recommendations",
		},
	},
}

// ProfileFor returns the fixed profile for a role. Unknown roles resolve to
// the scientist profile, mirroring ParseRole.
func ProfileFor(role Role) RoleProfile {
	if profile, ok := roleProfiles[role]; ok {
		return profile
	}
	return roleProfiles[RoleScientist]
}
