package bot

import (
	"clubbot/internal/club"
	"fmt"
	"slices"
	"strings"
)

// Guild roles named "Team 1", "Team 2", ... group members into club league teams
const TEAM_ROLE = "Team %d"

func FormatTeams(members []club.ChatMember, teamCount int, teamSize int) string {

	msg := "**Club League Team Constellations**\n**========================**\n"

	// Print teams
	inTeam := map[string]struct{}{}
	for t := 1; t <= teamCount; t++ {
		teamName := fmt.Sprintf(TEAM_ROLE, t)
		var mentions []string
		for _, member := range members {
			if slices.Contains(member.Roles, teamName) {
				mentions = append(mentions, member.Mention)
				inTeam[member.ID] = struct{}{}
			}
		}
		msg += fmt.Sprintf("\n%d. ", t)
		msg += strings.Join(mentions, ", ")
		if len(mentions) != teamSize {
			msg += fmt.Sprintf(" (%d/%d)", len(mentions), teamSize)
		}
	}

	// Find members not in a team
	var notInTeam []string
	for _, member := range members {
		if _, ok := inTeam[member.ID]; !ok && member.Role.IsClubRole() {
			notInTeam = append(notInTeam, member.Mention)
		}
	}

	msg += "\n\n**Members without a team**: "
	if len(notInTeam) > 0 {
		msg += strings.Join(notInTeam, ", ")
	} else {
		msg += "<None>"
	}
	msg += "\nPlease contact one of the teams with free spaces in order to join them"

	return msg
}
