package club

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Reports are published as message contents, which Discord limits to 2000 characters
const MaxReportLength = 2000

const (
	separator   = "**========================**"
	placeholder = "???"
)

// Mentions of the guild roles, by club role. Roles missing from the map
// are written with their plain name
type RoleMentions map[Role]string

func (mentions RoleMentions) of(role Role) string {
	if mention, ok := mentions[role]; ok && mention != "" {
		return mention
	}
	return role.String()
}

func FormatLastUpdated(t time.Time) string {
	return "Last updated: " + t.UTC().Format("02.01.2006 15:04:05") + " UTC"
}

func FormatMemberReport(result Reconciliation, mentions RoleMentions, updated time.Time) string {

	lines := make([]string, len(result.Pairs))
	for i, pair := range result.Pairs {
		chat := placeholder
		if pair.Member != nil {
			chat = pair.Member.Mention
		}
		line := fmt.Sprintf("%d. %s / %s - %s", i+1, pair.Entry.Name, chat, mentions.of(pair.Entry.Role))
		if pair.Member != nil && pair.RoleMismatch {
			line += fmt.Sprintf(" / %s %s", mentions.of(pair.Member.Role), placeholder)
		}
		lines[i] = line + fmt.Sprintf("  - %d 🏆", pair.Entry.Trophies)
	}

	tail := "\n\n**Unlisted members**: " + joinMentions(result.Unlisted) +
		"\n**Duplicate matches**: " + joinMentions(result.Duplicates) +
		"\n\n" + FormatLastUpdated(updated)
	return fitReport("**Club Members**\n"+separator+"\n", lines, tail)
}

func FormatActivityLine(position int, record ActivityRecord) string {
	return fmt.Sprintf("%d. %s: %.1f (%d matches in last %.1f days)", position, record.Player, record.AveragePerDay, record.MatchesInWindow, record.SpanDays)
}

func FormatActivityReport(records []ActivityRecord, window time.Duration, updated time.Time) string {

	head := fmt.Sprintf("**Activity (matches per day, last %d days)**\n%s\n", int(window/day), separator)

	var lines []string
	var noData []string
	for _, record := range records {
		switch record.Outcome {
		case OutcomeOK:
			lines = append(lines, FormatActivityLine(len(lines)+1, record))
		case OutcomeNoData:
			noData = append(noData, record.Player)
		}
	}
	if len(lines) == 0 {
		lines = append(lines, "No activity to show")
	}

	tail := ""
	if len(noData) > 0 {
		tail += "\n\nNo recent matches: " + strings.Join(noData, ", ")
	}
	tail += "\n\n" + FormatLastUpdated(updated)
	return fitReport(head, lines, tail)
}

// Join head, one line per entry and tail within MaxReportLength runes.
// Trailing entries that do not fit are replaced by a count, the tail is always kept
func fitReport(head string, lines []string, tail string) string {

	// prefix[k] is the length of head and the first k lines
	prefix := make([]int, len(lines)+1)
	prefix[0] = utf8.RuneCountInString(head)
	for i, line := range lines {
		prefix[i+1] = prefix[i] + 1 + utf8.RuneCountInString(line)
	}

	kept := len(lines)
	for ; kept > 0; kept-- {
		length := prefix[kept] + utf8.RuneCountInString(tail)
		if kept < len(lines) {
			length += utf8.RuneCountInString(omitted(len(lines) - kept))
		}
		if length <= MaxReportLength {
			break
		}
	}

	var sb strings.Builder
	sb.WriteString(head)
	for _, line := range lines[:kept] {
		sb.WriteString("\n" + line)
	}
	if kept < len(lines) {
		sb.WriteString(omitted(len(lines) - kept))
	}
	sb.WriteString(tail)
	return sb.String()
}

func omitted(count int) string {
	return fmt.Sprintf("\n… and %d more", count)
}

func joinMentions(members []ChatMember) string {
	if len(members) == 0 {
		return "None"
	}
	mentions := make([]string, len(members))
	for i, member := range members {
		mentions[i] = member.Mention
	}
	return strings.Join(mentions, ", ")
}
