package bot

import (
	"clubbot/internal/brawlapi"
	"fmt"
	"strings"
)

// Maximum number of members of a club
const CLUB_CAPACITY = 30

// A line to post in the club log channel, with the timestamp of the
// history entry it comes from. Summary lines describe the entries
// before them and come from no entry of their own
type Announcement struct {
	Timestamp int64
	Text      string
	Summary   bool
}

// Turn the history entries newer than cursor into announcements, oldest
// first. The new cursor is the newest timestamp seen, never lower than cursor
func ProcessClubLog(log brawlapi.ClubLog, cursor int64) ([]Announcement, int64) {

	newest := cursor
	memberChange := false
	var announcements []Announcement

	// History comes newest first
	for i := len(log.History) - 1; i >= 0; i-- {
		entry := log.History[i]
		if entry.Timestamp > newest {
			newest = entry.Timestamp
		}
		if entry.Timestamp <= cursor {
			continue
		}

		text, isMemberChange := announce(entry)
		if text == "" {
			continue
		}
		memberChange = memberChange || isMemberChange
		announcements = append(announcements, Announcement{Timestamp: entry.Timestamp, Text: text})
	}

	if memberChange {
		text := fmt.Sprintf(":people_holding_hands:  Current member count: %d/%d.", log.Club.MemberCount, CLUB_CAPACITY)
		announcements = append(announcements, Announcement{Timestamp: newest, Text: text, Summary: true})
	}

	return announcements, newest
}

func announce(entry brawlapi.LogEntry) (string, bool) {

	data := entry.Data
	switch entry.Type {
	case brawlapi.LOG_MEMBERS:
		// Join or leave messages
		if data.Player == nil {
			return "", false
		}
		if data.Joined {
			return fmt.Sprintf(":dizzy:  %s joined the club.", playerName(data.Player)), true
		}
		return fmt.Sprintf(":no_entry_sign:  %s left the club.", playerName(data.Player)), true
	case brawlapi.LOG_ROLES:
		// Promotions
		if data.Player == nil {
			return "", false
		}
		if data.Promote {
			return fmt.Sprintf(":arrow_upper_right:  %s was promoted from %s to %s.", playerName(data.Player), data.Old, data.New), false
		}
		return fmt.Sprintf(":arrow_lower_right:  %s was demoted from %s to %s.", playerName(data.Player), data.Old, data.New), false
	case brawlapi.LOG_SETTINGS:
		switch data.Type {
		case brawlapi.SETTING_REQUIREMENT:
			return fmt.Sprintf(":trophy:  Trophy requirement changed from %s to %s.", data.Old, data.New), false
		case brawlapi.SETTING_STATUS:
			// Open, invite only, closed
			return fmt.Sprintf(":tools:  Club status changed from %s to %s.", data.Old, data.New), false
		}
	}
	return "", false
}

func playerName(player *brawlapi.LogPlayer) string {
	return fmt.Sprintf("**%s** (`#%s`)", player.Name, strings.TrimPrefix(player.Tag, "#"))
}

func FormatClubStats(c brawlapi.Club) string {

	average := 0
	if c.MemberCount > 0 {
		average = c.Trophies / c.MemberCount
	}
	url := fmt.Sprintf(brawlapi.CLUB_STATS_URL, strings.TrimPrefix(c.Tag, "#"))

	msg := "**========= Club Stats =========**"
	msg += fmt.Sprintf("\n:scroll:  %s", c.Description)
	msg += fmt.Sprintf("\n:people_holding_hands:  %d/%d members", c.MemberCount, CLUB_CAPACITY)
	msg += fmt.Sprintf("\n:trophy:  %d total trophies (%d per member)", c.Trophies, average)
	msg += fmt.Sprintf("\n:no_entry:  %d trophies required to join", c.RequiredTrophies)
	msg += fmt.Sprintf("\n:link:  %s", url)
	return msg
}
