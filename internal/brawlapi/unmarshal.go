package brawlapi

import (
	"clubbot/internal/club"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Layout of the battle times in the battle log
const BATTLE_TIME_LAYOUT = "20060102T150405.000Z"

func UnmarshalRoster(data []byte) ([]club.RosterEntry, error) {

	// unmarshal
	var raw struct {
		Items *[]struct {
			Tag      string
			Name     string
			Role     string
			Trophies int
		}
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw.Items == nil {
		return nil, fmt.Errorf("member list has no items")
	}

	// Convert, keeping the order of the club
	roster := make([]club.RosterEntry, 0, len(*raw.Items))
	seen := map[string]struct{}{}
	for _, item := range *raw.Items {
		tag := strings.TrimPrefix(item.Tag, "#")
		if _, ok := seen[tag]; ok {
			return nil, fmt.Errorf("tag %s appears twice in the member list", item.Tag)
		}
		seen[tag] = struct{}{}
		roster = append(roster, club.RosterEntry{Tag: tag, Name: item.Name, Role: club.RoleFromClub(item.Role), Trophies: item.Trophies})
	}

	return roster, nil
}

func UnmarshalBattleLog(data []byte) ([]club.MatchEntry, error) {

	// unmarshal
	var raw struct {
		Items *[]struct {
			BattleTime string
		}
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw.Items == nil {
		return nil, fmt.Errorf("battle log has no items")
	}

	// timestamps
	matches := make([]club.MatchEntry, 0, len(*raw.Items))
	for _, item := range *raw.Items {
		timestamp, err := time.Parse(BATTLE_TIME_LAYOUT, item.BattleTime)
		if err != nil {
			return nil, fmt.Errorf("battle time %q is not correctly formatted", item.BattleTime)
		}
		matches = append(matches, club.MatchEntry{Timestamp: timestamp.UTC()})
	}

	return matches, nil
}

func UnmarshalPlayerName(data []byte) (string, error) {

	var player struct {
		Name string
	}
	if err := json.Unmarshal(data, &player); err != nil {
		return "", err
	}
	if player.Name == "" {
		return "", fmt.Errorf("player has no name")
	}
	return player.Name, nil
}

func UnmarshalClubLog(data []byte) (ClubLog, error) {

	var log ClubLog
	if err := json.Unmarshal(data, &log); err != nil {
		return ClubLog{}, err
	}
	if log.Club.Tag == "" {
		return ClubLog{}, fmt.Errorf("club log has no club")
	}
	return log, nil
}
