package brawlapi

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Club summary as returned together with the club log
type Club struct {
	Tag              string
	Name             string
	Description      string
	Type             string
	Trophies         int
	RequiredTrophies int
	MemberCount      int
}

type ClubLog struct {
	Club    Club
	History []LogEntry
}

// Entry types of the club log
const (
	LOG_MEMBERS  = "members"
	LOG_ROLES    = "roles"
	LOG_SETTINGS = "settings"
)

// Setting types inside a settings entry
const (
	SETTING_REQUIREMENT = "requirement"
	SETTING_STATUS      = "status"
)

type LogPlayer struct {
	Tag  string
	Name string
}

type LogData struct {
	Player  *LogPlayer
	Joined  bool
	Promote bool
	Type    string
	Old     LogValue
	New     LogValue
}

type LogEntry struct {
	Type      string
	Timestamp int64
	Data      LogData
}

// A value of the club log that can come either as a string or as a number
type LogValue string

func (value *LogValue) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*value = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*value = LogValue(s)
		return nil
	}
	*value = LogValue(strings.TrimSpace(string(data)))
	return nil
}

func (value LogValue) String() string {
	return string(value)
}
