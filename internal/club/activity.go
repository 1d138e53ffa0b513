package club

import (
	"sort"
	"time"
)

const DefaultActivityWindow = 7 * 24 * time.Hour

const day = 24 * time.Hour

// Aggregate computes how many matches per day a player has played over
// the window ending at now.
//
// The span the average is taken over starts at the player's earliest known
// match, clamped to the start of the window, so a player whose log does not
// reach back a whole window is not penalised for it. Matches exactly at the
// start of the window are outside of it. A player without matches, or whose
// matches all lie at or after now, has no data
func Aggregate(player, tag string, timestamps []time.Time, now time.Time, window time.Duration) ActivityRecord {

	record := ActivityRecord{Player: player, Tag: tag}
	if len(timestamps) == 0 {
		record.Outcome = OutcomeNoData
		return record
	}

	windowStart := now.Add(-window)
	earliest := timestamps[0]
	inWindow := 0
	for _, timestamp := range timestamps {
		if timestamp.After(windowStart) {
			inWindow++
		}
		if timestamp.Before(earliest) {
			earliest = timestamp
		}
	}

	effectiveStart := earliest
	if windowStart.After(effectiveStart) {
		effectiveStart = windowStart
	}
	span := now.Sub(effectiveStart)
	if span <= 0 {
		record.Outcome = OutcomeNoData
		return record
	}

	record.Outcome = OutcomeOK
	record.MatchesInWindow = inWindow
	record.SpanDays = float64(span) / float64(day)
	record.AveragePerDay = float64(inWindow) / record.SpanDays
	return record
}

// RankActivity aggregates every player on its own. Players with data come
// first, most active first and in input order on ties, followed by the
// players without data and the ones whose log could not be fetched, both
// in input order
func RankActivity(inputs []PlayerMatches, now time.Time, window time.Duration) []ActivityRecord {

	records := make([]ActivityRecord, 0, len(inputs))
	for _, input := range inputs {
		if input.Err != nil {
			records = append(records, ActivityRecord{Player: input.Player, Tag: input.Tag, Outcome: OutcomeFetchFailed})
			continue
		}
		timestamps := make([]time.Time, len(input.Matches))
		for i, match := range input.Matches {
			timestamps[i] = match.Timestamp
		}
		records = append(records, Aggregate(input.Player, input.Tag, timestamps, now, window))
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Outcome != b.Outcome {
			return a.Outcome < b.Outcome
		}
		if a.Outcome == OutcomeOK {
			return a.AveragePerDay > b.AveragePerDay
		}
		return false
	})
	return records
}
