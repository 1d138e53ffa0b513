package club

// Reconcile matches every roster entry with the chat member whose display
// name is most similar to the entry's name. A match needs a score strictly
// above cutoff, and on equal scores the member listed first wins.
//
// Members are not taken out of the pool once matched, so one member can
// end up matched by several entries. Those members are reported as
// duplicates. Club-role members that no entry matched are reported as
// unlisted. Bots never take part
func Reconcile(roster []RosterEntry, members []ChatMember, cutoff int) Reconciliation {

	candidates := make([]ChatMember, 0, len(members))
	for _, member := range members {
		if !member.IsBot {
			candidates = append(candidates, member)
		}
	}

	result := Reconciliation{Pairs: make([]MatchedPair, 0, len(roster))}
	matchCount := map[string]int{}
	var matchOrder []string

	for _, entry := range roster {
		pair := MatchedPair{Entry: entry}

		best := -1
		bestScore := -1
		for i := range candidates {
			score := Similarity(entry.Name, candidates[i].DisplayName)
			if score > bestScore {
				best, bestScore = i, score
			}
		}

		if best >= 0 && bestScore > cutoff {
			member := candidates[best]
			pair.Member = &member
			pair.Score = bestScore
			pair.RoleMismatch = entry.Role != member.Role
			if matchCount[member.ID] == 0 {
				matchOrder = append(matchOrder, member.ID)
			}
			matchCount[member.ID]++
		}
		result.Pairs = append(result.Pairs, pair)
	}

	byID := make(map[string]ChatMember, len(candidates))
	for _, member := range candidates {
		if _, ok := byID[member.ID]; !ok {
			byID[member.ID] = member
		}
		if member.Role.IsClubRole() && matchCount[member.ID] == 0 {
			result.Unlisted = append(result.Unlisted, member)
		}
	}
	for _, id := range matchOrder {
		if matchCount[id] >= 2 {
			result.Duplicates = append(result.Duplicates, byID[id])
		}
	}

	return result
}
