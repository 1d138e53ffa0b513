package bot

import (
	"clubbot/internal/club"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Use the club's gold for the embeds of the bot
const color int = 0xF5B700

func InputNotValid(errorMessage string) []Response {

	return []Response{ResponseString{fmt.Sprintf("Input not valid: \n> %s", errorMessage)}}
}

func HelpMessage(prefix string) []Response {

	embed := discordgo.MessageEmbed{Title: "Commands available", Color: color}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   fmt.Sprintf("`%s%s`", prefix, usages[COMMAND_EVAL_POLL]),
		Value:  "List every user that reacted to a message, with their reactions",
		Inline: false,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   fmt.Sprintf("`%s%s`", prefix, usages[COMMAND_ACTIVITY]),
		Value:  "Print how many matches per day a player has played lately",
		Inline: false,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   fmt.Sprintf("`%s%s`", prefix, usages[COMMAND_HELP]),
		Value:  "Print the usage of the different commands",
		Inline: false,
	})
	return []Response{ResponseEmbed{embed}}
}

func PollEvaluation(votes []PollVote) []Response {

	if len(votes) == 0 {
		return []Response{ResponseString{"Nobody has reacted to that message yet"}}
	}
	lines := make([]string, len(votes))
	for i, vote := range votes {
		lines[i] = fmt.Sprintf("%d. %s: %s", i+1, vote.Mention, strings.Join(vote.Reactions, " "))
	}
	return []Response{ResponseString{strings.Join(lines, "\n")}}
}

func PollNotFound() []Response {
	return []Response{ResponseString{"Could not find that message"}}
}

func NoResponseGameApi(tag string) []Response {
	return []Response{ResponseString{fmt.Sprintf("Got no response from the game API for player `#%s`", tag)}}
}

func PlayerActivity(record club.ActivityRecord) []Response {

	if record.Outcome != club.OutcomeOK {
		return []Response{ResponseString{fmt.Sprintf("%s (`#%s`) has no recent matches", record.Player, record.Tag)}}
	}
	return []Response{ResponseString{fmt.Sprintf("%s: %.1f (%d matches in last %.1f days)", record.Player, record.AveragePerDay, record.MatchesInWindow, record.SpanDays)}}
}
