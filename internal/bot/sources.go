package bot

import (
	"clubbot/internal/brawlapi"
	"clubbot/internal/club"
	"clubbot/internal/config"
	"context"
)

type RosterSource interface {
	FetchRoster(ctx context.Context) ([]club.RosterEntry, error)
}

type MatchLogSource interface {
	FetchMatchLog(ctx context.Context, tag string) ([]club.MatchEntry, error)
}

type ClubLogSource interface {
	FetchClubLog(ctx context.Context) (brawlapi.ClubLog, error)
}

type PlayerSource interface {
	FetchPlayerName(ctx context.Context, tag string) (string, error)
}

// Everything the bot asks the game APIs for. Implemented by *brawlapi.Api
type GameApi interface {
	RosterSource
	MatchLogSource
	ClubLogSource
	PlayerSource
}

// One user that reacted to a poll, with the reactions given
type PollVote struct {
	Mention   string
	Reactions []string
}

// Everything the bot asks the chat platform for. Implemented by *Discord.
// Handles that do not resolve are reported with common.ErrNotFound
type ChatPlatform interface {
	SnapshotChatMembers(ctx context.Context) ([]club.ChatMember, error)
	RoleMentions(ctx context.Context) (club.RoleMentions, error)
	ReadText(ctx context.Context, target config.MessageRef) (string, error)
	PublishText(ctx context.Context, target config.MessageRef, text string) error
	SendText(ctx context.Context, channelID string, text string) error
	PollVotes(ctx context.Context, channelID string, messageID string) ([]PollVote, error)
}
