package bot

import (
	"clubbot/internal/brawlapi"
	"clubbot/internal/club"
	"clubbot/internal/common"
	"clubbot/internal/config"
	"context"
	"sync"
	"time"
)

var (
	membersRef  = config.MessageRef{ChannelID: "100", MessageID: "101"}
	activityRef = config.MessageRef{ChannelID: "100", MessageID: "102"}
	statsRef    = config.MessageRef{ChannelID: "100", MessageID: "103"}
	teamsRef    = config.MessageRef{ChannelID: "100", MessageID: "104"}
)

const clubLogChannel = "200"

func testSettings() Settings {
	return Settings{
		Messages:         config.Messages{Members: membersRef, Activity: activityRef, Stats: statsRef, Teams: teamsRef},
		ClubLogChannelID: clubLogChannel,
		Cutoff:           75,
		ActivityWindow:   club.DefaultActivityWindow,
		TeamCount:        2,
		TeamSize:         3,
		Intervals:        config.Intervals{Members: 5 * time.Minute, Club: 5 * time.Minute, Activity: 6 * time.Hour},
		Prefix:           "!",
	}
}

type fakeGame struct {
	roster     []club.RosterEntry
	rosterErr  error
	matches    map[string][]club.MatchEntry
	matchErrs  map[string]error
	matchPanic map[string]bool
	names      map[string]string
	clubLog    brawlapi.ClubLog
	clubLogErr error
}

func (game *fakeGame) FetchRoster(ctx context.Context) ([]club.RosterEntry, error) {
	return game.roster, game.rosterErr
}

func (game *fakeGame) FetchMatchLog(ctx context.Context, tag string) ([]club.MatchEntry, error) {
	if game.matchPanic[tag] {
		panic("unexpected answer")
	}
	if err, ok := game.matchErrs[tag]; ok {
		return nil, err
	}
	return game.matches[tag], nil
}

func (game *fakeGame) FetchPlayerName(ctx context.Context, tag string) (string, error) {
	name, ok := game.names[tag]
	if !ok {
		return "", &common.UpstreamAPIError{URL: tag, StatusCode: 404}
	}
	return name, nil
}

func (game *fakeGame) FetchClubLog(ctx context.Context) (brawlapi.ClubLog, error) {
	return game.clubLog, game.clubLogErr
}

type fakeChat struct {
	mu          sync.Mutex
	members     []club.ChatMember
	mentions    club.RoleMentions
	mentionsErr error
	texts       map[config.MessageRef]string
	publishErr  map[config.MessageRef]error
	sent        map[string][]string
	sendErrAt   int // Number of sends that succeed before failing, -1 never fails
	sendErr     error
	votes       []PollVote
	votesErr    error
	publishes   int
}

func newFakeChat() *fakeChat {
	return &fakeChat{
		texts:      map[config.MessageRef]string{},
		publishErr: map[config.MessageRef]error{},
		sent:       map[string][]string{},
		sendErrAt:  -1,
	}
}

func (chat *fakeChat) SnapshotChatMembers(ctx context.Context) ([]club.ChatMember, error) {
	return chat.members, nil
}

func (chat *fakeChat) RoleMentions(ctx context.Context) (club.RoleMentions, error) {
	return chat.mentions, chat.mentionsErr
}

func (chat *fakeChat) ReadText(ctx context.Context, target config.MessageRef) (string, error) {
	chat.mu.Lock()
	defer chat.mu.Unlock()
	text, ok := chat.texts[target]
	if !ok {
		return "", common.ErrNotFound
	}
	return text, nil
}

func (chat *fakeChat) PublishText(ctx context.Context, target config.MessageRef, text string) error {
	chat.mu.Lock()
	defer chat.mu.Unlock()
	if err := chat.publishErr[target]; err != nil {
		return err
	}
	chat.publishes++
	chat.texts[target] = text
	return nil
}

func (chat *fakeChat) SendText(ctx context.Context, channelID string, text string) error {
	chat.mu.Lock()
	defer chat.mu.Unlock()
	if chat.sendErrAt >= 0 && len(chat.sent[channelID]) >= chat.sendErrAt {
		return chat.sendErr
	}
	chat.sent[channelID] = append(chat.sent[channelID], text)
	return nil
}

func (chat *fakeChat) PollVotes(ctx context.Context, channelID string, messageID string) ([]PollVote, error) {
	return chat.votes, chat.votesErr
}
