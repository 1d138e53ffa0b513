package bot

import (
	"clubbot/internal/club"
	"clubbot/internal/common"
	"clubbot/internal/config"
	"clubbot/internal/cursor"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// Settings of the bot that come from the configuration
type Settings struct {
	Messages         config.Messages
	ClubLogChannelID string
	Cutoff           int
	ActivityWindow   time.Duration
	TeamCount        int
	TeamSize         int
	Intervals        config.Intervals
	Prefix           string
}

func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Messages:         cfg.Messages,
		ClubLogChannelID: cfg.ClubLogChannelID,
		Cutoff:           cfg.MatchCutoff,
		ActivityWindow:   cfg.ActivityWindow,
		TeamCount:        cfg.TeamCount,
		TeamSize:         cfg.TeamSize,
		Intervals:        cfg.Intervals,
		Prefix:           cfg.CommandPrefix,
	}
}

type Bot struct {
	game     GameApi
	chat     ChatPlatform
	cursor   cursor.Store
	clock    common.Clock
	logger   zerolog.Logger
	settings Settings
}

func NewBot(game GameApi, chat ChatPlatform, store cursor.Store, clock common.Clock, logger zerolog.Logger, settings Settings) *Bot {
	return &Bot{game: game, chat: chat, cursor: store, clock: clock, logger: logger, settings: settings}
}

// The periodic tasks of the bot
func (bot *Bot) Tasks() []common.Task {
	return []common.Task{
		{Name: "members", Interval: bot.settings.Intervals.Members, Immediate: true, Run: bot.UpdateMembers},
		{Name: "teams", Interval: bot.settings.Intervals.Members, Immediate: true, Run: bot.UpdateTeams},
		{Name: "club", Interval: bot.settings.Intervals.Club, Run: bot.UpdateClub},
		{Name: "activity", Interval: bot.settings.Intervals.Activity, Immediate: true, Run: bot.UpdateActivity},
	}
}

// Open the session, schedule the tasks and keep running until ctx is done
func (bot *Bot) Run(ctx context.Context, session *discordgo.Session) error {

	// Event handler
	session.AddHandler(bot.Receive)

	// Open session
	if err := session.Open(); err != nil {
		return fmt.Errorf("could not open discord session: %w", err)
	}
	defer session.Close()
	bot.logger.Info().Str("user", session.State.User.Username).Msg("Logged in")

	scheduler := common.NewScheduler(bot.clock, bot.logger)
	for _, task := range bot.Tasks() {
		scheduler.Add(task)
	}
	scheduler.Run(ctx)

	bot.logger.Info().Msg("Shutting down")
	return nil
}

func (bot *Bot) Receive(discord *discordgo.Session, message *discordgo.MessageCreate) {

	// Reject my own messages and those of other bots
	if message.Author == nil || message.Author.Bot || message.Author.ID == discord.State.User.ID {
		return
	}

	responses := bot.Handle(context.Background(), message.Content)
	for _, response := range responses {
		if err := response.Send(message.ChannelID, discord); err != nil {
			bot.logger.Error().Err(err).Str("channel", message.ChannelID).Msg("Could not send response")
		}
	}
}

// Parse a message and compute the responses to it. Messages not meant
// for the bot get no response
func (bot *Bot) Handle(ctx context.Context, content string) []Response {

	parseResult := Parse(bot.settings.Prefix, content)
	switch parseResult.parseid {
	case PARSEID_NO_BOT_PREFIX:
		return nil
	case PARSEID_OK:
		bot.logger.Info().Str("content", content).Msg("Command understood")
		switch parseResult.command {
		case COMMAND_EVAL_POLL:
			switch arguments := parseResult.arguments.(type) {
			default:
				panic(fmt.Sprintf("unexpected type of poll arguments %T", arguments))
			case PollArguments:
				return bot.evalPoll(ctx, arguments)
			}
		case COMMAND_ACTIVITY:
			switch tag := parseResult.arguments.(type) {
			default:
				panic(fmt.Sprintf("unexpected type of player tag %T", tag))
			case string:
				return bot.activity(ctx, tag)
			}
		case COMMAND_HELP:
			return HelpMessage(bot.settings.Prefix)
		default:
			panic(fmt.Sprintf("Command %d is not one of the possible ones", parseResult.command))
		}
	default:
		// The command is invalid input, so it contains an error message
		bot.logger.Info().Str("content", content).Str("reason", parseResult.errorMessage).Msg("Wrong input")
		return InputNotValid(parseResult.errorMessage)
	}
}

func (bot *Bot) evalPoll(ctx context.Context, arguments PollArguments) []Response {

	votes, err := bot.chat.PollVotes(ctx, arguments.ChannelID, arguments.MessageID)
	if errors.Is(err, common.ErrNotFound) {
		bot.logger.Warn().Err(err).Msg("Poll not found")
		return PollNotFound()
	}
	if err != nil {
		bot.logger.Error().Err(err).Msg("Could not evaluate poll")
		return PollNotFound()
	}
	return PollEvaluation(votes)
}

func (bot *Bot) activity(ctx context.Context, tag string) []Response {

	name, err := bot.game.FetchPlayerName(ctx, tag)
	if err != nil {
		bot.logger.Warn().Err(err).Str("tag", tag).Msg("Could not fetch player")
		return NoResponseGameApi(tag)
	}
	matches, err := bot.game.FetchMatchLog(ctx, tag)
	if err != nil {
		bot.logger.Warn().Err(err).Str("tag", tag).Msg("Could not fetch battle log")
		return NoResponseGameApi(tag)
	}

	records := club.RankActivity([]club.PlayerMatches{{Player: name, Tag: tag, Matches: matches}}, bot.clock.Now(), bot.settings.ActivityWindow)
	return PlayerActivity(records[0])
}
