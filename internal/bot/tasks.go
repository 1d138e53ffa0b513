package bot

import (
	"clubbot/internal/brawlapi"
	"clubbot/internal/club"
	"clubbot/internal/common"
	"clubbot/internal/config"
	"clubbot/internal/metrics"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Reconcile the club roster with the guild and update the members message
func (bot *Bot) UpdateMembers(ctx context.Context) error {

	logger := zerolog.Ctx(ctx)

	// Fetch
	roster, err := bot.game.FetchRoster(ctx)
	if err != nil {
		return fmt.Errorf("could not fetch roster: %w", err)
	}
	members, err := bot.chat.SnapshotChatMembers(ctx)
	if err != nil {
		return fmt.Errorf("could not take snapshot of guild members: %w", err)
	}
	mentions, err := bot.chat.RoleMentions(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Role mentions not available, using role names")
		mentions = club.RoleMentions{}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Compute
	result := club.Reconcile(roster, members, bot.settings.Cutoff)
	unmatched := 0
	for _, pair := range result.Pairs {
		if pair.Member == nil {
			unmatched++
		}
	}
	metrics.RosterSize.Set(float64(len(roster)))
	metrics.UnmatchedRosterEntries.Set(float64(unmatched))
	metrics.UnlistedMembers.Set(float64(len(result.Unlisted)))
	metrics.DuplicateMembers.Set(float64(len(result.Duplicates)))
	logger.Info().Int("roster", len(roster)).Int("unmatched", unmatched).Int("unlisted", len(result.Unlisted)).
		Int("duplicates", len(result.Duplicates)).Msg("Reconciled members")

	// Render
	text := club.FormatMemberReport(result, mentions, bot.clock.Now())
	if err := ctx.Err(); err != nil {
		return err
	}

	// Publish
	return bot.publish(ctx, "members", bot.settings.Messages.Members, text)
}

// Rank the club members by recent activity and update the activity message
func (bot *Bot) UpdateActivity(ctx context.Context) error {

	logger := zerolog.Ctx(ctx)

	// Fetch
	roster, err := bot.game.FetchRoster(ctx)
	if err != nil {
		return fmt.Errorf("could not fetch roster: %w", err)
	}
	logs := bot.gatherMatchLogs(ctx, roster)
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, log := range logs {
		if log.Err != nil {
			logger.Warn().Err(log.Err).Str("player", log.Player).Str("tag", log.Tag).Msg("Battle log not available, player left out of the ranking")
		}
	}

	// Compute
	records := club.RankActivity(logs, bot.clock.Now(), bot.settings.ActivityWindow)

	// Render
	text := club.FormatActivityReport(records, bot.settings.ActivityWindow, bot.clock.Now())
	if err := ctx.Err(); err != nil {
		return err
	}

	// Publish
	return bot.publish(ctx, "activity", bot.settings.Messages.Activity, text)
}

// Fetch the battle log of every player at the same time. The logs come
// back in roster order, with the error of the ones that failed
func (bot *Bot) gatherMatchLogs(ctx context.Context, roster []club.RosterEntry) []club.PlayerMatches {

	type result struct {
		index int
		logs  club.PlayerMatches
	}
	results := make(chan result, len(roster))
	var wg sync.WaitGroup
	for i, entry := range roster {
		i, entry := i, entry

		wg.Add(1)
		go func(ch chan<- result) {

			defer wg.Done()

			logs := club.PlayerMatches{Player: entry.Name, Tag: entry.Tag}
			defer func() {
				if r := recover(); r != nil {
					logs.Matches, logs.Err = nil, fmt.Errorf("fetching battle log panicked: %v", r)
				}
				ch <- result{i, logs}
			}()
			logs.Matches, logs.Err = bot.game.FetchMatchLog(ctx, entry.Tag)

		}(results)

	}
	wg.Wait()
	close(results)

	logs := make([]club.PlayerMatches, len(roster))
	for r := range results {
		logs[r.index] = r.logs
	}
	return logs
}

// Announce the new club log entries and update the club stats message
func (bot *Bot) UpdateClub(ctx context.Context) error {

	// Fetch
	log, err := bot.game.FetchClubLog(ctx)
	if err != nil {
		return fmt.Errorf("could not fetch club log: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// The stats do not depend on the announcements going through
	logErr := bot.announceClubLog(ctx, log)
	if err := ctx.Err(); err != nil {
		return err
	}
	statsErr := bot.publish(ctx, "stats", bot.settings.Messages.Stats, FormatClubStats(log.Club))
	return errors.Join(logErr, statsErr)
}

func (bot *Bot) announceClubLog(ctx context.Context, log brawlapi.ClubLog) error {

	logger := zerolog.Ctx(ctx)
	if bot.settings.ClubLogChannelID == "" {
		logger.Warn().Msg("No channel found to announce the club log")
		return nil
	}

	// Load cursor
	cursor, err := bot.cursor.Load(ctx)
	if err != nil {
		return fmt.Errorf("could not load club log cursor: %w", err)
	}

	// Compute
	announcements, newest := ProcessClubLog(log, cursor)

	// Publish, stopping at the first failure so that nothing is skipped
	for _, announcement := range announcements {
		err := bot.chat.SendText(ctx, bot.settings.ClubLogChannelID, announcement.Text)
		if err == nil {
			metrics.ObservePublish("clublog", "ok")
			continue
		}
		metrics.ObservePublish("clublog", "error")
		// Entries sharing the failed timestamp are repeated next time rather than lost.
		// A summary only follows entries that were already announced
		newest = max(cursor, announcement.Timestamp-1)
		if announcement.Summary {
			newest = announcement.Timestamp
		}
		if errors.Is(err, common.ErrNotFound) {
			logger.Warn().Err(err).Msg("No channel found to announce the club log")
			err = nil
		} else {
			err = fmt.Errorf("could not announce club log entry: %w", err)
		}
		if saveErr := bot.cursor.Save(ctx, newest); saveErr != nil {
			return errors.Join(err, fmt.Errorf("could not save club log cursor: %w", saveErr))
		}
		return err
	}

	// Save cursor
	if newest != cursor {
		if err := bot.cursor.Save(ctx, newest); err != nil {
			return fmt.Errorf("could not save club log cursor: %w", err)
		}
	}
	if len(announcements) > 0 {
		logger.Info().Int("announcements", len(announcements)).Int64("cursor", newest).Msg("Announced club log")
	}
	return nil
}

// Update the team constellations message, only when it changes
func (bot *Bot) UpdateTeams(ctx context.Context) error {

	logger := zerolog.Ctx(ctx)

	// Fetch
	members, err := bot.chat.SnapshotChatMembers(ctx)
	if err != nil {
		return fmt.Errorf("could not take snapshot of guild members: %w", err)
	}
	current, err := bot.chat.ReadText(ctx, bot.settings.Messages.Teams)
	if errors.Is(err, common.ErrNotFound) {
		logger.Warn().Err(err).Msg("No message found to update teams")
		metrics.ObservePublish("teams", "not_found")
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not read teams message: %w", err)
	}

	// Render
	text := FormatTeams(members, bot.settings.TeamCount, bot.settings.TeamSize)
	if text == current {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Publish
	logger.Info().Msg("Team constellations have changed. Updating message")
	return bot.publish(ctx, "teams", bot.settings.Messages.Teams, text)
}

// Edit a message. A message that cannot be found is skipped with a warning
func (bot *Bot) publish(ctx context.Context, target string, ref config.MessageRef, text string) error {

	err := bot.chat.PublishText(ctx, ref, text)
	switch {
	case err == nil:
		metrics.ObservePublish(target, "ok")
		return nil
	case errors.Is(err, common.ErrNotFound):
		metrics.ObservePublish(target, "not_found")
		zerolog.Ctx(ctx).Warn().Err(err).Str("target", target).Msg("No message found to update")
		return nil
	default:
		metrics.ObservePublish(target, "error")
		return fmt.Errorf("could not update %s message: %w", target, err)
	}
}
