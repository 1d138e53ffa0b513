package bot

import (
	"clubbot/internal/brawlapi"
	"clubbot/internal/club"
	"clubbot/internal/common"
	"clubbot/internal/cursor"
	"clubbot/internal/metrics"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"
)

var now = time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC)

func newTestBot(game *fakeGame, chat *fakeChat, store cursor.Store) *Bot {
	return NewBot(game, chat, store, common.NewManualClock(now), zerolog.Nop(), testSettings())
}

func testClubLog() brawlapi.ClubLog {
	return brawlapi.ClubLog{
		Club: brawlapi.Club{Tag: "#2Q8GRJ", Name: "Los Pollos", Description: "Be active", Trophies: 360000, RequiredTrophies: 20000, MemberCount: 12},
		History: []brawlapi.LogEntry{
			{Type: brawlapi.LOG_MEMBERS, Timestamp: 300, Data: brawlapi.LogData{Player: &brawlapi.LogPlayer{Tag: "#AAA", Name: "Ann"}, Joined: true}},
			{Type: brawlapi.LOG_ROLES, Timestamp: 200, Data: brawlapi.LogData{Player: &brawlapi.LogPlayer{Tag: "#BBB", Name: "Zed"}, Promote: true, Old: "member", New: "senior"}},
			{Type: brawlapi.LOG_SETTINGS, Timestamp: 100, Data: brawlapi.LogData{Type: brawlapi.SETTING_REQUIREMENT, Old: "15000", New: "20000"}},
		},
	}
}

func TestUpdateMembers(t *testing.T) {

	Convey("Given a roster and a guild", t, func() {
		roster := []club.RosterEntry{
			{Tag: "AAA", Name: "Ann", Role: club.RoleMember, Trophies: 1000},
			{Tag: "BBB", Name: "Zed", Role: club.RoleSenior, Trophies: 900},
		}
		members := []club.ChatMember{
			{ID: "1", DisplayName: "Anne", Mention: "<@1>", Role: club.RoleMember},
			{ID: "2", DisplayName: "Bob", Mention: "<@2>", Role: club.RoleMember},
			{ID: "3", DisplayName: "Zed", Mention: "<@3>", IsBot: true},
		}
		mentions := club.RoleMentions{club.RoleMember: "<@&11>", club.RoleSenior: "<@&12>"}
		game := &fakeGame{roster: roster}
		chat := newFakeChat()
		chat.members = members
		chat.mentions = mentions
		bot := newTestBot(game, chat, &cursor.MemoryStore{})
		ctx := context.Background()

		Convey("The members message is replaced with the report", func() {
			So(bot.UpdateMembers(ctx), ShouldBeNil)
			expected := club.FormatMemberReport(club.Reconcile(roster, members, 75), mentions, now)
			So(chat.texts[membersRef], ShouldEqual, expected)
			So(chat.texts[membersRef], ShouldContainSubstring, "1. Ann / <@1> - <@&11>  - 1000 🏆")
			So(chat.texts[membersRef], ShouldContainSubstring, "2. Zed / ??? - <@&12>  - 900 🏆")
			So(chat.texts[membersRef], ShouldContainSubstring, "**Unlisted members**: <@2>")
			So(chat.texts[membersRef], ShouldEndWith, "Last updated: 08.03.2024 12:00:00 UTC")
		})

		Convey("The gauges follow the last reconciliation", func() {
			So(bot.UpdateMembers(ctx), ShouldBeNil)
			So(testutil.ToFloat64(metrics.RosterSize), ShouldEqual, 2)
			So(testutil.ToFloat64(metrics.UnmatchedRosterEntries), ShouldEqual, 1)
			So(testutil.ToFloat64(metrics.UnlistedMembers), ShouldEqual, 1)
			So(testutil.ToFloat64(metrics.DuplicateMembers), ShouldEqual, 0)
		})

		Convey("Role names are used when the mentions are not available", func() {
			chat.mentionsErr = errors.New("guild unavailable")
			So(bot.UpdateMembers(ctx), ShouldBeNil)
			So(chat.texts[membersRef], ShouldContainSubstring, "1. Ann / <@1> - Member  - 1000 🏆")
		})

		Convey("A roster that cannot be fetched leaves the message alone", func() {
			game.rosterErr = &common.UpstreamAPIError{URL: "roster", StatusCode: 503}
			err := bot.UpdateMembers(ctx)
			var upstream *common.UpstreamAPIError
			So(errors.As(err, &upstream), ShouldBeTrue)
			So(chat.publishes, ShouldEqual, 0)
		})

		Convey("A message that is gone is skipped without failing", func() {
			chat.publishErr[membersRef] = common.ErrNotFound
			So(bot.UpdateMembers(ctx), ShouldBeNil)
			So(chat.publishes, ShouldEqual, 0)
		})

		Convey("Other publishing failures are reported", func() {
			chat.publishErr[membersRef] = errors.New("discord down")
			So(bot.UpdateMembers(ctx), ShouldNotBeNil)
		})

		Convey("Nothing is published once the context is done", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			So(errors.Is(bot.UpdateMembers(cancelled), context.Canceled), ShouldBeTrue)
			So(chat.publishes, ShouldEqual, 0)
		})
	})
}

func TestUpdateActivity(t *testing.T) {

	Convey("Given the battle logs of the club members", t, func() {
		game := &fakeGame{
			roster: []club.RosterEntry{
				{Tag: "AAA", Name: "Ann"},
				{Tag: "BBB", Name: "Bo"},
				{Tag: "CCC", Name: "Cy"},
				{Tag: "ZZZ", Name: "Zed"},
			},
			matches: map[string][]club.MatchEntry{
				"AAA": {{Timestamp: now.Add(-24 * time.Hour)}, {Timestamp: now.Add(-48 * time.Hour)}},
				"ZZZ": {
					{Timestamp: now.Add(-6 * time.Hour)}, {Timestamp: now.Add(-12 * time.Hour)}, {Timestamp: now.Add(-18 * time.Hour)},
					{Timestamp: now.Add(-24 * time.Hour)}, {Timestamp: now.Add(-30 * time.Hour)}, {Timestamp: now.Add(-36 * time.Hour)},
				},
			},
			matchErrs: map[string]error{"CCC": &common.UpstreamAPIError{URL: "battlelog", StatusCode: 500}},
		}
		chat := newFakeChat()
		bot := newTestBot(game, chat, &cursor.MemoryStore{})

		Convey("The activity message ranks the players by matches per day", func() {
			So(bot.UpdateActivity(context.Background()), ShouldBeNil)
			text := chat.texts[activityRef]
			So(text, ShouldStartWith, "**Activity (matches per day, last 7 days)**")
			So(text, ShouldContainSubstring, "\n1. Zed: 4.0 (6 matches in last 1.5 days)\n2. Ann: 1.0 (2 matches in last 2.0 days)")
			So(text, ShouldContainSubstring, "No recent matches: Bo")
			So(text, ShouldNotContainSubstring, "Cy")
		})

		Convey("A fetch that panics only leaves that player out", func() {
			game.matchPanic = map[string]bool{"AAA": true}
			So(bot.UpdateActivity(context.Background()), ShouldBeNil)
			text := chat.texts[activityRef]
			So(text, ShouldContainSubstring, "\n1. Zed: 4.0 (6 matches in last 1.5 days)")
			So(text, ShouldNotContainSubstring, "Ann")
		})

		Convey("The logs are gathered in roster order", func() {
			logs := bot.gatherMatchLogs(context.Background(), game.roster)
			So(logs, ShouldHaveLength, 4)
			So(logs[0].Player, ShouldEqual, "Ann")
			So(logs[1].Matches, ShouldBeEmpty)
			So(logs[2].Err, ShouldNotBeNil)
			So(logs[3].Matches, ShouldHaveLength, 6)
		})
	})
}

func TestUpdateClub(t *testing.T) {

	Convey("Given a club log", t, func() {
		game := &fakeGame{clubLog: testClubLog()}
		chat := newFakeChat()
		store := &cursor.MemoryStore{}
		bot := newTestBot(game, chat, store)
		ctx := context.Background()

		Convey("Every new entry is announced, oldest first", func() {
			So(bot.UpdateClub(ctx), ShouldBeNil)
			So(chat.sent[clubLogChannel], ShouldResemble, []string{
				":trophy:  Trophy requirement changed from 15000 to 20000.",
				":arrow_upper_right:  **Zed** (`#BBB`) was promoted from member to senior.",
				":dizzy:  **Ann** (`#AAA`) joined the club.",
				":people_holding_hands:  Current member count: 12/30.",
			})
			value, _ := store.Load(ctx)
			So(value, ShouldEqual, 300)
			So(chat.texts[statsRef], ShouldEqual, FormatClubStats(game.clubLog.Club))

			Convey("And nothing is announced twice", func() {
				So(bot.UpdateClub(ctx), ShouldBeNil)
				So(chat.sent[clubLogChannel], ShouldHaveLength, 4)
			})
		})

		Convey("Entries older than the cursor are not announced", func() {
			store.Save(ctx, 200)
			So(bot.UpdateClub(ctx), ShouldBeNil)
			So(chat.sent[clubLogChannel], ShouldResemble, []string{
				":dizzy:  **Ann** (`#AAA`) joined the club.",
				":people_holding_hands:  Current member count: 12/30.",
			})
		})

		Convey("A failed announcement is retried on the next run", func() {
			chat.sendErrAt = 1
			chat.sendErr = errors.New("discord down")
			So(bot.UpdateClub(ctx), ShouldNotBeNil)
			value, _ := store.Load(ctx)
			So(value, ShouldEqual, 199)
			So(chat.texts[statsRef], ShouldNotBeEmpty)

			chat.sendErrAt = -1
			So(bot.UpdateClub(ctx), ShouldBeNil)
			So(chat.sent[clubLogChannel], ShouldHaveLength, 4)
			So(chat.sent[clubLogChannel][1], ShouldContainSubstring, "was promoted")
		})

		Convey("A failed member count keeps the announced entries", func() {
			chat.sendErrAt = 3
			chat.sendErr = errors.New("discord down")
			So(bot.UpdateClub(ctx), ShouldNotBeNil)
			value, _ := store.Load(ctx)
			So(value, ShouldEqual, 300)

			chat.sendErrAt = -1
			So(bot.UpdateClub(ctx), ShouldBeNil)
			So(chat.sent[clubLogChannel], ShouldHaveLength, 3)
		})

		Convey("A channel that is gone does not fail the task", func() {
			chat.sendErrAt = 0
			chat.sendErr = common.ErrNotFound
			So(bot.UpdateClub(ctx), ShouldBeNil)
			value, _ := store.Load(ctx)
			So(value, ShouldEqual, 99)
		})

		Convey("Without a club log channel only the stats are updated", func() {
			bot.settings.ClubLogChannelID = ""
			So(bot.UpdateClub(ctx), ShouldBeNil)
			So(chat.sent, ShouldBeEmpty)
			value, _ := store.Load(ctx)
			So(value, ShouldEqual, 0)
			So(chat.texts[statsRef], ShouldNotBeEmpty)
		})

		Convey("A club log that cannot be fetched changes nothing", func() {
			game.clubLogErr = &common.UpstreamAPIError{URL: "clublog", StatusCode: 502}
			So(bot.UpdateClub(ctx), ShouldNotBeNil)
			So(chat.sent, ShouldBeEmpty)
			So(chat.publishes, ShouldEqual, 0)
		})
	})
}

func TestUpdateTeams(t *testing.T) {

	Convey("Given guild members in teams", t, func() {
		chat := newFakeChat()
		chat.members = []club.ChatMember{
			{ID: "1", Mention: "<@1>", Roles: []string{"Member", "Team 1"}, Role: club.RoleMember},
			{ID: "2", Mention: "<@2>", Roles: []string{"Senior"}, Role: club.RoleSenior},
		}
		bot := newTestBot(&fakeGame{}, chat, &cursor.MemoryStore{})
		ctx := context.Background()

		Convey("The message is updated when the teams change", func() {
			chat.texts[teamsRef] = "old teams"
			So(bot.UpdateTeams(ctx), ShouldBeNil)
			So(chat.texts[teamsRef], ShouldEqual, FormatTeams(chat.members, 2, 3))
			So(chat.publishes, ShouldEqual, 1)

			Convey("And left alone when they do not", func() {
				So(bot.UpdateTeams(ctx), ShouldBeNil)
				So(chat.publishes, ShouldEqual, 1)
			})
		})

		Convey("A message that is gone is skipped", func() {
			So(bot.UpdateTeams(ctx), ShouldBeNil)
			So(chat.publishes, ShouldEqual, 0)
		})
	})
}
