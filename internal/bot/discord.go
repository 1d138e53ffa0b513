package bot

import (
	"clubbot/internal/club"
	"clubbot/internal/common"
	"clubbot/internal/config"
	"context"
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// Discord does not accept longer messages
const maxMessageLength = 2000

// Page sizes allowed by the Discord API
const (
	membersPageSize   = 1000
	reactionsPageSize = 100
)

// Chat platform backed by a discordgo session, scoped to one guild
type Discord struct {
	session    *discordgo.Session
	guildID    string
	precedence []club.RoleName
	logger     zerolog.Logger
}

func NewDiscord(session *discordgo.Session, guildID string, precedence []club.RoleName, logger zerolog.Logger) *Discord {
	return &Discord{session: session, guildID: guildID, precedence: precedence, logger: logger}
}

func (discord *Discord) SnapshotChatMembers(ctx context.Context) ([]club.ChatMember, error) {

	// Role names by id
	roles, err := discord.session.GuildRoles(discord.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("could not extract roles of guild %s: %w", discord.guildID, notFound(err))
	}
	roleNames := make(map[string]string, len(roles))
	for _, role := range roles {
		roleNames[role.ID] = role.Name
	}

	// Members, one page at a time
	var members []club.ChatMember
	after := ""
	for {
		page, err := discord.session.GuildMembers(discord.guildID, after, membersPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("could not extract members of guild %s: %w", discord.guildID, notFound(err))
		}
		for _, member := range page {
			if member == nil || member.User == nil {
				continue
			}
			members = append(members, discord.chatMember(member, roleNames))
		}
		last := lastMemberID(page, after)
		if len(page) < membersPageSize || last == after {
			break
		}
		after = last
	}

	discord.logger.Debug().Int("members", len(members)).Msg("Took snapshot of guild members")
	return members, nil
}

func (discord *Discord) chatMember(member *discordgo.Member, roleNames map[string]string) club.ChatMember {

	names := make([]string, 0, len(member.Roles))
	for _, id := range member.Roles {
		if name, ok := roleNames[id]; ok {
			names = append(names, name)
		}
	}

	displayName := member.Nick
	if displayName == "" {
		displayName = member.User.GlobalName
	}
	if displayName == "" {
		displayName = member.User.Username
	}

	return club.ChatMember{
		ID:          member.User.ID,
		DisplayName: displayName,
		Mention:     member.User.Mention(),
		Roles:       names,
		Role:        club.ResolveRole(names, discord.precedence),
		IsBot:       member.User.Bot,
	}
}

func (discord *Discord) RoleMentions(ctx context.Context) (club.RoleMentions, error) {

	roles, err := discord.session.GuildRoles(discord.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("could not extract roles of guild %s: %w", discord.guildID, notFound(err))
	}
	mentions := club.RoleMentions{}
	for _, role := range roles {
		if clubRole := club.RoleFromName(club.RoleName(role.Name)); clubRole != club.RoleNone {
			mentions[clubRole] = role.Mention()
		}
	}
	return mentions, nil
}

func (discord *Discord) ReadText(ctx context.Context, target config.MessageRef) (string, error) {

	if target.ChannelID == "" || target.MessageID == "" {
		return "", fmt.Errorf("message is not configured: %w", common.ErrNotFound)
	}
	message, err := discord.session.ChannelMessage(target.ChannelID, target.MessageID, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("could not fetch message %s: %w", target.MessageID, notFound(err))
	}
	return message.Content, nil
}

func (discord *Discord) PublishText(ctx context.Context, target config.MessageRef, text string) error {

	if target.ChannelID == "" || target.MessageID == "" {
		return fmt.Errorf("message is not configured: %w", common.ErrNotFound)
	}
	if _, err := discord.session.ChannelMessageEdit(target.ChannelID, target.MessageID, truncate(text), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("could not edit message %s: %w", target.MessageID, notFound(err))
	}
	return nil
}

func (discord *Discord) SendText(ctx context.Context, channelID string, text string) error {

	if channelID == "" {
		return fmt.Errorf("channel is not configured: %w", common.ErrNotFound)
	}
	if _, err := discord.session.ChannelMessageSend(channelID, truncate(text), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("could not send message to channel %s: %w", channelID, notFound(err))
	}
	return nil
}

// Collect who reacted to a message and with what, in the order users
// are first seen
func (discord *Discord) PollVotes(ctx context.Context, channelID string, messageID string) ([]PollVote, error) {

	message, err := discord.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("could not fetch poll %s: %w", messageID, notFound(err))
	}

	var votes []PollVote
	index := map[string]int{}
	for _, reaction := range message.Reactions {
		if reaction.Emoji == nil {
			continue
		}
		after := ""
		for {
			users, err := discord.session.MessageReactions(channelID, messageID, reaction.Emoji.APIName(), reactionsPageSize, "", after, discordgo.WithContext(ctx))
			if err != nil {
				return nil, fmt.Errorf("could not fetch reactions of poll %s: %w", messageID, notFound(err))
			}
			for _, user := range users {
				i, ok := index[user.ID]
				if !ok {
					i = len(votes)
					index[user.ID] = i
					votes = append(votes, PollVote{Mention: user.Mention()})
				}
				votes[i].Reactions = append(votes[i].Reactions, reaction.Emoji.MessageFormat())
			}
			if len(users) < reactionsPageSize {
				break
			}
			after = users[len(users)-1].ID
		}
	}
	return votes, nil
}

// Id of the last member of a page that carries a user, the page cursor
// when none does
func lastMemberID(page []*discordgo.Member, after string) string {
	for i := len(page) - 1; i >= 0; i-- {
		if page[i] != nil && page[i].User != nil {
			return page[i].User.ID
		}
	}
	return after
}

// Map the answers of Discord for handles that do not exist
func notFound(err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %v", common.ErrNotFound, err)
	}
	return err
}

func truncate(text string) string {
	if utf8.RuneCountInString(text) <= maxMessageLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxMessageLength-1]) + "…"
}
