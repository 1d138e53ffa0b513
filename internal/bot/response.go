package bot

import (
	"github.com/bwmarrin/discordgo"
)

type ResponseString struct {
	string
}
type ResponseEmbed struct {
	discordgo.MessageEmbed
}

type Response interface {
	Send(channelid string, discord *discordgo.Session) error
}

func (response ResponseString) Send(channelid string, discord *discordgo.Session) error {
	_, err := discord.ChannelMessageSend(channelid, truncate(response.string))
	return err
}

func (response ResponseEmbed) Send(channelid string, discord *discordgo.Session) error {
	_, err := discord.ChannelMessageSendEmbed(channelid, &response.MessageEmbed)
	return err
}

func (response ResponseString) String() string {
	return response.string
}
