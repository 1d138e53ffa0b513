package bot

import (
	"clubbot/internal/brawlapi"
	"clubbot/internal/common"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	COMMAND_EVAL_POLL = iota
	COMMAND_ACTIVITY  = iota
	COMMAND_HELP      = iota
)

const (
	PARSEID_OK                     = iota
	PARSEID_NO_BOT_PREFIX          = iota
	PARSEID_NO_COMMAND             = iota
	PARSEID_COMMAND_NOT_RECOGNISED = iota
	PARSEID_WRONG_ARGUMENTS        = iota
	PARSEID_NOT_VALID              = iota
)

var errorMessages map[int]string = map[int]string{
	PARSEID_NO_COMMAND:             "No command provided",
	PARSEID_COMMAND_NOT_RECOGNISED: "Command `%s` not recognised",
	PARSEID_WRONG_ARGUMENTS:        "Command has to be in the form: `%s`",
}

// Usage of every command, without the prefix
var usages = map[int]string{
	COMMAND_EVAL_POLL: "eval_poll <channel_id> <message_id>",
	COMMAND_ACTIVITY:  "activity <player_tag>",
	COMMAND_HELP:      "help",
}

type PollArguments struct {
	ChannelID string
	MessageID string
}

type ParseResult struct {
	command      int
	parseid      int
	errorMessage string
	arguments    interface{}
}

func Parse(prefix string, message string) ParseResult {

	wrongArguments := func(command int) ParseResult {
		parseid := PARSEID_WRONG_ARGUMENTS
		return ParseResult{command: command, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], prefix+usages[command])}
	}

	// The message has to start with the bot prefix
	if !strings.HasPrefix(message, prefix) {
		return ParseResult{parseid: PARSEID_NO_BOT_PREFIX}
	}

	// Get the command if valid
	words := strings.Fields(message[len(prefix):])
	if len(words) == 0 {
		parseid := PARSEID_NO_COMMAND
		return ParseResult{parseid: parseid, errorMessage: errorMessages[parseid]}
	}
	commandString := strings.ToLower(words[0])
	words = words[1:]

	// Match the command
	switch commandString {
	case "eval_poll":
		// !eval_poll <channel_id> <message_id>
		command := COMMAND_EVAL_POLL
		if len(words) != 2 {
			return wrongArguments(command)
		}
		for _, id := range words {
			if err := parseSnowflake(id); err != nil {
				return notValid(command, err)
			}
		}
		return ParseResult{command: command, parseid: PARSEID_OK, arguments: PollArguments{ChannelID: words[0], MessageID: words[1]}}
	case "activity":
		// !activity <player_tag>
		command := COMMAND_ACTIVITY
		if len(words) == 0 {
			return wrongArguments(command)
		}
		tag, err := brawlapi.ParseTag(strings.Join(words, ""))
		if err != nil {
			return notValid(command, err)
		}
		return ParseResult{command: command, parseid: PARSEID_OK, arguments: tag}
	case "help":
		// !help
		return ParseResult{command: COMMAND_HELP, parseid: PARSEID_OK}
	default:
		parseid := PARSEID_COMMAND_NOT_RECOGNISED
		return ParseResult{parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], commandString)}
	}
}

func notValid(command int, err error) ParseResult {
	var validation *common.ValidationError
	if errors.As(err, &validation) {
		return ParseResult{command: command, parseid: PARSEID_NOT_VALID, errorMessage: fmt.Sprintf("`%s`: %s", validation.Input, validation.Reason)}
	}
	return ParseResult{command: command, parseid: PARSEID_NOT_VALID, errorMessage: err.Error()}
}

// Discord ids are unsigned 64 bit integers written in decimal
func parseSnowflake(id string) error {
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return &common.ValidationError{Input: id, Reason: "not a Discord id"}
	}
	return nil
}
