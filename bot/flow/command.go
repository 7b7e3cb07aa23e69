package flow

import "strings"

// Command is a slash command recognised by the conversation.
type Command int

const (
	CommandNone Command = iota
	CommandStart
	CommandHelp
	CommandSkip
	CommandDone
	CommandCancel
	// CommandUnknown is any other slash command.
	CommandUnknown
)

var commandNames = map[string]Command{
	"start":  CommandStart,
	"help":   CommandHelp,
	"skip":   CommandSkip,
	"done":   CommandDone,
	"cancel": CommandCancel,
}

// ParseCommand classifies text. "/Skip@my_bot extra" is CommandSkip; text
// not starting with a slash is CommandNone.
func ParseCommand(text string) Command {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return CommandNone
	}
	word, _, _ := strings.Cut(text[1:], " ")
	word, _, _ = strings.Cut(word, "@")
	if cmd, ok := commandNames[strings.ToLower(word)]; ok {
		return cmd
	}
	return CommandUnknown
}

func (c Command) String() string {
	switch c {
	case CommandNone:
		return "none"
	case CommandUnknown:
		return "unknown"
	}
	for name, cmd := range commandNames {
		if cmd == c {
			return name
		}
	}
	return "invalid"
}
