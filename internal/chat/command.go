package chat

import "strings"

// Sentinel marks a chat body as a command.
const Sentinel = "/"

// Command is a parsed chat command: a verb plus whitespace-split arguments.
type Command struct {
	Verb string
	Args []string
}

var knownVerbs = map[string]struct{}{
	"summarize": {},
	"status":    {},
	"cite":      {},
	"help":      {},
	"mute":      {},
	"pin":       {},
}

// Moderation verbs require the chat_moderation ability.
var moderationVerbs = map[string]struct{}{
	"mute": {},
	"pin":  {},
}

// IsCommand reports whether body should be classified kind=command.
func IsCommand(body string) bool {
	return strings.HasPrefix(strings.TrimSpace(body), Sentinel)
}

// ParseCommand parses a command body into verb and arguments. ok is false
// when body is not command-shaped at all (no sentinel, or sentinel only).
// Parse problems are never fatal to the enclosing post.
func ParseCommand(body string) (Command, bool) {
	trimmed := strings.TrimSpace(body)
	if !strings.HasPrefix(trimmed, Sentinel) {
		return Command{}, false
	}
	fields := strings.Fields(strings.TrimPrefix(trimmed, Sentinel))
	if len(fields) == 0 {
		return Command{}, false
	}
	return Command{
		Verb: strings.ToLower(fields[0]),
		Args: fields[1:],
	}, true
}

// Known reports whether the verb is part of the command dialect.
func Known(verb string) bool {
	_, ok := knownVerbs[strings.ToLower(verb)]
	return ok
}

// IsModeration reports whether the verb is ability-gated.
func IsModeration(verb string) bool {
	_, ok := moderationVerbs[strings.ToLower(verb)]
	return ok
}

// UnknownVerbEcho is the message-kind reply recorded when a command uses a
// verb outside the dialect.
func UnknownVerbEcho(cmd Command) string {
	return "Unrecognized command /" + cmd.Verb + ". Try /help for the command list."
}

// DeniedVerbEcho is recorded when a moderation command is posted without
// the chat_moderation ability. The command itself is still logged.
func DeniedVerbEcho(cmd Command) string {
	return "/" + cmd.Verb + " requires moderation access. Use Request Access to ask your mentor."
}
