package agent

import (
	"strings"

	"github.com/mosaxiv/braveagent/session"
)

const helpText = `Commands:
/new   start a new conversation
/help  show this help
exit, quit, bye  leave`

var exitWords = map[string]bool{"exit": true, "quit": true, "bye": true}

// IsExit reports whether the input ends the console session.
func IsExit(text string) bool {
	return exitWords[strings.ToLower(strings.TrimSpace(text))]
}

// HandleCommand runs a slash command against the session. It reports false
// for input that should go to the model.
func HandleCommand(sess *session.Session, text string) (bool, string) {
	return handleSlashCommand(sess, text)
}

func normalizeSlashCommand(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return text
	}
	if i := strings.IndexAny(text, " \t"); i >= 0 {
		text = text[:i]
	}
	return strings.ToLower(text)
}

func handleSlashCommand(sess *session.Session, text string) (bool, string) {
	switch normalizeSlashCommand(text) {
	case "/new":
		if sess != nil {
			sess.Clear()
		}
		return true, "Started a new conversation."
	case "/help":
		return true, helpText
	default:
		return false, ""
	}
}
