package capability

import (
	"strings"

	"github.com/skilltree-core-poc/server/internal/workflow/model"
)

// buildConversationContext renders the most recent transcript turns
// into the tagged context block the extraction prompt expects, with
// the current message highlighted separately.
func buildConversationContext(turns []model.ChatTurn, maxTurns int, current string) string {
	recent := trimTail(turns, maxTurns)

	var b strings.Builder
	b.WriteString("<conversation_context>\n")
	for _, t := range recent {
		if t.Content == "" {
			continue
		}
		switch t.Role {
		case model.RoleUser:
			b.WriteString("UserMessage(" + t.Content + ")\n")
		case model.RoleAssistant:
			b.WriteString("AssistantMessage(" + t.Content + ")\n")
		}
	}
	b.WriteString("</conversation_context>\n")
	b.WriteString("<current_message_to_analyze>\n")
	b.WriteString("UserMessage(" + current + ")\n")
	b.WriteString("</current_message_to_analyze>")
	return b.String()
}

func trimTail(turns []model.ChatTurn, maxTurns int) []model.ChatTurn {
	if maxTurns <= 0 || len(turns) <= maxTurns {
		return turns
	}
	return turns[len(turns)-maxTurns:]
}
