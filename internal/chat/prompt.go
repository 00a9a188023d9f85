package chat

import "strings"

const promptPreamble = "You are a kind and empathetic mental health bot, all you need to do is reply to the user's message kindly.\n"

// RenderPrompt deterministically flattens a session's full history into the
// single prompt string the model sees. The model keeps no state of its own,
// so every message goes in, chronological order, ending on a bare "AI:" cue.
func RenderPrompt(msgs []Message) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	for _, m := range msgs {
		if m.Sender == SenderUser {
			b.WriteString("User: ")
		} else {
			b.WriteString("AI: ")
		}
		b.WriteString(m.Text)
		b.WriteByte('\n')
	}
	b.WriteString("AI:")
	return b.String()
}
