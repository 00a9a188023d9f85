package chat

import "testing"

func TestRenderPrompt_FullHistory(t *testing.T) {
	msgs := []Message{
		{Sender: SenderUser, Text: "hi"},
		{Sender: SenderBot, Text: "hello"},
		{Sender: SenderUser, Text: "I feel sad"},
	}

	got := RenderPrompt(msgs)
	want := promptPreamble + "User: hi\nAI: hello\nUser: I feel sad\n" + "AI:"
	if got != want {
		t.Fatalf("prompt mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestRenderPrompt_EmptyHistory(t *testing.T) {
	got := RenderPrompt(nil)
	want := promptPreamble + "AI:"
	if got != want {
		t.Fatalf("prompt mismatch: got %q want %q", got, want)
	}
}

func TestRenderPrompt_Deterministic(t *testing.T) {
	msgs := []Message{
		{Sender: SenderUser, Text: "good morning"},
		{Sender: SenderBot, Text: "good morning to you"},
	}
	if RenderPrompt(msgs) != RenderPrompt(msgs) {
		t.Fatalf("expected identical prompts for identical history")
	}
}
