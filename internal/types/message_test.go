package types

import (
	"strings"
	"testing"
)

func TestMessageType_IsValid(t *testing.T) {
	valid := []MessageType{
		TypeSystemPrompt, TypeContext, TypeContextSummary,
		TypePromptCard, TypeFile, TypeFileSummary, TypeUserInput,
	}
	for _, mt := range valid {
		if !mt.IsValid() {
			t.Errorf("expected %q to be valid", mt)
		}
	}
	for _, mt := range []MessageType{"", "file_digest", "tool"} {
		if mt.IsValid() {
			t.Errorf("expected %q to be invalid", mt)
		}
	}
}

func TestDeriveMessageID_Stable(t *testing.T) {
	m := &Message{Role: RoleUser, Content: "hello world"}
	a := DeriveMessageID(3, m)
	b := DeriveMessageID(3, m)
	if a != b {
		t.Errorf("id not stable: %q vs %q", a, b)
	}
}

func TestDeriveMessageID_ChangesWithContent(t *testing.T) {
	a := DeriveMessageID(0, &Message{Role: RoleUser, Content: "one"})
	b := DeriveMessageID(0, &Message{Role: RoleUser, Content: "two"})
	if a == b {
		t.Error("different content should produce different ids")
	}

	c := DeriveMessageID(0, &Message{Role: RoleUser, Content: "one"})
	d := DeriveMessageID(1, &Message{Role: RoleUser, Content: "one"})
	if c == d {
		t.Error("different index should produce different ids")
	}
}

func TestDeriveMessageID_LongContent(t *testing.T) {
	long := strings.Repeat("x", 500)
	a := DeriveMessageID(0, &Message{Role: RoleAssistant, Content: long})
	b := DeriveMessageID(0, &Message{Role: RoleAssistant, Content: long + "y"})
	// Same 50-char prefix, different length: length keeps them distinct.
	if a == b {
		t.Error("length suffix should distinguish same-prefix contents")
	}
}

func TestEnsureIDs_DoesNotOverwrite(t *testing.T) {
	l := MessageList{
		{Role: RoleUser, Content: "a", Meta: Meta{MessageID: "fixed"}},
		{Role: RoleUser, Content: "b"},
	}
	l.EnsureIDs()
	if l[0].Meta.MessageID != "fixed" {
		t.Errorf("existing id overwritten: %q", l[0].Meta.MessageID)
	}
	if l[1].Meta.MessageID == "" {
		t.Error("missing id not assigned")
	}
}

func TestUnprocessed(t *testing.T) {
	l := MessageList{
		{Meta: Meta{Type: TypeFile, NeedsProcessing: true}},
		{Meta: Meta{Type: TypeFile, NeedsProcessing: true, Processed: true}},
		{Meta: Meta{Type: TypeContext, NeedsProcessing: true}},
		{Meta: Meta{Type: TypeUserInput}},
	}
	files := l.Unprocessed(TypeFile)
	if len(files) != 1 || files[0] != l[0] {
		t.Fatalf("expected exactly the first file message, got %d", len(files))
	}
	if got := len(l.Unprocessed(TypeContext)); got != 1 {
		t.Errorf("expected 1 context message, got %d", got)
	}
}

func TestReplaceSpan(t *testing.T) {
	mk := func(c string) *Message { return &Message{Content: c} }

	l := MessageList{mk("a"), mk("b"), mk("c"), mk("d")}
	if err := l.ReplaceSpan(1, 2, mk("S")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"a", "S", "d"}
	if len(l) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(l))
	}
	for i, w := range want {
		if l[i].Content != w {
			t.Errorf("position %d: expected %q, got %q", i, w, l[i].Content)
		}
	}
}

func TestReplaceSpan_OutOfRange(t *testing.T) {
	l := MessageList{{Content: "a"}}
	if err := l.ReplaceSpan(0, 2); err == nil {
		t.Error("expected error for span past end")
	}
	if err := l.ReplaceSpan(-1, 1); err == nil {
		t.Error("expected error for negative start")
	}
}

func TestStrip(t *testing.T) {
	l := MessageList{
		{Role: RoleSystem, Content: "sys", Meta: Meta{Type: TypeSystemPrompt}},
		{Role: RoleUser, Content: "hi", Meta: Meta{Type: TypeUserInput, MessageID: "x"}},
	}
	wire := l.Strip()
	if len(wire) != 2 {
		t.Fatalf("expected 2 wire messages, got %d", len(wire))
	}
	if wire[0].Role != "system" || wire[0].Content != "sys" {
		t.Errorf("unexpected first wire message: %+v", wire[0])
	}
	if wire[1].Role != "user" || wire[1].Content != "hi" {
		t.Errorf("unexpected second wire message: %+v", wire[1])
	}
}
