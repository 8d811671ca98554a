package types

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Stage is the lifecycle stage of a turn. Transitions are strictly
// linear: preprocessing -> generating -> completed | failed.
type Stage string

const (
	StagePreprocessing Stage = "preprocessing"
	StageGenerating    Stage = "generating"
	StageCompleted     Stage = "completed"
	StageFailed        Stage = "failed"
)

// CardPlacement controls where a prompt card's text is inserted.
type CardPlacement string

const (
	PlacementSystem      CardPlacement = "system"
	PlacementAfterSystem CardPlacement = "after_system"
	PlacementUserEnd     CardPlacement = "user_end"
)

// AttachedFile is one file attached to the current turn.
type AttachedFile struct {
	Name    string `json:"name"`
	Path    string `json:"path,omitempty"`
	Content string `json:"content"`
}

// PromptCard is a reusable prompt fragment with a placement rule.
type PromptCard struct {
	Title     string        `json:"title,omitempty"`
	Content   string        `json:"content"`
	Placement CardPlacement `json:"placement"`
	Priority  int           `json:"priority,omitempty"`
}

// ModelOptions are the per-turn generation options.
type ModelOptions struct {
	Model       string   `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// InputZone holds the caller-supplied data for a turn. It is deep-copied
// at context creation and never mutated afterwards.
type InputZone struct {
	ConversationID string
	SystemPrompt   string
	UserInput      string
	History        []ChatMessage
	Files          []AttachedFile
	Cards          []PromptCard
	Model          ModelOptions
}

func (z InputZone) clone() InputZone {
	c := z
	c.History = append([]ChatMessage(nil), z.History...)
	c.Files = append([]AttachedFile(nil), z.Files...)
	c.Cards = append([]PromptCard(nil), z.Cards...)
	return c
}

// ProcessingZone holds the live message sequence. Mutated only by the
// preprocessing orchestrator and its sub-summarizers.
type ProcessingZone struct {
	Messages     MessageList
	Preprocessed bool
}

// OutputZone holds the result of the generation phase. Mutated only by
// the engine.
type OutputZone struct {
	FinalAnswer string
	TokensUsed  int
	Metadata    map[string]any
}

// ContextMeta identifies the turn and tracks its lifecycle stage.
type ContextMeta struct {
	ID        string
	CreatedAt time.Time
	Stage     Stage
}

// AgentContext is the per-turn working state, split into disjoint zones.
// One AgentContext exists per user request; it is created by the message
// builder, threaded through the engine, and discarded afterwards.
type AgentContext struct {
	Input      InputZone
	Processing ProcessingZone
	Output     OutputZone
	Meta       ContextMeta
}

// NewAgentContext creates a turn context from caller input and the built
// message sequence. The input zone is deep-copied so later caller-side
// mutation cannot leak into the turn.
func NewAgentContext(input InputZone, messages MessageList) *AgentContext {
	return &AgentContext{
		Input:      input.clone(),
		Processing: ProcessingZone{Messages: messages},
		Output:     OutputZone{Metadata: make(map[string]any)},
		Meta: ContextMeta{
			ID:        generateContextID(),
			CreatedAt: time.Now(),
			Stage:     StagePreprocessing,
		},
	}
}

func generateContextID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return fmt.Sprintf("turn_%d_%s", time.Now().UnixMilli(), hex.EncodeToString(b))
}
