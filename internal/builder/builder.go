// Package builder assembles the initial tagged message sequence for a
// turn from raw caller input, applying the placement and priority rules.
package builder

import (
	"sort"
	"strings"

	"github.com/inkwell-labs/inkwell-core/internal/config"
	"github.com/inkwell-labs/inkwell-core/internal/filemark"
	"github.com/inkwell-labs/inkwell-core/internal/types"
)

// Builder builds message sequences under one pipeline configuration.
type Builder struct {
	cfg config.PipelineConfig
}

func New(cfg config.PipelineConfig) *Builder {
	return &Builder{cfg: cfg}
}

// Result is the built sequence plus the raw user text before any file
// content was appended to it.
type Result struct {
	Messages     types.MessageList
	RawUserInput string
}

// candidate is an after_system insertion item awaiting priority sort.
type candidate struct {
	msg      *types.Message
	priority int
	seq      int
}

// Build assembles the tagged message sequence:
//
//  1. system prompt (omitted when empty)
//  2. after_system prompt cards and file content, by descending priority
//  3. conversation history as context messages (most-recent-N)
//  4. system-placed cards folded into the system message
//  5. the final user_input message (append-mode files, user_end cards)
func (b *Builder) Build(in types.InputZone) Result {
	var msgs types.MessageList

	var systemMsg *types.Message
	if sys := strings.TrimSpace(in.SystemPrompt); sys != "" {
		systemMsg = &types.Message{
			Role:    types.RoleSystem,
			Content: sys,
			Meta:    types.Meta{Type: types.TypeSystemPrompt},
		}
		msgs = append(msgs, systemMsg)
	}

	if b.cfg.FileContentPlacement == config.PlacementAfterSystem {
		msgs = append(msgs, b.afterSystemMessages(in)...)
	}

	msgs = append(msgs, b.historyMessages(in.History)...)

	// System-placed cards extend the system message, synthesizing one
	// if the configured system prompt was empty.
	for _, card := range in.Cards {
		if card.Placement != types.PlacementSystem {
			continue
		}
		if systemMsg == nil {
			systemMsg = &types.Message{
				Role: types.RoleSystem,
				Meta: types.Meta{Type: types.TypeSystemPrompt},
			}
			msgs = append(types.MessageList{systemMsg}, msgs...)
			systemMsg.Content = card.Content
			continue
		}
		systemMsg.Content += "\n\n" + card.Content
	}

	msgs = append(msgs, b.userInputMessage(in))

	return Result{Messages: msgs, RawUserInput: in.UserInput}
}

func (b *Builder) afterSystemMessages(in types.InputZone) types.MessageList {
	var candidates []candidate
	seq := 0

	for _, card := range in.Cards {
		if card.Placement != types.PlacementAfterSystem {
			continue
		}
		priority := card.Priority
		if priority == 0 {
			priority = b.cfg.CardPriority
		}
		candidates = append(candidates, candidate{
			msg: &types.Message{
				Role:    types.RoleUser,
				Content: card.Content,
				Meta:    types.Meta{Type: types.TypePromptCard, Priority: priority, Title: card.Title},
			},
			priority: priority,
			seq:      seq,
		})
		seq++
	}

	if len(in.Files) > 0 {
		if b.cfg.FileContentMode == config.FileModeSeparate {
			for i, f := range in.Files {
				candidates = append(candidates, candidate{
					msg: &types.Message{
						Role:    types.RoleUser,
						Content: filemark.Encode(f.Name, f.Path, f.Content),
						Meta: types.Meta{
							Type:            types.TypeFile,
							NeedsProcessing: true,
							Priority:        b.cfg.FileContentPriority,
							Title:           f.Name,
							FileIndex:       i,
						},
					},
					priority: b.cfg.FileContentPriority,
					seq:      seq,
				})
				seq++
			}
		} else {
			candidates = append(candidates, candidate{
				msg: &types.Message{
					Role:    types.RoleUser,
					Content: joinFiles(in.Files),
					Meta: types.Meta{
						Type:            types.TypeFile,
						NeedsProcessing: true,
						Priority:        b.cfg.FileContentPriority,
					},
				},
				priority: b.cfg.FileContentPriority,
				seq:      seq,
			})
			seq++
		}
	}

	// Descending priority; insertion order breaks ties.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].priority != candidates[j].priority {
			return candidates[i].priority > candidates[j].priority
		}
		return candidates[i].seq < candidates[j].seq
	})

	out := make(types.MessageList, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.msg)
	}
	return out
}

func (b *Builder) historyMessages(history []types.ChatMessage) types.MessageList {
	if b.cfg.HistoryLimit > 0 && len(history) > b.cfg.HistoryLimit {
		history = history[len(history)-b.cfg.HistoryLimit:]
	}

	out := make(types.MessageList, 0, len(history))
	for _, h := range history {
		role := types.Role(h.Role)
		if role != types.RoleAssistant && role != types.RoleSystem {
			role = types.RoleUser
		}
		out = append(out, &types.Message{
			Role:    role,
			Content: h.Content,
			Meta: types.Meta{
				Type:            types.TypeContext,
				NeedsProcessing: true,
				CanMerge:        true,
			},
		})
	}
	return out
}

func (b *Builder) userInputMessage(in types.InputZone) *types.Message {
	content := in.UserInput

	if b.cfg.FileContentPlacement != config.PlacementAfterSystem && len(in.Files) > 0 {
		content += "\n\n" + joinFiles(in.Files)
	}

	for _, card := range in.Cards {
		if card.Placement == types.PlacementUserEnd {
			content += "\n\n" + card.Content
		}
	}

	return &types.Message{
		Role:    types.RoleUser,
		Content: content,
		Meta:    types.Meta{Type: types.TypeUserInput},
	}
}

func joinFiles(files []types.AttachedFile) string {
	parts := make([]string, 0, len(files))
	for _, f := range files {
		parts = append(parts, filemark.Encode(f.Name, f.Path, f.Content))
	}
	return strings.Join(parts, filemark.MergeSeparator)
}
