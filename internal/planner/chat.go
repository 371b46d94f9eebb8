package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/llm"
)

// Chatter is the part of llm.LLMClient a session needs.
type Chatter interface {
	Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)
}

// SendMessage sends text, with every uploaded file appended as context, to
// the AI along with the earlier conversation, the system prompt and the
// current roadmap. The reply goes through ProcessAIResponse.
//
// A failed request is logged in the chat as an assistant error message,
// which is returned together with the error.
func (s *Session) SendMessage(ctx context.Context, client Chatter, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" && len(s.files) == 0 {
		return Message{}, ErrEmptyMessage
	}

	content := strings.TrimSpace(text + "\n\n" + s.fileContext())
	prior := s.conversation()
	s.appendMessage(llm.RoleUser, content)

	roadmapContext, err := s.RoadmapContext()
	if err != nil {
		return s.requestFailed(err)
	}

	resp, err := client.Chat(ctx, llm.ChatRequest{
		SystemPrompt: s.systemPrompt(roadmapContext),
		Messages:     append(prior, llm.Message{Role: llm.RoleUser, Content: content}),
	})
	if err != nil {
		return s.requestFailed(err)
	}

	answer := domain.CoalesceStr(strings.TrimSpace(resp.Text), s.texts.NoAnswer)
	msg, _ := s.ProcessAIResponse(answer)
	return msg, nil
}

func (s *Session) requestFailed(err error) (Message, error) {
	msg := s.appendMessage(llm.RoleAssistant, s.texts.RequestError+err.Error())
	return msg, fmt.Errorf("sending message: %w", err)
}

// fileContext renders uploads as "[File: name]" blocks separated by rules.
func (s *Session) fileContext() string {
	blocks := make([]string, len(s.files))
	for i, f := range s.files {
		blocks[i] = fmt.Sprintf("[%s: %s]\n%s", s.texts.FileHeader, f.Name, f.Content)
	}
	return strings.Join(blocks, "\n\n---\n\n")
}

// conversation is the chat so far as the model sees it. System notices are
// for the user and are left out.
func (s *Session) conversation() []llm.Message {
	out := make([]llm.Message, 0, len(s.messages))
	for _, m := range s.messages {
		if m.Role == llm.RoleSystem {
			continue
		}
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

func (s *Session) systemPrompt(roadmapContext string) string {
	prompt := domain.CoalesceStr(s.prompt, s.template.RolePrompt+"\n\n"+OutputInstructions(s.settings.Language))
	return prompt + "\n\n" + roadmapContext
}
