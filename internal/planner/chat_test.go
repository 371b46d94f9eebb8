package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatter struct {
	reply string
	err   error
	reqs  []llm.ChatRequest
}

func (f *fakeChatter) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ChatResponse{Text: f.reply, Model: "fake"}, nil
}

func TestSendMessage_ImportsReply(t *testing.T) {
	s := newSession(t, twoDayWeek)
	s.ImportFile("brief.txt", []byte("Target: launch"))
	client := &fakeChatter{reply: twoTaskReply}

	msg, err := s.SendMessage(context.Background(), client, "  Create the plan ")

	require.NoError(t, err)
	assert.Equal(t, 2, msg.ImportedEvents)
	assert.Len(t, s.Roadmap(), 2)

	require.Len(t, client.reqs, 1)
	req := client.reqs[0]
	require.Len(t, req.Messages, 1)
	assert.Equal(t, llm.RoleUser, req.Messages[0].Role)
	assert.Equal(t, "Create the plan\n\n[File: brief.txt]\nTarget: launch", req.Messages[0].Content)
	assert.Contains(t, req.SystemPrompt, DefaultRolePrompt)
	assert.Contains(t, req.SystemPrompt, RoadmapContextHeader+"[]")

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, llm.RoleUser, msgs[0].Role)
	assert.Equal(t, llm.RoleAssistant, msgs[1].Role)
	assert.Equal(t, llm.RoleSystem, msgs[2].Role)
}

func TestSendMessage_SendsHistoryWithoutNotices(t *testing.T) {
	s := newSession(t, twoDayWeek)
	client := &fakeChatter{reply: twoTaskReply}
	_, err := s.SendMessage(context.Background(), client, "Create the plan")
	require.NoError(t, err)

	client.reply = "Sure, anything else?"
	_, err = s.SendMessage(context.Background(), client, "Thanks")
	require.NoError(t, err)

	req := client.reqs[1]
	require.Len(t, req.Messages, 3)
	assert.Equal(t, llm.RoleUser, req.Messages[0].Role)
	assert.Equal(t, llm.RoleAssistant, req.Messages[1].Role)
	assert.Equal(t, "Thanks", req.Messages[2].Content)
	assert.Contains(t, req.SystemPrompt, `"task": "A"`)
}

func TestSendMessage_UsesGeneratedPrompt(t *testing.T) {
	s := newSession(t)
	_, err := s.ApplyForm(sampleForm())
	require.NoError(t, err)
	client := &fakeChatter{reply: "ok"}

	_, err = s.SendMessage(context.Background(), client, "Go")

	require.NoError(t, err)
	assert.Contains(t, client.reqs[0].SystemPrompt, "No customers")
}

func TestSendMessage_FailureIsLoggedInChat(t *testing.T) {
	s := newSession(t)
	s.Commit(domain.Roadmap{{ID: "a", Date: "2024-01-01", DurationDays: 1, Task: "A"}})
	client := &fakeChatter{err: errors.New("server responded with 500: boom")}

	msg, err := s.SendMessage(context.Background(), client, "Create the plan")

	require.Error(t, err)
	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, llm.RoleAssistant, msg.Role)
	assert.Equal(t, "Error processing your request. Details: server responded with 500: boom", msg.Content)
	assert.Len(t, s.Roadmap(), 1)
	assert.Len(t, s.Messages(), 2)
}

func TestSendMessage_EmptyReplyGetsPlaceholder(t *testing.T) {
	s := newSession(t)
	client := &fakeChatter{reply: "   "}

	msg, err := s.SendMessage(context.Background(), client, "hello")

	require.NoError(t, err)
	assert.Equal(t, DefaultTexts("en").NoAnswer, msg.Content)
}

func TestSendMessage_NothingToSend(t *testing.T) {
	s := newSession(t)

	_, err := s.SendMessage(context.Background(), &fakeChatter{}, "   ")

	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, s.Messages())
}
