package chatsrv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siivi-app/siivi-server/pkg/ai/llm"
	"github.com/siivi-app/siivi-server/pkg/chat"
	"github.com/siivi-app/siivi-server/pkg/donation"
	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/kernel"
)

// ============================================================================
// Fakes
// ============================================================================

type fakeConvRepo struct {
	convs map[kernel.ConversationID]chat.Conversation
}

func newFakeConvRepo() *fakeConvRepo {
	return &fakeConvRepo{convs: make(map[kernel.ConversationID]chat.Conversation)}
}

func (f *fakeConvRepo) Insert(ctx context.Context, c chat.Conversation) error {
	f.convs[c.ID] = c
	return nil
}

func (f *fakeConvRepo) FindByOwner(ctx context.Context, owner kernel.OwnerID) ([]chat.Conversation, error) {
	var out []chat.Conversation
	for _, c := range f.convs {
		if c.OwnerID == owner {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeConvRepo) FindByID(ctx context.Context, id kernel.ConversationID, owner kernel.OwnerID) (*chat.Conversation, error) {
	c, ok := f.convs[id]
	if !ok || c.OwnerID != owner {
		return nil, chat.ErrConversationNotFound()
	}
	return &c, nil
}

func (f *fakeConvRepo) Update(ctx context.Context, c chat.Conversation) error {
	f.convs[c.ID] = c
	return nil
}

func (f *fakeConvRepo) Delete(ctx context.Context, id kernel.ConversationID, owner kernel.OwnerID) error {
	c, ok := f.convs[id]
	if !ok || c.OwnerID != owner {
		return chat.ErrConversationNotFound()
	}
	delete(f.convs, id)
	return nil
}

type fakeMsgRepo struct {
	msgs []chat.Message
}

func (f *fakeMsgRepo) Insert(ctx context.Context, m chat.Message) error {
	f.msgs = append(f.msgs, m)
	return nil
}

func (f *fakeMsgRepo) FindByConversation(ctx context.Context, id kernel.ConversationID) ([]chat.Message, error) {
	var out []chat.Message
	for _, m := range f.msgs {
		if m.ConversationID == id {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeQuota struct {
	limitReached bool
	increments   int
}

func (f *fakeQuota) IsLimitReached(ctx context.Context, deviceID kernel.DeviceID) (bool, error) {
	return f.limitReached, nil
}

func (f *fakeQuota) IncrementMessageCount(ctx context.Context, deviceID kernel.DeviceID) error {
	f.increments++
	return nil
}

type fakeCounter struct {
	increments int
}

func (f *fakeCounter) Increment(ctx context.Context, id kernel.DeviceID) (*donation.CounterResponse, error) {
	f.increments++
	return &donation.CounterResponse{Count: f.increments}, nil
}

// fakeModel records the last prompt it saw and answers with a canned reply.
type fakeModel struct {
	lastMessages []llm.Message
	reply        string
	chatErr      error
	image        llm.Image
	imageErr     error
}

func (f *fakeModel) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (llm.Response, error) {
	f.lastMessages = messages
	if f.chatErr != nil {
		return llm.Response{}, f.chatErr
	}
	return llm.Response{Message: llm.NewAssistantMessage(f.reply)}, nil
}

func (f *fakeModel) GenerateImage(ctx context.Context, prompt string, opts ...llm.Option) (llm.Image, error) {
	if f.imageErr != nil {
		return llm.Image{}, f.imageErr
	}
	return f.image, nil
}

type memoryFiles struct {
	written map[string][]byte
}

func newMemoryFiles() *memoryFiles {
	return &memoryFiles{written: make(map[string][]byte)}
}

func (m *memoryFiles) Write(ctx context.Context, path string, data []byte, contentType string) error {
	m.written[path] = data
	return nil
}

func (m *memoryFiles) Read(ctx context.Context, path string) ([]byte, error) {
	data, ok := m.written[path]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func (m *memoryFiles) Exists(ctx context.Context, path string) (bool, error) {
	_, ok := m.written[path]
	return ok, nil
}

func (m *memoryFiles) Delete(ctx context.Context, path string) error {
	delete(m.written, path)
	return nil
}

type testHarness struct {
	svc     *ChatService
	convs   *fakeConvRepo
	msgs    *fakeMsgRepo
	model   *fakeModel
	quota   *fakeQuota
	counter *fakeCounter
	files   *memoryFiles
}

func newHarness() *testHarness {
	h := &testHarness{
		convs:   newFakeConvRepo(),
		msgs:    &fakeMsgRepo{},
		model:   &fakeModel{reply: "Hi! How can I help?"},
		quota:   &fakeQuota{},
		counter: &fakeCounter{},
		files:   newMemoryFiles(),
	}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	h.svc = NewChatServiceWithNow(
		h.convs, h.msgs, llm.NewClient(h.model), h.quota, h.counter, h.files,
		Config{ChatModel: "gpt-4o-mini", Temperature: 0.7},
		func() time.Time { return now },
	)
	return h
}

func guestCaller() chat.Caller {
	return chat.Caller{
		Owner:    kernel.NewOwnerID("session-1"),
		DeviceID: kernel.NewDeviceID("dev-1"),
		Guest:    true,
	}
}

func userCaller() chat.Caller {
	return chat.Caller{
		Owner:    kernel.NewOwnerID("user-1"),
		DeviceID: kernel.NewDeviceID("dev-1"),
	}
}

// ============================================================================
// Send pipeline
// ============================================================================

func TestSendOpensConversationAndStoresBothTurns(t *testing.T) {
	h := newHarness()

	resp, err := h.svc.Send(context.Background(), userCaller(), chat.SendMessageRequest{
		Content: "Hello Siivi",
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello Siivi", resp.Conversation.Title)
	assert.Equal(t, chat.RoleUser, resp.UserMessage.Role)
	assert.Equal(t, "Hello Siivi", resp.UserMessage.Content)
	assert.Equal(t, chat.RoleAssistant, resp.AssistantMessage.Role)
	assert.Equal(t, "Hi! How can I help?", resp.AssistantMessage.Content)

	require.Len(t, h.msgs.msgs, 2)
	assert.Equal(t, resp.Conversation.ID, h.msgs.msgs[0].ConversationID)
}

func TestSendContinuesExistingConversationWithHistory(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	caller := userCaller()

	first, err := h.svc.Send(ctx, caller, chat.SendMessageRequest{Content: "First question"})
	require.NoError(t, err)

	convID := first.Conversation.ID.String()
	_, err = h.svc.Send(ctx, caller, chat.SendMessageRequest{
		ConversationID: &convID,
		Content:        "Follow-up",
	})
	require.NoError(t, err)

	// System prompt + two prior turns + the new user turn.
	require.Len(t, h.model.lastMessages, 4)
	assert.Equal(t, llm.RoleSystem, h.model.lastMessages[0].Role)
	assert.Equal(t, "First question", h.model.lastMessages[1].Content)
	assert.Equal(t, "Hi! How can I help?", h.model.lastMessages[2].Content)
	assert.Equal(t, "Follow-up", h.model.lastMessages[3].Content)
}

func TestSendRejectsEmptyContent(t *testing.T) {
	h := newHarness()

	_, err := h.svc.Send(context.Background(), userCaller(), chat.SendMessageRequest{})
	require.Error(t, err)
	assert.True(t, errx.IsCode(err, chat.CodeEmptyMessage))
	assert.Empty(t, h.msgs.msgs)
}

func TestSendRejectsUnknownPersonality(t *testing.T) {
	h := newHarness()

	_, err := h.svc.Send(context.Background(), userCaller(), chat.SendMessageRequest{
		Content:     "hi",
		Personality: chat.Personality("sarcastic"),
	})
	require.Error(t, err)
	assert.True(t, errx.IsCode(err, chat.CodeInvalidPersonality))
}

func TestGuestBlockedAtQuotaLeavesNoTrace(t *testing.T) {
	h := newHarness()
	h.quota.limitReached = true

	_, err := h.svc.Send(context.Background(), guestCaller(), chat.SendMessageRequest{
		Content: "one more message",
	})
	require.Error(t, err)

	assert.Empty(t, h.msgs.msgs, "no message rows")
	assert.Empty(t, h.convs.convs, "no conversation rows")
	assert.Equal(t, 0, h.counter.increments, "no counter advance")
	assert.Equal(t, 0, h.quota.increments)
}

func TestSlashCommandRewriteOnlyReachesModel(t *testing.T) {
	h := newHarness()

	resp, err := h.svc.Send(context.Background(), userCaller(), chat.SendMessageRequest{
		Content: "/summarize my week",
	})
	require.NoError(t, err)

	// Stored content is what the user typed.
	assert.Equal(t, "/summarize my week", resp.UserMessage.Content)

	// The model saw the rewritten instruction.
	last := h.model.lastMessages[len(h.model.lastMessages)-1]
	assert.Equal(t, "Please provide a concise summary of: my week", last.Content)
}

func TestGuestSendAdvancesQuotaAndCounter(t *testing.T) {
	h := newHarness()

	_, err := h.svc.Send(context.Background(), guestCaller(), chat.SendMessageRequest{Content: "hi"})
	require.NoError(t, err)

	assert.Equal(t, 1, h.quota.increments)
	assert.Equal(t, 1, h.counter.increments)
}

func TestRegisteredUserSkipsQuotaButCounts(t *testing.T) {
	h := newHarness()
	h.quota.limitReached = true // would block a guest

	_, err := h.svc.Send(context.Background(), userCaller(), chat.SendMessageRequest{Content: "hi"})
	require.NoError(t, err)

	assert.Equal(t, 0, h.quota.increments)
	assert.Equal(t, 1, h.counter.increments)
}

func TestRateLimitAndQuotaErrorsMapToGatewayCodes(t *testing.T) {
	h := newHarness()
	h.model.chatErr = llm.ErrRateLimited

	_, err := h.svc.Send(context.Background(), userCaller(), chat.SendMessageRequest{Content: "hi"})
	require.Error(t, err)
	assert.True(t, errx.IsCode(err, chat.CodeRateLimited))

	h.model.chatErr = llm.ErrQuotaExhausted
	_, err = h.svc.Send(context.Background(), userCaller(), chat.SendMessageRequest{Content: "hi"})
	require.Error(t, err)
	assert.True(t, errx.IsCode(err, chat.CodeQuotaExhausted))

	h.model.chatErr = errors.New("connection reset")
	_, err = h.svc.Send(context.Background(), userCaller(), chat.SendMessageRequest{Content: "hi"})
	require.Error(t, err)
	assert.True(t, errx.IsCode(err, chat.CodeCompletionFailed))
}

func TestImageModeStoresBlobAndPath(t *testing.T) {
	h := newHarness()
	h.model.image = llm.Image{Data: []byte("png-bytes")}

	resp, err := h.svc.Send(context.Background(), userCaller(), chat.SendMessageRequest{
		Content:   "a red fox",
		ImageMode: true,
	})
	require.NoError(t, err)

	require.NotNil(t, resp.AssistantMessage.ImagePath)
	stored, ok := h.files.written[*resp.AssistantMessage.ImagePath]
	require.True(t, ok, "blob written under the referenced path")
	assert.Equal(t, []byte("png-bytes"), stored)
}

func TestImageModeFallsBackToProviderURL(t *testing.T) {
	h := newHarness()
	h.model.image = llm.Image{URL: "https://cdn.example.com/img.png"}

	resp, err := h.svc.Send(context.Background(), userCaller(), chat.SendMessageRequest{
		Content:   "a red fox",
		ImageMode: true,
	})
	require.NoError(t, err)

	require.NotNil(t, resp.AssistantMessage.ImagePath)
	assert.Equal(t, "https://cdn.example.com/img.png", *resp.AssistantMessage.ImagePath)
	assert.Empty(t, h.files.written)
}

func TestImageModeWithoutPayloadFails(t *testing.T) {
	h := newHarness()
	h.model.image = llm.Image{}

	_, err := h.svc.Send(context.Background(), userCaller(), chat.SendMessageRequest{
		Content:   "a red fox",
		ImageMode: true,
	})
	require.Error(t, err)
	assert.True(t, errx.IsCode(err, chat.CodeImageFailed))
}

// ============================================================================
// Conversation management
// ============================================================================

func TestGetConversationIsOwnerScoped(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	resp, err := h.svc.Send(ctx, userCaller(), chat.SendMessageRequest{Content: "mine"})
	require.NoError(t, err)

	_, err = h.svc.GetConversation(ctx, kernel.NewOwnerID("someone-else"), resp.Conversation.ID)
	require.Error(t, err)
	assert.True(t, errx.IsCode(err, chat.CodeConversationNotFound))
}

func TestRenameConversation(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	caller := userCaller()

	resp, err := h.svc.Send(ctx, caller, chat.SendMessageRequest{Content: "original title"})
	require.NoError(t, err)

	renamed, err := h.svc.RenameConversation(ctx, caller.Owner, resp.Conversation.ID, "Trip planning")
	require.NoError(t, err)
	assert.Equal(t, "Trip planning", renamed.Title)

	_, err = h.svc.RenameConversation(ctx, caller.Owner, resp.Conversation.ID, "   ")
	require.Error(t, err)

	_, err = h.svc.RenameConversation(ctx, kernel.NewOwnerID("someone-else"), resp.Conversation.ID, "hijack")
	require.Error(t, err)
}

func TestDeleteConversation(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	caller := userCaller()

	resp, err := h.svc.Send(ctx, caller, chat.SendMessageRequest{Content: "to delete"})
	require.NoError(t, err)

	require.NoError(t, h.svc.DeleteConversation(ctx, caller.Owner, resp.Conversation.ID))

	list, err := h.svc.ListConversations(ctx, caller.Owner)
	require.NoError(t, err)
	assert.Equal(t, 0, list.Total)
}
