package chat

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/medcare-portal/internal/resource/resourcetest"
	"github.com/wolfman30/medcare-portal/pkg/logging"
)

type attempt struct {
	endpoint string
	outcome  string
}

type fakeRecorder struct {
	attempts []attempt
}

func (f *fakeRecorder) ObserveEndpointAttempt(endpoint, outcome string) {
	f.attempts = append(f.attempts, attempt{endpoint, outcome})
}

const sentMessage = `{"code":201,"data":{"_id":"m1","conversationId":"c1","sender":"u1","receiver":"u2","content":"hello"},"msg":"sent"}`

func newTestClient(stub *resourcetest.Stub, endpoints ...string) (*Client, *fakeRecorder) {
	rec := &fakeRecorder{}
	return NewClient(stub, Config{Endpoints: endpoints, Logger: logging.Discard(), Metrics: rec}), rec
}

func paths(calls []resourcetest.Call) []string {
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.Path)
	}
	return out
}

func TestSendMessage_FallsBackAndPins(t *testing.T) {
	stub := resourcetest.New().
		Fail(http.MethodPost, "/a", http.StatusNotFound).
		JSON(http.MethodPost, "/b", sentMessage)
	client, rec := newTestClient(stub, "/a", "/b")
	ctx := context.Background()

	msg, err := client.SendMessage(ctx, SendMessageRequest{ReceiverID: "u2", Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, []string{"/a", "/b"}, paths(stub.Calls()))

	_, err = client.SendMessage(ctx, SendMessageRequest{ConversationID: "c1", Content: "again"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b", "/b"}, paths(stub.Calls()))
	assert.Equal(t, "/b", client.ActiveEndpoint(ctx))

	assert.Equal(t, []attempt{
		{"/a", outcomeNotFound},
		{"/b", outcomeSuccess},
		{"/b", outcomeSuccess},
	}, rec.attempts)
}

func TestFallback_NonNotFoundStopsWalk(t *testing.T) {
	stub := resourcetest.New().
		Fail(http.MethodPost, "/a", http.StatusTooManyRequests).
		JSON(http.MethodPost, "/b", sentMessage)
	client, _ := newTestClient(stub, "/a", "/b")

	_, err := client.SendMessage(context.Background(), SendMessageRequest{Content: "hi"})
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindRateLimited, ce.Kind)
	assert.True(t, ce.Retryable)
	assert.Equal(t, http.StatusTooManyRequests, ce.Status)
	assert.Equal(t, []string{"/a"}, paths(stub.Calls()))
	assert.Equal(t, "/a", client.ActiveEndpoint(context.Background()))
}

func TestFallback_AllNotFound(t *testing.T) {
	stub := resourcetest.New()
	client, _ := newTestClient(stub, "/a", "/b", "/c")

	_, err := client.ListConversations(context.Background(), nil)
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindEndpointNotFound, ce.Kind)
	assert.False(t, ce.Retryable)
	assert.Equal(t, []string{"/a/conversations", "/b/conversations", "/c/conversations"}, paths(stub.Calls()))
}

func TestFallback_PinnedFirstThenRemainingInOrder(t *testing.T) {
	stub := resourcetest.New().
		JSON(http.MethodGet, "/c/conversations", `{"data":[],"pagination":{"total":0,"page":1,"limit":10,"totalPages":0}}`)
	pins := NewMemoryPinStore()
	require.NoError(t, pins.Pin(context.Background(), "/b"))
	client := NewClient(stub, Config{Endpoints: []string{"a", "/b/", "/c"}, PinStore: pins, Logger: logging.Discard()})

	_, err := client.ListConversations(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"/b/conversations", "/a/conversations", "/c/conversations"}, paths(stub.Calls()))

	pinned, err := pins.Pinned(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/c", pinned)
}

func TestGetMessages(t *testing.T) {
	stub := resourcetest.New().JSON(http.MethodGet, "/api/v1/chat/conversations/c1/messages",
		`{"data":[{"_id":"m1","conversationId":"c1","sender":{"_id":"u1","fullName":"Al"},"receiver":"u2","content":"hi"}],"pagination":{"total":1,"page":1,"limit":20,"totalPages":1}}`)
	client, _ := newTestClient(stub)

	page, err := client.GetMessages(context.Background(), "c1", url.Values{"limit": {"20"}})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Al", page.Data[0].Sender.Value.FullName)
	assert.Equal(t, "u2", page.Data[0].Receiver.ID)
	assert.Equal(t, "20", stub.LastCall().Query.Get("limit"))
}

func TestSendMessage_EmptyContentRejectedLocally(t *testing.T) {
	stub := resourcetest.New()
	client, _ := newTestClient(stub)

	_, err := client.SendMessage(context.Background(), SendMessageRequest{Content: "  "})
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindBadRequest, ce.Kind)
	assert.Empty(t, stub.Calls())
}

type failingPins struct{}

func (failingPins) Pinned(context.Context) (string, error) { return "", errors.New("store down") }
func (failingPins) Pin(context.Context, string) error     { return errors.New("store down") }

func TestFallback_PinStoreFailureDoesNotFailCall(t *testing.T) {
	stub := resourcetest.New().JSON(http.MethodPost, "/api/v1/chats", sentMessage)
	client := NewClient(stub, Config{PinStore: failingPins{}, Logger: logging.Discard()})

	msg, err := client.SendMessage(context.Background(), SendMessageRequest{Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)
}

func TestNewClient_DefaultEndpoints(t *testing.T) {
	client, _ := newTestClient(resourcetest.New())
	assert.Equal(t, DefaultEndpoints, client.Endpoints())
	assert.Equal(t, "/api/v1/chat", client.ActiveEndpoint(context.Background()))
}
