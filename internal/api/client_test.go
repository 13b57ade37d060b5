package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"pinned/internal/api"
	"pinned/internal/apitest"
	"pinned/internal/models"
)

func newClient(t *testing.T) (*api.Client, *apitest.Server) {
	t.Helper()
	srv := apitest.New()
	t.Cleanup(srv.Close)
	return api.New(srv.URL), srv
}

func TestListChats(t *testing.T) {
	c, srv := newClient(t)
	srv.AddChat("a", "Foo", "llama3-8b-8192")

	chats, err := c.ListChats(context.Background())
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, "a", chats[0].ID)
	assert.Equal(t, "Foo", chats[0].Title)
	assert.Equal(t, "llama3-8b-8192", chats[0].Model)
}

func TestListChatsEmptyIsNotNil(t *testing.T) {
	c, _ := newClient(t)
	chats, err := c.ListChats(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, chats)
	assert.Empty(t, chats)
}

func TestGetChat(t *testing.T) {
	c, srv := newClient(t)
	srv.AddChat("a", "Foo", "llama3-8b-8192",
		models.Message{Role: models.RoleUser, Content: "hello"},
		models.Message{Role: models.RoleAssistant, Content: "hi"},
	)

	got, err := c.GetChat(context.Background(), "a")
	require.NoError(t, err)
	want := []models.Message{
		{Role: models.RoleUser, Content: "hello"},
		{Role: models.RoleAssistant, Content: "hi"},
	}
	if diff := cmp.Diff(want, got.Messages); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Foo", got.Title)
}

func TestGetChatNotFoundIsServerError(t *testing.T) {
	c, _ := newClient(t)
	_, err := c.GetChat(context.Background(), "missing")
	var srvErr *api.ServerError
	require.ErrorAs(t, err, &srvErr)
	assert.Equal(t, http.StatusNotFound, srvErr.StatusCode)
	assert.Equal(t, "Chat not found", srvErr.Detail)
	assert.Equal(t, "server", api.Kind(err))
}

func TestSendNewChatThenContinue(t *testing.T) {
	c, srv := newClient(t)
	srv.SetNextID(func() string { return "x" })
	srv.SetReply(func(string) string { return "hi" })

	resp, err := c.Send(context.Background(), api.SendRequest{Message: "hello", Model: "llama3-8b"})
	require.NoError(t, err)
	assert.Equal(t, "x", resp.ChatID)
	assert.Equal(t, "hi", resp.Response)

	id := resp.ChatID
	_, err = c.Send(context.Background(), api.SendRequest{Message: "again", ChatID: &id})
	require.NoError(t, err)

	d, ok := srv.Chat("x")
	require.True(t, ok)
	assert.Len(t, d.Messages, 4)
	assert.Equal(t, "llama3-8b-8192", d.Model)
}

func TestRenameEncodesTitle(t *testing.T) {
	c, srv := newClient(t)
	srv.AddChat("x", "Old", "")

	require.NoError(t, c.RenameChat(context.Background(), "x", "Bar & baz?"))
	d, _ := srv.Chat("x")
	assert.Equal(t, "Bar & baz?", d.Title)
}

func TestDeleteChat(t *testing.T) {
	c, srv := newClient(t)
	srv.AddChat("x", "Old", "")

	require.NoError(t, c.DeleteChat(context.Background(), "x"))
	_, ok := srv.Chat("x")
	assert.False(t, ok)
	assert.Equal(t, 1, srv.Calls(apitest.RouteDelete))
}

func TestListModelsAndHealth(t *testing.T) {
	c, _ := newClient(t)
	opts, err := c.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, opts, 3)
	assert.Equal(t, "llama3-70b", opts[0].Alias)

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		kind    string
	}{
		{
			name: "server error with detail",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"detail":"boom"}`))
			},
			kind: "server",
		},
		{
			name: "server error without body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			kind: "server",
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`[{"id":`))
			},
			kind: "parse",
		},
		{
			name: "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			kind: "parse",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			_, err := api.New(srv.URL).ListChats(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.kind, api.Kind(err))
		})
	}
}

func TestServerErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"Failed to get response from AI model"}`))
	}))
	defer srv.Close()

	_, err := api.New(srv.URL).Send(context.Background(), api.SendRequest{Message: "hi"})
	var srvErr *api.ServerError
	require.ErrorAs(t, err, &srvErr)
	assert.Equal(t, "Failed to get response from AI model", srvErr.Detail)
	assert.Contains(t, err.Error(), "send message")
}

func TestSendWithoutChatIDIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":"hi"}`))
	}))
	defer srv.Close()

	_, err := api.New(srv.URL).Send(context.Background(), api.SendRequest{Message: "hi"})
	var parseErr *api.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := api.New(url).ListChats(context.Background())
	var netErr *api.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "network", api.Kind(err))
	assert.False(t, api.IsCanceled(err))
}

func TestCanceledContext(t *testing.T) {
	c, _ := newClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListChats(ctx)
	require.Error(t, err)
	assert.True(t, api.IsCanceled(err))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRequestIDHeaderIsLogged(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(api.RequestIDHeader)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	c := api.New(srv.URL, api.WithLogger(zap.New(core)))
	_, err := c.ListChats(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, seen)
	entries := logs.FilterMessage("request done").All()
	require.Len(t, entries, 1)
	assert.Equal(t, seen, entries[0].ContextMap()["request_id"])
}

func TestNewTrimsBaseURL(t *testing.T) {
	assert.Equal(t, "http://x", api.New("http://x/").BaseURL())
	assert.Equal(t, api.DefaultBaseURL, api.New("").BaseURL())
}
