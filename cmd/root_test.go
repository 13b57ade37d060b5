package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pinned/internal/apitest"
	"pinned/internal/db"
	"pinned/internal/models"
	"pinned/internal/session"
)

type cli struct {
	t   *testing.T
	srv *apitest.Server
	dir string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	srv := apitest.New()
	t.Cleanup(srv.Close)
	dir := t.TempDir()
	t.Setenv("PINNED_LOG_FILE", filepath.Join(dir, "pinned.log"))
	t.Setenv("PINNED_DB", filepath.Join(dir, "pinned.db"))
	t.Setenv("PINNED_API_URL", "")
	t.Setenv("PINNED_MODEL", "")
	return &cli{t: t, srv: srv, dir: dir}
}

// run executes the root command with a fresh config file and the fake server's URL
func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	cfgFile, apiURLFlag, chatFlag, profileFlag, verbose = "", "", "", "", false
	exportFormat, exportOutput, exportMetadata = "md", "", true
	configInit = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	full := append([]string{"--config", filepath.Join(c.dir, "config.toml"), "--api-url", c.srv.URL}, args...)
	rootCmd.SetArgs(full)
	err := rootCmd.Execute()
	return out.String(), err
}

func seeded(t *testing.T) *cli {
	c := newCLI(t)
	c.srv.AddChat("a", "Foo", "llama3-8b-8192",
		models.Message{Role: models.RoleUser, Content: "hi"},
		models.Message{Role: models.RoleAssistant, Content: "hello there"},
	)
	return c
}

func TestVerboseFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
	assert.Equal(t, "v", flag.Shorthand)
}

func TestChats(t *testing.T) {
	c := seeded(t)

	out, err := c.run("chats")
	require.NoError(t, err)
	assert.Contains(t, out, "Foo")
	assert.Contains(t, out, "llama3-8b-8192")
}

func TestChatsEmpty(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("chats")
	require.NoError(t, err)
	assert.Contains(t, out, "No conversations yet")
}

func TestChatsServerError(t *testing.T) {
	c := newCLI(t)
	c.srv.FailNext(apitest.RouteList, 500)

	_, err := c.run("chats")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load chat history")
}

func TestShowAcceptsLink(t *testing.T) {
	c := seeded(t)

	out, err := c.run("show", "https://pinned.example/?chat=a")
	require.NoError(t, err)
	assert.Contains(t, out, "# Foo")
	assert.Contains(t, out, "hello there")
}

func TestShowUnknownChat(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("show", "missing")
	assert.Error(t, err)
}

func TestModelsMarksDefault(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("models")
	require.NoError(t, err)
	assert.Contains(t, out, "mixtral-8x7b-32768")
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "llama3-8b-8192") {
			assert.Contains(t, line, "*")
		}
	}
}

func TestHealth(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("health")
	require.NoError(t, err)
	assert.Contains(t, out, c.srv.URL+": ok")

	c.srv.FailNext(apitest.RouteHealth, 503)
	_, err = c.run("health")
	assert.Error(t, err)
}

func TestExportJSONToStdout(t *testing.T) {
	c := seeded(t)

	out, err := c.run("export", "a", "--format", "json", "-o", "-")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Contains(t, out, "hello there")
}

func TestExportToFile(t *testing.T) {
	c := seeded(t)
	path := filepath.Join(c.dir, "out", "chat.yaml")

	out, err := c.run("export", "a", "-f", "yaml", "-o", path)
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello there")
}

func TestExportUnknownFormat(t *testing.T) {
	c := seeded(t)

	_, err := c.run("export", "a", "--format", "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown export format")
	assert.Zero(t, c.srv.Calls(apitest.RouteGet))
}

func TestConfigInit(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("config", "--init")
	require.NoError(t, err)
	assert.Contains(t, out, "config.toml")
	_, err = os.Stat(filepath.Join(c.dir, "config.toml"))
	require.NoError(t, err)

	_, err = c.run("config", "--init")
	assert.Error(t, err)

	out, err = c.run("config")
	require.NoError(t, err)
	assert.Contains(t, out, c.srv.URL)
}

func TestInvalidFlags(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("--profile", "deluxe", "health")
	assert.Error(t, err)

	_, err = c.run("--api-url", "ftp://nowhere", "health")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be an http(s) URL")
}

func TestStartLocation(t *testing.T) {
	store, err := db.OpenPinnedDB(filepath.Join(t.TempDir(), "pinned.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	prefs := db.NewPrefs(store)
	logger = zap.NewNop()
	t.Cleanup(func() { chatFlag = "" })

	assert.Equal(t, session.Location{}, startLocation(nil, prefs))

	require.NoError(t, prefs.SaveLocation(session.Location{ChatID: "last"}))
	assert.Equal(t, "last", startLocation(nil, prefs).ChatID)

	chatFlag = "flagged"
	assert.Equal(t, "flagged", startLocation(nil, prefs).ChatID)

	assert.Equal(t, "linked", startLocation([]string{"https://pinned.example/?chat=linked"}, prefs).ChatID)
}
