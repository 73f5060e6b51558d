package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/askdb/internal/domain/history"
	"github.com/kailas-cloud/askdb/internal/domain/strategy"
	"github.com/kailas-cloud/askdb/internal/usecase/knowledge"
)

func TestRootCmd_HasCommands(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"serve", "chat", "ask", "seed", "index", "history", "version"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "", "version")

	require.NoError(t, err)
	assert.Contains(t, out, "askdb version dev")
}

func TestCommands_WithoutBootstrap(t *testing.T) {
	old := bootstrap
	bootstrap = nil
	defer func() { bootstrap = old }()

	_, err := run(t, "", "ask", "hello")

	require.Error(t, err)
	assert.ErrorIs(t, err, errNotConfigured)
}

func TestCommands_BootstrapError(t *testing.T) {
	old := bootstrap
	bootstrap = func(context.Context, string) (*Services, func(), error) { return nil, nil, errBoom }
	defer func() { bootstrap = old }()

	_, err := run(t, "", "index")

	assert.ErrorIs(t, err, errBoom)
}

// --- ask ---

func TestAskCmd_RequiresQuestion(t *testing.T) {
	_, err := run(t, "", "ask")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestAskCmd_JoinsArgs(t *testing.T) {
	asker := &mockAsker{}
	closed, cleanup := setupTestServices(&Services{Asker: asker})
	defer cleanup()

	out, err := run(t, "", "ask", "How many users", "are from India?")

	require.NoError(t, err)
	assert.Equal(t, []string{"How many users are from India?"}, asker.calls)
	assert.Contains(t, out, "Bot: There are 12 users from India. [structured]")
	assert.True(t, *closed, "services must be released")
}

func TestAskCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices(&Services{Asker: &mockAsker{}})
	defer cleanup()

	out, err := run(t, "", "ask", "--json", "How many users are from India?")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, answerID.String(), got["id"])
	assert.Equal(t, "structured", got["strategy"])
	assert.Equal(t, map[string]any{"count": float64(12)}, got["result"])
}

func TestAskCmd_Failure(t *testing.T) {
	_, cleanup := setupTestServices(&Services{Asker: &mockAsker{}})
	defer cleanup()

	out, err := run(t, "", "ask", "boom")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ask failed")
	assert.Contains(t, out, "translate failed")
}

func TestAskCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices(&Services{})
	defer cleanup()

	_, err := run(t, "", "ask", "q")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

// --- chat ---

func TestChatCmd_Session(t *testing.T) {
	asker := &mockAsker{}
	_, cleanup := setupTestServices(&Services{Asker: asker})
	defer cleanup()

	out, err := run(t, "How many users are from India?\n\n  boom \nexit\nnever asked\n", "chat")

	require.NoError(t, err)
	assert.Equal(t, []string{"How many users are from India?", "boom"}, asker.calls)
	assert.Contains(t, out, "Type \"exit\" to quit.")
	assert.Contains(t, out, "You: Bot: There are 12 users from India. [structured]")
	assert.Contains(t, out, "sorry, I could not answer that (translate failed)")
	assert.Contains(t, out, "Bye!")
}

func TestChatCmd_QuitIsCaseInsensitive(t *testing.T) {
	asker := &mockAsker{}
	_, cleanup := setupTestServices(&Services{Asker: asker})
	defer cleanup()

	out, err := run(t, "QUIT\n", "chat")

	require.NoError(t, err)
	assert.Empty(t, asker.calls)
	assert.Contains(t, out, "Bye!")
}

func TestChatCmd_EOF(t *testing.T) {
	asker := &mockAsker{}
	_, cleanup := setupTestServices(&Services{Asker: asker})
	defer cleanup()

	_, err := run(t, "top 5 car brands", "chat")

	require.NoError(t, err)
	assert.Equal(t, []string{"top 5 car brands"}, asker.calls)
}

// --- history ---

func TestHistoryCmd_HasLimitFlag(t *testing.T) {
	flag := historyCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "limit flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "20", flag.DefValue)
}

func TestHistoryCmd_Lists(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	h := &mockHistory{entries: []history.Entry{
		history.NewEntry("How many users are from India?", "There are 12.", strategy.Structured, at),
		history.NewEntry("people like engineers", "Here are a few.", strategy.Semantic, at.Add(time.Minute)),
	}}
	_, cleanup := setupTestServices(&Services{History: h})
	defer cleanup()

	out, err := run(t, "", "history", "-n", "5")

	require.NoError(t, err)
	assert.Equal(t, 5, h.limit)
	assert.Contains(t, out, "You: How many users are from India?")
	assert.Contains(t, out, "Bot: Here are a few. [semantic]")
}

func TestHistoryCmd_Empty(t *testing.T) {
	_, cleanup := setupTestServices(&Services{History: &mockHistory{}})
	defer cleanup()

	out, err := run(t, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No questions asked yet.")

	out, err = run(t, "", "history", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestHistoryCmd_Errors(t *testing.T) {
	_, cleanup := setupTestServices(&Services{History: &mockHistory{err: errBoom}})
	defer cleanup()

	_, err := run(t, "", "history")
	assert.ErrorIs(t, err, errBoom)

	_, err = run(t, "", "history", "--limit", "-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be negative")
}

// --- seed / index ---

func TestSeedCmd_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":1},{"id":2}]`), 0o600))

	seeder := &mockSeeder{}
	_, cleanup := setupTestServices(&Services{Seeder: seeder})
	defer cleanup()

	out, err := run(t, "", "seed", path)

	require.NoError(t, err)
	assert.Equal(t, `[{"id":1},{"id":2}]`, seeder.payload)
	assert.Contains(t, out, "Seeded 2 users.")
}

func TestSeedCmd_Stdin(t *testing.T) {
	seeder := &mockSeeder{}
	_, cleanup := setupTestServices(&Services{Seeder: seeder})
	defer cleanup()

	out, err := run(t, `[{"id":7}]`, "seed", "-")

	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 1 users.")
}

func TestSeedCmd_Errors(t *testing.T) {
	_, cleanup := setupTestServices(&Services{Seeder: &mockSeeder{err: errBoom}})
	defer cleanup()

	_, err := run(t, "", "seed", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open dataset")

	_, err = run(t, "[]", "seed", "-")
	assert.ErrorIs(t, err, errBoom)

	_, err = run(t, "", "seed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestIndexCmd(t *testing.T) {
	_, cleanup := setupTestServices(&Services{Indexer: &mockIndexer{sum: knowledge.Summary{Total: 15, Indexed: 14, Failed: 1, Stored: 14}}})
	defer cleanup()

	out, err := run(t, "", "index")

	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 14 of 15 users (1 failed).")
	assert.Contains(t, out, "Knowledge base holds 14 documents.")
}

func TestIndexCmd_Error(t *testing.T) {
	_, cleanup := setupTestServices(&Services{Indexer: &mockIndexer{err: errBoom}})
	defer cleanup()

	_, err := run(t, "", "index")

	assert.ErrorIs(t, err, errBoom)
}

// --- serve ---

func TestServeCmd(t *testing.T) {
	srv := &mockServer{}
	closed, cleanup := setupTestServices(&Services{Server: srv})
	defer cleanup()

	_, err := run(t, "", "serve")

	require.NoError(t, err)
	assert.True(t, srv.served)
	assert.True(t, *closed)
}

func TestServeCmd_Error(t *testing.T) {
	_, cleanup := setupTestServices(&Services{Server: &mockServer{err: errBoom}})
	defer cleanup()

	_, err := run(t, "", "serve")

	assert.ErrorIs(t, err, errBoom)
}
