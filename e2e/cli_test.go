package e2e_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/chesspie/internal/api"
	"github.com/mcoot/chesspie/internal/factory"
	"github.com/mcoot/chesspie/internal/testutil"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "chesspie-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/chesspie")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	logger := testutil.NopLogger()
	app, err := factory.New(factory.Config{Logger: logger})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		GameController: app.GameController,
		LibraryService: app.LibraryService,
		HubManager:     app.HubManager,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = "127.0.0.1"
	serverConfig.Port = port
	server := api.NewServer(router, serverConfig, logger)
	server.OnShutdown(app.HubManager.CloseAll)

	go func() {
		if err := server.Start(); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := "http://127.0.0.1:" + strconv.Itoa(port)
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr: serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

const gameConfig = `{
  "rows": 8,
  "cols": 8,
  "placements": {
    "e1": {"type": "king", "color": "white"},
    "e2": {"type": "pawn", "color": "white"},
    "a1": {"type": "archer", "color": "white"},
    "e8": {"type": "king", "color": "black"},
    "d7": {"type": "pawn", "color": "black"}
  }
}`

const pieces = `{"pieces": [
  {
    "id": "archer",
    "name": "Archer",
    "moves": {
      "white": [
        {"conditions": [{"variable": "absDiffX", "operator": "===", "value": 0}], "result": "allow", "type": "slide"},
        {"conditions": [{"variable": "absDiffY", "operator": "===", "value": 0}], "result": "allow", "type": "slide"}
      ]
    }
  }
]}`

// Response types for JSON parsing
type healthResponse struct {
	Status     string `json:"status"`
	PieceCount int    `json:"pieceCount"`
}

type gameResponse struct {
	ID     string `json:"id"`
	State  string `json:"state"`
	Turn   string `json:"turn"`
	Winner string `json:"winner"`
	Moves  []struct {
		FromLabel string `json:"fromLabel"`
		ToLabel   string `json:"toLabel"`
		Captured  string `json:"captured"`
	} `json:"moves"`
}

type moveResponse struct {
	Move struct {
		FromLabel string `json:"fromLabel"`
		ToLabel   string `json:"toLabel"`
	} `json:"move"`
	Game gameResponse `json:"game"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_PieceCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("pieces", "load", "-f", writeFile(t, "pieces.json", pieces))
	require.NoError(t, err, "output: %s", output)

	var saved struct {
		Saved int `json:"saved"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &saved))
	assert.Equal(t, 1, saved.Saved)

	output, err = cli.run("pieces", "list")
	require.NoError(t, err, "output: %s", output)
	assert.Contains(t, output, `"archer"`)

	output, err = cli.run("pieces", "delete", "Archer")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("pieces", "get", "archer")
	assert.Error(t, err)
	assert.Contains(t, output, "PIECE_DEFINITION_NOT_FOUND")
}

func TestCLI_FullGameFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	_, err := cli.run("pieces", "load", "-f", writeFile(t, "pieces.json", pieces))
	require.NoError(t, err)

	// Create a game
	output, err := cli.run("game", "create", "-f", writeFile(t, "game.json", gameConfig))
	require.NoError(t, err, "output: %s", output)
	var game gameResponse
	require.NoError(t, json.Unmarshal([]byte(output), &game))
	require.NotEmpty(t, game.ID)
	assert.Equal(t, "white", game.Turn)
	t.Logf("Created game: %s", game.ID)

	// Legal moves for the custom piece
	output, err = cli.run("game", "moves", game.ID, "a1")
	require.NoError(t, err, "output: %s", output)
	var legal struct {
		Moves []string `json:"moves"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &legal))
	assert.Contains(t, legal.Moves, "a8")

	// Play moves
	for _, mv := range [][2]string{{"e2", "e4"}, {"d7", "d5"}, {"e4", "d5"}} {
		output, err = cli.run("game", "move", game.ID, mv[0], mv[1])
		require.NoError(t, err, "move %v: %s", mv, output)
		var result moveResponse
		require.NoError(t, json.Unmarshal([]byte(output), &result))
		assert.Equal(t, mv[0], result.Move.FromLabel)
		assert.Equal(t, mv[1], result.Move.ToLabel)
	}

	// A rejected move
	output, err = cli.run("game", "move", game.ID, "e8", "e5")
	assert.Error(t, err)
	assert.Contains(t, output, "MOVE_REJECTED")

	// Undo the capture
	output, err = cli.run("game", "undo", game.ID)
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &game))
	assert.Len(t, game.Moves, 2)

	// Summary
	output, err = cli.run("game", "summary", game.ID)
	require.NoError(t, err, "output: %s", output)
	assert.Contains(t, output, `"in progress"`)

	// End the game
	output, err = cli.run("game", "end", game.ID, "--winner", "white", "--reason", "resignation")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &game))
	assert.Equal(t, "ended", game.State)
	assert.Equal(t, "white", game.Winner)

	// List and delete
	output, err = cli.run("game", "list")
	require.NoError(t, err, "output: %s", output)
	assert.Contains(t, output, game.ID)

	output, err = cli.run("game", "delete", game.ID)
	require.NoError(t, err, "output: %s", output)
	var msg messageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &msg))
	assert.Equal(t, "Game deleted", msg.Message)
}

func TestCLI_ReplayOffline(t *testing.T) {
	// No server: the replay runs the engine in-process
	cli := newCLIRunner(t, "http://127.0.0.1:1")

	output, err := cli.run("replay",
		"-f", writeFile(t, "game.json", gameConfig),
		"--pieces", writeFile(t, "pieces.json", pieces),
		"--verify",
		"e2:e4", "d7:d5", "a1:a7")
	require.NoError(t, err, "output: %s", output)

	var game gameResponse
	require.NoError(t, json.Unmarshal([]byte(output), &game))
	assert.Len(t, game.Moves, 3)
	assert.Equal(t, "black", game.Turn)

	output, err = cli.run("replay", "-f", writeFile(t, "game.json", gameConfig), "e2:e5")
	assert.Error(t, err)
	assert.Contains(t, output, "move 1 (e2:e5)")
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("game", "get", "INVALID")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "not found")

	output, err = cli.run("game", "create", "-f", writeFile(t, "bad.json", `{"rows": 0, "cols": 8}`))
	assert.Error(t, err)
	assert.Contains(t, output, "INVALID_CONFIG")
}
