package factory

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/chesspie/internal/api/sse"
	"github.com/mcoot/chesspie/internal/config"
	"github.com/mcoot/chesspie/internal/model"
	sqlitestorage "github.com/mcoot/chesspie/internal/storage/sqlite"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
	s.Require().NoError(s.app.LoadTestPieces())
}

func (s *IntegrationSuite) TearDownTest() {
	s.NoError(s.app.Close())
}

func archerDuel() model.GameConfig {
	return model.GameConfig{
		Rows: 8,
		Cols: 8,
		Placements: map[string]model.Placement{
			"a1": {Type: "archer", Color: model.White},
			"e1": {Type: "king", Color: model.White},
			"a8": {Type: "archer", Color: model.Black},
			"e8": {Type: "king", Color: model.Black},
		},
	}
}

// A custom piece from the library plays through create, move, undo and summary
func (s *IntegrationSuite) TestCompleteGameFlow() {
	s.app.MockRandom.QueueString("GAME01")

	game, err := s.app.GameController.CreateGame(s.ctx, archerDuel())
	s.Require().NoError(err)
	s.Equal(model.GameID("GAME01"), game.ID)
	s.Equal(model.White, game.Turn)

	moves, err := s.app.GameController.LegalMoves(s.ctx, game.ID, "a1")
	s.Require().NoError(err)
	s.Contains(moves, "a8")
	s.Contains(moves, "d1")
	s.NotContains(moves, "f1")

	s.app.MockClock.Advance(time.Minute)
	result, err := s.app.GameController.MakeMove(s.ctx, game.ID, "a1", "a8", model.MoveOptions{})
	s.Require().NoError(err)
	s.Equal("archer", result.Move.Captured)
	s.Equal(model.Black, result.Game.Turn)

	summary, err := s.app.GameController.GetSummary(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(1, summary.Captures[model.White])
	s.Equal(2, summary.PieceCount[model.White])
	s.Equal(1, summary.PieceCount[model.Black])

	undone, err := s.app.GameController.Undo(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(model.White, undone.Turn)
	s.Empty(undone.Moves)

	infos, err := s.app.GameController.ListGames(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(infos, 1)
	s.Equal(0, infos[0].MoveCount)
}

// Events from the controller reach SSE clients of the game through the
// broadcaster wired in by the factory
func (s *IntegrationSuite) TestMovesReachEventStream() {
	s.app.MockRandom.QueueString("GAME01")
	game, err := s.app.GameController.CreateGame(s.ctx, archerDuel())
	s.Require().NoError(err)

	hub := s.app.HubManager.GetOrCreateHub(game.ID)
	client := sse.NewClient(hub, "watcher")
	hub.Register(client)
	s.Require().Eventually(func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	_, err = s.app.GameController.MakeMove(s.ctx, game.ID, "e1", "e2", model.MoveOptions{})
	s.Require().NoError(err)

	select {
	case msg := <-client.Messages():
		s.True(strings.HasPrefix(string(msg), "event: move\n"), string(msg))
	case <-time.After(time.Second):
		s.Fail("no event received")
	}
}

func (s *IntegrationSuite) TestLibraryChangesDoNotAffectExistingGames() {
	s.app.MockRandom.QueueString("GAME01")
	game, err := s.app.GameController.CreateGame(s.ctx, archerDuel())
	s.Require().NoError(err)

	s.Require().NoError(s.app.LibraryService.Delete(s.ctx, "archer"))

	_, err = s.app.GameController.MakeMove(s.ctx, game.ID, "a1", "a5", model.MoveOptions{})
	s.NoError(err)
}

func TestNewRejectsUnknownStorage(t *testing.T) {
	_, err := New(Config{StorageType: "mongo"})
	if err == nil {
		t.Fatal("expected error for unknown storage type")
	}
}

func TestNewRequiresRedisConfig(t *testing.T) {
	_, err := New(Config{StorageType: config.StorageTypeRedis})
	if err == nil {
		t.Fatal("expected error without RedisConfig")
	}
}

func TestNewWithSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.db")
	app, err := New(Config{StorageType: config.StorageTypeSQLite, SQLitePath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = app.Close() }()

	if _, ok := app.Storage.(*sqlitestorage.Storage); !ok {
		t.Fatalf("expected sqlite storage, got %T", app.Storage)
	}
}

func TestConfigFromServer(t *testing.T) {
	cfg := ConfigFromServer(config.ServerConfig{
		StorageType: config.StorageTypeRedis,
		RedisURL:    "redis://localhost:6379/1",
		GameTTL:     time.Hour,
	}, nil)

	if cfg.RedisConfig == nil {
		t.Fatal("expected RedisConfig")
	}
	if cfg.RedisConfig.URL != "redis://localhost:6379/1" || cfg.RedisConfig.GameTTL != time.Hour {
		t.Fatalf("unexpected redis config: %+v", cfg.RedisConfig)
	}

	memCfg := ConfigFromServer(config.ServerConfig{StorageType: config.StorageTypeMemory}, nil)
	if memCfg.RedisConfig != nil {
		t.Fatal("memory config should not carry RedisConfig")
	}
}
