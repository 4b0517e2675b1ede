package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/chesspie/internal/dependencies/mocks"
	"github.com/mcoot/chesspie/internal/model"
	"github.com/mcoot/chesspie/internal/services/library"
	"github.com/mcoot/chesspie/internal/services/summary"
	"github.com/mcoot/chesspie/internal/storage/memory"
	"github.com/mcoot/chesspie/internal/testutil"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.Event
}

func (p *recordingPublisher) Publish(e model.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []model.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	library    *library.Service
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	publisher  *recordingPublisher
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.library = library.New(s.storage, testutil.NopLogger())
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.publisher = &recordingPublisher{}
	s.controller = s.newController()
	s.ctx = context.Background()
}

func (s *ControllerSuite) newController() *Controller {
	return NewController(s.storage, s.library, summary.New(), s.clock, s.random, testutil.NopLogger(), s.publisher)
}

func kingsAndPawns() model.GameConfig {
	return model.GameConfig{
		Rows: 8,
		Cols: 8,
		Placements: map[string]model.Placement{
			"e1": {Type: "king", Color: model.White},
			"e2": {Type: "pawn", Color: model.White},
			"e8": {Type: "king", Color: model.Black},
			"d7": {Type: "pawn", Color: model.Black},
		},
	}
}

func (s *ControllerSuite) createGame(cfg model.GameConfig) *model.GameView {
	s.random.QueueString("GAME12345678")
	v, err := s.controller.CreateGame(s.ctx, cfg)
	s.Require().NoError(err)
	return v
}

func (s *ControllerSuite) move(from, to string) *model.MoveResult {
	res, err := s.controller.MakeMove(s.ctx, "GAME12345678", from, to, model.MoveOptions{})
	s.Require().NoError(err)
	return res
}

func pieceAt(v *model.GameView, label string) *model.PieceView {
	for i := range v.Pieces {
		if v.Pieces[i].Label == label {
			return &v.Pieces[i]
		}
	}
	return nil
}

// CreateGame tests

func (s *ControllerSuite) TestCreateGameSucceeds() {
	v := s.createGame(kingsAndPawns())

	s.Equal(model.GameID("GAME12345678"), v.ID)
	s.Equal(model.GameStateAwaitingMove, v.State)
	s.Equal(model.White, v.Turn)
	s.Len(v.Pieces, 4)
	s.Len(v.Active, 64)
	s.Equal(s.clock.Now(), v.CreatedAt)
	s.Equal([]model.EventType{model.EventGameCreated}, s.publisher.types())

	rec, err := s.storage.GetGame(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Empty(rec.Moves)
}

func (s *ControllerSuite) TestCreateGameRejectsInvalidConfig() {
	s.random.QueueString("GAME12345678")
	_, err := s.controller.CreateGame(s.ctx, model.GameConfig{Rows: 0, Cols: 8})
	s.ErrorIs(err, model.ErrInvalidConfig)

	_, err = s.storage.GetGame(s.ctx, "GAME12345678")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ControllerSuite) TestCreateGameSnapshotsLibraryPieces() {
	s.Require().NoError(s.library.Save(s.ctx, []model.PieceDefinition{{
		ID:   "hopper",
		Name: "Hopper",
		Rules: map[model.Color][]model.MoveRule{
			model.White: {{Result: model.ResultAllow, Mode: model.ModeJump}},
		},
	}}))
	cfg := kingsAndPawns()
	cfg.Placements["a1"] = model.Placement{Type: "Hopper", Color: model.White}

	v := s.createGame(cfg)
	hopper := pieceAt(v, "a1")
	s.Require().NotNil(hopper)
	s.True(hopper.Custom)

	// Later library changes do not affect the stored game
	s.Require().NoError(s.library.Delete(s.ctx, "hopper"))
	s.controller = s.newController()
	res, err := s.controller.MakeMove(s.ctx, v.ID, "a1", "h8", model.MoveOptions{})
	s.Require().NoError(err)
	s.Equal("h8", res.Move.ToLabel)
}

func (s *ControllerSuite) TestConfigPiecesShadowLibrary() {
	s.Require().NoError(s.library.Save(s.ctx, []model.PieceDefinition{{ID: "hopper"}}))
	cfg := kingsAndPawns()
	cfg.CustomPieces = []model.PieceDefinition{{ID: "Hopper", Name: "Local"}}

	v := s.createGame(cfg)

	rec, err := s.storage.GetGame(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Require().Len(rec.Config.CustomPieces, 1)
	s.Equal("Local", rec.Config.CustomPieces[0].Name)
}

// MakeMove tests

func (s *ControllerSuite) TestMakeMoveCommits() {
	s.createGame(kingsAndPawns())
	s.clock.Advance(time.Minute)

	res := s.move("e2", "e4")

	s.Equal("e2", res.Move.FromLabel)
	s.Equal("e4", res.Move.ToLabel)
	s.Equal(model.Black, res.Game.Turn)
	s.NotNil(pieceAt(res.Game, "e4"))
	s.Nil(pieceAt(res.Game, "e2"))
	s.Empty(res.Effects)

	rec, err := s.storage.GetGame(s.ctx, "GAME12345678")
	s.Require().NoError(err)
	s.Len(rec.Moves, 1)
	s.Equal(s.clock.Now(), rec.UpdatedAt)
	s.Equal([]model.EventType{model.EventGameCreated, model.EventMove}, s.publisher.types())
}

func (s *ControllerSuite) TestMakeMoveRejected() {
	s.createGame(kingsAndPawns())

	_, err := s.controller.MakeMove(s.ctx, "GAME12345678", "e2", "e5", model.MoveOptions{})
	s.ErrorIs(err, model.ErrMoveRejected)

	// Black cannot move first
	_, err = s.controller.MakeMove(s.ctx, "GAME12345678", "d7", "d5", model.MoveOptions{})
	s.ErrorIs(err, model.ErrMoveRejected)

	rec, _ := s.storage.GetGame(s.ctx, "GAME12345678")
	s.Empty(rec.Moves)
}

func (s *ControllerSuite) TestMakeMoveInvalidSquare() {
	s.createGame(kingsAndPawns())

	_, err := s.controller.MakeMove(s.ctx, "GAME12345678", "z9", "e4", model.MoveOptions{})
	s.ErrorIs(err, model.ErrInvalidSquare)
}

func (s *ControllerSuite) TestMakeMoveGameNotFound() {
	_, err := s.controller.MakeMove(s.ctx, "NOPE", "e2", "e4", model.MoveOptions{})
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ControllerSuite) TestMoveEffectsArePublished() {
	cfg := kingsAndPawns()
	cfg.SquareLogic = map[string]model.SquareLogicDefinition{
		"e4": {Logic: model.LogicGraph{
			{InstanceID: "t", Kind: model.BlockTrigger, Type: string(model.TriggerStep), ChildID: "k"},
			{InstanceID: "k", Kind: model.BlockEffect, Type: string(model.EffectKill)},
		}},
	}
	s.createGame(cfg)

	res := s.move("e2", "e4")

	s.True(res.Move.Consumed)
	s.Equal([]model.EffectEvent{{Type: model.EffectEventKill, Square: "4,4", Label: "e4"}}, res.Effects)
	s.Nil(pieceAt(res.Game, "e4"))
	s.Equal(
		[]model.EventType{model.EventGameCreated, model.EventEffect, model.EventMove},
		s.publisher.types(),
	)
}

func (s *ControllerSuite) TestWinEndsGame() {
	cfg := kingsAndPawns()
	cfg.SquareLogic = map[string]model.SquareLogicDefinition{
		"e4": {Logic: model.LogicGraph{
			{InstanceID: "t", Kind: model.BlockTrigger, Type: string(model.TriggerStep), ChildID: "w"},
			{InstanceID: "w", Kind: model.BlockEffect, Type: string(model.EffectWin)},
		}},
	}
	s.createGame(cfg)

	res := s.move("e2", "e4")
	s.Equal(model.GameStateEnded, res.Game.State)
	s.Equal(model.White, res.Game.Winner)
	s.Contains(s.publisher.types(), model.EventGameEnded)

	_, err := s.controller.MakeMove(s.ctx, "GAME12345678", "d7", "d5", model.MoveOptions{})
	s.ErrorIs(err, model.ErrGameEnded)
}

// Persistence tests

func (s *ControllerSuite) TestFreshControllerReplaysStoredMoves() {
	s.createGame(kingsAndPawns())
	s.move("e2", "e4")
	s.move("d7", "d5")
	before, err := s.controller.GetGame(s.ctx, "GAME12345678")
	s.Require().NoError(err)

	fresh := s.newController()
	after, err := fresh.GetGame(s.ctx, "GAME12345678")
	s.Require().NoError(err)

	s.Equal(before.Pieces, after.Pieces)
	s.Equal(before.Turn, after.Turn)

	res, err := fresh.MakeMove(s.ctx, "GAME12345678", "e4", "d5", model.MoveOptions{})
	s.Require().NoError(err)
	s.Equal("pawn", res.Move.Captured)
}

func (s *ControllerSuite) TestStaleSessionIsRebuilt() {
	s.createGame(kingsAndPawns())
	s.move("e2", "e4")

	// Another process undoes the move directly in storage
	rec, _ := s.storage.GetGame(s.ctx, "GAME12345678")
	rec.Moves = rec.Moves[:0]
	_ = s.storage.SaveGame(s.ctx, rec)

	v, err := s.controller.GetGame(s.ctx, "GAME12345678")
	s.Require().NoError(err)
	s.NotNil(pieceAt(v, "e2"))
	s.Equal(model.White, v.Turn)
}

// LegalMoves tests

func (s *ControllerSuite) TestLegalMoves() {
	s.createGame(kingsAndPawns())

	labels, err := s.controller.LegalMoves(s.ctx, "GAME12345678", "e2")
	s.Require().NoError(err)
	s.ElementsMatch([]string{"e3", "e4"}, labels)

	labels, err = s.controller.LegalMoves(s.ctx, "GAME12345678", "d7")
	s.Require().NoError(err)
	s.Empty(labels)

	_, err = s.controller.LegalMoves(s.ctx, "GAME12345678", "a3")
	s.ErrorIs(err, model.ErrPieceNotFound)
}

// Undo tests

func (s *ControllerSuite) TestUndo() {
	s.createGame(kingsAndPawns())
	s.move("e2", "e4")

	v, err := s.controller.Undo(s.ctx, "GAME12345678")
	s.Require().NoError(err)
	s.NotNil(pieceAt(v, "e2"))
	s.Equal(model.White, v.Turn)
	s.Empty(v.Moves)

	rec, _ := s.storage.GetGame(s.ctx, "GAME12345678")
	s.Empty(rec.Moves)
	s.Contains(s.publisher.types(), model.EventUndo)

	_, err = s.controller.Undo(s.ctx, "GAME12345678")
	s.ErrorIs(err, model.ErrNothingToUndo)
}

// EndGame tests

func (s *ControllerSuite) TestEndGame() {
	s.createGame(kingsAndPawns())

	v, err := s.controller.EndGame(s.ctx, "GAME12345678", model.Black, "resigned")
	s.Require().NoError(err)
	s.Equal(model.GameStateEnded, v.State)
	s.Equal(model.Black, v.Winner)

	_, err = s.controller.EndGame(s.ctx, "GAME12345678", model.White, "")
	s.ErrorIs(err, model.ErrGameEnded)

	// The ended state survives a rebuild
	fresh := s.newController()
	after, err := fresh.GetGame(s.ctx, "GAME12345678")
	s.Require().NoError(err)
	s.Equal(model.GameStateEnded, after.State)
	s.Equal(model.Black, after.Winner)
}

func (s *ControllerSuite) TestEndGameInvalidWinner() {
	s.createGame(kingsAndPawns())

	_, err := s.controller.EndGame(s.ctx, "GAME12345678", "green", "")
	s.ErrorIs(err, model.ErrInvalidColor)
}

// Summary, listing and deletion

func (s *ControllerSuite) TestGetSummary() {
	s.createGame(kingsAndPawns())
	s.move("e2", "e4")
	s.move("d7", "d5")
	s.move("e4", "d5")

	sum, err := s.controller.GetSummary(s.ctx, "GAME12345678")
	s.Require().NoError(err)
	s.Equal(1, sum.Material[model.White])
	s.Equal(0, sum.Material[model.Black])
	s.Equal(1, sum.Captures[model.White])
	s.Equal(3, sum.MoveCount)
	s.Equal("in progress", sum.Result)
}

func (s *ControllerSuite) TestListAndDeleteGames() {
	s.createGame(kingsAndPawns())

	infos, err := s.controller.ListGames(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(infos, 1)
	s.Equal(model.GameID("GAME12345678"), infos[0].ID)

	s.Require().NoError(s.controller.DeleteGame(s.ctx, "GAME12345678"))
	_, err = s.controller.GetGame(s.ctx, "GAME12345678")
	s.ErrorIs(err, model.ErrGameNotFound)
	s.ErrorIs(s.controller.DeleteGame(s.ctx, "GAME12345678"), model.ErrGameNotFound)
	s.Zero(s.controller.lockCount(), "deleted games leave no lock behind")
}

func (s *ControllerSuite) TestConcurrentMovesAreSerialized() {
	s.createGame(kingsAndPawns())

	var wg sync.WaitGroup
	results := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.controller.MakeMove(s.ctx, "GAME12345678", "e2", "e4", model.MoveOptions{})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			s.ErrorIs(err, model.ErrMoveRejected)
		}
	}
	s.Equal(1, succeeded)
	s.Zero(s.controller.lockCount())
}
