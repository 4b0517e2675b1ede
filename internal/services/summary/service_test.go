package summary

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/chesspie/internal/model"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.service = New()
}

func piece(t string, c model.Color) model.PieceView {
	return model.PieceView{Type: t, Name: t, Color: c}
}

func (s *ServiceSuite) TestPieceValueStandard() {
	s.Equal(1, s.service.PieceValue(piece("pawn", model.White)))
	s.Equal(9, s.service.PieceValue(piece("Queen", model.White)))
	s.Equal(0, s.service.PieceValue(piece("king", model.Black)))
	s.Equal(0, s.service.PieceValue(piece("hopper", model.Black)))
}

func (s *ServiceSuite) TestPieceValueVariableOverrides() {
	p := piece("hopper", model.White)
	p.Variables = model.Variables{ValueVariable: model.Number(4)}
	s.Equal(4, s.service.PieceValue(p))

	p.Variables = model.Variables{ValueVariable: model.Text("lots")}
	s.Equal(0, s.service.PieceValue(p))
}

func (s *ServiceSuite) TestSummarize() {
	view := &model.GameView{
		ID:    "game-1",
		State: model.GameStateAwaitingMove,
		Pieces: []model.PieceView{
			piece("queen", model.White),
			piece("pawn", model.White),
			piece("rook", model.Black),
		},
		Moves: []model.MoveView{
			{MoveRecord: model.MoveRecord{Color: model.White, Captured: "knight"}},
			{MoveRecord: model.MoveRecord{Color: model.Black}},
		},
	}

	sum := s.service.Summarize(view)
	s.Equal(10, sum.Material[model.White])
	s.Equal(5, sum.Material[model.Black])
	s.Equal(2, sum.PieceCount[model.White])
	s.Equal(1, sum.Captures[model.White])
	s.Equal(0, sum.Captures[model.Black])
	s.Equal(2, sum.MoveCount)
	s.Equal("in progress", sum.Result)
	s.Equal(model.White, s.service.MaterialLeader(sum))
}

func (s *ServiceSuite) TestResult() {
	s.Equal("white wins", Result(model.GameStateEnded, model.White))
	s.Equal("black wins", Result(model.GameStateEnded, model.Black))
	s.Equal("draw", Result(model.GameStateEnded, ""))
	s.Equal("in progress", Result(model.GameStateAwaitingMove, ""))
}

func (s *ServiceSuite) TestMaterialLeaderLevel() {
	sum := s.service.Summarize(&model.GameView{})
	s.Equal(model.Color(""), s.service.MaterialLeader(sum))
}
