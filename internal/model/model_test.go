package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueJSON(t *testing.T) {
	var vs Variables
	require.NoError(t, json.Unmarshal([]byte(`{"hp":3,"mood":"angry","flag":true,"none":null}`), &vs))

	assert.Equal(t, Number(3), vs["hp"])
	assert.Equal(t, Text("angry"), vs["mood"])
	assert.Equal(t, Number(1), vs["flag"])
	assert.Equal(t, Number(0), vs["none"])
	assert.Equal(t, Number(0), vs.Get("missing"))

	out, err := json.Marshal(Variables{"hp": Number(2.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"hp":2.5}`, string(out))
}

func TestValueAsNumber(t *testing.T) {
	n, ok := Text(" 12 ").AsNumber()
	assert.True(t, ok)
	assert.Equal(t, 12.0, n)

	_, ok = Text("twelve").AsNumber()
	assert.False(t, ok)

	assert.Equal(t, "3", Number(3).String())
}

func TestSocketResolve(t *testing.T) {
	var sockets Sockets
	require.NoError(t, json.Unmarshal([]byte(`{
		"amount": 2,
		"target": {"type":"variable","name":"hp"},
		"varName": {"type":"variable","name":"hp"},
		"label": {"type":"variable","name":"hp","variableOnly":true},
		"weird": {"foo":"bar"}
	}`), &sockets))

	r := sockets.ResolveAll(Variables{"hp": Number(7)})
	assert.Equal(t, Number(2), r["amount"])
	assert.Equal(t, Number(7), r["target"])
	assert.Equal(t, Text("hp"), r["varName"])
	assert.Equal(t, Text("hp"), r["label"])
	assert.Equal(t, "", r.Str("weird"))
	assert.False(t, r.Has("missing"))
}

func TestMoveRuleDecodeAliases(t *testing.T) {
	var rules []MoveRule
	require.NoError(t, json.Unmarshal([]byte(`[
		{"conditions":[{"variable":"diffY","operator":"===","value":1}],"result":"allow","type":"running"},
		{"conditions":[],"result":"DISALLOW","type":"jump"},
		{"conditions":[]}
	]`), &rules))

	require.Len(t, rules, 3)
	assert.Equal(t, ModeSlide, rules[0].Mode)
	assert.Equal(t, ResultAllow, rules[0].Result)
	assert.Equal(t, ResultDisallow, rules[1].Result)
	assert.Equal(t, ModeJump, rules[2].Mode)
	assert.Equal(t, ResultAllow, rules[2].Result)
}

func TestMoveRuleConnectivesShiftOnIngestion(t *testing.T) {
	authored := `{"conditions":[
		{"variable":"diffY","operator":"===","value":1,"logic":"OR"},
		{"variable":"diffY","operator":"===","value":2,"logic":"AND"},
		{"variable":"diffX","operator":"===","value":0}
	],"result":"allow","type":"jump"}`

	var rule MoveRule
	require.NoError(t, json.Unmarshal([]byte(authored), &rule))
	require.Len(t, rule.Conditions, 3)
	assert.Equal(t, Connective(""), rule.Conditions[0].Logic)
	assert.Equal(t, ConnOr, rule.Conditions[1].Logic)
	assert.Equal(t, ConnAnd, rule.Conditions[2].Logic)

	// writing restores the authoring layout so stored records reload unchanged
	data, err := json.Marshal(rule)
	require.NoError(t, err)
	var again MoveRule
	require.NoError(t, json.Unmarshal(data, &again))
	assert.Equal(t, rule, again)

	var raw struct {
		Conditions []Condition `json:"conditions"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, ConnOr, raw.Conditions[0].Logic)
	assert.Equal(t, ConnAnd, raw.Conditions[1].Logic)
	assert.Equal(t, Connective(""), raw.Conditions[2].Logic)
}

func TestLogicBlockDecode(t *testing.T) {
	var g LogicGraph
	require.NoError(t, json.Unmarshal([]byte(`[
		{"instanceId":"t1","type":"Trigger","id":"on-is-captured","childId":"e1"},
		{"instanceId":"e1","type":"effect","id":"kill","socketValues":{"target":"Attacker"}}
	]`), &g))

	triggers := g.Triggers(TriggerCaptured)
	require.Len(t, triggers, 1)
	assert.Equal(t, "e1", triggers[0].ChildID)

	b, ok := g.Block("e1")
	require.True(t, ok)
	assert.Equal(t, BlockEffect, b.Kind)
	assert.Equal(t, Text("Attacker"), b.Sockets.ResolveAll(nil)["target"])
}

func TestCompareOps(t *testing.T) {
	assert.True(t, OpEq.Compare(2, 2))
	assert.True(t, CompareOp("==").Compare(2, 2))
	assert.True(t, OpGte.Compare(3, 2))
	assert.False(t, CompareOp("~").Compare(1, 1))
	assert.True(t, OpLt.CompareText("apple", "banana"))
	assert.True(t, OpNe.CompareText("a", "b"))
}

func TestPieceMatches(t *testing.T) {
	p := &Piece{Type: "exp_wizard", Name: "Wizard"}
	assert.True(t, p.Matches(""))
	assert.True(t, p.Matches("Any"))
	assert.True(t, p.Matches("wizard"))
	assert.True(t, p.Matches("EXP"))
	assert.False(t, p.Matches("pawn"))
}

func TestPrototypeTable(t *testing.T) {
	table := NewPrototypeTable([]PieceDefinition{
		{ID: "p-1", Name: "Wizard"},
		{ID: "p-2", Name: "wizard"},
	})

	id, ok := table.Resolve("WIZARD")
	require.True(t, ok)
	assert.Equal(t, PrototypeID(0), id)

	id, ok = table.Resolve("p-2")
	require.True(t, ok)
	def, ok := table.Get(id)
	require.True(t, ok)
	assert.Equal(t, "p-2", def.ID)

	_, ok = table.Resolve("ghost")
	assert.False(t, ok)
	_, ok = table.Get(NoPrototype)
	assert.False(t, ok)
}

func TestDefinitionRulesForSharesSingleSide(t *testing.T) {
	def := PieceDefinition{Rules: map[Color][]MoveRule{White: {{Result: ResultAllow}}}}
	assert.Len(t, def.RulesFor(Black), 1)
}

func TestBoardSetPieceRespectsActiveSquares(t *testing.T) {
	b := NewBoard(2, 1, "square", []Square{"0,0"})
	b.SetPiece("1,0", &Piece{ID: "x"})
	assert.Nil(t, b.Piece("1,0"))

	b.SetPiece("0,0", &Piece{ID: "y"})
	require.NotNil(t, b.Piece("0,0"))
	assert.Equal(t, Square("0,0"), b.Piece("0,0").Position)

	assert.False(t, b.SetActive("0,0", false), "occupied square stays active")
	b.SetPiece("0,0", nil)
	assert.True(t, b.SetActive("0,0", false))
	assert.False(t, b.IsActive("0,0"))
}

func TestBoardCloneIsIndependent(t *testing.T) {
	b := NewBoard(2, 2, "square", []Square{"0,0", "1,0"})
	b.SetPiece("0,0", &Piece{ID: "a", Color: White, Variables: Variables{"hp": Number(1)}})
	b.SetSquareLogic("1,0", &SquareLogic{Variables: Variables{}})

	c := b.Clone()
	c.Piece("0,0").Variables["hp"] = Number(5)
	c.SetPiece("0,0", nil)
	c.Turn = Black

	require.NotNil(t, b.Piece("0,0"))
	assert.Equal(t, Number(1), b.Piece("0,0").Variables["hp"])
	assert.Equal(t, White, b.Turn)
	assert.NotEqual(t, b.Snapshot(), c.Snapshot())
	assert.Equal(t, b.Snapshot(), b.Clone().Snapshot())
}

func TestOutcomeVetoed(t *testing.T) {
	var o *Outcome
	assert.False(t, o.Vetoed())
	assert.True(t, (&Outcome{CapturePrevented: true}).Vetoed())
	assert.False(t, (&Outcome{GameWon: true}).Vetoed())
}
