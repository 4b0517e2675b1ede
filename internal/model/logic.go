package model

import (
	"encoding/json"
	"strings"
)

// BlockKind classifies a logic block
type BlockKind string

const (
	BlockTrigger  BlockKind = "trigger"
	BlockEffect   BlockKind = "effect"
	BlockTerminal BlockKind = "terminal"
	BlockVariable BlockKind = "variable"
)

// TriggerType names the event a trigger block reacts to
type TriggerType string

const (
	TriggerMove         TriggerType = "on-move"
	TriggerCapture      TriggerType = "on-capture"
	TriggerCaptured     TriggerType = "on-captured"
	TriggerThreat       TriggerType = "on-threat"
	TriggerEnvironment  TriggerType = "on-environment"
	TriggerVar          TriggerType = "on-var"
	TriggerTurnStart    TriggerType = "on-turn-start"
	TriggerCooldownTick TriggerType = "on-cooldown-tick"
	TriggerCooldownEnd  TriggerType = "on-cooldown-end"

	TriggerStep      TriggerType = "on-step"
	TriggerLeave     TriggerType = "on-leave"
	TriggerProximity TriggerType = "on-proximity"
)

// EffectType names the action an effect block performs
type EffectType string

const (
	EffectKill           EffectType = "kill"
	EffectTransformation EffectType = "transformation"
	EffectModifyVar      EffectType = "modify-var"
	EffectCooldown       EffectType = "cooldown"
	EffectPrevent        EffectType = "prevent"
	EffectTeleport       EffectType = "teleport"
	EffectDisableSquare  EffectType = "disable-square"
	EffectEnableSquare   EffectType = "enable-square"
	EffectWin            EffectType = "win"
)

// LogicBlock is one node of an authored behaviour graph. Type holds the
// trigger or effect name depending on Kind.
type LogicBlock struct {
	InstanceID string    `json:"instanceId"`
	Kind       BlockKind `json:"type"`
	Type       string    `json:"id"`
	Sockets    Sockets   `json:"socketValues,omitempty"`
	ChildID    string    `json:"childId,omitempty"`
}

func (b *LogicBlock) UnmarshalJSON(data []byte) error {
	type rawBlock LogicBlock
	var raw rawBlock
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = LogicBlock(raw)
	if b.Type == "on-is-captured" {
		b.Type = string(TriggerCaptured)
	}
	b.Kind = BlockKind(strings.ToLower(string(b.Kind)))
	return nil
}

// LogicGraph is a flat list of blocks linked through ChildID
type LogicGraph []LogicBlock

// Triggers returns trigger blocks of the given type in declaration order
func (g LogicGraph) Triggers(t TriggerType) []LogicBlock {
	var out []LogicBlock
	for _, b := range g {
		if b.Kind == BlockTrigger && b.Type == string(t) {
			out = append(out, b)
		}
	}
	return out
}

// Block finds a block by instance id
func (g LogicGraph) Block(instanceID string) (LogicBlock, bool) {
	for _, b := range g {
		if b.InstanceID == instanceID {
			return b, true
		}
	}
	return LogicBlock{}, false
}

// Clone returns an independent copy
func (g LogicGraph) Clone() LogicGraph {
	if g == nil {
		return nil
	}
	out := make(LogicGraph, len(g))
	for i, b := range g {
		out[i] = b
		if b.Sockets != nil {
			out[i].Sockets = make(Sockets, len(b.Sockets))
			for k, v := range b.Sockets {
				out[i].Sockets[k] = v
			}
		}
	}
	return out
}

// SquareLogic is behaviour attached to a board square
type SquareLogic struct {
	Square    Square
	Logic     LogicGraph
	Variables Variables
}

// Clone returns an independent copy
func (s *SquareLogic) Clone() *SquareLogic {
	return &SquareLogic{
		Square:    s.Square,
		Logic:     s.Logic.Clone(),
		Variables: s.Variables.Clone(),
	}
}
