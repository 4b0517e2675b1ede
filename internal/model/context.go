package model

// Outcome collects the flags effects raise while a move is evaluated.
// One Outcome is shared by every trigger fired for the same move.
type Outcome struct {
	Prevented        bool
	MovePrevented    bool
	CapturePrevented bool
	GameWon          bool
	Winner           Color
}

// Vetoed reports whether any effect asked for the move to be undone
func (o *Outcome) Vetoed() bool {
	return o != nil && (o.Prevented || o.MovePrevented || o.CapturePrevented)
}

// TriggerContext describes the event a trigger is reacting to
type TriggerContext struct {
	// Mover is the piece making the current move, if any
	Mover *Piece
	// Captured is the piece taken by the current move, if any
	Captured *Piece
	// Attacker is the threatening or capturing piece
	Attacker *Piece
	// Piece is the subject of square triggers and threat targets
	Piece *Piece

	From   Square
	To     Square
	Square Square

	// IsAttacked is true when the destination was attacked by the
	// opponent before the move
	IsAttacked bool

	// Variable names the variable that changed for on-var
	Variable string

	Outcome *Outcome
}

// WithVariable returns a copy of the context for an on-var cascade
func (c TriggerContext) WithVariable(name string) TriggerContext {
	c.Variable = name
	return c
}
