package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/chesspie/internal/engine"
	"github.com/mcoot/chesspie/internal/model"
	"github.com/mcoot/chesspie/internal/services/library"
)

func newReplayCmd() *cobra.Command {
	var (
		file       string
		piecesFile string
		verify     bool
	)

	cmd := &cobra.Command{
		Use:   "replay -f <config.json> [from:to[=promotion] ...]",
		Short: "Play moves offline against a board configuration",
		Long: `Run the rules engine in-process: build the board from a configuration
file, apply each move in order and print the resulting position. No server
is contacted.

Moves are written from:to, e.g. e2:e4, with an optional =type suffix
for promotion (e7:e8=queen). Canonical keys work too (4,6:4,4).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readJSONFile(file)
			if err != nil {
				return err
			}
			var gameCfg model.GameConfig
			if err := json.Unmarshal(raw, &gameCfg); err != nil {
				return fmt.Errorf("%w: %w", model.ErrInvalidConfig, err)
			}

			if piecesFile != "" {
				data, err := readJSONFile(piecesFile)
				if err != nil {
					return err
				}
				defs, err := library.Decode(data)
				if err != nil {
					return err
				}
				gameCfg.CustomPieces = append(gameCfg.CustomPieces, defs...)
			}

			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			effectsOut := cmd.OutOrStdout()
			if cfg.Output == "json" {
				effectsOut = io.Discard
			}
			g, err := replayMoves(gameCfg, args, effectsOut, logger)
			if err != nil {
				return err
			}

			if verify {
				if err := verifyReplay(gameCfg, g, logger); err != nil {
					return err
				}
				logger.Info("replay verified", slog.Int("moves", len(g.History())))
			}

			out := NewOutput(cfg.Output)
			out.w = cmd.OutOrStdout()
			out.Print(g.View())
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Game configuration file, - for stdin")
	cmd.Flags().StringVar(&piecesFile, "pieces", "", "Additional piece definitions file")
	cmd.Flags().BoolVar(&verify, "verify", false, "Check that replaying the recorded history reproduces the final board")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// parseMoveArg splits "from:to[=promotion]"
func parseMoveArg(arg string) (from, to string, opts model.MoveOptions, err error) {
	move, promotion, _ := strings.Cut(arg, "=")
	from, to, ok := strings.Cut(move, ":")
	if !ok || from == "" || to == "" {
		return "", "", opts, fmt.Errorf("invalid move %q: want from:to", arg)
	}
	opts.Promotion = promotion
	return from, to, opts, nil
}

// replayMoves builds a session from cfg and applies moves in order,
// writing fired effects to w
func replayMoves(cfg model.GameConfig, moves []string, w io.Writer, logger *slog.Logger) (*engine.Game, error) {
	g, err := engine.New(cfg, engine.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	n := 0
	g.AddEffectListener(func(e model.EffectEvent) {
		fmt.Fprintf(w, "  move %d: %s at %s\n", n, e.Type, e.Label)
	})

	for i, arg := range moves {
		n = i + 1
		from, to, opts, err := parseMoveArg(arg)
		if err != nil {
			return nil, err
		}
		if g.State() == model.GameStateEnded {
			return nil, fmt.Errorf("move %d (%s): %w", n, arg, model.ErrGameEnded)
		}
		if _, err := g.Normalize(from); err != nil {
			return nil, fmt.Errorf("move %d (%s): %w", n, arg, err)
		}
		if _, err := g.Normalize(to); err != nil {
			return nil, fmt.Errorf("move %d (%s): %w", n, arg, err)
		}
		if !g.MakeMove(from, to, opts) {
			return nil, fmt.Errorf("move %d (%s): %w", n, arg, model.ErrMoveRejected)
		}
	}
	return g, nil
}

// verifyReplay rebuilds g from its recorded history and compares boards
func verifyReplay(cfg model.GameConfig, g *engine.Game, logger *slog.Logger) error {
	replayed, err := engine.Replay(cfg, g.History(), engine.WithLogger(logger))
	if err != nil {
		return err
	}
	if !reflect.DeepEqual(replayed.Snapshot(), g.Snapshot()) {
		return fmt.Errorf("%w: replayed board differs from live board", model.ErrReplayMismatch)
	}
	return nil
}
