package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/chesspie/internal/api/request"
	"github.com/mcoot/chesspie/internal/api/response"
	"github.com/mcoot/chesspie/internal/model"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameCreateCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameListCmd())
	cmd.AddCommand(newGameMoveCmd())
	cmd.AddCommand(newGameMovesCmd())
	cmd.AddCommand(newGameUndoCmd())
	cmd.AddCommand(newGameEndCmd())
	cmd.AddCommand(newGameSummaryCmd())
	cmd.AddCommand(newGameDeleteCmd())

	return cmd
}

func gamePath(id string, suffix string) string {
	return "/api/v1/games/" + url.PathEscape(id) + suffix
}

// readJSONFile reads a JSON document from path, or from stdin when path is "-"
func readJSONFile(path string) (json.RawMessage, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s: not valid JSON", path)
	}
	return json.RawMessage(data), nil
}

func newGameCreateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create -f <config.json>",
		Short: "Create a game from a board configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readJSONFile(file)
			if err != nil {
				return err
			}

			var result model.GameView
			if err := client.Post("/api/v1/games", body, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Game configuration file, - for stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <game-id>",
		Short: "Get current game state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result model.GameView
			if err := client.Get(gamePath(args[0], ""), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newGameListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List games, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.GameList
			if err := client.Get("/api/v1/games", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newGameMoveCmd() *cobra.Command {
	var promotion string

	cmd := &cobra.Command{
		Use:   "move <game-id> <from> <to>",
		Short: "Move a piece for the side on turn",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.MoveRequest{From: args[1], To: args[2], Promotion: promotion}

			var result model.MoveResult
			if err := client.Post(gamePath(args[0], "/moves"), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&promotion, "promotion", "", "Piece type to promote to")
	return cmd
}

func newGameMovesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "moves <game-id> <from>",
		Short: "List the squares the piece on <from> can move to",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.LegalMoves
			if err := client.Get(gamePath(args[0], "/moves?from="+url.QueryEscape(args[1])), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newGameUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo <game-id>",
		Short: "Take back the last move",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result model.GameView
			if err := client.Post(gamePath(args[0], "/undo"), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newGameEndCmd() *cobra.Command {
	var winner, reason string

	cmd := &cobra.Command{
		Use:   "end <game-id>",
		Short: "End a game; without --winner it is a draw",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.EndGameRequest{Winner: model.Color(winner), Reason: reason}

			var result model.GameView
			if err := client.Post(gamePath(args[0], "/end"), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&winner, "winner", "", "Winning color: white or black")
	cmd.Flags().StringVar(&reason, "reason", "", "Reason recorded with the result")
	return cmd
}

func newGameSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <game-id>",
		Short: "Show material and result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result model.Summary
			if err := client.Get(gamePath(args[0], "/summary"), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newGameDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <game-id>",
		Short: "Delete a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(gamePath(args[0], "")); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Game deleted")
			return nil
		},
	}
}
