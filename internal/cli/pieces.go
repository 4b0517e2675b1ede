package cli

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/chesspie/internal/api/response"
	"github.com/mcoot/chesspie/internal/model"
)

func newPiecesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pieces",
		Short: "Custom piece library commands",
	}

	cmd.AddCommand(newPiecesListCmd())
	cmd.AddCommand(newPiecesGetCmd())
	cmd.AddCommand(newPiecesLoadCmd())
	cmd.AddCommand(newPiecesDeleteCmd())

	return cmd
}

func newPiecesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List piece definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.PieceList
			if err := client.Get("/api/v1/pieces", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newPiecesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id-or-name>",
		Short: "Show a piece definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result model.PieceDefinition
			if err := client.Get("/api/v1/pieces/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newPiecesLoadCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "load -f <pieces.json>",
		Short: "Upload piece definitions to the library",
		Long: `Upload piece definitions. The file holds either a JSON array of
definitions or an object with a "pieces" array. Nothing is saved when
any definition is invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readJSONFile(file)
			if err != nil {
				return err
			}

			var result response.PiecesSaved
			if err := client.Post("/api/v1/pieces", body, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Piece definitions file, - for stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newPiecesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id-or-name>",
		Short: "Remove a piece definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/pieces/" + url.PathEscape(args[0])); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Piece deleted")
			return nil
		},
	}
}
