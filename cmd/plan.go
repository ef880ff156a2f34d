package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/boekenzolder/stackscan/internal/location"
	"github.com/boekenzolder/stackscan/internal/models"
	"github.com/boekenzolder/stackscan/internal/traversal"
)

func newPlanCmd() *cobra.Command {
	var rows int
	var columns string
	var faces string
	var prefix string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the bulk traversal walk for a shelf grid",
		Long: `Prints every (row, column, face) stop of a bulk capture walk in
order, as a reference sheet for the operator photographing the shelves.`,
		Example: `  # Full walk over a 6x7 grid, both faces
  stackscan plan --rows 6 --columns A,B,C,D,E,F,G

  # Front faces only, with a custom location prefix
  stackscan plan --rows 2 --columns A,B --faces front --prefix Hendrik`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var faceOrder []models.Face
			for _, part := range strings.Split(faces, ",") {
				face := models.Face(strings.TrimSpace(part))
				if !face.Valid() {
					return fmt.Errorf("unknown face %q", part)
				}
				faceOrder = append(faceOrder, face)
			}

			locations := traversal.Generate(rows, columns, faceOrder, prefix)
			if len(locations) == 0 {
				return fmt.Errorf("empty walk: check rows, columns and faces")
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"#", "Location", "Face"})
			for i, stop := range locations {
				t.AppendRow(table.Row{
					i + 1,
					location.Encode(stop.Row, stop.Column, stop.Prefix),
					stop.Face,
				})
			}
			t.Render()

			fmt.Printf("%d stops\n", len(locations))
			return nil
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 6, "Number of shelf rows")
	cmd.Flags().StringVar(&columns, "columns", "A,B,C,D,E,F,G", "Comma separated column letters")
	cmd.Flags().StringVar(&faces, "faces", "front,back", "Face order, comma separated")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Optional location prefix")

	return cmd
}
