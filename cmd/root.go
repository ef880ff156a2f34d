package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stackscan",
		Short: "Book stack inventory tool with vision-LLM recognition",
		Long: `Stackscan turns photos of physical book stacks into structured
inventory records.

Each photo is sent to a vision-capable LLM, the recognized titles and
authors are stamped with their shelf location, and the records accumulate
under a named session.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newPlanCmd())

	return cmd
}
