package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dqcheck/dqcheck/internal/adapters/outbound/tui"
	"github.com/dqcheck/dqcheck/internal/domain/engine"
)

func newExpectationsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "expectations",
		Short: "List supported expectation types",
		RunE: func(cmd *cobra.Command, args []string) error {
			types := engine.Types()
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(types)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderExpectations(types))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
