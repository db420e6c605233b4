package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/forPelevin/scenarist/internal/domain/captions"
)

func newWrapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wrap [file]",
		Short: "Print text broken into caption lines at clause punctuation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, _ := cmd.Flags().GetInt("line-target")
			slack, _ := cmd.Flags().GetInt("line-slack")

			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			b, err := io.ReadAll(r)
			if err != nil {
				return err
			}
			w := captions.Wrapper{Target: target, Slack: slack}
			for _, line := range w.Wrap(string(b)) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}
