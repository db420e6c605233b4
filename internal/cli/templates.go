package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Show or replace the lead templates and closing text",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			cfg := sess.Templates()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "【誘導文テンプレート】")
			fmt.Fprintln(out, cfg.LeadTemplates)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "【締めの定型文】")
			fmt.Fprintln(out, cfg.ClosingText)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Replace templates from files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			leadFile, _ := cmd.Flags().GetString("lead-file")
			closingFile, _ := cmd.Flags().GetString("closing-file")
			if leadFile == "" && closingFile == "" {
				return errors.New("--lead-file or --closing-file is required")
			}

			sess, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			cfg := sess.Templates()
			if leadFile != "" {
				b, err := os.ReadFile(leadFile)
				if err != nil {
					return err
				}
				cfg.LeadTemplates = strings.TrimSpace(string(b))
			}
			if closingFile != "" {
				b, err := os.ReadFile(closingFile)
				if err != nil {
					return err
				}
				cfg.ClosingText = strings.TrimSpace(string(b))
			}
			if err := sess.SetTemplates(cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "templates saved")
			return nil
		},
	}
	set.Flags().String("lead-file", "", "File with lead templates")
	set.Flags().String("closing-file", "", "File with the closing text")

	cmd.AddCommand(show, set)
	return cmd
}
