package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forPelevin/scenarist/internal/ports/adapters/filestore"
)

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys stored in .env",
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Save API keys to .env (an empty value removes the key)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			updates := map[string]string{}
			for flag, key := range map[string]string{
				"gladia":     "GLADIA_API_KEY",
				"gemini":     "GEMINI_API_KEY",
				"openrouter": "OPENROUTER_API_KEY",
			} {
				if !cmd.Flags().Changed(flag) {
					continue
				}
				v, _ := cmd.Flags().GetString(flag)
				v = strings.TrimSpace(v)
				if v == keyPlaceholder {
					v = ""
				}
				updates[key] = v
			}
			if len(updates) == 0 {
				return errors.New("nothing to save: pass --gladia, --gemini or --openrouter")
			}
			if err := filestore.SaveEnv(envFile, updates); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %d key(s) to %s\n", len(updates), envFile)
			return nil
		},
	}
	set.Flags().String("gladia", "", "Gladia API key")
	set.Flags().String("gemini", "", "Gemini API key")
	set.Flags().String("openrouter", "", "OpenRouter API key")
	set.Flags().String("env-file", ".env", "dotenv file to update")

	cmd.AddCommand(set)
	return cmd
}
