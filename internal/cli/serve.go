package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/forPelevin/scenarist/internal/api"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve one editing session over a local JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			sess, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			if !sess.CanGenerate() {
				log.Warn().Msg("no generation key configured; rewrite and metadata are disabled")
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			srv := api.NewServer(addr, sess, log.Logger.With().Str("component", "api").Logger())
			return srv.Start(ctx)
		},
	}
	cmd.Flags().String("addr", "127.0.0.1:8080", "Listen address")
	return cmd
}
