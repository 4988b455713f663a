package cmd

import (
	"context"
	"errors"
	"log"

	"github.com/spf13/cobra"

	"github.com/ramanasai/amal/internal/web"
)

var serveAddr string

// serveCmd exposes the plan over a JSON API until interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *runtime) error {
			addr := serveAddr
			if addr == "" {
				addr = rt.cfg.Server.Addr
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			rt.startReminder(ctx)
			go func() {
				if err := rt.ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Printf("controller: %v", err)
				}
			}()

			log.Printf("amal api listening on http://%s/api", addr)
			return web.NewServer(rt.ctrl).Run(ctx, addr)
		})
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default server.addr from config)")
}
