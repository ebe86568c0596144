package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/housing-explorer/internal/logging"
	"github.com/KaramelBytes/housing-explorer/internal/server"
)

var (
	svAddr      string
	svMaxUpload int64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard panels over a JSON HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		loader, err := newLoader(c)
		if err != nil {
			return err
		}
		sc := server.DefaultConfig()
		if c.ServerAddr != "" {
			sc.Addr = c.ServerAddr
		}
		if c.MaxUploadBytes > 0 {
			sc.MaxUploadBytes = c.MaxUploadBytes
		}
		if cmd.Flags().Changed("addr") {
			sc.Addr = svAddr
		}
		if cmd.Flags().Changed("max-upload") && svMaxUpload > 0 {
			sc.MaxUploadBytes = svMaxUpload
		}

		dc := dashboardConfig(c)
		if _, err := os.Stat(dc.BuiltinPath); err != nil {
			fmt.Fprintf(os.Stderr, "⚠ Warning: builtin dataset %s is not readable: %v\n", dc.BuiltinPath, err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log := logging.Get()
		srv := server.New(sc, dc, loader, log)
		fmt.Printf("✓ Serving on http://%s (Ctrl+C to stop)\n", sc.Addr)
		if err := srv.Run(ctx); err != nil {
			return err
		}
		log.Info("server stopped", zap.String("addr", sc.Addr))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&svAddr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	serveCmd.Flags().Int64Var(&svMaxUpload, "max-upload", 0, "maximum upload size in bytes (default from config)")
}
