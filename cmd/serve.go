package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/thellimist/openapi-client-generator/internal/logging"
	"github.com/thellimist/openapi-client-generator/internal/rpc"
)

const banner = "OpenAPI Client Generator MCP server running on stdio"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the MCP tool over stdin/stdout (the default)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Log)
	defer logger.Sync() //nolint:errcheck

	d, err := newDispatcher(cfg, logger)
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	srv := rpc.NewStreamServer(d, os.Stdout, logger)
	fmt.Fprintln(cmd.ErrOrStderr(), banner)
	logger.Info("server started",
		zap.String("name", cfg.Server.Name),
		zap.String("version", cfg.Server.Version),
		zap.String("backend", string(cfg.Generator.Backend)),
		zap.Strings("tools", d.ToolNames()),
	)

	g := new(errgroup.Group)
	g.Go(func() error {
		defer cancel()
		return srv.Serve(ctx, os.Stdin)
	})
	g.Go(func() error {
		<-ctx.Done()
		if sigCtx.Err() != nil {
			logger.Info("received signal, shutting down")
		} else {
			logger.Info("stdin closed, shutting down")
		}
		return nil
	})
	return g.Wait()
}
