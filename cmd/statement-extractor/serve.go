package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/statement-extractor/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gRPC extraction service",
	RunE:  runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides GRPC_ADDR, default :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newJSONLogger(os.Stdout, cfg.LogLevel)

	addr := cfg.Server.GRPCAddr
	if serveAddr != "" {
		addr = serveAddr
	}
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	extractor, err := newExtractor(cfg, logger)
	if err != nil {
		logger.Error("pdf tools unavailable", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", addr, "error", err)
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	svc := server.NewExtractionService(extractor, logger, server.WithMaxDocumentBytes(cfg.Server.MaxDocumentBytes))
	grpcServer, health := server.NewGRPCServer(svc, logger)

	errCh := make(chan error, 1)
	logger.Info("statement-extractor listening", "addr", addr)
	go func() {
		errCh <- grpcServer.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		health.Shutdown()
		grpcServer.GracefulStop()
		return nil
	case err := <-errCh:
		if err != nil {
			logger.Error("gRPC serve error", "error", err)
		}
		return err
	}
}
