package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"malstats/internal/app"
	"malstats/internal/grpcserver"
	"malstats/pkg/logger"
	"malstats/pkg/utils"
)

func main() {
	var cfgFile string
	cmd := &cobra.Command{
		Use:           "grpc-server",
		Short:         "Serve list statistics over gRPC with the JSON codec",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfgFile)
		},
	}
	cmd.Flags().StringVar(&cfgFile, "config", "", "config file")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgFile string) error {
	cfg, err := utils.Load(cfgFile)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	listener, err := net.Listen("tcp", cfg.Grpc.Addr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	srv := grpcserver.NewGRPCServer(grpcserver.NewServer(a.Service), log)
	go func() {
		<-ctx.Done()
		log.Info("[grpc] shutting down")
		srv.GracefulStop()
	}()

	log.Info("[grpc] listening", logger.String("addr", cfg.Grpc.Addr))
	if err := srv.Serve(listener); err != nil {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}
