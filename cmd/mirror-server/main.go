package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"malstats/internal/mirror"
	"malstats/internal/store"
	"malstats/pkg/database"
	"malstats/pkg/logger"
	"malstats/pkg/utils"
)

func main() {
	var (
		cfgFile  string
		addr     string
		pageSize int
	)
	cmd := &cobra.Command{
		Use:           "mirror-server",
		Short:         "Serve stored snapshots in the public load.json list format",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfgFile, addr, pageSize)
		},
	}
	cmd.Flags().StringVar(&cfgFile, "config", "", "config file")
	cmd.Flags().StringVar(&addr, "addr", ":9000", "listen address")
	cmd.Flags().IntVar(&pageSize, "page-size", mirror.DefaultPageSize, "rows per page")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgFile, addr string, pageSize int) error {
	cfg, err := utils.Load(cfgFile)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := database.OpenAndMigrate(database.Config{Path: cfg.Database.Path})
	if err != nil {
		return err
	}
	defer db.Close()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	h := mirror.NewHandler(store.NewRepo(db), log)
	h.PageSize = pageSize
	h.RegisterRoutes(router)

	srv := &http.Server{Addr: addr, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("[mirror] listening", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
