package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"malstats/pkg/logger"
)

func watchCommand() *cobra.Command {
	var (
		addr   string
		pretty bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print snapshot events from the TCP sync server, reconnecting on failure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = cfg.Server.SyncAddr
			}
			ctx := cmd.Context()
			for {
				if err := watch(ctx, addr, pretty); err != nil && ctx.Err() == nil {
					log.Warn("[sync-client] disconnected", logger.Error(err))
				}
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(time.Second):
				}
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "sync server address (default server.sync_addr)")
	cmd.Flags().BoolVar(&pretty, "pretty", true, "indent JSON events")
	return cmd
}

func watch(ctx context.Context, addr string, pretty bool) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	log.Info("[sync-client] connected", logger.String("addr", addr))

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		line := sc.Bytes()
		if !pretty {
			fmt.Println(string(line))
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(line, &obj); err != nil {
			fmt.Println(string(line))
			continue
		}
		b, _ := json.MarshalIndent(obj, "", "  ")
		fmt.Println(string(b))
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return fmt.Errorf("connection closed")
}
