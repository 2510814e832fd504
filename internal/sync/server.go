package sync

import (
	"bufio"
	"context"
	"errors"
	"net"

	"malstats/pkg/logger"
)

// Server accepts TCP clients that receive one JSON event per line.
type Server struct {
	Addr string
	Hub  *Hub
	Log  logger.Logger
}

func NewServer(addr string, hub *Hub, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	return &Server{Addr: addr, Hub: hub, Log: log}
}

// Run listens until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.Log.Info("[tcp-sync] listening", logger.String("addr", ln.Addr().String()))

	go func() {
		<-ctx.Done()
		_ = ln.Close()
		s.Hub.CloseAll()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.Log.Warn("[tcp-sync] accept", logger.Error(err))
			continue
		}

		_, _ = conn.Write(s.Hub.welcome("tcp"))
		s.Hub.Add(conn)
		s.Log.Info("[tcp-sync] client connected", logger.String("remote", conn.RemoteAddr().String()))

		go func(c net.Conn) {
			defer func() {
				s.Hub.Remove(c)
				s.Log.Info("[tcp-sync] client disconnected", logger.String("remote", c.RemoteAddr().String()))
			}()

			// Incoming lines are ignored; reading detects the disconnect.
			sc := bufio.NewScanner(c)
			for sc.Scan() {
			}
		}(conn)
	}
}
