// Package grpcserver exposes the statistics service over gRPC.
package grpcserver

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"malstats/internal/list"
	"malstats/internal/report"
	"malstats/internal/source"
	"malstats/internal/stats"
	"malstats/internal/store"
	"malstats/pkg/logger"
)

const ServiceName = "malstats.Stats"

type SummaryRequest struct {
	UserName string `json:"user_name"`
}

type HistogramRequest struct {
	UserName        string `json:"user_name"`
	Kind            string `json:"kind"`
	IncludeUnscored bool   `json:"include_unscored"`
}

type HistogramResponse struct {
	Kind      string `json:"kind"`
	Histogram []int  `json:"histogram"`
}

type TagsRequest struct {
	UserName string `json:"user_name"`
	Kind     string `json:"kind"`
}

type TagsResponse struct {
	Enabled        bool     `json:"enabled"`
	ImproperTagged []string `json:"improper_tagged"`
}

// StatsServer is the server side of malstats.Stats.
type StatsServer interface {
	Summary(context.Context, *SummaryRequest) (*report.Summary, error)
	Histogram(context.Context, *HistogramRequest) (*HistogramResponse, error)
	ImproperTagged(context.Context, *TagsRequest) (*TagsResponse, error)
}

type Server struct {
	Service *stats.Service
}

func NewServer(svc *stats.Service) *Server {
	return &Server{Service: svc}
}

func (s *Server) Summary(ctx context.Context, req *SummaryRequest) (*report.Summary, error) {
	if req == nil || strings.TrimSpace(req.UserName) == "" {
		return nil, status.Error(codes.InvalidArgument, "user_name required")
	}
	sum, err := s.Service.Summary(ctx, req.UserName)
	if err != nil {
		return nil, toStatus(err)
	}
	return sum, nil
}

func (s *Server) Histogram(ctx context.Context, req *HistogramRequest) (*HistogramResponse, error) {
	if req == nil || strings.TrimSpace(req.UserName) == "" || strings.TrimSpace(req.Kind) == "" {
		return nil, status.Error(codes.InvalidArgument, "user_name and kind required")
	}
	hist, err := s.Service.Histogram(ctx, req.UserName, req.Kind, req.IncludeUnscored)
	if err != nil {
		return nil, toStatus(err)
	}
	return &HistogramResponse{Kind: req.Kind, Histogram: hist}, nil
}

func (s *Server) ImproperTagged(ctx context.Context, req *TagsRequest) (*TagsResponse, error) {
	if req == nil || strings.TrimSpace(req.UserName) == "" || strings.TrimSpace(req.Kind) == "" {
		return nil, status.Error(codes.InvalidArgument, "user_name and kind required")
	}
	titles, err := s.Service.ImproperTagged(ctx, req.UserName, req.Kind)
	if err != nil {
		return nil, toStatus(err)
	}
	return &TagsResponse{Enabled: s.Service.Policy.Enabled, ImproperTagged: titles}, nil
}

func toStatus(err error) error {
	var cfgErr *list.ConfigError
	switch {
	case errors.As(err, &cfgErr), errors.Is(err, stats.ErrUserRequired), errors.Is(err, stats.ErrUnknownKind):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, source.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, list.ErrNoScores), errors.Is(err, list.ErrEmptyPartial), errors.Is(err, stats.ErrNoLiveSource):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// LoggingInterceptor logs every unary call with its duration and code.
func LoggingInterceptor(log logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		fields := []logger.Field{
			logger.String("method", info.FullMethod),
			logger.String("code", status.Code(err).String()),
			logger.Duration("took", time.Since(start)),
		}
		if status.Code(err) == codes.Internal {
			log.Error("[grpc] call failed", fields...)
		} else {
			log.Info("[grpc] call", fields...)
		}
		return resp, err
	}
}

// NewGRPCServer builds a grpc.Server with malstats.Stats registered.
func NewGRPCServer(impl StatsServer, log logger.Logger, opts ...grpc.ServerOption) *grpc.Server {
	if log == nil {
		log = logger.NewNop()
	}
	opts = append([]grpc.ServerOption{grpc.UnaryInterceptor(LoggingInterceptor(log))}, opts...)
	srv := grpc.NewServer(opts...)
	srv.RegisterService(&ServiceDesc, impl)
	return srv
}
