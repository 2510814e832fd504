package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"malstats/internal/report"
)

const (
	summaryMethod   = "/" + ServiceName + "/Summary"
	histogramMethod = "/" + ServiceName + "/Histogram"
	tagsMethod      = "/" + ServiceName + "/ImproperTagged"
)

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StatsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Summary", Handler: summaryHandler},
		{MethodName: "Histogram", Handler: histogramHandler},
		{MethodName: "ImproperTagged", Handler: tagsHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func summaryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SummaryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StatsServer).Summary(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: summaryMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(StatsServer).Summary(ctx, req.(*SummaryRequest))
	})
}

func histogramHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(HistogramRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StatsServer).Histogram(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: histogramMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(StatsServer).Histogram(ctx, req.(*HistogramRequest))
	})
}

func tagsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(TagsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StatsServer).ImproperTagged(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: tagsMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(StatsServer).ImproperTagged(ctx, req.(*TagsRequest))
	})
}

// Client calls malstats.Stats with the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Summary(ctx context.Context, in *SummaryRequest, opts ...grpc.CallOption) (*report.Summary, error) {
	out := new(report.Summary)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, summaryMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Histogram(ctx context.Context, in *HistogramRequest, opts ...grpc.CallOption) (*HistogramResponse, error) {
	out := new(HistogramResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, histogramMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ImproperTagged(ctx context.Context, in *TagsRequest, opts ...grpc.CallOption) (*TagsResponse, error) {
	out := new(TagsResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, tagsMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
