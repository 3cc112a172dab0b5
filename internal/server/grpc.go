package server

import (
	"context"
	"encoding/base64"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// messageHeadroom covers the Struct envelope and the non-document fields.
const messageHeadroom = 1 << 20

// MessageLimit is the gRPC message size needed to carry a base64 document of
// maxDocBytes decoded bytes.
func MessageLimit(maxDocBytes int) int {
	return base64.StdEncoding.EncodedLen(maxDocBytes) + messageHeadroom
}

// NewGRPCServer registers the extraction and health services on a new
// grpc.Server. Message limits follow svc's document limit when it reports
// one, DefaultMaxDocumentBytes otherwise; opts may override them. The health
// server reports SERVING for both the overall server and ExtractionService.
func NewGRPCServer(svc ExtractionServer, logger *slog.Logger, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = slog.Default()
	}
	maxDoc := DefaultMaxDocumentBytes
	if sized, ok := svc.(interface{ MaxDocumentBytes() int }); ok {
		maxDoc = sized.MaxDocumentBytes()
	}
	limit := MessageLimit(maxDoc)
	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(loggingInterceptor(logger)),
		grpc.MaxRecvMsgSize(limit),
		grpc.MaxSendMsgSize(limit),
	}, opts...)
	s := grpc.NewServer(opts...)
	RegisterExtractionServer(s, svc)

	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, hs)
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	return s, hs
}

func loggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("grpc.request",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}
