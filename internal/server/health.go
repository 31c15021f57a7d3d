package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// IndexStats reports the size of the loaded similarity index.
type IndexStats interface {
	Len() int
	Dim() int
}

type healthHandler struct {
	index    IndexStats
	provider string
}

func (h healthHandler) healthz(c *gin.Context) {
	body := gin.H{"status": "ok", "provider": h.provider}
	if h.index != nil {
		body["index_chunks"] = h.index.Len()
		body["index_dim"] = h.index.Dim()
	}
	c.JSON(http.StatusOK, body)
}

// NewGRPCHealth builds a gRPC server exposing grpc.health.v1 with the
// overall service marked SERVING.
func NewGRPCHealth() (*grpc.Server, *health.Server) {
	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return gs, hs
}

// ServeGRPCHealth serves the health service on addr until ctx is done.
func ServeGRPCHealth(ctx context.Context, addr string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("grpc health listen %s: %w", addr, err)
	}
	gs, hs := NewGRPCHealth()

	errCh := make(chan error, 1)
	go func() { errCh <- gs.Serve(lis) }()
	logger.Info("grpc.health.serving", "addr", lis.Addr().String())

	select {
	case <-ctx.Done():
		hs.Shutdown()
		gs.GracefulStop()
		return nil
	case err := <-errCh:
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	}
}
