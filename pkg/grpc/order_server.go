package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/example/storeadmin/pkg/config"
	"github.com/example/storeadmin/pkg/models"
	"github.com/example/storeadmin/pkg/orders"
)

// OrderServer serves the order cache over gRPC. Reads come from the cache;
// status writes go through the manager like any other mutation.
type OrderServer struct {
	manager *orders.Manager
	logger  *zap.Logger
	config  *config.ServerConfig

	srv    *grpc.Server
	health *health.Server
}

func NewOrderServer(cfg *config.ServerConfig, manager *orders.Manager, logger *zap.Logger) *OrderServer {
	s := &OrderServer{
		manager: manager,
		logger:  logger.Named("grpc"),
		config:  cfg,
		health:  health.NewServer(),
	}

	s.srv = grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor(s.logger)))
	RegisterOrderAdminServer(s.srv, s)
	healthpb.RegisterHealthServer(s.srv, s.health)
	reflection.Register(s.srv)
	s.health.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	return s
}

func (s *OrderServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.logger.Info("Order admin service started", zap.String("address", addr))
	return s.Serve(lis)
}

func (s *OrderServer) Serve(lis net.Listener) error {
	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Stop marks the service as not serving and drains in-flight calls.
func (s *OrderServer) Stop() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}

func (s *OrderServer) ListOrders(ctx context.Context, req *ListOrdersRequest) (*ListOrdersResponse, error) {
	category := req.Category
	if category == "" {
		category = string(orders.CategoryAll)
	}
	cat, ok := orders.ParseCategory(category)
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "unknown category %q", req.Category)
	}

	list := s.manager.Snapshot().Orders
	list = orders.FilterByCategory(list, cat)
	list = orders.Search(list, req.Query)
	switch req.Sort {
	case "", "recent":
		list = orders.SortedByRecency(list)
	case "none":
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown sort %q", req.Sort)
	}
	if list == nil {
		list = []models.Order{}
	}

	return &ListOrdersResponse{Orders: list, Total: len(list)}, nil
}

func (s *OrderServer) GetOrder(ctx context.Context, req *GetOrderRequest) (*GetOrderResponse, error) {
	o, ok := s.manager.Get(req.ID)
	if !ok {
		return nil, status.Error(codes.NotFound, "order not found")
	}
	cat := orders.DisplayCategory(o.Status)
	return &GetOrderResponse{Order: o, Category: cat, Actions: orders.StatusActions(cat)}, nil
}

func (s *OrderServer) UpdateOrderStatus(ctx context.Context, req *UpdateOrderStatusRequest) (*UpdateOrderStatusResponse, error) {
	if !req.Status.Valid() {
		return nil, status.Errorf(codes.InvalidArgument, "unknown status %q", req.Status)
	}
	if err := s.manager.UpdateStatus(ctx, req.ID, req.Status); err != nil {
		return nil, toStatus(err)
	}
	o, ok := s.manager.Get(req.ID)
	if !ok {
		return nil, status.Error(codes.NotFound, "order not found")
	}
	return &UpdateOrderStatusResponse{Order: o}, nil
}

func (s *OrderServer) CountOrders(ctx context.Context, _ *CountOrdersRequest) (*CountOrdersResponse, error) {
	return &CountOrdersResponse{Counts: orders.CountsByCategory(s.manager.Snapshot().Orders)}, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, orders.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, orders.ErrNoItems):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, orders.ErrStoreUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func loggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("gRPC request",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("latency", time.Since(start)),
		)
		return resp, err
	}
}
