package grpc

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/example/storeadmin/pkg/config"
	"github.com/example/storeadmin/pkg/discovery"
)

// Discoverer resolves a service name to its registered instances.
type Discoverer interface {
	Discover(ctx context.Context, serviceName string) ([]*discovery.ServiceInstance, error)
}

// ClientManager manages the gRPC connection to the order admin service
type ClientManager struct {
	config    *config.ServerConfig
	discovery Discoverer
	logger    *zap.Logger
	dialOpts  []grpc.DialOption
	target    string

	orderClient *OrderAdminClient
	orderConn   *grpc.ClientConn
}

// NewClientManager creates a new gRPC client manager. disc may be nil, in
// which case the configured server address is used.
func NewClientManager(cfg *config.ServerConfig, logger *zap.Logger, disc Discoverer, opts ...grpc.DialOption) *ClientManager {
	return &ClientManager{
		config:    cfg,
		discovery: disc,
		logger:    logger,
		dialOpts:  opts,
	}
}

// Connect resolves the service and creates the client connection. The
// connection itself is established lazily on the first call.
func (m *ClientManager) Connect(ctx context.Context) error {
	target := m.resolve(ctx)
	m.logger.Info("Connecting to order admin service", zap.String("target", target))

	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}, m.dialOpts...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to order admin service: %w", err)
	}

	m.orderConn = conn
	m.orderClient = NewOrderAdminClient(conn)
	return nil
}

// SetTarget pins the server address, bypassing config and discovery.
func (m *ClientManager) SetTarget(target string) {
	m.target = target
}

func (m *ClientManager) resolve(ctx context.Context) string {
	if m.target != "" {
		return m.target
	}
	target := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)
	if m.discovery == nil {
		return target
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	instances, err := m.discovery.Discover(ctx, m.config.Name)
	if err == nil && len(instances) > 0 {
		target = instances[0].Addr()
		m.logger.Info("Discovered order admin service", zap.String("address", target))
	} else {
		m.logger.Info("Using default address for order admin service", zap.String("address", target))
	}
	return target
}

// OrderClient returns the order admin gRPC client
func (m *ClientManager) OrderClient() *OrderAdminClient {
	return m.orderClient
}

// Close closes the gRPC connection
func (m *ClientManager) Close() error {
	if m.orderConn == nil {
		return nil
	}
	if err := m.orderConn.Close(); err != nil {
		return fmt.Errorf("order connection close error: %w", err)
	}
	return nil
}
