package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/example/storeadmin/pkg/config"
	"github.com/example/storeadmin/pkg/discovery"
	"github.com/example/storeadmin/pkg/grpc"
	"github.com/example/storeadmin/pkg/models"
)

const usage = `usage: ordersctl [flags] <command> [args]

commands:
  list                  list cached orders (--category, --query, --sort)
  get <id>              show one order with its category and actions
  set-status <id> <s>   set the status of one order
  counts                badge counts per display category
`

func main() {
	configPath := flag.StringP("config", "c", "config/config.yaml", "path to the YAML config file")
	addr := flag.String("addr", "", "server address; overrides config and discovery")
	category := flag.String("category", "all", "display category filter for list")
	query := flag.String("query", "", "search term for list")
	sortBy := flag.String("sort", "recent", "list order: recent or none")
	timeout := flag.Duration("timeout", 10*time.Second, "request timeout")
	verbose := flag.BoolP("verbose", "v", false, "log connection details")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fail(fmt.Errorf("failed to load config: %w", err))
	}

	logger := zap.NewNop()
	if *verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			fail(err)
		}
	}
	defer logger.Sync()

	var disc grpc.Discoverer
	if *addr == "" && cfg.Etcd.Enabled {
		sd, err := discovery.NewServiceDiscovery(&cfg.Etcd)
		if err != nil {
			logger.Warn("Failed to connect to etcd", zap.Error(err))
		} else {
			defer sd.Close()
			disc = sd
		}
	}

	server := cfg.Server
	if server.Host == "0.0.0.0" {
		server.Host = "localhost"
	}
	cm := grpc.NewClientManager(&server, logger, disc)
	if *addr != "" {
		cm.SetTarget(*addr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := cm.Connect(ctx); err != nil {
		fail(err)
	}
	defer cm.Close()
	client := cm.OrderClient()

	var out interface{}
	switch args[0] {
	case "list":
		out, err = client.ListOrders(ctx, &grpc.ListOrdersRequest{Category: *category, Query: *query, Sort: *sortBy})
	case "get":
		if len(args) != 2 {
			flag.Usage()
			os.Exit(2)
		}
		out, err = client.GetOrder(ctx, &grpc.GetOrderRequest{ID: args[1]})
	case "set-status":
		if len(args) != 3 {
			flag.Usage()
			os.Exit(2)
		}
		out, err = client.UpdateOrderStatus(ctx, &grpc.UpdateOrderStatusRequest{ID: args[1], Status: models.Status(args[2])})
	case "counts":
		out, err = client.CountOrders(ctx, &grpc.CountOrdersRequest{})
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fail(err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "ordersctl:", err)
	os.Exit(1)
}
