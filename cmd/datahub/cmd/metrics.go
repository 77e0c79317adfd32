package cmd

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/oneconcern/datahub/pkg/metrics"
)

var (
	cliMetrics    *metrics.Metrics
	metricsServer *http.Server
)

// startMetrics serves prometheus metrics while the command runs, when an address is configured
func startMetrics() error {
	addr := viper.GetString(keyMetricsAddr)
	if addr == "" {
		return nil
	}
	cliMetrics = metrics.New()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", cliMetrics.Handler())
	metricsServer = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		_ = metricsServer.Serve(listener)
	}()
	infoLogger.Printf("serving metrics on http://%s/metrics", listener.Addr())
	return nil
}

func stopMetrics() {
	if metricsServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(ctx)
	metricsServer = nil
}
