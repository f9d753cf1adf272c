package main

import (
	"context"
	"net"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/metalaw/internal/httpapi"
	"github.com/danielpatrickdp/metalaw/internal/ledger"
	"github.com/danielpatrickdp/metalaw/internal/metrics"
	"github.com/danielpatrickdp/metalaw/internal/rpc"
)

func newServeCommand(a *app) *cobra.Command {
	var grpcAddr, httpAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve predictions over gRPC and HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if grpcAddr == "" {
				grpcAddr = a.cfg.Server.GRPCAddr
			}
			if httpAddr == "" {
				httpAddr = a.cfg.Server.HTTPAddr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, grpcAddr, httpAddr)
		},
	}
	cmd.Flags().StringVar(&grpcAddr, "grpc-addr", "", "gRPC listen address (overrides server.grpc_addr)")
	cmd.Flags().StringVar(&httpAddr, "http-addr", "", "HTTP listen address (overrides server.http_addr)")
	return cmd
}

// serve runs both surfaces against one synthesizer, ledger and registry until
// ctx ends or either listener fails.
func (a *app) serve(ctx context.Context, grpcAddr, httpAddr string) error {
	store, err := a.openLedger()
	if err != nil {
		return err
	}
	defer store.Close()

	m := metrics.New(nil)
	synth, err := a.synthesizer(m, ledger.NewRecorder(store, "serve", a.logger))
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", grpcAddr)
	}
	gs := rpc.NewServer(synth, a.logger).Register()
	api := httpapi.New(synth,
		httpapi.WithLedger(store),
		httpapi.WithMetrics(m.Handler()),
		httpapi.WithLogger(a.logger),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Infow("grpc listening", "addr", lis.Addr().String(), "service", rpc.ServiceName)
		return gs.Serve(lis)
	})
	g.Go(func() error {
		<-ctx.Done()
		gs.GracefulStop()
		return nil
	})
	g.Go(func() error {
		a.logger.Infow("http listening", "addr", httpAddr)
		return api.Serve(ctx, httpAddr)
	})

	err = g.Wait()
	a.logger.Infow("stopped")
	return err
}
