package main

import (
	"context"
	"fmt"
	"net"

	"unblocker/src/config"
	control "unblocker/src/grpc_control"
	"unblocker/src/interfaces"
	"unblocker/src/logger"
	"unblocker/src/server"
	"unblocker/src/stats"

	"google.golang.org/grpc"
)

// runningServers keeps what main needs for a graceful shutdown
type runningServers struct {
	api    *server.FastAPIServer
	static *server.StaticServer
	grpc   *grpc.Server
	log    *logger.Logger
}

// -----------------------------------------------------------------------------

// startServers orchestrates the startup of all server components
func startServers(
	conf *config.Config,
	proxy interfaces.IProxyService,
	visitors *stats.VisitorStats,
	hub *server.Hub,
	appLogger *logger.Logger,
) *runningServers {
	rs := &runningServers{log: appLogger}

	// 1. API server + WebSocket hub
	rs.api = server.NewFastAPIServer(conf.MConfig, proxy, visitors, hub, appLogger.Named("FastAPIServer"))
	go func() {
		if err := rs.api.Start(); err != nil {
			appLogger.Critical("API server failed: %v", err)
		}
	}()

	// 2. Static portal server
	if conf.StaticPort != 0 {
		rs.static = server.NewStaticServer(conf.MConfig, appLogger.Named("StaticServer"))
		go func() {
			if err := rs.static.Start(); err != nil {
				appLogger.Error("Static server failed: %v", err)
			}
		}()
	}

	// 3. gRPC Control Server
	if conf.GrpcPort != 0 {
		host := conf.GrpcHost
		if host == "" {
			host = conf.Host
		}
		lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, conf.GrpcPort))
		if err != nil {
			appLogger.Critical("failed to listen for gRPC: %v", err)
			return rs
		}

		rs.grpc = grpc.NewServer()
		controlService := control.NewControlService(proxy, visitors, appLogger.Named("ControlService"))
		control.RegisterControlServer(rs.grpc, controlService)

		go func() {
			appLogger.Info("Starting gRPC Control Server on %s", lis.Addr())
			if err := rs.grpc.Serve(lis); err != nil {
				appLogger.Error("failed to serve gRPC: %v", err)
			}
		}()
	}

	return rs
}

// -----------------------------------------------------------------------------

func (rs *runningServers) shutdown(ctx context.Context) {
	if rs.grpc != nil {
		rs.grpc.GracefulStop()
	}
	if rs.static != nil {
		if err := rs.static.Shutdown(ctx); err != nil {
			rs.log.Warning("Static server shutdown: %v", err)
		}
	}
	if err := rs.api.Shutdown(ctx); err != nil {
		rs.log.Warning("API server shutdown: %v", err)
	}
}
