package grpc_control

import (
	"context"
	"errors"

	"unblocker/src/helpers"
	"unblocker/src/interfaces"
	"unblocker/src/logger"
	"unblocker/src/models"
	"unblocker/src/stats"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ControlService implements ControlServer on top of the proxy service
type ControlService struct {
	Proxy    interfaces.IProxyService
	Visitors *stats.VisitorStats // optional
	Logger   *logger.Logger
}

// NewControlService creates a new instance of ControlService
func NewControlService(proxy interfaces.IProxyService, visitors *stats.VisitorStats, log *logger.Logger) *ControlService {
	return &ControlService{
		Proxy:    proxy,
		Visitors: visitors,
		Logger:   log,
	}
}

// -----------------------------------------------------------------------------

func (s *ControlService) Attempt(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	target := fields["url"].GetStringValue()
	mode := fields["method"].GetStringValue()

	if target == "" {
		return nil, status.Error(codes.InvalidArgument, "url is required")
	}

	resp, err := s.Proxy.Unblock(ctx, target, mode)
	if err != nil {
		var allFailed *helpers.AllMethodsFailedError
		switch {
		case errors.As(err, &allFailed):
			// a normal outcome, reported in the response
		case resp != nil && resp.Reason == "InvalidUrl":
			return nil, status.Error(codes.InvalidArgument, err.Error())
		case resp != nil && resp.Reason == "MethodNotAvailable":
			return nil, status.Error(codes.NotFound, err.Error())
		case resp != nil && resp.Reason == "Cancelled":
			return nil, status.FromContextError(err).Err()
		default:
			s.Logger.Error("gRPC: Attempt failed: %v", err)
			return nil, status.Error(codes.Internal, err.Error())
		}
	}

	s.Logger.Info("gRPC: Attempt %s for %s -> success=%v", resp.RequestID, target, resp.Success)
	return structpb.NewStruct(map[string]interface{}{
		"requestId":  resp.RequestID,
		"success":    resp.Success,
		"url":        resp.TargetURL,
		"method":     resp.MethodID,
		"methodName": resp.MethodName,
		"content":    resp.Content,
		"attempts":   resp.Attempts,
		"round":      resp.Round,
		"reason":     resp.Reason,
		"error":      resp.Error,
	})
}

// -----------------------------------------------------------------------------

func (s *ControlService) ListMethods(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	methods := s.Proxy.Methods()
	list := make([]interface{}, 0, len(methods))
	for _, m := range methods {
		list = append(list, map[string]interface{}{
			"id":       m.ID,
			"name":     m.Name,
			"url":      m.URL,
			"strategy": m.Strategy,
			"delayMs":  m.DelayMs,
		})
	}

	fs := s.Proxy.FallbackSettings()
	return structpb.NewStruct(map[string]interface{}{
		"methods": list,
		"fallbackSettings": map[string]interface{}{
			"maxRetries": fs.MaxRetries,
			"retryDelay": fs.RetryDelay,
			"timeout":    fs.Timeout,
		},
	})
}

// -----------------------------------------------------------------------------

func (s *ControlService) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st := s.Proxy.Status()
	out := map[string]interface{}{
		"startedAt":     st.StartedAt,
		"uptimeSeconds": st.UptimeSeconds,
		"methods":       st.Methods,
		"requests":      st.Requests,
		"successes":     st.Successes,
		"failures":      st.Failures,
		"storageErrors": st.StorageErrors,
		"defaultMode":   st.Mode,
	}
	if s.Visitors != nil {
		out["visitors"] = visitorsMap(s.Visitors.Snapshot())
	}

	methodStats := s.Proxy.MethodStats()
	list := make([]interface{}, 0, len(methodStats))
	for _, m := range methodStats {
		list = append(list, map[string]interface{}{
			"id":          m.ID,
			"name":        m.Name,
			"attempts":    m.Attempts,
			"successes":   m.Successes,
			"failures":    m.Failures,
			"timeouts":    m.Timeouts,
			"successRate": m.SuccessRate,
			"meanMs":      m.MeanMs,
			"p95Ms":       m.P95Ms,
		})
	}
	out["methodStats"] = list
	return structpb.NewStruct(out)
}

func visitorsMap(v models.MVisitorStats) map[string]interface{} {
	return map[string]interface{}{
		"online": v.Online,
		"peak":   v.Peak,
		"total":  v.Total,
	}
}
