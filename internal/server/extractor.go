package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/perks-tracker/constants"
	"github.com/joseph-ayodele/perks-tracker/internal/common"
	"github.com/joseph-ayodele/perks-tracker/internal/core/perks"
)

const (
	serviceName            = "perks.v1.PerkExtractor"
	extractMethod          = "/" + serviceName + "/Extract"
	supportedIssuersMethod = "/" + serviceName + "/SupportedIssuers"
)

// PerkExtractorServer is the server API for perks.v1.PerkExtractor.
// Requests and responses are google.protobuf.Struct messages.
type PerkExtractorServer interface {
	Extract(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SupportedIssuers(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes perks.v1.PerkExtractor for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*PerkExtractorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Extract", Handler: unaryHandler(extractMethod, PerkExtractorServer.Extract)},
		{MethodName: "SupportedIssuers", Handler: unaryHandler(supportedIssuersMethod, PerkExtractorServer.SupportedIssuers)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "perks/v1/perks.proto",
}

type unaryMethod func(PerkExtractorServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PerkExtractorServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PerkExtractorServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// RegisterPerkExtractorServer registers srv on s.
func RegisterPerkExtractorServer(s grpc.ServiceRegistrar, srv PerkExtractorServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ExtractorService serves the perk engine over gRPC.
type ExtractorService struct {
	engine *perks.Engine
	logger *slog.Logger
}

func NewExtractorService(engine *perks.Engine, logger *slog.Logger) *ExtractorService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractorService{engine: engine, logger: logger}
}

// Extract expects {"text": string, "issuer": string?} and returns
// {"issuer": string, "candidates": [...]}.
func (s *ExtractorService) Extract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	text := fields["text"].GetStringValue()
	hint := strings.TrimSpace(fields["issuer"].GetStringValue())

	v := common.NewValidator().
		Field("text", text, common.Required, common.MaxLength(common.MaxScreenTextLength)).
		Field("issuer", hint, common.IssuerHint)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}

	issuer, known := constants.CanonicalIssuer(hint)
	if !known {
		issuer = s.engine.Classify(text)
	}
	candidates := s.engine.Extract(text, issuer)

	list, err := toList(candidates)
	if err != nil {
		common.LoggerFrom(ctx, s.logger).Error("encode candidates failed", "error", err)
		return nil, common.InternalError("encode candidates")
	}
	out, err := structpb.NewStruct(map[string]any{
		"issuer":     string(issuer),
		"candidates": list,
	})
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return out, nil
}

// SupportedIssuers returns {"issuers": [{"key": ..., "name": ...}]}.
func (s *ExtractorService) SupportedIssuers(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	keys := s.engine.SupportedIssuers()
	issuers := make([]any, len(keys))
	for i, k := range keys {
		issuers[i] = map[string]any{"key": string(k), "name": s.engine.DisplayName(k)}
	}
	out, err := structpb.NewStruct(map[string]any{"issuers": issuers})
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return out, nil
}

func toList(candidates []perks.PerkCandidate) ([]any, error) {
	raw, err := json.Marshal(candidates)
	if err != nil {
		return nil, err
	}
	var list []any
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []any{}
	}
	return list, nil
}

// LoggingInterceptor tags each call with a request ID and logs its outcome.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		ctx = common.WithRequestID(ctx, uuid.NewString())
		resp, err := handler(ctx, req)
		l := common.LoggerFrom(ctx, logger).With("method", info.FullMethod, "duration_ms", time.Since(start).Milliseconds())
		if err != nil {
			l.Warn("rpc failed", "error", err)
			return nil, common.ToStatus(err)
		}
		l.Debug("rpc ok")
		return resp, nil
	}
}
