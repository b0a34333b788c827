package grpc

// proto.go declares riskscore.v1.ScoringService by hand. Messages are plain
// Go structs carried by the JSON codec.

import (
	"context"
	"encoding/json"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/turtacn/riskscore360/internal/application/dto"
	"github.com/turtacn/riskscore360/internal/domain/models"
)

const (
	ScoringServiceName   = "riskscore.v1.ScoringService"
	ScoreFullMethod      = "/" + ScoringServiceName + "/Score"
	ScoreBatchFullMethod = "/" + ScoringServiceName + "/ScoreBatch"
	GetReportFullMethod  = "/" + ScoringServiceName + "/GetReport"
)

// ScoreRequest carries one raw signal document.
type ScoreRequest struct {
	Document json.RawMessage `json:"document"`
	Source   string          `json:"source,omitempty"`
}

// ScoreResponse carries one scored result.
type ScoreResponse struct {
	Result *models.ScoreResult `json:"result"`
}

// ScoreBatchRequest carries several raw signal documents.
type ScoreBatchRequest struct {
	Documents []json.RawMessage `json:"documents" validate:"required,min=1,max=100"`
}

// GetReportRequest selects a report by ID.
type GetReportRequest struct {
	ReportID string `json:"report_id" validate:"required,report_id"`
}

// ScoringServiceServer is the server API for ScoringService.
type ScoringServiceServer interface {
	Score(context.Context, *ScoreRequest) (*ScoreResponse, error)
	ScoreBatch(context.Context, *ScoreBatchRequest) (*dto.BatchResponse, error)
	GetReport(context.Context, *GetReportRequest) (*ScoreResponse, error)
	mustEmbedUnimplementedScoringServiceServer()
}

// UnimplementedScoringServiceServer provides forward-compatible default implementations.
type UnimplementedScoringServiceServer struct{}

func (UnimplementedScoringServiceServer) Score(context.Context, *ScoreRequest) (*ScoreResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Score not implemented")
}
func (UnimplementedScoringServiceServer) ScoreBatch(context.Context, *ScoreBatchRequest) (*dto.BatchResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ScoreBatch not implemented")
}
func (UnimplementedScoringServiceServer) GetReport(context.Context, *GetReportRequest) (*ScoreResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetReport not implemented")
}
func (UnimplementedScoringServiceServer) mustEmbedUnimplementedScoringServiceServer() {}

// RegisterScoringServiceServer registers srv with the gRPC server.
func RegisterScoringServiceServer(s grpclib.ServiceRegistrar, srv ScoringServiceServer) {
	s.RegisterService(&scoringServiceDesc, srv)
}

var scoringServiceDesc = grpclib.ServiceDesc{
	ServiceName: ScoringServiceName,
	HandlerType: (*ScoringServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "Score", Handler: scoreHandler},
		{MethodName: "ScoreBatch", Handler: scoreBatchHandler},
		{MethodName: "GetReport", Handler: getReportHandler},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "riskscore/v1/scoring.proto",
}

func scoreHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(ScoreRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ScoringServiceServer).Score(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: ScoreFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ScoringServiceServer).Score(ctx, req.(*ScoreRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func scoreBatchHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(ScoreBatchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ScoringServiceServer).ScoreBatch(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: ScoreBatchFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ScoringServiceServer).ScoreBatch(ctx, req.(*ScoreBatchRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getReportHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetReportRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ScoringServiceServer).GetReport(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: GetReportFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ScoringServiceServer).GetReport(ctx, req.(*GetReportRequest))
	}
	return interceptor(ctx, in, info, handler)
}
