package grpc

import (
	"context"
	"fmt"

	"github.com/turtacn/riskscore360/internal/application/dto"
	"github.com/turtacn/riskscore360/internal/application/service"
	domainService "github.com/turtacn/riskscore360/internal/domain/service"
	"github.com/turtacn/riskscore360/internal/infrastructure/signal"
	"github.com/turtacn/riskscore360/pkg/logger"
)

// ScoringGRPCService implements ScoringServiceServer on top of the application service
// ScoringGRPCService 基于应用服务实现 ScoringServiceServer
type ScoringGRPCService struct {
	UnimplementedScoringServiceServer
	svc    service.ScoringAppService
	logger logger.Logger
}

// NewScoringGRPCService 创建 gRPC 评分服务
func NewScoringGRPCService(svc service.ScoringAppService, log logger.Logger) *ScoringGRPCService {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &ScoringGRPCService{svc: svc, logger: log.WithComponent("grpc")}
}

// Score 对单份文档评分
func (s *ScoringGRPCService) Score(ctx context.Context, req *ScoreRequest) (*ScoreResponse, error) {
	source := req.Source
	if source == "" {
		source = "grpc"
	}
	loaded, err := signal.NewBytesSource(req.Document, source, s.logger).Load(ctx)
	if err != nil {
		return nil, err
	}
	result, err := s.svc.Score(ctx, loaded)
	if err != nil {
		return nil, err
	}
	return &ScoreResponse{Result: result}, nil
}

// ScoreBatch 批量评分
func (s *ScoringGRPCService) ScoreBatch(ctx context.Context, req *ScoreBatchRequest) (*dto.BatchResponse, error) {
	sources := make([]domainService.SignalSource, len(req.Documents))
	for i, doc := range req.Documents {
		sources[i] = signal.NewBytesSource(doc, fmt.Sprintf("grpc[%d]", i), s.logger)
	}
	items, err := s.svc.ScoreBatch(ctx, sources)
	if err != nil {
		return nil, err
	}
	return dto.NewBatchResponse(items), nil
}

// GetReport 按报告 ID 查询
func (s *ScoringGRPCService) GetReport(ctx context.Context, req *GetReportRequest) (*ScoreResponse, error) {
	result, err := s.svc.GetReport(ctx, req.ReportID)
	if err != nil {
		return nil, err
	}
	return &ScoreResponse{Result: result}, nil
}
