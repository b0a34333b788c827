package grpc_test

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/turtacn/riskscore360/internal/application/dto"
	"github.com/turtacn/riskscore360/internal/application/service"
	"github.com/turtacn/riskscore360/internal/domain/models"
	domainService "github.com/turtacn/riskscore360/internal/domain/service"
	"github.com/turtacn/riskscore360/internal/infrastructure/cache"
	grpcapi "github.com/turtacn/riskscore360/internal/interfaces/grpc"
	"github.com/turtacn/riskscore360/pkg/logger"
)

const scenarioDocument = `{
  "subscription_id": "sub-1",
  "resource_group": "rg-prod",
  "policy": {"unique_noncompliant_policies": 10, "noncompliant_state_records": 100,
             "top_noncompliant_policies": [
               {"policyDefinitionId": "p1", "noncompliant_records": 40},
               {"policyDefinitionId": "p2", "noncompliant_records": 20},
               {"policyDefinitionId": "p3", "noncompliant_records": 10}]},
  "iam_drift": "owner",
  "iam_counts": {"owners": 6, "contributors": 10, "readers": 5, "custom_roles": 0},
  "defender": {"high": 6, "medium": 3, "low": 0},
  "network": {"open_high_risk_ports": 5, "public_ip_count": 6, "missing_nsg_count": 2},
  "encryption": {"unencrypted_storage_accounts": 1, "weak_tls_configs": 1, "no_customer_managed_keys": 5}
}`

func startServer(t *testing.T, impl grpcapi.ScoringServiceServer) *grpclib.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpcapi.NewServer(impl, logger.NewNoopLogger())
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Stop(ctx)
	})

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func newScoringService() *grpcapi.ScoringGRPCService {
	log := logger.NewNoopLogger()
	svc := service.NewScoringAppService(domainService.NewDefaultScoringEngine(), service.Options{
		Cache: cache.NewMemoryReportCache(time.Minute, time.Minute, nil, log),
	}, log)
	return grpcapi.NewScoringGRPCService(svc, log)
}

func invoke(t *testing.T, conn *grpclib.ClientConn, method string, req, resp interface{}) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return conn.Invoke(ctx, method, req, resp, grpclib.CallContentSubtype(grpcapi.JSONCodecName))
}

type ScoringServerSuite struct {
	suite.Suite
	conn *grpclib.ClientConn
}

func TestScoringServerSuite(t *testing.T) {
	suite.Run(t, new(ScoringServerSuite))
}

func (s *ScoringServerSuite) SetupTest() {
	s.conn = startServer(s.T(), newScoringService())
}

func (s *ScoringServerSuite) TestScore() {
	t, conn := s.T(), s.conn

	var resp grpcapi.ScoreResponse
	err := invoke(t, conn, grpcapi.ScoreFullMethod, &grpcapi.ScoreRequest{Document: json.RawMessage(scenarioDocument)}, &resp)
	require.NoError(t, err)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "grpc", resp.Result.Source)
	assert.Equal(t, 92, resp.Result.Report.RiskScore)
	assert.Equal(t, models.RiskLevelCritical, resp.Result.Report.RiskLevel)
	assert.Equal(t, 125, resp.Result.Report.RiskAnalysis.TotalRawScore)

	var again grpcapi.ScoreResponse
	require.NoError(t, invoke(t, conn, grpcapi.GetReportFullMethod, &grpcapi.GetReportRequest{ReportID: resp.Result.ReportID}, &again))
	assert.Equal(t, resp.Result.ReportID, again.Result.ReportID)
	assert.Equal(t, resp.Result.Fingerprint, again.Result.Fingerprint)
}

func (s *ScoringServerSuite) TestScoreErrors() {
	conn := s.conn

	tests := []struct {
		name   string
		method string
		req    interface{}
		code   codes.Code
		prefix string
	}{
		{"empty document", grpcapi.ScoreFullMethod, &grpcapi.ScoreRequest{}, codes.InvalidArgument, "missing_input"},
		{"non-object document", grpcapi.ScoreFullMethod, &grpcapi.ScoreRequest{Document: json.RawMessage(`[1,2]`)}, codes.InvalidArgument, "invalid_document"},
		{"empty batch", grpcapi.ScoreBatchFullMethod, &grpcapi.ScoreBatchRequest{}, codes.InvalidArgument, "invalid_request"},
		{"malformed report id", grpcapi.GetReportFullMethod, &grpcapi.GetReportRequest{ReportID: "nope"}, codes.InvalidArgument, "invalid_request"},
		{"unknown report", grpcapi.GetReportFullMethod, &grpcapi.GetReportRequest{ReportID: "6f1c7f0e-3b7a-4d8e-9a59-0c3f4a2b1d00"}, codes.NotFound, "report_not_found"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			t := s.T()
			var resp json.RawMessage
			err := invoke(t, conn, tt.method, tt.req, &resp)
			require.Error(t, err)
			st, ok := status.FromError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, st.Code())
			assert.Contains(t, st.Message(), tt.prefix)
		})
	}
}

func (s *ScoringServerSuite) TestScoreBatch() {
	t, conn := s.T(), s.conn

	req := &grpcapi.ScoreBatchRequest{Documents: []json.RawMessage{
		json.RawMessage(scenarioDocument),
		json.RawMessage(`"not a document"`),
		json.RawMessage(`{"subscription_id": "sub-2"}`),
	}}
	var resp dto.BatchResponse
	require.NoError(t, invoke(t, conn, grpcapi.ScoreBatchFullMethod, req, &resp))

	assert.Equal(t, 2, resp.Succeeded)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Items, 3)
	assert.Equal(t, "grpc[0]", resp.Items[0].Source)
	assert.Equal(t, 92, resp.Items[0].Result.Report.RiskScore)
	require.NotNil(t, resp.Items[1].Error)
	assert.Equal(t, "invalid_document", resp.Items[1].Error.Code)
	assert.Equal(t, "sub-2", resp.Items[2].Result.Report.SubscriptionID)
}

func (s *ScoringServerSuite) TestHealth() {
	t := s.T()
	client := healthpb.NewHealthClient(s.conn)

	for _, name := range []string{"", grpcapi.ScoringServiceName} {
		resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: name})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	}
}

type panickingService struct {
	grpcapi.UnimplementedScoringServiceServer
}

func (panickingService) Score(context.Context, *grpcapi.ScoreRequest) (*grpcapi.ScoreResponse, error) {
	panic("boom")
}

func TestInterceptors(t *testing.T) {
	conn := startServer(t, panickingService{})

	var resp grpcapi.ScoreResponse
	err := invoke(t, conn, grpcapi.ScoreFullMethod, &grpcapi.ScoreRequest{Document: json.RawMessage(scenarioDocument)}, &resp)
	assert.Equal(t, codes.Internal, status.Code(err))

	err = invoke(t, conn, grpcapi.GetReportFullMethod, &grpcapi.GetReportRequest{ReportID: "6f1c7f0e-3b7a-4d8e-9a59-0c3f4a2b1d00"}, &resp)
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}
