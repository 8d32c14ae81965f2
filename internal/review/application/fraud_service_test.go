package application

import (
	"context"
	"errors"
	"testing"

	"github.com/wyfcoding/fraudreview/internal/review/domain"
)

func fraudRequest(clientID, date string) *ReportFraudRequest {
	return &ReportFraudRequest{
		ClientID:     clientID,
		AnalysisDate: date,
		Description:  "documento de identidade divergente do cadastro",
		Reason:       domain.ReasonDocumentoFalso,
		AnalystID:    "ana-1",
	}
}

func TestFraudService_ReportFraud(t *testing.T) {
	ctx := context.Background()

	t.Run("Given a fraud report When filed Then client status escalates to MONITORAR", func(t *testing.T) {
		env := newTestEnv()

		if err := env.svc.ReportFraud(ctx, fraudRequest("c-1", "2024-03-10")); err != nil {
			t.Fatalf("ReportFraud failed: %v", err)
		}

		client, err := env.clients.Get(ctx, "c-1")
		if err != nil || client == nil {
			t.Fatalf("expected client to exist: %v / %v", client, err)
		}
		if client.Status != domain.StatusMonitorar {
			t.Errorf("expected MONITORAR, got %s", client.Status)
		}
	})

	t.Run("Given a client already under monitoring When a second report is filed Then status stays MONITORAR without error", func(t *testing.T) {
		env := newTestEnv()

		if err := env.svc.ReportFraud(ctx, fraudRequest("c-1", "2024-03-10")); err != nil {
			t.Fatalf("first report failed: %v", err)
		}
		if err := env.svc.ReportFraud(ctx, fraudRequest("c-1", "2024-04-01")); err != nil {
			t.Fatalf("second report failed: %v", err)
		}

		client, _ := env.clients.Get(ctx, "c-1")
		if client.Status != domain.StatusMonitorar {
			t.Errorf("expected MONITORAR to be sticky, got %s", client.Status)
		}
	})

	t.Run("Given a short description When filed Then validation rejects it", func(t *testing.T) {
		env := newTestEnv()

		req := fraudRequest("c-1", "2024-03-10")
		req.Description = "curto"
		err := env.svc.ReportFraud(ctx, req)
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("Given a reason outside the closed set When filed Then validation rejects it", func(t *testing.T) {
		env := newTestEnv()

		req := fraudRequest("c-1", "2024-03-10")
		req.Reason = "QUALQUER_COISA"
		err := env.svc.ReportFraud(ctx, req)
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestFraudService_Taint(t *testing.T) {
	ctx := context.Background()

	t.Run("Given a report filed before the review exists When the review is created later Then it is tainted", func(t *testing.T) {
		env := newTestEnv()

		if err := env.svc.ReportFraud(ctx, fraudRequest("c-1", "2024-03-10")); err != nil {
			t.Fatalf("ReportFraud failed: %v", err)
		}
		if _, err := env.svc.CreateReview(ctx, saqueRequest("c-1", "2024-03-10")); err != nil {
			t.Fatalf("CreateReview failed: %v", err)
		}

		rows, err := env.svc.ListMetrics(ctx, MetricsFilter{})
		if err != nil {
			t.Fatalf("ListMetrics failed: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("expected 1 row, got %d", len(rows))
		}
		if !rows[0].TemFraude {
			t.Error("expected the later review to be fraud tainted")
		}
		if rows[0].StatusCliente != domain.StatusMonitorar {
			t.Errorf("expected StatusCliente MONITORAR, got %s", rows[0].StatusCliente)
		}
	})

	t.Run("Given report dates in timestamp and date-only form When taint is derived Then both match the same review", func(t *testing.T) {
		env := newTestEnv()

		if _, err := env.svc.CreateReview(ctx, saqueRequest("c-1", "2024-03-10")); err != nil {
			t.Fatalf("CreateReview failed: %v", err)
		}
		// 以完整时间戳形式存的日期必须与纯日期形式产生同样的污染结果
		if err := env.svc.ReportFraud(ctx, fraudRequest("c-1", "2024-03-10T18:45:00Z")); err != nil {
			t.Fatalf("ReportFraud failed: %v", err)
		}

		tainted, err := env.svc.frauds.IsFraudTainted(ctx, "c-1", "2024-03-10")
		if err != nil {
			t.Fatalf("IsFraudTainted failed: %v", err)
		}
		if !tainted {
			t.Error("timestamp-form report date must taint the date-form review key")
		}

		alsoTainted, err := env.svc.frauds.IsFraudTainted(ctx, "c-1", "2024-03-10T00:00:00Z")
		if err != nil {
			t.Fatalf("IsFraudTainted failed: %v", err)
		}
		if !alsoTainted {
			t.Error("taint lookup must normalize the probe date too")
		}
	})

	t.Run("Given reports from other dates When taint is derived Then only matching dates are flagged", func(t *testing.T) {
		env := newTestEnv()

		if err := env.svc.ReportFraud(ctx, fraudRequest("c-1", "2024-01-01")); err != nil {
			t.Fatalf("ReportFraud failed: %v", err)
		}
		if _, err := env.svc.CreateReview(ctx, saqueRequest("c-1", "2024-03-10")); err != nil {
			t.Fatalf("CreateReview failed: %v", err)
		}

		rows, err := env.svc.ListMetrics(ctx, MetricsFilter{})
		if err != nil {
			t.Fatalf("ListMetrics failed: %v", err)
		}
		if rows[0].TemFraude {
			t.Error("review on a different date must not be tainted")
		}
		// 但客户状态仍然是 MONITORAR——升级与日期无关
		if rows[0].StatusCliente != domain.StatusMonitorar {
			t.Errorf("expected MONITORAR, got %s", rows[0].StatusCliente)
		}
	})
}

func TestFraudService_GetFraudStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Given no reports When status is requested Then hasFraud false with empty list", func(t *testing.T) {
		env := newTestEnv()

		status, err := env.svc.GetFraudStatus(ctx, "c-1")
		if err != nil {
			t.Fatalf("GetFraudStatus failed: %v", err)
		}
		if status.HasFraud || len(status.Reports) != 0 {
			t.Errorf("expected empty fraud status, got %+v", status)
		}
	})

	t.Run("Given two reports When status is requested Then both are returned", func(t *testing.T) {
		env := newTestEnv()

		if err := env.svc.ReportFraud(ctx, fraudRequest("c-1", "2024-03-10")); err != nil {
			t.Fatalf("ReportFraud failed: %v", err)
		}
		if err := env.svc.ReportFraud(ctx, fraudRequest("c-1", "2024-03-11")); err != nil {
			t.Fatalf("ReportFraud failed: %v", err)
		}

		status, err := env.svc.GetFraudStatus(ctx, "c-1")
		if err != nil {
			t.Fatalf("GetFraudStatus failed: %v", err)
		}
		if !status.HasFraud || len(status.Reports) != 2 {
			t.Errorf("expected 2 reports, got %+v", status)
		}
	})
}
