package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/developerboi1/tourclean/internal/audit"
	"github.com/developerboi1/tourclean/pkg/pagination"
)

type stubAuditService struct {
	lastFilters audit.Filters
	called      bool
}

func (s *stubAuditService) Record(context.Context, *gorm.DB, audit.RecordInput) error { return nil }

func (s *stubAuditService) List(_ context.Context, filters audit.Filters, _ pagination.Params) (*audit.ListResponse, error) {
	s.called = true
	s.lastFilters = filters
	return &audit.ListResponse{}, nil
}

func TestAuditListParsesDateWindow(t *testing.T) {
	svc := &stubAuditService{}
	handler := AuditList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/audit-log?since=2026-08-01T00:00:00Z&until=2026-08-28T00:00:00Z", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastFilters.Since == nil || svc.lastFilters.Until == nil {
		t.Fatal("expected since and until to be forwarded")
	}
	want := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	if !svc.lastFilters.Since.Equal(want) {
		t.Fatalf("unexpected since %s", svc.lastFilters.Since)
	}
}

func TestAuditListRejectsInvertedWindow(t *testing.T) {
	svc := &stubAuditService{}
	handler := AuditList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/audit-log?since=2026-08-28T00:00:00Z&until=2026-08-01T00:00:00Z", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if svc.called {
		t.Fatal("service should not run on invalid window")
	}
}

func TestAuditListRejectsMalformedSince(t *testing.T) {
	svc := &stubAuditService{}
	handler := AuditList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/audit-log?since=yesterday", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
