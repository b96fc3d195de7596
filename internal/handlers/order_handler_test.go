package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/api"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/notify"
	"github.com/Lixing-Zhang/kart-challenge/client-core/pkg/logger"
)

type mockPayments struct {
	result models.PaymentReturn
	err    error
	got    url.Values
}

func (m *mockPayments) ConfirmReturn(ctx context.Context, params url.Values) (models.PaymentReturn, error) {
	m.got = params
	return m.result, m.err
}

type mockHistory struct {
	err error
}

func (m mockHistory) Orders(ctx context.Context, q models.PageQuery) (models.Page[models.Order], error) {
	if m.err != nil {
		return models.Page[models.Order]{}, m.err
	}
	return models.Page[models.Order]{
		Items: []models.Order{{ID: "o-1"}},
		Page:  models.PageInfo{Size: q.PageSize, TotalElements: 1, TotalPages: 1, Number: q.PageNo},
	}, nil
}

func TestOrderHandler_PaymentReturn(t *testing.T) {
	tests := []struct {
		name           string
		payments       *mockPayments
		expectedStatus int
		expectedLevel  notify.Level
	}{
		{
			name:           "gateway reports success",
			payments:       &mockPayments{result: models.PaymentReturn{OrderID: "o-1", ResponseCode: "00", Success: true}},
			expectedStatus: http.StatusOK,
			expectedLevel:  notify.LevelSuccess,
		},
		{
			name:           "gateway reports cancel",
			payments:       &mockPayments{result: models.PaymentReturn{OrderID: "o-1", ResponseCode: "24"}},
			expectedStatus: http.StatusOK,
			expectedLevel:  notify.LevelError,
		},
		{
			name:           "backend rejects signature",
			payments:       &mockPayments{err: &api.Error{StatusCode: 400, Message: "invalid checksum", Err: api.ErrBadRequest}},
			expectedStatus: http.StatusBadRequest,
			expectedLevel:  notify.LevelError,
		},
		{
			name:           "backend down",
			payments:       &mockPayments{err: errors.New("connection refused")},
			expectedStatus: http.StatusInternalServerError,
			expectedLevel:  notify.LevelError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			center := notify.NewCenter(5, nil)
			handler := NewOrderHandler(mockHistory{}, tt.payments, center, logger.New("error"))

			req := httptest.NewRequest(http.MethodGet, "/api/payment/return?vnp_TxnRef=o-1&vnp_ResponseCode=00", nil)
			w := httptest.NewRecorder()
			handler.PaymentReturn(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if got := tt.payments.got.Get("vnp_TxnRef"); got != "o-1" {
				t.Errorf("expected vnp_TxnRef to be forwarded, got %q", got)
			}

			notes := center.Drain()
			if len(notes) != 1 {
				t.Fatalf("expected 1 notification, got %d", len(notes))
			}
			if notes[0].Level != tt.expectedLevel {
				t.Errorf("expected %s notification, got %s", tt.expectedLevel, notes[0].Level)
			}
		})
	}
}

func TestOrderHandler_ListOrders(t *testing.T) {
	handler := NewOrderHandler(mockHistory{}, &mockPayments{}, notify.NewCenter(5, nil), logger.New("error"))

	req := httptest.NewRequest(http.MethodGet, "/api/orders?pageNo=2&pageSize=abc", nil)
	w := httptest.NewRecorder()
	handler.ListOrders(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var page models.Page[models.Order]
	if err := json.NewDecoder(w.Body).Decode(&page); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if page.Page.Number != 2 {
		t.Errorf("expected page 2, got %d", page.Page.Number)
	}
	if page.Page.Size != 0 {
		t.Errorf("expected malformed page size to fall back to 0, got %d", page.Page.Size)
	}
}
