package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/krbank/backoffice/internal/cqrs"
	"github.com/krbank/backoffice/internal/models"
	"github.com/shopspring/decimal"
)

func TestStatsEndpoints(t *testing.T) {
	m := newMocks()
	m.stats.summaryFn = func() (*models.DashboardSummary, error) {
		return &models.DashboardSummary{CustomerCount: 2, EmployeeCount: 1, AdminCount: 1, AccountCount: 3,
			TotalActiveBalance: decimal.RequireFromString("150.00")}, nil
	}
	m.stats.countFn = func(q cqrs.CountAccountsQuery) (int64, error) {
		if q.CustomerID == "cus-001" {
			return 3, nil
		}
		return 0, nil
	}
	m.stats.totalFn = func() (decimal.Decimal, error) { return decimal.RequireFromString("150.00"), nil }
	m.stats.byTypeFn = func() (map[models.AccountType]int64, error) {
		return map[models.AccountType]int64{models.AccountTypeSavings: 2, models.AccountTypeCreditCard: 0}, nil
	}
	m.stats.byStatusFn = func() (map[models.AccountStatus]int64, error) {
		return map[models.AccountStatus]int64{models.AccountStatusActive: 2}, nil
	}
	router := newTestRouter(m, models.RoleEmployee)

	tests := []struct {
		url      string
		contains map[string]any
	}{
		{"/v1/stats/summary", map[string]any{"customerCount": float64(2), "totalActiveBalance": "150"}},
		{"/v1/stats/accounts/count?customerId=cus-001", map[string]any{"count": float64(3)}},
		{"/v1/stats/accounts/total-balance", map[string]any{"totalBalance": "150"}},
		{"/v1/stats/accounts/by-type", map[string]any{"SAVINGS": float64(2), "CREDIT_CARD": float64(0)}},
		{"/v1/stats/accounts/by-status", map[string]any{"ACTIVE": float64(2)}},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			w := doRequest(router, http.MethodGet, tt.url, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d; body: %s", w.Code, w.Body.String())
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			for k, v := range tt.contains {
				if body[k] != v {
					t.Errorf("%s: expected %v, got %v", k, v, body[k])
				}
			}
		})
	}
}
