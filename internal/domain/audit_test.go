package domain

import (
	"encoding/json"
	"testing"
)

func TestAuditOutcomeCostShapes(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantCost CostEstimate
		wantErr  bool
	}{
		{
			name:     "cost as text range",
			payload:  `{"barrier_detected": "stairs", "estimated_cost_usd": "$2,500 - $4,000"}`,
			wantCost: "$2,500 - $4,000",
		},
		{
			name:     "cost as integer",
			payload:  `{"barrier_detected": "stairs", "estimated_cost_usd": 3500}`,
			wantCost: "3500",
		},
		{
			name:     "cost as quoted number",
			payload:  `{"barrier_detected": "stairs", "estimated_cost_usd": "3500"}`,
			wantCost: "3500",
		},
		{
			name:     "cost absent",
			payload:  `{"barrier_detected": "stairs"}`,
			wantCost: "",
		},
		{
			name:    "cost as object",
			payload: `{"estimated_cost_usd": {"low": 2500}}`,
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var outcome AuditOutcome
			err := json.Unmarshal([]byte(tc.payload), &outcome)
			if tc.wantErr {
				if err == nil {
					t.Error("expected a decode error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if outcome.EstimatedCostUSD != tc.wantCost {
				t.Errorf("cost = %q, want %q", outcome.EstimatedCostUSD, tc.wantCost)
			}
		})
	}
}

func TestAuditOutcomeCostRoundTrip(t *testing.T) {
	out, err := json.Marshal(&AuditOutcome{EstimatedCostUSD: "$2,500 - $4,000"})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var back AuditOutcome
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if back.EstimatedCostUSD != "$2,500 - $4,000" {
		t.Errorf("round trip gave %q", back.EstimatedCostUSD)
	}
}
