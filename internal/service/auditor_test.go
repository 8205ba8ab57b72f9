package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func chatReply(content string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	})
	return string(body)
}

const auditJSON = `{
	"barrier_detected": "Narrow doorway to the kitchen",
	"renovation_suggestion": "Widen the doorway to 36 inches",
	"estimated_cost_usd": "$2,500 - $4,000",
	"compliance_note": "AODA requires 860mm clear width",
	"mask_prompt": "the doorway between the hallway and kitchen",
	"image_gen_prompt": "a widened doorway with a flush threshold"
}`

func TestAuditorAnalyzeParsesModelAnswer(t *testing.T) {
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected Authorization header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatReply(auditJSON)))
	}))
	defer server.Close()

	svc := NewAuditorService(&AuditorConfig{
		Model:   "gemini-2.5-flash",
		APIKey:  "test-key",
		BaseURL: server.URL,
	})

	outcome, err := svc.Analyze(context.Background(), "https://cdn.example.com/1.jpg", false)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if outcome.BarrierDetected != "Narrow doorway to the kitchen" {
		t.Errorf("barrier = %q", outcome.BarrierDetected)
	}
	if outcome.MaskPrompt == "" || outcome.ImageGenPrompt == "" {
		t.Error("prompts missing from parsed outcome")
	}
	if outcome.EstimatedCostUSD != "$2,500 - $4,000" {
		t.Errorf("cost = %q, want the model's text passed through", outcome.EstimatedCostUSD)
	}
	if !outcome.HasBarrier() {
		t.Error("parsed outcome should report a barrier")
	}

	if gotReq.Model != "gemini-2.5-flash" {
		t.Errorf("request model = %q", gotReq.Model)
	}
	if len(gotReq.Messages) != 1 {
		t.Fatalf("request carried %d messages", len(gotReq.Messages))
	}
}

func TestAuditorAnalyzeWheelchairPromptVariant(t *testing.T) {
	var promptText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)
		messages := req["messages"].([]interface{})
		content := messages[0].(map[string]interface{})["content"].([]interface{})
		promptText = content[0].(map[string]interface{})["text"].(string)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatReply(auditJSON)))
	}))
	defer server.Close()

	svc := NewAuditorService(&AuditorConfig{Model: "m", APIKey: "k", BaseURL: server.URL})
	if _, err := svc.Analyze(context.Background(), "https://cdn.example.com/1.jpg", true); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if !strings.Contains(strings.ToLower(promptText), "wheelchair") {
		t.Error("wheelchair mode did not select the wheelchair prompt")
	}
}

func TestAuditorAnalyzeHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limit exceeded", "type": "rate_limit"}}`))
	}))
	defer server.Close()

	svc := NewAuditorService(&AuditorConfig{Model: "m", APIKey: "k", BaseURL: server.URL})
	_, err := svc.Analyze(context.Background(), "https://cdn.example.com/1.jpg", false)
	if err == nil {
		t.Fatal("expected an error for HTTP 429")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should carry the status code: %v", err)
	}
}

func TestAuditorAnalyzeEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	svc := NewAuditorService(&AuditorConfig{Model: "m", APIKey: "k", BaseURL: server.URL})
	if _, err := svc.Analyze(context.Background(), "https://cdn.example.com/1.jpg", false); err == nil {
		t.Fatal("expected an error for an empty choices list")
	}
}

func TestParseAuditOutcome(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{
			name:    "bare json",
			content: auditJSON,
		},
		{
			name:    "json fenced",
			content: "```json\n" + auditJSON + "\n```",
		},
		{
			name:    "plain fenced",
			content: "```\n" + auditJSON + "\n```",
		},
		{
			name:    "surrounding whitespace",
			content: "\n\n  " + auditJSON + "  \n",
		},
		{
			name:    "prose instead of json",
			content: "I could not find any barriers in this image.",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			outcome, err := parseAuditOutcome(tc.content)
			if tc.wantErr {
				if err == nil {
					t.Error("expected a parse error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if outcome.BarrierDetected != "Narrow doorway to the kitchen" {
				t.Errorf("barrier = %q", outcome.BarrierDetected)
			}
		})
	}
}
