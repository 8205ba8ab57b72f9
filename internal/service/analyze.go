package service

import (
	"context"
	"fmt"

	"github.com/accessivision/backend/internal/domain"
	"github.com/accessivision/backend/internal/logger"
)

// AnalysisResult is the synchronous single-photo audit plus its optional
// rendered renovation.
type AnalysisResult struct {
	Audit     *domain.AuditOutcome `json:"audit"`
	ImageData string               `json:"image_data,omitempty"`
}

// AnalyzeOne audits a single photo synchronously and, when a barrier is
// found, tries to render the renovation in the same request. A failed
// render is logged and dropped; the audit is returned either way.
func (s *AuditService) AnalyzeOne(ctx context.Context, imageURL string, wheelchairAccessible bool) (*AnalysisResult, error) {
	var outcome *domain.AuditOutcome
	err := s.pool.Do(ctx, func() error {
		var auditErr error
		outcome, auditErr = s.auditor.Analyze(ctx, imageURL, wheelchairAccessible)
		return auditErr
	})
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	result := &AnalysisResult{Audit: outcome}

	if outcome.HasBarrier() {
		if artifact := s.renderOne(ctx, imageURL, outcome, wheelchairAccessible); artifact != "" {
			result.ImageData = artifact
		} else {
			logger.CtxWarn(ctx, "Analysis render produced no image: url=%s", imageURL)
		}
	}

	return result, nil
}
