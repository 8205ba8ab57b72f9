package domain

import "encoding/json"

// AuditOutcome is the structured accessibility audit for a single photo.
// The vision model returns it as strict JSON; the pipeline only branches on
// HasBarrier and TwoPassEligible, everything else is passed through to the
// client verbatim.
type AuditOutcome struct {
	BarrierDetected      string       `json:"barrier_detected"`
	RenovationSuggestion string       `json:"renovation_suggestion"`
	EstimatedCostUSD     CostEstimate `json:"estimated_cost_usd"`
	ComplianceNote       string       `json:"compliance_note"`
	MaskPrompt           string       `json:"mask_prompt"`
	ImageGenPrompt       string       `json:"image_gen_prompt"`

	// Structural (two-pass) renovation fields. All four must be non-empty
	// for the two-pass workflow; otherwise they are ignored.
	ClearMask   string `json:"clear_mask,omitempty"`
	ClearPrompt string `json:"clear_prompt,omitempty"`
	BuildMask   string `json:"build_mask,omitempty"`
	BuildPrompt string `json:"build_prompt,omitempty"`
}

// CostEstimate carries the model's cost estimate verbatim. The prompt asks
// for an integer, but models routinely answer with free text like
// "$2,500 - $4,000"; both shapes decode and are passed through unchanged.
type CostEstimate string

func (c *CostEstimate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = CostEstimate(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = CostEstimate(n.String())
	return nil
}

// HasBarrier reports whether the audit identified a barrier worth rendering.
// Generation needs both a fill prompt and a mask, so an outcome without them
// is treated as "nothing to do".
func (a *AuditOutcome) HasBarrier() bool {
	if a == nil {
		return false
	}
	return a.ImageGenPrompt != "" && a.MaskPrompt != ""
}

// TwoPassEligible reports whether the structural removal+construction
// workflow applies: removal mask, removal fill, build mask, and build prompt
// must all be present.
func (a *AuditOutcome) TwoPassEligible() bool {
	if a == nil {
		return false
	}
	return a.ClearMask != "" && a.ClearPrompt != "" && a.BuildMask != "" && a.BuildPrompt != ""
}
