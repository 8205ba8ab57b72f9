package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// RenderSpec carries every parameter that affects a generated renovation.
// Two specs that are semantically identical must serialize identically, so
// NewRenderSpec normalizes the structural fields away unless the two-pass
// workflow actually applies.
type RenderSpec struct {
	ImageGenPrompt       string
	MaskPrompt           string
	TwoPass              bool
	ClearMask            string
	ClearPrompt          string
	BuildMask            string
	BuildPrompt          string
	WheelchairAccessible bool
}

// NewRenderSpec derives the canonical render spec for an audit outcome.
// Stray structural fields on a two-pass-ineligible outcome are dropped so
// they cannot perturb the cache key.
func NewRenderSpec(audit *AuditOutcome, wheelchairAccessible bool) RenderSpec {
	spec := RenderSpec{
		ImageGenPrompt:       audit.ImageGenPrompt,
		MaskPrompt:           audit.MaskPrompt,
		WheelchairAccessible: wheelchairAccessible,
	}
	if audit.TwoPassEligible() {
		spec.TwoPass = true
		spec.ClearMask = audit.ClearMask
		spec.ClearPrompt = audit.ClearPrompt
		spec.BuildMask = audit.BuildMask
		spec.BuildPrompt = audit.BuildPrompt
	}
	return spec
}

// cacheKeyPayload is the canonical serialization shape for cache keys.
// Fields are declared in sorted key order; encoding/json emits struct fields
// in declaration order, which makes the byte stream deterministic.
type cacheKeyPayload struct {
	BuildMask            string `json:"build_mask"`
	BuildPrompt          string `json:"build_prompt"`
	ClearMask            string `json:"clear_mask"`
	ClearPrompt          string `json:"clear_prompt"`
	ImageGenPrompt       string `json:"image_gen_prompt"`
	ImageURL             string `json:"image_url"`
	IsTwoPass            bool   `json:"is_two_pass"`
	MaskPrompt           string `json:"mask_prompt"`
	WheelchairAccessible bool   `json:"wheelchair_accessible"`
}

// CacheKey returns the content-addressed cache key for rendering this spec
// against the given source image: a SHA-256 hex digest of the canonical
// serialization of every semantically relevant parameter.
func (s RenderSpec) CacheKey(sourceURL string) string {
	payload := cacheKeyPayload{
		BuildMask:            s.BuildMask,
		BuildPrompt:          s.BuildPrompt,
		ClearMask:            s.ClearMask,
		ClearPrompt:          s.ClearPrompt,
		ImageGenPrompt:       s.ImageGenPrompt,
		ImageURL:             sourceURL,
		IsTwoPass:            s.TwoPass,
		MaskPrompt:           s.MaskPrompt,
		WheelchairAccessible: s.WheelchairAccessible,
	}
	data, _ := json.Marshal(payload)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
