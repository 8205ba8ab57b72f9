// Package prompts holds the prompt text fed to the vision and image
// generation collaborators. The orchestration core never inspects these
// strings; it only routes them.
package prompts

// ============================================================================
// Audit Prompts (Vision Model)
// ============================================================================

// AuditPromptBase instructs the vision model to identify the single most
// critical accessibility barrier in a property photo and answer with strict
// JSON matching domain.AuditOutcome.
const AuditPromptBase = `You are an expert Accessibility Architect (AODA compliant). Analyze this real estate photo.

Identify the single most critical accessibility barrier (e.g., stairs, narrow doorway, high tub).
If the room is already accessible with no barriers, leave every prompt field as an empty string "".

Do NOT suggest: elevators or platform lifts, ramps that block driveways or doors, railings that form enclosures, new walls or partitions, or major foundation work. Prefer simple solutions: door widening to 32+ inches, non-slip flooring, threshold ramps, grab bars, lever handles.

Return a strict JSON object with these keys:
- barrier_detected: string (the issue found, with exact location)
- renovation_suggestion: string (the specific fix, e.g. "Remove bathtub and install curbless walk-in shower with grab bars")
- estimated_cost_usd: integer (rough estimate)
- compliance_note: string (reference standard codes like "1:12 slope ratio" or AODA section numbers)
- clear_mask: string (for renovations requiring removal: EXACTLY what to remove with precise location; empty string for simple additions)
- clear_prompt: string (for removals: what replaces the removed object, seamless with existing materials; empty string for simple additions)
- build_mask: string (the EXACT area to construct in, including surrounding space)
- build_prompt: string (new accessible features, safety features first, with specific dimensions and materials, photorealistic, 8k quality)
- mask_prompt: string (visual description of the specific area to mask/erase for inpainting)
- image_gen_prompt: string (prompt for the image generator to fill the masked area, keeping the original style)

All measurements must be AODA compliant (doorways minimum 32" clear width, ramp slope max 1:12).`

// auditPromptWheelchair narrows the audit to wheelchair use specifically.
const auditPromptWheelchair = `

Focus exclusively on wheelchair accessibility: clear turning radius (60 inches), reachable heights (15-48 inches), roll-under clearances, curbless transitions, and surfaces a wheelchair can traverse. Treat barriers that only affect ambulatory users as secondary.`

// AuditPrompt returns the audit prompt for the requested accessibility mode.
func AuditPrompt(wheelchairAccessible bool) string {
	if wheelchairAccessible {
		return AuditPromptBase + auditPromptWheelchair
	}
	return AuditPromptBase
}

// ============================================================================
// Generation Prompts (Image Model)
// ============================================================================

// NegativePrompt suppresses physically impossible renovations in generated
// images.
const NegativePrompt = "floating structures, disconnected stairs, creating new walls, new partitions, impossible geometry, cartoon, blurry, ramps leading to nowhere, unsupported structures, defying gravity, gaps between surfaces, levitating objects, handrails without attachment points, grab bars floating in air"

// StyleEnforcers keeps generated renovations photorealistic and structurally
// plausible.
const StyleEnforcers = "photorealistic, architectural render, 8k resolution, seamless blend, physically accurate, structurally sound, realistic shadows, natural lighting integration, material consistency, perspective accuracy"

// wheelchairEmphasis is appended to generation prompts in wheelchair mode.
const wheelchairEmphasis = "wheelchair accessible, 60 inch turning radius preserved, curbless transition"

// RenderPrompt builds the final fill prompt for a generation pass.
func RenderPrompt(base string, wheelchairAccessible bool) string {
	prompt := base + ", " + StyleEnforcers
	if wheelchairAccessible {
		prompt += ", " + wheelchairEmphasis
	}
	return prompt
}
