package domain

// JobStatus represents the lifecycle state of an audit job.
// Values include JobStatusProcessing, JobStatusCompleted, and JobStatusFailed.
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status can no longer change.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job represents a listing audit job and its progress metadata.
// A job is mutated only by the pipeline goroutine that owns it and becomes
// immutable once it reaches a terminal status.
type Job struct {
	ID                 string        `json:"job_id"`
	Status             JobStatus     `json:"status"`
	CurrentStatusText  string        `json:"current_status,omitempty"`
	TotalItems         int           `json:"total_images"`
	AuditProgress      int           `json:"audit_progress"`
	GenerationProgress int           `json:"generation_progress"`
	PropertyInfo       *PropertyInfo `json:"property_info,omitempty"`
	Results            []Result      `json:"results"`
	Error              string        `json:"error,omitempty"`
}

// Result holds the outcome for a single listing photo.
// RenovatedImage is set only when the audit found a barrier and the
// generator produced an artifact.
type Result struct {
	ItemIndex      int           `json:"image_number"`
	SourceURL      string        `json:"original_url"`
	Audit          *AuditOutcome `json:"audit"`
	Error          string        `json:"error,omitempty"`
	RenovatedImage string        `json:"renovated_image,omitempty"`
}

// Clone returns a deep copy of the job so callers can hand out snapshots
// without exposing the registry's stored record.
func (j *Job) Clone() *Job {
	cp := *j
	if j.PropertyInfo != nil {
		info := *j.PropertyInfo
		amenities := make([]string, len(info.Amenities))
		copy(amenities, info.Amenities)
		info.Amenities = amenities
		cp.PropertyInfo = &info
	}
	cp.Results = make([]Result, len(j.Results))
	for i, r := range j.Results {
		if r.Audit != nil {
			audit := *r.Audit
			r.Audit = &audit
		}
		cp.Results[i] = r
	}
	return &cp
}
