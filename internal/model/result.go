package model

// OutlineSection is one segment of the submitted text, used for the
// outline event and for progress reporting during streaming.
type OutlineSection struct {
	ID      string `json:"id"`
	Excerpt string `json:"excerpt"`
}

// Cluster groups near-duplicate claims by index into the claim list.
// The representative is always a member of its own cluster.
type Cluster struct {
	Representative int   `json:"representative"`
	Members        []int `json:"members"`
}

// Statement is the display form of a cluster: one representative claim
// standing for all of its members.
type Statement struct {
	Representative AtomicClaim   `json:"representative"`
	Members        []AtomicClaim `json:"members"`
}

// Frames buckets the representative claims by discourse category.
type Frames struct {
	Facts     []AtomicClaim `json:"facts"`
	Policies  []AtomicClaim `json:"policies"`
	Values    []AtomicClaim `json:"values"`
	Concerns  []AtomicClaim `json:"concerns"`
	Questions []AtomicClaim `json:"questions"`
}

// Meta carries provenance for one analysis run.
type Meta struct {
	Model string `json:"model"`
	Trace string `json:"trace"`
}

// AnalysisResult is the complete output of the analysis pipeline for a
// single submission.
type AnalysisResult struct {
	Outline    []OutlineSection `json:"outline"`
	Claims     []AtomicClaim    `json:"claims"`
	Clusters   []Cluster        `json:"clusters"`
	Statements []Statement      `json:"statements"`
	Frames     Frames           `json:"frames"`
	Degraded   bool             `json:"degraded"`
	Reason     string           `json:"reason,omitempty"`
	Meta       Meta             `json:"meta"`
}

// RefinementResult is the output of the refinement stage: one primary
// claim, the rest demoted to drafts.
type RefinementResult struct {
	PrimaryIndex int           `json:"primaryIndex"`
	Claims       []AtomicClaim `json:"claims"`
	DraftIndexes []int         `json:"draftIndexes"`
	Degraded     bool          `json:"degraded"`
	Reason       string        `json:"reason,omitempty"`
}
