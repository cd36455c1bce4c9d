package workflow

const (
	// ReviewApprovedSignalName resumes a batch gated in review once a
	// reviewer approves the outstanding two-part-tariff volumes.
	ReviewApprovedSignalName = "review-approved"
)

// ReviewApprovedSignal carries the approval event into the workflow.
type ReviewApprovedSignal struct {
	ApprovedBy string `json:"approved_by"`
}
