package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskJournalIntegrityScan walks owner journals and reports
	// invariant violations.
	TaskJournalIntegrityScan = "journal:integrity_scan"
)

// IntegrityScanPayload narrows a scan to specific owners. An empty
// OwnerIDs slice means scan every active owner.
type IntegrityScanPayload struct {
	OwnerIDs []string `json:"owner_ids,omitempty"`
}

// NewIntegrityScanTask constructs an Asynq task for a journal scan.
func NewIntegrityScanTask(payload IntegrityScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskJournalIntegrityScan, data), nil
}
