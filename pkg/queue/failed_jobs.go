package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shashiranjanraj/mandi/pkg/store"
)

// failedJobRecord is the shape persisted to the key-value store.
type failedJobRecord struct {
	JobType  string    `json:"jobType"`
	Payload  string    `json:"payload"`
	Error    string    `json:"error"`
	Attempts int       `json:"attempts"`
	FailedAt time.Time `json:"failedAt"`
}

const failedJobsKey = "failedJobs"

// failedJobStore is the optional persistent backend for failed jobs.
// Set via UseStore(); nil means in-memory only.
var failedJobStore store.Store

// UseStore configures the queue to persist failed jobs to the given store.
// Call once at boot, after store.Connect():
//
//	queue.UseStore(store.Default())
func UseStore(s store.Store) {
	failedJobStore = s
}

// persistFailed records a failed job in memory and, when a store is
// configured, appends it to the persisted failure list.
func (m *Manager) persistFailed(job Job, typeName string, lastErr error, attempts int) {
	m.mu.Lock()
	m.failed = append(m.failed, FailedJob{
		Job: job, Err: lastErr, FailedAt: time.Now(), Attempts: attempts,
	})
	m.mu.Unlock()

	if failedJobStore == nil {
		return
	}

	payload, err := json.Marshal(job)
	if err != nil {
		payload = []byte(fmt.Sprintf(`{"error": "could not marshal: %v"}`, err))
	}

	record := failedJobRecord{
		JobType:  typeName,
		Payload:  string(payload),
		Error:    lastErr.Error(),
		Attempts: attempts,
		FailedAt: time.Now(),
	}

	var records []failedJobRecord
	if raw, ok := failedJobStore.Read(failedJobsKey); ok {
		// A corrupt list is dropped rather than blocking the new record.
		_ = json.Unmarshal(raw, &records)
	}
	records = append(records, record)

	if err := failedJobStore.Write(failedJobsKey, records); err != nil {
		// Non-fatal; the in-memory slice still has it.
		fmt.Printf("queue: failed to persist failed job %s: %v\n", typeName, err)
	}
}
