package pipeline

// Stage identifies where an ingestion run currently is.
type Stage string

const (
	StageExtracting Stage = "extracting"
	StageConverting Stage = "converting"
	StageChunking   Stage = "chunking"
	StageIndexing   Stage = "indexing"
	StageCompleted  Stage = "completed"
	StageFailed     Stage = "failed"
)

// Status is a progress report emitted by the pipeline, consumed by the
// caller for observability only.
type Status struct {
	Stage        Stage   `json:"stage"`
	Progress     float64 `json:"progress"`
	Message      string  `json:"message"`
	CurrentBatch int     `json:"current_batch,omitempty"`
	TotalBatches int     `json:"total_batches,omitempty"`
}

// StatusFunc receives progress updates. Implementations must be fast and
// must not block the pipeline.
type StatusFunc func(Status)
