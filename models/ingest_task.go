package models

import "github.com/google/uuid"

const (
	IngestPending   = 0
	IngestComplete  = 1
	IngestDuplicate = 2
	IngestFailed    = 3
)

// IngestTask is one registration of a staged upload. The worker drains
// pending rows, so a registration survives a process restart and its outcome
// stays observable afterwards.
type IngestTask struct {
	ID        uint64 `gorm:"primaryKey"`
	CreatedAt int64  `gorm:"autoCreateTime"`
	UpdatedAt int64  `gorm:"autoUpdateTime"`
	Token     string `gorm:"type:varchar(100);index:uniq_ingest_token,unique"`
	Filename  string `gorm:"type:varchar(300);not null"`
	Status    int    `gorm:"index:idx_ingest_status;not null;default 0"`
	Detail    string `gorm:"type:varchar(500)"` // failure reason, for the logs and manual inspection
}

func NewIngestTask(filename string) IngestTask {
	return IngestTask{
		Token:    uuid.NewString(),
		Filename: filename,
	}
}
