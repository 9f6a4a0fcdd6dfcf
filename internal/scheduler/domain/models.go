// Package domain holds the scheduler's job claim records.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// JobRunStatus marks the outcome of a claimed job.
type JobRunStatus string

const (
	JobRunStatusRunning   JobRunStatus = "RUNNING"
	JobRunStatusSucceeded JobRunStatus = "SUCCEEDED"
)

// JobRun is one claimed unit of scheduled work. The unique index doubles as
// the cross-replica lock: whichever replica inserts the row first owns the
// run, everyone else skips. Failed claims are deleted so the next tick
// retries.
type JobRun struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Job       string       `gorm:"type:text;not null;uniqueIndex:ux_job_run" json:"job"`
	PeriodKey string       `gorm:"type:text;not null;uniqueIndex:ux_job_run" json:"period_key"`
	CompanyID snowflake.ID `gorm:"not null;uniqueIndex:ux_job_run" json:"company_id"`

	Status     JobRunStatus `gorm:"type:text;not null" json:"status"`
	StartedAt  time.Time    `gorm:"not null" json:"started_at"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
}

// TableName sets the database table name.
func (JobRun) TableName() string { return "scheduler_job_runs" }
