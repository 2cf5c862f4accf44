package models

import (
	"fmt"
	"time"
)

// SyncKind identifies what a sync operation fetches
type SyncKind string

const (
	SyncKindRepositories SyncKind = "repositories"
	SyncKindPullRequests SyncKind = "pullrequests"
	SyncKindComments     SyncKind = "comments"
)

// SyncOperationKey builds the cache key suffix for a sync kind and target,
// e.g. "repositories" or "pullrequests_42".
func SyncOperationKey(kind SyncKind, targetID int64) string {
	if kind == SyncKindRepositories {
		return string(kind)
	}
	return fmt.Sprintf("%s_%d", kind, targetID)
}

// SyncProgress is an advisory progress event. Percent runs 0 at fetch start,
// 25 when processing begins, then 25+75*processed/total, and 100 on
// completion. Errors surface as a 0% event with Message set.
type SyncProgress struct {
	OperationID string    `json:"operationId"`
	Kind        SyncKind  `json:"kind"`
	Percent     int       `json:"percent"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
}

// SyncResult reports what a sync operation did
type SyncResult struct {
	Kind        SyncKind  `json:"kind"`
	ItemsSynced int       `json:"itemsSynced"`
	Skipped     bool      `json:"skipped"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
}
