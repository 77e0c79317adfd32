package model

import (
	"strconv"
	"time"
)

// DraftStatus models the lifecycle of a draft
type DraftStatus string

const (
	// DraftOpen is the state of a draft accepting writes
	DraftOpen DraftStatus = "OPEN"

	// DraftClosed indicates the draft has been closed without committing. This is a terminal state.
	DraftClosed DraftStatus = "CLOSED"

	// DraftCommitted indicates the draft has been committed. This is a terminal state.
	DraftCommitted DraftStatus = "COMMITTED"
)

// IsValid checks the value of a draft status
func (s DraftStatus) IsValid() bool {
	switch s {
	case DraftOpen, DraftClosed, DraftCommitted:
		return true
	default:
		return false
	}
}

func (s DraftStatus) String() string {
	return string(s)
}

// User describes the author of a commit or draft
type User struct {
	Name string `json:"name" yaml:"name"`
	Date int64  `json:"date" yaml:"date"` // unix seconds
}

// Time when the user acted
func (u User) Time() time.Time {
	return time.Unix(u.Date, 0).UTC()
}

// Commit is an immutable revision of a dataset
type Commit struct {
	CommitID       string `json:"commitId" yaml:"commitId"`
	ParentCommitID string `json:"parentCommitId,omitempty" yaml:"parentCommitId,omitempty"`
	Title          string `json:"title" yaml:"title"`
	Description    string `json:"description,omitempty" yaml:"description,omitempty"`
	Committer      User   `json:"committer" yaml:"committer"`
	_              struct{}
}

// Branch is a movable pointer to the latest commit on a line of history.
//
// CommitID is empty for the default branch of a dataset without commits.
type Branch struct {
	Name string `json:"name" yaml:"name"`
	Commit
}

// Tag is an immutable alias for a specific commit
type Tag struct {
	Name string `json:"name" yaml:"name"`
	Commit
}

// Draft is a mutable revision opened on a branch
type Draft struct {
	Number         uint32      `json:"number" yaml:"number"`
	Title          string      `json:"title" yaml:"title"`
	Description    string      `json:"description,omitempty" yaml:"description,omitempty"`
	BranchName     string      `json:"branchName" yaml:"branchName"`
	Status         DraftStatus `json:"status" yaml:"status"`
	ParentCommitID string      `json:"parentCommitId,omitempty" yaml:"parentCommitId,omitempty"`
	Author         User        `json:"author" yaml:"author"`
	UpdatedAt      int64       `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
	_              struct{}
}

// DraftRef renders the revision reference of a draft number, as understood by the server
func DraftRef(number uint32) string {
	return "#" + strconv.FormatUint(uint64(number), 10)
}
