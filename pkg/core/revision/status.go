// Package revision tracks which revision of a dataset a client is looking at.
package revision

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/oneconcern/datahub/pkg/core/status"
)

// Query parameters resolving a revision on the server
const (
	ParamBranch = "branchName"
	ParamDraft  = "draftNumber"
	ParamCommit = "commit"
)

// Kind of head a status points to
type Kind uint8

// Kinds of revision heads
const (
	KindCommit Kind = iota
	KindDraft
)

func (k Kind) String() string {
	switch k {
	case KindCommit:
		return "commit"
	case KindDraft:
		return "draft"
	default:
		return "unknown"
	}
}

// Status is the position of a client in the revision graph of a dataset.
//
// The head is either an open draft (on a branch) or a commit, never both.
// A commit status with an empty commit id stands for a branch without any commit yet.
// Status values are immutable: transitions yield a new value.
type Status struct {
	kind   Kind
	branch string
	draft  uint32
	commit string
}

// OnCommit builds a status pinned to a commit. The branch is optional, and is empty for
// a commit resolved from a tag or a commit id.
func OnCommit(branch, commitID string) Status {
	return Status{kind: KindCommit, branch: branch, commit: commitID}
}

// OnBranch builds a status at the head of a branch
func OnBranch(branch, headCommitID string) (Status, error) {
	if branch == "" {
		return Status{}, status.ErrInvalidParams.WrapMessage("a branch name is required")
	}
	return OnCommit(branch, headCommitID), nil
}

// OnDraft builds a status on an open draft, which always belongs to a branch
func OnDraft(branch string, number uint32) (Status, error) {
	if branch == "" {
		return Status{}, status.ErrInvalidParams.WrapMessage("draft #%d: a branch name is required", number)
	}
	return Status{kind: KindDraft, branch: branch, draft: number}, nil
}

// Kind of head
func (s Status) Kind() Kind {
	return s.kind
}

// IsDraft tells if the head is an open draft
func (s Status) IsDraft() bool {
	return s.kind == KindDraft
}

// IsCommit tells if the head is a commit
func (s Status) IsCommit() bool {
	return s.kind == KindCommit
}

// BranchName of the status, if any
func (s Status) BranchName() string {
	return s.branch
}

// DraftNumber of the open draft, if any
func (s Status) DraftNumber() (uint32, bool) {
	if s.kind != KindDraft {
		return 0, false
	}
	return s.draft, true
}

// CommitID of the head commit, if any
func (s Status) CommitID() (string, bool) {
	if s.kind != KindCommit || s.commit == "" {
		return "", false
	}
	return s.commit, true
}

// CheckAuthorityForDraft fails unless the head is an open draft
func (s Status) CheckAuthorityForDraft() error {
	if s.kind != KindDraft {
		return status.ErrRequiresDraft
	}
	return nil
}

// CheckAuthorityForCommit fails unless the head is a resolved commit
func (s Status) CheckAuthorityForCommit() error {
	if _, ok := s.CommitID(); !ok {
		return status.ErrRequiresCommit
	}
	return nil
}

// Info returns the minimal set of query parameters for the server to resolve this revision
func (s Status) Info() url.Values {
	info := make(url.Values, 1)
	switch {
	case s.kind == KindDraft:
		info.Set(ParamDraft, strconv.FormatUint(uint64(s.draft), 10))
	case s.commit != "":
		info.Set(ParamCommit, s.commit)
	case s.branch != "":
		info.Set(ParamBranch, s.branch)
	}
	return info
}

// Revision reference of the head, as accepted by the server for diffs: a commit id, or "#n" for a draft
func (s Status) Revision() string {
	if s.kind == KindDraft {
		return "#" + strconv.FormatUint(uint64(s.draft), 10)
	}
	if s.commit != "" {
		return s.commit
	}
	return s.branch
}

func (s Status) String() string {
	switch {
	case s.kind == KindDraft:
		return fmt.Sprintf("draft #%d on branch %q", s.draft, s.branch)
	case s.commit == "" && s.branch != "":
		return fmt.Sprintf("branch %q without commit", s.branch)
	case s.branch != "":
		return fmt.Sprintf("commit %s on branch %q", s.commit, s.branch)
	default:
		return fmt.Sprintf("commit %s", s.commit)
	}
}
