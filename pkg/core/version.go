package core

import (
	"context"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/oneconcern/datahub/pkg/core/pager"
	"github.com/oneconcern/datahub/pkg/core/revision"
	"github.com/oneconcern/datahub/pkg/core/status"
	"github.com/oneconcern/datahub/pkg/model"
)

const paramName = "name"

// CheckoutTarget designates the revision to check out: either a draft number,
// or a revision reference (branch name, tag or commit id)
type CheckoutTarget struct {
	Revision    string
	DraftNumber uint32
}

type draftBody struct {
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	BranchName  string            `json:"branchName,omitempty"`
	Status      model.DraftStatus `json:"status,omitempty"`
}

// CreateDraft opens a new draft at the head of a branch, and checks it out.
//
// The branch defaults to the branch of the current status.
func (d *DatasetClient) CreateDraft(ctx context.Context, title, description, branch string) (uint32, error) {
	if title == "" {
		return 0, status.ErrInvalidParams.WrapMessage("a draft title is required")
	}
	if branch == "" {
		branch = d.status.BranchName()
	}
	if branch == "" {
		return 0, status.ErrStatus.WrapMessage("drafts are opened on a branch, and %s is not on any", d.status)
	}

	var resp struct {
		DraftNumber uint32 `json:"draftNumber"`
	}
	body := draftBody{Title: title, Description: description, BranchName: branch}
	if err := d.client.do(ctx, d.plainRequest("POST", "drafts", nil, body), &resp); err != nil {
		return 0, err
	}

	st, err := revision.OnDraft(branch, resp.DraftNumber)
	if err != nil {
		return 0, err
	}
	d.status = st
	d.logger().Info("created draft", zap.Uint32("draft", resp.DraftNumber), zap.String("branch", branch))
	return resp.DraftNumber, nil
}

// ListDrafts lists the drafts of the dataset, optionally filtered by status and branch
func (d *DatasetClient) ListDrafts(draftStatus model.DraftStatus, branch string) *pager.Sequence[model.Draft] {
	query := url.Values{}
	if draftStatus != "" {
		query.Set("status", draftStatus.String())
	}
	if branch != "" {
		query.Set(revision.ParamBranch, branch)
	}
	return pager.New(
		pageOf[model.Draft](d.client, d.plainRequest("GET", "drafts", query, nil), "drafts"),
		d.pagerOptions()...,
	)
}

// GetDraft retrieves a draft by its number
func (d *DatasetClient) GetDraft(ctx context.Context, number uint32) (model.Draft, error) {
	query := url.Values{revision.ParamDraft: []string{strconv.FormatUint(uint64(number), 10)}}
	drafts, _, err := pageOf[model.Draft](d.client, d.plainRequest("GET", "drafts", query, nil), "drafts")(ctx, 0, 1)
	if err != nil {
		return model.Draft{}, err
	}
	for _, draft := range drafts {
		if draft.Number == number {
			return draft, nil
		}
	}
	return model.Draft{}, status.ErrResourceNotExist.WrapMessage("draft %s", model.DraftRef(number))
}

func draftResource(number uint32) string {
	return "drafts/" + strconv.FormatUint(uint64(number), 10)
}

// UpdateDraft changes the title and description of the current draft
func (d *DatasetClient) UpdateDraft(ctx context.Context, title, description string) error {
	if err := d.status.CheckAuthorityForDraft(); err != nil {
		return err
	}
	number, _ := d.status.DraftNumber()
	body := draftBody{Title: title, Description: description}
	return d.client.do(ctx, d.plainRequest("PATCH", draftResource(number), nil, body), nil)
}

// CloseDraft closes a draft without committing it.
//
// Closing the current draft moves the status back to the head of its branch.
func (d *DatasetClient) CloseDraft(ctx context.Context, number uint32) error {
	body := draftBody{Status: model.DraftClosed}
	if err := d.client.do(ctx, d.plainRequest("PATCH", draftResource(number), nil, body), nil); err != nil {
		return err
	}
	d.logger().Info("closed draft", zap.Uint32("draft", number))

	if current, ok := d.status.DraftNumber(); !ok || current != number {
		return nil
	}
	return d.checkoutBranchHead(ctx, d.status.BranchName())
}

// Commit the current draft, and check out the resulting commit
func (d *DatasetClient) Commit(ctx context.Context, title, description, tag string) (string, error) {
	if err := d.status.CheckAuthorityForDraft(); err != nil {
		return "", err
	}
	if title == "" {
		return "", status.ErrInvalidParams.WrapMessage("a commit title is required")
	}

	var resp struct {
		CommitID string `json:"commitId"`
	}
	body := struct {
		Title       string `json:"title"`
		Description string `json:"description,omitempty"`
		Tag         string `json:"tag,omitempty"`
	}{Title: title, Description: description, Tag: tag}
	if err := d.client.do(ctx, d.request("POST", "commits", nil, body), &resp); err != nil {
		return "", err
	}

	number, _ := d.status.DraftNumber()
	d.status = revision.OnCommit(d.status.BranchName(), resp.CommitID)
	d.logger().Info("committed draft",
		zap.Uint32("draft", number), zap.String("commit", resp.CommitID), zap.String("tag", tag))
	return resp.CommitID, nil
}

// ListCommits lists the history of a revision, latest first. It defaults to the current revision.
func (d *DatasetClient) ListCommits(rev string) *pager.Sequence[model.Commit] {
	req := d.request("GET", "commits", nil, nil)
	if rev != "" {
		req = d.plainRequest("GET", "commits", url.Values{revision.ParamCommit: []string{rev}}, nil)
	}
	return pager.New(pageOf[model.Commit](d.client, req, "commits"), d.pagerOptions()...)
}

// GetCommit retrieves a commit from a revision reference (branch, tag or commit id)
func (d *DatasetClient) GetCommit(ctx context.Context, rev string) (model.Commit, error) {
	if rev == "" {
		return model.Commit{}, status.ErrInvalidParams.WrapMessage("a revision is required")
	}
	req := d.plainRequest("GET", "commits", url.Values{revision.ParamCommit: []string{rev}}, nil)
	commits, _, err := pageOf[model.Commit](d.client, req, "commits")(ctx, 0, 1)
	if err != nil {
		return model.Commit{}, err
	}
	if len(commits) == 0 {
		return model.Commit{}, status.ErrResourceNotExist.WrapMessage("commit %q", rev)
	}
	return commits[0], nil
}

func branchName(b model.Branch) string {
	return b.Name
}

func tagName(t model.Tag) string {
	return t.Name
}

// ListBranches lists the branches of the dataset
func (d *DatasetClient) ListBranches() *pager.NameList[model.Branch] {
	req := d.plainRequest("GET", "branches", nil, nil)
	return pager.NewNameList(
		pager.New(pageOf[model.Branch](d.client, req, "branches"), d.pagerOptions()...),
		branchName,
		lookupOf(d.client, req, "branches", paramName, branchName),
	)
}

// GetBranch retrieves a branch by name
func (d *DatasetClient) GetBranch(ctx context.Context, name string) (model.Branch, error) {
	return d.ListBranches().ByName(ctx, name)
}

// headCommit resolves a revision to a commit id, defaulting to the current commit
func (d *DatasetClient) headCommit(ctx context.Context, rev string) (string, error) {
	if rev != "" {
		commit, err := d.GetCommit(ctx, rev)
		if err != nil {
			return "", err
		}
		return commit.CommitID, nil
	}
	if err := d.status.CheckAuthorityForCommit(); err != nil {
		return "", err
	}
	id, _ := d.status.CommitID()
	return id, nil
}

type refBody struct {
	Name   string `json:"name"`
	Commit string `json:"commit"`
}

// CreateBranch creates a branch at some revision, and checks it out.
//
// The revision defaults to the current commit.
func (d *DatasetClient) CreateBranch(ctx context.Context, name, rev string) error {
	if name == "" {
		return status.ErrInvalidParams.WrapMessage("a branch name is required")
	}
	commitID, err := d.headCommit(ctx, rev)
	if err != nil {
		return err
	}
	if err = d.client.do(ctx, d.plainRequest("POST", "branches", nil, refBody{Name: name, Commit: commitID}), nil); err != nil {
		return err
	}
	d.status = revision.OnCommit(name, commitID)
	d.logger().Info("created branch", zap.String("branch", name), zap.String("commit", commitID))
	return nil
}

// DeleteBranch deletes a branch
func (d *DatasetClient) DeleteBranch(ctx context.Context, name string) error {
	if name == d.dataset.Branch() {
		return status.ErrInvalidParams.WrapMessage("the default branch %q may not be deleted", name)
	}
	return d.client.do(ctx, d.plainRequest("DELETE", "branches", url.Values{paramName: []string{name}}, nil), nil)
}

// ListTags lists the tags of the dataset
func (d *DatasetClient) ListTags() *pager.NameList[model.Tag] {
	req := d.plainRequest("GET", "tags", nil, nil)
	return pager.NewNameList(
		pager.New(pageOf[model.Tag](d.client, req, "tags"), d.pagerOptions()...),
		tagName,
		lookupOf(d.client, req, "tags", paramName, tagName),
	)
}

// GetTag retrieves a tag by name
func (d *DatasetClient) GetTag(ctx context.Context, name string) (model.Tag, error) {
	return d.ListTags().ByName(ctx, name)
}

// CreateTag tags some revision. The revision defaults to the current commit.
func (d *DatasetClient) CreateTag(ctx context.Context, name, rev string) error {
	if name == "" {
		return status.ErrInvalidParams.WrapMessage("a tag name is required")
	}
	commitID, err := d.headCommit(ctx, rev)
	if err != nil {
		return err
	}
	if err = d.client.do(ctx, d.plainRequest("POST", "tags", nil, refBody{Name: name, Commit: commitID}), nil); err != nil {
		return err
	}
	d.logger().Info("created tag", zap.String("tag", name), zap.String("commit", commitID))
	return nil
}

// DeleteTag deletes a tag
func (d *DatasetClient) DeleteTag(ctx context.Context, name string) error {
	return d.client.do(ctx, d.plainRequest("DELETE", "tags", url.Values{paramName: []string{name}}, nil), nil)
}

// Checkout moves the client to another revision.
//
// A revision reference is resolved as a branch name first, then as a tag, then as a commit id.
// The status is left unchanged when the target does not resolve.
func (d *DatasetClient) Checkout(ctx context.Context, target CheckoutTarget) error {
	st, err := d.resolve(ctx, target)
	if err != nil {
		return err
	}
	d.status = st
	d.logger().Info("checked out", zap.Stringer("status", st))
	return nil
}

func (d *DatasetClient) resolve(ctx context.Context, target CheckoutTarget) (revision.Status, error) {
	switch {
	case target.Revision != "" && target.DraftNumber != 0:
		return revision.Status{}, status.ErrInvalidParams.WrapMessage("checkout either a revision or a draft, not both")
	case target.DraftNumber != 0:
		draft, err := d.GetDraft(ctx, target.DraftNumber)
		if err != nil {
			return revision.Status{}, err
		}
		if draft.Status != model.DraftOpen {
			return revision.Status{}, status.ErrStatus.WrapMessage("draft %s is %s", model.DraftRef(draft.Number), draft.Status)
		}
		return revision.OnDraft(draft.BranchName, draft.Number)
	case target.Revision != "":
	default:
		return revision.Status{}, status.ErrInvalidParams.WrapMessage("a revision or a draft number is required")
	}

	branch, err := d.GetBranch(ctx, target.Revision)
	if err == nil {
		return revision.OnCommit(branch.Name, branch.CommitID), nil
	}
	if !isNotExist(err) {
		return revision.Status{}, err
	}

	tag, err := d.GetTag(ctx, target.Revision)
	if err == nil {
		return revision.OnCommit("", tag.CommitID), nil
	}
	if !isNotExist(err) {
		return revision.Status{}, err
	}

	commit, err := d.GetCommit(ctx, target.Revision)
	if err != nil {
		if isNotExist(err) {
			return revision.Status{}, status.ErrResourceNotExist.WrapMessage("revision %q", target.Revision)
		}
		return revision.Status{}, err
	}
	return revision.OnCommit("", commit.CommitID), nil
}

// checkoutBranchHead moves the status to the head of a branch, which may have no commit yet
func (d *DatasetClient) checkoutBranchHead(ctx context.Context, name string) error {
	branch, err := d.GetBranch(ctx, name)
	switch {
	case err == nil:
		d.status = revision.OnCommit(branch.Name, branch.CommitID)
		return nil
	case isNotExist(err):
		st, erb := revision.OnBranch(name, "")
		if erb != nil {
			return erb
		}
		d.status = st
		return nil
	default:
		return err
	}
}
