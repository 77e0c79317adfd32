package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneconcern/datahub/pkg/config"
	"github.com/oneconcern/datahub/pkg/core/revision"
	"github.com/oneconcern/datahub/pkg/core/status"
	"github.com/oneconcern/datahub/pkg/errors"
	"github.com/oneconcern/datahub/pkg/model"
)

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(config.ClientConfig{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrInvalidParams))

	cfg := config.Default()
	cfg.AccessKey = "Accesskey-0123456789"
	c, err := NewClient(cfg)
	require.NoError(t, err)
	assert.NotNil(t, c.opener, "the HTTP transport reads remote data")
}

func TestDatasets(t *testing.T) {
	ctx := context.Background()
	srv := newFakeServer()
	c := newTestClient(srv)

	for _, name := range []string{"alpha", "beta", "gamma", "delta"} {
		_, err := c.CreateDataset(ctx, name)
		require.NoError(t, err)
	}
	_, err := c.CreateDataset(ctx, "beta")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrNameConflict))

	all, err := c.ListDatasets("").All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "delta", all[3].Name)

	d, err := c.GetDataset(ctx, "gamma")
	require.NoError(t, err)
	assert.Equal(t, "ds-3", d.Dataset().ID)
	assert.True(t, d.Status().IsCommit())
	assert.Equal(t, model.DefaultBranch, d.Status().BranchName())
	_, hasCommit := d.Status().CommitID()
	assert.False(t, hasCommit, "a new dataset has no commit")

	require.NoError(t, c.DeleteDataset(ctx, "gamma"))
	_, err = c.GetDataset(ctx, "gamma")
	assert.True(t, errors.Is(err, status.ErrResourceNotExist))
}

func TestDraftCommitCheckout(t *testing.T) {
	ctx := context.Background()
	srv := newFakeServer()
	d := newDraftDataset(t, srv)

	number, ok := d.Status().DraftNumber()
	require.True(t, ok)
	assert.EqualValues(t, 1, number)
	assert.Equal(t, "1", d.Status().Info().Get(revision.ParamDraft))

	commitID, err := d.Commit(ctx, "first commit", "", "v1")
	require.NoError(t, err)
	assert.Equal(t, "commit-1", commitID)
	assert.True(t, d.Status().IsCommit())
	assert.Equal(t, model.DefaultBranch, d.Status().BranchName())
	assert.Equal(t, commitID, d.Status().Info().Get(revision.ParamCommit))

	_, err = d.Commit(ctx, "again", "", "")
	assert.True(t, errors.Is(err, status.ErrRequiresDraft))

	t.Run("checkout by tag", func(t *testing.T) {
		require.NoError(t, d.Checkout(ctx, CheckoutTarget{Revision: "v1"}))
		id, ok := d.Status().CommitID()
		require.True(t, ok)
		assert.Equal(t, commitID, id)
		assert.Empty(t, d.Status().BranchName())
	})

	t.Run("checkout by commit", func(t *testing.T) {
		require.NoError(t, d.Checkout(ctx, CheckoutTarget{Revision: commitID}))
		assert.Equal(t, commitID, d.Status().Info().Get(revision.ParamCommit))
	})

	t.Run("checkout by branch", func(t *testing.T) {
		require.NoError(t, d.Checkout(ctx, CheckoutTarget{Revision: model.DefaultBranch}))
		assert.Equal(t, revision.OnCommit(model.DefaultBranch, commitID), d.Status())
	})

	t.Run("checkout unknown revision", func(t *testing.T) {
		before := d.Status()
		err := d.Checkout(ctx, CheckoutTarget{Revision: "nowhere"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, status.ErrResourceNotExist))
		assert.Equal(t, before, d.Status(), "a failed checkout leaves the status unchanged")
	})

	t.Run("checkout draft", func(t *testing.T) {
		n, err := d.CreateDraft(ctx, "second draft", "", "")
		require.NoError(t, err)
		require.NoError(t, d.Checkout(ctx, CheckoutTarget{Revision: "v1"}))

		require.NoError(t, d.Checkout(ctx, CheckoutTarget{DraftNumber: n}))
		current, ok := d.Status().DraftNumber()
		require.True(t, ok)
		assert.Equal(t, n, current)
		assert.Equal(t, model.DefaultBranch, d.Status().BranchName())

		require.NoError(t, d.CloseDraft(ctx, n))
		assert.Equal(t, revision.OnCommit(model.DefaultBranch, commitID), d.Status(), "closing the current draft returns to the branch head")

		err = d.Checkout(ctx, CheckoutTarget{DraftNumber: n})
		assert.True(t, errors.Is(err, status.ErrStatus), "a closed draft cannot be checked out")
		err = d.Checkout(ctx, CheckoutTarget{DraftNumber: 42})
		assert.True(t, errors.Is(err, status.ErrResourceNotExist))
	})

	t.Run("invalid targets", func(t *testing.T) {
		assert.True(t, errors.Is(d.Checkout(ctx, CheckoutTarget{}), status.ErrInvalidParams))
		assert.True(t, errors.Is(d.Checkout(ctx, CheckoutTarget{Revision: "v1", DraftNumber: 1}), status.ErrInvalidParams))
	})
}

func TestCreateDraftRequiresBranch(t *testing.T) {
	ctx := context.Background()
	srv := newFakeServer()
	d := newDraftDataset(t, srv)
	commitID, err := d.Commit(ctx, "first commit", "", "v1")
	require.NoError(t, err)

	require.NoError(t, d.Checkout(ctx, CheckoutTarget{Revision: commitID}))
	before := srv.totalCalls()
	_, err = d.CreateDraft(ctx, "detached", "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrStatus))
	assert.Equal(t, before, srv.totalCalls())

	n, err := d.CreateDraft(ctx, "on main", "", model.DefaultBranch)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	drafts, err := d.ListDrafts(model.DraftOpen, "").All(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "on main", drafts[0].Title)
}

func TestBranchesAndTags(t *testing.T) {
	ctx := context.Background()
	srv := newFakeServer()
	d := newDraftDataset(t, srv)

	err := d.CreateBranch(ctx, "dev", "")
	assert.True(t, errors.Is(err, status.ErrRequiresCommit), "a branch starts from a commit")

	commitID, err := d.Commit(ctx, "first commit", "", "")
	require.NoError(t, err)

	require.NoError(t, d.CreateBranch(ctx, "dev", ""))
	assert.Equal(t, revision.OnCommit("dev", commitID), d.Status(), "the new branch is checked out")

	names, err := d.ListBranches().Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{model.DefaultBranch, "dev"}, names)

	has, err := d.ListBranches().Has(ctx, "feature")
	require.NoError(t, err)
	assert.False(t, has)

	err = d.CreateBranch(ctx, "dev", commitID)
	assert.True(t, errors.Is(err, status.ErrNameConflict))

	require.NoError(t, d.CreateTag(ctx, "v1", ""))
	tag, err := d.GetTag(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, commitID, tag.CommitID)

	err = d.DeleteBranch(ctx, model.DefaultBranch)
	assert.True(t, errors.Is(err, status.ErrInvalidParams))

	commits, err := d.ListCommits("").All(ctx)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "first commit", commits[0].Title)
}
