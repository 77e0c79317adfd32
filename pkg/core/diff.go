package core

import (
	"context"
	"net/url"

	"github.com/oneconcern/datahub/pkg/core/pager"
	"github.com/oneconcern/datahub/pkg/core/status"
	"github.com/oneconcern/datahub/pkg/model"
	"github.com/oneconcern/datahub/pkg/transport"
)

const paramBasehead = "basehead"

// Diff between two revisions of a dataset.
//
// Segments are listed lazily, in server order. The data of a segment are only listed for changed segments.
type Diff struct {
	Base     string
	Head     string
	Segments *pager.NameList[*SegmentDiffEntry]
}

// SegmentDiffEntry is the difference on a single segment, with the paged differences on its data
type SegmentDiffEntry struct {
	model.SegmentDiff
	Data *pager.Sequence[model.DataDiff]
}

func segmentDiffName(e *SegmentDiffEntry) string {
	return e.Name
}

func basehead(base, head string) string {
	return base + "..." + head
}

// Diff between two revisions, given as commit ids, or "#n" for a draft
func (d *DatasetClient) Diff(base, head string) (*Diff, error) {
	if base == "" || head == "" {
		return nil, status.ErrInvalidParams.WrapMessage("both base and head revisions are required")
	}
	req := d.plainRequest("GET", "diffs", url.Values{paramBasehead: []string{basehead(base, head)}}, nil)
	fetch := pageOf[model.SegmentDiff](d.client, req, "segments")
	lookup := lookupOf(d.client, req, "segments", paramSegment, func(s model.SegmentDiff) string { return s.Name })

	return &Diff{
		Base: base,
		Head: head,
		Segments: pager.NewNameList(
			pager.New(func(ctx context.Context, offset, limit int) ([]*SegmentDiffEntry, int, error) {
				diffs, total, err := fetch(ctx, offset, limit)
				if err != nil {
					return nil, 0, err
				}
				entries := make([]*SegmentDiffEntry, 0, len(diffs))
				for _, diff := range diffs {
					entries = append(entries, d.segmentDiffEntry(req, diff))
				}
				return entries, total, nil
			}, d.pagerOptions()...),
			segmentDiffName,
			func(ctx context.Context, name string) (*SegmentDiffEntry, error) {
				diff, err := lookup(ctx, name)
				if err != nil {
					return nil, err
				}
				return d.segmentDiffEntry(req, diff), nil
			},
		),
	}, nil
}

func (d *DatasetClient) segmentDiffEntry(req transport.Request, diff model.SegmentDiff) *SegmentDiffEntry {
	entry := &SegmentDiffEntry{SegmentDiff: diff}
	if !diff.Action.Changed() {
		entry.Data = pager.Static[model.DataDiff](nil)
		return entry
	}
	dataReq := req
	dataReq.Resource = "diffs/data"
	dataReq.Query = mergeQuery(req.Query, url.Values{paramSegment: []string{diff.Name}})
	entry.Data = pager.New(pageOf[model.DataDiff](d.client, dataReq, "data"), d.pagerOptions()...)
	return entry
}

// DiffWithHead compares the current revision with its parent commit
func (d *DatasetClient) DiffWithHead(ctx context.Context) (*Diff, error) {
	if number, ok := d.status.DraftNumber(); ok {
		draft, err := d.GetDraft(ctx, number)
		if err != nil {
			return nil, err
		}
		if draft.ParentCommitID == "" {
			return nil, status.ErrInvalidParams.WrapMessage("draft %s has no parent commit to compare with", model.DraftRef(number))
		}
		return d.Diff(draft.ParentCommitID, model.DraftRef(number))
	}

	if err := d.status.CheckAuthorityForCommit(); err != nil {
		return nil, err
	}
	id, _ := d.status.CommitID()
	commit, err := d.GetCommit(ctx, id)
	if err != nil {
		return nil, err
	}
	if commit.ParentCommitID == "" {
		return nil, status.ErrInvalidParams.WrapMessage("commit %s has no parent commit to compare with", id)
	}
	return d.Diff(commit.ParentCommitID, id)
}
