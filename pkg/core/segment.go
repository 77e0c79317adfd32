package core

import (
	"context"
	"net/url"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/oneconcern/datahub/pkg/core/pager"
	"github.com/oneconcern/datahub/pkg/core/status"
	"github.com/oneconcern/datahub/pkg/model"
)

const paramRemotePath = "remotePath"

// SegmentClient operates on a plain segment, at the revision of the dataset
// when the handle was obtained
type SegmentClient struct {
	segmentRef
}

func newSegmentClient(d *DatasetClient, name string) *SegmentClient {
	return &SegmentClient{segmentRef: newSegmentRef(d, name)}
}

func remotePathOf(d model.RemoteData) string {
	return d.RemotePath
}

// ListDataPaths lists the remote paths of the data in this segment
func (s *SegmentClient) ListDataPaths() *pager.Sequence[string] {
	return pager.New(
		pageOf[string](s.client(), s.request("GET", "data/paths", nil, nil), "filePaths"),
		s.dataset.pagerOptions()...,
	)
}

// ListData lists the data in this segment, with their labels and download URLs
func (s *SegmentClient) ListData() *pager.NameList[model.RemoteData] {
	req := s.request("GET", "data", nil, nil)
	return pager.NewNameList(
		pager.New(pageOf[model.RemoteData](s.client(), req, "dataDetails"), s.dataset.pagerOptions()...),
		remotePathOf,
		lookupOf(s.client(), req, "dataDetails", paramRemotePath, remotePathOf),
	)
}

func (s *SegmentClient) remoteIndex(ctx context.Context) (*remoteIndex, error) {
	index := newRemoteIndex()
	err := s.ListDataPaths().ForEach(ctx, func(p string) error {
		index.addPath(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return index, nil
}

// UploadFile uploads a single data item with its label
func (s *SegmentClient) UploadFile(ctx context.Context, item model.DataItem, opts ...UploadOption) error {
	return s.dataset.newPipeline(opts).run(ctx, s, plainUnits([]model.DataItem{item}))
}

type labelObject struct {
	RemotePath string              `json:"remotePath"`
	Label      jsoniter.RawMessage `json:"label"`
}

type labelsBody struct {
	SegmentName string        `json:"segmentName"`
	Objects     []labelObject `json:"objects"`
}

// UploadLabel updates the label of data uploaded already
func (s *SegmentClient) UploadLabel(ctx context.Context, item model.DataItem) error {
	if err := s.status.CheckAuthorityForDraft(); err != nil {
		return err
	}
	if len(item.Label) == 0 {
		return status.ErrInvalidParams.WrapMessage("no label to upload for %q", item.TargetPath())
	}
	body := labelsBody{
		SegmentName: s.name,
		Objects:     []labelObject{{RemotePath: item.TargetPath(), Label: item.Label}},
	}
	return s.client().do(ctx, s.request("PUT", "multi/data/labels", nil, body), nil)
}

// DeleteData removes data from this segment, on the current draft
func (s *SegmentClient) DeleteData(ctx context.Context, remotePaths ...string) error {
	if err := s.status.CheckAuthorityForDraft(); err != nil {
		return err
	}
	if len(remotePaths) == 0 {
		return nil
	}
	body := struct {
		SegmentName string   `json:"segmentName"`
		RemotePaths []string `json:"remotePaths"`
	}{SegmentName: s.name, RemotePaths: remotePaths}
	if err := s.client().do(ctx, s.request("DELETE", "data", nil, body), nil); err != nil {
		return err
	}
	s.logger().Info("deleted data", zap.Int("count", len(remotePaths)))
	return nil
}

func (s *SegmentClient) getData(ctx context.Context, remotePath string) (model.RemoteData, error) {
	query := url.Values{paramRemotePath: []string{remotePath}}
	items, _, err := pageOf[model.RemoteData](s.client(), s.request("GET", "data", query, nil), "dataDetails")(ctx, 0, 1)
	if err != nil {
		return model.RemoteData{}, err
	}
	for _, item := range items {
		if item.RemotePath == remotePath {
			return item, nil
		}
	}
	return model.RemoteData{}, status.ErrResourceNotExist.WrapMessage("data %q in segment %q", remotePath, s.name)
}
