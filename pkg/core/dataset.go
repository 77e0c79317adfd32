package core

import (
	"context"
	"net/url"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/oneconcern/datahub/pkg/core/pager"
	"github.com/oneconcern/datahub/pkg/core/revision"
	"github.com/oneconcern/datahub/pkg/core/status"
	"github.com/oneconcern/datahub/pkg/model"
	"github.com/oneconcern/datahub/pkg/transport"
)

const paramSegment = "segmentName"

// DatasetClient operates on a single dataset, at the revision given by its status.
//
// A DatasetClient is not safe for concurrent use: its status must not change
// (checkout, draft, commit) while an upload runs against it.
type DatasetClient struct {
	client  *Client
	dataset model.Dataset
	status  revision.Status
	cache   afero.Fs
}

func newDatasetClient(c *Client, dataset model.Dataset, st revision.Status) *DatasetClient {
	return &DatasetClient{
		client:  c,
		dataset: dataset,
		status:  st,
	}
}

// Dataset descriptor
func (d *DatasetClient) Dataset() model.Dataset {
	return d.dataset
}

// Status of the client in the revision graph of the dataset
func (d *DatasetClient) Status() revision.Status {
	return d.status
}

// IsFusion tells if segments of this dataset are organized in frames
func (d *DatasetClient) IsFusion() bool {
	return d.dataset.IsFusion
}

func (d *DatasetClient) logger() *zap.Logger {
	return d.client.l.With(zap.String("dataset", d.dataset.Name))
}

// request against the dataset, resolved at some revision
func (d *DatasetClient) requestAt(st revision.Status, method, resource string, query url.Values, body interface{}) transport.Request {
	return transport.Request{
		Method:    method,
		Resource:  resource,
		DatasetID: d.dataset.ID,
		Query:     mergeQuery(st.Info(), query),
		Body:      body,
	}
}

// request against the dataset at the current revision
func (d *DatasetClient) request(method, resource string, query url.Values, body interface{}) transport.Request {
	return d.requestAt(d.status, method, resource, query, body)
}

// unversioned request against the dataset
func (d *DatasetClient) plainRequest(method, resource string, query url.Values, body interface{}) transport.Request {
	return transport.Request{
		Method:    method,
		Resource:  resource,
		DatasetID: d.dataset.ID,
		Query:     query,
		Body:      body,
	}
}

func (d *DatasetClient) pagerOptions() []pager.Option {
	return []pager.Option{pager.PageSize(d.client.pageSize), pager.Logger(d.client.l)}
}

func segmentName(s model.Segment) string {
	return s.Name
}

// ListSegments lists the segments at the current revision, in server order
func (d *DatasetClient) ListSegments() *pager.NameList[model.Segment] {
	req := d.request("GET", "segments", nil, nil)
	return pager.NewNameList(
		pager.New(pageOf[model.Segment](d.client, req, "segments"), d.pagerOptions()...),
		segmentName,
		lookupOf(d.client, req, "segments", paramSegment, segmentName),
	)
}

// HasSegment tells if a segment exists at the current revision
func (d *DatasetClient) HasSegment(ctx context.Context, name string) (bool, error) {
	return d.ListSegments().Has(ctx, name)
}

func (d *DatasetClient) checkPlain() error {
	if d.dataset.IsFusion {
		return status.ErrInvalidParams.WrapMessage("dataset %q is a fusion dataset", d.dataset.Name)
	}
	return nil
}

func (d *DatasetClient) checkFusion() error {
	if !d.dataset.IsFusion {
		return status.ErrInvalidParams.WrapMessage("dataset %q is not a fusion dataset", d.dataset.Name)
	}
	return nil
}

// CreateSegment creates a segment on the current draft. It fails with ErrNameConflict if it exists already.
func (d *DatasetClient) CreateSegment(ctx context.Context, name string) (*SegmentClient, error) {
	if err := d.checkPlain(); err != nil {
		return nil, err
	}
	seg := newSegmentClient(d, name)
	if err := seg.create(ctx); err != nil {
		return nil, err
	}
	return seg, nil
}

// GetSegment returns a client on an existing segment
func (d *DatasetClient) GetSegment(ctx context.Context, name string) (*SegmentClient, error) {
	if err := d.checkPlain(); err != nil {
		return nil, err
	}
	if _, err := d.ListSegments().ByName(ctx, name); err != nil {
		return nil, err
	}
	return newSegmentClient(d, name), nil
}

// GetOrCreateSegment returns a client on a segment, created on the current draft when absent
func (d *DatasetClient) GetOrCreateSegment(ctx context.Context, name string) (*SegmentClient, error) {
	if err := d.checkPlain(); err != nil {
		return nil, err
	}
	seg := newSegmentClient(d, name)
	if err := seg.Create(ctx); err != nil {
		return nil, err
	}
	return seg, nil
}

// CreateFusionSegment creates a fusion segment on the current draft
func (d *DatasetClient) CreateFusionSegment(ctx context.Context, name string) (*FusionSegmentClient, error) {
	if err := d.checkFusion(); err != nil {
		return nil, err
	}
	seg := newFusionSegmentClient(d, name)
	if err := seg.create(ctx); err != nil {
		return nil, err
	}
	return seg, nil
}

// GetFusionSegment returns a client on an existing fusion segment
func (d *DatasetClient) GetFusionSegment(ctx context.Context, name string) (*FusionSegmentClient, error) {
	if err := d.checkFusion(); err != nil {
		return nil, err
	}
	if _, err := d.ListSegments().ByName(ctx, name); err != nil {
		return nil, err
	}
	return newFusionSegmentClient(d, name), nil
}

// GetOrCreateFusionSegment returns a client on a fusion segment, created on the current draft when absent
func (d *DatasetClient) GetOrCreateFusionSegment(ctx context.Context, name string) (*FusionSegmentClient, error) {
	if err := d.checkFusion(); err != nil {
		return nil, err
	}
	seg := newFusionSegmentClient(d, name)
	if err := seg.Create(ctx); err != nil {
		return nil, err
	}
	return seg, nil
}

// DeleteSegment deletes a segment from the current draft
func (d *DatasetClient) DeleteSegment(ctx context.Context, name string) error {
	if err := d.status.CheckAuthorityForDraft(); err != nil {
		return err
	}
	err := d.client.do(ctx, d.request("DELETE", "segments", url.Values{paramSegment: []string{name}}, nil), nil)
	if err != nil {
		return err
	}
	d.logger().Info("deleted segment", zap.String("segment", name), zap.Stringer("status", d.status))
	return nil
}

type segmentTransfer struct {
	Source   string             `json:"source"`
	Target   string             `json:"target"`
	Strategy model.MoveStrategy `json:"strategy"`
}

func (d *DatasetClient) transferSegment(ctx context.Context, op, source, target string, strategy model.MoveStrategy) error {
	if err := d.status.CheckAuthorityForDraft(); err != nil {
		return err
	}
	if strategy == "" {
		strategy = model.StrategyAbort
	}
	if !strategy.IsValid() {
		return status.ErrInvalidParams.WrapMessage("invalid strategy %q: expected one of abort, override, skip", strategy)
	}
	if source == "" || target == "" {
		return status.ErrInvalidParams.WrapMessage("source and target segment names are required")
	}
	body := segmentTransfer{Source: source, Target: target, Strategy: strategy}
	if err := d.client.do(ctx, d.request("POST", "segments/"+op, nil, body), nil); err != nil {
		return err
	}
	d.logger().Info(op+" segment",
		zap.String("source", source), zap.String("target", target), zap.String("strategy", string(strategy)))
	return nil
}

// MoveSegment renames a segment on the current draft.
//
// The strategy tells what to do when the target exists. It defaults to abort.
func (d *DatasetClient) MoveSegment(ctx context.Context, source, target string, strategy model.MoveStrategy) error {
	return d.transferSegment(ctx, "move", source, target, strategy)
}

// CopySegment copies a segment on the current draft.
//
// The strategy tells what to do when the target exists. It defaults to abort.
func (d *DatasetClient) CopySegment(ctx context.Context, source, target string, strategy model.MoveStrategy) error {
	return d.transferSegment(ctx, "copy", source, target, strategy)
}

type catalogBody struct {
	Catalog jsoniter.RawMessage `json:"catalog"`
}

// UploadCatalog attaches a label catalog to the current draft. The catalog is opaque JSON.
func (d *DatasetClient) UploadCatalog(ctx context.Context, catalog jsoniter.RawMessage) error {
	if err := d.status.CheckAuthorityForDraft(); err != nil {
		return err
	}
	if len(catalog) == 0 {
		return status.ErrInvalidParams.WrapMessage("empty catalog")
	}
	return d.client.do(ctx, d.request("PUT", "labels/catalogs", nil, catalogBody{Catalog: catalog}), nil)
}

// GetCatalog retrieves the label catalog at the current revision
func (d *DatasetClient) GetCatalog(ctx context.Context) (jsoniter.RawMessage, error) {
	var resp catalogBody
	if err := d.client.do(ctx, d.request("GET", "labels/catalogs", nil, nil), &resp); err != nil {
		return nil, err
	}
	return resp.Catalog, nil
}

// UpdateNotes updates the dataset notes on the current draft
func (d *DatasetClient) UpdateNotes(ctx context.Context, notes model.Notes) error {
	if err := d.status.CheckAuthorityForDraft(); err != nil {
		return err
	}
	return d.client.do(ctx, d.request("PUT", "notes", nil, notes), nil)
}

// GetNotes retrieves the dataset notes at the current revision
func (d *DatasetClient) GetNotes(ctx context.Context) (model.Notes, error) {
	var notes model.Notes
	err := d.client.do(ctx, d.request("GET", "notes", nil, nil), &notes)
	return notes, err
}

// TotalSize of the data at the current commit, in bytes
func (d *DatasetClient) TotalSize(ctx context.Context) (int64, error) {
	if err := d.status.CheckAuthorityForCommit(); err != nil {
		return 0, err
	}
	var resp struct {
		TotalSize int64 `json:"totalSize"`
	}
	if err := d.client.do(ctx, d.request("GET", "total-size", nil, nil), &resp); err != nil {
		return 0, err
	}
	return resp.TotalSize, nil
}
