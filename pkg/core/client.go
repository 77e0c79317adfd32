package core

import (
	"context"
	"net/url"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/oneconcern/datahub/pkg/config"
	"github.com/oneconcern/datahub/pkg/core/lease"
	"github.com/oneconcern/datahub/pkg/core/pager"
	"github.com/oneconcern/datahub/pkg/core/revision"
	"github.com/oneconcern/datahub/pkg/core/status"
	"github.com/oneconcern/datahub/pkg/model"
	"github.com/oneconcern/datahub/pkg/transport"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client to the datahub API.
//
// A client is safe for concurrent use. It holds the upload leases cache shared by all the datasets it opens.
type Client struct {
	clientSettings
	doer   transport.Doer
	opener transport.Opener
	leases *lease.Cache
}

// NewClient builds a client talking to the API over HTTP
func NewClient(cfg config.ClientConfig, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, status.ErrInvalidParams.Wrap(err)
	}
	s := defaultClientSettings()
	for _, apply := range opts {
		apply(&s)
	}
	httpClient := transport.New(cfg, transport.WithLogger(s.l))
	return newClient(httpClient, s), nil
}

// NewClientWithDoer builds a client over any implementation of the transport.
//
// When the doer also implements transport.Opener, it is used to read remote data.
func NewClientWithDoer(doer transport.Doer, opts ...ClientOption) *Client {
	s := defaultClientSettings()
	for _, apply := range opts {
		apply(&s)
	}
	return newClient(doer, s)
}

func newClient(doer transport.Doer, s clientSettings) *Client {
	c := &Client{
		clientSettings: s,
		doer:           doer,
	}
	if opener, ok := doer.(transport.Opener); ok {
		c.opener = opener
	}
	c.leases = lease.New(c.fetchLease,
		lease.Logger(s.l),
		lease.WithMetrics(s.m),
		lease.Clock(s.now),
	)
	return c
}

func (c *Client) do(ctx context.Context, req transport.Request, out interface{}) error {
	return translateError(c.doer.Do(ctx, req, out))
}

// fetchLease retrieves fresh upload credentials for a segment of a draft
func (c *Client) fetchLease(ctx context.Context, key lease.Key) (model.Lease, error) {
	var l model.Lease
	err := c.do(ctx, transport.Request{
		Method:    "GET",
		Resource:  "policies",
		DatasetID: key.DatasetID,
		Query: url.Values{
			revision.ParamDraft: []string{strconv.FormatUint(uint64(key.Draft), 10)},
			"segmentName":       []string{key.Segment},
		},
	}, &l)
	return l, err
}

// ListDatasets lists the datasets visible with the access key, optionally filtered by name
func (c *Client) ListDatasets(name string) *pager.Sequence[model.Dataset] {
	query := url.Values{}
	if name != "" {
		query.Set("name", name)
	}
	return pager.New(
		pageOf[model.Dataset](c, transport.Request{Method: "GET", Resource: "datasets", Query: query}, "datasets"),
		pager.PageSize(c.pageSize), pager.Logger(c.l),
	)
}

type createDatasetBody struct {
	Name          string `json:"name"`
	Alias         string `json:"alias,omitempty"`
	IsPublic      bool   `json:"isPublic"`
	Type          int    `json:"type"`
	DefaultBranch string `json:"defaultBranch"`
}

type idResponse struct {
	ID string `json:"id"`
}

// CreateDataset creates a dataset, and returns a client on its default branch, without any commit yet
func (c *Client) CreateDataset(ctx context.Context, name string, opts ...DatasetOption) (*DatasetClient, error) {
	if name == "" {
		return nil, status.ErrInvalidParams.WrapMessage("a dataset name is required")
	}
	dataset := model.Dataset{Name: name, DefaultBranch: model.DefaultBranch}
	for _, apply := range opts {
		apply(&dataset)
	}

	body := createDatasetBody{
		Name:          dataset.Name,
		Alias:         dataset.Alias,
		IsPublic:      dataset.IsPublic,
		DefaultBranch: dataset.Branch(),
	}
	if dataset.IsFusion {
		body.Type = 1
	}

	var resp idResponse
	if err := c.do(ctx, transport.Request{Method: "POST", Resource: "datasets", Body: body}, &resp); err != nil {
		return nil, err
	}
	dataset.ID = resp.ID
	c.l.Info("created dataset", zap.String("dataset", name), zap.String("id", resp.ID), zap.Bool("fusion", dataset.IsFusion))

	st, err := revision.OnBranch(dataset.Branch(), "")
	if err != nil {
		return nil, err
	}
	return newDatasetClient(c, dataset, st), nil
}

// getDataset resolves a dataset by its exact name
func (c *Client) getDataset(ctx context.Context, name string) (model.Dataset, error) {
	var found *model.Dataset
	err := c.ListDatasets(name).ForEach(ctx, func(d model.Dataset) error {
		if d.Name == name && found == nil {
			candidate := d
			found = &candidate
		}
		return nil
	})
	if err != nil {
		return model.Dataset{}, err
	}
	if found == nil {
		return model.Dataset{}, status.ErrResourceNotExist.WrapMessage("dataset %q", name)
	}
	return *found, nil
}

// GetDataset returns a client on a dataset, checked out at the head of its default branch
func (c *Client) GetDataset(ctx context.Context, name string) (*DatasetClient, error) {
	dataset, err := c.getDataset(ctx, name)
	if err != nil {
		return nil, err
	}
	d := newDatasetClient(c, dataset, revision.Status{})
	if err = d.checkoutBranchHead(ctx, dataset.Branch()); err != nil {
		return nil, err
	}
	return d, nil
}

// DeleteDataset deletes a dataset and all its revisions
func (c *Client) DeleteDataset(ctx context.Context, name string) error {
	dataset, err := c.getDataset(ctx, name)
	if err != nil {
		return err
	}
	if err = c.do(ctx, transport.Request{Method: "DELETE", DatasetID: dataset.ID}, nil); err != nil {
		return err
	}
	c.l.Info("deleted dataset", zap.String("dataset", name))
	return nil
}

// RenameDataset renames a dataset
func (c *Client) RenameDataset(ctx context.Context, name, newName string) error {
	if newName == "" {
		return status.ErrInvalidParams.WrapMessage("a new dataset name is required")
	}
	dataset, err := c.getDataset(ctx, name)
	if err != nil {
		return err
	}
	return c.do(ctx, transport.Request{
		Method:    "PATCH",
		DatasetID: dataset.ID,
		Body:      map[string]string{"name": newName},
	}, nil)
}
