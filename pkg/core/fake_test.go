package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/oneconcern/datahub/pkg/core/revision"
	"github.com/oneconcern/datahub/pkg/model"
	"github.com/oneconcern/datahub/pkg/storage"
	storagestatus "github.com/oneconcern/datahub/pkg/storage/status"
	"github.com/oneconcern/datahub/pkg/transport"
)

// fakeServer is an in-memory rendition of the datahub API, with a fake object storage
type fakeServer struct {
	mu sync.Mutex

	datasets []model.Dataset
	branches []model.Branch
	tags     []model.Tag
	commits  []model.Commit
	drafts   []model.Draft
	segments []string
	sensors  map[string]model.Sensors
	synced   map[string][]model.SyncObject
	diffs    []model.SegmentDiff
	dataURLs map[string]string

	objects map[string][]byte
	urls    map[string][]byte

	calls    map[string]int
	requests []transport.Request

	failSync int
	failPut  int
	opens    int
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		sensors:  make(map[string]model.Sensors),
		synced:   make(map[string][]model.SyncObject),
		dataURLs: make(map[string]string),
		objects:  make(map[string][]byte),
		urls:     make(map[string][]byte),
		calls:    make(map[string]int),
	}
}

var (
	_ transport.Doer   = &fakeServer{}
	_ transport.Opener = &fakeServer{}
)

func (f *fakeServer) count(method, resource string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method+" "+resource]
}

func (f *fakeServer) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeServer) syncedObjects(segment string) []model.SyncObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.SyncObject(nil), f.synced[segment]...)
}

func (f *fakeServer) storedObjects() map[string][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make(map[string][]byte, len(f.objects))
	for k, v := range f.objects {
		cp[k] = v
	}
	return cp
}

func (f *fakeServer) sync(segment string, objects ...model.SyncObject) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncLocked(segment, objects)
}

func (f *fakeServer) syncLocked(segment string, objects []model.SyncObject) {
	if !f.hasSegment(segment) {
		f.segments = append(f.segments, segment)
	}
	existing := f.synced[segment]
	for _, obj := range objects {
		replaced := false
		for i, e := range existing {
			if e.RemotePath == obj.RemotePath && e.SensorName == obj.SensorName && e.FrameID == obj.FrameID {
				existing[i] = obj
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, obj)
		}
	}
	f.synced[segment] = existing
}

func (f *fakeServer) hasSegment(name string) bool {
	for _, s := range f.segments {
		if s == name {
			return true
		}
	}
	return false
}

func respond(out interface{}, v interface{}) error {
	if out == nil {
		return nil
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, out)
}

func decodeBody(body interface{}, target interface{}) {
	buf, _ := json.Marshal(body)
	_ = json.Unmarshal(buf, target)
}

func listing[T any](key string, items []T, q url.Values) map[string]interface{} {
	offset, _ := strconv.Atoi(q.Get(paramOffset))
	limit, err := strconv.Atoi(q.Get(paramLimit))
	if err != nil || limit <= 0 {
		limit = len(items)
	}
	page := []T{}
	if offset < len(items) {
		end := offset + limit
		if end > len(items) {
			end = len(items)
		}
		page = items[offset:end]
	}
	return map[string]interface{}{key: page, totalCountField: len(items)}
}

func filtered[T any](items []T, keep func(T) bool) []T {
	var res []T
	for _, item := range items {
		if keep(item) {
			res = append(res, item)
		}
	}
	return res
}

func responseError(req transport.Request, code int) error {
	return &transport.ResponseError{Method: req.Method, Path: req.Path(), StatusCode: code}
}

func (f *fakeServer) branchHead(name string) (string, bool) {
	for _, b := range f.branches {
		if b.Name == name {
			return b.CommitID, true
		}
	}
	return "", false
}

func (f *fakeServer) Do(_ context.Context, req transport.Request, out interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	f.calls[method+" "+req.Resource]++
	f.requests = append(f.requests, req)
	q := req.Query

	switch {
	case req.DatasetID == "" && req.Resource == "datasets" && method == http.MethodGet:
		name := q.Get("name")
		return respond(out, listing("datasets", filtered(f.datasets, func(d model.Dataset) bool {
			return name == "" || d.Name == name
		}), q))

	case req.DatasetID == "" && req.Resource == "datasets" && method == http.MethodPost:
		var body createDatasetBody
		decodeBody(req.Body, &body)
		for _, d := range f.datasets {
			if d.Name == body.Name {
				return responseError(req, http.StatusConflict)
			}
		}
		id := fmt.Sprintf("ds-%d", len(f.datasets)+1)
		f.datasets = append(f.datasets, model.Dataset{
			ID: id, Name: body.Name, IsFusion: body.Type == 1, DefaultBranch: body.DefaultBranch,
		})
		f.branches = append(f.branches, model.Branch{Name: body.DefaultBranch})
		return respond(out, idResponse{ID: id})

	case req.Resource == "" && method == http.MethodDelete:
		f.datasets = filtered(f.datasets, func(d model.Dataset) bool { return d.ID != req.DatasetID })
		return nil

	case req.Resource == "branches" && method == http.MethodGet:
		name := q.Get(paramName)
		return respond(out, listing("branches", filtered(f.branches, func(b model.Branch) bool {
			return name == "" || b.Name == name
		}), q))

	case req.Resource == "branches" && method == http.MethodPost:
		var body refBody
		decodeBody(req.Body, &body)
		if _, ok := f.branchHead(body.Name); ok {
			return responseError(req, http.StatusConflict)
		}
		f.branches = append(f.branches, model.Branch{Name: body.Name, Commit: model.Commit{CommitID: body.Commit}})
		return nil

	case req.Resource == "tags" && method == http.MethodGet:
		name := q.Get(paramName)
		return respond(out, listing("tags", filtered(f.tags, func(t model.Tag) bool {
			return name == "" || t.Name == name
		}), q))

	case req.Resource == "tags" && method == http.MethodPost:
		var body refBody
		decodeBody(req.Body, &body)
		f.tags = append(f.tags, model.Tag{Name: body.Name, Commit: model.Commit{CommitID: body.Commit}})
		return nil

	case req.Resource == "commits" && method == http.MethodGet:
		rev := q.Get(revision.ParamCommit)
		if head, ok := f.branchHead(rev); ok {
			rev = head
		}
		return respond(out, listing("commits", filtered(f.commits, func(c model.Commit) bool {
			return rev == "" || c.CommitID == rev
		}), q))

	case req.Resource == "commits" && method == http.MethodPost:
		number, _ := strconv.Atoi(q.Get(revision.ParamDraft))
		var body struct {
			Title string `json:"title"`
			Tag   string `json:"tag"`
		}
		decodeBody(req.Body, &body)
		for i, d := range f.drafts {
			if int(d.Number) != number {
				continue
			}
			id := fmt.Sprintf("commit-%d", len(f.commits)+1)
			f.commits = append(f.commits, model.Commit{CommitID: id, ParentCommitID: d.ParentCommitID, Title: body.Title})
			f.drafts[i].Status = model.DraftCommitted
			for j := range f.branches {
				if f.branches[j].Name == d.BranchName {
					f.branches[j].CommitID = id
				}
			}
			if body.Tag != "" {
				f.tags = append(f.tags, model.Tag{Name: body.Tag, Commit: model.Commit{CommitID: id}})
			}
			return respond(out, map[string]string{"commitId": id})
		}
		return responseError(req, http.StatusNotFound)

	case req.Resource == "drafts" && method == http.MethodGet:
		number := q.Get(revision.ParamDraft)
		draftStatus := q.Get("status")
		return respond(out, listing("drafts", filtered(f.drafts, func(d model.Draft) bool {
			return (number == "" || strconv.FormatUint(uint64(d.Number), 10) == number) &&
				(draftStatus == "" || string(d.Status) == draftStatus)
		}), q))

	case req.Resource == "drafts" && method == http.MethodPost:
		var body draftBody
		decodeBody(req.Body, &body)
		head, ok := f.branchHead(body.BranchName)
		if !ok {
			return responseError(req, http.StatusNotFound)
		}
		number := uint32(len(f.drafts) + 1)
		f.drafts = append(f.drafts, model.Draft{
			Number: number, Title: body.Title, BranchName: body.BranchName, Status: model.DraftOpen, ParentCommitID: head,
		})
		return respond(out, map[string]uint32{"draftNumber": number})

	case strings.HasPrefix(req.Resource, "drafts/") && method == http.MethodPatch:
		number, _ := strconv.Atoi(strings.TrimPrefix(req.Resource, "drafts/"))
		var body draftBody
		decodeBody(req.Body, &body)
		for i, d := range f.drafts {
			if int(d.Number) == number {
				if body.Status != "" {
					f.drafts[i].Status = body.Status
				}
				return nil
			}
		}
		return responseError(req, http.StatusNotFound)

	case req.Resource == "segments" && method == http.MethodGet:
		name := q.Get(paramSegment)
		segments := make([]model.Segment, 0, len(f.segments))
		for _, s := range f.segments {
			if name == "" || s == name {
				segments = append(segments, model.Segment{Name: s})
			}
		}
		return respond(out, listing("segments", segments, q))

	case req.Resource == "segments" && method == http.MethodPost:
		var body model.Segment
		decodeBody(req.Body, &body)
		if f.hasSegment(body.Name) {
			return responseError(req, http.StatusConflict)
		}
		f.segments = append(f.segments, body.Name)
		return nil

	case req.Resource == "segments" && method == http.MethodDelete:
		name := q.Get(paramSegment)
		f.segments = filtered(f.segments, func(s string) bool { return s != name })
		return nil

	case req.Resource == "segments/move" || req.Resource == "segments/copy":
		var body segmentTransfer
		decodeBody(req.Body, &body)
		if !f.hasSegment(body.Source) {
			return responseError(req, http.StatusNotFound)
		}
		if !f.hasSegment(body.Target) {
			f.segments = append(f.segments, body.Target)
		}
		if req.Resource == "segments/move" {
			f.segments = filtered(f.segments, func(s string) bool { return s != body.Source })
		}
		return nil

	case req.Resource == "policies":
		segment := q.Get(paramSegment)
		return respond(out, model.Lease{
			Backend:      "fake",
			Bucket:       "bucket",
			ObjectPrefix: req.DatasetID + "/" + segment + "/",
			Credentials:  model.Credentials{AccessKeyID: "key", SecretAccessKey: "secret"},
			ExpireAt:     time.Now().Add(time.Hour),
		})

	case req.Resource == "multi/data/files":
		if f.failSync > 0 {
			f.failSync--
			return responseError(req, http.StatusUnauthorized)
		}
		var body syncBody
		decodeBody(req.Body, &body)
		f.syncLocked(body.SegmentName, body.Objects)
		return nil

	case req.Resource == "data/paths":
		segment := q.Get(paramSegment)
		paths := make([]string, 0)
		for _, obj := range f.synced[segment] {
			paths = append(paths, obj.RemotePath)
		}
		return respond(out, listing("filePaths", paths, q))

	case req.Resource == "data" && method == http.MethodGet:
		segment := q.Get(paramSegment)
		remotePath := q.Get(paramRemotePath)
		data := make([]model.RemoteData, 0)
		for _, obj := range f.synced[segment] {
			if remotePath != "" && obj.RemotePath != remotePath {
				continue
			}
			data = append(data, model.RemoteData{
				RemotePath: obj.RemotePath,
				Checksum:   obj.Checksum,
				FileSize:   obj.FileSize,
				Label:      obj.Label,
				URL:        f.dataURLs[segment+"/"+obj.RemotePath],
			})
		}
		return respond(out, listing("dataDetails", data, q))

	case req.Resource == "sensors" && method == http.MethodGet:
		return respond(out, listing("sensors", f.sensors[q.Get(paramSegment)], q))

	case req.Resource == "sensors" && method == http.MethodPost:
		var sensor model.Sensor
		decodeBody(req.Body, &sensor)
		segment := q.Get(paramSegment)
		f.sensors[segment] = append(f.sensors[segment], sensor)
		return nil

	case req.Resource == "frames":
		segment := q.Get(paramSegment)
		byID := make(map[string]model.RemoteFrame)
		for _, obj := range f.synced[segment] {
			byID[obj.FrameID] = append(byID[obj.FrameID], model.RemoteFrameData{
				RemoteData: model.RemoteData{RemotePath: obj.RemotePath, Timestamp: obj.Timestamp},
				SensorName: obj.SensorName,
				FrameID:    obj.FrameID,
			})
		}
		ids := make([]string, 0, len(byID))
		for id := range byID {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		frames := make([]model.RemoteFrame, 0, len(ids))
		for _, id := range ids {
			frames = append(frames, byID[id])
		}
		return respond(out, listing("frames", frames, q))

	case req.Resource == "diffs":
		name := q.Get(paramSegment)
		return respond(out, listing("segments", filtered(f.diffs, func(d model.SegmentDiff) bool {
			return name == "" || d.Name == name
		}), q))

	case req.Resource == "diffs/data":
		return respond(out, listing("data", []model.DataDiff{
			{RemotePath: "a.png", Action: model.DiffModify, File: model.ActionDiff{Action: model.DiffModify}},
			{RemotePath: "b.png", Action: model.DiffAdd},
		}, q))

	case req.Resource == "total-size":
		return respond(out, map[string]int64{"totalSize": 1024})

	case req.Resource == "labels/catalogs", req.Resource == "notes", req.Resource == "multi/data/labels":
		return nil

	default:
		return responseError(req, http.StatusNotFound)
	}
}

func (f *fakeServer) Open(_ context.Context, rawURL string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opens++
	content, ok := f.urls[rawURL]
	if !ok {
		return nil, &transport.ResponseError{Method: http.MethodGet, Path: rawURL, StatusCode: http.StatusNotFound}
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

// factory of uploaders writing to the fake object storage
func (f *fakeServer) factory(_ context.Context, _ model.Lease) (storage.Uploader, error) {
	return &fakeUploader{server: f}, nil
}

type fakeUploader struct {
	server *fakeServer
}

func (u *fakeUploader) String() string {
	return "fake"
}

func (u *fakeUploader) Put(_ context.Context, key string, body io.Reader, size int64) (storage.PutResult, error) {
	content, err := io.ReadAll(body)
	if err != nil {
		return storage.PutResult{}, err
	}
	if int64(len(content)) != size {
		return storage.PutResult{}, storagestatus.ErrStorageAPI.WrapMessage("short write on %q", key)
	}

	u.server.mu.Lock()
	defer u.server.mu.Unlock()
	if u.server.failPut > 0 {
		u.server.failPut--
		return storage.PutResult{}, storagestatus.ErrUnauthorized.WrapMessage("expired token")
	}
	u.server.objects[key] = content
	return storage.PutResult{Key: key, VersionID: "v1"}, nil
}

func (u *fakeUploader) Close() error {
	return nil
}

func newTestClient(srv *fakeServer, opts ...ClientOption) *Client {
	return NewClientWithDoer(srv, append([]ClientOption{
		ClientUploaderFactory(srv.factory),
		ClientPageSize(3),
	}, opts...)...)
}

// newDraftDataset creates a dataset and opens a draft on its default branch
func newDraftDataset(t testing.TB, srv *fakeServer, opts ...DatasetOption) *DatasetClient {
	ctx := context.Background()
	d, err := newTestClient(srv).CreateDataset(ctx, "dataset", opts...)
	require.NoError(t, err)
	_, err = d.CreateDraft(ctx, "first draft", "", "")
	require.NoError(t, err)
	return d
}

func localItems(t testing.TB, names ...string) (afero.Fs, []model.DataItem) {
	fs := afero.NewMemMapFs()
	items := make([]model.DataItem, 0, len(names))
	for _, name := range names {
		p := "/local/" + name
		require.NoError(t, afero.WriteFile(fs, p, []byte("content of "+name), 0o644))
		items = append(items, model.DataItem{LocalPath: p})
	}
	return fs, items
}
