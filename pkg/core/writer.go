package core

import (
	"context"
	"net/url"
	"path"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/oneconcern/datahub/pkg/core/lease"
	"github.com/oneconcern/datahub/pkg/core/revision"
	"github.com/oneconcern/datahub/pkg/core/status"
	"github.com/oneconcern/datahub/pkg/model"
	"github.com/oneconcern/datahub/pkg/transport"
)

// SegmentWriter is implemented by the segments an upload pipeline may write to
type SegmentWriter interface {
	// Name of the segment
	Name() string

	// Status of the dataset when the segment handle was obtained
	Status() revision.Status

	// Create the segment on the current draft, unless it exists already
	Create(context.Context) error

	// remoteIndex lists what is uploaded already
	remoteIndex(context.Context) (*remoteIndex, error)

	ref() *segmentRef
}

var (
	_ SegmentWriter = &SegmentClient{}
	_ SegmentWriter = &FusionSegmentClient{}
)

// segmentRef holds what plain and fusion segments share: a name, a dataset, and a snapshot of its status
type segmentRef struct {
	dataset *DatasetClient
	name    string
	status  revision.Status
}

func newSegmentRef(d *DatasetClient, name string) segmentRef {
	return segmentRef{
		dataset: d,
		name:    name,
		status:  d.status,
	}
}

// Name of the segment
func (s *segmentRef) Name() string {
	return s.name
}

// Status of the dataset when the segment handle was obtained
func (s *segmentRef) Status() revision.Status {
	return s.status
}

// Dataset this segment belongs to
func (s *segmentRef) Dataset() model.Dataset {
	return s.dataset.dataset
}

func (s *segmentRef) ref() *segmentRef {
	return s
}

func (s *segmentRef) client() *Client {
	return s.dataset.client
}

func (s *segmentRef) logger() *zap.Logger {
	return s.dataset.logger().With(zap.String("segment", s.name))
}

// request scoped to this segment
func (s *segmentRef) request(method, resource string, query url.Values, body interface{}) transport.Request {
	return s.dataset.requestAt(s.status, method, resource, mergeQuery(url.Values{paramSegment: []string{s.name}}, query), body)
}

func (s *segmentRef) leaseKey() lease.Key {
	draft, _ := s.status.DraftNumber()
	return lease.Key{
		DatasetID: s.dataset.dataset.ID,
		Draft:     draft,
		Segment:   s.name,
	}
}

func (s *segmentRef) exists(ctx context.Context) (bool, error) {
	_, err := lookupOf(s.client(), s.dataset.requestAt(s.status, "GET", "segments", nil, nil), "segments", paramSegment, segmentName)(ctx, s.name)
	if err == nil {
		return true, nil
	}
	if isNotExist(err) {
		return false, nil
	}
	return false, err
}

func (s *segmentRef) create(ctx context.Context) error {
	if err := s.status.CheckAuthorityForDraft(); err != nil {
		return err
	}
	if s.name == "" {
		return status.ErrInvalidParams.WrapMessage("a segment name is required")
	}
	if err := s.client().do(ctx, s.dataset.requestAt(s.status, "POST", "segments", nil, model.Segment{Name: s.name}), nil); err != nil {
		return err
	}
	s.logger().Info("created segment", zap.Stringer("status", s.status))
	return nil
}

// Create the segment on the current draft, unless it exists already
func (s *segmentRef) Create(ctx context.Context) error {
	if err := s.status.CheckAuthorityForDraft(); err != nil {
		return err
	}
	ok, err := s.exists(ctx)
	if err != nil || ok {
		return err
	}
	return s.create(ctx)
}

// remoteIndex tells what is uploaded already in a segment
type remoteIndex struct {
	// plain segments: remote paths
	paths map[string]struct{}

	// fusion segments: sensors uploaded per frame id, and frame ids per timestamp key and per object path
	sensorsByFrame map[string]map[string]struct{}
	frameByStamp   map[string]string
	frameByObject  map[string]string
	maxFrameID     ulid.ULID
}

func newRemoteIndex() *remoteIndex {
	return &remoteIndex{
		paths:          make(map[string]struct{}),
		sensorsByFrame: make(map[string]map[string]struct{}),
		frameByStamp:   make(map[string]string),
		frameByObject:  make(map[string]string),
	}
}

func (x *remoteIndex) addPath(remotePath string) {
	x.paths[remotePath] = struct{}{}
}

func (x *remoteIndex) hasPath(remotePath string) bool {
	_, ok := x.paths[remotePath]
	return ok
}

func (x *remoteIndex) addFrame(frame model.RemoteFrame) {
	frameID := frame.FrameID()
	if frameID == "" {
		return
	}
	if id, err := ulid.ParseStrict(frameID); err == nil && id.Compare(x.maxFrameID) > 0 {
		x.maxFrameID = id
	}
	sensors, ok := x.sensorsByFrame[frameID]
	if !ok {
		sensors = make(map[string]struct{}, len(frame))
		x.sensorsByFrame[frameID] = sensors
	}
	for _, data := range frame {
		sensors[data.SensorName] = struct{}{}
		objectPath := path.Join(data.SensorName, data.RemotePath)
		if _, found := x.frameByObject[objectPath]; !found {
			x.frameByObject[objectPath] = frameID
		}
		if data.Timestamp != nil {
			key := model.TimestampKey(*data.Timestamp)
			if _, found := x.frameByStamp[key]; !found {
				x.frameByStamp[key] = frameID
			}
		}
	}
}

// matchFrame finds the remote frame holding some data of a local frame: by timestamp key when the frame
// has one, by the path of its sensor data otherwise
func (x *remoteIndex) matchFrame(u workUnit) (string, bool) {
	if u.stampKey != "" {
		if frameID, ok := x.frameByStamp[u.stampKey]; ok {
			return frameID, true
		}
	}
	for _, obj := range u.objects {
		if frameID, ok := x.frameByObject[obj.objectPath()]; ok {
			return frameID, true
		}
	}
	return "", false
}

// uploadedSensors of a frame, by frame id
func (x *remoteIndex) uploadedSensors(frameID string) map[string]struct{} {
	return x.sensorsByFrame[frameID]
}
