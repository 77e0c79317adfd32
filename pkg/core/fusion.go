package core

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/oneconcern/datahub/pkg/core/pager"
	"github.com/oneconcern/datahub/pkg/core/status"
	"github.com/oneconcern/datahub/pkg/model"
)

// FusionSegmentClient operates on a fusion segment, made of frames spanning several sensors
type FusionSegmentClient struct {
	segmentRef
}

func newFusionSegmentClient(d *DatasetClient, name string) *FusionSegmentClient {
	return &FusionSegmentClient{segmentRef: newSegmentRef(d, name)}
}

// ListSensors lists the sensors of this segment
func (s *FusionSegmentClient) ListSensors(ctx context.Context) (model.Sensors, error) {
	return pager.New(
		pageOf[model.Sensor](s.client(), s.request("GET", "sensors", nil, nil), "sensors"),
		s.dataset.pagerOptions()...,
	).All(ctx)
}

// UploadSensor declares a sensor on this segment, on the current draft
func (s *FusionSegmentClient) UploadSensor(ctx context.Context, sensor model.Sensor) error {
	if err := s.status.CheckAuthorityForDraft(); err != nil {
		return err
	}
	if sensor.Name == "" {
		return status.ErrInvalidParams.WrapMessage("a sensor name is required")
	}
	if err := s.client().do(ctx, s.request("POST", "sensors", nil, sensor), nil); err != nil {
		return err
	}
	s.logger().Info("uploaded sensor", zap.String("sensor", sensor.Name))
	return nil
}

// DeleteSensor removes a sensor from this segment, on the current draft
func (s *FusionSegmentClient) DeleteSensor(ctx context.Context, name string) error {
	if err := s.status.CheckAuthorityForDraft(); err != nil {
		return err
	}
	return s.client().do(ctx, s.request("DELETE", "sensors", url.Values{"sensorName": []string{name}}, nil), nil)
}

// ListFrames lists the frames of this segment, in frame id order
func (s *FusionSegmentClient) ListFrames() *pager.Sequence[model.RemoteFrame] {
	return pager.New(
		pageOf[model.RemoteFrame](s.client(), s.request("GET", "frames", nil, nil), "frames"),
		s.dataset.pagerOptions()...,
	)
}

func (s *FusionSegmentClient) remoteIndex(ctx context.Context) (*remoteIndex, error) {
	index := newRemoteIndex()
	err := s.ListFrames().ForEach(ctx, func(frame model.RemoteFrame) error {
		index.addFrame(frame)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return index, nil
}

// ensureSensors declares the sensors not yet known to the segment
func (s *FusionSegmentClient) ensureSensors(ctx context.Context, sensors model.Sensors) error {
	if len(sensors) == 0 {
		return nil
	}
	existing, err := s.ListSensors(ctx)
	if err != nil {
		return err
	}
	for _, sensor := range sensors {
		if existing.Has(sensor.Name) {
			continue
		}
		if err = s.UploadSensor(ctx, sensor); err != nil {
			return err
		}
	}
	return nil
}

// UploadFrame uploads a single frame.
//
// A frame without an identifier is given one that sorts after the frames of the segment.
func (s *FusionSegmentClient) UploadFrame(ctx context.Context, frame *model.Frame, opts ...UploadOption) error {
	return s.dataset.newPipeline(opts).runFusion(ctx, s, nil, []*model.Frame{frame})
}
