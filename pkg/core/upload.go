package core

import (
	"context"
	"path"
	"strings"
	"sync"
	"time"

	units "github.com/docker/go-units"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/oneconcern/datahub/pkg/core/lease"
	"github.com/oneconcern/datahub/pkg/core/status"
	"github.com/oneconcern/datahub/pkg/fingerprint"
	"github.com/oneconcern/datahub/pkg/model"
	"github.com/oneconcern/datahub/pkg/storage"
	"github.com/oneconcern/datahub/pkg/tracing"
)

// unitObject is a single file to upload, with the sensor it belongs to for fusion segments
type unitObject struct {
	sensor string
	item   model.DataItem
}

func (o unitObject) objectPath() string {
	if o.sensor == "" {
		return o.item.TargetPath()
	}
	return path.Join(o.sensor, o.item.TargetPath())
}

// workUnit is synchronized with the server in one call: a data item, or a frame
type workUnit struct {
	frameID  string
	stampKey string
	objects  []unitObject
}

func plainUnits(items []model.DataItem) []workUnit {
	work := make([]workUnit, 0, len(items))
	for _, item := range items {
		work = append(work, workUnit{objects: []unitObject{{item: item}}})
	}
	return work
}

func fusionUnits(frames []*model.Frame, ids []ulid.ULID) []workUnit {
	work := make([]workUnit, 0, len(frames))
	for i, frame := range frames {
		u := workUnit{
			frameID: ids[i].String(),
			objects: make([]unitObject, 0, len(frame.Items)),
		}
		if ts, ok := frame.Timestamp(); ok {
			u.stampKey = model.TimestampKey(ts)
		}
		for _, si := range frame.Items {
			u.objects = append(u.objects, unitObject{sensor: si.Sensor, item: si.Item})
		}
		work = append(work, u)
	}
	return work
}

// UploadSegment uploads data items to a plain segment on the current draft, creating the segment when absent.
//
// On failure, the returned *UploadError reports the draft to resume the upload on, with SkipUploaded.
func (d *DatasetClient) UploadSegment(ctx context.Context, name string, items []model.DataItem, opts ...UploadOption) (*SegmentClient, error) {
	if err := d.checkPlain(); err != nil {
		return nil, err
	}
	seg := newSegmentClient(d, name)
	if err := d.newPipeline(opts).run(ctx, seg, plainUnits(items)); err != nil {
		return nil, err
	}
	return seg, nil
}

// UploadFusionSegment uploads frames to a fusion segment on the current draft, creating the segment
// and declaring its sensors when absent.
//
// Either all frames carry an identifier, or none does: identifiers are then assigned in input order,
// after any frame of the segment.
func (d *DatasetClient) UploadFusionSegment(ctx context.Context, name string, sensors model.Sensors, frames []*model.Frame, opts ...UploadOption) (*FusionSegmentClient, error) {
	if err := d.checkFusion(); err != nil {
		return nil, err
	}
	seg := newFusionSegmentClient(d, name)
	if err := d.newPipeline(opts).runFusion(ctx, seg, sensors, frames); err != nil {
		return nil, err
	}
	return seg, nil
}

type pipeline struct {
	uploadSettings
	leases *lease.Cache
}

func (d *DatasetClient) newPipeline(opts []UploadOption) *pipeline {
	s := d.client.defaultUploadSettings()
	for _, apply := range opts {
		apply(&s)
	}
	return &pipeline{
		uploadSettings: s,
		leases:         d.client.leases,
	}
}

func (p *pipeline) abort(seg *segmentRef, err error) error {
	draft, _ := seg.status.DraftNumber()
	p.l.Error("upload aborted: resume it on the same draft, skipping uploaded data",
		zap.String("dataset", seg.dataset.dataset.Name),
		zap.String("segment", seg.name),
		zap.Uint32("draft", draft),
		zap.Error(err),
	)
	return &UploadError{Err: err, DraftNumber: draft, Segment: seg.name}
}

func (p *pipeline) run(ctx context.Context, w SegmentWriter, work []workUnit) error {
	seg := w.ref()
	if err := seg.status.CheckAuthorityForDraft(); err != nil {
		return err
	}
	if err := w.Create(ctx); err != nil {
		return p.abort(seg, err)
	}

	if p.skip {
		index, err := w.remoteIndex(ctx)
		if err != nil {
			return p.abort(seg, err)
		}
		work = p.skipPaths(work, index)
	}
	return p.dispatch(ctx, seg, work)
}

func (p *pipeline) runFusion(ctx context.Context, s *FusionSegmentClient, sensors model.Sensors, frames []*model.Frame) error {
	seg := s.ref()
	if err := seg.status.CheckAuthorityForDraft(); err != nil {
		return err
	}
	explicit, err := checkFrameIDs(frames)
	if err != nil {
		return err
	}
	if p.skip && p.match == MatchByFrameID && !explicit && len(frames) > 0 {
		return status.ErrInvalidParams.WrapMessage("frames without ids cannot be matched by frame id when resuming")
	}

	if err = s.Create(ctx); err != nil {
		return p.abort(seg, err)
	}
	if err = s.ensureSensors(ctx, sensors); err != nil {
		return p.abort(seg, err)
	}

	var index *remoteIndex
	if p.skip {
		if index, err = s.remoteIndex(ctx); err != nil {
			return p.abort(seg, err)
		}
	}

	ids := make([]ulid.ULID, len(frames))
	if explicit {
		for i, frame := range frames {
			ids[i] = *frame.ID
		}
	} else {
		var after ulid.ULID
		if index != nil {
			after = index.maxFrameID
		} else if after, err = s.lastFrameID(ctx); err != nil {
			return p.abort(seg, err)
		}
		ids = synthesizeFrameIDs(len(frames), after)
	}

	work := fusionUnits(frames, ids)
	if index != nil {
		work = p.skipFrames(work, index, explicit)
	}
	return p.dispatch(ctx, seg, work)
}

// lastFrameID is the greatest frame id in the segment. Frames are listed in id order.
func (s *FusionSegmentClient) lastFrameID(ctx context.Context) (ulid.ULID, error) {
	frames := s.ListFrames()
	n, err := frames.Len(ctx)
	if err != nil || n == 0 {
		return ulid.ULID{}, err
	}
	last, err := frames.Get(ctx, n-1)
	if err != nil {
		return ulid.ULID{}, err
	}
	id, err := ulid.ParseStrict(last.FrameID())
	if err != nil {
		return ulid.ULID{}, status.ErrUnexpectedResponse.Wrap(err)
	}
	return id, nil
}

func (p *pipeline) skipPaths(work []workUnit, index *remoteIndex) []workUnit {
	kept := work[:0:0]
	for _, u := range work {
		if !p.progress.UpdateForSkip(!index.hasPath(u.objects[0].item.TargetPath())) {
			p.m.Skipped()
			continue
		}
		kept = append(kept, u)
	}
	return kept
}

func (p *pipeline) skipFrames(work []workUnit, index *remoteIndex, explicit bool) []workUnit {
	mode := p.match
	if mode == MatchAuto {
		mode = MatchByTimestamp
		if explicit {
			mode = MatchByFrameID
		}
	}

	kept := work[:0:0]
	for _, u := range work {
		frameID := u.frameID
		if mode == MatchByTimestamp {
			remoteID, ok := index.matchFrame(u)
			if !ok {
				kept = append(kept, u)
				continue
			}
			frameID = remoteID
		}

		uploaded := index.uploadedSensors(frameID)
		missing := make([]unitObject, 0, len(u.objects))
		for _, obj := range u.objects {
			if _, ok := uploaded[obj.sensor]; !ok {
				missing = append(missing, obj)
			}
		}
		if !p.progress.UpdateForSkip(len(missing) > 0) {
			p.m.Skipped()
			continue
		}
		u.frameID = frameID
		u.objects = missing
		kept = append(kept, u)
	}
	return kept
}

// dispatch runs the work units through a fixed pool of workers.
//
// The first error stops new units from starting: units in flight are completed.
func (p *pipeline) dispatch(ctx context.Context, seg *segmentRef, work []workUnit) (err error) {
	if len(work) == 0 {
		return nil
	}
	ctx, span := tracing.Start(ctx, "core.upload", trace.WithAttributes(
		tracing.Segment(seg.dataset.dataset.ID, seg.name)...,
	))
	defer func() {
		tracing.SetSpanError(ctx, err)
		span.End()
	}()

	workers := p.concurrency
	if workers > len(work) {
		workers = len(work)
	}
	r := &uploadRun{
		pipeline:  p,
		seg:       seg,
		key:       seg.leaseKey(),
		hasher:    fingerprint.New(fingerprint.FileSystem(p.fs)),
		uploaders: make(map[string]storage.Uploader),
		l: p.l.With(
			zap.String("dataset", seg.dataset.dataset.Name),
			zap.String("segment", seg.name),
			zap.Stringer("status", seg.status),
		),
	}
	r.l.Info("uploading", zap.Int("units", len(work)), zap.Int("concurrency", workers))

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	queue := make(chan workUnit)

	g.Go(func() error {
		defer close(queue)
		for _, u := range work {
			if gctx.Err() != nil {
				return nil
			}
			select {
			case <-gctx.Done():
				return nil
			case queue <- u:
			}
		}
		return nil
	})

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for u := range queue {
				if gctx.Err() != nil {
					continue
				}
				// units in flight complete even when the run is interrupted
				if eru := r.upload(context.WithoutCancel(ctx), u); eru != nil {
					return eru
				}
			}
			return nil
		})
	}

	err = g.Wait()
	if erc := r.close(); erc != nil {
		r.l.Warn("could not release uploaders", zap.Error(erc))
	}
	if err == nil && r.completed.Load() < int64(len(work)) {
		err = status.ErrInterrupted.Wrap(ctx.Err())
	}
	if err != nil {
		return p.abort(seg, err)
	}

	r.l.Info("upload complete",
		zap.Int("units", len(work)),
		zap.String("size", units.HumanSize(float64(r.bytes.Load()))),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// uploadRun holds the state shared by the workers of one pipeline run
type uploadRun struct {
	*pipeline
	seg    *segmentRef
	key    lease.Key
	hasher *fingerprint.Maker
	l      *zap.Logger

	mu        sync.Mutex
	uploaders map[string]storage.Uploader

	completed atomic.Int64
	bytes     atomic.Int64
}

type syncBody struct {
	SegmentName string             `json:"segmentName"`
	Objects     []model.SyncObject `json:"objects"`
}

func (r *uploadRun) upload(ctx context.Context, u workUnit) error {
	defer r.m.WorkerBusy()()

	objects := make([]model.SyncObject, 0, len(u.objects))
	for _, obj := range u.objects {
		synced, err := r.put(ctx, u, obj)
		if err != nil {
			r.m.Failed()
			return err
		}
		objects = append(objects, synced)
	}

	body := syncBody{SegmentName: r.seg.name, Objects: objects}
	if err := r.seg.client().do(ctx, r.seg.request("POST", "multi/data/files", nil, body), nil); err != nil {
		r.authFailure(err)
		r.m.Failed()
		return err
	}

	r.completed.Inc()
	r.progress.Update()
	return nil
}

func (r *uploadRun) put(ctx context.Context, u workUnit, obj unitObject) (model.SyncObject, error) {
	ls, err := r.leases.Acquire(ctx, r.key)
	if err != nil {
		r.authFailure(err)
		return model.SyncObject{}, err
	}
	uploader, err := r.uploader(ctx, ls)
	if err != nil {
		return model.SyncObject{}, err
	}

	checksum, size, err := r.hasher.File(obj.item.LocalPath)
	if err != nil {
		return model.SyncObject{}, err
	}
	file, err := r.fs.Open(obj.item.LocalPath)
	if err != nil {
		return model.SyncObject{}, err
	}
	defer func() {
		_ = file.Close()
	}()

	key := ls.ObjectKey(obj.objectPath())
	start := time.Now()
	res, err := uploader.Put(ctx, key, file, size)
	if err != nil {
		r.authFailure(err)
		return model.SyncObject{}, err
	}
	r.m.Uploaded(size, start)
	r.bytes.Add(size)
	if res.Key != "" {
		key = res.Key
	}
	r.l.Debug("uploaded",
		zap.String("remotePath", obj.item.TargetPath()),
		zap.String("sensor", obj.sensor),
		zap.String("frameID", u.frameID),
		zap.Int64("size", size),
	)

	return model.SyncObject{
		RemotePath: obj.item.TargetPath(),
		ObjectKey:  key,
		VersionID:  res.VersionID,
		Checksum:   checksum,
		FileSize:   size,
		Label:      obj.item.Label,
		SensorName: obj.sensor,
		FrameID:    u.frameID,
		Timestamp:  obj.item.Timestamp,
	}, nil
}

// authFailure invalidates the lease once for an authentication failure. The error is not retried.
func (r *uploadRun) authFailure(err error) {
	if IsAuthFailure(err) {
		r.leases.Invalidate(r.key)
	}
}

func leaseIdentity(l model.Lease) string {
	return strings.Join([]string{
		string(l.Backend), l.Host, l.Bucket, l.ObjectPrefix,
		l.Credentials.AccessKeyID, l.Credentials.SessionToken, l.Credentials.Token,
	}, "|")
}

// uploader for a lease, shared by the workers for as long as the lease grants the same credentials
func (r *uploadRun) uploader(ctx context.Context, ls model.Lease) (storage.Uploader, error) {
	id := leaseIdentity(ls)
	r.mu.Lock()
	defer r.mu.Unlock()
	if uploader, ok := r.uploaders[id]; ok {
		return uploader, nil
	}
	uploader, err := r.factory(ctx, ls)
	if err != nil {
		return nil, err
	}
	r.uploaders[id] = uploader
	return uploader, nil
}

func (r *uploadRun) close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var err error
	for id, uploader := range r.uploaders {
		err = multierr.Append(err, uploader.Close())
		delete(r.uploaders, id)
	}
	return err
}
