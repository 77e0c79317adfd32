// Copyright © 2018 One Concern

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	units "github.com/docker/go-units"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oneconcern/datahub/pkg/core"
	"github.com/oneconcern/datahub/pkg/dlogger"
	"github.com/oneconcern/datahub/pkg/model"
)

var (
	// localFs holds the files to upload
	localFs afero.Fs = afero.NewOsFs()

	progressOut io.Writer = os.Stderr

	sensorType string
)

var cpCmd = &cobra.Command{
	Use:   "cp LOCAL_DIR",
	Short: "Upload a local directory to a segment",
	Long: `Upload the files of a local directory to a segment of the checked out draft.

The segment is created when absent. For a fusion dataset, each subdirectory holds the files of one sensor:
the n-th file of every sensor, in name order, makes the n-th frame.

When an upload is interrupted, the files uploaded so far remain on the draft. The upload may be resumed
on the same draft with --skip-uploaded.
`,
	Example: `% datahub cp ./images --dataset cars --segment train --jobs 8
% datahub cp ./images --dataset cars --segment train --draft 3 --skip-uploaded
% datahub cp ./drive --dataset drives --segment day1 --draft 4 --skip-uploaded --resume-match timestamp`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		d := mustOpenDataset(ctx)
		localDir := args[0]
		var err error
		if d.IsFusion() {
			err = uploadFusion(ctx, d, localDir)
		} else {
			err = uploadPlain(ctx, d, localDir)
		}
		if err == nil {
			return
		}

		var uerr *core.UploadError
		if errors.As(err, &uerr) {
			wrapFatalWithCodef(1, "%s\nresume with:\n  %s", color.RedString(err.Error()), resumeCommand(localDir, uerr))
			return
		}
		wrapFatalln("upload", err)
	},
}

// progressLine prints the advancement of an upload. Workers report concurrently:
// an update older than the last one printed is dropped.
type progressLine struct {
	w       io.Writer
	mu      sync.Mutex
	printed int64
}

func (p *progressLine) update(done, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if done <= p.printed {
		return
	}
	p.printed = done
	fmt.Fprintf(p.w, "\r%s %d/%d", color.CyanString("uploading"), done, total)
}

func uploadOptions(total int) ([]core.UploadOption, *core.Tracker, error) {
	match, err := core.ParseMatchMode(datahubFlags.upload.ResumeMatch)
	if err != nil {
		return nil, nil, err
	}
	line := &progressLine{w: progressOut}
	tracker := core.NewTracker(total,
		core.OnUpdate(line.update),
		core.DisableTracker(viper.GetString(keyLogLevel) == dlogger.LogLevelDebug),
	)
	return []core.UploadOption{
		core.Concurrency(datahubFlags.upload.Jobs),
		core.SkipUploaded(datahubFlags.upload.SkipUploaded),
		core.ResumeMatch(match),
		core.WithProgress(tracker),
		core.LocalFs(localFs),
	}, tracker, nil
}

func uploadPlain(ctx context.Context, d *core.DatasetClient, localDir string) error {
	items, size, err := collectItems(localFs, localDir, datahubFlags.upload.RemoteDir)
	if err != nil {
		return err
	}
	opts, tracker, err := uploadOptions(len(items))
	if err != nil {
		return err
	}
	_, err = d.UploadSegment(ctx, datahubFlags.segment.Name, items, opts...)
	reportUpload(tracker, size, err)
	return err
}

func uploadFusion(ctx context.Context, d *core.DatasetClient, localDir string) error {
	sensors, frames, size, err := collectFrames(localFs, localDir, datahubFlags.upload.RemoteDir, sensorType)
	if err != nil {
		return err
	}
	opts, tracker, err := uploadOptions(len(frames))
	if err != nil {
		return err
	}
	_, err = d.UploadFusionSegment(ctx, datahubFlags.segment.Name, sensors, frames, opts...)
	reportUpload(tracker, size, err)
	return err
}

func reportUpload(tracker *core.Tracker, size int64, err error) {
	if !tracker.Disabled() && tracker.Done() > 0 {
		fmt.Fprintln(progressOut)
	}
	if err != nil {
		return
	}
	infoLogger.Printf("uploaded %d items (%s), skipped %d", tracker.Done()-tracker.Skipped(), units.HumanSize(float64(size)), tracker.Skipped())
}

// collectItems lists the regular files under a local directory, in lexical order
func collectItems(fs afero.Fs, localDir, remoteDir string) ([]model.DataItem, int64, error) {
	var (
		items []model.DataItem
		size  int64
	)
	err := afero.Walk(fs, localDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(localDir, p)
		if err != nil {
			return err
		}
		items = append(items, model.DataItem{
			LocalPath:  p,
			RemotePath: path.Join(remoteDir, filepath.ToSlash(rel)),
		})
		size += info.Size()
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	if len(items) == 0 {
		return nil, 0, fmt.Errorf("no file to upload in %s", localDir)
	}
	return items, size, nil
}

// collectFrames builds frames from a directory with one subdirectory per sensor
func collectFrames(fs afero.Fs, localDir, remoteDir, sensorType string) (model.Sensors, []*model.Frame, int64, error) {
	entries, err := afero.ReadDir(fs, localDir)
	if err != nil {
		return nil, nil, 0, err
	}

	var (
		sensors model.Sensors
		files   [][]os.FileInfo
		size    int64
	)
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		sensorFiles, err := regularFiles(fs, filepath.Join(localDir, entry.Name()))
		if err != nil {
			return nil, nil, 0, err
		}
		if len(files) > 0 && len(sensorFiles) != len(files[0]) {
			return nil, nil, 0, fmt.Errorf("sensor %q has %d files, but sensor %q has %d",
				entry.Name(), len(sensorFiles), sensors[0].Name, len(files[0]))
		}
		sensors = append(sensors, model.Sensor{Name: entry.Name(), Type: sensorType})
		files = append(files, sensorFiles)
	}
	if len(sensors) == 0 || len(files[0]) == 0 {
		return nil, nil, 0, fmt.Errorf("no sensor data to upload in %s", localDir)
	}

	frames := make([]*model.Frame, len(files[0]))
	for i := range frames {
		frame := model.NewFrame()
		for j, sensor := range sensors {
			info := files[j][i]
			frame.Add(sensor.Name, model.DataItem{
				LocalPath:  filepath.Join(localDir, sensor.Name, info.Name()),
				RemotePath: path.Join(remoteDir, info.Name()),
			})
			size += info.Size()
		}
		frames[i] = frame
	}
	return sensors, frames, size, nil
}

func regularFiles(fs afero.Fs, dir string) ([]os.FileInfo, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, err
	}
	files := entries[:0]
	for _, entry := range entries {
		if entry.Mode().IsRegular() && !strings.HasPrefix(entry.Name(), ".") {
			files = append(files, entry)
		}
	}
	return files, nil
}

// resumeCommand tells how to resume an aborted upload on the same draft
func resumeCommand(localDir string, uerr *core.UploadError) string {
	parts := []string{
		"datahub", "cp", localDir,
		"--dataset", datahubFlags.dataset.Name,
		"--segment", uerr.Segment,
		"--draft", strconv.FormatUint(uint64(uerr.DraftNumber), 10),
		"--skip-uploaded",
	}
	if datahubFlags.upload.Jobs > 1 {
		parts = append(parts, "--jobs", strconv.Itoa(datahubFlags.upload.Jobs))
	}
	if datahubFlags.upload.RemoteDir != "" {
		parts = append(parts, "--remote-dir", datahubFlags.upload.RemoteDir)
	}
	if m := datahubFlags.upload.ResumeMatch; m != "" && m != core.MatchAuto.String() {
		parts = append(parts, "--resume-match", m)
	}
	return strings.Join(parts, " ")
}

func init() {
	markRequired(cpCmd, addDatasetFlag(cpCmd), addSegmentFlag(cpCmd))
	addDraftNumberFlag(cpCmd)
	addJobsFlag(cpCmd)
	addSkipUploadedFlag(cpCmd)
	addRemoteDirFlag(cpCmd)
	addResumeMatchFlag(cpCmd)
	cpCmd.Flags().StringVar(&sensorType, "sensor-type", "CAMERA", "The type of the sensors declared by a fusion upload")
	rootCmd.AddCommand(cpCmd)
}
