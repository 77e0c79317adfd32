// Copyright © 2018 One Concern

package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	units "github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/oneconcern/datahub/pkg/core"
	"github.com/oneconcern/datahub/pkg/model"
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the content of a dataset",
	Long: `List the segments of a dataset, or the content of a segment.

The data of a plain segment are listed with their size and checksum.
The frames of a fusion segment are listed with their sensors.
`,
	Example: `% datahub ls --dataset cars
% datahub ls --dataset cars --segment train --revision v1.2`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		d := mustOpenDataset(ctx)
		switch {
		case datahubFlags.segment.Name == "":
			listSegments(ctx, d)
		case d.IsFusion():
			listFrames(ctx, d)
		default:
			listData(ctx, d)
		}
	},
}

func listSegments(ctx context.Context, d *core.DatasetClient) {
	names, err := d.ListSegments().Names(ctx)
	if err != nil {
		wrapFatalln("list segments", err)
		return
	}
	render(names, FormatterFunc(func(w io.Writer, data interface{}) error {
		for _, name := range data.([]string) {
			if _, err := fmt.Fprintln(w, name); err != nil {
				return err
			}
		}
		return nil
	}))
}

func listData(ctx context.Context, d *core.DatasetClient) {
	seg, err := d.GetSegment(ctx, datahubFlags.segment.Name)
	if err != nil {
		wrapFatalln("get segment", err)
		return
	}
	items, err := seg.ListData().All(ctx)
	if err != nil {
		wrapFatalln("list data", err)
		return
	}
	render(items, FormatterFunc(func(w io.Writer, data interface{}) error {
		table := newTable("PATH", "SIZE", "CHECKSUM")
		for _, item := range data.([]model.RemoteData) {
			table.AddRow(item.RemotePath, units.HumanSize(float64(item.FileSize)), item.Checksum)
		}
		return writeTable(w, table)
	}))
}

func listFrames(ctx context.Context, d *core.DatasetClient) {
	seg, err := d.GetFusionSegment(ctx, datahubFlags.segment.Name)
	if err != nil {
		wrapFatalln("get fusion segment", err)
		return
	}
	frames, err := seg.ListFrames().All(ctx)
	if err != nil {
		wrapFatalln("list frames", err)
		return
	}
	render(frames, FormatterFunc(func(w io.Writer, data interface{}) error {
		table := newTable("FRAME", "TIMESTAMP", "SENSORS")
		for _, frame := range data.([]model.RemoteFrame) {
			sensors := make([]string, 0, len(frame))
			stamp := ""
			for _, fd := range frame {
				sensors = append(sensors, fd.SensorName)
				if stamp == "" && fd.Timestamp != nil {
					stamp = strconv.FormatFloat(*fd.Timestamp, 'f', -1, 64)
				}
			}
			table.AddRow(frame.FrameID(), stamp, strings.Join(sensors, ", "))
		}
		return writeTable(w, table)
	}))
}

func init() {
	markRequired(lsCmd, addDatasetFlag(lsCmd))
	addSegmentFlag(lsCmd)
	addRevisionFlag(lsCmd)
	addDraftNumberFlag(lsCmd)
	rootCmd.AddCommand(lsCmd)
}
