// Copyright © 2018 One Concern

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/oneconcern/datahub/pkg/core"
	"github.com/oneconcern/datahub/pkg/model"
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show the changes between two revisions",
	Long: `Show the segments and data which differ between two revisions.

Without --base and --head, the checked out draft or commit is compared with its parent commit.
`,
	Example: `% datahub diff --dataset cars
M train
    A night/0001.png
    M night/0002.png

% datahub diff --dataset cars --base v1.1 --head v1.2`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		d := mustOpenDataset(ctx)
		var (
			diff *core.Diff
			err  error
		)
		if datahubFlags.diff.Base == "" && datahubFlags.diff.Head == "" {
			diff, err = d.DiffWithHead(ctx)
		} else {
			diff, err = d.Diff(datahubFlags.diff.Base, datahubFlags.diff.Head)
		}
		if err != nil {
			wrapFatalln("diff", err)
			return
		}
		result, err := collectDiff(ctx, diff)
		if err != nil {
			wrapFatalln("diff", err)
			return
		}
		render(result, FormatterFunc(formatDiff))
	},
}

type segmentDiffResult struct {
	Name   string           `yaml:"name"`
	Action model.DiffAction `yaml:"action"`
	Data   []model.DataDiff `yaml:"data,omitempty"`
}

type diffResult struct {
	Base     string              `yaml:"base"`
	Head     string              `yaml:"head"`
	Segments []segmentDiffResult `yaml:"segments"`
}

// collectDiff walks the changed segments. Unchanged segments are listed without data.
func collectDiff(ctx context.Context, diff *core.Diff) (diffResult, error) {
	result := diffResult{Base: diff.Base, Head: diff.Head}
	it := diff.Segments.Iter()
	for it.Next(ctx) {
		entry := it.Item()
		seg := segmentDiffResult{Name: entry.Name, Action: entry.Action}
		if entry.Action.Changed() {
			data, err := entry.Data.All(ctx)
			if err != nil {
				return result, err
			}
			seg.Data = data
		}
		result.Segments = append(result.Segments, seg)
	}
	return result, it.Err()
}

func actionColor(a model.DiffAction) func(string, ...interface{}) string {
	switch a {
	case model.DiffAdd:
		return color.GreenString
	case model.DiffDelete:
		return color.RedString
	case model.DiffModify:
		return color.YellowString
	default:
		return fmt.Sprintf
	}
}

func formatDiff(w io.Writer, data interface{}) error {
	result := data.(diffResult)
	for _, seg := range result.Segments {
		if !seg.Action.Changed() {
			continue
		}
		fmt.Fprintln(w, actionColor(seg.Action)("%s %s", seg.Action, seg.Name))
		for _, dd := range seg.Data {
			if _, err := fmt.Fprintln(w, "    "+actionColor(dd.Action)("%s %s", dd.Action, dd.RemotePath)); err != nil {
				return err
			}
		}
	}
	return nil
}

func init() {
	markRequired(diffCmd, addDatasetFlag(diffCmd))
	addDiffFlags(diffCmd)
	addRevisionFlag(diffCmd)
	addDraftNumberFlag(diffCmd)
	rootCmd.AddCommand(diffCmd)
}
