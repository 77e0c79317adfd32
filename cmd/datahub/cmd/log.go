// Copyright © 2018 One Concern

package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/oneconcern/datahub/pkg/model"
)

// logCmd represents the log command
var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Get commit history",
	Long:  `Displays the commits leading to a revision, with their titles. The revision defaults to the checked out one.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		d := mustOpenDataset(ctx)
		commits, err := d.ListCommits("").All(ctx)
		if err != nil {
			wrapFatalln("list commits", err)
			return
		}
		render(commits, FormatterFunc(formatLog))
	},
}

func formatLog(w io.Writer, data interface{}) error {
	for _, c := range data.([]model.Commit) {
		fmt.Fprint(w, "     ID: ")
		fmt.Fprintln(w, color.MagentaString(c.CommitID))
		fmt.Fprint(w, "Author:  ")
		fmt.Fprintln(w, color.YellowString(c.Committer.Name))
		fmt.Fprint(w, "   Date: ")
		fmt.Fprintln(w, color.YellowString(c.Committer.Time().Format(time.RFC3339)))
		fmt.Fprintln(w)
		fmt.Fprintln(w, "    "+c.Title)
		if c.Description != "" {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "    "+c.Description)
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	markRequired(logCmd, addDatasetFlag(logCmd))
	addRevisionFlag(logCmd)
	rootCmd.AddCommand(logCmd)
}
