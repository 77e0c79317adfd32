// Copyright © 2018 One Concern

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/oneconcern/datahub/pkg/model"
)

var branchCmd = &cobra.Command{
	Use:   "branch",
	Short: "Commands to manage branches",
	Long:  `Commands to manage the branches of a dataset.`,
}

var branchCreate = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a branch",
	Long:  "Create a branch from a revision, defaulting to the checked out commit. The new branch is checked out.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		rev := datahubFlags.revision.Revision
		// the starting point is not checked out
		datahubFlags.revision.Revision = ""
		d := mustOpenDataset(ctx)
		if err := d.CreateBranch(ctx, args[0], rev); err != nil {
			wrapFatalln("create branch", err)
			return
		}
		remember(d.Dataset().Name, d.Status())
		infoLogger.Printf("checked out %s", color.GreenString(d.Status().String()))
	},
}

type branchListResult struct {
	Branches []model.Branch `json:"branches" yaml:"branches"`
	Active   string         `json:"active" yaml:"active"`
}

var branchList = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List the branches of a dataset",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		d := mustOpenDataset(ctx)
		branches, err := d.ListBranches().All(ctx)
		if err != nil {
			wrapFatalln("list branches", err)
			return
		}
		render(branchListResult{Branches: branches, Active: d.Status().BranchName()}, FormatterFunc(formatBranches))
	},
}

func formatBranches(w io.Writer, data interface{}) error {
	val := data.(branchListResult)
	for _, b := range val.Branches {
		marker := " "
		if b.Name == val.Active {
			marker = color.YellowString("*")
		}
		if _, err := fmt.Fprintln(w, marker, b.Name, color.HiBlackString(b.CommitID)); err != nil {
			return err
		}
	}
	return nil
}

var branchDelete = &cobra.Command{
	Use:     "rm NAME",
	Aliases: []string{"delete"},
	Short:   "Delete a branch",
	Long:    "Delete a branch. The default branch of a dataset cannot be deleted.",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		d := mustOpenDataset(ctx)
		if err := d.DeleteBranch(ctx, args[0]); err != nil {
			wrapFatalln("delete branch", err)
			return
		}
		if d.Status().BranchName() == args[0] {
			forget(d.Dataset().Name)
		}
		infoLogger.Printf("deleted branch %s", args[0])
	},
}

func init() {
	markRequired(branchCreate, addDatasetFlag(branchCreate))
	addRevisionFlag(branchCreate)

	markRequired(branchList, addDatasetFlag(branchList))

	markRequired(branchDelete, addDatasetFlag(branchDelete))

	branchCmd.AddCommand(branchCreate, branchList, branchDelete)
	rootCmd.AddCommand(branchCmd)
}
