// Copyright © 2018 One Concern

package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/oneconcern/datahub/pkg/core"
	"github.com/oneconcern/datahub/pkg/model"
)

// datasetCmd represents the dataset related commands
var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Commands to manage datasets",
	Long: `Commands to manage datasets.

A dataset is a versioned collection of segments. Its content changes on drafts, which are committed as immutable revisions.
`,
}

var datasetCreate = &cobra.Command{
	Use:   "create",
	Short: "Create a named dataset",
	Long:  "Create a dataset. The new dataset has a default branch without any commit.",
	Example: `% datahub dataset create --dataset cars
% datahub dataset create --dataset drives --fusion --alias "Test drives"`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		d, err := mustClient().CreateDataset(ctx, datahubFlags.dataset.Name,
			core.DatasetFusion(datahubFlags.dataset.Fusion),
			core.DatasetAlias(datahubFlags.dataset.Alias),
			core.DatasetPublic(datahubFlags.dataset.Public),
		)
		if err != nil {
			wrapFatalln("create dataset", err)
			return
		}
		remember(d.Dataset().Name, d.Status())
		render(d.Dataset(), FormatterFunc(func(w io.Writer, data interface{}) error {
			ds := data.(model.Dataset)
			_, err := fmt.Fprintf(w, "created dataset %s (%s)\n", color.GreenString(ds.Name), ds.ID)
			return err
		}))
	},
}

var datasetList = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List datasets",
	Long:    "List the datasets accessible with the current access key, optionally filtered by name.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		datasets, err := mustClient().ListDatasets(datahubFlags.dataset.Name).All(ctx)
		if err != nil {
			wrapFatalln("list datasets", err)
			return
		}
		render(datasets, FormatterFunc(func(w io.Writer, data interface{}) error {
			table := newTable("NAME", "ID", "ALIAS", "FUSION", "PUBLIC")
			for _, ds := range data.([]model.Dataset) {
				table.AddRow(ds.Name, ds.ID, ds.Alias, strconv.FormatBool(ds.IsFusion), strconv.FormatBool(ds.IsPublic))
			}
			return writeTable(w, table)
		}))
	},
}

var datasetDelete = &cobra.Command{
	Use:     "rm",
	Aliases: []string{"delete"},
	Short:   "Delete a dataset",
	Long:    "Delete a dataset with all its revisions. This cannot be undone.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := mustClient().DeleteDataset(ctx, datahubFlags.dataset.Name); err != nil {
			wrapFatalln("delete dataset", err)
			return
		}
		forget(datahubFlags.dataset.Name)
		infoLogger.Printf("deleted dataset %s", datahubFlags.dataset.Name)
	},
}

func init() {
	markRequired(datasetCreate, addDatasetFlag(datasetCreate))
	addFusionFlag(datasetCreate)
	addAliasFlag(datasetCreate)
	addPublicFlag(datasetCreate)

	addDatasetFlag(datasetList)

	markRequired(datasetDelete, addDatasetFlag(datasetDelete))

	datasetCmd.AddCommand(datasetCreate, datasetList, datasetDelete)
	rootCmd.AddCommand(datasetCmd)
}
