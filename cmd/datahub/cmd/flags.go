// Copyright © 2018 One Concern

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oneconcern/datahub/pkg/config"
	"github.com/oneconcern/datahub/pkg/core"
)

// viper keys, also used as flag names
const (
	keyProfile      = "profile"
	keyKey          = "key"
	keyURL          = "url"
	keyInternal     = "internal"
	keyTimeout      = "timeout"
	keyLogLevel     = "log-level"
	keyProfilesFile = "profiles-file"
	keyStateFile    = "state-file"
	keyMetricsAddr  = "metrics-addr"
)

type flagsT struct {
	root struct {
		yaml    bool
		cpuProf string
		memProf string
	}
	dataset struct {
		Name   string
		Fusion bool
		Alias  string
		Public bool
	}
	revision struct {
		Revision string
		Draft    uint32
	}
	diff struct {
		Base string
		Head string
	}
	draft struct {
		Title       string
		Description string
		Branch      string
		Status      string
	}
	commit struct {
		Tag string
	}
	segment struct {
		Name     string
		Strategy string
	}
	upload struct {
		Jobs         int
		SkipUploaded bool
		RemoteDir    string
		ResumeMatch  string
	}
}

var datahubFlags = flagsT{}

func addRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String(keyProfile, config.DefaultProfile, "The profile to pick the access key from, in the profiles file")
	flags.String(keyKey, "", "The access key. It takes precedence over the profile")
	flags.String(keyURL, "", "The endpoint of the data hub API. Defaults to the profile endpoint, then to "+config.DefaultEndpoint)
	flags.Bool(keyInternal, false, "Use the internal endpoint of the data hub API")
	flags.Duration(keyTimeout, config.DefaultTimeout, "The timeout of a single API request")
	flags.String(keyLogLevel, "warn", "The logging level: debug, info, warn, error or none")
	flags.String(keyProfilesFile, config.DefaultProfilesPath(), "The profiles file")
	flags.String(keyStateFile, defaultStateFile(), "The file keeping track of the checked out revision of each dataset")
	flags.String(keyMetricsAddr, "", "Serve prometheus metrics on this address while the command runs, e.g. :9090")
	flags.BoolVar(&datahubFlags.root.yaml, "yaml", false, "Output descriptors as yaml")
	flags.StringVar(&datahubFlags.root.cpuProf, "cpu-prof", "", "Write a CPU profile of the command to this file")
	flags.StringVar(&datahubFlags.root.memProf, "mem-prof", "", "Write memory profiles to this directory when the command completes")

	for _, key := range []string{
		keyProfile, keyKey, keyURL, keyInternal, keyTimeout, keyLogLevel, keyProfilesFile, keyStateFile, keyMetricsAddr,
	} {
		if err := viper.BindPFlag(key, flags.Lookup(key)); err != nil {
			logFatalln(err)
		}
	}
}

func addDatasetFlag(cmd *cobra.Command) string {
	dataset := "dataset"
	cmd.Flags().StringVarP(&datahubFlags.dataset.Name, dataset, "d", "", "The name of the dataset")
	return dataset
}

func addFusionFlag(cmd *cobra.Command) string {
	fusion := "fusion"
	cmd.Flags().BoolVar(&datahubFlags.dataset.Fusion, fusion, false, "Create a fusion dataset, with segments organized in frames")
	return fusion
}

func addAliasFlag(cmd *cobra.Command) string {
	alias := "alias"
	cmd.Flags().StringVar(&datahubFlags.dataset.Alias, alias, "", "A display alias for the dataset")
	return alias
}

func addPublicFlag(cmd *cobra.Command) string {
	public := "public"
	cmd.Flags().BoolVar(&datahubFlags.dataset.Public, public, false, "Make the dataset public")
	return public
}

func addRevisionFlag(cmd *cobra.Command) string {
	rev := "revision"
	cmd.Flags().StringVarP(&datahubFlags.revision.Revision, rev, "r", "",
		"A branch, tag or commit id. Defaults to the checked out revision, then to the head of the default branch")
	return rev
}

func addDraftNumberFlag(cmd *cobra.Command) string {
	draft := "draft"
	cmd.Flags().Uint32Var(&datahubFlags.revision.Draft, draft, 0, "The number of an open draft")
	return draft
}

func addDiffFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&datahubFlags.diff.Base, "base", "", "The base revision: a commit id, branch or tag")
	cmd.Flags().StringVar(&datahubFlags.diff.Head, "head", "",
		"The head revision: a commit id, branch, tag or #n for a draft. Without base and head, compares the checked out revision with its parent")
}

func addTitleFlag(cmd *cobra.Command) string {
	title := "message"
	cmd.Flags().StringVarP(&datahubFlags.draft.Title, title, "m", "", "The title of the draft or commit")
	return title
}

func addDescriptionFlag(cmd *cobra.Command) string {
	description := "description"
	cmd.Flags().StringVar(&datahubFlags.draft.Description, description, "", "A longer description of the draft or commit")
	return description
}

func addBranchFlag(cmd *cobra.Command) string {
	branch := "branch"
	cmd.Flags().StringVarP(&datahubFlags.draft.Branch, branch, "b", "", "The name of the branch")
	return branch
}

func addDraftStatusFlag(cmd *cobra.Command) string {
	st := "status"
	cmd.Flags().StringVar(&datahubFlags.draft.Status, st, "OPEN", "Filter drafts by status: OPEN, CLOSED, COMMITTED or ALL")
	return st
}

func addTagFlag(cmd *cobra.Command) string {
	tag := "tag"
	cmd.Flags().StringVarP(&datahubFlags.commit.Tag, tag, "t", "", "Tag the new commit")
	return tag
}

func addSegmentFlag(cmd *cobra.Command) string {
	segment := "segment"
	cmd.Flags().StringVarP(&datahubFlags.segment.Name, segment, "s", "", "The name of the segment")
	return segment
}

func addStrategyFlag(cmd *cobra.Command) string {
	strategy := "strategy"
	cmd.Flags().StringVar(&datahubFlags.segment.Strategy, strategy, "abort",
		"How to handle an existing target segment: abort, override or skip")
	return strategy
}

func addJobsFlag(cmd *cobra.Command) string {
	jobs := "jobs"
	cmd.Flags().IntVarP(&datahubFlags.upload.Jobs, jobs, "j", 1, "The number of parallel uploads")
	return jobs
}

func addSkipUploadedFlag(cmd *cobra.Command) string {
	skip := "skip-uploaded"
	cmd.Flags().BoolVar(&datahubFlags.upload.SkipUploaded, skip, false,
		"Skip the files already uploaded to the draft, to resume an interrupted upload")
	return skip
}

func addRemoteDirFlag(cmd *cobra.Command) string {
	remote := "remote-dir"
	cmd.Flags().StringVar(&datahubFlags.upload.RemoteDir, remote, "", "A remote directory to upload the files to, within the segment")
	return remote
}

func addResumeMatchFlag(cmd *cobra.Command) string {
	match := "resume-match"
	cmd.Flags().StringVar(&datahubFlags.upload.ResumeMatch, match, core.MatchAuto.String(),
		"How frames uploaded already are recognized with --skip-uploaded: auto, frame-id or timestamp")
	return match
}

func markRequired(cmd *cobra.Command, requiredFlags ...string) {
	for _, flag := range requiredFlags {
		if err := cmd.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}
}
