// Copyright © 2018 One Concern

package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oneconcern/datahub/internal"
	"github.com/oneconcern/datahub/pkg/config"
)

const envPrefix = "DATAHUB"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "datahub",
	Short: "Datahub keeps versioned datasets in sync",
	Long: `Datahub keeps versioned datasets in sync with a remote data hub.

Datasets are organized in segments of data files, or in fusion segments of multi-sensor frames.
Changes are staged on drafts, then committed as immutable revisions.

Datahub works by providing a git like interface to drafts, commits, branches and tags.
`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if datahubFlags.root.cpuProf != "" {
			stop, err := internal.StartCPUProf(datahubFlags.root.cpuProf)
			if err != nil {
				wrapFatalln("cpu profiling", err)
				return
			}
			stopCPUProf = stop
		}
		if err := startMetrics(); err != nil {
			wrapFatalln("serving metrics", err)
		}
	},
	// upstream api note:  *PostRun functions aren't called in case of a panic() in Run
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		stopMetrics()
		if stopCPUProf != nil {
			if err := stopCPUProf(); err != nil {
				infoLogger.Printf("cpu profiling: %v", err)
			}
			stopCPUProf = nil
		}
		if datahubFlags.root.memProf != "" {
			err := internal.WriteMemProf(internal.MemProfParams{
				DestDir:    datahubFlags.root.memProf,
				NamePrefix: "datahub_" + cmd.Name(),
				Logger:     cliLogger(viper.GetString(keyLogLevel)),
			})
			if err != nil {
				infoLogger.Printf("memory profiling: %v", err)
			}
		}
	},
}

var stopCPUProf func() error

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		osExit(1)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)

	addRootFlags(rootCmd)
}

// initConfig reads in ENV variables if set.
func initConfig() {
	viper.SetDefault(keyProfile, config.DefaultProfile)
	viper.SetDefault(keyLogLevel, "warn")
	viper.SetDefault(keyTimeout, config.DefaultTimeout)
	viper.SetDefault(keyProfilesFile, config.DefaultProfilesPath())
	viper.SetDefault(keyStateFile, defaultStateFile())

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}
