package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oneconcern/datahub/pkg/config"
)

// configCmd represents the config related commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Commands to manage the CLI configuration",
	Long: `Commands to manage the datahub CLI configuration.

Access keys and endpoints are kept in a profiles file, by default ` + config.DefaultProfilesPath() + `.
Every setting may be overridden by a flag, or by an environment variable prefixed with ` + envPrefix + `_,
e.g. ` + envPrefix + `_PROFILE or ` + envPrefix + `_KEY.
`,
}

var configSet = &cobra.Command{
	Use:     "set",
	Aliases: []string{"create"},
	Short:   "Save an access key to a profile",
	Example: `% datahub config set --key Accesskey-0123456789
% datahub config set --profile staging --key Accesskey-0123456789 --url https://staging.example.com`,
	Run: func(cmd *cobra.Command, args []string) {
		key := viper.GetString(keyKey)
		if key == "" {
			wrapFatalWithCodef(2, "an access key is required: use --key")
			return
		}
		file := viper.GetString(keyProfilesFile)
		if err := config.SaveProfile(file, viper.GetString(keyProfile), key, viper.GetString(keyURL)); err != nil {
			wrapFatalln("saving profile to "+file, err)
			return
		}
		infoLogger.Printf("profile %q saved in %s", viper.GetString(keyProfile), file)
	},
}

var configList = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List the profiles",
	Run: func(cmd *cobra.Command, args []string) {
		profiles, err := config.ListProfiles(viper.GetString(keyProfilesFile))
		if err != nil {
			wrapFatalln("listing profiles", err)
			return
		}
		render(profiles, FormatterFunc(func(w io.Writer, data interface{}) error {
			for _, p := range data.([]string) {
				if _, err := fmt.Fprintln(w, p); err != nil {
					return err
				}
			}
			return nil
		}))
	},
}

var configShow = &cobra.Command{
	Use:   "show",
	Short: "Print the configuration used by the next commands",
	Long:  "Print the configuration resolved from flags, environment and profiles file. The access key is not shown.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := clientConfig()
		if err != nil {
			wrapFatalln("resolving config", err)
			return
		}
		render(cfg, yamlFormatter)
	},
}

func init() {
	configCmd.AddCommand(configSet, configList, configShow)
	rootCmd.AddCommand(configCmd)
}
