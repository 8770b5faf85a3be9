package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roamkit/tripscope/internal/utils"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `	 _        _
	| |_ _ __(_)_ __  ___  ___ ___  _ __   ___
	| __| '__| | '_ \/ __|/ __/ _ \| '_ \ / _ \
	| |_| |  | | |_) \__ \ (_| (_) | |_) |  __/
	 \__|_|  |_| .__/|___/\___\___/| .__/ \___|
	           |_|                 |_|

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tripscope",
	Short: "A local discovery engine for travelers.",
	Long: LOGO + `tripscope finds experiences, restaurants, attractions and deals for a
destination, combining a curated city catalog with live extraction from
trusted travel sites. Results are cached in a local SQLite database and
misbehaving sources are put on a cooldown blacklist.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tripscope.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".tripscope")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.tripscope.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Set default values for all keys
	viper.SetDefault("search.api_key", "")
	viper.SetDefault("search.endpoint", "")
	viper.SetDefault("ai.api_key", "")
	viper.SetDefault("ai.model", "")
	viper.SetDefault("ai.endpoint", "")
	viper.SetDefault("cache.ttl_days", 7)
	viper.SetDefault("blacklist.cooldown_days", 30)
	viper.SetDefault("discover.max_sources", 5)
	viper.SetDefault("discover.concurrency", 4)
	viper.SetDefault("discover.source_timeout_seconds", 20)
	viper.SetDefault("discover.static_limit", 10)
	viper.SetDefault("discover.live_limit", 12)
	viper.SetDefault("sources.allowed_domains", []string{})

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}
