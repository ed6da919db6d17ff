package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/cyp0633/blocksched/cmd/blocksched/commands"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "blocksched",
	Short: "blocksched - daily block schedules",
	Long: `blocksched expands recurring daily blocks over a timing, the way a
calendar sees them: one block per local day, wall-clock stable across DST,
filtered by weekday codes and explicit include/exclude indices.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(commands.ExpandCmd)
	rootCmd.AddCommand(commands.RangesCmd)
	rootCmd.AddCommand(commands.IcsCmd)
	rootCmd.AddCommand(commands.WeekCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.blocksched.yaml)")
	rootCmd.PersistentFlags().String("tz", "UTC", "IANA timezone of the blocks")
	rootCmd.PersistentFlags().String("engine-config", "", "engine YAML config (cache and result caps)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")

	viper.BindPFlag("tz", rootCmd.PersistentFlags().Lookup("tz"))
	viper.BindPFlag("engine-config", rootCmd.PersistentFlags().Lookup("engine-config"))
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".blocksched")
	}

	viper.SetEnvPrefix("BLOCKSCHED")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		fmt.Fprintln(os.Stderr, "failed to read config:", err)
		os.Exit(1)
	}
}
