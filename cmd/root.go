package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wagok/LogExplorerMCP/internal/config"
	"github.com/wagok/LogExplorerMCP/internal/engine"
	"github.com/wagok/LogExplorerMCP/internal/output"
	"github.com/wagok/LogExplorerMCP/internal/tools"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "logexplorer",
	Short: "Explore huge log files by pattern induction",
	Long: `LogExplorer compresses large log files into a handful of induced
templates so their shape can be understood without reading them.

It clusters syntactically similar lines, drills into clusters,
builds time histograms with anomaly marking, and greps with counts.
The same tools are exposed to MCP clients over stdio via "serve".

Examples:
  logexplorer overview /var/log/app.log
  logexplorer cluster --max-clusters 15 /var/log/app.log
  logexplorer timeline --cluster 3 /var/log/app.log
  logexplorer serve`,
}

// Execute is called by main.main(). It runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.logexplorer.yaml)")
	rootCmd.PersistentFlags().StringP("format", "f", "text", "output format (text, json)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto, always, never)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error finding home directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".logexplorer")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("LOGEXPLORER")
	viper.AutomaticEnv()

	viper.SetDefault("format", "text")
	viper.SetDefault("color", "auto")
	viper.SetDefault("verbose", false)
	viper.SetDefault("max_clusters", config.DefaultMaxClusters)
	viper.SetDefault("threshold", config.DefaultThreshold)

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// newTools builds the per-process tool surface. CLI invocations are
// one-shot, so the session cache only pays off inside serve, but
// sharing the constructor keeps the wiring identical.
func newTools() *tools.Tools {
	return tools.New(engine.New(engine.NewStore()))
}

// newPrinter builds the renderer from the global flags.
func newPrinter() *output.Printer {
	return output.NewPrinter(os.Stdout,
		output.ParseFormat(viper.GetString("format")),
		output.ParseColorMode(viper.GetString("color")))
}
