package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wagok/LogExplorerMCP/internal/config"
	"github.com/wagok/LogExplorerMCP/internal/tools"
)

func parseClusterID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid cluster id %q", s)
	}
	return id, nil
}

var overviewCmd = &cobra.Command{
	Use:   "overview <file>...",
	Short: "Summarize log files without reading them",
	Long: `Report each file's size, line count, detected timestamp format and
covered time range. Globs are expanded.

Examples:
  logexplorer overview /var/log/app.log
  logexplorer overview /var/log/*.log`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOverview,
}

var clusterCmd = &cobra.Command{
	Use:   "cluster [flags] <file>",
	Short: "Group similar lines into templates",
	Long: `Stream the file once and group syntactically similar lines into
clusters, printing each cluster's induced template, count and
example lines.

Examples:
  logexplorer cluster /var/log/app.log
  logexplorer cluster --max-clusters 15 --threshold 0.5 app.log
  logexplorer cluster --filter ERROR app.log`,
	Args: cobra.ExactArgs(1),
	RunE: runCluster,
}

var drillCmd = &cobra.Command{
	Use:   "drill [flags] <file> <cluster-id>",
	Short: "Split one cluster into finer sub-clusters",
	Args:  cobra.ExactArgs(2),
	RunE:  runDrill,
}

var timelineCmd = &cobra.Command{
	Use:   "timeline [flags] <file>",
	Short: "Histogram the file's timestamps",
	Long: `Build a bucketed histogram over the file's timestamps, draw it, and
mark buckets counted far above the mean.

Examples:
  logexplorer timeline /var/log/app.log
  logexplorer timeline --cluster 3 --bucket minute app.log`,
	Args: cobra.ExactArgs(1),
	RunE: runTimeline,
}

var grepCmd = &cobra.Command{
	Use:   "grep [flags] <file> <pattern>",
	Short: "Count matching lines and show a few",
	Long: `Count every line matching the pattern and print a bounded sample.
A pattern between forward slashes is a regular expression;
anything else matches as a substring.

Examples:
  logexplorer grep app.log "connection refused"
  logexplorer grep --context 2 app.log "/timeout after \d+ms/"`,
	Args: cobra.ExactArgs(2),
	RunE: runGrep,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [flags] <file>",
	Short: "Page through raw matching lines",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch,
}

func init() {
	clusterCmd.Flags().Int("max-clusters", config.DefaultMaxClusters, "cluster cap (2-20)")
	clusterCmd.Flags().Float64("threshold", config.DefaultThreshold, "similarity threshold (0.1-0.9)")
	clusterCmd.Flags().String("filter", "", "only cluster matching lines (substring or /regex/)")

	drillCmd.Flags().Int("max-subclusters", config.DefaultSubclusters, "sub-cluster cap")

	timelineCmd.Flags().Int("cluster", -1, "restrict to one cluster's lines")
	timelineCmd.Flags().String("bucket", "auto", "bucket size (auto, minute, hour, day)")

	grepCmd.Flags().Int("max-examples", config.DefaultGrepExamples, "examples to print")
	grepCmd.Flags().Int("context", 0, "context lines around each example")

	fetchCmd.Flags().String("filter", "", "only fetch matching lines (substring or /regex/)")
	fetchCmd.Flags().Int("offset", 0, "matches to skip")
	fetchCmd.Flags().Int("limit", config.DefaultFetchLimit, "lines to return")

	rootCmd.AddCommand(overviewCmd, clusterCmd, drillCmd, timelineCmd, grepCmd, fetchCmd)
}

func runOverview(cmd *cobra.Command, args []string) error {
	files, err := config.ExpandGlobs(args)
	if err != nil {
		return err
	}
	t := newTools()
	p := newPrinter()
	for _, file := range files {
		if err := p.Print(t.Overview(cmd.Context(), tools.OverviewArgs{File: file})); err != nil {
			return err
		}
	}
	return nil
}

func runCluster(cmd *cobra.Command, args []string) error {
	maxClusters, _ := cmd.Flags().GetInt("max-clusters")
	threshold, _ := cmd.Flags().GetFloat64("threshold")
	filter, _ := cmd.Flags().GetString("filter")

	result := newTools().Cluster(cmd.Context(), tools.ClusterArgs{
		File:        args[0],
		MaxClusters: maxClusters,
		Threshold:   threshold,
		Filter:      filter,
	})
	return newPrinter().Print(result)
}

func runDrill(cmd *cobra.Command, args []string) error {
	id, err := parseClusterID(args[1])
	if err != nil {
		return err
	}
	maxSub, _ := cmd.Flags().GetInt("max-subclusters")

	result := newTools().ClusterDrill(cmd.Context(), tools.DrillArgs{
		File:           args[0],
		ClusterID:      id,
		MaxSubclusters: maxSub,
	})
	return newPrinter().Print(result)
}

func runTimeline(cmd *cobra.Command, args []string) error {
	bucket, _ := cmd.Flags().GetString("bucket")
	clusterID, _ := cmd.Flags().GetInt("cluster")

	targs := tools.TimelineArgs{File: args[0], BucketSize: bucket}
	if clusterID >= 0 {
		targs.ClusterID = &clusterID
	}
	return newPrinter().Print(newTools().Timeline(cmd.Context(), targs))
}

func runGrep(cmd *cobra.Command, args []string) error {
	maxExamples, _ := cmd.Flags().GetInt("max-examples")
	contextLines, _ := cmd.Flags().GetInt("context")

	result := newTools().Grep(cmd.Context(), tools.GrepArgs{
		File:         args[0],
		Pattern:      args[1],
		MaxExamples:  maxExamples,
		ContextLines: contextLines,
	})
	return newPrinter().Print(result)
}

func runFetch(cmd *cobra.Command, args []string) error {
	filter, _ := cmd.Flags().GetString("filter")
	offset, _ := cmd.Flags().GetInt("offset")
	limit, _ := cmd.Flags().GetInt("limit")

	result := newTools().Fetch(cmd.Context(), tools.FetchArgs{
		File:   args[0],
		Filter: filter,
		Offset: offset,
		Limit:  limit,
	})
	return newPrinter().Print(result)
}
