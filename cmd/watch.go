package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wagok/LogExplorerMCP/internal/cluster"
	"github.com/wagok/LogExplorerMCP/internal/config"
	"github.com/wagok/LogExplorerMCP/internal/follow"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] <file>",
	Short: "Follow a growing file and cluster it live",
	Long: `Tail the file and feed appended lines into a live clusterer,
reprinting the top templates at an interval. Rotation and
truncation are followed.

Examples:
  logexplorer watch /var/log/app.log
  logexplorer watch --interval 10s --from-start app.log`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Int("max-clusters", config.DefaultMaxClusters, "cluster cap (2-20)")
	watchCmd.Flags().Float64("threshold", config.DefaultThreshold, "similarity threshold (0.1-0.9)")
	watchCmd.Flags().String("interval", "5s", "snapshot interval")
	watchCmd.Flags().Bool("from-start", false, "cluster existing content before following")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	maxClusters, _ := cmd.Flags().GetInt("max-clusters")
	threshold, _ := cmd.Flags().GetFloat64("threshold")
	intervalStr, _ := cmd.Flags().GetString("interval")
	fromStart, _ := cmd.Flags().GetBool("from-start")

	interval, err := config.ParseDuration(intervalStr)
	if err != nil {
		return fmt.Errorf("invalid --interval value: %w", err)
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f := follow.New(follow.Options{
		FilePath:    args[0],
		MaxClusters: config.ClampClusters(maxClusters),
		Threshold:   config.ClampThreshold(threshold),
		Interval:    interval,
		FromStart:   fromStart,
		Publish: func(views []cluster.View) error {
			fmt.Printf("--- %s  %s\n", time.Now().Format("15:04:05"), args[0])
			for _, v := range views {
				template := v.Template
				if len(template) > 100 {
					template = template[:100] + "…"
				}
				fmt.Printf("[%d] %6d  %5.1f%%  %s\n", v.ID, v.Count, v.Percent, template)
			}
			return nil
		},
	})

	logger.Info("watching", zap.String("file", args[0]), zap.Duration("interval", interval))
	if err := f.Run(ctx); err != nil && !strings.Contains(err.Error(), "context canceled") {
		return err
	}
	return nil
}
