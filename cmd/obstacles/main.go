package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/edwinhayes/ropose/grid"
	"github.com/edwinhayes/ropose/msgs/nav_msgs"
	"github.com/edwinhayes/ropose/ros"
)

var (
	masterURI string
	topic     string
	threshold int
	kernel    int
	verbose   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "obstacles",
		Short: "report obstacle candidates found in the occupancy grid",
		Long: "obstacles subscribes to the map topic, clusters occupied cells into\n" +
			"groups and logs the bounding box of every group that is large enough\n" +
			"to be an object and small enough not to be a wall.",
		RunE:         run,
		SilenceUsage: true,
	}
	rootCmd.Flags().StringVar(&masterURI, "master", "", "ROS master URI (overrides ROS_MASTER_URI)")
	rootCmd.Flags().StringVar(&topic, "topic", "/map", "occupancy grid topic")
	rootCmd.Flags().IntVar(&threshold, "threshold", 3, "occupancy value above which a cell counts as occupied")
	rootCmd.Flags().IntVar(&kernel, "kernel", 3, "cell distance within which cells join the same group")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "log at debug severity")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if verbose {
		ros.SetLogLevel(logrus.DebugLevel)
	}

	nodeArgs := append([]string{}, args...)
	if masterURI != "" {
		nodeArgs = append(nodeArgs, "__master:="+masterURI)
	}

	node, err := ros.NewNode("/obstacles", nodeArgs)
	if err != nil {
		return err
	}
	defer node.Shutdown()

	logger := *node.Logger()
	node.NewSubscriber(topic, nav_msgs.MsgOccupancyGrid, func(msg *nav_msgs.OccupancyGrid) {
		occupied := func(v int8) bool { return int(v) > threshold }
		groups := grid.ExtractGroups(msg, occupied, kernel)
		logger.Debugf("Map %dx%d: %d occupied groups", msg.Info.Width, msg.Info.Height, len(groups))
		for _, g := range groups {
			box := g.Bounds(msg.Info)
			if !box.ObstacleSized() {
				continue
			}
			logger.Infof("Obstacle %d: %d cells, box (%.2f, %.2f) to (%.2f, %.2f)",
				g.ID, len(g.Cells), box.MinX, box.MinY, box.MaxX, box.MaxY)
		}
	})

	node.Spin()
	return nil
}
