package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/edwinhayes/ropose/bridge"
	"github.com/edwinhayes/ropose/config"
	"github.com/edwinhayes/ropose/msgs/geometry_msgs"
	"github.com/edwinhayes/ropose/ros"
	"github.com/edwinhayes/ropose/tf"
)

var (
	configFile string
	masterURI  string
	rate       float64
	fixedFrame string
	baseFrame  string
	topic      string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ropose",
		Short: "publish the planar pose of the robot base on a topic",
		Long: "ropose listens to the transform graph and publishes the pose of the\n" +
			"robot base frame in the odometry frame as a Pose2D, at a fixed rate.\n" +
			"Cycles without a usable transform are skipped silently.",
		RunE:         run,
		SilenceUsage: true,
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.Flags().StringVar(&masterURI, "master", "", "ROS master URI (overrides ROS_MASTER_URI)")
	rootCmd.Flags().Float64Var(&rate, "rate", 10.0, "publish rate in hertz")
	rootCmd.Flags().StringVar(&fixedFrame, "fixed-frame", "odom", "fixed reference frame")
	rootCmd.Flags().StringVar(&baseFrame, "base-frame", "base_link", "robot body frame")
	rootCmd.Flags().StringVar(&topic, "topic", "/ropose", "planar pose topic")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "log at debug severity")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("rate") {
		cfg.Rate = rate
	}
	if cmd.Flags().Changed("fixed-frame") {
		cfg.FixedFrame = fixedFrame
	}
	if cmd.Flags().Changed("base-frame") {
		cfg.BaseFrame = baseFrame
	}
	if cmd.Flags().Changed("topic") {
		cfg.PoseTopic = topic
	}
	if verbose {
		ros.SetLogLevel(logrus.DebugLevel)
	}

	// Arguments cobra did not consume are ROS arguments: remappings and
	// parameter assignments pass through to the node untouched.
	nodeArgs := append([]string{}, args...)
	if masterURI != "" {
		nodeArgs = append(nodeArgs, "__master:="+masterURI)
	}

	node, err := ros.NewNode("/ropose", nodeArgs)
	if err != nil {
		return err
	}
	defer node.Shutdown()

	listener := tf.NewListener(node, ros.NewDurationFromSec(cfg.TFCacheTime))
	defer listener.Close()
	pub := node.NewPublisher(cfg.PoseTopic, geometry_msgs.MsgPose2D, cfg.QueueSize)

	go node.Spin()

	pacer := ros.NewRate(cfg.Rate)
	b := bridge.New(listener, pub, &pacer, cfg.FixedFrame, cfg.BaseFrame, node.Logger())
	b.Run(node.OK)
	return nil
}
