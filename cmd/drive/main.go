package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/edwinhayes/ropose/config"
	"github.com/edwinhayes/ropose/msgs/geometry_msgs"
	"github.com/edwinhayes/ropose/ros"
)

var (
	configFile string
	masterURI  string
	rate       float64
	topic      string
	linearX    float64
	angularZ   float64
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "drive",
		Short:        "publish a constant velocity command",
		Long:         "drive publishes the same Twist on the command velocity topic at a\nfixed rate until interrupted, which steers the robot in a circle.",
		RunE:         run,
		SilenceUsage: true,
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.Flags().StringVar(&masterURI, "master", "", "ROS master URI (overrides ROS_MASTER_URI)")
	rootCmd.Flags().Float64Var(&rate, "rate", 10.0, "publish rate in hertz")
	rootCmd.Flags().StringVar(&topic, "topic", "/cmd_vel", "command velocity topic")
	rootCmd.Flags().Float64Var(&linearX, "linear-x", 0.2, "forward velocity in meters per second")
	rootCmd.Flags().Float64Var(&angularZ, "angular-z", 2.0, "turn rate in radians per second")
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
	if cmd.Flags().Changed("topic") {
		cfg.CmdVel.Topic = topic
	}
	if cmd.Flags().Changed("linear-x") {
		cfg.CmdVel.LinearX = linearX
	}
	if cmd.Flags().Changed("angular-z") {
		cfg.CmdVel.AngularZ = angularZ
	}
	if verbose {
		ros.SetLogLevel(logrus.DebugLevel)
	}

	nodeArgs := append([]string{}, args...)
	if masterURI != "" {
		nodeArgs = append(nodeArgs, "__master:="+masterURI)
	}

	node, err := ros.NewNode("/drive", nodeArgs)
	if err != nil {
		return err
	}
	defer node.Shutdown()

	pub := node.NewPublisher(cfg.CmdVel.Topic, geometry_msgs.MsgTwist, 1)

	go node.Spin()

	pacer := ros.NewRate(cfg.Rate)
	for node.OK() {
		msg := &geometry_msgs.Twist{
			Linear:  geometry_msgs.Vector3{X: cfg.CmdVel.LinearX},
			Angular: geometry_msgs.Vector3{Z: cfg.CmdVel.AngularZ},
		}
		pub.Publish(msg)
		pacer.Sleep()
	}
	return nil
}
