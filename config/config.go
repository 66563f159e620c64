// Package config loads the YAML settings shared by the ropose binaries.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//Config holds the node settings. Zero values never reach the binaries;
//values start from Default and a config file overrides fields per key.
type Config struct {
	FixedFrame  string       `yaml:"fixed_frame"`
	BaseFrame   string       `yaml:"base_frame"`
	PoseTopic   string       `yaml:"pose_topic"`
	Rate        float64      `yaml:"rate"`
	QueueSize   int          `yaml:"queue_size"`
	TFCacheTime float64      `yaml:"tf_cache_time"`
	CmdVel      CmdVelConfig `yaml:"cmd_vel"`
}

//CmdVelConfig configures the constant-twist drive publisher.
type CmdVelConfig struct {
	Topic    string  `yaml:"topic"`
	LinearX  float64 `yaml:"linear_x"`
	AngularZ float64 `yaml:"angular_z"`
}

//Default returns the configuration the binaries run with when no file is
//given.
func Default() Config {
	return Config{
		FixedFrame:  "odom",
		BaseFrame:   "base_link",
		PoseTopic:   "/ropose",
		Rate:        10.0,
		QueueSize:   1,
		TFCacheTime: 10.0,
		CmdVel: CmdVelConfig{
			Topic:    "/cmd_vel",
			LinearX:  0.2,
			AngularZ: 2.0,
		},
	}
}

//Load reads a YAML file over the defaults. A missing file is not an
//error: the defaults are returned unchanged. A file that exists but does
//not parse is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "failed to read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config %s", path)
	}
	return cfg, nil
}
