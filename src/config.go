package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"webvlc/src/player"
)

const confFile = "config.yaml"

type config struct {
	Address string `yaml:"bind"`
	URLRoot string `yaml:"url_root"`

	// Spool directory for uploads. Without it, uploads are kept in memory.
	// The directory is cleared at startup.
	StorageDir string `yaml:"storage_dir"`
	// The root of the files that can be opened from the command line.
	LibraryDir string `yaml:"library_dir"`

	Surface string `yaml:"surface"`
	MPD     struct {
		Network  string  `yaml:"network"`
		Address  string  `yaml:"address"`
		Password *string `yaml:"password"`
	} `yaml:"mpd"`

	Player struct {
		Volume       *float64          `yaml:"volume"`
		Repeat       player.RepeatMode `yaml:"repeat"`
		Shuffle      bool              `yaml:"shuffle"`
		SkipOnError  bool              `yaml:"skip_on_error"`
		TimeInterval time.Duration     `yaml:"time_interval"`
	} `yaml:"player"`
}

func defaultConfig() config {
	var conf config
	conf.Address = ":3000"
	conf.Surface = "null"
	conf.MPD.Network = "tcp"
	conf.MPD.Address = "127.0.0.1:6600"
	conf.Player.TimeInterval = time.Second
	return conf
}

func (conf *config) Validate() (errs []error) {
	if conf.Address == "" {
		errs = append(errs, fmt.Errorf("config: `bind` is required"))
	}
	switch conf.Surface {
	case "null":
	case "mpd":
		if conf.MPD.Address == "" {
			errs = append(errs, fmt.Errorf("config: `mpd.address` is required for the mpd surface"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown surface %q, expected mpd or null", conf.Surface))
	}
	if v := conf.Player.Volume; v != nil && (*v < 0 || *v > 1) {
		errs = append(errs, fmt.Errorf("config: `player.volume` must be between 0 and 1, got %v", *v))
	}
	if conf.Player.TimeInterval <= 0 {
		errs = append(errs, fmt.Errorf("config: `player.time_interval` must be positive"))
	}
	return
}

// LoadConfig reads the configuration file. Fields that are not set keep their
// defaults, unknown fields are an error.
func LoadConfig(filename string) (*config, error) {
	fd, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	d := yaml.NewDecoder(fd)
	d.KnownFields(true)
	conf := defaultConfig()
	if err := d.Decode(&conf); err != nil {
		return nil, err
	}

	return &conf, nil
}

func (conf *config) storagePath(elem ...string) string {
	if conf.StorageDir == "" {
		return ""
	}
	return filepath.Join(append([]string{expandHome(conf.StorageDir)}, elem...)...)
}

func expandHome(path string) string {
	return strings.Replace(path, "~", os.Getenv("HOME"), 1)
}
