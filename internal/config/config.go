// Package config loads and validates the mecompd TOML configuration.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// ValueKey represents value keys for contexts, e.g. context.WithValue(ctx,
// config.KeyCfg, cfg).
type ValueKey string

const (
	// KeyCfg is the context key for the mecompd configuration.
	KeyCfg ValueKey = "cfg"
	// KeyVersion is the context key for the mecompd version.
	KeyVersion ValueKey = "version"
)

const (
	// CfgDir is the directory where the mecompd configuration is stored.
	CfgDir = "/etc/mecomp"
	// cfgFilename is the name of the mecompd configuration file, without
	// extension; viper infers the format (TOML) from the file on disk.
	cfgFilename = "config"
)

// ConflictResolution controls what happens when two scanned files would
// resolve to the same library entity (e.g. same title+artist).
type ConflictResolution string

const (
	ConflictOverwrite ConflictResolution = "overwrite"
	ConflictSkip      ConflictResolution = "skip"
)

// IsValid reports whether cr is one of the allowed conflict-resolution modes.
func (cr ConflictResolution) IsValid() error {
	if cr != ConflictOverwrite && cr != ConflictSkip {
		return fmt.Errorf("%q is not a valid conflict_resolution", string(cr))
	}
	return nil
}

// ClusterAlgorithm selects the fitting algorithm used by a recluster
// operation, per spec.md §4.3.
type ClusterAlgorithm string

const (
	AlgorithmKMeans ClusterAlgorithm = "kmeans"
	AlgorithmGMM    ClusterAlgorithm = "gmm"
)

// IsValid reports whether alg is a supported clustering algorithm.
func (alg ClusterAlgorithm) IsValid() error {
	if alg != AlgorithmKMeans && alg != AlgorithmGMM {
		return fmt.Errorf("%q is not a valid reclustering algorithm", string(alg))
	}
	return nil
}

// Cfg stores the data from the mecompd configuration file.
type Cfg struct {
	Daemon      daemon      `mapstructure:"daemon"`
	Reclustering reclustering `mapstructure:"reclustering"`
	TUI         tui         `mapstructure:"tui"`
}

type daemon struct {
	RPCPort              int                `mapstructure:"rpc_port"`
	LibraryPaths         []string           `mapstructure:"library_paths"`
	ArtistSeparator      string             `mapstructure:"artist_separator"`
	ProtectedArtistNames []string           `mapstructure:"protected_artist_names"`
	GenreSeparator       string             `mapstructure:"genre_separator"`
	ConflictResolution   ConflictResolution `mapstructure:"conflict_resolution"`
	LogLevel             string             `mapstructure:"log_level"`
}

type reclustering struct {
	GapStatisticReferenceDatasets int              `mapstructure:"gap_statistic_reference_datasets"`
	MaxClusters                  int              `mapstructure:"max_clusters"`
	Algorithm                    ClusterAlgorithm `mapstructure:"algorithm"`
}

type tui struct {
	RadioCount int `mapstructure:"radio_count"`
}

// Default returns the configuration that ships as the out-of-the-box
// default, mirroring mecomp's own conservative defaults.
func Default() Cfg {
	return Cfg{
		Daemon: daemon{
			RPCPort:            6600,
			ArtistSeparator:    ", ",
			GenreSeparator:     ", ",
			ConflictResolution: ConflictSkip,
			LogLevel:           "info",
		},
		Reclustering: reclustering{
			GapStatisticReferenceDatasets: 10,
			MaxClusters:                   10,
			Algorithm:                     AlgorithmKMeans,
		},
		TUI: tui{RadioCount: 10},
	}
}

// Load reads the mecompd configuration file from the given directory (or
// CfgDir if dir is empty), falling back to Default() for any value the file
// doesn't set.
func Load(dir string) (cfg Cfg, err error) {
	cfg = Default()

	if dir == "" {
		dir = CfgDir
	}

	v := viper.New()
	v.SetConfigName(cfgFilename)
	v.SetConfigType("toml")
	v.AddConfigPath(dir)

	if err = v.ReadInConfig(); err != nil {
		err = errors.Wrapf(err, "could not read mecompd configuration in %s", dir)
		return
	}
	if err = v.Unmarshal(&cfg); err != nil {
		err = errors.Wrap(err, "could not parse mecompd configuration")
		return
	}
	return
}

// Validate checks if the configuration is complete and correct. If it's not,
// an error is returned.
func (c *Cfg) Validate() (err error) {
	if err = c.Daemon.validate(); err != nil {
		return
	}
	if err = c.Reclustering.validate(); err != nil {
		return
	}
	if err = c.TUI.validate(); err != nil {
		return
	}
	return
}

func (d *daemon) validate() (err error) {
	if d.RPCPort <= 0 || d.RPCPort > 65535 {
		return fmt.Errorf("rpc_port must be between 1 and 65535, got %d", d.RPCPort)
	}
	if len(d.LibraryPaths) == 0 {
		return fmt.Errorf("at least one library path must be configured")
	}
	for _, p := range d.LibraryPaths {
		if !filepath.IsAbs(p) {
			return fmt.Errorf("library path %q must be absolute", p)
		}
	}
	if d.ArtistSeparator == "" {
		return fmt.Errorf("artist_separator must not be empty")
	}
	if d.GenreSeparator == "" {
		return fmt.Errorf("genre_separator must not be empty")
	}
	if err = d.ConflictResolution.IsValid(); err != nil {
		return err
	}
	return nil
}

func (r *reclustering) validate() (err error) {
	if r.GapStatisticReferenceDatasets <= 0 {
		return fmt.Errorf("gap_statistic_reference_datasets must be > 0")
	}
	if r.MaxClusters <= 1 {
		return fmt.Errorf("max_clusters must be > 1")
	}
	if err = r.Algorithm.IsValid(); err != nil {
		return err
	}
	return nil
}

func (t *tui) validate() (err error) {
	if t.RadioCount <= 0 {
		return fmt.Errorf("radio_count must be > 0")
	}
	return nil
}

// Test reads the configuration file from dir and checks it for completeness
// and consistency, mirroring mecompd's `mecompd test` subcommand.
func Test(dir string) error {
	cfg, err := Load(dir)
	if err != nil {
		return errors.Wrap(err, "the mecompd configuration couldn't be read")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	fmt.Println("mecompd configuration is complete and consistent")
	return nil
}
