// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// PanLaw selects how a pan value scales the left and right rows of a
// channel matrix.
type PanLaw int

const (
	// PanLinear cross-fades linearly: the far side is attenuated by |pan|
	// and the near side stays at unity.
	PanLinear PanLaw = iota
	// PanConstantPower keeps lgain^2 + rgain^2 == 1.
	PanConstantPower
)

// Config holds the tunables of a System.
type Config struct {
	// Quality is the interpolation new mixers start with.
	Quality Quality
	// PanLaw used when building channel matrices.
	PanLaw PanLaw
	// DrainInterval is how often Stream.Drain polls the playing state.
	DrainInterval time.Duration
	// FeederQueue is the capacity of a stream feeder's event queue.
	FeederQueue int
	// Fragments and FragmentFrames are the stream geometry LoadStream uses
	// when the caller passes zero.
	Fragments      int
	FragmentFrames int
	// MaxMixFrames bounds a single mix request. Larger requests produce
	// silence instead of growing the mix buffer.
	MaxMixFrames int
	// Logger receives all log output. Nil means a fresh logrus logger on
	// stderr.
	Logger *logrus.Logger
	// LogLevel is applied to Logger when the system is created.
	LogLevel logrus.Level
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Quality:        QualityLinear,
		PanLaw:         PanLinear,
		DrainInterval:  10 * time.Millisecond,
		FeederQueue:    8,
		Fragments:      4,
		FragmentFrames: 2048,
		MaxMixFrames:   1 << 16,
		LogLevel:       logrus.InfoLevel,
	}
}

// LoadConfig loads the configuration from AUDMIX_* environment variables,
// falling back to the defaults for anything unset or malformed.
func LoadConfig() *Config {
	cfg := DefaultConfig()

	if v := os.Getenv("AUDMIX_QUALITY"); v != "" {
		switch strings.ToLower(v) {
		case "point":
			cfg.Quality = QualityPoint
		case "linear":
			cfg.Quality = QualityLinear
		case "cubic":
			cfg.Quality = QualityCubic
		}
	}

	if v := os.Getenv("AUDMIX_PAN_LAW"); v != "" {
		switch strings.ToLower(v) {
		case "linear":
			cfg.PanLaw = PanLinear
		case "constant-power", "constant_power":
			cfg.PanLaw = PanConstantPower
		}
	}

	if v := os.Getenv("AUDMIX_DRAIN_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.DrainInterval = d
		}
	}

	if v := os.Getenv("AUDMIX_FEEDER_QUEUE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FeederQueue = n
		}
	}

	if v := os.Getenv("AUDMIX_FRAGMENTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Fragments = n
		}
	}

	if v := os.Getenv("AUDMIX_FRAGMENT_FRAMES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FragmentFrames = n
		}
	}

	if v := os.Getenv("AUDMIX_LOG_LEVEL"); v != "" {
		if lvl, err := logrus.ParseLevel(v); err == nil {
			cfg.LogLevel = lvl
		}
	}

	return cfg
}
