// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// System is an opened driver plus the objects created through it.
type System struct {
	driver   Driver
	cfg      *Config
	log      *logrus.Logger
	registry *Registry

	mu     sync.Mutex
	voices map[*Voice]struct{}
	closed bool
}

// NewSystem opens driver. Without a config DefaultConfig is used.
func NewSystem(driver Driver, cfg ...*Config) (*System, error) {
	const op = "NewSystem"

	if driver == nil {
		return nil, invalidParam(op, "nil driver")
	}

	c := DefaultConfig()
	if len(cfg) > 0 && cfg[0] != nil {
		c = cfg[0]
	}

	log := c.Logger
	if log == nil {
		log = logrus.New()
	}
	log.SetLevel(c.LogLevel)

	if err := driver.Open(); err != nil {
		return nil, generic(op, fmt.Errorf("opening %s driver: %w", driver.Name(), err))
	}

	log.WithFields(logrus.Fields{
		"function": op,
		"driver":   driver.Name(),
		"quality":  c.Quality.String(),
	}).Info("audio system opened")

	return &System{
		driver:   driver,
		cfg:      c,
		log:      log,
		registry: NewRegistry(),
		voices:   make(map[*Voice]struct{}),
	}, nil
}

func (sys *System) Driver() Driver         { return sys.driver }
func (sys *System) Config() *Config        { return sys.cfg }
func (sys *System) Logger() *logrus.Logger { return sys.log }
func (sys *System) Registry() *Registry    { return sys.registry }

func (sys *System) check(op string) error {
	sys.mu.Lock()
	defer sys.mu.Unlock()
	if sys.closed {
		return invalidObject(op, ErrSystemClosed)
	}
	return nil
}

func (sys *System) addVoice(v *Voice) {
	sys.mu.Lock()
	defer sys.mu.Unlock()
	sys.voices[v] = struct{}{}
}

func (sys *System) removeVoice(v *Voice) {
	sys.mu.Lock()
	defer sys.mu.Unlock()
	delete(sys.voices, v)
}

// Close destroys every remaining voice and closes the driver.
func (sys *System) Close() error {
	sys.mu.Lock()
	if sys.closed {
		sys.mu.Unlock()
		return nil
	}
	sys.closed = true
	voices := make([]*Voice, 0, len(sys.voices))
	for v := range sys.voices {
		voices = append(voices, v)
	}
	sys.mu.Unlock()

	for _, v := range voices {
		v.Destroy()
	}

	if err := sys.driver.Close(); err != nil {
		return generic("System.Close", err)
	}

	sys.log.WithField("function", "System.Close").Info("audio system closed")
	return nil
}

// openFeeder opens path and decodes it with the registered decoder.
func (sys *System) openFeeder(op, path string) (Feeder, error) {
	dec, err := sys.registry.ForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, generic(op, err)
	}

	feeder, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, generic(op, fmt.Errorf("decoding %s: %w", path, err))
	}

	return &fileFeeder{Feeder: feeder, file: f}, nil
}

// fileFeeder closes the file a feeder decodes from together with the
// feeder.
type fileFeeder struct {
	Feeder
	file io.Closer
}

func (f *fileFeeder) Close() error {
	err := f.Feeder.Close()
	if cerr := f.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// LoadStream opens path as a stream fed by a background goroutine. Zero
// fragments or fragFrames use the configured defaults.
func (sys *System) LoadStream(path string, fragments, fragFrames int) (*Stream, error) {
	const op = "LoadStream"

	if err := sys.check(op); err != nil {
		return nil, err
	}
	if fragments <= 0 {
		fragments = sys.cfg.Fragments
	}
	if fragFrames <= 0 {
		fragFrames = sys.cfg.FragmentFrames
	}

	feeder, err := sys.openFeeder(op, path)
	if err != nil {
		return nil, err
	}

	ff := feeder.Format()
	s, err := sys.NewStream(fragments, fragFrames, ff.Frequency, ff.Depth, ff.Conf)
	if err != nil {
		feeder.Close()
		return nil, err
	}

	if err := s.SetFeeder(feeder); err != nil {
		feeder.Close()
		return nil, err
	}

	sys.log.WithFields(logrus.Fields{
		"function": op,
		"path":     path,
	}).Debug("stream loaded")

	return s, nil
}

// LoadSample decodes all of path into an owned SampleData.
func (sys *System) LoadSample(path string) (*SampleData, error) {
	const op = "LoadSample"

	feeder, err := sys.openFeeder(op, path)
	if err != nil {
		return nil, err
	}
	defer feeder.Close()

	data, err := ReadAll(feeder, sys.cfg.FragmentFrames)
	if err != nil {
		return nil, generic(op, fmt.Errorf("decoding %s: %w", path, err))
	}

	sys.log.WithFields(logrus.Fields{
		"function": op,
		"path":     path,
		"frames":   data.Frames(),
	}).Debug("sample loaded")

	return data, nil
}
