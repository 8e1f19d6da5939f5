// Package local implements in-process classification against a bundled model
// artifact that is provisioned into durable storage on first use.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"scamwatch/internal/classify"
)

type provisionState int

const (
	stateUnprovisioned provisionState = iota
	stateProvisioning
	stateReady
)

// Engine performs the actual inference once the model artifact is in place.
type Engine interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Close() error
}

// Config drives artifact provisioning and engine construction.
type Config struct {
	// BundlePath is the read-only model artifact shipped with the binary.
	BundlePath string
	// DataDir is the durable per-app storage the artifact is copied into.
	DataDir string
	// Timeout bounds a single inference call.
	Timeout time.Duration
	// NewEngine builds the inference engine for a provisioned model path.
	// Left nil, the llama-server HTTP engine is used.
	NewEngine func(modelPath string) (Engine, error)
	// EngineEndpoint is the loopback completion endpoint of the default engine.
	EngineEndpoint string
}

// Backend provisions the bundled model lazily and runs inference in-process.
type Backend struct {
	cfg Config

	mu        sync.Mutex
	state     provisionState
	modelPath string

	engineOnce sync.Once
	engine     Engine
	engineErr  error
}

// New constructs the local backend. Nothing is provisioned until the first
// Available or Analyze call.
func New(cfg Config) *Backend {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.NewEngine == nil {
		endpoint := cfg.EngineEndpoint
		cfg.NewEngine = func(modelPath string) (Engine, error) {
			return newLlamaEngine(endpoint, modelPath, cfg.Timeout)
		}
	}
	return &Backend{cfg: cfg}
}

// Name identifies this backend in logs.
func (b *Backend) Name() string {
	return "local"
}

// Available reports whether the model artifact can be provisioned. The copy
// itself happens here on first call so later Analyze calls find it ready.
func (b *Backend) Available() bool {
	_, err := b.provision()
	return err == nil
}

// Analyze runs one classification. It returns nil on any failure, including
// provisioning problems, engine construction errors, and inference panics.
func (b *Backend) Analyze(ctx context.Context, req classify.Request) (result *classify.Result) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logrus.WithField("panic", recovered).Error("local inference panicked")
			result = nil
		}
	}()

	modelPath, err := b.provision()
	if err != nil {
		logrus.WithError(err).Warn("local model unavailable")
		return nil
	}

	engine, err := b.engineFor(modelPath)
	if err != nil {
		logrus.WithError(err).Warn("local inference engine unavailable")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	response, err := engine.Complete(ctx, classify.BuildPrompt(req))
	if err != nil {
		logrus.WithError(err).Warn("local inference failed")
		return nil
	}

	mapped, err := classify.DecodeResult(response, req)
	if err != nil {
		logrus.WithError(err).Warn("local response unusable")
		return nil
	}
	return mapped
}

// Close releases the engine if one was built.
func (b *Backend) Close() error {
	if b.engine != nil {
		return b.engine.Close()
	}
	return nil
}

// provision moves the bundled artifact into durable storage exactly once.
// The copy lands under a temp name and is renamed into place, so a partial
// copy is never mistaken for a provisioned model.
func (b *Backend) provision() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == stateReady {
		return b.modelPath, nil
	}
	b.state = stateProvisioning

	target := filepath.Join(b.cfg.DataDir, filepath.Base(b.cfg.BundlePath))
	if info, err := os.Stat(target); err == nil && info.Size() > 0 {
		b.state = stateReady
		b.modelPath = target
		return target, nil
	}

	if err := copyAtomic(b.cfg.BundlePath, target); err != nil {
		b.state = stateUnprovisioned
		return "", fmt.Errorf("provision model: %w", err)
	}

	b.state = stateReady
	b.modelPath = target
	logrus.WithField("path", target).Info("local model provisioned")
	return target, nil
}

// engineFor memoizes engine construction. A failed construction is not
// retried within the same process run.
func (b *Backend) engineFor(modelPath string) (Engine, error) {
	b.engineOnce.Do(func() {
		b.engine, b.engineErr = b.cfg.NewEngine(modelPath)
	})
	if b.engineErr != nil {
		return nil, b.engineErr
	}
	if b.engine == nil {
		return nil, errors.New("engine construction returned nil")
	}
	return b.engine, nil
}

func copyAtomic(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open bundle: %w", err)
	}
	defer source.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp copy: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, source); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("copy model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp copy: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("finalize copy: %w", err)
	}
	return nil
}
