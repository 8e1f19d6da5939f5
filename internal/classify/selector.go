package classify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Backend is one interchangeable implementation of the classification
// capability. Available must stay cheap and side-effect-light. Analyze
// returns nil on any failure; it never panics outward.
type Backend interface {
	Name() string
	Available() bool
	Analyze(ctx context.Context, req Request) *Result
}

// Select binds exactly one backend for the process lifetime. Local inference
// wins when the runtime is judged eligible for it, otherwise the remote
// backend is used. There is no per-request fallback between the two.
func Select(local, remote Backend, localEligible bool) Backend {
	if localEligible && local != nil && local.Available() {
		logrus.WithField("backend", local.Name()).Info("classifier backend selected")
		return local
	}
	if remote == nil {
		logrus.Warn("no classifier backend available")
		return nil
	}
	logrus.WithField("backend", remote.Name()).Info("classifier backend selected")
	return remote
}
