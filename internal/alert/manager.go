package alert

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"scamwatch/internal/notify"
)

// SlotState is the lifecycle state of the single surface slot.
type SlotState int

const (
	SlotEmpty SlotState = iota
	SlotShowing
	SlotDismissing
)

// DismissCause records why a slot was released.
type DismissCause string

const (
	CauseUser      DismissCause = "user"
	CauseExpiry    DismissCause = "expiry"
	CausePreempted DismissCause = "preempted"
	CauseOpenApp   DismissCause = "open_app"
	CauseShutdown  DismissCause = "shutdown"
)

// Config tunes the manager.
type Config struct {
	// Expiry is the auto-dismiss duration armed on attach.
	Expiry time.Duration
	// DeepLink is the fallback host-app link used on notifications when the
	// view carries none.
	DeepLink string
}

type slot struct {
	view     View
	gen      uint64
	timer    *time.Timer
	expanded bool
}

// Manager owns the surface slot. A single control goroutine applies all
// slot mutations; public methods marshal onto it and never touch the slot
// directly.
type Manager struct {
	surface  Surface
	notifier notify.Notifier
	cfg      Config

	cmds      chan func()
	closed    chan struct{}
	closeOnce sync.Once
	done      chan struct{}

	// control-goroutine state
	state SlotState
	slot  *slot
	gen   uint64
}

// NewManager starts the control goroutine and emits the service status
// notification.
func NewManager(surface Surface, notifier notify.Notifier, cfg Config) *Manager {
	if cfg.Expiry <= 0 {
		cfg.Expiry = 15 * time.Second
	}
	if surface == nil {
		surface = NopSurface{}
	}
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	m := &Manager{
		surface:  surface,
		notifier: notifier,
		cfg:      cfg,
		cmds:     make(chan func(), 64),
		closed:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go m.loop()
	go func() {
		if err := notifier.Status(context.Background(), "scam monitoring active"); err != nil {
			logrus.WithError(err).Debug("status notification failed")
		}
	}()
	return m
}

func (m *Manager) loop() {
	defer close(m.done)
	for {
		select {
		case cmd := <-m.cmds:
			cmd()
		case <-m.closed:
			// drain queued commands so detaches already enqueued still run
			for {
				select {
				case cmd := <-m.cmds:
					cmd()
				default:
					m.release(CauseShutdown)
					return
				}
			}
		}
	}
}

func (m *Manager) enqueue(cmd func()) {
	select {
	case <-m.closed:
	case m.cmds <- cmd:
	}
}

// Present shows a new alert. A currently showing alert is pre-empted: its
// timer is cancelled and it detaches before the new view attaches. The
// companion notification fires once per alert regardless of surface fate.
func (m *Manager) Present(view View) {
	link := view.DeepLink
	if link == "" {
		link = m.cfg.DeepLink
	}
	go func() {
		err := m.notifier.Alert(context.Background(), notify.Message{
			Title:      view.Header(),
			Body:       view.Warning,
			Confidence: view.Confidence,
			SourceApp:  view.SourceApp,
			DeepLink:   link,
		})
		if err != nil {
			logrus.WithError(err).Warn("companion notification failed")
		}
	}()

	m.enqueue(func() {
		if m.slot != nil {
			m.release(CausePreempted)
		}
		if err := m.surface.Attach(view); err != nil {
			logrus.WithError(err).WithField("event_id", view.EventID).Warn("surface attach rejected")
			return
		}
		m.gen++
		gen := m.gen
		m.slot = &slot{
			view:  view,
			gen:   gen,
			timer: time.AfterFunc(m.cfg.Expiry, func() { m.enqueue(func() { m.expire(gen) }) }),
		}
		m.state = SlotShowing
	})
}

// ExpandDetails reveals the tag breakdown for the showing alert and re-arms
// its expiry timer so it is not dismissed mid-read.
func (m *Manager) ExpandDetails(eventID string) {
	m.enqueue(func() {
		if m.slot == nil || m.slot.view.EventID != eventID || m.state != SlotShowing {
			return
		}
		m.slot.expanded = true
		m.slot.view.Action = ActionOpenApp
		m.slot.timer.Stop()
		// new generation so an already-fired old timer cannot release the
		// re-armed slot
		m.gen++
		gen := m.gen
		m.slot.gen = gen
		m.slot.timer = time.AfterFunc(m.cfg.Expiry, func() { m.enqueue(func() { m.expire(gen) }) })
		m.surface.Update(m.slot.view)
	})
}

// Dismiss handles a user dismiss of the showing alert.
func (m *Manager) Dismiss(eventID string) {
	m.enqueue(func() {
		if m.slot == nil || m.slot.view.EventID != eventID {
			return
		}
		m.release(CauseUser)
	})
}

// OpenApp handles the open-app navigation trigger; the slot is released and
// the UI shell performs the actual navigation via the deep link.
func (m *Manager) OpenApp(eventID string) {
	m.enqueue(func() {
		if m.slot == nil || m.slot.view.EventID != eventID {
			return
		}
		m.release(CauseOpenApp)
	})
}

// expire handles an auto-expiry timer firing. Stale fires for a slot that
// was already replaced or released are no-ops: the generation must match.
func (m *Manager) expire(gen uint64) {
	if m.slot == nil || m.slot.gen != gen {
		return
	}
	m.release(CauseExpiry)
}

// release tears the current slot down: cancel the pending timer, collapse,
// detach, and return to empty. Runs only on the control goroutine.
func (m *Manager) release(cause DismissCause) {
	if m.slot == nil {
		return
	}
	m.state = SlotDismissing
	m.slot.timer.Stop()
	m.surface.Collapse(m.slot.view.EventID)
	m.surface.Detach(m.slot.view.EventID)
	logrus.WithFields(logrus.Fields{
		"event_id": m.slot.view.EventID,
		"cause":    cause,
	}).Debug("alert slot released")
	m.slot = nil
	m.state = SlotEmpty
}

// State reports the current slot state, synchronized with the control
// goroutine.
func (m *Manager) State() SlotState {
	result := make(chan SlotState, 1)
	m.enqueue(func() { result <- m.state })
	select {
	case state := <-result:
		return state
	case <-m.done:
		return SlotEmpty
	}
}

// Showing returns the event id of the showing alert, or "" when empty.
func (m *Manager) Showing() string {
	result := make(chan string, 1)
	m.enqueue(func() {
		if m.slot == nil {
			result <- ""
			return
		}
		result <- m.slot.view.EventID
	})
	select {
	case id := <-result:
		return id
	case <-m.done:
		return ""
	}
}

// Close stops the control goroutine after detaching any live slot.
func (m *Manager) Close() {
	m.closeOnce.Do(func() { close(m.closed) })
	<-m.done
}
