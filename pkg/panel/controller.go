// Package panel keeps the device list shown to the user in sync with the
// backend: fetch on activation, reconcile after every toggle, and re-fetch
// whenever the push channel reports a change.
package panel

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/switchboard/pkg/device"
)

// ErrActive is returned by Activate on a controller that is already running.
var ErrActive = errors.New("panel already active")

// InitialStatus is the status message before any toggle has completed.
const InitialStatus = "Loading..."

// Phase is the controller's coarse state.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseToggling
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseToggling:
		return "toggling"
	default:
		return "unknown"
	}
}

// State is a snapshot of what the presentation layer renders.
type State struct {
	Phase         Phase
	Devices       []device.Device
	StatusMessage string
	FetchErr      error // Last fetch failure; nil after a successful fetch
	InFlight      []int // Device IDs with a toggle in flight
}

// message kinds processed by the loop
type (
	fetchDone struct {
		devices []device.Device
		err     error
	}
	toggleDone struct {
		dev     device.Device
		desired bool
		outcome device.ToggleOutcome
	}
	toggleRequest struct{ dev device.Device }
	refreshRequest struct{ reason string }
	connectDone    struct{ err error }
)

// Controller orchestrates fetch, toggle, and refresh-on-update. All state is
// mutated on a single loop goroutine; network calls run in the background and
// post their results back to the loop.
type Controller struct {
	client  device.Client
	channel device.Channel

	mu       sync.RWMutex
	state    State
	inFlight map[int]bool
	fetched  bool

	runMu     sync.Mutex
	inbox     chan any
	stop      chan struct{}
	wg        sync.WaitGroup
	connectWG sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc

	subscribers   []chan State
	subscribersMu sync.Mutex
}

// New creates a Controller. Pass device.NewNullChannel() to run without push.
func New(client device.Client, channel device.Channel) *Controller {
	if channel == nil {
		channel = device.NewNullChannel()
	}
	return &Controller{
		client:   client,
		channel:  channel,
		inFlight: make(map[int]bool),
		state: State{
			Phase:         PhaseLoading,
			Devices:       []device.Device{},
			StatusMessage: InitialStatus,
		},
	}
}

// Activate starts a session: it starts the initial fetch, registers the
// refresh handler and connects the push channel in the background. A push
// connection failure is logged and the session continues without live
// updates.
func (c *Controller) Activate(ctx context.Context) error {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	if c.stop != nil {
		return ErrActive
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	c.inbox = make(chan any, 16)
	c.stop = make(chan struct{})

	c.mu.Lock()
	c.state.Phase = PhaseLoading
	c.fetched = false
	c.inFlight = make(map[int]bool)
	c.state.InFlight = nil
	c.mu.Unlock()

	inbox, stop := c.inbox, c.stop

	c.wg.Add(1)
	go c.loop(inbox, stop)

	post(inbox, stop, refreshRequest{reason: "activate"})

	c.channel.OnUpdate(func() {
		post(inbox, stop, refreshRequest{reason: "push"})
	})

	sessionCtx := c.ctx
	c.connectWG.Add(1)
	go func() {
		defer c.connectWG.Done()
		post(inbox, stop, connectDone{err: c.channel.Connect(sessionCtx)})
	}()
	return nil
}

// Deactivate ends the session: a pending dial is abandoned, the push channel
// is closed and the loop stops. Results still in flight are discarded.
func (c *Controller) Deactivate() error {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	if c.stop == nil {
		return nil
	}

	c.channel.OnUpdate(nil)
	close(c.stop)
	c.cancel()

	// Disconnect must not race a Connect that is still dialing
	c.connectWG.Wait()
	err := c.channel.Disconnect()

	c.wg.Wait()
	c.stop = nil
	c.inbox = nil

	return err
}

// RequestToggle flips d's status on the backend. The displayed status only
// changes once the reconciliation fetch that follows completes.
func (c *Controller) RequestToggle(d device.Device) {
	c.runMu.Lock()
	inbox, stop := c.inbox, c.stop
	c.runMu.Unlock()

	if stop == nil {
		log.Warn().Int("id", d.ID).Msg("Toggle requested on inactive panel")
		return
	}
	post(inbox, stop, toggleRequest{dev: d})
}

// Refresh starts a reconciliation fetch.
func (c *Controller) Refresh() {
	c.runMu.Lock()
	inbox, stop := c.inbox, c.stop
	c.runMu.Unlock()

	if stop == nil {
		return
	}
	post(inbox, stop, refreshRequest{reason: "manual"})
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// Find looks up a device in the current list by ID.
func (c *Controller) Find(id int) (device.Device, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, d := range c.state.Devices {
		if d.ID == id {
			return d, true
		}
	}
	return device.Device{}, false
}

// Subscribe returns a channel receiving a snapshot after every state change.
// Slow subscribers miss intermediate snapshots.
func (c *Controller) Subscribe() <-chan State {
	ch := make(chan State, 8)
	c.subscribersMu.Lock()
	c.subscribers = append(c.subscribers, ch)
	c.subscribersMu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscription.
func (c *Controller) Unsubscribe(sub <-chan State) {
	c.subscribersMu.Lock()
	defer c.subscribersMu.Unlock()

	for i, ch := range c.subscribers {
		if ch == sub {
			c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

// post delivers msg to the loop unless the session has stopped.
func post(inbox chan any, stop chan struct{}, msg any) {
	select {
	case inbox <- msg:
	case <-stop:
	}
}

// loop is the single owner of controller state.
func (c *Controller) loop(inbox chan any, stop chan struct{}) {
	defer c.wg.Done()

	for {
		select {
		case <-stop:
			return
		case msg := <-inbox:
			c.handle(inbox, stop, msg)
		}
	}
}

func (c *Controller) handle(inbox chan any, stop chan struct{}, msg any) {
	switch m := msg.(type) {
	case refreshRequest:
		log.Debug().Str("reason", m.reason).Msg("Fetching devices")
		c.startFetch(inbox, stop)

	case connectDone:
		if m.err != nil {
			log.Warn().Err(m.err).Msg("Push channel unavailable, continuing without live updates")
		}

	case fetchDone:
		c.mu.Lock()
		c.state.Devices = m.devices
		c.state.FetchErr = m.err
		c.fetched = true
		c.updatePhaseLocked()
		c.mu.Unlock()

		if m.err != nil {
			log.Warn().Err(m.err).Msg("Device fetch failed")
		} else {
			log.Debug().Int("count", len(m.devices)).Msg("Devices fetched")
		}
		c.publish()

	case toggleRequest:
		desired := !m.dev.Status

		c.mu.Lock()
		c.inFlight[m.dev.ID] = true
		c.updatePhaseLocked()
		c.mu.Unlock()
		c.publish()

		log.Info().Int("id", m.dev.ID).Str("device", m.dev.Name).Bool("desired", desired).Msg("Toggling device")
		c.startToggle(inbox, stop, m.dev, desired)

	case toggleDone:
		c.mu.Lock()
		c.state.StatusMessage = m.outcome.String()
		delete(c.inFlight, m.dev.ID)
		c.updatePhaseLocked()
		c.mu.Unlock()
		c.publish()

		c.channel.EmitUpdate(m.dev.Name, m.desired)
		c.startFetch(inbox, stop)
	}
}

func (c *Controller) startFetch(inbox chan any, stop chan struct{}) {
	ctx := c.ctx
	go func() {
		devices, err := c.client.FetchAll(ctx)
		if devices == nil {
			devices = []device.Device{}
		}
		post(inbox, stop, fetchDone{devices: devices, err: err})
	}()
}

func (c *Controller) startToggle(inbox chan any, stop chan struct{}, d device.Device, desired bool) {
	ctx := c.ctx
	go func() {
		outcome, ok := <-c.client.Toggle(ctx, d.ID, d.Name, desired)
		if !ok {
			outcome = device.ToggleOutcome{ID: d.ID, Err: errors.New("no outcome")}
		}
		post(inbox, stop, toggleDone{dev: d, desired: desired, outcome: outcome})
	}()
}

// updatePhaseLocked derives the phase. Loading lasts until the first fetch
// lands; a pending toggle does not block the rest of the list.
func (c *Controller) updatePhaseLocked() {
	ids := make([]int, 0, len(c.inFlight))
	for id := range c.inFlight {
		ids = append(ids, id)
	}
	c.state.InFlight = ids

	switch {
	case len(c.inFlight) > 0:
		c.state.Phase = PhaseToggling
	case !c.fetched:
		c.state.Phase = PhaseLoading
	default:
		c.state.Phase = PhaseReady
	}
}

func (c *Controller) snapshotLocked() State {
	s := c.state
	s.Devices = append([]device.Device(nil), c.state.Devices...)
	s.InFlight = append([]int(nil), c.state.InFlight...)
	if s.Devices == nil {
		s.Devices = []device.Device{}
	}
	return s
}

// publish sends the current state to all subscribers without blocking.
func (c *Controller) publish() {
	s := c.State()

	c.subscribersMu.Lock()
	defer c.subscribersMu.Unlock()

	for _, ch := range c.subscribers {
		select {
		case ch <- s:
		default:
		}
	}
}
