package panel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/urmzd/switchboard/pkg/device"
)

// fakeClient serves scripted fetch results; the last one repeats.
type fakeClient struct {
	mu      sync.Mutex
	results [][]device.Device
	errs    []error
	fetches int
	toggles []toggleCall
	outcome func(id int) device.ToggleOutcome
	release chan struct{} // when set, Toggle waits for it
}

type toggleCall struct {
	id      int
	name    string
	desired bool
}

func (f *fakeClient) FetchAll(ctx context.Context) ([]device.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.fetches
	f.fetches++
	if len(f.results) == 0 {
		return []device.Device{}, nil
	}
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	if i < len(f.errs) && f.errs[i] != nil {
		return []device.Device{}, f.errs[i]
	}
	return append([]device.Device(nil), f.results[i]...), nil
}

func (f *fakeClient) Toggle(ctx context.Context, id int, name string, desired bool) <-chan device.ToggleOutcome {
	f.mu.Lock()
	f.toggles = append(f.toggles, toggleCall{id: id, name: name, desired: desired})
	outcome := f.outcome
	release := f.release
	f.mu.Unlock()

	out := make(chan device.ToggleOutcome, 1)
	go func() {
		defer close(out)
		if release != nil {
			<-release
		}
		if outcome != nil {
			out <- outcome(id)
			return
		}
		out <- device.ToggleOutcome{ID: id, StatusCode: 200}
	}()
	return out
}

func (f *fakeClient) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func (f *fakeClient) toggleCalls() []toggleCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]toggleCall(nil), f.toggles...)
}

// fakeChannel records emits and lets tests fire the update handler.
type fakeChannel struct {
	mu          sync.Mutex
	handler     func()
	connects    int
	disconnects int
	emits       []toggleCall
	connectErr  error
	dialGate    chan struct{} // when set, Connect blocks until it closes or ctx ends
}

func (f *fakeChannel) Connect(ctx context.Context) error {
	if f.dialGate != nil {
		select {
		case <-f.dialGate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	return f.connectErr
}

func (f *fakeChannel) connectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects
}

func (f *fakeChannel) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects++
	return nil
}

func (f *fakeChannel) OnUpdate(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = fn
}

func (f *fakeChannel) EmitUpdate(name string, status bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emits = append(f.emits, toggleCall{name: name, desired: status})
}

func (f *fakeChannel) fire() {
	f.mu.Lock()
	fn := f.handler
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (f *fakeChannel) emitCalls() []toggleCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]toggleCall(nil), f.emits...)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// settle gives stray background work a chance to show up before counting.
func settle() {
	time.Sleep(50 * time.Millisecond)
}

func activate(t *testing.T, c *Controller) {
	t.Helper()
	if err := c.Activate(context.Background()); err != nil {
		t.Fatalf("activate: %v", err)
	}
	t.Cleanup(func() { _ = c.Deactivate() })
	waitFor(t, "initial fetch", func() bool { return c.State().Phase != PhaseLoading })
}

func TestNew_InitialState(t *testing.T) {
	c := New(&fakeClient{}, nil)
	s := c.State()
	if s.Phase != PhaseLoading {
		t.Errorf("expected loading, got %s", s.Phase)
	}
	if s.StatusMessage != InitialStatus {
		t.Errorf("expected %q, got %q", InitialStatus, s.StatusMessage)
	}
	if s.Devices == nil || len(s.Devices) != 0 {
		t.Errorf("expected empty device list, got %#v", s.Devices)
	}
}

func TestActivate_FetchesAndConnects(t *testing.T) {
	client := &fakeClient{results: [][]device.Device{{
		{ID: 1, Name: "Lamp"},
		{ID: 2, Name: "Fan", Status: true},
	}}}
	ch := &fakeChannel{}
	c := New(client, ch)

	activate(t, c)

	s := c.State()
	if s.Phase != PhaseReady {
		t.Errorf("expected ready, got %s", s.Phase)
	}
	if len(s.Devices) != 2 || s.Devices[0].ID != 1 || s.Devices[1].ID != 2 {
		t.Errorf("unexpected devices %+v", s.Devices)
	}
	waitFor(t, "push connect", func() bool { return ch.connectCount() == 1 })
	if ch.handler == nil {
		t.Error("expected update handler to be registered")
	}
}

func TestActivate_EmptyResultIsReady(t *testing.T) {
	client := &fakeClient{results: [][]device.Device{{}}}
	c := New(client, &fakeChannel{})

	activate(t, c)

	if s := c.State(); s.Phase != PhaseReady || len(s.Devices) != 0 || s.FetchErr != nil {
		t.Errorf("unexpected state %+v", s)
	}
}

func TestActivate_FetchFailureRecorded(t *testing.T) {
	client := &fakeClient{
		results: [][]device.Device{nil},
		errs:    []error{fmt.Errorf("%w: status 500", device.ErrUnsuccessfulResponse)},
	}
	c := New(client, &fakeChannel{})

	activate(t, c)

	s := c.State()
	if s.Phase != PhaseReady {
		t.Errorf("expected ready, got %s", s.Phase)
	}
	if len(s.Devices) != 0 {
		t.Errorf("expected no devices, got %d", len(s.Devices))
	}
	if !errors.Is(s.FetchErr, device.ErrUnsuccessfulResponse) {
		t.Errorf("expected ErrUnsuccessfulResponse, got %v", s.FetchErr)
	}
}

func TestActivate_ConnectFailureContinues(t *testing.T) {
	client := &fakeClient{results: [][]device.Device{{{ID: 1}}}}
	ch := &fakeChannel{connectErr: device.ErrTransport}
	c := New(client, ch)

	activate(t, c)

	if len(c.State().Devices) != 1 {
		t.Error("expected panel to load without push")
	}
}

func TestActivate_Twice(t *testing.T) {
	c := New(&fakeClient{results: [][]device.Device{{}}}, &fakeChannel{})
	activate(t, c)

	if err := c.Activate(context.Background()); !errors.Is(err, ErrActive) {
		t.Errorf("expected ErrActive, got %v", err)
	}
}

func TestRequestToggle_Scenario(t *testing.T) {
	client := &fakeClient{results: [][]device.Device{
		{{ID: 1, Name: "Lamp", Status: false}},
		{{ID: 1, Name: "Lamp", Status: true}},
	}}
	ch := &fakeChannel{}
	c := New(client, ch)
	activate(t, c)

	lamp, ok := c.Find(1)
	if !ok {
		t.Fatal("device 1 not found")
	}
	c.RequestToggle(lamp)

	waitFor(t, "reconciliation", func() bool {
		d, _ := c.Find(1)
		return d.Status
	})
	settle()

	s := c.State()
	if s.StatusMessage != "Device 1 updated: 200" {
		t.Errorf("unexpected status message %q", s.StatusMessage)
	}
	if s.Phase != PhaseReady {
		t.Errorf("expected ready, got %s", s.Phase)
	}
	if n := client.fetchCount(); n != 2 {
		t.Errorf("expected exactly 2 fetches, got %d", n)
	}

	calls := client.toggleCalls()
	if len(calls) != 1 || calls[0] != (toggleCall{id: 1, name: "Lamp", desired: true}) {
		t.Errorf("unexpected toggle calls %+v", calls)
	}
	emits := ch.emitCalls()
	if len(emits) != 1 || emits[0].name != "Lamp" || !emits[0].desired {
		t.Errorf("unexpected emits %+v", emits)
	}
}

func TestRequestToggle_FailureStillReconciles(t *testing.T) {
	client := &fakeClient{
		results: [][]device.Device{
			{{ID: 7, Name: "Lamp"}},
			{{ID: 7, Name: "Lamp"}, {ID: 8, Name: "New"}},
		},
		outcome: func(id int) device.ToggleOutcome {
			return device.ToggleOutcome{ID: id, Err: errors.New("timeout")}
		},
	}
	c := New(client, &fakeChannel{})
	activate(t, c)

	c.RequestToggle(device.Device{ID: 7, Name: "Lamp"})

	waitFor(t, "reconciliation", func() bool { return len(c.State().Devices) == 2 })
	settle()

	if s := c.State(); s.StatusMessage != "Failed: timeout" {
		t.Errorf("unexpected status message %q", s.StatusMessage)
	}
	if n := client.fetchCount(); n != 2 {
		t.Errorf("expected exactly 2 fetches, got %d", n)
	}
}

func TestRequestToggle_StatusUnchangedUntilReconciled(t *testing.T) {
	release := make(chan struct{})
	client := &fakeClient{
		results: [][]device.Device{
			{{ID: 1, Name: "Lamp"}, {ID: 2, Name: "Fan"}},
			{{ID: 1, Name: "Lamp", Status: true}, {ID: 2, Name: "Fan"}},
		},
		release: release,
	}
	c := New(client, &fakeChannel{})
	activate(t, c)

	c.RequestToggle(device.Device{ID: 1, Name: "Lamp"})
	waitFor(t, "toggling phase", func() bool { return c.State().Phase == PhaseToggling })

	s := c.State()
	if s.Devices[0].Status {
		t.Error("status changed before reconciliation")
	}
	if len(s.InFlight) != 1 || s.InFlight[0] != 1 {
		t.Errorf("expected device 1 in flight, got %v", s.InFlight)
	}

	// Other devices stay interactive while one toggle is pending
	c.Refresh()
	waitFor(t, "refresh during toggle", func() bool { return client.fetchCount() == 2 })

	close(release)
	waitFor(t, "ready", func() bool {
		s := c.State()
		return s.Phase == PhaseReady && s.Devices[0].Status
	})
}

func TestExternalUpdate_FetchesOnceWithoutEmit(t *testing.T) {
	client := &fakeClient{results: [][]device.Device{
		{{ID: 1, Name: "Lamp"}},
		{{ID: 1, Name: "Lamp", Status: true}},
	}}
	ch := &fakeChannel{}
	c := New(client, ch)
	activate(t, c)

	ch.fire()

	waitFor(t, "refresh", func() bool {
		d, _ := c.Find(1)
		return d.Status
	})
	settle()

	if n := client.fetchCount(); n != 2 {
		t.Errorf("expected exactly 2 fetches, got %d", n)
	}
	if emits := ch.emitCalls(); len(emits) != 0 {
		t.Errorf("expected no emits, got %+v", emits)
	}
	if s := c.State(); s.StatusMessage != InitialStatus {
		t.Errorf("status message changed on external update: %q", s.StatusMessage)
	}
}

func TestDeactivate_DisconnectsAndAllowsReactivation(t *testing.T) {
	client := &fakeClient{results: [][]device.Device{{{ID: 1}}}}
	ch := &fakeChannel{}
	c := New(client, ch)

	if err := c.Activate(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "initial fetch", func() bool { return c.State().Phase == PhaseReady })

	if err := c.Deactivate(); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if ch.disconnects != 1 {
		t.Errorf("expected 1 disconnect, got %d", ch.disconnects)
	}

	// Toggles on an inactive panel are ignored
	c.RequestToggle(device.Device{ID: 1})
	settle()
	if len(client.toggleCalls()) != 0 {
		t.Error("toggle issued on inactive panel")
	}

	if err := c.Activate(context.Background()); err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	defer func() { _ = c.Deactivate() }()
	waitFor(t, "second fetch", func() bool { return client.fetchCount() == 2 })
	waitFor(t, "second connect", func() bool { return ch.connectCount() == 2 })
}

func TestActivate_SlowConnectDoesNotDelayFetch(t *testing.T) {
	client := &fakeClient{results: [][]device.Device{{{ID: 1, Name: "Lamp"}}}}
	gate := make(chan struct{})
	ch := &fakeChannel{dialGate: gate}
	c := New(client, ch)

	start := time.Now()
	if err := c.Activate(context.Background()); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("activate blocked on the push dial for %s", elapsed)
	}
	defer func() { _ = c.Deactivate() }()

	waitFor(t, "initial fetch", func() bool { return c.State().Phase == PhaseReady })
	if ch.connectCount() != 0 {
		t.Fatal("connect finished before the gate opened")
	}

	// Callers are not held up by the pending dial
	done := make(chan struct{})
	go func() {
		c.Refresh()
		c.RequestToggle(device.Device{ID: 1, Name: "Lamp"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Refresh/RequestToggle blocked behind the push dial")
	}
	waitFor(t, "toggle", func() bool { return len(client.toggleCalls()) == 1 })

	close(gate)
	waitFor(t, "push connect", func() bool { return ch.connectCount() == 1 })
}

func TestDeactivate_AbandonsPendingDial(t *testing.T) {
	client := &fakeClient{results: [][]device.Device{{{ID: 1}}}}
	ch := &fakeChannel{dialGate: make(chan struct{})}
	c := New(client, ch)

	if err := c.Activate(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "initial fetch", func() bool { return c.State().Phase == PhaseReady })

	done := make(chan error, 1)
	go func() { done <- c.Deactivate() }()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("deactivate: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("deactivate waited for the dial to finish")
	}
	if ch.connectCount() != 0 {
		t.Error("dial completed after deactivate")
	}
}

func TestSubscribe_ReceivesSnapshots(t *testing.T) {
	client := &fakeClient{results: [][]device.Device{{{ID: 1, Name: "Lamp"}}}}
	c := New(client, &fakeChannel{})
	sub := c.Subscribe()

	activate(t, c)

	select {
	case s := <-sub:
		if len(s.Devices) != 1 {
			t.Errorf("unexpected snapshot %+v", s)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no snapshot published")
	}

	c.Unsubscribe(sub)
	for range sub {
		// drain until closed
	}
}
