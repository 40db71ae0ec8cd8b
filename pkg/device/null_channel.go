package device

import "context"

// NullChannel is a no-op push channel used when push updates are disabled.
// The panel still works; it only refreshes after its own toggles.
type NullChannel struct{}

// NewNullChannel creates a new NullChannel.
func NewNullChannel() *NullChannel {
	return &NullChannel{}
}

func (c *NullChannel) Connect(ctx context.Context) error {
	return nil
}

func (c *NullChannel) Disconnect() error {
	return nil
}

// OnUpdate discards fn; no notification ever arrives.
func (c *NullChannel) OnUpdate(fn func()) {}

func (c *NullChannel) EmitUpdate(name string, status bool) {}
