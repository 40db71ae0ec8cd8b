package panel

import (
	"testing"

	"github.com/urmzd/switchboard/pkg/config"
	"github.com/urmzd/switchboard/pkg/device"
	"github.com/urmzd/switchboard/pkg/push"
)

func TestFromConfig(t *testing.T) {
	cfg := config.Config{
		BaseURL:     "http://127.0.0.1:5000",
		PushPath:    "/ws",
		PushEnabled: true,
		LogLevel:    "info",
	}
	c, err := FromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	ch, ok := c.channel.(*push.Channel)
	if !ok {
		t.Fatalf("expected push channel, got %T", c.channel)
	}
	if ch.URL() != "ws://127.0.0.1:5000/ws" {
		t.Errorf("unexpected socket url %s", ch.URL())
	}

	cfg.PushEnabled = false
	c, err = FromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.channel.(*device.NullChannel); !ok {
		t.Errorf("expected null channel, got %T", c.channel)
	}
}
