package panel

import (
	"github.com/rs/zerolog/log"
	"github.com/urmzd/switchboard/pkg/config"
	"github.com/urmzd/switchboard/pkg/device"
	"github.com/urmzd/switchboard/pkg/httpclient"
	"github.com/urmzd/switchboard/pkg/push"
)

// FromConfig builds a Controller wired to the HTTP client and, when enabled,
// the push channel described by cfg. The HTTP timeout also bounds the push
// handshake.
func FromConfig(cfg config.Config) (*Controller, error) {
	var opts []httpclient.Option
	if cfg.HTTPTimeout > 0 {
		opts = append(opts, httpclient.WithTimeout(cfg.HTTPTimeout))
	}
	client := httpclient.New(cfg.BaseURL, opts...)

	var channel device.Channel = device.NewNullChannel()
	if cfg.PushEnabled {
		ch, err := push.New(cfg.BaseURL, cfg.PushPath, push.WithHandshakeTimeout(cfg.HTTPTimeout))
		if err != nil {
			return nil, err
		}
		channel = ch
		log.Debug().Str("url", ch.URL()).Msg("Push channel configured")
	} else {
		log.Info().Msg("Push channel disabled, list refreshes only after toggles")
	}

	log.Info().Str("base", client.Base()).Dur("http_timeout", cfg.HTTPTimeout).Msg("Panel configured")
	return New(client, channel), nil
}
