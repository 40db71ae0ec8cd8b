package httpclient

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// loggingTransport logs every request the client makes.
type loggingTransport struct {
	next http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	latency := time.Since(start)

	if err != nil {
		log.Warn().
			Err(err).
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Dur("latency", latency).
			Msg("backend request failed")
		return nil, err
	}

	logEvent := log.Debug()
	if resp.StatusCode >= 400 {
		logEvent = log.Warn()
	}

	logEvent.
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Dur("latency", latency).
		Msg("backend request")

	return resp, nil
}
