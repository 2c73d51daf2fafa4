package probe

import (
	"context"
	"net/http"
	"time"
)

// Timeout bounds each probe. Two sequential sitemap probes in the worst
// case, so a full site audit never hangs more than ~15s on probes.
const Timeout = 5 * time.Second

// Prober issues bounded HEAD requests against well-known URLs.
type Prober struct {
	client *http.Client
}

func New() *Prober {
	return &Prober{client: &http.Client{Timeout: Timeout}}
}

// NewWithClient is used by tests to inject a client.
func NewWithClient(client *http.Client) *Prober {
	return &Prober{client: client}
}

// Reachable reports whether a HEAD request to url answers 200. Any network
// failure or non-200 status counts as unreachable; the caller reports an
// issue, not an error.
func (p *Prober) Reachable(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
