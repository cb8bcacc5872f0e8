// Package proxy rotates user agents and upstream proxies for outgoing fetches.
package proxy

import (
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
}

// Manager handles the rotation of upstream proxies and user agents for outgoing fetches.
type Manager struct {
	proxies    []*url.URL
	userAgents []string
	mu         sync.Mutex
	proxyIndex int
	rnd        *rand.Rand
}

// NewManager builds a Manager. An empty userAgent selects the built-in
// rotation; proxies may be empty, in which case requests go direct.
func NewManager(userAgent string, proxies []string) (*Manager, error) {
	m := &Manager{
		userAgents: defaultUserAgents,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if userAgent != "" {
		m.userAgents = []string{userAgent}
	}
	for _, p := range proxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		u, err := url.Parse(p)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy %q", p)
		}
		m.proxies = append(m.proxies, u)
	}
	return m, nil
}

// GetProxy returns the next proxy URL, rotating sequentially, or nil when
// no proxies are configured.
func (m *Manager) GetProxy() *url.URL {
	if len(m.proxies) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	proxy := m.proxies[m.proxyIndex]
	m.proxyIndex = (m.proxyIndex + 1) % len(m.proxies)
	return proxy
}

// Proxy satisfies http.Transport.Proxy.
func (m *Manager) Proxy(_ *http.Request) (*url.URL, error) {
	return m.GetProxy(), nil
}

// GetUserAgent returns a random user agent string.
func (m *Manager) GetUserAgent() string {
	if len(m.userAgents) == 1 {
		return m.userAgents[0]
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userAgents[m.rnd.Intn(len(m.userAgents))]
}
