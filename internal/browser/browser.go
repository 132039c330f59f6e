// Package browser starts or connects to Chrome and opens application pages in
// stealth tabs.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"go.uber.org/zap"

	"github.com/spigell/applyfill/internal/dom/rodom"
	"github.com/spigell/applyfill/internal/secrets"
)

const defaultNavigateTimeout = 30 * time.Second

// RemoteURLEnv may hold the DevTools address when neither RemoteURL nor
// RemoteURLFile is set.
const RemoteURLEnv = "APPLYFILL_DEVTOOLS_URL"

// Config configures the browser.
type Config struct {
	// RemoteURL is the DevTools websocket address of a running Chrome. Empty
	// launches a local one.
	RemoteURL string `mapstructure:"remote-url"`
	// RemoteURLFile holds the DevTools address. Hosted browsers embed an
	// access token in it. It takes precedence over RemoteURL.
	RemoteURLFile string `mapstructure:"remote-url-file"`
	// Headful shows the browser window. Needed for the user to finish the
	// application by hand.
	Headful bool `mapstructure:"headful"`
	// Bin is the Chrome binary. Empty lets the launcher find or download one.
	Bin             string        `mapstructure:"bin"`
	NoStealth       bool          `mapstructure:"no-stealth"`
	NavigateTimeout time.Duration `mapstructure:"navigate-timeout"`
}

// Manager owns one browser connection.
type Manager struct {
	cfg    Config
	logger *zap.Logger

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
}

func NewManager(cfg Config, logger *zap.Logger) *Manager {
	if cfg.NavigateTimeout <= 0 {
		cfg.NavigateTimeout = defaultNavigateTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{cfg: cfg, logger: logger}
}

// Start launches Chrome or connects to the remote one. Calling it again
// returns the running browser.
func (m *Manager) Start(ctx context.Context) (*rod.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil {
		return m.browser, nil
	}

	wsURL, err := m.controlURL()
	if err != nil {
		return nil, err
	}

	b := rod.New().Context(ctx).ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		m.cleanup()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	m.browser = b
	return b, nil
}

func (m *Manager) controlURL() (string, error) {
	if m.cfg.RemoteURLFile != "" || m.cfg.RemoteURL != "" || os.Getenv(RemoteURLEnv) != "" {
		u, err := secrets.Load(secrets.Source{
			Name:  "devtools url",
			Value: m.cfg.RemoteURL,
			Env:   RemoteURLEnv,
			File:  m.cfg.RemoteURLFile,
		})
		if err != nil {
			return "", err
		}
		m.logger.Info("connecting to remote browser", zap.String("host", redact(u)))
		return u, nil
	}

	l := launcher.New().
		Headless(!m.cfg.Headful).
		Set("disable-blink-features", "AutomationControlled")
	if m.cfg.Bin != "" {
		l = l.Bin(m.cfg.Bin)
	}

	u, err := l.Launch()
	if err != nil {
		return "", fmt.Errorf("browser: launch: %w", err)
	}
	m.lnch = l
	m.logger.Info("launched local browser", zap.Bool("headful", m.cfg.Headful))
	return u, nil
}

// Close disconnects and stops a locally launched Chrome.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleanup()
}

func (m *Manager) cleanup() error {
	var err error
	if m.browser != nil {
		err = m.browser.Close()
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
	return err
}

// Tab is an open page.
type Tab struct {
	Page *rod.Page
	URL  string
}

// Open creates a tab, navigates to pageURL and waits for the load event. A
// load timeout is logged, not returned: forms are often usable before every
// resource arrives.
func (m *Manager) Open(ctx context.Context, pageURL string) (*Tab, error) {
	b, err := m.Start(ctx)
	if err != nil {
		return nil, err
	}

	var page *rod.Page
	if m.cfg.NoStealth {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	} else {
		page, err = stealth.Page(b)
	}
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, m.cfg.NavigateTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		m.logger.Warn("page load wait failed", zap.String("url", pageURL), zap.Error(err))
	}

	return &Tab{Page: page.Context(ctx), URL: pageURL}, nil
}

// Document returns the live DOM of the tab.
func (t *Tab) Document() *rodom.Document {
	return rodom.New(t.Page)
}

// WaitClosed blocks until the user closes the tab or ctx ends.
func (t *Tab) WaitClosed(ctx context.Context) error {
	wait := t.Page.Context(ctx).WaitEvent(&proto.TargetTargetDestroyed{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (t *Tab) Close() error {
	if t.Page == nil {
		return nil
	}
	err := t.Page.Close()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// redact keeps the scheme and host of a DevTools address.
func redact(u string) string {
	if i := strings.Index(u, "://"); i >= 0 {
		rest := u[i+3:]
		if j := strings.IndexAny(rest, "/?"); j >= 0 {
			rest = rest[:j]
		}
		return u[:i+3] + rest
	}
	return "[redacted]"
}
