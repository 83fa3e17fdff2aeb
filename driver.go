package selenide

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/tebeka/selenium"
)

// Driver owns a WebDriver session and hands out lazily resolved elements
// bound to it.
type Driver struct {
	wd     selenium.WebDriver
	cfg    Config
	client *http.Client

	now   func() time.Time
	sleep func(time.Duration)

	capsOnce sync.Once
	caps     selenium.Capabilities
	capsErr  error

	mu    sync.Mutex
	shots int
}

// Start opens a new session on cfg.Remote.
func Start(cfg Config) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	wd, err := selenium.NewRemote(cfg.Capabilities(), cfg.Remote)
	if err != nil {
		return nil, fmt.Errorf("start %s session on %s: %w", cfg.Browser, cfg.Remote, err)
	}
	glog.Infof("started %s session %s on %s", cfg.Browser, wd.SessionID(), cfg.Remote)
	d := NewDriver(wd, cfg)
	if cfg.IsMobile() {
		return d, nil
	}
	if cfg.PageLoadTimeout > 0 {
		if err := wd.SetPageLoadTimeout(cfg.PageLoadTimeout); err != nil {
			glog.Warningf("set page load timeout: %v", err)
		}
	}
	if w, h, ok := cfg.windowSize(); ok {
		if err := wd.ResizeWindow("", w, h); err != nil {
			glog.Warningf("resize window to %s: %v", cfg.BrowserSize, err)
		}
	}
	return d, nil
}

// NewDriver wraps an existing session. cfg.Remote must point at the server
// hosting the session for commands the client does not expose, such as W3C
// actions.
func NewDriver(wd selenium.WebDriver, cfg Config) *Driver {
	return &Driver{
		wd:     wd,
		cfg:    cfg,
		client: &http.Client{Timeout: time.Minute},
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// Config returns the driver configuration.
func (d *Driver) Config() Config { return d.cfg }

// WebDriver returns the underlying session.
func (d *Driver) WebDriver() selenium.WebDriver { return d.wd }

// Capabilities returns the capabilities the server reported for the
// session. They are fetched once.
func (d *Driver) Capabilities() (selenium.Capabilities, error) {
	d.capsOnce.Do(func() {
		d.caps, d.capsErr = d.wd.Capabilities()
	})
	return d.caps, d.capsErr
}

// IsMobile reports whether the session drives a mobile app through Appium.
func (d *Driver) IsMobile() bool {
	if d.cfg.IsMobile() {
		return true
	}
	caps, err := d.Capabilities()
	if err != nil {
		return false
	}
	platform, _ := caps["platformName"].(string)
	switch strings.ToLower(platform) {
	case "android", "ios":
		return true
	}
	return false
}

func normalizeURL(n string, base string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL %s with error %s", base, err)
	}
	nURL, err := baseURL.Parse(n)
	if err != nil {
		return "", fmt.Errorf("failed to parse new URL %s with error %s", n, err)
	}
	return nURL.String(), nil
}

// Open navigates to rawURL, resolved against Config.BaseURL when relative,
// and binds each of pages with Page.
func (d *Driver) Open(rawURL string, pages ...interface{}) error {
	target := rawURL
	if d.cfg.BaseURL != "" {
		var err error
		if target, err = normalizeURL(rawURL, d.cfg.BaseURL); err != nil {
			return err
		}
	}
	glog.V(1).Infof("open %s", target)
	if err := d.wd.Get(target); err != nil {
		return fmt.Errorf("open %s: %w", target, err)
	}
	for _, p := range pages {
		if err := d.Page(p); err != nil {
			return err
		}
	}
	return nil
}

// Find returns the first element matching the CSS selector.
func (d *Driver) Find(selector string) *Element {
	return d.FindBy(ByCSS(selector))
}

// FindBy returns the first element matching by.
func (d *Driver) FindBy(by By) *Element {
	return &Element{
		d:    d,
		desc: by.String(),
		locate: func() (selenium.WebElement, error) {
			return d.findOne(nil, by)
		},
	}
}

// FindAll returns the elements matching the CSS selector.
func (d *Driver) FindAll(selector string) *Collection {
	return d.FindAllBy(ByCSS(selector))
}

// FindAllBy returns the elements matching by.
func (d *Driver) FindAllBy(by By) *Collection {
	return &Collection{
		d:    d,
		desc: by.String(),
		locate: func() ([]selenium.WebElement, error) {
			return d.findAll(nil, by)
		},
	}
}

// locator is implemented by raw elements that know how they were found.
type locator interface {
	Locator() By
}

// Wrap turns a raw element into an Element. Elements obtained from
// GetElement or page objects keep their locator and are looked up again on
// every use; other elements are used as they are, and described by a
// snapshot taken the first time a message needs one.
func (d *Driver) Wrap(el selenium.WebElement) *Element {
	if l, ok := el.(locator); ok {
		return d.FindBy(l.Locator())
	}
	return &Element{
		d:        d,
		snapshot: sync.OnceValue(func() string { return describe(el) }),
		locate: func() (selenium.WebElement, error) {
			return el, nil
		},
	}
}

// GetElement waits until an element matching by exists and returns it as a
// raw WebElement that remembers by.
func (d *Driver) GetElement(by By) (selenium.WebElement, error) {
	if err := d.FindBy(by).Should(Exist); err != nil {
		return nil, err
	}
	return &lazyElement{d: d, by: by}, nil
}

// Title returns the current page title.
func (d *Driver) Title() (string, error) { return d.wd.Title() }

// CurrentURL returns the current page URL.
func (d *Driver) CurrentURL() (string, error) { return d.wd.CurrentURL() }

// Refresh reloads the current page.
func (d *Driver) Refresh() error { return d.wd.Refresh() }

// Back moves backward in history.
func (d *Driver) Back() error { return d.wd.Back() }

// ExecuteScript runs script in the page. Elements among args are resolved
// before the call.
func (d *Driver) ExecuteScript(script string, args ...interface{}) (interface{}, error) {
	resolved := make([]interface{}, len(args))
	for i, a := range args {
		if e, ok := a.(*Element); ok {
			el, err := e.WebElement()
			if err != nil {
				return nil, err
			}
			a = el
		}
		resolved[i] = a
	}
	return d.wd.ExecuteScript(script, resolved)
}

// Quit ends the session.
func (d *Driver) Quit() error {
	glog.V(1).Infof("quit session %s", d.wd.SessionID())
	return d.wd.Quit()
}
