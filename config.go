package selenide

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"
)

// Browsers understood by Config.Browser.
const (
	Chrome  = "chrome"
	Firefox = "firefox"
	Android = "android"
	IOS     = "ios"
)

// Drag and drop methods understood by Config.DragAndDrop.
const (
	DragAuto    = "auto"
	DragJS      = "js"
	DragActions = "actions"
)

// Config holds the settings of a Driver. The zero value is not usable; start
// from DefaultConfig or ConfigFromEnv.
type Config struct {
	// Browser is one of Chrome, Firefox, Android or IOS.
	Browser string `env:"SELENIDE_BROWSER" envDefault:"chrome"`
	// Remote is the WebDriver server URL, including the protocol.
	Remote string `env:"SELENIDE_REMOTE" envDefault:"http://127.0.0.1:4444/wd/hub"`
	// BaseURL is prepended to relative URLs passed to Open.
	BaseURL string `env:"SELENIDE_BASE_URL"`

	// Timeout bounds every assertion and every command waiting for its
	// element.
	Timeout time.Duration `env:"SELENIDE_TIMEOUT" envDefault:"4s"`
	// PollingInterval is the pause between two attempts.
	PollingInterval time.Duration `env:"SELENIDE_POLLING_INTERVAL" envDefault:"200ms"`
	PageLoadTimeout time.Duration `env:"SELENIDE_PAGE_LOAD_TIMEOUT" envDefault:"30s"`

	Headless       bool   `env:"SELENIDE_HEADLESS"`
	BrowserBinary  string `env:"SELENIDE_BROWSER_BINARY"`
	BrowserVersion string `env:"SELENIDE_BROWSER_VERSION"`
	// BrowserSize is the window size as "{width}x{height}", e.g. "1366x768".
	BrowserSize string `env:"SELENIDE_BROWSER_SIZE"`
	// ProxyAddr routes browser traffic through a proxy, e.g.
	// "socks5://127.0.0.1:1080" or "http://proxy:3128". Ignored when Proxy is
	// set.
	ProxyAddr string `env:"SELENIDE_PROXY"`
	Proxy     selenium.Proxy

	// ClickViaJS clicks through element.click() in the page instead of a
	// native click.
	ClickViaJS bool `env:"SELENIDE_CLICK_VIA_JS"`
	// DragAndDrop is one of DragAuto, DragJS or DragActions.
	DragAndDrop string `env:"SELENIDE_DRAG_AND_DROP" envDefault:"auto"`

	// Screenshots saves a screenshot into ReportsFolder on every failure.
	Screenshots    bool   `env:"SELENIDE_SCREENSHOTS"`
	SavePageSource bool   `env:"SELENIDE_SAVE_PAGE_SOURCE"`
	ReportsFolder  string `env:"SELENIDE_REPORTS_FOLDER" envDefault:"build/reports/tests"`

	// Appium settings, used when Browser is Android or IOS.
	App            string `env:"SELENIDE_APPIUM_APP"`
	DeviceName     string `env:"SELENIDE_APPIUM_DEVICE_NAME"`
	AutomationName string `env:"SELENIDE_APPIUM_AUTOMATION_NAME"`
}

// DefaultConfig returns the configuration used when nothing is set in the
// environment.
func DefaultConfig() Config {
	return Config{
		Browser:         Chrome,
		Remote:          "http://127.0.0.1:4444/wd/hub",
		Timeout:         4 * time.Second,
		PollingInterval: 200 * time.Millisecond,
		PageLoadTimeout: 30 * time.Second,
		DragAndDrop:     DragAuto,
		ReportsFolder:   "build/reports/tests",
	}
}

// ConfigFromEnv reads the configuration from SELENIDE_* environment
// variables and validates it.
func ConfigFromEnv() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

var browserSizeExpression = regexp.MustCompile(`^\d+x\d+$`)

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	switch c.Browser {
	case Chrome, Firefox, Android, IOS:
	default:
		return fmt.Errorf("unsupported browser %q", c.Browser)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.PollingInterval <= 0 {
		return fmt.Errorf("polling interval must be positive, got %v", c.PollingInterval)
	}
	switch c.DragAndDrop {
	case DragAuto, DragJS, DragActions:
	default:
		return fmt.Errorf("unsupported drag and drop method %q", c.DragAndDrop)
	}
	if c.BrowserSize != "" && !browserSizeExpression.MatchString(c.BrowserSize) {
		return fmt.Errorf("invalid browser size: expected 'WxH', got %q", c.BrowserSize)
	}
	if c.ProxyAddr != "" {
		if _, err := c.proxy(); err != nil {
			return err
		}
	}
	return nil
}

// IsMobile reports whether the configuration targets an Appium session.
func (c Config) IsMobile() bool {
	return c.Browser == Android || c.Browser == IOS
}

// windowSize parses BrowserSize.
func (c Config) windowSize() (width, height int, ok bool) {
	if !browserSizeExpression.MatchString(c.BrowserSize) {
		return 0, 0, false
	}
	parts := strings.SplitN(c.BrowserSize, "x", 2)
	width, _ = strconv.Atoi(parts[0])
	height, _ = strconv.Atoi(parts[1])
	return width, height, true
}

func (c Config) proxy() (selenium.Proxy, error) {
	if c.Proxy.Type != "" {
		return c.Proxy, nil
	}
	u, err := url.Parse(c.ProxyAddr)
	if err != nil {
		return selenium.Proxy{}, fmt.Errorf("invalid proxy address %q: %w", c.ProxyAddr, err)
	}
	if u.Host == "" {
		return selenium.Proxy{}, fmt.Errorf("invalid proxy address %q: missing host", c.ProxyAddr)
	}
	p := selenium.Proxy{Type: selenium.Manual}
	switch u.Scheme {
	case "socks5":
		p.SOCKS = u.Host
		p.SOCKSVersion = 5
		if u.User != nil {
			p.SOCKSUsername = u.User.Username()
			p.SOCKSPassword, _ = u.User.Password()
		}
	case "http", "":
		p.HTTP = u.Host
		p.SSL = u.Host
	default:
		return selenium.Proxy{}, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
	return p, nil
}

// Capabilities builds the capabilities requested when the session starts.
func (c Config) Capabilities() selenium.Capabilities {
	if c.IsMobile() {
		return c.appiumCapabilities()
	}
	caps := selenium.Capabilities{"browserName": c.Browser}
	if c.BrowserVersion != "" {
		caps["browserVersion"] = c.BrowserVersion
	}
	switch c.Browser {
	case Chrome:
		chrCaps := chrome.Capabilities{
			Path: c.BrowserBinary,
			W3C:  true,
		}
		if c.Headless {
			chrCaps.Args = append(chrCaps.Args, "--headless")
		}
		if w, h, ok := c.windowSize(); ok {
			chrCaps.Args = append(chrCaps.Args, fmt.Sprintf("--window-size=%d,%d", w, h))
		}
		caps.AddChrome(chrCaps)
	case Firefox:
		f := firefox.Capabilities{Binary: c.BrowserBinary}
		if c.Headless {
			f.Args = append(f.Args, "-headless")
		}
		caps.AddFirefox(f)
	}
	if c.Proxy.Type != "" || c.ProxyAddr != "" {
		if p, err := c.proxy(); err == nil {
			caps.AddProxy(p)
		}
	}
	return caps
}

func (c Config) appiumCapabilities() selenium.Capabilities {
	platform, automation := "Android", "UiAutomator2"
	if c.Browser == IOS {
		platform, automation = "iOS", "XCUITest"
	}
	if c.AutomationName != "" {
		automation = c.AutomationName
	}
	caps := selenium.Capabilities{
		"platformName":          platform,
		"appium:automationName": automation,
	}
	if c.App != "" {
		caps["appium:app"] = c.App
	}
	if c.DeviceName != "" {
		caps["appium:deviceName"] = c.DeviceName
	}
	return caps
}
