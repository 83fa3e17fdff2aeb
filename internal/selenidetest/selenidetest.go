// Package selenidetest runs the selenide assertions against a real browser
// behind a WebDriver server.
package selenidetest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	socks5 "github.com/armon/go-socks5"
	"github.com/blang/semver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"

	"github.com/wanmail/selenide"
)

// Config describes the browser the suite runs against.
type Config struct {
	// Addr is the WebDriver server URL.
	Addr    string
	Browser string
	// Path is the browser binary. The server default is used when empty.
	Path      string
	Headless  bool
	SkipProxy bool
	// ServerURL serves the fixture pages. Set by RunSelenideTests.
	ServerURL string
}

func runTest(f func(*testing.T, Config), c Config) func(*testing.T) {
	return func(t *testing.T) {
		f(t, c)
	}
}

// NewRemote opens the session under test. Tests may replace it to reuse a
// session factory of their own.
var NewRemote = func(_ *testing.T, caps selenium.Capabilities, addr string) (selenium.WebDriver, error) {
	return selenium.NewRemote(caps, addr)
}

func newConfig(c Config) selenide.Config {
	cfg := selenide.DefaultConfig()
	cfg.Browser = c.Browser
	cfg.Remote = c.Addr
	cfg.BrowserBinary = c.Path
	cfg.Headless = c.Headless
	cfg.BaseURL = c.ServerURL + "/"
	cfg.Timeout = time.Second
	cfg.PollingInterval = 50 * time.Millisecond
	return cfg
}

func newTestCapabilities(cfg selenide.Config) selenium.Capabilities {
	caps := cfg.Capabilities()
	if ch, ok := caps[chrome.CapabilitiesKey].(chrome.Capabilities); ok {
		// The sandbox requires a setuid binary, which custom Chrome builds
		// do not have.
		ch.Args = append(ch.Args, "--no-sandbox")
		caps.AddChrome(ch)
	}
	return caps
}

func newDriver(t *testing.T, cfg selenide.Config, caps selenium.Capabilities) *selenide.Driver {
	t.Helper()
	wd, err := NewRemote(t, caps, cfg.Remote)
	require.NoError(t, err, "NewRemote(%+v, %q)", caps, cfg.Remote)
	d := selenide.NewDriver(wd, cfg)
	t.Cleanup(func() {
		assert.NoError(t, d.Quit(), "Quit()")
	})
	return d
}

func newTestDriver(t *testing.T, c Config) *selenide.Driver {
	t.Helper()
	cfg := newConfig(c)
	return newDriver(t, cfg, newTestCapabilities(cfg))
}

// RunSelenideTests runs the suite against the browser described by c.
func RunSelenideTests(t *testing.T, c Config) {
	s := httptest.NewServer(http.HandlerFunc(handler))
	defer s.Close()
	c.ServerURL = s.URL

	t.Run("ErrorMessages", runTest(testErrorMessages, c))
	t.Run("Waiting", runTest(testWaiting, c))
	t.Run("SelectOption", runTest(testSelectOption, c))
	t.Run("Collection", runTest(testCollection, c))
	t.Run("SetValue", runTest(testSetValue, c))
	t.Run("ClickHidden", runTest(testClickHidden, c))
	t.Run("PageObject", runTest(testPageObject, c))
	t.Run("DragAndDrop", runTest(testDragAndDrop, c))
	t.Run("Hover", runTest(testHover, c))
	t.Run("ShadowDOM", runTest(testShadowDOM, c))
	if !c.SkipProxy {
		t.Run("Proxy", runTest(testProxy, c))
	}
}

// timeoutLine is the last line of a failure raised by newConfig drivers.
const timeoutLine = "\nTimeout: 1.000 s."

func testErrorMessages(t *testing.T, c Config) {
	d := newTestDriver(t, c)
	require.NoError(t, d.Open(selectsPage))

	require.NoError(t, d.Find("h2").ShouldHave(selenide.Text("Dropdown list")))

	err := d.Find("h9").ShouldHave(selenide.Text("expected text"))
	var notFound *selenide.ElementNotFound
	require.True(t, errors.As(err, &notFound), "Find(h9) returned %v, want ElementNotFound", err)
	assert.Equal(t, "Element not found {By.selector: h9}\nExpected: text 'expected text'"+timeoutLine, err.Error())

	err = d.Find("h2").ShouldHave(selenide.Text("expected text"))
	var should *selenide.ElementShould
	require.True(t, errors.As(err, &should), "Find(h2) returned %v, want ElementShould", err)
	assert.Equal(t, "text 'expected text'", should.Condition)
	assert.Equal(t, "<h2>Dropdown list</h2>", should.Element)
	assert.True(t, strings.HasSuffix(err.Error(), timeoutLine), "error %q has no timeout line", err)

	err = d.FindBy(selenide.ByID("invalid_id")).Find("option").Should(selenide.Exist)
	require.True(t, errors.As(err, &notFound), "child of a missing parent returned %v", err)
	assert.Equal(t, "By.id: invalid_id/By.selector: option", notFound.Description)
	assert.Equal(t, "exist", notFound.Condition)

	err = d.Find("h2").ShouldNotHave(selenide.Text("Dropdown"))
	var shouldNot *selenide.ElementShouldNot
	require.True(t, errors.As(err, &shouldNot), "ShouldNotHave() returned %v", err)
	assert.Equal(t, "have ", shouldNot.Prefix)
}

func testWaiting(t *testing.T, c Config) {
	d := newTestDriver(t, c)
	require.NoError(t, d.Open(delayedPage))

	// The element is added 300ms after load.
	el := d.Find("#late")
	require.NoError(t, el.ShouldBe(selenide.Visible))
	require.NoError(t, el.ShouldHave(selenide.ExactText("here")))

	start := time.Now()
	err := d.Find("#never").Waiting(200 * time.Millisecond).Should(selenide.Exist)
	require.Error(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
	assert.True(t, strings.HasSuffix(err.Error(), "\nTimeout: 200 ms."), "error %q", err)

	require.NoError(t, d.Find("#never").Should(selenide.Not(selenide.Exist)))
	require.NoError(t, d.Find("#never").ShouldBe(selenide.Hidden))
}

func testSelectOption(t *testing.T, c Config) {
	d := newTestDriver(t, c)
	require.NoError(t, d.Open(selectsPage))

	hero := d.FindBy(selenide.ByName("hero"))
	tests := []struct {
		name string
		do   func() error
		want string
	}{
		{"text", func() error { return hero.SelectOption("Bruce Willis") }, "Bruce Willis"},
		{"quote", func() error { return hero.SelectOption("John Mc'Lain") }, "John Mc'Lain"},
		{"spaces", func() error { return hero.SelectOption("Chuck Norris") }, "Chuck Norris"},
		{"value", func() error { return hero.SelectOptionByValue("bruce willis") }, "Bruce Willis"},
		{"index", func() error { return hero.SelectOptionByIndex(1) }, "John Mc'Lain"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, tc.do())
			got, err := hero.SelectedOptionText()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	err := hero.SelectOption("Luke Skywalker")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(),
		"Element not found {By.name: hero/option[text:Luke Skywalker]}\nExpected: exist"), "error %q", err)

	err = d.FindBy(selenide.ByXPath("//select[@name='wrong-select-name']")).SelectOption("Bruce Willis")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(),
		"Element not found {By.xpath: //select[@name='wrong-select-name']}\nExpected: exist"), "error %q", err)
}

func testCollection(t *testing.T, c Config) {
	d := newTestDriver(t, c)
	require.NoError(t, d.Open(selectsPage))

	items := d.FindAll("#radioButtons li")
	require.NoError(t, items.ShouldHave(selenide.Size(3)))
	require.NoError(t, items.Filter(selenide.Visible).ShouldHave(selenide.Texts("Master", "Margarita")))
	require.NoError(t, items.First().ShouldHave(selenide.ExactText("Master")))

	err := items.ShouldHave(selenide.Size(4))
	var should *selenide.CollectionShould
	require.True(t, errors.As(err, &should), "ShouldHave(Size(4)) returned %v", err)
	assert.Equal(t, "3", should.Actual)
	assert.Len(t, should.Elements, 3)
}

func testSetValue(t *testing.T, c Config) {
	d := newTestDriver(t, c)
	require.NoError(t, d.Open(selectsPage))

	username := d.Find("#username")
	require.NoError(t, username.SetValue("john"))
	require.NoError(t, username.ShouldHave(selenide.Value("john")))
	require.NoError(t, username.Append(" doe"))
	got, err := username.Val()
	require.NoError(t, err)
	assert.Equal(t, "john doe", got)
	require.NoError(t, username.Clear())
	require.NoError(t, username.ShouldHave(selenide.Value("")))
}

func testClickHidden(t *testing.T, c Config) {
	d := newTestDriver(t, c)
	require.NoError(t, d.Open(selectsPage))

	err := d.Find("#hidden").Click()
	var should *selenide.ElementShould
	require.True(t, errors.As(err, &should), "Click() returned %v", err)
	assert.Equal(t, "visible", should.Condition)
	assert.Equal(t, "be ", should.Prefix)
}

type selectsPageObject struct {
	Header   *selenide.Element    `find:"tagName=h2"`
	Hero     selenium.WebElement  `find:"id=hero"`
	Items    *selenide.Collection `find:"css=#radioButtons li"`
	Dropdown selenium.WebElement  `find:"id=invalid_id"`
}

func testPageObject(t *testing.T, c Config) {
	d := newTestDriver(t, c)
	page := new(selectsPageObject)
	require.NoError(t, d.Open(selectsPage, page))

	require.NoError(t, page.Header.ShouldHave(selenide.ExactText("Dropdown list")))
	require.NoError(t, page.Items.ShouldHave(selenide.Size(3)))
	tag, err := page.Hero.TagName()
	require.NoError(t, err)
	assert.Equal(t, "select", tag)

	err = d.Wrap(page.Dropdown).Click()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Element not found {By.id: invalid_id}\nExpected: visible"), "error %q", err)
}

func testDragAndDrop(t *testing.T, c Config) {
	for _, tc := range []struct {
		name string
		opt  selenide.DragAndDropOption
	}{
		{"js", selenide.UsingJS()},
		{"actions", selenide.UsingActions()},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if tc.name == "actions" && c.Browser == selenide.Firefox {
				t.Skip("geckodriver does not fire HTML5 drag events for synthesized pointer input")
			}
			d := newTestDriver(t, c)
			require.NoError(t, d.Open(dragPage))
			require.NoError(t, d.Find("#source").DragAndDropTo(d.Find("#target"), tc.opt))
			require.NoError(t, d.Find("#target").ShouldHave(selenide.Text("Dropped!")))
		})
	}
}

func testHover(t *testing.T, c Config) {
	d := newTestDriver(t, c)
	require.NoError(t, d.Open(dragPage))
	require.NoError(t, d.Find("#source").Hover())
	require.NoError(t, d.Find("#status").ShouldHave(selenide.ExactText("hovered")))
	require.NoError(t, d.Find("#source").DoubleClick())
	require.NoError(t, d.Find("#status").ShouldHave(selenide.ExactText("double clicked")))
}

func testShadowDOM(t *testing.T, c Config) {
	d := newTestDriver(t, c)
	require.NoError(t, d.Open(shadowPage))
	btn := d.FindBy(selenide.ByShadowCSS("#shadow-button", "#outer-host", "#inner-host"))
	require.NoError(t, btn.ShouldHave(selenide.ExactText("Inside")))
	require.NoError(t, btn.Click())
	require.NoError(t, d.Find("#status").ShouldHave(selenide.ExactText("clicked")))
}

// browserVersion returns the version the session reports.
func browserVersion(t *testing.T, d *selenide.Driver) semver.Version {
	t.Helper()
	caps, err := d.Capabilities()
	require.NoError(t, err)
	raw, _ := caps["browserVersion"].(string)
	if raw == "" {
		raw, _ = caps["version"].(string)
	}
	parts := strings.SplitN(raw, ".", 4)
	if len(parts) > 3 {
		parts = parts[:3]
	}
	v, err := semver.ParseTolerant(strings.Join(parts, "."))
	require.NoError(t, err, "parse browser version %q", raw)
	return v
}

const proxyPageContents = "You are viewing a proxied page"

// addrRewriter rewrites all requested addresses to the one specified by the
// URL.
type addrRewriter struct{ u *url.URL }

func (a *addrRewriter) Rewrite(ctx context.Context, _ *socks5.Request) (context.Context, *socks5.AddrSpec) {
	port, err := strconv.Atoi(a.u.Port())
	if err != nil {
		panic(err)
	}
	return ctx, &socks5.AddrSpec{
		FQDN: a.u.Hostname(),
		Port: port,
	}
}

func testProxy(t *testing.T, c Config) {
	// Requests sent through the proxy land on this server instead.
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, proxyPageContents)
	}))
	defer s.Close()
	u, err := url.Parse(s.URL)
	require.NoError(t, err)

	t.Run("HTTP", func(t *testing.T) {
		cfg := newConfig(c)
		cfg.ProxyAddr = "http://" + u.Host
		runTestProxy(t, cfg)
	})

	t.Run("SOCKS", func(t *testing.T) {
		socks, err := socks5.New(&socks5.Config{
			Rewriter: &addrRewriter{u},
		})
		require.NoError(t, err)
		l, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)

		// Serve until the listener is closed at the end of the test.
		done := make(chan struct{})
		go func() {
			err := socks.Serve(l)
			select {
			case <-done:
				return
			default:
			}
			if err != nil {
				t.Errorf("socks.Serve(_) returned error: %v", err)
			}
		}()
		defer func() {
			close(done)
			l.Close()
		}()

		cfg := newConfig(c)
		cfg.ProxyAddr = "socks5://" + l.Addr().String()
		runTestProxy(t, cfg)
	})
}

// firstLocalhostProxyFirefox is the first Firefox release that honors
// network.proxy.allow_hijacking_localhost.
var firstLocalhostProxyFirefox = semver.MustParse("67.0.0")

func runTestProxy(t *testing.T, cfg selenide.Config) {
	require.NoError(t, cfg.Validate())
	caps := newTestCapabilities(cfg)
	allowProxyForLocalhost(cfg.Browser, caps)
	d := newDriver(t, cfg, caps)
	if cfg.Browser == selenide.Firefox && browserVersion(t, d).LT(firstLocalhostProxyFirefox) {
		t.Skip("this Firefox release always bypasses the proxy for localhost")
	}

	require.NoError(t, d.Open(selectsPage))
	source, err := d.WebDriver().PageSource()
	require.NoError(t, err)
	require.NotContains(t, source, "Page with selects", "got the non-proxied page")
	assert.Contains(t, source, proxyPageContents)
}

func allowProxyForLocalhost(browser string, caps selenium.Capabilities) {
	switch browser {
	case selenide.Firefox:
		// Firefox never proxies localhost unless told otherwise.
		ff, _ := caps[firefox.CapabilitiesKey].(firefox.Capabilities)
		if ff.Prefs == nil {
			ff.Prefs = make(map[string]interface{})
		}
		ff.Prefs["network.proxy.no_proxies_on"] = ""
		ff.Prefs["network.proxy.allow_hijacking_localhost"] = true
		caps.AddFirefox(ff)
	case selenide.Chrome:
		ch, _ := caps[chrome.CapabilitiesKey].(chrome.Capabilities)
		// https://crbug.com/899126
		ch.Args = append(ch.Args, "--proxy-bypass-list=<-loopback>")
		caps.AddChrome(ch)
	}
}
