package selenidetest

import (
	"flag"
	"testing"
)

var (
	remote   = flag.String("remote", "", "The WebDriver server URL, e.g. http://127.0.0.1:4444/wd/hub. If empty, the browser tests are skipped.")
	browser  = flag.String("browser", "chrome", "The browser to start: chrome or firefox.")
	binary   = flag.String("browser_binary", "", "The path to the browser binary. If empty, the server default is used.")
	headless = flag.Bool("headless", true, "If set, run the browser without a display.")
	noProxy  = flag.Bool("skip_proxy", false, "If set, skip the proxy tests.")
)

func TestBrowser(t *testing.T) {
	if *remote == "" {
		t.Skip("Skipping browser tests because -remote is not set.")
	}
	RunSelenideTests(t, Config{
		Addr:      *remote,
		Browser:   *browser,
		Path:      *binary,
		Headless:  *headless,
		SkipProxy: *noProxy,
	})
}
