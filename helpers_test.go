package selenide

import (
	"testing"
	"time"

	"github.com/wanmail/selenide/internal/fakewd"
)

// fakeClock replaces the wall clock of a Driver; sleeping advances it.
type fakeClock struct {
	now    time.Time
	sleeps int
	// onSleep runs after every sleep, with the number of sleeps so far.
	onSleep func(n int)
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.now = c.now.Add(d)
	c.sleeps++
	if c.onSleep != nil {
		c.onSleep(c.sleeps)
	}
}

// testConfig is the default configuration with the short timeout the
// failure messages in these tests show.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Timeout = 1500 * time.Millisecond
	return cfg
}

func newTestDriver(t *testing.T, root *fakewd.Element, cfg Config) (*Driver, *fakewd.Driver, *fakeClock) {
	t.Helper()
	wd := fakewd.NewDriver(root)
	d := NewDriver(wd, cfg)
	clock := &fakeClock{now: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
	d.now = clock.Now
	d.sleep = clock.Sleep
	return d, wd, clock
}

// pageWithSelects mirrors the page the failure message tests run against.
func pageWithSelects() *fakewd.Element {
	return fakewd.New("html",
		fakewd.New("body",
			fakewd.New("h1").WithText("Page with selects"),
			fakewd.New("h2").WithText("Dropdown list"),
			fakewd.New("select").Attr("id", "hero").Attr("name", "hero").Attr("class", "form-control").
				WithChildren(
					fakewd.New("option").Attr("value", "").WithText("-- Select your hero --"),
					fakewd.New("option").Attr("value", "john mc'lain").WithText("John Mc'Lain"),
					fakewd.New("option").Attr("value", "bruce willis").WithText("Bruce Willis"),
					fakewd.New("option").Attr("value", "chuck norris").WithText("Chuck  Norris"),
				),
			fakewd.New("ul").Attr("id", "radioButtons").WithChildren(
				fakewd.New("li").WithText("Master"),
				fakewd.New("li").WithText("Margarita"),
				fakewd.New("li").WithText("Cat").Hide(),
			),
			fakewd.New("input").Attr("id", "username").Attr("type", "text").Attr("value", ""),
			fakewd.New("div").Attr("id", "hidden").Attr("class", "note").WithText("hidden text").Hide(),
		),
	)
}
