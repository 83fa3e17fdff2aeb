package selenide

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/golang/glog"
	"github.com/tebeka/selenium"

	"github.com/wanmail/selenide/actions"
)

//go:embed drag_and_drop.js
var dragAndDropScript string

// DragAndDropOption changes how DragAndDropTo moves the element.
type DragAndDropOption func(*dragOptions)

type dragOptions struct {
	method   string
	duration time.Duration
}

// UsingJS drags by dispatching HTML5 drag and drop events from a script.
func UsingJS() DragAndDropOption {
	return func(o *dragOptions) { o.method = DragJS }
}

// UsingActions drags with pointer actions.
func UsingActions() DragAndDropOption {
	return func(o *dragOptions) { o.method = DragActions }
}

// WithDuration sets how long the pointer takes to move onto the target.
func WithDuration(d time.Duration) DragAndDropOption {
	return func(o *dragOptions) { o.duration = d }
}

// DragAndDropTo drags e onto target. Both elements must be visible. Unless
// an option says otherwise, mobile sessions drag with touch actions and
// browsers with a script. Both elements are located again on every attempt.
func (e *Element) DragAndDropTo(target *Element, opts ...DragAndDropOption) error {
	o := dragOptions{method: e.d.cfg.DragAndDrop, duration: actions.DefaultMoveDuration}
	for _, opt := range opts {
		opt(&o)
	}
	if o.method == DragAuto || o.method == "" {
		o.method = DragJS
		if e.d.IsMobile() {
			o.method = DragActions
		}
	}
	if glog.V(1) {
		glog.Infof("drag %s to %s using %s", e, target, o.method)
	}
	return e.interact(func(src selenium.WebElement) error {
		dst, err := target.visibleNow()
		if err != nil {
			return err
		}
		err = e.drag(o, src, dst)
		if isStale(err) {
			// A re-rendered target leaves dst detached.
			if _, serr := dst.IsDisplayed(); isStale(serr) {
				return &targetError{target: target, err: err}
			}
		}
		return err
	})
}

func (e *Element) drag(o dragOptions, src, dst selenium.WebElement) error {
	if o.method == DragJS {
		_, err := e.d.wd.ExecuteScript(dragAndDropScript, []interface{}{src, dst})
		return err
	}
	return e.d.perform(actions.DragAndDrop(e.d.pointerKind(), src, dst, o.duration), func() error {
		if err := src.MoveTo(0, 0); err != nil {
			return err
		}
		if err := e.d.wd.ButtonDown(); err != nil {
			return err
		}
		if err := dst.MoveTo(0, 0); err != nil {
			return err
		}
		return e.d.wd.ButtonUp()
	})
}

// errTargetHidden is in the not-interactable family, so it is retried.
var errTargetHidden = errors.New("element not interactable: element is not visible")

// targetError is returned by a command whose second element, such as a drop
// target, could not be used. el is nil when the element was not found.
type targetError struct {
	target *Element
	el     selenium.WebElement
	err    error
}

func (t *targetError) Error() string { return fmt.Sprintf("%s: %v", t.target, t.err) }

func (t *targetError) Unwrap() error { return t.err }

// visibleNow locates e once and checks that it is visible.
func (e *Element) visibleNow() (selenium.WebElement, error) {
	el, err := e.locate()
	if err != nil {
		return nil, &targetError{target: e, err: err}
	}
	shown, err := Visible.Apply(el)
	switch {
	case err != nil:
		return nil, &targetError{target: e, err: err}
	case !shown:
		return nil, &targetError{target: e, el: el, err: errTargetHidden}
	}
	return el, nil
}

// Hover moves the mouse onto the element.
func (e *Element) Hover() error {
	return e.interact(func(el selenium.WebElement) error {
		return e.d.perform(actions.Hover(el), func() error { return el.MoveTo(0, 0) })
	})
}

// DoubleClick double-clicks the element.
func (e *Element) DoubleClick() error {
	return e.interact(func(el selenium.WebElement) error {
		return e.d.perform(actions.ClickOn(e.d.pointerKind(), el, actions.LeftButton, 2), func() error {
			if err := el.MoveTo(0, 0); err != nil {
				return err
			}
			return e.d.wd.DoubleClick()
		})
	})
}

// ContextClick right-clicks the element.
func (e *Element) ContextClick() error {
	return e.interact(func(el selenium.WebElement) error {
		return e.d.perform(actions.ClickOn(actions.Mouse, el, actions.RightButton, 1), func() error {
			if err := el.MoveTo(0, 0); err != nil {
				return err
			}
			return e.d.wd.Click(selenium.RightButton)
		})
	})
}

func (d *Driver) pointerKind() string {
	if d.IsMobile() {
		return actions.Touch
	}
	return actions.Mouse
}

// perform sends b as W3C actions, or runs legacy when the browser predates
// them.
func (d *Driver) perform(b *actions.Builder, legacy func() error) error {
	if !d.w3cActions() {
		glog.V(1).Infof("browser predates W3C actions, using legacy commands")
		return legacy()
	}
	p := &actions.Performer{
		Client:    d.client,
		Executor:  d.cfg.Remote,
		SessionID: d.wd.SessionID(),
	}
	if err := p.Perform(b); err != nil {
		return fmt.Errorf("perform actions: %w", err)
	}
	return p.Release()
}

// firstW3CChrome is the first Chrome release that accepts W3C actions.
var firstW3CChrome = semver.MustParse("75.0.0")

// w3cActions reports whether the session accepts W3C actions. Only Chrome
// before 75 does not.
func (d *Driver) w3cActions() bool {
	if d.IsMobile() {
		return true
	}
	browser, version := d.cfg.Browser, d.cfg.BrowserVersion
	if caps, err := d.Capabilities(); err == nil {
		if name, ok := caps["browserName"].(string); ok && name != "" {
			browser = name
		}
		for _, key := range []string{"browserVersion", "version"} {
			if v, ok := caps[key].(string); ok && v != "" {
				version = v
				break
			}
		}
	}
	if !strings.EqualFold(browser, Chrome) || version == "" {
		return true
	}
	v, err := parseBrowserVersion(version)
	if err != nil {
		glog.V(1).Infof("unparsable %s version %q: %v", browser, version, err)
		return true
	}
	return v.GTE(firstW3CChrome)
}

// parseBrowserVersion parses versions such as "74.0.3729.6" or "118".
func parseBrowserVersion(s string) (semver.Version, error) {
	parts := strings.SplitN(s, ".", 4)
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return semver.ParseTolerant(strings.Join(parts, "."))
}
