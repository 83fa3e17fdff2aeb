package selenide

import (
	"sync"
	"time"

	"github.com/tebeka/selenium"
)

// Element is a lazily resolved handle on a page element. Nothing is looked
// up when an Element is created; every assertion and command locates the
// element again, waiting for it up to the configured timeout.
type Element struct {
	d    *Driver
	desc string
	// snapshot, when set, builds desc on first use.
	snapshot func() string

	wait          time.Duration
	customTimeout bool

	locate func() (selenium.WebElement, error)
}

// String returns the element descriptor, e.g. "{By.selector: h2}".
func (e *Element) String() string { return "{" + e.description() + "}" }

func (e *Element) description() string {
	if e.snapshot != nil {
		return e.snapshot()
	}
	return e.desc
}

func (e *Element) childSnapshot(label string) func() string {
	if e.snapshot == nil {
		return nil
	}
	return sync.OnceValue(func() string { return e.snapshot() + "/" + label })
}

// Waiting returns a copy of e whose assertions and commands wait up to
// timeout instead of the configured one.
func (e *Element) Waiting(timeout time.Duration) *Element {
	c := *e
	c.wait = timeout
	c.customTimeout = true
	return &c
}

func (e *Element) should(prefix string, negate bool, conds []Condition) error {
	for _, c := range conds {
		if err := e.await(prefix, c, negate, nil); err != nil {
			return err
		}
	}
	return nil
}

// Should waits until every condition holds, checking them in order.
func (e *Element) Should(conds ...Condition) error { return e.should("", false, conds) }

// ShouldHave is Should, reading "should have <condition>" on failure.
func (e *Element) ShouldHave(conds ...Condition) error { return e.should("have ", false, conds) }

// ShouldBe is Should, reading "should be <condition>" on failure.
func (e *Element) ShouldBe(conds ...Condition) error { return e.should("be ", false, conds) }

// ShouldNot waits until no condition holds, checking them in order.
func (e *Element) ShouldNot(conds ...Condition) error { return e.should("", true, conds) }

// ShouldNotHave is ShouldNot, reading "should not have <condition>" on
// failure.
func (e *Element) ShouldNotHave(conds ...Condition) error { return e.should("have ", true, conds) }

// ShouldNotBe is ShouldNot, reading "should not be <condition>" on failure.
func (e *Element) ShouldNotBe(conds ...Condition) error { return e.should("be ", true, conds) }

// WebElement waits until the element exists and returns it.
func (e *Element) WebElement() (selenium.WebElement, error) {
	var found selenium.WebElement
	err := e.await("", Exist, false, func(el selenium.WebElement) error {
		found = el
		return nil
	})
	return found, err
}

// Exists reports whether the element is present right now, without waiting.
func (e *Element) Exists() bool {
	el, err := e.locate()
	if err != nil {
		return false
	}
	ok, err := Exist.Apply(el)
	return err == nil && ok
}

// IsDisplayed reports whether the element is visible right now, without
// waiting.
func (e *Element) IsDisplayed() bool {
	el, err := e.locate()
	if err != nil {
		return false
	}
	shown, err := el.IsDisplayed()
	return err == nil && shown
}

func (e *Element) read(get func(selenium.WebElement) (string, error)) (string, error) {
	var v string
	err := e.await("", Exist, false, func(el selenium.WebElement) error {
		var err error
		v, err = get(el)
		return err
	})
	return v, err
}

// Text waits until the element exists and returns its visible text.
func (e *Element) Text() (string, error) {
	return e.read(func(el selenium.WebElement) (string, error) { return el.Text() })
}

// TagName waits until the element exists and returns its tag name.
func (e *Element) TagName() (string, error) {
	return e.read(func(el selenium.WebElement) (string, error) { return el.TagName() })
}

// Attr waits until the element exists and returns the attribute, or "" when
// it is absent.
func (e *Element) Attr(name string) (string, error) {
	return e.read(func(el selenium.WebElement) (string, error) { return attribute(el, name) })
}

// Val returns the value attribute.
func (e *Element) Val() (string, error) { return e.Attr("value") }

func (e *Element) interact(action func(selenium.WebElement) error) error {
	return e.await("be ", Visible, false, action)
}

// Click waits until the element is visible and clicks it.
func (e *Element) Click() error {
	return e.interact(func(el selenium.WebElement) error {
		if e.d.cfg.ClickViaJS {
			_, err := e.d.wd.ExecuteScript("arguments[0].click()", []interface{}{el})
			return err
		}
		return el.Click()
	})
}

// SetValue waits until the element is visible, clears it and types text.
func (e *Element) SetValue(text string) error {
	return e.interact(func(el selenium.WebElement) error {
		if err := el.Clear(); err != nil {
			return err
		}
		return el.SendKeys(text)
	})
}

// Append types text after the current value.
func (e *Element) Append(text string) error { return e.SendKeys(text) }

// SendKeys waits until the element is visible and types keys into it.
func (e *Element) SendKeys(keys string) error {
	return e.interact(func(el selenium.WebElement) error { return el.SendKeys(keys) })
}

// PressEnter presses the Enter key in the element.
func (e *Element) PressEnter() error { return e.SendKeys(selenium.EnterKey) }

// PressTab presses the Tab key in the element.
func (e *Element) PressTab() error { return e.SendKeys(selenium.TabKey) }

// Clear waits until the element is visible and clears its value.
func (e *Element) Clear() error {
	return e.interact(func(el selenium.WebElement) error { return el.Clear() })
}

// ScrollIntoView scrolls the page until the element is in view.
func (e *Element) ScrollIntoView(alignToTop bool) error {
	return e.await("", Exist, false, func(el selenium.WebElement) error {
		_, err := e.d.wd.ExecuteScript("arguments[0].scrollIntoView(arguments[1])", []interface{}{el, alignToTop})
		return err
	})
}

// Find returns the first descendant matching the CSS selector.
func (e *Element) Find(selector string) *Element { return e.FindBy(ByCSS(selector)) }

// FindBy returns the first descendant matching by.
func (e *Element) FindBy(by By) *Element {
	return e.child(by, by.String())
}

func (e *Element) child(by By, label string) *Element {
	return &Element{
		d:             e.d,
		desc:          e.desc + "/" + label,
		snapshot:      e.childSnapshot(label),
		wait:          e.wait,
		customTimeout: e.customTimeout,
		locate: func() (selenium.WebElement, error) {
			parent, err := e.locate()
			if err != nil {
				return nil, err
			}
			return e.d.findOne(parent, by)
		},
	}
}

// FindAll returns the descendants matching the CSS selector.
func (e *Element) FindAll(selector string) *Collection { return e.FindAllBy(ByCSS(selector)) }

// FindAllBy returns the descendants matching by.
func (e *Element) FindAllBy(by By) *Collection {
	return &Collection{
		d:             e.d,
		desc:          e.description() + "/" + by.String(),
		wait:          e.wait,
		customTimeout: e.customTimeout,
		locate: func() ([]selenium.WebElement, error) {
			parent, err := e.locate()
			if err != nil {
				return nil, err
			}
			return e.d.findAll(parent, by)
		},
	}
}

// Parent returns the parent element.
func (e *Element) Parent() *Element {
	return e.child(ByXPath(".."), "..")
}
