package selenide

import (
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/tebeka/selenium"
	"golang.org/x/sync/errgroup"
)

// Collection is a lazily resolved list of elements. Like Element, it is
// looked up again on every use.
type Collection struct {
	d    *Driver
	desc string

	wait          time.Duration
	customTimeout bool

	locate func() ([]selenium.WebElement, error)
}

// String returns the collection descriptor.
func (c *Collection) String() string { return "{" + c.desc + "}" }

// Waiting returns a copy of c whose assertions wait up to timeout.
func (c *Collection) Waiting(timeout time.Duration) *Collection {
	cp := *c
	cp.wait = timeout
	cp.customTimeout = true
	return &cp
}

func (c *Collection) timeout() time.Duration {
	if c.customTimeout {
		return c.wait
	}
	return c.d.cfg.Timeout
}

// Get returns the element at index i. It is not found while the collection
// has i or fewer elements.
func (c *Collection) Get(i int) *Element {
	return c.item(fmt.Sprintf("%s[%d]", c.desc, i), func(els []selenium.WebElement) selenium.WebElement {
		if i < 0 || i >= len(els) {
			return nil
		}
		return els[i]
	})
}

// First returns the first element.
func (c *Collection) First() *Element { return c.Get(0) }

// Last returns the last element.
func (c *Collection) Last() *Element {
	return c.item(c.desc+":last", func(els []selenium.WebElement) selenium.WebElement {
		if len(els) == 0 {
			return nil
		}
		return els[len(els)-1]
	})
}

func (c *Collection) item(desc string, pick func([]selenium.WebElement) selenium.WebElement) *Element {
	return &Element{
		d:             c.d,
		desc:          desc,
		wait:          c.wait,
		customTimeout: c.customTimeout,
		locate: func() (selenium.WebElement, error) {
			els, err := c.locate()
			if err != nil {
				return nil, err
			}
			el := pick(els)
			if el == nil {
				return nil, errElementNotFound
			}
			return el, nil
		},
	}
}

// Filter returns the elements meeting cond.
func (c *Collection) Filter(cond Condition) *Collection {
	return &Collection{
		d:             c.d,
		desc:          fmt.Sprintf("%s.filter(%s)", c.desc, cond.Name()),
		wait:          c.wait,
		customTimeout: c.customTimeout,
		locate: func() ([]selenium.WebElement, error) {
			els, err := c.locate()
			if err != nil {
				return nil, err
			}
			var kept []selenium.WebElement
			for _, el := range els {
				ok, err := cond.Apply(el)
				if err != nil && !isStale(err) {
					return nil, err
				}
				if ok {
					kept = append(kept, el)
				}
			}
			return kept, nil
		},
	}
}

// Size returns the number of elements right now, without waiting.
func (c *Collection) Size() (int, error) {
	els, err := c.locate()
	return len(els), err
}

// Texts returns the visible text of every element, without waiting.
func (c *Collection) Texts() ([]string, error) {
	els, err := c.locate()
	if err != nil {
		return nil, err
	}
	return texts(els)
}

// texts reads the text of every element concurrently.
func texts(els []selenium.WebElement) ([]string, error) {
	out := make([]string, len(els))
	var g errgroup.Group
	for i, el := range els {
		i, el := i, el
		g.Go(func() error {
			t, err := el.Text()
			if err != nil {
				return err
			}
			out[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Should waits until every condition holds, checking them in order.
func (c *Collection) Should(conds ...CollectionCondition) error { return c.should("", conds) }

// ShouldHave is Should, reading "should have <condition>" on failure.
func (c *Collection) ShouldHave(conds ...CollectionCondition) error { return c.should("have ", conds) }

// ShouldBe is Should, reading "should be <condition>" on failure.
func (c *Collection) ShouldBe(conds ...CollectionCondition) error { return c.should("be ", conds) }

func (c *Collection) should(prefix string, conds []CollectionCondition) error {
	for _, cond := range conds {
		if err := c.await(prefix, cond); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collection) await(prefix string, cond CollectionCondition) error {
	timeout := c.timeout()
	start := c.d.now()
	var (
		els    []selenium.WebElement
		actual string
		cause  error
	)
	for n := 1; ; n++ {
		var err error
		els, err = c.locate()
		if isInvalidSelector(err) {
			return fmt.Errorf("invalid selector {%s}: %w", c.desc, err)
		}
		if err == nil {
			var ok bool
			ok, actual, err = cond.Apply(els)
			if err == nil && ok {
				return nil
			}
		}
		cause = err
		if c.d.now().Sub(start) >= timeout {
			break
		}
		glog.V(1).Infof("{%s} should %s%s: attempt %d failed, retrying", c.desc, prefix, cond.Name(), n)
		c.d.sleep(c.d.cfg.PollingInterval)
	}
	failure := &CollectionShould{
		UIAssertionError: UIAssertionError{
			Description: c.desc,
			Condition:   cond.Name(),
			Timeout:     timeout,
			Cause:       cause,
		},
		Prefix: prefix,
		Actual: actual,
	}
	for _, el := range els {
		failure.Elements = append(failure.Elements, describe(el))
	}
	c.d.report(&failure.UIAssertionError)
	return failure
}
