package selenide

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/tebeka/selenium"
)

// attempt is the outcome of the last lookup of a retry loop.
type attempt struct {
	el      selenium.WebElement
	missing bool
	// acted is set when the condition held and the action failed.
	acted bool
	err   error
}

// await locates the element and evaluates cond until it holds, then runs
// action on the element if one is given. Lookups that find nothing, stale
// references and elements that cannot take input yet are retried until the
// timeout; other errors from action end the loop at once.
//
// When negate is set the element must not meet cond. prefix is the verb
// ("have ", "be " or "") used in failure messages.
func (e *Element) await(prefix string, cond Condition, negate bool, action func(selenium.WebElement) error) error {
	check := cond
	if negate {
		check = Not(cond)
	}
	timeout := e.timeout()
	start := e.d.now()
	var last attempt
	for n := 1; ; n++ {
		el, err := e.locate()
		switch {
		case err == nil:
			ok, err := check.Apply(el)
			switch {
			case err == nil && ok:
				if action == nil {
					return nil
				}
				aerr := action(el)
				if aerr == nil {
					return nil
				}
				if !isStale(aerr) && !isNotInteractable(aerr) && !isNotFound(aerr) {
					return fmt.Errorf("{%s}: %w", e.description(), aerr)
				}
				last = attempt{el: el, acted: true, err: aerr}
			case isStale(err) || isNotFound(err):
				if check.MissingElementSatisfies() && action == nil {
					return nil
				}
				last = attempt{missing: true, err: err}
			default:
				last = attempt{el: el, err: err}
			}
		case isInvalidSelector(err):
			return fmt.Errorf("invalid selector {%s}: %w", e.description(), err)
		case isNotFound(err) || isStale(err):
			if check.MissingElementSatisfies() && action == nil {
				return nil
			}
			last = attempt{missing: true, err: err}
		default:
			last = attempt{missing: true, err: err}
		}
		if e.d.now().Sub(start) >= timeout {
			break
		}
		if glog.V(1) {
			glog.Infof("{%s} should %s%s: attempt %d failed, retrying", e.description(), prefix, check.Name(), n)
		}
		e.d.sleep(e.d.cfg.PollingInterval)
	}
	return e.failure(prefix, cond, check, negate, timeout, last)
}

func (e *Element) failure(prefix string, cond, check Condition, negate bool, timeout time.Duration, last attempt) error {
	base := UIAssertionError{
		Description: e.description(),
		Condition:   check.Name(),
		Timeout:     timeout,
		Cause:       last.err,
	}
	if last.acted {
		var te *targetError
		if errors.As(last.err, &te) {
			cause := te.err
			if errors.Is(cause, errTargetHidden) {
				cause = nil
			}
			return te.target.failure("be ", Visible, Visible, false, timeout, attempt{el: te.el, missing: te.el == nil, err: cause})
		}
		base.Condition = cond.Name()
		e.d.report(&base)
		return &ElementActionFailed{UIAssertionError: base, Element: describe(last.el)}
	}
	if last.missing {
		e.d.report(&base)
		glog.V(1).Infof("element not found {%s}, expected %s", base.Description, check.Name())
		return &ElementNotFound{UIAssertionError: base}
	}
	snapshot := describe(last.el)
	base.Condition = cond.Name()
	e.d.report(&base)
	if negate {
		return &ElementShouldNot{UIAssertionError: base, Prefix: prefix, Element: snapshot}
	}
	return &ElementShould{UIAssertionError: base, Prefix: prefix, Element: snapshot}
}

func (e *Element) timeout() time.Duration {
	if e.customTimeout {
		return e.wait
	}
	return e.d.cfg.Timeout
}
