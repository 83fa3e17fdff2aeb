package selenide

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Error families reported by WebDriver servers. Legacy JSON wire servers
// report a numeric status while W3C servers report the family name; the
// client surfaces both as the error string.
var remoteErrors = map[int]string{
	7:  "no such element",
	10: "stale element reference",
	11: "element not visible",
	12: "invalid element state",
	19: "xpath lookup error",
	32: "invalid selector",
}

var (
	notFoundFamilies = []string{remoteErrors[7], "unable to locate element"}
	staleFamilies    = []string{remoteErrors[10], "stale element", "is not attached to the page document"}
	// An element that exists but cannot take input yet; commands retry.
	notInteractableFamilies = []string{
		remoteErrors[11],
		remoteErrors[12],
		"element not interactable",
		"element click intercepted",
		"element is not clickable",
	}
	invalidSelectorFamilies = []string{remoteErrors[19], remoteErrors[32]}
)

// errElementNotFound is returned by lookups that resolve to nothing without
// talking to the server, e.g. an index past the end of a collection.
var errElementNotFound = errors.New("no such element")

func matchesFamily(err error, families []string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, f := range families {
		if strings.Contains(msg, f) {
			return true
		}
	}
	return false
}

func isNotFound(err error) bool { return matchesFamily(err, notFoundFamilies) }
func isStale(err error) bool { return matchesFamily(err, staleFamilies) }
func isNotInteractable(err error) bool { return matchesFamily(err, notInteractableFamilies) }
func isInvalidSelector(err error) bool { return matchesFamily(err, invalidSelectorFamilies) }

// UIAssertionError carries the parts shared by every assertion failure.
type UIAssertionError struct {
	// Description is the element or collection descriptor, without braces.
	Description string
	// Condition is the condition that was not met.
	Condition string
	// Timeout is how long the condition was retried.
	Timeout time.Duration
	// Screenshot and PageSource are report files written on failure, if any.
	Screenshot string
	PageSource string
	// Cause is the last WebDriver error seen, if it was unexpected.
	Cause error
}

// Unwrap returns the underlying WebDriver error.
func (e *UIAssertionError) Unwrap() error { return e.Cause }

func (e *UIAssertionError) tail() string {
	var b strings.Builder
	if e.Screenshot != "" {
		b.WriteString("\nScreenshot: file:" + e.Screenshot)
	}
	if e.PageSource != "" {
		b.WriteString("\nPage source: file:" + e.PageSource)
	}
	b.WriteString("\nTimeout: " + formatTimeout(e.Timeout))
	if e.Cause != nil && !isNotFound(e.Cause) {
		b.WriteString("\nCaused by: " + e.Cause.Error())
	}
	return b.String()
}

// ElementNotFound is returned when the element could not be located before
// the timeout while the condition required it to exist.
type ElementNotFound struct {
	UIAssertionError
}

func (e *ElementNotFound) Error() string {
	return fmt.Sprintf("Element not found {%s}\nExpected: %s", e.Description, e.Condition) + e.tail()
}

// ElementShould is returned when the element was found but never met the
// condition.
type ElementShould struct {
	UIAssertionError
	// Prefix is "have ", "be " or empty, depending on the assertion used.
	Prefix string
	// Element is a snapshot of the element at the last attempt.
	Element string
}

func (e *ElementShould) Error() string {
	return fmt.Sprintf("Element should %s%s {%s}\nElement: '%s'", e.Prefix, e.Condition, e.Description, e.Element) + e.tail()
}

// ElementShouldNot is returned when the element kept meeting a condition it
// was asserted not to meet.
type ElementShouldNot struct {
	UIAssertionError
	Prefix  string
	Element string
}

func (e *ElementShouldNot) Error() string {
	return fmt.Sprintf("Element should not %s%s {%s}\nElement: '%s'", e.Prefix, e.Condition, e.Description, e.Element) + e.tail()
}

// ElementActionFailed is returned when the element met the condition a
// command waits for but the command itself kept failing until the timeout.
type ElementActionFailed struct {
	UIAssertionError
	Element string
}

func (e *ElementActionFailed) Error() string {
	return fmt.Sprintf("Element action failed {%s}\nElement: '%s'", e.Description, e.Element) + e.tail()
}

// CollectionShould is returned when a collection never met a collection
// condition.
type CollectionShould struct {
	UIAssertionError
	Prefix string
	// Actual describes the observed value, e.g. the size or the texts.
	Actual string
	// Elements are snapshots of the collection elements at the last attempt.
	Elements []string
}

func (e *CollectionShould) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Collection should %s%s {%s}\nActual: %s", e.Prefix, e.Condition, e.Description, e.Actual)
	if len(e.Elements) > 0 {
		b.WriteString("\nElements: [\n\t" + strings.Join(e.Elements, ",\n\t") + "\n]")
	}
	b.WriteString(e.tail())
	return b.String()
}

// formatTimeout renders a timeout the way failure messages show it: whole
// milliseconds below one second, seconds with three decimals otherwise.
func formatTimeout(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1000 {
		return fmt.Sprintf("%d ms.", ms)
	}
	return fmt.Sprintf("%.3f s.", float64(ms)/1000)
}
