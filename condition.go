package selenide

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tebeka/selenium"
)

// Condition is a named predicate over an element. Assertions retry it until
// it holds or the timeout expires.
type Condition interface {
	// Name is the condition as failure messages show it, e.g. "visible" or
	// "text 'Dropped!'".
	Name() string
	// Apply evaluates the condition against a located element.
	Apply(el selenium.WebElement) (bool, error)
	// MissingElementSatisfies reports whether an element that cannot be
	// located meets the condition.
	MissingElementSatisfies() bool
}

type predicate struct {
	name    string
	missing bool
	apply   func(selenium.WebElement) (bool, error)
}

func (p predicate) Name() string { return p.name }
func (p predicate) Apply(el selenium.WebElement) (bool, error) { return p.apply(el) }
func (p predicate) MissingElementSatisfies() bool { return p.missing }
func (p predicate) String() string { return p.name }

// NewCondition builds a condition from a name and a predicate. The condition
// fails for elements that cannot be located.
func NewCondition(name string, apply func(selenium.WebElement) (bool, error)) Condition {
	return predicate{name: name, apply: apply}
}

var (
	// Exist holds for any element present in the DOM.
	Exist Condition = predicate{name: "exist", apply: func(el selenium.WebElement) (bool, error) {
		// Touch the element so a detached reference reads as stale.
		_, err := el.IsDisplayed()
		return err == nil, err
	}}

	// Visible holds for displayed elements.
	Visible Condition = predicate{name: "visible", apply: func(el selenium.WebElement) (bool, error) {
		return el.IsDisplayed()
	}}

	// Appear is an alias of Visible.
	Appear = Visible

	// Hidden holds for elements that are not displayed or not in the DOM.
	Hidden Condition = predicate{name: "hidden", missing: true, apply: func(el selenium.WebElement) (bool, error) {
		shown, err := el.IsDisplayed()
		if isStale(err) {
			return true, nil
		}
		return !shown, err
	}}

	// Disappear is an alias of Hidden.
	Disappear = Hidden

	// Enabled holds for elements that accept input.
	Enabled Condition = predicate{name: "enabled", apply: func(el selenium.WebElement) (bool, error) {
		return el.IsEnabled()
	}}

	// Disabled holds for elements that do not accept input.
	Disabled Condition = predicate{name: "disabled", apply: func(el selenium.WebElement) (bool, error) {
		ok, err := el.IsEnabled()
		return !ok, err
	}}

	// Selected holds for selected options, checkboxes and radio buttons.
	Selected Condition = predicate{name: "selected", apply: func(el selenium.WebElement) (bool, error) {
		return el.IsSelected()
	}}

	// Checked is an alias of Selected under its checkbox name.
	Checked Condition = predicate{name: "checked", apply: func(el selenium.WebElement) (bool, error) {
		return el.IsSelected()
	}}

	// Empty holds for elements with neither text nor value.
	Empty Condition = predicate{name: "empty", apply: func(el selenium.WebElement) (bool, error) {
		text, err := el.Text()
		if err != nil {
			return false, err
		}
		value, err := attribute(el, "value")
		if err != nil {
			return false, err
		}
		return strings.TrimSpace(text) == "" && value == "", nil
	}}
)

var spaces = regexp.MustCompile(`[\s\x{00A0}]+`)

// reduceSpaces collapses runs of whitespace, including non-breaking spaces,
// and trims the result.
func reduceSpaces(s string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

func textCondition(name, expected string, match func(actual, expected string) bool) Condition {
	return predicate{name: fmt.Sprintf("%s '%s'", name, expected), apply: func(el selenium.WebElement) (bool, error) {
		actual, err := el.Text()
		if err != nil {
			return false, err
		}
		return match(reduceSpaces(actual), reduceSpaces(expected)), nil
	}}
}

// Text holds when the element text contains text, ignoring case and
// whitespace differences.
func Text(text string) Condition {
	return textCondition("text", text, func(actual, expected string) bool {
		return strings.Contains(strings.ToLower(actual), strings.ToLower(expected))
	})
}

// TextCaseSensitive is Text with case taken into account.
func TextCaseSensitive(text string) Condition {
	return textCondition("text case sensitive", text, strings.Contains)
}

// ExactText holds when the element text equals text, ignoring case and
// whitespace differences.
func ExactText(text string) Condition {
	return textCondition("exact text", text, strings.EqualFold)
}

// ExactTextCaseSensitive is ExactText with case taken into account.
func ExactTextCaseSensitive(text string) Condition {
	return textCondition("exact text case sensitive", text, func(a, b string) bool { return a == b })
}

// MatchText holds when the element text matches the regular expression.
func MatchText(expr string) Condition {
	re, err := regexp.Compile(expr)
	return predicate{name: fmt.Sprintf("match text '%s'", expr), apply: func(el selenium.WebElement) (bool, error) {
		if err != nil {
			return false, err
		}
		actual, err := el.Text()
		if err != nil {
			return false, err
		}
		return re.MatchString(actual), nil
	}}
}

// attribute reads an attribute, reporting an absent attribute as "". Stale
// references are still reported as errors.
func attribute(el selenium.WebElement, name string) (string, error) {
	v, err := el.GetAttribute(name)
	if err != nil {
		if isStale(err) {
			return "", err
		}
		return "", nil
	}
	return v, nil
}

// Attribute holds when the element has the attribute, whatever its value.
func Attribute(name string) Condition {
	return predicate{name: "attribute " + name, apply: func(el selenium.WebElement) (bool, error) {
		_, err := el.GetAttribute(name)
		if isStale(err) {
			return false, err
		}
		return err == nil, nil
	}}
}

// AttributeValue holds when the attribute equals value.
func AttributeValue(name, value string) Condition {
	return predicate{name: fmt.Sprintf("attribute %s=%s", name, value), apply: func(el selenium.WebElement) (bool, error) {
		actual, err := el.GetAttribute(name)
		if isStale(err) {
			return false, err
		}
		return err == nil && actual == value, nil
	}}
}

// Value holds when the value attribute contains value.
func Value(value string) Condition {
	return predicate{name: fmt.Sprintf("value '%s'", value), apply: func(el selenium.WebElement) (bool, error) {
		actual, err := attribute(el, "value")
		if err != nil {
			return false, err
		}
		return strings.Contains(reduceSpaces(actual), reduceSpaces(value)), nil
	}}
}

// ID holds when the id attribute equals id.
func ID(id string) Condition { return AttributeValue("id", id) }

// Name holds when the name attribute equals name.
func Name(name string) Condition { return AttributeValue("name", name) }

// CSSClass holds when the class attribute lists class.
func CSSClass(class string) Condition {
	return predicate{name: fmt.Sprintf("css class '%s'", class), apply: func(el selenium.WebElement) (bool, error) {
		classes, err := attribute(el, "class")
		if err != nil {
			return false, err
		}
		for _, c := range strings.Fields(classes) {
			if c == class {
				return true, nil
			}
		}
		return false, nil
	}}
}

// CSSValue holds when the computed CSS property equals value.
func CSSValue(property, value string) Condition {
	return predicate{name: fmt.Sprintf("css value %s=%s", property, value), apply: func(el selenium.WebElement) (bool, error) {
		actual, err := el.CSSProperty(property)
		if err != nil {
			return false, err
		}
		return actual == value, nil
	}}
}

// Not inverts c. A missing element meets Not(c) exactly when it does not
// meet c.
func Not(c Condition) Condition {
	return predicate{
		name:    "not(" + c.Name() + ")",
		missing: !c.MissingElementSatisfies(),
		apply: func(el selenium.WebElement) (bool, error) {
			ok, err := c.Apply(el)
			if err != nil {
				return false, err
			}
			return !ok, nil
		},
	}
}

// And holds when every condition holds.
func And(name string, conds ...Condition) Condition {
	missing := len(conds) > 0
	for _, c := range conds {
		missing = missing && c.MissingElementSatisfies()
	}
	return predicate{name: name, missing: missing, apply: func(el selenium.WebElement) (bool, error) {
		for _, c := range conds {
			ok, err := c.Apply(el)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}}
}

// Or holds when at least one condition holds.
func Or(name string, conds ...Condition) Condition {
	missing := false
	for _, c := range conds {
		missing = missing || c.MissingElementSatisfies()
	}
	return predicate{name: name, missing: missing, apply: func(el selenium.WebElement) (bool, error) {
		var lastErr error
		for _, c := range conds {
			ok, err := c.Apply(el)
			if ok {
				return true, nil
			}
			if err != nil {
				lastErr = err
			}
		}
		return false, lastErr
	}}
}
