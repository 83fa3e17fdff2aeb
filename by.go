package selenide

import (
	_ "embed"
	"strings"

	"github.com/golang/glog"
	"github.com/tebeka/selenium"
)

// shadowCSS is the locator strategy for elements inside shadow roots. It is
// not a WebDriver strategy: lookups run findInShadowRoots in the browser.
const shadowCSS = "shadow css"

//go:embed find_in_shadow_roots.js
var findInShadowRoots string

// By is a locator: a WebDriver search strategy and its value.
type By struct {
	Using string
	Value string

	// hosts are the shadow hosts to descend through for shadowCSS.
	hosts []string
	// label overrides the rendered descriptor.
	label string
}

// Methods by which to find elements, named the way failure messages show them.
var strategyNames = map[string]string{
	selenium.ByCSSSelector:     "By.selector",
	selenium.ByID:              "By.id",
	selenium.ByTagName:         "By.tagName",
	selenium.ByXPATH:           "By.xpath",
	selenium.ByName:            "By.name",
	selenium.ByClassName:       "By.className",
	selenium.ByLinkText:        "By.linkText",
	selenium.ByPartialLinkText: "By.partialLinkText",
	shadowCSS:                  "By.shadowCss",
}

// String renders the locator as failure messages show it, e.g.
// "By.selector: h2".
func (b By) String() string {
	if b.label != "" {
		return b.label
	}
	name, ok := strategyNames[b.Using]
	if !ok {
		name = "By." + b.Using
	}
	if b.Using == shadowCSS {
		return name + ": " + strings.Join(b.hosts, " -> ") + " -> " + b.Value
	}
	return name + ": " + b.Value
}

// ByCSS locates elements by CSS selector.
func ByCSS(selector string) By { return By{Using: selenium.ByCSSSelector, Value: selector} }

// ByID locates elements by their id attribute.
func ByID(id string) By { return By{Using: selenium.ByID, Value: id} }

// ByTagName locates elements by tag name.
func ByTagName(tag string) By { return By{Using: selenium.ByTagName, Value: tag} }

// ByXPath locates elements by XPath expression.
func ByXPath(xpath string) By { return By{Using: selenium.ByXPATH, Value: xpath} }

// ByName locates elements by their name attribute.
func ByName(name string) By { return By{Using: selenium.ByName, Value: name} }

// ByClassName locates elements by a single CSS class.
func ByClassName(class string) By { return By{Using: selenium.ByClassName, Value: class} }

// ByLinkText locates anchors by their exact visible text.
func ByLinkText(text string) By { return By{Using: selenium.ByLinkText, Value: text} }

// ByPartialLinkText locates anchors containing the text.
func ByPartialLinkText(text string) By { return By{Using: selenium.ByPartialLinkText, Value: text} }

// ByText locates elements whose own whitespace-normalized text equals text.
func ByText(text string) By {
	return By{
		Using: selenium.ByXPATH,
		Value: ".//*/text()[normalize-space(translate(string(.), '\t\n\r ', '    ')) = " + quoteXPath(text) + "]/parent::*",
		label: "by text: " + text,
	}
}

// WithText locates elements whose own text contains text.
func WithText(text string) By {
	return By{
		Using: selenium.ByXPATH,
		Value: ".//*/text()[contains(normalize-space(translate(string(.), '\t\n\r ', '    ')), " + quoteXPath(text) + ")]/parent::*",
		label: "with text: " + text,
	}
}

// ByShadowCSS locates elements matching target inside the shadow root of
// host, descending through innerHosts' shadow roots in order.
func ByShadowCSS(target, host string, innerHosts ...string) By {
	return By{
		Using: shadowCSS,
		Value: target,
		hosts: append([]string{host}, innerHosts...),
	}
}

// quoteXPath returns s as an XPath string literal.
func quoteXPath(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	return "concat('" + strings.Join(parts, `', "'", '`) + "')"
}

// searchContext is satisfied by both selenium.WebDriver and
// selenium.WebElement.
type searchContext interface {
	FindElement(by, value string) (selenium.WebElement, error)
	FindElements(by, value string) ([]selenium.WebElement, error)
}

// findOne locates the first element matching by below parent, or below the
// document when parent is nil.
func (d *Driver) findOne(parent selenium.WebElement, by By) (selenium.WebElement, error) {
	if by.Using == shadowCSS {
		els, err := d.findInShadows(parent, by)
		if err != nil {
			return nil, err
		}
		if len(els) == 0 {
			return nil, errElementNotFound
		}
		return els[0], nil
	}
	var ctx searchContext = d.wd
	if parent != nil {
		ctx = parent
	}
	glog.V(2).Infof("find %s", by)
	return ctx.FindElement(by.Using, by.Value)
}

// findAll locates every element matching by below parent, or below the
// document when parent is nil.
func (d *Driver) findAll(parent selenium.WebElement, by By) ([]selenium.WebElement, error) {
	if by.Using == shadowCSS {
		return d.findInShadows(parent, by)
	}
	var ctx searchContext = d.wd
	if parent != nil {
		ctx = parent
	}
	glog.V(2).Infof("find all %s", by)
	els, err := ctx.FindElements(by.Using, by.Value)
	if isNotFound(err) {
		return nil, nil
	}
	return els, err
}

func (d *Driver) findInShadows(parent selenium.WebElement, by By) ([]selenium.WebElement, error) {
	var root interface{}
	if parent != nil {
		root = parent
	}
	raw, err := d.wd.ExecuteScriptRaw(findInShadowRoots, []interface{}{by.Value, by.hosts, root})
	if err != nil {
		return nil, err
	}
	return d.wd.DecodeElements(raw)
}
