package selenide

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/tebeka/selenium"
)

// Page binds the fields of the struct page points to. Exported fields tagged
// `find:"<how>=<what>"` get lazily resolved elements:
//
//	type SearchPage struct {
//		Query   *selenide.Element    `find:"id=q"`
//		Results *selenide.Collection `find:"css=.result"`
//		Header  selenium.WebElement  `find:"tagName=h1"`
//	}
//
// Supported hows are id, css, tagName, xpath, name, className, linkText and
// partialLinkText. Fields may be *Element, *Collection or
// selenium.WebElement; the latter re-locate the element on every call.
func (d *Driver) Page(page interface{}) error {
	v := reflect.ValueOf(page)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("page object must be a pointer to a struct, got %T", page)
	}
	v = v.Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, ok := f.Tag.Lookup("find")
		if !ok {
			continue
		}
		if f.PkgPath != "" {
			return fmt.Errorf("%s.%s: tagged field must be exported", t.Name(), f.Name)
		}
		by, err := parseFindTag(tag)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", t.Name(), f.Name, err)
		}
		var bound interface{}
		switch f.Type {
		case elementType:
			bound = d.FindBy(by)
		case collectionType:
			bound = d.FindAllBy(by)
		case webElementType:
			bound = selenium.WebElement(&lazyElement{d: d, by: by})
		default:
			return fmt.Errorf("%s.%s: unsupported field type %s", t.Name(), f.Name, f.Type)
		}
		v.Field(i).Set(reflect.ValueOf(bound))
	}
	return nil
}

var (
	elementType    = reflect.TypeOf((*Element)(nil))
	collectionType = reflect.TypeOf((*Collection)(nil))
	webElementType = reflect.TypeOf((*selenium.WebElement)(nil)).Elem()
)

var findHows = map[string]func(string) By{
	"id":              ByID,
	"css":             ByCSS,
	"tagName":         ByTagName,
	"xpath":           ByXPath,
	"name":            ByName,
	"className":       ByClassName,
	"linkText":        ByLinkText,
	"partialLinkText": ByPartialLinkText,
}

func parseFindTag(tag string) (By, error) {
	i := strings.Index(tag, "=")
	if i <= 0 || i == len(tag)-1 {
		return By{}, fmt.Errorf(`find tag %q must be of the form "how=what"`, tag)
	}
	how, what := tag[:i], tag[i+1:]
	mk, ok := findHows[how]
	if !ok {
		return By{}, fmt.Errorf("find tag %q: unknown how %q", tag, how)
	}
	return mk(what), nil
}

// lazyElement is a raw WebElement that locates the element matching by on
// every call.
type lazyElement struct {
	d  *Driver
	by By
}

// Locator returns the locator the element is found with.
func (l *lazyElement) Locator() By { return l.by }

func (l *lazyElement) String() string { return "{" + l.by.String() + "}" }

func (l *lazyElement) resolve() (selenium.WebElement, error) {
	return l.d.findOne(nil, l.by)
}

func (l *lazyElement) do(f func(selenium.WebElement) error) error {
	el, err := l.resolve()
	if err != nil {
		return err
	}
	return f(el)
}

func (l *lazyElement) str(f func(selenium.WebElement) (string, error)) (string, error) {
	el, err := l.resolve()
	if err != nil {
		return "", err
	}
	return f(el)
}

func (l *lazyElement) boolean(f func(selenium.WebElement) (bool, error)) (bool, error) {
	el, err := l.resolve()
	if err != nil {
		return false, err
	}
	return f(el)
}

func (l *lazyElement) Click() error {
	return l.do(func(el selenium.WebElement) error { return el.Click() })
}

func (l *lazyElement) SendKeys(keys string) error {
	return l.do(func(el selenium.WebElement) error { return el.SendKeys(keys) })
}

func (l *lazyElement) Submit() error {
	return l.do(func(el selenium.WebElement) error { return el.Submit() })
}

func (l *lazyElement) Clear() error {
	return l.do(func(el selenium.WebElement) error { return el.Clear() })
}

func (l *lazyElement) MoveTo(xOffset, yOffset int) error {
	return l.do(func(el selenium.WebElement) error { return el.MoveTo(xOffset, yOffset) })
}

func (l *lazyElement) FindElement(by, value string) (selenium.WebElement, error) {
	el, err := l.resolve()
	if err != nil {
		return nil, err
	}
	return el.FindElement(by, value)
}

func (l *lazyElement) FindElements(by, value string) ([]selenium.WebElement, error) {
	el, err := l.resolve()
	if err != nil {
		return nil, err
	}
	return el.FindElements(by, value)
}

func (l *lazyElement) TagName() (string, error) {
	return l.str(func(el selenium.WebElement) (string, error) { return el.TagName() })
}

func (l *lazyElement) Text() (string, error) {
	return l.str(func(el selenium.WebElement) (string, error) { return el.Text() })
}

func (l *lazyElement) IsSelected() (bool, error) {
	return l.boolean(func(el selenium.WebElement) (bool, error) { return el.IsSelected() })
}

func (l *lazyElement) IsEnabled() (bool, error) {
	return l.boolean(func(el selenium.WebElement) (bool, error) { return el.IsEnabled() })
}

func (l *lazyElement) IsDisplayed() (bool, error) {
	return l.boolean(func(el selenium.WebElement) (bool, error) { return el.IsDisplayed() })
}

func (l *lazyElement) GetAttribute(name string) (string, error) {
	return l.str(func(el selenium.WebElement) (string, error) { return el.GetAttribute(name) })
}

func (l *lazyElement) Location() (*selenium.Point, error) {
	el, err := l.resolve()
	if err != nil {
		return nil, err
	}
	return el.Location()
}

func (l *lazyElement) LocationInView() (*selenium.Point, error) {
	el, err := l.resolve()
	if err != nil {
		return nil, err
	}
	return el.LocationInView()
}

func (l *lazyElement) Size() (*selenium.Size, error) {
	el, err := l.resolve()
	if err != nil {
		return nil, err
	}
	return el.Size()
}

func (l *lazyElement) CSSProperty(name string) (string, error) {
	return l.str(func(el selenium.WebElement) (string, error) { return el.CSSProperty(name) })
}

func (l *lazyElement) Screenshot(scroll bool) ([]byte, error) {
	el, err := l.resolve()
	if err != nil {
		return nil, err
	}
	return el.Screenshot(scroll)
}

// MarshalJSON encodes the element currently matching the locator, so lazy
// elements can be passed to scripts.
func (l *lazyElement) MarshalJSON() ([]byte, error) {
	el, err := l.resolve()
	if err != nil {
		return nil, err
	}
	return json.Marshal(el)
}
