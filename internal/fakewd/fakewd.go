// Package fakewd provides an in-memory WebDriver session over a small
// element tree, for tests that must not start a browser.
//
// Lookups understand the subset of CSS and XPath the library issues: simple
// compound CSS selectors with descendant combinators, and XPath steps of the
// form .//tag[predicate].
package fakewd

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/tebeka/selenium"
)

// Errors reported the way WebDriver servers word them.
var (
	errNoSuchElement   = errors.New("no such element: Unable to locate element")
	errStale           = errors.New("stale element reference: element is not attached to the page document")
	errNotInteractable = errors.New("element not interactable")
	errNilValue        = errors.New("nil return value")
)

// Script is a recorded ExecuteScript call.
type Script struct {
	Script string
	Args   []interface{}
}

// Driver is a fake session. Methods it does not implement panic through the
// nil embedded interface.
type Driver struct {
	selenium.WebDriver

	mu      sync.Mutex
	root    *Element
	pages   map[string]*Element
	url     string
	title   string
	nextID  int
	scripts []Script
	legacy  []string

	// Session is the session id. It defaults to "fake-session".
	Session string
	// Caps is returned by Capabilities.
	Caps selenium.Capabilities
	// OnScript answers ExecuteScript calls; nil answers nil.
	OnScript func(script string, args []interface{}) (interface{}, error)
	// Shot is returned by Screenshot.
	Shot []byte
}

// NewDriver returns a session showing root.
func NewDriver(root *Element) *Driver {
	d := &Driver{
		pages:   map[string]*Element{},
		Session: "fake-session",
		Caps:    selenium.Capabilities{"browserName": "chrome"},
		Shot:    []byte("\x89PNG fake"),
	}
	d.show(root)
	return d
}

// Serve makes Get(url) show root.
func (d *Driver) Serve(url string, root *Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pages[url] = root
}

func (d *Driver) show(root *Element) {
	if root == nil {
		root = New("html")
	}
	d.root = root
	d.adopt(root, nil)
}

// adopt links e and its subtree to d. Callers hold d.mu, or own e alone.
func (d *Driver) adopt(e *Element, parent *Element) {
	e.d = d
	e.parent = parent
	e.detached = false
	if e.id == "" {
		d.nextID++
		e.id = fmt.Sprintf("fake-%d", d.nextID)
	}
	for _, c := range e.children {
		d.adopt(c, e)
	}
}

// Update runs f with the document locked, so tests can change elements
// while the library polls them.
func (d *Driver) Update(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	f()
}

// Scripts returns the recorded ExecuteScript calls.
func (d *Driver) Scripts() []Script {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Script(nil), d.scripts...)
}

// Legacy returns the legacy mouse commands received, e.g. "buttondown".
func (d *Driver) Legacy() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.legacy...)
}

func (d *Driver) SessionID() string { return d.Session }

func (d *Driver) Capabilities() (selenium.Capabilities, error) { return d.Caps, nil }

func (d *Driver) Get(url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.url = url
	if root, ok := d.pages[url]; ok {
		if d.root != nil && d.root != root {
			d.root.detach()
		}
		d.show(root)
	}
	return nil
}

func (d *Driver) CurrentURL() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url, nil
}

// SetTitle sets the page title.
func (d *Driver) SetTitle(title string) { d.Update(func() { d.title = title }) }

func (d *Driver) Title() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.title, nil
}

func (d *Driver) PageSource() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.root.html(), nil
}

func (d *Driver) Screenshot() ([]byte, error) { return d.Shot, nil }

func (d *Driver) SetPageLoadTimeout(time.Duration) error { return nil }

func (d *Driver) ResizeWindow(string, int, int) error { return nil }

func (d *Driver) Refresh() error { return nil }

func (d *Driver) Back() error { return nil }

func (d *Driver) Quit() error { return nil }

func (d *Driver) record(cmd string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.legacy = append(d.legacy, cmd)
	return nil
}

func (d *Driver) ButtonDown() error { return d.record("buttondown") }

func (d *Driver) ButtonUp() error { return d.record("buttonup") }

func (d *Driver) DoubleClick() error { return d.record("doubleclick") }

func (d *Driver) Click(button int) error { return d.record(fmt.Sprintf("click %d", button)) }

func (d *Driver) FindElement(by, value string) (selenium.WebElement, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.root.findFirst(by, value, true)
}

func (d *Driver) FindElements(by, value string) ([]selenium.WebElement, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.root.findAll(by, value, true)
}

func (d *Driver) ExecuteScript(script string, args []interface{}) (interface{}, error) {
	d.mu.Lock()
	d.scripts = append(d.scripts, Script{Script: script, Args: args})
	on := d.OnScript
	d.mu.Unlock()
	if on == nil {
		return nil, nil
	}
	return on(script, args)
}

// ExecuteScriptRaw runs the script through ExecuteScript and wraps the result
// as a server reply.
func (d *Driver) ExecuteScriptRaw(script string, args []interface{}) ([]byte, error) {
	v, err := d.ExecuteScript(script, args)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]interface{}{"value": v})
}

// DecodeElements decodes elements returned by ExecuteScriptRaw.
func (d *Driver) DecodeElements(data []byte) ([]selenium.WebElement, error) {
	var reply struct {
		Value []map[string]string
	}
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []selenium.WebElement
	for _, ref := range reply.Value {
		id := ref[elementKey]
		el := d.root.byID(id)
		if el == nil {
			return nil, errStale
		}
		out = append(out, el)
	}
	return out, nil
}

const elementKey = "element-6066-11e4-a52e-4f735466cecf"

// Element is a node of the fake document.
type Element struct {
	selenium.WebElement

	d        *Driver
	id       string
	parent   *Element
	detached bool

	tag      string
	text     string
	attrs    map[string]string
	hidden   bool
	selected bool
	children []*Element

	// OnClick runs after a click, with the document unlocked.
	OnClick func(*Element)
}

// New returns an element with children.
func New(tag string, children ...*Element) *Element {
	return &Element{tag: tag, attrs: map[string]string{}, children: children}
}

// Attr sets an attribute.
func (e *Element) Attr(name, value string) *Element {
	e.attrs[name] = value
	return e
}

// WithText sets the element's own text.
func (e *Element) WithText(text string) *Element {
	e.text = text
	return e
}

// WithChildren appends children.
func (e *Element) WithChildren(children ...*Element) *Element {
	e.children = append(e.children, children...)
	return e
}

// Hide makes the element and its subtree invisible.
func (e *Element) Hide() *Element {
	e.hidden = true
	return e
}

// Select marks the element, usually an option, as selected.
func (e *Element) Select() *Element {
	e.selected = true
	return e
}

// Ref is the element's WebDriver reference, as scripts receive it.
func (e *Element) Ref() map[string]string { return map[string]string{elementKey: e.id} }

// SetText changes the own text of a live element.
func (e *Element) SetText(text string) { e.d.Update(func() { e.text = text }) }

// SetHidden changes the visibility of a live element.
func (e *Element) SetHidden(hidden bool) { e.d.Update(func() { e.hidden = hidden }) }

// SetAttr changes an attribute of a live element.
func (e *Element) SetAttr(name, value string) { e.d.Update(func() { e.attrs[name] = value }) }

// AppendChild adds c under a live element.
func (e *Element) AppendChild(c *Element) {
	e.d.Update(func() {
		e.children = append(e.children, c)
		e.d.adopt(c, e)
	})
}

// Remove detaches a live element; references to it become stale.
func (e *Element) Remove() {
	e.d.Update(func() {
		if p := e.parent; p != nil {
			for i, c := range p.children {
				if c == e {
					p.children = append(p.children[:i:i], p.children[i+1:]...)
					break
				}
			}
		}
		e.detach()
	})
}

func (e *Element) detach() {
	e.detached = true
	for _, c := range e.children {
		c.detach()
	}
}

// IsSelectedNow reports the selection state without a session call.
func (e *Element) IsSelectedNow() bool {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	return e.selected
}

// Value returns the value attribute without a session call.
func (e *Element) Value() string {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	return e.attrs["value"]
}

// MarshalJSON encodes the element reference.
func (e *Element) MarshalJSON() ([]byte, error) { return json.Marshal(e.Ref()) }

func (e *Element) live() error {
	if e.detached {
		return errStale
	}
	return nil
}

func (e *Element) displayed() bool {
	for n := e; n != nil; n = n.parent {
		if n.hidden {
			return false
		}
	}
	return true
}

func (e *Element) visibleText() string {
	if !e.displayed() {
		return ""
	}
	var parts []string
	if t := normalize(e.text); t != "" {
		parts = append(parts, t)
	}
	for _, c := range e.children {
		if t := c.visibleText(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func (e *Element) html() string {
	var b strings.Builder
	b.WriteString("<" + e.tag)
	for k, v := range e.attrs {
		fmt.Fprintf(&b, " %s=%q", k, v)
	}
	b.WriteString(">" + e.text)
	for _, c := range e.children {
		b.WriteString(c.html())
	}
	b.WriteString("</" + e.tag + ">")
	return b.String()
}

func (e *Element) byID(id string) *Element {
	if e.id == id {
		return e
	}
	for _, c := range e.children {
		if found := c.byID(id); found != nil {
			return found
		}
	}
	return nil
}

func (e *Element) descendants() []*Element {
	var out []*Element
	for _, c := range e.children {
		out = append(out, c)
		out = append(out, c.descendants()...)
	}
	return out
}

func (e *Element) Click() error {
	d := e.d
	d.mu.Lock()
	if err := e.live(); err != nil {
		d.mu.Unlock()
		return err
	}
	if !e.displayed() {
		d.mu.Unlock()
		return errNotInteractable
	}
	if e.tag == "option" {
		if p := e.parent; p != nil {
			if _, multi := p.attrs["multiple"]; !multi {
				for _, o := range p.children {
					o.selected = false
				}
			}
		}
		e.selected = true
	}
	if t := e.attrs["type"]; t == "checkbox" || t == "radio" {
		e.selected = !e.selected
	}
	on := e.OnClick
	d.mu.Unlock()
	if on != nil {
		on(e)
	}
	return nil
}

func (e *Element) SendKeys(keys string) error {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if err := e.live(); err != nil {
		return err
	}
	if !e.displayed() {
		return errNotInteractable
	}
	var typed strings.Builder
	for _, r := range keys {
		if r >= 0xE000 && r <= 0xF8FF {
			continue
		}
		typed.WriteRune(r)
	}
	e.attrs["value"] += typed.String()
	return nil
}

func (e *Element) Clear() error {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if err := e.live(); err != nil {
		return err
	}
	if !e.displayed() {
		return errNotInteractable
	}
	e.attrs["value"] = ""
	return nil
}

func (e *Element) MoveTo(int, int) error {
	e.d.mu.Lock()
	if err := e.live(); err != nil {
		e.d.mu.Unlock()
		return err
	}
	e.d.mu.Unlock()
	return e.d.record("moveto " + e.id)
}

func (e *Element) FindElement(by, value string) (selenium.WebElement, error) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if err := e.live(); err != nil {
		return nil, err
	}
	return e.findFirst(by, value, false)
}

func (e *Element) FindElements(by, value string) ([]selenium.WebElement, error) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if err := e.live(); err != nil {
		return nil, err
	}
	return e.findAll(by, value, false)
}

func (e *Element) TagName() (string, error) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	return e.tag, e.live()
}

func (e *Element) Text() (string, error) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if err := e.live(); err != nil {
		return "", err
	}
	return e.visibleText(), nil
}

func (e *Element) IsSelected() (bool, error) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	return e.selected, e.live()
}

func (e *Element) IsEnabled() (bool, error) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	_, disabled := e.attrs["disabled"]
	return !disabled, e.live()
}

func (e *Element) IsDisplayed() (bool, error) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if err := e.live(); err != nil {
		return false, err
	}
	return e.displayed(), nil
}

func (e *Element) GetAttribute(name string) (string, error) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if err := e.live(); err != nil {
		return "", err
	}
	v, ok := e.attrs[name]
	if !ok {
		return "", errNilValue
	}
	return v, nil
}

func (e *Element) CSSProperty(name string) (string, error) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if err := e.live(); err != nil {
		return "", err
	}
	if name == "display" {
		if e.hidden {
			return "none", nil
		}
		return "block", nil
	}
	return e.attrs["style:"+name], nil
}

func (e *Element) Screenshot(bool) ([]byte, error) { return e.d.Shot, nil }

func (e *Element) findFirst(by, value string, includeSelf bool) (selenium.WebElement, error) {
	els, err := e.findAll(by, value, includeSelf)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: {%q: %q}", errNoSuchElement, by, value)
	}
	return els[0], nil
}

func (e *Element) findAll(by, value string, includeSelf bool) ([]selenium.WebElement, error) {
	var found []*Element
	if by == selenium.ByXPATH && value == ".." {
		if e.parent != nil {
			found = []*Element{e.parent}
		}
	} else {
		match, err := matcher(by, value)
		if err != nil {
			return nil, err
		}
		candidates := e.descendants()
		if includeSelf {
			candidates = append([]*Element{e}, candidates...)
		}
		found = match(e, candidates)
	}
	out := make([]selenium.WebElement, len(found))
	for i, f := range found {
		out[i] = f
	}
	return out, nil
}

// matcher returns the function selecting the elements matching a locator
// among candidates in document order.
func matcher(by, value string) (func(ctx *Element, candidates []*Element) []*Element, error) {
	filter := func(pred func(*Element) bool) func(*Element, []*Element) []*Element {
		return func(_ *Element, candidates []*Element) []*Element {
			var out []*Element
			for _, c := range candidates {
				if pred(c) {
					out = append(out, c)
				}
			}
			return out
		}
	}
	switch by {
	case selenium.ByID:
		return filter(func(c *Element) bool { return c.attrs["id"] == value }), nil
	case selenium.ByName:
		return filter(func(c *Element) bool { return c.attrs["name"] == value }), nil
	case selenium.ByTagName:
		return filter(func(c *Element) bool { return c.tag == value }), nil
	case selenium.ByClassName:
		return filter(func(c *Element) bool { return hasClass(c, value) }), nil
	case selenium.ByLinkText:
		return filter(func(c *Element) bool { return c.tag == "a" && c.visibleText() == value }), nil
	case selenium.ByPartialLinkText:
		return filter(func(c *Element) bool { return c.tag == "a" && strings.Contains(c.visibleText(), value) }), nil
	case selenium.ByCSSSelector:
		return cssMatcher(value)
	case selenium.ByXPATH:
		pred, err := xpathPredicate(value)
		if err != nil {
			return nil, err
		}
		return filter(pred), nil
	}
	return nil, fmt.Errorf("invalid selector: unknown strategy %q", by)
}

func hasClass(e *Element, class string) bool {
	for _, c := range strings.Fields(e.attrs["class"]) {
		if c == class {
			return true
		}
	}
	return false
}

var (
	compoundExpression = regexp.MustCompile(`^([a-zA-Z][\w-]*|\*)?((#[\w-]+)|(\.[\w-]+)|(\[[\w-]+(='[^']*')?\])|(:checked))*$`)
	simplePart         = regexp.MustCompile(`#[\w-]+|\.[\w-]+|\[[\w-]+(?:='[^']*')?\]|:checked`)
)

// cssMatcher supports compound selectors (tag, #id, .class, [attr],
// [attr='v'], :checked) joined by descendant combinators.
func cssMatcher(selector string) (func(*Element, []*Element) []*Element, error) {
	var steps []func(*Element) bool
	for _, part := range strings.Fields(selector) {
		if !compoundExpression.MatchString(part) {
			return nil, fmt.Errorf("invalid selector: An invalid or illegal selector was specified: %q", selector)
		}
		steps = append(steps, compound(part))
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("invalid selector: empty selector")
	}
	return func(_ *Element, candidates []*Element) []*Element {
		var out []*Element
		for _, c := range candidates {
			if matchesChain(c, steps) {
				out = append(out, c)
			}
		}
		return out
	}, nil
}

// matchesChain reports whether c matches the last step and its ancestors
// match the earlier steps in order.
func matchesChain(c *Element, steps []func(*Element) bool) bool {
	last := len(steps) - 1
	if !steps[last](c) {
		return false
	}
	i := last - 1
	for n := c.parent; n != nil && i >= 0; n = n.parent {
		if steps[i](n) {
			i--
		}
	}
	return i < 0
}

func compound(part string) func(*Element) bool {
	tag := part
	if i := strings.IndexAny(part, "#.[:"); i >= 0 {
		tag = part[:i]
	}
	simples := simplePart.FindAllString(part, -1)
	return func(e *Element) bool {
		if tag != "" && tag != "*" && e.tag != tag {
			return false
		}
		for _, s := range simples {
			switch {
			case s[0] == '#':
				if e.attrs["id"] != s[1:] {
					return false
				}
			case s[0] == '.':
				if !hasClass(e, s[1:]) {
					return false
				}
			case s == ":checked":
				if !e.selected {
					return false
				}
			default:
				name, value, hasValue := strings.Cut(strings.Trim(s, "[]"), "=")
				v, ok := e.attrs[name]
				if !ok || (hasValue && v != strings.Trim(value, "'")) {
					return false
				}
			}
		}
		return true
	}
}

var (
	xpathStep      = regexp.MustCompile(`^\.?//(\*|[\w-]+)(?:\[(.+)\])?$`)
	xpathAttr      = regexp.MustCompile(`^@([\w:-]+)\s*=\s*['"](.*)['"]$`)
	xpathNormEq    = regexp.MustCompile(`^normalize-space\(\.\)\s*=\s*['"](.*)['"]$`)
	xpathContains  = regexp.MustCompile(`^contains\(\.,\s*['"](.*)['"]\)$`)
	xpathOwnText   = regexp.MustCompile(`(?s)^\.//\*/text\(\)\[(normalize-space|contains\(normalize-space)\(.*(?:=|,) ['"](.*)['"]\)?\]/parent::\*$`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

func normalize(s string) string {
	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(s, " "))
}

// xpathPredicate supports .//tag[@attr='v'], .//tag[normalize-space(.)='v'],
// .//tag[contains(., 'v')] and own-text lookups.
func xpathPredicate(expr string) (func(*Element) bool, error) {
	if m := xpathOwnText.FindStringSubmatch(expr); m != nil {
		want := m[2]
		if m[1] == "normalize-space" {
			return func(e *Element) bool { return normalize(e.text) == want }, nil
		}
		return func(e *Element) bool { return strings.Contains(normalize(e.text), want) }, nil
	}
	m := xpathStep.FindStringSubmatch(expr)
	if m == nil {
		return nil, fmt.Errorf("invalid selector: unsupported xpath %q", expr)
	}
	tag, cond := m[1], m[2]
	tagOK := func(e *Element) bool { return tag == "*" || e.tag == tag }
	if cond == "" {
		return tagOK, nil
	}
	if a := xpathAttr.FindStringSubmatch(cond); a != nil {
		return func(e *Element) bool {
			v, ok := e.attrs[a[1]]
			return tagOK(e) && ok && v == a[2]
		}, nil
	}
	if a := xpathNormEq.FindStringSubmatch(cond); a != nil {
		return func(e *Element) bool { return tagOK(e) && normalize(e.visibleText()) == a[1] }, nil
	}
	if a := xpathContains.FindStringSubmatch(cond); a != nil {
		return func(e *Element) bool { return tagOK(e) && strings.Contains(e.visibleText(), a[1]) }, nil
	}
	return nil, fmt.Errorf("invalid selector: unsupported xpath predicate %q", cond)
}
