package selenide

import (
	"fmt"
	"strings"

	"github.com/tebeka/selenium"
)

// describedAttributes are the attributes shown in element snapshots, in
// order, when they are present and non-empty.
var describedAttributes = []string{
	"class", "disabled", "readonly", "href", "id", "name",
	"onclick", "onchange", "placeholder", "type", "value",
}

// describe renders a snapshot of el for failure messages, for example
// `<input id="q" type="text" displayed:false></input>`.
func describe(el selenium.WebElement) string {
	tag, err := el.TagName()
	if err != nil {
		return describeError(err)
	}
	var b strings.Builder
	b.WriteString("<" + tag)
	for _, name := range describedAttributes {
		v, err := el.GetAttribute(name)
		if err != nil {
			if isStale(err) {
				return describeError(err)
			}
			continue
		}
		if v != "" {
			fmt.Fprintf(&b, " %s=\"%s\"", name, v)
		}
	}
	if shown, err := el.IsDisplayed(); err == nil && !shown {
		b.WriteString(" displayed:false")
	}
	text, err := el.Text()
	if err != nil {
		return describeError(err)
	}
	fmt.Fprintf(&b, ">%s</%s>", reduceSpaces(text), tag)
	return b.String()
}

func describeError(err error) string {
	if isStale(err) {
		return "StaleElementReference"
	}
	return err.Error()
}
