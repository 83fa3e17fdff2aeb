package selenide

import (
	"fmt"
	"strings"

	"github.com/tebeka/selenium"
)

// SelectOption selects the options of a <select> whose visible text matches
// each of texts. The select must exist; each option is waited for in turn.
func (e *Element) SelectOption(texts ...string) error {
	return e.selectEach(texts, func(text string) *Element {
		return e.option(fmt.Sprintf("option[text:%s]", text), func(sel selenium.WebElement) ([]selenium.WebElement, error) {
			return optionsByText(sel, text)
		})
	})
}

// SelectOptionByValue selects the options whose value attribute equals each
// of values.
func (e *Element) SelectOptionByValue(values ...string) error {
	return e.selectEach(values, func(value string) *Element {
		return e.option(fmt.Sprintf("option[value:%s]", value), func(sel selenium.WebElement) ([]selenium.WebElement, error) {
			return sel.FindElements(selenium.ByXPATH, ".//option[@value = "+quoteXPath(value)+"]")
		})
	})
}

// SelectOptionByIndex selects the options at each of the zero-based indexes,
// counted in document order.
func (e *Element) SelectOptionByIndex(indexes ...int) error {
	for _, i := range indexes {
		if err := e.Should(Exist); err != nil {
			return err
		}
		i := i
		opt := e.option(fmt.Sprintf("option[index:%d]", i), func(sel selenium.WebElement) ([]selenium.WebElement, error) {
			all, err := sel.FindElements(selenium.ByTagName, "option")
			if err != nil || i < 0 || i >= len(all) {
				return nil, err
			}
			return all[i : i+1], nil
		})
		if err := opt.await("", Exist, false, selectOption); err != nil {
			return err
		}
	}
	return nil
}

// SelectedOption returns the first selected option.
func (e *Element) SelectedOption() *Element {
	return e.child(ByCSS("option:checked"), "option:checked")
}

// SelectedOptionText waits until the select exists and returns the text of
// its selected option.
func (e *Element) SelectedOptionText() (string, error) {
	if err := e.Should(Exist); err != nil {
		return "", err
	}
	return e.SelectedOption().Text()
}

func (e *Element) selectEach(keys []string, option func(string) *Element) error {
	for _, k := range keys {
		if err := e.Should(Exist); err != nil {
			return err
		}
		if err := option(k).await("", Exist, false, selectOption); err != nil {
			return err
		}
	}
	return nil
}

// option returns the first option of the select that find yields.
func (e *Element) option(label string, find func(sel selenium.WebElement) ([]selenium.WebElement, error)) *Element {
	return &Element{
		d:             e.d,
		desc:          e.desc + "/" + label,
		snapshot:      e.childSnapshot(label),
		wait:          e.wait,
		customTimeout: e.customTimeout,
		locate: func() (selenium.WebElement, error) {
			sel, err := e.locate()
			if err != nil {
				return nil, err
			}
			opts, err := find(sel)
			if err != nil {
				return nil, err
			}
			if len(opts) == 0 {
				return nil, errElementNotFound
			}
			return opts[0], nil
		},
	}
}

func selectOption(opt selenium.WebElement) error {
	selected, err := opt.IsSelected()
	if err != nil {
		return err
	}
	if selected {
		return nil
	}
	return opt.Click()
}

// optionsByText finds options by their normalized text, falling back to a
// trimmed comparison over the options containing the longest word of text.
func optionsByText(sel selenium.WebElement, text string) ([]selenium.WebElement, error) {
	opts, err := sel.FindElements(selenium.ByXPATH, ".//option[normalize-space(.) = "+quoteXPath(text)+"]")
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if len(opts) > 0 || !strings.Contains(text, " ") {
		return opts, nil
	}
	var candidates []selenium.WebElement
	if word := longestWord(text); word == "" {
		candidates, err = sel.FindElements(selenium.ByTagName, "option")
	} else {
		candidates, err = sel.FindElements(selenium.ByXPATH, ".//option[contains(., "+quoteXPath(word)+")]")
	}
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	trimmed := strings.TrimSpace(text)
	var matched []selenium.WebElement
	for _, o := range candidates {
		t, err := o.Text()
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(t) == trimmed {
			matched = append(matched, o)
		}
	}
	return matched, nil
}

func longestWord(s string) string {
	var result string
	for _, t := range strings.Split(s, " ") {
		if len(t) > len(result) {
			result = t
		}
	}
	return result
}
