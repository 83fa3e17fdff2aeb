package selenide

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tebeka/selenium"
)

// CollectionCondition is a named predicate over a list of elements.
type CollectionCondition interface {
	Name() string
	// Apply evaluates the condition. actual describes what was observed and
	// is shown when the condition never holds.
	Apply(els []selenium.WebElement) (ok bool, actual string, err error)
}

type collectionPredicate struct {
	name  string
	apply func([]selenium.WebElement) (bool, string, error)
}

func (p collectionPredicate) Name() string { return p.name }

func (p collectionPredicate) Apply(els []selenium.WebElement) (bool, string, error) {
	return p.apply(els)
}

func sizeCondition(op string, n int, holds func(size int) bool) CollectionCondition {
	return collectionPredicate{
		name: fmt.Sprintf("size %s %d", op, n),
		apply: func(els []selenium.WebElement) (bool, string, error) {
			return holds(len(els)), strconv.Itoa(len(els)), nil
		},
	}
}

// Size holds when the collection has exactly n elements.
func Size(n int) CollectionCondition {
	return sizeCondition("=", n, func(size int) bool { return size == n })
}

// SizeGreaterThan holds when the collection has more than n elements.
func SizeGreaterThan(n int) CollectionCondition {
	return sizeCondition(">", n, func(size int) bool { return size > n })
}

// SizeLessThan holds when the collection has fewer than n elements.
func SizeLessThan(n int) CollectionCondition {
	return sizeCondition("<", n, func(size int) bool { return size < n })
}

// EmptyCollection holds when the collection has no elements.
var EmptyCollection = Size(0)

func textsCondition(name string, expected []string, match func(actual, expected string) bool) CollectionCondition {
	return collectionPredicate{
		name: fmt.Sprintf("%s [%s]", name, strings.Join(expected, ", ")),
		apply: func(els []selenium.WebElement) (bool, string, error) {
			actual, err := texts(els)
			if err != nil {
				return false, "", err
			}
			shown := "[" + strings.Join(actual, ", ") + "]"
			if len(actual) != len(expected) {
				return false, shown, nil
			}
			for i := range actual {
				if !match(reduceSpaces(actual[i]), reduceSpaces(expected[i])) {
					return false, shown, nil
				}
			}
			return true, shown, nil
		},
	}
}

// Texts holds when the collection has one element per text and each element
// text contains the matching one, ignoring case.
func Texts(expected ...string) CollectionCondition {
	return textsCondition("texts", expected, func(actual, expected string) bool {
		return strings.Contains(strings.ToLower(actual), strings.ToLower(expected))
	})
}

// ExactTexts holds when the element texts equal expected, ignoring case.
func ExactTexts(expected ...string) CollectionCondition {
	return textsCondition("exact texts", expected, strings.EqualFold)
}
