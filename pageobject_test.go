package selenide

import (
	"strings"
	"testing"

	"github.com/tebeka/selenium"

	"github.com/wanmail/selenide/internal/fakewd"
)

type heroPage struct {
	Title   *Element            `find:"css=h1"`
	Heroes  *Collection         `find:"xpath=.//option"`
	Raw     selenium.WebElement `find:"name=hero"`
	Items   *Collection         `find:"tagName=li"`
	Ignored string
}

func TestPageObject(t *testing.T) {
	d, wd, _ := newTestDriver(t, pageWithSelects(), testConfig())
	var page heroPage
	if err := d.Page(&page); err != nil {
		t.Fatalf("Page() returned error: %v", err)
	}
	if got, want := page.Title.String(), "{By.selector: h1}"; got != want {
		t.Errorf("Title.String() = %q, want %q", got, want)
	}
	if err := page.Heroes.ShouldHave(Size(4)); err != nil {
		t.Errorf("Heroes.ShouldHave(Size(4)) returned error: %v", err)
	}
	if err := page.Items.Filter(Visible).ShouldHave(Size(2)); err != nil {
		t.Errorf("Items.Filter(Visible) returned error: %v", err)
	}
	if got, err := page.Raw.TagName(); err != nil || got != "select" {
		t.Errorf("Raw.TagName() = %q, %v, want %q", got, err, "select")
	}

	// Raw fields locate the element again on every call.
	replacement := fakewd.New("html", fakewd.New("body", fakewd.New("textarea").Attr("name", "hero")))
	wd.Serve("/other", replacement)
	if err := d.Open("/other"); err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	if got, err := page.Raw.TagName(); err != nil || got != "textarea" {
		t.Errorf("Raw.TagName() after navigation = %q, %v, want %q", got, err, "textarea")
	}
	if got, err := page.Raw.GetAttribute("name"); err != nil || got != "hero" {
		t.Errorf("Raw.GetAttribute(name) = %q, %v, want %q", got, err, "hero")
	}
	if page.Ignored != "" {
		t.Errorf("untagged field was set to %q", page.Ignored)
	}
}

func TestPageObjectErrors(t *testing.T) {
	d, _, _ := newTestDriver(t, pageWithSelects(), testConfig())
	tests := []struct {
		name string
		page interface{}
		want string
	}{
		{
			name: "not a pointer",
			page: heroPage{},
			want: "page object must be a pointer to a struct",
		},
		{
			name: "unexported field",
			page: &struct {
				header *Element `find:"tagName=h2"`
			}{},
			want: "tagged field must be exported",
		},
		{
			name: "unsupported type",
			page: &struct {
				Header string `find:"tagName=h2"`
			}{},
			want: "unsupported field type string",
		},
		{
			name: "malformed tag",
			page: &struct {
				Header *Element `find:"h2"`
			}{},
			want: `must be of the form "how=what"`,
		},
		{
			name: "unknown how",
			page: &struct {
				Header *Element `find:"label=h2"`
			}{},
			want: `unknown how "label"`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := d.Page(tc.page)
			if err == nil {
				t.Fatalf("Page() returned nil error, want %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Page() returned error %q, want it to contain %q", err, tc.want)
			}
		})
	}
}

func TestOpenResolvesBaseURL(t *testing.T) {
	cfg := testConfig()
	cfg.BaseURL = "http://localhost:8080/app/"
	d, wd, _ := newTestDriver(t, pageWithSelects(), cfg)
	if err := d.Open("login?next=home"); err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	got, _ := wd.CurrentURL()
	if want := "http://localhost:8080/app/login?next=home"; got != want {
		t.Errorf("Open() navigated to %q, want %q", got, want)
	}
	if url, err := d.CurrentURL(); err != nil || url != got {
		t.Errorf("CurrentURL() = %q, %v, want %q", url, err, got)
	}
}
