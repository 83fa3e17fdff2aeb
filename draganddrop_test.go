package selenide

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tebeka/selenium"

	"github.com/wanmail/selenide/internal/fakewd"
)

// actionsServer records the action requests a session receives and runs
// onPerform for every POST.
type actionsServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []string
	bodies   []map[string]interface{}
}

func newActionsServer(t *testing.T, onPerform func(body map[string]interface{})) *actionsServer {
	t.Helper()
	s := new(actionsServer)
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		if r.Method == http.MethodPost {
			data, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(data, &body); err != nil {
				t.Errorf("actions body %s is not JSON: %v", data, err)
			}
		}
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.bodies = append(s.bodies, body)
		s.mu.Unlock()
		if body != nil && onPerform != nil {
			onPerform(body)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"value": null}`)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *actionsServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// PointerTypes returns the pointer type of every perform request.
func (s *actionsServer) PointerTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kinds []string
	for _, b := range s.bodies {
		if b != nil {
			kinds = append(kinds, pointerType(b))
		}
	}
	return kinds
}

// pointerType returns the pointer type of the first source of a perform
// request body.
func pointerType(body map[string]interface{}) string {
	sources, _ := body["actions"].([]interface{})
	if len(sources) == 0 {
		return ""
	}
	source, _ := sources[0].(map[string]interface{})
	params, _ := source["parameters"].(map[string]interface{})
	kind, _ := params["pointerType"].(string)
	return kind
}

func apiDemos() (root, result *fakewd.Element) {
	result = fakewd.New("android.widget.TextView").Attr("id", "io.appium.android.apis:id/drag_result_text")
	dragScreen := fakewd.New("android.widget.RelativeLayout",
		fakewd.New("android.view.View").Attr("id", "io.appium.android.apis:id/drag_dot_1"),
		fakewd.New("android.view.View").Attr("id", "io.appium.android.apis:id/drag_dot_2"),
		result,
	).Hide()
	dragEntry := fakewd.New("android.widget.TextView").Attr("text", "Drag and Drop").WithText("Drag and Drop").Hide()
	dragEntry.OnClick = func(*fakewd.Element) { dragScreen.SetHidden(false) }
	views := fakewd.New("android.widget.TextView").Attr("text", "Views").WithText("Views")
	views.OnClick = func(*fakewd.Element) { dragEntry.SetHidden(false) }
	root = fakewd.New("hierarchy", views, dragEntry, dragScreen)
	return root, result
}

func TestAndroidDragAndDrop(t *testing.T) {
	root, result := apiDemos()
	srv := newActionsServer(t, func(body map[string]interface{}) {
		if pointerType(body) == "touch" {
			result.SetText("Dropped!")
		}
	})
	cfg := testConfig()
	cfg.Browser = Android
	cfg.Remote = srv.URL + "/wd/hub"
	d, wd, _ := newTestDriver(t, root, cfg)
	wd.Caps = selenium.Capabilities{"platformName": "Android"}

	if err := d.FindBy(ByXPath(".//*[@text='Views']")).Click(); err != nil {
		t.Fatalf("click Views: %v", err)
	}
	if err := d.FindBy(ByXPath(".//*[@text='Drag and Drop']")).Click(); err != nil {
		t.Fatalf("click Drag and Drop: %v", err)
	}
	from := d.FindBy(ByID("io.appium.android.apis:id/drag_dot_1"))
	to := d.FindBy(ByID("io.appium.android.apis:id/drag_dot_2"))
	if err := from.ShouldBe(Visible); err != nil {
		t.Fatal(err)
	}
	if err := to.ShouldBe(Visible); err != nil {
		t.Fatal(err)
	}
	dragText := d.FindBy(ByID("io.appium.android.apis:id/drag_result_text"))
	if err := dragText.ShouldHave(ExactText("")); err != nil {
		t.Fatal(err)
	}

	if err := from.DragAndDropTo(to); err != nil {
		t.Fatalf("DragAndDropTo() returned error: %v", err)
	}

	if err := dragText.ShouldBe(Visible); err != nil {
		t.Error(err)
	}
	if err := dragText.ShouldHave(Text("Dropped!")); err != nil {
		t.Error(err)
	}
	want := []string{
		"POST /wd/hub/session/fake-session/actions",
		"DELETE /wd/hub/session/fake-session/actions",
	}
	if diff := cmp.Diff(want, srv.Requests()); diff != "" {
		t.Errorf("actions requests returned diff (-want/+got):\n%s", diff)
	}
}

func TestDragAndDropUsingJS(t *testing.T) {
	src := fakewd.New("div").Attr("id", "a")
	dst := fakewd.New("div").Attr("id", "b")
	d, wd, _ := newTestDriver(t, fakewd.New("html", fakewd.New("body", src, dst)), testConfig())

	if err := d.Find("#a").DragAndDropTo(d.Find("#b")); err != nil {
		t.Fatalf("DragAndDropTo() returned error: %v", err)
	}
	scripts := wd.Scripts()
	if len(scripts) != 1 || scripts[0].Script != dragAndDropScript {
		t.Fatalf("DragAndDropTo() ran %d scripts, want the drag and drop script", len(scripts))
	}
	if args := scripts[0].Args; args[0] != src || args[1] != dst {
		t.Errorf("drag and drop script got args %v, want source and target", args)
	}
}

func TestDragAndDropMissingTarget(t *testing.T) {
	d, _, _ := newTestDriver(t, pageWithSelects(), testConfig())
	err := d.Find("h2").DragAndDropTo(d.Find("#nowhere"), UsingJS())
	want := "Element not found {By.selector: #nowhere}\nExpected: visible\nTimeout: 1.500 s."
	if err == nil || err.Error() != want {
		t.Errorf("DragAndDropTo() returned %v, want:\n%s", err, want)
	}
}

func TestDragAndDropUsingActions(t *testing.T) {
	tests := []struct {
		name         string
		caps         selenium.Capabilities
		wantRequests int
		wantLegacy   []string
	}{
		{
			name:         "w3c chrome",
			caps:         selenium.Capabilities{"browserName": "chrome", "browserVersion": "118.0.5993.70"},
			wantRequests: 2,
		},
		{
			name:       "legacy chrome",
			caps:       selenium.Capabilities{"browserName": "chrome", "version": "74.0.3729.6"},
			wantLegacy: []string{"moveto", "buttondown", "moveto", "buttonup"},
		},
		{
			name:         "firefox",
			caps:         selenium.Capabilities{"browserName": "firefox", "browserVersion": "60.0"},
			wantRequests: 2,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newActionsServer(t, nil)
			cfg := testConfig()
			cfg.Remote = srv.URL
			src := fakewd.New("div").Attr("id", "a")
			dst := fakewd.New("div").Attr("id", "b")
			d, wd, _ := newTestDriver(t, fakewd.New("html", fakewd.New("body", src, dst)), cfg)
			wd.Caps = tc.caps

			err := d.Find("#a").DragAndDropTo(d.Find("#b"), UsingActions(), WithDuration(0))
			if err != nil {
				t.Fatalf("DragAndDropTo() returned error: %v", err)
			}
			if got := len(srv.Requests()); got != tc.wantRequests {
				t.Errorf("server received %d requests, want %d", got, tc.wantRequests)
			}
			if kinds := srv.PointerTypes(); tc.wantRequests > 0 && (len(kinds) != 1 || kinds[0] != "mouse") {
				t.Errorf("pointer types %v, want [mouse]", kinds)
			}
			var legacy []string
			for _, cmd := range wd.Legacy() {
				legacy = append(legacy, strings.Fields(cmd)[0])
			}
			if diff := cmp.Diff(tc.wantLegacy, legacy); diff != "" {
				t.Errorf("legacy commands returned diff (-want/+got):\n%s", diff)
			}
		})
	}
}

func TestPointerCommands(t *testing.T) {
	srv := newActionsServer(t, nil)
	cfg := testConfig()
	cfg.Remote = srv.URL
	d, _, _ := newTestDriver(t, pageWithSelects(), cfg)
	h2 := d.Find("h2")
	for name, run := range map[string]func() error{
		"Hover":        h2.Hover,
		"DoubleClick":  h2.DoubleClick,
		"ContextClick": h2.ContextClick,
	} {
		if err := run(); err != nil {
			t.Errorf("%s() returned error: %v", name, err)
		}
	}
	if got := len(srv.Requests()); got != 6 {
		t.Errorf("server received %d requests, want 6", got)
	}
}

func TestParseBrowserVersion(t *testing.T) {
	for in, want := range map[string]uint64{
		"74.0.3729.6": 74,
		"118":         118,
		"v75.1":       75,
	} {
		v, err := parseBrowserVersion(in)
		if err != nil {
			t.Errorf("parseBrowserVersion(%q) returned error: %v", in, err)
			continue
		}
		if v.Major != want {
			t.Errorf("parseBrowserVersion(%q).Major = %d, want %d", in, v.Major, want)
		}
	}
}

func TestDragAndDropRelocatesTarget(t *testing.T) {
	body := fakewd.New("body", fakewd.New("div").Attr("id", "a"), fakewd.New("div").Attr("id", "b"))
	d, wd, _ := newTestDriver(t, fakewd.New("html", body), testConfig())
	calls := 0
	wd.OnScript = func(_ string, args []interface{}) (interface{}, error) {
		calls++
		if calls == 1 {
			// The page re-renders the target while the first drag runs.
			old := args[1].(*fakewd.Element)
			old.Remove()
			body.AppendChild(fakewd.New("div").Attr("id", "b"))
		}
		if _, err := args[1].(selenium.WebElement).TagName(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if err := d.Find("#a").DragAndDropTo(d.Find("#b"), UsingJS()); err != nil {
		t.Fatalf("DragAndDropTo() returned error: %v", err)
	}
	if calls != 2 {
		t.Errorf("drag and drop script ran %d times, want 2", calls)
	}
}

func TestDragAndDropFailures(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		onScript func(body *fakewd.Element, args []interface{}) error
		want     string
	}{
		{
			name:   "target always re-rendered",
			target: "#b",
			onScript: func(body *fakewd.Element, args []interface{}) error {
				args[1].(*fakewd.Element).Remove()
				body.AppendChild(fakewd.New("div").Attr("id", "b"))
				_, err := args[1].(selenium.WebElement).TagName()
				return err
			},
			want: "Element not found {By.selector: #b}\n" +
				"Expected: visible\n" +
				"Timeout: 1.500 s.\n" +
				"Caused by: stale element reference: element is not attached to the page document",
		},
		{
			name:   "source never accepts the drag",
			target: "#b",
			onScript: func(*fakewd.Element, []interface{}) error {
				return errors.New("element not interactable: element has zero size")
			},
			want: "Element action failed {By.selector: #a}\n" +
				"Element: '<div id=\"a\"></div>'\n" +
				"Timeout: 1.500 s.\n" +
				"Caused by: element not interactable: element has zero size",
		},
		{
			name:   "target hidden",
			target: "#c",
			onScript: func(*fakewd.Element, []interface{}) error {
				t.Error("drag and drop script ran with a hidden target")
				return nil
			},
			want: "Element should be visible {By.selector: #c}\n" +
				"Element: '<div id=\"c\" displayed:false></div>'\n" +
				"Timeout: 1.500 s.",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body := fakewd.New("body",
				fakewd.New("div").Attr("id", "a"),
				fakewd.New("div").Attr("id", "b"),
				fakewd.New("div").Attr("id", "c").Hide(),
			)
			d, wd, _ := newTestDriver(t, fakewd.New("html", body), testConfig())
			wd.OnScript = func(_ string, args []interface{}) (interface{}, error) {
				return nil, tc.onScript(body, args)
			}
			err := d.Find("#a").DragAndDropTo(d.Find(tc.target), UsingJS())
			if err == nil {
				t.Fatalf("DragAndDropTo() returned nil error, want:\n%s", tc.want)
			}
			if got := err.Error(); got != tc.want {
				t.Errorf("DragAndDropTo() returned error:\n%s\nwant:\n%s", got, tc.want)
			}
		})
	}
}
