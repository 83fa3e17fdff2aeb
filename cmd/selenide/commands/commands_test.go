package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/wanmail/selenide"
	"github.com/wanmail/selenide/internal/fakewd"
)

func conditionNames(t *testing.T, args ...string) (should, shouldNot []string, err error) {
	t.Helper()
	flags := checkCmd().Flags()
	if err := flags.Parse(args); err != nil {
		t.Fatalf("Parse(%q) returned error: %v", args, err)
	}
	pos, neg, err := conditions(flags)
	for _, c := range pos {
		should = append(should, c.Name())
	}
	for _, c := range neg {
		shouldNot = append(shouldNot, c.Name())
	}
	return should, shouldNot, err
}

func TestConditions(t *testing.T) {
	tests := []struct {
		args          []string
		want, wantNot []string
	}{
		{nil, []string{"exist"}, nil},
		{[]string{"--text", "Dropdown"}, []string{"text 'Dropdown'"}, nil},
		{[]string{"--visible", "--exact-text", "Dropdown list"}, []string{"exact text 'Dropdown list'", "visible"}, nil},
		{[]string{"--attr", "name=hero", "--attr", "disabled"}, []string{"attribute name=hero", "attribute disabled"}, nil},
		{[]string{"--absent"}, nil, []string{"exist"}},
	}
	for _, tc := range tests {
		should, shouldNot, err := conditionNames(t, tc.args...)
		if err != nil {
			t.Errorf("conditions(%q) returned error: %v", tc.args, err)
			continue
		}
		if diff := cmp.Diff(tc.want, should); diff != "" {
			t.Errorf("conditions(%q) should returned diff (-want/+got):\n%s", tc.args, diff)
		}
		if diff := cmp.Diff(tc.wantNot, shouldNot); diff != "" {
			t.Errorf("conditions(%q) should not returned diff (-want/+got):\n%s", tc.args, diff)
		}
	}
}

func TestConditionsInvalidAttr(t *testing.T) {
	if _, _, err := conditionNames(t, "--attr", "=x"); err == nil || !strings.Contains(err.Error(), "invalid --attr") {
		t.Errorf("conditions(--attr =x) returned %v, want an invalid --attr error", err)
	}
}

// fakeSessions makes check run against root and returns the configurations
// sessions were started with.
func fakeSessions(t *testing.T, root *fakewd.Element) *[]selenide.Config {
	t.Helper()
	var started []selenide.Config
	orig := startDriver
	startDriver = func(cfg selenide.Config) (*selenide.Driver, error) {
		started = append(started, cfg)
		return selenide.NewDriver(fakewd.NewDriver(root), cfg), nil
	}
	t.Cleanup(func() { startDriver = orig })
	return &started
}

func runCommand(args ...string) (stdout, stderr string, err error) {
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = run(root)
	return out.String(), errOut.String(), err
}

func TestCheck(t *testing.T) {
	t.Setenv("SELENIDE_BROWSER", "firefox")
	t.Setenv("SELENIDE_HEADLESS", "true")
	t.Setenv("SELENIDE_TIMEOUT", "10s")
	t.Setenv("SELENIDE_POLLING_INTERVAL", "50ms")
	page := fakewd.New("html",
		fakewd.New("body",
			fakewd.New("h2").WithText("Dropdown list"),
			fakewd.New("li").WithText("Master"),
			fakewd.New("li").WithText("Margarita"),
		),
	)

	tests := []struct {
		name       string
		args       []string
		wantOut    string
		wantErr    string
		wantNoRuns bool
	}{
		{
			name:    "element passes",
			args:    []string{"--selector", "h2", "--text", "dropdown"},
			wantOut: "ok {By.selector: h2}\n",
		},
		{
			name:    "collection size passes",
			args:    []string{"--selector", "li", "--size", "2"},
			wantOut: "ok {By.selector: li}\n",
		},
		{
			name: "element not found",
			args: []string{"--selector", "h9"},
			wantErr: "Element not found {By.selector: h9}\n" +
				"Expected: exist\n" +
				"Timeout: 300 ms.\n",
		},
		{
			name: "absent element present",
			args: []string{"--selector", "h2", "--absent"},
			wantErr: "Element should not exist {By.selector: h2}\n" +
				"Element: '<h2>Dropdown list</h2>'\n" +
				"Timeout: 300 ms.\n",
		},
		{
			name:       "size with element conditions",
			args:       []string{"--selector", "li", "--size", "2", "--visible"},
			wantErr:    "--size cannot be combined with --visible\n",
			wantNoRuns: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			started := fakeSessions(t, page)
			args := append([]string{"check", "--url", "/page_with_selects.html", "--timeout", "300ms"}, tc.args...)
			out, errOut, err := runCommand(args...)
			if (err != nil) != (tc.wantErr != "") {
				t.Fatalf("check %q returned error %v, want failure %t", tc.args, err, tc.wantErr != "")
			}
			if out != tc.wantOut {
				t.Errorf("check %q printed %q, want %q", tc.args, out, tc.wantOut)
			}
			if errOut != tc.wantErr {
				t.Errorf("check %q printed to stderr:\n%s\nwant:\n%s", tc.args, errOut, tc.wantErr)
			}
			if tc.wantNoRuns {
				if len(*started) != 0 {
					t.Errorf("check %q started %d sessions, want none", tc.args, len(*started))
				}
				return
			}
			if len(*started) != 1 {
				t.Fatalf("check %q started %d sessions, want 1", tc.args, len(*started))
			}
			cfg := (*started)[0]
			if cfg.Browser != selenide.Firefox || !cfg.Headless || cfg.Timeout != 300*time.Millisecond {
				t.Errorf("session config browser=%q headless=%t timeout=%v, want firefox, true, 300ms", cfg.Browser, cfg.Headless, cfg.Timeout)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	cmd := versionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version returned error: %v", err)
	}
	if got, want := out.String(), "selenide dev\n"; got != want {
		t.Errorf("version printed %q, want %q", got, want)
	}
}
