package actions

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/tebeka/selenium"
)

type element struct {
	selenium.WebElement
	id string
}

func (e element) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"element-6066-11e4-a52e-4f735466cecf": e.id})
}

// roundTrip decodes the payload the way a server sees it.
func roundTrip(t *testing.T, b *Builder) interface{} {
	t.Helper()
	data, err := json.Marshal(b.Payload())
	if err != nil {
		t.Fatalf("json.Marshal(payload) returned error: %v", err)
	}
	var got interface{}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("json.Unmarshal(%s) returned error: %v", data, err)
	}
	return got
}

func origin(id string) map[string]interface{} {
	return map[string]interface{}{"element-6066-11e4-a52e-4f735466cecf": id}
}

func TestDragAndDropPayload(t *testing.T) {
	src, dst := element{id: "a"}, element{id: "b"}
	got := roundTrip(t, DragAndDrop(Touch, src, dst, time.Second))
	want := map[string]interface{}{
		"actions": []interface{}{
			map[string]interface{}{
				"type":       "pointer",
				"id":         "finger",
				"parameters": map[string]interface{}{"pointerType": "touch"},
				"actions": []interface{}{
					map[string]interface{}{"type": "pointerMove", "duration": 0.0, "x": 0.0, "y": 0.0, "origin": origin("a")},
					map[string]interface{}{"type": "pointerDown", "button": 0.0},
					map[string]interface{}{"type": "pause", "duration": 250.0},
					map[string]interface{}{"type": "pointerMove", "duration": 1000.0, "x": 0.0, "y": 0.0, "origin": origin("b")},
					map[string]interface{}{"type": "pointerUp", "button": 0.0},
				},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DragAndDrop payload returned diff (-want/+got):\n%s", diff)
	}
}

func TestPayloadSkipsIdleSources(t *testing.T) {
	kb := NewKeyboard("keyboard")
	p := NewPointer("mouse", Mouse).MoveBy(10, -5, 0).Click(RightButton)
	got := roundTrip(t, New(kb, p))
	want := map[string]interface{}{
		"actions": []interface{}{
			map[string]interface{}{
				"type":       "pointer",
				"id":         "mouse",
				"parameters": map[string]interface{}{"pointerType": "mouse"},
				"actions": []interface{}{
					map[string]interface{}{"type": "pointerMove", "duration": 0.0, "x": 10.0, "y": -5.0, "origin": "pointer"},
					map[string]interface{}{"type": "pointerDown", "button": 2.0},
					map[string]interface{}{"type": "pointerUp", "button": 2.0},
				},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("payload returned diff (-want/+got):\n%s", diff)
	}
}

func TestKeyboardType(t *testing.T) {
	kb := NewKeyboard("k").Type("ab")
	want := []Action{
		{"type": "keyDown", "value": "a"},
		{"type": "keyUp", "value": "a"},
		{"type": "keyDown", "value": "b"},
		{"type": "keyUp", "value": "b"},
	}
	if diff := cmp.Diff(want, kb.Actions()); diff != "" {
		t.Errorf("Type(%q) returned diff (-want/+got):\n%s", "ab", diff)
	}
}

func TestUnknownPointerKind(t *testing.T) {
	if got := NewPointer("p", "stylus").Kind(); got != Mouse {
		t.Errorf("NewPointer(_, %q).Kind() = %q, want %q", "stylus", got, Mouse)
	}
}

func TestPerformer(t *testing.T) {
	var (
		gotMethods []string
		gotBody    map[string]interface{}
	)
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wd/hub/session/s1/actions" {
			http.NotFound(w, r)
			return
		}
		gotMethods = append(gotMethods, r.Method)
		if r.Method == http.MethodPost {
			data, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(data, &gotBody); err != nil {
				t.Errorf("server could not decode body %s: %v", data, err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"value": null}`)
	}))
	defer s.Close()

	p := &Performer{Executor: s.URL + "/wd/hub/", SessionID: "s1"}
	if err := p.Perform(Hover(element{id: "x"})); err != nil {
		t.Fatalf("Perform() returned error: %v", err)
	}
	if err := p.Release(); err != nil {
		t.Fatalf("Release() returned error: %v", err)
	}
	if diff := cmp.Diff([]string{http.MethodPost, http.MethodDelete}, gotMethods); diff != "" {
		t.Errorf("request methods returned diff (-want/+got):\n%s", diff)
	}
	if n := len(gotBody["actions"].([]interface{})); n != 1 {
		t.Errorf("server received %d sources, want 1", n)
	}
}

func TestPerformerErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{
			name:   "w3c",
			status: http.StatusNotFound,
			body:   `{"value": {"error": "no such element", "message": "element is gone"}}`,
			want:   "no such element: element is gone",
		},
		{
			name:   "legacy",
			status: http.StatusOK,
			body:   `{"status": 10, "value": {"message": "detached"}}`,
			want:   "stale element reference: detached",
		},
		{
			name:   "unknown status",
			status: http.StatusInternalServerError,
			body:   `{"status": 99, "value": {}}`,
			want:   "unknown error - 99",
		},
		{
			name:   "not json",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
			want:   "bad server reply status: 502 Bad Gateway",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			}))
			defer s.Close()

			p := &Performer{Client: s.Client(), Executor: s.URL, SessionID: "s"}
			err := p.Release()
			if err == nil {
				t.Fatalf("Release() returned nil error, want %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Release() returned error %q, want %q", err, tc.want)
			}
		})
	}
}
