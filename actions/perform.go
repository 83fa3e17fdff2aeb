package actions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/golang/glog"
)

// Legacy status codes of the JSON wire protocol that servers may still
// report for actions.
var remoteErrors = map[int]string{
	7:  "no such element",
	10: "stale element reference",
	11: "element not visible",
	12: "invalid element state",
	13: "unknown error",
	17: "javascript error",
	28: "timeout",
	34: "move target out of bounds",
}

// Performer sends action sequences to a WebDriver session. The client
// library does not expose the actions endpoint, so requests go straight to
// the server.
type Performer struct {
	// Client defaults to http.DefaultClient.
	Client *http.Client
	// Executor is the server URL the session was created on.
	Executor  string
	SessionID string
}

// Perform runs the actions of b.
func (p *Performer) Perform(b *Builder) error {
	data, err := json.Marshal(b.Payload())
	if err != nil {
		return fmt.Errorf("encode actions: %w", err)
	}
	return p.execute(http.MethodPost, data)
}

// Release releases every key and button still held down.
func (p *Performer) Release() error {
	return p.execute(http.MethodDelete, nil)
}

func (p *Performer) url() string {
	return strings.TrimRight(p.Executor, "/") + fmt.Sprintf("/session/%s/actions", p.SessionID)
}

type serverReply struct {
	Status int
	Value  json.RawMessage
}

type errorValue struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (p *Performer) execute(method string, data []byte) error {
	url := p.url()
	glog.V(2).Infof("-> %s %s\n%s", method, url, data)
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}
	request, err := http.NewRequest(method, url, body)
	if err != nil {
		return err
	}
	request.Header.Add("Accept", "application/json")
	if data != nil {
		request.Header.Add("Content-Type", "application/json; charset=utf-8")
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	response, err := client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	buf, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("read %s %s reply: %w", method, url, err)
	}
	glog.V(2).Infof("<- %s\n%s", response.Status, buf)

	reply := new(serverReply)
	if err := json.Unmarshal(buf, reply); err != nil {
		if response.StatusCode >= 400 {
			return fmt.Errorf("bad server reply status: %s", response.Status)
		}
		return nil
	}
	if response.StatusCode < 400 && reply.Status == 0 {
		return nil
	}
	return replyError(reply)
}

func replyError(reply *serverReply) error {
	var v errorValue
	_ = json.Unmarshal(reply.Value, &v)
	message := v.Error
	if message == "" {
		var ok bool
		if message, ok = remoteErrors[reply.Status]; !ok {
			message = fmt.Sprintf("unknown error - %d", reply.Status)
		}
	}
	if v.Message != "" {
		message = fmt.Sprintf("%s: %s", message, v.Message)
	}
	return errors.New(message)
}
