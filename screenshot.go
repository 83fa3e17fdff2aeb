package selenide

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/golang/glog"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Screenshot saves a PNG of the current page into ReportsFolder and returns
// its path. name is sanitized and made unique with a counter.
func (d *Driver) Screenshot(name string) (string, error) {
	png, err := d.wd.Screenshot()
	if err != nil {
		return "", fmt.Errorf("take screenshot: %w", err)
	}
	return d.writeReport(name, ".png", png)
}

// PageSource saves the HTML of the current page into ReportsFolder and
// returns its path.
func (d *Driver) PageSource(name string) (string, error) {
	src, err := d.wd.PageSource()
	if err != nil {
		return "", fmt.Errorf("read page source: %w", err)
	}
	return d.writeReport(name, ".html", []byte(src))
}

func (d *Driver) writeReport(name, ext string, data []byte) (string, error) {
	if err := os.MkdirAll(d.cfg.ReportsFolder, 0o755); err != nil {
		return "", fmt.Errorf("create reports folder: %w", err)
	}
	path := filepath.Join(d.cfg.ReportsFolder, d.reportName(name)+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func (d *Driver) reportName(name string) string {
	d.mu.Lock()
	d.shots++
	n := d.shots
	d.mu.Unlock()
	name = unsafeFileChars.ReplaceAllString(name, "_")
	if len(name) > 64 {
		name = name[:64]
	}
	return fmt.Sprintf("%d.%s", n, name)
}

// report attaches a screenshot and the page source to a failure when the
// configuration asks for them. Report failures are logged, never returned.
func (d *Driver) report(e *UIAssertionError) {
	if !d.cfg.Screenshots && !d.cfg.SavePageSource {
		return
	}
	name := e.Description
	if d.cfg.Screenshots {
		path, err := d.Screenshot(name)
		if err != nil {
			glog.Warningf("failure screenshot for {%s}: %v", e.Description, err)
		} else {
			e.Screenshot = path
		}
	}
	if d.cfg.SavePageSource {
		path, err := d.PageSource(name)
		if err != nil {
			glog.Warningf("failure page source for {%s}: %v", e.Description, err)
		} else {
			e.PageSource = path
		}
	}
}
