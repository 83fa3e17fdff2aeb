package selenidetest

import (
	"fmt"
	"net/http"
	"strings"
)

// Paths of the fixture pages, relative to Config.ServerURL.
const (
	selectsPage = "page_with_selects_without_jquery.html"
	delayedPage = "delayed.html"
	dragPage    = "drag.html"
	shadowPage  = "shadow.html"
)

var pages = map[string]string{
	selectsPage: `<!DOCTYPE html>
<html>
<head><title>Page with selects</title></head>
<body>
	<h1>Page with selects</h1>
	<h2>Dropdown list</h2>
	<select id="hero" name="hero" class="form-control">
		<option value="">-- Select your hero --</option>
		<option value="john mc'lain">John Mc'Lain</option>
		<option value="bruce willis">Bruce Willis</option>
		<option value="chuck norris">Chuck  Norris</option>
	</select>
	<ul id="radioButtons">
		<li>Master</li>
		<li>Margarita</li>
		<li style="display:none">Cat</li>
	</ul>
	<input id="username" type="text" value="">
	<div id="hidden" class="note" style="display:none">hidden text</div>
</body>
</html>`,

	delayedPage: `<!DOCTYPE html>
<html>
<head><title>Delayed</title></head>
<body>
	<script>
		setTimeout(function() {
			var p = document.createElement('p');
			p.id = 'late';
			p.textContent = 'here';
			document.body.appendChild(p);
		}, 300);
	</script>
</body>
</html>`,

	dragPage: `<!DOCTYPE html>
<html>
<head><title>Drag</title>
<style>
	#source, #target { width: 100px; height: 100px; margin: 20px; border: 1px solid black; }
</style>
</head>
<body>
	<div id="source" draggable="true">Drag me</div>
	<div id="target">Drop here</div>
	<p id="status"></p>
	<script>
		var source = document.getElementById('source');
		var target = document.getElementById('target');
		var statusLine = document.getElementById('status');
		source.addEventListener('dragstart', function(e) { e.dataTransfer.setData('text', 'source'); });
		source.addEventListener('mouseover', function() { statusLine.textContent = 'hovered'; });
		source.addEventListener('dblclick', function() { statusLine.textContent = 'double clicked'; });
		target.addEventListener('dragover', function(e) { e.preventDefault(); });
		target.addEventListener('drop', function(e) {
			e.preventDefault();
			target.textContent = 'Dropped!';
		});
	</script>
</body>
</html>`,

	shadowPage: `<!DOCTYPE html>
<html>
<head><title>Shadow</title></head>
<body>
	<div id="outer-host"></div>
	<p id="status"></p>
	<script>
		var outer = document.getElementById('outer-host').attachShadow({mode: 'open'});
		outer.innerHTML = '<div id="inner-host"></div>';
		var inner = outer.getElementById('inner-host').attachShadow({mode: 'open'});
		inner.innerHTML = '<button id="shadow-button">Inside</button>';
		inner.getElementById('shadow-button').addEventListener('click', function() {
			document.getElementById('status').textContent = 'clicked';
		});
	</script>
</body>
</html>`,
}

func handler(w http.ResponseWriter, r *http.Request) {
	page, ok := pages[strings.TrimPrefix(r.URL.Path, "/")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, page)
}
