package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/button-matrix/internal/mqtt"
	"github.com/sweeney/button-matrix/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"onOff": func(b bool) string {
		if b {
			return "ON"
		}
		return "OFF"
	},
	"char": func(c *status.LastChar) string {
		if c.Code < 0x20 || c.Code > 0x7e {
			return fmt.Sprintf("0x%02x", c.Code)
		}
		return string(rune(c.Code))
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Button Matrix</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
pre.panel { background: #111; color: #8cf; padding: 6px; line-height: 1; display: inline-block; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Button Matrix{{if .Config.WSBroker}}<span id="live-dot" class="live-dot pending" title="connecting"></span>{{end}}</h1>

<h2>Mode</h2>
<table>
<tr><th>Green</th><td id="green-state" class="{{if .Mode.Green}}on{{else}}off{{end}}">{{onOff .Mode.Green}}</td></tr>
<tr><th>Blue</th><td id="blue-state" class="{{if .Mode.Blue}}on{{else}}off{{end}}">{{onOff .Mode.Blue}}</td></tr>
<tr><th>Accepted edges</th><td id="counter">{{.Mode.Counter}}</td></tr>
<tr><th>Message</th><td>{{if .Message}}{{.Message}}{{else}}(blank){{end}}</td></tr>
<tr><th>Precedence</th><td>{{.Config.Precedence}}</td></tr>
</table>

<h2>Input</h2>
<table>
<tr><th>Last byte</th><td id="last-char">{{if .LastChar}}{{char .LastChar}} ({{.LastChar.Class}}){{else}}none{{end}}</td></tr>
<tr><th>Letters</th><td>{{.Chars.Letters}}</td></tr>
<tr><th>Digits</th><td>{{.Chars.Digits}}</td></tr>
<tr><th>Other</th><td>{{.Chars.Other}}</td></tr>
<tr><th>Source</th><td>{{.Config.Input}}</td></tr>
</table>

{{if .Screen}}<h2>Display</h2>
<pre class="panel" id="screen">{{range .Screen}}{{.}}
{{end}}</pre>{{end}}

{{if .Matrix}}<h2>Matrix</h2>
<pre class="panel" id="matrix">{{range .Matrix}}{{.}}
{{end}}</pre>{{end}}

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
<tr><th>Queued</th><td>{{.MQTTBuffered}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
{{if .Config.WSBroker}}
<script src="https://unpkg.com/mqtt@5/dist/mqtt.min.js"></script>
<script>
(function() {
  var broker = "{{.Config.WSBroker}}";
  var topic = "{{.Topic}}";
  var dot = document.getElementById("live-dot");

  function setFlag(id, on) {
    var el = document.getElementById(id);
    el.textContent = on ? "ON" : "OFF";
    el.className = on ? "on" : "off";
  }

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  var client = mqtt.connect(broker, { reconnectPeriod: 5000 });
  client.on("connect", function() { setDot("ok", "live"); client.subscribe(topic); });
  client.on("reconnect", function() { setDot("pending", "reconnecting"); });
  client.on("offline", function() { setDot("err", "offline"); });
  client.on("error", function() { setDot("err", "error"); });

  client.on("message", function(t, payload) {
    try {
      var msg = JSON.parse(payload.toString()).coordinator;
      if (msg.mode) {
        setFlag("green-state", msg.mode.green);
        setFlag("blue-state", msg.mode.blue);
        document.getElementById("counter").textContent = msg.mode.counter;
      }
      if (msg.char) {
        var shown = msg.char.text ? JSON.stringify(msg.char.text) : "0x" + msg.char.code.toString(16);
        document.getElementById("last-char").textContent = shown + " (" + msg.char.class + ")";
      }
    } catch (e) {}
  });
})();
</script>
{{end}}
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Topic  string
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Topic:    mqtt.Topic,
	}
	return indexTmpl.Execute(w, data)
}
