package liveserver

import (
	"bytes"
	"fmt"
)

// liveReloadScript opens a websocket to the dev server and reloads the
// page on any "reload" message, reconnecting with a 1-second backoff if
// the connection drops. The one %d is the server's own port, since the
// websocket endpoint is served alongside the page it's injected into.
const liveReloadScript = `<script>
(function() {
  var url = "ws://" + location.hostname + ":%d/__weave/ws";
  var ws;
  function connect() {
    ws = new WebSocket(url);
    ws.onmessage = function(e) {
      if (e.data === "reload") {
        location.reload();
      }
    };
    ws.onclose = function() {
      setTimeout(connect, 1000);
    };
  }
  connect();
})();
</script>`

// injectLiveReload inserts the reload script immediately before </body>,
// or appends it to the end of the document if no </body> is present.
func injectLiveReload(html string, port int) string {
	script := fmt.Sprintf(liveReloadScript, port)

	idx := bytes.LastIndex([]byte(html), []byte("</body>"))
	if idx == -1 {
		return html + script
	}
	return html[:idx] + script + html[idx:]
}
