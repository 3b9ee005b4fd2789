package bundler

import "strings"

// bootScript is the fixed boot sequence of every published document: a
// diagnostic log ring buffer, a retry-until-ready mount loop, and a global
// error overlay. It runs before the bundled script.
const bootScript = `(function () {
  var LOG_CAP = 200;
  var logs = [];
  window.__forgeLogs = logs;
  ["log", "info", "warn", "error"].forEach(function (level) {
    var original = console[level];
    console[level] = function () {
      logs.push({ level: level, args: Array.prototype.slice.call(arguments), at: Date.now() });
      if (logs.length > LOG_CAP) logs.shift();
      return original.apply(console, arguments);
    };
  });

  var overlay = null;
  function showOverlay(message) {
    if (!overlay) {
      overlay = document.createElement("div");
      overlay.setAttribute("data-webforge", "error-overlay");
      overlay.style.cssText =
        "position:fixed;inset:0;z-index:99999;background:rgba(17,17,17,.92);" +
        "color:#ff6b6b;font:13px/1.5 monospace;padding:24px;overflow:auto;white-space:pre-wrap;";
      document.body.appendChild(overlay);
    }
    overlay.textContent = message;
  }
  window.addEventListener("error", function (e) {
    showOverlay("Runtime error: " + (e.message || String(e.error)));
  });
  window.addEventListener("unhandledrejection", function (e) {
    showOverlay("Unhandled rejection: " + String(e.reason));
  });

  var attempts = 0;
  var mountTimer = setInterval(function () {
    attempts++;
    var root = document.getElementById("root");
    if (root && typeof window.__forgeMount === "function") {
      clearInterval(mountTimer);
      try {
        window.__forgeMount(root);
      } catch (err) {
        showOverlay("Mount failed: " + String(err));
      }
      return;
    }
    if (attempts > 100) {
      clearInterval(mountTimer);
    }
  }, 50);
})();`

const documentTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>__TITLE__</title>
<style>
__CSS__
</style>
</head>
<body>
<div id="root"></div>
<script>
__BOOT__
</script>
<script>
__SCRIPT__
</script>
</body>
</html>
`

// Document renders the publish/export artifact: one self-contained HTML file
// with the CSS blob inlined in a single style block and the script blob in a
// single script block. No external bundle files are produced.
func Document(title string, res *Result) string {
	out := strings.Replace(documentTemplate, "__TITLE__", htmlEscape(title), 1)
	out = strings.Replace(out, "__CSS__", strings.TrimRight(res.CSS, "\n"), 1)
	out = strings.Replace(out, "__BOOT__", bootScript, 1)
	out = strings.Replace(out, "__SCRIPT__", scriptEscape(res.Script), 1)
	return out
}

// scriptEscape keeps an inline script from terminating its own element.
func scriptEscape(s string) string {
	return strings.ReplaceAll(s, "</script", "<\\/script")
}

func htmlEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
