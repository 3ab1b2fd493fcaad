package gate

// loadingPage is shown while the session is still resolving when no OnPending
// page is configured. It reloads itself until the server can decide, which
// for a client that never reports ends at the resolve timeout.
var loadingPage = []byte(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="1">
<title>Sokrate AI</title>
<style>
body{margin:0;display:flex;min-height:100vh;align-items:center;justify-content:center;font-family:system-ui,sans-serif;background:#0f172a;color:#e2e8f0}
.spinner{width:40px;height:40px;border:4px solid #334155;border-top-color:#6366f1;border-radius:50%;animation:spin 1s linear infinite}
@keyframes spin{to{transform:rotate(360deg)}}
</style>
</head>
<body><div class="spinner" role="status" aria-label="Loading"></div></body>
</html>
`)
