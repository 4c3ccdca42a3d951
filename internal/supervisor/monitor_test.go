package supervisor

import "testing"

func TestExtractReadySignal(t *testing.T) {
	cases := []struct {
		name string
		line string
		port int
		ok   bool
	}{
		{
			name: "canonical banner",
			line: "CodeNomad Server is ready at http://127.0.0.1:4821",
			port: 4821, ok: true,
		},
		{
			name: "banner embedded in log prefix",
			line: "2026-08-30 INFO CodeNomad Server is ready at http://0.0.0.0:9000",
			port: 9000, ok: true,
		},
		{
			name: "listening line with trailing port",
			line: "HTTP server listening on :5050",
			port: 5050, ok: true,
		},
		{
			name: "listening line case insensitive",
			line: "http SERVER Listening on 0.0.0.0:8080",
			port: 8080, ok: true,
		},
		{
			name: "listening line takes last port token",
			line: "HTTP server listening on 127.0.0.1:80 -> :6060",
			port: 6060, ok: true,
		},
		{
			name: "json listening line",
			line: `{"msg":"http server listening","port":6000}`,
			port: 6000, ok: true,
		},
		{
			name: "json listening line with spaced port",
			line: `{"msg": "http server listening", "port": 7100}`,
			port: 7100, ok: true,
		},
		{
			name: "listening line without port",
			line: "http server listening",
			ok:   false,
		},
		{
			name: "unrelated line",
			line: "compiling workspace graph",
			ok:   false,
		},
		{
			name: "port without listening context",
			line: "connecting to upstream at :9999",
			ok:   false,
		},
		{
			name: "empty line",
			line: "",
			ok:   false,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			port, ok := ExtractReadySignal(c.line)
			if ok != c.ok {
				t.Fatalf("ok = %v, want %v", ok, c.ok)
			}
			if ok && port != c.port {
				t.Fatalf("port = %d, want %d", port, c.port)
			}
		})
	}
}
