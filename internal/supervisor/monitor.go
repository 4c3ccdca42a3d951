package supervisor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// readyPattern matches the CLI's canonical readiness banner and
// captures the bound port.
var readyPattern = regexp.MustCompile(`CodeNomad Server is ready at http://[^:]+:(\d+)`)

// portToken matches ":<port>" tokens in free-text listener lines.
var portToken = regexp.MustCompile(`:(\d{2,5})`)

// ExtractReadySignal inspects one line of CLI output for a readiness
// signal and returns the bound port. Checks run in order: the canonical
// banner; then, for lines mentioning "http server listening", the last
// ":port" token, falling back to a JSON object with a numeric port
// field. Unrecognized lines are never an error.
func ExtractReadySignal(line string) (int, bool) {
	if m := readyPattern.FindStringSubmatch(line); m != nil {
		if port, ok := parsePort(m[1]); ok {
			return port, true
		}
	}

	if !strings.Contains(strings.ToLower(line), "http server listening") {
		return 0, false
	}
	if ms := portToken.FindAllStringSubmatch(line, -1); len(ms) > 0 {
		if port, ok := parsePort(ms[len(ms)-1][1]); ok {
			return port, true
		}
	}
	if gjson.Valid(line) {
		if v := gjson.Get(line, "port"); v.Exists() {
			if port := int(v.Int()); validPort(port) {
				return port, true
			}
		}
	}
	return 0, false
}

func parsePort(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || !validPort(n) {
		return 0, false
	}
	return n, true
}

func validPort(n int) bool { return n > 0 && n <= 65535 }
