package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
)

// String returns the trimmed value of name, or def when unset or blank.
// The chosen value is logged under the lower-cased variable name so the
// logger's redaction rules apply to secrets.
func String(name, def string, log *logger.Logger) string {
	v, ok := lookup(name)
	if !ok {
		debug(log, "environment variable not set, using default", name, def)
		return def
	}
	debug(log, "environment variable found", name, v)
	return v
}

func Int(name string, def int, log *logger.Logger) int {
	v, ok := lookup(name)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		warn(log, "invalid integer in environment, using default", name, v, def)
		return def
	}
	return i
}

func Float(name string, def float64, log *logger.Logger) float64 {
	v, ok := lookup(name)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		warn(log, "invalid float in environment, using default", name, v, def)
		return def
	}
	return f
}

func Bool(name string, def bool, log *logger.Logger) bool {
	v, ok := lookup(name)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	warn(log, "invalid boolean in environment, using default", name, v, def)
	return def
}

// Duration accepts Go duration strings ("90s", "2m") or a bare number of seconds.
func Duration(name string, def time.Duration, log *logger.Logger) time.Duration {
	v, ok := lookup(name)
	if !ok {
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		warn(log, "invalid duration in environment, using default", name, v, def)
		return def
	}
	return d
}

// List splits a comma separated variable, dropping blanks.
func List(name string, def []string, log *logger.Logger) []string {
	v, ok := lookup(name)
	if !ok {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	debug(log, "environment variable found", name, strings.Join(out, ","))
	return out
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func debug(log *logger.Logger, msg, name string, val interface{}) {
	if log == nil {
		return
	}
	log.Debug(msg, "env_var", name, strings.ToLower(name), val)
}

func warn(log *logger.Logger, msg, name, raw string, def interface{}) {
	if log == nil {
		return
	}
	log.Warn(msg, "env_var", name, strings.ToLower(name), raw, "default", def)
}
