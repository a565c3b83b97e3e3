package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/graduation-masterpiece/demo-repository/internal/platform/clientid"
)

type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

// New builds a zap-backed logger. "prod"/"production" selects the JSON
// encoder at info level; anything else is the console encoder at debug.
func New(mode string) (*Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if m := strings.ToLower(strings.TrimSpace(mode)); m == "prod" || m == "production" {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: z.Sugar()}, nil
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() {
	if l != nil && l.SugaredLogger != nil {
		_ = l.SugaredLogger.Sync()
	}
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.SugaredLogger.Debugw(msg, scrub(kv)...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.SugaredLogger.Infow(msg, scrub(kv)...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.SugaredLogger.Warnw(msg, scrub(kv)...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.SugaredLogger.Errorw(msg, scrub(kv)...) }
func (l *Logger) Fatal(msg string, kv ...interface{}) { l.SugaredLogger.Fatalw(msg, scrub(kv)...) }

func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(scrub(kv)...)}
}

const redacted = "[REDACTED]"

type fieldAction int

const (
	keep fieldAction = iota
	mask
	digest
)

var secretFragments = []string{"token", "authorization", "password", "secret", "api_key", "apikey", "access_key"}

// Client addresses are replaced by the same digest the like limiter keys on,
// so a log line can be matched to a lock.
var addressKeys = []string{"client_ip", "client_id", "remote_addr"}

func actionFor(key string) fieldAction {
	for _, f := range secretFragments {
		if strings.Contains(key, f) {
			return mask
		}
	}
	for _, f := range addressKeys {
		if strings.Contains(key, f) {
			return digest
		}
	}
	return keep
}

var (
	scrubOnce    sync.Once
	scrubEnabled = true
)

// LOG_REDACTION_ENABLED=false turns scrubbing off for local debugging.
func scrubbing() bool {
	scrubOnce.Do(func() {
		switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_REDACTION_ENABLED"))) {
		case "0", "false", "no", "off":
			scrubEnabled = false
		}
	})
	return scrubEnabled
}

func scrub(kv []interface{}) []interface{} {
	if len(kv) == 0 || !scrubbing() {
		return kv
	}
	out := make([]interface{}, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		out[i+1] = scrubValue(normKey(out[i]), out[i+1])
	}
	return out
}

func scrubValue(key string, val interface{}) interface{} {
	if key != "" {
		switch actionFor(key) {
		case mask:
			return redacted
		case digest:
			if h := clientid.Hash(stringify(val)); h != "" {
				return "hash:" + h[:12]
			}
			return ""
		}
	}
	switch v := val.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, inner := range v {
			out[k] = scrubValue(normKey(k), inner)
		}
		return out
	case string:
		if looksLikeJWT(v) {
			return redacted
		}
	}
	return val
}

func normKey(k interface{}) string {
	return strings.ToLower(strings.TrimSpace(stringify(k)))
}

func looksLikeJWT(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
