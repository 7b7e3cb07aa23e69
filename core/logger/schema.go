package logger

import "strings"

var levelNames = map[string]string{
	"debug":   "DEBUG",
	"info":    "INFO",
	"warn":    "WARN",
	"warning": "WARN",
	"error":   "ERROR",
}

// outcome values outside this set are dropped from records.
var knownOutcomes = map[string]struct{}{
	"ok":        {},
	"fail":      {},
	"rejected":  {},
	"cancelled": {},
	"published": {},
	"expired":   {},
}

func normalizeLevel(level string) string {
	if level == "" {
		return "INFO"
	}
	if mapped, ok := levelNames[strings.ToLower(level)]; ok {
		return mapped
	}
	return strings.ToUpper(level)
}

func normalizeOutcome(outcome string) (string, bool) {
	outcome = strings.ToLower(strings.TrimSpace(outcome))
	_, ok := knownOutcomes[outcome]
	return outcome, ok
}

var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"session_id",
	"handler",
	"step",
	"next_step",
	"command",
	"cb_key",
	"outcome",
	"duration_ms",
	"messages",
	"kb",
	"screenshots",
	"downloads",
	"message_id",
	"link",
	"payload",
	"username",
	"mode",
	"listen",
	"public_url",
	"addr",
	"db",
	"host",
	"port",
	"err",
	"err_code",
	"cause",
}
