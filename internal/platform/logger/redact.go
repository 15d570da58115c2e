package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
)

const redacted = "[REDACTED]"

// Keys containing any of these fragments are replaced with [REDACTED].
var secretFragments = []string{"token", "authorization", "password", "secret", "api_key", "apikey", "email"}

// Document content and model prompts are never logged.
var contentKeys = map[string]bool{"text": true, "extracted_text": true, "prompt": true}

// Identifiers that stay correlatable but are not logged in the clear.
var hashedFragments = []string{"user_id", "owner_id"}

type redactPolicy struct {
	enabled bool
	salt    string
}

var (
	policyOnce sync.Once
	policy     redactPolicy
)

// currentPolicy reads LOG_REDACTION_ENABLED and LOG_HASH_SALT once per process.
func currentPolicy() redactPolicy {
	policyOnce.Do(func() {
		policy.enabled = true
		switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_REDACTION_ENABLED"))) {
		case "0", "false", "no", "off":
			policy.enabled = false
		}
		policy.salt = strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))
	})
	return policy
}

func sanitizeKVs(kv []interface{}) []interface{} {
	p := currentPolicy()
	if len(kv) == 0 || !p.enabled {
		return kv
	}
	out := make([]interface{}, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		name := stringify(out[i])
		out[i] = name
		out[i+1] = p.scrub(normalizeKey(name), out[i+1])
	}
	return out
}

func (p redactPolicy) scrub(key string, val interface{}) interface{} {
	switch {
	case key == "":
		return val
	case contentKeys[key] || containsAny(key, secretFragments):
		return redacted
	case containsAny(key, hashedFragments):
		return p.digest(val)
	}
	switch v := val.(type) {
	case map[string]interface{}:
		nested := make(map[string]interface{}, len(v))
		for k, inner := range v {
			nested[k] = p.scrub(normalizeKey(k), inner)
		}
		return nested
	case string:
		if isJWTShaped(v) {
			return redacted
		}
	}
	return val
}

func (p redactPolicy) digest(val interface{}) string {
	raw := stringify(val)
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(p.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

func isJWTShaped(s string) bool {
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
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
