package logger

import (
	"strings"
	"testing"
)

func TestSanitizeValueRedactsSensitiveKeys(t *testing.T) {
	cases := []string{"token", "authorization", "contact_email", "contact_phone", "jwt_secret"}
	for _, key := range cases {
		if got := sanitizeValue(key, "value"); got != "[REDACTED]" {
			t.Fatalf("key %q: want=[REDACTED] got=%v", key, got)
		}
	}
}

func TestSanitizeValueHashesIdentifiers(t *testing.T) {
	got, ok := sanitizeValue("actor_id", "7d6f0e2c-2f61-4a53-a1a4-d5d0a1f6a1b2").(string)
	if !ok || !strings.HasPrefix(got, "hash:") {
		t.Fatalf("actor_id: want hash:* got=%v", got)
	}
	if sanitizeValue("actor_id", "") != "" {
		t.Fatalf("empty id should hash to empty string")
	}
}

func TestSanitizeValueRedactsJWTLookingStrings(t *testing.T) {
	jwtLike := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.signature"
	if got := sanitizeValue("detail", jwtLike); got != "[REDACTED]" {
		t.Fatalf("jwt-like value: want=[REDACTED] got=%v", got)
	}
	if got := sanitizeValue("stage", "in_editing"); got != "in_editing" {
		t.Fatalf("plain value: want=in_editing got=%v", got)
	}
}

func TestNewTestModeIsNop(t *testing.T) {
	l, err := New("test")
	if err != nil {
		t.Fatalf("New(test): %v", err)
	}
	l.Info("dropped", "stage", "request")
	l.With("repo", "X").Debug("dropped")
	var nilLogger *Logger
	if nilLogger.With("k", "v") == nil {
		t.Fatalf("With on nil logger should return a usable logger")
	}
}

func TestSanitizeKVsNestedAndOddLength(t *testing.T) {
	if !redactionOn() {
		t.Skip("LOG_REDACTION_ENABLED is off")
	}
	out := sanitizeKVs([]interface{}{
		"payload", map[string]interface{}{"Contact_Email": "a@b.co", "stage": "request"},
		"dangling",
	})
	if len(out) != 3 {
		t.Fatalf("kv length: want=3 got=%d", len(out))
	}
	nested, ok := out[1].(map[string]interface{})
	if !ok || nested["Contact_Email"] != "[REDACTED]" || nested["stage"] != "request" {
		t.Fatalf("nested map: %+v", out[1])
	}
	if out[2] != "dangling" {
		t.Fatalf("dangling key: want=dangling got=%v", out[2])
	}
}
