package gcp

import "testing"

func TestCredentialOptions(t *testing.T) {
	env := map[string]string{}
	getenv := func(k string) string { return env[k] }

	if opts := credentialOptions(getenv); opts != nil {
		t.Fatalf("no credentials: want nil got %d options", len(opts))
	}
	env["GOOGLE_APPLICATION_CREDENTIALS"] = "/secrets/sa.json"
	if opts := credentialOptions(getenv); len(opts) != 1 {
		t.Fatalf("file credentials: want 1 option got %d", len(opts))
	}
	env["GOOGLE_APPLICATION_CREDENTIALS_JSON"] = `{"type":"service_account"}`
	if opts := credentialOptions(getenv); len(opts) != 1 {
		t.Fatalf("json credentials: want 1 option got %d", len(opts))
	}
}
