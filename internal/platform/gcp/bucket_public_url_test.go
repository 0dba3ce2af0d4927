package gcp

import "testing"

func TestResolveObjectStoragePublicBaseURL(t *testing.T) {
	emulator := ObjectStorageConfig{Mode: ObjectStorageModeGCSEmulator, EmulatorHost: "http://fake-gcs:4443"}

	baseURL, source, err := resolveObjectStoragePublicBaseURL(ObjectStorageConfig{Mode: ObjectStorageModeGCS}, "")
	if err != nil || baseURL != "" || source != "gcs_default" {
		t.Fatalf("gcs default: base=%q source=%q err=%v", baseURL, source, err)
	}

	baseURL, source, err = resolveObjectStoragePublicBaseURL(emulator, "")
	if err != nil {
		t.Fatalf("emulator fallback: %v", err)
	}
	if baseURL != "http://fake-gcs:4443" || source != "storage_emulator_host" {
		t.Fatalf("emulator fallback: want=%q/%q got=%q/%q", "http://fake-gcs:4443", "storage_emulator_host", baseURL, source)
	}

	baseURL, source, err = resolveObjectStoragePublicBaseURL(emulator, "http://localhost:4443/")
	if err != nil {
		t.Fatalf("override: %v", err)
	}
	if baseURL != "http://localhost:4443" || source != "object_storage_public_base_url" {
		t.Fatalf("override: got=%q/%q", baseURL, source)
	}

	if _, _, err := resolveObjectStoragePublicBaseURL(emulator, "localhost:4443"); err == nil {
		t.Fatalf("relative override: expected error")
	}
}

func TestPublicURL(t *testing.T) {
	cases := []struct {
		name  string
		store *bucketStore
		key   string
		want  string
	}{
		{
			name:  "gcs default",
			store: &bucketStore{bucket: "attachments", storageMode: ObjectStorageModeGCS},
			key:   "production/1/a.pdf",
			want:  "https://storage.googleapis.com/attachments/production/1/a.pdf",
		},
		{
			name:  "cdn",
			store: &bucketStore{bucket: "attachments", cdnDomain: "cdn.example.com"},
			key:   "/production/1/a.pdf",
			want:  "https://cdn.example.com/production/1/a.pdf",
		},
		{
			name:  "emulator",
			store: &bucketStore{bucket: "attachments", storageMode: ObjectStorageModeGCSEmulator, publicBaseURL: "http://localhost:4443"},
			key:   "production/1/a b.pdf",
			want:  "http://localhost:4443/storage/v1/b/attachments/o/production%2F1%2Fa%20b.pdf?alt=media",
		},
		{
			name:  "custom base",
			store: &bucketStore{bucket: "attachments", storageMode: ObjectStorageModeGCS, publicBaseURL: "https://files.example.com"},
			key:   "production/1/a.pdf",
			want:  "https://files.example.com/attachments/production/1/a.pdf",
		},
	}
	for _, tc := range cases {
		if got := tc.store.PublicURL(tc.key); got != tc.want {
			t.Fatalf("%s: want=%q got=%q", tc.name, tc.want, got)
		}
	}
}

func TestContentTypeForKey(t *testing.T) {
	if got := contentTypeForKey("production/x/brief.PDF"); got != "application/pdf" {
		t.Fatalf("pdf: got=%q", got)
	}
	if got := contentTypeForKey("production/x/notes.txt"); got != "" {
		t.Fatalf("unknown: got=%q", got)
	}
}
