package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/yungbote/production-portal-backend/internal/platform/gcp"
	"github.com/yungbote/production-portal-backend/internal/platform/logger"
)

func TestClassifyStorageProviderBootstrapError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want StorageProviderBootstrapErrorCode
	}{
		{"invalid mode", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorInvalidMode}, StorageProviderBootstrapErrorInvalidMode},
		{"missing host", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorMissingEmulatorHost}, StorageProviderBootstrapErrorMissingEmulatorHost},
		{"invalid host", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorInvalidEmulatorHost}, StorageProviderBootstrapErrorInvalidEmulatorHost},
		{"connect", errors.New("dial tcp: connection refused"), StorageProviderBootstrapErrorConnectFailed},
	}
	for _, tc := range cases {
		err := classifyStorageProviderBootstrapError(gcp.ObjectStorageConfig{Mode: gcp.ObjectStorageModeGCSEmulator}, tc.err)
		var got *StorageProviderBootstrapError
		if !errors.As(err, &got) {
			t.Fatalf("%s: expected StorageProviderBootstrapError, got=%T", tc.name, err)
		}
		if got.Code != tc.want {
			t.Fatalf("%s: code want=%q got=%q", tc.name, tc.want, got.Code)
		}
		if !errors.Is(err, tc.err) {
			t.Fatalf("%s: cause not preserved", tc.name)
		}
	}
}

func TestResolveBlobStoreWithoutBucketIsDisabled(t *testing.T) {
	store, err := resolveBlobStore(context.Background(), logger.Nop(), Config{}, nil)
	if err != nil || store != nil {
		t.Fatalf("want nil store and nil error, got store=%v err=%v", store, err)
	}
}

func TestResolveBlobStoreInvalidMode(t *testing.T) {
	_, err := resolveBlobStore(context.Background(), logger.Nop(), Config{
		AttachmentBucket:  "attachments",
		ObjectStorageMode: "invalid",
	}, nil)
	if code := storageProviderBootstrapErrorCode(err); code != StorageProviderBootstrapErrorInvalidMode {
		t.Fatalf("code: want=%q got=%q (err=%v)", StorageProviderBootstrapErrorInvalidMode, code, err)
	}
}

func TestResolveBlobStoreEmulatorHostErrors(t *testing.T) {
	cases := map[string]StorageProviderBootstrapErrorCode{
		"":          StorageProviderBootstrapErrorMissingEmulatorHost,
		"not-a-url": StorageProviderBootstrapErrorInvalidEmulatorHost,
	}
	for host, want := range cases {
		_, err := resolveBlobStore(context.Background(), logger.Nop(), Config{
			AttachmentBucket:    "attachments",
			ObjectStorageMode:   string(gcp.ObjectStorageModeGCSEmulator),
			StorageEmulatorHost: host,
		}, nil)
		if code := storageProviderBootstrapErrorCode(err); code != want {
			t.Fatalf("host %q: want=%q got=%q", host, want, code)
		}
	}
}

func TestResolveBlobStorePassesBucketConfig(t *testing.T) {
	orig := newBlobStore
	t.Cleanup(func() { newBlobStore = orig })

	var captured gcp.BucketConfig
	expected := &stubBlobStore{}
	newBlobStore = func(_ context.Context, _ *logger.Logger, cfg gcp.BucketConfig) (gcp.BlobStore, error) {
		captured = cfg
		return expected, nil
	}

	got, err := resolveBlobStore(context.Background(), logger.Nop(), Config{
		AttachmentBucket:    "attachments",
		AttachmentCDNDomain: "cdn.example.com",
		ObjectStorageMode:   string(gcp.ObjectStorageModeGCSEmulator),
		StorageEmulatorHost: "http://fake-gcs:4443",
	}, nil)
	if err != nil {
		t.Fatalf("resolveBlobStore: %v", err)
	}
	if got != expected {
		t.Fatalf("store: expected stub instance")
	}
	if captured.Name != "attachments" || captured.CDNDomain != "cdn.example.com" {
		t.Fatalf("bucket config: got=%+v", captured)
	}
	if captured.Storage.Mode != gcp.ObjectStorageModeGCSEmulator || captured.Storage.EmulatorHost != "http://fake-gcs:4443" {
		t.Fatalf("storage config: got=%+v", captured.Storage)
	}
}

func TestResolveBlobStoreConnectFailure(t *testing.T) {
	orig := newBlobStore
	t.Cleanup(func() { newBlobStore = orig })
	newBlobStore = func(context.Context, *logger.Logger, gcp.BucketConfig) (gcp.BlobStore, error) {
		return nil, errors.New("dial tcp: connection refused")
	}
	_, err := resolveBlobStore(context.Background(), logger.Nop(), Config{
		AttachmentBucket:  "attachments",
		ObjectStorageMode: string(gcp.ObjectStorageModeGCS),
	}, nil)
	if code := storageProviderBootstrapErrorCode(err); code != StorageProviderBootstrapErrorConnectFailed {
		t.Fatalf("code: want=%q got=%q", StorageProviderBootstrapErrorConnectFailed, code)
	}
}

type stubBlobStore struct{}

func (*stubBlobStore) Put(context.Context, string, string, io.Reader) error { return nil }

func (*stubBlobStore) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

func (*stubBlobStore) Attrs(context.Context, string) (*gcp.ObjectAttrs, error) {
	return &gcp.ObjectAttrs{}, nil
}

func (*stubBlobStore) Delete(context.Context, string) error { return nil }

func (*stubBlobStore) ListKeys(context.Context, string) ([]string, error) { return nil, nil }

func (*stubBlobStore) PublicURL(key string) string { return "https://cdn.example.com/" + key }
