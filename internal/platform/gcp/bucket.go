package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/yungbote/production-portal-backend/internal/platform/logger"
)

// ErrObjectNotFound is returned when a key has no object.
var ErrObjectNotFound = errors.New("object not found")

type BucketConfig struct {
	Storage       ObjectStorageConfig
	Name          string
	CDNDomain     string
	PublicBaseURL string
}

// BlobStore is the attachment object store. Keys are bucket-relative paths.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Attrs(ctx context.Context, key string) (*ObjectAttrs, error)
	Delete(ctx context.Context, key string) error
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	PublicURL(key string) string
}

type ObjectAttrs struct {
	Size        int64
	ContentType string
	Updated     time.Time
	ETag        string
}

type bucketStore struct {
	log           *logger.Logger
	storageClient *storage.Client
	storageMode   ObjectStorageMode
	emulatorHost  string
	bucket        string
	cdnDomain     string
	publicBaseURL string
}

// NewBlobStore validates cfg and dials the bucket's storage client.
func NewBlobStore(ctx context.Context, log *logger.Logger, cfg BucketConfig) (BlobStore, error) {
	if err := ValidateObjectStorageConfig(cfg.Storage); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	bucket := strings.TrimSpace(cfg.Name)
	if bucket == "" {
		return nil, fmt.Errorf("missing env var ATTACHMENT_GCS_BUCKET_NAME")
	}
	publicBaseURL, publicBaseSource, err := resolveObjectStoragePublicBaseURL(cfg.Storage, cfg.PublicBaseURL)
	if err != nil {
		return nil, err
	}
	client, err := newStorageClientForMode(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	bs := &bucketStore{
		log:           log.With("service", "BlobStore", "bucket", bucket),
		storageClient: client,
		storageMode:   cfg.Storage.Mode,
		emulatorHost:  trimBase(cfg.Storage.EmulatorHost),
		bucket:        bucket,
		cdnDomain:     strings.TrimSpace(cfg.CDNDomain),
		publicBaseURL: publicBaseURL,
	}
	bs.log.Info("object storage ready",
		"mode", cfg.Storage.Mode,
		"mode_source", cfg.Storage.ModeSource(),
		"public_base_source", publicBaseSource,
		"public_base_url", publicBaseURL,
	)
	return bs, nil
}

func trimBase(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

func newStorageClientForMode(ctx context.Context, cfg ObjectStorageConfig) (*storage.Client, error) {
	switch cfg.Mode {
	case ObjectStorageModeGCS:
		return storage.NewClient(ctx, append(ClientOptionsFromEnv(), option.WithScopes(storage.ScopeReadWrite))...)
	case ObjectStorageModeGCSEmulator:
		// the storage client only honors the emulator through this variable
		_ = os.Setenv("STORAGE_EMULATOR_HOST", trimBase(cfg.EmulatorHost))
		return storage.NewClient(ctx, option.WithoutAuthentication())
	}
	return nil, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Mode: string(cfg.Mode)}
}

// resolveObjectStoragePublicBaseURL picks the base for PublicURL and names
// where it came from: an explicit override, the emulator host, or GCS itself.
func resolveObjectStoragePublicBaseURL(cfg ObjectStorageConfig, raw string) (baseURL, source string, err error) {
	if raw = strings.TrimSpace(raw); raw != "" {
		u, perr := url.Parse(raw)
		if perr != nil || u.Scheme == "" || u.Host == "" {
			return "", "", fmt.Errorf("invalid OBJECT_STORAGE_PUBLIC_BASE_URL=%q; expected absolute URL like http://localhost:4443", raw)
		}
		return trimBase(raw), "object_storage_public_base_url", nil
	}
	if cfg.IsEmulatorMode() {
		return trimBase(cfg.EmulatorHost), "storage_emulator_host", nil
	}
	return "", "gcs_default", nil
}

// objectErr maps storage.ErrObjectNotExist to ErrObjectNotFound.
func objectErr(action, key string, err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	return fmt.Errorf("gcs %s %q: %w", action, key, err)
}

func (bs *bucketStore) object(key string) *storage.ObjectHandle {
	return bs.storageClient.Bucket(bs.bucket).Object(key)
}

// Put writes body under key. A blank contentType is guessed from the extension.
func (bs *bucketStore) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := bs.object(key).NewWriter(ctx)
	w.ContentType = strings.TrimSpace(contentType)
	if w.ContentType == "" {
		w.ContentType = contentTypeForKey(key)
	}
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return objectErr("write", key, err)
	}
	if err := w.Close(); err != nil {
		return objectErr("commit", key, err)
	}
	return nil
}

var contentTypesByExt = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mov":  "video/quicktime",
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".zip":  "application/zip",
}

func contentTypeForKey(key string) string {
	key, _, _ = strings.Cut(strings.TrimSpace(key), "?")
	return contentTypesByExt[strings.ToLower(path.Ext(key))]
}

func (bs *bucketStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := bs.object(key).Delete(ctx); err != nil {
		return objectErr("delete", key, err)
	}
	return nil
}

func (bs *bucketStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	keys := []string{}
	it := bs.storageClient.Bucket(bs.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		switch {
		case errors.Is(err, iterator.Done):
			return keys, nil
		case err != nil:
			return nil, fmt.Errorf("gcs list %q: %w", prefix, err)
		}
		keys = append(keys, attrs.Name)
	}
}

// PublicURL prefers the CDN domain, then the emulator media endpoint, then
// OBJECT_STORAGE_PUBLIC_BASE_URL, then storage.googleapis.com.
func (bs *bucketStore) PublicURL(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	switch {
	case bs.cdnDomain != "":
		return "https://" + bs.cdnDomain + "/" + key
	case bs.storageMode == ObjectStorageModeGCSEmulator && (bs.publicBaseURL != "" || bs.emulatorHost != ""):
		base := bs.publicBaseURL
		if base == "" {
			base = bs.emulatorHost
		}
		return mediaURL(base, bs.bucket, key)
	case bs.publicBaseURL != "":
		return bs.publicBaseURL + "/" + bs.bucket + "/" + key
	}
	return "https://storage.googleapis.com/" + bs.bucket + "/" + key
}

func mediaURL(base, bucket, key string) string {
	return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", base, url.PathEscape(bucket), url.PathEscape(key))
}

// cancelOnClose ties a read deadline to the reader's lifetime.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *cancelOnClose) Close() error {
	defer r.cancel()
	return r.ReadCloser.Close()
}

// Open streams the object. Against the emulator it downloads over plain HTTP,
// since the emulator's XML read path is incomplete.
func (bs *bucketStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	var (
		rc  io.ReadCloser
		err error
	)
	if IsEmulatorObjectStorageMode(bs.storageMode) && bs.emulatorHost != "" {
		rc, err = bs.openEmulator(ctx, key)
	} else if rc, err = bs.object(key).NewReader(ctx); err != nil {
		err = objectErr("read", key, err)
	}
	if err != nil {
		cancel()
		return nil, err
	}
	return &cancelOnClose{ReadCloser: rc, cancel: cancel}, nil
}

func (bs *bucketStore) openEmulator(ctx context.Context, key string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL(bs.emulatorHost, bs.bucket, key), nil)
	if err != nil {
		return nil, fmt.Errorf("emulator download request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("emulator download: %w", err)
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, nil
	case http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return nil, fmt.Errorf("emulator download: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
}

func (bs *bucketStore) Attrs(ctx context.Context, key string) (*ObjectAttrs, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	attrs, err := bs.object(key).Attrs(ctx)
	if err != nil {
		return nil, objectErr("attrs", key, err)
	}
	return &ObjectAttrs{Size: attrs.Size, ContentType: attrs.ContentType, Updated: attrs.Updated, ETag: attrs.Etag}, nil
}
