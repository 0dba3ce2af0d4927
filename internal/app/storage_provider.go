package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/production-portal-backend/internal/observability"
	"github.com/yungbote/production-portal-backend/internal/platform/gcp"
	"github.com/yungbote/production-portal-backend/internal/platform/logger"
)

// swapped in tests
var newBlobStore = gcp.NewBlobStore

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidMode         StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorMissingEmulatorHost StorageProviderBootstrapErrorCode = "missing_emulator_host"
	StorageProviderBootstrapErrorInvalidEmulatorHost StorageProviderBootstrapErrorCode = "invalid_emulator_host"
	StorageProviderBootstrapErrorConnectFailed       StorageProviderBootstrapErrorCode = "connect_failed"
)

var bootstrapCodeForConfigError = map[gcp.ObjectStorageConfigErrorCode]StorageProviderBootstrapErrorCode{
	gcp.ObjectStorageConfigErrorInvalidMode:         StorageProviderBootstrapErrorInvalidMode,
	gcp.ObjectStorageConfigErrorMissingEmulatorHost: StorageProviderBootstrapErrorMissingEmulatorHost,
	gcp.ObjectStorageConfigErrorInvalidEmulatorHost: StorageProviderBootstrapErrorInvalidEmulatorHost,
}

type StorageProviderBootstrapError struct {
	Code         StorageProviderBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf("object storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v", e.Code, e.Mode, e.EmulatorHost, e.Cause)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveBlobStore builds the attachment store. No bucket means uploads are
// disabled: the store and the error are both nil.
func resolveBlobStore(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (gcp.BlobStore, error) {
	if cfg.AttachmentBucket == "" {
		return nil, nil
	}
	storageCfg, err := gcp.ResolveObjectStorageConfig(cfg.ObjectStorageMode, cfg.StorageEmulatorHost)
	mode := string(storageCfg.Mode)
	if err != nil {
		mode = cfg.ObjectStorageMode
	}

	var store gcp.BlobStore
	if err == nil {
		log.Info("selecting object storage provider", "mode", storageCfg.Mode, "mode_source", storageCfg.ModeSource(), "bucket", cfg.AttachmentBucket)
		store, err = newBlobStore(ctx, log, gcp.BucketConfig{
			Storage:       storageCfg,
			Name:          cfg.AttachmentBucket,
			CDNDomain:     cfg.AttachmentCDNDomain,
			PublicBaseURL: cfg.ObjectStorageBaseURL,
		})
	}
	if err != nil {
		classified := classifyStorageProviderBootstrapError(storageCfg, err)
		code := storageProviderBootstrapErrorCode(classified)
		metrics.ObserveObjectStorageBootstrap(mode, "error", string(code))
		log.Error("object storage bootstrap failed", "mode", mode, "emulator_host", storageCfg.EmulatorHost, "error_code", code, "error", err)
		return nil, classified
	}
	metrics.ObserveObjectStorageBootstrap(mode, "success", "none")
	return store, nil
}

// classifyStorageProviderBootstrapError tags err with a bootstrap code. Anything
// that is not a config error counts as a failed connection.
func classifyStorageProviderBootstrapError(storageCfg gcp.ObjectStorageConfig, err error) error {
	code := StorageProviderBootstrapErrorConnectFailed
	var cfgErr *gcp.ObjectStorageConfigError
	if errors.As(err, &cfgErr) {
		if c, ok := bootstrapCodeForConfigError[cfgErr.Code]; ok {
			code = c
		}
	}
	return &StorageProviderBootstrapError{Code: code, Mode: string(storageCfg.Mode), EmulatorHost: storageCfg.EmulatorHost, Cause: err}
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return StorageProviderBootstrapErrorConnectFailed
}
