package services

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/storage"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Lllllllleong/recordexport/internal/awss3"
	"github.com/Lllllllleong/recordexport/internal/gcp"
	"github.com/Lllllllleong/recordexport/internal/metrics"
	"github.com/Lllllllleong/recordexport/internal/mongodb"
	"github.com/Lllllllleong/recordexport/internal/notify"
)

// NewExporter creates an ExportFunction from the environment. A
// *models.ConfigError is returned before any client is created when the
// configuration is incomplete.
func NewExporter(ctx context.Context, registry prometheus.Registerer) (*ExportFunction, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	scanner, err := newScanner(ctx, config)
	if err != nil {
		return nil, err
	}
	blob, err := newBlobStore(ctx, config)
	if err != nil {
		return nil, err
	}
	policy, err := NewReferencePolicy(config.URLPolicy, blob, config.SignedURLTTL)
	if err != nil {
		return nil, err
	}
	publisher, err := notify.NewPublisher(config.NotificationTarget, config.NotificationSource)
	if err != nil {
		return nil, err
	}

	f := NewExportFunction(Dependencies{
		Scanner:   scanner,
		Blob:      blob,
		Policy:    policy,
		Publisher: publisher,
		Metrics:   metrics.NewExportMetrics(config.MetricsNamespace, registry),
	}, config.Prefix)

	slog.Info("Record exporter initialized.",
		"recordStore", config.RecordStore,
		"blobStore", config.BlobStore,
		"bucket", config.Bucket,
		"urlPolicy", config.URLPolicy,
	)
	return f, nil
}

func newScanner(ctx context.Context, config *ExporterConfig) (PageScanner, error) {
	switch config.RecordStore {
	case StoreMongoDB:
		client, err := mongodb.Connect(config.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("failed to create mongo client: %w", err)
		}
		return mongodb.NewScanner(client, config.MongoDatabase, config.MongoCollection, config.PageSize), nil
	default:
		client, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to create firestore client: %w", err)
		}
		return gcp.NewFirestoreScanner(client, config.FirestoreCollection, config.PageSize, config.FirestoreIDField), nil
	}
}

func newBlobStore(ctx context.Context, config *ExporterConfig) (BlobStore, error) {
	switch config.BlobStore {
	case BlobS3:
		store, err := awss3.NewStore(ctx, awss3.Config{
			Region:      config.AWSRegion,
			Bucket:      config.Bucket,
			EndpointURL: config.S3EndpointURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 store: %w", err)
		}
		return store, nil
	default:
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		return gcp.NewGCSStore(client, config.Bucket, config.GCSSignerEmail), nil
	}
}
