package services

import (
	"net/url"
	"strconv"
	"time"

	"github.com/Lllllllleong/recordexport/internal/gcp"
	"github.com/Lllllllleong/recordexport/internal/models"
)

// Backend names accepted in configuration.
const (
	StoreFirestore = "firestore"
	StoreMongoDB   = "mongodb"
	BlobGCS        = "gcs"
	BlobS3         = "s3"
)

// ExporterConfig holds all configuration for the export service.
type ExporterConfig struct {
	RecordStore         string
	ProjectID           string
	FirestoreCollection string
	FirestoreIDField    string
	MongoURI            string
	MongoDatabase       string
	MongoCollection     string
	PageSize            int

	BlobStore      string
	Bucket         string
	AWSRegion      string
	S3EndpointURL  string
	GCSSignerEmail string

	URLPolicy    string
	SignedURLTTL time.Duration
	Prefix       string

	NotificationTarget string
	NotificationSource string
	MetricsNamespace   string
}

// loadConfig loads and validates the environment. All problems are
// reported together in a *models.ConfigError.
func loadConfig() (*ExporterConfig, error) {
	cfgErr := &models.ConfigError{}
	require := func(key string) string {
		v := gcp.GetEnv(key, "")
		if v == "" {
			cfgErr.Missing = append(cfgErr.Missing, key)
		}
		return v
	}

	config := &ExporterConfig{
		RecordStore:        gcp.GetEnv("RECORD_STORE", StoreFirestore),
		BlobStore:          gcp.GetEnv("BLOB_STORE", BlobGCS),
		URLPolicy:          gcp.GetEnv("URL_POLICY", PolicySigned),
		Prefix:             gcp.GetEnv("EXPORT_PREFIX", "export"),
		NotificationSource: gcp.GetEnv("NOTIFICATION_SOURCE", "/record-exporter"),
		MetricsNamespace:   gcp.GetEnv("METRICS_NAMESPACE", "recordexport"),
		GCSSignerEmail:     gcp.GetEnv("GCS_SIGNER_EMAIL", ""),
		S3EndpointURL:      gcp.GetEnv("S3_ENDPOINT_URL", ""),
	}

	switch config.RecordStore {
	case StoreFirestore:
		config.ProjectID = require("PROJECT_ID")
		config.FirestoreCollection = require("FIRESTORE_COLLECTION")
		config.FirestoreIDField = gcp.GetEnv("FIRESTORE_ID_FIELD", "id")
	case StoreMongoDB:
		config.MongoURI = require("MONGODB_URI")
		config.MongoDatabase = require("MONGODB_DATABASE")
		config.MongoCollection = require("MONGODB_COLLECTION")
	default:
		cfgErr.Invalid = append(cfgErr.Invalid, "RECORD_STORE")
	}

	config.Bucket = require("EXPORT_BUCKET")
	switch config.BlobStore {
	case BlobGCS:
	case BlobS3:
		config.AWSRegion = require("AWS_REGION")
	default:
		cfgErr.Invalid = append(cfgErr.Invalid, "BLOB_STORE")
	}

	if config.URLPolicy != PolicySigned && config.URLPolicy != PolicyPublic {
		cfgErr.Invalid = append(cfgErr.Invalid, "URL_POLICY")
	}

	pageSize, err := strconv.Atoi(gcp.GetEnv("SCAN_PAGE_SIZE", "500"))
	if err != nil || pageSize <= 0 {
		cfgErr.Invalid = append(cfgErr.Invalid, "SCAN_PAGE_SIZE")
	}
	config.PageSize = pageSize

	ttl, err := time.ParseDuration(gcp.GetEnv("SIGNED_URL_TTL", "5m"))
	if err != nil || ttl <= 0 {
		cfgErr.Invalid = append(cfgErr.Invalid, "SIGNED_URL_TTL")
	}
	config.SignedURLTTL = ttl

	config.NotificationTarget = require("NOTIFICATION_TARGET")
	if config.NotificationTarget != "" {
		if u, err := url.Parse(config.NotificationTarget); err != nil || u.Scheme == "" || u.Host == "" {
			cfgErr.Invalid = append(cfgErr.Invalid, "NOTIFICATION_TARGET")
		}
	}

	if !cfgErr.Empty() {
		return nil, cfgErr
	}
	return config, nil
}
