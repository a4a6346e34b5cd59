package offer

import (
	"context"
	"fmt"

	"cine-pos/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// s3Loader implements Loader for gzipped offer feeds stored in AWS S3.
type s3Loader struct {
	client *s3.Client
	bucket string
	logger zerolog.Logger
}

// NewS3Loader creates a new S3-based offer loader.
func NewS3Loader(ctx context.Context, bucket, region string, logger zerolog.Logger) (Loader, error) {
	logger = logger.With().Str("component", "s3-offer-loader").Logger()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("S3 loader initialised")

	return &s3Loader{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		logger: logger,
	}, nil
}

// Load reads the offer feed stored under key.
func (l *s3Loader) Load(ctx context.Context, key string) ([]model.Offer, error) {
	result, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		l.logger.Error().
			Err(err).
			Str("bucket", l.bucket).
			Str("key", key).
			Msg("failed to get object from S3")
		return nil, fmt.Errorf("failed to get object from S3 (bucket=%s, key=%s): %w", l.bucket, key, err)
	}
	defer result.Body.Close()

	offers, err := decodeFeed(ctx, result.Body)
	if err != nil {
		l.logger.Error().Err(err).Str("key", key).Msg("failed to decode offer feed")
		return nil, fmt.Errorf("S3 offer feed %s: %w", key, err)
	}

	return offers, nil
}

// fallbackLoader tries the primary loader first, then the local one.
type fallbackLoader struct {
	primary   Loader
	fallback  Loader
	localPath string
	logger    zerolog.Logger
}

// NewFallbackLoader creates a loader that reads from primary and, on
// failure, reads localPath through fallback. A nil primary always falls back.
func NewFallbackLoader(primary, fallback Loader, localPath string, logger zerolog.Logger) Loader {
	return &fallbackLoader{
		primary:   primary,
		fallback:  fallback,
		localPath: localPath,
		logger:    logger.With().Str("component", "fallback-loader").Logger(),
	}
}

// Load reads key from the primary loader, falling back to the local copy.
func (l *fallbackLoader) Load(ctx context.Context, key string) ([]model.Offer, error) {
	if l.primary != nil {
		offers, err := l.primary.Load(ctx, key)
		if err == nil {
			return offers, nil
		}
		l.logger.Warn().
			Err(err).
			Str("key", key).
			Str("local_fallback", l.localPath).
			Msg("failed to load offer feed, falling back to local file")
	}

	if l.localPath == "" {
		return nil, fmt.Errorf("no local offer feed configured for %s", key)
	}

	return l.fallback.Load(ctx, l.localPath)
}
