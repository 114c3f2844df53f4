package secrets

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/kevin07696/subs-tracker/internal/domain/ports"
	"go.uber.org/zap"
)

var _ ports.SecretStore = (*AWSStore)(nil)

// AWSConfig contains configuration for the AWS Secrets Manager store
type AWSConfig struct {
	Region string

	// Optional: AWS profile name (for local development)
	Profile string

	// Optional: custom endpoint (for LocalStack testing)
	Endpoint string
}

// secretsManagerAPI is the subset of *secretsmanager.Client the store uses
type secretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSStore reads secrets from AWS Secrets Manager
type AWSStore struct {
	client secretsManagerAPI
	logger *zap.Logger
}

// NewAWSStore loads the default credential chain and builds a client
func NewAWSStore(ctx context.Context, cfg AWSConfig, logger *zap.Logger) (*AWSStore, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var clientOptions []func(*secretsmanager.Options)
	if cfg.Endpoint != "" {
		clientOptions = append(clientOptions, func(o *secretsmanager.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	logger.Info("AWS Secrets Manager store initialized", zap.String("region", cfg.Region))

	return &AWSStore{
		client: secretsmanager.NewFromConfig(awsConfig, clientOptions...),
		logger: logger,
	}, nil
}

// GetSecret retrieves the current SecretString of a secret name or ARN
func (s *AWSStore) GetSecret(ctx context.Context, path string) (string, error) {
	start := time.Now()
	result, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(path),
	})
	if err != nil {
		s.logger.Error("Failed to retrieve secret", zap.String("path", path), zap.Error(err))
		return "", fmt.Errorf("failed to get secret %s: %w", path, err)
	}
	if result.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", path)
	}

	s.logger.Info("Secret retrieved successfully",
		zap.String("path", path),
		zap.String("version", aws.ToString(result.VersionId)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return aws.ToString(result.SecretString), nil
}
