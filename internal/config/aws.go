package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
)

// AWS loads the SDK configuration, pointing every client at Endpoint when
// one is set, as for DynamoDB local.
func (c *Config) AWS(ctx context.Context) (aws.Config, error) {
	options := []func(*awsConfig.LoadOptions) error{}
	if c.Region != "" {
		options = append(options, awsConfig.WithRegion(c.Region))
	}
	if c.Endpoint != "" {
		options = append(options, awsConfig.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
			func(service, region string, opts ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{URL: c.Endpoint}, nil
			},
		)))
	}
	cfg, err := awsConfig.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}
