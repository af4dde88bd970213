package common

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// DefaultRegion is used when neither the profile nor the caller sets one.
// Billing data (Cost Explorer, AWS/Billing metrics) is served from us-east-1.
const DefaultRegion = "us-east-1"

// ConfigLoader loads an aws.Config. Replaced in tests so no real credentials
// are read.
type ConfigLoader func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error)

// DefaultAWSClientProvider is the production implementation of
// AWSClientProvider. It reads credentials from the standard AWS shared config
// and credentials files using the AWS SDK v2.
type DefaultAWSClientProvider struct {
	factory ClientFactory
	load    ConfigLoader
	region  string
}

// NewDefaultAWSClientProvider returns a provider backed by the real AWS SDK.
// region overrides the profile region when non-empty.
func NewDefaultAWSClientProvider(region string) *DefaultAWSClientProvider {
	return &DefaultAWSClientProvider{
		factory: NewClientSet,
		load:    awsconfig.LoadDefaultConfig,
		region:  region,
	}
}

// NewDefaultAWSClientProviderWithFactory returns a provider that uses f to
// create its ClientSet and load to read SDK configuration. Pass stubs in tests.
func NewDefaultAWSClientProviderWithFactory(f ClientFactory, load ConfigLoader, region string) *DefaultAWSClientProvider {
	return &DefaultAWSClientProvider{factory: f, load: load, region: region}
}

// LoadProfile loads the AWS SDK config for the named profile and returns a
// fully populated ProfileConfig including the resolved account ID.
//
// Pass an empty string to load the default profile.
func (p *DefaultAWSClientProvider) LoadProfile(ctx context.Context, profile string) (*ProfileConfig, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	if p.region != "" {
		opts = append(opts, awsconfig.WithRegion(p.region))
	}

	cfg, err := p.load(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS profile %q: %w", profileDisplayName(profile), err)
	}

	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}

	clients := p.factory(cfg)

	accountID, err := resolveAccountID(ctx, clients.STS)
	if err != nil {
		return nil, fmt.Errorf("resolve account ID for profile %q: %w", profileDisplayName(profile), err)
	}

	return &ProfileConfig{
		ProfileName: profileDisplayName(profile),
		AccountID:   accountID,
		Region:      cfg.Region,
		Config:      cfg,
		Clients:     clients,
	}, nil
}

// profileDisplayName returns a human-readable profile identifier. An empty
// string (the default profile) is shown as "default".
func profileDisplayName(profile string) string {
	if profile == "" {
		return "default"
	}
	return profile
}

// resolveAccountID calls STS GetCallerIdentity to retrieve the numeric AWS
// account ID for the credentials currently loaded in stsClient.
func resolveAccountID(ctx context.Context, stsClient STSClient) (string, error) {
	out, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("STS GetCallerIdentity: %w", err)
	}
	if out.Account == nil {
		return "", fmt.Errorf("STS GetCallerIdentity returned nil account")
	}
	return aws.ToString(out.Account), nil
}
