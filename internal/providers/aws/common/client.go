package common

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// ProfileConfig is a resolved AWS profile with its SDK configuration and
// initialised service clients.
type ProfileConfig struct {
	// ProfileName is the name from ~/.aws/config or "default".
	ProfileName string

	// AccountID is the account the credentials belong to (via STS).
	AccountID string

	// Region is the region the Security Hub catalog is read from. Region
	// availability columns in the export are relative to it.
	Region string

	// Config is the fully loaded AWS SDK v2 configuration.
	Config aws.Config

	Clients *ClientSet
}

// AWSClientProvider loads AWS configurations. It is the sole entry point for
// credential and region handling; credentials always come from the SDK
// default chain.
type AWSClientProvider interface {
	// LoadProfile returns a ProfileConfig for the named profile and region.
	// Empty strings select the default profile and the profile's region.
	LoadProfile(ctx context.Context, profile, region string) (*ProfileConfig, error)
}
