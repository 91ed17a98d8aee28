package common

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/securityhub"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// ---------------------------------------------------------------------------
// Per-service client interfaces
//
// Each interface covers only the operations used by this project so tests
// can satisfy it with a small struct returning canned pages.
// ---------------------------------------------------------------------------

// STSClient is the subset of STS operations used by the loader.
type STSClient interface {
	GetCallerIdentity(
		ctx context.Context,
		params *sts.GetCallerIdentityInput,
		optFns ...func(*sts.Options),
	) (*sts.GetCallerIdentityOutput, error)
}

// SecurityHubClient covers the Security Hub control-catalog operations. It
// embeds the SDK paginator client interfaces so NewDescribeStandardsPaginator
// and NewListSecurityControlDefinitionsPaginator accept it directly.
type SecurityHubClient interface {
	securityhub.DescribeStandardsAPIClient
	securityhub.ListSecurityControlDefinitionsAPIClient
	GetSecurityControlDefinition(
		ctx context.Context,
		params *securityhub.GetSecurityControlDefinitionInput,
		optFns ...func(*securityhub.Options),
	) (*securityhub.GetSecurityControlDefinitionOutput, error)
}

// ---------------------------------------------------------------------------
// ClientSet and ClientFactory
// ---------------------------------------------------------------------------

// ClientSet holds initialised AWS service clients for one profile and region.
// All fields are interfaces so tests can swap in fakes.
type ClientSet struct {
	STS         STSClient
	SecurityHub SecurityHubClient
}

// ClientFactory creates a ClientSet from an aws.Config.
type ClientFactory func(cfg aws.Config) *ClientSet

// NewClientSet is the production ClientFactory.
func NewClientSet(cfg aws.Config) *ClientSet {
	return &ClientSet{
		STS:         sts.NewFromConfig(cfg),
		SecurityHub: securityhub.NewFromConfig(cfg),
	}
}
