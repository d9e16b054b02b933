package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/zgpcy/azure-quota-watch/internal/config"
)

// Credential obtains bearer tokens for the management endpoint via the
// default Azure credential chain (environment, workload identity,
// managed identity, CLI).
type Credential struct {
	cred  azcore.TokenCredential
	scope string
}

// NewCredential creates a credential for the configured management
// endpoint. The token scope is derived from the management URL so that
// sovereign clouds work unchanged.
func NewCredential(cfg *config.Config) (*Credential, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	return &Credential{
		cred:  cred,
		scope: cfg.ManagementURL + "/.default",
	}, nil
}

// Token returns a bearer token for the management endpoint.
func (c *Credential) Token(ctx context.Context) (string, error) {
	tk, err := c.cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{c.scope},
	})
	if err != nil {
		return "", fmt.Errorf("failed to acquire management token: %w", err)
	}
	return tk.Token, nil
}
