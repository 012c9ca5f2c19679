package command

import (
	"context"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-tableviews/pkg/types"
	"github.com/google/uuid"
)

const (
	// FeatureUserDefaults gates personal (user scoped) default views.
	FeatureUserDefaults = "views.user_defaults"
)

func featureEnabled(ctx context.Context, gate featuregate.FeatureGate, key string, scope types.ScopeFilter, userID uuid.UUID) (bool, error) {
	if gate == nil {
		return true, nil
	}
	chain := featureScopeChain(scope, userID)
	if len(chain) == 0 {
		return gate.Enabled(ctx, key)
	}
	return gate.Enabled(ctx, key, featuregate.WithScopeChain(chain))
}

// featureScopeChain orders scopes most specific first. The project maps onto
// the tenant slot; go-featuregate has no project level.
func featureScopeChain(scope types.ScopeFilter, userID uuid.UUID) featuregate.ScopeChain {
	tenantID := ""
	orgID := ""
	if scope.ProjectID != uuid.Nil {
		tenantID = scope.ProjectID.String()
	}
	if scope.OrgID != uuid.Nil {
		orgID = scope.OrgID.String()
	}
	if tenantID == "" && orgID == "" && userID == uuid.Nil {
		return nil
	}

	chain := make(featuregate.ScopeChain, 0, 4)
	if userID != uuid.Nil {
		chain = append(chain, featuregate.ScopeRef{
			Kind:     featuregate.ScopeUser,
			ID:       userID.String(),
			TenantID: tenantID,
			OrgID:    orgID,
		})
	}
	if orgID != "" {
		chain = append(chain, featuregate.ScopeRef{
			Kind:     featuregate.ScopeOrg,
			ID:       orgID,
			TenantID: tenantID,
		})
	}
	if tenantID != "" {
		chain = append(chain, featuregate.ScopeRef{
			Kind:     featuregate.ScopeTenant,
			ID:       tenantID,
			TenantID: tenantID,
		})
	}
	return append(chain, featuregate.ScopeRef{Kind: featuregate.ScopeSystem})
}
