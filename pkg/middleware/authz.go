package middleware

import (
	"fmt"
	"log/slog"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	mongodbadapter "github.com/casbin/mongodb-adapter/v3"
	"github.com/danielgtaylor/huma/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// Roles known to the service
const (
	RoleAdmin  = "admin"
	RolePlayer = "player"
)

// Resources and actions used in policies
const (
	ResourceCatalog    = "catalog"
	ResourceCharacters = "characters"
	ResourceCampaigns  = "campaigns"

	ActionRead  = "read"
	ActionWrite = "write"
)

const policyCollection = "casbin_policies"

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// defaultPolicies grants every role its baseline permissions
var defaultPolicies = [][]string{
	{roleSubject(RoleAdmin), "*", "*"},
	{roleSubject(RolePlayer), ResourceCatalog, ActionRead},
	{roleSubject(RolePlayer), ResourceCharacters, ActionRead},
	{roleSubject(RolePlayer), ResourceCharacters, ActionWrite},
	{roleSubject(RolePlayer), ResourceCampaigns, ActionRead},
	{roleSubject(RolePlayer), ResourceCampaigns, ActionWrite},
}

// Authorizer checks role based permissions with casbin
type Authorizer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewAuthorizer creates an authorizer whose policies persist in Mongo. A nil
// client yields an in-memory authorizer.
func NewAuthorizer(client *mongo.Client, dbName string) (*Authorizer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse casbin model: %w", err)
	}

	if client == nil {
		enforcer, err := casbin.NewSyncedEnforcer(m)
		if err != nil {
			return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
		}
		a := &Authorizer{enforcer: enforcer}
		if err := a.seed(); err != nil {
			return nil, err
		}
		slog.Info("Casbin authorizer initialized", "adapter", "memory")
		return a, nil
	}

	adapter, err := mongodbadapter.NewAdapterByDB(client, &mongodbadapter.AdapterConfig{
		DatabaseName:   dbName,
		CollectionName: policyCollection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin mongodb adapter: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load casbin policies: %w", err)
	}

	a := &Authorizer{enforcer: enforcer}
	if err := a.seed(); err != nil {
		return nil, err
	}

	slog.Info("Casbin authorizer initialized", "adapter", "mongodb", "collection", policyCollection)
	return a, nil
}

// NewMemoryAuthorizer creates an authorizer without persistence
func NewMemoryAuthorizer() *Authorizer {
	a, err := NewAuthorizer(nil, "")
	if err != nil {
		// the embedded model is static; failing here is a programming error
		panic(err)
	}
	return a
}

func (a *Authorizer) seed() error {
	for _, p := range defaultPolicies {
		if _, err := a.enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return fmt.Errorf("failed to seed policy %v: %w", p, err)
		}
	}
	return nil
}

// AssignRole records role for userID
func (a *Authorizer) AssignRole(userID, role string) error {
	if _, err := a.enforcer.AddGroupingPolicy(userSubject(userID), roleSubject(role)); err != nil {
		return fmt.Errorf("failed to assign role %s to %s: %w", role, userID, err)
	}
	return nil
}

// Allowed reports whether user may perform action on resource. Roles carried
// in the token are honored alongside stored role assignments.
func (a *Authorizer) Allowed(user *AuthenticatedUser, resource, action string) (bool, error) {
	if user == nil {
		return false, nil
	}

	subjects := []string{userSubject(user.UserID)}
	for _, role := range user.Roles {
		subjects = append(subjects, roleSubject(role))
	}

	for _, sub := range subjects {
		ok, err := a.enforcer.Enforce(sub, resource, action)
		if err != nil {
			return false, fmt.Errorf("failed to check policy for %s: %w", sub, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Require returns a huma 403 error when user lacks the permission
func (a *Authorizer) Require(user *AuthenticatedUser, resource, action string) error {
	allowed, err := a.Allowed(user, resource, action)
	if err != nil {
		slog.Error("Permission check failed", "error", err, "resource", resource, "action", action)
		return huma.Error500InternalServerError("Permission check failed")
	}
	if !allowed {
		return huma.Error403Forbidden(fmt.Sprintf("Permission %s:%s required", resource, action))
	}
	return nil
}

func userSubject(id string) string   { return "user:" + id }
func roleSubject(role string) string { return "role:" + role }
