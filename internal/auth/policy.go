package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/desertthunder/founders/internal/shared"
)

// Resources
const (
	ObjFounders     = "founders"
	ObjStartups     = "startups"
	ObjSkills       = "skills"
	ObjHobbies      = "hobbies"
	ObjHelpRequests = "help_requests"
	ObjEvents       = "events"
	ObjImports      = "imports"
	ObjUploads      = "uploads"
)

// Actions
const (
	ActRead   = "read"
	ActWrite  = "write"
	ActDelete = "delete"
)

const (
	roleAdmin  = "admin"
	roleMember = "member"
)

// Every authenticated caller has the member role; admins are granted through g.
const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (p.sub == "member" || g(r.sub, p.sub)) && keyMatch(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

var memberWrites = []string{ObjFounders, ObjStartups, ObjSkills, ObjHobbies, ObjHelpRequests, ObjUploads}

// Policy decides whether a principal may perform an action on a resource.
type Policy interface {
	Allow(p *Principal, object, action string) bool
	IsAdmin(p *Principal) bool
}

// CasbinPolicy is an RBAC [Policy]. Admins are identified by email.
type CasbinPolicy struct {
	enforcer *casbin.Enforcer
}

// NewPolicy builds the policy with adminEmails holding the admin role.
func NewPolicy(adminEmails []string) (*CasbinPolicy, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("authz: invalid model: %w", err)
	}
	enf, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: failed to initialize enforcer: %w", err)
	}

	rules := [][]string{{roleAdmin, "*", "*"}}
	for _, obj := range memberWrites {
		rules = append(rules, []string{roleMember, obj, ActWrite})
	}
	if _, err := enf.AddPolicies(rules); err != nil {
		return nil, fmt.Errorf("authz: failed to add policies: %w", err)
	}

	for _, email := range adminEmails {
		if key := shared.NormalizeKey(email); key != "" {
			if _, err := enf.AddRoleForUser(emailSubject(key), roleAdmin); err != nil {
				return nil, fmt.Errorf("authz: failed to add admin %s: %w", email, err)
			}
		}
	}
	return &CasbinPolicy{enforcer: enf}, nil
}

// Allow reports whether p may perform action on object. Reads are public; anonymous callers may do nothing else.
func (c *CasbinPolicy) Allow(p *Principal, object, action string) bool {
	if action == ActRead {
		return true
	}
	if p == nil {
		return false
	}
	ok, err := c.enforcer.Enforce(subject(p), object, action)
	return err == nil && ok
}

// IsAdmin reports whether p holds the admin role.
func (c *CasbinPolicy) IsAdmin(p *Principal) bool {
	if p == nil {
		return false
	}
	ok, err := c.enforcer.HasRoleForUser(subject(p), roleAdmin)
	return err == nil && ok
}

// subject names p for the enforcer. Both forms carry a prefix so no caller-supplied
// value can equal a role name, which g would match reflexively.
func subject(p *Principal) string {
	if key := shared.NormalizeKey(p.Email); key != "" {
		return emailSubject(key)
	}
	return "sub:" + p.Subject
}

func emailSubject(key string) string { return "email:" + key }
