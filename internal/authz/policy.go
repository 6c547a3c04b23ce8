// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package authz implements the authorization gate: pure predicates that
// decide whether an actor may perform an operation on a resource. The
// policy is an explicit constructed value passed to services at startup,
// never ambient global state, so rules are unit-testable in isolation.
package authz

import "contractd/internal/models"

// Permission names a gated capability. Roles map to permission sets.
type Permission string

const (
	PermViewContracts   Permission = "view_contracts"
	PermCreateContracts Permission = "create_contracts"
	PermEditContracts   Permission = "edit_contracts"
	PermDeleteContracts Permission = "delete_contracts"
	PermSignContracts   Permission = "sign_contracts"
	PermExportContracts Permission = "export_contracts"

	PermViewTemplates    Permission = "view_templates"
	PermCreateTemplates  Permission = "create_templates"
	PermEditTemplates    Permission = "edit_templates"
	PermDeleteTemplates  Permission = "delete_templates"
	PermCloneTemplates   Permission = "clone_templates"
	PermPublishTemplates Permission = "publish_templates"

	PermManageUsers    Permission = "manage_users"
	PermViewStatistics Permission = "view_statistics"
)

// Policy holds the role-to-permission table and the ownership predicates.
type Policy struct {
	grants map[models.Role]map[Permission]bool
}

// NewPolicy constructs the default policy. Regular users hold the full
// contract set plus private template authoring; premium users may also
// publish public templates; admins hold everything.
func NewPolicy() *Policy {
	userPerms := []Permission{
		PermViewContracts, PermCreateContracts, PermEditContracts,
		PermDeleteContracts, PermSignContracts, PermExportContracts,
		PermViewTemplates, PermCreateTemplates, PermEditTemplates,
		PermDeleteTemplates, PermCloneTemplates,
		PermViewStatistics,
	}
	premiumPerms := append([]Permission{PermPublishTemplates}, userPerms...)
	adminPerms := append([]Permission{PermManageUsers}, premiumPerms...)

	p := &Policy{grants: make(map[models.Role]map[Permission]bool)}
	p.grant(models.RoleUser, userPerms)
	p.grant(models.RolePremium, premiumPerms)
	p.grant(models.RoleAdmin, adminPerms)
	return p
}

func (p *Policy) grant(role models.Role, perms []Permission) {
	set := make(map[Permission]bool, len(perms))
	for _, perm := range perms {
		set[perm] = true
	}
	p.grants[role] = set
}

// Can reports whether the actor's role holds the named permission.
func (p *Policy) Can(actor *models.User, perm Permission) bool {
	if actor == nil {
		return false
	}
	return p.grants[actor.Role][perm]
}

// CanViewContract allows the contract's owner or an admin.
func (p *Policy) CanViewContract(actor *models.User, c *models.Contract) bool {
	if actor == nil || c == nil {
		return false
	}
	return c.OwnerID == actor.ID || actor.IsAdmin()
}

// CanModifyContract allows update, delete, sign, and export for the
// contract's owner or an admin.
func (p *Policy) CanModifyContract(actor *models.User, c *models.Contract) bool {
	return p.CanViewContract(actor, c)
}

// CanViewTemplate allows anyone to see public templates; private
// templates are visible to their owner or an admin.
func (p *Policy) CanViewTemplate(actor *models.User, t *models.Template) bool {
	if t == nil {
		return false
	}
	if t.IsPublic {
		return true
	}
	if actor == nil {
		return false
	}
	return t.OwnerID == actor.ID || actor.IsAdmin()
}

// CanModifyTemplate allows update and delete for the template's owner or
// an admin.
func (p *Policy) CanModifyTemplate(actor *models.User, t *models.Template) bool {
	if actor == nil || t == nil {
		return false
	}
	return t.OwnerID == actor.ID || actor.IsAdmin()
}

// CanPublishTemplate reports whether the actor may mark templates public.
func (p *Policy) CanPublishTemplate(actor *models.User) bool {
	return p.Can(actor, PermPublishTemplates)
}
