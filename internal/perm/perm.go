package perm

import (
	"quicklinks/internal/model"
)

// Oracle answers capability questions for one viewer.
type Oracle interface {
	CanEdit(it model.Item) bool
	CanPublish(it model.Item) bool
	CanDelete(it model.Item) bool
	CanCreate(t model.TypeDef) bool
}

// RoleOracle applies role-based capability rules for a single user.
//
// Rules:
// - editors and administrators can edit, publish and delete every item and create every type.
// - authors can edit, publish and delete their own items.
// - contributors can edit and delete their own items while they are unpublished, and never publish.
// - subscribers (and unknown roles) can do nothing.
// - CanCreate compares the user's role with the type's CreateRole (contributor when unset).
type RoleOracle struct {
	User model.User
}

func ForUser(u model.User) RoleOracle {
	return RoleOracle{User: u}
}

func (o RoleOracle) owns(it model.Item) bool {
	return o.User.ID > 0 && it.AuthorID == o.User.ID
}

func (o RoleOracle) CanEdit(it model.Item) bool {
	if it.ID <= 0 {
		return false
	}
	role := o.User.Role
	switch {
	case role.AtLeast(model.RoleEditor):
		return true
	case role.AtLeast(model.RoleAuthor):
		return o.owns(it)
	case role.AtLeast(model.RoleContributor):
		return o.owns(it) && !published(it)
	default:
		return false
	}
}

func (o RoleOracle) CanPublish(it model.Item) bool {
	if !o.CanEdit(it) {
		return false
	}
	return o.User.Role.AtLeast(model.RoleAuthor)
}

func (o RoleOracle) CanDelete(it model.Item) bool {
	return o.CanEdit(it)
}

func (o RoleOracle) CanCreate(t model.TypeDef) bool {
	min := t.CreateRole
	if min.Rank() == 0 {
		min = model.RoleContributor
	}
	return o.User.Role.AtLeast(min)
}

func published(it model.Item) bool {
	return it.Status == model.StatusPublish || it.Status == model.StatusPrivate
}
