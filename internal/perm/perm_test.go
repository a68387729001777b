package perm

import (
	"testing"

	"quicklinks/internal/model"
)

func TestRoleOracle_Matrix(t *testing.T) {
	own := model.Item{ID: 1, AuthorID: 10, Status: model.StatusDraft}
	ownPublished := model.Item{ID: 2, AuthorID: 10, Status: model.StatusPublish}
	other := model.Item{ID: 3, AuthorID: 99, Status: model.StatusDraft}

	cases := []struct {
		role                  model.Role
		item                  model.Item
		edit, publish, delete bool
	}{
		{model.RoleAdministrator, other, true, true, true},
		{model.RoleEditor, other, true, true, true},
		{model.RoleAuthor, own, true, true, true},
		{model.RoleAuthor, ownPublished, true, true, true},
		{model.RoleAuthor, other, false, false, false},
		{model.RoleContributor, own, true, false, true},
		{model.RoleContributor, ownPublished, false, false, false},
		{model.RoleSubscriber, own, false, false, false},
		{model.Role("ghost"), own, false, false, false},
	}
	for _, tc := range cases {
		o := ForUser(model.User{ID: 10, Role: tc.role})
		if got := o.CanEdit(tc.item); got != tc.edit {
			t.Fatalf("%s CanEdit(%d) = %v; want %v", tc.role, tc.item.ID, got, tc.edit)
		}
		if got := o.CanPublish(tc.item); got != tc.publish {
			t.Fatalf("%s CanPublish(%d) = %v; want %v", tc.role, tc.item.ID, got, tc.publish)
		}
		if got := o.CanDelete(tc.item); got != tc.delete {
			t.Fatalf("%s CanDelete(%d) = %v; want %v", tc.role, tc.item.ID, got, tc.delete)
		}
	}
}

func TestRoleOracle_CanCreate(t *testing.T) {
	post := model.TypeDef{Slug: "post"}
	page := model.TypeDef{Slug: "page", CreateRole: model.RoleEditor}

	author := ForUser(model.User{ID: 1, Role: model.RoleAuthor})
	if !author.CanCreate(post) {
		t.Fatalf("expected author to create posts")
	}
	if author.CanCreate(page) {
		t.Fatalf("expected author not to create pages")
	}
	if !ForUser(model.User{ID: 2, Role: model.RoleEditor}).CanCreate(page) {
		t.Fatalf("expected editor to create pages")
	}
	if ForUser(model.User{ID: 3, Role: model.RoleSubscriber}).CanCreate(post) {
		t.Fatalf("expected subscriber not to create posts")
	}
}
