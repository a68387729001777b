package model

import (
	"strings"
	"time"
)

type Status string

const (
	StatusDraft   Status = "draft"
	StatusPending Status = "pending"
	StatusPrivate Status = "private"
	StatusPublish Status = "publish"

	// StatusDelete is a pseudo-status: selecting it removes the item instead of updating it.
	StatusDelete Status = "delete"
)

// SelectableStatuses is the closed set accepted by the status selector, in display order.
var SelectableStatuses = []Status{StatusDraft, StatusPending, StatusPrivate, StatusPublish, StatusDelete}

func (s Status) Label() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusPending:
		return "Pending"
	case StatusPrivate:
		return "Private"
	case StatusPublish:
		return "Published"
	case StatusDelete:
		return "Delete"
	default:
		return string(s)
	}
}

func ParseSelectableStatus(raw string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	for _, v := range SelectableStatuses {
		if v == s {
			return s, true
		}
	}
	return "", false
}

// AttachmentType is the host's non-content type. It never appears in menus.
const AttachmentType = "attachment"

// DefaultType is used when the current content type cannot be inferred.
const DefaultType = "post"

type Item struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug,omitempty"`
	Type      string    `json:"type"`
	Status    Status    `json:"status"`
	AuthorID  int64     `json:"authorId"`
	MenuOrder int       `json:"menuOrder,omitempty"`
	Modified  time.Time `json:"modified"`
}

// TypeDef describes a content type registered with the store.
type TypeDef struct {
	Slug        string `json:"slug" yaml:"slug"`
	Label       string `json:"label" yaml:"label"`
	PluralLabel string `json:"pluralLabel" yaml:"pluralLabel"`
	Public      bool   `json:"public" yaml:"public"`
	ShowUI      bool   `json:"showUi" yaml:"showUi"`

	// Hierarchical types support manual ordering through Item.MenuOrder.
	Hierarchical bool `json:"hierarchical" yaml:"hierarchical"`

	// CreateRole is the least privileged role allowed to create items of this type.
	CreateRole Role `json:"createRole" yaml:"createRole"`
}

// Manageable reports whether the type is offered in type selectors and shortcuts.
func (t TypeDef) Manageable() bool {
	return t.Public && t.ShowUI && t.Slug != AttachmentType
}

type Role string

const (
	RoleSubscriber    Role = "subscriber"
	RoleContributor   Role = "contributor"
	RoleAuthor        Role = "author"
	RoleEditor        Role = "editor"
	RoleAdministrator Role = "administrator"
)

// Rank orders roles from least to most privileged. Unknown roles rank below subscriber.
func (r Role) Rank() int {
	switch Role(strings.ToLower(strings.TrimSpace(string(r)))) {
	case RoleSubscriber:
		return 1
	case RoleContributor:
		return 2
	case RoleAuthor:
		return 3
	case RoleEditor:
		return 4
	case RoleAdministrator:
		return 5
	default:
		return 0
	}
}

func (r Role) AtLeast(min Role) bool {
	return r.Rank() > 0 && r.Rank() >= min.Rank()
}

type User struct {
	ID          int64  `json:"id" yaml:"id"`
	Login       string `json:"login" yaml:"login"`
	DisplayName string `json:"displayName" yaml:"displayName"`
	Role        Role   `json:"role" yaml:"role"`
}
