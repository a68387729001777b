// Package mutate implements the three quick-link mutations: toggle-pin, update-status and update-type.
//
// Every operation checks the viewer's capabilities before touching the store, so a rejected request never leaves a
// partial write behind. Callers verify the anti-forgery nonce first (see NonceActions).
package mutate

import (
	"context"
	"strings"

	"quicklinks/internal/model"
	"quicklinks/internal/perm"
	"quicklinks/internal/pins"
	"quicklinks/internal/store"
)

const (
	OpTogglePin    = "toggle-pin"
	OpUpdateStatus = "update-status"
	OpUpdateType   = "update-type"
)

// NonceActions maps each operation to the action name its nonce is scoped to.
var NonceActions = map[string]string{
	OpTogglePin:    "quicklinks_pin",
	OpUpdateStatus: "quicklinks_status",
	OpUpdateType:   "quicklinks_type",
}

// ItemWriter is the subset of the item store the mutations need.
type ItemWriter interface {
	Item(ctx context.Context, id int64) (model.Item, error)
	SetItemStatus(ctx context.Context, id int64, status model.Status) error
	SetItemType(ctx context.Context, id int64, typ string) error
	DeleteItem(ctx context.Context, id int64) error
	Types(ctx context.Context) ([]model.TypeDef, error)
}

type Viewer struct {
	UserID int64
	Perm   perm.Oracle
}

type Mutator struct {
	Items ItemWriter
	Pins  pins.Repository
}

// editable loads the item and requires edit permission. Missing items are reported like forbidden ones.
func (m Mutator) editable(ctx context.Context, v Viewer, op string, id int64) (model.Item, error) {
	if id <= 0 {
		return model.Item{}, ValidationError{Field: "post", Err: ErrInvalidItem}
	}
	it, err := m.Items.Item(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return model.Item{}, AuthorizationError{Op: op, ItemID: id, Message: ErrInvalidItem.Error()}
		}
		return model.Item{}, MutationError{Op: op, ItemID: id, Message: "Failed to load post.", Err: err}
	}
	if v.Perm == nil || !v.Perm.CanEdit(it) {
		return model.Item{}, AuthorizationError{Op: op, ItemID: id, Message: ErrInvalidItem.Error()}
	}
	return it, nil
}

type PinResult struct {
	Pins   pins.Set
	Pinned bool
}

// State is the response payload value: "pinned" or "unpinned".
func (r PinResult) State() string {
	if r.Pinned {
		return "pinned"
	}
	return "unpinned"
}

func (m Mutator) TogglePin(ctx context.Context, v Viewer, id int64) (PinResult, error) {
	if _, err := m.editable(ctx, v, OpTogglePin, id); err != nil {
		return PinResult{}, err
	}
	next, pinned, err := pins.Toggle(ctx, m.Pins, v.UserID, id)
	if err != nil {
		return PinResult{}, MutationError{Op: OpTogglePin, ItemID: id, Message: "Failed to update pins.", Err: err}
	}
	return PinResult{Pins: next, Pinned: pinned}, nil
}

type StatusResult struct {
	Item    model.Item
	Changed bool
	Deleted bool
}

// UpdateStatus sets the item's status, or deletes it when status is "delete".
func (m Mutator) UpdateStatus(ctx context.Context, v Viewer, id int64, raw string) (StatusResult, error) {
	it, err := m.editable(ctx, v, OpUpdateStatus, id)
	if err != nil {
		return StatusResult{}, err
	}
	status, ok := model.ParseSelectableStatus(raw)
	if !ok {
		return StatusResult{}, ValidationError{Field: "status", Value: raw, Err: ErrInvalidStatus}
	}

	switch status {
	case model.StatusDelete:
		if !v.Perm.CanDelete(it) {
			return StatusResult{}, AuthorizationError{Op: OpUpdateStatus, ItemID: id, Message: "Cannot delete."}
		}
		if err := m.Items.DeleteItem(ctx, id); err != nil {
			return StatusResult{}, MutationError{Op: OpUpdateStatus, ItemID: id, Message: "Failed to delete.", Err: err}
		}
		return StatusResult{Item: it, Changed: true, Deleted: true}, nil
	case model.StatusPublish:
		if !v.Perm.CanPublish(it) {
			return StatusResult{}, AuthorizationError{Op: OpUpdateStatus, ItemID: id, Message: "Cannot publish."}
		}
	case model.StatusPrivate:
		if !v.Perm.CanPublish(it) {
			return StatusResult{}, AuthorizationError{Op: OpUpdateStatus, ItemID: id, Message: "Cannot make private."}
		}
	}

	if it.Status == status {
		return StatusResult{Item: it}, nil
	}
	if err := m.Items.SetItemStatus(ctx, id, status); err != nil {
		return StatusResult{}, MutationError{Op: OpUpdateStatus, ItemID: id, Message: "Failed to update status.", Err: err}
	}
	it.Status = status
	return StatusResult{Item: it, Changed: true}, nil
}

type TypeResult struct {
	Item    model.Item
	Changed bool
}

// UpdateType moves the item to another manageable type the viewer can create.
func (m Mutator) UpdateType(ctx context.Context, v Viewer, id int64, raw string) (TypeResult, error) {
	it, err := m.editable(ctx, v, OpUpdateType, id)
	if err != nil {
		return TypeResult{}, err
	}
	slug := strings.TrimSpace(raw)
	types, err := m.Items.Types(ctx)
	if err != nil {
		return TypeResult{}, MutationError{Op: OpUpdateType, ItemID: id, Message: "Failed to update post type.", Err: err}
	}
	var target model.TypeDef
	found := false
	for _, t := range types {
		if t.Slug == slug && t.Manageable() {
			target, found = t, true
			break
		}
	}
	if !found {
		return TypeResult{}, ValidationError{Field: "post_type", Value: raw, Err: ErrInvalidType}
	}
	if !v.Perm.CanCreate(target) {
		return TypeResult{}, AuthorizationError{Op: OpUpdateType, ItemID: id, Message: "Cannot create posts of this type."}
	}

	if it.Type == slug {
		return TypeResult{Item: it}, nil
	}
	if err := m.Items.SetItemType(ctx, id, slug); err != nil {
		return TypeResult{}, MutationError{Op: OpUpdateType, ItemID: id, Message: "Failed to update post type.", Err: err}
	}
	it.Type = slug
	return TypeResult{Item: it, Changed: true}, nil
}
