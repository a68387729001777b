package menustate

import (
	"context"
	"fmt"
	"strconv"

	"quicklinks/internal/model"
)

// TogglePin flips the row's pin. The star changes only once the server answers.
func (c *Controller) TogglePin(ctx context.Context, id int64) error {
	c.mu.Lock()
	found := c.eachRow(id, func(*Row) {})
	c.mu.Unlock()
	if !found {
		return fmt.Errorf("%w: %d", ErrUnknownRow, id)
	}
	if c.cfg.Transport == nil {
		return errNoTransport
	}

	pinned, err := c.cfg.Transport.TogglePin(ctx, id)
	if err != nil {
		c.cfg.Logger.Warn("menustate: toggle pin", "item", id, "err", err)
		c.notify(failureNotice("Error toggling pin: ", "Failed to toggle pin.", err))
		return err
	}
	c.mu.Lock()
	c.eachRow(id, func(r *Row) { r.Pinned = pinned })
	c.mu.Unlock()
	return nil
}

// ChangeStatus applies the status selector. Selecting the current status sends nothing. Deleting asks for
// confirmation first; declining restores the selector without a request.
func (c *Controller) ChangeStatus(ctx context.Context, id int64, status model.Status) error {
	c.mu.Lock()
	var original model.Status
	found := c.eachRow(id, func(r *Row) {
		original = r.OriginalStatus
		r.Status = status
	})
	c.mu.Unlock()
	if !found {
		return fmt.Errorf("%w: %d", ErrUnknownRow, id)
	}
	if status == original {
		return nil
	}

	revert := func() {
		c.mu.Lock()
		c.eachRow(id, func(r *Row) { r.Status = r.OriginalStatus })
		c.mu.Unlock()
	}
	if status == model.StatusDelete {
		if c.cfg.Confirmer == nil || !c.cfg.Confirmer.Confirm(DeleteConfirmation) {
			revert()
			return ErrDeclined
		}
	}
	if c.cfg.Transport == nil {
		revert()
		return errNoTransport
	}

	if err := c.cfg.Transport.UpdateStatus(ctx, id, status); err != nil {
		revert()
		c.cfg.Logger.Warn("menustate: update status", "item", id, "status", string(status), "err", err)
		c.notify(failureNotice("Error updating status: ", "Failed to update status.", err))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if status == model.StatusDelete {
		c.removeRows(id)
		return nil
	}
	c.eachRow(id, func(r *Row) {
		r.Status = status
		r.OriginalStatus = status
		for i := range r.StatusOptions {
			r.StatusOptions[i].Selected = r.StatusOptions[i].Value == string(status)
		}
	})
	return nil
}

// ChangeType applies the post type selector. Selecting the current type sends nothing.
func (c *Controller) ChangeType(ctx context.Context, id int64, typ string) error {
	c.mu.Lock()
	var original string
	found := c.eachRow(id, func(r *Row) {
		original = r.OriginalType
		r.Type = typ
	})
	c.mu.Unlock()
	if !found {
		return fmt.Errorf("%w: %d", ErrUnknownRow, id)
	}
	if typ == original {
		return nil
	}

	revert := func() {
		c.mu.Lock()
		c.eachRow(id, func(r *Row) { r.Type = r.OriginalType })
		c.mu.Unlock()
	}
	if c.cfg.Transport == nil {
		revert()
		return errNoTransport
	}
	if err := c.cfg.Transport.UpdateType(ctx, id, typ); err != nil {
		revert()
		c.cfg.Logger.Warn("menustate: update type", "item", id, "type", typ, "err", err)
		c.notify(failureNotice("Error updating post type: ", "Failed to update post type.", err))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.eachRow(id, func(r *Row) {
		r.Type = typ
		r.OriginalType = typ
		for i := range r.TypeOptions {
			r.TypeOptions[i].Selected = r.TypeOptions[i].Value == typ
		}
	})
	return nil
}

// CopyID writes the item id to the clipboard, falling back to the secondary clipboard when the primary fails.
// On success the id label reads CopiedLabel for CopiedLabelDelay.
func (c *Controller) CopyID(id int64) error {
	text := strconv.FormatInt(id, 10)
	err := errNoClipboard
	if c.cfg.Clipboard != nil {
		err = c.cfg.Clipboard.WriteText(text)
	}
	if err != nil && c.cfg.FallbackClipboard != nil {
		c.cfg.Logger.Debug("menustate: clipboard fallback", "err", err)
		err = c.cfg.FallbackClipboard.WriteText(text)
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.copyN++
	n := c.copyN
	c.copied[id] = n
	c.cfg.Scheduler.AfterFunc(CopiedLabelDelay, func() {
		c.mu.Lock()
		if c.copied[id] == n {
			delete(c.copied, id)
		}
		c.mu.Unlock()
	})
	return nil
}

// IDLabel is the text shown in a row's id affordance.
func (c *Controller) IDLabel(id int64) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.copied[id]; ok {
		return CopiedLabel
	}
	return "ID: " + strconv.FormatInt(id, 10)
}
