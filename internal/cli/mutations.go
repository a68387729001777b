package cli

import (
	"context"

	"github.com/spf13/cobra"

	"quicklinks/internal/mutate"
	"quicklinks/internal/perm"
	"quicklinks/internal/store"
)

// mutator opens the store and resolves --user; the caller closes the store.
func mutator(ctx context.Context, app *App) (*store.DB, mutate.Mutator, mutate.Viewer, error) {
	db, err := openDB(ctx, app)
	if err != nil {
		return nil, mutate.Mutator{}, mutate.Viewer{}, err
	}
	u, err := currentUser(ctx, app, db)
	if err != nil {
		_ = db.Close()
		return nil, mutate.Mutator{}, mutate.Viewer{}, err
	}
	m := mutate.Mutator{Items: db, Pins: pinRepo(db)}
	return db, m, mutate.Viewer{UserID: u.ID, Perm: perm.ForUser(u)}, nil
}

func newPinsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pins",
		Short: "List or toggle --user's pinned items",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List pinned item ids, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openDB(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()
			u, err := currentUser(ctx, app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			set, err := pinRepo(db).Get(ctx, u.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			if set == nil {
				set = []int64{}
			}
			return writeOut(cmd, app, map[string]any{"data": set})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <item-id>",
		Short: "Pin an item, or unpin it when already pinned",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			db, m, v, err := mutator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()
			res, err := m.TogglePin(cmd.Context(), v, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"id":    id,
				"state": res.State(),
				"pins":  res.Pins,
			}})
		},
	})
	return cmd
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <item-id> <draft|pending|private|publish|delete>",
		Short: "Change an item's status the way the bar's status selector does",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			db, m, v, err := mutator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()
			res, err := m.UpdateStatus(cmd.Context(), v, id, args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"id":      id,
				"status":  res.Item.Status,
				"changed": res.Changed,
				"deleted": res.Deleted,
			}})
		},
	}
}

func newTypeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "type <item-id> <post-type>",
		Short: "Change an item's content type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			db, m, v, err := mutator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()
			res, err := m.UpdateType(cmd.Context(), v, id, args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"id":       id,
				"postType": res.Item.Type,
				"changed":  res.Changed,
			}})
		},
	}
}

func newUsersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()
			users, err := db.Users(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": users})
		},
	}
}
