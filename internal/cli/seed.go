package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"quicklinks/internal/seed"
)

func newSeedCmd(app *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users, content types, items and pins from a YAML fixture",
		Long: strings.TrimSpace(`
Load a YAML fixture into the store. Without --file the built-in demo content is used.
Existing rows with the same ids are replaced.
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := seed.Demo()
			if strings.TrimSpace(file) != "" {
				var err error
				if f, err = seed.LoadFile(file); err != nil {
					return writeErr(cmd, err)
				}
			}
			db, err := openDB(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()

			sum, err := seed.Apply(cmd.Context(), db, f, time.Now())
			if err != nil {
				return writeErr(cmd, err)
			}
			hints := []string{"quicklinks --dir " + app.Dir + " --user <login> serve"}
			return writeOut(cmd, app, map[string]any{"data": sum, "_hints": hints})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Fixture path (default: built-in demo)")
	return cmd
}
