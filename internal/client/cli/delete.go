package cli

import "context"

func (a *App) delete(ctx context.Context, args []string) {
	if len(args) == 0 {
		a.printf("Usage: delete <id>\n")
		return
	}

	// Deleting one listed row of a multi-file group removes the whole
	// group; rows share the entry id.
	if err := a.api.DeleteEntry(ctx, args[0]); err != nil {
		a.printf("Error: %v\n", err)
		return
	}
	a.printf("Deleted entry %s\n", args[0])
}
