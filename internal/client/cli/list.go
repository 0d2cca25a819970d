package cli

import "context"

func (a *App) list(ctx context.Context) {
	rows, err := a.api.ListEntries(ctx)
	if err != nil {
		a.printf("Error: %v\n", err)
		return
	}

	if len(rows) == 0 {
		a.printf("No entries\n")
		return
	}

	for _, r := range rows {
		switch r.Kind {
		case "text":
			a.printf("%s  %s  text  %q\n", r.CreatedAt.Local().Format("2006-01-02 15:04"), r.EntryID, r.Text)
		default:
			a.printf("%s  %s  file  %s", r.CreatedAt.Local().Format("2006-01-02 15:04"), r.EntryID, r.Name)
			if r.FileCount > 1 {
				a.printf("  (1 of %d in group)", r.FileCount)
			}
			a.printf("\n")
		}
	}
}

func (a *App) downloadURL(ctx context.Context, args []string) {
	if len(args) == 0 {
		a.printf("Usage: url <id> [storage key]\n")
		return
	}

	key := ""
	if len(args) > 1 {
		key = args[1]
	}

	link, err := a.api.DownloadURL(ctx, args[0], key)
	if err != nil {
		a.printf("Error: %v\n", err)
		return
	}
	a.printf("%s\n(valid for %d seconds)\n", link.URL, link.ExpiresIn)
}
