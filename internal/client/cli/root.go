package cli

import (
	"bufio"
	"context"
	"strings"
)

func (a *App) Root(ctx context.Context) {

	a.printf("Welcome to FileDrop CLI (type 'help' for commands)\n")
	scanner := bufio.NewScanner(a.in)

	for {
		a.printf("fdrop> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			a.printf("Available commands: text <message>, file <path> [path...], list, url <id> [key], delete <id>, exit\n")
		case "text":
			a.sendText(ctx, strings.TrimSpace(strings.TrimPrefix(line, "text")))
		case "file":
			a.sendFiles(ctx, args)
		case "list":
			a.list(ctx)
		case "url":
			a.downloadURL(ctx, args)
		case "delete":
			a.delete(ctx, args)
		case "exit", "quit":
			a.printf("Bye!\n")
			return
		default:
			a.printf("Unknown command: %s\n", cmd)
		}
	}
}
