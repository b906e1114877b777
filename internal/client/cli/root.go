package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

var errUsage = errors.New("usage")

const helpText = `Available commands:
  upload <path> [mime-type]              encrypt and store a file
  list                                   list stored files
  get <file-url> [dest|-]                download a decrypted file
  export <year> [dest|-]                 download the tax export ZIP
  summary <year>                         yearly totals
  monthly <year>                         monthly breakdown
  recent [n]                             newest ledger entries
  attach <income|expense> <id> <file-url>
  exit`

func (a *App) Root(ctx context.Context) {

	log.Println("Welcome to taxvault CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(a.reader)

	for {
		fmt.Fprint(a.out, "taxvault> ")
		if !scanner.Scan() {
			break
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		cmd, args := parts[0], parts[1:]
		if cmd == "exit" || cmd == "quit" {
			fmt.Fprintln(a.out, "Bye!")
			return
		}

		if err := a.execute(ctx, cmd, args); err != nil {
			log.Println(err.Error())
		}
	}
}

// execute runs one command line.
func (a *App) execute(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		fmt.Fprintln(a.out, helpText)
		return nil
	case "upload":
		return a.upload(ctx, args)
	case "list":
		return a.list(ctx)
	case "get":
		return a.get(ctx, args)
	case "export":
		return a.export(ctx, args)
	case "summary":
		return a.summary(ctx, args)
	case "monthly":
		return a.monthly(ctx, args)
	case "recent":
		return a.recent(ctx, args)
	case "attach":
		return a.attach(ctx, args)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}
