package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Create(ctx context.Context) error
	Import(ctx context.Context) error
	Grant(ctx context.Context) error
	Enroll(ctx context.Context) error
	List(ctx context.Context) error
	Active(ctx context.Context) error
	Show(ctx context.Context, id string) error
	Revoke(ctx context.Context, id string) error
	Sweep(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	No identity:
//	  - help           show available commands
//	  - create         generate a new identity
//	  - import         import an identity from its private key
//	  - exit | quit    leave the program
//
//	With identity:
//	  - grant          grant one consent
//	  - enroll         consent to a set of data categories
//	  - (l)ist         list all consents
//	  - active         list active consents
//	  - show [id]      show one consent
//	  - revoke [id]    revoke a consent
//	  - sweep          expire overdue consents
//	  - whoami         show the identity address
//	  - logout         delete the identity from this device
//
// Errors returned by command handlers are ignored here; handlers report
// them to the user themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("cv (%s) > ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: grant, enroll, (l)ist, active, show [id], revoke [id], sweep, whoami, create, import, logout, exit")
			} else {
				printlnFn("Available commands: create, import, exit")
			}

		case "create":
			_ = a.Create(ctx)

		case "import":
			_ = a.Import(ctx)

		case "grant":
			_ = a.Grant(ctx)

		case "enroll":
			_ = a.Enroll(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "active":
			_ = a.Active(ctx)

		case "show":
			_ = a.Show(ctx, arg)

		case "revoke":
			_ = a.Revoke(ctx, arg)

		case "sweep":
			_ = a.Sweep(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
