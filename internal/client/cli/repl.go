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
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Verify(ctx context.Context) error
	Forgot(ctx context.Context) error
	Reset(ctx context.Context) error
	SetPassword(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Profile(ctx context.Context) error
	EditName(ctx context.Context) error
	Cart(ctx context.Context) error
	AddToCart(ctx context.Context, args []string) error
	TwoFactorStatus(ctx context.Context) error
	TwoFactorEnable(ctx context.Context) error
	TwoFactorDisable(ctx context.Context) error
	Logout(ctx context.Context) error
}

const (
	helpGuest  = "Available commands: register, login, verify, forgot, reset, exit"
	helpMember = "Available commands: whoami, profile, name, cart, add <productId> <qty> <stock>, " +
		"setpassword, 2fa-status, 2fa-enable, 2fa-disable, logout, exit"
)

// runREPL starts the read-eval-print loop of the bakery console.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF or when the user types "exit" or "quit".
//
// Errors returned by command handlers are ignored here; handlers report
// their own failures.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("bk %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpMember)
			} else {
				printlnFn(helpGuest)
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "verify":
			_ = a.Verify(ctx)

		case "forgot":
			_ = a.Forgot(ctx)

		case "reset":
			_ = a.Reset(ctx)

		case "setpassword":
			_ = a.SetPassword(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "name":
			_ = a.EditName(ctx)

		case "cart":
			_ = a.Cart(ctx)

		case "add":
			if len(args) != 3 {
				printlnFn("Usage: add <productId> <qty> <stock>")
				continue
			}
			_ = a.AddToCart(ctx, args)

		case "2fa-status":
			_ = a.TwoFactorStatus(ctx)

		case "2fa-enable":
			_ = a.TwoFactorEnable(ctx)

		case "2fa-disable":
			_ = a.TwoFactorDisable(ctx)

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
