// Package cli provides the interactive bakery console client.
//
// It wires configuration, the local credential database, the REST client
// and the session services, and runs a REPL over them. The console is a
// harness around the session core: every command maps to one service call
// and failures are shown as the same title/message pair a screen would use.
//
// Key features:
//   - Register / Login / Logout, with two-factor verification
//   - Forgot-password and reset flow, first-time password setting
//   - Profile and cart, with a cart counter polled while signed in
//   - Two-factor status, enable and disable
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
