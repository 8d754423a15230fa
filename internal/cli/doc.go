// Package cli is the winvault command-line shell.
//
// The root command opens the local vault and starts an interactive REPL:
// pick an identity from the roster, browse the team feed or your own
// archive, record and edit wins (with dictation and AI refinement), and open
// the monthly wrap. The users, list, wrap and version subcommands expose the
// read-only views non-interactively.
//
// App owns the store and every service; nothing here is package-global
// except the output seams used by tests.
package cli
