// Package cli provides the interactive AudioKeeper command-line client.
//
// It wires configuration, the HTTP API client and services, and an
// interactive REPL. A background watcher probes the server and flips the
// prompt between online and offline.
//
// Commands: register, login, me, update, delete, files, addfile, rmfile,
// logout, help, exit.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
