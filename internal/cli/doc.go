// Package cli implements the interactive terminal front end: a line-based
// REPL whose commands depend on the role of the logged-in user.
package cli
