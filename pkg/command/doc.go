/*
Package command implements the debug-command registry and the per-session
command context.

Commands form a forest of named trees. Each node carries an optional
handler, help and usage text, a mode requirement, and child commands.
Resolution walks a token list down the tree and picks the deepest node
that has a handler; unconsumed tokens become handler arguments, so a
command may act both as a group and as an executable command.

The Context binds a registry to the session's collaborators (interpreter,
target backend) and tracks the current mode. Constructing a Context
installs the built-in commands (help, echo, init, exit, ...).

The registry is deliberately lock-free: all mutation and resolution for a
session happen on its runner goroutine.
*/
package command
