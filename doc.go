/*
Package tether is a debug-command execution core for on-target debug
sessions.

It accepts textual debug/configuration commands, executes them against a
live session, and runs the session's processing loop on a dedicated
goroutine. Commands live in a tree-shaped registry; sessions move from a
configuration mode to an exec mode; transports (telnet, HTTP, the CLI)
feed lines into a bounded submission queue and receive the command
output back through futures.

The actual hardware link (JTAG/SWD, flash algorithms) and the script
interpreter are collaborators behind the interfaces in pkg/ports; tether
supplies the registry, dispatcher, and session loop around them.

# Usage

	session, err := tether.New("bench-1",
		tether.WithInterpreter(interp),
		tether.WithTargetBackend(probe),
	)
	if err != nil {
		log.Fatal(err)
	}
	if err := session.Start(); err != nil {
		log.Fatal(err)
	}
	defer session.Shutdown(context.Background())

	out, err := session.Execute(ctx, `echo "hello target"`)
*/
package tether
