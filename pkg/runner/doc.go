/*
Package runner implements the session processing loop of the tether core.

A Runner owns one dedicated goroutine that services a bounded submission
queue and the target backend's event feed until shutdown is requested.
All registry access and command dispatch for a session happen on that
goroutine; external submitters interact only through Submit/SubmitWait,
which hand back a Future resolved when the command has been dispatched.

# Lifecycle

	Idle -> Running -> Draining -> Stopped

Shutdown is cooperative: the exit/shutdown builtins (or Shutdown) raise
the context flag and wake the loop. While draining, queued commands are
rejected with dispatch.ErrShuttingDown and pending hardware events are
flushed one final time. A corrupted command context is fatal: the loop
stops immediately and every pending Future is resolved with the fatal
error.
*/
package runner
