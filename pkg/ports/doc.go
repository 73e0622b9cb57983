/*
Package ports defines the driven ports (interfaces) for the tether core.

These interfaces decouple the command execution core from its external
collaborators: the script interpreter, the hardware target backend, and
the command journal persistence.

# Key Interfaces

  - Interpreter: evaluates scripted command bodies on behalf of handlers.
  - TargetBackend: surfaces hardware events and the currently attached target.
  - JournalStore: persists the per-session trace of dispatched commands.
*/
package ports
