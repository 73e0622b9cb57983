package command

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// builtins returns the command table installed into every new Context.
// The table ends with the explicit End terminator so it reads like the
// static registration arrays it replaces.
func builtins() []Registration {
	return []Registration{
		{
			Name:    "help",
			Handler: HandlerFunc(helpCmd),
			Help:    "show help for all commands or a specific topic",
			Usage:   "help [command ...]",
		},
		{
			Name:    "usage",
			Handler: HandlerFunc(usageCmd),
			Help:    "show usage syntax for a command",
			Usage:   "usage <command ...>",
		},
		{
			Name:    "echo",
			Handler: HandlerFunc(echoCmd),
			Help:    "print its arguments",
			Usage:   "echo [text ...]",
		},
		{
			Name:    "sleep",
			Handler: HandlerFunc(sleepCmd),
			Help:    "pause command processing for a number of milliseconds",
			Usage:   "sleep <ms>",
		},
		{
			Name:    "mode",
			Handler: HandlerFunc(modeCmd),
			Help:    "print the current command mode",
		},
		{
			Name:    "init",
			Handler: HandlerFunc(initCmd),
			Help:    "finish configuration and enter exec mode",
			Mode:    ModeConfig,
		},
		{
			Name:    "script",
			Handler: HandlerFunc(scriptCmd),
			Help:    "evaluate a script through the session interpreter",
			Usage:   "script <text ...>",
		},
		{
			Name:    "target",
			Handler: HandlerFunc(targetCmd),
			Help:    "print the current debug target",
			Mode:    ModeExec,
		},
		{
			Name:    "exit",
			Handler: HandlerFunc(exitCmd),
			Help:    "end the session",
		},
		{
			Name:    "shutdown",
			Handler: HandlerFunc(exitCmd),
			Help:    "stop the session processing loop",
		},
		End,
	}
}

func helpCmd(inv *Invocation) error {
	reg := inv.Session().Registry()
	if len(inv.Args()) == 0 {
		reg.Walk(func(path []string, r Registration) {
			if r.Handler == nil && r.Help == "" {
				return
			}
			inv.Printf("%-24s %s", strings.Join(path, " "), r.Help)
		})
		return nil
	}

	r, err := reg.Describe(inv.Args())
	if err != nil {
		return fmt.Errorf("no such helptext: %w", err)
	}
	if r.Usage != "" {
		inv.Printf("usage: %s", r.Usage)
	}
	if r.Help != "" {
		inv.Printf("%s", r.Help)
	}
	return nil
}

func usageCmd(inv *Invocation) error {
	if len(inv.Args()) == 0 {
		return fmt.Errorf("usage: which command?")
	}
	r, err := inv.Session().Registry().Describe(inv.Args())
	if err != nil {
		return err
	}
	if r.Usage == "" {
		inv.Printf("%s", strings.Join(inv.Args(), " "))
		return nil
	}
	inv.Printf("%s", r.Usage)
	return nil
}

func echoCmd(inv *Invocation) error {
	inv.Printf("%s", strings.Join(inv.Args(), " "))
	return nil
}

func sleepCmd(inv *Invocation) error {
	if len(inv.Args()) != 1 {
		return fmt.Errorf("sleep: expected <ms>")
	}
	ms, err := strconv.Atoi(inv.Args()[0])
	if err != nil || ms < 0 {
		return fmt.Errorf("sleep: invalid duration %q", inv.Args()[0])
	}

	timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-inv.Ctx().Done():
		return inv.Ctx().Err()
	}
}

func modeCmd(inv *Invocation) error {
	inv.Printf("%s", inv.Session().Mode())
	return nil
}

func initCmd(inv *Invocation) error {
	// init twice would fail the mode gate (ConfigOnly), so no re-entry
	// check is needed here.
	if err := inv.Session().SetMode(ModeExec); err != nil {
		return err
	}
	inv.Session().Logger().Info("configuration stage complete, entering exec mode")
	return nil
}

func scriptCmd(inv *Invocation) error {
	interp := inv.Session().Interpreter()
	if interp == nil {
		return fmt.Errorf("script: no interpreter attached to this session")
	}
	if len(inv.Args()) == 0 {
		return fmt.Errorf("script: empty script")
	}
	out, err := interp.Evaluate(inv.Ctx(), strings.Join(inv.Args(), " "))
	if err != nil {
		return fmt.Errorf("script: %w", err)
	}
	if out != "" {
		inv.Printf("%s", out)
	}
	return nil
}

func targetCmd(inv *Invocation) error {
	ref, ok := inv.Session().CurrentTarget()
	if !ok {
		inv.Printf("no target attached")
		return nil
	}
	inv.Printf("%s (%s)", ref.Name, ref.State)
	return nil
}

func exitCmd(inv *Invocation) error {
	inv.Session().RequestShutdown()
	inv.Printf("shutting down")
	return nil
}
