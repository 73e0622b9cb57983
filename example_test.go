package tether_test

import (
	"context"
	"fmt"
	"log"

	"github.com/probelab/tether"
	"github.com/probelab/tether/pkg/command"
)

func Example() {
	session, err := tether.New("bench-1")
	if err != nil {
		log.Fatal(err)
	}
	if err := session.Start(); err != nil {
		log.Fatal(err)
	}
	defer session.Shutdown(context.Background())

	out, err := session.Execute(context.Background(), `echo "hello target"`)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(out)
	// Output: hello target
}

func Example_customCommands() {
	session, err := tether.New("bench-1",
		tether.WithCommands(nil,
			command.Registration{
				Name: "reset",
				Handler: command.HandlerFunc(func(inv *command.Invocation) error {
					inv.Printf("target reset")
					return nil
				}),
				Help: "reset the attached target",
			},
			command.End,
		),
	)
	if err != nil {
		log.Fatal(err)
	}
	if err := session.Start(); err != nil {
		log.Fatal(err)
	}
	defer session.Shutdown(context.Background())

	out, err := session.Execute(context.Background(), "reset")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(out)
	// Output: target reset
}
