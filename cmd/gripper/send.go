package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/gwillem/gripper/internal/log"
	"github.com/gwillem/gripper/pkg/gripper"
)

type SendCommand struct {
	Port string `long:"port" short:"p" description:"Gripper serial port (default from gripper.json)"`
	Args struct {
		Action string `positional-arg-name:"action" description:"grip, release or stop"`
	} `positional-args:"yes" required:"yes"`
}

func (c *SendCommand) Execute(args []string) error {
	action, err := gripper.ParseAction(c.Args.Action)
	if err != nil {
		return err
	}

	cfg := loadConfig()
	port := c.Port
	if port == "" {
		port = cfg.Gripper.Port
	}
	if port == "" {
		fmt.Fprintln(os.Stderr, "No port configured. Run 'gripper setup' or pass --port.")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	conn, err := newDialer(cfg.Gripper.BaudOrDefault()).Dial(ctx, port)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Send(action); err != nil {
		return err
	}
	log.Info("sent", "action", action.Name(), "frame", fmt.Sprintf("%q", gripper.Frame(action)), "port", port)
	return nil
}
