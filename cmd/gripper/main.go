package main

import (
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/gwillem/gripper/internal/log"
	"github.com/gwillem/gripper/pkg/gripper"
)

type Options struct {
	LogLevel string `long:"log-level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"Log level"`

	Ports    PortsCommand    `command:"ports" description:"List serial ports"`
	Setup    SetupCommand    `command:"setup" description:"Choose the gripper and sensor ports"`
	Control  ControlCommand  `command:"control" description:"Interactive gripper control panel"`
	Send     SendCommand     `command:"send" description:"Send a single action (grip, release, stop)"`
	Classify ClassifyCommand `command:"classify" description:"Classify camera frames and trigger a gripper action"`
	Monitor  MonitorCommand  `command:"monitor" alias:"plot" description:"Live view of the magnetic field sensor"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "Gripper - serial control for the smart gripper"
	parser.CommandHandler = func(command flags.Commander, args []string) error {
		log.Init(opts.LogLevel)
		if command == nil {
			return nil
		}
		return command.Execute(args)
	}

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}

// loadConfig returns the saved configuration, or defaults when none exists.
func loadConfig() *gripper.Config {
	if !gripper.ConfigExists() {
		return gripper.DefaultConfig()
	}
	cfg, err := gripper.LoadConfig()
	if err != nil {
		log.Warn("ignoring unreadable config", "file", gripper.DefaultConfigFile, "err", err)
		return gripper.DefaultConfig()
	}
	log.Debug("loaded config", "file", gripper.DefaultConfigFile)
	return cfg
}

// newDialer returns a serial dialer whose guard logs through slog.
func newDialer(baud int) *gripper.Dialer {
	d := gripper.NewDialer()
	d.Baud = baud
	d.Guard.Logf = log.Printf
	return d
}
