package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/gwillem/gripper/pkg/gripper"
)

type SetupCommand struct{}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(titleStyle.Render("Gripper Setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━"))
	fmt.Println()

	ports, err := gripper.ListPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found.")
		fmt.Println("Make sure the gripper is connected and powered on.")
		os.Exit(1)
	}

	cfg := loadConfig()

	gripperPort := cfg.Gripper.Port
	sensorPort := cfg.Sensor.Port
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which port is the gripper on?").
				Description("The controller that accepts grip/release commands").
				Options(portOptions(ports, false)...).
				Value(&gripperPort),
			huh.NewSelect[string]().
				Title("Which port is the magnetic field sensor on?").
				Options(portOptions(ports, true)...).
				Value(&sensorPort),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}

	cfg.Gripper.Port = gripperPort
	cfg.Sensor.Port = sensorPort

	guard := gripper.NewPortGuard()
	if !guard.Available(gripperPort) {
		fmt.Println(errorStyle.Render(fmt.Sprintf("Warning: %s is busy. Close other programs using it before connecting.", gripperPort)))
	}

	if err := cfg.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("  Gripper: %s\n", gripperPort)
	if sensorPort != "" {
		fmt.Printf("  Sensor:  %s\n", sensorPort)
	}
	fmt.Printf("Configuration saved to %s\n", gripper.DefaultConfigFile)
	fmt.Println()
	fmt.Println("Start the control panel with: " + titleStyle.Render("gripper control"))

	return nil
}

func portOptions(ports []gripper.PortInfo, allowNone bool) []huh.Option[string] {
	var options []huh.Option[string]
	for _, p := range ports {
		label := p.Name
		if p.Product != "" {
			label = fmt.Sprintf("%s (%s)", p.Name, p.Product)
		}
		options = append(options, huh.NewOption(label, p.Name))
	}
	if allowNone {
		options = append(options, huh.NewOption("None", ""))
	}
	return options
}
