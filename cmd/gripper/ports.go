package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/gripper/pkg/gripper"
)

type PortsCommand struct {
	Probe bool `long:"probe" description:"Check whether each port can be opened"`
}

func (c *PortsCommand) Execute(args []string) error {
	ports, err := gripper.ListPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println(gripper.NoPortsPlaceholder)
		return nil
	}

	guard := gripper.NewPortGuard()
	headers := []string{"Port", "USB", "VID:PID", "Product"}
	if c.Probe {
		headers = append(headers, "Status")
	}

	rows := make([][]string, 0, len(ports))
	for _, p := range ports {
		usb := ""
		if p.IsUSB {
			usb = "yes"
		}
		ids := ""
		if p.VID != "" {
			ids = p.VID + ":" + p.PID
		}
		row := []string{p.Name, usb, ids, p.Product}
		if c.Probe {
			if guard.Available(p.Name) {
				row = append(row, "free")
			} else {
				row = append(row, "busy")
			}
		}
		rows = append(rows, row)
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	fmt.Println(t.Render())
	return nil
}
