package main

import (
	"flag"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/leandrodaf/noterecorder/sdk/contracts"
	"github.com/leandrodaf/noterecorder/sdk/recorder"
	"go.uber.org/multierr"
)

var portStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))

func runDevices(args []string) error {
	fs := flag.NewFlagSet("devices", flag.ContinueOnError)
	c := addCommon(fs)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if _, err := c.resolve(fs); err != nil {
		return err
	}
	_, opts := c.options()

	var errs error
	in, err := recorder.NewInput(opts...)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("input: %w", err))
	} else {
		errs = multierr.Append(errs, listPorts("Inputs", in))
	}

	var out contracts.OutputMIDI
	if c.dryRun {
		out, err = recorder.NewConsoleOutput(opts...)
	} else {
		out, err = recorder.NewOutput(opts...)
	}
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("output: %w", err))
	} else {
		errs = multierr.Append(errs, listPorts("Outputs", out))
	}
	return multierr.Append(errs, recorder.Close(in, out))
}

func listPorts(title string, dev interface {
	ListDevices() ([]contracts.DeviceInfo, error)
}) error {
	ports, err := dev.ListDevices()
	fmt.Println(headerStyle.Render(title))
	if err != nil {
		fmt.Println(dimStyle.Render("  " + err.Error()))
		return nil
	}
	for _, p := range ports {
		line := fmt.Sprintf("  [%d] %s", p.ID, portStyle.Render(p.Name))
		if p.Manufacturer != "" {
			line += dimStyle.Render(" (" + p.Manufacturer + ")")
		}
		fmt.Println(line)
	}
	return nil
}
