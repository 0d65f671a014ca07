package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/modemd-project/modemd-go/pkg/bus"
	"github.com/modemd-project/modemd-go/pkg/firmware"
	"github.com/modemd-project/modemd-go/pkg/settings"
	"github.com/modemd-project/modemd-go/pkg/signal"
	"github.com/modemd-project/modemd-go/pkg/wire"
)

// requestTimeout bounds every single bus request issued by the console.
const requestTimeout = 5 * time.Second

// console handles the interactive command loop.
type console struct {
	client *bus.Client
	device string
	rl     *readline.Instance
}

func newConsole(client *bus.Client, device string) (*console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          device + "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &console{
		client: client,
		device: device,
		rl:     rl,
	}, nil
}

// run starts the interactive command loop.
func (c *console) run() {
	defer c.rl.Close()

	c.printHelp()

	for {
		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "values", "v":
			c.cmdValues()

		case "rate", "r":
			c.cmdRate(args)

		case "state", "st":
			c.cmdState()

		case "settings", "s":
			c.cmdSettings(args)

		case "watch", "w":
			c.cmdWatch()

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (c *console) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
Agent Commands:
  values                 - Read current signal measurements
  rate [seconds]         - Show or set the polling rate (0 disables)
  state                  - Summarize the agent's exposed state
  settings [fastboot AT] - Show or set firmware update settings
  watch                  - Stream live attribute changes (Ctrl-C to stop)
  help                   - Show this help
  quit                   - Exit`)
}

// measurementNames orders the console's measurement output.
var measurementNames = []struct {
	id    uint16
	label string
}{
	{signal.AttrCdmaRssi, "CDMA RSSI (dBm)"},
	{signal.AttrCdmaEcio, "CDMA Ec/Io (dB)"},
	{signal.AttrEvdoRssi, "EVDO RSSI (dBm)"},
	{signal.AttrEvdoEcio, "EVDO Ec/Io (dB)"},
	{signal.AttrEvdoSinr, "EVDO SINR (dB)"},
	{signal.AttrEvdoIo, "EVDO Io (dBm)"},
	{signal.AttrGsmRssi, "GSM RSSI (dBm)"},
	{signal.AttrUmtsRssi, "UMTS RSSI (dBm)"},
	{signal.AttrUmtsEcio, "UMTS Ec/Io (dB)"},
	{signal.AttrLteRssi, "LTE RSSI (dBm)"},
	{signal.AttrLteRsrq, "LTE RSRQ (dB)"},
	{signal.AttrLteRsrp, "LTE RSRP (dBm)"},
	{signal.AttrLteSnr, "LTE S/N (dB)"},
}

func attrLabel(id uint16) string {
	for _, m := range measurementNames {
		if m.id == id {
			return m.label
		}
	}
	if id == signal.AttrRate {
		return "Rate (s)"
	}
	return fmt.Sprintf("attr %d", id)
}

func (c *console) cmdValues() {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var rate uint32
	if err := c.client.GetInto(ctx, c.device, signal.ObjectName, signal.AttrRate, &rate); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Polling rate: %d s\n", rate)

	for _, m := range measurementNames {
		var reading signal.Reading
		if err := c.client.GetInto(ctx, c.device, signal.ObjectName, m.id, &reading); err != nil {
			fmt.Fprintf(c.rl.Stdout(), "  %-18s error: %v\n", m.label, err)
			continue
		}
		if reading.Available {
			fmt.Fprintf(c.rl.Stdout(), "  %-18s %.1f\n", m.label, reading.Value)
		} else {
			fmt.Fprintf(c.rl.Stdout(), "  %-18s n/a\n", m.label)
		}
	}
}

func (c *console) cmdRate(args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if len(args) == 0 {
		var rate uint32
		if err := c.client.GetInto(ctx, c.device, signal.ObjectName, signal.AttrRate, &rate); err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
			return
		}
		fmt.Fprintf(c.rl.Stdout(), "Polling rate: %d s\n", rate)
		return
	}

	rate, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid rate: %s\n", args[0])
		return
	}

	_, err = c.client.Invoke(ctx, c.device, signal.ObjectName, signal.MethodSetup,
		map[string]any{"rate": uint32(rate)})
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
		return
	}
	if rate == 0 {
		fmt.Fprintln(c.rl.Stdout(), "Polling disabled")
	} else {
		fmt.Fprintf(c.rl.Stdout(), "Polling rate set to %d s\n", rate)
	}
}

// cmdState summarizes the agent's exposed state across capabilities.
func (c *console) cmdState() {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	fmt.Fprintf(c.rl.Stdout(), "Device: %s\n", c.device)

	var rate uint32
	if err := c.client.GetInto(ctx, c.device, signal.ObjectName, signal.AttrRate, &rate); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "  Signal:   unavailable (%v)\n", err)
	} else if rate == 0 {
		fmt.Fprintln(c.rl.Stdout(), "  Signal:   polling disabled")
	} else {
		fmt.Fprintf(c.rl.Stdout(), "  Signal:   polling every %d s\n", rate)
	}

	var method uint32
	if err := c.client.GetInto(ctx, c.device, firmware.ObjectName, firmware.AttrUpdateMethod, &method); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "  Firmware: unavailable (%v)\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "  Firmware: update method %s\n", settings.UpdateMethod(method))
}

// cmdSettings shows the firmware update settings, or applies new ones:
//
//	settings                 show the active settings
//	settings fastboot <AT>   switch to fastboot with the given AT command
func (c *console) cmdSettings(args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if len(args) == 0 {
		var method uint32
		if err := c.client.GetInto(ctx, c.device, firmware.ObjectName, firmware.AttrUpdateMethod, &method); err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
			return
		}
		fmt.Fprintf(c.rl.Stdout(), "Update method: %s\n", settings.UpdateMethod(method))
		if settings.UpdateMethod(method) == settings.MethodFastboot {
			var cmd string
			if err := c.client.GetInto(ctx, c.device, firmware.ObjectName, firmware.AttrFastbootAT, &cmd); err != nil {
				fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
				return
			}
			fmt.Fprintf(c.rl.Stdout(), "Fastboot AT:   %s\n", cmd)
		}
		return
	}

	if args[0] != "fastboot" || len(args) < 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: settings [fastboot <AT command>]")
		return
	}

	us := settings.NewUpdateSettings(settings.MethodFastboot)
	if err := us.SetFastbootAT(strings.Join(args[1:], " ")); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
		return
	}
	blob, err := us.Encode()
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
		return
	}

	_, err = c.client.Invoke(ctx, c.device, firmware.ObjectName, firmware.MethodSetUpdateSettings,
		map[string]any{firmware.ParamSettings: blob})
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintln(c.rl.Stdout(), "Update settings applied")
}

func (c *console) cmdWatch() {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	err := c.client.Subscribe(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
		return
	}

	fmt.Fprintln(c.rl.Stdout(), "Watching for changes (press Enter to stop)...")

	stop := make(chan struct{})
	go func() {
		_, _ = c.rl.Readline()
		close(stop)
	}()

	for {
		select {
		case n, ok := <-c.client.Notifications():
			if !ok {
				fmt.Fprintln(c.rl.Stdout(), "Connection closed")
				return
			}
			c.printNotification(n)
		case <-stop:
			return
		}
	}
}

func (c *console) printNotification(n *wire.Notification) {
	ts := time.Now().Format("15:04:05")

	if n.Object == firmware.ObjectName {
		for id, raw := range n.Changes {
			switch id {
			case firmware.AttrUpdateMethod:
				var method uint32
				if err := wire.Unmarshal(raw, &method); err == nil {
					fmt.Fprintf(c.rl.Stdout(), "[%s] %s/%s update method = %s\n",
						ts, n.Device, n.Object, settings.UpdateMethod(method))
				}
			case firmware.AttrFastbootAT:
				var cmd string
				if err := wire.Unmarshal(raw, &cmd); err == nil && cmd != "" {
					fmt.Fprintf(c.rl.Stdout(), "[%s] %s/%s fastboot AT = %s\n",
						ts, n.Device, n.Object, cmd)
				}
			}
		}
		return
	}

	for id, raw := range n.Changes {
		if id == signal.AttrRate {
			var rate uint32
			if err := wire.Unmarshal(raw, &rate); err == nil {
				fmt.Fprintf(c.rl.Stdout(), "[%s] %s/%s %s = %d\n", ts, n.Device, n.Object, attrLabel(id), rate)
			}
			continue
		}
		var reading signal.Reading
		if err := wire.Unmarshal(raw, &reading); err != nil {
			continue
		}
		if reading.Available {
			fmt.Fprintf(c.rl.Stdout(), "[%s] %s/%s %s = %.1f\n", ts, n.Device, n.Object, attrLabel(id), reading.Value)
		} else {
			fmt.Fprintf(c.rl.Stdout(), "[%s] %s/%s %s = n/a\n", ts, n.Device, n.Object, attrLabel(id))
		}
	}
}
