// Command modemd-ctl is an interactive console for a running agent.
//
// It connects to the agent's websocket bus (or discovers one via mDNS)
// and offers commands to read signal measurements, change the polling
// rate, and watch live attribute changes.
//
// Usage:
//
//	modemd-ctl [flags]
//
// Flags:
//
//	-endpoint string  Bus endpoint, e.g. ws://127.0.0.1:8947/bus
//	-device string    Device ID (default "modem0"); used for discovery
//	                  when no endpoint is given
//	-peer string      Peer identity for authorization (default "modemd-ctl")
//
// Examples:
//
//	# Connect to a local agent
//	modemd-ctl -endpoint ws://127.0.0.1:8947/bus
//
//	# Discover the agent managing wwan0 via mDNS
//	modemd-ctl -device wwan0 -peer netops
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/modemd-project/modemd-go/pkg/bus"
	"github.com/modemd-project/modemd-go/pkg/discovery"
)

var (
	endpoint string
	deviceID string
	peer     string
)

func init() {
	flag.StringVar(&endpoint, "endpoint", "", "Bus endpoint, e.g. ws://127.0.0.1:8947/bus")
	flag.StringVar(&deviceID, "device", "modem0", "Device ID")
	flag.StringVar(&peer, "peer", "modemd-ctl", "Peer identity for authorization")
}

func main() {
	flag.Parse()

	if endpoint == "" {
		found, err := discoverEndpoint()
		if err != nil {
			fmt.Fprintf(os.Stderr, "No endpoint given and discovery failed: %v\n", err)
			os.Exit(1)
		}
		endpoint = found
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	client, err := bus.Dial(ctx, endpoint, peer)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	console, err := newConsole(client, deviceID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start console: %v\n", err)
		os.Exit(1)
	}
	console.run()
}

// discoverEndpoint browses mDNS for the agent managing the device.
func discoverEndpoint() (string, error) {
	fmt.Printf("Discovering agent for %s...\n", deviceID)

	ctx, cancel := context.WithTimeout(context.Background(), discovery.BrowseTimeout)
	defer cancel()

	browser := discovery.NewMDNSBrowser(discovery.BrowserConfig{})
	svc, err := browser.FindAgent(ctx, deviceID)
	if err != nil {
		return "", err
	}
	if len(svc.Addresses) == 0 {
		return "", fmt.Errorf("agent %s advertised no addresses", svc.InstanceName)
	}

	return fmt.Sprintf("ws://%s:%d/bus", svc.Addresses[0], svc.Port), nil
}
