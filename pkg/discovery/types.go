package discovery

import (
	"errors"
	"time"
)

// Service type constants for mDNS.
const (
	// ServiceTypeAgent is the service type for running agents.
	ServiceTypeAgent = "_modemd._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the default agent bus port.
	DefaultPort = 8947
)

// TXT record key constants.
const (
	TXTKeyDeviceID     = "DI"   // Device ID
	TXTKeyVersion      = "ver"  // Agent version
	TXTKeyManufacturer = "mfg"  // Modem manufacturer (optional)
	TXTKeyModel        = "mdl"  // Modem model (optional)
	TXTKeyCapabilities = "caps" // Capability object names (comma-separated)
)

// Timing constants.
const (
	// BrowseTimeout is the default timeout for mDNS browsing.
	BrowseTimeout = 10 * time.Second
)

// Limits.
const (
	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63
)

// Discovery errors.
var (
	// ErrMissingRequired indicates a required TXT record key is absent.
	ErrMissingRequired = errors.New("missing required TXT record")
)

// AgentInfo describes an agent for advertising.
type AgentInfo struct {
	// DeviceID is the managed device's identifier.
	DeviceID string

	// Port is the bus listen port. 0 means DefaultPort.
	Port uint16

	// Version is the agent version string.
	Version string

	// Manufacturer is the modem manufacturer, if known.
	Manufacturer string

	// Model is the modem model, if known.
	Model string

	// Capabilities lists the exposed capability object names.
	Capabilities []string
}

// AgentService is a browsed agent instance on the network.
type AgentService struct {
	// InstanceName is the mDNS instance name.
	InstanceName string

	// Host is the advertised hostname.
	Host string

	// Port is the bus port.
	Port uint16

	// Addresses are the resolved IP addresses as strings.
	Addresses []string

	// AgentInfo is the decoded TXT record content.
	AgentInfo
}
