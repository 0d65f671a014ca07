package discovery

import (
	"context"
	"net"

	"github.com/enbility/zeroconf/v3"
)

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string
}

// MDNSBrowser browses for agent services using zeroconf.
type MDNSBrowser struct {
	config BrowserConfig
}

// NewMDNSBrowser creates a new mDNS browser.
func NewMDNSBrowser(config BrowserConfig) *MDNSBrowser {
	return &MDNSBrowser{config: config}
}

// BrowseAgents searches for agents on the local network. Services are
// aggregated by instance name - addresses from multiple interfaces are
// combined into a single entry. The channel is closed when the context
// is cancelled.
func (b *MDNSBrowser) BrowseAgents(ctx context.Context) (<-chan *AgentService, error) {
	out := make(chan *AgentService)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	opts := b.browserOptions()

	go func() {
		defer close(out)

		// Track services by instance name, aggregating addresses
		services := make(map[string]*AgentService)

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc := entryToAgent(entry)
				if svc == nil {
					continue
				}

				existing, found := services[svc.InstanceName]
				if found {
					existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
				} else {
					services[svc.InstanceName] = svc
					select {
					case out <- svc:
					case <-ctx.Done():
						return
					}
				}

			case entry, ok := <-removed:
				if !ok {
					continue
				}
				delete(services, entry.Instance)

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceTypeAgent, Domain, entries, removed, opts...)
	}()

	return out, nil
}

// FindAgent searches for the agent managing a specific device.
// Returns when found or when the context is cancelled.
func (b *MDNSBrowser) FindAgent(ctx context.Context, deviceID string) (*AgentService, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	agents, err := b.BrowseAgents(ctx)
	if err != nil {
		return nil, err
	}

	for {
		select {
		case svc, ok := <-agents:
			if !ok {
				return nil, ctx.Err()
			}
			if svc.DeviceID == deviceID {
				return svc, nil
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (b *MDNSBrowser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption

	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}

	return opts
}

// entryToAgent converts a zeroconf entry to AgentService.
// Returns nil when the TXT records are not a valid agent advertisement.
func entryToAgent(entry *zeroconf.ServiceEntry) *AgentService {
	txt := StringsToTXTRecords(entry.Text)
	info, err := DecodeAgentTXT(txt)
	if err != nil {
		return nil
	}

	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	return &AgentService{
		InstanceName: entry.Instance,
		Host:         entry.HostName,
		Port:         uint16(entry.Port),
		Addresses:    addrs,
		AgentInfo:    *info,
	}
}

// mergeAddresses combines two address lists without duplicates.
func mergeAddresses(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, a := range existing {
		seen[a] = struct{}{}
	}
	for _, a := range incoming {
		if _, ok := seen[a]; !ok {
			existing = append(existing, a)
			seen[a] = struct{}{}
		}
	}
	return existing
}
