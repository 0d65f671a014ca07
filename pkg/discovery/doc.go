// Package discovery provides mDNS advertising and browsing for agents.
//
// A running agent advertises its bus endpoint as a _modemd._tcp service
// with TXT records describing the device and its capabilities. Control
// clients browse for agents on the local network instead of being
// configured with endpoint addresses.
package discovery
