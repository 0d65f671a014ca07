// Package model defines the managed-device object model.
//
// A Device owns a set of exposed Objects, the bus-visible attribute and
// method surfaces published for its capabilities. Capability controllers
// create their Object during initialization, attach it to the device's
// public surface while the capability is supported, and detach it on
// shutdown.
//
// Attributes carry metadata, a current value, and a dirty flag; Flush
// delivers the accumulated dirty set to the registered flush handler so
// bus subscribers observe changes promptly instead of waiting for the
// next read.
package model
