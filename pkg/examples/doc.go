// Package examples provides reference backends demonstrating how to
// plug hardware protocol implementations into the agent.
//
// The simulated modem shows:
//   - Backend and value-loader implementation
//   - Plausible synthetic measurements for each access technology
//   - Firmware update settings handling
//
// It can serve as a template for real modem protocol backends.
package examples
