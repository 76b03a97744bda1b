// ABOUTME: Version information
// ABOUTME: Product identity reported by the CLI, logs and monitor
package version

const (
	// Version is the release version
	Version = "0.1.0"

	// Product is the product name
	Product = "snddma"

	// Manufacturer identifies the maintainer
	Manufacturer = "Resonate Protocol"
)
