// ABOUTME: Version constants for the demo tools
// ABOUTME: Shown in the player header and logged at startup
package version

const (
	// Version is the release version
	Version = "0.3.0"

	// Product is the product name
	Product = "MS7 Demo Player"

	// Manufacturer is the author
	Manufacturer = "ms7-demo"
)

// String returns the product line shown at startup
func String() string {
	return Product + " " + Version
}
