// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Camera field viewer, YAML configuration, meteor track calibration
// 0.2.0 - Position-angle solver, photometric offset fit, calibration report
// 0.1.0 - Initial release: distortion model, pixel/sky projection, headless modes
