// Package cli parses command-line arguments into the application
// configuration, merging settings from an HCL job file when one is named.
package cli
