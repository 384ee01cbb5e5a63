// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the conversion lifecycle (graph index,
// optional weight pass, accumulation, emission), decoupled from any
// specific entrypoint like a CLI.
package app
