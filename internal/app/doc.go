// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the transformation lifecycle from one SWIX
// source to one WiX fragment, decoupled from any specific entrypoint like a
// CLI.
package app
