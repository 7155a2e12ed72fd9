// Package cli assembles the coremigration command-line interface: the Cobra
// command tree, the layered Viper configuration with its embedded defaults and
// the zap logger handed to every migration command.
package cli
