// Package common holds process-wide helpers shared by the commands.
package common

// Version is set at build time with
// -ldflags "-X github.com/ruteri/djilog-keychain/common.Version=..."
var Version = "dev"

// PackageName prefixes exported metric names.
const PackageName = "djilog_keychain"
