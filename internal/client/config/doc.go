// Package config loads runtime configuration for the AudioKeeper CLI.
//
// Sources, lowest precedence first:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. AUDIOKEEPER_SERVER_URL and AUDIOKEEPER_ONLINE_CHECK_INTERVAL.
//  4. Command-line flags.
//
// Flags:
//
//	-a string   base URL of the AudioKeeper API
//	-i int      online status check interval (seconds)
//
// JSON intervals accept "3s" style strings or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "online_check_interval": "3s"
//	}
package config
