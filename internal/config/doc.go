// Package config provides configuration structures and utilities for the
// parcel CLI: defaults, flag-populated settings with validation, and the
// .parcel YAML configuration file, including rejection of the option keys
// parcel deliberately does not support.
package config
