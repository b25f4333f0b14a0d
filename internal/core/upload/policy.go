// Package upload contains the pure rules of the evidence retry worker:
// when uploads are allowed and what to do with each pending item.
package upload

import (
	"fmt"
	"strings"
)

// NetworkKind mirrors the connectivity kinds the worker cares about.
type NetworkKind string

const (
	NetworkNone     NetworkKind = "none"
	NetworkWifi     NetworkKind = "wifi"
	NetworkCellular NetworkKind = "cellular"
	NetworkEthernet NetworkKind = "ethernet"
)

// Predicate decides whether uploads may run on the given network.
type Predicate func(kind NetworkKind) bool

// WifiOnly allows uploads on Wi-Fi only. This is the reference policy:
// evidence video is large and metered links are left alone.
func WifiOnly(kind NetworkKind) bool {
	return kind == NetworkWifi
}

// Unmetered allows uploads on Wi-Fi or wired links.
func Unmetered(kind NetworkKind) bool {
	return kind == NetworkWifi || kind == NetworkEthernet
}

// AnyNetwork allows uploads whenever the device is online.
func AnyNetwork(kind NetworkKind) bool {
	return kind != "" && kind != NetworkNone
}

// ParsePredicate maps a config value to a predicate.
func ParsePredicate(name string) (Predicate, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "wifi":
		return WifiOnly, nil
	case "unmetered":
		return Unmetered, nil
	case "any":
		return AnyNetwork, nil
	default:
		return nil, fmt.Errorf("unknown upload policy %q (valid: wifi, unmetered, any)", name)
	}
}
