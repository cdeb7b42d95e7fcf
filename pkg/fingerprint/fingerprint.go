// Package fingerprint derives one-way device and IP hashes. Raw values are
// hashed with a service salt on receipt and never stored or logged.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

func hash(salt, value string) string {
	sum := sha256.Sum256([]byte(salt + ":" + value))
	return hex.EncodeToString(sum[:])
}

// Device hashes a client-supplied device fingerprint.
func Device(salt, deviceFP string) string {
	if deviceFP == "" {
		return ""
	}
	return hash(salt, deviceFP)
}

// IP hashes a raw client IP. The prefix keeps IP-derived entries
// distinguishable from device entries in the registry.
func IP(salt, rawIP string) string {
	if rawIP == "" {
		return ""
	}
	return "ip_" + hash(salt, rawIP)
}
