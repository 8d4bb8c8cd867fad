// Package antivirus scans uploaded bytes before they are stored.
package antivirus

import (
	"context"
	"errors"
)

// ErrInfected is returned when a scanner reports a threat.
var ErrInfected = errors.New("malware detected")

// Scanner checks content for malware. A nil error means the content is clean.
type Scanner interface {
	Scan(ctx context.Context, data []byte) error
	Name() string
}

// ThreatError names the threat a scanner found.
type ThreatError struct {
	Scanner string
	Threat  string
}

func (e *ThreatError) Error() string {
	return e.Scanner + ": " + e.Threat
}

func (e *ThreatError) Unwrap() error { return ErrInfected }
