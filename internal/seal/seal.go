// Package seal encrypts audit-log exports at rest so a copy of the log
// can leave the storage root without exposing its contents. Sealing
// never touches the log itself.
package seal

import "io"

// Sealer seals and unseals export streams. Setup generates key
// material; Unseal requires the passphrase protecting the private key.
type Sealer interface {
	Setup(passphrase string) error
	Seal(r io.Reader, w io.Writer) error
	Unseal(passphrase string, r io.Reader, w io.Writer) error
	IsConfigured() bool
}
