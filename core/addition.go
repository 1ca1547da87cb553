package core

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
)

type KeyPurpose string

const (
	KeyPurposeSig                KeyPurpose = "sig"
	KeyPurposeSHSAndSig          KeyPurpose = "shs-and-sig"
	KeyPurposeExternalEncryption KeyPurpose = "external-encryption"
)

type KeyAlgorithm string

const (
	KeyAlgorithmEd25519                KeyAlgorithm = "ed25519"
	KeyAlgorithmX25519XSalsa20Poly1305 KeyAlgorithm = "x25519-xsalsa20-poly1305"
)

const (
	CurveEd25519 = "ed25519"
	CurveX25519  = "x25519"
)

const publicKeySize = 32

var purposeAlgorithms = map[KeyPurpose]KeyAlgorithm{
	KeyPurposeSig:                KeyAlgorithmEd25519,
	KeyPurposeSHSAndSig:          KeyAlgorithmEd25519,
	KeyPurposeExternalEncryption: KeyAlgorithmX25519XSalsa20Poly1305,
}

// AccountKey is the key an account-add redemption attaches. Bytes is the
// base58 encoding of the raw public key.
type AccountKey struct {
	Purpose   KeyPurpose   `json:"purpose"`
	Algorithm KeyAlgorithm `json:"algorithm"`
	Bytes     string       `json:"bytes"`
}

type AccountAddition struct {
	Key     AccountKey `json:"key"`
	Consent string     `json:"consent"`
}

// Keypair is the collaborator-facing form of an AccountKey.
type Keypair struct {
	Curve  string `json:"curve"`
	Public string `json:"public"`
}

// AlgorithmForPurpose reports the only algorithm accepted for purpose.
func AlgorithmForPurpose(purpose KeyPurpose) (KeyAlgorithm, bool) {
	algorithm, ok := purposeAlgorithms[purpose]
	return algorithm, ok
}

func (a AccountAddition) Validate() error {
	if strings.TrimSpace(a.Consent) == "" {
		return newValidationError("consent", "consent is required")
	}
	return a.Key.Validate()
}

func (k AccountKey) Validate() error {
	if strings.TrimSpace(string(k.Purpose)) == "" {
		return newValidationError("key.purpose", "key purpose is required")
	}
	expected, ok := AlgorithmForPurpose(k.Purpose)
	if !ok {
		return newValidationError("key.purpose", fmt.Sprintf("unsupported key purpose %q", k.Purpose))
	}
	if strings.TrimSpace(string(k.Algorithm)) == "" {
		return newValidationError("key.algorithm", "key algorithm is required")
	}
	if k.Algorithm != expected {
		return newValidationError(
			"key.algorithm",
			fmt.Sprintf("key purpose %q requires algorithm %q, got %q", k.Purpose, expected, k.Algorithm),
		)
	}
	encoded := strings.TrimSpace(k.Bytes)
	if encoded == "" {
		return newValidationError("key.bytes", "key bytes are required")
	}
	if decoded := base58.Decode(encoded); len(decoded) != publicKeySize {
		return newValidationError("key.bytes", fmt.Sprintf("key bytes must be base58 of a %d-byte public key", publicKeySize))
	}
	return nil
}

// Keypair maps the key onto the curve naming used by account keyrings.
func (k AccountKey) Keypair() Keypair {
	curve := CurveEd25519
	if k.Algorithm == KeyAlgorithmX25519XSalsa20Poly1305 {
		curve = CurveX25519
	}
	return Keypair{Curve: curve, Public: strings.TrimSpace(k.Bytes)}
}

// ParseAccountAddition validates an untyped redemption payload.
func ParseAccountAddition(candidate map[string]any) (AccountAddition, error) {
	if candidate == nil {
		return AccountAddition{}, newValidationError("addition", "addition must be a record")
	}
	rawKey, ok := candidate["key"].(map[string]any)
	if !ok {
		return AccountAddition{}, newValidationError("key", "key must be a record")
	}
	purpose, err := requiredString(rawKey, "purpose")
	if err != nil {
		return AccountAddition{}, err
	}
	algorithm, err := requiredString(rawKey, "algorithm")
	if err != nil {
		return AccountAddition{}, err
	}
	bytes, err := requiredString(rawKey, "bytes")
	if err != nil {
		return AccountAddition{}, err
	}
	consent, err := requiredString(candidate, "consent")
	if err != nil {
		return AccountAddition{}, err
	}
	addition := AccountAddition{
		Key: AccountKey{
			Purpose:   KeyPurpose(purpose),
			Algorithm: KeyAlgorithm(algorithm),
			Bytes:     bytes,
		},
		Consent: consent,
	}
	if err := addition.Validate(); err != nil {
		return AccountAddition{}, err
	}
	return addition, nil
}
