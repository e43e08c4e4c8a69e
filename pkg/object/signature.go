package object

import (
	"bytes"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"
)

// SignatureType names the scheme of a commit signature.
type SignatureType string

const (
	SignatureNone SignatureType = "none"
	SignaturePGP  SignatureType = "pgp"
	SignatureX509 SignatureType = "x509"
	SignatureSSH  SignatureType = "ssh"
)

var (
	ErrNoSignature  = errors.New("object is not signed")
	ErrBadSignature = errors.New("bad signature")
)

const (
	sshSigMagic       = "SSHSIG"
	sshSigArmorBegin  = "-----BEGIN SSH SIGNATURE-----"
	sshSigArmorEnd    = "-----END SSH SIGNATURE-----"
	sshSigVersion     = 1
	GitSignatureScope = "git"
)

// SignatureType reports the scheme from the armor line of c.Signature.
func (c *Commit) SignatureType() SignatureType {
	return detectSignatureType(c.Signature)
}

// SigningPayload returns the commit bytes that a signature covers: the
// commit as stored, minus its gpgsig headers.
func (c *Commit) SigningPayload() []byte {
	return bytes.Clone(c.signedPayload)
}

func detectSignatureType(sig string) SignatureType {
	first, _, _ := strings.Cut(sig, "\n")
	switch strings.TrimSpace(first) {
	case "-----BEGIN PGP SIGNATURE-----", "-----BEGIN PGP MESSAGE-----":
		return SignaturePGP
	case "-----BEGIN SIGNED MESSAGE-----":
		return SignatureX509
	case sshSigArmorBegin:
		return SignatureSSH
	default:
		return SignatureNone
	}
}

// sshSigBlob is the SSHSIG envelope following the magic preamble.
type sshSigBlob struct {
	Version       uint32
	PublicKey     []byte
	Namespace     string
	Reserved      string
	HashAlgorithm string
	Signature     []byte
}

// sshSignedData is what the signing key actually signs, after the magic.
type sshSignedData struct {
	Namespace     string
	Reserved      string
	HashAlgorithm string
	Hash          []byte
}

type sshSigWire struct {
	Format string
	Blob   []byte
	Rest   []byte `ssh:"rest"`
}

// VerifySSHSignature checks an armored SSHSIG signature over payload. The
// signing key must be one of allowed. It returns the key that signed.
func VerifySSHSignature(armored string, payload []byte, namespace string, allowed []ssh.PublicKey) (ssh.PublicKey, error) {
	blob, err := unarmorSSHSignature(armored)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(blob, []byte(sshSigMagic)) {
		return nil, fmt.Errorf("%w: missing %s preamble", ErrBadSignature, sshSigMagic)
	}

	var sig sshSigBlob
	if err := ssh.Unmarshal(blob[len(sshSigMagic):], &sig); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if sig.Version != sshSigVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadSignature, sig.Version)
	}
	if sig.Namespace != namespace {
		return nil, fmt.Errorf("%w: namespace %q, want %q", ErrBadSignature, sig.Namespace, namespace)
	}

	pub, err := ssh.ParsePublicKey(sig.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: public key: %v", ErrBadSignature, err)
	}
	if !keyAllowed(pub, allowed) {
		return nil, fmt.Errorf("%w: key %s is not allowed", ErrBadSignature, ssh.FingerprintSHA256(pub))
	}

	var digest []byte
	switch sig.HashAlgorithm {
	case "sha256":
		sum := sha256.Sum256(payload)
		digest = sum[:]
	case "sha512":
		sum := sha512.Sum512(payload)
		digest = sum[:]
	default:
		return nil, fmt.Errorf("%w: unsupported hash %q", ErrBadSignature, sig.HashAlgorithm)
	}

	var wire sshSigWire
	if err := ssh.Unmarshal(sig.Signature, &wire); err != nil {
		return nil, fmt.Errorf("%w: signature blob: %v", ErrBadSignature, err)
	}
	signed := append([]byte(sshSigMagic), ssh.Marshal(sshSignedData{
		Namespace:     sig.Namespace,
		Reserved:      sig.Reserved,
		HashAlgorithm: sig.HashAlgorithm,
		Hash:          digest,
	})...)
	if err := pub.Verify(signed, &ssh.Signature{Format: wire.Format, Blob: wire.Blob, Rest: wire.Rest}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	return pub, nil
}

// VerifyCommit verifies an SSH-signed commit against the allowed keys.
func VerifyCommit(c *Commit, allowed []ssh.PublicKey) (ssh.PublicKey, error) {
	switch c.SignatureType() {
	case SignatureNone:
		return nil, ErrNoSignature
	case SignatureSSH:
		return VerifySSHSignature(c.Signature, c.signedPayload, GitSignatureScope, allowed)
	default:
		return nil, fmt.Errorf("%w: %s signatures cannot be verified", ErrBadSignature, c.SignatureType())
	}
}

func unarmorSSHSignature(armored string) ([]byte, error) {
	text := strings.TrimSpace(armored)
	if !strings.HasPrefix(text, sshSigArmorBegin) || !strings.HasSuffix(text, sshSigArmorEnd) {
		return nil, fmt.Errorf("%w: not an armored SSH signature", ErrBadSignature)
	}
	body := text[len(sshSigArmorBegin) : len(text)-len(sshSigArmorEnd)]
	raw, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(body), ""))
	if err != nil {
		return nil, fmt.Errorf("%w: armor: %v", ErrBadSignature, err)
	}
	return raw, nil
}

func keyAllowed(pub ssh.PublicKey, allowed []ssh.PublicKey) bool {
	want := pub.Marshal()
	for _, k := range allowed {
		if bytes.Equal(k.Marshal(), want) {
			return true
		}
	}
	return false
}
