package notes

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/hkdf"
)

// ErrInvalidMnemonic is returned when an invalid BIP-39 mnemonic phrase is provided.
var ErrInvalidMnemonic = errors.New("notes: invalid mnemonic phrase")

// NewWithMnemonic generates a 24-word mnemonic and the note at index 0
// derived from it.
func NewWithMnemonic(assetID, balance uint64) (*Note, string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return nil, "", err
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, "", err
	}
	n, err := FromMnemonic(mnemonic, 0, assetID, balance)
	if err != nil {
		return nil, "", err
	}
	return n, mnemonic, nil
}

// FromMnemonic derives the note at index from a BIP-39 mnemonic. The same
// mnemonic and index always give the same secret and nullifier.
func FromMnemonic(mnemonic string, index uint32, assetID, balance uint64) (*Note, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	seed := bip39.NewSeed(mnemonic, "")

	info := []byte(fmt.Sprintf("innocence/note/%d", index))
	r := hkdf.New(sha256.New, seed, nil, info)

	n := &Note{AssetID: assetID, Balance: balance, CreatedAt: time.Now().UTC()}
	if _, err := io.ReadFull(r, n.Secret[:]); err != nil {
		return nil, fmt.Errorf("derive secret: %w", err)
	}
	if _, err := io.ReadFull(r, n.Nullifier[:]); err != nil {
		return nil, fmt.Errorf("derive nullifier: %w", err)
	}
	return n, nil
}
