package zkproof

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/scs"
	"github.com/consensys/gnark/test/unsafekzg"
)

var (
	// compiledCircuit is the process-wide compiled circuit.
	compiledCircuit *CompiledCircuit
	compileMu       sync.Mutex
)

// CompiledCircuit contains the constraint system and PLONK keys.
type CompiledCircuit struct {
	ConstraintSystem constraint.ConstraintSystem
	ProvingKey       plonk.ProvingKey
	VerifyingKey     plonk.VerifyingKey
}

// CompileCircuit compiles OwnershipCircuit and runs the PLONK setup over
// BN254. It takes several seconds; callers normally use GetCompiledCircuit.
//
// The SRS comes from unsafekzg and is only suitable for development. A
// deployment that verifies proofs on chain needs keys from a ceremony.
func CompileCircuit() (*CompiledCircuit, error) {
	var circuit OwnershipCircuit

	cs, err := frontend.Compile(ecc.BN254.ScalarField(), scs.NewBuilder, &circuit)
	if err != nil {
		return nil, fmt.Errorf("compile circuit: %w", err)
	}

	srs, srsLagrange, err := unsafekzg.NewSRS(cs)
	if err != nil {
		return nil, fmt.Errorf("generate SRS: %w", err)
	}

	pk, vk, err := plonk.Setup(cs, srs, srsLagrange)
	if err != nil {
		return nil, fmt.Errorf("setup keys: %w", err)
	}

	return &CompiledCircuit{
		ConstraintSystem: cs,
		ProvingKey:       pk,
		VerifyingKey:     vk,
	}, nil
}

// GetCompiledCircuit returns the cached circuit, compiling it on first use.
func GetCompiledCircuit() (*CompiledCircuit, error) {
	compileMu.Lock()
	defer compileMu.Unlock()

	if compiledCircuit != nil {
		return compiledCircuit, nil
	}

	compiled, err := CompileCircuit()
	if err != nil {
		return nil, err
	}
	compiledCircuit = compiled
	return compiledCircuit, nil
}

// Key files written by Save.
const (
	constraintSystemFile = "ownership.scs"
	provingKeyFile       = "ownership.pk"
	verifyingKeyFile     = "ownership.vk"
)

// ErrNoKeys is returned by LoadCompiledCircuit when dir holds no saved keys.
var ErrNoKeys = errors.New("zkproof: no saved keys")

// Save writes the constraint system and both keys to dir. Proofs made with
// these keys stay verifiable after a restart that loads them.
func (c *CompiledCircuit) Save(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create key directory: %w", err)
	}
	files := []struct {
		name string
		w    io.WriterTo
	}{
		{constraintSystemFile, c.ConstraintSystem},
		{provingKeyFile, c.ProvingKey},
		{verifyingKeyFile, c.VerifyingKey},
	}
	for _, f := range files {
		if err := writeFile(filepath.Join(dir, f.name), f.w); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, w io.WriterTo) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	buf := bufio.NewWriter(f)
	if _, err := w.WriteTo(buf); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := buf.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// LoadCompiledCircuit reads a circuit saved with Save.
func LoadCompiledCircuit(dir string) (*CompiledCircuit, error) {
	if _, err := os.Stat(filepath.Join(dir, verifyingKeyFile)); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w in %s", ErrNoKeys, dir)
	}

	c := &CompiledCircuit{
		ConstraintSystem: plonk.NewCS(ecc.BN254),
		ProvingKey:       plonk.NewProvingKey(ecc.BN254),
		VerifyingKey:     plonk.NewVerifyingKey(ecc.BN254),
	}
	files := []struct {
		name string
		r    io.ReaderFrom
	}{
		{constraintSystemFile, c.ConstraintSystem},
		{provingKeyFile, c.ProvingKey},
		{verifyingKeyFile, c.VerifyingKey},
	}
	for _, f := range files {
		if err := readFile(filepath.Join(dir, f.name), f.r); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func readFile(path string, r io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := r.ReadFrom(bufio.NewReader(f)); err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return nil
}

// LoadOrCompile loads the circuit saved in dir. When dir has none it
// compiles a new one and saves it there.
func LoadOrCompile(dir string) (*CompiledCircuit, error) {
	c, err := LoadCompiledCircuit(dir)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrNoKeys) {
		return nil, err
	}

	c, err = CompileCircuit()
	if err != nil {
		return nil, err
	}
	if err := c.Save(dir); err != nil {
		return nil, fmt.Errorf("save keys: %w", err)
	}
	return c, nil
}
