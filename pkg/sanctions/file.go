package sanctions

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ParseAddresses reads one hex address per line. Blank lines and text after
// '#' are ignored.
func ParseAddresses(r io.Reader) ([]common.Address, error) {
	var addrs []common.Address
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if !common.IsHexAddress(text) {
			return nil, fmt.Errorf("sanctions: line %d: invalid address %q", line, text)
		}
		addrs = append(addrs, common.HexToAddress(text))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("sanctions: read list: %w", err)
	}
	return addrs, nil
}

// LoadFile builds a snapshot from a list file.
func LoadFile(path string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sanctions: open list: %w", err)
	}
	defer f.Close()

	addrs, err := ParseAddresses(f)
	if err != nil {
		return nil, err
	}
	return NewList(addrs)
}

// WriteAddresses writes addrs in the format ParseAddresses reads.
func WriteAddresses(w io.Writer, addrs []common.Address) error {
	for _, a := range addrs {
		if _, err := fmt.Fprintln(w, a.Hex()); err != nil {
			return err
		}
	}
	return nil
}
