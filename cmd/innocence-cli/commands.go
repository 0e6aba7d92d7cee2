package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/innocence-protocol/innocence/internal/config"
	"github.com/innocence-protocol/innocence/internal/ipc"
	"github.com/innocence-protocol/innocence/internal/notes"
	"github.com/innocence-protocol/innocence/internal/prover"
	"github.com/innocence-protocol/innocence/pkg/publicvalues"
	"github.com/innocence-protocol/innocence/pkg/sanctions"
	"github.com/innocence-protocol/innocence/pkg/statement"
)

// passphraseEnv supplies the note passphrase when -passphrase is not given.
const passphraseEnv = "INNOCENCE_PASSPHRASE"

var (
	// ErrUsage is returned for malformed command lines.
	ErrUsage = errors.New("invalid arguments")

	// ErrNoPassphrase is returned when a note command has no passphrase.
	ErrNoPassphrase = errors.New("no passphrase: use -passphrase or " + passphraseEnv)
)

// CLI provides commands for working with notes and the prover daemon.
type CLI struct {
	socket string
	store  *notes.Store
	client *ipc.Client
	output io.Writer
}

// NewCLI creates a CLI that talks to the daemon at socket and keeps notes
// in notesDir.
func NewCLI(socket, notesDir string) *CLI {
	return &CLI{
		socket: socket,
		store:  notes.NewStore(notesDir),
		output: os.Stdout,
	}
}

// NewCLIWithDefaults creates a CLI using default paths.
func NewCLIWithDefaults() *CLI {
	paths := config.DefaultPaths()
	return NewCLI(paths.ProverSocket, paths.NotesDir)
}

func (c *CLI) connect() (*ipc.Client, error) {
	if c.client != nil {
		return c.client, nil
	}
	client, err := ipc.NewClient(c.socket)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to prover daemon: %w", err)
	}
	c.client = client
	return client, nil
}

// Close closes the daemon connection.
func (c *CLI) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

func (c *CLI) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.output)
	return fs
}

func (c *CLI) printJSON(v any) error {
	enc := json.NewEncoder(c.output)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseHash(name, s string) (common.Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("%w: %s must be 32 bytes of 0x-prefixed hex", ErrUsage, name)
	}
	return common.BytesToHash(b), nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: invalid address %q", ErrUsage, s)
	}
	return common.HexToAddress(s), nil
}

func passphrase(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv(passphraseEnv); env != "" {
		return env, nil
	}
	return "", ErrNoPassphrase
}

// Commit prints the commitment and nullifier hash of a secret and nullifier.
func (c *CLI) Commit(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: usage: commit <secret> <nullifier>", ErrUsage)
	}
	secret, err := parseHash("secret", args[0])
	if err != nil {
		return err
	}
	nullifier, err := parseHash("nullifier", args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.output, "Commitment:     %s\n", statement.Commit(secret, nullifier).Hex())
	fmt.Fprintf(c.output, "Nullifier hash: %s\n", statement.NullifierHash(nullifier).Hex())
	return nil
}

// Note manages local notes: new, recover, show, list.
func (c *CLI) Note(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: usage: note new|recover|show|list", ErrUsage)
	}
	switch args[0] {
	case "new":
		return c.noteNew(args[1:])
	case "recover":
		return c.noteRecover(args[1:])
	case "show":
		return c.noteShow(args[1:])
	case "list":
		return c.noteList()
	default:
		return fmt.Errorf("%w: unknown note command %q", ErrUsage, args[0])
	}
}

func (c *CLI) noteNew(args []string) error {
	fs := c.flags("note new")
	asset := fs.Uint64("asset", 0, "Asset id")
	balance := fs.Uint64("balance", 0, "Balance")
	withMnemonic := fs.Bool("mnemonic", false, "Derive the note from a new BIP-39 mnemonic")
	pass := fs.String("passphrase", "", "Passphrase for the note file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	pp, err := passphrase(*pass)
	if err != nil {
		return err
	}

	var (
		n        *notes.Note
		mnemonic string
	)
	if *withMnemonic {
		n, mnemonic, err = notes.NewWithMnemonic(*asset, *balance)
	} else {
		n, err = notes.New(*asset, *balance)
	}
	if err != nil {
		return err
	}

	id, err := c.store.Put(n, pp)
	if err != nil {
		return err
	}
	c.printNote(id, n, false)
	if mnemonic != "" {
		fmt.Fprintln(c.output)
		fmt.Fprintln(c.output, "Recovery phrase (write it down):")
		fmt.Fprintf(c.output, "  %s\n", mnemonic)
	}
	return nil
}

func (c *CLI) noteRecover(args []string) error {
	fs := c.flags("note recover")
	index := fs.Uint("index", 0, "Note index")
	asset := fs.Uint64("asset", 0, "Asset id")
	balance := fs.Uint64("balance", 0, "Balance")
	pass := fs.String("passphrase", "", "Passphrase for the note file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: usage: note recover [flags] <mnemonic words>", ErrUsage)
	}
	pp, err := passphrase(*pass)
	if err != nil {
		return err
	}

	n, err := notes.FromMnemonic(strings.Join(fs.Args(), " "), uint32(*index), *asset, *balance)
	if err != nil {
		return err
	}
	id, err := c.store.Put(n, pp)
	if err != nil {
		return err
	}
	c.printNote(id, n, false)
	return nil
}

func (c *CLI) noteShow(args []string) error {
	fs := c.flags("note show")
	reveal := fs.Bool("reveal", false, "Print the secret and nullifier")
	pass := fs.String("passphrase", "", "Passphrase for the note file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: usage: note show [flags] <id>", ErrUsage)
	}
	pp, err := passphrase(*pass)
	if err != nil {
		return err
	}
	n, err := c.store.Get(fs.Arg(0), pp)
	if err != nil {
		return err
	}
	c.printNote(fs.Arg(0), n, *reveal)
	return nil
}

func (c *CLI) noteList() error {
	ids, err := c.store.List()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(c.output, "No notes")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(c.output, id)
	}
	return nil
}

func (c *CLI) printNote(id string, n *notes.Note, reveal bool) {
	fmt.Fprintf(c.output, "Note:           %s\n", id)
	fmt.Fprintf(c.output, "Commitment:     %s\n", n.Commitment().Hex())
	fmt.Fprintf(c.output, "Nullifier hash: %s\n", n.NullifierHash().Hex())
	fmt.Fprintf(c.output, "Asset:          %d\n", n.AssetID)
	fmt.Fprintf(c.output, "Balance:        %d\n", n.Balance)
	fmt.Fprintf(c.output, "Created:        %s\n", n.CreatedAt.Format(time.RFC3339))
	if reveal {
		fmt.Fprintf(c.output, "Secret:         %s\n", n.Secret.Hex())
		fmt.Fprintf(c.output, "Nullifier:      %s\n", n.Nullifier.Hex())
	}
}

// Prove sends a statement request to the daemon.
func (c *CLI) Prove(args []string) error {
	fs := c.flags("prove")
	withProof := fs.Bool("prove", false, "Generate a proof (ownership only)")
	noteID := fs.String("note", "", "Fill secret, nullifier and commitment from a stored note")
	pass := fs.String("passphrase", "", "Passphrase for -note")
	out := fs.String("out", "", "Write the proof to this file")
	timeout := fs.Duration("timeout", 5*time.Minute, "Request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("%w: usage: prove [flags] <statement> <params.json>", ErrUsage)
	}
	kind, err := statement.ParseKind(fs.Arg(0))
	if err != nil {
		return err
	}

	data, err := os.ReadFile(fs.Arg(1))
	if err != nil {
		return fmt.Errorf("failed to read params: %w", err)
	}
	params, err := parseParams(data)
	if err != nil {
		return err
	}

	if *noteID != "" {
		pp, err := passphrase(*pass)
		if err != nil {
			return err
		}
		n, err := c.store.Get(*noteID, pp)
		if err != nil {
			return err
		}
		if err := fillFromNote(kind, params, n); err != nil {
			return err
		}
	}

	client, err := c.connect()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if kind == statement.KindInnocence {
		if err := c.fillInnocence(ctx, client, params); err != nil {
			return err
		}
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}
	resp, err := client.Evaluate(ctx, prover.Request{Statement: string(kind), Params: raw, Prove: *withProof})
	if err != nil {
		var rej *statement.Rejection
		if errors.As(err, &rej) {
			fmt.Fprintf(c.output, "Rejected: %s (%s)\n", rej.Reason, rej.Check)
			if rej.Detail != "" {
				fmt.Fprintf(c.output, "  %s\n", rej.Detail)
			}
		}
		return err
	}

	fmt.Fprintf(c.output, "Request:       %s\n", resp.ID)
	fmt.Fprintf(c.output, "Receipt:       %s\n", resp.ReceiptID)
	fmt.Fprintf(c.output, "Public values: %s\n", resp.PublicValues)
	if len(resp.Proof) > 0 {
		fmt.Fprintf(c.output, "Proof:         %d bytes\n", len(resp.Proof))
		if *out != "" {
			if err := os.WriteFile(*out, resp.Proof, 0644); err != nil {
				return fmt.Errorf("failed to write proof: %w", err)
			}
			fmt.Fprintf(c.output, "Proof written to %s\n", *out)
		}
	}
	return c.printJSON(resp.Output)
}

// parseParams decodes a params object keeping numbers exact.
func parseParams(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	params := map[string]any{}
	if err := dec.Decode(&params); err != nil {
		return nil, fmt.Errorf("failed to parse params: %w", err)
	}
	return params, nil
}

// fillFromNote sets the fields a note knows about where params leaves them
// unset. Amounts are written as decimal strings.
func fillFromNote(kind statement.Kind, params map[string]any, n *notes.Note) error {
	if kind == statement.KindInnocence {
		return fmt.Errorf("%w: innocence does not take a note", ErrUsage)
	}
	set := func(key, value string) {
		if _, ok := params[key]; !ok {
			params[key] = value
		}
	}
	set("secret", n.Secret.Hex())
	set("nullifier", n.Nullifier.Hex())
	set("commitment", n.Commitment().Hex())

	switch kind {
	case statement.KindBalance:
		set("actualBalance", strconv.FormatUint(n.Balance, 10))
		set("assetId", strconv.FormatUint(n.AssetID, 10))
		set("balanceLeaf", n.BalanceLeaf().Hex())
	case statement.KindTrade:
		set("fromBalance", strconv.FormatUint(n.Balance, 10))
		set("fromAsset", strconv.FormatUint(n.AssetID, 10))
	}
	return nil
}

// fillInnocence binds an innocence request to the daemon's current root and
// the current time when they are unset.
func (c *CLI) fillInnocence(ctx context.Context, client *ipc.Client, params map[string]any) error {
	if _, ok := params["sanctionsRoot"]; !ok {
		stats, err := client.Status(ctx)
		if err != nil {
			return err
		}
		params["sanctionsRoot"] = stats.SanctionsRoot.Hex()
	}
	if _, ok := params["timestamp"]; !ok {
		params["timestamp"] = strconv.FormatInt(time.Now().Unix(), 10)
	}
	return nil
}

// Verify asks the daemon to check an ownership proof.
func (c *CLI) Verify(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: usage: verify <proof-file> <public-values-hex>", ErrUsage)
	}
	proof, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read proof: %w", err)
	}
	values, err := hexutil.Decode(args[1])
	if err != nil {
		return fmt.Errorf("%w: public values: %v", ErrUsage, err)
	}

	client, err := c.connect()
	if err != nil {
		return err
	}
	out, err := client.VerifyOwnership(context.Background(), proof, values)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.output, "Proof valid")
	return c.printJSON(out)
}

// Status displays daemon metrics.
func (c *CLI) Status() error {
	fmt.Fprintln(c.output, "=== Innocence Prover Status ===")
	fmt.Fprintln(c.output)

	client, err := c.connect()
	if err != nil {
		fmt.Fprintf(c.output, "  Status: not running\n")
		fmt.Fprintf(c.output, "  Error: %v\n", err)
		return nil
	}
	stats, err := client.Status(context.Background())
	if err != nil {
		fmt.Fprintf(c.output, "  Status: not running\n")
		fmt.Fprintf(c.output, "  Error: %v\n", err)
		return nil
	}

	fmt.Fprintf(c.output, "  Status: running\n")
	fmt.Fprintf(c.output, "  Proving: %v\n", stats.ProvingEnabled)
	fmt.Fprintf(c.output, "  Evaluated: %d (rejected %d, failed %d)\n", stats.Evaluated, stats.Rejected, stats.Failed)
	fmt.Fprintf(c.output, "  Proofs: %d generated, %d verified\n", stats.ProofsGenerated, stats.ProofsVerified)
	fmt.Fprintf(c.output, "  Sanctions root: %s\n", stats.SanctionsRoot.Hex())
	fmt.Fprintf(c.output, "  Sanctioned addresses: %d\n", stats.SanctionsTotal)
	fmt.Fprintf(c.output, "  Sanctions updated: %s\n", stats.SanctionsUpdatedAt.Format(time.RFC3339))
	return nil
}

// Decode prints the output carried by ABI public values.
func (c *CLI) Decode(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: usage: decode <statement> <hex>", ErrUsage)
	}
	kind, err := statement.ParseKind(args[0])
	if err != nil {
		return err
	}
	data, err := hexutil.Decode(args[1])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	out, err := publicvalues.Decode(kind, data)
	if err != nil {
		return err
	}
	return c.printJSON(out)
}

// Encode prints the ABI public values of an output given as JSON.
func (c *CLI) Encode(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: usage: encode <statement> <output.json>", ErrUsage)
	}
	kind, err := statement.ParseKind(args[0])
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("failed to read output: %w", err)
	}

	var out statement.Output
	switch kind {
	case statement.KindOwnership:
		out, err = decodeOutput[statement.OwnershipOutput](data)
	case statement.KindBalance:
		out, err = decodeOutput[statement.BalanceOutput](data)
	case statement.KindCompliance:
		out, err = decodeOutput[statement.ComplianceOutput](data)
	case statement.KindInnocence:
		out, err = decodeOutput[statement.InnocenceOutput](data)
	case statement.KindTrade:
		out, err = decodeOutput[statement.TradeOutput](data)
	}
	if err != nil {
		return fmt.Errorf("failed to parse output: %w", err)
	}

	values, err := publicvalues.Encode(out)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.output, hexutil.Encode(values))
	return nil
}

func decodeOutput[T statement.Output](data []byte) (statement.Output, error) {
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Certificate generates authority keys and issues compliance certificates:
// keygen, issue.
func (c *CLI) Certificate(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: usage: certificate keygen|issue", ErrUsage)
	}
	switch args[0] {
	case "keygen":
		return c.certificateKeygen(args[1:])
	case "issue":
		return c.certificateIssue(args[1:])
	default:
		return fmt.Errorf("%w: unknown certificate command %q", ErrUsage, args[0])
	}
}

func (c *CLI) certificateKeygen(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: certificate keygen <key-file>", ErrUsage)
	}
	path := config.ExpandPath(args[0])
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("key file %s already exists", path)
	}
	key, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	if err := crypto.SaveECDSA(path, key); err != nil {
		return fmt.Errorf("failed to save key: %w", err)
	}
	fmt.Fprintf(c.output, "Authority: %s\n", crypto.PubkeyToAddress(key.PublicKey).Hex())
	fmt.Fprintf(c.output, "Key written to %s\n", path)
	return nil
}

// issuedCertificate uses the field names of compliance params so it can be
// merged into a params file.
type issuedCertificate struct {
	Commitment          common.Hash    `json:"commitment"`
	CertificateData     hexutil.Bytes  `json:"certificateData"`
	Signature           hexutil.Bytes  `json:"signature"`
	ComplianceAuthority common.Address `json:"complianceAuthority"`
	ValidUntil          string         `json:"validUntil"`
}

func (c *CLI) certificateIssue(args []string) error {
	fs := c.flags("certificate issue")
	keyFile := fs.String("key", "", "Authority key file (hex secp256k1)")
	validFor := fs.Duration("valid-for", 365*24*time.Hour, "Validity from now")
	validUntil := fs.Uint64("valid-until", 0, "Expiry as a unix timestamp; overrides -valid-for")
	payload := fs.String("payload", "", "Extra certificate bytes as 0x-prefixed hex")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 || *keyFile == "" {
		return fmt.Errorf("%w: usage: certificate issue -key <key-file> [flags] <commitment>", ErrUsage)
	}
	commitment, err := parseHash("commitment", fs.Arg(0))
	if err != nil {
		return err
	}
	var extra []byte
	if *payload != "" {
		if extra, err = hexutil.Decode(*payload); err != nil {
			return fmt.Errorf("%w: payload: %v", ErrUsage, err)
		}
	}
	key, err := crypto.LoadECDSA(config.ExpandPath(*keyFile))
	if err != nil {
		return fmt.Errorf("failed to load key: %w", err)
	}

	expiry := *validUntil
	if expiry == 0 {
		expiry = uint64(time.Now().Add(*validFor).Unix())
	}
	cert := statement.NewCertificate(commitment, expiry, extra)
	sig, err := statement.SignCertificate(cert, key)
	if err != nil {
		return err
	}
	return c.printJSON(issuedCertificate{
		Commitment:          commitment,
		CertificateData:     cert,
		Signature:           sig.Bytes(),
		ComplianceAuthority: crypto.PubkeyToAddress(key.PublicKey),
		ValidUntil:          strconv.FormatUint(expiry, 10),
	})
}

// Sanctions queries a sanctions list: check, root, exclusion.
// With a file argument the list is read locally; otherwise the daemon is
// asked.
func (c *CLI) Sanctions(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: usage: sanctions check|root|exclusion", ErrUsage)
	}
	switch args[0] {
	case "check":
		return c.sanctionsCheck(args[1:])
	case "root":
		return c.sanctionsRoot(args[1:])
	case "exclusion":
		return c.sanctionsExclusion(args[1:])
	default:
		return fmt.Errorf("%w: unknown sanctions command %q", ErrUsage, args[0])
	}
}

func loadList(path string) (*sanctions.List, error) {
	if path == "default" {
		return sanctions.DefaultList(), nil
	}
	return sanctions.LoadFile(config.ExpandPath(path))
}

func (c *CLI) sanctionsCheck(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: usage: sanctions check <address> [file|default]", ErrUsage)
	}
	addr, err := parseAddress(args[0])
	if err != nil {
		return err
	}

	var report sanctions.StatusReport
	if len(args) == 2 {
		list, err := loadList(args[1])
		if err != nil {
			return err
		}
		sanctioned, root := list.Status(addr)
		report = sanctions.StatusReport{Address: addr, Sanctioned: sanctioned, Root: root, Total: list.Len()}
	} else {
		client, err := c.connect()
		if err != nil {
			return err
		}
		report, err = client.Sanctions(context.Background(), addr)
		if err != nil {
			return err
		}
	}

	state := "not sanctioned"
	if report.Sanctioned {
		state = "SANCTIONED"
	}
	fmt.Fprintf(c.output, "%s: %s\n", report.Address.Hex(), state)
	fmt.Fprintf(c.output, "Root: %s (%d addresses)\n", report.Root.Hex(), report.Total)
	return nil
}

func (c *CLI) sanctionsRoot(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: usage: sanctions root [file|default]", ErrUsage)
	}
	if len(args) == 1 {
		list, err := loadList(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(c.output, list.Root().Hex())
		return nil
	}
	client, err := c.connect()
	if err != nil {
		return err
	}
	stats, err := client.Status(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintln(c.output, stats.SanctionsRoot.Hex())
	return nil
}

func (c *CLI) sanctionsExclusion(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: usage: sanctions exclusion <address> <file|default>", ErrUsage)
	}
	addr, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	list, err := loadList(args[1])
	if err != nil {
		return err
	}
	proof, err := list.ProveExclusion(addr)
	if err != nil {
		return err
	}
	return c.printJSON(struct {
		Root  common.Hash              `json:"root"`
		Proof sanctions.ExclusionProof `json:"proof"`
	}{list.Root(), proof})
}

// printUsage prints the CLI usage information to stdout.
func printUsage() {
	printUsageTo(os.Stdout)
}

// printUsageTo prints the CLI usage information to the given writer.
func printUsageTo(w io.Writer) {
	fmt.Fprintln(w, "Usage: innocence-cli <command> [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  commit <secret> <nullifier>           Compute a commitment and nullifier hash")
	fmt.Fprintln(w, "  note new|recover|show|list            Manage encrypted notes")
	fmt.Fprintln(w, "  prove <statement> <params.json>       Evaluate a statement on the daemon")
	fmt.Fprintln(w, "  verify <proof-file> <public-values>   Verify an ownership proof")
	fmt.Fprintln(w, "  status                                Show prover daemon status")
	fmt.Fprintln(w, "  decode <statement> <hex>              Decode ABI public values")
	fmt.Fprintln(w, "  encode <statement> <output.json>      Encode an output as ABI public values")
	fmt.Fprintln(w, "  certificate keygen|issue              Issue compliance certificates")
	fmt.Fprintln(w, "  sanctions check|root|exclusion        Query a sanctions list")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Statements: ownership, balance, compliance, innocence, trade")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  innocence-cli commit 0x0101...01 0x0202...02")
	fmt.Fprintln(w, "  innocence-cli note new -asset 0 -balance 1000 -mnemonic")
	fmt.Fprintln(w, "  innocence-cli prove -note <id> -prove ownership params.json")
	fmt.Fprintln(w, "  innocence-cli sanctions check 0x8589427373D6D84E98730D7795D8f6f8731FDA16 default")
}
