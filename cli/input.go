package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/nattlua/nattlua-go/core/code"
)

// readSource loads a file argument. "-" reads stdin.
func readSource(stdin io.Reader, file string) (*code.Code, error) {
	if file == "-" {
		buf, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("error reading stdin: %w", err)
		}
		return code.New(buf, "<stdin>"), nil
	}

	buf, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("error opening file %s: %w", file, err)
	}
	return code.New(buf, file), nil
}

// encode writes v as indented JSON or canonical CBOR. Text output is
// rendered by each command itself.
func (o *globalOptions) encode(w io.Writer, v any) error {
	switch o.format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "cbor":
		em, err := cbor.CanonicalEncOptions().EncMode()
		if err != nil {
			return err
		}
		data, err := em.Marshal(v)
		if err != nil {
			return fmt.Errorf("error encoding cbor: %w", err)
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("format %q has no encoder", o.format)
}

func (o *globalOptions) structured() bool { return o.format != "text" }
