package datablock

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"rig-reorient/internal/mathutil"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "file:///datablock.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Order is a rotate order that decodes from either the enum value or its name ("xyz").
type Order int

func (o *Order) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*o = Order(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("rotate_order: %w", err)
	}
	ro, err := mathutil.ParseRotateOrder(s)
	if err != nil {
		return err
	}
	*o = Order(ro)
	return nil
}

// RotateOrder converts to the math enum.
func (o Order) RotateOrder() mathutil.RotateOrder {
	return mathutil.RotateOrder(o)
}

// IsCompressed reports whether path names a zstd-compressed datablock.
func IsCompressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zst")
}

// Load reads a datablock from a .json or .json.zst file.
func Load(path string) (*Datablock, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("datablock: read %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if IsCompressed(path) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("datablock: zstd %s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("datablock: read %s: %w", path, err)
	}

	db, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("datablock: parse %s: %w", path, err)
	}
	return db, nil
}

// Parse validates raw JSON against the datablock schema and decodes it.
// Both the object form {"joints": [...], "duplicates": [...]} and the importer's
// legacy pair form [[records...], [[dups...], ...]] are accepted.
func Parse(raw []byte) (*Datablock, error) {
	s, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if err := s.Validate(doc); err != nil {
		return nil, err
	}

	if _, isPair := doc.([]any); isPair {
		return parsePair(raw)
	}

	var db Datablock
	if err := json.Unmarshal(raw, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

func parsePair(raw []byte) (*Datablock, error) {
	var pair []json.RawMessage
	if err := json.Unmarshal(raw, &pair); err != nil {
		return nil, err
	}

	var db Datablock
	if err := json.Unmarshal(pair[0], &db.Joints); err != nil {
		return nil, err
	}
	if len(pair) > 1 {
		var dups [][]string
		if err := json.Unmarshal(pair[1], &dups); err != nil {
			return nil, err
		}
		for _, d := range dups {
			db.Duplicates = append(db.Duplicates, d...)
		}
	}
	return &db, nil
}

// Save writes db as indented JSON, zstd-compressed when path ends in .zst.
func Save(path string, db *Datablock) error {
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("datablock: encode: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("datablock: mkdir %s: %w", dir, err)
		}
	}

	if !IsCompressed(path) {
		return os.WriteFile(path, data, 0o644)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("datablock: create %s: %w", path, err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("datablock: zstd %s: %w", path, err)
	}
	if _, err := enc.Write(data); err != nil {
		_ = enc.Close()
		_ = f.Close()
		return fmt.Errorf("datablock: write %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("datablock: write %s: %w", path, err)
	}
	return f.Close()
}
