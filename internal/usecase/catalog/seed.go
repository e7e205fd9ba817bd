package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"

	"doc-compliance/internal/domain/doctype"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	DocumentTypes []UpsertInput `yaml:"document_types"`
}

// LoadSeedFile reads a YAML catalog. ${VAR} references are expanded from the
// environment before parsing.
func LoadSeedFile(path string) ([]UpsertInput, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeed([]byte(os.ExpandEnv(string(raw))))
}

func ParseSeed(raw []byte) ([]UpsertInput, error) {
	raw = []byte(strings.ReplaceAll(string(raw), "\r\n", "\n"))
	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog seed: %w", err)
	}
	return f.DocumentTypes, nil
}

// Seed upserts every entry in order and stops at the first failure.
func (u *Usecase) Seed(ctx context.Context, entries []UpsertInput) ([]doctype.DocumentType, error) {
	out := make([]doctype.DocumentType, 0, len(entries))
	for i, in := range entries {
		d, err := u.Upsert(ctx, in)
		if err != nil {
			return out, fmt.Errorf("seed entry %d (%s): %w", i, in.Name, err)
		}
		out = append(out, *d)
	}
	return out, nil
}
