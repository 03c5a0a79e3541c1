package layout

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// Field is one payload field of a schema, at a fixed offset from the start
// of the payload.
type Field struct {
	Name   string `yaml:"name"`
	Offset int    `yaml:"offset"`
	Size   int    `yaml:"size"`
}

// Schema describes one (discriminator, version) record layout. Size is the
// total account size including the header.
type Schema struct {
	Name          string  `yaml:"name"`
	Discriminator uint8   `yaml:"discriminator"`
	Version       uint8   `yaml:"version"`
	Size          int     `yaml:"size"`
	Fields        []Field `yaml:"fields"`
}

// LintError is a schema evolution rule violation.
type LintError struct {
	Schema string
	Reason string
}

func (e LintError) Error() string {
	return fmt.Sprintf("schema %s: %s", e.Schema, e.Reason)
}

// LoadSchemas decodes a YAML list of schemas.
func LoadSchemas(r io.Reader) ([]Schema, error) {
	var doc struct {
		Schemas []Schema `yaml:"schemas"`
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode schemas: %w", err)
	}
	return doc.Schemas, nil
}

// LintSchemas checks the offset-stability rules of the layout convention
// across all versions of each discriminator and returns every violation
// found:
//
//   - a discriminator belongs to exactly one record name
//   - (discriminator, version) pairs are unique
//   - fields lie inside the payload and do not overlap
//   - account size never decreases from one version to the next
//   - every field of an older version keeps its offset and size in later
//     versions (removed fields may only become padding)
//
// This is an off-path conformance check, run at test or build time.
func LintSchemas(schemas []Schema) []LintError {
	var errs []LintError

	byDisc := make(map[uint8][]Schema)
	for _, s := range schemas {
		byDisc[s.Discriminator] = append(byDisc[s.Discriminator], s)
		errs = append(errs, lintFields(s)...)
	}

	discs := make([]int, 0, len(byDisc))
	for d := range byDisc {
		discs = append(discs, int(d))
	}
	sort.Ints(discs)

	for _, d := range discs {
		versions := byDisc[uint8(d)]
		sort.SliceStable(versions, func(i, j int) bool {
			return versions[i].Version < versions[j].Version
		})
		for i := 1; i < len(versions); i++ {
			prev, cur := versions[i-1], versions[i]
			if cur.Name != prev.Name {
				errs = append(errs, LintError{cur.Name, fmt.Sprintf("discriminator %d already assigned to %s", d, prev.Name)})
				continue
			}
			if cur.Version == prev.Version {
				errs = append(errs, LintError{cur.Name, fmt.Sprintf("duplicate version %d", cur.Version)})
				continue
			}
			if cur.Size < prev.Size {
				errs = append(errs, LintError{cur.Name, fmt.Sprintf("v%d size %d smaller than v%d size %d", cur.Version, cur.Size, prev.Version, prev.Size)})
			}
			errs = append(errs, lintCarriedFields(prev, cur)...)
		}
	}
	return errs
}

func lintFields(s Schema) []LintError {
	var errs []LintError
	if s.Size < HeaderLen {
		errs = append(errs, LintError{s.Name, fmt.Sprintf("v%d size %d smaller than header", s.Version, s.Size)})
	}
	payload := s.Size - HeaderLen
	fields := append([]Field(nil), s.Fields...)
	sort.Slice(fields, func(i, j int) bool { return fields[i].Offset < fields[j].Offset })
	end := 0
	for _, f := range fields {
		if f.Size <= 0 || f.Offset < 0 || f.Offset+f.Size > payload {
			errs = append(errs, LintError{s.Name, fmt.Sprintf("v%d field %s [%d,+%d) outside payload of %d bytes", s.Version, f.Name, f.Offset, f.Size, payload)})
			continue
		}
		if f.Offset < end {
			errs = append(errs, LintError{s.Name, fmt.Sprintf("v%d field %s overlaps previous field", s.Version, f.Name)})
		}
		end = f.Offset + f.Size
	}
	return errs
}

func lintCarriedFields(prev, cur Schema) []LintError {
	var errs []LintError
	curByName := make(map[string]Field, len(cur.Fields))
	for _, f := range cur.Fields {
		curByName[f.Name] = f
	}
	for _, f := range prev.Fields {
		g, ok := curByName[f.Name]
		if !ok {
			continue
		}
		if g.Offset != f.Offset || g.Size != f.Size {
			errs = append(errs, LintError{cur.Name, fmt.Sprintf("field %s moved from [%d,+%d) in v%d to [%d,+%d) in v%d", f.Name, f.Offset, f.Size, prev.Version, g.Offset, g.Size, cur.Version)})
		}
	}

	prevByName := make(map[string]bool, len(prev.Fields))
	for _, f := range prev.Fields {
		prevByName[f.Name] = true
	}
	for _, g := range cur.Fields {
		if prevByName[g.Name] {
			continue
		}
		for _, f := range prev.Fields {
			if g.Offset < f.Offset+f.Size && f.Offset < g.Offset+g.Size {
				errs = append(errs, LintError{cur.Name, fmt.Sprintf("v%d field %s reuses bytes of v%d field %s", cur.Version, g.Name, prev.Version, f.Name)})
			}
		}
	}
	return errs
}
