// Package registry provides the static offshore jurisdiction reference data.
// The registry is loaded once at startup and treated as immutable afterwards;
// all lookup methods are safe for concurrent use.
package registry

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed offshore_countries.md
var defaultData embed.FS

// Language identifies which name variant of a jurisdiction to use.
type Language string

// Supported name languages.
const (
	LangEN Language = "en"
	LangRU Language = "ru"
)

// Entry describes one offshore jurisdiction.
type Entry struct {
	NameEN string
	NameRU string
	Code2  string // ISO 3166-1 alpha-2
	Code3  string // ISO 3166-1 alpha-3
}

// Registry is a read-only mapping of offshore jurisdictions.
type Registry struct {
	byCode2 map[string]int
	byCode3 map[string]int
	entries []Entry
}

// Default loads the registry embedded in the binary.
func Default() (*Registry, error) {
	data, err := defaultData.ReadFile("offshore_countries.md")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded registry: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// LoadFile loads the registry from an operator-supplied markdown file.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to open registry file: %w", err)
	}
	defer func() { _ = f.Close() }()

	reg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse registry file %s: %w", path, err)
	}
	return reg, nil
}

// Parse reads the jurisdiction table from a markdown document. The table
// header must contain a LONGNAME column; columns are LONGNAME (Russian name),
// CODE_STR (alpha-3), CODE_STR2 (alpha-2), ENGNAME.
func Parse(r io.Reader) (*Registry, error) {
	reg := &Registry{
		byCode2: make(map[string]int),
		byCode3: make(map[string]int),
	}

	scanner := bufio.NewScanner(r)
	inTable := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "|") && strings.Contains(line, "LONGNAME") {
			inTable = true
			continue
		}
		if !inTable || !strings.HasPrefix(line, "|") {
			continue
		}
		// Separator row between header and data.
		if strings.HasPrefix(line, "|:") || strings.HasPrefix(line, "|-") {
			continue
		}

		parts := make([]string, 0, 4)
		for _, p := range strings.Split(line, "|") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) < 4 {
			continue
		}

		entry := Entry{
			NameRU: parts[0],
			Code3:  strings.ToUpper(parts[1]),
			Code2:  strings.ToUpper(parts[2]),
			NameEN: strings.ToUpper(parts[3]),
		}
		if entry.Code2 == "" || entry.NameEN == "" {
			continue
		}

		idx := len(reg.entries)
		reg.entries = append(reg.entries, entry)
		reg.byCode2[entry.Code2] = idx
		if entry.Code3 != "" {
			reg.byCode3[entry.Code3] = idx
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan registry data: %w", err)
	}

	if len(reg.entries) == 0 {
		return nil, fmt.Errorf("no jurisdiction entries found")
	}
	return reg, nil
}

// Len returns the number of jurisdictions in the registry.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Entries returns all jurisdictions in their original table order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// LookupCode2 finds a jurisdiction by its two-letter code.
func (r *Registry) LookupCode2(code string) (Entry, bool) {
	idx, ok := r.byCode2[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Entry{}, false
	}
	return r.entries[idx], true
}

// LookupCode3 finds a jurisdiction by its three-letter code.
func (r *Registry) LookupCode3(code string) (Entry, bool) {
	idx, ok := r.byCode3[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Entry{}, false
	}
	return r.entries[idx], true
}

// Names returns all jurisdiction names in the given language, preserving
// table order. Unknown languages fall back to English.
func (r *Registry) Names(lang Language) []string {
	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		switch lang {
		case LangRU:
			names = append(names, e.NameRU)
		default:
			names = append(names, e.NameEN)
		}
	}
	return names
}

// Codes returns every two- and three-letter code as one list, preserving
// table order with the alpha-2 code first for each entry.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.entries)*2)
	for _, e := range r.entries {
		if e.Code2 != "" {
			codes = append(codes, e.Code2)
		}
		if e.Code3 != "" {
			codes = append(codes, e.Code3)
		}
	}
	return codes
}
