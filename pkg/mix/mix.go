// Package mix maps mix codes to the description strings used as directory
// names in the reference tree. The built-in table ships with the binary; a
// YAML file can extend or override it per deployment.
package mix

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// defaultTable is the shipped code table.
var defaultTable = map[string]string{
	"MIX00001": "4E Ecoline",
	"MIX00002": "4E EXPORT",
	"MIX00003": "MR_4E",
	"MIX00004": "5D KEYLINE Export 3B CKD",
	"MIX00008": "FRTNAT",
	"MIX00009": "5D Stage V - PB314",
	"MIX00017": "5G - PB511",
	"MIX00018": "5D Keyline Stage V TRK - PB324",
	"MIX00019": "4E Footstep Stage V - PB305",
	"MIX00020": "5E Stage V - PB 512",
	"MIX00021": "5D KEYLINE GS STAGE V - EU - PB314GS",
	"MIX00022": "5DF Keyline Stage V - TK - PB344F",
	"MIX00023": "5 KEYLINE IIIB-IV - EPA - PB511",
	"MIX00024": "5 KEYLINE Stage V - EU - PB513",
	"MIX00025": "5E LRC - PB513",
	"MIX00026": "3E Stage V - PB254",
	"MIX00027": "5D KEYLINE GS EXPORT stage II - PB314 LRC",
	"MIX00028": "5D KEYLINE GS EPA 80HP - PB314 EPA",
	"MIX00029": "4E FS Stage V GS - TK - PB305GS",
	"MIX00030": "AGROFARM 4 Stage I EXPORT",
	"MIX00031": "5D KEYLINE GS Stage V - TK - PB314 PS",
}

// Table is a resolved code table.
type Table struct {
	codes map[string]string
}

// DefaultTable returns the built-in table.
func DefaultTable() *Table {
	codes := make(map[string]string, len(defaultTable))
	for k, v := range defaultTable {
		codes[k] = v
	}
	return &Table{codes: codes}
}

// LoadTable returns the built-in table merged with the YAML file at path.
// File entries win over built-ins; an empty path returns the built-ins
// unchanged.
func LoadTable(path string) (*Table, error) {
	table := DefaultTable()
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mix table: %w", err)
	}
	var overrides map[string]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse mix table: %w", err)
	}
	for k, v := range overrides {
		table.codes[k] = v
	}
	return table, nil
}

// Describe resolves a mix code to its description.
func (t *Table) Describe(code string) (string, bool) {
	desc, ok := t.codes[code]
	return desc, ok
}

// Codes returns every known code, sorted.
func (t *Table) Codes() []string {
	codes := make([]string, 0, len(t.codes))
	for k := range t.codes {
		codes = append(codes, k)
	}
	sort.Strings(codes)
	return codes
}
