// Package registry classifies payslip line-item codes as earnings or
// deductions and learns about recurring unknown codes at runtime.
package registry

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/finparse/payslip-engine/dto"
)

// Entry is the registry's record for one normalized code.
type Entry struct {
	Code          string
	Type          dto.AbbreviationType
	ObservedCount int
	EarningsSide  int
	DeductionSide int
}

// AbbreviationRegistry maps normalized codes to entries. Entries are
// never deleted; the only post-seed type change is an explicit Promote.
type AbbreviationRegistry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// New returns a registry seeded with the core abbreviation set.
func New() *AbbreviationRegistry {
	r := &AbbreviationRegistry{
		entries: make(map[string]*Entry),
	}
	for code, t := range seedEntries {
		r.entries[code] = &Entry{Code: code, Type: t}
	}
	return r
}

// seedEntries is the fixed core set. Codes follow the abbreviations
// used on Indian defence and government payslips.
var seedEntries = map[string]dto.AbbreviationType{
	// Earnings
	"BPAY":    dto.AbbreviationEarning,
	"DA":      dto.AbbreviationEarning,
	"MSP":     dto.AbbreviationEarning,
	"HRA":     dto.AbbreviationEarning,
	"TPTA":    dto.AbbreviationEarning,
	"TPTADA":  dto.AbbreviationEarning,
	"CEA":     dto.AbbreviationEarning,
	"TA":      dto.AbbreviationEarning,
	"ARREARS": dto.AbbreviationEarning,
	"BONUS":   dto.AbbreviationEarning,

	// Deductions
	"DSOP":   dto.AbbreviationDeduction,
	"AGIF":   dto.AbbreviationDeduction,
	"ITAX":   dto.AbbreviationDeduction,
	"CGHS":   dto.AbbreviationDeduction,
	"CGEIS":  dto.AbbreviationDeduction,
	"GPF":    dto.AbbreviationDeduction,
	"NPS":    dto.AbbreviationDeduction,
	"EHCESS": dto.AbbreviationDeduction,
	"LF":     dto.AbbreviationDeduction,
	"WATER":  dto.AbbreviationDeduction,
	"ELEC":   dto.AbbreviationDeduction,
	"LOAN":   dto.AbbreviationDeduction,
}

// Normalize trims and uppercases a code so classification is case- and
// whitespace-insensitive.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Classify returns the type for a code, or Unknown when the registry
// has never seen it.
func (r *AbbreviationRegistry) Classify(code string) dto.AbbreviationType {
	norm := Normalize(code)
	if norm == "" {
		return dto.AbbreviationUnknown
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.entries[norm]; ok {
		return e.Type
	}
	return dto.AbbreviationUnknown
}

// RecordUnknown notes one sighting of an unclassified code, creating the
// entry on first sight. The context tag records which side of the
// payslip the code appeared on.
func (r *AbbreviationRegistry) RecordUnknown(code string, amount float64, context dto.AbbreviationType) {
	norm := Normalize(code)
	if norm == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[norm]
	if !ok {
		e = &Entry{Code: norm, Type: dto.AbbreviationUnknown}
		r.entries[norm] = e
	}
	e.ObservedCount++
	switch context {
	case dto.AbbreviationEarning:
		e.EarningsSide++
	case dto.AbbreviationDeduction:
		e.DeductionSide++
	}
}

// Promote reclassifies a code, e.g. from a user correction. Idempotent;
// creates the entry when the code was never observed.
func (r *AbbreviationRegistry) Promote(code string, t dto.AbbreviationType) {
	norm := Normalize(code)
	if norm == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[norm]; ok {
		e.Type = t
		return
	}
	r.entries[norm] = &Entry{Code: norm, Type: t}
}

// UnknownStats returns a snapshot of all still-unknown codes ordered by
// observation count, most frequent first.
func (r *AbbreviationRegistry) UnknownStats() []dto.UnknownCodeStat {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats []dto.UnknownCodeStat
	for _, e := range r.entries {
		if e.Type != dto.AbbreviationUnknown {
			continue
		}
		stats = append(stats, dto.UnknownCodeStat{
			Code:          e.Code,
			ObservedCount: e.ObservedCount,
			EarningsSide:  e.EarningsSide,
			DeductionSide: e.DeductionSide,
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].ObservedCount != stats[j].ObservedCount {
			return stats[i].ObservedCount > stats[j].ObservedCount
		}
		return stats[i].Code < stats[j].Code
	})
	return stats
}

// seedFile is the YAML overlay format for deployment-local abbreviations.
type seedFile struct {
	Earnings   []string `yaml:"earnings"`
	Deductions []string `yaml:"deductions"`
}

// LoadSeedFile merges an extra seed set from a YAML file into the
// registry. Codes already promoted or seeded keep their existing type.
func (r *AbbreviationRegistry) LoadSeedFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read abbreviation seed file: %w", err)
	}

	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("failed to parse abbreviation seed file: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, code := range sf.Earnings {
		r.mergeSeedLocked(Normalize(code), dto.AbbreviationEarning)
	}
	for _, code := range sf.Deductions {
		r.mergeSeedLocked(Normalize(code), dto.AbbreviationDeduction)
	}
	return nil
}

func (r *AbbreviationRegistry) mergeSeedLocked(code string, t dto.AbbreviationType) {
	if code == "" {
		return
	}
	if e, ok := r.entries[code]; ok {
		// Seed files only fill gaps; they never override a known type.
		if e.Type == dto.AbbreviationUnknown {
			e.Type = t
		}
		return
	}
	r.entries[code] = &Entry{Code: code, Type: t}
}
