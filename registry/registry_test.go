package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finparse/payslip-engine/dto"
)

func TestClassifySeededCodes(t *testing.T) {
	reg := New()

	assert.Equal(t, dto.AbbreviationEarning, reg.Classify("BPAY"))
	assert.Equal(t, dto.AbbreviationEarning, reg.Classify("MSP"))
	assert.Equal(t, dto.AbbreviationDeduction, reg.Classify("DSOP"))
	assert.Equal(t, dto.AbbreviationDeduction, reg.Classify("ITAX"))
	assert.Equal(t, dto.AbbreviationUnknown, reg.Classify("NOSUCHCODE"))
}

func TestClassifyNormalizesInput(t *testing.T) {
	reg := New()

	assert.Equal(t, dto.AbbreviationEarning, reg.Classify("  bpay "))
	assert.Equal(t, dto.AbbreviationDeduction, reg.Classify("agif"))
	assert.Equal(t, dto.AbbreviationUnknown, reg.Classify(""))
	assert.Equal(t, dto.AbbreviationUnknown, reg.Classify("   "))
}

func TestRecordUnknownCreatesAndCounts(t *testing.T) {
	reg := New()

	reg.RecordUnknown("newcode", 100, dto.AbbreviationEarning)
	reg.RecordUnknown("NEWCODE", 200, dto.AbbreviationEarning)
	reg.RecordUnknown("NewCode", 50, dto.AbbreviationDeduction)

	stats := reg.UnknownStats()
	require.Len(t, stats, 1)
	assert.Equal(t, "NEWCODE", stats[0].Code)
	assert.Equal(t, 3, stats[0].ObservedCount)
	assert.Equal(t, 2, stats[0].EarningsSide)
	assert.Equal(t, 1, stats[0].DeductionSide)
}

func TestUnknownStatsOrderedByFrequency(t *testing.T) {
	reg := New()

	reg.RecordUnknown("RARE", 1, dto.AbbreviationEarning)
	for i := 0; i < 5; i++ {
		reg.RecordUnknown("COMMON", 1, dto.AbbreviationEarning)
	}

	stats := reg.UnknownStats()
	require.Len(t, stats, 2)
	assert.Equal(t, "COMMON", stats[0].Code)
	assert.Equal(t, "RARE", stats[1].Code)
}

func TestPromoteReclassifies(t *testing.T) {
	reg := New()

	reg.RecordUnknown("SPCDO", 500, dto.AbbreviationEarning)
	assert.Equal(t, dto.AbbreviationUnknown, reg.Classify("SPCDO"))

	reg.Promote("spcdo", dto.AbbreviationEarning)
	assert.Equal(t, dto.AbbreviationEarning, reg.Classify("SPCDO"))

	// Idempotent
	reg.Promote("SPCDO", dto.AbbreviationEarning)
	assert.Equal(t, dto.AbbreviationEarning, reg.Classify("SPCDO"))

	// Promoted codes no longer show up as unknown
	assert.Empty(t, reg.UnknownStats())
}

func TestPromoteUnseenCodeCreatesEntry(t *testing.T) {
	reg := New()

	reg.Promote("FRESH", dto.AbbreviationDeduction)
	assert.Equal(t, dto.AbbreviationDeduction, reg.Classify("FRESH"))
}

func TestLoadSeedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	content := `earnings:
  - FLYPAY
  - sicha
deductions:
  - AFPP
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	reg := New()
	require.NoError(t, reg.LoadSeedFile(path))

	assert.Equal(t, dto.AbbreviationEarning, reg.Classify("FLYPAY"))
	assert.Equal(t, dto.AbbreviationEarning, reg.Classify("SICHA"))
	assert.Equal(t, dto.AbbreviationDeduction, reg.Classify("AFPP"))
}

func TestLoadSeedFileDoesNotOverrideKnownTypes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	content := `deductions:
  - BPAY
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	reg := New()
	require.NoError(t, reg.LoadSeedFile(path))

	assert.Equal(t, dto.AbbreviationEarning, reg.Classify("BPAY"))
}

func TestLoadSeedFileMissing(t *testing.T) {
	reg := New()
	assert.Error(t, reg.LoadSeedFile("/nonexistent/seed.yaml"))
}
