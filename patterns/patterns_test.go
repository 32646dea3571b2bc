package patterns

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractName(t *testing.T) {
	lib := NewLibrary()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "labeled name",
			text: "Employee Name: John Doe\nAccount No: 1234567890",
			want: "John Doe",
		},
		{
			name: "honorific prefix",
			text: "Pay statement\nMR JOHN DOE\nfor June 2024",
			want: "JOHN DOE",
		},
		{
			name: "name with trailing noise",
			text: "Name: John Doe Account No 12345",
			want: "John Doe",
		},
		{
			name: "absent",
			text: "no identity fields here",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lib.Extract(tt.text, KeyName))
		})
	}
}

func TestExtractAccountNumber(t *testing.T) {
	lib := NewLibrary()

	assert.Equal(t, "1234567890", lib.Extract("Account No: 1234567890", KeyAccountNumber))
	assert.Equal(t, "1234567890", lib.Extract("A/C No - 1234567890", KeyAccountNumber))
	assert.Equal(t, "6323", lib.Extract("Account XXXXXXXX6323", KeyAccountNumber))
	assert.Equal(t, "", lib.Extract("no account here", KeyAccountNumber))
}

func TestExtractTaxID(t *testing.T) {
	lib := NewLibrary()

	assert.Equal(t, "ABCDE1234F", lib.Extract("PAN No: ABCDE1234F", KeyTaxID))
	// Labeled lowercase PAN is uppercased by postprocessing.
	assert.Equal(t, "ABCDE1234F", lib.Extract("pan: abcde1234f", KeyTaxID))
	// Bare PAN-shaped token, no label.
	assert.Equal(t, "FGHIJ5678K", lib.Extract("ref FGHIJ5678K end", KeyTaxID))
}

func TestExtractPeriod(t *testing.T) {
	lib := NewLibrary()

	text := "STATEMENT OF ACCOUNT FOR 06/2024"
	assert.Equal(t, "6", lib.Extract(text, KeyMonth))
	assert.Equal(t, "2024", lib.Extract(text, KeyYear))

	text = "Pay Slip for October 2025"
	assert.Equal(t, "10", lib.Extract(text, KeyMonth))
	assert.Equal(t, "2025", lib.Extract(text, KeyYear))
}

func TestPriorityOrdering(t *testing.T) {
	lib := NewLibrary()

	// Both the labeled and the bare PAN pattern can match; the labeled
	// one has higher priority and must win.
	text := "ZZZZZ9999Z noise\nPAN No: ABCDE1234F"
	assert.Equal(t, "ABCDE1234F", lib.Extract(text, KeyTaxID))
}

func TestEmptyPostprocessFallsThrough(t *testing.T) {
	lib := NewLibrary()

	// "for the month of Pay" matches the high-priority month pattern
	// but "Pay" is not a month, so postprocessing rejects it and the
	// lower-priority bare month name pattern finds "June".
	text := "Salary for the month of Pay\nperiod June 2024"
	assert.Equal(t, "6", lib.Extract(text, KeyMonth))
}

func TestMonthNumber(t *testing.T) {
	assert.Equal(t, 1, MonthNumber("January"))
	assert.Equal(t, 9, MonthNumber("sep"))
	assert.Equal(t, 9, MonthNumber("SEPT"))
	assert.Equal(t, 6, MonthNumber("6"))
	assert.Equal(t, 0, MonthNumber("13"))
	assert.Equal(t, 0, MonthNumber("payday"))
}

func TestCleanCurrency(t *testing.T) {
	assert.Equal(t, "50000.00", CleanCurrency("Rs. 50,000.00"))
	assert.Equal(t, "1234", CleanCurrency("₹1,234"))
	assert.Equal(t, "99.50", CleanCurrency(" 99.50 "))
}

func TestStripNonNumeric(t *testing.T) {
	assert.Equal(t, "1234567890", StripNonNumeric("12 3456-7890"))
	assert.Equal(t, "", StripNonNumeric("no digits"))
}

func TestKeywordPattern(t *testing.T) {
	lib := &Library{patterns: map[string][]FieldPattern{}}
	lib.add(FieldPattern{
		Key:      "unit",
		Keyword:  "Unit",
		Priority: 10,
		Post:     []Postprocess{TrimSpace},
	})
	lib.sortAll()

	assert.Equal(t, "14 Signal Regiment", lib.Extract("Unit: 14 Signal Regiment\n", "unit"))
	assert.Equal(t, "", lib.Extract("no such field", "unit"))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.yaml")
	content := `patterns:
  - key: name
    regex: 'Officer\s+([A-Za-z ]+)'
    priority: 99
    post: [trim]
  - key: unit_code
    regex: '\bUNIT-([0-9]+)\b'
    priority: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	lib := NewLibrary()
	require.NoError(t, lib.LoadFile(path))

	// The loaded pattern outranks the built-in name patterns.
	assert.Equal(t, "Jane Roe", lib.Extract("Officer Jane Roe", KeyName))
	assert.Equal(t, "42", lib.Extract("posted to UNIT-42", "unit_code"))
}

func TestLoadFileRejectsBadEntries(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("patterns:\n  - key: x\n    regex: '('\n"), 0o644))
	assert.Error(t, NewLibrary().LoadFile(bad))

	missingKey := filepath.Join(dir, "nokey.yaml")
	require.NoError(t, os.WriteFile(missingKey, []byte("patterns:\n  - regex: 'x'\n"), 0o644))
	assert.Error(t, NewLibrary().LoadFile(missingKey))
}

func TestApplyRegexCapture(t *testing.T) {
	p := FieldPattern{
		Key:   "code",
		Regex: regexp.MustCompile(`code=(\w+)`),
		Post:  []Postprocess{TrimSpace, Uppercase},
	}
	assert.Equal(t, "ABC", p.apply("code=abc"))
	assert.Equal(t, "", p.apply("nothing"))
}
