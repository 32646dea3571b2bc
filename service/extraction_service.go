package service

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/finparse/payslip-engine/dto"
	"github.com/finparse/payslip-engine/extractor"
	"github.com/finparse/payslip-engine/parser"
	"github.com/finparse/payslip-engine/patterns"
	"github.com/finparse/payslip-engine/registry"
)

var (
	// ErrEmptyInput is returned for empty or whitespace-only documents.
	// No parser is invoked.
	ErrEmptyInput = errors.New("document text is empty")
	// ErrNoResult is returned when every strategy and the fallback pass
	// failed to produce a candidate.
	ErrNoResult = errors.New("no parser produced a candidate")
)

// fingerprintPrefixLen bounds how much of the text feeds the cache key.
// Payslip headers are stable within a layout, so a prefix is enough to
// recognize the same document again.
const fingerprintPrefixLen = 1024

// TelemetryReporter receives per-parse observations. Implementations
// live outside the engine; LogTelemetry is the default.
type TelemetryReporter interface {
	ReportParse(parserName string, elapsed time.Duration, success bool, itemCount int)
}

// LogTelemetry writes telemetry to the process log.
type LogTelemetry struct{}

func (LogTelemetry) ReportParse(parserName string, elapsed time.Duration, success bool, itemCount int) {
	log.Printf("parser=%s elapsed=%s success=%t items=%d", parserName, elapsed, success, itemCount)
}

// ExtractionService coordinates the layout parsers over one document:
// cache lookup, strategy ordering, trial loop, fallback recovery and
// commit. It is the only component with cross-parser knowledge and the
// only one holding mutable orchestration state.
type ExtractionService struct {
	parsers   []parser.LayoutParser
	fallback  *parser.FallbackParser
	telemetry TelemetryReporter

	mu    sync.RWMutex
	cache map[string]dto.ScoredCandidate
}

// NewExtractionService wires the parser strategies in preference order:
// the specialized PCDA parser first, then the section-aware parser,
// with the generic parser as the last resort.
func NewExtractionService(reg *registry.AbbreviationRegistry, lib *patterns.Library, telemetry TelemetryReporter) *ExtractionService {
	if telemetry == nil {
		telemetry = LogTelemetry{}
	}
	ext := extractor.New(reg)
	return &ExtractionService{
		parsers: []parser.LayoutParser{
			parser.NewPCDA(lib, ext),
			parser.NewSectioned(lib, ext),
			parser.NewGeneric(lib, ext),
		},
		fallback:  parser.NewFallback(lib, reg),
		telemetry: telemetry,
		cache:     make(map[string]dto.ScoredCandidate),
	}
}

// ParserNames lists the available strategies for diagnostics.
func (s *ExtractionService) ParserNames() []string {
	names := make([]string, 0, len(s.parsers)+1)
	for _, p := range s.parsers {
		names = append(names, p.Name())
	}
	names = append(names, s.fallback.Name())
	return names
}

// ClearCache drops all cached decisions, forcing re-extraction. Callers
// use this after promoting abbreviations.
func (s *ExtractionService) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]dto.ScoredCandidate)
}

// Fingerprint derives the cache key from a stable prefix of the text.
func Fingerprint(text dto.RawText) string {
	full := text.Full()
	if len(full) > fingerprintPrefixLen {
		full = full[:fingerprintPrefixLen]
	}
	sum := sha256.Sum256([]byte(full))
	return hex.EncodeToString(sum[:])
}

// Extract runs the full coordination state machine for one document and
// returns the chosen candidate plus whether it came from the cache.
func (s *ExtractionService) Extract(text dto.RawText) (dto.ScoredCandidate, bool, error) {
	if text.IsEmpty() {
		return dto.ScoredCandidate{}, false, ErrEmptyInput
	}

	fp := Fingerprint(text)
	s.mu.RLock()
	cached, ok := s.cache[fp]
	s.mu.RUnlock()
	if ok {
		return cached, true, nil
	}

	var best *dto.ScoredCandidate
	for _, p := range s.parsers {
		if !p.CanHandle(text) {
			continue
		}

		start := time.Now()
		record := p.Parse(text)
		elapsed := time.Since(start)

		if record == nil {
			s.telemetry.ReportParse(p.Name(), elapsed, false, 0)
			continue
		}
		s.telemetry.ReportParse(p.Name(), elapsed, true, record.Earnings.ItemCount()+record.Deductions.ItemCount())

		candidate := dto.ScoredCandidate{
			Record:     *record,
			Confidence: parser.Evaluate(record),
			ParserName: p.Name(),
			Elapsed:    elapsed,
		}
		// Strictly-better only, so ties keep the preferred-order winner.
		if best == nil || candidate.Confidence > best.Confidence {
			best = &candidate
		}
	}

	// A recognized layout whose strict parser bailed still deserves a
	// permissive pass over bare key/number pairs.
	if (best == nil || best.Confidence < dto.ConfidenceMedium) && parser.HasSignals(text) {
		start := time.Now()
		record := s.fallback.Parse(text)
		elapsed := time.Since(start)

		if record == nil {
			s.telemetry.ReportParse(s.fallback.Name(), elapsed, false, 0)
		} else {
			s.telemetry.ReportParse(s.fallback.Name(), elapsed, true, record.Earnings.ItemCount()+record.Deductions.ItemCount())
			confidence := parser.Evaluate(record)
			if confidence > dto.ConfidenceMedium {
				confidence = dto.ConfidenceMedium
			}
			candidate := dto.ScoredCandidate{
				Record:     *record,
				Confidence: confidence,
				ParserName: s.fallback.Name(),
				Elapsed:    elapsed,
			}
			if best == nil || candidate.Confidence > best.Confidence {
				best = &candidate
			}
		}
	}

	if best == nil {
		return dto.ScoredCandidate{}, false, ErrNoResult
	}

	// Low-confidence results are returned but never cached, so a later
	// call after registry learning can re-attempt extraction.
	if best.Confidence > dto.ConfidenceLow {
		s.mu.Lock()
		if _, exists := s.cache[fp]; !exists {
			s.cache[fp] = *best
		}
		s.mu.Unlock()
	}

	return *best, false, nil
}
