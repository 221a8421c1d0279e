package overlay

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const (
	TimingDelimiter = "-->"

	bitrateMarker = "bitrate"
	bitratePrefix = "bitrate:"
	bitrateSuffix = "Mbps"

	delayMarker = "delay:"
	delayPrefix = "delay:"
	delaySuffix = "ms"
)

// ErrMalformedCue indicates a cue timing line without a payload line
var ErrMalformedCue = errors.New("malformed cue")

// ParseError describes where in the overlay log extraction failed.
type ParseError struct {
	Line int // 1-based line number of the offending timing line
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrMalformedCue
}

// Field identifies a link-quality value carried by a cue
type Field uint8

const (
	FieldBitrate Field = 1 << iota
	FieldDelay
)

// Sample is the link quality reported by one overlay cue. Cues carry no
// usable timestamp, so a sample is identified by its position only.
type Sample struct {
	Bitrate float64 // Video link bitrate in Mbps
	Delay   float64 // Video link delay in ms

	// Missing marks values that were absent or unparsable in the cue.
	// Their numeric value is 0.
	Missing Field
}

// Has reports whether the cue carried a parsable value for f.
func (s Sample) Has(f Field) bool {
	return s.Missing&f == 0
}

// Extract scans overlay lines and returns one Sample per cue, in source order.
// A line containing the timing delimiter starts a cue; the next line is its
// payload.
func Extract(lines []string) ([]Sample, error) {
	var samples []Sample

	for i := 0; i < len(lines); i++ {
		if !strings.Contains(strings.TrimSpace(lines[i]), TimingDelimiter) {
			continue
		}
		if i+1 >= len(lines) {
			return nil, &ParseError{Line: i + 1, Msg: "cue timing line has no payload line"}
		}

		samples = append(samples, parsePayload(lines[i+1]))
	}

	return samples, nil
}

// Read reads the whole overlay log from r and extracts its samples. Lines
// are split on '\n' only, so a log ending in a newline has a trailing empty
// line that can serve as the payload of a final timing line.
func Read(r io.Reader) ([]Sample, error) {
	p, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading overlay log: %w", err)
	}

	return Extract(strings.Split(string(p), "\n"))
}

func parsePayload(line string) Sample {
	var s Sample
	tokens := strings.Fields(line)

	var ok bool
	if s.Bitrate, ok = tokenValue(tokens, bitrateMarker, bitratePrefix, bitrateSuffix); !ok {
		s.Missing |= FieldBitrate
	}
	if s.Delay, ok = tokenValue(tokens, delayMarker, delayPrefix, delaySuffix); !ok {
		s.Missing |= FieldDelay
	}

	return s
}

// tokenValue finds the first token containing marker, strips prefix and
// suffix and parses the rest as a number.
func tokenValue(tokens []string, marker, prefix, suffix string) (float64, bool) {
	for _, token := range tokens {
		if !strings.Contains(token, marker) {
			continue
		}

		raw := strings.Replace(token, prefix, "", 1)
		raw = strings.Replace(raw, suffix, "", 1)

		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

// Stats summarises how many cues lacked link-quality values
type Stats struct {
	Cues           int
	MissingBitrate int
	MissingDelay   int
}

// Summarize counts missing values over samples.
func Summarize(samples []Sample) Stats {
	st := Stats{Cues: len(samples)}
	for _, s := range samples {
		if !s.Has(FieldBitrate) {
			st.MissingBitrate++
		}
		if !s.Has(FieldDelay) {
			st.MissingDelay++
		}
	}
	return st
}
