package segment

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ParseSubtitles reads SRT or WebVTT cues into segments numbered from zero.
// Cues whose text is empty after normalization are skipped.
func ParseSubtitles(r io.Reader) ([]Segment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read subtitles: %w", err)
	}
	content := strings.TrimPrefix(string(data), "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var segments []Segment
	for blockIndex, block := range splitBlocks(content) {
		timing := -1
		for i, line := range block {
			if strings.Contains(line, "-->") {
				timing = i
				break
			}
		}
		if timing < 0 {
			// WEBVTT header, NOTE, STYLE, or a stray index line.
			continue
		}
		start, end, err := parseCueTiming(block[timing])
		if err != nil {
			return nil, fmt.Errorf("subtitle block %d: %w", blockIndex+1, err)
		}
		text := NormalizeText(strings.Join(block[timing+1:], " "))
		if text == "" {
			continue
		}
		seg, err := New(len(segments), start, end, text)
		if err != nil {
			return nil, fmt.Errorf("subtitle block %d: %w", blockIndex+1, err)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func splitBlocks(content string) [][]string {
	var (
		blocks  [][]string
		current []string
	)
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t")
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

func parseCueTiming(line string) (float64, float64, error) {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid timing line %q", line)
	}
	start, err := ParseTimestamp(parts[0])
	if err != nil {
		return 0, 0, err
	}
	// WebVTT allows cue settings after the end timestamp.
	endFields := strings.Fields(parts[1])
	if len(endFields) == 0 {
		return 0, 0, fmt.Errorf("invalid timing line %q", line)
	}
	end, err := ParseTimestamp(endFields[0])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// ParseTimestamp parses HH:MM:SS,mmm (SRT) or [HH:]MM:SS.mmm (WebVTT).
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	normalized := strings.ReplaceAll(value, ",", ".")
	clock, fraction, ok := strings.Cut(normalized, ".")
	if !ok || len(fraction) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	fields := strings.Split(clock, ":")
	if len(fields) == 2 {
		fields = append([]string{"0"}, fields...)
	}
	if len(fields) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(fields[0])
	minutes, errM := strconv.Atoi(fields[1])
	seconds, errS := strconv.Atoi(fields[2])
	millis, errMS := strconv.Atoi(fraction)
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if hours < 0 || minutes < 0 || minutes > 59 || seconds < 0 || seconds > 59 || millis < 0 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// FormatTimestamp renders seconds as an SRT timestamp, rounded to the millisecond.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMS := int64(math.Round(seconds * 1000))
	hours := totalMS / 3_600_000
	totalMS %= 3_600_000
	minutes := totalMS / 60_000
	totalMS %= 60_000
	secs := totalMS / 1000
	millis := totalMS % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// WriteSRT writes segments as numbered SRT cues in the given order.
func WriteSRT(w io.Writer, segments []Segment) error {
	bw := bufio.NewWriter(w)
	for i, seg := range segments {
		if _, err := fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n", i+1, FormatTimestamp(seg.Start), FormatTimestamp(seg.End), seg.Text); err != nil {
			return fmt.Errorf("write srt cue %d: %w", i+1, err)
		}
	}
	return bw.Flush()
}
