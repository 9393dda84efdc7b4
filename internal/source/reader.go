// Package source discovers and decodes Claude Code JSONL session logs.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"iter"
	"os"
	"strings"
)

const (
	initialLineBuf = 256 * 1024
	maxLineBytes   = 16 * 1024 * 1024
)

// LogFile is a session log on disk. It holds no open handle.
type LogFile struct {
	path string
}

// OpenLog returns a LogFile for path. Nothing is read until Entries is ranged.
func OpenLog(path string) LogFile {
	return LogFile{path: path}
}

// Path returns the file path.
func (f LogFile) Path() string { return f.path }

// Entries streams the decoded lines of the file. Every range re-opens the
// file, so the sequence can be consumed more than once.
//
// A malformed or overlong line yields (nil, *ParseError) and iteration
// continues. An open or read failure yields (nil, *FileError) and ends the
// sequence.
func (f LogFile) Entries() iter.Seq2[LogEntry, error] {
	return func(yield func(LogEntry, error) bool) {
		fh, err := os.Open(f.path)
		if err != nil {
			yield(nil, &FileError{Path: f.path, Err: err})
			return
		}
		defer func() { _ = fh.Close() }()

		stopped := false
		err = forEachLine(fh, func(lineNo int, line []byte, err error) bool {
			var entry LogEntry
			if err == nil {
				entry, err = decodeLine(line)
			}
			if err != nil {
				if !yield(nil, &ParseError{Path: f.path, Line: lineNo, Err: err}) {
					stopped = true
					return false
				}
				return true
			}
			if !yield(entry, nil) {
				stopped = true
				return false
			}
			return true
		})
		if err != nil && !stopped {
			yield(nil, &FileError{Path: f.path, Err: err})
		}
	}
}

// ErrLineTooLong marks a line longer than the reader keeps in memory. The
// line is skipped and reading resumes at the next newline.
var ErrLineTooLong = errors.New("line exceeds 16 MiB")

// forEachLine calls fn for every non-blank line until fn returns false.
// Line numbers are 1-based and count blank lines. An overlong line is
// passed as (nil, ErrLineTooLong). The returned error is a read failure.
func forEachLine(r io.Reader, fn func(lineNo int, line []byte, err error) bool) error {
	return scanLines(r, maxLineBytes, fn)
}

func scanLines(r io.Reader, limit int, fn func(lineNo int, line []byte, err error) bool) error {
	br := bufio.NewReaderSize(r, initialLineBuf)

	var (
		buf     []byte
		tooLong bool
		lineNo  int
	)
	for {
		chunk, err := br.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			if !tooLong {
				if len(buf)+len(chunk) > limit {
					tooLong, buf = true, buf[:0]
				} else {
					buf = append(buf, chunk...)
				}
			}
			continue
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if len(chunk) == 0 && len(buf) == 0 && !tooLong {
			return nil
		}

		lineNo++
		line := chunk
		if len(buf) > 0 {
			buf = append(buf, chunk...)
			line = buf
		}
		if len(bytes.TrimRight(line, "\r\n")) > limit {
			tooLong = true
		}

		more := true
		switch {
		case tooLong:
			more = fn(lineNo, nil, ErrLineTooLong)
		default:
			if line = bytes.TrimSpace(line); len(line) > 0 {
				more = fn(lineNo, line, nil)
			}
		}
		buf, tooLong = buf[:0], false
		if !more || err != nil {
			return nil
		}
	}
}

// decodeLine routes a line on its top-level type. Only user and assistant
// lines pay for a full decode of the message body.
func decodeLine(line []byte) (LogEntry, error) {
	switch extractTopLevelType(line) {
	case "user":
		var raw rawEntry
		if err := json.Unmarshal(line, &raw); err != nil {
			return nil, err
		}
		return userFromRaw(raw), nil
	case "assistant":
		var raw rawEntry
		if err := json.Unmarshal(line, &raw); err != nil {
			return nil, err
		}
		return assistantFromRaw(raw), nil
	}

	var hdr rawHeader
	if err := json.Unmarshal(line, &hdr); err != nil {
		return nil, err
	}
	return OtherEntry{Type: hdr.Type, Timestamp: parseTimestamp(hdr.Timestamp)}, nil
}

func userFromRaw(raw rawEntry) UserEntry {
	e := UserEntry{
		Timestamp: parseTimestamp(raw.Timestamp),
		IsMeta:    raw.IsMeta,
	}
	if raw.Message == nil {
		return e
	}
	e.Role = raw.Message.Role

	content := raw.Message.Content
	if content.IsString {
		e.Text = content.String
		e.IsCommandEcho = strings.HasPrefix(content.String, "<local-command") ||
			strings.HasPrefix(content.String, "<command-name")
	} else {
		var parts []string
		for _, b := range content.Blocks {
			if b.Type == "text" {
				parts = append(parts, b.Text)
			}
		}
		e.Text = strings.TrimSpace(strings.Join(parts, "\n"))
	}
	e.HasText = e.Text != ""
	return e
}

func assistantFromRaw(raw rawEntry) AssistantEntry {
	e := AssistantEntry{Timestamp: parseTimestamp(raw.Timestamp)}
	msg := raw.Message
	if msg == nil {
		return e
	}
	e.Model = msg.Model
	if msg.Usage != nil {
		e.Usage = &Usage{
			RawInput:    msg.Usage.InputTokens,
			CacheCreate: msg.Usage.CacheCreationInputTokens,
			CacheRead:   msg.Usage.CacheReadInputTokens,
			Output:      msg.Usage.OutputTokens,
		}
	}
	for _, b := range msg.Content.Blocks {
		if b.Type == "tool_use" && b.Name != "" {
			e.Tools = append(e.Tools, b.Name)
		}
	}
	return e
}

// typeKey is the byte sequence for a JSON key named "type" (with quotes).
var typeKey = []byte(`"type"`)

// extractTopLevelType finds the top-level "type" field in a JSONL line.
// Tracks brace depth and string boundaries so nested "type" keys (content
// blocks carry their own) are ignored. Returns "" for types that need no
// message decode.
func extractTopLevelType(line []byte) string {
	depth := 0
	for i := 0; i < len(line); {
		switch line[i] {
		case '"':
			if depth == 1 && bytes.HasPrefix(line[i:], typeKey) {
				val, isKey := classifyType(line, i+len(typeKey))
				if isKey {
					return val
				}
			}
			i = skipJSONString(line, i)
		case '{':
			depth++
			i++
		case '}':
			depth--
			i++
		default:
			i++
		}
	}
	return ""
}

// classifyType checks whether pos follows a JSON key (expects : then value).
// isKey=false means "type" appeared as a value and scanning should go on.
func classifyType(line []byte, pos int) (val string, isKey bool) {
	i := skipSpaces(line, pos)
	if i >= len(line) || line[i] != ':' {
		return "", false
	}
	i = skipSpaces(line, i+1)
	if i >= len(line) || line[i] != '"' {
		return "", true
	}
	i++

	end := bytes.IndexByte(line[i:], '"')
	if end < 0 || end > 20 {
		return "", true
	}
	switch v := string(line[i : i+end]); v {
	case "assistant", "user":
		return v, true
	}
	return "", true
}

// skipJSONString advances past a JSON string starting at the opening quote.
func skipJSONString(line []byte, i int) int {
	i++
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1
		default:
			i++
		}
	}
	return i
}

func skipSpaces(line []byte, i int) int {
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return i
}
