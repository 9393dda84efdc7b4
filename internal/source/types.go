package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// LogEntry is one decoded line of a session log. The variant set is closed:
// UserEntry, AssistantEntry and OtherEntry.
type LogEntry interface {
	// Time is the entry timestamp, zero when absent or unparseable.
	Time() time.Time
	logEntry()
}

// UserEntry is a "user" line.
type UserEntry struct {
	Timestamp time.Time
	IsMeta    bool
	Role      string
	// Text is the verbatim string content, or the text blocks joined with
	// newlines and trimmed.
	Text    string
	HasText bool
	// IsCommandEcho marks slash-command and local-command output echoed back
	// into the log as string content.
	IsCommandEcho bool
}

// Usage is the billed token vector of one assistant response.
type Usage struct {
	RawInput    int64
	CacheCreate int64
	CacheRead   int64
	Output      int64
}

// AssistantEntry is an "assistant" line. Usage is nil when the line carries
// no usage vector.
type AssistantEntry struct {
	Timestamp time.Time
	Model     string
	Usage     *Usage
	Tools     []string
}

// OtherEntry is any other line type (system, summary, progress, ...).
type OtherEntry struct {
	Type      string
	Timestamp time.Time
}

func (e UserEntry) Time() time.Time      { return e.Timestamp }
func (e AssistantEntry) Time() time.Time { return e.Timestamp }
func (e OtherEntry) Time() time.Time     { return e.Timestamp }

func (UserEntry) logEntry()      {}
func (AssistantEntry) logEntry() {}
func (OtherEntry) logEntry()     {}

// ParseError is a line that could not be decoded. The reader reports it and
// moves on to the next line.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FileError is a failure to open or read a log file. It ends the sequence.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// DiscoveredFile is a session log found during directory scanning.
type DiscoveredFile struct {
	Path       string
	ProjectDir string // raw encoded directory name under projects/
	SessionID  string // file name without .jsonl
}

// rawEntry is the wire shape of a user or assistant line.
type rawEntry struct {
	Type      string      `json:"type"`
	Timestamp string      `json:"timestamp"`
	IsMeta    bool        `json:"isMeta"`
	Message   *rawMessage `json:"message"`
}

// rawHeader is decoded for every other line type.
type rawHeader struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

type rawMessage struct {
	Role    string         `json:"role"`
	Model   string         `json:"model"`
	Content messageContent `json:"content"`
	Usage   *rawUsage      `json:"usage"`
}

type rawUsage struct {
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
	Name string `json:"name"`
}

// messageContent is either a plain string or an ordered list of blocks.
type messageContent struct {
	IsString bool
	String   string
	Blocks   []contentBlock
}

func (c *messageContent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '"':
		c.IsString = true
		return json.Unmarshal(data, &c.String)
	case data[0] == '[':
		return json.Unmarshal(data, &c.Blocks)
	}
	// Unknown content shapes carry no prompt text.
	return nil
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return ts
}
