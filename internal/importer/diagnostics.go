// Package importer is the import reconciliation pipeline: per-record field
// extraction, directory identity resolution, create-vs-update reconciliation,
// assignment replacement and attribute dispatch, reported through an ordered
// diagnostic sequence.
package importer

// Level classifies a diagnostic message.
type Level int

const (
	Info Level = iota
	Error
)

func (l Level) String() string {
	switch l {
	case Info:
		return "INFO"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Message is one diagnostic tied to a feed line. Messages carry a catalog
// key plus named arguments; rendering to text is deferred to the report.
// A message is never mutated after creation.
type Message struct {
	Level Level
	Line  int
	Key   string
	Args  map[string]any
}

// Diagnostics accumulates the messages of one import run in emission order.
type Diagnostics struct {
	messages []Message
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

// Info appends an informational message for a line.
func (d *Diagnostics) Info(line int, key string, args map[string]any) {
	d.messages = append(d.messages, Message{Level: Info, Line: line, Key: key, Args: args})
}

// Error appends an error message for a line.
func (d *Diagnostics) Error(line int, key string, args map[string]any) {
	d.messages = append(d.messages, Message{Level: Error, Line: line, Key: key, Args: args})
}

// Messages returns the accumulated messages in emission order.
func (d *Diagnostics) Messages() []Message {
	return d.messages
}

// Counts returns the number of info and error messages.
func (d *Diagnostics) Counts() (infos, errors int) {
	for _, m := range d.messages {
		if m.Level == Error {
			errors++
		} else {
			infos++
		}
	}
	return infos, errors
}
