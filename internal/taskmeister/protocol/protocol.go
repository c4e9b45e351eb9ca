// Package protocol defines the wire types exchanged between the client and
// the daemon (spec.md §6): a JSON-framed Request/Response pair with no
// length prefix, relying on the JSON decoder's own streaming boundary
// detection.
package protocol

// Request is one client->server message. A non-nil Stream is interpreted as
// interactive stdin bytes for the alias in Args[0], regardless of Command
// (spec.md §6).
type Request struct {
	Command string   `json:"command"`
	Flags   []string `json:"flags,omitempty"`
	Args    []string `json:"args,omitempty"`
	Stream  []byte   `json:"stream,omitempty"`
}

// ResponsePart is the closed sum type of server->client reply fragments
// (spec.md §6): exactly one of Info, Error, or Stream is set.
type ResponsePart struct {
	Info   *string `json:"Info,omitempty"`
	Error  *string `json:"Error,omitempty"`
	Stream []byte  `json:"Stream,omitempty"`
}

// Info constructs an Info ResponsePart.
func Info(msg string) ResponsePart { return ResponsePart{Info: &msg} }

// Err constructs an Error ResponsePart.
func Err(msg string) ResponsePart { return ResponsePart{Error: &msg} }

// Stream constructs a Stream ResponsePart.
func Stream(b []byte) ResponsePart { return ResponsePart{Stream: b} }

// IsError reports whether the part carries an Error.
func (p ResponsePart) IsError() bool { return p.Error != nil }

// Commands and their short forms (spec.md §6).
const (
	CmdStart      = "start"
	CmdStartShort = "st"

	CmdStop      = "stop"
	CmdStopShort = "sp"

	CmdRestart      = "restart"
	CmdRestartShort = "rs"

	CmdStatus      = "status"
	CmdStatusShort = "stat"

	CmdAttach      = "attach"
	CmdAttachShort = "at"

	CmdDetach      = "detach"
	CmdDetachShort = "dt"

	CmdReload      = "reload"
	CmdReloadShort = "rl"

	CmdList      = "list"
	CmdListShort = "ls"

	CmdHelp      = "help"
	CmdHelpShort = "?"

	CmdStopServer = "stop_server"
)
