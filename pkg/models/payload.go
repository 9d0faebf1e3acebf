package models

// PayloadVersion is the output document version understood by the editor side.
const PayloadVersion = 1

// Location is a resolved display position. Line is 0-based.
type Location struct {
	File      string `json:"file"`
	Line      int    `json:"line"`
	Character int    `json:"character"`
}

// CallNode is one node of an entry point's call tree. KindLabel is the call
// category shown to the user: Modifier, BaseConstructor, Library, External,
// Solidity or Internal.
type CallNode struct {
	Label     string     `json:"label"`
	Contract  string     `json:"contract"`
	KindLabel string     `json:"kindLabel"`
	Tooltip   string     `json:"tooltip"`
	Location  *Location  `json:"location"`
	Cycle     bool       `json:"cycle"`
	Calls     []CallNode `json:"calls"`
}

// Flow is one entry point plus its call tree as emitted in output.
type Flow struct {
	FlowID        string     `json:"flowId"`
	Label         string     `json:"label"`
	Contract      string     `json:"contract"`
	Tooltip       string     `json:"tooltip"`
	Inherited     bool       `json:"inherited"`
	InheritedFrom string     `json:"inheritedFrom"`
	Location      Location   `json:"location"`
	Calls         []CallNode `json:"calls"`
}

// FileFlows groups flows by their display file.
type FileFlows struct {
	Path        string `json:"path"`
	EntryPoints []Flow `json:"entrypoints"`
}

// Payload is the single JSON document written to stdout. Files is present on
// success, even when empty, and absent on failure; holding the slice by
// pointer keeps omitempty from swallowing an empty result.
type Payload struct {
	Version   int          `json:"version"`
	OK        bool         `json:"ok"`
	Files     *[]FileFlows `json:"files,omitempty"`
	Error     string       `json:"error,omitempty"`
	Traceback string       `json:"traceback,omitempty"`
}

// SuccessPayload shapes a successful run.
func SuccessPayload(files []FileFlows) Payload {
	if files == nil {
		files = []FileFlows{}
	}
	return Payload{Version: PayloadVersion, OK: true, Files: &files}
}

// FailurePayload shapes a failed run.
func FailurePayload(message, traceback string) Payload {
	return Payload{Version: PayloadVersion, OK: false, Error: message, Traceback: traceback}
}
