package engine

import (
	"bytes"
	"encoding/json"
)

// GlobalHandle is the sentinel handle addressing the engine's root context.
const GlobalHandle = -1

// Request is a single call envelope on the engine channel.
type Request struct {
	// Method is the procedure name, e.g. "GetDocList".
	Method string `json:"method"`

	// Handle is the call context: GlobalHandle for root-scoped calls,
	// otherwise a session handle obtained from a previous reply.
	Handle int `json:"handle"`

	// Params is the method-specific payload (object or array).
	Params any `json:"params"`
}

// Response is a single reply envelope. Exactly one of Result and Error is
// populated.
type Response struct {
	Result json.RawMessage `json:"result"`
	Error  *CallError      `json:"error"`
}

// CallError is the engine's structured error member in a reply.
type CallError struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Parameter string `json:"parameter"`
}

func (e *CallError) Error() string {
	if e.Parameter != "" {
		return e.Message + ": " + e.Parameter
	}
	return e.Message
}

// DocListEntry is one catalog entry from GetDocList. It is an immutable
// snapshot of the server's metadata at fetch time.
type DocListEntry struct {
	// Name is the document's display name.
	Name string `json:"qDocName"`

	// ID is the server-unique document identifier.
	ID string `json:"qDocId"`

	// Meta carries the publication state.
	Meta DocMeta `json:"qMeta"`

	// FileSize is the document's size on disk in bytes.
	FileSize int64 `json:"qFileSize"`

	// LastReloadTime is the last reload timestamp in the engine's
	// ISO-8601-with-fraction UTC format, or empty when the document has
	// never been reloaded.
	LastReloadTime string `json:"qLastReloadTime"`
}

// DocMeta is the nested metadata block of a catalog entry.
type DocMeta struct {
	Published Published `json:"published"`
}

// Published is the catalog's publication flag. Some deployments encode it as
// a boolean, others as an enumerated value; the documented semantics are that
// JSON false (or an absent field) means unpublished and anything else means
// published, so decoding is deliberately lenient.
type Published bool

var jsonFalse = []byte("false")

func (p *Published) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*p = Published(!bytes.Equal(data, jsonFalse) && !bytes.Equal(data, []byte("null")))
	return nil
}

func (p Published) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(p))
}

// OpenResult is the qReturn member of an OpenDoc reply.
type OpenResult struct {
	// Type is the opened object's declared type; "Doc" indicates a
	// successfully opened document.
	Type string `json:"qType"`

	// Handle is the session handle for subsequent contextual calls.
	Handle int `json:"qHandle"`

	// GenericID echoes the document identifier.
	GenericID string `json:"qGenericId"`
}

// DocTypeDoc is the qType value of a successfully opened document.
const DocTypeDoc = "Doc"
