// Package enginetest provides a fake analytics engine server for tests.
// It speaks just enough of the websocket JSON-RPC protocol to exercise the
// transport, the typed client, and the reclamation driver: a greeting frame
// on connect, then GetDocList, OpenDoc and DoSave.
package enginetest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// Doc is one document in the fake server's catalog.
type Doc struct {
	Name string
	ID   string

	// Published is marshaled verbatim into the qMeta block, so tests can
	// exercise non-boolean encodings. Nil means the field is omitted.
	Published any

	FileSize int64

	// LastReloadTime is the raw timestamp string; empty means the field is
	// omitted, i.e. the document was never reloaded.
	LastReloadTime string

	// FailOpen makes OpenDoc reply with a non-document object type.
	FailOpen bool
}

type saveRecord struct {
	handle int
	docID  string
}

// Server is a scriptable fake engine behind an httptest listener.
type Server struct {
	httpServer *httptest.Server
	upgrader   websocket.Upgrader

	mu          sync.Mutex
	docs        []Doc
	nextHandle  int
	openDocs    map[int]string
	saved        []string
	connections  int
	lastIdentity string
}

// NewServer starts a fake engine serving the given catalog.
func NewServer(docs ...Doc) *Server {
	s := &Server{
		docs:       docs,
		nextHandle: 1,
		openDocs:   make(map[int]string),
	}
	s.httpServer = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// URL returns the websocket endpoint of the fake server.
func (s *Server) URL() string {
	return "ws" + strings.TrimPrefix(s.httpServer.URL, "http") + "/app/"
}

// Close shuts the server down.
func (s *Server) Close() {
	s.httpServer.Close()
}

// Saved returns the document IDs saved so far, in save order.
func (s *Server) Saved() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.saved...)
}

// Connections returns the number of websocket connections accepted so far.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connections
}

// Identity returns the identity header value presented by the most recent
// connection, if any.
func (s *Server) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastIdentity
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	identity := r.Header.Get("X-Qlik-User")

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer ws.Close()

	s.mu.Lock()
	s.connections++
	s.lastIdentity = identity
	s.mu.Unlock()

	// Connection-established notice, pushed before any call arrives.
	greeting := map[string]any{
		"jsonrpc": "2.0",
		"method":  "OnConnected",
		"params":  map[string]any{"qSessionState": "SESSION_CREATED"},
	}
	if err := ws.WriteJSON(greeting); err != nil {
		return
	}

	for {
		var req struct {
			Method string          `json:"method"`
			Handle int             `json:"handle"`
			Params json.RawMessage `json:"params"`
		}
		if err := ws.ReadJSON(&req); err != nil {
			return
		}

		var reply map[string]any
		switch req.Method {
		case "GetDocList":
			reply = s.docList()
		case "OpenDoc":
			reply = s.openDoc(req.Params)
		case "DoSave":
			reply = s.doSave(req.Handle)
		default:
			reply = errorReply(-32601, "method not found", req.Method)
		}
		if err := ws.WriteJSON(reply); err != nil {
			return
		}
	}
}

func (s *Server) docList() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]map[string]any, 0, len(s.docs))
	for _, doc := range s.docs {
		entry := map[string]any{
			"qDocName":  doc.Name,
			"qDocId":    doc.ID,
			"qFileSize": doc.FileSize,
			"qMeta":     map[string]any{},
		}
		if doc.Published != nil {
			entry["qMeta"] = map[string]any{"published": doc.Published}
		}
		if doc.LastReloadTime != "" {
			entry["qLastReloadTime"] = doc.LastReloadTime
		}
		entries = append(entries, entry)
	}
	return map[string]any{"result": map[string]any{"qDocList": entries}}
}

func (s *Server) openDoc(params json.RawMessage) map[string]any {
	var p struct {
		DocName string `json:"qDocName"`
		NoData  bool   `json:"qNoData"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return errorReply(-32602, "invalid params", "")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range s.docs {
		if doc.ID != p.DocName {
			continue
		}
		if doc.FailOpen {
			// The engine hands back a non-document object when the app
			// cannot be opened as a document.
			return map[string]any{"result": map[string]any{
				"qReturn": map[string]any{"qType": "Object", "qHandle": 0},
			}}
		}
		handle := s.nextHandle
		s.nextHandle++
		s.openDocs[handle] = doc.ID
		return map[string]any{"result": map[string]any{
			"qReturn": map[string]any{
				"qType":      "Doc",
				"qHandle":    handle,
				"qGenericId": doc.ID,
			},
		}}
	}
	return errorReply(1002, "App not found", p.DocName)
}

func (s *Server) doSave(handle int) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	docID, ok := s.openDocs[handle]
	if !ok {
		return errorReply(1007, "Invalid handle", "")
	}
	s.saved = append(s.saved, docID)
	return map[string]any{"result": map[string]any{}}
}

func errorReply(code int, message, parameter string) map[string]any {
	return map[string]any{"error": map[string]any{
		"code":      code,
		"message":   message,
		"parameter": parameter,
	}}
}
