package engine

import (
	"context"
	"encoding/json"
	"fmt"
)

// Client wraps a Conn with the typed calls this tool uses.
type Client struct {
	conn *Conn

	// Observer, when set, is invoked after every call with the method name
	// and its outcome. Used to feed metrics without coupling the protocol
	// layer to a metrics registry.
	Observer func(method string, err error)
}

// NewClient creates a Client on an established connection. The Client does
// not own the connection; the caller remains responsible for closing it.
func NewClient(conn *Conn) *Client {
	return &Client{conn: conn}
}

func (c *Client) call(ctx context.Context, req *Request) (*Response, error) {
	resp, err := c.conn.Exchange(ctx, req)
	if err == nil && resp.Error != nil {
		err = fmt.Errorf("%s call failed: %w", req.Method, resp.Error)
	}
	if c.Observer != nil {
		c.Observer(req.Method, err)
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetDocList retrieves the full document catalog from the engine's global
// context.
func (c *Client) GetDocList(ctx context.Context) ([]DocListEntry, error) {
	resp, err := c.call(ctx, &Request{
		Method: "GetDocList",
		Handle: GlobalHandle,
		Params: []any{},
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		DocList *[]DocListEntry `json:"qDocList"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, NewProtocolError("GetDocList", fmt.Sprintf("decoding result: %v", err))
	}
	if result.DocList == nil {
		return nil, NewProtocolError("GetDocList", "result is missing qDocList")
	}
	return *result.DocList, nil
}

type openDocParams struct {
	DocName string `json:"qDocName"`
	NoData  bool   `json:"qNoData"`
}

// OpenDoc opens the identified document in the global context. When noData
// is true the engine loads the document's structure without its data, which
// is the first half of the truncate-and-save sequence.
func (c *Client) OpenDoc(ctx context.Context, docID string, noData bool) (*OpenResult, error) {
	resp, err := c.call(ctx, &Request{
		Method: "OpenDoc",
		Handle: GlobalHandle,
		Params: openDocParams{DocName: docID, NoData: noData},
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Return *OpenResult `json:"qReturn"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, NewProtocolError("OpenDoc", fmt.Sprintf("decoding result: %v", err))
	}
	if result.Return == nil {
		return nil, NewProtocolError("OpenDoc", "result is missing qReturn")
	}
	if result.Return.Type == "" {
		return nil, NewProtocolError("OpenDoc", "qReturn is missing qType")
	}
	return result.Return, nil
}

type doSaveParams struct {
	FileName string `json:"qFileName"`
}

// DoSave saves the document open on the given session handle. An empty
// target filename means save in place, overwriting the original. The reply
// is the final status; beyond the absence of a transport or call error it is
// not validated further.
func (c *Client) DoSave(ctx context.Context, handle int) error {
	_, err := c.call(ctx, &Request{
		Method: "DoSave",
		Handle: handle,
		Params: doSaveParams{FileName: ""},
	})
	return err
}
