package control

import (
	"context"
	"net/http"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"
)

// wsChannel adapts a WebSocket connection to the jrpc2 channel interface.
type wsChannel struct {
	conn *cws.Conn
	ctx  context.Context
}

func (c *wsChannel) Send(data []byte) error {
	return c.conn.Write(c.ctx, cws.MessageText, data)
}

func (c *wsChannel) Recv() ([]byte, error) {
	_, data, err := c.conn.Read(c.ctx)
	return data, err
}

func (c *wsChannel) Close() error {
	return c.conn.Close(cws.StatusNormalClosure, "")
}

// serveWS runs one jrpc2 server per WebSocket connection until the peer
// disconnects.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := cws.Accept(w, r, nil)
	if err != nil {
		s.log.Warning("control: websocket accept: %v", err)
		return
	}
	srv := jrpc2.NewServer(s.methods, nil)
	srv.Start(&wsChannel{conn: conn, ctx: r.Context()})
	if err := srv.Wait(); err != nil {
		s.log.Info("control: websocket session ended: %v", err)
	}
}
