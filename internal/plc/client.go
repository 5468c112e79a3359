package plc

import (
	"fmt"
	"strings"
	"time"

	s7 "github.com/robinson/gos7"
	"github.com/sirupsen/logrus"

	"github.com/jmaas/s7plan/internal/plan"
)

// DefaultPort is the ISO-on-TCP port Siemens PLCs listen on.
const DefaultPort = 102

// Client is a live Session backed by an S7 connection.
type Client struct {
	handler *s7.TCPClientHandler
	client  s7.Client
	logger  *logrus.Logger
}

// Connect opens an S7 session to the PLC at ip (port 102 unless the address
// names one) using the given rack and slot. The session never retries on
// its own; I/O failures surface to the caller per operation.
func Connect(ip string, rack, slot int, timeout time.Duration, logger *logrus.Logger) (*Client, error) {
	addr := ip
	if !strings.Contains(addr, ":") {
		addr = fmt.Sprintf("%s:%d", addr, DefaultPort)
	}
	if logger == nil {
		logger = logrus.New()
	}

	handler := s7.NewTCPClientHandler(addr, rack, slot)
	if timeout > 0 {
		handler.Timeout = timeout
	}
	if err := handler.Connect(); err != nil {
		return nil, &ConnectionError{Addr: addr, Err: err}
	}

	client := s7.NewClient(handler)
	if client == nil {
		handler.Close()
		return nil, &ConnectionError{Addr: addr, Err: fmt.Errorf("could not create S7 client")}
	}

	logger.WithFields(logrus.Fields{"addr": addr, "rack": rack, "slot": slot}).Debug("S7 session established")
	return &Client{handler: handler, client: client, logger: logger}, nil
}

// Read fetches size bytes starting at start from the selected area.
func (c *Client) Read(area plan.Area, db, start, size int) ([]byte, error) {
	buf := make([]byte, size)
	var err error
	switch area {
	case plan.AreaMerker:
		err = c.client.AGReadMB(start, size, buf)
	default:
		err = c.client.AGReadDB(db, start, size, buf)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s%d offset %d size %d: %w", area, db, start, size, err)
	}
	c.logger.Debugf("S7 read %s%d %d+%d: % X", area, db, start, size, buf)
	return buf, nil
}

// Write stores data starting at start in the selected area.
func (c *Client) Write(area plan.Area, db, start int, data []byte) error {
	var err error
	switch area {
	case plan.AreaMerker:
		err = c.client.AGWriteMB(start, len(data), data)
	default:
		err = c.client.AGWriteDB(db, start, len(data), data)
	}
	if err != nil {
		return fmt.Errorf("write %s%d offset %d size %d: %w", area, db, start, len(data), err)
	}
	c.logger.Debugf("S7 write %s%d %d: % X", area, db, start, data)
	return nil
}

// Close disconnects the session.
func (c *Client) Close() error {
	return c.handler.Close()
}
