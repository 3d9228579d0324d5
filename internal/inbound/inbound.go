// Package inbound delivers selection messages from outside the process:
// newline-delimited JSON on a reader, a NATS subject, or HTTP/WebSocket.
package inbound

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"searchmap/internal/metrics"
	"searchmap/internal/selection"
)

// Handler receives decoded messages. Sources may call it from their own
// goroutines; the receiver serialises delivery.
type Handler func(selection.Message)

const maxLine = 4 << 20

// ReadLines decodes one selection payload per line of r until EOF or ctx is
// done. Blank lines are skipped; malformed lines are logged and counted.
func ReadLines(ctx context.Context, r io.Reader, source string, h Handler) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)

	line := 0
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line++
		data := bytes.TrimSpace(sc.Bytes())
		if len(data) == 0 {
			continue
		}
		msg, err := selection.Decode(data)
		if err != nil {
			metrics.MessagesMalformed.WithLabelValues(source).Inc()
			slog.Warn("malformed selection line", "source", source, "line", line, "error", err)
			continue
		}
		msg.Source = source
		h(msg)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", source, err)
	}
	return nil
}
