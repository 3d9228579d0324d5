package inbound

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"

	"searchmap/internal/metrics"
	"searchmap/internal/selection"
)

// maxBody caps a posted selection.
const maxBody = 8 << 20

type ack struct {
	Accepted int    `json:"accepted"`
	Rejected int    `json:"rejected"`
	Error    string `json:"error,omitempty"`
}

// NewApp builds the HTTP surface:
//
//	POST /v1/selection   one selection payload
//	GET  /ws             a stream of selection payloads, one per text frame
//	GET  /v1/health      liveness
//	GET  /metrics        Prometheus
func NewApp(h Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "searchmap",
		BodyLimit:             maxBody,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(recover.New())
	app.Use(metrics.Middleware())
	app.Use(requestid.New())
	app.Use(accessLog())

	app.Get("/metrics", metrics.Handler())
	app.Get("/v1/health", healthHandler())
	app.Post("/v1/selection", selectionHandler(h))

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(wsHandler(h)))

	return app
}

// Serve runs app on addr until ctx is done.
func Serve(ctx context.Context, app *fiber.App, addr string) error {
	errc := make(chan error, 1)
	go func() { errc <- app.Listen(addr) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return app.ShutdownWithTimeout(5 * time.Second)
	}
}

func healthHandler() fiber.Handler {
	startedAt := time.Now()
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"uptime": time.Since(startedAt).Round(time.Second).String(),
		})
	}
}

func selectionHandler(h Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		msg, err := selection.Decode(c.Body())
		if err != nil {
			metrics.MessagesMalformed.WithLabelValues("http").Inc()
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		msg.Source = "http"
		h(msg)
		return c.Status(fiber.StatusAccepted).JSON(ack{
			Accepted: len(msg.Selected),
			Rejected: len(msg.Rejected),
		})
	}
}

func wsHandler(h Handler) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remote := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remote)
		defer slog.Info("ws client disconnected", "remote", remote)

		for {
			mt, data, err := c.ReadMessage()
			if err != nil {
				return
			}
			if mt != websocket.TextMessage {
				continue
			}
			msg, err := selection.Decode(data)
			if err != nil {
				metrics.MessagesMalformed.WithLabelValues("ws").Inc()
				_ = c.WriteJSON(ack{Error: "invalid JSON"})
				continue
			}
			msg.Source = "ws"
			h(msg)
			if err := c.WriteJSON(ack{Accepted: len(msg.Selected), Rejected: len(msg.Rejected)}); err != nil {
				return
			}
		}
	}
}

func accessLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}
		level := slog.LevelDebug
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		attrs := []slog.Attr{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		slog.LogAttrs(c.UserContext(), level, "http request", attrs...)
		return err
	}
}
