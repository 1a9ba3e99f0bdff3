package board

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	chlog "github.com/charmbracelet/log"
	"github.com/goburrow/serial"

	"github.com/mklimuk/digipot/pkg/config"
)

// openDiagnostics opens the serial diagnostic line. It returns nil when
// diagnostics go to stdout.
func openDiagnostics(d config.Diagnostics) (io.WriteCloser, error) {
	if d.Port == "" {
		return nil, nil
	}
	port, err := serial.Open(&serial.Config{
		Address:  d.Port,
		BaudRate: d.Baud,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("could not open diagnostics port %s: %w", d.Port, err)
	}
	return port, nil
}

func newLogger(out io.Writer, level string) *slog.Logger {
	w := out
	if w == nil {
		w = os.Stdout
	}
	charm := chlog.NewWithOptions(w, chlog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "ds1803",
	})
	charm.SetLevel(parseLevel(level))
	return slog.New(charm)
}

func parseLevel(level string) chlog.Level {
	lvl, err := chlog.ParseLevel(level)
	if err != nil {
		return chlog.InfoLevel
	}
	return lvl
}
