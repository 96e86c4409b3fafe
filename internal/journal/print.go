package journal

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// Print writes entries one per line with a relative timestamp and status.
func Print(w io.Writer, entries []Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No commands recorded yet.")
		return
	}

	for _, entry := range entries {
		fmt.Fprintf(w, "%-16s %-8s %s\n", humanize.Time(entry.CreatedAt), status(entry), entry.Command)
	}
}

func status(entry Entry) string {
	switch {
	case entry.Refused:
		return "refused"
	case entry.Succeeded:
		return "ok"
	case !entry.ExitCode.Valid:
		return "?"
	default:
		return fmt.Sprintf("exit %d", entry.ExitCode.Int32)
	}
}
