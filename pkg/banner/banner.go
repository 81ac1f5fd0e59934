package banner

import (
	"fmt"
	"io"
)

const banner = `
██████╗ ██████╗ ███████╗
██╔══██╗██╔══██╗██╔════╝
██████╔╝██████╔╝███████╗
██╔══██╗██╔══██╗╚════██║
██████╔╝██████╔╝███████║
╚═════╝ ╚═════╝ ╚══════╝
`

// Print writes the startup banner and the effective runtime settings.
func Print(w io.Writer, dataDir string, maxMessages, shardSize int, sources, version string) {
	fmt.Fprint(w, banner)
	fmt.Fprintln(w, "== Config =====================================================")
	fmt.Fprintf(w, "Data dir:      %s\n", dataDir)
	fmt.Fprintf(w, "Max messages:  %d\n", maxMessages)
	fmt.Fprintf(w, "Shard size:    %d\n", shardSize)
	if version != "" {
		fmt.Fprintf(w, "Version:       %s\n", version)
	}
	if sources != "" {
		fmt.Fprintf(w, "Config sources: %s\n", sources)
	}
	fmt.Fprintln(w)
}

// Menu writes the command menu shown before each prompt.
func Menu(w io.Writer) {
	fmt.Fprintln(w, "Please select an option:")
	fmt.Fprintln(w, "  - type A <subj> <msg> to add a message")
	fmt.Fprintln(w, "  - type D <msg-num> to delete a message")
	fmt.Fprintln(w, "  - type S for a summary of all messages")
	fmt.Fprintln(w, "  - type S <text> for a summary of messages with <text> in title or poster")
	fmt.Fprintln(w, "  - type V <msg-num> to view the contents of a message")
	fmt.Fprintln(w, "  - type X to exit")
	fmt.Fprintln(w, "  - type softX to disconnect and hand the board to another user")
}
