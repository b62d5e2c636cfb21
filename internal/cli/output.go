package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	appErrors "github.com/noah-isme/edu-manager/pkg/errors"
	"github.com/noah-isme/edu-manager/pkg/export"
)

// IOStreams are the standard streams of a command run.
type IOStreams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
	// Interactive reports whether In is attached to a terminal.
	Interactive func() bool
}

// StdStreams returns the process streams.
func StdStreams() *IOStreams {
	return &IOStreams{
		In:  os.Stdin,
		Out: os.Stdout,
		Err: os.Stderr,
		Interactive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

// Confirm asks a yes/no question on the terminal. Without a terminal nothing
// is deleted silently: the caller has to pass --yes.
func (s *IOStreams) Confirm(question string) (bool, error) {
	if s.Interactive == nil || !s.Interactive() {
		return false, appErrors.Clone(appErrors.ErrValidation, "confirmation required: rerun with --yes")
	}
	fmt.Fprintf(s.Err, "%s [y/N]: ", question)
	line, err := bufio.NewReader(s.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "д", "да":
		return true, nil
	default:
		return false, nil
	}
}

func printTable(w io.Writer, data export.Dataset) error {
	if len(data.Rows) == 0 {
		_, err := fmt.Fprintf(w, "no %s\n", strings.ToLower(data.Title))
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(data.Headers, "\t"))
	for _, row := range data.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func printFields(w io.Writer, id int64, pairs [][2]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "id:\t%d\n", id)
	for _, p := range pairs {
		fmt.Fprintf(tw, "%s:\t%s\n", p[0], p[1])
	}
	return tw.Flush()
}
