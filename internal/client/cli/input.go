package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is swapped in tests so nothing touches the terminal.
var readPassword = term.ReadPassword

// readLine shows label and returns one trimmed line. A final line without a
// newline is still accepted.
func readLine(r *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprintf(w, "%s: ", label)

	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readSecret reads a password from the terminal with echo disabled.
func readSecret(w io.Writer, label string) (string, error) {
	fmt.Fprintf(w, "%s: ", label)
	b, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return string(b), nil
}

// readText collects lines until an empty one and joins them with '\n'.
func readText(r *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprintf(w, "%s (finish with an empty line):\n", label)

	var lines []string
	for {
		line, err := r.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			lines = append(lines, line)
		}
		if line == "" || err != nil {
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// confirm asks a yes/no question; only an explicit "yes" counts.
func confirm(r *bufio.Reader, w io.Writer, question string) (bool, error) {
	answer, err := readLine(r, w, question+" [yes/no]")
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "yes"), nil
}
