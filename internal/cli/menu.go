package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paulomunizdev/sqlhunter/internal/engine"
)

const banner = "                           ______\n" +
	"        |\\_______________ (_____\\\\______________\n" +
	"HH======#H###############H#######################\n" +
	"        ' ~\"\"\"\"\"\"\"\"\"\"\"\"\"\"`##(_))#H\"\"\"\"\"\"Y########\n" +
	"                          ))    \\#H\\       `'Y###\n" +
	"                          ''     }#H)"

// runMenu prints the banner, reads a numeric choice and runs that mode.
// An unknown choice is reported on stderr and is not an error.
func runMenu(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	in := bufio.NewReader(cmd.InOrStdin())

	fmt.Fprintln(out, banner)
	fmt.Fprintf(out, "\nSQL Hunter - v%s\n\n", version)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Before proceeding, please ensure you are using a proxy if necessary.")
	fmt.Fprintln(out)
	fmt.Fprint(out, "Please choose an option:\n")
	fmt.Fprint(out, "[1] Dork Scanner\n")
	fmt.Fprint(out, "[2] Vuln Scanner\n")
	fmt.Fprint(out, "[3] Dork&Vuln Scanner\n")

	line, _ := readLine(in)
	choice, err := strconv.Atoi(line)
	mode, ok := engine.ModeFromChoice(choice)
	if err != nil || !ok {
		fmt.Fprintln(cmd.ErrOrStderr(), "Invalid option. Please choose a valid option.")
		return nil
	}

	switch mode {
	case engine.ModeHarvest:
		fmt.Fprintf(out, "Please put the dorks in the '%s' file. Press Enter when ready.\n", flagString(cmd, "dorks"))
		readLine(in)
	case engine.ModeProbe:
		fmt.Fprintf(out, "Please put the links in the '%s' file. Press Enter when ready.\n", flagString(cmd, "links"))
		readLine(in)
	case engine.ModeHunt:
		fmt.Fprintln(out, "Option 3 selected: Dork Scanner followed by Vuln Scanner.")
	}

	return runMode(cmd, mode, in)
}

// readLine returns the next input line without its line terminator. At end
// of input it returns whatever was read along with io.EOF.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if err == io.EOF && line != "" {
		err = nil
	}
	return strings.TrimSpace(line), err
}

// promptPages asks for the page count on out and parses the answer.
func promptPages(out io.Writer, in *bufio.Reader) (int, error) {
	fmt.Fprint(out, "Enter the number of pages to scan: ")
	line, _ := readLine(in)
	n, err := strconv.Atoi(line)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", engine.ErrInvalidPages, line)
	}
	return n, nil
}
