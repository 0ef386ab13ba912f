package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/longkey1/bookchat/internal/bookchat"
	"github.com/longkey1/bookchat/internal/bookchat/conversation"
	"github.com/longkey1/bookchat/internal/bookchat/widget"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// replCmd represents the repl command
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start a line-oriented chat session",
	Long: `Start an interactive chat session with the book assistant in the terminal.

Each line you type is sent as one question. The conversation lives only for the
duration of the session; use /clear to start over.

Examples:
  bookchat repl
  bookchat repl --api-url https://book.example.com`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, ctrl, err := mountWidget()
		if err != nil {
			return err
		}

		r := &repl{
			ctrl:     ctrl,
			endpoint: cfg.ChatEndpoint(),
			in:       cmd.InOrStdin(),
			out:      cmd.OutOrStdout(),
			errOut:   cmd.ErrOrStderr(),
			spinner:  isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()),
		}
		if err := r.run(cmd.Context()); err != nil {
			return fmt.Errorf("interactive mode: %w", err)
		}
		return nil
	},
}

// repl drives a widget controller from line input.
type repl struct {
	ctrl     *widget.Controller
	endpoint string
	in       io.Reader
	out      io.Writer
	errOut   io.Writer
	spinner  bool
}

// run reads questions until EOF, /exit or context cancellation
func (r *repl) run(ctx context.Context) error {
	fmt.Fprintf(r.errOut, "\n=== Robotics Book Assistant [%s] ===\n", r.ctrl.ShortID())
	fmt.Fprintf(r.errOut, "Endpoint: %s\n", r.endpoint)
	fmt.Fprintf(r.errOut, "Type '/help' for commands, '/exit' or 'Ctrl+D' to quit\n")
	fmt.Fprintf(r.errOut, "=====================================\n\n")

	stop := make(chan struct{})
	defer close(stop)
	lines, readErr := readLines(r.in, stop)

	for {
		if ctx.Err() != nil {
			fmt.Fprintln(r.errOut, "\nGoodbye!")
			return nil
		}

		fmt.Fprint(r.errOut, "You> ")

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.errOut, "\nGoodbye!")
			return nil
		case l, ok := <-lines:
			if !ok {
				// EOF (Ctrl+D) or error
				if err := <-readErr; err != nil {
					return fmt.Errorf("input error: %w", err)
				}
				fmt.Fprintln(r.errOut, "\nGoodbye!")
				return nil
			}
			line = l
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if r.handleCommand(input) {
				continue
			}
			return nil
		}

		r.turn(ctx, input)
	}
}

// readLines scans in on its own goroutine so a blocked read never holds up
// cancellation. lines is closed at EOF; the scanner error, if any, is then sent
// on the error channel. Closing stop abandons the reader.
func readLines(in io.Reader, stop <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}

// turn sends one question and prints the answer or the error banner
func (r *repl) turn(ctx context.Context, question string) {
	r.ctrl.SetDraft(question)
	p, err := r.ctrl.Submit()
	if err != nil {
		fmt.Fprintf(r.errOut, "Error: %v\n", err)
		return
	}

	var done chan bool
	if r.spinner {
		done = make(chan bool)
		go showSpinner(r.errOut, done)
	}

	outcome := p.Resolve(ctx)

	if done != nil {
		done <- true
		close(done)
	}

	if err := r.ctrl.Apply(outcome); err != nil {
		fmt.Fprintf(r.errOut, "Error: %v\n", err)
		return
	}

	state := r.ctrl.State()
	if state.Status == conversation.StatusErrored {
		fmt.Fprintf(r.errOut, "Error: %s\n", state.LastError)
		return
	}

	last := state.Transcript[len(state.Transcript)-1]
	fmt.Fprintf(r.out, "\n%s> %s\n", bookchat.RoleAssistant.Label(), last.Content)
	if len(last.Sources) > 0 {
		fmt.Fprintf(r.out, "\nSources:\n%s\n", formatSources(last.Sources))
	}
	fmt.Fprintln(r.out)
}

// showSpinner displays a spinner animation while waiting for response
func showSpinner(w io.Writer, done chan bool) {
	spinners := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	i := 0
	for {
		select {
		case <-done:
			// Clear the spinner line
			fmt.Fprint(w, "\r\033[K")
			return
		default:
			fmt.Fprintf(w, "\r%s Thinking...", spinners[i])
			i = (i + 1) % len(spinners)
			time.Sleep(80 * time.Millisecond)
		}
	}
}

// handleCommand processes slash commands.
// Returns true to continue the loop, false to exit
func (r *repl) handleCommand(command string) bool {
	command = strings.ToLower(strings.TrimSpace(command))

	switch command {
	case "/help", "/h":
		fmt.Fprintln(r.errOut, "\nAvailable commands:")
		fmt.Fprintln(r.errOut, "  /help, /h     - Show this help message")
		fmt.Fprintln(r.errOut, "  /info, /i     - Show conversation information")
		fmt.Fprintln(r.errOut, "  /clear, /c    - Clear the conversation")
		fmt.Fprintln(r.errOut, "  /dismiss, /d  - Dismiss the last error")
		fmt.Fprintln(r.errOut, "  /exit, /quit  - Exit interactive mode")
		fmt.Fprintln(r.errOut, "  Ctrl+D        - Exit interactive mode")
		fmt.Fprintln(r.errOut, "")
		return true

	case "/info", "/i":
		state := r.ctrl.State()
		fmt.Fprintln(r.errOut, "\nConversation Information:")
		fmt.Fprintf(r.errOut, "  ID: %s\n", r.ctrl.ShortID())
		fmt.Fprintf(r.errOut, "  Full ID: %s\n", state.ID)
		fmt.Fprintf(r.errOut, "  Endpoint: %s\n", r.endpoint)
		fmt.Fprintf(r.errOut, "  Messages: %d\n", len(state.Transcript))
		fmt.Fprintf(r.errOut, "  Status: %s\n", state.Status)
		if state.LastError != "" {
			fmt.Fprintf(r.errOut, "  Last error: %s\n", state.LastError)
		}
		fmt.Fprintln(r.errOut, "")
		return true

	case "/clear", "/c":
		r.ctrl.ClearAll()
		fmt.Fprintln(r.errOut, "Conversation cleared.")
		return true

	case "/dismiss", "/d":
		r.ctrl.DismissError()
		return true

	case "/exit", "/quit", "/q":
		fmt.Fprintln(r.errOut, "Goodbye!")
		return false

	default:
		fmt.Fprintf(r.errOut, "Unknown command: %s (type '/help' for available commands)\n", command)
		return true
	}
}

func init() {
	rootCmd.AddCommand(replCmd)
}
