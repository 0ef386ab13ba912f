/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/longkey1/bookchat/internal/bookchat"
	"github.com/longkey1/bookchat/internal/bookchat/gateway"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	useEditor   bool
	showSources bool
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the book assistant a single question",
	Long: `Send one question to the book assistant and print the answer.
This command performs a single call to the answer service; nothing is kept afterwards.

For a conversation, use 'bookchat widget' or 'bookchat repl' instead.

If no question is provided as an argument, it reads from stdin.
If --editor flag is set, it opens the default editor (from EDITOR environment variable) to compose the question.`,
	Example: `  bookchat ask "What is Physical AI?"
  echo "Explain bipedal walking" | bookchat ask
  bookchat ask --sources "What sensors does a humanoid use?"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, ctrl, err := mountWidget()
		if err != nil {
			return err
		}

		// Get question from arguments, editor, or stdin
		var question string
		if useEditor {
			question, err = getQuestionFromEditor()
			if err != nil {
				return fmt.Errorf("getting question from editor: %w", err)
			}
		} else if len(args) > 0 {
			question = strings.Join(args, " ")
		} else {
			question, err = readAll(cmd.Context(), cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading from stdin: %w", err)
			}
		}

		msg, err := ctrl.Ask(cmd.Context(), question)
		if err != nil {
			if errors.Is(err, bookchat.ErrEmptyQuestion) {
				return fmt.Errorf("no question given")
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", gateway.UserMessage(err))
			return fmt.Errorf("ask failed: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, msg.Content)
		if showSources && len(msg.Sources) > 0 {
			fmt.Fprint(out, "\n---\nSources:\n")
			fmt.Fprintln(out, formatSources(msg.Sources))
		}
		return nil
	},
}

// readAll reads in to EOF, giving up when ctx is cancelled
func readAll(ctx context.Context, in io.Reader) (string, error) {
	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := io.ReadAll(in)
		done <- result{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return string(r.data), r.err
	}
}

// formatSources formats the passages the answer was built from as a numbered list
func formatSources(sources []bookchat.Source) string {
	lines := make([]string, 0, len(sources))
	for i, src := range sources {
		lines = append(lines, fmt.Sprintf("[%d] %s (score %.2f)", i+1, src.Label(), src.Score))
	}
	return strings.Join(lines, "\n")
}

// getQuestionFromEditor opens the default editor and returns the edited question
func getQuestionFromEditor() (string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		return "", fmt.Errorf("EDITOR environment variable is not set")
	}

	tmpFile, err := os.CreateTemp("", "bookchat-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpFile.Close()
	defer os.Remove(tmpFile.Name())

	cmd := exec.Command(editor, tmpFile.Name())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to open editor: %w", err)
	}

	content, err := os.ReadFile(tmpFile.Name())
	if err != nil {
		return "", fmt.Errorf("failed to read edited content: %w", err)
	}

	return strings.TrimSpace(string(content)), nil
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().BoolVarP(&useEditor, "editor", "e", false, "Use default editor (from EDITOR environment variable) to compose the question")
	askCmd.Flags().BoolVar(&showSources, "sources", false, "Print the book passages the answer is based on")
}
