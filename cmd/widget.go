/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/longkey1/bookchat/internal/ui"
	"github.com/spf13/cobra"
)

var (
	startClosed   bool
	markdownStyle string
	noMarkdown    bool
)

// widgetCmd represents the widget command
var widgetCmd = &cobra.Command{
	Use:   "widget",
	Short: "Open the chat widget",
	Long: `Open the full-screen chat widget.

Keys:
  enter    send the question
  esc      dismiss the error banner
  ctrl+l   clear the conversation (or a failed first question)
  ctrl+o   open or close the panel
  ctrl+c   quit

Logs are discarded while the widget owns the terminal unless log_file is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The widget owns the terminal; console logs would corrupt the screen.
		if err := setupLogging(nil); err != nil {
			return err
		}

		cfg, ctrl, err := mountWidget()
		if err != nil {
			return err
		}

		style := markdownStyle
		if noMarkdown {
			style = ""
		}

		m := ui.New(cmd.Context(), ctrl,
			ui.WithOpen(!startClosed),
			ui.WithSuggestions(cfg.Suggestions),
			ui.WithMarkdown(style),
		)
		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running widget: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(widgetCmd)

	widgetCmd.Flags().BoolVar(&startClosed, "closed", false, "Start with the panel closed (toggle with ctrl+o)")
	widgetCmd.Flags().StringVar(&markdownStyle, "style", "dark", "Markdown style for answers: dark, light, notty")
	widgetCmd.Flags().BoolVar(&noMarkdown, "no-markdown", false, "Show answers as plain text")
}
