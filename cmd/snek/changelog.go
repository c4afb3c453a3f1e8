package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/snek/internal/tui"
	"github.com/spf13/cobra"
)

var changelogFlags struct {
	raw bool
}

var changelogCmd = &cobra.Command{
	Use:   "changelog",
	Short: "Show the commits that the next release would contain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		tag, commits, err := s.releaser().Pending(cmd.Context())
		if err != nil {
			return err
		}

		md := changelogMarkdown(tag, commits)
		out := cmd.OutOrStdout()
		if changelogFlags.raw {
			fmt.Fprint(out, md)
			return nil
		}
		fmt.Fprintln(out, tui.RenderMarkdown(md, 0, isTerminal(os.Stdout)))
		return nil
	},
}

func init() {
	changelogCmd.Flags().BoolVar(&changelogFlags.raw, "raw", false, "Print the markdown source")
}

// changelogMarkdown lists commits (git log --oneline lines) under a heading
// naming the last release.
func changelogMarkdown(tag string, commits []string) string {
	var b strings.Builder
	b.WriteString("# Unreleased\n\n")
	if tag != "" {
		fmt.Fprintf(&b, "Changes since %s:\n\n", tag)
	} else {
		b.WriteString("No release has been tagged yet.\n\n")
	}
	if len(commits) == 0 {
		b.WriteString("Nothing to release.\n")
		return b.String()
	}
	for _, c := range commits {
		hash, subject, ok := strings.Cut(c, " ")
		if !ok {
			fmt.Fprintf(&b, "- %s\n", c)
			continue
		}
		fmt.Fprintf(&b, "- `%s` %s\n", hash, subject)
	}
	return b.String()
}
