package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/andyballingall/sweep/internal/rule"
)

// printRules writes the rule table in evaluation order. It touches nothing
// on the filesystem.
func printRules(w io.Writer, rules []*rule.Rule) error {
	for i, rl := range rules {
		if i > 0 {
			fmt.Fprintln(w)
		}
		s := rl.Spec()
		fmt.Fprintf(w, "%s\n", s.Name)
		printList(w, "files", s.Files)
		printList(w, "dirs", s.Dirs)
		printList(w, "verify", s.Verify)
		printList(w, "clean", s.Clean)
	}
	return nil
}

func printList(w io.Writer, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "  %-7s %s\n", label+":", strings.Join(items, ", "))
}
