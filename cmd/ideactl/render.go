package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/yamoridev/ideaboard"
	"github.com/yamoridev/ideaboard/store"
)

func renderList(out io.Writer, views []store.IdeaView) {
	if len(views) == 0 {
		fmt.Fprintln(out, "No ideas yet.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTITLE\tDOMAIN\tAUTHOR\tCREATED\tYOURS")
	for _, v := range views {
		domain := "-"
		if v.Domain != nil {
			domain = *v.Domain
		}
		yours := ""
		if v.IsOwner {
			yours = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID,
			v.StatusLabel,
			truncate(v.Title, 40),
			domain,
			v.AuthorName,
			v.CreatedAt.Local().Format(time.DateTime),
			yours,
		)
	}
	w.Flush()
}

func renderDetail(out io.Writer, v store.IdeaView) {
	fmt.Fprintln(out, v.Title)
	fmt.Fprintln(out, strings.Repeat("=", len(v.Title)))
	fmt.Fprintln(out, "Status: ", v.StatusLabel)
	if v.Domain != nil {
		fmt.Fprintln(out, "Domain: ", *v.Domain)
	}
	fmt.Fprintln(out, "Author: ", v.AuthorName)
	fmt.Fprintln(out, "Created:", v.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintln(out, "Updated:", v.UpdatedAt.Local().Format(time.DateTime))
	fmt.Fprintln(out)
	fmt.Fprintln(out, v.Description)
	if v.IsOwner {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "You own this idea: edit, status and delete are available.")
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// consoleObserver re-renders the board on every replacement and reports
// operation outcomes and sync transitions.
type consoleObserver struct {
	mu       sync.Mutex
	out      io.Writer
	identity *ideaboard.Identity
}

func (o *consoleObserver) IdeasReplaced(ideas []ideaboard.Idea) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintf(o.out, "\n--- %d idea(s) @ %s ---\n", len(ideas), time.Now().Format(time.TimeOnly))
	renderList(o.out, store.Project(ideas, o.identity))
}

func (o *consoleObserver) OperationSucceeded(op store.OpKind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintf(o.out, "%s succeeded\n", op)
}

func (o *consoleObserver) OperationFailed(op store.OpKind, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintf(o.out, "%s failed: %v\n", op, err)
}

func (o *consoleObserver) SyncStateChanged(state store.SyncState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintf(o.out, "sync state: %s\n", state)
}
