package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dmitrymomot/storefront/pkg/notifications"
	"github.com/dmitrymomot/storefront/pkg/notifyclient"
)

type styles struct {
	title lipgloss.Style
	dim   lipgloss.Style
	box   lipgloss.Style
}

// newStyles binds styles to w so colors are dropped when w is not a terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title: r.NewStyle().Bold(true),
		dim:   r.NewStyle().Foreground(lipgloss.Color("241")),
		box:   r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

func priorityColor(p notifications.Priority) lipgloss.Color {
	switch p {
	case notifications.PriorityHigh:
		return lipgloss.Color("9")
	case notifications.PriorityLow:
		return lipgloss.Color("8")
	default:
		return lipgloss.Color("12")
	}
}

// toastPresenter draws each toast as a bordered box.
type toastPresenter struct {
	mu  sync.Mutex
	out io.Writer
	st  styles
}

func newToastPresenter(w io.Writer) *toastPresenter {
	return &toastPresenter{out: w, st: newStyles(w)}
}

func (p *toastPresenter) Present(t notifyclient.Toast) {
	var b strings.Builder
	b.WriteString(p.st.title.Render(t.Title))
	if t.Message != "" {
		b.WriteString("\n" + t.Message)
	}
	footer := string(t.Priority)
	if t.Persistent {
		footer += ", stays until dismissed"
	} else if t.Duration > 0 {
		footer += ", hides after " + t.Duration.String()
	}
	b.WriteString("\n" + p.st.dim.Render(footer))

	box := p.st.box.BorderForeground(priorityColor(t.Priority)).Render(b.String())

	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.out, box)
}

func renderList(w io.Writer, resp notifyclient.ListResponse) error {
	st := newStyles(w)
	var b strings.Builder

	if resp.Source == notifyclient.SourceFallback {
		b.WriteString(st.dim.Render("hub unreachable, showing placeholder notifications") + "\n")
	}
	if len(resp.Data.Notifications) == 0 {
		b.WriteString(st.dim.Render("No notifications") + "\n")
	}
	for _, n := range resp.Data.Notifications {
		marker := " "
		title := n.Title
		if !n.Read {
			marker = "*"
			title = st.title.Render(n.Title)
		}
		priority := st.dim.Foreground(priorityColor(n.Priority)).Render(fmt.Sprintf("%-6s", n.Priority))
		fmt.Fprintf(&b, "%s %s  %s  %-8s %s  %s\n",
			marker, n.ID, priority, n.Type, title,
			st.dim.Render(n.CreatedAt.Local().Format(time.DateTime)),
		)
	}
	fmt.Fprintf(&b, "%s\n", st.dim.Render(fmt.Sprintf("page %d, limit %d, %d total", resp.Data.Page, resp.Data.Limit, resp.Data.Total)))

	_, err := io.WriteString(w, b.String())
	return err
}
