// Package view renders items and statistics for the terminal.
package view

import (
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/lipgloss"

	"github.com/yangwenmai/leetreview/internal/categorize"
	"github.com/yangwenmai/leetreview/internal/model"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	nameStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	tagStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("111"))
	badgeStyle  = lipgloss.NewStyle().Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Width(16)

	difficultyColors = map[model.Difficulty]lipgloss.Color{
		model.Easy:   lipgloss.Color("34"),
		model.Medium: lipgloss.Color("178"),
		model.Hard:   lipgloss.Color("160"),
	}
)

// Badge renders a difficulty label in its color.
func Badge(d model.Difficulty) string {
	return badgeStyle.Foreground(difficultyColors[d]).Render(d.String())
}

// Item renders one item as a two-line block.
func Item(it model.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n", nameStyle.Render(it.Name), Badge(it.Difficulty), mutedStyle.Render("["+it.ID+"]"))
	fmt.Fprintf(&b, "  %s", mutedStyle.Render(fmt.Sprintf("reviewed %d times · last %s · next %s",
		it.ReviewCount, it.LastReviewDate, it.NextReviewDate)))
	if len(it.Tags) > 0 {
		fmt.Fprintf(&b, " · %s", tagStyle.Render(strings.Join(it.Tags, ", ")))
	}
	if it.URL != "" {
		fmt.Fprintf(&b, "\n  %s", mutedStyle.Render(it.URL))
	}
	return b.String()
}

// Section writes a titled list of items, or empty when there are none.
func Section(w io.Writer, title string, items []model.Item, empty string) {
	fmt.Fprintf(w, "%s (%d)\n", headerStyle.Render(title), len(items))
	if len(items) == 0 {
		fmt.Fprintf(w, "  %s\n\n", mutedStyle.Render(empty))
		return
	}
	for _, it := range items {
		fmt.Fprintln(w, Item(it))
	}
	fmt.Fprintln(w)
}

// Dashboard writes the due and not-due lists.
func Dashboard(w io.Writer, due, notDue []model.Item) {
	Section(w, "Review today", due, "Nothing to review today.")
	Section(w, "Already finished", notDue, "No finished problems yet.")
}

// Catalog writes catalog search results.
func Catalog(w io.Writer, entries []model.CatalogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No matching problems."))
		return
	}
	for _, e := range entries {
		line := fmt.Sprintf("%-6s %s %s", e.ID, nameStyle.Render(e.Name), Badge(e.Difficulty))
		if len(e.Tags) > 0 {
			line += " " + tagStyle.Render(strings.Join(e.Tags, ", "))
		}
		fmt.Fprintln(w, line)
	}
}

// Schedule writes an item's planned review dates, marking the ones already past.
func Schedule(w io.Writer, it model.Item, today civil.Date) {
	fmt.Fprintf(w, "%s\n", headerStyle.Render("Schedule for "+it.Name))
	if len(it.ReviewSchedule) == 0 {
		fmt.Fprintf(w, "  %s\n", mutedStyle.Render("No schedule recorded."))
		return
	}
	for i, d := range it.ReviewSchedule {
		mark := " "
		if !d.After(today) {
			mark = "✓"
		}
		fmt.Fprintf(w, "  %s %d. %s\n", mark, i, d)
	}
}

// Stats writes the summary block followed by the active days of the window.
func Stats(w io.Writer, s categorize.Summary, days []categorize.DayActivity) {
	fmt.Fprintln(w, headerStyle.Render("Progress"))
	fmt.Fprintf(w, "  Total problems   %d\n", s.Total)
	for _, d := range model.Difficulties {
		fmt.Fprintf(w, "  %s %d\n", labelStyle.Render(Badge(d)), s.ByDifficulty[d])
	}
	fmt.Fprintf(w, "  Active days      %d/%d (%d%%)\n\n", s.ActiveDays, s.WindowDays, s.CompletionRate)

	fmt.Fprintln(w, headerStyle.Render("Daily activity"))
	active := false
	for _, day := range days {
		if !day.Active() {
			continue
		}
		active = true
		fmt.Fprintf(w, "  %s  new %d · reviewed %d\n", day.Date, len(day.New), len(day.Reviewed))
		for _, it := range day.New {
			fmt.Fprintf(w, "    + %s\n", it.Name)
		}
		for _, it := range day.Reviewed {
			fmt.Fprintf(w, "    ↻ %s\n", it.Name)
		}
	}
	if !active {
		fmt.Fprintf(w, "  %s\n", mutedStyle.Render("No activity in this window."))
	}
}
