package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/kcalabs/kca-projects/internal/domain/project"
)

var nowFunc = time.Now

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7aa2f7"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))
	labelStyle  = lipgloss.NewStyle().Width(14)

	priorityColors = map[project.Priority]lipgloss.Color{
		project.PriorityLow:      lipgloss.Color("#9ece6a"),
		project.PriorityMedium:   lipgloss.Color("#7dcfff"),
		project.PriorityHigh:     lipgloss.Color("#e0af68"),
		project.PriorityCritical: lipgloss.Color("#f7768e"),
	}
)

const (
	idWidth       = 10
	titleWidth    = 32
	statusWidth   = 13
	priorityWidth = 10
	progressWidth = 16
)

func cell(width int, s string) string {
	return lipgloss.NewStyle().Width(width).MaxWidth(width).Render(truncate(s, width-1))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// statusLabel renders a status name in its catalog color.
func statusLabel(s project.ProjectStatus) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render(s.Name)
}

func priorityLabel(p project.Priority) string {
	return lipgloss.NewStyle().Foreground(priorityColors[p]).Render(string(p))
}

func progressBar(progress, width int) string {
	filled := progress * width / 100
	return strings.Repeat("█", filled) + dimStyle.Render(strings.Repeat("░", width-filled))
}

func renderProjects(w io.Writer, projects []project.Project) {
	if len(projects) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no projects match"))
		return
	}
	fmt.Fprintln(w, headerStyle.Render(
		cell(idWidth, "ID")+cell(titleWidth, "TITLE")+cell(statusWidth, "STATUS")+
			cell(priorityWidth, "PRIORITY")+"PROGRESS",
	))
	for _, p := range projects {
		fmt.Fprintln(w,
			cell(idWidth, p.ID[:min(len(p.ID), 8)])+
				cell(titleWidth, p.Title)+
				lipgloss.NewStyle().Width(statusWidth).Render(statusLabel(p.Status))+
				lipgloss.NewStyle().Width(priorityWidth).Render(priorityLabel(p.Priority))+
				progressBar(p.Progress, progressWidth-6)+fmt.Sprintf(" %3d%%", p.Progress),
		)
	}
}

func renderStats(w io.Writer, s project.Stats) {
	row := func(label string, value any) {
		fmt.Fprintln(w, labelStyle.Render(label)+fmt.Sprint(value))
	}
	fmt.Fprintln(w, headerStyle.Render("Collection"))
	row("Total", s.Total)
	row("Completed", s.Completed)
	row("In progress", s.InProgress)
	row("Not started", s.NotStarted)
	row("Avg progress", fmt.Sprintf("%d%%", s.AvgProgress))

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("By status"))
	for _, status := range project.Statuses() {
		row(status.Name, s.ByStatus[status.ID])
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("By priority"))
	for _, p := range project.Priorities() {
		row(string(p), s.ByPriority[p])
	}
}

func renderCatalog(w io.Writer) {
	fmt.Fprintln(w, headerStyle.Render("Statuses"))
	for _, s := range project.Statuses() {
		fmt.Fprintln(w, labelStyle.Render(s.ID)+statusLabel(s)+dimStyle.Render("  "+s.Description))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("Tech stacks"))
	byCategory := map[string][]string{}
	for _, t := range project.TechStacks() {
		byCategory[t.Category] = append(byCategory[t.Category], t.ID)
	}
	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	slices.Sort(categories)
	for _, c := range categories {
		fmt.Fprintln(w, labelStyle.Render(c)+strings.Join(byCategory[c], ", "))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("Priorities"))
	for _, p := range project.Priorities() {
		fmt.Fprintln(w, priorityLabel(p))
	}
}
