package tui

import (
	"fmt"
	"strings"

	"github.com/comfyrun/comfyrun/internal/pod"
)

func renderView(m Model) string {
	var b strings.Builder

	renderHeader(&b, m)

	if !m.Fetched {
		b.WriteString(dimStyle.Render(currentSpinner(m.SpinnerFrame) + " connecting..."))
		b.WriteString("\n")
		return b.String()
	}

	if len(m.Pods.Pods) == 0 {
		b.WriteString(dimStyle.Render("No pods. Create one with: comfyrun pods create"))
		b.WriteString("\n")
	} else {
		renderPodTable(&b, m)
	}

	renderSummary(&b, m)
	renderFooter(&b, m)

	return b.String()
}

func renderHeader(b *strings.Builder, m Model) {
	b.WriteString(titleStyle.Render("comfyrun pods"))
	if m.Err != nil {
		b.WriteString(" " + failedStyle.Render(fmt.Sprintf("Error: %v", m.Err)))
	}
	b.WriteString("\n\n")
}

func renderPodTable(b *strings.Builder, m Model) {
	fmt.Fprintf(b, "%s\n", headerStyle.Render(fmt.Sprintf(
		"%-22s %-14s %-14s %-22s %10s %10s", "NAME", "GPU", "STATUS", "PROGRESS", "COST", "UPTIME")))

	for _, v := range m.Pods.Pods {
		name := truncate(v.Name, 22)
		gpuName := truncate(shortGPU(v.GPUID), 14)
		status := styledStatus(v.Status, m.SpinnerFrame)
		progress := renderProgressBar(v.SetupProgress, 14)
		costText := costStyle.Render(fmt.Sprintf("$%.2f", v.CostSoFar))

		fmt.Fprintf(b, "%-22s %-14s %s %s %s %10s\n",
			name, gpuName, status, progress, costText, v.Uptime)
	}
}

func styledStatus(status string, frame int) string {
	padded := fmt.Sprintf("%-14s", status)
	switch pod.Status(status) {
	case pod.StatusRunning:
		return runningStyle.Render(padded)
	case pod.StatusInitializing:
		return initializingStyle.Render(currentSpinner(frame) + " " + fmt.Sprintf("%-12s", status))
	case pod.StatusFailed:
		return failedStyle.Render(padded)
	default:
		return dimStyle.Render(padded)
	}
}

func renderProgressBar(percent float64, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100 * float64(width))
	bar := progressBarFull.Render(strings.Repeat("#", filled)) +
		progressBarEmpty.Render(strings.Repeat("-", width-filled))
	return fmt.Sprintf("[%s] %5.1f%%", bar, percent)
}

func renderSummary(b *strings.Builder, m Model) {
	if m.Pods.Summary == nil {
		return
	}
	s := m.Pods.Summary
	b.WriteString("\n")
	fmt.Fprintf(b, "%s %s across %d pod(s)\n",
		headerStyle.Render("Total cost:"),
		costStyle.Render(fmt.Sprintf("$%.2f", s.TotalCost)),
		s.TotalPods)
}

func renderFooter(b *strings.Builder, m Model) {
	b.WriteString(footerStyle.Render("q: quit  |  refreshes every 2s"))
	b.WriteString("\n")
}

// shortGPU strips the vendor prefix for table display.
func shortGPU(id string) string {
	out := strings.TrimPrefix(id, "NVIDIA GeForce ")
	return strings.TrimPrefix(out, "NVIDIA ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
