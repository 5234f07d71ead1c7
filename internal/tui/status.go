// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package tui renders the terminal views of the sync daemon.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/session-foundation/config-sync/models"
)

// TargetStatus is one row of the status view.
type TargetStatus struct {
	Target     models.ConfigTarget
	NeedsPush  bool
	LastSynced time.Time
	LastError  error
}

const errorColumn = 4

// RenderStatus renders the build info followed by a table of every config
// target, grouped by swarm in the order given.
func RenderStatus(info models.AppBuildInfo, rows []TargetStatus, now time.Time) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("config-sync status"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("version %s, commit %s", info.BuildVersion(), info.BuildCommit())))
	b.WriteString("\n\n")

	if len(rows) == 0 {
		b.WriteString("no config targets loaded")
		return appStyle.Render(b.String())
	}

	pending := make(map[models.SwarmPublicKey]int)
	cells := make([][]string, len(rows))
	for i, r := range rows {
		if r.NeedsPush {
			pending[r.Target.Owner]++
		}
		cells[i] = []string{
			r.Target.Owner.Short(),
			r.Target.Kind.String(),
			pendingLabel(r.NeedsPush),
			syncedLabel(r.LastSynced, now),
			humanizeError(r.LastError),
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("SWARM", "KIND", "PENDING", "LAST SYNC", "ERROR").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == errorColumn:
				return errorStyle.Padding(0, 1)
			}
			return cellStyle
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	for _, swarm := range swarmOrder(rows) {
		b.WriteString(fmt.Sprintf("%s: %d pending change(s)\n", swarm.Short(), pending[swarm]))
	}
	return appStyle.Render(b.String())
}

func swarmOrder(rows []TargetStatus) []models.SwarmPublicKey {
	var out []models.SwarmPublicKey
	seen := make(map[models.SwarmPublicKey]bool)
	for _, r := range rows {
		if !seen[r.Target.Owner] {
			seen[r.Target.Owner] = true
			out = append(out, r.Target.Owner)
		}
	}
	return out
}

func pendingLabel(needsPush bool) string {
	if needsPush {
		return "yes"
	}
	return "no"
}

func syncedLabel(at, now time.Time) string {
	if at.IsZero() {
		return "never"
	}
	return now.Sub(at).Truncate(time.Second).String() + " ago"
}
