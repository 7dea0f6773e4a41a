/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/carverauto/companion/pkg/agent"
	"github.com/carverauto/companion/pkg/api"
	"github.com/carverauto/companion/pkg/models"
)

// Dracula theme colors.
const (
	draculaForeground = "#F8F8F2"
	draculaCyan       = "#8BE9FD"
	draculaGreen      = "#50FA7B"
	draculaOrange     = "#FFB86C"
	draculaPurple     = "#BD93F9"
	draculaRed        = "#FF5555"
	draculaComment    = "#6272A4"
)

const cellPadding = 1

func newLogStyles() logStyles {
	return logStyles{
		info:    lipgloss.NewStyle().Foreground(lipgloss.Color(draculaCyan)),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color(draculaGreen)),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color(draculaOrange)),
		error:   lipgloss.NewStyle().Foreground(lipgloss.Color(draculaRed)).Bold(true),
	}
}

func newTableStyles() tableStyles {
	return tableStyles{
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color(draculaPurple)).Bold(true).Padding(0, cellPadding),
		cell:    lipgloss.NewStyle().Foreground(lipgloss.Color(draculaForeground)).Padding(0, cellPadding),
		current: lipgloss.NewStyle().Foreground(lipgloss.Color(draculaGreen)).Bold(true).Padding(0, cellPadding),
		border:  lipgloss.NewStyle().Foreground(lipgloss.Color(draculaComment)),
	}
}

// printer writes command results either styled for a terminal or as JSON.
type printer struct {
	out    io.Writer
	json   bool
	log    logStyles
	tables tableStyles
}

func newPrinter(out io.Writer, output string) *printer {
	return &printer{
		out:    out,
		json:   output == outputJSON,
		log:    newLogStyles(),
		tables: newTableStyles(),
	}
}

func (p *printer) emit(v interface{}) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

// success prints msg, or v as JSON in JSON mode.
func (p *printer) success(msg string, v interface{}) error {
	if p.json {
		return p.emit(v)
	}

	_, err := fmt.Fprintln(p.out, p.log.success.Render(msg))

	return err
}

func (p *printer) warn(msg string) {
	if !p.json {
		_, _ = fmt.Fprintln(p.out, p.log.warning.Render(msg))
	}
}

func (p *printer) devices(list *api.DeviceList) error {
	if p.json {
		return p.emit(list)
	}

	if len(list.Devices) == 0 {
		p.warn("No devices")

		return nil
	}

	rows := make([][]string, 0, len(list.Devices))
	for _, d := range list.Devices {
		rows = append(rows, []string{
			strconv.Itoa(d.Index),
			d.Name,
			d.Code,
			d.AppName,
			yesNo(d.WatchSupported),
			yesNo(d.IsInstalled),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.tables.border).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return p.tables.header
			case row >= 0 && row < len(list.Devices) && list.Devices[row].Current:
				return p.tables.current
			default:
				return p.tables.cell
			}
		}).
		Headers("#", "NAME", "CODE", "APP", "WATCH", "INSTALLED").
		Rows(rows...)

	_, err := fmt.Fprintln(p.out, t.String())

	return err
}

func (p *printer) device(d *api.DeviceView) error {
	if p.json {
		return p.emit(d)
	}

	return p.devices(&api.DeviceList{Devices: []api.DeviceView{*d}, Current: -1})
}

func (p *printer) status(s *models.Status) error {
	if p.json {
		return p.emit(s)
	}

	connected := p.log.error.Render("disconnected")
	if s.Connected {
		connected = p.log.success.Render("connected")
	}

	switchState := "off"
	if s.SwitchOn {
		switchState = "on"
	}

	_, err := fmt.Fprintf(p.out, "%s  switch %s  slider %d\n", connected, p.log.info.Render(switchState), s.SliderValue)

	return err
}

func (p *printer) sessions(sessions []agent.Session) error {
	if p.json {
		return p.emit(sessions)
	}

	if len(sessions) == 0 {
		p.warn("No open sessions")

		return nil
	}

	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			s.DeviceCode,
			s.ActionName,
			s.Method,
			strconv.Itoa(s.Received),
			time.Since(s.StartedAt).Round(time.Millisecond).String(),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.tables.border).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.tables.header
			}

			return p.tables.cell
		}).
		Headers("DEVICE", "ACTION", "METHOD", "BYTES", "AGE").
		Rows(rows...)

	_, err := fmt.Fprintln(p.out, t.String())

	return err
}

func (p *printer) stats(s *api.StatsResponse) error {
	if p.json {
		return p.emit(s)
	}

	_, err := fmt.Fprintf(p.out, "%s of %s devices installed\n",
		p.log.success.Render(strconv.Itoa(s.Installed)), p.log.info.Render(strconv.Itoa(s.Total)))

	return err
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}
