// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package linkframe

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Sun-Lab-NBB/ataraxis-transport-layer-mc/pkg/transport"
)

// monitorLogEntry is a single line in the rolling event log.
type monitorLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// monitorModel is the bubbletea model backing `linkframe monitor`, a
// payload-schema-agnostic packet dashboard: it shows running
// transport.Statistics, the decode status of the most recent ReceiveData
// call, and a hex dump of the last successfully decoded payload.
type monitorModel struct {
	connInfo string
	stats    *transport.Statistics
	log      []monitorLogEntry
	maxLog   int

	lastPayload []byte
	lastStatus  transport.Status

	width, height int
	quitting      bool
}

type tickMsg time.Time

// packetMsg reports the outcome of one ReceiveData call.
type packetMsg struct {
	ok      bool
	status  transport.Status
	payload []byte
	err     error
}

func newMonitorModel(connInfo string) monitorModel {
	return monitorModel{
		connInfo: connInfo,
		stats:    transport.NewStatistics(),
		log:      make([]monitorLogEntry, 0),
		maxLog:   200,
		width:    80,
		height:   24,
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(tickCmd(), tea.EnterAltScreen)
}

func (m *monitorModel) addLogEntry(message string, isError bool) {
	m.log = append(m.log, monitorLogEntry{timestamp: time.Now(), message: message, isError: isError})
	if len(m.log) > m.maxLog {
		m.log = m.log[len(m.log)-m.maxLog:]
	}
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.stats.CalculateRates()
		return m, tickCmd()

	case packetMsg:
		if msg.err != nil {
			m.addLogEntry(fmt.Sprintf("STREAM ERROR: %v", msg.err), true)
			return m, nil
		}
		m.lastStatus = msg.status
		m.stats.Update(msg.ok, msg.status)
		if msg.ok {
			m.lastPayload = msg.payload
			m.addLogEntry(fmt.Sprintf("packet received (%d bytes)", len(msg.payload)), false)
		} else if msg.status != transport.StatusNoBytesToParseFromBuffer {
			m.addLogEntry(fmt.Sprintf("decode failed: %s", msg.status), true)
		}
	}

	return m, nil
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Background(lipgloss.Color("235")).Padding(0, 1)
	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statsLabelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	statsValueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	boxStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("LINKFRAME MONITOR"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Press 'q' to quit", m.connInfo)))
	s.WriteString("\n\n")

	m.stats.CalculateRates()
	var validPercent float64
	if m.stats.TotalPackets > 0 {
		validPercent = float64(m.stats.ValidPackets) * 100.0 / float64(m.stats.TotalPackets)
	}

	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		statsLabelStyle.Render("Total:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.TotalPackets)),
		statsLabelStyle.Render("Valid:"), statsValueStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.ValidPackets, validPercent)),
		statsLabelStyle.Render("Last status:"), statsValueStyle.Render(m.lastStatus.String()),
	))
	if m.stats.CRCErrors > 0 || m.stats.ShapeErrors > 0 || m.stats.TimeoutErrors > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
			statsLabelStyle.Render("CRC errors:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.CRCErrors)),
			statsLabelStyle.Render("Shape errors:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.ShapeErrors)),
			statsLabelStyle.Render("Timeouts:"), warningStyle.Render(fmt.Sprintf("%d", m.stats.TimeoutErrors)),
		))
	}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s",
		statsLabelStyle.Render("Packet rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f pkts/s", m.stats.PacketRate)),
		statsLabelStyle.Render("Error rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate)),
	))

	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	if m.lastPayload != nil {
		s.WriteString(statsLabelStyle.Render("Last payload:"))
		s.WriteString("\n")
		s.WriteString(boxStyle.Render(fmt.Sprintf("% X", m.lastPayload)))
		s.WriteString("\n\n")
	}

	s.WriteString(statsLabelStyle.Render("Recent events:"))
	s.WriteString("\n")

	logHeight := m.height - 15
	if logHeight < 5 {
		logHeight = 5
	}

	logContent := strings.Builder{}
	startIdx := len(m.log) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}
	if len(m.log) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.log); i++ {
			entry := m.log[i]
			timestamp := entry.timestamp.Format("15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n", headerStyle.Render(timestamp), errorStyle.Render("x "+entry.message)))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n", headerStyle.Render(timestamp), statsValueStyle.Render("- "+entry.message)))
			}
		}
	}

	width := m.width - 4
	if width < 10 {
		width = 10
	}
	s.WriteString(boxStyle.Width(width).Render(logContent.String()))

	return s.String()
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live TUI dashboard of packet statistics and decode errors",
	Long: `Opens a bubbletea dashboard showing running transport.Statistics, the
decode status of the most recent packet, and a hex dump of the last
received payload.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func pollTransport(t *transport.Transport, out chan<- tea.Msg) {
	for {
		ok, err := t.ReceiveData()
		if err != nil {
			out <- packetMsg{err: err}
			return
		}
		var payload []byte
		if ok {
			payload = make([]byte, t.RxPayloadSize())
			t.ReadBytes(payload, 0)
		}
		out <- packetMsg{ok: ok, status: t.Status, payload: payload}
		if !ok {
			time.Sleep(time.Millisecond)
		}
	}
}

func runMonitor(cmd *cobra.Command, args []string) error {
	t, info, err := openTransport()
	if err != nil {
		return err
	}
	defer t.Close()

	msgCh := make(chan tea.Msg)
	go pollTransport(t, msgCh)

	p := tea.NewProgram(newMonitorModel(info), tea.WithAltScreen())
	go func() {
		for msg := range msgCh {
			p.Send(msg)
		}
	}()

	_, err = p.Run()
	return err
}
