package ui

import (
	"strings"

	"github.com/atomicstack/walink/internal/format/table"
	"github.com/atomicstack/walink/internal/state"
	"github.com/charmbracelet/lipgloss"
	"github.com/mdp/qrterminal/v3"
)

const (
	appTitle        = "walink"
	linkSubtitle    = "Link this terminal to your WhatsApp account"
	scanHint        = "Open WhatsApp > Settings > Linked devices and scan the code"
	waitingText     = "Waiting for QR code…"
	connectingText  = "Connecting…"
	sendLabel       = "Send"
	sendingLabel    = "Sending…"
	noAttachment    = "(none)"
	linkingFooter   = "ctrl+c quit"
	messagingFooter = "tab next  shift+tab prev  enter send  ctrl+o attach  ctrl+x detach  ctrl+c quit"
	pickerFooter    = "↑/↓ move  enter open  type to filter  esc cancel  ctrl+c quit"
)

type styledLine struct {
	text  string
	style *lipgloss.Style
	raw   bool // text carries its own styling
}

// renderQRCode draws code as half-block glyphs, two modules per cell row.
func renderQRCode(code string) string {
	var b strings.Builder
	qrterminal.GenerateHalfBlock(code, qrterminal.L, &b)
	return strings.TrimRight(b.String(), "\n")
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	var lines []styledLine
	footer := messagingFooter
	switch {
	case m.session.Phase().Linking():
		lines = m.linkingLines()
		footer = linkingFooter
	case m.picker != nil:
		lines = m.pickerLines()
		footer = pickerFooter
	default:
		lines = m.messagingLines()
	}
	if m.showFooter {
		lines = append(lines, styledLine{}, styledLine{text: footer, style: styles.Footer})
	}
	lines = limitHeight(lines, m.height, m.width)
	lines = applyWidth(lines, m.width)
	return renderLines(lines)
}

func (m *Model) linkingLines() []styledLine {
	lines := []styledLine{
		{text: appTitle, style: styles.Title},
		{text: linkSubtitle, style: styles.Subtitle},
		{},
	}
	switch m.session.Phase() {
	case state.PhaseAwaitingScan:
		for _, row := range strings.Split(m.renderQR(m.session.QRPayload()), "\n") {
			lines = append(lines, styledLine{text: row, style: styles.QRCode})
		}
		lines = append(lines, styledLine{}, styledLine{text: scanHint, style: styles.Subtitle})
	case state.PhaseAuthenticating:
		lines = append(lines, styledLine{text: m.spinner.View() + " " + render(styles.Connecting, connectingText), raw: true})
	default:
		if !m.session.SetupFailed() {
			lines = append(lines, styledLine{text: m.spinner.View() + " " + render(styles.Waiting, waitingText), raw: true})
		}
	}
	if msg := m.session.Err(); msg != "" {
		lines = append(lines, styledLine{}, styledLine{text: msg, style: styles.Error})
	}
	return lines
}

func (m *Model) messagingLines() []styledLine {
	f := m.form
	lines := []styledLine{
		{text: appTitle, style: styles.Title},
		{},
		m.labelLine("Contact", fieldContact),
		{text: "  " + f.contact.View(), raw: true},
		m.labelLine("Message", fieldBody),
		{text: "  " + f.body.View(), raw: true},
		m.labelLine("Attachment", fieldAttach),
	}
	if label := f.attachmentLabel(); label != "" {
		lines = append(lines, styledLine{text: "  " + label, style: styles.Attachment})
	} else {
		lines = append(lines, styledLine{text: "  " + noAttachment, style: styles.Placeholder})
	}
	lines = append(lines, styledLine{}, m.sendButton())
	if m.errMsg != "" {
		lines = append(lines, styledLine{}, styledLine{text: m.errMsg, style: styles.Error})
	} else if m.infoMsg != "" {
		lines = append(lines, styledLine{}, styledLine{text: m.infoMsg, style: styles.Success})
	}
	return lines
}

func (m *Model) labelLine(label string, target field) styledLine {
	if m.form.focus == target {
		return styledLine{text: "▌ " + label, style: styles.FocusedLabel}
	}
	return styledLine{text: "  " + label, style: styles.Label}
}

func (m *Model) sendButton() styledLine {
	style := styles.Button
	label := sendLabel
	switch {
	case m.busy:
		style = styles.ButtonBusy
		label = sendingLabel
	case m.form.focus == fieldSend:
		style = styles.ButtonFocused
	}
	return styledLine{text: "  " + render(style, label), raw: true}
}

func render(style *lipgloss.Style, text string) string {
	if style == nil {
		return text
	}
	return style.Render(text)
}

func limitHeight(lines []styledLine, height, width int) []styledLine {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	if height == 1 {
		return []styledLine{{text: table.Fit("…", width)}}
	}
	trimmed := make([]styledLine, 0, height)
	trimmed = append(trimmed, lines[:height-1]...)
	trimmed = append(trimmed, styledLine{text: table.Fit("…", width)})
	return trimmed
}

func applyWidth(lines []styledLine, width int) []styledLine {
	if width <= 0 {
		return lines
	}
	result := make([]styledLine, len(lines))
	for i, line := range lines {
		line.text = table.Fit(line.text, width)
		result[i] = line
	}
	return result
}

func renderLines(lines []styledLine) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		if line.raw {
			out[i] = line.text
			continue
		}
		out[i] = render(line.style, line.text)
	}
	return strings.Join(out, "\n")
}
