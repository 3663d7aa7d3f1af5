package theme

import "github.com/charmbracelet/lipgloss"

// Styles describes the Lip Gloss styles shared across the UI.
type Styles struct {
	Title         *lipgloss.Style
	Subtitle      *lipgloss.Style
	Waiting       *lipgloss.Style
	Connecting    *lipgloss.Style
	QRCode        *lipgloss.Style
	Label         *lipgloss.Style
	FocusedLabel  *lipgloss.Style
	Field         *lipgloss.Style
	FocusedField  *lipgloss.Style
	Placeholder   *lipgloss.Style
	Attachment    *lipgloss.Style
	Button        *lipgloss.Style
	ButtonFocused *lipgloss.Style
	ButtonBusy    *lipgloss.Style
	Error         *lipgloss.Style
	Success       *lipgloss.Style
	Footer        *lipgloss.Style

	PickerTitle        *lipgloss.Style
	PickerItem         *lipgloss.Style
	PickerDir          *lipgloss.Style
	PickerSelectedItem *lipgloss.Style
	PickerFilter       *lipgloss.Style
	PickerEmpty        *lipgloss.Style
}

var defaultStyles = Styles{
	Title: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	),
	Subtitle: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	),
	Waiting: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Italic(true),
	),
	Connecting: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	),
	QRCode: ptr(
		lipgloss.NewStyle().Padding(0, 1),
	),
	Label: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	),
	FocusedLabel: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	),
	Field: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	FocusedField: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
	),
	Placeholder: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	),
	Attachment: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
	),
	Button: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")).Background(lipgloss.Color("238")).Padding(0, 2),
	),
	ButtonFocused: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("42")).Bold(true).Padding(0, 2),
	),
	ButtonBusy: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Background(lipgloss.Color("236")).Padding(0, 2),
	),
	Error: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	),
	Success: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	),
	Footer: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	),
	PickerTitle: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true),
	),
	PickerItem: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	PickerDir: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
	),
	PickerSelectedItem: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Bold(true),
	),
	PickerFilter: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true),
	),
	PickerEmpty: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
	),
}

// Default exposes the standard style set.
func Default() *Styles {
	return &defaultStyles
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}
