package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ProviderOption is one selectable cloud provider.
type ProviderOption struct {
	Label       string
	Value       string
	Description string
}

// DefaultProviders returns the supported cloud providers.
func DefaultProviders() []ProviderOption {
	return []ProviderOption{
		{Label: "AWS", Value: "aws", Description: "Amazon RDS (IAM or static token auth)"},
		{Label: "Azure", Value: "azure", Description: "Azure Database (Entra ID or static token auth)"},
		{Label: "Google", Value: "google", Description: "Cloud SQL (connector-based endpoint dialing)"},
	}
}

// ProjectSetup holds the result of the setup wizard.
type ProjectSetup struct {
	Cancelled  bool
	Provider   string
	Region     string
	APIBaseURL string
}

type setupStep int

const (
	stepProvider setupStep = iota
	stepRegion
	stepAPIURL
	stepComplete
)

type wizardKeys struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Back   key.Binding
	Quit   key.Binding
}

func defaultWizardKeys() wizardKeys {
	return wizardKeys{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// SetupWizard guides users through project scaffolding: provider,
// region, and management API URL.
type SetupWizard struct {
	step setupStep

	providers   []ProviderOption
	providerIdx int

	region textinput.Model
	apiURL textinput.Model

	result ProjectSetup
	keys   wizardKeys

	width  int
	height int
}

// NewSetupWizard creates a setup wizard over the given providers.
func NewSetupWizard(providers []ProviderOption) SetupWizard {
	region := textinput.New()
	region.Placeholder = "us-west-2"
	region.CharLimit = 64
	region.Width = 40

	apiURL := textinput.New()
	apiURL.Placeholder = "https://migration.example.com/v1"
	apiURL.CharLimit = 256
	apiURL.Width = 40

	return SetupWizard{
		step:      stepProvider,
		providers: providers,
		region:    region,
		apiURL:    apiURL,
		keys:      defaultWizardKeys(),
		width:     80,
		height:    24,
	}
}

// Init implements tea.Model.
func (w SetupWizard) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (w SetupWizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
		return w, nil

	case tea.KeyMsg:
		if key.Matches(msg, w.keys.Quit) {
			w.result.Cancelled = true
			return w, tea.Quit
		}

		switch w.step {
		case stepProvider:
			return w.updateProvider(msg)
		case stepRegion:
			return w.updateRegion(msg)
		case stepAPIURL:
			return w.updateAPIURL(msg)
		}
	}

	return w, nil
}

func (w SetupWizard) updateProvider(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, w.keys.Up):
		if w.providerIdx > 0 {
			w.providerIdx--
		}
	case key.Matches(msg, w.keys.Down):
		if w.providerIdx < len(w.providers)-1 {
			w.providerIdx++
		}
	case key.Matches(msg, w.keys.Select):
		w.result.Provider = w.providers[w.providerIdx].Value
		w.step = stepRegion
		return w, w.region.Focus()
	case key.Matches(msg, w.keys.Back):
		w.result.Cancelled = true
		return w, tea.Quit
	}
	return w, nil
}

func (w SetupWizard) updateRegion(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, w.keys.Select):
		w.result.Region = strings.TrimSpace(w.region.Value())
		w.region.Blur()
		w.step = stepAPIURL
		return w, w.apiURL.Focus()
	case key.Matches(msg, w.keys.Back):
		w.region.Blur()
		w.step = stepProvider
		return w, nil
	}

	var cmd tea.Cmd
	w.region, cmd = w.region.Update(msg)
	return w, cmd
}

func (w SetupWizard) updateAPIURL(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, w.keys.Select):
		w.result.APIBaseURL = strings.TrimSpace(w.apiURL.Value())
		w.apiURL.Blur()
		w.step = stepComplete
		return w, tea.Quit
	case key.Matches(msg, w.keys.Back):
		w.apiURL.Blur()
		w.step = stepRegion
		return w, w.region.Focus()
	}

	var cmd tea.Cmd
	w.apiURL, cmd = w.apiURL.Update(msg)
	return w, cmd
}

// View implements tea.Model.
func (w SetupWizard) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("cloudmig init - Project Setup"))
	b.WriteString("\n")

	switch w.step {
	case stepProvider:
		b.WriteString(w.viewProvider())
	case stepRegion:
		b.WriteString(w.viewInput("Cloud region", w.region.View(),
			"The region the management API operates in (leave blank for azure/google defaults)"))
	case stepAPIURL:
		b.WriteString(w.viewInput("Management API base URL", w.apiURL.View(),
			"Servers are described, replicated, and cut over through this API"))
	case stepComplete:
		b.WriteString(w.viewComplete())
	}

	return b.String()
}

func (w SetupWizard) viewProvider() string {
	var b strings.Builder

	b.WriteString(SubtitleStyle.Render("Select a cloud provider"))
	b.WriteString("\n\n")

	for i, p := range w.providers {
		cursor := "  "
		style := UnselectedStyle
		symbol := SymbolUnselected

		if i == w.providerIdx {
			cursor = ""
			style = SelectedStyle
			symbol = SymbolSelected
		}

		b.WriteString(cursor)
		b.WriteString(style.Render(symbol + " " + p.Label))
		b.WriteString("\n")
		b.WriteString(DescriptionStyle.Render(p.Description))
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("\n↑/↓ navigate • enter select • esc quit"))

	return b.String()
}

func (w SetupWizard) viewInput(label, input, hint string) string {
	var b strings.Builder

	b.WriteString(SubtitleStyle.Render(label))
	b.WriteString("\n\n")
	b.WriteString(input)
	b.WriteString("\n")
	b.WriteString(DescriptionStyle.Render(hint))
	b.WriteString(HelpStyle.Render("\nenter continue • esc back"))

	return b.String()
}

func (w SetupWizard) viewComplete() string {
	var b strings.Builder

	b.WriteString(SuccessStyle.Render(SymbolCheck + " Ready to create project"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Provider: %s\n", w.result.Provider))
	if w.result.Region != "" {
		b.WriteString(fmt.Sprintf("Region:   %s\n", w.result.Region))
	}
	if w.result.APIBaseURL != "" {
		b.WriteString(fmt.Sprintf("API URL:  %s\n", w.result.APIBaseURL))
	}

	return b.String()
}

// Result returns the wizard result.
func (w SetupWizard) Result() ProjectSetup {
	return w.result
}

// RunSetupWizard executes the setup wizard in the terminal.
func RunSetupWizard() (ProjectSetup, error) {
	providers := DefaultProviders()

	wizard := NewSetupWizard(providers)
	p := tea.NewProgram(wizard, tea.WithAltScreen())

	model, err := p.Run()
	if err != nil {
		return ProjectSetup{Cancelled: true}, err
	}

	return model.(SetupWizard).Result(), nil
}
