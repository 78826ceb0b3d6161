// Command paymentgw-dash is a read-only operator dashboard: it polls a
// running paymentgw proxy's /payments-summary and /internal/stats
// endpoints and renders a live view. It never writes to the proxy and
// does not participate in the request path.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			MarginLeft(2).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2).
			MarginRight(2)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

// summaryBucket and summaryResponse mirror pkg/api's wire shapes without
// importing the api package, so the dashboard only ever depends on the
// proxy's public HTTP contract.
type summaryBucket struct {
	TotalRequests uint64  `json:"totalRequests"`
	TotalAmount   float64 `json:"totalAmount"`
}

type summaryResponse struct {
	Default  summaryBucket `json:"default"`
	Fallback summaryBucket `json:"fallback"`
}

type statsResponse struct {
	QueueDepth      int    `json:"queueDepth"`
	CurrentGateway  string `json:"currentGateway"`
	ProcessorDrops  uint64 `json:"processorDrops"`
	ProcessorRetry  uint64 `json:"processorRetries"`
	DefaultFailing  bool   `json:"defaultFailing"`
	FallbackFailing bool   `json:"fallbackFailing"`
}

type pollResult struct {
	summary summaryResponse
	stats   statsResponse
	err     error
}

type tickMsg time.Time

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type model struct {
	client   *http.Client
	baseURL  string
	interval time.Duration

	summary   summaryResponse
	stats     statsResponse
	lastErr   error
	startTime time.Time
	width     int
}

func initialModel(baseURL string, interval time.Duration) model {
	return model{
		client:    &http.Client{Timeout: 2 * time.Second},
		baseURL:   baseURL,
		interval:  interval,
		startTime: time.Now(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.poll(), tickCmd(m.interval))
}

func (m model) poll() tea.Cmd {
	return func() tea.Msg {
		var result pollResult
		if err := getJSON(m.client, m.baseURL+"/payments-summary", &result.summary); err != nil {
			result.err = err
			return result
		}
		if err := getJSON(m.client, m.baseURL+"/internal/stats", &result.stats); err != nil {
			result.err = err
			return result
		}
		return result
	}
}

func getJSON(client *http.Client, url string, v any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		return m, tea.Batch(m.poll(), tickCmd(m.interval))

	case pollResult:
		m.lastErr = msg.err
		if msg.err == nil {
			m.summary = msg.summary
			m.stats = msg.stats
		}

	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("paymentgw dashboard"))
	s.WriteString("\n\n")

	summaryBox := boxStyle.Render(fmt.Sprintf(
		"Payments Summary\n-----------------\nDefault:  %d reqs, %.2f total\nFallback: %d reqs, %.2f total",
		m.summary.Default.TotalRequests, m.summary.Default.TotalAmount,
		m.summary.Fallback.TotalRequests, m.summary.Fallback.TotalAmount,
	))

	gatewayLine := m.stats.CurrentGateway
	if m.stats.DefaultFailing {
		gatewayLine += " (default failing)"
	}
	if m.stats.FallbackFailing {
		gatewayLine += " (fallback failing)"
	}
	statsBox := boxStyle.Render(fmt.Sprintf(
		"Processor\n---------\nQueue depth: %d\nGateway:     %s\nRetries:     %d\nDrops:       %d",
		m.stats.QueueDepth, gatewayLine, m.stats.ProcessorRetry, m.stats.ProcessorDrops,
	))

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, summaryBox, statsBox))

	if m.lastErr != nil {
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render("poll failed: " + m.lastErr.Error()))
	} else if m.stats.DefaultFailing && m.stats.FallbackFailing {
		s.WriteString("\n\n")
		s.WriteString(warnStyle.Render("both upstream gateways are failing"))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render(fmt.Sprintf("uptime %s - polling every %s - press q to quit",
		time.Since(m.startTime).Round(time.Second), m.interval)))

	return s.String()
}

func main() {
	addr := flag.String("addr", "http://127.0.0.1:8080", "paymentgw base URL")
	interval := flag.Duration("interval", time.Second, "poll interval")
	flag.Parse()

	if v := os.Getenv("PAYMENTGW_ADDR"); v != "" && *addr == "http://127.0.0.1:8080" {
		*addr = v
	}

	p := tea.NewProgram(initialModel(*addr, *interval), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("paymentgw-dash: %v", err)
	}
}
