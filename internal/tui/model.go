// internal/tui/model.go
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/xofe/mintpop/internal/amount"
	"github.com/xofe/mintpop/internal/logger"
	"github.com/xofe/mintpop/internal/mint"
	"github.com/xofe/mintpop/internal/session"
	"github.com/xofe/mintpop/internal/signer"
	"github.com/xofe/mintpop/internal/upstream/jupiter"
)

// screen is the model's current mode.
type screen int

const (
	screenMintEntry screen = iota
	screenLoading
	screenPopup
	screenReceipt
)

const sparklineWidth = 40

// Messages delivered by async commands.
type (
	snapshotMsg struct {
		snap session.Snapshot
		err  error
	}
	quoteMsg struct {
		q         *jupiter.Quote
		outAmount string
		err       error
	}
	buyMsg struct {
		receipt signer.Receipt
		err     error
	}
)

// Model is the interactive popup: paste a mint, see price and chart, type an
// amount, confirm a buy.
type Model struct {
	deps        session.Deps
	slippageBps int
	activity    *logger.RingBuffer
	logger      *zap.Logger
	styles      Styles

	screen screen
	sess   *session.Session

	mintInput   textinput.Model
	amountInput textinput.Model
	spark       *Sparkline

	snap    session.Snapshot
	quote   *jupiter.Quote
	outHint string
	receipt signer.Receipt
	errText string
}

// NewModel creates the popup model. activity, when non-nil, is rendered as
// the recent-activity footer of the popup screen.
func NewModel(deps session.Deps, slippageBps int, activity *logger.RingBuffer, log *zap.Logger) *Model {
	styles := DefaultStyles()

	mintInput := textinput.New()
	mintInput.Placeholder = "paste a token mint address or selected text"
	mintInput.CharLimit = 256
	mintInput.Width = 46
	mintInput.Focus()

	amountInput := textinput.New()
	amountInput.Placeholder = "0.1"
	amountInput.CharLimit = 20
	amountInput.Width = 20

	return &Model{
		deps:        deps,
		slippageBps: slippageBps,
		activity:    activity,
		logger:      log.Named("tui"),
		styles:      styles,
		mintInput:   mintInput,
		amountInput: amountInput,
		spark:       NewSparkline(sparklineWidth, styles.Sparkline),
	}
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case snapshotMsg:
		if msg.err != nil {
			m.logger.Warn("snapshot load failed", zap.Error(msg.err))
			m.screen = screenMintEntry
			m.errText = msg.err.Error()
			return m, nil
		}
		m.snap = msg.snap
		m.spark.SetData(msg.snap.Series.Prices())
		m.screen = screenPopup
		m.errText = ""
		m.amountInput.Focus()
		return m, textinput.Blink
	case quoteMsg:
		if msg.err != nil {
			// A superseded response is not an error worth showing.
			if msg.err == session.ErrStale || msg.err == session.ErrClosed {
				return m, nil
			}
			m.quote = nil
			m.errText = msg.err.Error()
			return m, nil
		}
		m.quote = msg.q
		m.outHint = msg.outAmount
		m.errText = ""
		return m, nil
	case buyMsg:
		if msg.err != nil {
			m.logger.Warn("buy failed", zap.Error(msg.err))
			m.errText = msg.err.Error()
			return m, nil
		}
		m.receipt = msg.receipt
		m.screen = screenReceipt
		m.errText = ""
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		if m.screen == screenMintEntry || m.screen == screenReceipt {
			return m, tea.Quit
		}
	case "esc":
		return m.closePopup()
	}

	switch m.screen {
	case screenMintEntry:
		if msg.Type == tea.KeyEnter {
			return m.openPopup()
		}
		var cmd tea.Cmd
		m.mintInput, cmd = m.mintInput.Update(msg)
		return m, cmd
	case screenPopup:
		switch msg.Type {
		case tea.KeyEnter:
			return m.requestQuote()
		case tea.KeyCtrlB:
			return m.buy()
		}
		var cmd tea.Cmd
		m.amountInput, cmd = m.amountInput.Update(msg)
		return m, cmd
	case screenReceipt:
		if msg.Type == tea.KeyEnter {
			return m.closePopup()
		}
	}
	return m, nil
}

func (m *Model) openPopup() (tea.Model, tea.Cmd) {
	// Accept either a bare address or arbitrary pasted text containing one,
	// like a selection on a web page.
	address, err := mint.Validate(strings.TrimSpace(m.mintInput.Value()))
	if err != nil {
		found, ok := mint.Find(m.mintInput.Value())
		if !ok {
			m.errText = "no mint address found in input"
			return m, nil
		}
		address = found
	}

	m.sess = session.New(address, m.deps)
	m.screen = screenLoading
	m.errText = ""
	sess := m.sess
	return m, func() tea.Msg {
		snap, err := sess.Load(context.Background())
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m *Model) requestQuote() (tea.Model, tea.Cmd) {
	sess := m.sess
	amountStr := strings.TrimSpace(m.amountInput.Value())
	decimals := m.snap.Token.Decimals
	return m, func() tea.Msg {
		q, err := sess.RequestQuote(context.Background(), amountStr, m.slippageBps)
		if err != nil {
			return quoteMsg{err: err}
		}
		out, err := amount.FromBaseUnits(q.OutAmount, decimals)
		if err != nil {
			out = q.OutAmount
		}
		return quoteMsg{q: q, outAmount: out}
	}
}

func (m *Model) buy() (tea.Model, tea.Cmd) {
	if m.quote == nil {
		m.errText = "fetch a quote first (enter)"
		return m, nil
	}
	sess := m.sess
	amountStr := strings.TrimSpace(m.amountInput.Value())
	return m, func() tea.Msg {
		receipt, err := sess.Buy(context.Background(), amountStr)
		return buyMsg{receipt: receipt, err: err}
	}
}

func (m *Model) closePopup() (tea.Model, tea.Cmd) {
	if m.sess != nil {
		m.sess.Close()
		m.sess = nil
	}
	m.screen = screenMintEntry
	m.quote = nil
	m.outHint = ""
	m.errText = ""
	m.amountInput.SetValue("")
	m.mintInput.SetValue("")
	m.mintInput.Focus()
	return m, textinput.Blink
}

func (m *Model) View() string {
	switch m.screen {
	case screenMintEntry:
		return m.viewMintEntry()
	case screenLoading:
		return m.styles.Container.Render(m.styles.Muted.Render("loading…"))
	case screenPopup:
		return m.viewPopup()
	case screenReceipt:
		return m.viewReceipt()
	}
	return ""
}

func (m *Model) viewMintEntry() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("mintpop") + "\n\n")
	b.WriteString(m.mintInput.View() + "\n")
	if m.errText != "" {
		b.WriteString("\n" + m.styles.Error.Render(m.errText) + "\n")
	}
	b.WriteString("\n" + m.styles.Muted.Render("enter: open popup · q: quit"))
	return m.styles.Container.Render(b.String())
}

func (m *Model) viewPopup() string {
	var b strings.Builder

	symbol := m.snap.Token.Symbol
	if m.snap.Token.Name != "" {
		symbol = fmt.Sprintf("%s (%s)", m.snap.Token.Symbol, m.snap.Token.Name)
	}
	b.WriteString(m.styles.Symbol.Render(symbol) + "\n")
	b.WriteString(m.styles.Price.Render("$"+amount.FormatUSD(m.snap.Price.UsdPrice)) + "\n\n")

	if len(m.snap.Series) > 0 {
		b.WriteString(m.spark.View() + "\n")
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("24h vol $%s", amount.FormatUSD(m.snap.Volume))) + "\n\n")
	} else {
		b.WriteString(m.styles.Muted.Render("no chart (pool not indexed)") + "\n\n")
	}

	b.WriteString("SOL to spend: " + m.amountInput.View() + "\n")
	if m.quote != nil {
		b.WriteString(fmt.Sprintf("≈ %s %s\n", m.outHint, m.snap.Token.Symbol))
	}
	if m.errText != "" {
		b.WriteString("\n" + m.styles.Error.Render(m.errText) + "\n")
	}
	if pane := m.viewActivity(); pane != "" {
		b.WriteString("\n" + pane)
	}
	b.WriteString("\n" + m.styles.Muted.Render("enter: quote · ctrl+b: ") + m.styles.Button.Render("buy") + m.styles.Muted.Render(" · esc: close"))
	return m.styles.Container.Render(b.String())
}

// viewActivity renders the last few log lines mirrored into the ring buffer.
func (m *Model) viewActivity() string {
	if m.activity == nil {
		return ""
	}
	entries := m.activity.Recent(3)
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	for _, e := range entries {
		line := fmt.Sprintf("%s %s %s", e.Timestamp.Format("15:04:05"), e.Level, e.Message)
		b.WriteString(m.styles.Muted.Render(line) + "\n")
	}
	return b.String()
}

func (m *Model) viewReceipt() string {
	var b strings.Builder
	b.WriteString(m.styles.Success.Render("swap submitted") + "\n\n")
	b.WriteString("signature: " + m.receipt.Signature + "\n")
	b.WriteString(m.styles.Muted.Render(m.receipt.ExplorerURL) + "\n")
	b.WriteString("\n" + m.styles.Muted.Render("enter: back · q: quit"))
	return m.styles.Container.Render(b.String())
}
