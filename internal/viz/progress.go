package viz

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/dynamo"
)

type StepMsg struct {
	Step int
	Time float64
}

type DoneMsg struct{ Err error }

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/15, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Progress is the Bubble Tea model of a running simulation.
type Progress struct {
	label  string
	total  int
	step   int
	t      float64
	frame  int
	start  time.Time
	done   bool
	err    error
	cancel context.CancelFunc
}

// NewProgress tracks a run of totalSteps steps. cancel, if set, is called
// when the user quits early.
func NewProgress(label string, totalSteps int, cancel context.CancelFunc) Progress {
	return Progress{
		label:  label,
		total:  totalSteps,
		start:  time.Now(),
		cancel: cancel,
	}
}

func (m Progress) Init() tea.Cmd { return tick() }

func (m Progress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case StepMsg:
		m.step = msg.Step
		m.t = msg.Time
	case TickMsg:
		if m.done {
			return m, nil
		}
		m.frame++
		return m, tick()
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		if msg.Err == nil {
			m.step = m.total
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m Progress) Fraction() float64 {
	if m.total <= 0 {
		return 1
	}
	return float64(m.step) / float64(m.total)
}

func (m Progress) View() string {
	var b strings.Builder

	status := AnimatedSpinner(m.frame)
	switch {
	case m.done && m.err != nil:
		status = StatusFail.Render("✗")
	case m.done:
		status = StatusOK.Render("✓")
	}

	fmt.Fprintf(&b, "%s %s\n", status, Title.Render(m.label))
	fmt.Fprintf(&b, "%s %5.1f%%\n", ProgressBar(m.Fraction(), 40), 100*m.Fraction())
	fmt.Fprintf(&b, "%s %s\n",
		MetricLabel.Render("step"), MetricValue.Render(fmt.Sprintf("%d/%d", m.step, m.total)))
	fmt.Fprintf(&b, "%s %s\n",
		MetricLabel.Render("sim time"), MetricValue.Render(fmt.Sprintf("%.4g", m.t)))
	fmt.Fprintf(&b, "%s %s\n",
		MetricLabel.Render("wall time"), MetricValue.Render(time.Since(m.start).Round(time.Millisecond).String()))
	if m.err != nil {
		b.WriteString(StatusFail.Render(m.err.Error()) + "\n")
	}
	return b.String()
}

// Reporter forwards simulator steps to a Bubble Tea program, at most one
// message every `every` steps.
type Reporter struct {
	send  func(tea.Msg)
	every int
}

func NewReporter(send func(tea.Msg), every int) *Reporter {
	return &Reporter{send: send, every: max(1, every)}
}

func (r *Reporter) OnStep(step int, t float64, _ *body.State) {
	if step%r.every == 0 {
		r.send(StepMsg{Step: step, Time: t})
	}
}

var _ dynamo.Observer = (*Reporter)(nil)

// RunWithProgress runs fn while showing a progress view on out. fn
// receives a context that is canceled if the user quits, and a Reporter
// to register on the simulator.
func RunWithProgress(ctx context.Context, out io.Writer, label string, totalSteps int,
	fn func(ctx context.Context, r *Reporter) error) error {

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewProgress(label, totalSteps, cancel), tea.WithOutput(out), tea.WithContext(ctx))
	reporter := NewReporter(p.Send, totalSteps/200)

	errc := make(chan error, 1)
	go func() {
		err := fn(ctx, reporter)
		p.Send(DoneMsg{Err: err})
		errc <- err
	}()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return <-errc
}
