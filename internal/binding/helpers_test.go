package binding

import (
	"io"
	"log/slog"
	"strconv"

	"github.com/roach88/listbind/internal/observable"
	"github.com/roach88/listbind/internal/testutil"
	"github.com/roach88/listbind/internal/trace"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func itoa(i int) (string, error) { return strconv.Itoa(i), nil }

func atoi(s string) (int, error) { return strconv.Atoi(s) }

// testOpts returns deterministic options plus the buffer the binder traces to.
func testOpts(cfg Config) ([]Option, *trace.Buffer) {
	buf := &trace.Buffer{}
	return []Option{
		WithName("test"),
		WithConfig(cfg),
		WithLogger(quietLogger()),
		WithRecorder(buf),
		WithClock(testutil.NewStepClock()),
		WithTokenGenerator(testutil.NewSequentialTokens("")),
	}, buf
}

func oneWay(source Side) Config {
	return Config{Bidirectional: false, Source: source}
}

// person is a property-notifying source item.
type person struct {
	observable.PropertyEvents
	Name string
}

func (p *person) SetName(name string) error {
	p.Name = name
	return p.RaisePropertyChanged("Name")
}

// card is a converted counterpart that can have its notification raised
// from outside.
type card struct {
	observable.PropertyEvents
	Label string
}

func (c *card) SetLabel(label string) error {
	c.Label = label
	return c.RaisePropertyChanged("Label")
}

func toCard(p *person) (*card, error) { return &card{Label: p.Name}, nil }

func toPerson(c *card) (*person, error) { return &person{Name: c.Label}, nil }

// plain is a pointer item without property notifications.
type plain struct{ V int }

type plainView struct{ V string }

func toPlainView(p *plain) (*plainView, error) { return &plainView{V: strconv.Itoa(p.V)}, nil }

func toPlain(v *plainView) (*plain, error) {
	n, err := strconv.Atoi(v.V)
	if err != nil {
		return nil, err
	}
	return &plain{V: n}, nil
}

// counter counts structural notifications on a list.
type counter struct {
	n       int
	actions []observable.Action
}

func countChanges[T any](l *observable.List[T]) *counter {
	c := &counter{}
	l.Subscribe(func(ch observable.Change[T]) error {
		c.n++
		c.actions = append(c.actions, ch.Action)
		return nil
	})
	return c
}

func countProperties(n observable.PropertyNotifier) *int {
	count := 0
	n.SubscribeProperty(func(observable.PropertyChange) error {
		count++
		return nil
	})
	return &count
}
