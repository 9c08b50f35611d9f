package binding

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/listbind/internal/observable"
	"github.com/roach88/listbind/internal/trace"
)

func propertyConfig(strategy Strategy, bidirectional bool) Config {
	return Config{
		Bidirectional: bidirectional,
		Source:        SideA,
		PropertyBind:  true,
		Strategy:      strategy,
	}
}

func bindPeople(t *testing.T, a *observable.List[*person], b *observable.List[*card], cfg Config, extra ...Option) (*Binder[*person, *card], *trace.Buffer) {
	t.Helper()
	opts, buf := testOpts(cfg)
	binder, err := Bind[*person, *card](a, b, toCard, toPerson, append(opts, extra...)...)
	require.NoError(t, err)
	t.Cleanup(func() { binder.Close() })
	return binder, buf
}

func TestRelay_RaisesExactlyOnceWithoutCopying(t *testing.T) {
	m := &person{Name: "Ann"}
	a := observable.NewList(m)
	b := observable.NewList[*card]()
	_, buf := bindPeople(t, a, b, propertyConfig(StrategyRelay, true))

	vm := b.At(0)
	seen := countProperties(vm)

	require.NoError(t, m.SetName("Bob"))

	assert.Equal(t, 1, *seen)
	assert.Equal(t, "Ann", vm.Label, "relay signals, it does not copy")
	assert.Same(t, vm, b.At(0))
	assert.Equal(t, 1, buf.Count(trace.KindProperty))
}

func TestRelay_ReverseDirection(t *testing.T) {
	m := &person{Name: "Ann"}
	a := observable.NewList(m)
	b := observable.NewList[*card]()
	bindPeople(t, a, b, propertyConfig(StrategyRelay, true))

	seen := countProperties(m)
	require.NoError(t, b.At(0).SetLabel("Zed"))

	assert.Equal(t, 1, *seen)
	assert.Equal(t, "Ann", m.Name)
}

func TestRelay_RequiresRaiserOnTarget(t *testing.T) {
	a := observable.NewList(&person{Name: "Ann"})
	b := observable.NewList[*plainView]()
	opts, _ := testOpts(propertyConfig(StrategyRelay, true))

	toView := func(p *person) (*plainView, error) { return &plainView{V: p.Name}, nil }
	toPerson := func(v *plainView) (*person, error) { return &person{Name: v.V}, nil }
	_, err := Bind[*person, *plainView](a, b, toView, toPerson, opts...)

	assert.True(t, IsUnsupportedConfiguration(err))
}

func TestDuplicateSourceItems_IndependentPairs(t *testing.T) {
	p := &person{Name: "P"}
	a := observable.NewList(p, p)
	b := observable.NewList[*card]()
	binder, _ := bindPeople(t, a, b, propertyConfig(StrategyRelay, true))

	c0, c1 := b.At(0), b.At(1)
	require.NotSame(t, c0, c1)
	require.Equal(t, 2, binder.Pairs())

	tok0, ok0 := binder.PairToken(0)
	tok1, ok1 := binder.PairToken(1)
	require.True(t, ok0)
	require.True(t, ok1)
	assert.Equal(t, "pair-1", tok0)
	assert.Equal(t, "pair-2", tok1)

	onC1 := countProperties(c1)
	onP := countProperties(p)

	require.NoError(t, c0.SetLabel("Q"))

	assert.Equal(t, 1, *onP, "source notified once through the first pair")
	assert.Equal(t, 0, *onC1, "the second counterpart is untouched")
	assert.Equal(t, "P", c1.Label)

	// Both pairs subscribe to the same instance independently.
	assert.Equal(t, 3, p.PropertySubscribers())
	require.NoError(t, a.RemoveAt(0))
	assert.Equal(t, 2, p.PropertySubscribers())
	assert.Equal(t, 1, binder.Pairs())

	require.NoError(t, p.SetName("Z"))
	assert.Equal(t, 1, *onC1, "remaining pair still bound")
}

func TestRecreate_ReplacesCounterpart(t *testing.T) {
	m := &person{Name: "Ann"}
	a := observable.NewList(m)
	b := observable.NewList[*card]()
	binder, _ := bindPeople(t, a, b, propertyConfig(StrategyRecreate, false))
	onB := countChanges(b)

	old := b.At(0)
	require.NoError(t, m.SetName("Bob"))

	assert.NotSame(t, old, b.At(0))
	assert.Equal(t, "Bob", b.At(0).Label)
	assert.Equal(t, []observable.Action{observable.ActionReplace}, onB.actions)
	assert.Same(t, m, a.At(0))

	tok, _ := binder.PairToken(0)
	assert.Equal(t, "pair-2", tok, "the replaced pair gets a new token")
	assert.Equal(t, 1, m.PropertySubscribers())

	require.NoError(t, m.SetName("Cy"))
	assert.Equal(t, "Cy", b.At(0).Label)
}

func TestRecreate_Reverse(t *testing.T) {
	m := &person{Name: "Ann"}
	a := observable.NewList(m)
	b := observable.NewList[*card]()
	bindPeople(t, a, b, propertyConfig(StrategyRecreate, true))

	require.NoError(t, b.At(0).SetLabel("Dee"))

	assert.NotSame(t, m, a.At(0))
	assert.Equal(t, "Dee", a.At(0).Name)
	assert.Equal(t, 0, m.PropertySubscribers(), "stale source released")
}

func TestCustom_InvokesMaps(t *testing.T) {
	var calls []string
	forward := func(ch PropertyChange, src *person, dst *card) error {
		calls = append(calls, "forward:"+ch.Name)
		dst.Label = src.Name
		return nil
	}
	reverse := func(ch PropertyChange, src *card, dst *person) error {
		calls = append(calls, "reverse:"+ch.Name)
		dst.Name = src.Label
		return nil
	}

	m := &person{Name: "Ann"}
	a := observable.NewList(m)
	b := observable.NewList[*card]()
	bindPeople(t, a, b, propertyConfig(StrategyCustom, true), WithCustomMap[*person, *card](forward, reverse))
	vm := b.At(0)

	require.NoError(t, m.SetName("Bob"))
	assert.Equal(t, "Bob", vm.Label)
	assert.Same(t, vm, b.At(0))

	require.NoError(t, vm.SetLabel("Cat"))
	assert.Equal(t, "Cat", m.Name)

	assert.Equal(t, []string{"forward:Name", "reverse:Label"}, calls)
}

func TestCustom_ErrorPropagatesUnwrapped(t *testing.T) {
	errBoom := errors.New("boom")
	forward := func(PropertyChange, *person, *card) error { return errBoom }

	m := &person{Name: "Ann"}
	a := observable.NewList(m)
	b := observable.NewList[*card]()
	binder, _ := bindPeople(t, a, b, propertyConfig(StrategyCustom, false), WithCustomMap[*person, *card](forward, nil))

	err := m.SetName("Bob")

	assert.Equal(t, errBoom, err)
	assert.False(t, binder.Syncing())
}

func TestOneWay_TargetPropertyChangeIsSilent(t *testing.T) {
	m := &person{Name: "Ann"}
	a := observable.NewList(m)
	b := observable.NewList[*card]()
	_, buf := bindPeople(t, a, b, propertyConfig(StrategyRelay, false))

	onM := countProperties(m)
	vm := b.At(0)

	assert.Equal(t, 0, vm.PropertySubscribers(), "reverse direction not wired")
	require.NoError(t, vm.SetLabel("x"))
	assert.Equal(t, 0, *onM)
	assert.Equal(t, 0, buf.Count(trace.KindProperty))
	assert.Equal(t, 0, buf.Count(trace.KindViolation))
}

func TestPairs_FollowStructuralChanges(t *testing.T) {
	p1, p2, p3 := &person{Name: "1"}, &person{Name: "2"}, &person{Name: "3"}
	a := observable.NewList(p1, p2)
	b := observable.NewList[*card]()
	binder, _ := bindPeople(t, a, b, propertyConfig(StrategyRelay, true))

	require.NoError(t, a.Append(p3))
	assert.Equal(t, 3, binder.Pairs())

	require.NoError(t, a.Move(0, 2))
	onMoved := countProperties(b.At(2))
	require.NoError(t, p1.SetName("moved"))
	assert.Equal(t, 1, *onMoved, "pair moved with its items")

	replacement := &person{Name: "r"}
	require.NoError(t, a.Set(0, replacement))
	assert.Equal(t, 0, p2.PropertySubscribers())
	assert.Equal(t, 1, replacement.PropertySubscribers())

	require.NoError(t, a.Clear())
	assert.Equal(t, 0, binder.Pairs())
	assert.Equal(t, 0, p1.PropertySubscribers())
	assert.Equal(t, 0, p3.PropertySubscribers())
}

func TestPairs_OnlyWhenPropertyBindEnabled(t *testing.T) {
	a := observable.NewList(&person{Name: "Ann"})
	b := observable.NewList[*card]()
	binder, _ := bindPeople(t, a, b, DefaultConfig())

	assert.Equal(t, 0, binder.Pairs())
	_, ok := binder.PairToken(0)
	assert.False(t, ok)
}

func TestSetPropertyBind(t *testing.T) {
	m := &person{Name: "Ann"}
	a := observable.NewList(m, &person{Name: "Bo"})
	b := observable.NewList[*card]()
	cfg := Config{Bidirectional: true, Source: SideA, Strategy: StrategyRelay}
	binder, _ := bindPeople(t, a, b, cfg)

	require.Equal(t, 0, binder.Pairs())

	require.NoError(t, binder.SetPropertyBind(true))
	assert.True(t, binder.PropertyBind())
	assert.Equal(t, 2, binder.Pairs())

	seen := countProperties(b.At(0))
	require.NoError(t, m.SetName("Al"))
	assert.Equal(t, 1, *seen)

	require.NoError(t, binder.SetPropertyBind(false))
	assert.Equal(t, 0, binder.Pairs())
	assert.Equal(t, 0, m.PropertySubscribers())
}

func TestSetPropertyBind_RequiresStrategy(t *testing.T) {
	a := observable.NewList[*person]()
	b := observable.NewList[*card]()
	binder, _ := bindPeople(t, a, b, DefaultConfig())

	err := binder.SetPropertyBind(true)

	assert.True(t, IsInvalidConfiguration(err))
	assert.False(t, binder.PropertyBind())
}

func TestSetStrategy(t *testing.T) {
	a := observable.NewList(&person{Name: "Ann"})
	b := observable.NewList[*card]()
	binder, _ := bindPeople(t, a, b, propertyConfig(StrategyRelay, true))

	assert.True(t, IsUnsupportedConfiguration(binder.SetStrategy(StrategyRecreate)), "rejected while active")

	require.NoError(t, binder.SetPropertyBind(false))
	require.NoError(t, binder.SetStrategy(StrategyRecreate))
	assert.Equal(t, StrategyRecreate, binder.Config().Strategy)

	assert.True(t, IsUnsupportedConfiguration(binder.SetStrategy(StrategyCustom)), "no custom maps")
	assert.True(t, IsInvalidConfiguration(binder.SetStrategy("bogus")))
}

func TestSetBidirectional_RewiresProperties(t *testing.T) {
	m := &person{Name: "Ann"}
	a := observable.NewList(m)
	b := observable.NewList[*card]()
	binder, _ := bindPeople(t, a, b, propertyConfig(StrategyRelay, true))
	vm := b.At(0)

	assert.Equal(t, 1, vm.PropertySubscribers())
	require.NoError(t, binder.SetBidirectional(false))
	assert.Equal(t, 0, vm.PropertySubscribers())
	assert.Equal(t, 1, m.PropertySubscribers())
}

func TestClose_ReleasesPropertySubscriptions(t *testing.T) {
	m := &person{Name: "Ann"}
	a := observable.NewList(m)
	b := observable.NewList[*card]()
	binder, _ := bindPeople(t, a, b, propertyConfig(StrategyRelay, true))
	vm := b.At(0)

	require.NoError(t, binder.Close())

	assert.Equal(t, 0, m.PropertySubscribers())
	assert.Equal(t, 0, vm.PropertySubscribers())
	assert.Equal(t, 0, binder.Pairs())
}

func bindPlainCards(t *testing.T, a *observable.List[*plain], b *observable.List[*card], cfg Config) *Binder[*plain, *card] {
	t.Helper()
	opts, _ := testOpts(cfg)
	toC := func(p *plain) (*card, error) { return &card{Label: strconv.Itoa(p.V)}, nil }
	toP := func(c *card) (*plain, error) {
		n, err := strconv.Atoi(c.Label)
		if err != nil {
			return nil, err
		}
		return &plain{V: n}, nil
	}
	binder, err := Bind[*plain, *card](a, b, toC, toP, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { binder.Close() })
	return binder
}

func TestSetPropertyBind_RejectedKeepsPreviousState(t *testing.T) {
	a := observable.NewList(&person{Name: "Ann"})
	b := observable.NewList[*plainView]()
	opts, _ := testOpts(Config{Bidirectional: true, Source: SideA, Strategy: StrategyRelay})
	toView := func(p *person) (*plainView, error) { return &plainView{V: p.Name}, nil }
	toPerson := func(v *plainView) (*person, error) { return &person{Name: v.V}, nil }
	binder, err := Bind[*person, *plainView](a, b, toView, toPerson, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { binder.Close() })

	err = binder.SetPropertyBind(true)

	assert.True(t, IsUnsupportedConfiguration(err))
	assert.False(t, binder.PropertyBind())
	assert.Equal(t, 0, binder.Pairs())
	assert.Equal(t, 0, a.At(0).PropertySubscribers())

	require.NoError(t, a.Append(&person{Name: "Bo"}))
	require.Equal(t, 2, b.Len())
	assert.Equal(t, "Bo", b.At(1).V)
}

func TestSetSource_RejectedKeepsPreviousState(t *testing.T) {
	a := observable.NewList(&plain{V: 1})
	b := observable.NewList[*card]()
	cfg := Config{Bidirectional: false, Source: SideA, PropertyBind: true, Strategy: StrategyRelay}
	binder := bindPlainCards(t, a, b, cfg)
	require.Equal(t, 1, binder.Pairs())

	// Watching the cards would need plain items that can raise.
	err := binder.SetSource(SideB)

	assert.True(t, IsUnsupportedConfiguration(err))
	assert.Equal(t, SideA, binder.Source())
	assert.Equal(t, 1, binder.Pairs())
	assert.Equal(t, 0, b.At(0).PropertySubscribers())

	require.NoError(t, a.Append(&plain{V: 2}))
	require.Equal(t, 2, b.Len())
	assert.Equal(t, "2", b.At(1).Label)
	assert.Equal(t, 2, binder.Pairs())
}

func TestSetBidirectional_RejectedKeepsPreviousState(t *testing.T) {
	a := observable.NewList(&plain{V: 1})
	b := observable.NewList[*card]()
	cfg := Config{Bidirectional: false, Source: SideA, PropertyBind: true, Strategy: StrategyRelay}
	binder := bindPlainCards(t, a, b, cfg)

	err := binder.SetBidirectional(true)

	assert.True(t, IsUnsupportedConfiguration(err))
	assert.False(t, binder.Bidirectional())
	assert.Equal(t, 0, b.At(0).PropertySubscribers())

	require.NoError(t, a.Append(&plain{V: 2}))
	require.Equal(t, 2, b.Len())
	assert.Equal(t, "2", b.At(1).Label)
	assert.True(t, IsOneWayViolation(b.Append(&card{Label: "3"})), "still one-way")
}

func TestRelay_PairDroppedDuringDeliveryIsSilent(t *testing.T) {
	m := &person{Name: "Ann"}
	a := observable.NewList(m)
	b := observable.NewList[*card]()

	// Subscribed ahead of the binder, so it runs first and unbinds the
	// pair while the same notification is still being delivered.
	m.SubscribeProperty(func(PropertyChange) error {
		if a.Len() > 0 {
			return a.RemoveAt(0)
		}
		return nil
	})
	_, buf := bindPeople(t, a, b, propertyConfig(StrategyRelay, true))
	vm := b.At(0)
	onVM := countProperties(vm)

	require.NoError(t, m.SetName("Bob"))

	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 0, *onVM)
	assert.Equal(t, 0, buf.Count(trace.KindProperty))
}

func TestCustom_PairDroppedDuringDeliveryIsSilent(t *testing.T) {
	calls := 0
	forward := func(PropertyChange, *person, *card) error {
		calls++
		return nil
	}

	m := &person{Name: "Ann"}
	a := observable.NewList(m)
	b := observable.NewList[*card]()
	m.SubscribeProperty(func(PropertyChange) error {
		if a.Len() > 0 {
			return a.RemoveAt(0)
		}
		return nil
	})
	_, buf := bindPeople(t, a, b, propertyConfig(StrategyCustom, false), WithCustomMap[*person, *card](forward, nil))

	require.NoError(t, m.SetName("Bob"))

	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, buf.Count(trace.KindProperty))
}
