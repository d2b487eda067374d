package graphfsm_test

import (
	"context"
	"fmt"

	"github.com/comalice/graphfsm"
)

func Example() {
	ctx := context.Background()

	g, err := graphfsm.NewBuilder().
		Initial(Solid).
		State(Solid, func(s *graphfsm.StateBuilder) {
			s.On(Melted, func(e *graphfsm.EdgeBuilder) { e.TransitionTo(Liquid, nil) })
		}).
		State(Liquid, func(s *graphfsm.StateBuilder) {
			s.OnEnter(func(state graphfsm.State, trigger graphfsm.Event) {
				fmt.Printf("entered %s on %s\n", state.Name(), trigger.Name())
			})
			s.On(Vaporized, func(e *graphfsm.EdgeBuilder) {
				e.TransitionTo(Gas, func(_ context.Context, r graphfsm.ActionResult, _ graphfsm.Event) error {
					r.Fail() // too cold
					return nil
				})
			})
		}).
		Build(quiet)
	if err != nil {
		panic(err)
	}

	changes := g.ObserveStateChanges(ctx)

	_ = g.Start(ctx)
	_ = g.Consume(ctx, Melted)
	_ = g.Consume(ctx, Vaporized)

	for range 4 {
		fmt.Println(<-changes.C())
	}
	// Output:
	// entered Liquid on Melted
	// entered Liquid on Vaporized
	// Dwelling(Solid)
	// Traversing(Solid -> Liquid on Melted)
	// Dwelling(Liquid)
	// Dwelling(Liquid)
}
