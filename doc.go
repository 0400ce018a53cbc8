// Package deck is a spaced-repetition scheduling core that is generic over
// the review algorithm.
//
// A Facade owns a named pool of items, the shared state of their algorithm
// and a target retention. Items not yet due sit in a min-heap ordered by
// their next repetition time; items that have come due move to an unordered
// recall set, from which reviews are drawn uniformly at random:
//
//	f, err := deck.New[*fsrstask.Task, fsrstask.Model]("spanish", 0.9, fsrstask.NewTask)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tmpl, _ := content.NewTemplate("gato = {}", "cat")
//	f.Create(tmpl)
//	err = f.CompleteOne(func(id deck.ID, p content.Prompt) (content.Response, error) {
//	    return ask(p)
//	})
//
// The ordering key is re-evaluated from the item, the shared state and the
// retention on every comparison. Changing the retention or refitting the
// shared state re-keys both partitions.
//
// A Facade is owned by one goroutine; it does no locking of its own.
package deck
