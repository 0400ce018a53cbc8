package deck

// takeRandom removes and returns a uniformly random entry from the recall
// set. The last entry fills the hole, so removal is O(1).
func (f *Facade[T, S]) takeRandom() (entry[T], bool) {
	n := len(f.recall)
	if n == 0 {
		return entry[T]{}, false
	}
	i := f.opts.rng.Intn(n)
	e := f.recall[i]
	f.recall[i] = f.recall[n-1]
	f.recall[n-1] = entry[T]{}
	f.recall = f.recall[:n-1]
	return e, true
}
