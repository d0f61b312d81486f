// Package ratings holds the bot's chat pipelines: a windowed averager for
// "X/10" segue ratings, a windowed tally for "+1"/"-1" roleplay scores with
// a persistent running total, and a small set of operator commands.
package ratings

// Counter is the accumulator the rating windows reduce into: a running sum
// and the number of summands folded in. The unit of Value belongs to the
// pipeline that accumulates it (the segue averager stores thousandths of a
// point, the roleplay tally whole points).
//
// Addition is commutative and associative with Counter{} as identity, as
// the window reducer requires.
type Counter struct {
	Value int64
	Count int64
}

func (self Counter) Add(other Counter) Counter {
	return Counter{
		Value: self.Value + other.Value,
		Count: self.Count + other.Count,
	}
}
