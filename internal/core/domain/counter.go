package domain

// CounterState is the dashboard counter snapshot.
type CounterState struct {
	Count int `json:"count"`
}

func Increment(s CounterState) CounterState {
	return CounterState{Count: s.Count + 1}
}

func Decrement(s CounterState) CounterState {
	return CounterState{Count: s.Count - 1}
}

func ResetCounter(CounterState) CounterState {
	return CounterState{}
}

// IncrementBy returns a transition that adds amount to the count.
func IncrementBy(amount int) func(CounterState) CounterState {
	return func(s CounterState) CounterState {
		return CounterState{Count: s.Count + amount}
	}
}
