package logic

import (
	"errors"
	"testing"
)

func TestNewWindow(t *testing.T) {
	w := NewWindow(3)
	if w.Len() != 0 {
		t.Errorf("Len: got %d, want 0", w.Len())
	}
	if w.Cap() != 3 {
		t.Errorf("Cap: got %d, want 3", w.Cap())
	}
}

func TestNewWindowPanicsOnZeroCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for zero capacity")
		}
	}()
	NewWindow(0)
}

func TestWindowAverageEmpty(t *testing.T) {
	w := NewWindow(3)
	_, err := w.Average()
	if !errors.Is(err, ErrEmptyWindow) {
		t.Errorf("expected ErrEmptyWindow, got %v", err)
	}
}

func TestWindowRetainsLastN(t *testing.T) {
	for capacity := 1; capacity <= 5; capacity++ {
		w := NewWindow(capacity)
		var pushed []float64
		for k := 1; k <= 12; k++ {
			v := float64(k * 10)
			w.Push(v)
			pushed = append(pushed, v)

			want := pushed
			if len(want) > capacity {
				want = want[len(want)-capacity:]
			}
			got := w.Samples()
			if len(got) != len(want) {
				t.Fatalf("cap=%d k=%d: len got %d, want %d", capacity, k, len(got), len(want))
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("cap=%d k=%d: sample %d got %v, want %v", capacity, k, i, got[i], want[i])
				}
			}
		}
	}
}

func TestWindowAverageIgnoresEvicted(t *testing.T) {
	w := NewWindow(3)
	w.Push(100)
	w.Push(40)
	w.Push(50)
	w.Push(60)

	avg, err := w.Average()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if avg != 50 {
		t.Errorf("Average: got %v, want 50", avg)
	}
}

func TestWindowAveragePartial(t *testing.T) {
	w := NewWindow(3)
	w.Push(41)
	w.Push(43)

	avg, err := w.Average()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if avg != 42 {
		t.Errorf("Average: got %v, want 42", avg)
	}
}

func TestWindowSamplesIsCopy(t *testing.T) {
	w := NewWindow(2)
	w.Push(1)
	w.Push(2)

	s := w.Samples()
	s[0] = 99

	if got := w.Samples()[0]; got != 1 {
		t.Errorf("window mutated through Samples(): got %v, want 1", got)
	}
}
