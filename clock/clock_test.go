package clock

import (
	"testing"
	"time"
)

func TestManualStaysPut(t *testing.T) {
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewManual(start)

	if !c.Now().Equal(start) {
		t.Errorf("Now() = %v, want %v", c.Now(), start)
	}
	if !c.Now().Equal(c.Now()) {
		t.Error("Manual clock moved without Advance")
	}
}

func TestManualAdvance(t *testing.T) {
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewManual(start)

	c.Advance(10 * time.Second)
	want := start.Add(10 * time.Second)
	if !c.Now().Equal(want) {
		t.Errorf("Now() = %v, want %v", c.Now(), want)
	}

	c.Advance(time.Hour)
	want = want.Add(time.Hour)
	if !c.Now().Equal(want) {
		t.Errorf("Now() = %v, want %v", c.Now(), want)
	}
}

func TestManualSet(t *testing.T) {
	c := NewManual(time.Unix(0, 0))
	target := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	c.Set(target)
	if !c.Now().Equal(target) {
		t.Errorf("Now() = %v, want %v", c.Now(), target)
	}
}

func TestSystemNonDecreasing(t *testing.T) {
	var c System
	a := c.Now()
	b := c.Now()
	if b.Before(a) {
		t.Errorf("System clock went backwards: %v then %v", a, b)
	}
}
