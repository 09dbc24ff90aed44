package mapview

import (
	"testing"
	"time"
)

func TestLoopRunsTasksInOrder(t *testing.T) {
	l := newLoop()
	go l.run()
	defer l.stop()

	var got []int
	for i := 1; i <= 5; i++ {
		i := i
		if !l.post(func() { got = append(got, i) }) {
			t.Fatal("post should succeed")
		}
	}
	done := make(chan struct{})
	l.post(func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not drain")
	}

	if len(got) != 5 {
		t.Fatalf("expected 5 tasks, got %d", len(got))
	}
	for i, v := range got {
		if v != i+1 {
			t.Errorf("tasks ran out of order: %v", got)
			break
		}
	}
}

func TestLoopRejectsAfterStop(t *testing.T) {
	l := newLoop()
	go l.run()
	l.stop()

	if l.post(func() { t.Error("task ran after stop") }) {
		t.Error("post after stop should report failure")
	}
}

func TestLoopRejectsWhenFull(t *testing.T) {
	l := newLoop() // nothing drains it
	for i := 0; i < sessionQueueSize; i++ {
		if !l.post(func() {}) {
			t.Fatalf("queue should hold %d tasks, rejected at %d", sessionQueueSize, i)
		}
	}
	if l.post(func() {}) {
		t.Error("a full queue should reject the task")
	}
	l.stop()
}
