package jobs

import (
	"testing"
	"time"
)

func TestFIFOOrder(t *testing.T) {
	q := newFIFO()
	for _, id := range []string{"a", "b", "c"} {
		q.Enqueue(id)
	}
	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}
	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.Dequeue()
		if !ok || got != want {
			t.Fatalf("Dequeue() = %q/%v, want %q", got, ok, want)
		}
	}
}

func TestFIFODequeueBlocksUntilEnqueue(t *testing.T) {
	q := newFIFO()
	got := make(chan string, 1)
	go func() {
		id, _ := q.Dequeue()
		got <- id
	}()

	time.Sleep(10 * time.Millisecond)
	q.Enqueue("x")

	select {
	case id := <-got:
		if id != "x" {
			t.Fatalf("Dequeue() = %q, want x", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Dequeue never woke up")
	}
}

func TestFIFOCloseUnblocksConsumers(t *testing.T) {
	q := newFIFO()
	done := make(chan bool, 1)
	go func() {
		_, ok := q.Dequeue()
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("Dequeue on closed queue reported ok")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not unblock the consumer")
	}
}

func TestFIFOCloseDiscardsPending(t *testing.T) {
	q := newFIFO()
	q.Enqueue("a")
	q.Close()

	if _, ok := q.Dequeue(); ok {
		t.Fatal("Dequeue returned an item after Close")
	}
	q.Enqueue("b") // no-op on a closed queue
	if q.Len() != 1 {
		t.Fatalf("Len() = %d after enqueue-on-closed, want 1", q.Len())
	}
}
