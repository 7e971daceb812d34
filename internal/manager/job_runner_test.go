package manager

import "testing"

func TestJobRunnerOrdering(t *testing.T) {
	r := NewJobRunner(10)
	var order []int
	done := make(chan struct{})

	const n = 20
	for i := 0; i < n; i++ {
		i := i
		r.AddJob(func() {
			order = append(order, i)
			if i == n-1 {
				close(done)
			}
		})
	}
	<-done
	r.Terminate()

	if len(order) != n {
		t.Fatalf("got %d jobs run, want %d", len(order), n)
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("jobs ran out of order: %v", order)
		}
	}
}

func TestJobRunnerTerminateDrains(t *testing.T) {
	r := NewJobRunner(5)
	ran := false
	r.AddJob(func() { ran = true })
	r.Terminate()
	if !ran {
		t.Fatal("expected enqueued job to run before Terminate returns")
	}
}
