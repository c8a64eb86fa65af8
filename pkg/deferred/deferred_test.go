package deferred

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestGo_Resolves(t *testing.T) {
	f := Go(func() (int, error) { return 42, nil })

	v, err := f.Await(context.Background())
	if err != nil || v != 42 {
		t.Errorf("Await() = %d, %v; want 42, nil", v, err)
	}
	if !f.Settled() {
		t.Error("Settled() = false after Await returned")
	}
}

func TestGo_RejectsWithoutValue(t *testing.T) {
	boom := errors.New("boom")
	f := Go(func() (string, error) { return "partial", boom })

	v, err := f.Wait()
	if !errors.Is(err, boom) {
		t.Errorf("Wait() error = %v, want %v", err, boom)
	}
	if v != "" {
		t.Errorf("rejected future returned value %q", v)
	}
}

func TestFromCallback_SettlesOnce(t *testing.T) {
	tests := []struct {
		name    string
		call    func(done func(int, error))
		want    int
		wantErr bool
	}{
		{
			name: "second resolve ignored",
			call: func(done func(int, error)) {
				done(1, nil)
				done(2, nil)
			},
			want: 1,
		},
		{
			name: "reject after resolve ignored",
			call: func(done func(int, error)) {
				done(1, nil)
				done(0, errors.New("late"))
			},
			want: 1,
		},
		{
			name: "resolve after reject ignored",
			call: func(done func(int, error)) {
				done(0, errors.New("first"))
				done(7, nil)
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := FromCallback(tc.call).Wait()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Wait() error = %v, wantErr %v", err, tc.wantErr)
			}
			if v != tc.want {
				t.Errorf("Wait() = %d, want %d", v, tc.want)
			}
		})
	}
}

func TestFromCallback_AsyncCompletion(t *testing.T) {
	f := FromCallback(func(done func(int, error)) {
		go func() {
			time.Sleep(10 * time.Millisecond)
			done(42, nil)
		}()
	})

	v, err := f.Wait()
	if err != nil || v != 42 {
		t.Errorf("Wait() = %d, %v; want 42, nil", v, err)
	}
}

func TestFromSyncCallback_NeverLeftPending(t *testing.T) {
	_, err := FromSyncCallback(func(func(int, error)) {}).Wait()
	if !IsNotSettled(err) {
		t.Errorf("error = %v, want not-settled", err)
	}

	v, err := FromSyncCallback(func(done func(int, error)) { done(5, nil) }).Wait()
	if err != nil || v != 5 {
		t.Errorf("Wait() = %d, %v; want 5, nil", v, err)
	}
}

func TestPanicRejects(t *testing.T) {
	tests := []struct {
		name  string
		adapt func(func(func(int, error))) *Future[int]
	}{
		{"async callback", FromCallback[int]},
		{"sync callback", FromSyncCallback[int]},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.adapt(func(func(int, error)) { panic("native call crashed") }).Wait()
			var pe *PanicError
			if !errors.As(err, &pe) {
				t.Fatalf("error = %v, want *PanicError", err)
			}
			if pe.Value != "native call crashed" {
				t.Errorf("PanicError.Value = %v", pe.Value)
			}
		})
	}
}

func TestFromCallback_ConcurrentSettlement(t *testing.T) {
	for i := 0; i < 50; i++ {
		f := FromCallback(func(done func(int, error)) {
			var wg sync.WaitGroup
			for n := 1; n <= 8; n++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					done(n, nil)
				}()
			}
			wg.Wait()
		})
		first, _ := f.Wait()
		again, _ := f.Wait()
		if first < 1 || first > 8 || first != again {
			t.Fatalf("unstable settlement: %d then %d", first, again)
		}
	}
}

func TestAwait_ContextDone(t *testing.T) {
	release := make(chan struct{})
	f := Go(func() (int, error) {
		<-release
		return 5, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Await(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Await() error = %v, want context.Canceled", err)
	}

	close(release)
	select {
	case <-f.Done():
	case <-time.After(time.Second):
		t.Fatal("future did not settle after the work finished")
	}
	if v, err := f.Wait(); v != 5 || err != nil {
		t.Errorf("Wait() = %d, %v; want 5, nil", v, err)
	}
}

func TestResolvedRejected(t *testing.T) {
	if v, err := Resolved("ok").Wait(); v != "ok" || err != nil {
		t.Errorf("Resolved: %q, %v", v, err)
	}
	if _, err := Rejected[int](nil).Wait(); err == nil {
		t.Error("Rejected(nil) settled without an error")
	}
}
