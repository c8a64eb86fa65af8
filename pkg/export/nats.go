package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"golang.org/x/sync/errgroup"

	"github.com/danpilch/winmem/pkg/collectors"
	"github.com/danpilch/winmem/pkg/winmem"
)

// Payload is the JSON document published for one snapshot. A collection
// that failed leaves its field empty and records the reason in Errors.
type Payload struct {
	SystemName  string                     `json:"system_name"`
	Timestamp   time.Time                  `json:"timestamp"`
	Global      *winmem.GlobalMemoryStatus `json:"global_memory_status,omitempty"`
	Performance *winmem.PerformanceInfo    `json:"performance_info,omitempty"`
	Processes   winmem.ProcessMemoryReport `json:"process_memory"`
	Errors      map[string]string          `json:"errors,omitempty"`
}

// Publisher is the publishing half of a JetStream context.
type Publisher interface {
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

var _ Publisher = (nats.JetStreamContext)(nil)

// BuildPayload runs the three collections concurrently and assembles them.
// It fails only when every collection failed.
func BuildPayload(ctx context.Context, src collectors.Source, systemName string) (Payload, error) {
	p := Payload{SystemName: systemName, Timestamp: time.Now().UTC()}

	var (
		gms     winmem.GlobalMemoryStatus
		pi      winmem.PerformanceInfo
		report  winmem.ProcessMemoryReport
		errGMS  error
		errPerf error
		errProc error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		gms, errGMS = src.GlobalMemoryStatus(gctx).Await(gctx)
		return nil
	})
	g.Go(func() error {
		pi, errPerf = src.GetPerformanceInfo(gctx).Await(gctx)
		return nil
	})
	g.Go(func() error {
		report, errProc = src.GetProcessMemory(gctx).Await(gctx)
		return nil
	})
	_ = g.Wait()

	p.Errors = make(map[string]string)
	if errGMS != nil {
		p.Errors["GlobalMemoryStatus"] = errGMS.Error()
	} else {
		p.Global = &gms
	}
	if errPerf != nil {
		p.Errors["GetPerformanceInfo"] = errPerf.Error()
	} else {
		p.Performance = &pi
	}
	if errProc != nil {
		p.Errors["GetProcessMemory"] = errProc.Error()
	} else {
		p.Processes = report
	}

	if len(p.Errors) == 3 {
		return p, fmt.Errorf("every collection failed: %w", errors.Join(errGMS, errPerf, errProc))
	}
	if len(p.Errors) == 0 {
		p.Errors = nil
	}
	return p, nil
}

// PublishSnapshot encodes p and publishes it on subject.
func PublishSnapshot(ctx context.Context, pub Publisher, subject string, p Payload) (*nats.PubAck, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	ack, err := pub.Publish(subject, data, nats.Context(ctx))
	if err != nil {
		return nil, fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return ack, nil
}

// Dial connects to the NATS server at url and returns its JetStream context.
// The returned close function drains the connection.
func Dial(url string, timeout time.Duration) (nats.JetStreamContext, func() error, error) {
	nc, err := nats.Connect(url, nats.Name("winmem"), nats.Timeout(timeout))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("creating JetStream context: %w", err)
	}
	return js, nc.Drain, nil
}
