package main

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/saviobatista/ais-logger/internal/ais"
	"github.com/saviobatista/ais-logger/internal/assembler"
	"github.com/saviobatista/ais-logger/internal/capture"
)

var (
	errNotASentence = errors.New("not an AIS sentence")
	errChecksum     = errors.New("checksum mismatch")
)

// Line is one input line tagged with its position in the input
type Line struct {
	Seq  int
	Text string
}

// Result is the outcome of decoding one message. Seq and Text refer to the
// line that completed it, which for a multipart message is its last fragment.
type Result struct {
	Seq    int
	Text   string
	Output []byte
	Err    error

	order int
}

// labeledMessage adds the lookup labels next to the raw codes
type labeledMessage struct {
	*ais.Message
	NavigationStatusLabel string `json:"navigationStatusLabel,omitempty"`
	VesselTypeLabel       string `json:"vesselTypeLabel,omitempty"`
}

// job is a framed message waiting for a worker
type job struct {
	order int
	line  Line
	env   *ais.Envelope
	err   error
}

// Dock decodes lines on a fixed pool of workers
type Dock struct {
	Workers        int
	Labels         bool
	VerifyChecksum bool

	decoder   *ais.Decoder
	fragments *assembler.Fragments
}

// NewDock creates a dock with at least one worker. labels adds the lookup
// labels to every message and verifyChecksum rejects sentences whose
// checksum does not match.
func NewDock(workers int, labels, verifyChecksum bool) *Dock {
	if workers < 1 {
		workers = 1
	}
	return &Dock{
		Workers:        workers,
		Labels:         labels,
		VerifyChecksum: verifyChecksum,
		decoder:        ais.NewDecoder(),
		fragments:      assembler.NewFragments(assembler.DefaultFragmentTTL),
	}
}

// Run decodes every line from in and emits the results in input order.
// Blank lines and the leading fragments of a multipart message produce no
// result. The returned channel closes once in is drained or ctx is cancelled.
func (d *Dock) Run(ctx context.Context, in <-chan Line) <-chan Result {
	jobs := make(chan job, d.Workers)
	decoded := make(chan Result, d.Workers)
	out := make(chan Result, d.Workers)

	go d.frame(ctx, in, jobs)

	var wg sync.WaitGroup
	for i := 0; i < d.Workers; i++ {
		wg.Add(1)
		go d.work(ctx, &wg, jobs, decoded)
	}
	go func() {
		wg.Wait()
		close(decoded)
	}()

	go reorder(ctx, decoded, out)
	return out
}

// frame checks every line and joins multipart messages. Fragments only
// join in input order, so framing runs on a single goroutine.
func (d *Dock) frame(ctx context.Context, in <-chan Line, jobs chan<- job) {
	defer close(jobs)

	order := 0
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-in:
			if !ok {
				return
			}
			if strings.TrimSpace(line.Text) == "" {
				continue
			}
			env, err := d.envelope(line.Text)
			if err == nil && env == nil {
				continue
			}
			select {
			case jobs <- job{order: order, line: line, env: env, err: err}:
				order++
			case <-ctx.Done():
				return
			}
		}
	}
}

// envelope returns the complete message a line carries, or nil while a
// multipart message still waits for fragments.
func (d *Dock) envelope(text string) (*ais.Envelope, error) {
	sentence, ok := capture.CleanLine(text)
	if !ok || sentence[0] != '!' {
		return nil, errNotASentence
	}
	if d.VerifyChecksum && !capture.ValidChecksum(sentence) {
		return nil, errChecksum
	}

	env, err := ais.ParseEnvelope(sentence)
	if err != nil {
		return nil, err
	}
	return d.fragments.Add("", env)
}

func (d *Dock) work(ctx context.Context, wg *sync.WaitGroup, jobs <-chan job, decoded chan<- Result) {
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			res := Result{Seq: j.line.Seq, Text: j.line.Text, Err: j.err, order: j.order}
			if j.err == nil {
				res.Output, res.Err = d.decode(j.env)
			}
			select {
			case decoded <- res:
			case <-ctx.Done():
				return
			}
		}
	}
}

// reorder holds back results until every earlier one was sent
func reorder(ctx context.Context, decoded <-chan Result, out chan<- Result) {
	defer close(out)

	pending := make(map[int]Result)
	next := 0
	for res := range decoded {
		pending[res.order] = res
		for {
			r, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			select {
			case out <- r:
			case <-ctx.Done():
				// Drain so the workers can exit
				for range decoded {
				}
				return
			}
			next++
		}
	}
}

func (d *Dock) decode(env *ais.Envelope) ([]byte, error) {
	msg, err := d.decoder.DecodePayload(env.Payload, env.FillBits)
	if err != nil {
		return nil, err
	}
	if !d.Labels {
		return json.Marshal(msg)
	}
	return json.Marshal(label(msg))
}

func label(msg *ais.Message) labeledMessage {
	lm := labeledMessage{Message: msg}
	switch {
	case msg.Position != nil && msg.Position.NavigationStatus != nil:
		lm.NavigationStatusLabel = ais.NavigationStatusLabel(uint8(*msg.Position.NavigationStatus))
	case msg.Voyage != nil:
		lm.VesselTypeLabel = ais.VesselTypeLabel(msg.Voyage.VesselType)
	case msg.StaticData != nil && msg.StaticData.VesselType != nil:
		lm.VesselTypeLabel = ais.VesselTypeLabel(*msg.StaticData.VesselType)
	}
	return lm
}
