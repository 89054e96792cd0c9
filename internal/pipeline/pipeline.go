// Package pipeline assembles classified records from raw log lines: envelope
// parse, extractor classification, record assembly.
package pipeline

import (
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cisec/logsift/internal/classify"
	"github.com/cisec/logsift/internal/envelope"
	"github.com/cisec/logsift/internal/reader"
	"github.com/cisec/logsift/internal/record"
)

// Pipeline is a stateless line-to-record transformation. The registry is
// read-only during a run, so classification may fan out across lines without
// changing observable results.
type Pipeline struct {
	env     *envelope.Parser
	reg     *classify.Registry
	logger  zerolog.Logger
	workers int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers classifies lines on n goroutines. Output order is identical to
// sequential processing.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 1 {
			p.workers = n
		}
	}
}

// New creates a Pipeline over the given extractor registry.
func New(reg *classify.Registry, logger zerolog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		env:     envelope.NewParser(),
		reg:     reg,
		logger:  logger.With().Str("component", "pipeline").Logger(),
		workers: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run reads every non-blank line from r and returns one record per line.
func (p *Pipeline) Run(r io.Reader) ([]record.Record, error) {
	lines, err := reader.Lines(r)
	if err != nil {
		return nil, err
	}
	return p.Process(lines), nil
}

// Process classifies a batch of lines. The output always has exactly one
// record per input line: lines that fail envelope parsing degrade to
// unclassified records, they are never dropped.
func (p *Pipeline) Process(lines []string) []record.Record {
	records := make([]record.Record, len(lines))

	if p.workers <= 1 || len(lines) < p.workers {
		for i, line := range lines {
			records[i] = p.ProcessLine(line)
		}
	} else {
		// Index-addressed writes keep output order independent of
		// scheduling.
		indexes := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < p.workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range indexes {
					records[i] = p.ProcessLine(lines[i])
				}
			}()
		}
		for i := range lines {
			indexes <- i
		}
		close(indexes)
		wg.Wait()
	}

	unclassified := 0
	for _, r := range records {
		if r.EventType == record.EventUnclassified {
			unclassified++
		}
	}
	p.logger.Debug().
		Int("lines", len(lines)).
		Int("unclassified", unclassified).
		Msg("Processed batch")

	return records
}

// ProcessLine assembles one record from one raw line.
func (p *Pipeline) ProcessLine(line string) record.Record {
	env, ok := p.env.Parse(line)
	if !ok {
		// Unparseable envelope: keep the whole line as the message.
		return record.Record{
			Message:   line,
			EventType: record.EventUnclassified,
		}
	}

	rec := record.Record{
		Sequence:  env.Sequence,
		Month:     env.Month,
		Day:       env.Day,
		Time:      env.Time,
		Timezone:  env.Timezone,
		Facility:  env.Facility,
		Severity:  &env.Severity,
		Mnemonic:  env.Mnemonic,
		Message:   env.Message,
		EventType: record.EventUnclassified,
	}
	if ev, matched := p.reg.Classify(env.Message); matched {
		rec.EventType = ev.Type()
		rec.Event = ev
	}
	return rec
}
