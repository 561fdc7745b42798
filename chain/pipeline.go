// Package chain implements the two-stage question answering chain.
//
// A turn runs: schema → SQL generator → schema again → execute query →
// answer synthesizer. Both stages are a prompt template rendered into a
// single user message, one model call, and the reply text. Nothing
// inspects the generated SQL before it is executed.
package chain

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/DachengChen/sqlchat/ai"
	"github.com/DachengChen/sqlchat/applog"
)

const instrumentationName = "github.com/DachengChen/sqlchat/chain"

// Stage names used for spans and the duration histogram.
const (
	StageTableInfo  = "table_info"
	StageGenerate   = "generate_sql"
	StageRunQuery   = "run_query"
	StageSynthesize = "synthesize_answer"
)

// Source is the database a pipeline reads schema text from and runs
// generated queries against.
type Source interface {
	TableInfo(ctx context.Context) (string, error)
	Run(ctx context.Context, query string) (string, error)
}

// Turn is the outcome of one question. Fields are filled in as stages
// complete, so a failed turn still carries what was produced before
// the failure.
type Turn struct {
	Question string
	Query    string
	Response string
	Answer   string
	Started  time.Time
	Elapsed  time.Duration
}

// Recorder receives every finished turn, failed or not.
type Recorder interface {
	RecordTurn(ctx context.Context, turn Turn, err error) error
}

// Pipeline wires a Source and a model into the two chain stages.
type Pipeline struct {
	source      Source
	generator   *SQLGenerator
	synthesizer *AnswerSynthesizer
	recorder    Recorder

	tracer        trace.Tracer
	meter         metric.Meter
	stageDuration metric.Float64Histogram
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder sends finished turns to r.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithTracer overrides the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

// WithMeter overrides the global meter.
func WithMeter(m metric.Meter) Option {
	return func(p *Pipeline) { p.meter = m }
}

// NewPipeline builds a pipeline. Both stages use provider at temperature.
func NewPipeline(source Source, provider ai.Provider, temperature float64, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:      source,
		generator:   NewSQLGenerator(provider, temperature),
		synthesizer: NewAnswerSynthesizer(provider, temperature),
		tracer:      otel.Tracer(instrumentationName),
		meter:       otel.Meter(instrumentationName),
	}
	for _, opt := range opts {
		opt(p)
	}

	hist, err := p.meter.Float64Histogram(
		"sqlchat.stage.duration_ms",
		metric.WithDescription("Duration of one chain stage in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		applog.Error("create stage histogram", err)
	} else {
		p.stageDuration = hist
	}
	return p
}

// Respond answers question. history must already end with the human
// message for question; it is passed unchanged to both prompts. The
// schema is read fresh for each stage.
func (p *Pipeline) Respond(ctx context.Context, question string, history []Message) (turn Turn, err error) {
	ctx, span := p.tracer.Start(ctx, "chain.respond")
	defer span.End()

	turn = Turn{Question: question, Started: time.Now()}
	defer func() {
		turn.Elapsed = time.Since(turn.Started)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			applog.Error("turn failed", err, slog.Duration("elapsed", turn.Elapsed))
		} else {
			applog.Event("chain", "turn complete",
				slog.Int("history", len(history)),
				slog.Int("query_bytes", len(turn.Query)),
				slog.Duration("elapsed", turn.Elapsed),
			)
		}
		if p.recorder != nil {
			if rerr := p.recorder.RecordTurn(ctx, turn, err); rerr != nil {
				applog.Error("record turn", rerr)
			}
		}
	}()

	schema, err := p.stage(ctx, StageTableInfo, p.source.TableInfo)
	if err != nil {
		return turn, fmt.Errorf("read schema: %w", err)
	}

	turn.Query, err = p.stage(ctx, StageGenerate, func(ctx context.Context) (string, error) {
		return p.generator.Generate(ctx, schema, history, question)
	})
	if err != nil {
		return turn, err
	}

	schema, err = p.stage(ctx, StageTableInfo, p.source.TableInfo)
	if err != nil {
		return turn, fmt.Errorf("read schema: %w", err)
	}

	turn.Response, err = p.stage(ctx, StageRunQuery, func(ctx context.Context) (string, error) {
		return p.source.Run(ctx, turn.Query)
	})
	if err != nil {
		return turn, fmt.Errorf("run query: %w", err)
	}

	turn.Answer, err = p.stage(ctx, StageSynthesize, func(ctx context.Context) (string, error) {
		return p.synthesizer.Synthesize(ctx, AnswerInput{
			Schema:   schema,
			History:  history,
			Query:    turn.Query,
			Question: question,
			Response: turn.Response,
		})
	})
	if err != nil {
		return turn, err
	}

	return turn, nil
}

func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context) (string, error)) (string, error) {
	attrs := attribute.String("stage", name)
	ctx, span := p.tracer.Start(ctx, "chain."+name, trace.WithAttributes(attrs))
	defer span.End()

	start := time.Now()
	out, err := fn(ctx)
	if p.stageDuration != nil {
		p.stageDuration.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(attrs))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return out, err
}
