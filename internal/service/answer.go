package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/orbital-research/bioastra/internal/domain"
	"github.com/orbital-research/bioastra/internal/stream"
	"github.com/orbital-research/bioastra/internal/telemetry"
)

// GenerationClient produces free-form answer text from a prompt.
type GenerationClient interface {
	GenerateAnswer(ctx context.Context, prompt string) (string, error)
}

// AnswerService runs the full question pipeline: retrieve, generate,
// structure, stream. Every stream it produces terminates with a done event,
// success or failure.
type AnswerService struct {
	assembler *ContextAssembler
	generator GenerationClient
}

func NewAnswerService(assembler *ContextAssembler, generator GenerationClient) *AnswerService {
	return &AnswerService{
		assembler: assembler,
		generator: generator,
	}
}

// Ask starts the pipeline and returns the event channel. The channel is
// closed after the terminal done event. Cancelling the context stops the
// pipeline; no further events are delivered after cancellation.
func (s *AnswerService) Ask(ctx context.Context, query string, role domain.Role) <-chan stream.Event {
	events := make(chan stream.Event, 8)
	go s.run(ctx, events, query, role)
	return events
}

func (s *AnswerService) run(ctx context.Context, events chan<- stream.Event, query string, role domain.Role) {
	defer close(events)

	ctx, span := telemetry.StartSpan(ctx, "answer.ask", telemetry.SpanAttributes{
		Role:      string(role),
		Operation: "ask",
	})
	defer span.End()

	if !emitThinking(ctx, events, "Analyzing the question and selecting relevant studies.") {
		return
	}

	result, err := s.assembler.Retrieve(ctx, query, role)
	if err != nil {
		s.fail(ctx, events, err)
		return
	}

	if !emitThinking(ctx, events, fmt.Sprintf("Retrieved %d passages across %d source documents.", len(result.Chunks), result.SourceCount)) {
		return
	}

	profile := domain.ProfileFor(role)
	prompt := BuildAnswerPrompt(query, result, profile)

	if !emitThinking(ctx, events, "Drafting the role-specific briefing.") {
		return
	}

	generated, err := s.generator.GenerateAnswer(ctx, prompt)
	if err != nil {
		s.fail(ctx, events, domain.NewGenerationFailure(err))
		return
	}
	if strings.TrimSpace(generated) == "" && result.Context != "" {
		s.fail(ctx, events, domain.ErrEmptyGeneration)
		return
	}

	envelope := StructureResponse(generated, role, result.Images, result.Tables, query, result.SourceCount)

	if !stream.Emit(ctx, events, stream.Event{Type: stream.EventTitle, Content: envelope.Title}) {
		return
	}

	for i, section := range envelope.Sections {
		payload := stream.SectionPayload{
			Index:  i,
			Title:  section.Title,
			Body:   section.Body,
			Images: section.Images,
			Tables: section.Tables,
		}
		if !stream.Emit(ctx, events, stream.Event{Type: stream.EventParagraph, Content: payload}) {
			return
		}
	}

	metadata := stream.MetadataPayload{
		Role:         string(envelope.Metadata.Role),
		SectionCount: envelope.Metadata.SectionCount,
		ImagesUsed:   envelope.Metadata.ImagesUsed,
		TablesUsed:   envelope.Metadata.TablesUsed,
		SourceCount:  envelope.Metadata.SourceCount,
	}
	if !stream.Emit(ctx, events, stream.Event{Type: stream.EventMetadata, Content: metadata}) {
		return
	}

	stream.Emit(ctx, events, stream.Event{Type: stream.EventDone})
}

// fail emits exactly one error event followed by done.
func (s *AnswerService) fail(ctx context.Context, events chan<- stream.Event, err error) {
	telemetry.CaptureError(ctx, err)

	code := domain.ErrCodeInternalError
	message := "internal error"
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		code = domainErr.Code
		message = domainErr.Message
	}

	payload := stream.ErrorPayload{Code: code, Message: message}
	if !stream.Emit(ctx, events, stream.Event{Type: stream.EventError, Content: payload}) {
		return
	}
	stream.Emit(ctx, events, stream.Event{Type: stream.EventDone})
}

func emitThinking(ctx context.Context, events chan<- stream.Event, message string) bool {
	return stream.Emit(ctx, events, stream.Event{Type: stream.EventThinking, Content: message})
}
