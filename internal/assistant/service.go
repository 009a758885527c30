// Package assistant orchestrates one conversation turn: escalation gate,
// intent routing, checkout workflow, question answering and the audit trail.
package assistant

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/commerce-assistant/internal/escalation"
	"github.com/vasiliy-maslov/commerce-assistant/internal/history"
	"github.com/vasiliy-maslov/commerce-assistant/internal/intent"
	"github.com/vasiliy-maslov/commerce-assistant/internal/session"
	"github.com/vasiliy-maslov/commerce-assistant/internal/workflow"
)

// Fixed replies for escalated sessions.
const (
	handoffReply    = "A member of our team will take over this conversation. Please hold on, someone will be with you shortly."
	escalationReply = "I understand. I'm connecting you with a member of our team who will take over from here."
)

// historyWindow is how far back repeated low-confidence turns are counted.
const historyWindow = 10

// Turn is the outcome of one handled message.
type Turn struct {
	Reply      string  `json:"reply"`
	State      string  `json:"state"`
	Escalated  bool    `json:"escalated"`
	Confidence float64 `json:"confidence"`
}

// Service is the single entry point callers talk to. All read-modify-write
// against one session is serialized by the per-session lock.
type Service struct {
	sessions   session.Store
	messages   history.Store
	classifier intent.Classifier
	checkout   *workflow.Workflow
	latch      escalation.Latch
	retriever  Retriever
	generator  Generator
	locker     *session.KeyedMutex
}

// New wires the turn pipeline.
func New(sessions session.Store, messages history.Store, classifier intent.Classifier, checkout *workflow.Workflow, latch escalation.Latch, retriever Retriever, generator Generator) *Service {
	return &Service{
		sessions:   sessions,
		messages:   messages,
		classifier: classifier,
		checkout:   checkout,
		latch:      latch,
		retriever:  retriever,
		generator:  generator,
		locker:     session.NewKeyedMutex(),
	}
}

// HandleTurn processes one inbound message for a session. Persistence faults
// are returned as hard failures; everything else degrades to a reply.
func (s *Service) HandleTurn(ctx context.Context, sessionID, channel, message string) (*Turn, error) {
	s.locker.Lock(sessionID)
	defer s.locker.Unlock(sessionID)

	sess, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("assistant: failed to load session: %w", err)
	}
	// New and corrupted sessions degrade to idle; every state handed back to
	// the caller is a member of the closed enumeration.
	sess.State = workflow.ParseState(sess.State).String()
	if sess.Channel == "" {
		sess.Channel = channel
	}

	// Latched sessions are owned by a human: nothing runs except the fixed
	// acknowledgement, and the interaction is still logged.
	active, err := s.latch.IsActive(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("assistant: failed to read escalation latch: %w", err)
	}
	if active {
		turn := &Turn{Reply: handoffReply, State: sess.State, Escalated: true}
		if err := s.record(ctx, sess, message, turn); err != nil {
			return nil, err
		}
		return turn, nil
	}

	// Cheap keyword gate before any routing: an explicit ask for a person or
	// clear frustration escalates immediately, bypassing the state machine.
	if escalation.DetectHumanRequest(message) || escalation.DetectFrustration(message) {
		reason := escalation.ReasonFrustration
		if escalation.DetectHumanRequest(message) {
			reason = escalation.ReasonHumanRequest
		}
		return s.escalate(ctx, sess, message, reason)
	}

	intentCategory := s.classifier.Classify(message)

	res, handled := s.tryCheckout(ctx, sess, message, intentCategory)
	if handled {
		sess.State = res.Next.String()
		turn := &Turn{Reply: res.Reply, State: sess.State, Confidence: 1}
		if err := s.record(ctx, sess, message, turn); err != nil {
			return nil, err
		}
		return turn, nil
	}

	return s.answer(ctx, sess, message, intentCategory)
}

// tryCheckout runs the workflow and downgrades any internal fault to a
// fallthrough: the question-answering path can always take the message, a
// broken checkout transition must not take the session down with it.
func (s *Service) tryCheckout(ctx context.Context, sess *session.Session, message, intentCategory string) (res workflow.Result, handled bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("session_id", sess.SessionID).Interface("panic", r).Msg("assistant: checkout flow panicked, falling through")
			res, handled = workflow.Result{}, false
		}
	}()

	res, err := s.checkout.HandleMessage(ctx, sess, message, intentCategory)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sess.SessionID).Msg("assistant: checkout flow failed, falling through")
		return workflow.Result{}, false
	}
	return res, res.Handled
}

// answer runs the retrieval + generation path and the per-turn escalation
// decision.
func (s *Service) answer(ctx context.Context, sess *session.Session, message, intentCategory string) (*Turn, error) {
	chunks, err := s.retriever.Retrieve(ctx, message)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sess.SessionID).Msg("assistant: retrieval failed, answering without context")
		chunks = nil
	}

	reply, err := s.generator.Generate(ctx, message, chunks, s.recent(ctx, sess.SessionID))
	if err != nil {
		log.Warn().Err(err).Str("session_id", sess.SessionID).Msg("assistant: generation failed, using fallback answer")
		reply = "I'm sorry, I can't answer that right now."
	}

	confidence := escalation.ComputeConfidence(chunks, reply, intentCategory)
	prevLow := s.lowConfidenceTurns(ctx, sess.SessionID)

	if escalation.ShouldEscalate(message, confidence, reply, prevLow) {
		reason := escalation.Reason(message, confidence, reply, prevLow)
		log.Info().Str("session_id", sess.SessionID).Str("reason", reason).Float64("confidence", confidence).Msg("assistant: escalating session")
		if err := s.latch.Activate(ctx, sess.SessionID); err != nil {
			return nil, fmt.Errorf("assistant: failed to activate escalation latch: %w", err)
		}
		turn := &Turn{Reply: escalationReply, State: sess.State, Escalated: true, Confidence: confidence}
		if err := s.record(ctx, sess, message, turn); err != nil {
			return nil, err
		}
		return turn, nil
	}

	turn := &Turn{Reply: reply, State: sess.State, Confidence: confidence}
	if err := s.record(ctx, sess, message, turn); err != nil {
		return nil, err
	}
	return turn, nil
}

// escalate latches the session on a keyword trigger and records the turn.
func (s *Service) escalate(ctx context.Context, sess *session.Session, message, reason string) (*Turn, error) {
	log.Info().Str("session_id", sess.SessionID).Str("reason", reason).Msg("assistant: escalating session")
	if err := s.latch.Activate(ctx, sess.SessionID); err != nil {
		return nil, fmt.Errorf("assistant: failed to activate escalation latch: %w", err)
	}

	turn := &Turn{Reply: escalationReply, State: sess.State, Escalated: true}
	if err := s.record(ctx, sess, message, turn); err != nil {
		return nil, err
	}
	return turn, nil
}

// record persists the session and both sides of the exchange. These are the
// hard-failure writes: a turn that cannot be persisted did not happen.
func (s *Service) record(ctx context.Context, sess *session.Session, message string, turn *Turn) error {
	if err := s.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("assistant: failed to save session: %w", err)
	}
	if err := s.messages.Append(ctx, history.Message{
		SessionID: sess.SessionID,
		Channel:   sess.Channel,
		Role:      history.RoleUser,
		Content:   message,
	}); err != nil {
		return fmt.Errorf("assistant: failed to append user message: %w", err)
	}
	if err := s.messages.Append(ctx, history.Message{
		SessionID:  sess.SessionID,
		Channel:    sess.Channel,
		Role:       history.RoleAssistant,
		Content:    turn.Reply,
		Confidence: turn.Confidence,
		Escalated:  turn.Escalated,
	}); err != nil {
		return fmt.Errorf("assistant: failed to append assistant message: %w", err)
	}
	return nil
}

func (s *Service) recent(ctx context.Context, sessionID string) []history.Message {
	msgs, err := s.messages.LastN(ctx, sessionID, historyWindow)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("assistant: failed to read history")
		return nil
	}
	return msgs
}

// lowConfidenceTurns counts recent automated answers that scored at or below
// the low-confidence threshold, feeding the repeated-failure escalation rule.
// The counter restarts after an escalated turn so that an administrative
// latch reset starts the session with a clean slate.
func (s *Service) lowConfidenceTurns(ctx context.Context, sessionID string) int {
	count := 0
	for _, m := range s.recent(ctx, sessionID) {
		if m.Role != history.RoleAssistant {
			continue
		}
		if m.Escalated {
			count = 0
			continue
		}
		if escalation.IsLowConfidence(m.Confidence) {
			count++
		}
	}
	return count
}
