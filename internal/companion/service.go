package companion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"healthcompanion/internal/ai"
	"healthcompanion/internal/logger"
	"healthcompanion/internal/metrics"
	"healthcompanion/internal/store"
	"healthcompanion/internal/vitals"
)

const (
	SourceModel    = "model"
	SourceFallback = "fallback"

	// UserNotFoundReport stands in for the vitals report of an unknown user.
	UserNotFoundReport = "User not found."

	defaultGenerationTimeout = 20 * time.Second
)

const systemPrompt = `You are a warm, caring, and friendly AI Health Companion.
Your goal is to support elderly users and their caregivers with understanding health data, offering reassurance, and being a helpful presence.

PERSONA:
- You are NOT a robot. You are a companion.
- Speak naturally, like a caring friend or family member.
- Be empathetic, patient, and encouraging.
- Use the user's name to make the conversation personal.

RULES:
1. Use simple, kind, and clear language. Avoid overly technical jargon unless necessary, and explain it if you do.
2. NEVER provide a medical diagnosis. You are a companion, not a doctor.
3. If values seem dangerous (e.g., very high BP, low SpO2), gently but firmly suggest contacting a doctor immediately.
4. Use the context provided to answer questions about heart rate, blood pressure, etc.
5. Keep responses concise but warm.
6. Use emojis to add warmth and emotion to your messages. 💙 🌿`

// Directory is the read side of the store the chat service needs.
type Directory interface {
	GetUserByUsername(ctx context.Context, username string) (store.User, error)
	RecentReadings(ctx context.Context, userID string, limit int) ([]vitals.Reading, error)
}

type Reply struct {
	Answer   string   `json:"response"`
	Source   string   `json:"source"`
	Category Category `json:"category,omitempty"`
	Model    string   `json:"model,omitempty"`
}

// Service answers chat messages for a user. The generation backend is tried
// first when configured; any failure falls back to the Responder.
type Service struct {
	directory   Directory
	client      ai.Client
	provider    string
	responder   *Responder
	reportLimit int
	timeout     time.Duration
	log         *logger.Logger
	metrics     *metrics.Metrics
}

type Option func(*Service)

func WithResponder(responder *Responder) Option {
	return func(s *Service) {
		if responder != nil {
			s.responder = responder
		}
	}
}

func WithReportLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.reportLimit = limit
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithProvider names the generation backend in logs and metrics.
func WithProvider(provider string) Option {
	return func(s *Service) {
		if strings.TrimSpace(provider) != "" {
			s.provider = provider
		}
	}
}

// NewService wires the chat service. client may be nil, in which case every
// answer comes from the rule-based responder.
func NewService(directory Directory, client ai.Client, opts ...Option) *Service {
	s := &Service{
		directory:   directory,
		client:      client,
		provider:    "ai",
		responder:   NewResponder(),
		reportLimit: vitals.DefaultReportLimit,
		timeout:     defaultGenerationTimeout,
		log:         logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) HasGenerator() bool {
	return s.client != nil
}

// Answer is the pure rule-based reply for an already-built report.
func (s *Service) Answer(message, report, fullName string) string {
	return s.responder.Respond(message, report, fullName)
}

// Report renders the recent-readings report for a stored user.
func (s *Service) Report(ctx context.Context, user store.User, limit int) (string, error) {
	if limit <= 0 {
		limit = s.reportLimit
	}
	readings, err := s.directory.RecentReadings(ctx, user.ID, limit)
	if err != nil {
		return "", fmt.Errorf("load recent readings: %w", err)
	}
	return vitals.FormatReport(readings, limit), nil
}

// Chat answers message on behalf of username. Only store failures other than
// an unknown user are returned as errors.
func (s *Service) Chat(ctx context.Context, username, message string) (Reply, error) {
	username = strings.TrimSpace(username)
	fullName := username
	report := UserNotFoundReport

	user, err := s.directory.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		fullName = user.DisplayName()
		report, err = s.Report(ctx, user, s.reportLimit)
		if err != nil {
			return Reply{}, err
		}
	case errors.Is(err, store.ErrNotFound):
	default:
		return Reply{}, fmt.Errorf("load user %q: %w", username, err)
	}

	if s.client != nil {
		if reply, ok := s.generate(ctx, username, fullName, report, message); ok {
			return reply, nil
		}
	}

	response := s.responder.Reply(message, report, fullName)
	s.metrics.RecordChatResponse(SourceFallback, string(response.Category))
	return Reply{Answer: response.Text, Source: SourceFallback, Category: response.Category}, nil
}

func (s *Service) generate(ctx context.Context, username, fullName, report, message string) (Reply, bool) {
	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	resp, err := s.client.Query(genCtx, ai.ModelRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   BuildPrompt(fullName, report, message),
	})
	if err == nil && strings.TrimSpace(resp.Answer) == "" {
		err = errors.New("empty answer")
	}
	s.metrics.RecordGeneration(s.provider, time.Since(started), err)
	if err != nil {
		s.log.WithUser(username).WithField("provider", s.provider).WithError(err).Warn("text generation failed; using rule-based reply")
		return Reply{}, false
	}

	s.metrics.RecordChatResponse(SourceModel, "")
	return Reply{
		Answer: strings.TrimSpace(resp.Answer),
		Source: SourceModel,
		Model:  resp.Model,
	}, true
}

// BuildPrompt renders the user turn sent to the generation backend.
func BuildPrompt(fullName, report, message string) string {
	var b strings.Builder
	b.WriteString("USER INFORMATION:\nName: ")
	b.WriteString(fullName)
	b.WriteString("\n\nCONTEXT (Recent Health Data):\n")
	b.WriteString(report)
	b.WriteString("\n\nPlease provide a helpful, friendly response. Address the user by their name occasionally to be more personal.")
	b.WriteString("\n\nUSER QUESTION:\n")
	b.WriteString(message)
	return b.String()
}
