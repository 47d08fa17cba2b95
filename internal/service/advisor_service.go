package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dinu-sreekumar/studentms/internal/models"
	"github.com/dinu-sreekumar/studentms/internal/repository"
	appErrors "github.com/dinu-sreekumar/studentms/pkg/errors"
)

// emptyRosterSentinel is returned by FormatStudentContext when there is
// nothing to show. The prompt tells the model to say so explicitly.
const emptyRosterSentinel = "No student data available."

const askPromptTemplate = `You are a helpful assistant for a Student Management System.
Here is the current student data:

%s

User Question: %s

Answer based on the data provided. If the data is empty, say so.
Keep the answer concise and professional.`

// The review prompt delegates all GPA judgment to the model. What counts as a
// "good" GPA is provider-dependent and non-deterministic.
const reviewPromptTemplate = `Write a personalized performance review and study plan for the following student:
Name: %s
Course: %s
GPA: %.2f

The review should be encouraging but honest. Suggest study tips based on their GPA.`

type textGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Enabled() bool
}

// AdvisorService answers roster questions and writes performance reviews by
// prompting a hosted text-generation model with the live roster as context.
type AdvisorService struct {
	repo     studentRepository
	client   textGenerator
	sessions repository.SessionStore
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewAdvisorService constructs the advisor service.
func NewAdvisorService(repo studentRepository, client textGenerator, sessions repository.SessionStore, metrics *MetricsService, logger *zap.Logger) *AdvisorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdvisorService{
		repo:     repo,
		client:   client,
		sessions: sessions,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Enabled reports whether the provider credential is configured.
func (s *AdvisorService) Enabled() bool {
	return s.client.Enabled()
}

// Ask answers a free-text question about the roster. Both the question and
// the outcome (answer or displayable failure) are appended to the session
// transcript, so the conversation history reflects what the user saw. An
// empty sessionID starts a new session.
func (s *AdvisorService) Ask(ctx context.Context, sessionID, question string) (string, string, error) {
	if question == "" {
		return sessionID, "", appErrors.Clone(appErrors.ErrValidation, "question is required")
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	students, err := s.repo.List(ctx, models.StudentFilter{})
	if err != nil {
		return sessionID, "", appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to read roster for advisor context")
	}

	prompt := fmt.Sprintf(askPromptTemplate, FormatStudentContext(students), question)
	s.appendMessage(ctx, sessionID, models.ChatRoleUser, question)

	answer, genErr := s.generate(ctx, prompt)
	if genErr != nil {
		// Provider failures stay in the transcript as the reply the user saw.
		s.appendMessage(ctx, sessionID, models.ChatRoleAssistant, appErrors.FromError(genErr).Message)
		return sessionID, "", genErr
	}

	s.appendMessage(ctx, sessionID, models.ChatRoleAssistant, answer)
	return sessionID, answer, nil
}

// Review generates a performance review for one student from their
// name, course and GPA.
func (s *AdvisorService) Review(ctx context.Context, studentID string) (string, error) {
	student, err := s.repo.FindByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return "", appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load student")
	}

	prompt := fmt.Sprintf(reviewPromptTemplate, student.Name, student.Course, student.GPA)
	return s.generate(ctx, prompt)
}

// Transcript returns the chat history for a session, oldest first.
func (s *AdvisorService) Transcript(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	messages, err := s.sessions.Transcript(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transcript")
	}
	return messages, nil
}

func (s *AdvisorService) generate(ctx context.Context, prompt string) (string, error) {
	start := s.now()
	answer, err := s.client.Generate(ctx, prompt)
	s.metrics.ObserveAdvisorCall(err == nil, time.Since(start))
	if err != nil {
		s.logger.Warn("advisor call failed", zap.Error(err))
		return "", err
	}
	return answer, nil
}

func (s *AdvisorService) appendMessage(ctx context.Context, sessionID, role, content string) {
	msg := models.ChatMessage{Role: role, Content: content, At: s.now().UTC()}
	if err := s.sessions.AppendMessage(ctx, sessionID, msg); err != nil {
		s.logger.Warn("failed to append transcript message", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// FormatStudentContext renders the roster as a flat tab-aligned table for
// inclusion in prompts. Pure function: deterministic, no I/O. Every field of
// every record appears, in input order.
func FormatStudentContext(students []models.Student) string {
	if len(students) == 0 {
		return emptyRosterSentinel
	}
	buf := &bytes.Buffer{}
	w := tabwriter.NewWriter(buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "id\tname\tstudent_id\tcourse\tgpa\temail")
	for _, s := range students {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2f\t%s\n", s.ID, s.Name, s.StudentID, s.Course, s.GPA, s.Email)
	}
	w.Flush()
	return buf.String()
}
