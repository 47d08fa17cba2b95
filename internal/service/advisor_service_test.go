package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinu-sreekumar/studentms/internal/models"
	"github.com/dinu-sreekumar/studentms/internal/repository"
	appErrors "github.com/dinu-sreekumar/studentms/pkg/errors"
)

type fakeGenerator struct {
	answer     string
	err        error
	enabled    bool
	lastPrompt string
	calls      int
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	g.lastPrompt = prompt
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

func (g *fakeGenerator) Enabled() bool { return g.enabled }

func newAdvisorFixture(gen *fakeGenerator, seed ...models.Student) (*AdvisorService, *repository.MemorySessionStore) {
	store := repository.NewMemorySessionStore(time.Hour)
	svc := NewAdvisorService(newFakeStudentRepo(seed...), gen, store, nil, nil)
	return svc, store
}

func TestFormatStudentContextEmpty(t *testing.T) {
	assert.Equal(t, "No student data available.", FormatStudentContext(nil))
	assert.Equal(t, "No student data available.", FormatStudentContext([]models.Student{}))
}

func TestFormatStudentContextAllFields(t *testing.T) {
	out := FormatStudentContext([]models.Student{
		{ID: 1, Name: "Alice", StudentID: "S1", Course: "Engineering", GPA: 3.5, Email: "alice@example.com"},
		{ID: 2, Name: "Bob", StudentID: "S2", Course: "Arts", GPA: 2, Email: "bob@example.com"},
	})

	assert.Contains(t, out, "name")
	assert.Contains(t, out, "student_id")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "S1")
	assert.Contains(t, out, "Engineering")
	assert.Contains(t, out, "3.50")
	assert.Contains(t, out, "alice@example.com")
	assert.Contains(t, out, "Bob")
	assert.Contains(t, out, "2.00")
}

func TestAdvisorAskBuildsPromptAndTranscript(t *testing.T) {
	gen := &fakeGenerator{answer: "Alice has the highest GPA.", enabled: true}
	svc, _ := newAdvisorFixture(gen, models.Student{Name: "Alice", StudentID: "S1", Course: "Engineering", GPA: 3.5})

	sessionID, answer, err := svc.Ask(context.Background(), "", "Who has the highest GPA?")
	require.NoError(t, err)
	assert.NotEmpty(t, sessionID)
	assert.Equal(t, "Alice has the highest GPA.", answer)

	assert.Contains(t, gen.lastPrompt, "Student Management System")
	assert.Contains(t, gen.lastPrompt, "Alice")
	assert.Contains(t, gen.lastPrompt, "User Question: Who has the highest GPA?")

	transcript, err := svc.Transcript(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, transcript, 2)
	assert.Equal(t, models.ChatRoleUser, transcript[0].Role)
	assert.Equal(t, "Who has the highest GPA?", transcript[0].Content)
	assert.Equal(t, models.ChatRoleAssistant, transcript[1].Role)
	assert.Equal(t, "Alice has the highest GPA.", transcript[1].Content)
}

func TestAdvisorAskReusesSession(t *testing.T) {
	gen := &fakeGenerator{answer: "ok", enabled: true}
	svc, _ := newAdvisorFixture(gen)

	sessionID, _, err := svc.Ask(context.Background(), "", "first?")
	require.NoError(t, err)
	again, _, err := svc.Ask(context.Background(), sessionID, "second?")
	require.NoError(t, err)
	assert.Equal(t, sessionID, again)

	transcript, err := svc.Transcript(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Len(t, transcript, 4)
}

func TestAdvisorAskEmptyRosterUsesSentinel(t *testing.T) {
	gen := &fakeGenerator{answer: "There are no students.", enabled: true}
	svc, _ := newAdvisorFixture(gen)

	_, _, err := svc.Ask(context.Background(), "", "How many students are there?")
	require.NoError(t, err)
	assert.Contains(t, gen.lastPrompt, "No student data available.")
}

func TestAdvisorAskEmptyQuestion(t *testing.T) {
	gen := &fakeGenerator{enabled: true}
	svc, _ := newAdvisorFixture(gen)

	_, _, err := svc.Ask(context.Background(), "", "")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Zero(t, gen.calls)
}

func TestAdvisorAskProviderFailureRecordedInTranscript(t *testing.T) {
	gen := &fakeGenerator{err: appErrors.Clone(appErrors.ErrProvider, "model unavailable")}
	svc, _ := newAdvisorFixture(gen, models.Student{Name: "Alice", StudentID: "S1"})

	sessionID, _, err := svc.Ask(context.Background(), "", "anything?")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrProvider))

	transcript, terr := svc.Transcript(context.Background(), sessionID)
	require.NoError(t, terr)
	require.Len(t, transcript, 2)
	assert.Equal(t, models.ChatRoleAssistant, transcript[1].Role)
	assert.Equal(t, "model unavailable", transcript[1].Content)
}

func TestAdvisorAskDisabledProvider(t *testing.T) {
	gen := &fakeGenerator{err: appErrors.Clone(appErrors.ErrConfiguration, "")}
	svc, _ := newAdvisorFixture(gen)

	_, _, err := svc.Ask(context.Background(), "", "anything?")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConfiguration))
}

func TestAdvisorReviewPrompt(t *testing.T) {
	gen := &fakeGenerator{answer: "Keep it up.", enabled: true}
	svc, _ := newAdvisorFixture(gen, models.Student{Name: "Alice", StudentID: "S1", Course: "Engineering", GPA: 3.456})

	review, err := svc.Review(context.Background(), "S1")
	require.NoError(t, err)
	assert.Equal(t, "Keep it up.", review)

	assert.Contains(t, gen.lastPrompt, "performance review")
	assert.Contains(t, gen.lastPrompt, "Name: Alice")
	assert.Contains(t, gen.lastPrompt, "Course: Engineering")
	assert.Contains(t, gen.lastPrompt, "GPA: 3.46")
}

func TestAdvisorReviewMissingStudent(t *testing.T) {
	gen := &fakeGenerator{enabled: true}
	svc, _ := newAdvisorFixture(gen)

	_, err := svc.Review(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Zero(t, gen.calls)
}

func TestAdvisorTranscriptUnknownSessionIsEmpty(t *testing.T) {
	gen := &fakeGenerator{enabled: true}
	svc, _ := newAdvisorFixture(gen)

	transcript, err := svc.Transcript(context.Background(), "no-such-session")
	require.NoError(t, err)
	assert.Empty(t, transcript)
}
