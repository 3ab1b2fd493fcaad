package core

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"sokrate-backend-go/internal/billing"
	"sokrate-backend-go/internal/models"
)

type fakeCache struct {
	mu          sync.Mutex
	profiles    map[string]*models.Profile
	err         error
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{profiles: map[string]*models.Profile{}}
}

func (c *fakeCache) Get(_ context.Context, userID string) (*models.Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profiles[userID], c.err
}

func (c *fakeCache) Invalidate(_ context.Context, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, userID)
}

func (c *fakeCache) invalidations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.invalidated...)
}

type fakeRecorder struct {
	mu    sync.Mutex
	syncs []string
	tutor []string
}

func (r *fakeRecorder) RecordProfileSync(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.syncs = append(r.syncs, outcome)
}

func (r *fakeRecorder) RecordTutorRequest(tool, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tutor = append(r.tutor, tool+":"+outcome)
}

type mockTutor struct {
	mock.Mock
}

func (m *mockTutor) Solve(ctx context.Context, req models.SolveRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockTutor) GenerateQuiz(ctx context.Context, req models.QuizRequest) ([]models.QuizQuestion, error) {
	args := m.Called(ctx, req)
	qs, _ := args.Get(0).([]models.QuizQuestion)
	return qs, args.Error(1)
}

func (m *mockTutor) Synthesize(ctx context.Context, req models.SynthesizeRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateCheckout(ctx context.Context, req billing.CheckoutRequest) (*billing.Checkout, error) {
	args := m.Called(ctx, req)
	c, _ := args.Get(0).(*billing.Checkout)
	return c, args.Error(1)
}

func (m *mockGateway) GetCheckout(ctx context.Context, id string) (*billing.Checkout, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*billing.Checkout)
	return c, args.Error(1)
}

func (m *mockGateway) ParseWebhook(payload []byte, signature string) (*billing.Event, error) {
	args := m.Called(payload, signature)
	ev, _ := args.Get(0).(*billing.Event)
	return ev, args.Error(1)
}

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []string
	err     error
	release chan struct{} // when set, SendPlain blocks until closed
}

func (n *fakeNotifier) SendPlain(recipient, subject, _ string) error {
	if n.release != nil {
		<-n.release
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, recipient+"|"+subject)
	return n.err
}

func (n *fakeNotifier) messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.sent...)
}
