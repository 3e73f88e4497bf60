package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abhisek/suneung/internal/store"
)

// countingProvider tracks the number of concurrent Generate calls.
type countingProvider struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	hold     time.Duration
}

func (c *countingProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	n := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if err := Sleep(ctx, c.hold); err != nil {
		return nil, err
	}
	return &Response{Content: json.RawMessage(`{}`), StopReason: StopEnd}, nil
}

func (c *countingProvider) ModelID() string { return "counting" }

func TestLimit_BoundsConcurrency(t *testing.T) {
	inner := &countingProvider{hold: 20 * time.Millisecond}
	p := WithLimit(inner, 2)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Generate(context.Background(), Request{}); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if peak := inner.peak.Load(); peak > 2 {
		t.Fatalf("peak concurrency = %d, want <= 2", peak)
	}
}

func TestLimit_ReleasesSlotOnCancel(t *testing.T) {
	inner := &countingProvider{hold: time.Hour}
	p := WithLimit(inner, 1).(*LimitProvider)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := p.Generate(ctx, Request{})
		done <- err
	}()

	// Wait for the call to take the slot.
	deadline := time.Now().Add(time.Second)
	for inner.inFlight.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got: %v", err)
	}
	if !p.TryAcquire() {
		t.Fatal("slot was not released after cancellation")
	}
	p.Release()
}

func TestLimit_AcquireRespectsContext(t *testing.T) {
	inner := &countingProvider{hold: time.Hour}
	p := WithLimit(inner, 1).(*LimitProvider)
	if !p.TryAcquire() {
		t.Fatal("expected free slot")
	}
	defer p.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := p.Generate(ctx, Request{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded while waiting for a slot, got: %v", err)
	}
}

func TestLimit_ZeroIsUnlimited(t *testing.T) {
	mock := NewMockProvider()
	if p := WithLimit(mock, 0); p != Provider(mock) {
		t.Fatal("expected provider to be returned unchanged")
	}
}

func TestFallback_UsedOnRateLimit(t *testing.T) {
	primary := NewMockProvider(MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}})
	secondary := NewMockProvider(MockResponse{Content: json.RawMessage(`{"ok":true}`)})
	secondary.SetModel("backup")

	p := WithFallback(primary, secondary)
	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Model != "backup" {
		t.Fatalf("expected response from backup model, got %q", resp.Model)
	}
	if p.ModelID() != "backup" {
		t.Fatalf("ModelID should report the fallback after the switch, got %q", p.ModelID())
	}
}

func TestFallback_SwitchIsSticky(t *testing.T) {
	limited := func() MockResponse { return MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}} }
	primary := NewMockProvider(limited(), limited(), limited())
	secondary := NewMockProvider(Text(`{"pass":true}`), Text(`{"pass":true}`), Text(`{"pass":true}`))

	p := WithFallback(primary, secondary)
	if p.ModelID() != "mock" {
		t.Fatalf("ModelID before any call = %q, want primary", p.ModelID())
	}
	for i := range 3 {
		if _, err := p.Generate(WithPurpose(context.Background(), PurposeReview), Request{}); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
	}
	if primary.CallCount() != 1 {
		t.Fatalf("primary called %d times, want 1", primary.CallCount())
	}
	if secondary.CallCount() != 3 {
		t.Fatalf("secondary called %d times, want 3", secondary.CallCount())
	}
}

func TestFallback_NotUsedForOtherErrors(t *testing.T) {
	primary := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}})
	secondary := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})

	_, err := WithFallback(primary, secondary).Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %v", err)
	}
	if secondary.CallCount() != 0 {
		t.Fatalf("secondary called %d times, want 0", secondary.CallCount())
	}
}

// recordingRepo captures LLM events in memory.
type recordingRepo struct {
	store.EventRepo
	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return r.err
}

func TestLogging_RecordsEvent(t *testing.T) {
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"pass":true}`),
		Usage:   Usage{InputTokens: 12, OutputTokens: 4},
	})
	repo := &recordingRepo{}
	p := WithLogging(mock, "anthropic", repo)

	ctx := WithCandidate(WithPurpose(context.Background(), PurposeReview), "c1")
	_, err := p.Generate(ctx, Request{
		System:   "검토자",
		Messages: []Message{{Role: RoleUser, Content: "문항을 검토하시오"}},
		Schema:   &Schema{Name: "review", Definition: map[string]any{"type": "object"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	e := repo.events[0]
	if e.Provider != "anthropic" || e.Purpose != "review" || e.CandidateID != "c1" {
		t.Fatalf("unexpected event metadata: %+v", e)
	}
	if !e.Success || e.InputTokens != 12 || e.ResponseBody != `{"pass":true}` {
		t.Fatalf("unexpected event payload: %+v", e)
	}
	for _, part := range []string{"[system]", "[user]", "[schema: review]"} {
		if !strings.Contains(e.RequestBody, part) {
			t.Errorf("request body missing %q", part)
		}
	}
}

func TestLogging_FailureDoesNotBreakCall(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}})
	repo := &recordingRepo{err: errors.New("disk full")}
	p := WithLogging(mock, "openai", repo)

	_, err := p.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected provider error to pass through, got: %v", err)
	}
	if len(repo.events) != 1 || repo.events[0].Success || repo.events[0].ErrorMessage == "" {
		t.Fatalf("expected failed event, got %+v", repo.events)
	}
}

func TestNewProvider_Mock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected mock provider, got %q", p.ModelID())
	}
}

func TestNewProvider_RejectsMissingKey(t *testing.T) {
	if _, err := NewProvider(context.Background(), Config{Provider: "anthropic"}, nil); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("SUNEUNG_LLM_PROVIDER", "openrouter")
	t.Setenv("SUNEUNG_OPENROUTER_API_KEY", "sk-or")
	t.Setenv("SUNEUNG_LLM_FALLBACK_MODEL", "anthropic/claude-haiku-4.5")
	t.Setenv("SUNEUNG_LLM_MAX_CONCURRENT", "2")

	cfg := ConfigFromEnv()
	if cfg.Provider != "openrouter" || cfg.OpenRouter.APIKey != "sk-or" {
		t.Fatalf("unexpected provider config: %+v", cfg)
	}
	if cfg.FallbackModel != "anthropic/claude-haiku-4.5" || cfg.MaxConcurrent != 2 {
		t.Fatalf("unexpected tuning: fallback=%q max=%d", cfg.FallbackModel, cfg.MaxConcurrent)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := cfg.withModel("x/y").OpenRouter.Model; got != "x/y" {
		t.Fatalf("withModel = %q", got)
	}
}

func TestEnvConfig_DiscoversVendorKey(t *testing.T) {
	t.Setenv("SUNEUNG_LLM_PROVIDER", "")
	t.Setenv("SUNEUNG_ANTHROPIC_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("SUNEUNG_LLM_MAX_CONCURRENT", "3")

	cfg := EnvConfig()
	if cfg.Provider != "openai" || cfg.OpenAI.APIKey != "sk-openai" {
		t.Fatalf("expected discovered openai config, got %+v", cfg)
	}
	if cfg.MaxConcurrent != 3 {
		t.Errorf("expected tuning to survive discovery, got %d", cfg.MaxConcurrent)
	}
}

func TestLookupCost(t *testing.T) {
	tests := []struct {
		model string
		found bool
		in    float64
	}{
		{"claude-sonnet-4-5-20250929", true, 3},
		{"anthropic/claude-sonnet-4-5", true, 3},
		{"gpt-4o-2024-08-06", true, 2.5},
		{"gemini-2.5-pro", true, 1.25},
		{"mock", false, 0},
	}
	for _, tt := range tests {
		c := LookupCost(tt.model)
		if (c != nil) != tt.found {
			t.Errorf("LookupCost(%q) found = %v, want %v", tt.model, c != nil, tt.found)
			continue
		}
		if c != nil && c.InputPerMTok != tt.in {
			t.Errorf("LookupCost(%q).InputPerMTok = %v, want %v", tt.model, c.InputPerMTok, tt.in)
		}
	}

	if got := (ModelCost{InputPerMTok: 3, OutputPerMTok: 15}).Cost(1_000_000, 100_000); got != 4.5 {
		t.Errorf("Cost = %v, want 4.5", got)
	}
}
