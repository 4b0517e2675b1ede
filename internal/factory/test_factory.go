package factory

import (
	"context"
	"time"

	"github.com/mcoot/chesspie/internal/dependencies/mocks"
	"github.com/mcoot/chesspie/internal/services/library"
	"github.com/mcoot/chesspie/internal/storage/memory"
	"github.com/mcoot/chesspie/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// TestPieces is a small piece library for tests: a hopper that jumps
// up to two squares in any direction and an archer that moves like a rook.
const TestPieces = `[
  {
    "id": "hopper",
    "name": "Hopper",
    "moves": {
      "white": [{"conditions": [{"variable": "absDiffX", "operator": "<=", "value": 2, "logic": "AND"}, {"variable": "absDiffY", "operator": "<=", "value": 2}], "result": "allow", "type": "jump"}]
    }
  },
  {
    "id": "archer",
    "name": "Archer",
    "moves": {
      "white": [
        {"conditions": [{"variable": "absDiffX", "operator": "===", "value": 0}], "result": "allow", "type": "slide"},
        {"conditions": [{"variable": "absDiffY", "operator": "===", "value": 0}], "result": "allow", "type": "slide"}
      ]
    }
  }
]`

// LoadTestPieces loads TestPieces into the piece library
func (t *TestApp) LoadTestPieces() error {
	defs, err := library.Decode([]byte(TestPieces))
	if err != nil {
		return err
	}
	return t.LibraryService.Save(context.Background(), defs)
}
