// Package mock provides test double implementations of AI service interfaces.
//
// The mocks let tests run without a model server and give controlled,
// deterministic behavior.
//
// # Usage in Tests
//
//	mockEmbedder := mock.NewMockEmbedder().
//	    WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
//	        return []float32{0.1, 0.2, 0.3}, nil
//	    })
//	provider := mock.NewMockProviderWithEmbedder(mockEmbedder)
//	o, _ := oracle.New(provider.Factory())
//
//	// Check how often the model was reached
//	count := mockEmbedder.TextCalls("python")
//
// # Default Behavior
//
//   - MockEmbedder: Returns deterministic unit vectors based on text hash
//   - MockProvider: Wraps a MockEmbedder and records Close
package mock
