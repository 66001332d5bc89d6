package scorm

import "sync"

// MockAPI implements API for testing. It records every call so tests
// can verify write counts and payloads, and supports error injection.
type MockAPI struct {
	mu sync.Mutex

	// InitResult controls what Init returns.
	InitResult bool

	// SetErr, SaveErr inject failures.
	SetErr  error
	SaveErr error

	values map[string]string

	InitCalls int
	SetCalls  int
	SaveCalls int
	QuitCalls int
}

// NewMockAPI creates a mock LMS session that accepts connections.
func NewMockAPI() *MockAPI {
	return &MockAPI{InitResult: true, values: make(map[string]string)}
}

// Init records the call and returns the configured result.
func (m *MockAPI) Init() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitCalls++
	return m.InitResult
}

// Get returns the stored value for key, empty when unset.
func (m *MockAPI) Get(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

// Set stores a value, or fails when SetErr is configured.
func (m *MockAPI) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls++
	if m.SetErr != nil {
		return m.SetErr
	}
	m.values[key] = value
	return nil
}

// Save records the flush call.
func (m *MockAPI) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	return m.SaveErr
}

// Quit records the termination call.
func (m *MockAPI) Quit() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QuitCalls++
	return nil
}

// Seed pre-populates a stored value, e.g. a prior lesson location.
func (m *MockAPI) Seed(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Value reads a stored value without counting as an LMS Get.
func (m *MockAPI) Value(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}
