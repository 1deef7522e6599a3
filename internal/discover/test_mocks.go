package discover

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/majhol08/rtspscout/internal/probe"
)

// MockPinger
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ip string, port int) bool {
	args := m.Called(ip, port)
	return args.Bool(0)
}

// MockFingerprinter
type MockFingerprinter struct {
	mock.Mock
}

func (m *MockFingerprinter) Fingerprint(ip string, port int) probe.Fingerprint {
	args := m.Called(ip, port)
	return args.Get(0).(probe.Fingerprint)
}

// MockValidator
type MockValidator struct {
	mock.Mock
}

func (m *MockValidator) Validate(ctx context.Context, url string) bool {
	args := m.Called(ctx, url)
	return args.Bool(0)
}
