package cameras

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/majhol08/rtspscout/internal/discover"
)

func TestAdd_DefaultsAndOrder(t *testing.T) {
	reg := NewRegistry()

	a := reg.Add(Identity{IP: "10.0.0.1"})
	b := reg.Add(Identity{IP: "10.0.0.2", Port: 8554, User: "ops"})

	assert.Equal(t, StatusNew, a.Status)
	assert.Equal(t, discover.PathAuto, a.Path)
	assert.Equal(t, "unknown", a.Vendor)
	assert.Equal(t, 8554, b.Port)

	list := reg.List()
	require.Len(t, list, 2)
	assert.Equal(t, []uuid.UUID{a.ID, b.ID}, []uuid.UUID{list[0].ID, list[1].ID})
}

func TestApply_SuccessInvariant(t *testing.T) {
	reg := NewRegistry()
	rec := reg.Add(Identity{IP: "10.0.0.5"})

	got, err := reg.Apply(rec.ID, discover.Outcome{
		Status:    discover.StatusSuccess,
		Vendor:    "hikvision",
		URL:       "rtsp://10.0.0.5:554/Streaming/Channels/101",
		Path:      "Streaming/Channels/101",
		Port:      554,
		User:      "admin",
		Password:  "12345",
		ElapsedMs: 420,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, got.Status)
	assert.NotEmpty(t, got.URL)
	assert.Equal(t, 554, got.Port)
	assert.Equal(t, "admin", got.User)
	assert.Equal(t, int64(420), got.LatencyMs)
}

func TestApply_FailedClearsURLButKeepsDiagnostics(t *testing.T) {
	reg := NewRegistry()
	rec := reg.Add(Identity{IP: "10.0.0.9", User: "ops", Password: "x"})

	got, err := reg.Apply(rec.ID, discover.Outcome{
		Status:     discover.StatusFailed,
		Vendor:     "generic",
		Path:       "live",
		StatusCode: 404,
		ElapsedMs:  1200,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, got.Status)
	assert.Empty(t, got.URL)
	assert.Equal(t, "generic", got.Vendor)
	assert.Equal(t, "live", got.Path)
	assert.Equal(t, 404, got.StatusCode)
	// Hints survive for manual correction and re-probe.
	assert.Equal(t, "ops", got.User)
}

func TestApply_UnknownID(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Apply(uuid.New(), discover.Outcome{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetPath_ResetsStatus(t *testing.T) {
	reg := NewRegistry()
	rec := reg.Add(Identity{IP: "10.0.0.5"})
	_, err := reg.Apply(rec.ID, discover.Outcome{Status: discover.StatusSuccess, URL: "rtsp://10.0.0.5:554/x", Path: "x", Port: 554})
	require.NoError(t, err)

	require.NoError(t, reg.SetPath(rec.ID, "my/path"))
	got, ok := reg.Get(rec.ID)
	require.True(t, ok)
	assert.Equal(t, "my/path", got.Path)
	assert.Equal(t, StatusNew, got.Status)
	assert.Empty(t, got.URL)

	// Empty path means back to auto.
	require.NoError(t, reg.SetPath(rec.ID, ""))
	got, _ = reg.Get(rec.ID)
	assert.Equal(t, discover.PathAuto, got.Path)
}

func TestClaim_OneInFlightPerID(t *testing.T) {
	reg := NewRegistry()
	rec := reg.Add(Identity{IP: "10.0.0.5"})

	require.NoError(t, reg.Claim(rec.ID))
	assert.ErrorIs(t, reg.Claim(rec.ID), ErrInFlight)

	reg.Release(rec.ID)
	assert.NoError(t, reg.Claim(rec.ID))

	assert.ErrorIs(t, reg.Claim(uuid.New()), ErrNotFound)
}

func TestRecord_Request(t *testing.T) {
	reg := NewRegistry()
	rec := reg.Add(Identity{IP: "10.0.0.5", Port: 10554, User: "u", Password: "p", Path: "live"})

	req := rec.Request()
	assert.Equal(t, discover.Request{IP: "10.0.0.5", Port: 10554, User: "u", Password: "p", Path: "live"}, req)

	auto := reg.Add(Identity{IP: "10.0.0.6"})
	assert.Equal(t, discover.PathAuto, auto.Request().Path)
}
