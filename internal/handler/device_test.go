package handler_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayt-piggie/my-trip-planner/internal/auth"
	"github.com/jayt-piggie/my-trip-planner/internal/handler"
)

var expiry = time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)

func TestPostDevice_IssuesWithoutToken(t *testing.T) {
	devices := &mockDevices{
		issue: func() (auth.Device, error) {
			return auth.Device{OwnerKey: "k-1", Token: "jwt", ExpiresAt: expiry}, nil
		},
	}

	rec := serve(newRouter(handler.Deps{Devices: devices}), newRequest(http.MethodPost, "/session/device", ""))

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody[handler.DeviceResponse](t, rec)
	assert.Equal(t, "k-1", body.OwnerKey)
	assert.Equal(t, "jwt", body.Token)
	assert.Equal(t, "2026-07-15T00:00:00Z", body.ExpiresAt)
}

func TestPostDevice_IssueFailure_Returns500(t *testing.T) {
	devices := &mockDevices{issue: func() (auth.Device, error) { return auth.Device{}, errors.New("entropy") }}

	rec := serve(newRouter(handler.Deps{Devices: devices}), newRequest(http.MethodPost, "/session/device", ""))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPostDeviceRefresh_KeepsOwnerKey(t *testing.T) {
	var refreshed string
	devices := &mockDevices{
		issueFor: func(key string) (auth.Device, error) {
			refreshed = key
			return auth.Device{OwnerKey: key, Token: "jwt-2", ExpiresAt: expiry}, nil
		},
	}

	rec := do(t, newRouter(handler.Deps{Devices: devices}), http.MethodPost, "/session/device/refresh", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testOwner, refreshed)
	assert.Equal(t, "jwt-2", decodeBody[handler.DeviceResponse](t, rec).Token)
}

func TestPostDeviceRefresh_RequiresToken(t *testing.T) {
	rec := serve(newRouter(handler.Deps{Devices: &mockDevices{}}), newRequest(http.MethodPost, "/session/device/refresh", ""))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
